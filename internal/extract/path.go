package extract

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// PathSignature builds the structural address of a node: slash-joined
// segments from the module root down to the node. Named nodes contribute
// `kind[name]`; unnamed nodes contribute `kind:i` where i is the node's
// ordinal among same-type siblings. The signature is what the mutation
// engine uses to re-locate an entity in the re-extracted buffer; a changed
// signature after mutation is reported as path drift, not silently healed.
func PathSignature(n *sitter.Node, src []byte) string {
	var segs []string
	for cur := n; cur != nil && cur.Type() != "program"; cur = cur.Parent() {
		segs = append(segs, pathSegment(cur, src))
	}
	if len(segs) == 0 {
		return "program"
	}
	// Collected bottom-up; reverse into root-first order.
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, "/")
}

func pathSegment(n *sitter.Node, src []byte) string {
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		return n.Type() + "[" + string(src[nameNode.StartByte():nameNode.EndByte()]) + "]"
	}
	return fmt.Sprintf("%s:%d", n.Type(), siblingOrdinal(n))
}

// siblingOrdinal counts earlier siblings of the same node type.
func siblingOrdinal(n *sitter.Node) int {
	parent := n.Parent()
	if parent == nil {
		return 0
	}
	idx := 0
	for i := 0; i < int(parent.ChildCount()); i++ {
		c := parent.Child(i)
		if c == nil {
			continue
		}
		if c.StartByte() == n.StartByte() && c.EndByte() == n.EndByte() && c.Type() == n.Type() {
			break
		}
		if c.Type() == n.Type() {
			idx++
		}
	}
	return idx
}
