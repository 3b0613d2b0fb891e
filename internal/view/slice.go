package view

import (
	"bytes"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"scalpel/internal/errors"
	"scalpel/internal/extract"
	"scalpel/internal/parser"
	"scalpel/internal/selector"
	"scalpel/internal/span"
)

// PieceKind classifies one component of a dependency slice.
type PieceKind string

const (
	PieceImport   PieceKind = "import"
	PieceConstant PieceKind = "constant"
	PieceFunction PieceKind = "function"
	PieceTarget   PieceKind = "target"
)

// Piece is one source fragment included in a slice, in source order.
type Piece struct {
	Kind PieceKind `json:"kind"`
	Name string    `json:"name"`
	Span span.Span `json:"span"`
	Text string    `json:"text"`
}

// Slice is the single-level dependency closure of one entity: the entity
// itself plus the imports, top-level constants, and top-level functions its
// free identifiers reach. Transitive dependencies of those pieces are not
// followed.
type Slice struct {
	File            string   `json:"file"`
	Target          string   `json:"target"`
	Pieces          []Piece  `json:"pieces"`
	FreeIdentifiers []string `json:"freeIdentifiers"`
	OriginalLines   int      `json:"originalLines"`
	SliceLines      int      `json:"sliceLines"`
	OriginalBytes   int      `json:"originalBytes"`
	SliceBytes      int      `json:"sliceBytes"`
	ReductionPct    float64  `json:"reductionPct"`
}

// Text renders the slice pieces joined by blank lines, in source order.
func (s *Slice) Text() string {
	parts := make([]string, len(s.Pieces))
	for i, p := range s.Pieces {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n\n")
}

// BuildSlice computes the dependency slice of ent within its parsed file.
func BuildSlice(res *parser.Result, fe *extract.FileEntities, ent *selector.Entity) (*Slice, error) {
	src := res.Source
	target := ent.Span()
	node := nodeCovering(res.Root(), target)
	if node == nil {
		return nil, errors.Newf(errors.InternalError, "no AST node covers span %s", target)
	}

	free := freeIdentifiers(node, src, ent.Name())

	var pieces []Piece

	// Pass 1: import statements binding a free identifier.
	for _, imp := range importBindings(res.Root(), src) {
		if intersects(free, imp.names) {
			pieces = append(pieces, Piece{
				Kind: PieceImport,
				Name: strings.Join(imp.names, ","),
				Span: imp.span,
				Text: string(imp.span.Text(src)),
			})
		}
	}

	// Pass 2: top-level constants the target references.
	for i := range fe.Variables {
		v := &fe.Variables[i]
		if len(v.ScopeChain) != 1 || !free[v.Name] || v.Span == target {
			continue
		}
		pieces = append(pieces, Piece{
			Kind: PieceConstant,
			Name: v.Name,
			Span: v.Span,
			Text: string(v.Span.Text(src)),
		})
	}

	// Pass 3: top-level functions the target calls or references.
	for i := range fe.Functions {
		f := &fe.Functions[i]
		if len(f.ScopeChain) != 1 || !free[f.Name] || f.Span == target {
			continue
		}
		if f.Span.ContainsSpan(target) {
			continue
		}
		pieces = append(pieces, Piece{
			Kind: PieceFunction,
			Name: f.Name,
			Span: f.Span,
			Text: string(f.Span.Text(src)),
		})
	}

	pieces = append(pieces, Piece{
		Kind: PieceTarget,
		Name: ent.CanonicalName(),
		Span: target,
		Text: string(target.Text(src)),
	})

	sort.SliceStable(pieces, func(i, j int) bool { return pieces[i].Span.Start < pieces[j].Span.Start })

	sliceBytes, sliceLines := 0, 0
	for _, p := range pieces {
		sliceBytes += len(p.Text)
		sliceLines += countLines([]byte(p.Text))
	}
	totalLines := countLines(src)

	// Reduction is measured in lines, not bytes.
	reduction := 0.0
	if totalLines > 0 {
		reduction = 100 * (1 - float64(sliceLines)/float64(totalLines))
		if reduction < 0 {
			reduction = 0
		}
	}

	return &Slice{
		File:            fe.Path,
		Target:          ent.CanonicalName(),
		Pieces:          pieces,
		FreeIdentifiers: sortedKeys(free),
		OriginalLines:   totalLines,
		SliceLines:      sliceLines,
		OriginalBytes:   len(src),
		SliceBytes:      sliceBytes,
		ReductionPct:    reduction,
	}, nil
}

// countLines counts newline-terminated lines plus a trailing partial line.
func countLines(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	n := bytes.Count(b, []byte("\n"))
	if b[len(b)-1] != '\n' {
		n++
	}
	return n
}

// nodeCovering returns the smallest named node whose byte range contains sp.
func nodeCovering(root *sitter.Node, sp span.Span) *sitter.Node {
	best := root
	for {
		descended := false
		for i := 0; i < int(best.NamedChildCount()); i++ {
			child := best.NamedChild(i)
			if child.StartByte() <= sp.Start && sp.End <= child.EndByte() {
				best = child
				descended = true
				break
			}
		}
		if !descended {
			return best
		}
	}
}

// freeIdentifiers collects identifiers used inside node that are not bound
// inside it. Property accesses (obj.prop) contribute only the object side.
func freeIdentifiers(node *sitter.Node, src []byte, selfName string) map[string]bool {
	used := make(map[string]bool)
	bound := map[string]bool{selfName: true}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "identifier":
			if binds(n) {
				bound[string(src[n.StartByte():n.EndByte()])] = true
			} else {
				used[string(src[n.StartByte():n.EndByte()])] = true
			}
		case "property_identifier", "private_property_identifier":
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(node)

	for name := range bound {
		delete(used, name)
	}
	return used
}

// binds reports whether an identifier node introduces a binding rather than
// referencing one.
func binds(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	switch parent.Type() {
	case "formal_parameters", "required_parameter", "optional_parameter",
		"rest_pattern", "object_pattern", "array_pattern", "pair_pattern":
		return true
	case "variable_declarator":
		name := parent.ChildByFieldName("name")
		return name != nil && name.Equal(n)
	case "function_declaration", "function_expression", "function",
		"generator_function_declaration", "class_declaration", "arrow_function":
		name := parent.ChildByFieldName("name")
		if name != nil && name.Equal(n) {
			return true
		}
		// A bare identifier directly under arrow_function is its parameter.
		if parent.Type() == "arrow_function" {
			p := parent.ChildByFieldName("parameter")
			return p != nil && p.Equal(n)
		}
		return false
	case "catch_clause":
		return true
	}
	return false
}

type importBinding struct {
	span  span.Span
	names []string
}

// importBindings lists top-level import statements with the local names they
// introduce.
func importBindings(root *sitter.Node, src []byte) []importBinding {
	var out []importBinding
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != "import_statement" {
			continue
		}
		b := importBinding{span: span.FromNode(stmt)}
		var names func(n *sitter.Node)
		names = func(n *sitter.Node) {
			if n.Type() == "identifier" {
				b.names = append(b.names, string(src[n.StartByte():n.EndByte()]))
				return
			}
			for j := 0; j < int(n.NamedChildCount()); j++ {
				names(n.NamedChild(j))
			}
		}
		names(stmt)
		out = append(out, b)
	}
	return out
}

func intersects(set map[string]bool, names []string) bool {
	for _, n := range names {
		if set[n] {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
