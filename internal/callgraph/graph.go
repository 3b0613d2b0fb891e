// Package callgraph assembles the workspace call graph from the relationship
// indexes and answers traversal queries over it: bounded BFS walks, dead
// code candidates, and hot paths. Callee resolution is name-based, so edges
// are an approximation; everything that fails to resolve uniquely is kept in
// an unresolved table instead of being guessed at.
package callgraph

import (
	"fmt"
	"sort"

	"scalpel/internal/extract"
	"scalpel/internal/relations"
)

// ModuleCaller is the synthetic caller name for module-level call sites.
const ModuleCaller = "<module>"

// Node is one function in the graph.
type Node struct {
	ID       string       `json:"id"` // file::canonicalName
	File     string       `json:"file"`
	Name     string       `json:"name"`
	Kind     extract.Kind `json:"kind"`
	Exported bool         `json:"exported"`
	Line     int          `json:"line"`
}

// Edge is an aggregated caller->callee relation.
type Edge struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	Count    int    `json:"count"`
}

// UnresolvedCall aggregates call sites whose callee could not be attributed
// to a unique node, keyed by callee name and originating caller.
type UnresolvedCall struct {
	Call     string `json:"call"`
	Count    int    `json:"count"`
	SourceID string `json:"sourceId"`
}

// Graph is the workspace call graph. Nodes cover every extracted function
// plus one synthetic module node per file with module-level calls; edges are
// built lazily from resolved call sites.
type Graph struct {
	Nodes      map[string]*Node `json:"nodes"`
	Edges      []*Edge          `json:"edges"`
	Unresolved []UnresolvedCall `json:"unresolved"`

	inbound  map[string][]*Edge
	outbound map[string][]*Edge
}

func nodeID(file, name string) string {
	return file + "::" + name
}

// Build assembles the graph from extracted files and their call index.
func Build(files []*relations.File, ix *relations.Index) *Graph {
	g := &Graph{
		Nodes:    make(map[string]*Node),
		inbound:  make(map[string][]*Edge),
		outbound: make(map[string][]*Edge),
	}

	// byName indexes candidate callee nodes under bare and canonical names.
	byName := make(map[string][]*Node)
	for _, f := range files {
		for i := range f.Entities.Functions {
			fn := &f.Entities.Functions[i]
			if fn.Kind == extract.KindClass {
				continue
			}
			n := &Node{
				ID:       nodeID(f.Res.Path, fn.CanonicalName),
				File:     f.Res.Path,
				Name:     fn.CanonicalName,
				Kind:     fn.Kind,
				Exported: fn.ExportKind != extract.ExportNone,
				Line:     fn.Line,
			}
			g.Nodes[n.ID] = n
			byName[fn.Name] = append(byName[fn.Name], n)
			if fn.CanonicalName != fn.Name {
				byName[fn.CanonicalName] = append(byName[fn.CanonicalName], n)
			}
		}
	}

	edges := make(map[[2]string]*Edge)
	unresolved := make(map[[2]string]int)
	for _, site := range ix.Calls {
		callerName := site.Caller
		if callerName == "" {
			callerName = ModuleCaller
		}
		sourceID := nodeID(site.File, callerName)

		target := resolveCallee(byName, site)
		if target == nil {
			unresolved[[2]string{site.Callee, sourceID}]++
			continue
		}

		if _, ok := g.Nodes[sourceID]; !ok {
			if callerName != ModuleCaller {
				// Caller record was filtered out (class node); skip.
				continue
			}
			g.Nodes[sourceID] = &Node{ID: sourceID, File: site.File, Name: ModuleCaller}
		}

		key := [2]string{sourceID, target.ID}
		if e, ok := edges[key]; ok {
			e.Count++
			continue
		}
		e := &Edge{SourceID: sourceID, TargetID: target.ID, Count: 1}
		edges[key] = e
		g.Edges = append(g.Edges, e)
		g.outbound[sourceID] = append(g.outbound[sourceID], e)
		g.inbound[target.ID] = append(g.inbound[target.ID], e)
	}

	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].SourceID != g.Edges[j].SourceID {
			return g.Edges[i].SourceID < g.Edges[j].SourceID
		}
		return g.Edges[i].TargetID < g.Edges[j].TargetID
	})

	for key, count := range unresolved {
		g.Unresolved = append(g.Unresolved, UnresolvedCall{Call: key[0], Count: count, SourceID: key[1]})
	}
	sort.Slice(g.Unresolved, func(i, j int) bool {
		if g.Unresolved[i].Call != g.Unresolved[j].Call {
			return g.Unresolved[i].Call < g.Unresolved[j].Call
		}
		return g.Unresolved[i].SourceID < g.Unresolved[j].SourceID
	})
	return g
}

// resolveCallee maps a call site to a unique node. Same-file candidates win;
// otherwise the name must be unique across the workspace.
func resolveCallee(byName map[string][]*Node, site relations.CallSite) *Node {
	name := site.Callee
	candidates := byName[name]
	if len(candidates) == 0 {
		// A dotted callee can still hit a method by its final segment.
		candidates = byName[lastDot(name)]
	}
	if len(candidates) == 0 {
		return nil
	}

	var sameFile []*Node
	for _, c := range candidates {
		if c.File == site.File {
			sameFile = append(sameFile, c)
		}
	}
	if len(sameFile) == 1 {
		return sameFile[0]
	}
	if len(sameFile) == 0 && len(candidates) == 1 {
		return candidates[0]
	}
	return nil
}

func lastDot(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[i+1:]
		}
	}
	return s
}

// NodeByName finds the graph node for a canonical name, optionally qualified
// as file::name. An ambiguous bare name is an error.
func (g *Graph) NodeByName(name string) (*Node, error) {
	if n, ok := g.Nodes[name]; ok {
		return n, nil
	}
	var found []*Node
	for _, n := range g.Nodes {
		if n.Name == name {
			found = append(found, n)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("no graph node named %q", name)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%d graph nodes named %q; qualify as file::name", len(found), name)
	}
}

// Inbound returns edges targeting id.
func (g *Graph) Inbound(id string) []*Edge { return g.inbound[id] }

// Outbound returns edges leaving id.
func (g *Graph) Outbound(id string) []*Edge { return g.outbound[id] }

// InboundCount sums call counts into id.
func (g *Graph) InboundCount(id string) int {
	total := 0
	for _, e := range g.inbound[id] {
		total += e.Count
	}
	return total
}
