package callgraph

import "sort"

// Traversal is the subgraph reachable from one root within a depth bound.
type Traversal struct {
	Root     string  `json:"root"`
	Depth    int     `json:"depth"` // 0 means unbounded
	Nodes    []*Node `json:"nodes"`
	Edges    []*Edge `json:"edges"`
	Truncated bool   `json:"truncated"` // depth bound cut the walk short
}

// Traverse walks outbound edges breadth-first from root. depth 0 is
// unbounded; otherwise nodes more than depth hops away are excluded.
func (g *Graph) Traverse(rootID string, depth int) (*Traversal, error) {
	root, err := g.NodeByName(rootID)
	if err != nil {
		return nil, err
	}

	tr := &Traversal{Root: root.ID, Depth: depth}
	seen := map[string]int{root.ID: 0}
	queue := []string{root.ID}
	tr.Nodes = append(tr.Nodes, root)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		level := seen[id]
		if depth > 0 && level >= depth {
			if len(g.outbound[id]) > 0 {
				tr.Truncated = true
			}
			continue
		}
		for _, e := range g.outbound[id] {
			tr.Edges = append(tr.Edges, e)
			if _, ok := seen[e.TargetID]; ok {
				continue
			}
			seen[e.TargetID] = level + 1
			tr.Nodes = append(tr.Nodes, g.Nodes[e.TargetID])
			queue = append(queue, e.TargetID)
		}
	}
	return tr, nil
}

// DeadCode lists functions with zero inbound edges. Exported functions are
// assumed reachable from outside the workspace and are excluded unless
// includeExported is set. Module nodes never count.
func (g *Graph) DeadCode(includeExported bool) []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if n.Name == ModuleCaller {
			continue
		}
		if len(g.inbound[n.ID]) > 0 {
			continue
		}
		if n.Exported && !includeExported {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// HotPath is one node ranked by aggregated inbound call volume.
type HotPath struct {
	Node    *Node `json:"node"`
	Inbound int   `json:"inbound"`
	Callers int   `json:"callers"`
}

// HotPaths ranks nodes by inbound call count, descending. limit <= 0 returns
// every node that has any inbound call.
func (g *Graph) HotPaths(limit int) []HotPath {
	var out []HotPath
	for _, n := range g.Nodes {
		if n.Name == ModuleCaller {
			continue
		}
		count := g.InboundCount(n.ID)
		if count == 0 {
			continue
		}
		out = append(out, HotPath{Node: n, Inbound: count, Callers: len(g.inbound[n.ID])})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Inbound != out[j].Inbound {
			return out[i].Inbound > out[j].Inbound
		}
		return out[i].Node.ID < out[j].Node.ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
