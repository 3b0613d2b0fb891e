package callgraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalpel/internal/extract"
	"scalpel/internal/parser"
	"scalpel/internal/relations"
)

func buildGraph(t *testing.T, sources map[string]string) *Graph {
	t.Helper()
	var files []*relations.File
	for path, src := range sources {
		res, err := parser.ParseFile(context.Background(), path, []byte(src))
		require.NoError(t, err, path)
		t.Cleanup(res.Close)
		fe, err := extract.File(res)
		require.NoError(t, err, path)
		files = append(files, &relations.File{Res: res, Entities: fe})
	}
	return Build(files, relations.BuildIndex(files))
}

const chainSource = `function a() { b(); }
function b() { c(); c(); }
function c() { return 1; }
function orphan() { return 2; }
export function pub() { return 3; }
a();
`

func TestBuildEdges(t *testing.T) {
	g := buildGraph(t, map[string]string{"chain.js": chainSource})

	aOut := g.Outbound("chain.js::a")
	require.Len(t, aOut, 1)
	assert.Equal(t, "chain.js::b", aOut[0].TargetID)

	// b calls c twice: one edge, count 2.
	bOut := g.Outbound("chain.js::b")
	require.Len(t, bOut, 1)
	assert.Equal(t, 2, bOut[0].Count)

	// The module-level a() call gets a synthetic module caller.
	moduleOut := g.Outbound("chain.js::" + ModuleCaller)
	require.Len(t, moduleOut, 1)
	assert.Equal(t, "chain.js::a", moduleOut[0].TargetID)
}

func findUnresolved(g *Graph, call string) *UnresolvedCall {
	for i := range g.Unresolved {
		if g.Unresolved[i].Call == call {
			return &g.Unresolved[i]
		}
	}
	return nil
}

func TestUnresolvedCallees(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"u.js": "function f() { mystery(); mystery(); console.log(1); }\n",
	})

	mystery := findUnresolved(g, "mystery")
	require.NotNil(t, mystery)
	assert.Equal(t, 2, mystery.Count)
	assert.Equal(t, "u.js::f", mystery.SourceID, "unresolved entries carry the calling node")

	assert.NotNil(t, findUnresolved(g, "console.log"))
	assert.Empty(t, g.Outbound("u.js::f"))
}

func TestAmbiguousCalleeStaysUnresolved(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"x.js": "function dup() {}\n",
		"y.js": "function dup() {}\n",
		"z.js": "function caller() { dup(); }\n",
	})

	dup := findUnresolved(g, "dup")
	require.NotNil(t, dup)
	assert.Equal(t, 1, dup.Count)
	assert.Equal(t, "z.js::caller", dup.SourceID)
	assert.Empty(t, g.Outbound("z.js::caller"))
}

func TestSameFileCalleeWins(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"x.js": "function dup() {}\nfunction caller() { dup(); }\n",
		"y.js": "function dup() {}\n",
	})

	out := g.Outbound("x.js::caller")
	require.Len(t, out, 1)
	assert.Equal(t, "x.js::dup", out[0].TargetID)
	assert.Nil(t, findUnresolved(g, "dup"))
}

func TestTraverseDepthLimit(t *testing.T) {
	g := buildGraph(t, map[string]string{"chain.js": chainSource})

	tr, err := g.Traverse("a", 1)
	require.NoError(t, err)
	assert.Len(t, tr.Nodes, 2) // a, b
	assert.True(t, tr.Truncated, "b still has outbound edges beyond the bound")

	tr, err = g.Traverse("a", 0)
	require.NoError(t, err)
	assert.Len(t, tr.Nodes, 3) // a, b, c
	assert.False(t, tr.Truncated)
}

func TestTraverseUnknownRoot(t *testing.T) {
	g := buildGraph(t, map[string]string{"chain.js": chainSource})

	_, err := g.Traverse("nope", 0)
	assert.Error(t, err)
}

func TestTraverseHandlesCycles(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"cyc.js": "function ping() { pong(); }\nfunction pong() { ping(); }\n",
	})

	tr, err := g.Traverse("ping", 0)
	require.NoError(t, err)
	assert.Len(t, tr.Nodes, 2)
}

func TestDeadCode(t *testing.T) {
	g := buildGraph(t, map[string]string{"chain.js": chainSource})

	dead := g.DeadCode(false)
	require.Len(t, dead, 1)
	assert.Equal(t, "chain.js::orphan", dead[0].ID)

	// pub has no inbound edges but is exported.
	withExported := g.DeadCode(true)
	ids := make([]string, len(withExported))
	for i, n := range withExported {
		ids[i] = n.ID
	}
	assert.Contains(t, ids, "chain.js::pub")
}

func TestHotPaths(t *testing.T) {
	g := buildGraph(t, map[string]string{"chain.js": chainSource})

	hot := g.HotPaths(0)
	require.NotEmpty(t, hot)
	assert.Equal(t, "chain.js::c", hot[0].Node.ID, "c takes two calls, the most")
	assert.Equal(t, 2, hot[0].Inbound)

	limited := g.HotPaths(1)
	assert.Len(t, limited, 1)
}

func TestNodeByName(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"x.js": "function dup() {}\n",
		"y.js": "function dup() {}\nfunction only() {}\n",
	})

	n, err := g.NodeByName("only")
	require.NoError(t, err)
	assert.Equal(t, "y.js::only", n.ID)

	_, err = g.NodeByName("dup")
	assert.Error(t, err, "bare ambiguous name must be rejected")

	n, err = g.NodeByName("x.js::dup")
	require.NoError(t, err)
	assert.Equal(t, "x.js", n.File)
}
