package product

import (
	"context"
	"testing"

	"github.com/seanpol/ifdif/automata"
	"github.com/seanpol/ifdif/filecontext"
	"github.com/seanpol/ifdif/policy"
	"github.com/seanpol/ifdif/policygraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fcFor(t *testing.T, label, regex string) *filecontext.FileContext {
	t.Helper()
	nfa, err := automata.FromRegex(regex)
	require.NoError(t, err)
	return &filecontext.FileContext{Type: label, Regexes: []string{regex}, NFA: nfa}
}

func TestBuildProductNodesKeyedByFCIntersection(t *testing.T) {
	leftGraph := policygraph.NewGraph()
	leftGraph.EnsureNode("a_t")
	leftGraph.EnsureNode("b_t")
	leftGraph.AddEdge("a_t", "b_t", policygraph.EdgeWrite, []string{"write"})

	rightGraph := policygraph.NewGraph()
	rightGraph.EnsureNode("a_t")
	rightGraph.EnsureNode("c_t")
	rightGraph.AddEdge("a_t", "c_t", policygraph.EdgeWrite, []string{"write"})

	left := &policy.Policy{
		SimpleGraph: leftGraph,
		FileContexts: map[string]*filecontext.FileContext{
			"a_t": fcFor(t, "a_t", "/x"),
			"b_t": fcFor(t, "b_t", "/y"),
		},
	}
	right := &policy.Policy{
		SimpleGraph: rightGraph,
		FileContexts: map[string]*filecontext.FileContext{
			"a_t": fcFor(t, "a_t", "/x"),
			"c_t": fcFor(t, "c_t", "/y"),
		},
	}

	g, err := Build(context.Background(), left, right, 4)
	require.NoError(t, err)

	aaIdx, ok := g.Index(Node{Left: "a_t", Right: "a_t"})
	require.True(t, ok)
	bcIdx, ok := g.Index(Node{Left: "b_t", Right: "c_t"})
	require.True(t, ok)

	_, noCross := g.Index(Node{Left: "a_t", Right: "c_t"})
	assert.False(t, noCross, "/x and /y are disjoint, so a_t/c_t must not intersect")

	assert.True(t, g.HasEdgeDir(aaIdx, bcIdx, DirLeft))
	assert.True(t, g.HasEdgeDir(aaIdx, bcIdx, DirRight))
}

func newTestGraph(numNodes int) *Graph {
	g := &Graph{index: map[Node]int{}}
	for i := 0; i < numNodes; i++ {
		n := Node{Left: string(rune('a' + i))}
		g.index[n] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}
	g.out = make([]map[int]dirMask, numNodes)
	g.in = make([]map[int]dirMask, numNodes)
	for i := range g.out {
		g.out[i] = map[int]dirMask{}
		g.in[i] = map[int]dirMask{}
	}
	return g
}

func TestEventuallyReachIsMonotone(t *testing.T) {
	// a -> b -> c, all tagged left.
	g := newTestGraph(3)
	g.addEdge(0, 1, DirLeft)
	g.addEdge(1, 2, DirLeft)

	small := newNodeSet([]int{2})
	big := newNodeSet([]int{1, 2})

	rSmall, err := EventuallyReach(context.Background(), g, small, DirLeft)
	require.NoError(t, err)
	rBig, err := EventuallyReach(context.Background(), g, big, DirLeft)
	require.NoError(t, err)

	for n := range rSmall {
		assert.Contains(t, rBig, n)
	}
}

func TestEventuallyReachIsIdempotentOnAClosedSet(t *testing.T) {
	// a <-> b, a two-cycle tagged left: the full ancestor closure of {a}
	// is {a,b}, which is already closed under taking ancestors again.
	g := newTestGraph(2)
	g.addEdge(0, 1, DirLeft)
	g.addEdge(1, 0, DirLeft)

	seed := newNodeSet([]int{0})
	r1, err := EventuallyReach(context.Background(), g, seed, DirLeft)
	require.NoError(t, err)

	r2, err := EventuallyReach(context.Background(), g, r1, DirLeft)
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
}

// newLetterGraph builds the 5-node A-E stub multigraph used to exercise
// EventuallyReach/EventuallyReachedBy against many seeds and both
// directions at once: left edges D->^C->B<-A<->^E, with right edges the
// reverse of every left edge tagged the opposite direction.
func newLetterGraph() *Graph {
	g := newTestGraph(5)
	leftEdges := [][2]string{
		{"a", "b"},
		{"a", "e"},
		{"c", "c"},
		{"c", "b"},
		{"d", "c"},
		{"e", "a"},
		{"e", "e"},
	}
	for _, e := range leftEdges {
		src, _ := g.Index(Node{Left: e[0]})
		dst, _ := g.Index(Node{Left: e[1]})
		g.addEdge(src, dst, DirLeft)
		rsrc, _ := g.Index(Node{Left: e[1]})
		rdst, _ := g.Index(Node{Left: e[0]})
		g.addEdge(rsrc, rdst, DirRight)
	}
	return g
}

func letterSet(g *Graph, s NodeSet) map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for i := range s {
		out[g.NodeAt(i).Left] = struct{}{}
	}
	return out
}

func lettersOf(ss ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		out[s] = struct{}{}
	}
	return out
}

func TestEventuallyReachOnFiveNodeMultigraphFixture(t *testing.T) {
	g := newLetterGraph()

	cases := []struct {
		seed string
		dir  Direction
		want map[string]struct{}
	}{
		{"a", DirLeft, lettersOf("a", "e")},
		{"b", DirLeft, lettersOf("a", "c", "d", "e")},
		{"c", DirLeft, lettersOf("c", "d")},
		{"d", DirLeft, lettersOf()},
		{"e", DirLeft, lettersOf("a", "e")},
		{"a", DirRight, lettersOf("a", "b", "e")},
		{"b", DirRight, lettersOf()},
		{"c", DirRight, lettersOf("b", "c")},
		{"d", DirRight, lettersOf("b", "c")},
		{"e", DirRight, lettersOf("a", "b", "e")},
	}

	for _, c := range cases {
		idx, ok := g.Index(Node{Left: c.seed})
		require.True(t, ok)
		got, err := EventuallyReach(context.Background(), g, newNodeSet([]int{idx}), c.dir)
		require.NoError(t, err)
		assert.Equal(t, c.want, letterSet(g, got), "seed=%s dir=%s", c.seed, c.dir)
	}
}

func TestEventuallyReachedByOnFiveNodeMultigraphFixture(t *testing.T) {
	g := newLetterGraph()

	cases := []struct {
		seed string
		dir  Direction
		want map[string]struct{}
	}{
		{"a", DirRight, lettersOf("a", "e")},
		{"b", DirRight, lettersOf("a", "c", "d", "e")},
		{"c", DirRight, lettersOf("c", "d")},
		{"d", DirRight, lettersOf()},
		{"e", DirRight, lettersOf("a", "e")},
		{"a", DirLeft, lettersOf("a", "b", "e")},
		{"b", DirLeft, lettersOf()},
		{"c", DirLeft, lettersOf("b", "c")},
		{"d", DirLeft, lettersOf("b", "c")},
		{"e", DirLeft, lettersOf("a", "b", "e")},
	}

	for _, c := range cases {
		idx, ok := g.Index(Node{Left: c.seed})
		require.True(t, ok)
		got, err := EventuallyReachedBy(context.Background(), g, newNodeSet([]int{idx}), c.dir)
		require.NoError(t, err)
		assert.Equal(t, c.want, letterSet(g, got), "seed=%s dir=%s", c.seed, c.dir)
	}
}

func TestHasPathDirectionRespectsTag(t *testing.T) {
	g := newTestGraph(2)
	g.addEdge(0, 1, DirRight)

	assert.True(t, g.HasPathDirection(0, 1, DirRight))
	assert.False(t, g.HasPathDirection(0, 1, DirLeft))
}
