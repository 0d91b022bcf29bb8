// Package policygraph builds the typed information-flow graph of one
// SELinux policy from its allow and type_transition rules, and the
// subject-only contraction of that graph.
package policygraph

import "sort"

// Transition is a (source_label, fc_label) pair recorded on a subject node
// each time a type_transition rule targets it as the default.
type Transition struct {
	Source  string
	FCLabel string
}

// Node is one policy graph vertex, keyed by its label elsewhere.
type Node struct {
	Label         string
	IsSubject     bool
	IsObject      bool
	Transitions   []Transition
	SecurityLevel SecurityLvl
}

// Edge is one directed policy graph edge.
type Edge struct {
	Src, Dst int
	Type     EdgeType
	Perms    map[string]struct{}
	Omitted  []string
}

// Graph is an adjacency-list graph keyed by integer label indices rather
// than string-keyed maps, per the original's cyclic-object-graph design
// note: labels live in a single []string table and every node/edge refers
// to them by index.
type Graph struct {
	labels  []string
	index   map[string]int
	nodes   []Node
	deleted []bool
	out     []map[int]int // source index -> dest index -> edge index
	edges   []Edge
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{index: map[string]int{}}
}

// NumNodes returns the number of live (non-removed) nodes.
func (g *Graph) NumNodes() int { return len(g.Nodes()) }

// Label returns the label string for a node index.
func (g *Graph) Label(i int) string { return g.labels[i] }

// Index returns the node index for label, and whether it exists.
func (g *Graph) Index(label string) (int, bool) {
	i, ok := g.index[label]
	return i, ok
}

// EnsureNode returns the index of label, creating an empty node if absent.
func (g *Graph) EnsureNode(label string) int {
	if i, ok := g.index[label]; ok {
		return i
	}
	i := len(g.nodes)
	g.index[label] = i
	g.labels = append(g.labels, label)
	g.nodes = append(g.nodes, Node{Label: label})
	g.deleted = append(g.deleted, false)
	g.out = append(g.out, map[int]int{})
	return i
}

// Node returns a pointer to the node at index i for in-place mutation.
func (g *Graph) Node(i int) *Node { return &g.nodes[i] }

// NodeByLabel returns a pointer to the node for label, creating it if
// absent.
func (g *Graph) NodeByLabel(label string) *Node {
	return &g.nodes[g.EnsureNode(label)]
}

// HasEdge reports whether an edge src->dst exists.
func (g *Graph) HasEdge(src, dst int) bool {
	_, ok := g.out[src][dst]
	return ok
}

// Edge returns a pointer to the edge src->dst, and whether it exists.
func (g *Graph) Edge(src, dst int) (*Edge, bool) {
	idx, ok := g.out[src][dst]
	if !ok {
		return nil, false
	}
	return &g.edges[idx], true
}

// AddEdge adds a new edge or unions into an existing one: perms are unioned
// and type flags are OR'd, per spec.md §3's PolicyEdge invariant.
func (g *Graph) AddEdge(srcLabel, dstLabel string, typ EdgeType, perms []string) {
	src := g.EnsureNode(srcLabel)
	dst := g.EnsureNode(dstLabel)

	if idx, ok := g.out[src][dst]; ok {
		e := &g.edges[idx]
		e.Type = e.Type.Union(typ)
		for _, p := range perms {
			e.Perms[p] = struct{}{}
		}
		return
	}

	permSet := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		permSet[p] = struct{}{}
	}
	idx := len(g.edges)
	g.edges = append(g.edges, Edge{Src: src, Dst: dst, Type: typ, Perms: permSet})
	g.out[src][dst] = idx
}

// addADDLEdge adds a synthesized contraction edge, unioning the omitted
// list if an ADDL edge already exists between src and dst.
func (g *Graph) addADDLEdge(src, dst int, omitted []string) {
	if idx, ok := g.out[src][dst]; ok {
		e := &g.edges[idx]
		e.Type = e.Type.Union(EdgeAddl)
		e.Omitted = append(e.Omitted, omitted...)
		return
	}
	idx := len(g.edges)
	g.edges = append(g.edges, Edge{Src: src, Dst: dst, Type: EdgeAddl, Omitted: omitted})
	g.out[src][dst] = idx
}

// removeNode deletes a node's label mapping and every edge touching it.
// Node indices are never reused or compacted, so other node indices stay
// valid across a removeNode call. Used only by Simplify, which operates on
// a private copy of the graph.
func (g *Graph) removeNode(victim int) {
	var survivors []Edge
	for _, e := range g.edges {
		if e.Src == victim || e.Dst == victim {
			continue
		}
		survivors = append(survivors, e)
	}
	g.edges = survivors

	g.out[victim] = nil
	g.deleted[victim] = true
	for label, idx := range g.index {
		if idx == victim {
			delete(g.index, label)
		}
	}

	g.rebuildOut()
}

func (g *Graph) rebuildOut() {
	for i := range g.out {
		g.out[i] = map[int]int{}
	}
	for idx, e := range g.edges {
		g.out[e.Src][e.Dst] = idx
	}
}

// InEdges returns every edge whose Dst is i.
func (g *Graph) InEdges(i int) []*Edge {
	var res []*Edge
	for idx := range g.edges {
		if g.edges[idx].Dst == i {
			res = append(res, &g.edges[idx])
		}
	}
	return res
}

// OutEdges returns every edge whose Src is i.
func (g *Graph) OutEdges(i int) []*Edge {
	var res []*Edge
	for idx := range g.edges {
		if g.edges[idx].Src == i {
			res = append(res, &g.edges[idx])
		}
	}
	return res
}

// Degree returns the total in+out degree of node i, counting self-loops
// once in each direction.
func (g *Graph) Degree(i int) int {
	return len(g.InEdges(i)) + len(g.OutEdges(i))
}

// Nodes returns every live node index, ascending.
func (g *Graph) Nodes() []int {
	out := make([]int, 0, len(g.nodes))
	for i := range g.nodes {
		if !g.deleted[i] {
			out = append(out, i)
		}
	}
	return out
}

// Edges returns every edge.
func (g *Graph) Edges() []Edge { return g.edges }

// sortedByDegree returns node indices ascending by degree, tie-broken by
// label lexicographic order for reproducibility across runs, per spec.md
// §9's determinism requirement (Go maps don't preserve insertion order the
// way the original's CPython dicts did).
func (g *Graph) sortedByDegree() []int {
	nodes := g.Nodes()
	sort.Slice(nodes, func(i, j int) bool {
		di, dj := g.Degree(nodes[i]), g.Degree(nodes[j])
		if di != dj {
			return di < dj
		}
		return g.labels[nodes[i]] < g.labels[nodes[j]]
	})
	return nodes
}
