// Package product builds the pairwise join of two policies' simplified
// graphs, keyed by nonempty file-context language intersections, and
// supports direction-filtered reachability over it.
package product

import (
	"context"
	"fmt"
	"sort"

	"github.com/seanpol/ifdif/automata"
	"github.com/seanpol/ifdif/internal/ifdiferr"
	"github.com/seanpol/ifdif/policy"
	"golang.org/x/sync/errgroup"
)

// Direction tags which source graph a product edge was projected from.
type Direction uint8

const (
	DirLeft Direction = iota
	DirRight
)

func (d Direction) String() string {
	if d == DirLeft {
		return "left"
	}
	return "right"
}

// Node is a pair of labels, one from each policy's simple graph, whose
// file-context languages intersect nonemptily.
type Node struct {
	Left, Right string
}

// Edge is a directed product edge, tagged with which side's graph it came
// from.
type Edge struct {
	Src, Dst int
	Dir      Direction
}

// dirMask is a bitmask over the two possible edge directions: a node pair
// can simultaneously have a "left" edge and a "right" edge (this is a
// multigraph), so adjacency can't be a plain map[int]Edge.
type dirMask uint8

func (m dirMask) has(d Direction) bool { return m&(1<<d) != 0 }
func (m dirMask) set(d Direction) dirMask { return m | (1 << d) }

// Graph is the product graph, interned into an integer node table for the
// same reasons as policygraph.Graph.
type Graph struct {
	nodes []Node
	index map[Node]int
	out   []map[int]dirMask
	in    []map[int]dirMask
}

// NumNodes returns the number of interned product nodes.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NodeAt returns the Node at index i.
func (g *Graph) NodeAt(i int) Node { return g.nodes[i] }

// Index returns the index of n, and whether it exists.
func (g *Graph) Index(n Node) (int, bool) {
	i, ok := g.index[n]
	return i, ok
}

// Build constructs the product graph of left and right's simplified
// graphs: a node (lλ, rλ) exists iff their file-context NFAs intersect
// nonemptily (spec.md §8 testable property 5), and an edge is added for
// every pair of product nodes whose left (or right) component pair is an
// edge in left's (or right's) simple graph. NFA-intersection construction
// is the dominant cost and runs over a bounded worker pool; results are
// sorted lexicographically by (Left, Right) before interning so node
// indices are reproducible regardless of goroutine scheduling.
func Build(ctx context.Context, left, right *policy.Policy, concurrency int) (*Graph, error) {
	leftLabels := left.SimpleGraph.Nodes()
	rightLabels := right.SimpleGraph.Nodes()

	type candidate struct {
		left, right string
	}

	candidates := make([]candidate, 0, len(leftLabels)*len(rightLabels))
	for _, li := range leftLabels {
		for _, ri := range rightLabels {
			candidates = append(candidates, candidate{left.SimpleGraph.Label(li), right.SimpleGraph.Label(ri)})
		}
	}

	if concurrency <= 0 {
		concurrency = 1
	}

	type result struct {
		node     Node
		nonEmpty bool
	}

	results := make([]result, len(candidates))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)

	for i, c := range candidates {
		i, c := i, c
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			leftFC, ok := left.FileContexts[c.left]
			if !ok {
				return nil
			}
			rightFC, ok := right.FileContexts[c.right]
			if !ok {
				return nil
			}

			inter := automata.Intersection(leftFC.NFA, rightFC.NFA)
			results[i] = result{node: Node{Left: c.left, Right: c.right}, nonEmpty: !inter.IsEmpty()}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, &ifdiferr.NfaOperationFailed{Op: "build product nodes", Err: err}
	}

	var live []Node
	for _, r := range results {
		if r.nonEmpty {
			live = append(live, r.node)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].Left != live[j].Left {
			return live[i].Left < live[j].Left
		}
		return live[i].Right < live[j].Right
	})

	g := &Graph{index: map[Node]int{}}
	for _, n := range live {
		g.index[n] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}
	g.out = make([]map[int]dirMask, len(g.nodes))
	g.in = make([]map[int]dirMask, len(g.nodes))
	for i := range g.out {
		g.out[i] = map[int]dirMask{}
		g.in[i] = map[int]dirMask{}
	}

	for i, a := range g.nodes {
		if err := ctx.Err(); err != nil {
			return nil, &ifdiferr.NfaOperationFailed{Op: "build product edges", Err: err}
		}
		for j, b := range g.nodes {
			leftSrc, leftOK := left.SimpleGraph.Index(a.Left)
			leftDst, leftOK2 := left.SimpleGraph.Index(b.Left)
			if leftOK && leftOK2 && left.SimpleGraph.HasEdge(leftSrc, leftDst) {
				g.addEdge(i, j, DirLeft)
			}
			rightSrc, rightOK := right.SimpleGraph.Index(a.Right)
			rightDst, rightOK2 := right.SimpleGraph.Index(b.Right)
			if rightOK && rightOK2 && right.SimpleGraph.HasEdge(rightSrc, rightDst) {
				g.addEdge(i, j, DirRight)
			}
		}
	}

	return g, nil
}

func (g *Graph) addEdge(src, dst int, dir Direction) {
	g.out[src][dst] = g.out[src][dst].set(dir)
	g.in[dst][src] = g.in[dst][src].set(dir)
}

// HasEdgeDir reports whether src->dst exists with the given direction tag.
func (g *Graph) HasEdgeDir(src, dst int, dir Direction) bool {
	return g.out[src][dst].has(dir)
}

// OutEdges returns every outgoing edge of node i, one per direction present.
func (g *Graph) OutEdges(i int) []Edge {
	var out []Edge
	for dst, mask := range g.out[i] {
		if mask.has(DirLeft) {
			out = append(out, Edge{Src: i, Dst: dst, Dir: DirLeft})
		}
		if mask.has(DirRight) {
			out = append(out, Edge{Src: i, Dst: dst, Dir: DirRight})
		}
	}
	return out
}

// InEdges returns every incoming edge of node i, one per direction present.
func (g *Graph) InEdges(i int) []Edge {
	var out []Edge
	for src, mask := range g.in[i] {
		if mask.has(DirLeft) {
			out = append(out, Edge{Src: src, Dst: i, Dir: DirLeft})
		}
		if mask.has(DirRight) {
			out = append(out, Edge{Src: src, Dst: i, Dir: DirRight})
		}
	}
	return out
}

// HasPathDirection reports whether dst is reachable from src following
// only edges tagged dir, via plain BFS — the original's InfoFlowGraph.has_path
// conflated "any path" with "a same-direction path" through a synthetic
// edge-weight hack; this is the explicit replacement (REDESIGN FLAG).
func (g *Graph) HasPathDirection(src, dst int, dir Direction) bool {
	if src == dst {
		return true
	}
	visited := map[int]bool{src: true}
	queue := []int{src}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, e := range g.OutEdges(n) {
			if e.Dir != dir || visited[e.Dst] {
				continue
			}
			if e.Dst == dst {
				return true
			}
			visited[e.Dst] = true
			queue = append(queue, e.Dst)
		}
	}
	return false
}

// String renders a Node as "(left,right)" for debugging.
func (n Node) String() string { return fmt.Sprintf("(%s,%s)", n.Left, n.Right) }
