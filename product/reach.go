package product

import "context"

// NodeSet is a set of product node indices.
type NodeSet map[int]struct{}

func newNodeSet(indices []int) NodeSet {
	s := make(NodeSet, len(indices))
	for _, i := range indices {
		s[i] = struct{}{}
	}
	return s
}

// Slice returns s's members as a sorted-by-insertion-undefined slice (order
// is not meaningful; callers that need determinism should sort it).
func (s NodeSet) Slice() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	return out
}

func eventuallyReachable(ctx context.Context, g *Graph, nodes NodeSet, dir Direction, useIn bool) (NodeSet, error) {
	reachable := NodeSet{}
	var queue []int
	for n := range nodes {
		queue = append(queue, n)
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n := queue[0]
		queue = queue[1:]

		var edges []Edge
		if useIn {
			edges = g.InEdges(n)
		} else {
			edges = g.OutEdges(n)
		}

		for _, e := range edges {
			if e.Dir != dir {
				continue
			}
			candidate := e.Src
			if !useIn {
				candidate = e.Dst
			}
			if _, seen := reachable[candidate]; seen {
				continue
			}
			reachable[candidate] = struct{}{}
			if _, inSeed := nodes[candidate]; !inSeed {
				queue = append(queue, candidate)
			}
		}
	}

	return reachable, nil
}

// EventuallyReach returns every node that can reach some node in nodes via
// a chain of dir-tagged edges: the least fixed point of "predecessor of a
// member, or a predecessor of a predecessor, ...".
func EventuallyReach(ctx context.Context, g *Graph, nodes NodeSet, dir Direction) (NodeSet, error) {
	return eventuallyReachable(ctx, g, nodes, dir, true)
}

// EventuallyReachedBy returns every node reachable from some node in nodes
// via a chain of dir-tagged edges.
func EventuallyReachedBy(ctx context.Context, g *Graph, nodes NodeSet, dir Direction) (NodeSet, error) {
	return eventuallyReachable(ctx, g, nodes, dir, false)
}
