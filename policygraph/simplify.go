package policygraph

// Simplify returns the subject-only contraction of g: nodes iterated in
// ascending degree (ties broken by label order), every non-object node is
// removed and its in/out neighbors are joined by a synthesized ADDL edge
// recording the contracted label, unless a direct edge between them
// already exists. g itself is left untouched.
func Simplify(g *Graph) *Graph {
	simple := g.clone()

	for _, node := range g.sortedByDegree() {
		if simple.nodes[node].IsObject {
			continue
		}

		inEdges := simple.InEdges(node)
		outEdges := simple.OutEdges(node)

		for _, inEdge := range inEdges {
			if inEdge.Src == node {
				continue
			}
			for _, outEdge := range outEdges {
				if outEdge.Dst == node {
					continue
				}
				if simple.HasEdge(inEdge.Src, outEdge.Dst) {
					continue
				}

				omitted := []string{simple.labels[node]}
				if inEdge.Type.Has(EdgeAddl) {
					omitted = append(omitted, inEdge.Omitted...)
				}
				if outEdge.Type.Has(EdgeAddl) {
					omitted = append(omitted, outEdge.Omitted...)
				}
				simple.addADDLEdge(inEdge.Src, outEdge.Dst, omitted)
			}
		}

		simple.removeNode(node)
	}

	return simple
}

// clone returns a deep-enough copy of g for Simplify to mutate freely: node
// and edge slices are copied, but Perms maps are shared (Simplify never
// mutates an existing edge's Perms).
func (g *Graph) clone() *Graph {
	c := &Graph{
		labels:  append([]string(nil), g.labels...),
		index:   make(map[string]int, len(g.index)),
		nodes:   append([]Node(nil), g.nodes...),
		deleted: append([]bool(nil), g.deleted...),
		edges:   append([]Edge(nil), g.edges...),
	}
	for k, v := range g.index {
		c.index[k] = v
	}
	c.out = make([]map[int]int, len(g.out))
	c.rebuildOut()
	return c
}
