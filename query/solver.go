package query

import (
	"context"

	"github.com/seanpol/ifdif/internal/ifdiferr"
	"github.com/seanpol/ifdif/policy"
	"github.com/seanpol/ifdif/product"
)

// securityLvlNames are the only identifiers UpArrow.Label resolves as a
// SecurityLvl rather than a literal type label.
var securityLvlNames = map[string]func(*policy.Policy) []string{
	"UNTRUSTED": (*policy.Policy).UntrustedLabels,
	"TRUSTED":   (*policy.Policy).TrustedLabels,
	"CRITICAL":  (*policy.Policy).CriticalLabels,
}

// Eval is the single denotational evaluator for the query language,
// dispatching on f's concrete type the same way solver.py's Solver.model
// dispatches on the AST node's class. left and right are the policies whose
// product graph g is; left is policy index 1, right is policy index 2.
func Eval(ctx context.Context, f Formula, g *product.Graph, left, right *policy.Policy) (product.NodeSet, error) {
	switch n := f.(type) {
	case TruePolicy:
		return allNodes(g), nil

	case UpArrow:
		return evalUpArrow(n, g, left, right)

	case And:
		l, err := Eval(ctx, n.Left, g, left, right)
		if err != nil {
			return nil, err
		}
		r, err := Eval(ctx, n.Right, g, left, right)
		if err != nil {
			return nil, err
		}
		return intersect(l, r), nil

	case Not:
		inner, err := Eval(ctx, n.Inner, g, left, right)
		if err != nil {
			return nil, err
		}
		return complement(allNodes(g), inner), nil

	case Diamond:
		dir, err := dirFor(n.Index)
		if err != nil {
			return nil, err
		}
		inner, err := Eval(ctx, n.Inner, g, left, right)
		if err != nil {
			return nil, err
		}
		return product.EventuallyReach(ctx, g, inner, dir)

	case BDiamond:
		dir, err := dirFor(n.Index)
		if err != nil {
			return nil, err
		}
		inner, err := Eval(ctx, n.Inner, g, left, right)
		if err != nil {
			return nil, err
		}
		return product.EventuallyReachedBy(ctx, g, inner, dir)

	default:
		return nil, &ifdiferr.QueryTypeError{Value: "unknown formula node"}
	}
}

func evalUpArrow(n UpArrow, g *product.Graph, left, right *policy.Policy) (product.NodeSet, error) {
	if n.Label == "" {
		return nil, &ifdiferr.QueryTypeError{Value: n.Label}
	}

	var p *policy.Policy
	switch n.Index {
	case 1:
		p = left
	case 2:
		p = right
	default:
		return nil, &ifdiferr.QueryIndexError{Index: n.Index}
	}

	result := product.NodeSet{}
	if labelsOf, ok := securityLvlNames[n.Label]; ok {
		matching := map[string]struct{}{}
		for _, l := range labelsOf(p) {
			matching[l] = struct{}{}
		}
		for i := 0; i < g.NumNodes(); i++ {
			if _, found := matching[component(g.NodeAt(i), n.Index)]; found {
				result[i] = struct{}{}
			}
		}
		return result, nil
	}

	for i := 0; i < g.NumNodes(); i++ {
		if component(g.NodeAt(i), n.Index) == n.Label {
			result[i] = struct{}{}
		}
	}
	return result, nil
}

func component(n product.Node, index int) string {
	if index == 1 {
		return n.Left
	}
	return n.Right
}

func dirFor(index int) (product.Direction, error) {
	switch index {
	case 1:
		return product.DirLeft, nil
	case 2:
		return product.DirRight, nil
	default:
		return 0, &ifdiferr.QueryIndexError{Index: index}
	}
}

func allNodes(g *product.Graph) product.NodeSet {
	s := make(product.NodeSet, g.NumNodes())
	for i := 0; i < g.NumNodes(); i++ {
		s[i] = struct{}{}
	}
	return s
}

func intersect(a, b product.NodeSet) product.NodeSet {
	out := product.NodeSet{}
	for i := range a {
		if _, ok := b[i]; ok {
			out[i] = struct{}{}
		}
	}
	return out
}

func complement(universe, s product.NodeSet) product.NodeSet {
	out := product.NodeSet{}
	for i := range universe {
		if _, ok := s[i]; !ok {
			out[i] = struct{}{}
		}
	}
	return out
}
