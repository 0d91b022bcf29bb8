package policy

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/seanpol/ifdif/automata"
)

// FCDiffResult is the outcome of diffing two plat_file_contexts files
// line-by-line, per spec.md §4.8.
type FCDiffResult struct {
	Delta   []string
	Removed int
	Added   int
}

func normalizeLine(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

func readNormalizedLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(raw), "\n") {
		lines = append(lines, normalizeLine(line))
	}
	return lines, nil
}

// FCDiff diffs p's plat_file_contexts against other's, normalizing
// whitespace on each line before comparing.
func (p *Policy) FCDiff(other *Policy) (FCDiffResult, error) {
	left, err := readNormalizedLines(p.Path + "/plat_file_contexts")
	if err != nil {
		return FCDiffResult{}, err
	}
	right, err := readNormalizedLines(other.Path + "/plat_file_contexts")
	if err != nil {
		return FCDiffResult{}, err
	}

	delta := lineDiff(left, right)
	result := FCDiffResult{Delta: delta}
	for _, line := range delta {
		switch {
		case strings.HasPrefix(line, "- "):
			result.Removed++
		case strings.HasPrefix(line, "+ "):
			result.Added++
		}
	}
	return result, nil
}

// TypeDiffResult is the outcome of diffing two policies' graph node and
// edge sets, per spec.md §4.8.
type TypeDiffResult struct {
	NodesOnlySelf  []string
	NodesOnlyOther []string
	EdgesOnlySelf  []string
	EdgesOnlyOther []string
}

func edgeKey(src, dst string) string { return fmt.Sprintf("%s -> %s", src, dst) }

func nodeLabelSet(p *Policy) map[string]struct{} {
	set := make(map[string]struct{}, p.Graph.NumNodes())
	for _, idx := range p.Graph.Nodes() {
		set[p.Graph.Label(idx)] = struct{}{}
	}
	return set
}

func edgeKeySet(p *Policy) map[string]struct{} {
	set := make(map[string]struct{})
	for _, e := range p.Graph.Edges() {
		set[edgeKey(p.Graph.Label(e.Src), p.Graph.Label(e.Dst))] = struct{}{}
	}
	return set
}

func setDifference(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// TypeDiff reports nodes and edges present in p's graph but not other's,
// and vice versa.
func (p *Policy) TypeDiff(other *Policy) TypeDiffResult {
	selfNodes, otherNodes := nodeLabelSet(p), nodeLabelSet(other)
	selfEdges, otherEdges := edgeKeySet(p), edgeKeySet(other)

	return TypeDiffResult{
		NodesOnlySelf:  setDifference(selfNodes, otherNodes),
		NodesOnlyOther: setDifference(otherNodes, selfNodes),
		EdgesOnlySelf:  setDifference(selfEdges, otherEdges),
		EdgesOnlyOther: setDifference(otherEdges, selfEdges),
	}
}

// SecurityLvsDiff finds labels that are UNTRUSTED in other and can reach a
// CRITICAL label in other's own graph, but either don't exist in p or
// can't reach any of p's CRITICAL labels there: a security-level
// regression. It returns those labels (newly exposed in other relative to
// p) plus the minimized NFA of paths that, in other, resolve to any
// UNTRUSTED label reaching CRITICAL (newly exposed or not), minus the
// paths that, in p, resolve to such a label already reaching CRITICAL in
// p, per spec.md §4.8/§9.
func (p *Policy) SecurityLvsDiff(other *Policy) ([]string, *automata.NFA, error) {
	criticalSelf := p.CriticalLabels()
	criticalOther := other.CriticalLabels()

	initialSelf := map[string]struct{}{}
	initialOther := map[string]struct{}{}

	for _, source := range other.UntrustedLabels() {
		if idx, ok := p.Graph.Index(source); ok {
			for _, target := range criticalSelf {
				tIdx, ok := p.Graph.Index(target)
				if !ok {
					continue
				}
				if p.Graph.HasPath(idx, tIdx) {
					initialSelf[source] = struct{}{}
					break
				}
			}
		}

		otherIdx, ok := other.Graph.Index(source)
		if !ok {
			continue
		}
		for _, target := range criticalOther {
			tIdx, ok := other.Graph.Index(target)
			if !ok {
				continue
			}
			if other.Graph.HasPath(otherIdx, tIdx) {
				initialOther[source] = struct{}{}
				break
			}
		}
	}

	fcSelf := automata.Empty()
	for label := range initialSelf {
		if fc, ok := p.FileContexts[label]; ok {
			fcSelf = automata.Union(fcSelf, fc.NFA)
		}
	}
	fcOther := automata.Empty()
	for label := range initialOther {
		if fc, ok := other.FileContexts[label]; ok {
			fcOther = automata.Union(fcOther, fc.NFA)
		}
	}

	minimal := automata.Minimize(automata.Intersection(fcOther, automata.Complement(fcSelf)))

	exposed := setDifference(initialOther, initialSelf)
	return exposed, minimal, nil
}
