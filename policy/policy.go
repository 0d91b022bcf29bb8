// Package policy bundles one decoded SELinux policy snapshot: its version
// properties, file-context map, full and simplified information-flow
// graphs, and security-level classification, plus the differencing
// operations that compare two such bundles.
package policy

import (
	"log/slog"
	"path/filepath"

	"github.com/seanpol/ifdif/filecontext"
	"github.com/seanpol/ifdif/permmap"
	"github.com/seanpol/ifdif/policygraph"
)

// PolicyDecoder exposes the two rule streams a precompiled SELinux policy
// decomposes into. The concrete decoder (binding to a compiled
// precompiled_sepolicy blob) is an external collaborator out of scope for
// this repo; policy/testdecoder provides an in-memory fixture
// implementation for tests.
type PolicyDecoder interface {
	AVRules() ([]policygraph.AVRule, error)
	TERules() ([]policygraph.TERule, error)
}

// Policy is one loaded policy snapshot.
type Policy struct {
	Path            string
	Properties      Properties
	FileContexts    map[string]*filecontext.FileContext
	Graph           *policygraph.Graph
	SimpleGraph     *policygraph.Graph
	MissingContexts map[string]struct{}
}

// Name is the base name of Path, matching the original's Policy.name.
func (p *Policy) Name() string { return filepath.Base(p.Path) }

// Load decodes one policy snapshot: build.prop properties, the
// plat/vendor file_contexts files, and the decoder's AVRule/TERule
// streams, then builds the full and simplified graphs and tags every
// node's security level.
func Load(path string, decoder PolicyDecoder, pm *permmap.Map, fcFiles []string) (*Policy, error) {
	props, err := LoadProperties(filepath.Join(path, "build.prop"))
	if err != nil {
		return nil, err
	}

	fcMap, err := filecontext.BuildFromFiles(fcFiles)
	if err != nil {
		return nil, err
	}

	avRules, err := decoder.AVRules()
	if err != nil {
		return nil, err
	}
	teRules, err := decoder.TERules()
	if err != nil {
		return nil, err
	}

	graph, missing := policygraph.Build(avRules, teRules, pm, fcMap)
	tagSecurityLevels(graph)
	simple := policygraph.Simplify(graph)

	slog.Info("loaded policy", "component", "policy", "path", path,
		"nodes", graph.NumNodes(), "simple_nodes", simple.NumNodes())

	return &Policy{
		Path:            path,
		Properties:      props,
		FileContexts:    fcMap,
		Graph:           graph,
		SimpleGraph:     simple,
		MissingContexts: missing,
	}, nil
}

func tagSecurityLevels(g *policygraph.Graph) {
	for _, idx := range g.Nodes() {
		node := g.Node(idx)
		node.SecurityLevel = policygraph.ClassifyLabel(node.Label)
	}
}

// labelsWithLevel returns every graph node label carrying every bit of lvl.
func labelsWithLevel(g *policygraph.Graph, lvl policygraph.SecurityLvl) []string {
	var out []string
	for _, idx := range g.Nodes() {
		if g.Node(idx).SecurityLevel.Has(lvl) {
			out = append(out, g.Label(idx))
		}
	}
	return out
}

// UntrustedLabels returns every UNTRUSTED-tagged label in the full graph.
func (p *Policy) UntrustedLabels() []string {
	return labelsWithLevel(p.Graph, policygraph.LvlUntrusted)
}

// TrustedLabels returns every TRUSTED-tagged label in the full graph.
func (p *Policy) TrustedLabels() []string {
	return labelsWithLevel(p.Graph, policygraph.LvlTrusted)
}

// CriticalLabels returns every CRITICAL-tagged label in the full graph.
func (p *Policy) CriticalLabels() []string {
	return labelsWithLevel(p.Graph, policygraph.LvlCritical)
}
