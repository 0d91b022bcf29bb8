package policygraph

import (
	"log/slog"

	"github.com/seanpol/ifdif/filecontext"
	"github.com/seanpol/ifdif/permmap"
)

// AVRule is an allow rule: source, target and the granted permission set
// under a given object class.
type AVRule interface {
	Source() string
	Target() string
	Class() string
	Perms() []string
}

// TERule is a type_transition rule: a process running as Source,
// transitioning on an object labeled Target, ends up running as Default.
type TERule interface {
	Source() string
	Target() string
	Default() string
}

// Build constructs the full information-flow graph from a stream of allow
// and type_transition rules, per spec.md §4.4. missingContexts collects
// type_transition targets that are not known object labels (diagnostic
// only, never fatal).
func Build(avRules []AVRule, teRules []TERule, pm *permmap.Map, fcMap map[string]*filecontext.FileContext) (*Graph, map[string]struct{}) {
	g := NewGraph()
	missing := map[string]struct{}{}

	for _, rule := range avRules {
		flow := pm.RuleInfoFlow(rule)
		u, v := rule.Source(), rule.Target()

		if len(flow.ReadPerms) > 0 {
			g.AddEdge(v, u, EdgeRead, flow.ReadPerms)
		}
		if len(flow.WritePerms) > 0 {
			g.AddEdge(u, v, EdgeWrite, flow.WritePerms)
		}
		if len(flow.UnknownPerms) > 0 {
			g.AddEdge(v, u, EdgeUnkn, flow.UnknownPerms)
			g.AddEdge(u, v, EdgeUnkn, flow.UnknownPerms)
		}
	}
	slog.Debug("processed allow rules", "component", "policygraph", "nodes", g.NumNodes(), "edges", len(g.edges))

	for label := range fcMap {
		g.NodeByLabel(label).IsObject = true
	}
	slog.Debug("processed file contexts", "component", "policygraph", "nodes", g.NumNodes())

	for _, rule := range teRules {
		target := rule.Target()
		if idx, ok := g.Index(target); !ok || !g.Node(idx).IsObject {
			missing[target] = struct{}{}
		}

		subject := g.NodeByLabel(rule.Default())
		transition := Transition{Source: rule.Source(), FCLabel: target}
		subject.IsSubject = true
		subject.Transitions = append(subject.Transitions, transition)
	}
	slog.Debug("processed type transitions", "component", "policygraph", "nodes", g.NumNodes())
	if len(missing) > 0 {
		slog.Warn("missing contexts in type transitions", "component", "policygraph", "count", len(missing))
	}

	return g, missing
}
