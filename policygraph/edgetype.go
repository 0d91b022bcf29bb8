package policygraph

import "strings"

// EdgeType is a flag set over {READ, WRITE, UNKN, ADDL}.
type EdgeType uint8

const (
	EdgeNone EdgeType = 0
	EdgeRead EdgeType = 1 << (iota - 1)
	EdgeWrite
	EdgeUnkn
	EdgeAddl
)

// EdgeBoth is the union of READ and WRITE.
const EdgeBoth = EdgeRead | EdgeWrite

// Has reports whether t contains every bit of other.
func (t EdgeType) Has(other EdgeType) bool { return t&other == other }

// Union ORs t with other.
func (t EdgeType) Union(other EdgeType) EdgeType { return t | other }

// String renders the flag set as a pipe-joined list of names, in the fixed
// order READ, WRITE, UNKN, ADDL, matching the original's Flag.__repr__.
func (t EdgeType) String() string {
	var names []string
	if t.Has(EdgeRead) {
		names = append(names, "READ")
	}
	if t.Has(EdgeWrite) {
		names = append(names, "WRITE")
	}
	if t.Has(EdgeUnkn) {
		names = append(names, "UNKN")
	}
	if t.Has(EdgeAddl) {
		names = append(names, "ADDL")
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}

// SecurityLvl is a flag set over {UNTRUSTED, TRUSTED, CRITICAL}.
type SecurityLvl uint8

const (
	LvlNone      SecurityLvl = 0
	LvlUntrusted SecurityLvl = 1 << (iota - 1)
	LvlTrusted
	LvlCritical
)

func (l SecurityLvl) Has(other SecurityLvl) bool { return l&other == other }

func (l SecurityLvl) Union(other SecurityLvl) SecurityLvl { return l | other }

func (l SecurityLvl) String() string {
	var names []string
	if l.Has(LvlUntrusted) {
		names = append(names, "UNTRUSTED")
	}
	if l.Has(LvlTrusted) {
		names = append(names, "TRUSTED")
	}
	if l.Has(LvlCritical) {
		names = append(names, "CRITICAL")
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}

// untrustedKeywords, trustedKeywords and criticalKeywords drive ClassifyLabel.
// Hardcoded per spec.md §4.5 / §1's explicit Non-goal that this heuristic
// stay code, not declarative configuration.
var (
	untrustedKeywords = []string{"isolate", "untrust", "danger", "user", "usr", "debug", "network"}
	trustedKeywords   = []string{"trust", "secur"}
	criticalKeywords  = []string{"system", "pol", "critic", "manager"}
)

// ClassifyLabel tags a type label as UNTRUSTED / TRUSTED / CRITICAL by
// case-sensitive substring keyword heuristics. TRUSTED is suppressed when
// the label also contains "untrust", mirroring the original's explicit
// carve-out (a label like untrusted_app must not also read as trusted).
func ClassifyLabel(label string) SecurityLvl {
	var lvl SecurityLvl
	if containsAny(label, untrustedKeywords) {
		lvl |= LvlUntrusted
	}
	if containsAny(label, trustedKeywords) && !strings.Contains(label, "untrust") {
		lvl |= LvlTrusted
	}
	if containsAny(label, criticalKeywords) {
		lvl |= LvlCritical
	}
	return lvl
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
