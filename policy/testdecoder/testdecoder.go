// Package testdecoder is an in-memory policy.PolicyDecoder fixture for
// tests: rules are supplied as plain Go slices instead of being parsed
// from any on-disk format.
package testdecoder

import "github.com/seanpol/ifdif/policygraph"

// AVRule is a fixture allow rule.
type AVRule struct {
	SrcType, DstType, ClassName string
	PermList                    []string
}

func (r AVRule) Source() string  { return r.SrcType }
func (r AVRule) Target() string  { return r.DstType }
func (r AVRule) Class() string   { return r.ClassName }
func (r AVRule) Perms() []string { return r.PermList }

// TERule is a fixture type_transition rule.
type TERule struct {
	SrcType, DstType, DefaultType string
}

func (r TERule) Source() string  { return r.SrcType }
func (r TERule) Target() string  { return r.DstType }
func (r TERule) Default() string { return r.DefaultType }

// Decoder returns AVList/TEList verbatim.
type Decoder struct {
	AVList []AVRule
	TEList []TERule
}

func (d Decoder) AVRules() ([]policygraph.AVRule, error) {
	out := make([]policygraph.AVRule, len(d.AVList))
	for i, r := range d.AVList {
		out[i] = r
	}
	return out, nil
}

func (d Decoder) TERules() ([]policygraph.TERule, error) {
	out := make([]policygraph.TERule, len(d.TEList))
	for i, r := range d.TEList {
		out[i] = r
	}
	return out, nil
}
