// Package gmltext implements the text-attribute (de)serialization used by
// the on-disk graph cache (db/graph.gml, db/simple.gml): rendering a
// policygraph.Graph's typed attributes (EdgeType, SecurityLvl, omitted-label
// tuples, permission sets) as flat strings and parsing them back, the same
// destringizer/stringizer split the original's nx.read_gml/write_gml calls
// use (Policy._load_graph's attr_to_str/str_to_attr closures).
package gmltext

import (
	"fmt"
	"regexp"
	"strings"
)

// attrPattern dispatches a flattened attribute string to its kind, mirroring
// the original's single compiled regex with named groups (type/set/tuple/string).
var attrPattern = regexp.MustCompile(`(?P<type>^(READ|WRITE|UNKN|ADDL|NONE)$)|(?P<set>^\{.*\}$)|(?P<tuple>^\(.*\)$)`)

// literalPattern extracts single-quoted elements out of a {set} or (tuple)
// literal, e.g. "{'read', 'write'}" -> ["read", "write"].
var literalPattern = regexp.MustCompile(`'(.*?)'`)

// Stringize renders a node/edge attribute to its flat-text form.
func Stringize(attr any) string {
	switch v := attr.(type) {
	case bool:
		if v {
			return "1"
		}
		return "0"
	case []string:
		return setLiteral(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func setLiteral(items []string) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('\'')
		b.WriteString(item)
		b.WriteByte('\'')
	}
	b.WriteByte('}')
	return b.String()
}

func tupleLiteral(items []string) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('\'')
		b.WriteString(item)
		b.WriteByte('\'')
	}
	b.WriteByte(')')
	return b.String()
}

// AttrKind classifies a destringized attribute.
type AttrKind int

const (
	KindString AttrKind = iota
	KindType
	KindSet
	KindTuple
)

// Destringize parses a flat attribute string back into its kind and the
// list of elements it carries (a single element for KindString/KindType).
func Destringize(flat string) (AttrKind, []string, error) {
	match := attrPattern.FindStringSubmatch(flat)
	if match == nil {
		return KindString, []string{flat}, nil
	}
	names := attrPattern.SubexpNames()
	for i, group := range match {
		if group == "" || names[i] == "" {
			continue
		}
		switch names[i] {
		case "type":
			return KindType, []string{flat}, nil
		case "set":
			return KindSet, literalElements(flat), nil
		case "tuple":
			return KindTuple, literalElements(flat), nil
		}
	}
	return KindString, []string{flat}, nil
}

func literalElements(flat string) []string {
	matches := literalPattern.FindAllStringSubmatch(flat, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
