package gmltext

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/seanpol/ifdif/policygraph"
)

// WriteGraph renders g in the on-disk cache format used by db/graph.gml and
// db/simple.gml: a nx.write_gml-shaped nested bracket block, with typed
// attributes flattened by Stringize the same way the original's
// attr_to_str closure does.
func WriteGraph(g *policygraph.Graph, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "graph [")
	fmt.Fprintln(bw, "  directed 1")

	ids := g.Nodes()
	sort.Ints(ids)
	for _, id := range ids {
		n := g.Node(id)
		fmt.Fprintln(bw, "  node [")
		fmt.Fprintf(bw, "    id %d\n", id)
		fmt.Fprintf(bw, "    label \"%s\"\n", n.Label)
		fmt.Fprintf(bw, "    issubject %s\n", Stringize(n.IsSubject))
		fmt.Fprintf(bw, "    isobject %s\n", Stringize(n.IsObject))
		fmt.Fprintf(bw, "    securitylevel \"%s\"\n", n.SecurityLevel.String())
		for _, tr := range n.Transitions {
			fmt.Fprintf(bw, "    transition \"%s\"\n", tupleLiteral([]string{tr.Source, tr.FCLabel}))
		}
		fmt.Fprintln(bw, "  ]")
	}

	for _, id := range ids {
		for _, e := range g.OutEdges(id) {
			fmt.Fprintln(bw, "  edge [")
			fmt.Fprintf(bw, "    source %d\n", e.Src)
			fmt.Fprintf(bw, "    target %d\n", e.Dst)
			fmt.Fprintf(bw, "    type \"%s\"\n", e.Type.String())
			fmt.Fprintf(bw, "    perms \"%s\"\n", setLiteral(sortedKeys(e.Perms)))
			if e.Type.Has(policygraph.EdgeAddl) && len(e.Omitted) > 0 {
				fmt.Fprintf(bw, "    omitted \"%s\"\n", tupleLiteral(e.Omitted))
			}
			fmt.Fprintln(bw, "  ]")
		}
	}

	fmt.Fprintln(bw, "]")
	return bw.Flush()
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var (
	nodeOpen   = regexp.MustCompile(`^node \[$`)
	edgeOpen   = regexp.MustCompile(`^edge \[$`)
	blockClose = regexp.MustCompile(`^\]$`)
	kvLine     = regexp.MustCompile(`^(\w+) (.*)$`)
)

// ReadGraph parses the format WriteGraph produces back into a fresh
// *policygraph.Graph.
func ReadGraph(r io.Reader) (*policygraph.Graph, error) {
	g := policygraph.NewGraph()
	scanner := bufio.NewScanner(r)

	// fileIDToLabel maps the "id"/"source"/"target" values as written by
	// WriteGraph (the original graph's possibly-non-contiguous node
	// indices) back to labels, since ReadGraph re-interns nodes via
	// EnsureNode in encounter order and so may assign different indices.
	fileIDToLabel := map[int]string{}

	var lineNum int
	nextLine := func() (string, bool) {
		for scanner.Scan() {
			lineNum++
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			return line, true
		}
		return "", false
	}

	for {
		line, ok := nextLine()
		if !ok {
			break
		}
		switch {
		case nodeOpen.MatchString(line):
			if err := readNode(g, nextLine, fileIDToLabel); err != nil {
				return nil, fmt.Errorf("gmltext: line %d: %w", lineNum, err)
			}
		case edgeOpen.MatchString(line):
			if err := readEdge(g, nextLine, fileIDToLabel); err != nil {
				return nil, fmt.Errorf("gmltext: line %d: %w", lineNum, err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

func readNode(g *policygraph.Graph, nextLine func() (string, bool), fileIDToLabel map[int]string) error {
	var id int
	var label string
	var isSubject, isObject bool
	var level string
	var transitions [][2]string

	for {
		line, ok := nextLine()
		if !ok {
			return fmt.Errorf("unterminated node block")
		}
		if blockClose.MatchString(line) {
			break
		}
		m := kvLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key, value := m[1], unquote(m[2])
		switch key {
		case "id":
			n, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			id = n
		case "label":
			label = value
		case "issubject":
			isSubject = value == "1"
		case "isobject":
			isObject = value == "1"
		case "securitylevel":
			level = value
		case "transition":
			_, items, err := Destringize(value)
			if err != nil || len(items) != 2 {
				return fmt.Errorf("malformed transition literal %q", value)
			}
			transitions = append(transitions, [2]string{items[0], items[1]})
		}
	}

	idx := g.EnsureNode(label)
	node := g.Node(idx)
	node.IsSubject = isSubject
	node.IsObject = isObject
	node.SecurityLevel = parseSecurityLvl(level)
	for _, tr := range transitions {
		node.Transitions = append(node.Transitions, policygraph.Transition{Source: tr[0], FCLabel: tr[1]})
	}
	fileIDToLabel[id] = label
	return nil
}

func readEdge(g *policygraph.Graph, nextLine func() (string, bool), fileIDToLabel map[int]string) error {
	var src, dst int
	var typ string
	var perms []string
	var omitted []string

	for {
		line, ok := nextLine()
		if !ok {
			return fmt.Errorf("unterminated edge block")
		}
		if blockClose.MatchString(line) {
			break
		}
		m := kvLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key, value := m[1], m[2]
		switch key {
		case "source":
			n, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			src = n
		case "target":
			n, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			dst = n
		case "type":
			typ = unquote(value)
		case "perms":
			_, items, err := Destringize(unquote(value))
			if err != nil {
				return err
			}
			perms = items
		case "omitted":
			_, items, err := Destringize(unquote(value))
			if err != nil {
				return err
			}
			omitted = items
		}
	}

	srcLabel, ok := fileIDToLabel[src]
	if !ok {
		return fmt.Errorf("edge references unknown node id %d", src)
	}
	dstLabel, ok := fileIDToLabel[dst]
	if !ok {
		return fmt.Errorf("edge references unknown node id %d", dst)
	}
	g.AddEdge(srcLabel, dstLabel, parseEdgeType(typ), perms)
	if len(omitted) > 0 {
		srcIdx, _ := g.Index(srcLabel)
		dstIdx, _ := g.Index(dstLabel)
		if e, ok := g.Edge(srcIdx, dstIdx); ok {
			e.Omitted = omitted
		}
	}
	return nil
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func parseEdgeType(name string) policygraph.EdgeType {
	var t policygraph.EdgeType
	for _, part := range strings.Split(name, "|") {
		switch part {
		case "READ":
			t = t.Union(policygraph.EdgeRead)
		case "WRITE":
			t = t.Union(policygraph.EdgeWrite)
		case "UNKN":
			t = t.Union(policygraph.EdgeUnkn)
		case "ADDL":
			t = t.Union(policygraph.EdgeAddl)
		}
	}
	return t
}

func parseSecurityLvl(name string) policygraph.SecurityLvl {
	var lvl policygraph.SecurityLvl
	for _, part := range strings.Split(name, "|") {
		switch part {
		case "UNTRUSTED":
			lvl = lvl.Union(policygraph.LvlUntrusted)
		case "TRUSTED":
			lvl = lvl.Union(policygraph.LvlTrusted)
		case "CRITICAL":
			lvl = lvl.Union(policygraph.LvlCritical)
		}
	}
	return lvl
}
