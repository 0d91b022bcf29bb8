package automata

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Serialize writes a's states, start, accepts and transitions as plain
// text. The format is deliberately simple (no external automata library is
// part of this module's dependency surface — see DESIGN.md) but round-trips
// exactly via Deserialize, which is all the persistence contract in
// spec.md §4.2 requires.
func Serialize(n *NFA) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "states %d\n", n.numStates())
	fmt.Fprintf(&sb, "start %d\n", n.start)

	accepts := make([]int, 0, len(n.accept))
	for s := range n.accept {
		accepts = append(accepts, int(s))
	}
	sort.Ints(accepts)
	strs := make([]string, len(accepts))
	for i, a := range accepts {
		strs[i] = strconv.Itoa(a)
	}
	fmt.Fprintf(&sb, "accept %s\n", strings.Join(strs, " "))

	for s := 0; s < n.numStates(); s++ {
		eps := n.epsilon[s]
		sort.Slice(eps, func(i, j int) bool { return eps[i] < eps[j] })
		for _, t := range eps {
			fmt.Fprintf(&sb, "eps %d %d\n", s, t)
		}

		bytesUsed := make([]int, 0, len(n.trans[s]))
		for b := range n.trans[s] {
			bytesUsed = append(bytesUsed, int(b))
		}
		sort.Ints(bytesUsed)
		for _, bi := range bytesUsed {
			b := byte(bi)
			dests := append([]state{}, n.trans[s][b]...)
			sort.Slice(dests, func(i, j int) bool { return dests[i] < dests[j] })
			for _, t := range dests {
				fmt.Fprintf(&sb, "trans %d %d %d\n", s, b, t)
			}
		}
	}

	return sb.String()
}

// Deserialize parses the text format produced by Serialize back into an
// NFA.
func Deserialize(text string) (*NFA, error) {
	n := &NFA{accept: map[state]bool{}}

	scanner := bufio.NewScanner(strings.NewReader(text))
	numStates := -1
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "states":
			count, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("parse states count: %w", err)
			}
			numStates = count
			for i := 0; i < numStates; i++ {
				n.addState()
			}

		case "start":
			s, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("parse start state: %w", err)
			}
			n.start = state(s)

		case "accept":
			for _, f := range fields[1:] {
				s, err := strconv.Atoi(f)
				if err != nil {
					return nil, fmt.Errorf("parse accept state: %w", err)
				}
				n.accept[state(s)] = true
			}

		case "eps":
			from, to, err := parseTwo(fields[1], fields[2])
			if err != nil {
				return nil, err
			}
			n.addEpsilonEdge(state(from), state(to))

		case "trans":
			if len(fields) != 4 {
				return nil, fmt.Errorf("malformed trans line %q", line)
			}
			from, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, err
			}
			b, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, err
			}
			to, err := strconv.Atoi(fields[3])
			if err != nil {
				return nil, err
			}
			n.addSymbolEdge(state(from), byte(b), state(to))

		default:
			return nil, fmt.Errorf("unrecognised serialized NFA line %q", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if numStates < 0 {
		return nil, fmt.Errorf("serialized NFA missing states count")
	}

	return n, nil
}

func parseTwo(a, b string) (int, int, error) {
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
