// Package automata implements the regex-NFA kernel: construction, union,
// intersection, complement, minimization and emptiness testing of finite
// automata over the bounded printable-ASCII alphabet SELinux file_contexts
// regexes are evaluated against.
package automata

import (
	"fmt"
	"sort"
)

// MinByte and MaxByte bound the alphabet this kernel operates over: the
// printable ASCII range, deliberately excluding control characters.
const (
	MinByte byte = 32
	MaxByte byte = 126
)

// AlphabetSize is the number of symbols in the bounded alphabet.
const AlphabetSize = int(MaxByte) - int(MinByte) + 1

// InAlphabet reports whether b falls within [MinByte, MaxByte].
func InAlphabet(b byte) bool {
	return b >= MinByte && b <= MaxByte
}

// state is an opaque index into an NFA's state slice.
type state int

// NFA is a (possibly nondeterministic) finite automaton over the bounded
// byte alphabet. States with at most one destination per symbol and no
// epsilon transitions are, by construction, a DFA; Determinize produces
// exactly that shape.
type NFA struct {
	start   state
	accept  map[state]bool
	trans   []map[byte][]state // trans[s][b] = destinations on symbol b
	epsilon [][]state          // epsilon[s] = epsilon-destinations of s
}

func newEmptyNFA() *NFA {
	n := &NFA{accept: map[state]bool{}}
	n.start = n.addState()
	return n
}

func (n *NFA) addState() state {
	n.trans = append(n.trans, map[byte][]state{})
	n.epsilon = append(n.epsilon, nil)
	return state(len(n.trans) - 1)
}

func (n *NFA) addSymbolEdge(from state, b byte, to state) {
	n.trans[from][b] = append(n.trans[from][b], to)
}

func (n *NFA) addEpsilonEdge(from, to state) {
	n.epsilon[from] = append(n.epsilon[from], to)
}

func (n *NFA) numStates() int { return len(n.trans) }

// Empty returns the NFA accepting no strings.
func Empty() *NFA {
	return newEmptyNFA()
}

// EmptyString returns the NFA accepting only the empty string.
func EmptyString() *NFA {
	n := newEmptyNFA()
	n.accept[n.start] = true
	return n
}

// epsilonClosure returns the set of states reachable from any state in ss
// via zero or more epsilon transitions.
func (n *NFA) epsilonClosure(ss []state) map[state]bool {
	closure := map[state]bool{}
	stack := append([]state{}, ss...)
	for _, s := range ss {
		closure[s] = true
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, t := range n.epsilon[s] {
			if !closure[t] {
				closure[t] = true
				stack = append(stack, t)
			}
		}
	}
	return closure
}

// IsEmpty reports whether the automaton's language is empty: no accepting
// state is reachable from the start state.
func (n *NFA) IsEmpty() bool {
	visited := map[state]bool{}
	stack := []state{n.start}
	visited[n.start] = true
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.accept[s] {
			return false
		}
		for _, t := range n.epsilon[s] {
			if !visited[t] {
				visited[t] = true
				stack = append(stack, t)
			}
		}
		for _, dests := range n.trans[s] {
			for _, t := range dests {
				if !visited[t] {
					visited[t] = true
					stack = append(stack, t)
				}
			}
		}
	}
	return true
}

// Union returns an NFA whose language is the union of a's and b's.
func Union(a, b *NFA) *NFA {
	n := &NFA{accept: map[state]bool{}}
	offsetB := a.numStates()
	n.start = state(offsetB + b.numStates())

	for i := 0; i < a.numStates(); i++ {
		n.addState()
	}
	for i := 0; i < b.numStates(); i++ {
		n.addState()
	}
	n.addState() // the new start state, index n.start

	copyInto(n, a, 0)
	copyInto(n, b, offsetB)

	n.addEpsilonEdge(n.start, shift(a.start, 0))
	n.addEpsilonEdge(n.start, shift(b.start, offsetB))

	return n
}

// copyInto copies every transition and accept flag of src into dst with
// every state index shifted by off.
func copyInto(dst, src *NFA, off int) {
	for s := 0; s < src.numStates(); s++ {
		from := shift(state(s), off)
		if src.accept[state(s)] {
			dst.accept[from] = true
		}
		for _, t := range src.epsilon[s] {
			dst.addEpsilonEdge(from, shift(t, off))
		}
		for b, dests := range src.trans[s] {
			for _, t := range dests {
				dst.addSymbolEdge(from, b, shift(t, off))
			}
		}
	}
}

func shift(s state, off int) state { return s + state(off) }

// Intersection returns an NFA whose language is the intersection of a's and
// b's, built via the standard product construction: product state (p,q)
// moves on symbol c to (p',q') whenever p moves to p' on c in a and q moves
// to q' on c in b; epsilon moves advance either component independently.
func Intersection(a, b *NFA) *NFA {
	n := &NFA{accept: map[state]bool{}}

	index := map[[2]state]state{}
	var order [][2]state

	get := func(p, q state) state {
		key := [2]state{p, q}
		if s, ok := index[key]; ok {
			return s
		}
		s := n.addState()
		index[key] = s
		order = append(order, key)
		if a.accept[p] && b.accept[q] {
			n.accept[s] = true
		}
		return s
	}

	n.start = get(a.start, b.start)

	for i := 0; i < len(order); i++ {
		p, q := order[i][0], order[i][1]
		src := index[order[i]]

		for _, pp := range a.epsilon[p] {
			n.addEpsilonEdge(src, get(pp, q))
		}
		for _, qq := range b.epsilon[q] {
			n.addEpsilonEdge(src, get(p, qq))
		}

		for sym, pDests := range a.trans[p] {
			qDests, ok := b.trans[q][sym]
			if !ok {
				continue
			}
			for _, pp := range pDests {
				for _, qq := range qDests {
					n.addSymbolEdge(src, sym, get(pp, qq))
				}
			}
		}
	}

	return n
}

// subsetKey is a canonical representation of a set of states usable as a
// Go map key.
func subsetKey(ss map[state]bool) string {
	ids := make([]int, 0, len(ss))
	for s := range ss {
		ids = append(ids, int(s))
	}
	sort.Ints(ids)
	return fmt.Sprint(ids)
}

// Determinize performs subset construction over the bounded alphabet,
// producing a *total* DFA: every state has exactly one outgoing transition
// per symbol, including an explicit dead state for symbols with no
// transition in the source NFA. A total DFA is required for Complement.
func (n *NFA) Determinize() *NFA {
	d := &NFA{accept: map[state]bool{}}

	startSet := n.epsilonClosure([]state{n.start})
	index := map[string]state{}
	var order []map[state]bool

	key := subsetKey(startSet)
	d.start = d.addState()
	index[key] = d.start
	order = append(order, startSet)
	if anyAccept(n, startSet) {
		d.accept[d.start] = true
	}

	deadKey := "dead"
	var dead state = -1

	for i := 0; i < len(order); i++ {
		set := order[i]
		src := index[subsetKey(set)]

		for b := MinByte; ; b++ {
			var dests []state
			for s := range set {
				dests = append(dests, n.trans[s][b]...)
			}

			if len(dests) == 0 {
				if dead == -1 {
					dead = d.addState()
					index[deadKey] = dead
				}
				d.addSymbolEdge(src, b, dead)
			} else {
				closure := n.epsilonClosure(dests)
				ckey := subsetKey(closure)
				next, ok := index[ckey]
				if !ok {
					next = d.addState()
					index[ckey] = next
					order = append(order, closure)
					if anyAccept(n, closure) {
						d.accept[next] = true
					}
				}
				d.addSymbolEdge(src, b, next)
			}

			if b == MaxByte {
				break
			}
		}
	}

	if dead != -1 {
		for b := MinByte; ; b++ {
			d.addSymbolEdge(dead, b, dead)
			if b == MaxByte {
				break
			}
		}
	}

	return d
}

func anyAccept(n *NFA, set map[state]bool) bool {
	for s := range set {
		if n.accept[s] {
			return true
		}
	}
	return false
}

// Complement returns the complement of a with respect to the bounded
// alphabet: a must first be determinized into a total DFA, then accepting
// and non-accepting states are swapped.
func Complement(a *NFA) *NFA {
	d := a.Determinize()
	c := &NFA{start: d.start, trans: d.trans, epsilon: d.epsilon, accept: map[state]bool{}}
	for s := 0; s < d.numStates(); s++ {
		if !d.accept[state(s)] {
			c.accept[state(s)] = true
		}
	}
	return c
}

// Reverse returns the automaton whose language is the reverse of a's: every
// word w is accepted iff reverse(w) is accepted by a.
func (n *NFA) Reverse() *NFA {
	r := &NFA{accept: map[state]bool{}}
	for i := 0; i < n.numStates(); i++ {
		r.addState()
	}
	newStart := r.addState()
	for s := 0; s < n.numStates(); s++ {
		if n.accept[state(s)] {
			r.addEpsilonEdge(newStart, state(s))
		}
		for _, t := range n.epsilon[s] {
			r.addEpsilonEdge(t, state(s))
		}
		for b, dests := range n.trans[s] {
			for _, t := range dests {
				r.addSymbolEdge(t, b, state(s))
			}
		}
	}
	r.start = newStart
	r.accept[n.start] = true
	return r
}

// Minimize returns a minimal DFA equivalent to a, via the Brzozowski
// double-reversal algorithm: reverse, determinize, reverse, determinize.
// Each determinize step discards unreachable states, and the second pass
// over the twice-reversed automaton yields a minimal result.
func Minimize(a *NFA) *NFA {
	return a.Reverse().Determinize().Reverse().Determinize()
}

// ShortestWords returns one shortest accepted word for a, or nil if the
// language is empty. Ties are broken by the lexicographically smallest
// choice of bytes at each BFS step, since the search below expands symbols
// in ascending order.
func ShortestWords(a *NFA) []byte {
	d := a.Determinize()
	type item struct {
		s    state
		word []byte
	}
	visited := map[state]bool{d.start: true}
	queue := []item{{d.start, []byte{}}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if d.accept[cur.s] {
			return cur.word
		}
		for b := MinByte; ; b++ {
			for _, t := range d.trans[cur.s][b] {
				if !visited[t] {
					visited[t] = true
					next := append(append([]byte{}, cur.word...), b)
					queue = append(queue, item{t, next})
				}
			}
			if b == MaxByte {
				break
			}
		}
	}
	return nil
}
