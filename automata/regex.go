package automata

import (
	"fmt"
	"regexp/syntax"
)

// FromRegex compiles a SELinux file_contexts regex into an NFA via Thompson
// construction over the AST produced by the standard library's regexp
// parser. file_contexts regexes have no anchors and always match the whole
// path; the NFA is built straight from the AST, so it accepts exactly the
// whole strings the pattern matches. Package regexp's search/replace
// machinery is never invoked here, only the parser's AST.
func FromRegex(pattern string) (*NFA, error) {
	re, err := syntax.Parse(pattern, syntax.Perl&^syntax.UnicodeGroups)
	if err != nil {
		return nil, fmt.Errorf("parse regex %q: %w", pattern, err)
	}
	re = re.Simplify()

	b := &builder{}
	start, accept, err := b.build(re)
	if err != nil {
		return nil, fmt.Errorf("compile regex %q: %w", pattern, err)
	}

	n := b.n
	n.start = start
	n.accept[accept] = true
	return n, nil
}

// builder accumulates states into a single NFA while recursively compiling
// a regexp/syntax AST via Thompson construction; every sub-build returns
// the (start, accept) pair of a fragment with exactly one accepting state.
type builder struct {
	n *NFA
}

func (b *builder) build(re *syntax.Regexp) (start, accept state, err error) {
	if b.n == nil {
		b.n = &NFA{accept: map[state]bool{}}
	}

	switch re.Op {
	case syntax.OpNoMatch:
		s := b.n.addState()
		e := b.n.addState()
		return s, e, nil // no edges: unreachable accept, empty language

	case syntax.OpEmptyMatch:
		s := b.n.addState()
		e := b.n.addState()
		b.n.addEpsilonEdge(s, e)
		return s, e, nil

	case syntax.OpLiteral:
		s := b.n.addState()
		cur := s
		for _, r := range re.Rune {
			runes := []rune{r}
			if re.Flags&syntax.FoldCase != 0 {
				runes = foldCase(r)
			}
			next := b.n.addState()
			for _, fr := range runes {
				if err := b.addRuneEdge(cur, fr, next); err != nil {
					return 0, 0, err
				}
			}
			cur = next
		}
		return s, cur, nil

	case syntax.OpCharClass:
		s := b.n.addState()
		e := b.n.addState()
		for i := 0; i+1 < len(re.Rune); i += 2 {
			lo, hi := re.Rune[i], re.Rune[i+1]
			b.addRuneRangeEdge(s, lo, hi, e)
		}
		return s, e, nil

	case syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		s := b.n.addState()
		e := b.n.addState()
		b.addRuneRangeEdge(s, rune(MinByte), rune(MaxByte), e)
		return s, e, nil

	case syntax.OpCapture:
		return b.build(re.Sub[0])

	case syntax.OpStar:
		return b.buildStar(re.Sub[0])

	case syntax.OpPlus:
		return b.buildPlus(re.Sub[0])

	case syntax.OpQuest:
		return b.buildQuest(re.Sub[0])

	case syntax.OpRepeat:
		return b.buildRepeat(re.Sub[0], re.Min, re.Max)

	case syntax.OpConcat:
		if len(re.Sub) == 0 {
			return b.build(&syntax.Regexp{Op: syntax.OpEmptyMatch})
		}
		start, accept, err = b.build(re.Sub[0])
		if err != nil {
			return 0, 0, err
		}
		for _, sub := range re.Sub[1:] {
			s2, e2, err := b.build(sub)
			if err != nil {
				return 0, 0, err
			}
			b.n.addEpsilonEdge(accept, s2)
			accept = e2
		}
		return start, accept, nil

	case syntax.OpAlternate:
		s := b.n.addState()
		e := b.n.addState()
		for _, sub := range re.Sub {
			s2, e2, err := b.build(sub)
			if err != nil {
				return 0, 0, err
			}
			b.n.addEpsilonEdge(s, s2)
			b.n.addEpsilonEdge(e2, e)
		}
		return s, e, nil

	case syntax.OpBeginLine, syntax.OpEndLine, syntax.OpBeginText, syntax.OpEndText,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		// file_contexts regexes have no anchors; treat as a no-op match.
		s := b.n.addState()
		e := b.n.addState()
		b.n.addEpsilonEdge(s, e)
		return s, e, nil

	default:
		return 0, 0, fmt.Errorf("unsupported regex construct %v", re.Op)
	}
}

func (b *builder) addRuneEdge(from state, r rune, to state) error {
	return b.addRuneRange(from, r, r, to)
}

func (b *builder) addRuneRangeEdge(from state, lo, hi rune, to state) {
	_ = b.addRuneRange(from, lo, hi, to)
}

// addRuneRange clips [lo, hi] to the bounded printable-ASCII alphabet; a
// range entirely outside the alphabet contributes no edges.
func (b *builder) addRuneRange(from state, lo, hi rune, to state) error {
	if lo < rune(MinByte) {
		lo = rune(MinByte)
	}
	if hi > rune(MaxByte) {
		hi = rune(MaxByte)
	}
	for r := lo; r <= hi; r++ {
		b.n.addSymbolEdge(from, byte(r), to)
	}
	return nil
}

func foldCase(r rune) []rune {
	if r >= 'a' && r <= 'z' {
		return []rune{r, r - 'a' + 'A'}
	}
	if r >= 'A' && r <= 'Z' {
		return []rune{r, r - 'A' + 'a'}
	}
	return []rune{r}
}

// buildStar compiles e* as: split(skip, loop); loop = e then split(loop, skip).
func (b *builder) buildStar(sub *syntax.Regexp) (state, state, error) {
	s := b.n.addState()
	e := b.n.addState()
	s2, e2, err := b.build(sub)
	if err != nil {
		return 0, 0, err
	}
	b.n.addEpsilonEdge(s, s2)
	b.n.addEpsilonEdge(s, e)
	b.n.addEpsilonEdge(e2, s2)
	b.n.addEpsilonEdge(e2, e)
	return s, e, nil
}

// buildPlus compiles e+ as e followed by e*.
func (b *builder) buildPlus(sub *syntax.Regexp) (state, state, error) {
	s1, e1, err := b.build(sub)
	if err != nil {
		return 0, 0, err
	}
	s2, e2, err := b.buildStar(sub)
	if err != nil {
		return 0, 0, err
	}
	b.n.addEpsilonEdge(e1, s2)
	return s1, e2, nil
}

// buildQuest compiles e? as split(e, skip).
func (b *builder) buildQuest(sub *syntax.Regexp) (state, state, error) {
	s := b.n.addState()
	e := b.n.addState()
	s2, e2, err := b.build(sub)
	if err != nil {
		return 0, 0, err
	}
	b.n.addEpsilonEdge(s, s2)
	b.n.addEpsilonEdge(s, e)
	b.n.addEpsilonEdge(e2, e)
	return s, e, nil
}

// buildRepeat compiles e{min,max} (max == -1 meaning unbounded) by unrolling
// min mandatory copies followed by (max-min) optional copies, or a trailing
// star when unbounded.
func (b *builder) buildRepeat(sub *syntax.Regexp, min, max int) (state, state, error) {
	start := b.n.addState()
	cur := start
	for i := 0; i < min; i++ {
		s, e, err := b.build(sub)
		if err != nil {
			return 0, 0, err
		}
		b.n.addEpsilonEdge(cur, s)
		cur = e
	}

	if max == -1 {
		s, e, err := b.buildStar(sub)
		if err != nil {
			return 0, 0, err
		}
		b.n.addEpsilonEdge(cur, s)
		cur = e
		return start, cur, nil
	}

	for i := min; i < max; i++ {
		s, e, err := b.buildQuest(sub)
		if err != nil {
			return 0, 0, err
		}
		b.n.addEpsilonEdge(cur, s)
		cur = e
	}

	if min == 0 && max == 0 {
		end := b.n.addState()
		b.n.addEpsilonEdge(start, end)
		return start, end, nil
	}

	return start, cur, nil
}
