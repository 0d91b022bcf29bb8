package filecontext

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/seanpol/ifdif/automata"
)

var wsCollapse = regexp.MustCompile(`\s+`)
var blankOrComment = regexp.MustCompile(`^\s*(#.*)?$`)

// rule is one parsed line of a *_file_contexts file, before last-match-wins
// resolution.
type rule struct {
	file     string
	line     int
	regex    string
	fileType string
	ctx      Context
}

// FileContext is the set of source regexes that ultimately resolve to one
// type label, plus the single NFA whose language is exactly the paths that
// resolve there. Immutable once built.
type FileContext struct {
	Type    string
	Regexes []string
	NFA     *automata.NFA
}

// BuildFromFiles concatenates the given file_contexts files in order,
// parses every nonblank non-comment line, and resolves "last rule wins"
// semantics into a map from type label to FileContext. Malformed lines are
// logged and skipped; an invalid SELinux context aborts the whole build.
func BuildFromFiles(paths []string) (map[string]*FileContext, error) {
	var rules []rule

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open file_contexts %s: %w", path, err)
		}
		parsed, err := parseFile(path, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		rules = append(rules, parsed...)
	}

	return buildFromRules(rules)
}

// parseFile parses one file_contexts stream into rules, logging and
// skipping malformed lines (wrong field count), aborting on an invalid
// SELinux context string.
func parseFile(name string, r io.Reader) ([]rule, error) {
	var rules []rule

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if blankOrComment.MatchString(line) {
			continue
		}

		collapsed := strings.TrimSpace(wsCollapse.ReplaceAllString(line, " "))
		fields := strings.Split(collapsed, " ")

		var regex, fileType, ctxStr string
		switch len(fields) {
		case 3:
			regex, fileType, ctxStr = fields[0], fields[1], fields[2]
		case 2:
			regex, ctxStr = fields[0], fields[1]
		default:
			slog.Warn("malformed file_contexts line, skipping",
				"file", name, "line", lineNo, "text", line)
			continue
		}

		ctx, err := ParseContext(ctxStr)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}

		rules = append(rules, rule{
			file:     name,
			line:     lineNo,
			regex:    regex,
			fileType: fileType,
			ctx:      ctx,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return rules, nil
}

// buildFromRules reproduces SELinux "last rule wins": rules are processed
// last-to-first, each rule's effective language is itself minus everything
// already claimed by a rule that appears later in the file (and therefore
// wins ties), and effective languages are then aggregated by type.
func buildFromRules(rules []rule) (map[string]*FileContext, error) {
	reversed := make([]rule, len(rules))
	for i, r := range rules {
		reversed[len(rules)-1-i] = r
	}

	type effective struct {
		rule rule
		nfa  *automata.NFA
	}

	claimed := automata.Empty()
	effectives := make([]effective, 0, len(reversed))

	for _, r := range reversed {
		nfa, err := automata.FromRegex(r.regex)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: compile regex %q: %w", r.file, r.line, r.regex, err)
		}

		eff := automata.Intersection(nfa, automata.Complement(claimed))
		effectives = append(effectives, effective{rule: r, nfa: eff})
		claimed = automata.Union(claimed, nfa)
	}

	result := map[string]*FileContext{}
	for _, eff := range effectives {
		typeLabel := eff.rule.ctx.Type
		fc, ok := result[typeLabel]
		if !ok {
			result[typeLabel] = &FileContext{
				Type:    typeLabel,
				Regexes: []string{eff.rule.regex},
				NFA:     eff.nfa,
			}
			continue
		}
		fc.Regexes = append(fc.Regexes, eff.rule.regex)
		fc.NFA = automata.Union(fc.NFA, eff.nfa)
	}

	return result, nil
}
