// Package textdecoder implements policy.PolicyDecoder by reading a
// policy's allow/type_transition rules from two flat CSV-ish files,
// avrules.csv and terules.csv, under the policy directory. It exists
// because the real decoder for a precompiled_sepolicy blob (setools /
// secilc) is an external collaborator out of scope for this repo; this
// decoder lets --extracted policy directories (spec.md §6) be driven end
// to end without that toolchain, using the same hand-rolled comma-split
// line scanner as the teacher's compiler.Parser.parsePolicy.
package textdecoder

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/seanpol/ifdif/policygraph"
)

// avRule adapts one avrules.csv row to policygraph.AVRule.
type avRule struct {
	source, target, class string
	perms                 []string
}

func (r avRule) Source() string  { return r.source }
func (r avRule) Target() string  { return r.target }
func (r avRule) Class() string   { return r.class }
func (r avRule) Perms() []string { return r.perms }

// teRule adapts one terules.csv row to policygraph.TERule.
type teRule struct {
	source, target, def string
}

func (r teRule) Source() string  { return r.source }
func (r teRule) Target() string  { return r.target }
func (r teRule) Default() string { return r.def }

// Decoder reads avrules.csv/terules.csv out of Dir on demand.
type Decoder struct {
	Dir string
}

// AVRules reads Dir/avrules.csv: rows of "source,target,class,perm1|perm2|...".
func (d Decoder) AVRules() ([]policygraph.AVRule, error) {
	lines, err := readLines(filepath.Join(d.Dir, "avrules.csv"))
	if err != nil {
		return nil, err
	}

	rules := make([]policygraph.AVRule, 0, len(lines))
	for lineNum, line := range lines {
		fields := strings.Split(line, ",")
		if len(fields) != 4 {
			return nil, fmt.Errorf("avrules.csv:%d: expected 4 fields, got %d: %q", lineNum+1, len(fields), line)
		}
		rules = append(rules, avRule{
			source: strings.TrimSpace(fields[0]),
			target: strings.TrimSpace(fields[1]),
			class:  strings.TrimSpace(fields[2]),
			perms:  strings.Split(strings.TrimSpace(fields[3]), "|"),
		})
	}
	return rules, nil
}

// TERules reads Dir/terules.csv: rows of "source,target,default".
func (d Decoder) TERules() ([]policygraph.TERule, error) {
	lines, err := readLines(filepath.Join(d.Dir, "terules.csv"))
	if err != nil {
		return nil, err
	}

	rules := make([]policygraph.TERule, 0, len(lines))
	for lineNum, line := range lines {
		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("terules.csv:%d: expected 3 fields, got %d: %q", lineNum+1, len(fields), line)
		}
		rules = append(rules, teRule{
			source: strings.TrimSpace(fields[0]),
			target: strings.TrimSpace(fields[1]),
			def:    strings.TrimSpace(fields[2]),
		})
	}
	return rules, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
