// Package permmap loads a per-(class, permission) read/write direction and
// weight table and uses it to classify the permission set of an allow rule
// into read/write/unknown information flow.
package permmap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/seanpol/ifdif/internal/ifdiferr"
)

// Direction is one mapping row's flow direction.
type Direction byte

const (
	DirRead  Direction = 'r'
	DirWrite Direction = 'w'
	DirBoth  Direction = 'b'
)

type mapping struct {
	direction Direction
	weight    int
	enabled   bool
}

// Map is an immutable (class, permission) -> mapping table.
type Map struct {
	rows map[string]map[string]mapping
}

// RuleInfoFlow is the classification of one allow rule's permission set,
// per spec.md §4.3.
type RuleInfoFlow struct {
	ReadWeight   int
	WriteWeight  int
	ReadPerms    []string
	WritePerms   []string
	UnknownPerms []string
}

// Perms returns the union of ReadPerms, WritePerms and UnknownPerms.
func (f RuleInfoFlow) Perms() []string {
	out := make([]string, 0, len(f.ReadPerms)+len(f.WritePerms)+len(f.UnknownPerms))
	out = append(out, f.ReadPerms...)
	out = append(out, f.WritePerms...)
	out = append(out, f.UnknownPerms...)
	return out
}

// Rule is the minimal view of an access-vector rule that RuleInfoFlow needs:
// a target class and the permission set granted against it.
type Rule interface {
	Class() string
	Perms() []string
}

// Empty returns a permission map with no rows: every rule classifies as
// entirely unknown. Used when the CLI is run without --permmap.
func Empty() *Map {
	return &Map{rows: map[string]map[string]mapping{}}
}

// LoadFile opens and parses a permission map file in the
// "class,permission,direction,weight,enabled" row format described in
// spec.md §6.
func LoadFile(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ifdiferr.PolicyNotFound{Path: path, Err: err}
	}
	defer f.Close()
	return Load(f)
}

// Load parses rows from r. Blank lines and lines beginning with '#' are
// skipped. Each row is "class,permission,direction,weight[,enabled]"; a
// missing enabled column defaults to enabled.
func Load(r io.Reader) (*Map, error) {
	m := &Map{rows: map[string]map[string]mapping{}}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if len(fields) < 4 {
			return nil, fmt.Errorf("permmap:%d: expected at least 4 comma-separated fields, got %d", lineNo, len(fields))
		}

		class, perm, dirStr, weightStr := fields[0], fields[1], fields[2], fields[3]

		var dir Direction
		switch dirStr {
		case "r":
			dir = DirRead
		case "w":
			dir = DirWrite
		case "b":
			dir = DirBoth
		default:
			return nil, fmt.Errorf("permmap:%d: unknown direction %q", lineNo, dirStr)
		}

		weight, err := strconv.Atoi(weightStr)
		if err != nil {
			return nil, fmt.Errorf("permmap:%d: invalid weight %q: %w", lineNo, weightStr, err)
		}

		enabled := true
		if len(fields) >= 5 {
			enabled, err = strconv.ParseBool(fields[4])
			if err != nil {
				return nil, fmt.Errorf("permmap:%d: invalid enabled %q: %w", lineNo, fields[4], err)
			}
		}

		if m.rows[class] == nil {
			m.rows[class] = map[string]mapping{}
		}
		m.rows[class][perm] = mapping{direction: dir, weight: weight, enabled: enabled}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read permmap: %w", err)
	}

	return m, nil
}

// RuleInfoFlow classifies rule's permission set against the map, per
// spec.md §4.3: unknown class or permission goes to UnknownPerms, a
// disabled mapping is skipped entirely, and read/write weights take the
// max over all contributing permissions.
func (m *Map) RuleInfoFlow(rule Rule) RuleInfoFlow {
	class := rule.Class()
	classRows := m.rows[class]

	var flow RuleInfoFlow
	for _, perm := range rule.Perms() {
		if classRows == nil {
			flow.UnknownPerms = append(flow.UnknownPerms, perm)
			continue
		}
		row, ok := classRows[perm]
		if !ok {
			flow.UnknownPerms = append(flow.UnknownPerms, perm)
			continue
		}
		if !row.enabled {
			continue
		}

		switch row.direction {
		case DirRead:
			flow.ReadPerms = append(flow.ReadPerms, perm)
			flow.ReadWeight = max(flow.ReadWeight, row.weight)
		case DirWrite:
			flow.WritePerms = append(flow.WritePerms, perm)
			flow.WriteWeight = max(flow.WriteWeight, row.weight)
		case DirBoth:
			flow.ReadPerms = append(flow.ReadPerms, perm)
			flow.ReadWeight = max(flow.ReadWeight, row.weight)
			flow.WritePerms = append(flow.WritePerms, perm)
			flow.WriteWeight = max(flow.WriteWeight, row.weight)
		}
	}

	return flow
}
