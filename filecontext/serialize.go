package filecontext

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/seanpol/ifdif/automata"
)

const (
	beginMarker = "--BEGIN--"
	endMarker   = "--END--"
)

var recordPattern = regexp.MustCompile(`(?s)^--BEGIN--\n([^\t]*)\t([^\t\n]*)\t([^\n]*)\n(.*)\n--END--$`)

// SerializeEntry renders one FileContext as the text record
// "--BEGIN--\n<json regex list>\t<file_type>\t<context>\n<NFA text>\n--END--\n"
// described by spec.md §4.2.
func SerializeEntry(fc *FileContext, fileType string, ctx Context) (string, error) {
	regexJSON, err := json.Marshal(fc.Regexes)
	if err != nil {
		return "", fmt.Errorf("marshal regex list: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s\t%s\t%s\n%s\n%s\n",
		beginMarker, regexJSON, fileType, ctx.String(), automata.Serialize(fc.NFA), endMarker)
	return sb.String(), nil
}

// DeserializeEntry parses one record produced by SerializeEntry.
func DeserializeEntry(text string) (*FileContext, string, Context, error) {
	m := recordPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil, "", Context{}, fmt.Errorf("malformed file_contexts.db record")
	}

	var regexes []string
	if err := json.Unmarshal([]byte(m[1]), &regexes); err != nil {
		return nil, "", Context{}, fmt.Errorf("unmarshal regex list: %w", err)
	}

	fileType := m[2]
	ctx, err := ParseContext(m[3])
	if err != nil {
		return nil, "", Context{}, err
	}

	nfa, err := automata.Deserialize(m[4])
	if err != nil {
		return nil, "", Context{}, fmt.Errorf("deserialize NFA: %w", err)
	}

	return &FileContext{Type: ctx.Type, Regexes: regexes, NFA: nfa}, fileType, ctx, nil
}

// SplitRecords splits the raw contents of a file_contexts.db file into
// individual --BEGIN--/--END-- records.
func SplitRecords(raw string) []string {
	var records []string
	for _, chunk := range strings.Split(raw, beginMarker) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		records = append(records, beginMarker+"\n"+chunk)
	}
	return records
}
