package filecontext

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// SaveDB writes fcMap to path in the file_contexts.db record format
// (spec.md §6): one --BEGIN--/--END-- block per type label. The per-record
// file-type field is written empty and the owning context field is
// reconstructed as the canonical object_r SELinux context for the label,
// since FileContext itself only
// retains the type and its resolved regex set, not the original rule's
// optional file-type qualifier.
func SaveDB(fcMap map[string]*FileContext, path string) error {
	var sb strings.Builder
	for _, label := range sortedLabels(fcMap) {
		fc := fcMap[label]
		ctx := Context{User: "u", Role: "object_r", Type: label, MLS: "s0"}
		record, err := SerializeEntry(fc, "", ctx)
		if err != nil {
			return fmt.Errorf("serialize %q: %w", label, err)
		}
		sb.WriteString(record)
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

// LoadDB reads back a file_contexts.db written by SaveDB.
func LoadDB(path string) (map[string]*FileContext, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	result := map[string]*FileContext{}
	for _, record := range SplitRecords(string(raw)) {
		fc, _, _, err := DeserializeEntry(record)
		if err != nil {
			return nil, fmt.Errorf("deserialize record: %w", err)
		}
		result[fc.Type] = fc
	}
	return result, nil
}

func sortedLabels(fcMap map[string]*FileContext) []string {
	labels := make([]string, 0, len(fcMap))
	for label := range fcMap {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
