package filecontext

import (
	"path/filepath"
	"testing"

	"github.com/seanpol/ifdif/automata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveDBLoadDBRoundTrip(t *testing.T) {
	nfa, err := automata.FromRegex("/data/app/.*")
	require.NoError(t, err)
	fcMap := map[string]*FileContext{
		"untrusted_app_t": {Type: "untrusted_app_t", Regexes: []string{"/data/app/.*"}, NFA: nfa},
	}

	path := filepath.Join(t.TempDir(), "file_contexts.db")
	require.NoError(t, SaveDB(fcMap, path))

	loaded, err := LoadDB(path)
	require.NoError(t, err)
	require.Contains(t, loaded, "untrusted_app_t")
	assert.Equal(t, []string{"/data/app/.*"}, loaded["untrusted_app_t"].Regexes)

	diff := automata.Union(
		automata.Intersection(nfa, automata.Complement(loaded["untrusted_app_t"].NFA)),
		automata.Intersection(loaded["untrusted_app_t"].NFA, automata.Complement(nfa)),
	)
	assert.True(t, automata.Minimize(diff).IsEmpty())
}
