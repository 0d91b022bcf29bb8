package textdecoder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAVRulesAndTERulesParse(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "avrules.csv"),
		[]byte("# comment\nuntrusted_app_t,system_server_t,file,read|write\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "terules.csv"),
		[]byte("untrusted_app_t,app_data_file,untrusted_app_data_t\n"), 0o644))

	d := Decoder{Dir: dir}

	av, err := d.AVRules()
	require.NoError(t, err)
	require.Len(t, av, 1)
	assert.Equal(t, "untrusted_app_t", av[0].Source())
	assert.ElementsMatch(t, []string{"read", "write"}, av[0].Perms())

	te, err := d.TERules()
	require.NoError(t, err)
	require.Len(t, te, 1)
	assert.Equal(t, "untrusted_app_data_t", te[0].Default())
}

func TestAVRulesRejectsMalformedRow(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "avrules.csv"), []byte("too,few,fields\n"), 0o644))

	d := Decoder{Dir: dir}
	_, err := d.AVRules()
	assert.Error(t, err)
}
