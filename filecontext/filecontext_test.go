package filecontext

import (
	"strings"
	"testing"

	"github.com/seanpol/ifdif/automata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContextSplitsOnFirstThreeColons(t *testing.T) {
	ctx, err := ParseContext("u:r:httpd_t:s0:c0,c1")
	require.NoError(t, err)
	assert.Equal(t, "u", ctx.User)
	assert.Equal(t, "r", ctx.Role)
	assert.Equal(t, "httpd_t", ctx.Type)
	assert.Equal(t, "s0:c0,c1", ctx.MLS)
}

func TestParseContextTooFewComponentsIsFatal(t *testing.T) {
	_, err := ParseContext("u:r:httpd_t")
	assert.Error(t, err)
}

func TestBuildFromRulesDisjointness(t *testing.T) {
	rules := []rule{
		{regex: "/data(/.*)?", ctx: Context{Type: "data_t"}},
		{regex: "/data/secret", ctx: Context{Type: "secret_t"}},
		{regex: "/var/.*", ctx: Context{Type: "var_t"}},
	}

	fcs, err := buildFromRules(rules)
	require.NoError(t, err)
	require.Contains(t, fcs, "data_t")
	require.Contains(t, fcs, "secret_t")
	require.Contains(t, fcs, "var_t")

	types := make([]string, 0, len(fcs))
	for t := range fcs {
		types = append(types, t)
	}
	for i := range types {
		for j := range types {
			if i == j {
				continue
			}
			inter := automata.Intersection(fcs[types[i]].NFA, fcs[types[j]].NFA)
			assert.True(t, inter.IsEmpty(), "%s and %s overlap", types[i], types[j])
		}
	}
}

func TestLastMatchWins(t *testing.T) {
	rules := []rule{
		{regex: "/data(/.*)?", ctx: Context{Type: "early_t"}},
		{regex: "/data/secret", ctx: Context{Type: "late_t"}},
	}

	fcs, err := buildFromRules(rules)
	require.NoError(t, err)

	secretNFA, err := automata.FromRegex("/data/secret")
	require.NoError(t, err)

	lateInter := automata.Intersection(fcs["late_t"].NFA, secretNFA)
	assert.False(t, lateInter.IsEmpty())

	earlyInter := automata.Intersection(fcs["early_t"].NFA, secretNFA)
	assert.True(t, earlyInter.IsEmpty())
}

func TestParseFileSkipsMalformedLines(t *testing.T) {
	input := `# comment
/a/b u:r:a_t:s0
this line has too many fields here to be valid
/c/d -- u:r:c_t:s0
`
	rules, err := parseFile("test.fc", strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "a_t", rules[0].ctx.Type)
	assert.Equal(t, "c_t", rules[1].ctx.Type)
}

func TestParseFileAbortsOnInvalidLabel(t *testing.T) {
	input := "/a/b u:r:bad\n"
	_, err := parseFile("test.fc", strings.NewReader(input))
	assert.Error(t, err)
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	nfa, err := automata.FromRegex("/bin/.*")
	require.NoError(t, err)
	fc := &FileContext{Type: "bin_t", Regexes: []string{"/bin/.*"}, NFA: nfa}

	text, err := SerializeEntry(fc, "", Context{User: "u", Role: "r", Type: "bin_t", MLS: "s0"})
	require.NoError(t, err)

	back, fileType, ctx, err := DeserializeEntry(text)
	require.NoError(t, err)
	assert.Equal(t, "", fileType)
	assert.Equal(t, "bin_t", ctx.Type)
	assert.Equal(t, []string{"/bin/.*"}, back.Regexes)

	assert.True(t, automata.Intersection(fc.NFA, automata.Complement(back.NFA)).IsEmpty())
	assert.True(t, automata.Intersection(back.NFA, automata.Complement(fc.NFA)).IsEmpty())
}
