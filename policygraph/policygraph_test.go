package policygraph

import (
	"strings"
	"testing"

	"github.com/seanpol/ifdif/filecontext"
	"github.com/seanpol/ifdif/permmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAV struct {
	src, dst, class string
	perms           []string
}

func (r fakeAV) Source() string  { return r.src }
func (r fakeAV) Target() string  { return r.dst }
func (r fakeAV) Class() string   { return r.class }
func (r fakeAV) Perms() []string { return r.perms }

type fakeTE struct {
	src, dst, def string
}

func (r fakeTE) Source() string  { return r.src }
func (r fakeTE) Target() string  { return r.dst }
func (r fakeTE) Default() string { return r.def }

const fakePermMap = `file,read,r,5,true
file,write,w,7,true
`

func loadFakePermMap(t *testing.T) *permmap.Map {
	t.Helper()
	m, err := permmap.Load(strings.NewReader(fakePermMap))
	require.NoError(t, err)
	return m
}

func TestRepeatedAllowAddsReadAndWriteEdges(t *testing.T) {
	pm := loadFakePermMap(t)
	avRules := []AVRule{
		fakeAV{src: "app_t", dst: "data_t", class: "file", perms: []string{"read"}},
		fakeAV{src: "app_t", dst: "data_t", class: "file", perms: []string{"write"}},
	}

	g, _ := Build(avRules, nil, pm, map[string]*filecontext.FileContext{})

	app, _ := g.Index("app_t")
	data, _ := g.Index("data_t")

	readEdge, ok := g.Edge(data, app)
	require.True(t, ok)
	assert.True(t, readEdge.Type.Has(EdgeRead))

	writeEdge, ok := g.Edge(app, data)
	require.True(t, ok)
	assert.True(t, writeEdge.Type.Has(EdgeWrite))
}

func TestEdgeUnionDisjointPermsSameNodePair(t *testing.T) {
	pm := loadFakePermMap(t)
	avRules := []AVRule{
		fakeAV{src: "app_t", dst: "data_t", class: "file", perms: []string{"write"}},
		fakeAV{src: "app_t", dst: "data_t", class: "file", perms: []string{"unknown_perm"}},
	}

	g, _ := Build(avRules, nil, pm, map[string]*filecontext.FileContext{})
	app, _ := g.Index("app_t")
	data, _ := g.Index("data_t")

	edge, ok := g.Edge(app, data)
	require.True(t, ok)
	assert.True(t, edge.Type.Has(EdgeWrite))
	assert.True(t, edge.Type.Has(EdgeUnkn))
	_, hasWrite := edge.Perms["write"]
	_, hasUnknown := edge.Perms["unknown_perm"]
	assert.True(t, hasWrite)
	assert.True(t, hasUnknown)
}

func TestMissingContextsDiagnostic(t *testing.T) {
	pm := loadFakePermMap(t)
	teRules := []TERule{
		fakeTE{src: "app_t", dst: "nonexistent_t", def: "app_derived_t"},
	}

	_, missing := Build(nil, teRules, pm, map[string]*filecontext.FileContext{})
	assert.Contains(t, missing, "nonexistent_t")
}

func TestSubjectOnlyContractionPreservesReachability(t *testing.T) {
	pm := loadFakePermMap(t)
	avRules := []AVRule{
		fakeAV{src: "a_t", dst: "mid_t", class: "file", perms: []string{"write"}},
		fakeAV{src: "mid_t", dst: "b_t", class: "file", perms: []string{"write"}},
	}
	fc := map[string]*filecontext.FileContext{"a_t": nil, "b_t": nil}

	g, _ := Build(avRules, nil, pm, fc)
	simple := Simplify(g)

	fullA, _ := g.Index("a_t")
	fullB, _ := g.Index("b_t")
	assert.True(t, g.HasPath(fullA, fullB))

	simpleA, ok := simple.Index("a_t")
	require.True(t, ok)
	simpleB, ok := simple.Index("b_t")
	require.True(t, ok)
	assert.True(t, simple.HasPath(simpleA, simpleB))

	_, midStillPresent := simple.Index("mid_t")
	assert.False(t, midStillPresent)
}

func TestClassifyLabel(t *testing.T) {
	assert.True(t, ClassifyLabel("untrusted_app").Has(LvlUntrusted))
	assert.True(t, ClassifyLabel("system_server").Has(LvlCritical))
	assert.True(t, ClassifyLabel("security_service").Has(LvlTrusted))
	assert.False(t, ClassifyLabel("untrusted_app").Has(LvlTrusted), "untrust should suppress trusted match")
}

func TestEdgeTypeString(t *testing.T) {
	assert.Equal(t, "READ|WRITE", EdgeBoth.String())
	assert.Equal(t, "NONE", EdgeNone.String())
}
