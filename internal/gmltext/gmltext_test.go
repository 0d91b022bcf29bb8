package gmltext

import (
	"bytes"
	"testing"

	"github.com/seanpol/ifdif/policygraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDestringizeType(t *testing.T) {
	kind, items, err := Destringize("WRITE")
	require.NoError(t, err)
	assert.Equal(t, KindType, kind)
	assert.Equal(t, []string{"WRITE"}, items)
}

func TestDestringizeSet(t *testing.T) {
	kind, items, err := Destringize("{'read', 'write'}")
	require.NoError(t, err)
	assert.Equal(t, KindSet, kind)
	assert.ElementsMatch(t, []string{"read", "write"}, items)
}

func TestDestringizeTuple(t *testing.T) {
	kind, items, err := Destringize("('a_t', 'fc_a')")
	require.NoError(t, err)
	assert.Equal(t, KindTuple, kind)
	assert.Equal(t, []string{"a_t", "fc_a"}, items)
}

func TestDestringizeBareString(t *testing.T) {
	kind, items, err := Destringize("a_t")
	require.NoError(t, err)
	assert.Equal(t, KindString, kind)
	assert.Equal(t, []string{"a_t"}, items)
}

func TestWriteReadGraphRoundTrip(t *testing.T) {
	g := policygraph.NewGraph()
	g.EnsureNode("a_t")
	g.EnsureNode("b_t")
	g.AddEdge("a_t", "b_t", policygraph.EdgeWrite, []string{"write", "append"})
	aIdxBefore, _ := g.Index("a_t")
	g.Node(aIdxBefore).IsSubject = true

	var buf bytes.Buffer
	require.NoError(t, WriteGraph(g, &buf))

	g2, err := ReadGraph(&buf)
	require.NoError(t, err)

	aIdx, ok := g2.Index("a_t")
	require.True(t, ok)
	bIdx, ok := g2.Index("b_t")
	require.True(t, ok)

	assert.True(t, g2.Node(aIdx).IsSubject)
	edge, ok := g2.Edge(aIdx, bIdx)
	require.True(t, ok)
	assert.True(t, edge.Type.Has(policygraph.EdgeWrite))
	assert.Contains(t, edge.Perms, "write")
	assert.Contains(t, edge.Perms, "append")
}
