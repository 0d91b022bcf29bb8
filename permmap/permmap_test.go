package permmap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRule struct {
	class string
	perms []string
}

func (r fakeRule) Class() string   { return r.class }
func (r fakeRule) Perms() []string { return r.perms }

const testMap = `# class,permission,direction,weight,enabled
file,read,r,5,true
file,write,w,7,true
file,append,w,3,true
file,lock,b,2,true
file,ioctl,r,1,false
`

func TestRuleInfoFlowClassifiesByDirection(t *testing.T) {
	m, err := Load(strings.NewReader(testMap))
	require.NoError(t, err)

	flow := m.RuleInfoFlow(fakeRule{class: "file", perms: []string{"read", "write", "append"}})
	assert.ElementsMatch(t, []string{"read"}, flow.ReadPerms)
	assert.ElementsMatch(t, []string{"write", "append"}, flow.WritePerms)
	assert.Empty(t, flow.UnknownPerms)
	assert.Equal(t, 5, flow.ReadWeight)
	assert.Equal(t, 7, flow.WriteWeight)
}

func TestRuleInfoFlowBothDirection(t *testing.T) {
	m, err := Load(strings.NewReader(testMap))
	require.NoError(t, err)

	flow := m.RuleInfoFlow(fakeRule{class: "file", perms: []string{"lock"}})
	assert.Equal(t, []string{"lock"}, flow.ReadPerms)
	assert.Equal(t, []string{"lock"}, flow.WritePerms)
	assert.Equal(t, 2, flow.ReadWeight)
	assert.Equal(t, 2, flow.WriteWeight)
}

func TestRuleInfoFlowDisabledMappingSkipped(t *testing.T) {
	m, err := Load(strings.NewReader(testMap))
	require.NoError(t, err)

	flow := m.RuleInfoFlow(fakeRule{class: "file", perms: []string{"ioctl"}})
	assert.Empty(t, flow.ReadPerms)
	assert.Empty(t, flow.WritePerms)
	assert.Empty(t, flow.UnknownPerms)
}

func TestRuleInfoFlowUnknownClassAndPermission(t *testing.T) {
	m, err := Load(strings.NewReader(testMap))
	require.NoError(t, err)

	flow := m.RuleInfoFlow(fakeRule{class: "socket", perms: []string{"connect"}})
	assert.ElementsMatch(t, []string{"connect"}, flow.UnknownPerms)

	flow2 := m.RuleInfoFlow(fakeRule{class: "file", perms: []string{"frobnicate"}})
	assert.ElementsMatch(t, []string{"frobnicate"}, flow2.UnknownPerms)
}

func TestRuleInfoFlowPermsUnion(t *testing.T) {
	flow := RuleInfoFlow{
		ReadPerms:    []string{"read"},
		WritePerms:   []string{"write"},
		UnknownPerms: []string{"mystery"},
	}
	assert.ElementsMatch(t, []string{"read", "write", "mystery"}, flow.Perms())
}

func TestLoadRejectsMalformedRow(t *testing.T) {
	_, err := Load(strings.NewReader("file,read,r\n"))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDirection(t *testing.T) {
	_, err := Load(strings.NewReader("file,read,x,5,true\n"))
	assert.Error(t, err)
}
