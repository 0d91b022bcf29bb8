package policy

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBuildProp = `# comment
ro.build.version.release = 13
ro.build.version.incremental=9876543
ro.build.version.security_patch = 2024-03-05

this is not a property
`

func TestParsePropertiesHappyPath(t *testing.T) {
	props, err := parseProperties(strings.NewReader(testBuildProp))
	require.NoError(t, err)
	assert.Equal(t, 13, props.VersionMajor)
	assert.Equal(t, 9876543, props.VersionIncr)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), props.SecurityPatch)
}

func TestParsePropertiesNonNumericIncrementalDefaultsToZero(t *testing.T) {
	props, err := parseProperties(strings.NewReader("ro.build.version.incremental = not-a-number\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, props.VersionIncr)
}

func TestVersionString(t *testing.T) {
	props := Properties{VersionMajor: 13, VersionIncr: 42, SecurityPatch: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "v13.42 (2024-03-05)", props.VersionString())
}
