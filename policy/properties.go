package policy

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"time"
)

var (
	blankOrCommentProp = regexp.MustCompile(`^\s*(#.*)?$`)
	propertyLine       = regexp.MustCompile(`^\s*([-_.a-zA-Z0-9]+)\s*=\s*([^#]*?)\s*$`)
)

// Properties is the subset of build.prop fields the version comparison
// pipeline cares about.
type Properties struct {
	Raw           map[string]string
	VersionMajor  int
	VersionIncr   int
	SecurityPatch time.Time
}

// VersionString renders "vMAJOR.INCR (PATCH)" as the original's Policy.version does.
func (p Properties) VersionString() string {
	patch := "unknown"
	if !p.SecurityPatch.IsZero() {
		patch = p.SecurityPatch.Format("2006-01-02")
	}
	return fmt.Sprintf("v%d.%d (%s)", p.VersionMajor, p.VersionIncr, patch)
}

// LoadProperties parses a build.prop file.
func LoadProperties(path string) (Properties, error) {
	f, err := os.Open(path)
	if err != nil {
		return Properties{}, err
	}
	defer f.Close()
	return parseProperties(f)
}

func parseProperties(r io.Reader) (Properties, error) {
	raw := map[string]string{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if blankOrCommentProp.MatchString(line) {
			continue
		}
		m := propertyLine.FindStringSubmatch(line)
		if m == nil {
			slog.Warn("unhandled build.prop property", "component", "policy", "line", lineNo)
			continue
		}
		raw[m[1]] = m[2]
	}
	if err := scanner.Err(); err != nil {
		return Properties{}, fmt.Errorf("read build.prop: %w", err)
	}

	props := Properties{Raw: raw}
	if v, ok := raw["ro.build.version.release"]; ok {
		props.VersionMajor, _ = strconv.Atoi(v)
	}
	if v, ok := raw["ro.build.version.incremental"]; ok {
		incr, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("no simple incremental version", "component", "policy", "value", v)
		} else {
			props.VersionIncr = incr
		}
	}
	if v, ok := raw["ro.build.version.security_patch"]; ok {
		t, err := time.Parse("2006-01-02", v)
		if err == nil {
			props.SecurityPatch = t
		}
	}

	return props, nil
}
