// Package filecontext builds, from SELinux file_contexts rule lists, a map
// from type label to the set of paths that resolve to that label under
// "last match wins" semantics, each represented as a disjoint-language NFA.
package filecontext

import (
	"fmt"
	"strings"

	"github.com/seanpol/ifdif/internal/ifdiferr"
)

// Context is a four-field SELinux security context: user:role:type:mls. The
// mls component may itself contain colons, so parsing only splits on the
// first three.
type Context struct {
	User, Role, Type, MLS string
}

// String renders the context in SELinux's colon-separated form.
func (c Context) String() string {
	return fmt.Sprintf("%s:%s:%s:%s", c.User, c.Role, c.Type, c.MLS)
}

// ParseContext parses a raw "user:role:type:mls" string. Fewer than four
// colon-separated components is a fatal InvalidSELinuxLabel error.
func ParseContext(raw string) (Context, error) {
	parts := strings.SplitN(raw, ":", 4)
	if len(parts) < 4 {
		return Context{}, &ifdiferr.InvalidSELinuxLabel{Label: raw}
	}
	return Context{User: parts[0], Role: parts[1], Type: parts[2], MLS: parts[3]}, nil
}
