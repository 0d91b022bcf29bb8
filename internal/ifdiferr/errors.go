// Package ifdiferr defines the error kinds surfaced by the policy-comparison
// pipeline so callers can branch on kind with errors.As instead of parsing
// messages.
package ifdiferr

import "fmt"

// PolicyNotFound is returned when a policy directory or one of its required
// files does not exist.
type PolicyNotFound struct {
	Path string
	Err  error
}

func (e *PolicyNotFound) Error() string {
	return fmt.Sprintf("policy not found at %q: %v", e.Path, e.Err)
}

func (e *PolicyNotFound) Unwrap() error { return e.Err }

// MalformedContextLine is a recoverable per-line error: the caller should
// log it and skip the line rather than abort the load.
type MalformedContextLine struct {
	File string
	Line int
	Text string
}

func (e *MalformedContextLine) Error() string {
	return fmt.Sprintf("%s:%d: malformed file_contexts line %q", e.File, e.Line, e.Text)
}

// InvalidSELinuxLabel is fatal for the load of the file containing it: a
// context string with fewer than four colon-separated components.
type InvalidSELinuxLabel struct {
	Label string
}

func (e *InvalidSELinuxLabel) Error() string {
	return fmt.Sprintf("invalid SELinux label %q", e.Label)
}

// UnmappedClass records a rule whose object class has no entry in the
// permission map. Non-fatal; accumulated into RuleInfoFlow.UnknownPerms.
type UnmappedClass struct {
	Class string
}

func (e *UnmappedClass) Error() string {
	return fmt.Sprintf("unmapped class %q", e.Class)
}

// UnmappedPermission records a rule permission with no entry in the
// permission map for its class. Non-fatal.
type UnmappedPermission struct {
	Class, Permission string
}

func (e *UnmappedPermission) Error() string {
	return fmt.Sprintf("unmapped permission %s:%s", e.Class, e.Permission)
}

// MissingTransitionContext is a diagnostic only: a type_transition rule
// whose target is not a known file-context label.
type MissingTransitionContext struct {
	Target string
}

func (e *MissingTransitionContext) Error() string {
	return fmt.Sprintf("missing transition context for target %q", e.Target)
}

// NfaOperationFailed wraps any failure from the automata kernel (parse,
// determinize, minimize) so it propagates up through graph/product building.
type NfaOperationFailed struct {
	Op  string
	Err error
}

func (e *NfaOperationFailed) Error() string {
	return fmt.Sprintf("nfa operation %q failed: %v", e.Op, e.Err)
}

func (e *NfaOperationFailed) Unwrap() error { return e.Err }

// QueryParseError wraps a syntax error from the query/ parser.
type QueryParseError struct {
	Query string
	Err   error
}

func (e *QueryParseError) Error() string {
	return fmt.Sprintf("failed to parse query %q: %v", e.Query, e.Err)
}

func (e *QueryParseError) Unwrap() error { return e.Err }

// QueryIndexError is returned when a formula names a policy index outside
// {1, 2}.
type QueryIndexError struct {
	Index int
}

func (e *QueryIndexError) Error() string {
	return fmt.Sprintf("invalid policy index %d (must be 1 or 2)", e.Index)
}

// QueryTypeError is returned when label_i's argument is neither a
// SecurityLvl keyword nor a bare type-label identifier.
type QueryTypeError struct {
	Value string
}

func (e *QueryTypeError) Error() string {
	return fmt.Sprintf("cannot interpret %q as a security level or type label", e.Value)
}
