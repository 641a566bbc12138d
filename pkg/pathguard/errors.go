package pathguard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRootNotFound is returned when the sandbox root does not exist
	ErrRootNotFound = errors.New("sandbox root does not exist")
)

// Violation reports a path confinement breach. It carries enough context
// for the caller to produce an actionable diagnostic without re-deriving
// the sandbox configuration. Callers must preserve its identity (errors.As)
// so policy blocks stay distinguishable from accidental failures.
type Violation struct {
	// Path is the offending resolved path
	Path string
	// Root is the configured sandbox root
	Root string
	// Intent is the access that was requested
	Intent Intent
	// ReadOnly is the allowlist at the time of the check; populated for
	// read failures only
	ReadOnly []string
	// Label is the diagnostic session label
	Label string
}

// Error implements the error interface.
func (v *Violation) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sandbox violation: %s access to %s denied (root: %s", v.Intent, v.Path, v.Root)
	if v.Intent == IntentRead && len(v.ReadOnly) > 0 {
		fmt.Fprintf(&b, ", read-only allowlist: %s", strings.Join(v.ReadOnly, ", "))
	}
	if v.Label != "" {
		fmt.Fprintf(&b, ", session: %s", v.Label)
	}
	b.WriteString(")")
	return b.String()
}

// IsViolation reports whether err is (or wraps) a sandbox violation.
func IsViolation(err error) bool {
	var v *Violation
	return errors.As(err, &v)
}
