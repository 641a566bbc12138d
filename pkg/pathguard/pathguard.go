package pathguard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Intent describes what the caller wants to do with a path.
type Intent string

const (
	// IntentRead requests read access to a path
	IntentRead Intent = "read"
	// IntentWrite requests write access to a path
	IntentWrite Intent = "write"
)

// Guard validates candidate paths against a sandbox root and a read-only
// allowlist. A Guard with an empty root is in open mode and permits
// everything. Guards are immutable; reconfiguration replaces the whole value.
type Guard struct {
	root     string
	readOnly map[string]struct{}
	label    string
}

// Open returns a guard with no confinement.
func Open(label string) *Guard {
	return &Guard{label: label}
}

// New creates a guard confined to root. The root must exist on disk.
// Allowlist entries are resolved eagerly so later comparisons are exact.
func New(root string, readOnlyPaths []string, label string) (*Guard, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}

	resolvedRoot, err := resolve(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sandbox root: %w", err)
	}

	readOnly := make(map[string]struct{}, len(readOnlyPaths))
	for _, p := range readOnlyPaths {
		rp, err := resolve(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve read-only path %s: %w", p, err)
		}
		readOnly[rp] = struct{}{}
	}

	log.Info().
		Str("root", resolvedRoot).
		Int("read_only_paths", len(readOnly)).
		Str("label", label).
		Msg("Sandbox configured")

	return &Guard{
		root:     resolvedRoot,
		readOnly: readOnly,
		label:    label,
	}, nil
}

// Confined reports whether the guard enforces a sandbox root.
func (g *Guard) Confined() bool {
	return g.root != ""
}

// Root returns the configured sandbox root, empty in open mode.
func (g *Guard) Root() string {
	return g.root
}

// Label returns the diagnostic session label.
func (g *Guard) Label() string {
	return g.label
}

// ReadOnlyPaths returns the resolved allowlist entries.
func (g *Guard) ReadOnlyPaths() []string {
	paths := make([]string, 0, len(g.readOnly))
	for p := range g.readOnly {
		paths = append(paths, p)
	}
	return paths
}

// Validate resolves path to its canonical absolute form and checks it
// against the sandbox configuration. On success it returns the resolved
// path. On failure it returns a *Violation.
//
// Rules: open mode always succeeds; a descendant of the root (or the root
// itself) succeeds for any intent; an exact allowlist match succeeds for
// read intent only. The allowlist never grants write access.
func (g *Guard) Validate(path string, intent Intent) (string, error) {
	resolved, err := resolve(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	if !g.Confined() {
		return resolved, nil
	}

	if underRoot(g.root, resolved) {
		return resolved, nil
	}

	if intent == IntentRead {
		if _, ok := g.readOnly[resolved]; ok {
			return resolved, nil
		}
	}

	v := &Violation{
		Path:   resolved,
		Root:   g.root,
		Intent: intent,
		Label:  g.label,
	}
	if intent == IntentRead {
		v.ReadOnly = g.ReadOnlyPaths()
	}
	return "", v
}

// resolve converts path to an absolute, symlink-resolved canonical form.
// Paths that do not exist yet are resolved against their deepest existing
// ancestor so symlinked parents cannot smuggle a path out of the sandbox.
func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)

	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}

	// Walk up to the nearest existing ancestor, resolve it, and rejoin
	// the non-existent remainder.
	dir := abs
	var rest []string
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		rest = append(rest, filepath.Base(dir))
		dir = parent

		resolved, err = filepath.EvalSymlinks(dir)
		if err == nil {
			for i := len(rest) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, rest[i])
			}
			return resolved, nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
	}
}

// underRoot reports whether candidate is root or a descendant of root.
func underRoot(root, candidate string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
