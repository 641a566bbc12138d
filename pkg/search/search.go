// Package search provides best-effort code search by shelling out to
// ripgrep (grep as fallback). These helpers share no state with the editing
// session; every call carries its own timeout, and a timeout is reported as
// a distinct, non-fatal error rather than killing the caller.
package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a search subprocess when the caller does not care.
const DefaultTimeout = 10 * time.Second

// ErrTimeout is returned when the subprocess exceeded its bound.
var ErrTimeout = errors.New("search timed out")

// Match is one search hit.
type Match struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// Code greps for pattern under dir.
func Code(ctx context.Context, pattern, dir string, timeout time.Duration) ([]Match, error) {
	return run(ctx, pattern, dir, timeout, false)
}

// Definition looks for likely definition sites of symbol under dir. The
// heuristic covers the common declaration keywords across mainstream
// languages; it is a convenience, not a parser.
func Definition(ctx context.Context, symbol, dir string, timeout time.Duration) ([]Match, error) {
	pattern := fmt.Sprintf(
		`(func|def|class|type|interface|struct|var|const|let|fn)\s+%s\b`, symbol)
	return run(ctx, pattern, dir, timeout, true)
}

func run(ctx context.Context, pattern, dir string, timeout time.Duration, regex bool) ([]Match, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := command(ctx, pattern, dir, regex)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		log.Warn().Str("pattern", pattern).Dur("timeout", timeout).Msg("Search timed out")
		return nil, ErrTimeout
	}
	if err != nil {
		// Both rg and grep exit 1 on "no matches"; that is a result,
		// not a failure.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return []Match{}, nil
		}
		return nil, fmt.Errorf("search failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	return parseMatches(stdout.String()), nil
}

// command prefers ripgrep, falling back to grep -r.
func command(ctx context.Context, pattern, dir string, regex bool) *exec.Cmd {
	if _, err := exec.LookPath("rg"); err == nil {
		args := []string{"--line-number", "--no-heading", "--color", "never"}
		if !regex {
			args = append(args, "--fixed-strings")
		}
		args = append(args, pattern, dir)
		return exec.CommandContext(ctx, "rg", args...)
	}

	args := []string{"-rn"}
	if regex {
		args = append(args, "-E")
	} else {
		args = append(args, "-F")
	}
	args = append(args, pattern, dir)
	return exec.CommandContext(ctx, "grep", args...)
}

// parseMatches reads "file:line:text" output.
func parseMatches(output string) []Match {
	matches := []Match{}
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 3)
		if len(parts) != 3 {
			continue
		}
		lineNo, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		matches = append(matches, Match{File: parts[0], Line: lineNo, Text: parts[2]})
	}
	return matches
}
