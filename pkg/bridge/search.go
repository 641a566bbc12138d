package bridge

import (
	"context"
	"errors"

	"github.com/harun/edbridge/pkg/pathguard"
	"github.com/harun/edbridge/pkg/search"
)

// SearchResult is the search_code / find_definition response.
type SearchResult struct {
	Success  bool           `json:"success"`
	Matches  []search.Match `json:"matches"`
	TimedOut bool           `json:"timed_out,omitempty"`
}

// searchDir resolves and guards the directory a search runs in: the given
// path when present, otherwise the effective scan root.
func (s *Session) searchDir(path string) (string, error) {
	if path == "" {
		path = s.scanRoot()
	}
	if path == "" {
		return "", ErrNotInitialized
	}
	return s.guard.Validate(path, pathguard.IntentRead)
}

// SearchCode greps for pattern. Searches share no state with the engine
// handle; a timeout is reported in the result, never as a dead loop.
func (s *Session) SearchCode(ctx context.Context, pattern, path string) any {
	dir, err := s.searchDir(path)
	if err != nil {
		return failure(err)
	}

	matches, err := search.Code(ctx, pattern, dir, s.opts.SearchTimeout)
	if err != nil {
		if errors.Is(err, search.ErrTimeout) {
			return SearchResult{Success: true, Matches: []search.Match{}, TimedOut: true}
		}
		return failure(err)
	}
	return SearchResult{Success: true, Matches: matches}
}

// FindDefinition looks for likely definition sites of symbol.
func (s *Session) FindDefinition(ctx context.Context, symbol, path string) any {
	dir, err := s.searchDir(path)
	if err != nil {
		return failure(err)
	}

	matches, err := search.Definition(ctx, symbol, dir, s.opts.SearchTimeout)
	if err != nil {
		if errors.Is(err, search.ErrTimeout) {
			return SearchResult{Success: true, Matches: []search.Match{}, TimedOut: true}
		}
		return failure(err)
	}
	return SearchResult{Success: true, Matches: matches}
}
