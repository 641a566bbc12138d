package bridge

import "errors"

var (
	// ErrNotInitialized is returned by operations that need a live engine
	// handle before initialize succeeded
	ErrNotInitialized = errors.New("Not initialized. Call initialize() first.")

	// ErrRepoNotFound is returned when the repository path does not exist
	ErrRepoNotFound = errors.New("repository path does not exist")
)
