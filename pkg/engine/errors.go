package engine

import "errors"

var (
	// ErrRepoNotFound is returned when the repository path does not exist
	ErrRepoNotFound = errors.New("repository path does not exist")

	// ErrUnsupportedEditFormat is returned for an unknown edit format
	ErrUnsupportedEditFormat = errors.New("unsupported edit format")

	// ErrUnknownModel is returned when a model identifier cannot be
	// resolved to a provider
	ErrUnknownModel = errors.New("cannot resolve model to a provider")

	// ErrMissingAPIKey is returned when the provider API key is absent
	ErrMissingAPIKey = errors.New("provider API key not set")

	// ErrEngineClosed is returned when running against a closed handle
	ErrEngineClosed = errors.New("engine handle is closed")
)
