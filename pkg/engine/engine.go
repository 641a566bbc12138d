// Package engine is the editing-engine collaborator boundary. The bridge
// session consumes engines through the Engine interface only; everything
// behind it (prompt construction, provider selection, edit application) is
// opaque to the session.
package engine

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Sink receives text emitted by an engine while it works. Sinks are
// swappable mid-session so a caller can capture one invocation's output
// (e.g. for streaming) and restore the previous sink afterwards.
type Sink interface {
	EmitOutput(text string)
	EmitError(text string)
}

// DiscardSink drops everything written to it.
type DiscardSink struct{}

func (DiscardSink) EmitOutput(string) {}
func (DiscardSink) EmitError(string)  {}

// WriteCheck is consulted before the engine writes any file. Returning an
// error blocks the write. The session wires its path guard in here so the
// engine cannot bypass the sandbox.
type WriteCheck func(path string) error

// Options configures engine construction.
type Options struct {
	// RepoPath is the repository the engine is bound to
	RepoPath string

	// Model is the raw model identifier as given by the host. It is
	// normalized here, at the collaborator boundary (see NormalizeModel);
	// the session never interprets it.
	Model string

	// Sink receives engine output. Defaults to DiscardSink.
	Sink Sink

	// AutoCommits and DirtyCommits mirror the underlying coder flags.
	// They are accepted and recorded but commit handling is delegated
	// to the provider-side edit application.
	AutoCommits  bool
	DirtyCommits bool

	// EditFormat selects the edit block format the engine asks the model
	// for. Only "whole" (full file fenced blocks) is currently supported.
	EditFormat string

	// WriteCheck guards file writes. Nil permits all writes.
	WriteCheck WriteCheck

	// APIKey overrides the environment lookup for the provider key.
	APIKey string
}

// Engine is a live editing-engine handle bound to one repository.
type Engine interface {
	// Run delegates one natural-language instruction to the engine. The
	// engine may read and mutate files on disk and emits progress text
	// through the current sink.
	Run(ctx context.Context, instruction string) (string, error)

	// RepoMap returns a text summary of the bound repository.
	RepoMap(ctx context.Context) (string, error)

	// AddFile and DropFile maintain the engine's in-scope file set.
	AddFile(path string)
	DropFile(path string)

	// Files returns a sorted snapshot of the in-scope file set.
	Files() []string

	// SetTestCommand and SetLintCommand configure post-edit commands.
	SetTestCommand(cmd string)
	SetLintCommand(cmd string)

	// SwapSink installs a new sink and returns the previous one.
	SwapSink(s Sink) Sink

	// Model returns the normalized model identifier in use.
	Model() string

	// Close releases the handle. Idempotent.
	Close() error
}

// New constructs an engine for opts. It fails if the repository does not
// exist or the model identifier cannot be resolved to a provider.
func New(opts Options) (Engine, error) {
	info, err := os.Stat(opts.RepoPath)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRepoNotFound, opts.RepoPath)
	}

	if opts.EditFormat == "" {
		opts.EditFormat = EditFormatWhole
	}
	if opts.EditFormat != EditFormatWhole {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEditFormat, opts.EditFormat)
	}

	provider, model, err := newProvider(opts.Model, opts.APIKey)
	if err != nil {
		return nil, err
	}

	sink := opts.Sink
	if sink == nil {
		sink = DiscardSink{}
	}

	log.Info().
		Str("repo", opts.RepoPath).
		Str("model", model).
		Str("provider", provider.Name()).
		Msg("Engine initialized")

	return &llmEngine{
		repoPath:   opts.RepoPath,
		model:      model,
		provider:   provider,
		sink:       sink,
		writeCheck: opts.WriteCheck,
		files:      make(map[string]struct{}),
	}, nil
}

// llmEngine is the provider-backed engine implementation.
type llmEngine struct {
	repoPath   string
	model      string
	provider   provider
	writeCheck WriteCheck
	testCmd    string
	lintCmd    string

	mu     sync.Mutex
	sink   Sink
	files  map[string]struct{}
	closed bool
}

func (e *llmEngine) AddFile(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.files[path] = struct{}{}
}

func (e *llmEngine) DropFile(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.files, path)
}

func (e *llmEngine) Files() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	files := make([]string, 0, len(e.files))
	for f := range e.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

func (e *llmEngine) SetTestCommand(cmd string) { e.testCmd = cmd }
func (e *llmEngine) SetLintCommand(cmd string) { e.lintCmd = cmd }

func (e *llmEngine) Model() string { return e.model }

func (e *llmEngine) SwapSink(s Sink) Sink {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.sink
	if s == nil {
		s = DiscardSink{}
	}
	e.sink = s
	return prev
}

func (e *llmEngine) currentSink() Sink {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sink
}

func (e *llmEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
