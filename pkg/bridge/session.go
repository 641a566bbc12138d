// Package bridge holds the mutable state of one code-editing session and
// exposes the operations the RPC layer routes to. Every file-touching
// operation passes through the path guard; there is no bypass path.
package bridge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"

	"github.com/harun/edbridge/pkg/engine"
	"github.com/harun/edbridge/pkg/history"
	"github.com/harun/edbridge/pkg/pathguard"
)

// EngineFactory constructs the editing-engine collaborator. Injected so
// tests can substitute a fake engine.
type EngineFactory func(opts engine.Options) (engine.Engine, error)

// Options configures a session.
type Options struct {
	// Events receives out-of-band notifications and stream events.
	Events Events

	// History records instructions and responses; nil disables recording.
	History *history.Store

	// NewEngine overrides engine construction. Defaults to engine.New.
	NewEngine EngineFactory

	// AutoCommits, DirtyCommits and EditFormat are forwarded to the
	// engine at initialize time.
	AutoCommits  bool
	DirtyCommits bool
	EditFormat   string

	// SearchTimeout bounds search subprocesses; zero uses the search
	// package default.
	SearchTimeout time.Duration

	// Watcher tracks active files for external modification; nil disables
	// watching.
	Watcher FileWatcher
}

// Session is the one-per-process editing session. It is mutated only by the
// transport loop goroutine; sandbox configuration is replaced as a whole
// value, never field by field.
type Session struct {
	guard     *pathguard.Guard
	eng       engine.Engine
	repoPath  string
	modelName string
	events    Events
	hist      *history.Store
	newEngine EngineFactory
	watcher   FileWatcher
	opts      Options
}

// NewSession creates an empty session. It serves health and introspection
// immediately; everything else waits for initialize.
func NewSession(opts Options) *Session {
	events := opts.Events
	if events == nil {
		events = discardEvents{}
	}
	factory := opts.NewEngine
	if factory == nil {
		factory = engine.New
	}
	watcher := opts.Watcher
	if watcher == nil {
		watcher = nopWatcher{}
	}
	return &Session{
		guard:     pathguard.Open(""),
		events:    events,
		hist:      opts.History,
		newEngine: factory,
		watcher:   watcher,
		opts:      opts,
	}
}

// Initialized reports whether a live engine handle exists.
func (s *Session) Initialized() bool {
	return s.eng != nil
}

// Label returns the diagnostic session label.
func (s *Session) Label() string {
	return s.guard.Label()
}

// Initialize binds the session to a repository and model. Re-initialization
// replaces all prior state including the engine handle.
func (s *Session) Initialize(ctx context.Context, repoPath, modelName string) any {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return failure(fmt.Errorf("invalid repository path: %w", err))
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return failure(fmt.Errorf("%w: %s", ErrRepoNotFound, repoPath))
	}

	eng, err := s.newEngine(engine.Options{
		RepoPath:     abs,
		Model:        modelName,
		AutoCommits:  s.opts.AutoCommits,
		DirtyCommits: s.opts.DirtyCommits,
		EditFormat:   s.opts.EditFormat,
		WriteCheck:   s.writeCheck,
	})
	if err != nil {
		// Collaborator construction errors propagate verbatim.
		return failure(err)
	}

	if s.eng != nil {
		s.unwatchActive()
		_ = s.eng.Close()
	}
	s.eng = eng
	s.repoPath = abs
	s.modelName = modelName

	log.Info().Str("repo", abs).Str("model", modelName).Msg("Session initialized")

	return InitializeResult{
		Success:        true,
		RepoPath:       abs,
		Model:          modelName,
		FilesInContext: []string{},
	}
}

// writeCheck is the engine's write hook. It reads the current guard on
// every call so a later configure_sandbox applies to in-flight handles.
func (s *Session) writeCheck(path string) error {
	_, err := s.guard.Validate(path, pathguard.IntentWrite)
	return err
}

// ConfigureSandbox replaces the sandbox configuration atomically. The root
// must exist. Repeat calls are idempotent; last write wins.
func (s *Session) ConfigureSandbox(root string, readOnlyPaths []string, branchID string) any {
	if branchID == "" {
		id, err := gonanoid.New()
		if err == nil {
			branchID = id
		}
	}

	guard, err := pathguard.New(root, readOnlyPaths, branchID)
	if err != nil {
		return failure(err)
	}
	s.guard = guard

	readOnly := guard.ReadOnlyPaths()
	if readOnly == nil {
		readOnly = []string{}
	}
	return SandboxResult{
		Success:       true,
		SandboxRoot:   guard.Root(),
		ReadOnlyFiles: readOnly,
		BranchID:      branchID,
	}
}

// AddFiles validates each path for read access and unions the survivors
// into the active set. Blocked paths are reported individually; missing
// paths produce warning notifications, not blocks. Idempotent.
func (s *Session) AddFiles(paths []string) any {
	if s.eng == nil {
		return failure(ErrNotInitialized)
	}

	added := make([]string, 0, len(paths))
	blocked := make([]string, 0)

	for _, p := range paths {
		resolved, err := s.guard.Validate(p, pathguard.IntentRead)
		if err != nil {
			if pathguard.IsViolation(err) {
				log.Warn().Str("path", p).Str("label", s.guard.Label()).Msg("Path blocked by sandbox")
				blocked = append(blocked, p)
				continue
			}
			return failure(err)
		}
		if _, err := os.Stat(resolved); err != nil {
			s.events.Notify(LevelWarning, fmt.Sprintf("File not found: %s", p))
			continue
		}
		s.eng.AddFile(resolved)
		added = append(added, resolved)
		if err := s.watcher.Watch(resolved); err != nil {
			log.Debug().Err(err).Str("path", resolved).Msg("Could not watch file")
		}
	}

	result := AddFilesResult{
		Success:        true,
		FilesAdded:     added,
		FilesInContext: s.eng.Files(),
	}
	if len(blocked) > 0 {
		result.BlockedBySandbox = blocked
		result.Warning = fmt.Sprintf("%d files blocked by sandbox", len(blocked))
	}
	return result
}

// RemoveFiles drops each resolved path from the active set. Removing an
// absent path is a no-op.
func (s *Session) RemoveFiles(paths []string) any {
	if s.eng == nil {
		return failure(ErrNotInitialized)
	}

	removed := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if resolved, rerr := filepath.EvalSymlinks(abs); rerr == nil {
			abs = resolved
		}
		s.eng.DropFile(abs)
		s.watcher.Unwatch(abs)
		removed = append(removed, abs)
	}

	return RemoveFilesResult{
		Success:        true,
		FilesRemoved:   removed,
		FilesInContext: s.eng.Files(),
	}
}

// RunPrompt delegates one instruction to the engine and reports side
// effects discovered by a before/after scan of the effective scan root.
// The diff is a heuristic: a file recreated with identical content is
// indistinguishable from an untouched one, and active files are reported
// as modified whether or not the engine wrote to them.
func (s *Session) RunPrompt(ctx context.Context, message string) any {
	if s.eng == nil {
		return failure(ErrNotInitialized)
	}

	before := s.scanSnapshot()
	start := time.Now()

	response, err := s.runEngine(ctx, message)
	if err != nil {
		return failureDiag(err, fmt.Sprintf("instruction failed after %s", time.Since(start)))
	}

	newFiles, modified := s.diffSnapshot(before)
	s.record(message, response, time.Since(start))

	return PromptResult{
		Success:        true,
		Response:       response,
		NewFiles:       newFiles,
		ModifiedFiles:  modified,
		FilesInContext: s.eng.Files(),
	}
}

// runEngine invokes the collaborator, converting panics into errors so the
// transport loop stays alive no matter what the engine does.
func (s *Session) runEngine(ctx context.Context, message string) (response string, err error) {
	s.watcher.Suppress()
	defer s.watcher.Resume()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine panic: %v", r)
		}
	}()
	return s.eng.Run(ctx, message)
}

// SetTestCmd configures the engine's test command.
func (s *Session) SetTestCmd(command string) any {
	if s.eng == nil {
		return failure(ErrNotInitialized)
	}
	s.eng.SetTestCommand(command)
	return CommandResult{Success: true, TestCmd: command}
}

// SetLintCmd configures the engine's lint command.
func (s *Session) SetLintCmd(command string) any {
	if s.eng == nil {
		return failure(ErrNotInitialized)
	}
	s.eng.SetLintCommand(command)
	return CommandResult{Success: true, LintCmd: command}
}

// GetContextFiles returns a snapshot of the active file set.
func (s *Session) GetContextFiles() any {
	files := []string{}
	if s.eng != nil {
		files = s.eng.Files()
	}
	return ContextFilesResult{Success: true, FilesInContext: files}
}

// GetRepoMap returns the engine's repository summary.
func (s *Session) GetRepoMap(ctx context.Context) any {
	if s.eng == nil {
		return failure(ErrNotInitialized)
	}
	repoMap, err := s.eng.RepoMap(ctx)
	if err != nil {
		return failure(err)
	}
	return RepoMapResult{
		Success:        true,
		RepoMap:        repoMap,
		FilesInContext: s.eng.Files(),
	}
}

// GetHistory returns the most recent instruction records.
func (s *Session) GetHistory(limit int) any {
	if s.hist == nil {
		return failure(fmt.Errorf("history recording is disabled"))
	}
	records, err := s.hist.Recent(limit)
	if err != nil {
		return failure(err)
	}
	return struct {
		Success bool             `json:"success"`
		Records []history.Record `json:"records"`
	}{Success: true, Records: records}
}

// Health reports liveness. It must succeed even when initialize was never
// called or failed.
func (s *Session) Health() any {
	return HealthResult{
		Success:     true,
		Alive:       true,
		Initialized: s.eng != nil,
		PID:         os.Getpid(),
	}
}

// Shutdown releases the engine handle and clears session state. Idempotent.
// Status and introspection calls keep working afterwards.
func (s *Session) Shutdown() any {
	if s.eng != nil {
		s.unwatchActive()
		if err := s.eng.Close(); err != nil {
			log.Warn().Err(err).Msg("Engine close failed during shutdown")
		}
		s.eng = nil
	}
	s.repoPath = ""
	s.modelName = ""
	s.guard = pathguard.Open("")

	log.Info().Msg("Session shut down")
	return ShutdownResult{Success: true, Message: "Shutdown complete"}
}

// unwatchActive drops watches for the current engine's active files, so a
// replaced or released engine leaves no stale staleness signals behind.
func (s *Session) unwatchActive() {
	for _, f := range s.eng.Files() {
		s.watcher.Unwatch(f)
	}
}

// record appends an instruction record, best effort.
func (s *Session) record(instruction, response string, duration time.Duration) {
	if s.hist == nil {
		return
	}
	err := s.hist.Append(history.Record{
		SessionLabel: s.guard.Label(),
		Model:        s.modelName,
		Instruction:  instruction,
		Response:     response,
		Duration:     duration,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to record instruction history")
	}
}
