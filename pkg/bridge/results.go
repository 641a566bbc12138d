package bridge

import (
	"github.com/harun/edbridge/pkg/pathguard"
)

// Failure is the shared shape of a whole-call failure. Every session
// operation converts collaborator and internal faults into one of these
// instead of propagating, so the transport loop survives any outcome.
type Failure struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Diagnostic string `json:"diagnostic,omitempty"`

	// SandboxViolation keeps policy blocks distinguishable from
	// accidental failures on the wire.
	SandboxViolation bool `json:"sandbox_violation,omitempty"`
}

// failure converts err into a Failure, preserving sandbox violation
// identity.
func failure(err error) Failure {
	return Failure{
		Success:          false,
		Error:            err.Error(),
		SandboxViolation: pathguard.IsViolation(err),
	}
}

// failureDiag is failure with an attached machine diagnostic.
func failureDiag(err error, diagnostic string) Failure {
	f := failure(err)
	f.Diagnostic = diagnostic
	return f
}

// InitializeResult is the initialize response.
type InitializeResult struct {
	Success        bool     `json:"success"`
	RepoPath       string   `json:"repo_path"`
	Model          string   `json:"model"`
	FilesInContext []string `json:"files_in_context"`
}

// SandboxResult is the configure_sandbox response.
type SandboxResult struct {
	Success       bool     `json:"success"`
	SandboxRoot   string   `json:"sandbox_root"`
	ReadOnlyFiles []string `json:"read_only_files"`
	BranchID      string   `json:"branch_id"`
}

// AddFilesResult is the add_files response. Partial failure is expected:
// blocked paths are reported individually, never as a whole-call failure.
type AddFilesResult struct {
	Success          bool     `json:"success"`
	FilesAdded       []string `json:"files_added"`
	BlockedBySandbox []string `json:"blocked_by_sandbox,omitempty"`
	Warning          string   `json:"warning,omitempty"`
	FilesInContext   []string `json:"files_in_context"`
}

// RemoveFilesResult is the remove_files response.
type RemoveFilesResult struct {
	Success        bool     `json:"success"`
	FilesRemoved   []string `json:"files_removed"`
	FilesInContext []string `json:"files_in_context"`
}

// PromptResult is the run_prompt / run_prompt_streaming response.
type PromptResult struct {
	Success        bool     `json:"success"`
	Response       string   `json:"response"`
	NewFiles       []string `json:"new_files"`
	ModifiedFiles  []string `json:"modified_files"`
	FilesInContext []string `json:"files_in_context"`
}

// CommandResult is the set_test_cmd / set_lint_cmd response.
type CommandResult struct {
	Success bool   `json:"success"`
	TestCmd string `json:"test_cmd,omitempty"`
	LintCmd string `json:"lint_cmd,omitempty"`
}

// ContextFilesResult is the get_context_files response.
type ContextFilesResult struct {
	Success        bool     `json:"success"`
	FilesInContext []string `json:"files_in_context"`
}

// RepoMapResult is the get_repo_map response.
type RepoMapResult struct {
	Success        bool     `json:"success"`
	RepoMap        string   `json:"repo_map"`
	FilesInContext []string `json:"files_in_context"`
}

// HealthResult is the health response. It never depends on the engine.
type HealthResult struct {
	Success     bool `json:"success"`
	Alive       bool `json:"alive"`
	Initialized bool `json:"initialized"`
	PID         int  `json:"pid"`
}

// ShutdownResult is the shutdown response.
type ShutdownResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
