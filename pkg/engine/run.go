package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

const systemPrompt = `You are an expert software engineer editing a codebase.
When you change a file, reply with the file path on its own line followed by
a fenced code block containing the COMPLETE new file content. Files you do
not change must not appear in your reply. Explain your changes briefly in
plain text outside the code blocks.`

// Run sends one instruction to the model with the in-scope files as
// context, applies any returned edits, and returns the response text.
// Progress and edit results are emitted through the current sink.
func (e *llmEngine) Run(ctx context.Context, instruction string) (string, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return "", ErrEngineClosed
	}

	prompt, err := e.buildPrompt(instruction)
	if err != nil {
		return "", err
	}

	system := systemPrompt
	if e.testCmd != "" {
		system += fmt.Sprintf("\nAfter your edits the user will run tests with: %s", e.testCmd)
	}
	if e.lintCmd != "" {
		system += fmt.Sprintf("\nAfter your edits the user will lint with: %s", e.lintCmd)
	}

	response, err := e.provider.Complete(ctx, completionRequest{
		Model:  e.model,
		System: system,
		Prompt: prompt,
	})
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}

	sink := e.currentSink()
	for _, line := range strings.SplitAfter(response, "\n") {
		if line != "" {
			sink.EmitOutput(line)
		}
	}

	edits := parseWholeFileEdits(response)
	for _, edit := range edits {
		path := edit.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(e.repoPath, path)
		}
		if err := e.applyEdit(path, edit.Content); err != nil {
			sink.EmitError(fmt.Sprintf("edit to %s failed: %v", edit.Path, err))
			return response, fmt.Errorf("failed to apply edit to %s: %w", edit.Path, err)
		}
		sink.EmitOutput(fmt.Sprintf("Applied edit to %s\n", edit.Path))
	}

	log.Debug().
		Int("edits", len(edits)).
		Int("response_bytes", len(response)).
		Msg("Instruction completed")

	return response, nil
}

func (e *llmEngine) applyEdit(path, content string) error {
	if e.writeCheck != nil {
		if err := e.writeCheck(path); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// buildPrompt assembles the instruction plus the content of every in-scope
// file. Unreadable files are skipped with a note rather than failing the
// whole call.
func (e *llmEngine) buildPrompt(instruction string) (string, error) {
	var b strings.Builder
	b.WriteString(instruction)

	files := e.Files()
	if len(files) > 0 {
		b.WriteString("\n\nThese files are in scope:\n")
	}
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			b.WriteString(fmt.Sprintf("\n%s (unreadable: %v)\n", e.displayPath(f), err))
			continue
		}
		b.WriteString(fmt.Sprintf("\n%s\n```\n%s\n```\n", e.displayPath(f), string(content)))
	}
	return b.String(), nil
}

// displayPath prefers repo-relative paths in prompts so the model replies
// with the same form.
func (e *llmEngine) displayPath(path string) string {
	rel, err := filepath.Rel(e.repoPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// RepoMap returns a flat listing of regular files under the repository,
// excluding version-control and dependency-cache directories.
func (e *llmEngine) RepoMap(ctx context.Context) (string, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return "", ErrEngineClosed
	}

	var files []string
	err := filepath.WalkDir(e.repoPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if skippedDir(d.Name()) && path != e.repoPath {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, e.displayPath(path))
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	sort.Strings(files)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", e.repoPath)
	for _, f := range files {
		fmt.Fprintf(&b, "  %s\n", f)
	}
	return b.String(), nil
}

// skippedDir names directories excluded from repository scans.
func skippedDir(name string) bool {
	switch name {
	case ".git", ".hg", ".svn", "node_modules", "vendor", "__pycache__", ".venv", ".tox":
		return true
	}
	return false
}
