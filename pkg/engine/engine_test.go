package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider returns a canned response.
type fakeProvider struct {
	response string
	err      error
	lastReq  completionRequest
}

func (f *fakeProvider) Complete(_ context.Context, req completionRequest) (string, error) {
	f.lastReq = req
	return f.response, f.err
}

func (f *fakeProvider) Name() string { return "fake" }

// captureSink records everything emitted.
type captureSink struct {
	output []string
	errs   []string
}

func (c *captureSink) EmitOutput(text string) { c.output = append(c.output, text) }
func (c *captureSink) EmitError(text string)  { c.errs = append(c.errs, text) }

func newTestEngine(t *testing.T, repo string, prov provider) *llmEngine {
	t.Helper()
	return &llmEngine{
		repoPath: repo,
		model:    "claude-3-opus",
		provider: prov,
		sink:     DiscardSink{},
		files:    make(map[string]struct{}),
	}
}

func TestNormalizeModel(t *testing.T) {
	tests := []struct {
		raw      string
		provider string
		model    string
		wantErr  bool
	}{
		{"claude-3-opus", "anthropic", "claude-3-opus", false},
		{"gpt-4", "openai", "gpt-4", false},
		{"o3-mini", "openai", "o3-mini", false},
		{"anthropic/claude-3-haiku", "anthropic", "claude-3-haiku", false},
		{"openai/gpt-4o", "openai", "gpt-4o", false},
		{"mystery-model", "", "", true},
		{"acme/model", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			prov, model, err := NormalizeModel(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownModel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.provider, prov)
			assert.Equal(t, tt.model, model)
		})
	}
}

func TestNew_RepoMustExist(t *testing.T) {
	_, err := New(Options{RepoPath: "/nonexistent/repo", Model: "gpt-4"})
	assert.ErrorIs(t, err, ErrRepoNotFound)
}

func TestNew_RejectsUnknownEditFormat(t *testing.T) {
	_, err := New(Options{RepoPath: t.TempDir(), Model: "gpt-4", EditFormat: "udiff"})
	assert.ErrorIs(t, err, ErrUnsupportedEditFormat)
}

func TestRun_AppliesEdits(t *testing.T) {
	repo := t.TempDir()
	prov := &fakeProvider{response: "Adding the file.\n\nmain.go\n```go\npackage main\n```\n"}
	e := newTestEngine(t, repo, prov)

	sink := &captureSink{}
	e.SwapSink(sink)

	resp, err := e.Run(context.Background(), "create main.go")
	require.NoError(t, err)
	assert.Contains(t, resp, "Adding the file.")

	content, err := os.ReadFile(filepath.Join(repo, "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(content))

	joined := strings.Join(sink.output, "")
	assert.Contains(t, joined, "Applied edit to main.go")
}

func TestRun_IncludesScopedFilesInPrompt(t *testing.T) {
	repo := t.TempDir()
	scoped := filepath.Join(repo, "util.go")
	require.NoError(t, os.WriteFile(scoped, []byte("package util\n"), 0644))

	prov := &fakeProvider{response: "nothing to do"}
	e := newTestEngine(t, repo, prov)
	e.AddFile(scoped)

	_, err := e.Run(context.Background(), "review")
	require.NoError(t, err)
	assert.Contains(t, prov.lastReq.Prompt, "util.go")
	assert.Contains(t, prov.lastReq.Prompt, "package util")
}

func TestRun_WriteCheckBlocksEdit(t *testing.T) {
	repo := t.TempDir()
	blocked := errors.New("blocked by policy")
	prov := &fakeProvider{response: "main.go\n```go\npackage main\n```\n"}
	e := newTestEngine(t, repo, prov)
	e.writeCheck = func(string) error { return blocked }

	_, err := e.Run(context.Background(), "create main.go")
	assert.ErrorIs(t, err, blocked)
	assert.NoFileExists(t, filepath.Join(repo, "main.go"))
}

func TestRun_Closed(t *testing.T) {
	e := newTestEngine(t, t.TempDir(), &fakeProvider{})
	require.NoError(t, e.Close())

	_, err := e.Run(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrEngineClosed)
}

func TestSwapSink_ReturnsPrevious(t *testing.T) {
	e := newTestEngine(t, t.TempDir(), &fakeProvider{})
	first := &captureSink{}
	prev := e.SwapSink(first)
	assert.IsType(t, DiscardSink{}, prev)

	prev = e.SwapSink(nil)
	assert.Equal(t, first, prev)
}

func TestFiles_SortedSnapshot(t *testing.T) {
	e := newTestEngine(t, t.TempDir(), &fakeProvider{})
	e.AddFile("/b.go")
	e.AddFile("/a.go")
	e.AddFile("/a.go")

	assert.Equal(t, []string{"/a.go", "/b.go"}, e.Files())

	e.DropFile("/a.go")
	e.DropFile("/missing.go")
	assert.Equal(t, []string{"/b.go"}, e.Files())
}

func TestRepoMap_SkipsVCSDirs(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(repo, ".git", "HEAD"), []byte("ref"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "main.go"), []byte("package main"), 0644))

	e := newTestEngine(t, repo, &fakeProvider{})
	repoMap, err := e.RepoMap(context.Background())
	require.NoError(t, err)

	assert.Contains(t, repoMap, "main.go")
	assert.NotContains(t, repoMap, "HEAD")
}
