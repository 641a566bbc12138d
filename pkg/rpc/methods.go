package rpc

import (
	"context"

	"github.com/harun/edbridge/pkg/bridge"
)

// defaultModel is used when a host omits the model identifier, matching
// the collaborator's historical default.
const defaultModel = "gpt-4"

// RegistryConfig carries operator-level defaults into the registry.
type RegistryConfig struct {
	// DefaultModel is used when initialize omits model_name.
	DefaultModel string

	// ModelAliases maps short names to full model identifiers.
	ModelAliases map[string]string
}

// resolveModel applies the alias table and defaults.
func (rc RegistryConfig) resolveModel(name string) string {
	if name == "" {
		name = rc.DefaultModel
	}
	if name == "" {
		name = defaultModel
	}
	if full, ok := rc.ModelAliases[name]; ok {
		return full
	}
	return name
}

// Registry builds the fixed operation registry over a session. Every
// method the host can invoke is declared here with its parameter schema;
// the dynamic part of dispatch is only the name lookup.
func Registry(session *bridge.Session, rc RegistryConfig) *Dispatcher {
	return NewDispatcher([]Operation{
		{
			Name: "initialize",
			Params: []Param{
				{Name: "repo_path", Type: "string", Required: true},
				{Name: "model_name", Type: "string"},
			},
			Handler: func(ctx context.Context, args map[string]any) any {
				model := rc.resolveModel(stringArg(args, "model_name"))
				return session.Initialize(ctx, stringArg(args, "repo_path"), model)
			},
		},
		{
			Name: "configure_sandbox",
			Params: []Param{
				{Name: "sandbox_root", Type: "string", Required: true},
				{Name: "read_only_paths", Type: "array", Items: "string"},
				{Name: "branch_id", Type: "string"},
			},
			Handler: func(ctx context.Context, args map[string]any) any {
				return session.ConfigureSandbox(
					stringArg(args, "sandbox_root"),
					stringSliceArg(args, "read_only_paths"),
					stringArg(args, "branch_id"),
				)
			},
		},
		{
			Name: "add_files",
			Params: []Param{
				{Name: "file_paths", Type: "array", Items: "string", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) any {
				return session.AddFiles(stringSliceArg(args, "file_paths"))
			},
		},
		{
			Name: "remove_files",
			Params: []Param{
				{Name: "file_paths", Type: "array", Items: "string", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) any {
				return session.RemoveFiles(stringSliceArg(args, "file_paths"))
			},
		},
		{
			Name: "run_prompt",
			Params: []Param{
				{Name: "message", Type: "string", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) any {
				return session.RunPrompt(ctx, stringArg(args, "message"))
			},
		},
		{
			Name: "run_prompt_streaming",
			Params: []Param{
				{Name: "message", Type: "string", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) any {
				return session.RunPromptStreaming(ctx, stringArg(args, "message"))
			},
		},
		{
			Name: "set_test_cmd",
			Params: []Param{
				{Name: "command", Type: "string", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) any {
				return session.SetTestCmd(stringArg(args, "command"))
			},
		},
		{
			Name: "set_lint_cmd",
			Params: []Param{
				{Name: "command", Type: "string", Required: true},
			},
			Handler: func(ctx context.Context, args map[string]any) any {
				return session.SetLintCmd(stringArg(args, "command"))
			},
		},
		{
			Name: "get_context_files",
			Handler: func(ctx context.Context, args map[string]any) any {
				return session.GetContextFiles()
			},
		},
		{
			Name: "get_repo_map",
			Handler: func(ctx context.Context, args map[string]any) any {
				return session.GetRepoMap(ctx)
			},
		},
		{
			Name: "get_history",
			Params: []Param{
				{Name: "limit", Type: "integer"},
			},
			Handler: func(ctx context.Context, args map[string]any) any {
				return session.GetHistory(intArg(args, "limit"))
			},
		},
		{
			Name: "search_code",
			Params: []Param{
				{Name: "pattern", Type: "string", Required: true},
				{Name: "path", Type: "string"},
			},
			Handler: func(ctx context.Context, args map[string]any) any {
				return session.SearchCode(ctx, stringArg(args, "pattern"), stringArg(args, "path"))
			},
		},
		{
			Name: "find_definition",
			Params: []Param{
				{Name: "symbol", Type: "string", Required: true},
				{Name: "path", Type: "string"},
			},
			Handler: func(ctx context.Context, args map[string]any) any {
				return session.FindDefinition(ctx, stringArg(args, "symbol"), stringArg(args, "path"))
			},
		},
		{
			Name: "health",
			Handler: func(ctx context.Context, args map[string]any) any {
				return session.Health()
			},
		},
		{
			Name: "shutdown",
			Handler: func(ctx context.Context, args map[string]any) any {
				return session.Shutdown()
			},
		},
	})
}
