package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/edbridge/pkg/bridge"
)

// runServer feeds input through a full server stack over a fresh session and
// returns the decoded output frames in write order.
func runServer(t *testing.T, input string) []map[string]any {
	t.Helper()

	var out bytes.Buffer
	notifier := NewNotifier(&out)
	session := bridge.NewSession(bridge.Options{Events: notifier})
	server := NewServer(strings.NewReader(input), notifier, Registry(session, RegistryConfig{}), session)

	require.NoError(t, server.Run(context.Background()))

	var frames []map[string]any
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var frame map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &frame), "line %q", scanner.Text())
		frames = append(frames, frame)
	}
	return frames
}

func TestRun_ReadyFrameFirst(t *testing.T) {
	frames := runServer(t, "")

	require.NotEmpty(t, frames)
	assert.Equal(t, MethodReady, frames[0]["method"])
}

func TestRun_HealthRoundTrip(t *testing.T) {
	frames := runServer(t, `{"jsonrpc":"2.0","id":1,"method":"health"}`+"\n"+ExitSentinel+"\n")

	require.Len(t, frames, 2)
	resp := frames[1]
	assert.Equal(t, float64(1), resp["id"])
	result := resp["result"].(map[string]any)
	assert.Equal(t, true, result["alive"])
	assert.Equal(t, false, result["initialized"])
	assert.Greater(t, result["pid"].(float64), float64(0))
}

func TestRun_MalformedLineKeepsLoopAlive(t *testing.T) {
	input := "this is not json\n" +
		`{"jsonrpc":"2.0","id":2,"method":"health"}` + "\n" +
		ExitSentinel + "\n"

	frames := runServer(t, input)

	require.Len(t, frames, 3)

	parseErr := frames[1]
	require.Contains(t, parseErr, "id")
	assert.Nil(t, parseErr["id"])
	errObj := parseErr["error"].(map[string]any)
	assert.Equal(t, float64(CodeParseError), errObj["code"])

	// The loop kept going: the next frame was served normally.
	assert.Equal(t, float64(2), frames[2]["id"])
	assert.NotContains(t, frames[2], "error")
}

func TestRun_ExitSentinelStopsProcessing(t *testing.T) {
	input := ExitSentinel + "\n" +
		`{"jsonrpc":"2.0","id":1,"method":"health"}` + "\n"

	frames := runServer(t, input)

	require.Len(t, frames, 1)
	assert.Equal(t, MethodReady, frames[0]["method"])
}

func TestRun_EmptyLinesIgnored(t *testing.T) {
	input := "\n\n   \n" +
		`{"jsonrpc":"2.0","id":1,"method":"health"}` + "\n\n" +
		ExitSentinel + "\n"

	frames := runServer(t, input)

	require.Len(t, frames, 2)
	assert.Equal(t, float64(1), frames[1]["id"])
}

func TestRun_NotificationNeverAnswered(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":null,"method":"health"}` + "\n" +
		`{"jsonrpc":"2.0","method":"no_such_method"}` + "\n" +
		`{"jsonrpc":"2.0","method":"run_prompt"}` + "\n" +
		ExitSentinel + "\n"

	frames := runServer(t, input)

	// Success, unknown method and invalid params alike: no id, no frame.
	require.Len(t, frames, 1)
	assert.Equal(t, MethodReady, frames[0]["method"])
}

func TestRun_TrailingLineWithoutNewline(t *testing.T) {
	frames := runServer(t, `{"jsonrpc":"2.0","id":9,"method":"health"}`)

	require.Len(t, frames, 2)
	assert.Equal(t, float64(9), frames[1]["id"])
}

func TestRun_UninitializedOperationIsStructuredFailure(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"run_prompt","params":{"message":"hi"}}` + "\n" +
		ExitSentinel + "\n"

	frames := runServer(t, input)

	require.Len(t, frames, 2)
	resp := frames[1]

	// Domain failures travel in the result member, not as RPC errors.
	assert.NotContains(t, resp, "error")
	result := resp["result"].(map[string]any)
	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"], "Not initialized")
}

func TestRun_InvalidParamsIsRPCError(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"add_files","params":{}}` + "\n" +
		ExitSentinel + "\n"

	frames := runServer(t, input)

	require.Len(t, frames, 2)
	errObj := frames[1]["error"].(map[string]any)
	assert.Equal(t, float64(CodeInvalidParams), errObj["code"])
}

func TestRun_StringIDEchoedBack(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":"req-abc","method":"health"}` + "\n" +
		ExitSentinel + "\n"

	frames := runServer(t, input)

	require.Len(t, frames, 2)
	assert.Equal(t, "req-abc", frames[1]["id"])
}

func TestRegistry_CoversProtocolSurface(t *testing.T) {
	session := bridge.NewSession(bridge.Options{})
	methods := Registry(session, RegistryConfig{}).Methods()

	expected := []string{
		"initialize", "configure_sandbox",
		"add_files", "remove_files",
		"run_prompt", "run_prompt_streaming",
		"set_test_cmd", "set_lint_cmd",
		"get_context_files", "get_repo_map", "get_history",
		"search_code", "find_definition",
		"health", "shutdown",
	}
	assert.ElementsMatch(t, expected, methods)
}
