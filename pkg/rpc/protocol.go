// Package rpc implements the newline-delimited JSON-RPC 2.0 surface of the
// bridge: frame types, the operation registry and dispatcher, the stdio
// transport loop, and the notifier that interleaves out-of-band frames with
// responses on the same output stream.
package rpc

import "encoding/json"

// Version is the protocol version tag every frame carries.
const Version = "2.0"

// ExitSentinel is the out-of-band control line (not JSON) that triggers
// orderly shutdown of the transport loop.
const ExitSentinel = "__EXIT__"

// Reserved JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is one inbound frame. A nil ID (absent or null) marks a
// notification: it is routed and invoked, but never answered.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the frame carries no correlation id.
func (r *Request) IsNotification() bool {
	return r.ID == nil
}

// Response is one outbound response frame, correlated by echoing the
// inbound id.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// RPCError is the error member of a response frame.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Notification is one unsolicited server-to-host frame. It never carries
// an id.
type Notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// Server-initiated frame methods.
const (
	MethodReady        = "ready"
	MethodNotification = "notification"
	MethodStream       = "stream"
)

// NotificationParams is the params shape of "notification" frames.
type NotificationParams struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// StreamParams is the params shape of "stream" frames. Timestamp is unix
// milliseconds.
type StreamParams struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

func successResponse(id, result any) *Response {
	return &Response{JSONRPC: Version, ID: id, Result: result}
}

func errorResponse(id any, code int, message string, data any) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Error:   &RPCError{Code: code, Message: message, Data: data},
	}
}
