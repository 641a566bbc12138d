package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

// Param declares one parameter of a registered operation: its name (keyed
// binding), position (order in this slice, for positional binding), JSON
// type, and whether it may be omitted.
type Param struct {
	Name     string
	Type     string // JSON schema type: string, integer, number, boolean, array, object
	Items    string // element type for arrays
	Required bool
}

// Handler executes one operation against schema-validated arguments.
// Handlers return the result frame payload directly; operation-level
// failures are structured results, not errors.
type Handler func(ctx context.Context, args map[string]any) any

// Operation is one entry in the method registry.
type Operation struct {
	Name    string
	Params  []Param
	Handler Handler

	schema *gojsonschema.Schema
}

// Dispatcher routes inbound frames to registered operations. The registry
// is fixed after construction: unknown methods and shape mismatches fail at
// the lookup, never inside a handler.
type Dispatcher struct {
	ops map[string]*Operation
}

// NewDispatcher builds a dispatcher over a fixed set of operations.
// Registering an operation with an invalid parameter declaration is a
// programming error and panics at startup.
func NewDispatcher(ops []Operation) *Dispatcher {
	d := &Dispatcher{ops: make(map[string]*Operation, len(ops))}
	for i := range ops {
		op := ops[i]
		schema, err := buildSchema(op.Params)
		if err != nil {
			panic(fmt.Sprintf("invalid parameter schema for %s: %v", op.Name, err))
		}
		op.schema = schema
		d.ops[op.Name] = &op
	}
	return d
}

// Methods returns the registered method names.
func (d *Dispatcher) Methods() []string {
	names := make([]string, 0, len(d.ops))
	for name := range d.ops {
		names = append(names, name)
	}
	return names
}

// Dispatch resolves and invokes the operation for req. It returns the
// response frame to write, or nil when req is a notification (fire and
// forget: errors are logged and swallowed because there is no id to attach
// them to).
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) *Response {
	resp := d.dispatch(ctx, req)
	if req.IsNotification() {
		if resp != nil && resp.Error != nil {
			log.Warn().
				Str("method", req.Method).
				Int("code", resp.Error.Code).
				Str("error", resp.Error.Message).
				Msg("Error in fire-and-forget notification")
		}
		return nil
	}
	return resp
}

func (d *Dispatcher) dispatch(ctx context.Context, req *Request) *Response {
	if req.JSONRPC != Version {
		return errorResponse(req.ID, CodeInvalidRequest, "Invalid Request", nil)
	}

	op, ok := d.ops[req.Method]
	if !ok {
		return errorResponse(req.ID, CodeMethodNotFound,
			fmt.Sprintf("Method not found: %s", req.Method), nil)
	}

	args, err := op.bindParams(req.Params)
	if err != nil {
		return errorResponse(req.ID, CodeInvalidParams,
			fmt.Sprintf("Invalid params: %v", err), nil)
	}

	result, err := invoke(ctx, op, args)
	if err != nil {
		return errorResponse(req.ID, CodeInternalError,
			fmt.Sprintf("Internal error: %v", err),
			map[string]any{"trace": string(debug.Stack())})
	}
	return successResponse(req.ID, result)
}

// invoke runs the handler with panic recovery so one bad operation cannot
// take down the transport loop.
func invoke(ctx context.Context, op *Operation, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return op.Handler(ctx, args), nil
}

// bindParams adapts the loosely-typed params member into the operation's
// argument map. Params arrive keyed (object, bound by name) or positional
// (array, bound by declaration order); both shapes pass through the same
// schema validation afterwards.
func (op *Operation) bindParams(raw json.RawMessage) (map[string]any, error) {
	args := map[string]any{}

	if len(raw) > 0 {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("params are not valid JSON: %w", err)
		}

		switch v := decoded.(type) {
		case nil:
		case map[string]any:
			args = v
		case []any:
			if len(v) > len(op.Params) {
				return nil, fmt.Errorf("%s takes at most %d parameters, got %d",
					op.Name, len(op.Params), len(v))
			}
			for i, val := range v {
				args[op.Params[i].Name] = val
			}
		default:
			return nil, fmt.Errorf("params must be an object or an array")
		}
	}

	if err := op.validate(args); err != nil {
		return nil, err
	}
	return args, nil
}

func (op *Operation) validate(args map[string]any) error {
	result, err := op.schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// buildSchema compiles the declared parameter list into a JSON schema for
// the keyed form.
func buildSchema(params []Param) (*gojsonschema.Schema, error) {
	properties := map[string]any{}
	required := []string{}

	for _, p := range params {
		prop := map[string]any{"type": p.Type}
		if p.Type == "array" && p.Items != "" {
			prop["items"] = map[string]any{"type": p.Items}
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schemaMap := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schemaMap["required"] = required
	}

	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
}

// Argument extraction helpers. Schema validation ran before these, so a
// missing optional value yields the zero value and types are trusted.

func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

func intArg(args map[string]any, name string) int {
	// JSON numbers decode as float64.
	f, _ := args[name].(float64)
	return int(f)
}

func stringSliceArg(args map[string]any, name string) []string {
	raw, _ := args[name].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
