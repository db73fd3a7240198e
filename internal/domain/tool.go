package domain

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// Invoker is the authenticated request surface handed to tool handlers. The
// implementation owns credential attachment and the single 401 replay.
type Invoker interface {
	Do(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}

// ToolHandler runs a tool against validated arguments. It returns the remote
// response body verbatim or a domain error whose message is safe to surface.
type ToolHandler func(ctx context.Context, api Invoker, args map[string]any) (json.RawMessage, error)

// ToolDescriptor is an immutable catalog entry. A nil InputSchema means the
// tool opted out of validation and arguments pass through unchecked.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
	Handler     ToolHandler
}
