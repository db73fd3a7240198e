// Package tools holds the static catalog of PayPal operations exposed over
// MCP, grouped by business area.
package tools

import (
	"fmt"
	"net/url"
	"strconv"

	"paypalmcp/internal/domain"
)

// Registry is the flattened, immutable tool catalog. Construction fails on a
// duplicate name so a collision can never shadow a tool at runtime.
type Registry struct {
	ordered []domain.ToolDescriptor
	byName  map[string]domain.ToolDescriptor
}

func NewRegistry(groups ...[]domain.ToolDescriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]domain.ToolDescriptor)}
	for _, group := range groups {
		for _, desc := range group {
			if desc.Name == "" {
				return nil, fmt.Errorf("tool with empty name")
			}
			if desc.Handler == nil {
				return nil, fmt.Errorf("tool %q has no handler", desc.Name)
			}
			if _, exists := r.byName[desc.Name]; exists {
				return nil, fmt.Errorf("duplicate tool name %q", desc.Name)
			}
			r.byName[desc.Name] = desc
			r.ordered = append(r.ordered, desc)
		}
	}
	return r, nil
}

// Descriptors returns the catalog in registration order.
func (r *Registry) Descriptors() []domain.ToolDescriptor {
	return r.ordered
}

func (r *Registry) Lookup(name string) (domain.ToolDescriptor, bool) {
	desc, ok := r.byName[name]
	return desc, ok
}

// All returns every tool group in this package.
func All() [][]domain.ToolDescriptor {
	return [][]domain.ToolDescriptor{Payments(), Business(), Identity()}
}

// pathArg extracts a string argument destined for the request path.
func pathArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", domain.E(domain.CodeInvalidArgument, "tools", fmt.Sprintf("%s: required field missing", key), nil)
	}
	str, ok := raw.(string)
	if !ok || str == "" {
		return "", domain.E(domain.CodeInvalidArgument, "tools", fmt.Sprintf("%s: expected non-empty string", key), nil)
	}
	return url.PathEscape(str), nil
}

// bodyWithout copies args minus the fields that moved into the path.
func bodyWithout(args map[string]any, keys ...string) map[string]any {
	body := make(map[string]any, len(args))
	for k, v := range args {
		body[k] = v
	}
	for _, key := range keys {
		delete(body, key)
	}
	return body
}

// pageQuery renders optional page/page_size arguments as a query string.
// Arguments arrive JSON-decoded, so numbers are float64.
func pageQuery(args map[string]any) string {
	q := url.Values{}
	for _, key := range []string{"page", "page_size"} {
		if raw, ok := args[key]; ok {
			if num, ok := raw.(float64); ok && num > 0 {
				q.Set(key, strconv.Itoa(int(num)))
			}
		}
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// remoteFailure wraps a gateway error into a tool-specific message. Transport
// detail stays in the cause and the gateway log, never in the surfaced text.
func remoteFailure(tool, message string, err error) error {
	return domain.E(domain.CodeRemoteCall, "tools."+tool, message, err)
}
