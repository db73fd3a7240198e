// Package schema interprets declared tool input shapes. Shapes are plain
// jsonschema documents; validation walks the declaration and reports every
// violation in one pass instead of stopping at the first.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"paypalmcp/internal/domain"
)

// MustParse decodes a JSON schema literal or panics. Tool shapes are package
// constants, so a bad literal is a programming error caught at startup.
func MustParse(raw string) *jsonschema.Schema {
	var s jsonschema.Schema
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		panic(fmt.Sprintf("invalid schema literal: %v", err))
	}
	return &s
}

// Validate checks args against the declared shape. On violation it returns a
// single INVALID_ARGUMENT error joining every "field.path: reason" with "; ".
// Object shapes are closed: fields not declared in properties are rejected
// unless the shape carries an explicit additionalProperties allowance.
func Validate(s *jsonschema.Schema, args map[string]any) error {
	if s == nil {
		return nil
	}
	var violations []string
	validateValue(s, "", args, &violations)
	if len(violations) == 0 {
		return nil
	}
	return domain.E(domain.CodeInvalidArgument, "schema.validate", strings.Join(violations, "; "), nil)
}

func validateValue(s *jsonschema.Schema, path string, v any, violations *[]string) {
	if s == nil {
		return
	}

	switch s.Type {
	case "object":
		obj, ok := v.(map[string]any)
		if !ok {
			report(violations, path, "expected object")
			return
		}
		validateObject(s, path, obj, violations)
	case "array":
		arr, ok := v.([]any)
		if !ok {
			report(violations, path, "expected array")
			return
		}
		for i, item := range arr {
			validateValue(s.Items, fmt.Sprintf("%s[%d]", path, i), item, violations)
		}
	case "string":
		str, ok := v.(string)
		if !ok {
			report(violations, path, "expected string")
			return
		}
		validateString(s, path, str, violations)
	case "number", "integer":
		num, ok := v.(float64)
		if !ok {
			report(violations, path, "expected number")
			return
		}
		if s.Type == "integer" && num != math.Trunc(num) {
			report(violations, path, "expected integer")
			return
		}
		validateNumber(s, path, num, violations)
	case "boolean":
		if _, ok := v.(bool); !ok {
			report(violations, path, "expected boolean")
			return
		}
	}

	if len(s.Enum) > 0 {
		validateEnum(s, path, v, violations)
	}
}

func validateObject(s *jsonschema.Schema, path string, obj map[string]any, violations *[]string) {
	for _, required := range s.Required {
		if _, ok := obj[required]; !ok {
			report(violations, join(path, required), "required field missing")
		}
	}

	allowExtras := s.AdditionalProperties != nil
	for key, value := range obj {
		prop, declared := s.Properties[key]
		if !declared {
			if !allowExtras {
				report(violations, join(path, key), "unexpected field")
			}
			continue
		}
		validateValue(prop, join(path, key), value, violations)
	}
}

func validateString(s *jsonschema.Schema, path, str string, violations *[]string) {
	if s.MinLength != nil && len(str) < *s.MinLength {
		report(violations, path, fmt.Sprintf("shorter than %d characters", *s.MinLength))
	}
	if s.MaxLength != nil && len(str) > *s.MaxLength {
		report(violations, path, fmt.Sprintf("longer than %d characters", *s.MaxLength))
	}
	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			report(violations, path, "invalid pattern in shape")
		} else if !re.MatchString(str) {
			report(violations, path, fmt.Sprintf("does not match %s", s.Pattern))
		}
	}
	switch s.Format {
	case "email":
		if _, err := mail.ParseAddress(str); err != nil {
			report(violations, path, "invalid email")
		}
	case "uri":
		if parsed, err := url.Parse(str); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			report(violations, path, "invalid URL")
		}
	case "date-time":
		if _, err := time.Parse(time.RFC3339, str); err != nil {
			report(violations, path, "invalid date-time")
		}
	}
}

func validateNumber(s *jsonschema.Schema, path string, num float64, violations *[]string) {
	if s.Minimum != nil && num < *s.Minimum {
		report(violations, path, fmt.Sprintf("must be >= %v", *s.Minimum))
	}
	if s.ExclusiveMinimum != nil && num <= *s.ExclusiveMinimum {
		report(violations, path, fmt.Sprintf("must be > %v", *s.ExclusiveMinimum))
	}
	if s.Maximum != nil && num > *s.Maximum {
		report(violations, path, fmt.Sprintf("must be <= %v", *s.Maximum))
	}
	if s.ExclusiveMaximum != nil && num >= *s.ExclusiveMaximum {
		report(violations, path, fmt.Sprintf("must be < %v", *s.ExclusiveMaximum))
	}
}

func validateEnum(s *jsonschema.Schema, path string, v any, violations *[]string) {
	for _, allowed := range s.Enum {
		if allowed == v {
			return
		}
	}
	labels := make([]string, 0, len(s.Enum))
	for _, allowed := range s.Enum {
		labels = append(labels, fmt.Sprintf("%v", allowed))
	}
	report(violations, path, fmt.Sprintf("must be one of %s", strings.Join(labels, ", ")))
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

func report(violations *[]string, path, reason string) {
	if path == "" {
		path = "(arguments)"
	}
	*violations = append(*violations, fmt.Sprintf("%s: %s", path, reason))
}
