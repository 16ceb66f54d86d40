package shape

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// RootField names the body itself in a Violation.
const RootField = "(root)"

// Violation is one field that does not match its declaration.
type Violation struct {
	Field  string
	Reason string
}

func (v Violation) String() string {
	return v.Field + ": " + v.Reason
}

// ViolationError reports every violation found in one body.
type ViolationError struct {
	Shape      string
	Violations []Violation
}

func (e *ViolationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s shape violated: %s", e.Shape, strings.Join(parts, "; "))
}

// Fields returns the offending field paths.
func (e *ViolationError) Fields() []string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field
	}
	return fields
}

// Validate checks body against s. A nil or empty result means the body conforms.
func Validate(body []byte, s *Shape) []Violation {
	if s == nil {
		return nil
	}
	if !json.Valid(body) {
		return []Violation{{Field: RootField, Reason: "body is not valid JSON"}}
	}

	schemaLoader := gojsonschema.NewGoLoader(s.JSONSchema())
	documentLoader := gojsonschema.NewBytesLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return []Violation{{Field: RootField, Reason: fmt.Sprintf("schema validation error: %v", err)}}
	}
	if result.Valid() {
		return nil
	}

	violations := make([]Violation, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, toViolation(desc))
	}
	return violations
}

// Check is Validate returning a *ViolationError instead of a slice.
func Check(body []byte, s *Shape) error {
	violations := Validate(body, s)
	if len(violations) == 0 {
		return nil
	}
	return &ViolationError{Shape: s.Name, Violations: violations}
}

func toViolation(desc gojsonschema.ResultError) Violation {
	field := fieldPath(desc.Context())
	details := desc.Details()

	switch desc.Type() {
	case "required":
		if prop, ok := details["property"].(string); ok {
			field = join(field, prop)
		}
		return Violation{Field: field, Reason: "missing required field"}
	case "invalid_type":
		return Violation{
			Field:  field,
			Reason: fmt.Sprintf("expected %v, got %v", details["expected"], details["given"]),
		}
	}
	return Violation{Field: field, Reason: desc.Description()}
}

func fieldPath(ctx *gojsonschema.JsonContext) string {
	if ctx == nil {
		return RootField
	}
	path := ctx.String()
	if path == RootField {
		return RootField
	}
	return strings.TrimPrefix(path, RootField+".")
}

func join(parent, child string) string {
	if parent == RootField || parent == "" {
		return child
	}
	return parent + "." + child
}
