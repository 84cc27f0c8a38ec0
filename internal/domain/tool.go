package domain

import (
	"fmt"
	"strings"
	"time"
)

// Method identifies how a tool is executed once selected.
type Method string

const (
	MethodFunction Method = "function"
	MethodHTTP     Method = "http"
	MethodMCP      Method = "mcp"
)

// Methods lists every execution method a tool descriptor may declare.
var Methods = []Method{MethodFunction, MethodHTTP, MethodMCP}

// ValidMethod reports whether m is on the method allow-list.
func ValidMethod(m Method) bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

// Parameter describes a single tool parameter.
type Parameter struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Default     any      `json:"default,omitempty"`
	Constraints []string `json:"constraints,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Tool is a registered tool descriptor. The registry owns tool values
// exclusively; mutation happens only via full replace-on-re-register.
type Tool struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Method      Method        `json:"method"`
	Tags        []string      `json:"tags"`
	Parameters  []Parameter   `json:"parameters"`
	Examples    []string      `json:"examples"`
	Enabled     bool          `json:"enabled"`
	Priority    float64       `json:"priority"`
	Timeout     time.Duration `json:"timeout"`
}

// HasTag reports whether the tool carries the given tag.
func (t Tool) HasTag(tag string) bool {
	for _, candidate := range t.Tags {
		if candidate == tag {
			return true
		}
	}
	return false
}

// Validate checks a tool descriptor before registration.
func (t Tool) Validate() error {
	const op = "tool.validate"

	var problems []string
	if strings.TrimSpace(t.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(t.Description) == "" {
		problems = append(problems, "description is required")
	}
	if strings.TrimSpace(t.Category) == "" {
		problems = append(problems, "category is required")
	}
	if !ValidMethod(t.Method) {
		problems = append(problems, fmt.Sprintf("method %q is not one of %v", t.Method, Methods))
	}
	for i, tag := range t.Tags {
		if strings.TrimSpace(tag) == "" {
			problems = append(problems, fmt.Sprintf("tags[%d] is empty", i))
		}
	}
	for i, param := range t.Parameters {
		if strings.TrimSpace(param.Name) == "" {
			problems = append(problems, fmt.Sprintf("parameters[%d]: name is required", i))
		}
		if strings.TrimSpace(param.Type) == "" {
			problems = append(problems, fmt.Sprintf("parameters[%d]: type is required", i))
		}
	}
	for i, example := range t.Examples {
		if strings.TrimSpace(example) == "" {
			problems = append(problems, fmt.Sprintf("examples[%d] is empty", i))
		}
	}
	if t.Priority < 0 {
		problems = append(problems, "priority must not be negative")
	}
	if t.Timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}

	if len(problems) > 0 {
		return E(CodeInvalidArgument, op, strings.Join(problems, "; "), nil)
	}
	return nil
}

// CloneTool returns a deep copy of a tool descriptor.
func CloneTool(t Tool) Tool {
	out := t
	if t.Tags != nil {
		out.Tags = append([]string(nil), t.Tags...)
	}
	if t.Examples != nil {
		out.Examples = append([]string(nil), t.Examples...)
	}
	if t.Parameters != nil {
		out.Parameters = make([]Parameter, len(t.Parameters))
		copy(out.Parameters, t.Parameters)
		for i, param := range t.Parameters {
			if param.Constraints != nil {
				out.Parameters[i].Constraints = append([]string(nil), param.Constraints...)
			}
		}
	}
	return out
}

// CloneTools deep-copies a tool slice.
func CloneTools(tools []Tool) []Tool {
	if tools == nil {
		return nil
	}
	out := make([]Tool, len(tools))
	for i, tool := range tools {
		out[i] = CloneTool(tool)
	}
	return out
}
