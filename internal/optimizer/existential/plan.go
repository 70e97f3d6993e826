// Transform plans for the existential specializer
// A plan is the serialized output of the candidate-selection pass: which
// functions to specialize and, per argument, whether the function consumes
// the boxed value and which access mode opening requires. Plans are the
// input format of the auriga-opt tool.

package existential

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/auriga-lang/auriga/internal/air"
)

// Plan lists the specializations to perform on a module.
type Plan struct {
	Transforms []PlanEntry `yaml:"transforms"`
}

// PlanEntry selects one function and its arguments.
type PlanEntry struct {
	Function  string         `yaml:"function"`
	Arguments []PlanArgument `yaml:"arguments"`
}

// PlanArgument selects one argument of the function.
type PlanArgument struct {
	Index    int    `yaml:"index"`
	Consumed bool   `yaml:"consumed"`
	Access   string `yaml:"access,omitempty"` // "immutable" (default) or "mutable"
}

// LoadPlan reads and validates a YAML plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return ParsePlan(data)
}

// ParsePlan parses a YAML plan document.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	for _, e := range plan.Transforms {
		if e.Function == "" {
			return nil, fmt.Errorf("plan entry missing function name")
		}
		if len(e.Arguments) == 0 {
			return nil, fmt.Errorf("plan entry for %q selects no arguments", e.Function)
		}
		for _, a := range e.Arguments {
			if a.Index < 0 {
				return nil, fmt.Errorf("plan entry for %q has negative argument index %d", e.Function, a.Index)
			}
			switch a.Access {
			case "", "immutable", "mutable":
			default:
				return nil, fmt.Errorf("plan entry for %q has unknown access mode %q", e.Function, a.Access)
			}
		}
	}
	return &plan, nil
}

// Descriptors converts a plan entry into the transform's argument
// selection for fn.
func (e PlanEntry) Descriptors(fn *air.Function) (map[int]TransformArgumentDescriptor, error) {
	out := make(map[int]TransformArgumentDescriptor, len(e.Arguments))
	for _, a := range e.Arguments {
		if a.Index >= len(fn.Type().Params) {
			return nil, fmt.Errorf("argument index %d out of range for %q", a.Index, fn.Name)
		}
		if _, dup := out[a.Index]; dup {
			return nil, fmt.Errorf("argument index %d selected twice for %q", a.Index, fn.Name)
		}
		access := air.OpenedImmutableAccess
		if a.Access == "mutable" {
			access = air.OpenedMutableAccess
		}
		out[a.Index] = TransformArgumentDescriptor{Consumed: a.Consumed, Access: access}
	}
	return out, nil
}
