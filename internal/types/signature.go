// Generic signatures for the Auriga compiler
// A generic signature is an ordered list of generic type parameters
// together with the requirements imposed on them. Specialization passes
// extend an existing signature with fresh parameters at a deeper depth.

package types

import (
	"fmt"
	"strings"
)

// ====== Requirements ======

// RequirementKind classifies a generic requirement.
type RequirementKind int

const (
	// RequirementConformance requires the subject to conform to a protocol
	// or protocol composition.
	RequirementConformance RequirementKind = iota
	// RequirementSuperclass requires the subject to be a subclass of a
	// class type.
	RequirementSuperclass
)

func (rk RequirementKind) String() string {
	switch rk {
	case RequirementConformance:
		return "conformance"
	case RequirementSuperclass:
		return "superclass"
	default:
		return "unknown"
	}
}

// Requirement constrains a generic parameter.
type Requirement struct {
	Kind       RequirementKind
	Subject    Type
	Constraint Type
}

func (r Requirement) String() string {
	return fmt.Sprintf("%s : %s", r.Subject.String(), r.Constraint.String())
}

// Equal reports structural equality of requirements.
func (r Requirement) Equal(other Requirement) bool {
	return r.Kind == other.Kind &&
		r.Subject.Equal(other.Subject) &&
		r.Constraint.Equal(other.Constraint)
}

// ====== Generic Signature ======

// GenericSignature is an ordered set of generic parameters and the
// requirements over them. A nil *GenericSignature is the empty signature.
type GenericSignature struct {
	Params       []*GenericTypeParamType
	Requirements []Requirement
}

// NextDepth returns the depth at which new parameters must be introduced
// to nest strictly deeper than every existing parameter.
func (s *GenericSignature) NextDepth() int {
	if s == nil || len(s.Params) == 0 {
		return 0
	}
	max := -1
	for _, p := range s.Params {
		if p.Depth > max {
			max = p.Depth
		}
	}
	return max + 1
}

// IsEmpty reports whether the signature has no parameters.
func (s *GenericSignature) IsEmpty() bool {
	return s == nil || len(s.Params) == 0
}

func (s *GenericSignature) String() string {
	if s.IsEmpty() {
		return "<>"
	}
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.String()
	}
	reqs := make([]string, len(s.Requirements))
	for i, r := range s.Requirements {
		reqs[i] = r.String()
	}
	if len(reqs) == 0 {
		return "<" + strings.Join(params, ", ") + ">"
	}
	return "<" + strings.Join(params, ", ") + " where " + strings.Join(reqs, ", ") + ">"
}

// Equal reports structural equality of signatures.
func (s *GenericSignature) Equal(other *GenericSignature) bool {
	if s.IsEmpty() || other.IsEmpty() {
		return s.IsEmpty() && other.IsEmpty()
	}
	if len(s.Params) != len(other.Params) || len(s.Requirements) != len(other.Requirements) {
		return false
	}
	for i, p := range s.Params {
		if !p.Equal(other.Params[i]) {
			return false
		}
	}
	for i, r := range s.Requirements {
		if !r.Equal(other.Requirements[i]) {
			return false
		}
	}
	return true
}

// BuildGenericSignature merges fresh parameters and requirements into an
// existing (possibly empty) signature. Every new parameter must sit at a
// depth of at least base.NextDepth(); violating that is a programming
// error and panics.
func BuildGenericSignature(base *GenericSignature, params []*GenericTypeParamType, reqs []Requirement) *GenericSignature {
	minDepth := base.NextDepth()
	for _, p := range params {
		if p.Depth < minDepth {
			panic(fmt.Sprintf("generic parameter %s must be introduced at depth >= %d", p, minDepth))
		}
	}
	sig := &GenericSignature{}
	if !base.IsEmpty() {
		sig.Params = append(sig.Params, base.Params...)
		sig.Requirements = append(sig.Requirements, base.Requirements...)
	}
	sig.Params = append(sig.Params, params...)
	sig.Requirements = append(sig.Requirements, reqs...)
	return sig
}
