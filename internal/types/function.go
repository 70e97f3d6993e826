// Lowered function types for the Auriga compiler
// A FunctionType captures the full calling contract of a mid-level IR
// function: parameter and result conventions, the optional error result,
// the invocation generic signature and the representation.

package types

import "strings"

// ====== Conventions ======

// ParamConvention describes how a parameter is passed and who owns it.
type ParamConvention int

const (
	// ConventionDirectOwned passes a value in registers; the callee
	// consumes it.
	ConventionDirectOwned ParamConvention = iota
	// ConventionDirectGuaranteed passes a value in registers; the callee
	// only borrows it.
	ConventionDirectGuaranteed
	// ConventionDirectUnowned passes a value without any ownership
	// guarantee.
	ConventionDirectUnowned
	// ConventionIndirectIn passes the value at an address; the callee
	// consumes the memory.
	ConventionIndirectIn
	// ConventionIndirectInGuaranteed passes the value at an address; the
	// callee borrows the memory.
	ConventionIndirectInGuaranteed
	// ConventionIndirectInout passes a mutably borrowed address.
	ConventionIndirectInout
)

func (pc ParamConvention) String() string {
	switch pc {
	case ConventionDirectOwned:
		return "@owned"
	case ConventionDirectGuaranteed:
		return "@guaranteed"
	case ConventionDirectUnowned:
		return "@unowned"
	case ConventionIndirectIn:
		return "@in"
	case ConventionIndirectInGuaranteed:
		return "@in_guaranteed"
	case ConventionIndirectInout:
		return "@inout"
	default:
		return "@unknown"
	}
}

// IsIndirect reports whether the parameter is passed at an address.
func (pc ParamConvention) IsIndirect() bool {
	switch pc {
	case ConventionIndirectIn, ConventionIndirectInGuaranteed, ConventionIndirectInout:
		return true
	}
	return false
}

// IsConsumed reports whether the callee takes ownership of the argument.
func (pc ParamConvention) IsConsumed() bool {
	return pc == ConventionDirectOwned || pc == ConventionIndirectIn
}

// IsGuaranteed reports whether the callee merely borrows the argument.
func (pc ParamConvention) IsGuaranteed() bool {
	return pc == ConventionDirectGuaranteed || pc == ConventionIndirectInGuaranteed
}

// ResultConvention describes how a result is returned.
type ResultConvention int

const (
	// ConventionResultOwned returns an owned value to the caller.
	ConventionResultOwned ResultConvention = iota
	// ConventionResultIndirect writes the result to a caller-provided
	// address.
	ConventionResultIndirect
)

func (rc ResultConvention) String() string {
	if rc == ConventionResultIndirect {
		return "@out"
	}
	return "@owned"
}

// ====== Function Types ======

// ParamInfo is one parameter of a lowered function type.
type ParamInfo struct {
	Type       Type
	Convention ParamConvention
}

func (p ParamInfo) String() string {
	return p.Convention.String() + " " + p.Type.String()
}

// ResultInfo is the result (or error result) of a lowered function type.
type ResultInfo struct {
	Type       Type
	Convention ResultConvention
}

// FunctionRepresentation distinguishes calling conventions that carry an
// implicit context from those that do not.
type FunctionRepresentation int

const (
	// RepresentationThick carries an implicit context (captures).
	RepresentationThick FunctionRepresentation = iota
	// RepresentationThin carries no context; the function is always called
	// directly.
	RepresentationThin
	// RepresentationMethod is a thin representation with a self parameter.
	RepresentationMethod
)

func (fr FunctionRepresentation) String() string {
	switch fr {
	case RepresentationThin:
		return "thin"
	case RepresentationMethod:
		return "method"
	default:
		return "thick"
	}
}

// FunctionType is the full lowered type of a mid-level IR function.
type FunctionType struct {
	GenericSig     *GenericSignature
	Params         []ParamInfo
	Result         ResultInfo
	ErrorResult    *ResultInfo
	Representation FunctionRepresentation
}

func (t *FunctionType) Kind() TypeKind { return TypeKindFunction }

// HasErrorResult reports whether the function can fail.
func (t *FunctionType) HasErrorResult() bool { return t.ErrorResult != nil }

// IsNoReturn reports whether the function is statically known never to
// return normally.
func (t *FunctionType) IsNoReturn() bool {
	return t.Result.Type.Equal(NeverType)
}

// WithRepresentation returns a copy of t with the given representation.
func (t *FunctionType) WithRepresentation(rep FunctionRepresentation) *FunctionType {
	out := *t
	out.Representation = rep
	return &out
}

func (t *FunctionType) String() string {
	var sb strings.Builder
	if !t.GenericSig.IsEmpty() {
		sb.WriteString(t.GenericSig.String())
		sb.WriteByte(' ')
	}
	sb.WriteByte('(')
	for i, p := range t.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(") -> ")
	sb.WriteString(t.Result.Type.String())
	if t.ErrorResult != nil {
		sb.WriteString(" throws(")
		sb.WriteString(t.ErrorResult.Type.String())
		sb.WriteByte(')')
	}
	return sb.String()
}

// Equal reports structural equality of function types, including generic
// signatures, conventions and error results.
func (t *FunctionType) Equal(other Type) bool {
	o, ok := other.(*FunctionType)
	if !ok {
		return false
	}
	if t.Representation != o.Representation || len(t.Params) != len(o.Params) {
		return false
	}
	if !t.GenericSig.Equal(o.GenericSig) {
		return false
	}
	for i, p := range t.Params {
		op := o.Params[i]
		if p.Convention != op.Convention || !p.Type.Equal(op.Type) {
			return false
		}
	}
	if t.Result.Convention != o.Result.Convention || !t.Result.Type.Equal(o.Result.Type) {
		return false
	}
	if (t.ErrorResult == nil) != (o.ErrorResult == nil) {
		return false
	}
	if t.ErrorResult != nil && !t.ErrorResult.Type.Equal(o.ErrorResult.Type) {
		return false
	}
	return true
}
