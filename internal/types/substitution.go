// Substitution maps for the Auriga compiler
// A substitution map assigns a replacement type to each generic parameter
// of a signature. Maps are populated once during a single forward pass and
// only read afterwards.

package types

import "fmt"

// SubstitutionMap maps generic type parameters to replacement types.
type SubstitutionMap struct {
	replacements map[genericParamKey]Type
}

// NewSubstitutionMap returns an empty substitution map.
func NewSubstitutionMap() *SubstitutionMap {
	return &SubstitutionMap{replacements: make(map[genericParamKey]Type)}
}

// ForwardingSubstitutionMap maps every parameter of sig to itself. It is
// the substitution a generic function uses to call into its own generic
// context.
func ForwardingSubstitutionMap(sig *GenericSignature) *SubstitutionMap {
	m := NewSubstitutionMap()
	if !sig.IsEmpty() {
		for _, p := range sig.Params {
			m.Set(p, p)
		}
	}
	return m
}

// Set records the replacement for a generic parameter. Each parameter may
// be set exactly once; a second insertion is a programming error.
func (m *SubstitutionMap) Set(param *GenericTypeParamType, replacement Type) {
	key := genericParamKey{param.Depth, param.Index}
	if _, ok := m.replacements[key]; ok {
		panic(fmt.Sprintf("substitution for %s set twice", param))
	}
	m.replacements[key] = replacement
}

// Replacement looks up the replacement for a generic parameter.
func (m *SubstitutionMap) Replacement(param *GenericTypeParamType) (Type, bool) {
	if m == nil {
		return nil, false
	}
	t, ok := m.replacements[genericParamKey{param.Depth, param.Index}]
	return t, ok
}

// Len returns the number of recorded substitutions.
func (m *SubstitutionMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.replacements)
}

// Apply substitutes generic parameters within t. Parameters without a
// recorded replacement are left untouched.
func (m *SubstitutionMap) Apply(t Type) Type {
	if m == nil || t == nil {
		return t
	}
	switch ty := t.(type) {
	case *GenericTypeParamType:
		if r, ok := m.Replacement(ty); ok {
			return r
		}
		return ty
	case *ExistentialType:
		c := m.Apply(ty.Constraint)
		if c == ty.Constraint {
			return ty
		}
		return &ExistentialType{Constraint: c}
	case *FunctionType:
		return m.applyToFunction(ty)
	default:
		return t
	}
}

func (m *SubstitutionMap) applyToFunction(ft *FunctionType) *FunctionType {
	out := &FunctionType{
		GenericSig:     ft.GenericSig,
		Representation: ft.Representation,
		Params:         make([]ParamInfo, len(ft.Params)),
	}
	for i, p := range ft.Params {
		out.Params[i] = ParamInfo{Type: m.Apply(p.Type), Convention: p.Convention}
	}
	out.Result = ResultInfo{Type: m.Apply(ft.Result.Type), Convention: ft.Result.Convention}
	if ft.ErrorResult != nil {
		er := ResultInfo{Type: m.Apply(ft.ErrorResult.Type), Convention: ft.ErrorResult.Convention}
		out.ErrorResult = &er
	}
	return out
}
