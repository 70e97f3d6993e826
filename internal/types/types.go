// Core type system for the Auriga compiler
// This module provides the AST-level types consumed by the mid-level IR:
// builtins, classes, protocols, protocol compositions, existentials,
// generic type parameters and opened archetypes.

package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ====== Core Type Kinds ======

// TypeKind represents the kind of a type in the Auriga type system.
type TypeKind int

const (
	// Primitive types.
	TypeKindBuiltin TypeKind = iota

	// Nominal types.
	TypeKindClass
	TypeKindProtocol

	// Constraint and erasure types.
	TypeKindProtocolComposition
	TypeKindExistential

	// Abstract types.
	TypeKindGenericParam
	TypeKindOpenedArchetype

	// Compound types.
	TypeKindFunction
)

// String returns the string representation of a TypeKind.
func (tk TypeKind) String() string {
	switch tk {
	case TypeKindBuiltin:
		return "builtin"
	case TypeKindClass:
		return "class"
	case TypeKindProtocol:
		return "protocol"
	case TypeKindProtocolComposition:
		return "protocol_composition"
	case TypeKindExistential:
		return "existential"
	case TypeKindGenericParam:
		return "generic_param"
	case TypeKindOpenedArchetype:
		return "opened_archetype"
	case TypeKindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Type is implemented by every type in the system.
type Type interface {
	Kind() TypeKind
	String() string
	// Equal reports structural equality. Opened archetypes compare by
	// identity (their UUID), generic parameters by depth and index.
	Equal(other Type) bool
}

// ====== Builtin Types ======

// BuiltinType is a primitive type known to the compiler (Int, Bool, ...).
type BuiltinType struct {
	Name string
}

// Canonical builtin instances.
var (
	IntType    = &BuiltinType{Name: "Int"}
	BoolType   = &BuiltinType{Name: "Bool"}
	StringType = &BuiltinType{Name: "String"}
	// NeverType is the uninhabited type; a function whose result is Never
	// does not return normally.
	NeverType = &BuiltinType{Name: "Never"}
)

func (t *BuiltinType) Kind() TypeKind { return TypeKindBuiltin }
func (t *BuiltinType) String() string { return t.Name }

func (t *BuiltinType) Equal(other Type) bool {
	o, ok := other.(*BuiltinType)
	return ok && o.Name == t.Name
}

// ====== Nominal Types ======

// ClassType is a reference-semantics nominal type with an optional
// superclass.
type ClassType struct {
	Name       string
	Superclass *ClassType
}

func (t *ClassType) Kind() TypeKind { return TypeKindClass }
func (t *ClassType) String() string { return t.Name }

func (t *ClassType) Equal(other Type) bool {
	o, ok := other.(*ClassType)
	return ok && o.Name == t.Name
}

// IsSubclassOf reports whether t equals sup or inherits from it.
func (t *ClassType) IsSubclassOf(sup *ClassType) bool {
	for c := t; c != nil; c = c.Superclass {
		if c.Name == sup.Name {
			return true
		}
	}
	return false
}

// ProtocolType is a protocol declaration used as a type. A class-bound
// protocol may only be conformed to by classes, which forces the class
// existential representation.
type ProtocolType struct {
	Name       string
	ClassBound bool
}

func (t *ProtocolType) Kind() TypeKind { return TypeKindProtocol }
func (t *ProtocolType) String() string { return t.Name }

func (t *ProtocolType) Equal(other Type) bool {
	o, ok := other.(*ProtocolType)
	return ok && o.Name == t.Name
}

// ====== Constraint Types ======

// ProtocolCompositionType is a conjunction of protocols with an optional
// superclass constraint (e.g. "Base & P & Q").
type ProtocolCompositionType struct {
	Protocols  []*ProtocolType
	Superclass *ClassType
}

func (t *ProtocolCompositionType) Kind() TypeKind { return TypeKindProtocolComposition }

func (t *ProtocolCompositionType) String() string {
	parts := make([]string, 0, len(t.Protocols)+1)
	if t.Superclass != nil {
		parts = append(parts, t.Superclass.String())
	}
	for _, p := range t.Protocols {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, " & ")
}

func (t *ProtocolCompositionType) Equal(other Type) bool {
	o, ok := other.(*ProtocolCompositionType)
	if !ok || len(o.Protocols) != len(t.Protocols) {
		return false
	}
	if (t.Superclass == nil) != (o.Superclass == nil) {
		return false
	}
	if t.Superclass != nil && !t.Superclass.Equal(o.Superclass) {
		return false
	}
	for i, p := range t.Protocols {
		if !p.Equal(o.Protocols[i]) {
			return false
		}
	}
	return true
}

// ====== Existential Types ======

// ExistentialRepresentation classifies how an existential value is stored.
// Exactly two representations are handled by the optimizer; anything else
// is an internal-invariant violation there.
type ExistentialRepresentation int

const (
	// RepresentationInvalid is the zero value; it is never produced for a
	// well-formed existential type.
	RepresentationInvalid ExistentialRepresentation = iota
	// RepresentationOpaque stores the payload behind an address with value
	// semantics.
	RepresentationOpaque
	// RepresentationClass stores a retained object reference.
	RepresentationClass
)

func (r ExistentialRepresentation) String() string {
	switch r {
	case RepresentationOpaque:
		return "opaque"
	case RepresentationClass:
		return "class"
	default:
		return "invalid"
	}
}

// ExistentialType is a boxed protocol value: the concrete type is erased
// and recovered at runtime through attached conformances.
type ExistentialType struct {
	// Constraint is the erased constraint: a ProtocolType or a
	// ProtocolCompositionType.
	Constraint Type
}

// NewExistentialType wraps a constraint type into an existential.
func NewExistentialType(constraint Type) *ExistentialType {
	switch constraint.Kind() {
	case TypeKindProtocol, TypeKindProtocolComposition:
		return &ExistentialType{Constraint: constraint}
	}
	panic(fmt.Sprintf("existential constraint must be a protocol or composition, got %s", constraint.Kind()))
}

func (t *ExistentialType) Kind() TypeKind { return TypeKindExistential }
func (t *ExistentialType) String() string { return "any " + t.Constraint.String() }

func (t *ExistentialType) Equal(other Type) bool {
	o, ok := other.(*ExistentialType)
	return ok && t.Constraint.Equal(o.Constraint)
}

// ConstraintType returns the erased constraint of the existential.
func (t *ExistentialType) ConstraintType() Type { return t.Constraint }

// Protocols returns the protocol members of the constraint.
func (t *ExistentialType) Protocols() []*ProtocolType {
	switch c := t.Constraint.(type) {
	case *ProtocolType:
		return []*ProtocolType{c}
	case *ProtocolCompositionType:
		return c.Protocols
	}
	return nil
}

// SuperclassConstraint returns the superclass bound of the constraint, if
// any.
func (t *ExistentialType) SuperclassConstraint() *ClassType {
	if c, ok := t.Constraint.(*ProtocolCompositionType); ok {
		return c.Superclass
	}
	return nil
}

// RequiresClass reports whether the constraint forces reference semantics.
func (t *ExistentialType) RequiresClass() bool {
	if t.SuperclassConstraint() != nil {
		return true
	}
	for _, p := range t.Protocols() {
		if p.ClassBound {
			return true
		}
	}
	return false
}

// PreferredRepresentation returns the storage representation used for
// values of this existential type.
func (t *ExistentialType) PreferredRepresentation() ExistentialRepresentation {
	if t.RequiresClass() {
		return RepresentationClass
	}
	return RepresentationOpaque
}

// IsExistential reports whether t is an existential type.
func IsExistential(t Type) bool {
	_, ok := t.(*ExistentialType)
	return ok
}

// ====== Generic Type Parameters ======

// GenericTypeParamType is an abstract type parameter identified by its
// nesting depth and index within that depth. Instances are interned so the
// same (depth, index) pair always yields the same pointer.
type GenericTypeParamType struct {
	Depth int
	Index int
}

type genericParamKey struct{ depth, index int }

var genericParamCache sync.Map // genericParamKey -> *GenericTypeParamType

// NewGenericTypeParam returns the canonical parameter for (depth, index).
func NewGenericTypeParam(depth, index int) *GenericTypeParamType {
	key := genericParamKey{depth, index}
	if v, ok := genericParamCache.Load(key); ok {
		return v.(*GenericTypeParamType)
	}
	v, _ := genericParamCache.LoadOrStore(key, &GenericTypeParamType{Depth: depth, Index: index})
	return v.(*GenericTypeParamType)
}

func (t *GenericTypeParamType) Kind() TypeKind { return TypeKindGenericParam }

func (t *GenericTypeParamType) String() string {
	return fmt.Sprintf("τ_%d_%d", t.Depth, t.Index)
}

func (t *GenericTypeParamType) Equal(other Type) bool {
	o, ok := other.(*GenericTypeParamType)
	return ok && o.Depth == t.Depth && o.Index == t.Index
}

// ====== Opened Archetypes ======

// OpenedArchetypeType is the concrete-but-abstract type produced by opening
// an existential value: the dynamic type is unknown statically, but it is
// known to satisfy the existential's constraint. Each opening produces a
// distinct archetype, distinguished by a fresh UUID.
type OpenedArchetypeType struct {
	// Constraint is the constraint of the existential this archetype was
	// opened from.
	Constraint Type
	ID         uuid.UUID
}

// NewOpenedArchetype opens an existential type into a fresh archetype.
func NewOpenedArchetype(existential *ExistentialType) *OpenedArchetypeType {
	return &OpenedArchetypeType{
		Constraint: existential.ConstraintType(),
		ID:         uuid.New(),
	}
}

func (t *OpenedArchetypeType) Kind() TypeKind { return TypeKindOpenedArchetype }

func (t *OpenedArchetypeType) String() string {
	return fmt.Sprintf("@opened(%q) %s", t.ID.String(), t.Constraint.String())
}

func (t *OpenedArchetypeType) Equal(other Type) bool {
	o, ok := other.(*OpenedArchetypeType)
	return ok && o.ID == t.ID
}

// IsAbstract reports whether t stands for an unknown concrete type (a
// generic parameter or an opened archetype).
func IsAbstract(t Type) bool {
	switch t.Kind() {
	case TypeKindGenericParam, TypeKindOpenedArchetype:
		return true
	}
	return false
}
