// Package air defines the Auriga mid-level IR used between the frontend
// and code generation. It is an ownership-aware IR structured to enable
// target-agnostic optimizations such as function signature specialization.
package air

import (
	"github.com/auriga-lang/auriga/internal/errors"
	"github.com/auriga-lang/auriga/internal/types"
)

// ====== Lowered IR Types ======

// TypeCategory distinguishes values held in registers from values held in
// memory.
type TypeCategory int

const (
	// ObjectCategory is a value held directly ($T).
	ObjectCategory TypeCategory = iota
	// AddressCategory is the address of a value in memory ($*T).
	AddressCategory
)

// Type is a lowered IR type: an AST type plus its storage category.
type Type struct {
	ast      types.Type
	category TypeCategory
}

// ObjectType lowers an AST type into the object category.
func ObjectType(t types.Type) Type {
	return Type{ast: t, category: ObjectCategory}
}

// AddressType lowers an AST type into the address category.
func AddressType(t types.Type) Type {
	return Type{ast: t, category: AddressCategory}
}

// ASTType returns the underlying AST type.
func (t Type) ASTType() types.Type { return t.ast }

// Category returns the storage category.
func (t Type) Category() TypeCategory { return t.category }

// IsAddress reports whether the type is in the address category.
func (t Type) IsAddress() bool { return t.category == AddressCategory }

// IsObject reports whether the type is in the object category.
func (t Type) IsObject() bool { return t.category == ObjectCategory }

// GetObjectType returns the same AST type in the object category.
func (t Type) GetObjectType() Type { return Type{ast: t.ast, category: ObjectCategory} }

// CategoryType returns the same AST type in the given category.
func (t Type) CategoryType(c TypeCategory) Type { return Type{ast: t.ast, category: c} }

// IsExistential reports whether the underlying AST type is existential.
func (t Type) IsExistential() bool { return types.IsExistential(t.ast) }

// Existential returns the underlying existential type, or nil.
func (t Type) Existential() *types.ExistentialType {
	e, _ := t.ast.(*types.ExistentialType)
	return e
}

// Equal reports equality of AST type and category.
func (t Type) Equal(other Type) bool {
	return t.category == other.category && t.ast.Equal(other.ast)
}

func (t Type) String() string {
	if t.IsAddress() {
		return "$*" + t.ast.String()
	}
	return "$" + t.ast.String()
}

// ====== Ownership ======

// OwnershipKind classifies the ownership a value carries.
type OwnershipKind int

const (
	// OwnershipNone is for values outside the ownership system (trivial
	// values and addresses).
	OwnershipNone OwnershipKind = iota
	// OwnershipOwned values must be consumed exactly once.
	OwnershipOwned
	// OwnershipGuaranteed values are borrowed and must not be consumed.
	OwnershipGuaranteed
	// OwnershipUnowned values carry no guarantee of staying alive; taking
	// an owning copy is required before storing or boxing them.
	OwnershipUnowned
)

func (ok OwnershipKind) String() string {
	switch ok {
	case OwnershipOwned:
		return "owned"
	case OwnershipGuaranteed:
		return "guaranteed"
	case OwnershipUnowned:
		return "unowned"
	default:
		return "none"
	}
}

// OwnershipForConvention derives the ownership of a function argument from
// its convention in an ownership-tracking function. Address arguments are
// outside the ownership system.
func OwnershipForConvention(ty Type, pc types.ParamConvention) OwnershipKind {
	if ty.IsAddress() {
		return OwnershipNone
	}
	switch pc {
	case types.ConventionDirectOwned, types.ConventionIndirectIn:
		return OwnershipOwned
	case types.ConventionDirectGuaranteed, types.ConventionIndirectInGuaranteed:
		return OwnershipGuaranteed
	case types.ConventionDirectUnowned:
		return OwnershipUnowned
	}
	return OwnershipNone
}

// ====== Values ======

// Value is an SSA value: a basic block argument or the result of an
// instruction.
type Value interface {
	Type() Type
	Ownership() OwnershipKind
}

// ArgumentFlags carry per-argument annotations propagated by signature
// transforms.
type ArgumentFlags struct {
	NoImplicitCopy bool
	Closure        bool
}

// Argument is a typed basic block argument. Entry block arguments are the
// function's parameters.
type Argument struct {
	Block     *BasicBlock
	Index     int
	typ       Type
	ownership OwnershipKind
	// Decl is the source-level declaration handle, if any.
	Decl  string
	Flags ArgumentFlags
}

func (a *Argument) Type() Type               { return a.typ }
func (a *Argument) Ownership() OwnershipKind { return a.ownership }
func (a *Argument) CopyFlags(from *Argument) { a.Flags = from.Flags }

// SetOwnership overrides the derived ownership, used when rebuilding
// argument lists during signature transforms.
func (a *Argument) SetOwnership(k OwnershipKind) { a.ownership = k }

// ====== Basic Blocks ======

// BasicBlock is a sequence of instructions ending with a terminator.
type BasicBlock struct {
	Parent *Function
	Args   []*Argument
	Instrs []Instruction
}

// NewArgument appends a typed argument to the block.
func (bb *BasicBlock) NewArgument(ty Type, ownership OwnershipKind, decl string) *Argument {
	arg := &Argument{
		Block:     bb,
		Index:     len(bb.Args),
		typ:       ty,
		ownership: ownership,
		Decl:      decl,
	}
	bb.Args = append(bb.Args, arg)
	return arg
}

// NewPhiArgument appends a block argument receiving a branched value.
func (bb *BasicBlock) NewPhiArgument(ty Type, ownership OwnershipKind) *Argument {
	return bb.NewArgument(ty, ownership, "")
}

// Argument returns the block argument at index i.
func (bb *BasicBlock) Argument(i int) *Argument { return bb.Args[i] }

// Terminator returns the block's terminator, or nil while under
// construction.
func (bb *BasicBlock) Terminator() Instruction {
	if len(bb.Instrs) == 0 {
		return nil
	}
	last := bb.Instrs[len(bb.Instrs)-1]
	if last.IsTerminator() {
		return last
	}
	return nil
}

// IsExiting reports whether the block leaves the function (return, throw
// or unreachable).
func (bb *BasicBlock) IsExiting() bool {
	switch bb.Terminator().(type) {
	case *ReturnInst, *ThrowInst, *UnreachableInst:
		return true
	}
	return false
}

// ====== Function Attributes ======

// Linkage controls the visibility of a function across modules.
type Linkage int

const (
	LinkagePublic Linkage = iota
	LinkageShared
	LinkageHidden
	LinkagePrivate
)

func (l Linkage) String() string {
	switch l {
	case LinkagePublic:
		return "public"
	case LinkageShared:
		return "shared"
	case LinkageHidden:
		return "hidden"
	default:
		return "private"
	}
}

// SpecializedLinkage derives the linkage of a specialization of f. The
// twin of an exported function must stay visible enough for its thunk to
// call it; private bodies stay private.
func SpecializedLinkage(f *Function) Linkage {
	switch f.Linkage {
	case LinkagePublic, LinkageShared:
		return LinkageShared
	case LinkageHidden:
		return LinkageShared
	default:
		return LinkagePrivate
	}
}

// InlineStrategy controls the inliner's treatment of a function.
type InlineStrategy int

const (
	InlineDefault InlineStrategy = iota
	AlwaysInline
	NoInline
)

func (s InlineStrategy) String() string {
	switch s {
	case AlwaysInline:
		return "always_inline"
	case NoInline:
		return "noinline"
	default:
		return "inline_default"
	}
}

// ThunkKind classifies compiler-generated forwarding functions.
type ThunkKind int

const (
	NotThunk ThunkKind = iota
	SignatureOptimizedThunk
	ReabstractionThunk
)

func (k ThunkKind) String() string {
	switch k {
	case SignatureOptimizedThunk:
		return "signature_optimized_thunk"
	case ReabstractionThunk:
		return "reabstraction_thunk"
	default:
		return "not_thunk"
	}
}

// SerializedKind marks functions whose bodies are emitted into the module
// interface.
type SerializedKind int

const (
	IsNotSerialized SerializedKind = iota
	IsSerialized
)

// EffectsKind is the coarse effects classification used by the optimizer.
type EffectsKind int

const (
	EffectsUnspecified EffectsKind = iota
	EffectsReadNone
	EffectsReadOnly
	EffectsReleaseNone
)

// ====== Functions ======

// Function is a collection of basic blocks with a lowered type and a set
// of attributes.
type Function struct {
	Name    string
	Linkage Linkage
	typ     *types.FunctionType
	Blocks  []*BasicBlock

	// Attributes propagated by signature transforms.
	Bare           bool
	Transparent    bool
	Serialized     SerializedKind
	Thunk          ThunkKind
	Inline         InlineStrategy
	Effects        EffectsKind
	SemanticsAttrs []string
	EntryCount     int

	// ownership is true when the function body tracks fine-grained value
	// ownership. Functions late in the pipeline have ownership lowered
	// away.
	ownership bool

	Module *Module
}

// NewFunction creates a detached function with ownership tracking enabled.
func NewFunction(name string, linkage Linkage, ty *types.FunctionType) *Function {
	return &Function{Name: name, Linkage: linkage, typ: ty, ownership: true}
}

// Type returns the lowered function type.
func (f *Function) Type() *types.FunctionType { return f.typ }

// HasOwnership reports whether the body tracks fine-grained ownership.
func (f *Function) HasOwnership() bool { return f.ownership }

// SetOwnershipEliminated lowers the function out of the ownership system.
func (f *Function) SetOwnershipEliminated() { f.ownership = false }

// IsNoReturn reports whether the function never returns normally.
func (f *Function) IsNoReturn() bool { return f.typ.IsNoReturn() }

// NewBasicBlock appends a fresh empty block to the function.
func (f *Function) NewBasicBlock() *BasicBlock {
	bb := &BasicBlock{Parent: f}
	f.Blocks = append(f.Blocks, bb)
	return bb
}

// EntryBlock returns the first block of the function.
func (f *Function) EntryBlock() *BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// DropBody removes every basic block, leaving an empty shell. Used when a
// function is rewritten into a thunk.
func (f *Function) DropBody() {
	f.Blocks = nil
}

// ExitingBlocks returns every block whose terminator leaves the function.
func (f *Function) ExitingBlocks() []*BasicBlock {
	var out []*BasicBlock
	for _, bb := range f.Blocks {
		if bb.IsExiting() {
			out = append(out, bb)
		}
	}
	return out
}

// LoweredParamType returns the IR type of parameter i: indirect
// conventions lower to the address category.
func (f *Function) LoweredParamType(i int) Type {
	return LoweredParamType(f.typ.Params[i])
}

// LoweredParamType lowers one parameter of a function type.
func LoweredParamType(p types.ParamInfo) Type {
	if p.Convention.IsIndirect() {
		return AddressType(p.Type)
	}
	return ObjectType(p.Type)
}

// LoweredResultType returns the IR type of the function's direct result.
func LoweredResultType(ft *types.FunctionType) Type {
	return ObjectType(ft.Result.Type)
}

// ====== Modules ======

// Module is a compilation unit: an ordered set of functions plus the
// conformance oracle. The function table is the only shared mutable state
// consulted by signature transforms; passes assume exclusive access to the
// module for their duration.
type Module struct {
	Name         string
	Conformances *types.ConformanceTable

	functions map[string]*Function
	order     []*Function
}

// NewModule creates an empty module with an isolated conformance table.
func NewModule(name string) *Module {
	return &Module{
		Name:         name,
		Conformances: types.NewConformanceTable(),
		functions:    make(map[string]*Function),
	}
}

// LookupFunction returns the function registered under name, or nil.
func (m *Module) LookupFunction(name string) *Function {
	return m.functions[name]
}

// AddFunction registers f in the module's function table.
func (m *Module) AddFunction(f *Function) {
	if _, exists := m.functions[f.Name]; exists {
		errors.InvariantViolation("AIR_DUP_FUNCTION", "function %q already registered in module %q", f.Name, m.Name)
	}
	f.Module = m
	m.functions[f.Name] = f
	m.order = append(m.order, f)
}

// Functions returns the module's functions in registration order.
func (m *Module) Functions() []*Function {
	out := make([]*Function, len(m.order))
	copy(out, m.order)
	return out
}

// CreateFunction creates a function and registers it in the module.
func (m *Module) CreateFunction(name string, linkage Linkage, ty *types.FunctionType) *Function {
	f := NewFunction(name, linkage, ty)
	m.AddFunction(f)
	return f
}
