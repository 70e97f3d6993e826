// Instruction set for the Auriga mid-level IR
// Instructions form a closed set; passes that dispatch over instruction
// kinds use exhaustive type switches with an explicit fatal default.

package air

import (
	"github.com/auriga-lang/auriga/internal/types"
)

// Instruction is implemented by all AIR instructions.
type Instruction interface {
	// Parent returns the containing basic block.
	Parent() *BasicBlock
	// IsTerminator reports whether the instruction ends its block.
	IsTerminator() bool

	setParent(bb *BasicBlock)
}

// instBase carries the block back-pointer shared by all instructions.
type instBase struct {
	parent *BasicBlock
}

func (b *instBase) Parent() *BasicBlock      { return b.parent }
func (b *instBase) setParent(bb *BasicBlock) { b.parent = bb }
func (b *instBase) IsTerminator() bool       { return false }

// termBase marks terminator instructions.
type termBase struct {
	instBase
}

func (b *termBase) IsTerminator() bool { return true }

// valueBase is embedded by instructions that produce a result value.
type valueBase struct {
	instBase
	typ       Type
	ownership OwnershipKind
}

func (v *valueBase) Type() Type               { return v.typ }
func (v *valueBase) Ownership() OwnershipKind { return v.ownership }

// ====== Memory Instructions ======

// AllocStackInst allocates a function-scoped stack slot and produces its
// address. Every alloc_stack must be paired with a dealloc_stack on every
// exit path.
type AllocStackInst struct {
	valueBase
}

// DeallocStackInst frees a stack slot produced by AllocStackInst.
type DeallocStackInst struct {
	instBase
	Operand Value
}

// LoadQualifier describes the ownership semantics of a load.
type LoadQualifier int

const (
	// LoadTrivial loads a value outside the ownership system.
	LoadTrivial LoadQualifier = iota
	// LoadTake moves the value out of memory, leaving it uninitialized.
	LoadTake
	// LoadCopy copies the value out of memory, leaving it intact.
	LoadCopy
)

func (q LoadQualifier) String() string {
	switch q {
	case LoadTake:
		return "[take]"
	case LoadCopy:
		return "[copy]"
	default:
		return ""
	}
}

// LoadInst loads a value from an address.
type LoadInst struct {
	valueBase
	Operand   Value
	Qualifier LoadQualifier
}

// StoreQualifier describes the ownership semantics of a store.
type StoreQualifier int

const (
	StoreTrivial StoreQualifier = iota
	// StoreInit initializes uninitialized memory, consuming the source.
	StoreInit
	// StoreAssign overwrites initialized memory, destroying the old value.
	StoreAssign
)

func (q StoreQualifier) String() string {
	switch q {
	case StoreInit:
		return "[init]"
	case StoreAssign:
		return "[assign]"
	default:
		return ""
	}
}

// StoreInst stores a value to an address.
type StoreInst struct {
	instBase
	Src       Value
	Dest      Value
	Qualifier StoreQualifier
}

// CopyAddrInst copies or moves a value between addresses.
type CopyAddrInst struct {
	instBase
	Src  Value
	Dest Value
	// IsTake moves out of Src instead of copying.
	IsTake bool
	// IsInit initializes Dest instead of assigning over it.
	IsInit bool
}

// DestroyAddrInst destroys the value stored at an address.
type DestroyAddrInst struct {
	instBase
	Operand Value
}

// ====== Value Instructions ======

// CopyValueInst produces an independently owned copy of a value.
type CopyValueInst struct {
	valueBase
	Operand Value
}

// DestroyValueInst ends the lifetime of an owned value.
type DestroyValueInst struct {
	instBase
	Operand Value
}

// IntegerLiteralInst produces a constant integer.
type IntegerLiteralInst struct {
	valueBase
	Value int64
}

// BuiltinInst invokes an opaque builtin operation. It stands in for
// arbitrary body computation in tests and demos.
type BuiltinInst struct {
	valueBase
	Name string
	Args []Value
}

// ====== Existential Instructions ======

// InitExistentialAddrInst initializes existential storage with a concrete
// payload type, producing the address of the uninitialized payload.
type InitExistentialAddrInst struct {
	valueBase
	// Operand is the address of the existential storage ($*P).
	Operand Value
	// ConcreteType is the payload type being boxed.
	ConcreteType types.Type
	Conformances []types.Conformance
}

// InitExistentialRefInst boxes a class reference into a class existential.
type InitExistentialRefInst struct {
	valueBase
	Operand      Value
	ConcreteType types.Type
	Conformances []types.Conformance
}

// OpenedAccess is the access mode requested when opening an existential
// address.
type OpenedAccess int

const (
	OpenedImmutableAccess OpenedAccess = iota
	OpenedMutableAccess
)

func (a OpenedAccess) String() string {
	if a == OpenedMutableAccess {
		return "mutable_access"
	}
	return "immutable_access"
}

// OpenExistentialAddrInst projects the payload address out of an opaque
// existential. The projected address is borrowed from the box; consuming
// callees must receive a copy instead.
type OpenExistentialAddrInst struct {
	valueBase
	Operand Value
	Access  OpenedAccess
}

// OpenExistentialRefInst recovers the class reference from a class
// existential. Ownership of the operand is forwarded.
type OpenExistentialRefInst struct {
	valueBase
	Operand Value
}

// ====== Calls ======

// FunctionRefInst produces a direct reference to a function.
type FunctionRefInst struct {
	valueBase
	Callee *Function
}

// ApplyInst calls a function that cannot fail.
type ApplyInst struct {
	valueBase
	Callee Value
	Subs   *types.SubstitutionMap
	Args   []Value
}

// TryApplyInst calls a function with an error result. Control resumes in
// Normal with the result as a block argument, or in Error with the failure
// value.
type TryApplyInst struct {
	termBase
	Callee Value
	Subs   *types.SubstitutionMap
	Args   []Value
	Normal *BasicBlock
	Error  *BasicBlock
}

// ====== Terminators ======

// ReturnInst returns a value to the caller.
type ReturnInst struct {
	termBase
	Operand Value
}

// ThrowInst propagates a failure value to the caller.
type ThrowInst struct {
	termBase
	Operand Value
}

// BrInst branches unconditionally, forwarding values to the destination's
// block arguments.
type BrInst struct {
	termBase
	Dest *BasicBlock
	Args []Value
}

// CondBrInst branches on a boolean-like value.
type CondBrInst struct {
	termBase
	Cond      Value
	TrueDest  *BasicBlock
	FalseDest *BasicBlock
	TrueArgs  []Value
	FalseArgs []Value
}

// UnreachableInst marks control flow that never happens.
type UnreachableInst struct {
	termBase
}
