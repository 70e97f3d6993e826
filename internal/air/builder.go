// Instruction builder for the Auriga mid-level IR
// The builder inserts instructions at a movable insertion point and
// provides emit helpers that respect the function's ownership mode.

package air

import (
	"github.com/auriga-lang/auriga/internal/errors"
	"github.com/auriga-lang/auriga/internal/types"
)

// Builder inserts instructions into a basic block at an insertion point.
type Builder struct {
	block *BasicBlock
	idx   int
}

// NewBuilderAtEnd returns a builder appending at the end of bb.
func NewBuilderAtEnd(bb *BasicBlock) *Builder {
	return &Builder{block: bb, idx: len(bb.Instrs)}
}

// NewBuilderBeforeTerminator returns a builder inserting immediately
// before the terminator of bb.
func NewBuilderBeforeTerminator(bb *BasicBlock) *Builder {
	if bb.Terminator() == nil {
		errors.InvariantViolation("AIR_NO_TERMINATOR", "block has no terminator to insert before")
	}
	return &Builder{block: bb, idx: len(bb.Instrs) - 1}
}

// SetInsertionPoint moves the builder to append at the end of bb.
func (b *Builder) SetInsertionPoint(bb *BasicBlock) {
	b.block = bb
	b.idx = len(bb.Instrs)
}

// Function returns the function being built.
func (b *Builder) Function() *Function { return b.block.Parent }

// HasOwnership reports whether the function being built tracks ownership.
func (b *Builder) HasOwnership() bool { return b.block.Parent.HasOwnership() }

func (b *Builder) insert(inst Instruction) {
	inst.setParent(b.block)
	instrs := b.block.Instrs
	instrs = append(instrs, nil)
	copy(instrs[b.idx+1:], instrs[b.idx:])
	instrs[b.idx] = inst
	b.block.Instrs = instrs
	b.idx++
}

// ====== Memory ======

// CreateAllocStack allocates a stack slot for a value of ty's object type
// and produces its address.
func (b *Builder) CreateAllocStack(ty Type) *AllocStackInst {
	inst := &AllocStackInst{}
	inst.typ = AddressType(ty.ASTType())
	inst.ownership = OwnershipNone
	b.insert(inst)
	return inst
}

// CreateDeallocStack frees a slot produced by CreateAllocStack.
func (b *Builder) CreateDeallocStack(slot Value) *DeallocStackInst {
	inst := &DeallocStackInst{Operand: slot}
	b.insert(inst)
	return inst
}

// CreateLoad loads a value from addr with an explicit qualifier.
func (b *Builder) CreateLoad(addr Value, qual LoadQualifier) *LoadInst {
	inst := &LoadInst{Operand: addr, Qualifier: qual}
	inst.typ = addr.Type().GetObjectType()
	if qual == LoadTrivial {
		inst.ownership = OwnershipNone
	} else {
		inst.ownership = OwnershipOwned
	}
	b.insert(inst)
	return inst
}

// CreateStore stores src to dest with an explicit qualifier.
func (b *Builder) CreateStore(src, dest Value, qual StoreQualifier) *StoreInst {
	inst := &StoreInst{Src: src, Dest: dest, Qualifier: qual}
	b.insert(inst)
	return inst
}

// CreateCopyAddr copies (or moves, when isTake) the value at src into
// dest.
func (b *Builder) CreateCopyAddr(src, dest Value, isTake, isInit bool) *CopyAddrInst {
	inst := &CopyAddrInst{Src: src, Dest: dest, IsTake: isTake, IsInit: isInit}
	b.insert(inst)
	return inst
}

// CreateDestroyAddr destroys the value stored at addr.
func (b *Builder) CreateDestroyAddr(addr Value) *DestroyAddrInst {
	inst := &DestroyAddrInst{Operand: addr}
	b.insert(inst)
	return inst
}

// ====== Values ======

// CreateCopyValue produces an independently owned copy of v.
func (b *Builder) CreateCopyValue(v Value) *CopyValueInst {
	inst := &CopyValueInst{Operand: v}
	inst.typ = v.Type()
	inst.ownership = OwnershipOwned
	b.insert(inst)
	return inst
}

// CreateDestroyValue ends the lifetime of an owned value.
func (b *Builder) CreateDestroyValue(v Value) *DestroyValueInst {
	inst := &DestroyValueInst{Operand: v}
	b.insert(inst)
	return inst
}

// CreateIntegerLiteral produces a constant integer of the given type.
func (b *Builder) CreateIntegerLiteral(ty Type, value int64) *IntegerLiteralInst {
	inst := &IntegerLiteralInst{Value: value}
	inst.typ = ty.GetObjectType()
	inst.ownership = OwnershipNone
	b.insert(inst)
	return inst
}

// CreateBuiltin invokes an opaque builtin producing a value of ty.
func (b *Builder) CreateBuiltin(name string, ty Type, args []Value) *BuiltinInst {
	inst := &BuiltinInst{Name: name, Args: args}
	inst.typ = ty
	inst.ownership = OwnershipOwned
	b.insert(inst)
	return inst
}

// ====== Existentials ======

// CreateInitExistentialAddr initializes the existential storage at operand
// with the concrete payload type, producing the payload address.
func (b *Builder) CreateInitExistentialAddr(operand Value, concrete types.Type, conformances []types.Conformance) *InitExistentialAddrInst {
	inst := &InitExistentialAddrInst{Operand: operand, ConcreteType: concrete, Conformances: conformances}
	inst.typ = AddressType(concrete)
	inst.ownership = OwnershipNone
	b.insert(inst)
	return inst
}

// CreateInitExistentialRef boxes a class reference into the existential
// object type existentialTy, forwarding the operand's ownership.
func (b *Builder) CreateInitExistentialRef(existentialTy Type, concrete types.Type, operand Value, conformances []types.Conformance) *InitExistentialRefInst {
	inst := &InitExistentialRefInst{Operand: operand, ConcreteType: concrete, Conformances: conformances}
	inst.typ = existentialTy.GetObjectType()
	inst.ownership = operand.Ownership()
	b.insert(inst)
	return inst
}

// CreateOpenExistentialAddr projects the payload address out of an opaque
// existential. The projection borrows the box contents.
func (b *Builder) CreateOpenExistentialAddr(operand Value, openedTy Type, access OpenedAccess) *OpenExistentialAddrInst {
	inst := &OpenExistentialAddrInst{Operand: operand, Access: access}
	inst.typ = openedTy.CategoryType(AddressCategory)
	inst.ownership = OwnershipNone
	b.insert(inst)
	return inst
}

// CreateOpenExistentialRef recovers the class reference from a class
// existential, forwarding ownership.
func (b *Builder) CreateOpenExistentialRef(operand Value, openedTy Type) *OpenExistentialRefInst {
	inst := &OpenExistentialRefInst{Operand: operand}
	inst.typ = openedTy.GetObjectType()
	inst.ownership = operand.Ownership()
	b.insert(inst)
	return inst
}

// ====== Calls ======

// CreateFunctionRef produces a direct reference to callee.
func (b *Builder) CreateFunctionRef(callee *Function) *FunctionRefInst {
	inst := &FunctionRefInst{Callee: callee}
	inst.typ = ObjectType(callee.Type())
	inst.ownership = OwnershipNone
	b.insert(inst)
	return inst
}

// CreateApply calls a function that cannot fail. The result type is the
// callee's result with subs applied.
func (b *Builder) CreateApply(callee Value, subs *types.SubstitutionMap, args []Value) *ApplyInst {
	fnTy := calleeFunctionType(callee)
	inst := &ApplyInst{Callee: callee, Subs: subs, Args: args}
	inst.typ = ObjectType(subs.Apply(fnTy.Result.Type))
	inst.ownership = OwnershipOwned
	b.insert(inst)
	return inst
}

// CreateTryApply calls a function with an error result, branching to
// normal or error.
func (b *Builder) CreateTryApply(callee Value, subs *types.SubstitutionMap, args []Value, normal, errBB *BasicBlock) *TryApplyInst {
	inst := &TryApplyInst{Callee: callee, Subs: subs, Args: args, Normal: normal, Error: errBB}
	b.insert(inst)
	return inst
}

func calleeFunctionType(callee Value) *types.FunctionType {
	fnTy, ok := callee.Type().ASTType().(*types.FunctionType)
	if !ok {
		errors.InvariantViolation("AIR_BAD_CALLEE", "apply callee is not of function type: %s", callee.Type())
	}
	return fnTy
}

// ====== Terminators ======

// CreateReturn returns a value to the caller.
func (b *Builder) CreateReturn(v Value) *ReturnInst {
	inst := &ReturnInst{Operand: v}
	b.insert(inst)
	return inst
}

// CreateThrow propagates a failure value to the caller.
func (b *Builder) CreateThrow(v Value) *ThrowInst {
	inst := &ThrowInst{Operand: v}
	b.insert(inst)
	return inst
}

// CreateBr branches unconditionally to dest.
func (b *Builder) CreateBr(dest *BasicBlock, args []Value) *BrInst {
	inst := &BrInst{Dest: dest, Args: args}
	b.insert(inst)
	return inst
}

// CreateCondBr branches on a boolean-like value.
func (b *Builder) CreateCondBr(cond Value, trueDest, falseDest *BasicBlock, trueArgs, falseArgs []Value) *CondBrInst {
	inst := &CondBrInst{Cond: cond, TrueDest: trueDest, FalseDest: falseDest, TrueArgs: trueArgs, FalseArgs: falseArgs}
	b.insert(inst)
	return inst
}

// CreateUnreachable marks control flow that never happens.
func (b *Builder) CreateUnreachable() *UnreachableInst {
	inst := &UnreachableInst{}
	b.insert(inst)
	return inst
}

// ====== Emit Helpers ======

// EmitLoadOperation loads from addr with the requested qualifier,
// degrading to an unqualified load when the function does not track
// ownership.
func (b *Builder) EmitLoadOperation(addr Value, qual LoadQualifier) *LoadInst {
	if !b.HasOwnership() {
		qual = LoadTrivial
	}
	return b.CreateLoad(addr, qual)
}

// EmitStoreOperation stores src to dest, degrading the qualifier when the
// function does not track ownership.
func (b *Builder) EmitStoreOperation(src, dest Value, qual StoreQualifier) *StoreInst {
	if !b.HasOwnership() {
		qual = StoreTrivial
	}
	return b.CreateStore(src, dest, qual)
}

// EmitCopyValueOperation produces an owned copy of v.
func (b *Builder) EmitCopyValueOperation(v Value) Value {
	return b.CreateCopyValue(v)
}

// EmitDestroyOperation destroys v, dispatching on its category: addresses
// get destroy_addr, objects get destroy_value. Borrowed values must never
// be destroyed.
func (b *Builder) EmitDestroyOperation(v Value) Instruction {
	if v.Ownership() == OwnershipGuaranteed {
		errors.InvariantViolation("AIR_DESTROY_GUARANTEED", "attempt to destroy a guaranteed value")
	}
	if v.Type().IsAddress() {
		return b.CreateDestroyAddr(v)
	}
	return b.CreateDestroyValue(v)
}
