// Type-substituting function body cloner for the Auriga mid-level IR
// The cloner copies every block and instruction of a source function into
// a destination function, remapping values and blocks and substituting
// types throughout. Callers pre-seed the value map for the source entry
// arguments; the destination entry block must already exist.

package air

import (
	"github.com/auriga-lang/auriga/internal/errors"
	"github.com/auriga-lang/auriga/internal/types"
)

// FunctionCloner clones a function body with a type substitution.
type FunctionCloner struct {
	Src *Function
	Dst *Function

	substType func(types.Type) types.Type
	valueMap  map[Value]Value
	blockMap  map[*BasicBlock]*BasicBlock
}

// NewFunctionCloner prepares a cloner from src into dst. substType is
// applied to every type in the cloned body; passing nil clones types
// unchanged.
func NewFunctionCloner(src, dst *Function, substType func(types.Type) types.Type) *FunctionCloner {
	if substType == nil {
		substType = func(t types.Type) types.Type { return t }
	}
	return &FunctionCloner{
		Src:       src,
		Dst:       dst,
		substType: substType,
		valueMap:  make(map[Value]Value),
		blockMap:  make(map[*BasicBlock]*BasicBlock),
	}
}

// MapValue records the destination value standing for a source value.
// Entry arguments of the source must all be mapped before CloneBody runs.
func (c *FunctionCloner) MapValue(orig, replacement Value) {
	c.valueMap[orig] = replacement
}

// SubstType applies the cloner's type substitution to an IR type,
// preserving its category.
func (c *FunctionCloner) SubstType(t Type) Type {
	return Type{ast: c.substType(t.ASTType()), category: t.Category()}
}

func (c *FunctionCloner) remap(v Value) Value {
	if r, ok := c.valueMap[v]; ok {
		return r
	}
	errors.InvariantViolation("AIR_CLONE_UNMAPPED", "cloned instruction references an unmapped value")
	return nil
}

func (c *FunctionCloner) remapAll(vs []Value) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = c.remap(v)
	}
	return out
}

func (c *FunctionCloner) remapBlock(bb *BasicBlock) *BasicBlock {
	nb, ok := c.blockMap[bb]
	if !ok {
		errors.InvariantViolation("AIR_CLONE_UNMAPPED_BLOCK", "cloned terminator references an unmapped block")
	}
	return nb
}

func (c *FunctionCloner) substConformances(confs []types.Conformance) []types.Conformance {
	out := make([]types.Conformance, len(confs))
	for i, cf := range confs {
		concrete := c.substType(cf.Concrete)
		out[i] = types.Conformance{
			Concrete:  concrete,
			Protocol:  cf.Protocol,
			Abstract:  types.IsAbstract(concrete),
			Inherited: cf.Inherited,
		}
	}
	return out
}

// CloneBody clones every block of the source into the destination. The
// source entry maps onto the destination's existing entry block, so any
// prolog the caller already emitted there stays ahead of the cloned body.
func (c *FunctionCloner) CloneBody() {
	srcEntry := c.Src.EntryBlock()
	dstEntry := c.Dst.EntryBlock()
	if srcEntry == nil || dstEntry == nil {
		errors.InvariantViolation("AIR_CLONE_NO_ENTRY", "source and destination must both have entry blocks")
	}
	c.blockMap[srcEntry] = dstEntry

	// Create destination blocks and their arguments up front so forward
	// branches resolve.
	for _, bb := range c.Src.Blocks[1:] {
		nb := c.Dst.NewBasicBlock()
		c.blockMap[bb] = nb
		for _, arg := range bb.Args {
			narg := nb.NewArgument(c.SubstType(arg.Type()), arg.Ownership(), arg.Decl)
			narg.CopyFlags(arg)
			c.valueMap[arg] = narg
		}
	}

	for _, bb := range c.Src.Blocks {
		builder := NewBuilderAtEnd(c.blockMap[bb])
		for _, inst := range bb.Instrs {
			c.cloneInstruction(builder, inst)
		}
	}
}

// cloneInstruction clones one instruction at the builder's insertion
// point, recording the result value mapping when the instruction produces
// one. The instruction set is closed; an unknown kind is fatal.
func (c *FunctionCloner) cloneInstruction(b *Builder, inst Instruction) {
	switch i := inst.(type) {
	case *AllocStackInst:
		c.valueMap[i] = b.CreateAllocStack(c.SubstType(i.Type().GetObjectType()))
	case *DeallocStackInst:
		b.CreateDeallocStack(c.remap(i.Operand))
	case *LoadInst:
		c.valueMap[i] = b.CreateLoad(c.remap(i.Operand), i.Qualifier)
	case *StoreInst:
		b.CreateStore(c.remap(i.Src), c.remap(i.Dest), i.Qualifier)
	case *CopyAddrInst:
		b.CreateCopyAddr(c.remap(i.Src), c.remap(i.Dest), i.IsTake, i.IsInit)
	case *DestroyAddrInst:
		b.CreateDestroyAddr(c.remap(i.Operand))
	case *CopyValueInst:
		c.valueMap[i] = b.CreateCopyValue(c.remap(i.Operand))
	case *DestroyValueInst:
		b.CreateDestroyValue(c.remap(i.Operand))
	case *IntegerLiteralInst:
		c.valueMap[i] = b.CreateIntegerLiteral(c.SubstType(i.Type()), i.Value)
	case *BuiltinInst:
		c.valueMap[i] = b.CreateBuiltin(i.Name, c.SubstType(i.Type()), c.remapAll(i.Args))
	case *InitExistentialAddrInst:
		c.valueMap[i] = b.CreateInitExistentialAddr(
			c.remap(i.Operand), c.substType(i.ConcreteType), c.substConformances(i.Conformances))
	case *InitExistentialRefInst:
		c.valueMap[i] = b.CreateInitExistentialRef(
			c.SubstType(i.Type()), c.substType(i.ConcreteType),
			c.remap(i.Operand), c.substConformances(i.Conformances))
	case *OpenExistentialAddrInst:
		c.valueMap[i] = b.CreateOpenExistentialAddr(c.remap(i.Operand), c.SubstType(i.Type()), i.Access)
	case *OpenExistentialRefInst:
		c.valueMap[i] = b.CreateOpenExistentialRef(c.remap(i.Operand), c.SubstType(i.Type()))
	case *FunctionRefInst:
		c.valueMap[i] = b.CreateFunctionRef(i.Callee)
	case *ApplyInst:
		c.valueMap[i] = b.CreateApply(c.remap(i.Callee), i.Subs, c.remapAll(i.Args))
	case *TryApplyInst:
		b.CreateTryApply(c.remap(i.Callee), i.Subs, c.remapAll(i.Args),
			c.remapBlock(i.Normal), c.remapBlock(i.Error))
	case *ReturnInst:
		b.CreateReturn(c.remap(i.Operand))
	case *ThrowInst:
		b.CreateThrow(c.remap(i.Operand))
	case *BrInst:
		b.CreateBr(c.remapBlock(i.Dest), c.remapAll(i.Args))
	case *CondBrInst:
		b.CreateCondBr(c.remap(i.Cond), c.remapBlock(i.TrueDest), c.remapBlock(i.FalseDest),
			c.remapAll(i.TrueArgs), c.remapAll(i.FalseArgs))
	case *UnreachableInst:
		b.CreateUnreachable()
	default:
		errors.InvariantViolation("AIR_CLONE_UNKNOWN_INST", "unknown instruction kind %T", inst)
	}
}
