// Body cloner for the existential specializer
// Populates the generic twin: builds the new entry block, re-boxing each
// generic argument into an existential-shaped value where the cloned body
// still expects one, clones the original body value-for-value, and drains
// the cleanup ledger at every function exit.

package existential

import (
	"github.com/auriga-lang/auriga/internal/air"
	"github.com/auriga-lang/auriga/internal/errors"
	"github.com/auriga-lang/auriga/internal/types"
)

// specializerCloner populates the twin function from the original.
type specializerCloner struct {
	t *Transform

	// Stack slots introduced in the new prolog that require deallocation
	// at every exit, and temporary values that require destruction there.
	// Both are drained in reverse order of introduction.
	allocStacks   []air.Value
	cleanupValues []air.Value
}

func newSpecializerCloner(t *Transform) *specializerCloner {
	return &specializerCloner{t: t}
}

// cloneAndPopulate builds the twin's entry block and clones the original
// body into it.
func (c *specializerCloner) cloneAndPopulate() {
	origFn := c.t.fn
	newFn := c.t.newFn

	entry := newFn.NewBasicBlock()
	builder := air.NewBuilderAtEnd(entry)

	cloner := air.NewFunctionCloner(origFn, newFn, nil)
	entryArgs := c.cloneArguments(builder, entry)
	for i, origArg := range origFn.EntryBlock().Args {
		cloner.MapValue(origArg, entryArgs[i])
	}
	cloner.CloneBody()

	// Cleanup allocations created in the new prolog, on every exit path.
	for _, exitBB := range newFn.ExitingBlocks() {
		b := air.NewBuilderBeforeTerminator(exitBB)
		for i := len(c.cleanupValues) - 1; i >= 0; i-- {
			b.EmitDestroyOperation(c.cleanupValues[i])
		}
		for i := len(c.allocStacks) - 1; i >= 0; i-- {
			b.CreateDeallocStack(c.allocStacks[i])
		}
	}
}

// cloneArguments creates the entry block arguments of the twin and
// returns, per original argument position, the value the cloned body sees
// at that position.
func (c *specializerCloner) cloneArguments(builder *air.Builder, entry *air.BasicBlock) []air.Value {
	entryArgs := make([]air.Value, 0, len(c.t.argDescs))

	for _, ad := range c.t.argDescs {
		gp, transformed := c.t.argToGenericParam[ad.Index]
		if !transformed {
			// Clone arguments that are not rewritten.
			newArg := entry.NewArgument(ad.Arg.Type(), ad.Arg.Ownership(), ad.Decl)
			newArg.CopyFlags(ad.Arg)
			entryArgs = append(entryArgs, newArg)
			continue
		}

		// Create the generic argument in the same storage category as the
		// original existential argument.
		genericTy := air.ObjectType(gp).CategoryType(ad.Arg.Type().Category())
		newArg := entry.NewArgument(genericTy, air.OwnershipForConvention(genericTy, ad.Convention), ad.Decl)
		newArg.CopyFlags(ad.Arg)

		existentialTy := ad.Arg.Type().GetObjectType()
		existential := existentialTy.Existential()
		if existential == nil {
			errors.InvariantViolation("EXT_NOT_EXISTENTIAL", "argument %d of %q is not existential: %s", ad.Index, c.t.fn.Name, ad.Arg.Type())
		}

		// Gather the conformances needed to box a value of the generic
		// parameter's type, including any inherited from superclass
		// constraints.
		conformances, err := c.t.module.Conformances.CollectExistentialConformances(gp, existential)
		if err != nil {
			errors.InvariantViolation("EXT_CONFORMANCE", "cannot gather conformances for %s: %v", gp, err)
		}

		ead := c.t.existentialArgs[ad.Index]
		switch existential.PreferredRepresentation() {
		case types.RepresentationOpaque:
			entryArgs = append(entryArgs, c.boxOpaqueArgument(builder, newArg, existentialTy, gp, conformances, ead.Consumed))
		case types.RepresentationClass:
			entryArgs = append(entryArgs, c.boxClassArgument(builder, newArg, existentialTy, gp, conformances, ead.Consumed))
		default:
			errors.InvariantViolation("EXT_BAD_REPRESENTATION", "unhandled existential representation for argument %d of %q", ad.Index, c.t.fn.Name)
		}
	}
	return entryArgs
}

// boxOpaqueArgument re-derives an opaque existential from the generic
// argument:
//
//	%slot = alloc_stack $P
//	%payload = init_existential_addr %slot, $T
//	copy_addr [take?] %arg to [init] %payload
//
// The body receives the slot's address in place of the old existential
// argument.
func (c *specializerCloner) boxOpaqueArgument(builder *air.Builder, newArg *air.Argument, existentialTy air.Type, gp *types.GenericTypeParamType, conformances []types.Conformance, consumed bool) air.Value {
	slot := builder.CreateAllocStack(existentialTy)
	c.allocStacks = append(c.allocStacks, slot)

	payload := builder.CreateInitExistentialAddr(slot, gp, conformances)

	// If the original did not consume the existential, the box introduced
	// here holds a copy that needs cleanup at every exit.
	if !consumed {
		c.cleanupValues = append(c.cleanupValues, slot)
	}
	builder.CreateCopyAddr(newArg, payload, consumed, true)
	return slot
}

// boxClassArgument re-derives a class existential from the generic
// argument: load it out of memory if needed, take a defensive owning copy
// when the argument is unowned, box it with init_existential_ref, and
// re-spill to a stack slot when the body expects an address.
func (c *specializerCloner) boxClassArgument(builder *air.Builder, newArg *air.Argument, existentialTy air.Type, gp *types.GenericTypeParamType, conformances []types.Conformance, consumed bool) air.Value {
	var value air.Value = newArg

	if !newArg.Type().IsObject() {
		qual := air.LoadTake
		if builder.HasOwnership() && !consumed {
			qual = air.LoadCopy
		}
		value = builder.EmitLoadOperation(newArg, qual)
	}

	if builder.HasOwnership() && newArg.Ownership() == air.OwnershipUnowned {
		value = builder.EmitCopyValueOperation(newArg)
	}

	boxed := builder.CreateInitExistentialRef(existentialTy, gp, value, conformances)

	if builder.HasOwnership() && newArg.Ownership() == air.OwnershipUnowned {
		c.cleanupValues = append(c.cleanupValues, boxed)
	}

	// The body expects an address when the original argument was
	// address-based; the store consumes the boxed reference.
	if !newArg.Type().IsObject() {
		slot := builder.CreateAllocStack(boxed.Type())
		builder.EmitStoreOperation(boxed, slot, air.StoreInit)
		c.allocStacks = append(c.allocStacks, slot)
		return slot
	}
	return boxed
}
