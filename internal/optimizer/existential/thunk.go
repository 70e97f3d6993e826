// Thunk builder for the existential specializer
// Destructively replaces the original function's body with a single block
// of the original signature that unboxes each existential argument, calls
// the generic twin with substitutions, propagates the result or error, and
// cleans up its temporaries.

package existential

import (
	"github.com/auriga-lang/auriga/internal/air"
	"github.com/auriga-lang/auriga/internal/errors"
	"github.com/auriga-lang/auriga/internal/types"
)

// thunkTemp is one temporary introduced while unboxing: a stack slot to
// deallocate and/or a value to destroy after the call.
type thunkTemp struct {
	dealloc air.Value
	destroy air.Value
}

// populateThunkBody rewrites the original function into an always-inlined,
// signature-optimized thunk that forwards to the twin.
func (t *Transform) populateThunkBody() {
	fn := t.fn

	fn.Thunk = air.SignatureOptimizedThunk
	fn.Inline = air.AlwaysInline

	// Remove the original body; the thunk gets a fresh entry block with
	// the original (unmodified) parameter list.
	fn.DropBody()
	thunkBody := fn.NewBasicBlock()
	for _, ad := range t.argDescs {
		newArg := thunkBody.NewArgument(ad.Arg.Type(), ad.Arg.Ownership(), ad.Decl)
		newArg.CopyFlags(ad.Arg)
	}

	builder := air.NewBuilderAtEnd(thunkBody)
	calleeRef := builder.CreateFunctionRef(t.newFn)

	var applyArgs []air.Value
	var temps []thunkTemp
	genericToOpened := make(map[*types.GenericTypeParamType]types.Type)

	for _, ad := range t.argDescs {
		gp, transformed := t.argToGenericParam[ad.Index]
		ead, selected := t.existentialArgs[ad.Index]
		if !transformed || !selected {
			applyArgs = append(applyArgs, thunkBody.Argument(ad.Index))
			continue
		}

		origOperand := thunkBody.Argument(ad.Index)
		existential := ad.Arg.Type().Existential()
		if existential == nil {
			errors.InvariantViolation("EXT_NOT_EXISTENTIAL", "argument %d of %q is not existential: %s", ad.Index, fn.Name, ad.Arg.Type())
		}
		opened := types.NewOpenedArchetype(existential)
		openedTy := air.ObjectType(opened)

		switch existential.PreferredRepresentation() {
		case types.RepresentationOpaque:
			applyArgs = append(applyArgs, t.openOpaqueArgument(builder, origOperand, openedTy, ead, &temps))
		case types.RepresentationClass:
			applyArgs = append(applyArgs, t.openClassArgument(builder, origOperand, openedTy, ead, &temps))
		default:
			errors.InvariantViolation("EXT_BAD_REPRESENTATION", "unhandled existential representation for argument %d of %q", ad.Index, fn.Name)
		}
		genericToOpened[gp] = opened
	}

	subs := t.callSubstitutions(genericToOpened)

	// Call the twin, forwarding failure through a dedicated error path.
	var returnValue air.Value
	twinTy := t.newFn.Type()
	if twinTy.HasErrorResult() {
		normalBB := fn.NewBasicBlock()
		returnValue = normalBB.NewPhiArgument(air.ObjectType(subs.Apply(twinTy.Result.Type)), air.OwnershipOwned)
		errorBB := fn.NewBasicBlock()
		errArg := errorBB.NewPhiArgument(air.ObjectType(subs.Apply(twinTy.ErrorResult.Type)), air.OwnershipOwned)

		builder.CreateTryApply(calleeRef, subs, applyArgs, normalBB, errorBB)

		builder.SetInsertionPoint(errorBB)
		builder.CreateThrow(errArg)
		builder.SetInsertionPoint(normalBB)
	} else {
		returnValue = builder.CreateApply(calleeRef, subs, applyArgs)
	}

	// Clean up unboxing temporaries on the normal path only, in reverse
	// order of introduction: value destroys first, then stack slots.
	for i := len(temps) - 1; i >= 0; i-- {
		if temps[i].destroy != nil {
			builder.EmitDestroyOperation(temps[i].destroy)
		}
	}
	for i := len(temps) - 1; i >= 0; i-- {
		if temps[i].dealloc != nil {
			builder.CreateDeallocStack(temps[i].dealloc)
		}
	}

	if t.newFn.IsNoReturn() {
		builder.CreateUnreachable()
	} else {
		builder.CreateReturn(returnValue)
	}
}

// openOpaqueArgument opens an opaque existential in place. When the twin
// consumes the value, the opened payload is copied into a fresh temporary
// slot rather than handing over the live box contents; the original box is
// destroyed after the call.
func (t *Transform) openOpaqueArgument(builder *air.Builder, origOperand air.Value, openedTy air.Type, ead TransformArgumentDescriptor, temps *[]thunkTemp) air.Value {
	payload := builder.CreateOpenExistentialAddr(origOperand, openedTy, ead.Access)
	if !ead.Consumed {
		return payload
	}
	// open_existential_addr projects a borrowed address into the box; a
	// consuming callee must receive a copy.
	slot := builder.CreateAllocStack(openedTy)
	builder.CreateCopyAddr(payload, slot, false, true)
	*temps = append(*temps, thunkTemp{dealloc: slot, destroy: origOperand})
	return slot
}

// openClassArgument loads the boxed reference if needed, opens it, and
// re-spills to a temporary slot when the underlying storage was
// address-based. open_existential_ref forwards ownership, so it behaves
// correctly for both borrowed and consumed arguments.
func (t *Transform) openClassArgument(builder *air.Builder, origOperand air.Value, openedTy air.Type, ead TransformArgumentDescriptor, temps *[]thunkTemp) air.Value {
	var value air.Value = origOperand
	if !origOperand.Type().IsObject() {
		qual := air.LoadTake
		if builder.HasOwnership() && !ead.Consumed {
			qual = air.LoadCopy
		}
		value = builder.EmitLoadOperation(origOperand, qual)
	} else if builder.HasOwnership() && !ead.Consumed {
		value = builder.EmitCopyValueOperation(origOperand)
	}

	opened := builder.CreateOpenExistentialRef(value, openedTy)

	if !origOperand.Type().IsObject() {
		slot := builder.CreateAllocStack(openedTy)
		builder.EmitStoreOperation(opened, slot, air.StoreInit)
		*temps = append(*temps, thunkTemp{dealloc: slot})
		return slot
	}
	if builder.HasOwnership() && !ead.Consumed {
		*temps = append(*temps, thunkTemp{destroy: opened})
	}
	return opened
}

// callSubstitutions builds the substitution map for calling the twin:
// parameters belonging to the original function's own signature forward the
// original's substitutions; the newly introduced parameters substitute the
// concrete opened types recorded during unboxing. A miss in either mapping
// is an internal-invariant violation.
func (t *Transform) callSubstitutions(genericToOpened map[*types.GenericTypeParamType]types.Type) *types.SubstitutionMap {
	origSig := t.fn.Type().GenericSig
	origDepth := origSig.NextDepth()
	origSubs := types.ForwardingSubstitutionMap(origSig)

	subs := types.NewSubstitutionMap()
	calleeSig := t.newFn.Type().GenericSig
	if calleeSig.IsEmpty() {
		return subs
	}
	for _, gp := range calleeSig.Params {
		if gp.Depth < origDepth {
			r, ok := origSubs.Replacement(gp)
			if !ok {
				errors.InvariantViolation("EXT_SUBST_MISS", "no forwarding substitution for %s in %q", gp, t.fn.Name)
			}
			subs.Set(gp, r)
			continue
		}
		opened, ok := genericToOpened[gp]
		if !ok {
			errors.InvariantViolation("EXT_SUBST_MISS", "no opened type recorded for %s in %q", gp, t.fn.Name)
		}
		subs.Set(gp, opened)
	}
	return subs
}
