// Existential-to-generic argument specialization for the Auriga optimizer
// Given a function with arguments of existential (boxed protocol) type
// selected by an earlier candidate-selection pass, the transform produces a
// generic twin function that unboxes each such argument once at entry, and
// rewrites the original function into a thunk that forwards to the twin.
//
// Strategy:
//  1. create a protocol-constrained generic function from the old function;
//  2. rewrite the original function into an always-inlined thunk invoking it.

package existential

import (
	"github.com/auriga-lang/auriga/internal/air"
	"github.com/auriga-lang/auriga/internal/errors"
	"github.com/auriga-lang/auriga/internal/mangle"
	"github.com/auriga-lang/auriga/internal/types"
)

// Transform carries the state of one specialization of one function. All
// of it is scoped to a single Run and discarded afterwards; only the twin
// function outlives the transform, cached in the module's function table.
type Transform struct {
	module *air.Module
	fn     *air.Function
	newFn  *air.Function

	argDescs        []ArgumentDescriptor
	existentialArgs map[int]TransformArgumentDescriptor

	// argToGenericParam maps original argument index to the synthesized
	// generic parameter. Populated once during signature synthesis, read
	// by the body cloner and the thunk builder.
	argToGenericParam map[int]*types.GenericTypeParamType
}

// NewTransform prepares a specialization of fn within module. argDescs
// describes every parameter; existentialArgs selects the arguments to
// rewrite, keyed by position.
func NewTransform(module *air.Module, fn *air.Function, argDescs []ArgumentDescriptor, existentialArgs map[int]TransformArgumentDescriptor) *Transform {
	if len(existentialArgs) == 0 {
		errors.InvariantViolation("EXT_NO_ARGS", "transform invoked on %q with no selected arguments", fn.Name)
	}
	return &Transform{
		module:            module,
		fn:                fn,
		argDescs:          argDescs,
		existentialArgs:   existentialArgs,
		argToGenericParam: make(map[int]*types.GenericTypeParamType),
	}
}

// SpecializedFunction returns the generic twin after Run.
func (t *Transform) SpecializedFunction() *air.Function { return t.newFn }

// Run performs the specialization and returns the twin. The original
// function is mutated in place into a thunk with its signature preserved.
func (t *Transform) Run() *air.Function {
	name := t.specializedName()

	// Compute the twin's type; this also populates argToGenericParam.
	newFTy := t.specializedFunctionType()

	if cached := t.module.LookupFunction(name); cached != nil {
		// The specialized body still exists (because it is called
		// directly), but a previous thunk may have been removed as dead
		// code. The cached type must match the freshly computed one.
		if !cached.Type().Equal(newFTy) {
			errors.InvariantViolation("EXT_CACHE_TYPE_MISMATCH",
				"cached specialization %q has type %s, expected %s", name, cached.Type(), newFTy)
		}
		t.newFn = cached
	} else {
		t.newFn = t.createSpecializedFunction(name, newFTy)
		newSpecializerCloner(t).cloneAndPopulate()
	}

	t.populateThunkBody()
	return t.newFn
}

// specializedName computes the deterministic name of the twin from the
// original function's identity and the set of transformed indices.
func (t *Transform) specializedName() string {
	m := mangle.NewSpecializationMangler(t.fn.Name)
	for _, idx := range t.sortedExistentialIndices() {
		m.SetArgumentExistentialToGeneric(idx)
	}
	return m.Mangle()
}

// createSpecializedFunction creates the twin shell: specialized linkage,
// the computed type, and the original's attributes carried over.
func (t *Transform) createSpecializedFunction(name string, newFTy *types.FunctionType) *air.Function {
	fn := t.fn
	newFn := t.module.CreateFunction(name, air.SpecializedLinkage(fn), newFTy)

	newFn.Bare = fn.Bare
	newFn.Transparent = fn.Transparent
	newFn.Serialized = fn.Serialized
	newFn.Thunk = fn.Thunk
	newFn.Inline = fn.Inline
	newFn.Effects = fn.Effects
	newFn.EntryCount = fn.EntryCount
	newFn.SemanticsAttrs = append([]string(nil), fn.SemanticsAttrs...)

	// If the original has no fine-grained ownership tracking, neither
	// does the twin.
	if !fn.HasOwnership() {
		newFn.SetOwnershipEliminated()
	}
	return newFn
}
