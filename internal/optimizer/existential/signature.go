// Generic signature synthesis for the existential specializer
// Each existential argument becomes a fresh generic parameter constrained
// to the existential's erased constraint. New parameters nest strictly
// deeper than any parameter of the original function, with indices assigned
// in ascending argument order.

package existential

import (
	"sort"

	"github.com/auriga-lang/auriga/internal/errors"
	"github.com/auriga-lang/auriga/internal/types"
)

// sortedExistentialIndices returns the transformed argument positions in
// ascending order.
func (t *Transform) sortedExistentialIndices() []int {
	indices := make([]int, 0, len(t.existentialArgs))
	for idx := range t.existentialArgs {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

// convertExistentialArgTypesToGenericArgTypes synthesizes one generic
// parameter and one conformance requirement per transformed argument, and
// populates the index-to-parameter mapping read by the cloner and the
// thunk builder.
func (t *Transform) convertExistentialArgTypesToGenericArgTypes() ([]*types.GenericTypeParamType, []types.Requirement) {
	origFTy := t.fn.Type()
	depth := origFTy.GenericSig.NextDepth()

	var genericParams []*types.GenericTypeParamType
	var requirements []types.Requirement

	gpIdx := 0
	for _, idx := range t.sortedExistentialIndices() {
		if idx < 0 || idx >= len(origFTy.Params) {
			errors.InvariantViolation("EXT_BAD_ARG_INDEX", "transformed argument index %d out of range for %q", idx, t.fn.Name)
		}
		paramTy := origFTy.Params[idx].Type
		existential, ok := paramTy.(*types.ExistentialType)
		if !ok {
			errors.InvariantViolation("EXT_NOT_EXISTENTIAL", "argument %d of %q is not existential: %s", idx, t.fn.Name, paramTy)
		}

		// The requirement's constraint is the erased constraint itself; a
		// superclass-constrained composition carries the superclass bound
		// along with the protocol conformances.
		constraint := existential.ConstraintType()

		param := types.NewGenericTypeParam(depth, gpIdx)
		gpIdx++
		genericParams = append(genericParams, param)
		requirements = append(requirements, types.Requirement{
			Kind:       types.RequirementConformance,
			Subject:    param,
			Constraint: constraint,
		})
		t.argToGenericParam[idx] = param
	}
	return genericParams, requirements
}

// specializedFunctionType builds the full lowered type of the generic
// twin: the original type with each transformed parameter replaced by its
// generic parameter under the extended signature, forced to the thin
// representation. The result is a pure function of the original type and
// the transformed index set.
func (t *Transform) specializedFunctionType() *types.FunctionType {
	origFTy := t.fn.Type()

	genericParams, requirements := t.convertExistentialArgTypesToGenericArgTypes()
	newSig := types.BuildGenericSignature(origFTy.GenericSig, genericParams, requirements)

	params := make([]types.ParamInfo, len(origFTy.Params))
	for i, p := range origFTy.Params {
		if gp, ok := t.argToGenericParam[i]; ok {
			params[i] = types.ParamInfo{Type: gp, Convention: p.Convention}
		} else {
			params[i] = p
		}
	}

	var errorResult *types.ResultInfo
	if origFTy.HasErrorResult() {
		er := *origFTy.ErrorResult
		errorResult = &er
	}

	// The twin is only ever called directly by its thunk, so it never
	// needs an implicit context.
	return &types.FunctionType{
		GenericSig:     newSig,
		Params:         params,
		Result:         origFTy.Result,
		ErrorResult:    errorResult,
		Representation: types.RepresentationThin,
	}
}
