// Sample AIR modules for the auriga-opt demo tool.
// The frontend is not wired into this tool, so demo input is built
// programmatically: a small geometry module with existential-taking
// functions that the specializer can rewrite.

package main

import (
	"github.com/auriga-lang/auriga/internal/air"
	"github.com/auriga-lang/auriga/internal/types"
)

// buildSampleModule constructs the demo module:
//
//	protocol Shape; class Sprite: Drawable (class-bound)
//	func area(shape: @in_guaranteed any Shape) -> Int
//	func draw(target: @owned any Drawable) -> Int throws(String)
func buildSampleModule() *air.Module {
	m := air.NewModule("geometry")

	shape := &types.ProtocolType{Name: "Shape"}
	drawable := &types.ProtocolType{Name: "Drawable", ClassBound: true}

	circle := &types.ClassType{Name: "Circle"}
	sprite := &types.ClassType{Name: "Sprite"}
	m.Conformances.Register(circle, shape)
	m.Conformances.Register(sprite, drawable)

	anyShape := types.NewExistentialType(shape)
	anyDrawable := types.NewExistentialType(drawable)

	buildArea(m, anyShape)
	buildDraw(m, anyDrawable)
	return m
}

// area(shape: @in_guaranteed any Shape) -> Int
func buildArea(m *air.Module, anyShape *types.ExistentialType) {
	ty := &types.FunctionType{
		Params: []types.ParamInfo{
			{Type: anyShape, Convention: types.ConventionIndirectInGuaranteed},
		},
		Result: types.ResultInfo{Type: types.IntType},
	}
	fn := m.CreateFunction("area", air.LinkagePublic, ty)
	entry := fn.NewBasicBlock()
	arg := entry.NewArgument(fn.LoweredParamType(0), air.OwnershipNone, "shape")

	b := air.NewBuilderAtEnd(entry)
	result := b.CreateBuiltin("shape_area", air.ObjectType(types.IntType), []air.Value{arg})
	b.CreateReturn(result)
}

// draw(target: @owned any Drawable) -> Int throws(String)
func buildDraw(m *air.Module, anyDrawable *types.ExistentialType) {
	errResult := types.ResultInfo{Type: types.StringType}
	ty := &types.FunctionType{
		Params: []types.ParamInfo{
			{Type: anyDrawable, Convention: types.ConventionDirectOwned},
		},
		Result:      types.ResultInfo{Type: types.IntType},
		ErrorResult: &errResult,
	}
	fn := m.CreateFunction("draw", air.LinkagePublic, ty)
	entry := fn.NewBasicBlock()
	arg := entry.NewArgument(fn.LoweredParamType(0), air.OwnershipOwned, "target")

	b := air.NewBuilderAtEnd(entry)
	result := b.CreateBuiltin("draw_calls", air.ObjectType(types.IntType), []air.Value{arg})
	b.EmitDestroyOperation(arg)
	b.CreateReturn(result)
}

// defaultPlan is used when no plan file is given.
const defaultPlan = `
transforms:
  - function: area
    arguments:
      - index: 0
        consumed: false
        access: immutable
  - function: draw
    arguments:
      - index: 0
        consumed: true
`
