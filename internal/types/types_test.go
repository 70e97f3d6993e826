// Tests for the core type system: existential classification, generic
// signatures, substitution maps and the conformance oracle.

package types

import (
	"strings"
	"testing"
)

func TestExistentialType_Representation(t *testing.T) {
	shape := &ProtocolType{Name: "Shape"}
	drawable := &ProtocolType{Name: "Drawable", ClassBound: true}
	base := &ClassType{Name: "Base"}

	opaque := NewExistentialType(shape)
	if got := opaque.PreferredRepresentation(); got != RepresentationOpaque {
		t.Errorf("Expected opaque representation, got %v", got)
	}

	classBound := NewExistentialType(drawable)
	if got := classBound.PreferredRepresentation(); got != RepresentationClass {
		t.Errorf("Expected class representation, got %v", got)
	}

	withSuperclass := NewExistentialType(&ProtocolCompositionType{
		Protocols:  []*ProtocolType{shape},
		Superclass: base,
	})
	if got := withSuperclass.PreferredRepresentation(); got != RepresentationClass {
		t.Errorf("Expected class representation for superclass-constrained existential, got %v", got)
	}
	if withSuperclass.SuperclassConstraint() != base {
		t.Errorf("Superclass constraint not preserved")
	}
}

func TestNewExistentialType_RejectsNonConstraint(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Expected panic for non-constraint existential")
		}
	}()
	NewExistentialType(IntType)
}

func TestGenericTypeParam_Interning(t *testing.T) {
	a := NewGenericTypeParam(1, 0)
	b := NewGenericTypeParam(1, 0)
	c := NewGenericTypeParam(1, 1)

	if a != b {
		t.Errorf("Expected interned parameters to be identical")
	}
	if a == c {
		t.Errorf("Expected distinct parameters for distinct indices")
	}
	if !a.Equal(b) || a.Equal(c) {
		t.Errorf("Equal disagrees with interning")
	}
}

func TestGenericSignature_NextDepth(t *testing.T) {
	var empty *GenericSignature
	if empty.NextDepth() != 0 {
		t.Errorf("Empty signature should have next depth 0, got %d", empty.NextDepth())
	}

	sig := &GenericSignature{Params: []*GenericTypeParamType{
		NewGenericTypeParam(0, 0),
		NewGenericTypeParam(0, 1),
	}}
	if sig.NextDepth() != 1 {
		t.Errorf("Expected next depth 1, got %d", sig.NextDepth())
	}
}

func TestBuildGenericSignature_LayersAtDeeperDepth(t *testing.T) {
	shape := &ProtocolType{Name: "Shape"}
	base := &GenericSignature{Params: []*GenericTypeParamType{NewGenericTypeParam(0, 0)}}

	p := NewGenericTypeParam(1, 0)
	req := Requirement{Kind: RequirementConformance, Subject: p, Constraint: shape}
	sig := BuildGenericSignature(base, []*GenericTypeParamType{p}, []Requirement{req})

	if len(sig.Params) != 2 {
		t.Fatalf("Expected 2 params, got %d", len(sig.Params))
	}
	if sig.Params[0] != base.Params[0] || sig.Params[1] != p {
		t.Errorf("Parameter order not preserved")
	}
	if len(sig.Requirements) != 1 || !sig.Requirements[0].Equal(req) {
		t.Errorf("Requirements not carried over")
	}
	if !strings.Contains(sig.String(), "where") {
		t.Errorf("Expected requirements in signature string, got %s", sig)
	}
}

func TestBuildGenericSignature_RejectsShallowDepth(t *testing.T) {
	base := &GenericSignature{Params: []*GenericTypeParamType{NewGenericTypeParam(0, 0)}}
	defer func() {
		if recover() == nil {
			t.Fatal("Expected panic for parameter at existing depth")
		}
	}()
	BuildGenericSignature(base, []*GenericTypeParamType{NewGenericTypeParam(0, 1)}, nil)
}

func TestSubstitutionMap_Apply(t *testing.T) {
	p := NewGenericTypeParam(0, 0)
	other := NewGenericTypeParam(0, 1)

	m := NewSubstitutionMap()
	m.Set(p, IntType)

	if got := m.Apply(p); !got.Equal(IntType) {
		t.Errorf("Expected Int, got %s", got)
	}
	if got := m.Apply(other); got != Type(other) {
		t.Errorf("Unmapped parameter should pass through, got %s", got)
	}

	fnTy := &FunctionType{
		Params: []ParamInfo{{Type: p, Convention: ConventionDirectOwned}},
		Result: ResultInfo{Type: p},
	}
	applied := m.Apply(fnTy).(*FunctionType)
	if !applied.Params[0].Type.Equal(IntType) || !applied.Result.Type.Equal(IntType) {
		t.Errorf("Substitution did not reach into function type: %s", applied)
	}
}

func TestSubstitutionMap_InsertOnce(t *testing.T) {
	p := NewGenericTypeParam(0, 0)
	m := NewSubstitutionMap()
	m.Set(p, IntType)

	defer func() {
		if recover() == nil {
			t.Fatal("Expected panic on second insertion for the same parameter")
		}
	}()
	m.Set(p, BoolType)
}

func TestForwardingSubstitutionMap(t *testing.T) {
	p0 := NewGenericTypeParam(0, 0)
	p1 := NewGenericTypeParam(0, 1)
	sig := &GenericSignature{Params: []*GenericTypeParamType{p0, p1}}

	m := ForwardingSubstitutionMap(sig)
	if m.Len() != 2 {
		t.Fatalf("Expected 2 substitutions, got %d", m.Len())
	}
	for _, p := range sig.Params {
		r, ok := m.Replacement(p)
		if !ok || !r.Equal(p) {
			t.Errorf("Expected %s to forward to itself, got %v", p, r)
		}
	}
}

func TestConformanceTable_SuperclassInheritance(t *testing.T) {
	shape := &ProtocolType{Name: "Shape"}
	base := &ClassType{Name: "Base"}
	derived := &ClassType{Name: "Derived", Superclass: base}

	ct := NewConformanceTable()
	ct.Register(base, shape)

	found, inherited := ct.Conforms(derived, shape)
	if !found || !inherited {
		t.Errorf("Expected inherited conformance, got found=%v inherited=%v", found, inherited)
	}

	confs, err := ct.CollectExistentialConformances(derived, NewExistentialType(shape))
	if err != nil {
		t.Fatalf("CollectExistentialConformances failed: %v", err)
	}
	if len(confs) != 1 || !confs[0].Inherited {
		t.Errorf("Expected one inherited conformance, got %v", confs)
	}
}

func TestConformanceTable_AbstractSubjects(t *testing.T) {
	shape := &ProtocolType{Name: "Shape"}
	render := &ProtocolType{Name: "Renderable"}
	existential := NewExistentialType(&ProtocolCompositionType{Protocols: []*ProtocolType{shape, render}})

	ct := NewConformanceTable()
	gp := NewGenericTypeParam(0, 0)

	confs, err := ct.CollectExistentialConformances(gp, existential)
	if err != nil {
		t.Fatalf("CollectExistentialConformances failed: %v", err)
	}
	if len(confs) != 2 {
		t.Fatalf("Expected 2 conformances, got %d", len(confs))
	}
	for _, c := range confs {
		if !c.Abstract {
			t.Errorf("Expected abstract conformance for %s", c.Protocol.Name)
		}
	}
}

func TestConformanceTable_MissingConformance(t *testing.T) {
	shape := &ProtocolType{Name: "Shape"}
	ct := NewConformanceTable()

	_, err := ct.CollectExistentialConformances(IntType, NewExistentialType(shape))
	if err == nil {
		t.Fatal("Expected error for missing conformance")
	}
}

func TestOpenedArchetype_DistinctPerOpening(t *testing.T) {
	shape := &ProtocolType{Name: "Shape"}
	existential := NewExistentialType(shape)

	a := NewOpenedArchetype(existential)
	b := NewOpenedArchetype(existential)
	if a.Equal(b) {
		t.Errorf("Distinct openings must yield distinct archetypes")
	}
	if !a.Equal(a) {
		t.Errorf("Archetype must equal itself")
	}
	if !IsAbstract(a) {
		t.Errorf("Opened archetype should be abstract")
	}
}

func TestFunctionType_Equal(t *testing.T) {
	shape := &ProtocolType{Name: "Shape"}
	anyShape := NewExistentialType(shape)

	mk := func() *FunctionType {
		return &FunctionType{
			Params: []ParamInfo{{Type: anyShape, Convention: ConventionIndirectInGuaranteed}},
			Result: ResultInfo{Type: IntType},
		}
	}
	a, b := mk(), mk()
	if !a.Equal(b) {
		t.Errorf("Structurally identical function types must compare equal")
	}

	c := mk()
	c.Params[0].Convention = ConventionIndirectIn
	if a.Equal(c) {
		t.Errorf("Differing conventions must not compare equal")
	}

	d := mk()
	er := ResultInfo{Type: StringType}
	d.ErrorResult = &er
	if a.Equal(d) {
		t.Errorf("Differing error results must not compare equal")
	}
}

func TestFunctionType_IsNoReturn(t *testing.T) {
	ft := &FunctionType{Result: ResultInfo{Type: NeverType}}
	if !ft.IsNoReturn() {
		t.Errorf("Never-returning function type not detected")
	}
	ft2 := &FunctionType{Result: ResultInfo{Type: IntType}}
	if ft2.IsNoReturn() {
		t.Errorf("Int-returning function type misclassified as no-return")
	}
}
