// Tests for the specialization mangler.

package mangle

import "testing"

func TestMangle_Deterministic(t *testing.T) {
	a := NewSpecializationMangler("area")
	a.SetArgumentExistentialToGeneric(0)
	a.SetArgumentExistentialToGeneric(2)

	b := NewSpecializationMangler("area")
	b.SetArgumentExistentialToGeneric(2)
	b.SetArgumentExistentialToGeneric(0)

	if a.Mangle() != b.Mangle() {
		t.Errorf("Mangling depends on recording order: %s vs %s", a.Mangle(), b.Mangle())
	}
}

func TestMangle_DistinctInputsDistinctNames(t *testing.T) {
	seen := make(map[string]string)
	cases := []struct {
		name    string
		indices []int
	}{
		{"area", []int{0}},
		{"area", []int{1}},
		{"area", []int{0, 1}},
		{"draw", []int{0}},
	}
	for _, c := range cases {
		m := NewSpecializationMangler(c.name)
		for _, idx := range c.indices {
			m.SetArgumentExistentialToGeneric(idx)
		}
		mangled := m.Mangle()
		if prev, dup := seen[mangled]; dup {
			t.Errorf("Collision between %s%v and %s", c.name, c.indices, prev)
		}
		seen[mangled] = mangled
	}
}

func TestMangle_Idempotent(t *testing.T) {
	m := NewSpecializationMangler("draw")
	m.SetArgumentExistentialToGeneric(1)
	m.SetArgumentExistentialToGeneric(1)

	n := NewSpecializationMangler("draw")
	n.SetArgumentExistentialToGeneric(1)

	if m.Mangle() != n.Mangle() {
		t.Errorf("Recording the same index twice changed the name")
	}
}

func TestMangle_RejectsNegativeIndex(t *testing.T) {
	m := NewSpecializationMangler("f")
	defer func() {
		if recover() == nil {
			t.Fatal("Expected panic for negative index")
		}
	}()
	m.SetArgumentExistentialToGeneric(-1)
}
