// Package mangle produces the deterministic symbol names used for
// compiler-generated function specializations. The mangled name is a pure
// function of the original symbol and the recorded transform steps, so
// repeated specializations of the same function deduplicate by name.
package mangle

import (
	"fmt"
	"sort"
	"strings"
)

// SpecializationMangler accumulates per-argument transform markers on top
// of an original function name.
type SpecializationMangler struct {
	base                 string
	existentialToGeneric map[int]bool
}

// NewSpecializationMangler starts a mangling for the given function name.
func NewSpecializationMangler(functionName string) *SpecializationMangler {
	return &SpecializationMangler{
		base:                 functionName,
		existentialToGeneric: make(map[int]bool),
	}
}

// SetArgumentExistentialToGeneric records that the argument at index is
// rewritten from an existential to a generic parameter.
func (m *SpecializationMangler) SetArgumentExistentialToGeneric(index int) {
	if index < 0 {
		panic(fmt.Sprintf("negative argument index %d in specialization mangling", index))
	}
	m.existentialToGeneric[index] = true
}

// Mangle produces the specialized symbol. Equal inputs produce equal
// symbols regardless of the order markers were recorded in.
func (m *SpecializationMangler) Mangle() string {
	indices := make([]int, 0, len(m.existentialToGeneric))
	for idx := range m.existentialToGeneric {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	var sb strings.Builder
	sb.WriteString("$s")
	fmt.Fprintf(&sb, "%d%s", len(m.base), m.base)
	for _, idx := range indices {
		fmt.Fprintf(&sb, "Tg%d", idx)
	}
	sb.WriteString("_n")
	return sb.String()
}
