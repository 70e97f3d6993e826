// Argument descriptors for the existential specializer
// Descriptors capture the per-argument facts the transform needs: position,
// declared type and storage category, and ownership convention. They are
// computed once and treated as immutable for the duration of one transform.

package existential

import (
	"github.com/auriga-lang/auriga/internal/air"
	"github.com/auriga-lang/auriga/internal/errors"
	"github.com/auriga-lang/auriga/internal/types"
)

// ArgumentDescriptor describes one original parameter of the function
// under transformation.
type ArgumentDescriptor struct {
	// Index is the positional index of the argument.
	Index int
	// Arg is the original entry-block argument, carrying the declared type
	// and its storage category.
	Arg *air.Argument
	// Decl is the source-level declaration handle, if any.
	Decl string
	// Convention records whether the callee consumes or borrows the value.
	Convention types.ParamConvention
}

// NewArgumentDescriptor captures the facts about argument index of f.
func NewArgumentDescriptor(f *air.Function, index int) ArgumentDescriptor {
	entry := f.EntryBlock()
	if entry == nil || index < 0 || index >= len(entry.Args) {
		errors.InvariantViolation("EXT_BAD_ARG_INDEX", "argument index %d out of range for %q", index, f.Name)
	}
	arg := entry.Argument(index)
	return ArgumentDescriptor{
		Index:      index,
		Arg:        arg,
		Decl:       arg.Decl,
		Convention: f.Type().Params[index].Convention,
	}
}

// ComputeArgumentDescriptors builds descriptors for every parameter of f.
func ComputeArgumentDescriptors(f *air.Function) []ArgumentDescriptor {
	out := make([]ArgumentDescriptor, 0, len(f.Type().Params))
	for i := range f.Type().Params {
		out = append(out, NewArgumentDescriptor(f, i))
	}
	return out
}

// TransformArgumentDescriptor describes one argument selected for the
// existential-to-generic rewrite. It is produced by the candidate-selection
// pass and consumed here as read-only input.
type TransformArgumentDescriptor struct {
	// Consumed reports whether the original function consumes the boxed
	// value.
	Consumed bool
	// Access is the access mode required when opening the existential in
	// the thunk.
	Access air.OpenedAccess
}
