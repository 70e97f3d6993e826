// Textual disassembly for the Auriga mid-level IR
// The printed form is stable within one call to Disassemble: values are
// numbered in order of appearance, blocks are labeled bbN in function
// order. Used by tests and the auriga-opt demo tool.

package air

import (
	"fmt"
	"strings"
)

type printer struct {
	names  map[Value]string
	blocks map[*BasicBlock]string
	next   int
}

func newPrinter(f *Function) *printer {
	p := &printer{
		names:  make(map[Value]string),
		blocks: make(map[*BasicBlock]string),
	}
	for i, bb := range f.Blocks {
		p.blocks[bb] = fmt.Sprintf("bb%d", i)
		for _, arg := range bb.Args {
			p.assign(arg)
		}
		for _, inst := range bb.Instrs {
			if v, ok := inst.(Value); ok {
				p.assign(v)
			}
		}
	}
	return p
}

func (p *printer) assign(v Value) {
	if _, ok := p.names[v]; !ok {
		p.names[v] = fmt.Sprintf("%%%d", p.next)
		p.next++
	}
}

func (p *printer) name(v Value) string {
	if n, ok := p.names[v]; ok {
		return n
	}
	return "%?"
}

func (p *printer) nameList(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = p.name(v)
	}
	return strings.Join(parts, ", ")
}

func (p *printer) block(bb *BasicBlock) string {
	if n, ok := p.blocks[bb]; ok {
		return n
	}
	return "bb?"
}

// Disassemble renders a function in textual form.
func Disassemble(f *Function) string {
	p := newPrinter(f)
	var b strings.Builder

	fmt.Fprintf(&b, "// %s", f.Name)
	if f.Thunk != NotThunk {
		fmt.Fprintf(&b, " [%s]", f.Thunk)
	}
	if f.Inline == AlwaysInline {
		b.WriteString(" [always_inline]")
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "func %s @%s : %s {\n", f.Linkage, f.Name, f.Type())

	for _, bb := range f.Blocks {
		b.WriteString(p.block(bb))
		if len(bb.Args) > 0 {
			b.WriteByte('(')
			for i, arg := range bb.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "%s : %s", p.name(arg), arg.Type())
				if arg.Ownership() != OwnershipNone {
					fmt.Fprintf(&b, " @%s", arg.Ownership())
				}
			}
			b.WriteByte(')')
		}
		b.WriteString(":\n")
		for _, inst := range bb.Instrs {
			b.WriteString("  ")
			b.WriteString(p.instString(inst))
			b.WriteByte('\n')
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func (p *printer) instString(inst Instruction) string {
	switch i := inst.(type) {
	case *AllocStackInst:
		return fmt.Sprintf("%s = alloc_stack %s", p.name(i), i.Type().GetObjectType())
	case *DeallocStackInst:
		return fmt.Sprintf("dealloc_stack %s", p.name(i.Operand))
	case *LoadInst:
		return strings.TrimSpace(fmt.Sprintf("%s = load %s %s", p.name(i), i.Qualifier, p.name(i.Operand)))
	case *StoreInst:
		return strings.TrimSpace(fmt.Sprintf("store %s to %s %s", p.name(i.Src), i.Qualifier, p.name(i.Dest)))
	case *CopyAddrInst:
		src := p.name(i.Src)
		if i.IsTake {
			src = "[take] " + src
		}
		dest := p.name(i.Dest)
		if i.IsInit {
			dest = "[init] " + dest
		}
		return fmt.Sprintf("copy_addr %s to %s", src, dest)
	case *DestroyAddrInst:
		return fmt.Sprintf("destroy_addr %s", p.name(i.Operand))
	case *CopyValueInst:
		return fmt.Sprintf("%s = copy_value %s", p.name(i), p.name(i.Operand))
	case *DestroyValueInst:
		return fmt.Sprintf("destroy_value %s", p.name(i.Operand))
	case *IntegerLiteralInst:
		return fmt.Sprintf("%s = integer_literal %s, %d", p.name(i), i.Type(), i.Value)
	case *BuiltinInst:
		return fmt.Sprintf("%s = builtin %q(%s) : %s", p.name(i), i.Name, p.nameList(i.Args), i.Type())
	case *InitExistentialAddrInst:
		return fmt.Sprintf("%s = init_existential_addr %s, $%s", p.name(i), p.name(i.Operand), i.ConcreteType)
	case *InitExistentialRefInst:
		return fmt.Sprintf("%s = init_existential_ref %s : $%s, %s", p.name(i), p.name(i.Operand), i.ConcreteType, i.Type())
	case *OpenExistentialAddrInst:
		return fmt.Sprintf("%s = open_existential_addr %s %s to %s", p.name(i), i.Access, p.name(i.Operand), i.Type())
	case *OpenExistentialRefInst:
		return fmt.Sprintf("%s = open_existential_ref %s to %s", p.name(i), p.name(i.Operand), i.Type())
	case *FunctionRefInst:
		return fmt.Sprintf("%s = function_ref @%s", p.name(i), i.Callee.Name)
	case *ApplyInst:
		return fmt.Sprintf("%s = apply %s(%s)", p.name(i), p.name(i.Callee), p.nameList(i.Args))
	case *TryApplyInst:
		return fmt.Sprintf("try_apply %s(%s), normal %s, error %s",
			p.name(i.Callee), p.nameList(i.Args), p.block(i.Normal), p.block(i.Error))
	case *ReturnInst:
		return fmt.Sprintf("return %s", p.name(i.Operand))
	case *ThrowInst:
		return fmt.Sprintf("throw %s", p.name(i.Operand))
	case *BrInst:
		if len(i.Args) == 0 {
			return fmt.Sprintf("br %s", p.block(i.Dest))
		}
		return fmt.Sprintf("br %s(%s)", p.block(i.Dest), p.nameList(i.Args))
	case *CondBrInst:
		return fmt.Sprintf("cond_br %s, %s, %s", p.name(i.Cond), p.block(i.TrueDest), p.block(i.FalseDest))
	case *UnreachableInst:
		return "unreachable"
	default:
		return fmt.Sprintf("<unknown %T>", inst)
	}
}
