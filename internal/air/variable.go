package air

import "fmt"

// Variable is an AIR operand: something that carries a Type and can be read.
// spec.md §3 names three kinds that are actually defined within a function
// (parameter, local, internal); GlobalRef/FunctionRef/Constant/InlineAsm
// round out the set of things translate_value (§4.C) can hand back for
// values that live outside the function body being translated.
type Variable interface {
	Type() Type
	Ident() string
	isVariable()
}

// Parameter is a function parameter slot.
type Parameter struct {
	Index int
	Name  string
	Typ   Type
}

func (p *Parameter) Type() Type      { return p.Typ }
func (p *Parameter) Ident() string   { return "%" + p.Name }
func (p *Parameter) isVariable()     {}
func (p *Parameter) String() string  { return p.Ident() }

// Local is a stack variable: the result of an Allocate statement. Its Type
// is always a PointerType to the allocated element type.
type Local struct {
	Name string
	Typ  Type
}

func (l *Local) Type() Type     { return l.Typ }
func (l *Local) Ident() string  { return "%" + l.Name }
func (l *Local) isVariable()    {}
func (l *Local) String() string { return l.Ident() }

// Internal is an SSA value produced by some statement in the function body.
type Internal struct {
	ID  int
	Typ Type
}

func (v *Internal) Type() Type     { return v.Typ }
func (v *Internal) Ident() string  { return fmt.Sprintf("%%t%d", v.ID) }
func (v *Internal) isVariable()    {}
func (v *Internal) String() string { return v.Ident() }

// GlobalRef references a module-level global variable by name.
type GlobalRef struct {
	Name string
	Typ  Type
}

func (g *GlobalRef) Type() Type     { return g.Typ }
func (g *GlobalRef) Ident() string  { return "@" + g.Name }
func (g *GlobalRef) isVariable()    {}
func (g *GlobalRef) String() string { return g.Ident() }

// FunctionRef references a module-level function by name. Typ is always a
// PointerType to a FunctionType.
type FunctionRef struct {
	Name string
	Typ  Type
}

func (f *FunctionRef) Type() Type     { return f.Typ }
func (f *FunctionRef) Ident() string  { return "@" + f.Name }
func (f *FunctionRef) isVariable()    {}
func (f *FunctionRef) String() string { return f.Ident() }

// Constant is a literal value translated by the (external) constant
// importer, or synthesized locally for boolean fusion/GEP offset terms.
// Value holds an int64 for Integer/Bool-shaped constants, a float64 for
// Float-shaped ones, or nil for a null pointer.
type Constant struct {
	Typ   Type
	Value any
}

func (c *Constant) Type() Type    { return c.Typ }
func (c *Constant) isVariable()   {}
func (c *Constant) Ident() string { return fmt.Sprintf("%v", c.Value) }
func (c *Constant) String() string {
	return c.Ident()
}

// InlineAsm is an inline-asm value (spec.md §4.C) — rare, but a legal LIR
// operand kind that translate_value must be able to hand back untouched.
type InlineAsm struct {
	Typ Type
	Asm string
}

func (a *InlineAsm) Type() Type     { return a.Typ }
func (a *InlineAsm) Ident() string  { return fmt.Sprintf("asm(%q)", a.Asm) }
func (a *InlineAsm) isVariable()    {}
func (a *InlineAsm) String() string { return a.Ident() }

// AsConstant reports whether v is a Constant (not a global — spec.md §4.E's
// call-argument rule distinguishes "constant and not global").
func AsConstant(v Variable) (*Constant, bool) {
	c, ok := v.(*Constant)
	return c, ok
}

// IsGlobal reports whether v refers to module-level storage (a global
// variable or a function), as opposed to a function-local value.
func IsGlobal(v Variable) bool {
	switch v.(type) {
	case *GlobalRef, *FunctionRef:
		return true
	default:
		return false
	}
}
