// Package air implements the Analyzer IR: the typed, explicitly-signed
// block-and-statement form produced by the function translator.
package air

import (
	"fmt"
	"strings"
)

// Type is the AIR type lattice. Unlike LIR, every integer type carries a
// signedness: two integer types of equal width but different sign are
// distinct but bitcast-compatible (spec.md §3).
type Type interface {
	String() string
	irType()
}

// FloatSemantic names an IEEE/extended float encoding, independent of bit
// width naming so AIR does not need to invent its own width convention.
type FloatSemantic int

const (
	FloatHalf FloatSemantic = iota
	FloatSingle
	FloatDouble
	FloatX86FP80
	FloatQuad
	FloatPPCDoubleDouble
)

func (s FloatSemantic) String() string {
	switch s {
	case FloatHalf:
		return "half"
	case FloatSingle:
		return "float"
	case FloatDouble:
		return "double"
	case FloatX86FP80:
		return "x86_fp80"
	case FloatQuad:
		return "fp128"
	case FloatPPCDoubleDouble:
		return "ppc_fp128"
	default:
		return "float?"
	}
}

// IntegerType is Integer{bits, sign} from spec.md §3.
type IntegerType struct {
	Bits   uint64
	Signed bool
}

func (t *IntegerType) irType() {}
func (t *IntegerType) String() string {
	if t.Signed {
		return fmt.Sprintf("si%d", t.Bits)
	}
	return fmt.Sprintf("ui%d", t.Bits)
}

// FloatType wraps a FloatSemantic.
type FloatType struct {
	Semantic FloatSemantic
}

func (t *FloatType) irType()        {}
func (t *FloatType) String() string { return t.Semantic.String() }

// PointerType points at a pointee type.
type PointerType struct {
	Pointee Type
}

func (t *PointerType) irType()        {}
func (t *PointerType) String() string { return t.Pointee.String() + "*" }

// FunctionType is the signature of a callable.
type FunctionType struct {
	Params   []Type
	Variadic bool
	Ret      Type
}

func (t *FunctionType) irType() {}
func (t *FunctionType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	if t.Variadic {
		parts = append(parts, "...")
	}
	return fmt.Sprintf("%s (%s)", t.Ret.String(), strings.Join(parts, ", "))
}

// ArrayType is a fixed-length aggregate.
type ArrayType struct {
	Elem Type
	Len  uint64
}

func (t *ArrayType) irType()        {}
func (t *ArrayType) String() string { return fmt.Sprintf("[%d x %s]", t.Len, t.Elem.String()) }

// StructType is a named or anonymous aggregate.
type StructType struct {
	Name   string
	Fields []Type
	Packed bool
}

func (t *StructType) irType() {}
func (t *StructType) String() string {
	if t.Name != "" {
		return t.Name
	}
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.String()
	}
	if t.Packed {
		return "<{" + strings.Join(parts, ", ") + "}>"
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// VectorType is a SIMD aggregate; AIR only needs it as an ExtractElement/
// InsertElement base type, never as an arithmetic operand.
type VectorType struct {
	Elem Type
	Len  uint64
}

func (t *VectorType) irType()        {}
func (t *VectorType) String() string { return fmt.Sprintf("<%d x %s>", t.Len, t.Elem.String()) }

// VoidType is the type of statements with no result (calls, stores, ...).
type VoidType struct{}

func (t *VoidType) irType()        {}
func (t *VoidType) String() string { return "void" }

// Equal reports whether two AIR types are structurally identical, including
// signedness on integer types. It does not consider bitcast-compatibility:
// callers that want "same width, maybe different sign" should compare
// IntegerType.Bits directly.
func Equal(a, b Type) bool {
	switch at := a.(type) {
	case *IntegerType:
		bt, ok := b.(*IntegerType)
		return ok && at.Bits == bt.Bits && at.Signed == bt.Signed
	case *FloatType:
		bt, ok := b.(*FloatType)
		return ok && at.Semantic == bt.Semantic
	case *PointerType:
		bt, ok := b.(*PointerType)
		return ok && Equal(at.Pointee, bt.Pointee)
	case *FunctionType:
		bt, ok := b.(*FunctionType)
		if !ok || len(at.Params) != len(bt.Params) || at.Variadic != bt.Variadic {
			return false
		}
		if !Equal(at.Ret, bt.Ret) {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return true
	case *ArrayType:
		bt, ok := b.(*ArrayType)
		return ok && at.Len == bt.Len && Equal(at.Elem, bt.Elem)
	case *VectorType:
		bt, ok := b.(*VectorType)
		return ok && at.Len == bt.Len && Equal(at.Elem, bt.Elem)
	case *StructType:
		bt, ok := b.(*StructType)
		if !ok || at.Packed != bt.Packed || len(at.Fields) != len(bt.Fields) {
			return false
		}
		if at.Name != "" || bt.Name != "" {
			return at.Name == bt.Name
		}
		for i := range at.Fields {
			if !Equal(at.Fields[i], bt.Fields[i]) {
				return false
			}
		}
		return true
	case *VoidType:
		_, ok := b.(*VoidType)
		return ok
	default:
		return false
	}
}

// AsInteger unwraps an IntegerType, if that is what t is.
func AsInteger(t Type) (*IntegerType, bool) {
	it, ok := t.(*IntegerType)
	return it, ok
}

// AsPointer unwraps a PointerType, if that is what t is.
func AsPointer(t Type) (*PointerType, bool) {
	pt, ok := t.(*PointerType)
	return pt, ok
}

// WithSign returns an IntegerType of the same width as t (which must be an
// IntegerType) with the requested signedness.
func WithSign(t *IntegerType, signed bool) *IntegerType {
	return &IntegerType{Bits: t.Bits, Signed: signed}
}

// BitcastCompatible reports whether a bitcast between a and b is legal:
// pointer-to-pointer, or integer-to-integer of identical width (spec.md §3
// invariant, §4.C add_bitcast).
func BitcastCompatible(a, b Type) bool {
	if _, aok := AsPointer(a); aok {
		_, bok := AsPointer(b)
		return bok
	}
	ai, aok := AsInteger(a)
	bi, bok := AsInteger(b)
	return aok && bok && ai.Bits == bi.Bits
}
