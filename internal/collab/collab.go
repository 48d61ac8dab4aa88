// Package collab gives minimal, concrete shape to the external
// collaborators spec.md §6 lists as "Consumed": TypeImporter,
// ConstantImporter, BundleImporter, the data layout, and the debug-info
// helpers. spec.md §1 places their real implementations (LIR parsing,
// module/bundle construction, constant translation, type translation,
// debug-info matching) out of this translator's scope; this package exists
// only so the function translator has something real to call during tests
// and through the `ikos-translate` driver, not as a faithful reimplementation
// of what a production BundleImporter does.
package collab

import (
	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/lir"
)

// DebugTypeKind classifies a source-level debug type enough for spec.md
// §4.B's matching and translation rules, without modeling full DWARF.
type DebugTypeKind int

const (
	DebugInt DebugTypeKind = iota
	DebugFloat
	DebugPointer
	DebugArray
	DebugOther
)

// DebugType is a deliberately thin stand-in for a DWARF type descriptor:
// enough information for TranslateDIType/MatchDIType to do their job.
type DebugType struct {
	Kind    DebugTypeKind
	Bits    uint64
	Signed  bool
	Pointee *DebugType // set when Kind == DebugPointer
	Elem    *DebugType // set when Kind == DebugArray
}

// FunctionSignature is what BundleImporter.TranslateFunction hands back:
// just enough of the already-translated callee to drive
// infer_default_type's direct-call rule and instrxlat's call-lowering
// rules (spec.md §4.B, §4.E).
type FunctionSignature struct {
	Name               string
	ParamTypes         []air.Type
	Variadic           bool
	ReturnType         air.Type
	HasDebugSubprogram bool
}

// TypeImporter is spec.md §6's TypeImporter collaborator.
type TypeImporter interface {
	// TranslateType converts a LIR type to an AIR type. preferredSign is
	// consulted only where LIR's own type does not already fix a sign
	// (i.e. for integer types); pointer, array and vector types pass it on
	// to their pointee/element type, while struct fields and function
	// parameters are translated as signed regardless of it.
	TranslateType(t lir.Type, preferredSign bool) air.Type
	// TranslateDIType converts a debug type to an AIR type, using lirType
	// for structural context it alone would not carry.
	TranslateDIType(dt DebugType, lirType lir.Type) air.Type
	// MatchDIType reports whether dt and lirType describe compatible shapes
	// (same integer width, pointer-ness, etc.) — used by lenient-mode
	// debug-info lookups to decide whether to trust a given debug record.
	MatchDIType(dt DebugType, lirType lir.Type) bool
}

// ConstantImporter is spec.md §6's ConstantImporter collaborator.
type ConstantImporter interface {
	// TranslateConstant converts a LIR constant to an AIR operand with the
	// given target type (nil meaning "use the constant's own type").
	// block is where any constant-materializing statements would be
	// appended, mirroring the real frontend's ability to lower aggregate
	// constants into a handful of inserts at first use.
	TranslateConstant(c lir.Value, target air.Type, block *air.BasicBlock) (air.Variable, error)
	// TranslateCastIntegerConstant performs the width/sign adjustment
	// §4.C's add_integer_casts needs when the value being coerced is
	// itself a compile-time constant (e.g. an alloca's constant array
	// size).
	TranslateCastIntegerConstant(c lir.Value, target *air.IntegerType) (air.Variable, error)
}

// BundleImporter is spec.md §6's BundleImporter collaborator, reduced to
// the three operations the function translator actually calls.
type BundleImporter interface {
	TranslateFunction(f *lir.Function) (*FunctionSignature, error)
	TranslateGlobalVariable(g *lir.Value) (*air.GlobalRef, error)
	IgnoreIntrinsic(name string) bool
}

// DataLayout is spec.md §6's data layout collaborator.
type DataLayout interface {
	// StructElementOffset returns the byte offset of field index in a LIR
	// struct type.
	StructElementOffset(t lir.Type, index int) uint64
	// TypeAllocSize returns the allocated size in bytes of a LIR type.
	TypeAllocSize(t lir.Type) uint64
}

// DebugInfo is spec.md §6's debug-info helper collaborator.
type DebugInfo interface {
	// AllocaDeclareType finds a zero-expression dbg.declare/dbg.addr
	// attached to alloca, if any.
	AllocaDeclareType(alloca lir.Value) (DebugType, bool)
	// ValueType finds the first zero-expression dbg.value attached to v,
	// if any.
	ValueType(v lir.Value) (DebugType, bool)
}
