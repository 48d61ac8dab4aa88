package air

import (
	"fmt"
	"strings"
)

// Statement is the AIR statement sum type (spec.md §3). Every concrete
// statement also satisfies Clone, used by BlockTranslation's clone-on-fanout
// rule (spec.md §4.D note 2): once an LIR block has more than one open
// output, every further statement is deep-cloned into each output so that
// later in-place patches (e.g. Invoke's destination back-patch) on one
// output never leak into a sibling.
type Statement interface {
	String() string
	Clone() Statement
	isStatement()
}

// Provenance is an opaque back-pointer into the LIR node a statement was
// translated from, kept only for diagnostics (spec.md §9: "global mutable
// frontend back-pointers"). LIR outlives AIR during translation, so storing
// the LIR value directly is safe; it is never read back by the core
// translator itself.
type Provenance struct {
	Origin any
}

// UnaryOp enumerates spec.md §3's UnaryOperation opcodes.
type UnaryOp int

const (
	OpUTrunc UnaryOp = iota
	OpSTrunc
	OpZExt
	OpSExt
	OpFPToUI
	OpFPToSI
	OpUIToFP
	OpSIToFP
	OpFPTrunc
	OpFPExt
	OpPtrToUI
	OpPtrToSI
	OpUIToPtr
	OpSIToPtr
	OpBitcast
)

func (op UnaryOp) String() string {
	names := [...]string{
		"utrunc", "strunc", "zext", "sext", "fptoui", "fptosi",
		"uitofp", "sitofp", "fptrunc", "fpext", "ptrtoui", "ptrtosi",
		"uitoptr", "sitoptr", "bitcast",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return "unop?"
}

// BinaryOp enumerates spec.md §3's BinaryOperation opcodes, with AIR's
// explicit sign carried in the opcode itself for ops where LIR's opcode
// alone does not already fix a sign (add/sub/mul/and/or/xor/shl); div/rem
// and the logical/arithmetic shifts are already sign-fixed at the LIR level
// and so have a single AIR opcode each.
type BinaryOp int

const (
	OpAddU BinaryOp = iota
	OpAddS
	OpSubU
	OpSubS
	OpMulU
	OpMulS
	OpShlU
	OpShlS
	OpAndU
	OpAndS
	OpOrU
	OpOrS
	OpXorU
	OpXorS
	OpUDiv
	OpSDiv
	OpURem
	OpSRem
	OpLShr
	OpAShr
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpFRem
)

func (op BinaryOp) String() string {
	names := [...]string{
		"add.u", "add.s", "sub.u", "sub.s", "mul.u", "mul.s",
		"shl.u", "shl.s", "and.u", "and.s", "or.u", "or.s", "xor.u", "xor.s",
		"udiv", "sdiv", "urem", "srem", "lshr", "ashr",
		"fadd", "fsub", "fmul", "fdiv", "frem",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return "binop?"
}

// IsFloat reports whether op operates on floating-point operands.
func (op BinaryOp) IsFloat() bool { return op >= OpFAdd }

// ComparisonPred enumerates spec.md §3's signed/unsigned/pointer/float
// comparison predicate families.
type ComparisonPred int

const (
	PredIntEQ ComparisonPred = iota
	PredIntNE
	PredIntSGT
	PredIntSGE
	PredIntSLT
	PredIntSLE
	PredIntUGT
	PredIntUGE
	PredIntULT
	PredIntULE
	PredPtrEQ
	PredPtrNE
	PredPtrUGT
	PredPtrUGE
	PredPtrULT
	PredPtrULE
	PredFloatOEQ
	PredFloatONE
	PredFloatOGT
	PredFloatOGE
	PredFloatOLT
	PredFloatOLE
	PredFloatORD
	PredFloatUEQ
	PredFloatUNE
	PredFloatUGT
	PredFloatUGE
	PredFloatULT
	PredFloatULE
	PredFloatUNO
)

var predNames = [...]string{
	"eq", "ne", "sgt", "sge", "slt", "sle", "ugt", "uge", "ult", "ule",
	"p.eq", "p.ne", "p.ugt", "p.uge", "p.ult", "p.ule",
	"oeq", "one", "ogt", "oge", "olt", "ole", "ord",
	"ueq", "une", "ugt", "uge", "ult", "ule", "uno",
}

func (p ComparisonPred) String() string {
	if int(p) < len(predNames) {
		return predNames[p]
	}
	return "pred?"
}

var predInverse = map[ComparisonPred]ComparisonPred{
	PredIntEQ: PredIntNE, PredIntNE: PredIntEQ,
	PredIntSGT: PredIntSLE, PredIntSLE: PredIntSGT,
	PredIntSGE: PredIntSLT, PredIntSLT: PredIntSGE,
	PredIntUGT: PredIntULE, PredIntULE: PredIntUGT,
	PredIntUGE: PredIntULT, PredIntULT: PredIntUGE,
	PredPtrEQ: PredPtrNE, PredPtrNE: PredPtrEQ,
	PredPtrUGT: PredPtrULE, PredPtrULE: PredPtrUGT,
	PredPtrUGE: PredPtrULT, PredPtrULT: PredPtrUGE,
	PredFloatOEQ: PredFloatUNE, PredFloatUNE: PredFloatOEQ,
	PredFloatONE: PredFloatUEQ, PredFloatUEQ: PredFloatONE,
	PredFloatOGT: PredFloatULE, PredFloatULE: PredFloatOGT,
	PredFloatOGE: PredFloatULT, PredFloatULT: PredFloatOGE,
	PredFloatOLT: PredFloatUGE, PredFloatUGE: PredFloatOLT,
	PredFloatOLE: PredFloatUGT, PredFloatUGT: PredFloatOLE,
	PredFloatORD: PredFloatUNO, PredFloatUNO: PredFloatORD,
}

// Inverse returns the logically negated predicate, used by BlockTranslation
// to generate the "false" child of a comparison fan-out (spec.md §4.D.3).
func (p ComparisonPred) Inverse() ComparisonPred {
	if inv, ok := predInverse[p]; ok {
		return inv
	}
	panic(fmt.Sprintf("air: predicate %v has no registered inverse", p))
}

// --- concrete statements -----------------------------------------------

type Allocate struct {
	Result    *Local
	ElemType  Type
	Count     Variable
	Align     uint64
	Prov      Provenance
}

func (s *Allocate) isStatement() {}
func (s *Allocate) Clone() Statement {
	c := *s
	return &c
}
func (s *Allocate) String() string {
	return fmt.Sprintf("%s = alloca %s, %s, align %d", s.Result.Ident(), s.ElemType, s.Count.Ident(), s.Align)
}

type Load struct {
	Result   *Internal
	Pointer  Variable
	Align    uint64
	Volatile bool
	Prov     Provenance
}

func (s *Load) isStatement() {}
func (s *Load) Clone() Statement {
	c := *s
	return &c
}
func (s *Load) String() string {
	v := ""
	if s.Volatile {
		v = "volatile "
	}
	return fmt.Sprintf("%s = %sload %s, align %d", s.Result.Ident(), v, s.Pointer.Ident(), s.Align)
}

type Store struct {
	Pointer  Variable
	Value    Variable
	Align    uint64
	Volatile bool
	Prov     Provenance
}

func (s *Store) isStatement() {}
func (s *Store) Clone() Statement {
	c := *s
	return &c
}
func (s *Store) String() string {
	v := ""
	if s.Volatile {
		v = "volatile "
	}
	return fmt.Sprintf("%sstore %s, %s, align %d", v, s.Value.Ident(), s.Pointer.Ident(), s.Align)
}

// MemoryCopy, MemoryMove and MemorySet are the three mem-intrinsic
// lowerings named in spec.md §3 as "MemoryCopy|Move|Set".
type MemoryCopy struct {
	Dst, Src, Size        Variable
	DstAlign, SrcAlign    uint64
	Volatile              bool
	Prov                  Provenance
}

func (s *MemoryCopy) isStatement() {}
func (s *MemoryCopy) Clone() Statement {
	c := *s
	return &c
}
func (s *MemoryCopy) String() string {
	return fmt.Sprintf("memcpy %s, %s, %s", s.Dst.Ident(), s.Src.Ident(), s.Size.Ident())
}

type MemoryMove struct {
	Dst, Src, Size     Variable
	DstAlign, SrcAlign uint64
	Volatile           bool
	Prov               Provenance
}

func (s *MemoryMove) isStatement() {}
func (s *MemoryMove) Clone() Statement {
	c := *s
	return &c
}
func (s *MemoryMove) String() string {
	return fmt.Sprintf("memmove %s, %s, %s", s.Dst.Ident(), s.Src.Ident(), s.Size.Ident())
}

type MemorySet struct {
	Dst, Value, Size Variable
	DstAlign         uint64
	Volatile         bool
	Prov             Provenance
}

func (s *MemorySet) isStatement() {}
func (s *MemorySet) Clone() Statement {
	c := *s
	return &c
}
func (s *MemorySet) String() string {
	return fmt.Sprintf("memset %s, %s, %s", s.Dst.Ident(), s.Value.Ident(), s.Size.Ident())
}

type VarArgStart struct {
	Operand Variable
	Prov    Provenance
}

func (s *VarArgStart) isStatement()   {}
func (s *VarArgStart) Clone() Statement { c := *s; return &c }
func (s *VarArgStart) String() string { return fmt.Sprintf("va_start %s", s.Operand.Ident()) }

type VarArgEnd struct {
	Operand Variable
	Prov    Provenance
}

func (s *VarArgEnd) isStatement()     {}
func (s *VarArgEnd) Clone() Statement { c := *s; return &c }
func (s *VarArgEnd) String() string   { return fmt.Sprintf("va_end %s", s.Operand.Ident()) }

type VarArgCopy struct {
	Dst, Src Variable
	Prov     Provenance
}

func (s *VarArgCopy) isStatement()     {}
func (s *VarArgCopy) Clone() Statement { c := *s; return &c }
func (s *VarArgCopy) String() string {
	return fmt.Sprintf("va_copy %s, %s", s.Dst.Ident(), s.Src.Ident())
}

// Call models both the direct and indirect non-invoke call forms.
type Call struct {
	Result *Internal // nil for void calls
	Callee Variable
	Args   []Variable
	Prov   Provenance
}

func (s *Call) isStatement() {}
func (s *Call) Clone() Statement {
	c := *s
	c.Args = append([]Variable(nil), s.Args...)
	return &c
}
func (s *Call) String() string {
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.Ident()
	}
	prefix := ""
	if s.Result != nil {
		prefix = s.Result.Ident() + " = "
	}
	return fmt.Sprintf("%scall %s(%s)", prefix, s.Callee.Ident(), strings.Join(args, ", "))
}

// Invoke is Call plus the two-successor exception semantics; NormalDest and
// ExceptDest are back-patched once by BlockTranslation.add_invoke_branching
// after the statement has been appended (spec.md §4.D.6).
type Invoke struct {
	Result      *Internal
	Callee      Variable
	Args        []Variable
	NormalDest  *BasicBlock
	ExceptDest  *BasicBlock
	Prov        Provenance
}

func (s *Invoke) isStatement() {}
func (s *Invoke) Clone() Statement {
	c := *s
	c.Args = append([]Variable(nil), s.Args...)
	return &c
}
func (s *Invoke) String() string {
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.Ident()
	}
	prefix := ""
	if s.Result != nil {
		prefix = s.Result.Ident() + " = "
	}
	normal, except := "<unset>", "<unset>"
	if s.NormalDest != nil {
		normal = s.NormalDest.Label()
	}
	if s.ExceptDest != nil {
		except = s.ExceptDest.Label()
	}
	return fmt.Sprintf("%sinvoke %s(%s) to %s unwind %s", prefix, s.Callee.Ident(), strings.Join(args, ", "), normal, except)
}

type UnaryOperation struct {
	Op      UnaryOp
	Result  *Internal
	Operand Variable
	Prov    Provenance
}

func (s *UnaryOperation) isStatement() {}
func (s *UnaryOperation) Clone() Statement {
	c := *s
	return &c
}
func (s *UnaryOperation) String() string {
	return fmt.Sprintf("%s = %s %s", s.Result.Ident(), s.Op, s.Operand.Ident())
}

type BinaryOperation struct {
	Op       BinaryOp
	Result   *Internal
	LHS, RHS Variable
	NoWrap   bool
	Exact    bool
	Prov     Provenance
}

func (s *BinaryOperation) isStatement() {}
func (s *BinaryOperation) Clone() Statement {
	c := *s
	return &c
}
func (s *BinaryOperation) String() string {
	flags := ""
	if s.NoWrap {
		flags += " nowrap"
	}
	if s.Exact {
		flags += " exact"
	}
	return fmt.Sprintf("%s = %s%s %s, %s", s.Result.Ident(), s.Op, flags, s.LHS.Ident(), s.RHS.Ident())
}

// Comparison is a guard statement with no result: BlockTranslation.
// add_comparison places one per fan-out child, immediately followed there
// by an Assignment when the comparison's boolean value has further uses
// (spec.md §4.D.3, scenario 2).
type Comparison struct {
	Pred     ComparisonPred
	LHS, RHS Variable
	Prov     Provenance
}

func (s *Comparison) isStatement() {}
func (s *Comparison) Clone() Statement {
	c := *s
	return &c
}
func (s *Comparison) String() string {
	return fmt.Sprintf("assume %s %s %s", s.LHS.Ident(), s.Pred, s.RHS.Ident())
}

type Assignment struct {
	Result Variable
	Value  Variable
	Prov   Provenance
}

func (s *Assignment) isStatement() {}
func (s *Assignment) Clone() Statement {
	c := *s
	return &c
}
func (s *Assignment) String() string {
	return fmt.Sprintf("%s := %s", s.Result.Ident(), s.Value.Ident())
}

// ShiftTerm is one (stride, index) term of a PointerShift.
type ShiftTerm struct {
	Stride uint64
	Index  Variable
}

// PointerShift is the GEP lowering: base plus a sum of stride*index terms
// (spec.md §4.E GEP rule).
type PointerShift struct {
	Result *Internal
	Base   Variable
	Terms  []ShiftTerm
	Prov   Provenance
}

func (s *PointerShift) isStatement() {}
func (s *PointerShift) Clone() Statement {
	c := *s
	c.Terms = append([]ShiftTerm(nil), s.Terms...)
	return &c
}
func (s *PointerShift) String() string {
	parts := make([]string, len(s.Terms))
	for i, t := range s.Terms {
		parts[i] = fmt.Sprintf("%d*%s", t.Stride, t.Index.Ident())
	}
	return fmt.Sprintf("%s = shift %s, %s", s.Result.Ident(), s.Base.Ident(), strings.Join(parts, " + "))
}

type ExtractElement struct {
	Result    *Internal
	Aggregate Variable
	Offset    uint64
	Prov      Provenance
}

func (s *ExtractElement) isStatement() {}
func (s *ExtractElement) Clone() Statement {
	c := *s
	return &c
}
func (s *ExtractElement) String() string {
	return fmt.Sprintf("%s = extract %s, %d", s.Result.Ident(), s.Aggregate.Ident(), s.Offset)
}

type InsertElement struct {
	Result    *Internal
	Aggregate Variable
	Elem      Variable
	Offset    uint64
	Prov      Provenance
}

func (s *InsertElement) isStatement() {}
func (s *InsertElement) Clone() Statement {
	c := *s
	return &c
}
func (s *InsertElement) String() string {
	return fmt.Sprintf("%s = insert %s, %s, %d", s.Result.Ident(), s.Aggregate.Ident(), s.Elem.Ident(), s.Offset)
}

type ReturnValue struct {
	Value Variable // nil for a void return
	Prov  Provenance
}

func (s *ReturnValue) isStatement() {}
func (s *ReturnValue) Clone() Statement {
	c := *s
	return &c
}
func (s *ReturnValue) String() string {
	if s.Value == nil {
		return "ret void"
	}
	return fmt.Sprintf("ret %s", s.Value.Ident())
}

type LandingPad struct {
	Result *Internal
	Prov   Provenance
}

func (s *LandingPad) isStatement() {}
func (s *LandingPad) Clone() Statement {
	c := *s
	return &c
}
func (s *LandingPad) String() string { return fmt.Sprintf("%s = landingpad", s.Result.Ident()) }

type Resume struct {
	Operand Variable
	Prov    Provenance
}

func (s *Resume) isStatement() {}
func (s *Resume) Clone() Statement {
	c := *s
	return &c
}
func (s *Resume) String() string { return fmt.Sprintf("resume %s", s.Operand.Ident()) }

type Unreachable struct {
	Prov Provenance
}

func (s *Unreachable) isStatement()     {}
func (s *Unreachable) Clone() Statement { c := *s; return &c }
func (s *Unreachable) String() string   { return "unreachable" }
