// Package typeinfer implements spec.md §4.B's infer_type: the four-step
// alloca/value debug lookup, then hint-aggregation, then default-fallback
// algorithm that decides every AIR value's type and, for integers, its
// signedness.
package typeinfer

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/lir"
)

// Role classifies one use of a value exactly as spec.md §4.B's per-user
// hint-rule table enumerates it.
type Role int

const (
	RoleAllocaSize Role = iota
	RoleStoreValue
	RoleStorePointer
	RoleLoadPointer
	RoleCallArg
	RoleCallCallee
	RoleCastUnsignedSrc // ZExt, UIToFP, IntToPtr
	RoleCastSignedSrc   // SExt, SIToFP
	RoleCastIgnore      // Trunc/FPTrunc/FPExt/FPToUI/FPToSI/PtrToInt/BitCast
	RoleGEPOperand
	RoleBinAddSubMul
	RoleBinUnsignedLHS // UDiv/URem/LShr lhs
	RoleBinSignedLHS   // SDiv/SRem/AShr lhs
	RoleBinShiftIgnore // Shl, LShr/AShr rhs
	RoleBinBitwise     // And/Or/Xor
	RoleFloatBinop
	RoleICmpSigned
	RoleICmpUnsigned
	RoleICmpEqNeOtherOperand
	RoleFCmp
	RoleCondBrCondition
	RoleReturnValue
	RolePhiIncoming
	RoleIgnore // extractvalue/insertvalue/resume operand
)

// Use records one occurrence of a value as an instruction/terminator
// operand. Index is only meaningful for RoleCallArg (the argument
// position, needed for param_type(i)); Other carries the "other operand"
// a handful of rules (store, icmp eq/ne) need the hint of; ReturnType
// carries the enclosing function's declared return type for
// RoleReturnValue, since the use itself (a TermRet) doesn't otherwise
// expose it.
type Use struct {
	Role       Role
	User       lir.Value
	Other      lir.Value
	Index      int
	ReturnType air.Type
}

// UseIndex maps each LIR value to every recorded use of it, built once per
// function by scanning every block (spec.md §4.B step 3 iterates "each use
// of V"; github.com/llir/llvm keeps no use-list on value.Value itself, so
// this translator reconstructs one, the way the real LLVM-backed importer
// would instead just walk llvm::Value::uses()).
type UseIndex struct {
	uses       map[lir.Value][]Use
	returnType air.Type
}

func (ui *UseIndex) Uses(v lir.Value) []Use { return ui.uses[v] }

func (ui *UseIndex) record(operand lir.Value, u Use) {
	if operand == nil || lir.IsConstant(operand) {
		return
	}
	ui.uses[operand] = append(ui.uses[operand], u)
}

// BuildUseIndex walks every instruction and terminator in fn and classifies
// each operand occurrence per spec.md §4.B's table. returnType is fn's AIR
// return type (already resolved by the function translator), threaded
// through so the RoleReturnValue hint rule can score spec.md's "function
// return type, score 5" against the function's actual declared type
// instead of re-deriving a signed guess from the returned value's own LIR
// type.
func BuildUseIndex(fn *lir.Function, returnType air.Type) *UseIndex {
	ui := &UseIndex{uses: make(map[lir.Value][]Use), returnType: returnType}
	for _, block := range fn.Blocks {
		for _, inst := range block.Insts {
			ui.recordInst(inst)
		}
		ui.recordTerm(block.Term)
	}
	return ui
}

func (ui *UseIndex) recordInst(inst lir.Instruction) {
	switch in := inst.(type) {
	case *ir.InstAlloca:
		if in.NElems != nil {
			ui.record(in.NElems, Use{Role: RoleAllocaSize, User: in})
		}
	case *ir.InstStore:
		ui.record(in.Src, Use{Role: RoleStoreValue, User: in, Other: in.Dst})
		ui.record(in.Dst, Use{Role: RoleStorePointer, User: in, Other: in.Src})
	case *ir.InstLoad:
		ui.record(in.Src, Use{Role: RoleLoadPointer, User: in})
	case *ir.InstCall:
		callee := in.Callee
		if !lir.IsFunc(callee) {
			ui.record(callee, Use{Role: RoleCallCallee, User: in})
		}
		for i, a := range in.Args {
			ui.record(a, Use{Role: RoleCallArg, User: in, Index: i})
		}
	case *ir.InstGetElementPtr:
		ui.record(in.Src, Use{Role: RoleGEPOperand, User: in})
		for _, idx := range in.Indices {
			ui.record(idx, Use{Role: RoleGEPOperand, User: in})
		}
	case *ir.InstZExt:
		ui.record(in.From, Use{Role: RoleCastUnsignedSrc, User: in})
	case *ir.InstSExt:
		ui.record(in.From, Use{Role: RoleCastSignedSrc, User: in})
	case *ir.InstUIToFP:
		ui.record(in.From, Use{Role: RoleCastUnsignedSrc, User: in})
	case *ir.InstSIToFP:
		ui.record(in.From, Use{Role: RoleCastSignedSrc, User: in})
	case *ir.InstIntToPtr:
		ui.record(in.From, Use{Role: RoleCastUnsignedSrc, User: in})
	case *ir.InstTrunc:
		ui.record(in.From, Use{Role: RoleCastIgnore, User: in})
	case *ir.InstFPTrunc:
		ui.record(in.From, Use{Role: RoleCastIgnore, User: in})
	case *ir.InstFPExt:
		ui.record(in.From, Use{Role: RoleCastIgnore, User: in})
	case *ir.InstFPToSI:
		ui.record(in.From, Use{Role: RoleCastIgnore, User: in})
	case *ir.InstFPToUI:
		ui.record(in.From, Use{Role: RoleCastIgnore, User: in})
	case *ir.InstPtrToInt:
		ui.record(in.From, Use{Role: RoleCastIgnore, User: in})
	case *ir.InstBitCast:
		ui.record(in.From, Use{Role: RoleCastIgnore, User: in})
	case *ir.InstAdd:
		ui.record(in.X, Use{Role: RoleBinAddSubMul, User: in})
		ui.record(in.Y, Use{Role: RoleBinAddSubMul, User: in})
	case *ir.InstSub:
		ui.record(in.X, Use{Role: RoleBinAddSubMul, User: in})
		ui.record(in.Y, Use{Role: RoleBinAddSubMul, User: in})
	case *ir.InstMul:
		ui.record(in.X, Use{Role: RoleBinAddSubMul, User: in})
		ui.record(in.Y, Use{Role: RoleBinAddSubMul, User: in})
	case *ir.InstUDiv:
		ui.record(in.X, Use{Role: RoleBinUnsignedLHS, User: in})
		ui.record(in.Y, Use{Role: RoleBinUnsignedLHS, User: in})
	case *ir.InstURem:
		ui.record(in.X, Use{Role: RoleBinUnsignedLHS, User: in})
		ui.record(in.Y, Use{Role: RoleBinUnsignedLHS, User: in})
	case *ir.InstLShr:
		ui.record(in.X, Use{Role: RoleBinUnsignedLHS, User: in})
		ui.record(in.Y, Use{Role: RoleBinShiftIgnore, User: in})
	case *ir.InstSDiv:
		ui.record(in.X, Use{Role: RoleBinSignedLHS, User: in})
		ui.record(in.Y, Use{Role: RoleBinSignedLHS, User: in})
	case *ir.InstSRem:
		ui.record(in.X, Use{Role: RoleBinSignedLHS, User: in})
		ui.record(in.Y, Use{Role: RoleBinSignedLHS, User: in})
	case *ir.InstAShr:
		ui.record(in.X, Use{Role: RoleBinSignedLHS, User: in})
		ui.record(in.Y, Use{Role: RoleBinShiftIgnore, User: in})
	case *ir.InstShl:
		ui.record(in.X, Use{Role: RoleBinShiftIgnore, User: in})
		ui.record(in.Y, Use{Role: RoleBinShiftIgnore, User: in})
	case *ir.InstAnd:
		ui.record(in.X, Use{Role: RoleBinBitwise, User: in})
		ui.record(in.Y, Use{Role: RoleBinBitwise, User: in})
	case *ir.InstOr:
		ui.record(in.X, Use{Role: RoleBinBitwise, User: in})
		ui.record(in.Y, Use{Role: RoleBinBitwise, User: in})
	case *ir.InstXor:
		ui.record(in.X, Use{Role: RoleBinBitwise, User: in})
		ui.record(in.Y, Use{Role: RoleBinBitwise, User: in})
	case *ir.InstFAdd:
		ui.record(in.X, Use{Role: RoleFloatBinop, User: in})
		ui.record(in.Y, Use{Role: RoleFloatBinop, User: in})
	case *ir.InstFSub:
		ui.record(in.X, Use{Role: RoleFloatBinop, User: in})
		ui.record(in.Y, Use{Role: RoleFloatBinop, User: in})
	case *ir.InstFMul:
		ui.record(in.X, Use{Role: RoleFloatBinop, User: in})
		ui.record(in.Y, Use{Role: RoleFloatBinop, User: in})
	case *ir.InstFDiv:
		ui.record(in.X, Use{Role: RoleFloatBinop, User: in})
		ui.record(in.Y, Use{Role: RoleFloatBinop, User: in})
	case *ir.InstFRem:
		ui.record(in.X, Use{Role: RoleFloatBinop, User: in})
		ui.record(in.Y, Use{Role: RoleFloatBinop, User: in})
	case *ir.InstICmp:
		if IsSignedIPred(in.Pred) {
			ui.record(in.X, Use{Role: RoleICmpSigned, User: in})
			ui.record(in.Y, Use{Role: RoleICmpSigned, User: in})
		} else if IsUnsignedIPred(in.Pred) {
			ui.record(in.X, Use{Role: RoleICmpUnsigned, User: in})
			ui.record(in.Y, Use{Role: RoleICmpUnsigned, User: in})
		} else {
			// eq/ne, on either integers or pointers: hint from the other operand.
			ui.record(in.X, Use{Role: RoleICmpEqNeOtherOperand, User: in, Other: in.Y})
			ui.record(in.Y, Use{Role: RoleICmpEqNeOtherOperand, User: in, Other: in.X})
		}
	case *ir.InstFCmp:
		ui.record(in.X, Use{Role: RoleFCmp, User: in})
		ui.record(in.Y, Use{Role: RoleFCmp, User: in})
	case *ir.InstExtractValue:
		ui.record(in.X, Use{Role: RoleIgnore, User: in})
	case *ir.InstInsertValue:
		ui.record(in.X, Use{Role: RoleIgnore, User: in})
		ui.record(in.Elem, Use{Role: RoleIgnore, User: in})
	case *ir.InstPhi:
		for _, inc := range in.Incs {
			ui.record(inc.X, Use{Role: RolePhiIncoming, User: in})
		}
	}
}

func (ui *UseIndex) recordTerm(term lir.Terminator) {
	switch t := term.(type) {
	case *ir.TermCondBr:
		ui.record(t.Cond, Use{Role: RoleCondBrCondition, User: t})
	case *ir.TermRet:
		if t.X != nil {
			ui.record(t.X, Use{Role: RoleReturnValue, User: t, ReturnType: ui.returnType})
		}
	case *ir.TermResume:
		ui.record(t.X, Use{Role: RoleIgnore, User: t})
	case *ir.TermInvoke:
		if !lir.IsFunc(t.Invokee) {
			ui.record(t.Invokee, Use{Role: RoleCallCallee, User: t})
		}
		for i, a := range t.Args {
			ui.record(a, Use{Role: RoleCallArg, User: t, Index: i})
		}
	}
}

// IsSignedIPred/IsUnsignedIPred classify spec.md §4.B's "icmp signed
// predicate" / "icmp unsigned predicate" rows; eq/ne fall through to the
// other-operand rule in recordInst. Exported for internal/instrxlat's
// comparison-lowering rule (spec.md §4.E), which picks the same sign from
// the same predicate while choosing the operand type to emit rather than
// while scoring a hint.
func IsSignedIPred(p enum.IPred) bool {
	switch p {
	case enum.IPredSGT, enum.IPredSGE, enum.IPredSLT, enum.IPredSLE:
		return true
	}
	return false
}

func IsUnsignedIPred(p enum.IPred) bool {
	switch p {
	case enum.IPredUGT, enum.IPredUGE, enum.IPredULT, enum.IPredULE:
		return true
	}
	return false
}
