package typeinfer

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/collab"
	"github.com/vaioco/ikos/internal/hint"
	"github.com/vaioco/ikos/internal/irerrors"
	"github.com/vaioco/ikos/internal/lir"
)

// Translated is how the function translator exposes values it has already
// assigned an AIR type to, so hint computation for a not-yet-translated
// value can consult them (spec.md §4.B's "operand hint helpers").
type Translated interface {
	Lookup(v lir.Value) (air.Variable, bool)
}

// Inferencer implements spec.md §4.B's infer_type against one function
// body. Strict toggles "debug-info-strictness" (spec.md §4.B steps 1-2,
// §9 Open Question).
type Inferencer struct {
	Types  collab.TypeImporter
	Debug  collab.DebugInfo
	Bundle collab.BundleImporter
	Uses   *UseIndex
	Values Translated
	Strict bool
}

func New(typeImporter collab.TypeImporter, debug collab.DebugInfo, bundle collab.BundleImporter, uses *UseIndex, values Translated, strict bool) *Inferencer {
	return &Inferencer{Types: typeImporter, Debug: debug, Bundle: bundle, Uses: uses, Values: values, Strict: strict}
}

// InferType runs spec.md §4.B's four-step algorithm for v.
func (inf *Inferencer) InferType(v lir.Value) (air.Type, error) {
	if alloca, ok := v.(*ir.InstAlloca); ok {
		if t, ok, err := inf.allocaDebugLookup(alloca); err != nil {
			return nil, err
		} else if ok {
			return t, nil
		}
	}
	if t, ok := inf.valueDebugLookup(v); ok {
		return t, nil
	}
	m := hint.NewMap()
	for _, u := range inf.Uses.Uses(v) {
		h, err := inf.hintForUse(v, u)
		if err != nil {
			return nil, err
		}
		m.Add(h)
	}
	if m.Empty() {
		return inf.inferDefaultType(v)
	}
	return m.Best(), nil
}

// allocaDebugLookup is spec.md §4.B step 1. SPEC_FULL.md's array-size
// supplement: when the alloca's own declare-type lookup misses and this is
// an array alloca, also try a dbg.value attached to the size operand
// itself before giving up. Additive, and only ever consulted once the
// primary lookup has already failed, so it can never override a
// successful step-1 match.
func (inf *Inferencer) allocaDebugLookup(alloca *ir.InstAlloca) (air.Type, bool, error) {
	isArray := alloca.NElems != nil
	dt, ok := inf.Debug.AllocaDeclareType(alloca)
	if !ok && isArray {
		dt, ok = inf.Debug.ValueType(alloca.NElems)
	}
	if !ok {
		return nil, false, nil
	}
	if !isArray && !inf.Strict && !inf.Types.MatchDIType(dt, alloca.ElemType) {
		return nil, false, nil
	}
	elem := inf.Types.TranslateDIType(dt, alloca.ElemType)
	if isArray {
		return elem, true, nil
	}
	return &air.PointerType{Pointee: elem}, true, nil
}

// valueDebugLookup is spec.md §4.B step 2.
func (inf *Inferencer) valueDebugLookup(v lir.Value) (air.Type, bool) {
	dt, ok := inf.Debug.ValueType(v)
	if !ok {
		return nil, false
	}
	lirType := lirTypeOf(v)
	if inf.Strict {
		return inf.Types.TranslateDIType(dt, lirType), true
	}
	if inf.Types.MatchDIType(dt, lirType) {
		return inf.Types.TranslateDIType(dt, lirType), true
	}
	if alloca, ok := v.(*ir.InstAlloca); ok {
		if inf.Types.MatchDIType(dt, alloca.ElemType) {
			return inf.Types.TranslateDIType(dt, alloca.ElemType), true
		}
	}
	return nil, false
}

// inferDefaultType is spec.md §4.B's infer_default_type.
func (inf *Inferencer) inferDefaultType(v lir.Value) (air.Type, error) {
	if call, ok := v.(*ir.InstCall); ok && lir.IsFunc(call.Callee) {
		fn := call.Callee.(*ir.Func)
		sig, err := inf.Bundle.TranslateFunction(fn)
		if err != nil {
			return nil, err
		}
		return sig.ReturnType, nil
	}
	if preferUnsigned, ok := castOpcode(v); ok {
		return inf.Types.TranslateType(lirTypeOf(v), !preferUnsigned), nil
	}
	return inf.Types.TranslateType(lirTypeOf(v), true), nil
}

// castOpcode reports whether v is a cast instruction and, if so, whether
// spec.md §4.B's default rule prefers unsigned ("iff opcode in {ZExt,
// FPToUI}").
func castOpcode(v lir.Value) (preferUnsigned bool, isCast bool) {
	switch v.(type) {
	case *ir.InstZExt, *ir.InstFPToUI:
		return true, true
	case *ir.InstSExt, *ir.InstTrunc, *ir.InstFPTrunc, *ir.InstFPExt,
		*ir.InstFPToSI, *ir.InstUIToFP, *ir.InstSIToFP, *ir.InstPtrToInt,
		*ir.InstIntToPtr, *ir.InstBitCast:
		return false, true
	default:
		return false, false
	}
}

// lirTypeOf reads a value's own LIR type via the value.Value interface
// method every llir/llvm value implements.
func lirTypeOf(v lir.Value) lir.Type { return v.Type() }

// calleeOf returns the callee operand of a call or invoke user.
func calleeOf(user lir.Value) lir.Value {
	switch in := user.(type) {
	case *ir.InstCall:
		return in.Callee
	case *ir.TermInvoke:
		return in.Invokee
	default:
		return nil
	}
}

// operandHint is spec.md §4.B's "operand hint helpers" paragraph: globals
// and functions hint their AIR type at hint.ScoreDebugInfo when the
// Inferencer is Strict and at hint.ScoreStrongNoDebug otherwise (whether the
// global or function itself carries debug info is not consulted);
// already-translated instructions/arguments hint their recorded AIR
// type at the tie-break score; constants contribute nothing.
func (inf *Inferencer) operandHint(v lir.Value) hint.Hint {
	if lir.IsConstant(v) {
		return hint.Ignore()
	}
	if lir.IsGlobal(v) || lir.IsFunc(v) {
		w, ok := inf.Values.Lookup(v)
		if !ok {
			return hint.Ignore()
		}
		score := hint.ScoreStrongNoDebug
		if inf.Strict {
			score = hint.ScoreDebugInfo
		}
		return hint.Of(w.Type(), score)
	}
	if w, ok := inf.Values.Lookup(v); ok {
		return hint.Of(w.Type(), hint.ScoreTieBreak)
	}
	return hint.Ignore()
}

func signedInt(bits uint64) air.Type   { return &air.IntegerType{Bits: bits, Signed: true} }
func unsignedInt(bits uint64) air.Type { return &air.IntegerType{Bits: bits, Signed: false} }

// hintForUse is spec.md §4.B's per-user-hint-rule table, dispatched by Role.
func (inf *Inferencer) hintForUse(v lir.Value, u Use) (hint.Hint, error) {
	switch u.Role {
	case RoleAllocaSize:
		bits := integerBitsOf(v)
		return hint.Of(unsignedInt(bits), hint.ScoreStructural), nil

	case RoleStoreValue:
		// pointee(hint(ptr-operand))
		ptrHint := inf.operandHint(u.Other)
		if ptrHint.IsIgnore() {
			return hint.Ignore(), nil
		}
		if ptr, ok := air.AsPointer(ptrHint.Type()); ok {
			return hint.Of(ptr.Pointee, ptrHint.Score()), nil
		}
		return hint.Ignore(), nil

	case RoleStorePointer:
		// pointer-to(hint(value-operand))
		valHint := inf.operandHint(u.Other)
		if valHint.IsIgnore() {
			return hint.Ignore(), nil
		}
		return hint.Of(&air.PointerType{Pointee: valHint.Type()}, valHint.Score()), nil

	case RoleLoadPointer:
		load := u.User.(*ir.InstLoad)
		valHint := inf.operandHint(load)
		if valHint.IsIgnore() {
			return hint.Ignore(), nil
		}
		return hint.Of(&air.PointerType{Pointee: valHint.Type()}, valHint.Score()), nil

	case RoleCallArg:
		callee := calleeOf(u.User)
		if callee == nil || !lir.IsFunc(callee) {
			return hint.Ignore(), nil
		}
		fn := callee.(*ir.Func)
		sig, err := inf.Bundle.TranslateFunction(fn)
		if err != nil {
			return hint.Hint{}, err
		}
		if u.Index >= len(sig.ParamTypes) {
			return hint.Ignore(), nil // vararg tail
		}
		score := hint.ScoreStrongNoDebug
		if sig.HasDebugSubprogram {
			score = hint.ScoreDebugInfo
		}
		return hint.Of(sig.ParamTypes[u.Index], score), nil

	case RoleCallCallee:
		return hint.Ignore(), nil

	case RoleCastUnsignedSrc:
		bits := integerBitsOf(v)
		return hint.Of(unsignedInt(bits), hint.ScoreStructural), nil
	case RoleCastSignedSrc:
		bits := integerBitsOf(v)
		return hint.Of(signedInt(bits), hint.ScoreStructural), nil
	case RoleCastIgnore:
		return hint.Ignore(), nil

	case RoleGEPOperand:
		return hint.Ignore(), nil

	case RoleBinAddSubMul:
		nsw, nuw := OverflowFlagsOf(u.User)
		signed := SignFromWraps(nsw, nuw)
		bits := integerBitsOf(v)
		if signed {
			return hint.Of(signedInt(bits), hint.ScoreStructural), nil
		}
		return hint.Of(unsignedInt(bits), hint.ScoreStructural), nil
	case RoleBinUnsignedLHS:
		bits := integerBitsOf(v)
		return hint.Of(unsignedInt(bits), hint.ScoreStructural), nil
	case RoleBinSignedLHS:
		bits := integerBitsOf(v)
		return hint.Of(signedInt(bits), hint.ScoreStructural), nil
	case RoleBinShiftIgnore:
		return hint.Ignore(), nil
	case RoleBinBitwise:
		bits := integerBitsOf(v)
		return hint.Of(unsignedInt(bits), hint.ScoreBitwise), nil
	case RoleFloatBinop:
		return hint.Ignore(), nil

	case RoleICmpSigned:
		bits := integerBitsOf(v)
		return hint.Of(signedInt(bits), hint.ScoreStructural), nil
	case RoleICmpUnsigned:
		bits := integerBitsOf(v)
		return hint.Of(unsignedInt(bits), hint.ScoreStructural), nil
	case RoleICmpEqNeOtherOperand:
		otherHint := inf.operandHint(u.Other)
		if otherHint.IsIgnore() {
			return hint.Ignore(), nil
		}
		return hint.Of(otherHint.Type(), hint.ScoreTieBreak), nil
	case RoleFCmp:
		return hint.Ignore(), nil

	case RoleCondBrCondition:
		return hint.Of(unsignedInt(1), hint.ScoreTieBreak), nil

	case RoleReturnValue:
		// The enclosing function's declared return type (spec.md §4.B:
		// "function return type, score 5"), threaded in by BuildUseIndex.
		// translateReturn in internal/instrxlat receives the same type
		// directly from the function translator and doesn't consult this
		// path; it only matters for a bare use-index-driven lookup.
		if u.ReturnType == nil {
			return hint.Of(inf.Types.TranslateType(lirTypeOf(v), true), hint.ScoreStructural), nil
		}
		return hint.Of(u.ReturnType, hint.ScoreStructural), nil

	case RolePhiIncoming:
		return inf.operandHint(v), nil

	case RoleIgnore:
		return hint.Ignore(), nil
	}
	return hint.Hint{}, irerrors.New("typeinfer: unhandled use role %d", u.Role)
}

func integerBitsOf(v lir.Value) uint64 {
	if it, ok := v.Type().(*types.IntType); ok {
		return it.BitSize
	}
	return 32
}

// OverflowFlagsOf reads the nsw/nuw flags off an add/sub/mul instruction,
// exported for internal/instrxlat's binary-operator sign selection, which
// applies the identical sign-from-wraps rule while emitting the operation
// rather than while scoring a hint for it.
func OverflowFlagsOf(user lir.Value) (nsw, nuw bool) {
	switch in := user.(type) {
	case *ir.InstAdd:
		return lir.HasNSW(in.OverflowFlags), lir.HasNUW(in.OverflowFlags)
	case *ir.InstSub:
		return lir.HasNSW(in.OverflowFlags), lir.HasNUW(in.OverflowFlags)
	case *ir.InstMul:
		return lir.HasNSW(in.OverflowFlags), lir.HasNUW(in.OverflowFlags)
	}
	return false, false
}

// SignFromWraps is spec.md §4.B's "Sign-from-wraps rule".
func SignFromWraps(nsw, nuw bool) bool {
	switch {
	case nsw && nuw:
		return true
	case nsw:
		return true
	case nuw:
		return false
	default:
		return false
	}
}
