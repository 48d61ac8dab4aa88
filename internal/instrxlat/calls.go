package instrxlat

import (
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/blockxlat"
	"github.com/vaioco/ikos/internal/lir"
)

// calleeSignature resolves the declared parameter/return types of a call or
// invoke's callee: the bundle-known signature for a direct function, or the
// callee operand's own AIR function type for an indirect call.
func (tx *Translator) calleeSignature(calleeVal lir.Value, calleeVar air.Variable) (params []air.Type, variadic bool, ret air.Type, err error) {
	if lir.IsFunc(calleeVal) {
		fn := calleeVal.(*ir.Func)
		sig, e := tx.Bundle.TranslateFunction(fn)
		if e != nil {
			return nil, false, nil, e
		}
		return sig.ParamTypes, sig.Variadic, sig.ReturnType, nil
	}
	pt, ok := air.AsPointer(calleeVar.Type())
	if !ok {
		return nil, false, nil, errAt("call", "callee type %s is not a pointer", calleeVar.Type())
	}
	ft, ok := pt.Pointee.(*air.FunctionType)
	if !ok {
		return nil, false, nil, errAt("call", "callee type %s is not pointer-to-function", calleeVar.Type())
	}
	return ft.Params, ft.Variadic, ft.Ret, nil
}

// translateCallArgs is spec.md §4.E's per-argument rule shared by Call and
// Invoke: a declared-param-typed hint only where forced or where the
// argument is itself a non-global constant, a no-hint translation
// otherwise.
func (tx *Translator) translateCallArgs(bt *blockxlat.BlockTranslation, args []lir.Value, params []air.Type, forceArgsCast bool) ([]air.Variable, error) {
	out := make([]air.Variable, len(args))
	for i, a := range args {
		var target air.Type
		if i < len(params) && (forceArgsCast || (lir.IsConstant(a) && !lir.IsGlobal(a))) {
			target = params[i]
		}
		w, err := tx.translateValue(bt, a, target)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

// planCallResult picks the AIR type a call/invoke's Result field should
// carry and, when forceReturnCast requires reconciling it against the
// inferred type, the final bitcast-receiving variable to record for the
// instruction.
func (tx *Translator) planCallResult(inst lir.Value, retType air.Type, forceReturnCast bool) (stmtResult, finalResult *air.Internal, err error) {
	if !forceReturnCast {
		r := tx.Env.NextInternal(retType)
		return r, r, nil
	}
	inferred, err := tx.Infer.InferType(inst)
	if err != nil {
		return nil, nil, err
	}
	if air.Equal(inferred, retType) {
		r := tx.Env.NextInternal(inferred)
		return r, r, nil
	}
	tmp := tx.Env.NextInternal(retType)
	final := tx.Env.NextInternal(inferred)
	return tmp, final, nil
}

// translateCall is spec.md §4.E's Call rule (the non-intrinsic case);
// translateIntrinsicCall handles the intrinsic dispatch first.
func (tx *Translator) translateCall(bt *blockxlat.BlockTranslation, in *ir.InstCall) error {
	if lir.IsFunc(in.Callee) {
		name := in.Callee.(*ir.Func).Name()
		if strings.HasPrefix(name, "llvm.") {
			return tx.translateIntrinsicCall(bt, in, name)
		}
	}
	return tx.emitCall(bt, in, in.Callee, in.Args, !voidReturn(in))
}

func voidReturn(in *ir.InstCall) bool {
	_, isVoid := in.Type().(*types.VoidType)
	return isVoid
}

// emitCall builds and appends the Call statement shared by the direct and
// indirect, intrinsic-fallthrough forms.
func (tx *Translator) emitCall(bt *blockxlat.BlockTranslation, inst lir.Value, calleeVal lir.Value, argVals []lir.Value, hasResult bool) error {
	calleeVar, err := tx.translateValue(bt, calleeVal, nil)
	if err != nil {
		return err
	}
	params, _, retType, err := tx.calleeSignature(calleeVal, calleeVar)
	if err != nil {
		return err
	}
	forceArgsCast := lir.IsFunc(calleeVal)
	args, err := tx.translateCallArgs(bt, argVals, params, forceArgsCast)
	if err != nil {
		return err
	}

	var stmtResult, finalResult *air.Internal
	if hasResult {
		stmtResult, finalResult, err = tx.planCallResult(inst, retType, true)
		if err != nil {
			return err
		}
	}

	bt.AddStatement(&air.Call{Result: stmtResult, Callee: calleeVar, Args: args})
	if hasResult {
		if stmtResult != finalResult {
			bt.AddStatement(&air.UnaryOperation{Op: air.OpBitcast, Result: finalResult, Operand: stmtResult})
		}
		tx.Env.Record(inst, finalResult)
	}
	return nil
}

// translateIntrinsicCall is spec.md §4.E's Intrinsic call rule.
func (tx *Translator) translateIntrinsicCall(bt *blockxlat.BlockTranslation, in *ir.InstCall, name string) error {
	if tx.Bundle.IgnoreIntrinsic(name) {
		return nil
	}
	switch {
	case strings.HasPrefix(name, "llvm.memcpy"):
		return tx.translateMemIntrinsic(bt, in, memcpy)
	case strings.HasPrefix(name, "llvm.memmove"):
		return tx.translateMemIntrinsic(bt, in, memmove)
	case strings.HasPrefix(name, "llvm.memset"):
		return tx.translateMemIntrinsic(bt, in, memset)
	case strings.HasPrefix(name, "llvm.va_start"):
		return tx.translateVarArgOne(bt, in, func(op air.Variable) air.Statement { return &air.VarArgStart{Operand: op} })
	case strings.HasPrefix(name, "llvm.va_end"):
		return tx.translateVarArgOne(bt, in, func(op air.Variable) air.Statement { return &air.VarArgEnd{Operand: op} })
	case strings.HasPrefix(name, "llvm.va_copy"):
		return tx.translateVarArgCopy(bt, in)
	default:
		return tx.emitCall(bt, in, in.Callee, in.Args, !voidReturn(in))
	}
}

type memIntrinsicKind int

const (
	memcpy memIntrinsicKind = iota
	memmove
	memset
)

// translateMemIntrinsic lowers llvm.mem{cpy,move,set}.*: the dst/src (or
// dst/value) and size operands translate with a void-pointer/byte/size-type
// hint; alignment is not decoded from the call's attribute list (a concern
// this translator's NaiveDataLayout-level scope doesn't model), so both
// sides default to byte alignment, matching that collaborator's documented
// no-padding simplification. Volatility is read off the literal trailing
// i1 argument every form of these intrinsics carries.
func (tx *Translator) translateMemIntrinsic(bt *blockxlat.BlockTranslation, in *ir.InstCall, kind memIntrinsicKind) error {
	sizeType := tx.Env.SizeType()
	bytePtr := &air.PointerType{Pointee: &air.IntegerType{Bits: 8, Signed: false}}

	if len(in.Args) < 4 {
		return errAt("intrinsic", "%s takes at least 4 arguments, got %d", in.Callee, len(in.Args))
	}
	dst, err := tx.translateValue(bt, in.Args[0], bytePtr)
	if err != nil {
		return err
	}
	volatile := boolLiteral(in.Args[len(in.Args)-1])

	switch kind {
	case memcpy, memmove:
		src, err := tx.translateValue(bt, in.Args[1], bytePtr)
		if err != nil {
			return err
		}
		size, err := tx.translateCastIntegerValue(bt, in.Args[2], sizeType)
		if err != nil {
			return err
		}
		if kind == memcpy {
			bt.AddStatement(&air.MemoryCopy{Dst: dst, Src: src, Size: size, DstAlign: 1, SrcAlign: 1, Volatile: volatile})
		} else {
			bt.AddStatement(&air.MemoryMove{Dst: dst, Src: src, Size: size, DstAlign: 1, SrcAlign: 1, Volatile: volatile})
		}
	case memset:
		value, err := tx.translateValue(bt, in.Args[1], &air.IntegerType{Bits: 8, Signed: false})
		if err != nil {
			return err
		}
		size, err := tx.translateCastIntegerValue(bt, in.Args[2], sizeType)
		if err != nil {
			return err
		}
		bt.AddStatement(&air.MemorySet{Dst: dst, Value: value, Size: size, DstAlign: 1, Volatile: volatile})
	}
	return nil
}

func boolLiteral(v lir.Value) bool {
	ci, ok := v.(*constant.Int)
	return ok && ci.X.Int64() != 0
}

func (tx *Translator) translateVarArgOne(bt *blockxlat.BlockTranslation, in *ir.InstCall, build func(air.Variable) air.Statement) error {
	if len(in.Args) == 0 {
		return errAt("intrinsic", "%s takes one argument", in.Callee)
	}
	op, err := tx.translateValue(bt, in.Args[0], nil)
	if err != nil {
		return err
	}
	bt.AddStatement(build(op))
	return nil
}

func (tx *Translator) translateVarArgCopy(bt *blockxlat.BlockTranslation, in *ir.InstCall) error {
	if len(in.Args) < 2 {
		return errAt("intrinsic", "va_copy takes two arguments")
	}
	dst, err := tx.translateValue(bt, in.Args[0], nil)
	if err != nil {
		return err
	}
	src, err := tx.translateValue(bt, in.Args[1], nil)
	if err != nil {
		return err
	}
	bt.AddStatement(&air.VarArgCopy{Dst: dst, Src: src})
	return nil
}

// translateInvoke is spec.md §4.E's Invoke rule and terminator dispatch.
func (tx *Translator) translateInvoke(bt *blockxlat.BlockTranslation, t *ir.TermInvoke) error {
	calleeVar, err := tx.translateValue(bt, t.Invokee, nil)
	if err != nil {
		return err
	}
	params, _, retType, err := tx.calleeSignature(t.Invokee, calleeVar)
	if err != nil {
		return err
	}
	forceArgsCast := lir.IsFunc(t.Invokee)
	args, err := tx.translateCallArgs(bt, t.Args, params, forceArgsCast)
	if err != nil {
		return err
	}

	hasResult := !voidType(retType)
	var result *air.Internal
	if hasResult {
		result, _, err = tx.planCallResult(t, retType, false)
		if err != nil {
			return err
		}
	}

	bt.AddStatement(&air.Invoke{Result: result, Callee: calleeVar, Args: args, NormalDest: bt.Main, ExceptDest: bt.Main})
	if hasResult {
		tx.Env.Record(t, result)
	}
	return bt.AddInvokeBranching(t.Normal, t.Exception)
}

func voidType(t air.Type) bool {
	_, ok := t.(*air.VoidType)
	return ok
}

func (tx *Translator) translateResume(bt *blockxlat.BlockTranslation, t *ir.TermResume) error {
	op, err := tx.translateValue(bt, t.X, nil)
	if err != nil {
		return err
	}
	bt.AddStatement(&air.Resume{Operand: op})
	return nil
}

func (tx *Translator) translateLandingPad(bt *blockxlat.BlockTranslation, in *ir.InstLandingPad) error {
	resultType, err := tx.Infer.InferType(in)
	if err != nil {
		return err
	}
	result := tx.Env.NextInternal(resultType)
	bt.AddStatement(&air.LandingPad{Result: result})
	tx.Env.Record(in, result)
	return nil
}
