package instrxlat

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/blockxlat"
	"github.com/vaioco/ikos/internal/lir"
	"github.com/vaioco/ikos/internal/typeinfer"
)

// translateGEP is spec.md §4.E's GEP rule.
func (tx *Translator) translateGEP(bt *blockxlat.BlockTranslation, in *ir.InstGetElementPtr) error {
	resultType, err := tx.Infer.InferType(in)
	if err != nil {
		return err
	}
	base, err := tx.translateValue(bt, in.Src, nil)
	if err != nil {
		return err
	}

	curType := elemOf(in.Src.Type())
	terms := make([]air.ShiftTerm, 0, len(in.Indices))
	for i, idx := range in.Indices {
		if i == 0 {
			term, err := tx.gepElementTerm(bt, idx, tx.Layout.TypeAllocSize(curType))
			if err != nil {
				return err
			}
			terms = append(terms, term)
			continue
		}
		if st, ok := curType.(*types.StructType); ok {
			index, ok := structIndex(idx)
			if !ok {
				return errAt("gep", "struct index must be a constant integer")
			}
			if index < 0 || index >= len(st.Fields) {
				return errAt("gep", "struct index %d out of range", index)
			}
			offset := tx.Layout.StructElementOffset(curType, index)
			terms = append(terms, air.ShiftTerm{
				Stride: 1,
				Index:  &air.Constant{Typ: tx.Env.SizeType(), Value: int64(offset)},
			})
			curType = st.Fields[index]
			continue
		}
		elem := elemOf(curType)
		term, err := tx.gepElementTerm(bt, idx, tx.Layout.TypeAllocSize(elem))
		if err != nil {
			return err
		}
		terms = append(terms, term)
		curType = elem
	}

	result := tx.Env.NextInternal(resultType)
	bt.AddStatement(&air.PointerShift{Result: result, Base: base, Terms: terms})
	tx.Env.Record(in, result)
	return nil
}

// gepElementTerm translates one array/vector/pointer-stepping index:
// constants go through translated at the unsigned variant of their LIR
// type, non-constants carry no hint.
func (tx *Translator) gepElementTerm(bt *blockxlat.BlockTranslation, idx lir.Value, stride uint64) (air.ShiftTerm, error) {
	var target air.Type
	if lir.IsConstant(idx) {
		target = &air.IntegerType{Bits: intBitsOf(idx.Type()), Signed: false}
	}
	v, err := tx.translateValue(bt, idx, target)
	if err != nil {
		return air.ShiftTerm{}, err
	}
	return air.ShiftTerm{Stride: stride, Index: v}, nil
}

// structIndex extracts a GEP struct-index operand's constant value. LLVM
// requires these to be i32 constants.
func structIndex(idx lir.Value) (int, bool) {
	ci, ok := idx.(*constant.Int)
	if !ok {
		return 0, false
	}
	return int(ci.X.Int64()), true
}

func pickOp(signed bool, uOp, sOp air.BinaryOp) air.BinaryOp {
	if signed {
		return sOp
	}
	return uOp
}

// dynamicSign is the "bitwise/shift group" sign rule: the sign of the
// first non-constant operand, translated eagerly to learn it, or a
// signed preference when both operands are constant.
func (tx *Translator) dynamicSign(bt *blockxlat.BlockTranslation, x, y lir.Value) (bool, error) {
	probe := x
	if lir.IsConstant(x) {
		if lir.IsConstant(y) {
			return true, nil
		}
		probe = y
	}
	v, err := tx.translateValue(bt, probe, nil)
	if err != nil {
		return false, err
	}
	ii, ok := air.AsInteger(v.Type())
	if !ok {
		return false, errAt("binop", "operand type %s is not an integer type", v.Type())
	}
	return ii.Signed, nil
}

// emitIntBinOp translates both operands at the chosen signed integer type,
// emits the BinaryOperation, and reconciles against the inferred result
// type with a temporary plus Bitcast when they differ.
func (tx *Translator) emitIntBinOp(bt *blockxlat.BlockTranslation, inst lir.Value, xv, yv lir.Value, op air.BinaryOp, signed, noWrap, exact bool) error {
	target := &air.IntegerType{Bits: intBitsOf(xv.Type()), Signed: signed}
	x, err := tx.translateValue(bt, xv, target)
	if err != nil {
		return err
	}
	y, err := tx.translateValue(bt, yv, target)
	if err != nil {
		return err
	}
	resultType, err := tx.Infer.InferType(inst)
	if err != nil {
		return err
	}
	if air.Equal(target, resultType) {
		result := tx.Env.NextInternal(resultType)
		bt.AddStatement(&air.BinaryOperation{Op: op, Result: result, LHS: x, RHS: y, NoWrap: noWrap, Exact: exact})
		tx.Env.Record(inst, result)
		return nil
	}
	tmp := tx.Env.NextInternal(target)
	bt.AddStatement(&air.BinaryOperation{Op: op, Result: tmp, LHS: x, RHS: y, NoWrap: noWrap, Exact: exact})
	result := tx.Env.NextInternal(resultType)
	bt.AddStatement(&air.UnaryOperation{Op: air.OpBitcast, Result: result, Operand: tmp})
	tx.Env.Record(inst, result)
	return nil
}

// translateIntegerBinOp is spec.md §4.E's "Binary operator (integer)" rule.
func (tx *Translator) translateIntegerBinOp(bt *blockxlat.BlockTranslation, inst ir.Instruction) error {
	switch in := inst.(type) {
	case *ir.InstAdd:
		nsw, nuw := typeinfer.OverflowFlagsOf(in)
		signed := typeinfer.SignFromWraps(nsw, nuw)
		return tx.emitIntBinOp(bt, in, in.X, in.Y, pickOp(signed, air.OpAddU, air.OpAddS), signed, nsw || nuw, false)
	case *ir.InstSub:
		nsw, nuw := typeinfer.OverflowFlagsOf(in)
		signed := typeinfer.SignFromWraps(nsw, nuw)
		return tx.emitIntBinOp(bt, in, in.X, in.Y, pickOp(signed, air.OpSubU, air.OpSubS), signed, nsw || nuw, false)
	case *ir.InstMul:
		nsw, nuw := typeinfer.OverflowFlagsOf(in)
		signed := typeinfer.SignFromWraps(nsw, nuw)
		return tx.emitIntBinOp(bt, in, in.X, in.Y, pickOp(signed, air.OpMulU, air.OpMulS), signed, nsw || nuw, false)
	case *ir.InstShl:
		signed, err := tx.dynamicSign(bt, in.X, in.Y)
		if err != nil {
			return err
		}
		nsw, nuw := lir.HasNSW(in.OverflowFlags), lir.HasNUW(in.OverflowFlags)
		return tx.emitIntBinOp(bt, in, in.X, in.Y, pickOp(signed, air.OpShlU, air.OpShlS), signed, nsw || nuw, false)
	case *ir.InstAnd:
		signed, err := tx.dynamicSign(bt, in.X, in.Y)
		if err != nil {
			return err
		}
		return tx.emitIntBinOp(bt, in, in.X, in.Y, pickOp(signed, air.OpAndU, air.OpAndS), signed, false, false)
	case *ir.InstOr:
		signed, err := tx.dynamicSign(bt, in.X, in.Y)
		if err != nil {
			return err
		}
		return tx.emitIntBinOp(bt, in, in.X, in.Y, pickOp(signed, air.OpOrU, air.OpOrS), signed, false, false)
	case *ir.InstXor:
		signed, err := tx.dynamicSign(bt, in.X, in.Y)
		if err != nil {
			return err
		}
		return tx.emitIntBinOp(bt, in, in.X, in.Y, pickOp(signed, air.OpXorU, air.OpXorS), signed, false, false)
	case *ir.InstUDiv:
		return tx.emitIntBinOp(bt, in, in.X, in.Y, air.OpUDiv, false, false, in.Exact)
	case *ir.InstSDiv:
		return tx.emitIntBinOp(bt, in, in.X, in.Y, air.OpSDiv, true, false, in.Exact)
	case *ir.InstURem:
		return tx.emitIntBinOp(bt, in, in.X, in.Y, air.OpURem, false, false, false)
	case *ir.InstSRem:
		return tx.emitIntBinOp(bt, in, in.X, in.Y, air.OpSRem, true, false, false)
	case *ir.InstLShr:
		signed, err := tx.dynamicSign(bt, in.X, in.Y)
		if err != nil {
			return err
		}
		return tx.emitIntBinOp(bt, in, in.X, in.Y, air.OpLShr, signed, false, in.Exact)
	case *ir.InstAShr:
		signed, err := tx.dynamicSign(bt, in.X, in.Y)
		if err != nil {
			return err
		}
		return tx.emitIntBinOp(bt, in, in.X, in.Y, air.OpAShr, signed, false, in.Exact)
	default:
		return errAt("binop", "unsupported integer binary op %T", inst)
	}
}

// translateFloatBinOp is spec.md §4.E's "Binary operator (float)" rule:
// both operands translate untyped; the result is minted directly at the
// inferred type since a mismatch here is a hint-scoring bug, not something
// this rule reconciles.
func (tx *Translator) translateFloatBinOp(bt *blockxlat.BlockTranslation, inst ir.Instruction) error {
	var xv, yv lir.Value
	var op air.BinaryOp
	switch in := inst.(type) {
	case *ir.InstFAdd:
		xv, yv, op = in.X, in.Y, air.OpFAdd
	case *ir.InstFSub:
		xv, yv, op = in.X, in.Y, air.OpFSub
	case *ir.InstFMul:
		xv, yv, op = in.X, in.Y, air.OpFMul
	case *ir.InstFDiv:
		xv, yv, op = in.X, in.Y, air.OpFDiv
	case *ir.InstFRem:
		xv, yv, op = in.X, in.Y, air.OpFRem
	default:
		return errAt("binop", "unsupported float binary op %T", inst)
	}
	x, err := tx.translateValue(bt, xv, nil)
	if err != nil {
		return err
	}
	y, err := tx.translateValue(bt, yv, nil)
	if err != nil {
		return err
	}
	resultType, err := tx.Infer.InferType(inst)
	if err != nil {
		return err
	}
	result := tx.Env.NextInternal(resultType)
	bt.AddStatement(&air.BinaryOperation{Op: op, Result: result, LHS: x, RHS: y})
	tx.Env.Record(inst, result)
	return nil
}

func integerPred(p enum.IPred) air.ComparisonPred {
	switch p {
	case enum.IPredEQ:
		return air.PredIntEQ
	case enum.IPredNE:
		return air.PredIntNE
	case enum.IPredSGT:
		return air.PredIntSGT
	case enum.IPredSGE:
		return air.PredIntSGE
	case enum.IPredSLT:
		return air.PredIntSLT
	case enum.IPredSLE:
		return air.PredIntSLE
	case enum.IPredUGT:
		return air.PredIntUGT
	case enum.IPredUGE:
		return air.PredIntUGE
	case enum.IPredULT:
		return air.PredIntULT
	default:
		return air.PredIntULE
	}
}

func pointerPred(p enum.IPred) (air.ComparisonPred, error) {
	switch p {
	case enum.IPredEQ:
		return air.PredPtrEQ, nil
	case enum.IPredNE:
		return air.PredPtrNE, nil
	case enum.IPredUGT, enum.IPredSGT:
		return air.PredPtrUGT, nil
	case enum.IPredUGE, enum.IPredSGE:
		return air.PredPtrUGE, nil
	case enum.IPredULT, enum.IPredSLT:
		return air.PredPtrULT, nil
	case enum.IPredULE, enum.IPredSLE:
		return air.PredPtrULE, nil
	default:
		return 0, errAt("icmp", "unsupported pointer predicate %v", p)
	}
}

func floatPred(p enum.FPred) (air.ComparisonPred, error) {
	switch p {
	case enum.FPredOEQ:
		return air.PredFloatOEQ, nil
	case enum.FPredONE:
		return air.PredFloatONE, nil
	case enum.FPredOGT:
		return air.PredFloatOGT, nil
	case enum.FPredOGE:
		return air.PredFloatOGE, nil
	case enum.FPredOLT:
		return air.PredFloatOLT, nil
	case enum.FPredOLE:
		return air.PredFloatOLE, nil
	case enum.FPredORD:
		return air.PredFloatORD, nil
	case enum.FPredUEQ:
		return air.PredFloatUEQ, nil
	case enum.FPredUNE:
		return air.PredFloatUNE, nil
	case enum.FPredUGT:
		return air.PredFloatUGT, nil
	case enum.FPredUGE:
		return air.PredFloatUGE, nil
	case enum.FPredULT:
		return air.PredFloatULT, nil
	case enum.FPredULE:
		return air.PredFloatULE, nil
	case enum.FPredUNO:
		return air.PredFloatUNO, nil
	default:
		return 0, errAt("fcmp", "unsupported float predicate %v", p)
	}
}

// translateICmp is spec.md §4.E's Comparison rule, integer/pointer half.
func (tx *Translator) translateICmp(bt *blockxlat.BlockTranslation, in *ir.InstICmp) error {
	resultType, err := tx.Infer.InferType(in)
	if err != nil {
		return err
	}
	result := tx.Env.NextInternal(resultType)
	tx.Env.Record(in, result)

	if _, isPtr := in.X.Type().(*types.PointerType); isPtr {
		x, err := tx.translateValue(bt, in.X, nil)
		if err != nil {
			return err
		}
		y, err := tx.translateValue(bt, in.Y, nil)
		if err != nil {
			return err
		}
		pred, err := pointerPred(in.Pred)
		if err != nil {
			return err
		}
		return bt.AddComparison(result, &air.Comparison{Pred: pred, LHS: x, RHS: y})
	}

	var signed bool
	switch {
	case typeinfer.IsSignedIPred(in.Pred):
		signed = true
	case typeinfer.IsUnsignedIPred(in.Pred):
		signed = false
	default:
		signed, err = tx.dynamicSign(bt, in.X, in.Y)
		if err != nil {
			return err
		}
	}
	target := &air.IntegerType{Bits: intBitsOf(in.X.Type()), Signed: signed}
	x, err := tx.translateValue(bt, in.X, target)
	if err != nil {
		return err
	}
	y, err := tx.translateValue(bt, in.Y, target)
	if err != nil {
		return err
	}
	return bt.AddComparison(result, &air.Comparison{Pred: integerPred(in.Pred), LHS: x, RHS: y})
}

// translateFCmp is spec.md §4.E's Comparison rule, float half.
func (tx *Translator) translateFCmp(bt *blockxlat.BlockTranslation, in *ir.InstFCmp) error {
	if in.Pred == enum.FPredFalse || in.Pred == enum.FPredTrue {
		return errAt("fcmp", "constant fcmp predicate is not supported")
	}
	resultType, err := tx.Infer.InferType(in)
	if err != nil {
		return err
	}
	result := tx.Env.NextInternal(resultType)
	tx.Env.Record(in, result)
	x, err := tx.translateValue(bt, in.X, nil)
	if err != nil {
		return err
	}
	y, err := tx.translateValue(bt, in.Y, nil)
	if err != nil {
		return err
	}
	pred, err := floatPred(in.Pred)
	if err != nil {
		return err
	}
	return bt.AddComparison(result, &air.Comparison{Pred: pred, LHS: x, RHS: y})
}
