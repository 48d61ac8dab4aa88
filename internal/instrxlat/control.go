package instrxlat

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/blockxlat"
	"github.com/vaioco/ikos/internal/lir"
)

// translateCondBr is spec.md §4.E's Branch rule, conditional half.
func (tx *Translator) translateCondBr(bt *blockxlat.BlockTranslation, t *ir.TermCondBr) error {
	if ci, ok := t.Cond.(*constant.Int); ok {
		if ci.X.Int64() != 0 {
			bt.AddUnconditionalBranching(t.TargetTrue)
		} else {
			bt.AddUnconditionalBranching(t.TargetFalse)
		}
		return nil
	}
	if !lir.IsInstruction(t.Cond) && !lir.IsParam(t.Cond) {
		return errAt("condbr", "unsupported branch condition shape %T", t.Cond)
	}
	condVar, err := tx.translateValue(bt, t.Cond, nil)
	if err != nil {
		return err
	}
	singleUse := len(tx.Infer.Uses.Uses(t.Cond)) <= 1
	return bt.AddConditionalBranching(condVar, t.TargetTrue, t.TargetFalse, singleUse)
}

// translateReturn is spec.md §4.E's Return rule. The LIR block this closes
// is marked as the function's exit by the function translator, which alone
// knows which single block that classification applies to.
func (tx *Translator) translateReturn(bt *blockxlat.BlockTranslation, retType air.Type, t *ir.TermRet) error {
	var value air.Variable
	if t.X != nil {
		v, err := tx.translateValue(bt, t.X, retType)
		if err != nil {
			return err
		}
		value = v
	}
	bt.AddStatement(&air.ReturnValue{Value: value})
	return nil
}

// translatePhiFirstPass is pass one of spec.md §4.E's PHI rule: mint the
// result variable so other instructions translated before this phi's
// second pass runs can already reference it.
func (tx *Translator) translatePhiFirstPass(bt *blockxlat.BlockTranslation, in *ir.InstPhi) error {
	resultType, err := tx.Infer.InferType(in)
	if err != nil {
		return err
	}
	result := tx.Env.NextInternal(resultType)
	tx.Env.Record(in, result)
	return nil
}

// TranslatePhiSecondPass is pass two of spec.md §4.E's PHI rule, run by the
// function translator after every block's first pass has completed so
// every incoming value already has an Env entry. bt is the
// BlockTranslation of the block the phi itself lives in; each incoming
// (value, pred) pair is wired into that pred's input landing pad.
func (tx *Translator) TranslatePhiSecondPass(bt *blockxlat.BlockTranslation, in *ir.InstPhi) error {
	resultVar, ok := tx.Env.Lookup(in)
	if !ok {
		return errAt("phi", "phi result was not recorded in the first pass")
	}
	resultType := resultVar.Type()
	for _, inc := range in.Incs {
		landing := bt.InputBasicBlock(inc.Pred)
		var target air.Type
		if lir.IsConstant(inc.X) && !lir.IsGlobal(inc.X) {
			target = resultType
		}
		operand, err := tx.Values.TranslateValue(inc.X, target, landing)
		if err != nil {
			return err
		}
		if air.Equal(operand.Type(), resultType) {
			landing.Append(&air.Assignment{Result: resultVar, Value: operand})
			continue
		}
		if bitcastReconcilable(operand.Type(), resultType) {
			internal, ok := resultVar.(*air.Internal)
			if !ok {
				return errAt("phi", "phi result is not an internal variable")
			}
			landing.Append(&air.UnaryOperation{Op: air.OpBitcast, Result: internal, Operand: operand})
			continue
		}
		return errAt("phi", "incoming value of type %s cannot reconcile with phi result type %s", operand.Type(), resultType)
	}
	return nil
}

// bitcastReconcilable is spec.md §4.E's PHI reconciliation check: pointer
// to pointer, or equal-width integer to equal-width integer.
func bitcastReconcilable(from, to air.Type) bool {
	if _, ok := air.AsPointer(from); ok {
		_, ok := air.AsPointer(to)
		return ok
	}
	fi, okFrom := air.AsInteger(from)
	ti, okTo := air.AsInteger(to)
	return okFrom && okTo && fi.Bits == ti.Bits
}

// translateExtractValue is spec.md §4.E's ExtractValue rule.
func (tx *Translator) translateExtractValue(bt *blockxlat.BlockTranslation, in *ir.InstExtractValue) error {
	resultType, err := tx.Infer.InferType(in)
	if err != nil {
		return err
	}
	agg, err := tx.translateValue(bt, in.X, nil)
	if err != nil {
		return err
	}
	offset := tx.aggregateOffset(in.X.Type(), in.Indices)
	result := tx.Env.NextInternal(resultType)
	bt.AddStatement(&air.ExtractElement{Result: result, Aggregate: agg, Offset: offset})
	tx.Env.Record(in, result)
	return nil
}

// translateInsertValue is spec.md §4.E's InsertValue rule.
func (tx *Translator) translateInsertValue(bt *blockxlat.BlockTranslation, in *ir.InstInsertValue) error {
	resultType, err := tx.Infer.InferType(in)
	if err != nil {
		return err
	}
	agg, err := tx.translateValue(bt, in.X, nil)
	if err != nil {
		return err
	}
	elem, err := tx.translateValue(bt, in.Elem, nil)
	if err != nil {
		return err
	}
	offset := tx.aggregateOffset(in.X.Type(), in.Indices)
	result := tx.Env.NextInternal(resultType)
	bt.AddStatement(&air.InsertElement{Result: result, Aggregate: agg, Elem: elem, Offset: offset})
	tx.Env.Record(in, result)
	return nil
}

// aggregateOffset walks extractvalue/insertvalue's constant index chain
// through t's structure to a single cumulative byte offset via the data
// layout, mirroring GEP's struct/array offset computation.
func (tx *Translator) aggregateOffset(t lir.Type, indices []uint64) uint64 {
	var offset uint64
	cur := t
	for _, idx := range indices {
		if st, ok := cur.(*types.StructType); ok {
			offset += tx.Layout.StructElementOffset(cur, int(idx))
			cur = st.Fields[idx]
			continue
		}
		elem := elemOf(cur)
		offset += idx * tx.Layout.TypeAllocSize(elem)
		cur = elem
	}
	return offset
}
