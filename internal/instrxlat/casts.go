package instrxlat

import (
	"github.com/llir/llvm/ir"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/blockxlat"
	"github.com/vaioco/ikos/internal/lir"
)

// translateBitCast is spec.md §4.E's BitCast rule: legal only pointer<->
// pointer or integer<->float (either direction) — a different check from
// valuexlat.AddBitcast's pointer<->
// pointer-or-equal-width-integer rule, so this builds the UnaryOperation
// directly instead of delegating to it.
func (tx *Translator) translateBitCast(bt *blockxlat.BlockTranslation, in *ir.InstBitCast) error {
	resultType, err := tx.Infer.InferType(in)
	if err != nil {
		return err
	}
	operand, err := tx.translateValue(bt, in.From, nil)
	if err != nil {
		return err
	}
	src := operand.Type()
	_, srcPtr := air.AsPointer(src)
	_, dstPtr := air.AsPointer(resultType)
	_, srcInt := air.AsInteger(src)
	_, dstInt := air.AsInteger(resultType)
	_, srcFloat := asFloatType(src)
	_, dstFloat := asFloatType(resultType)

	legal := (srcPtr && dstPtr) || (srcInt && dstFloat) || (srcFloat && dstInt)
	if !legal {
		return errAt("bitcast", "illegal bitcast from %s to %s", src, resultType)
	}

	result := tx.Env.NextInternal(resultType)
	bt.AddStatement(&air.UnaryOperation{Op: air.OpBitcast, Result: result, Operand: operand})
	tx.Env.Record(in, result)
	return nil
}

// translateOtherCast is spec.md §4.E's "Other cast" table, covering every
// cast opcode except BitCast and AddrSpaceCast (handled elsewhere).
func (tx *Translator) translateOtherCast(bt *blockxlat.BlockTranslation, inst ir.Instruction) error {
	switch in := inst.(type) {
	case *ir.InstTrunc:
		return tx.truncCast(bt, in, in.From)
	case *ir.InstZExt:
		return tx.extCast(bt, in, in.From, false, air.OpZExt)
	case *ir.InstSExt:
		return tx.extCast(bt, in, in.From, true, air.OpSExt)
	case *ir.InstFPToUI:
		return tx.fpToIntCast(bt, in, in.From, false, air.OpFPToUI)
	case *ir.InstFPToSI:
		return tx.fpToIntCast(bt, in, in.From, true, air.OpFPToSI)
	case *ir.InstUIToFP:
		return tx.intToFPCast(bt, in, in.From, false, air.OpUIToFP)
	case *ir.InstSIToFP:
		return tx.intToFPCast(bt, in, in.From, true, air.OpSIToFP)
	case *ir.InstFPTrunc:
		return tx.naturalCast(bt, in, in.From, air.OpFPTrunc)
	case *ir.InstFPExt:
		return tx.naturalCast(bt, in, in.From, air.OpFPExt)
	case *ir.InstPtrToInt:
		return tx.ptrToIntCast(bt, in, in.From)
	case *ir.InstIntToPtr:
		return tx.intToPtrCast(bt, in, in.From)
	default:
		return errAt("cast", "unsupported cast instruction %T", inst)
	}
}

// truncCast is Trunc: sign is the result's own inferred sign; both the
// operand's translated type and the statement's output type are that same
// signed integer, so no reconciling bitcast ever follows.
func (tx *Translator) truncCast(bt *blockxlat.BlockTranslation, inst lir.Value, from lir.Value) error {
	resultType, err := tx.Infer.InferType(inst)
	if err != nil {
		return err
	}
	ri, ok := air.AsInteger(resultType)
	if !ok {
		return errAt("trunc", "inferred type %s is not an integer type", resultType)
	}
	srcType := &air.IntegerType{Bits: intBitsOf(from.Type()), Signed: ri.Signed}
	operand, err := tx.translateValue(bt, from, srcType)
	if err != nil {
		return err
	}
	op := air.OpUTrunc
	if ri.Signed {
		op = air.OpSTrunc
	}
	result := tx.Env.NextInternal(resultType)
	bt.AddStatement(&air.UnaryOperation{Op: op, Result: result, Operand: operand})
	tx.Env.Record(inst, result)
	return nil
}

// extCast is ZExt/SExt: both sides forced to the opcode's fixed sign at the
// instruction's own declared width, with a reconciling Bitcast if
// infer_type settled on the opposite sign for the result.
func (tx *Translator) extCast(bt *blockxlat.BlockTranslation, inst lir.Value, from lir.Value, signed bool, op air.UnaryOp) error {
	destBits := intBitsOf(inst.Type())
	srcType := &air.IntegerType{Bits: intBitsOf(from.Type()), Signed: signed}
	operand, err := tx.translateValue(bt, from, srcType)
	if err != nil {
		return err
	}
	destType := &air.IntegerType{Bits: destBits, Signed: signed}
	return tx.emitWithReconcile(bt, inst, operand, op, destType)
}

// fpToIntCast is FPToUI/FPToSI: the operand translates with no hint; the
// statement's output is the opcode's fixed-sign integer at the
// instruction's own declared width, reconciled against infer_type the same
// way as extCast.
func (tx *Translator) fpToIntCast(bt *blockxlat.BlockTranslation, inst lir.Value, from lir.Value, signed bool, op air.UnaryOp) error {
	operand, err := tx.translateValue(bt, from, nil)
	if err != nil {
		return err
	}
	destType := &air.IntegerType{Bits: intBitsOf(inst.Type()), Signed: signed}
	return tx.emitWithReconcile(bt, inst, operand, op, destType)
}

// emitWithReconcile appends UnaryOperation(op, _, operand) into destType,
// then a Bitcast into infer_type's result if that differs in sign.
func (tx *Translator) emitWithReconcile(bt *blockxlat.BlockTranslation, inst lir.Value, operand air.Variable, op air.UnaryOp, destType *air.IntegerType) error {
	resultType, err := tx.Infer.InferType(inst)
	if err != nil {
		return err
	}
	if air.Equal(destType, resultType) {
		result := tx.Env.NextInternal(resultType)
		bt.AddStatement(&air.UnaryOperation{Op: op, Result: result, Operand: operand})
		tx.Env.Record(inst, result)
		return nil
	}
	tmp := tx.Env.NextInternal(destType)
	bt.AddStatement(&air.UnaryOperation{Op: op, Result: tmp, Operand: operand})
	result := tx.Env.NextInternal(resultType)
	bt.AddStatement(&air.UnaryOperation{Op: air.OpBitcast, Result: result, Operand: tmp})
	tx.Env.Record(inst, result)
	return nil
}

// intToFPCast is UIToFP/SIToFP: the operand translates with the opcode's
// fixed sign at its own width; the statement's output is simply the
// inferred (float) result type directly, since "—" in the dest_type column
// means no reconciliation ever applies.
func (tx *Translator) intToFPCast(bt *blockxlat.BlockTranslation, inst lir.Value, from lir.Value, signed bool, op air.UnaryOp) error {
	srcType := &air.IntegerType{Bits: intBitsOf(from.Type()), Signed: signed}
	operand, err := tx.translateValue(bt, from, srcType)
	if err != nil {
		return err
	}
	return tx.emitNatural(bt, inst, operand, op)
}

// naturalCast is FPTrunc/FPExt: both src_type and dest_type are "—", i.e.
// the operand translates with no hint and the result is recorded directly
// at infer_type's answer.
func (tx *Translator) naturalCast(bt *blockxlat.BlockTranslation, inst lir.Value, from lir.Value, op air.UnaryOp) error {
	operand, err := tx.translateValue(bt, from, nil)
	if err != nil {
		return err
	}
	return tx.emitNatural(bt, inst, operand, op)
}

// ptrToIntCast is PtrToInt: the operand translates with no hint; dest_type
// is explicitly "result's type", so the statement's output is infer_type's
// answer directly (no reconciling bitcast ever needed).
func (tx *Translator) ptrToIntCast(bt *blockxlat.BlockTranslation, inst lir.Value, from lir.Value) error {
	resultType, err := tx.Infer.InferType(inst)
	if err != nil {
		return err
	}
	ri, ok := air.AsInteger(resultType)
	if !ok {
		return errAt("ptrtoint", "inferred type %s is not an integer type", resultType)
	}
	operand, err := tx.translateValue(bt, from, nil)
	if err != nil {
		return err
	}
	op := air.OpPtrToUI
	if ri.Signed {
		op = air.OpPtrToSI
	}
	return tx.emitNatural(bt, inst, operand, op)
}

// intToPtrCast is IntToPtr: the operand's own (already-translated) sign
// picks the opcode variant; dest_type is "—" (the pointer result type
// directly).
func (tx *Translator) intToPtrCast(bt *blockxlat.BlockTranslation, inst lir.Value, from lir.Value) error {
	operand, err := tx.translateValue(bt, from, nil)
	if err != nil {
		return err
	}
	oi, ok := air.AsInteger(operand.Type())
	if !ok {
		return errAt("inttoptr", "operand type %s is not an integer type", operand.Type())
	}
	op := air.OpUIToPtr
	if oi.Signed {
		op = air.OpSIToPtr
	}
	return tx.emitNatural(bt, inst, operand, op)
}

func (tx *Translator) emitNatural(bt *blockxlat.BlockTranslation, inst lir.Value, operand air.Variable, op air.UnaryOp) error {
	resultType, err := tx.Infer.InferType(inst)
	if err != nil {
		return err
	}
	result := tx.Env.NextInternal(resultType)
	bt.AddStatement(&air.UnaryOperation{Op: op, Result: result, Operand: operand})
	tx.Env.Record(inst, result)
	return nil
}
