package instrxlat

import (
	"github.com/llir/llvm/ir"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/blockxlat"
)

// translateAlloca is spec.md §4.E's Alloca rule.
func (tx *Translator) translateAlloca(bt *blockxlat.BlockTranslation, in *ir.InstAlloca) error {
	typ, err := tx.Infer.InferType(in)
	if err != nil {
		return err
	}
	ptr, ok := air.AsPointer(typ)
	if !ok {
		return errAt("alloca", "inferred type %s is not pointer-to-pointee", typ)
	}
	local := &air.Local{Name: in.Name(), Typ: ptr}

	sizeType := tx.Env.SizeType()
	var count air.Variable
	if in.NElems != nil {
		count, err = tx.translateCastIntegerValue(bt, in.NElems, sizeType)
		if err != nil {
			return err
		}
	} else {
		count = &air.Constant{Typ: sizeType, Value: int64(1)}
	}

	bt.AddStatement(&air.Allocate{
		Result:   local,
		ElemType: ptr.Pointee,
		Count:    count,
		Align:    uint64(in.Align),
	})
	tx.Env.Record(in, local)
	return nil
}

// translateStore is spec.md §4.E's Store rule.
func (tx *Translator) translateStore(bt *blockxlat.BlockTranslation, in *ir.InstStore) error {
	ptr, err := tx.translateValue(bt, in.Dst, nil)
	if err != nil {
		return err
	}
	pt, ok := air.AsPointer(ptr.Type())
	if !ok {
		return errAt("store", "pointer operand has non-pointer type %s", ptr.Type())
	}
	value, err := tx.translateValue(bt, in.Src, pt.Pointee)
	if err != nil {
		return err
	}
	bt.AddStatement(&air.Store{Pointer: ptr, Value: value, Align: uint64(in.Align), Volatile: in.Volatile})
	return nil
}

// translateLoad is spec.md §4.E's Load rule.
func (tx *Translator) translateLoad(bt *blockxlat.BlockTranslation, in *ir.InstLoad) error {
	resultType, err := tx.Infer.InferType(in)
	if err != nil {
		return err
	}
	result := tx.Env.NextInternal(resultType)
	ptr, err := tx.translateValue(bt, in.Src, &air.PointerType{Pointee: resultType})
	if err != nil {
		return err
	}
	bt.AddStatement(&air.Load{Result: result, Pointer: ptr, Align: uint64(in.Align), Volatile: in.Volatile})
	tx.Env.Record(in, result)
	return nil
}
