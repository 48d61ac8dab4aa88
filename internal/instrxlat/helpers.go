package instrxlat

import (
	"github.com/llir/llvm/ir/types"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/blockxlat"
	"github.com/vaioco/ikos/internal/irerrors"
	"github.com/vaioco/ikos/internal/lir"
)

// block1 returns the sole open output's block. Every instruction except
// Comparison, the integer/float binary operators, and Branch forces a merge
// via the Pre-rule before it runs, so for those callers this is always
// safe; the exempted three handle fan-out themselves.
func (tx *Translator) block1(bt *blockxlat.BlockTranslation) *air.BasicBlock {
	return bt.Outputs()[0].Block
}

// translateValue is tx.Values.TranslateValue widened to also work correctly
// when bt has more than one open output (the Pre-rule's three exemptions):
// any cast statement(s) TranslateValue appends to the first output's block
// are replicated into every sibling output, mirroring
// BlockTranslation.AddStatement's own clone-on-fanout rule, since
// valuexlat's calls append directly to the single *air.BasicBlock handed to
// them rather than going through bt.
func (tx *Translator) translateValue(bt *blockxlat.BlockTranslation, v lir.Value, target air.Type) (air.Variable, error) {
	outs := bt.Outputs()
	b := outs[0].Block
	before := len(b.Statements)
	w, err := tx.Values.TranslateValue(v, target, b)
	if err != nil {
		return nil, err
	}
	replicateAppended(outs, before)
	return w, nil
}

// translateCastIntegerValue is the same widening for
// tx.Values.TranslateCastIntegerValue.
func (tx *Translator) translateCastIntegerValue(bt *blockxlat.BlockTranslation, v lir.Value, target *air.IntegerType) (air.Variable, error) {
	outs := bt.Outputs()
	b := outs[0].Block
	before := len(b.Statements)
	w, err := tx.Values.TranslateCastIntegerValue(v, target, b)
	if err != nil {
		return nil, err
	}
	replicateAppended(outs, before)
	return w, nil
}

func replicateAppended(outs []blockxlat.Output, before int) {
	if len(outs) <= 1 {
		return
	}
	first := outs[0].Block
	added := first.Statements[before:]
	if len(added) == 0 {
		return
	}
	for _, o := range outs[1:] {
		for _, s := range added {
			o.Block.Append(s.Clone())
		}
	}
}

// intBitsOf reads an integer LIR type's bit width, defaulting to 32 for any
// non-integer type (a caller error elsewhere, not something this helper
// should itself reject).
func intBitsOf(t lir.Type) uint64 {
	if it, ok := t.(*types.IntType); ok {
		return it.BitSize
	}
	return 32
}

// elemOf returns the element type one GEP step into t: an array or vector's
// element type, a pointer's pointee, or t itself for any other shape (the
// defensive fallback for a malformed index chain; no error is reported for
// it, here or by the caller).
func elemOf(t lir.Type) lir.Type {
	switch lt := t.(type) {
	case *types.ArrayType:
		return lt.ElemType
	case *types.VectorType:
		return lt.ElemType
	case *types.PointerType:
		return lt.ElemType
	default:
		return t
	}
}

func asFloatType(t air.Type) (*air.FloatType, bool) {
	ft, ok := t.(*air.FloatType)
	return ft, ok
}

func errAt(origin, format string, args ...any) error { return irerrors.At(origin, format, args...) }
