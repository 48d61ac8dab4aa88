// Package valuexlat implements spec.md §4.C's translate_value,
// translate_cast_integer_value, add_bitcast and add_integer_casts: turning
// one LIR operand into an AIR Variable of a caller-requested type.
package valuexlat

import (
	"github.com/llir/llvm/ir"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/collab"
	"github.com/vaioco/ikos/internal/irerrors"
	"github.com/vaioco/ikos/internal/lir"
)

// Translated looks up the AIR variable already recorded for a LIR
// instruction/parameter, as maintained by internal/funcxlat during a
// function's translation.
type Translated interface {
	Lookup(v lir.Value) (air.Variable, bool)
}

// IDs mints fresh internal SSA names for the bitcast/cast statements this
// package appends.
type IDs interface {
	NextInternal(typ air.Type) *air.Internal
}

type Translator struct {
	Constants collab.ConstantImporter
	Types     collab.TypeImporter
	Values    Translated
	IDs       IDs
}

func New(constants collab.ConstantImporter, types collab.TypeImporter, values Translated, ids IDs) *Translator {
	return &Translator{Constants: constants, Types: types, Values: values, IDs: ids}
}

// TranslateValue is spec.md §4.C's translate_value. target may be nil,
// meaning "whatever type V naturally has".
func (t *Translator) TranslateValue(v lir.Value, target air.Type, block *air.BasicBlock) (air.Variable, error) {
	if lir.IsConstant(v) {
		return t.Constants.TranslateConstant(v, target, block)
	}
	if lir.IsInstruction(v) || lir.IsParam(v) {
		w, ok := t.Values.Lookup(v)
		if !ok {
			return nil, irerrors.New("translate_value: %v has not been translated yet", v)
		}
		if target == nil || air.Equal(w.Type(), target) {
			return w, nil
		}
		return t.AddBitcast(w, target, block)
	}
	if lir.IsGlobal(v) {
		w, ok := t.Values.Lookup(v)
		if !ok {
			return nil, irerrors.New("translate_value: global %v has not been translated yet", v)
		}
		if target == nil || air.Equal(w.Type(), target) {
			return w, nil
		}
		return t.AddBitcast(w, target, block)
	}
	if lir.IsFunc(v) {
		w, ok := t.Values.Lookup(v)
		if !ok {
			return nil, irerrors.New("translate_value: function %v has not been translated yet", v)
		}
		if target == nil || air.Equal(w.Type(), target) {
			return w, nil
		}
		return t.AddBitcast(w, target, block)
	}
	if lir.IsInlineAsm(v) {
		asm := v.(*ir.InlineAsm)
		typ := target
		if typ == nil {
			typ = t.Types.TranslateType(asm.Type(), true)
		}
		return &air.InlineAsm{Typ: typ, Asm: asm.Asm}, nil
	}
	return nil, irerrors.New("translate_value: invalid operand %v", v)
}

// AddBitcast is spec.md §4.C's add_bitcast: legal only pointer<->pointer or
// equal-width integer<->integer.
func (t *Translator) AddBitcast(w air.Variable, target air.Type, block *air.BasicBlock) (air.Variable, error) {
	if !air.BitcastCompatible(w.Type(), target) {
		return nil, irerrors.New("add_bitcast: %s is not bitcast-compatible with %s", w.Type(), target)
	}
	result := t.IDs.NextInternal(target)
	block.Append(&air.UnaryOperation{Op: air.OpBitcast, Result: result, Operand: w})
	return result, nil
}

// AddIntegerCasts is spec.md §4.C's add_integer_casts: a width change
// (SExt/ZExt or STrunc/UTrunc, chosen by the source's current sign and the
// direction of the width change) followed by a sign-changing bitcast if
// the signs still differ afterward. Used only by the alloca array-size
// path (spec.md §4.E).
func (t *Translator) AddIntegerCasts(w air.Variable, target *air.IntegerType, block *air.BasicBlock) (air.Variable, error) {
	src, ok := air.AsInteger(w.Type())
	if !ok {
		return nil, irerrors.New("add_integer_casts: %s is not an integer type", w.Type())
	}
	cur := w
	if src.Bits != target.Bits {
		widened := &air.IntegerType{Bits: target.Bits, Signed: src.Signed}
		var op air.UnaryOp
		switch {
		case target.Bits > src.Bits && src.Signed:
			op = air.OpSExt
		case target.Bits > src.Bits && !src.Signed:
			op = air.OpZExt
		case target.Bits < src.Bits && src.Signed:
			op = air.OpSTrunc
		default:
			op = air.OpUTrunc
		}
		result := t.IDs.NextInternal(widened)
		block.Append(&air.UnaryOperation{Op: op, Result: result, Operand: cur})
		cur = result
	}
	curInt, _ := air.AsInteger(cur.Type())
	if curInt.Signed != target.Signed {
		return t.AddBitcast(cur, target, block)
	}
	return cur, nil
}

// TranslateCastIntegerValue is spec.md §4.C's translate_cast_integer_value:
// translate_value at V's own natural type, then coerce to target via
// add_integer_casts (or the constant-path equivalent).
func (t *Translator) TranslateCastIntegerValue(v lir.Value, target *air.IntegerType, block *air.BasicBlock) (air.Variable, error) {
	if lir.IsConstant(v) {
		return t.Constants.TranslateCastIntegerConstant(v, target)
	}
	w, err := t.TranslateValue(v, nil, block)
	if err != nil {
		return nil, err
	}
	return t.AddIntegerCasts(w, target, block)
}
