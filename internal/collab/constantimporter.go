package collab

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/irerrors"
	"github.com/vaioco/ikos/internal/lir"
)

// BasicConstantImporter handles the constant kinds the instruction
// translator actually needs operands for: integers, floats, and null
// pointers. Aggregate and constant-expression forms are out of this
// translator's scope (spec.md §1: "Constant translation (ConstantImporter)"
// is an external collaborator) and are reported as ImportErrors rather than
// silently approximated.
type BasicConstantImporter struct {
	Types TypeImporter
}

func NewBasicConstantImporter(types TypeImporter) *BasicConstantImporter {
	return &BasicConstantImporter{Types: types}
}

func (ci *BasicConstantImporter) TranslateConstant(c lir.Value, target air.Type, block *air.BasicBlock) (air.Variable, error) {
	switch lc := c.(type) {
	case *constant.Int:
		typ := target
		if typ == nil {
			typ = ci.Types.TranslateType(lc.Typ, true)
		}
		return &air.Constant{Typ: typ, Value: lc.X.Int64()}, nil
	case *constant.Float:
		typ := target
		if typ == nil {
			typ = ci.Types.TranslateType(lc.Typ, true)
		}
		v, _ := lc.X.Float64()
		return &air.Constant{Typ: typ, Value: v}, nil
	case *constant.Null:
		typ := target
		if typ == nil {
			typ = ci.Types.TranslateType(lc.Typ, true)
		}
		return &air.Constant{Typ: typ, Value: nil}, nil
	case *constant.ZeroInitializer:
		typ := target
		if typ == nil {
			typ = ci.Types.TranslateType(lc.Typ, true)
		}
		return &air.Constant{Typ: typ, Value: nil}, nil
	default:
		return nil, irerrors.New("unsupported constant kind %T", c)
	}
}

func (ci *BasicConstantImporter) TranslateCastIntegerConstant(c lir.Value, target *air.IntegerType) (air.Variable, error) {
	v, err := ci.TranslateConstant(c, target, nil)
	if err != nil {
		return nil, err
	}
	cst, ok := v.(*air.Constant)
	if !ok {
		return nil, irerrors.New("translate_cast_integer_constant: %v is not a constant", c)
	}
	n, ok := cst.Value.(int64)
	if !ok {
		return nil, irerrors.New("translate_cast_integer_constant: %s is not an integer constant", fmt.Sprint(cst.Value))
	}
	mask := int64(1)<<target.Bits - 1
	if target.Bits >= 64 {
		mask = -1
	}
	return &air.Constant{Typ: target, Value: n & mask}, nil
}
