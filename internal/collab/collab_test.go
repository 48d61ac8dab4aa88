package collab

import (
	"testing"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaioco/ikos/internal/air"
)

func TestStructuralTypeImporterIntegerUsesPreferredSign(t *testing.T) {
	ti := NewStructuralTypeImporter()
	got := ti.TranslateType(types.I32, false)
	want := &air.IntegerType{Bits: 32, Signed: false}
	assert.True(t, air.Equal(got, want))
}

func TestStructuralTypeImporterPointerPassesPreferredSignToPointee(t *testing.T) {
	ti := NewStructuralTypeImporter()
	got := ti.TranslateType(types.NewPointer(types.I8), false)
	want := &air.PointerType{Pointee: &air.IntegerType{Bits: 8, Signed: false}}
	assert.True(t, air.Equal(got, want))
}

func TestMatchDITypeChecksIntegerWidth(t *testing.T) {
	ti := NewStructuralTypeImporter()
	assert.True(t, ti.MatchDIType(DebugType{Kind: DebugInt, Bits: 32}, types.I32))
	assert.False(t, ti.MatchDIType(DebugType{Kind: DebugInt, Bits: 64}, types.I32))
}

func TestBasicConstantImporterTranslatesInt(t *testing.T) {
	ci := NewBasicConstantImporter(NewStructuralTypeImporter())
	c := constant.NewInt(types.I32, 7)
	v, err := ci.TranslateConstant(c, &air.IntegerType{Bits: 32, Signed: true}, nil)
	require.NoError(t, err)
	cst := v.(*air.Constant)
	assert.Equal(t, int64(7), cst.Value)
}

func TestBasicConstantImporterCastIntegerConstantMasksWidth(t *testing.T) {
	ci := NewBasicConstantImporter(NewStructuralTypeImporter())
	c := constant.NewInt(types.I32, 300) // doesn't fit in 8 bits
	v, err := ci.TranslateCastIntegerConstant(c, &air.IntegerType{Bits: 8, Signed: false})
	require.NoError(t, err)
	cst := v.(*air.Constant)
	assert.Equal(t, int64(300)&0xff, cst.Value)
}

func TestBasicConstantImporterRejectsUnsupportedKind(t *testing.T) {
	ci := NewBasicConstantImporter(NewStructuralTypeImporter())
	agg := constant.NewArray(types.NewArray(2, types.I32), constant.NewInt(types.I32, 1), constant.NewInt(types.I32, 2))
	_, err := ci.TranslateConstant(agg, nil, nil)
	assert.Error(t, err)
}

func TestNaiveDataLayoutStructOffsetsAreCumulative(t *testing.T) {
	dl := NewNaiveDataLayout()
	st := types.NewStruct(types.I32, types.I64, types.I8)
	assert.Equal(t, uint64(0), dl.StructElementOffset(st, 0))
	assert.Equal(t, uint64(4), dl.StructElementOffset(st, 1))
	assert.Equal(t, uint64(12), dl.StructElementOffset(st, 2))
}

func TestNoDebugInfoAlwaysMisses(t *testing.T) {
	var di NoDebugInfo
	_, ok := di.AllocaDeclareType(constant.NewInt(types.I32, 1))
	assert.False(t, ok)
}

func TestManualDebugInfoRoundtrips(t *testing.T) {
	di := NewManualDebugInfo()
	v := constant.NewInt(types.I32, 1)
	di.DeclareValue(v, DebugType{Kind: DebugInt, Bits: 32, Signed: true})
	dt, ok := di.ValueType(v)
	require.True(t, ok)
	assert.Equal(t, uint64(32), dt.Bits)
}
