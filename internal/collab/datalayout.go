package collab

import (
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"github.com/vaioco/ikos/internal/lir"
)

// NaiveDataLayout computes sizes and offsets from type structure alone:
// no alignment padding, pointers fixed at 8 bytes. spec.md §1 places the
// real target data layout out of this translator's scope (GEP's
// PointerShift lowering only needs *some* consistent layout to multiply
// strides by); a production frontend would instead consult the LIR
// module's actual `target datalayout` string.
type NaiveDataLayout struct {
	PointerSize uint64
}

func NewNaiveDataLayout() *NaiveDataLayout {
	return &NaiveDataLayout{PointerSize: 8}
}

func (dl *NaiveDataLayout) TypeAllocSize(t lir.Type) uint64 {
	switch lt := t.(type) {
	case *types.IntType:
		return (lt.BitSize + 7) / 8
	case *types.FloatType:
		return dl.floatSize(lt)
	case *types.PointerType:
		return dl.PointerSize
	case *types.ArrayType:
		return lt.Len * dl.TypeAllocSize(lt.ElemType)
	case *types.VectorType:
		return lt.Len * dl.TypeAllocSize(lt.ElemType)
	case *types.StructType:
		var total uint64
		for _, f := range lt.Fields {
			total += dl.TypeAllocSize(f)
		}
		return total
	default:
		return 0
	}
}

func (dl *NaiveDataLayout) floatSize(t *types.FloatType) uint64 {
	switch t.Kind {
	case enum.FloatKindHalf:
		return 2
	case enum.FloatKindFloat:
		return 4
	case enum.FloatKindDouble:
		return 8
	case enum.FloatKindX86_FP80:
		return 10
	case enum.FloatKindFP128, enum.FloatKindPPC_FP128:
		return 16
	default:
		return 8
	}
}

func (dl *NaiveDataLayout) StructElementOffset(t lir.Type, index int) uint64 {
	st, ok := t.(*types.StructType)
	if !ok {
		return 0
	}
	var offset uint64
	for i := 0; i < index && i < len(st.Fields); i++ {
		offset += dl.TypeAllocSize(st.Fields[i])
	}
	return offset
}
