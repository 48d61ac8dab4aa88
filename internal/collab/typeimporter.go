package collab

import (
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/lir"
)

// StructuralTypeImporter is a direct, structural LIR->AIR type translator:
// it walks the LIR type lattice and produces the corresponding AIR type,
// defaulting integer signedness to preferredSign since LIR integers carry
// no sign of their own. This is the reference TypeImporter used by
// internal/collab's BundleImporter-lite and by every test fixture in this
// module; a production importer would additionally consult the module's
// named-struct table so recursive/opaque structs resolve, which is outside
// this translator's scope (spec.md §1).
type StructuralTypeImporter struct{}

func NewStructuralTypeImporter() *StructuralTypeImporter { return &StructuralTypeImporter{} }

func (ti *StructuralTypeImporter) TranslateType(t lir.Type, preferredSign bool) air.Type {
	switch lt := t.(type) {
	case *types.IntType:
		return &air.IntegerType{Bits: lt.BitSize, Signed: preferredSign}
	case *types.FloatType:
		return &air.FloatType{Semantic: translateFloatKind(lt.Kind)}
	case *types.PointerType:
		return &air.PointerType{Pointee: ti.TranslateType(lt.ElemType, preferredSign)}
	case *types.FuncType:
		params := make([]air.Type, len(lt.Params))
		for i, p := range lt.Params {
			params[i] = ti.TranslateType(p, true)
		}
		return &air.FunctionType{Params: params, Variadic: lt.Variadic, Ret: ti.TranslateType(lt.RetType, true)}
	case *types.ArrayType:
		return &air.ArrayType{Elem: ti.TranslateType(lt.ElemType, preferredSign), Len: lt.Len}
	case *types.VectorType:
		return &air.VectorType{Elem: ti.TranslateType(lt.ElemType, preferredSign), Len: lt.Len}
	case *types.StructType:
		fields := make([]air.Type, len(lt.Fields))
		for i, f := range lt.Fields {
			fields[i] = ti.TranslateType(f, true)
		}
		return &air.StructType{Name: lt.TypeName, Fields: fields, Packed: lt.Packed}
	case *types.VoidType:
		return &air.VoidType{}
	default:
		// Label/metadata/token types never appear as an SSA value's type
		// in well-formed LIR the instruction translator operates on.
		return &air.VoidType{}
	}
}

func translateFloatKind(k enum.FloatKind) air.FloatSemantic {
	switch k {
	case enum.FloatKindHalf:
		return air.FloatHalf
	case enum.FloatKindFloat:
		return air.FloatSingle
	case enum.FloatKindDouble:
		return air.FloatDouble
	case enum.FloatKindX86_FP80:
		return air.FloatX86FP80
	case enum.FloatKindFP128:
		return air.FloatQuad
	case enum.FloatKindPPC_FP128:
		return air.FloatPPCDoubleDouble
	default:
		return air.FloatDouble
	}
}

func (ti *StructuralTypeImporter) TranslateDIType(dt DebugType, lirType lir.Type) air.Type {
	switch dt.Kind {
	case DebugInt:
		return &air.IntegerType{Bits: dt.Bits, Signed: dt.Signed}
	case DebugFloat:
		return &air.FloatType{Semantic: bitsToFloatSemantic(dt.Bits)}
	case DebugPointer:
		var pointee air.Type
		if dt.Pointee != nil {
			pointee = ti.TranslateDIType(*dt.Pointee, nil)
		} else {
			pointee = ti.TranslateType(lirType, true)
		}
		return &air.PointerType{Pointee: pointee}
	case DebugArray:
		var elem air.Type
		if dt.Elem != nil {
			elem = ti.TranslateDIType(*dt.Elem, nil)
		}
		if lt, ok := lirType.(*types.ArrayType); ok {
			return &air.ArrayType{Elem: elem, Len: lt.Len}
		}
		return &air.ArrayType{Elem: elem, Len: 0}
	default:
		return ti.TranslateType(lirType, true)
	}
}

func bitsToFloatSemantic(bits uint64) air.FloatSemantic {
	switch bits {
	case 16:
		return air.FloatHalf
	case 32:
		return air.FloatSingle
	case 80:
		return air.FloatX86FP80
	case 128:
		return air.FloatQuad
	default:
		return air.FloatDouble
	}
}

func (ti *StructuralTypeImporter) MatchDIType(dt DebugType, lirType lir.Type) bool {
	switch lt := lirType.(type) {
	case *types.IntType:
		return dt.Kind == DebugInt && dt.Bits == lt.BitSize
	case *types.FloatType:
		return dt.Kind == DebugFloat
	case *types.PointerType:
		if dt.Kind != DebugPointer {
			return false
		}
		if dt.Pointee == nil {
			return true
		}
		return ti.MatchDIType(*dt.Pointee, lt.ElemType)
	case *types.ArrayType:
		if dt.Kind != DebugArray {
			return false
		}
		if dt.Elem == nil {
			return true
		}
		return ti.MatchDIType(*dt.Elem, lt.ElemType)
	default:
		return dt.Kind == DebugOther
	}
}
