package funcxlat

import (
	"github.com/llir/llvm/ir/types"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/collab"
	"github.com/vaioco/ikos/internal/lir"
)

// funcState is the per-function mutable state: the LIR->AIR value map and
// the internal-variable counter (the LIR block->BlockTranslation map is
// kept separately, as bfsTranslateBlocks' result). It plays every collaborator role the lower
// components need (typeinfer.Translated, valuexlat.Translated/IDs,
// instrxlat.Env) so translate_body only needs to build one instance per
// call, the way kanso/internal/ir's Builder holds one SymbolTable for an
// entire build rather than one per sub-pass.
type funcState struct {
	values   map[lir.Value]air.Variable
	nextID   int
	sizeType *air.IntegerType
}

// newFuncState derives the platform size type from the data layout's own
// pointer allocation size, so this package never hardcodes a pointer width
// independent of the collaborator that is supposed to own that fact.
func newFuncState(layout collab.DataLayout) *funcState {
	ptrBytes := layout.TypeAllocSize(types.NewPointer(types.I8))
	if ptrBytes == 0 {
		ptrBytes = 8
	}
	return &funcState{
		values:   make(map[lir.Value]air.Variable),
		sizeType: &air.IntegerType{Bits: ptrBytes * 8, Signed: false},
	}
}

func (s *funcState) Lookup(v lir.Value) (air.Variable, bool) {
	w, ok := s.values[v]
	return w, ok
}

func (s *funcState) NextInternal(typ air.Type) *air.Internal {
	s.nextID++
	return &air.Internal{ID: s.nextID, Typ: typ}
}

func (s *funcState) Record(v lir.Value, w air.Variable) { s.values[v] = w }

func (s *funcState) SizeType() *air.IntegerType { return s.sizeType }
