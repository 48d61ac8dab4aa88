package collab

import "github.com/vaioco/ikos/internal/lir"

// NoDebugInfo is the DebugInfo collaborator for LIR built without -g:
// every lookup misses, which pushes infer_type down to the hint-aggregation
// and default-fallback rules for every value (spec.md §4.B.2-4.B.4).
type NoDebugInfo struct{}

func (NoDebugInfo) AllocaDeclareType(lir.Value) (DebugType, bool) { return DebugType{}, false }
func (NoDebugInfo) ValueType(lir.Value) (DebugType, bool)         { return DebugType{}, false }

// ManualDebugInfo is a map-keyed DebugInfo stand-in for tests and for the
// CLI driver's best-effort mode: callers register known debug types for
// specific LIR values up front rather than this translator parsing DWARF
// itself, which spec.md §1 places out of scope.
type ManualDebugInfo struct {
	AllocaTypes map[lir.Value]DebugType
	ValueTypes  map[lir.Value]DebugType
}

func NewManualDebugInfo() *ManualDebugInfo {
	return &ManualDebugInfo{
		AllocaTypes: make(map[lir.Value]DebugType),
		ValueTypes:  make(map[lir.Value]DebugType),
	}
}

func (m *ManualDebugInfo) DeclareAlloca(v lir.Value, dt DebugType) {
	m.AllocaTypes[v] = dt
}

func (m *ManualDebugInfo) DeclareValue(v lir.Value, dt DebugType) {
	m.ValueTypes[v] = dt
}

func (m *ManualDebugInfo) AllocaDeclareType(alloca lir.Value) (DebugType, bool) {
	dt, ok := m.AllocaTypes[alloca]
	return dt, ok
}

func (m *ManualDebugInfo) ValueType(v lir.Value) (DebugType, bool) {
	dt, ok := m.ValueTypes[v]
	return dt, ok
}
