// Package hint implements spec.md §4.A's TypeHint algebra: a (type, score)
// preference gathered from one use of a value, combined additively across
// all of a value's uses by internal/typeinfer.
package hint

import "github.com/vaioco/ikos/internal/air"

// Score constants name the confidence levels spec.md §4.A fixes.
const (
	ScoreDebugInfo     uint32 = 1000
	ScoreStrongNoDebug uint32 = 10
	ScoreStructural    uint32 = 5
	ScoreTieBreak      uint32 = 2
	ScoreBitwise       uint32 = 1
)

// Hint is either Ignore, or a (Type, Score) preference.
type Hint struct {
	ignore bool
	typ    air.Type
	score  uint32
}

// Ignore is the sentinel hint meaning "this use carries no type preference".
func Ignore() Hint { return Hint{ignore: true} }

// Of builds a concrete (type, score) hint.
func Of(t air.Type, score uint32) Hint { return Hint{typ: t, score: score} }

// IsIgnore reports whether h is the Ignore sentinel.
func (h Hint) IsIgnore() bool { return h.ignore }

// Type returns h's type. Only meaningful when !h.IsIgnore().
func (h Hint) Type() air.Type { return h.typ }

// Score returns h's score. Only meaningful when !h.IsIgnore().
func (h Hint) Score() uint32 { return h.score }

// Map accumulates hints for a single LIR value by summing scores for
// identical types (spec.md §4.A: "summing scores for identical types in a
// mapping"). Insertion order is preserved so Best's tie-break is stable
// across runs, which spec.md §4.A and §8 both require for determinism.
type Map struct {
	order  []air.Type
	scores map[string]uint32
	types  map[string]air.Type
}

// NewMap creates an empty hint accumulator.
func NewMap() *Map {
	return &Map{scores: make(map[string]uint32), types: make(map[string]air.Type)}
}

// Add folds h into the map. Ignore hints are no-ops.
func (m *Map) Add(h Hint) {
	if h.ignore {
		return
	}
	key := h.typ.String()
	if _, seen := m.types[key]; !seen {
		m.order = append(m.order, h.typ)
		m.types[key] = h.typ
	}
	m.scores[key] += h.score
}

// Empty reports whether no non-Ignore hint was ever added.
func (m *Map) Empty() bool { return len(m.order) == 0 }

// Best returns the highest-scoring type accumulated so far. Ties are broken
// by insertion order: the first type to reach the winning score wins,
// matching spec.md §4.A's "ties broken by insertion order (stable, for test
// determinism)". Best panics if the map is empty; callers must check Empty
// first and fall back to infer_default_type per spec.md §4.B.4.
func (m *Map) Best() air.Type {
	if len(m.order) == 0 {
		panic("hint: Best called on an empty Map")
	}
	best := m.order[0]
	bestScore := m.scores[best.String()]
	for _, t := range m.order[1:] {
		s := m.scores[t.String()]
		if s > bestScore {
			best, bestScore = t, s
		}
	}
	return best
}
