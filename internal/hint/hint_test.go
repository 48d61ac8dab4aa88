package hint

import "github.com/vaioco/ikos/internal/air"

import "testing"

func i(bits uint64, signed bool) air.Type { return &air.IntegerType{Bits: bits, Signed: signed} }

func TestEmptyMapHasNoBest(t *testing.T) {
	m := NewMap()
	if !m.Empty() {
		t.Fatal("a freshly created Map should be empty")
	}
}

func TestAdditiveScoringAcrossIdenticalTypes(t *testing.T) {
	m := NewMap()
	m.Add(Of(i(32, false), ScoreStructural))
	m.Add(Of(i(32, false), ScoreTieBreak))
	m.Add(Of(i(32, true), ScoreStructural))

	// unsigned: 5 + 2 = 7, beats signed's 5.
	if got := m.Best(); !air.Equal(got, i(32, false)) {
		t.Fatalf("expected ui32 (score 7) to win over si32 (score 5), got %v", got)
	}
}

func TestIgnoreHintsContributeNothing(t *testing.T) {
	m := NewMap()
	m.Add(Ignore())
	if !m.Empty() {
		t.Fatal("Ignore hints must not count toward Empty()")
	}
}

func TestTieBrokenByInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Add(Of(i(32, true), ScoreStructural))
	m.Add(Of(i(32, false), ScoreStructural))

	if got := m.Best(); !air.Equal(got, i(32, true)) {
		t.Fatalf("expected the first-inserted type to win a tie, got %v", got)
	}
}
