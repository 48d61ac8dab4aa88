package valuexlat

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/collab"
	"github.com/vaioco/ikos/internal/lir"
)

type fakeTranslated map[lir.Value]air.Variable

func (f fakeTranslated) Lookup(v lir.Value) (air.Variable, bool) {
	w, ok := f[v]
	return w, ok
}

type seqIDs struct{ next int }

func (s *seqIDs) NextInternal(typ air.Type) *air.Internal {
	s.next++
	return &air.Internal{ID: s.next, Typ: typ}
}

func newTranslator(values fakeTranslated) *Translator {
	ti := collab.NewStructuralTypeImporter()
	return New(collab.NewBasicConstantImporter(ti), ti, values, &seqIDs{})
}

func TestTranslateValueReturnsRecordedVariableWhenTypesMatch(t *testing.T) {
	v := ir.NewParam("x", types.I32) // non-constant LIR value, so TranslateValue consults the recorded map
	want := &air.Local{Name: "x", Typ: &air.IntegerType{Bits: 32, Signed: true}}
	tr := newTranslator(fakeTranslated{})
	tr.Values = fakeTranslated{v: want}

	got, err := tr.TranslateValue(v, want.Typ, nil)
	if err != nil {
		t.Fatalf("TranslateValue: %v", err)
	}
	if got != want {
		t.Fatalf("expected the recorded variable unchanged, got %v", got)
	}
}

func TestAddBitcastRejectsIncompatibleTypes(t *testing.T) {
	tr := newTranslator(fakeTranslated{})
	w := &air.Local{Name: "p", Typ: &air.PointerType{Pointee: &air.IntegerType{Bits: 8, Signed: false}}}
	_, err := tr.AddBitcast(w, &air.IntegerType{Bits: 32, Signed: true}, nil)
	if err == nil {
		t.Fatal("expected an error bitcasting a pointer to an integer")
	}
}

func TestAddIntegerCastsWidensThenFlipsSign(t *testing.T) {
	tr := newTranslator(fakeTranslated{})
	block := &air.BasicBlock{}
	w := &air.Local{Name: "n", Typ: &air.IntegerType{Bits: 8, Signed: true}}
	target := &air.IntegerType{Bits: 32, Signed: false}

	got, err := tr.AddIntegerCasts(w, target, block)
	if err != nil {
		t.Fatalf("AddIntegerCasts: %v", err)
	}
	if !air.Equal(got.Type(), target) {
		t.Fatalf("got type %v, want %v", got.Type(), target)
	}
	if len(block.Statements) != 2 {
		t.Fatalf("expected a widen statement then a sign-flip bitcast, got %d statements", len(block.Statements))
	}
	widen, ok := block.Statements[0].(*air.UnaryOperation)
	if !ok || widen.Op != air.OpSExt {
		t.Fatalf("expected the first statement to be a sext, got %v", block.Statements[0])
	}
	flip, ok := block.Statements[1].(*air.UnaryOperation)
	if !ok || flip.Op != air.OpBitcast {
		t.Fatalf("expected the second statement to be a bitcast, got %v", block.Statements[1])
	}
}

func TestAddIntegerCastsNoopWhenAlreadyTarget(t *testing.T) {
	tr := newTranslator(fakeTranslated{})
	block := &air.BasicBlock{}
	w := &air.Local{Name: "n", Typ: &air.IntegerType{Bits: 32, Signed: false}}
	target := &air.IntegerType{Bits: 32, Signed: false}

	got, err := tr.AddIntegerCasts(w, target, block)
	if err != nil {
		t.Fatalf("AddIntegerCasts: %v", err)
	}
	if got != air.Variable(w) {
		t.Fatalf("expected no cast statements to be emitted, got %v", got)
	}
	if len(block.Statements) != 0 {
		t.Fatalf("expected no statements, got %d", len(block.Statements))
	}
}
