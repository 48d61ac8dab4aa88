package typeinfer

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/collab"
)

func TestSignFromWrapsMatchesSpecTable(t *testing.T) {
	cases := []struct {
		nsw, nuw bool
		signed   bool
	}{
		{false, false, false},
		{true, false, true},
		{false, true, false},
		{true, true, true},
	}
	for _, c := range cases {
		if got := SignFromWraps(c.nsw, c.nuw); got != c.signed {
			t.Fatalf("SignFromWraps(%v,%v) = %v, want %v", c.nsw, c.nuw, got, c.signed)
		}
	}
}

func TestInferTypeFallsBackToDefaultWhenNoHintsAndNoDebugInfo(t *testing.T) {
	block := ir.NewBlock("entry")
	alloca := block.NewAlloca(types.I32)
	fn := &ir.Func{}
	fn.Blocks = []*ir.Block{block}

	ui := BuildUseIndex(fn, nil)
	inf := New(collab.NewStructuralTypeImporter(), collab.NoDebugInfo{}, collab.NewBundleImporterLite(collab.NewStructuralTypeImporter()), ui, nil, false)

	got, err := inf.InferType(alloca)
	if err != nil {
		t.Fatalf("InferType: %v", err)
	}
	want := &air.PointerType{Pointee: &air.IntegerType{Bits: 32, Signed: true}}
	if !air.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// TestInferTypeAllocaFallsBackToSizeOperandDebugInfo guards SPEC_FULL.md's
// array-size debug supplement: when the alloca's own declare-type lookup
// misses, a dbg.value attached to the size operand still resolves the
// array's element type.
func TestInferTypeAllocaFallsBackToSizeOperandDebugInfo(t *testing.T) {
	block := ir.NewBlock("entry")
	n := block.NewLoad(types.I32, block.NewAlloca(types.I32))
	alloca := block.NewAlloca(types.I8)
	alloca.NElems = n
	fn := &ir.Func{}
	fn.Blocks = []*ir.Block{block}

	debug := collab.NewManualDebugInfo()
	debug.DeclareValue(n, collab.DebugType{Kind: collab.DebugInt, Bits: 16, Signed: true})

	ui := BuildUseIndex(fn, nil)
	inf := New(collab.NewStructuralTypeImporter(), debug, collab.NewBundleImporterLite(collab.NewStructuralTypeImporter()), ui, nil, false)

	got, err := inf.InferType(alloca)
	if err != nil {
		t.Fatalf("InferType: %v", err)
	}
	want := &air.IntegerType{Bits: 16, Signed: true}
	if !air.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestInferTypeZExtSourcePrefersUnsigned(t *testing.T) {
	block := ir.NewBlock("entry")
	alloca := block.NewAlloca(types.I8)
	load := block.NewLoad(types.I8, alloca)
	block.NewZExt(load, types.I32)
	fn := &ir.Func{}
	fn.Blocks = []*ir.Block{block}

	ui := BuildUseIndex(fn, nil)
	inf := New(collab.NewStructuralTypeImporter(), collab.NoDebugInfo{}, collab.NewBundleImporterLite(collab.NewStructuralTypeImporter()), ui, nil, false)

	got, err := inf.InferType(load)
	if err != nil {
		t.Fatalf("InferType: %v", err)
	}
	want := &air.IntegerType{Bits: 8, Signed: false}
	if !air.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestInferTypeAddSignedFromNSW(t *testing.T) {
	block := ir.NewBlock("entry")
	alloca := block.NewAlloca(types.I32)
	load := block.NewLoad(types.I32, alloca)
	add := block.NewAdd(load, load)
	add.OverflowFlags = []enum.OverflowFlag{enum.OverflowFlagNSW}
	fn := &ir.Func{}
	fn.Blocks = []*ir.Block{block}

	ui := BuildUseIndex(fn, nil)
	inf := New(collab.NewStructuralTypeImporter(), collab.NoDebugInfo{}, collab.NewBundleImporterLite(collab.NewStructuralTypeImporter()), ui, nil, false)

	got, err := inf.InferType(load)
	if err != nil {
		t.Fatalf("InferType: %v", err)
	}
	if it, ok := air.AsInteger(got); !ok || !it.Signed {
		t.Fatalf("expected signed integer, got %v", got)
	}
}

// TestInferTypeReturnValueUsesFunctionReturnType guards against re-deriving
// a signed guess from the returned value's own LIR type: a bare load with
// no other hint, returned from a function declared to return unsigned,
// must infer unsigned.
func TestInferTypeReturnValueUsesFunctionReturnType(t *testing.T) {
	block := ir.NewBlock("entry")
	alloca := block.NewAlloca(types.I32)
	load := block.NewLoad(types.I32, alloca)
	block.NewRet(load)
	fn := &ir.Func{}
	fn.Blocks = []*ir.Block{block}

	returnType := &air.IntegerType{Bits: 32, Signed: false}
	ui := BuildUseIndex(fn, returnType)
	inf := New(collab.NewStructuralTypeImporter(), collab.NoDebugInfo{}, collab.NewBundleImporterLite(collab.NewStructuralTypeImporter()), ui, nil, false)

	got, err := inf.InferType(load)
	if err != nil {
		t.Fatalf("InferType: %v", err)
	}
	if !air.Equal(got, returnType) {
		t.Fatalf("got %v, want %v", got, returnType)
	}
}
