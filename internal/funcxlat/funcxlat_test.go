package funcxlat

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/collab"
)

func newTestTranslator() *Translator {
	ti := collab.NewStructuralTypeImporter()
	ci := collab.NewBasicConstantImporter(ti)
	bundle := collab.NewBundleImporterLite(ti)
	layout := collab.NewNaiveDataLayout()
	return New(ti, ci, bundle, layout, collab.NoDebugInfo{}, false)
}

func i32s() *air.IntegerType { return &air.IntegerType{Bits: 32, Signed: true} }

func TestTranslateBodyStraightLineFunction(t *testing.T) {
	entry := ir.NewBlock("entry")
	alloca := entry.NewAlloca(types.I32)
	entry.NewStore(ir.NewInt(types.I32, 5), alloca)
	load := entry.NewLoad(types.I32, alloca)
	entry.NewRet(load)

	fn := &ir.Func{}
	fn.Blocks = []*ir.Block{entry}

	out := &air.Function{Name: "straight", ReturnType: i32s()}
	tx := newTestTranslator()
	code, err := tx.TranslateBody(out, fn)
	if err != nil {
		t.Fatalf("TranslateBody: %v", err)
	}
	if code.Entry == nil {
		t.Fatal("expected a non-nil entry block")
	}
	if code.Exit == nil {
		t.Fatal("expected a non-nil exit block")
	}
	if len(code.Blocks) != 1 {
		t.Fatalf("expected a single AIR block for a straight-line function, got %d", len(code.Blocks))
	}
	if code.Entry != code.Exit {
		t.Fatal("expected the single block to be both entry and exit")
	}
}

// TestTranslateBodyDiamondWithPhi exercises spec.md §8's scenarios 1 and 5
// together: a single-use icmp fused into its branch (no materialized
// boolean), and a PHI whose incoming constants land as Assignments in
// per-predecessor input blocks.
func TestTranslateBodyDiamondWithPhi(t *testing.T) {
	x := ir.NewParam("x", types.I32)

	entry := ir.NewBlock("entry")
	trueBlock := ir.NewBlock("t")
	falseBlock := ir.NewBlock("f")
	merge := ir.NewBlock("merge")

	cmp := entry.NewICmp(enum.IPredSGT, x, ir.NewInt(types.I32, 0))
	entry.NewCondBr(cmp, trueBlock, falseBlock)

	trueBlock.NewBr(merge)
	falseBlock.NewBr(merge)

	phi := merge.NewPhi(ir.NewIncoming(ir.NewInt(types.I32, 1), trueBlock), ir.NewIncoming(ir.NewInt(types.I32, 2), falseBlock))
	merge.NewRet(phi)

	fn := &ir.Func{}
	fn.Params = []*ir.Param{x}
	fn.Blocks = []*ir.Block{entry, trueBlock, falseBlock, merge}

	out := &air.Function{
		Name:       "diamond",
		Params:     []*air.Parameter{{Index: 0, Name: "x", Typ: i32s()}},
		ReturnType: i32s(),
	}
	tx := newTestTranslator()
	code, err := tx.TranslateBody(out, fn)
	if err != nil {
		t.Fatalf("TranslateBody: %v", err)
	}

	if len(code.Entry.Statements) != 0 {
		t.Fatalf("expected the fused comparison to leave entry's main empty, got %v", code.Entry.Statements)
	}
	if len(code.Entry.Successors) != 2 {
		t.Fatalf("expected entry to fan out into 2 children, got %d", len(code.Entry.Successors))
	}
	for _, child := range code.Entry.Successors {
		if len(child.Statements) == 0 {
			t.Fatal("expected each branch child to carry a Comparison")
		}
		if _, ok := child.Statements[0].(*air.Comparison); !ok {
			t.Fatalf("expected a Comparison, got %T", child.Statements[0])
		}
	}

	if code.Exit == nil {
		t.Fatal("expected a non-nil exit block")
	}
	last := code.Exit.Statements[len(code.Exit.Statements)-1]
	if _, ok := last.(*air.ReturnValue); !ok {
		t.Fatalf("expected exit's last statement to be a ReturnValue, got %T", last)
	}

	if len(code.Exit.Predecessors) != 2 {
		t.Fatalf("expected 2 PHI input landing blocks feeding exit, got %d", len(code.Exit.Predecessors))
	}
	for _, pred := range code.Exit.Predecessors {
		if len(pred.Statements) == 0 {
			t.Fatal("expected a landing block to carry the PHI's Assignment")
		}
		if _, ok := pred.Statements[len(pred.Statements)-1].(*air.Assignment); !ok {
			t.Fatalf("expected an Assignment, got %T", pred.Statements[len(pred.Statements)-1])
		}
	}
}

func TestTranslateBodyRejectsMultipleReturnBlocks(t *testing.T) {
	entry := ir.NewBlock("entry")
	entry.NewRet(ir.NewInt(types.I32, 0))
	other := ir.NewBlock("other")
	other.NewRet(ir.NewInt(types.I32, 1))

	fn := &ir.Func{}
	fn.Blocks = []*ir.Block{entry, other}

	out := &air.Function{Name: "tworets", ReturnType: i32s()}
	tx := newTestTranslator()
	if _, err := tx.TranslateBody(out, fn); err == nil {
		t.Fatal("expected an error for a function with two return blocks")
	}
}

func TestTranslateBodyRejectsParamCountMismatch(t *testing.T) {
	entry := ir.NewBlock("entry")
	entry.NewRet(nil)
	x := ir.NewParam("x", types.I32)

	fn := &ir.Func{}
	fn.Params = []*ir.Param{x}
	fn.Blocks = []*ir.Block{entry}

	out := &air.Function{Name: "mismatch"} // no Params slot for x
	tx := newTestTranslator()
	if _, err := tx.TranslateBody(out, fn); err == nil {
		t.Fatal("expected an error for a parameter-count mismatch")
	}
}
