package instrxlat

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/blockxlat"
	"github.com/vaioco/ikos/internal/collab"
	"github.com/vaioco/ikos/internal/lir"
	"github.com/vaioco/ikos/internal/typeinfer"
	"github.com/vaioco/ikos/internal/valuexlat"
)

// fakeEnv is the one concrete type satisfying Env, typeinfer.Translated,
// and valuexlat.Translated, mirroring how internal/funcxlat's real
// per-function state plays all three roles at once.
type fakeEnv struct {
	vals map[lir.Value]air.Variable
	next int
	size *air.IntegerType
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{vals: map[lir.Value]air.Variable{}, size: &air.IntegerType{Bits: 64, Signed: false}}
}

func (e *fakeEnv) Lookup(v lir.Value) (air.Variable, bool) { w, ok := e.vals[v]; return w, ok }
func (e *fakeEnv) NextInternal(typ air.Type) *air.Internal {
	e.next++
	return &air.Internal{ID: e.next, Typ: typ}
}
func (e *fakeEnv) Record(v lir.Value, w air.Variable) { e.vals[v] = w }
func (e *fakeEnv) SizeType() *air.IntegerType         { return e.size }

// newTestTranslator wires a Translator against a fresh function body fn,
// the way internal/funcxlat does for real, minus the per-block
// orchestration this package's own tests don't need.
func newTestTranslator(fn *ir.Func, env *fakeEnv) *Translator {
	ti := collab.NewStructuralTypeImporter()
	ci := collab.NewBasicConstantImporter(ti)
	bundle := collab.NewBundleImporterLite(ti)
	layout := collab.NewNaiveDataLayout()
	ui := typeinfer.BuildUseIndex(fn, nil)
	inf := typeinfer.New(ti, collab.NoDebugInfo{}, bundle, ui, env, false)
	values := valuexlat.New(ci, ti, env, env)
	return New(ti, ci, bundle, layout, inf, values, env)
}

func newBT() *blockxlat.BlockTranslation {
	return blockxlat.New(nil, &air.Code{})
}

func TestTranslateAllocaEmitsAllocateWithDefaultCountOne(t *testing.T) {
	block := ir.NewBlock("entry")
	alloca := block.NewAlloca(types.I32)
	fn := &ir.Func{}
	fn.Blocks = []*ir.Block{block}

	env := newFakeEnv()
	tx := newTestTranslator(fn, env)
	bt := newBT()

	if err := tx.TranslateInstruction(bt, alloca); err != nil {
		t.Fatalf("TranslateInstruction: %v", err)
	}
	if len(bt.Main.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(bt.Main.Statements))
	}
	stmt, ok := bt.Main.Statements[0].(*air.Allocate)
	if !ok {
		t.Fatalf("expected an Allocate, got %T", bt.Main.Statements[0])
	}
	c, ok := air.AsConstant(stmt.Count)
	if !ok || c.Value != int64(1) {
		t.Fatalf("expected default count of 1, got %v", stmt.Count)
	}
	if _, ok := env.Lookup(alloca); !ok {
		t.Fatal("expected alloca's result to be recorded")
	}
}

func TestTranslateStoreAndLoadRoundTrip(t *testing.T) {
	block := ir.NewBlock("entry")
	alloca := block.NewAlloca(types.I32)
	store := block.NewStore(ir.NewInt(types.I32, 7), alloca)
	load := block.NewLoad(types.I32, alloca)
	fn := &ir.Func{}
	fn.Blocks = []*ir.Block{block}

	env := newFakeEnv()
	tx := newTestTranslator(fn, env)
	bt := newBT()

	if err := tx.TranslateInstruction(bt, alloca); err != nil {
		t.Fatalf("alloca: %v", err)
	}
	if err := tx.TranslateInstruction(bt, store); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := tx.TranslateInstruction(bt, load); err != nil {
		t.Fatalf("load: %v", err)
	}

	var sawStore, sawLoad bool
	for _, s := range bt.Main.Statements {
		switch s.(type) {
		case *air.Store:
			sawStore = true
		case *air.Load:
			sawLoad = true
		}
	}
	if !sawStore || !sawLoad {
		t.Fatalf("expected a Store and a Load statement, got %v", bt.Main.Statements)
	}
}

func TestTranslateBitCastRejectsIntToIntBitcast(t *testing.T) {
	block := ir.NewBlock("entry")
	alloca := block.NewAlloca(types.I32)
	load := block.NewLoad(types.I32, alloca)
	cast := block.NewBitCast(load, types.I64)
	fn := &ir.Func{}
	fn.Blocks = []*ir.Block{block}

	env := newFakeEnv()
	tx := newTestTranslator(fn, env)
	bt := newBT()
	if err := tx.TranslateInstruction(bt, alloca); err != nil {
		t.Fatalf("alloca: %v", err)
	}
	if err := tx.TranslateInstruction(bt, load); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := tx.TranslateInstruction(bt, cast); err == nil {
		t.Fatal("expected an error bitcasting int32 to int64")
	}
}

func TestTranslateBitCastAllowsPointerToPointer(t *testing.T) {
	block := ir.NewBlock("entry")
	alloca := block.NewAlloca(types.I32)
	cast := block.NewBitCast(alloca, types.NewPointer(types.I8))
	fn := &ir.Func{}
	fn.Blocks = []*ir.Block{block}

	env := newFakeEnv()
	tx := newTestTranslator(fn, env)
	bt := newBT()
	if err := tx.TranslateInstruction(bt, alloca); err != nil {
		t.Fatalf("alloca: %v", err)
	}
	if err := tx.TranslateInstruction(bt, cast); err != nil {
		t.Fatalf("TranslateInstruction(bitcast): %v", err)
	}
	if _, ok := env.Lookup(cast); !ok {
		t.Fatal("expected bitcast result to be recorded")
	}
}

func TestTranslateAddEmitsSignedOpFromNSW(t *testing.T) {
	block := ir.NewBlock("entry")
	alloca := block.NewAlloca(types.I32)
	load := block.NewLoad(types.I32, alloca)
	add := block.NewAdd(load, load)
	add.OverflowFlags = []enum.OverflowFlag{enum.OverflowFlagNSW}
	fn := &ir.Func{}
	fn.Blocks = []*ir.Block{block}

	env := newFakeEnv()
	tx := newTestTranslator(fn, env)
	bt := newBT()
	if err := tx.TranslateInstruction(bt, alloca); err != nil {
		t.Fatalf("alloca: %v", err)
	}
	if err := tx.TranslateInstruction(bt, load); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := tx.TranslateInstruction(bt, add); err != nil {
		t.Fatalf("add: %v", err)
	}

	var found *air.BinaryOperation
	for _, s := range bt.Main.Statements {
		if b, ok := s.(*air.BinaryOperation); ok {
			found = b
		}
	}
	if found == nil {
		t.Fatal("expected a BinaryOperation statement")
	}
	if found.Op != air.OpAddS {
		t.Fatalf("expected OpAddS from nsw, got %v", found.Op)
	}
	if !found.NoWrap {
		t.Fatal("expected NoWrap to be set")
	}
}

func TestTranslateICmpAddsComparisonFanOut(t *testing.T) {
	block := ir.NewBlock("entry")
	alloca := block.NewAlloca(types.I32)
	load := block.NewLoad(types.I32, alloca)
	cmp := block.NewICmp(enum.IPredSLT, load, load)
	fn := &ir.Func{}
	fn.Blocks = []*ir.Block{block}

	env := newFakeEnv()
	tx := newTestTranslator(fn, env)
	bt := newBT()
	if err := tx.TranslateInstruction(bt, alloca); err != nil {
		t.Fatalf("alloca: %v", err)
	}
	if err := tx.TranslateInstruction(bt, load); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := tx.TranslateInstruction(bt, cmp); err != nil {
		t.Fatalf("icmp: %v", err)
	}
	if len(bt.Outputs()) != 2 {
		t.Fatalf("expected icmp to fan out into 2 outputs, got %d", len(bt.Outputs()))
	}
}

func TestTranslateUnconditionalBranchSetsSucc(t *testing.T) {
	entry := ir.NewBlock("entry")
	target := ir.NewBlock("target")
	br := entry.NewBr(target)
	fn := &ir.Func{}
	fn.Blocks = []*ir.Block{entry, target}

	env := newFakeEnv()
	tx := newTestTranslator(fn, env)
	bt := newBT()
	if err := tx.TranslateTerminator(bt, nil, br); err != nil {
		t.Fatalf("TranslateTerminator: %v", err)
	}
	if bt.Outputs()[0].Succ != target {
		t.Fatalf("expected the sole output's Succ to be target")
	}
}

func TestTranslateReturnEmitsReturnValue(t *testing.T) {
	entry := ir.NewBlock("entry")
	ret := entry.NewRet(ir.NewInt(types.I32, 42))
	fn := &ir.Func{}
	fn.Blocks = []*ir.Block{entry}

	env := newFakeEnv()
	tx := newTestTranslator(fn, env)
	bt := newBT()
	retType := &air.IntegerType{Bits: 32, Signed: true}
	if err := tx.TranslateTerminator(bt, retType, ret); err != nil {
		t.Fatalf("TranslateTerminator: %v", err)
	}
	if len(bt.Main.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(bt.Main.Statements))
	}
	rv, ok := bt.Main.Statements[0].(*air.ReturnValue)
	if !ok {
		t.Fatalf("expected a ReturnValue, got %T", bt.Main.Statements[0])
	}
	if rv.Value == nil {
		t.Fatal("expected a non-nil return value")
	}
}

func TestTranslateSwitchIsRejected(t *testing.T) {
	entry := ir.NewBlock("entry")
	fn := &ir.Func{}
	fn.Blocks = []*ir.Block{entry}
	env := newFakeEnv()
	tx := newTestTranslator(fn, env)
	bt := newBT()
	sw := &ir.TermSwitch{}
	if err := tx.TranslateTerminator(bt, nil, sw); err == nil {
		t.Fatal("expected switch to be rejected")
	}
}
