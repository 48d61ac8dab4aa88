package blockxlat

import (
	"testing"

	"github.com/vaioco/ikos/internal/air"
)

func i1() air.Type { return &air.IntegerType{Bits: 1, Signed: false} }

func TestNewStartsWithSingleMainOutput(t *testing.T) {
	code := &air.Code{}
	bt := New(nil, code)
	if len(bt.Outputs()) != 1 || bt.Outputs()[0].Block != bt.Main {
		t.Fatalf("expected a single output equal to Main")
	}
}

func TestAddStatementClonesAcrossFanout(t *testing.T) {
	code := &air.Code{}
	bt := New(nil, code)
	result := &air.Internal{ID: 1, Typ: i1()}
	if err := bt.AddComparison(result, &air.Comparison{Pred: air.PredIntEQ, LHS: result, RHS: result}); err != nil {
		t.Fatalf("AddComparison: %v", err)
	}
	if len(bt.Outputs()) != 2 {
		t.Fatalf("expected 2 outputs after one comparison fan-out, got %d", len(bt.Outputs()))
	}
	bt.AddStatement(&air.Unreachable{})
	for _, o := range bt.Outputs() {
		last := o.Block.Statements[len(o.Block.Statements)-1]
		if _, ok := last.(*air.Unreachable); !ok {
			t.Fatalf("expected a cloned Unreachable in every output, got %T", last)
		}
	}
}

func TestAddComparisonDoublesOutputsWithInversePredicate(t *testing.T) {
	code := &air.Code{}
	bt := New(nil, code)
	result := &air.Internal{ID: 1, Typ: i1()}
	cmp := &air.Comparison{Pred: air.PredIntSLT, LHS: result, RHS: result}
	if err := bt.AddComparison(result, cmp); err != nil {
		t.Fatalf("AddComparison: %v", err)
	}
	outs := bt.Outputs()
	if len(outs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(outs))
	}
	trueCmp := outs[0].Block.Statements[0].(*air.Comparison)
	falseCmp := outs[1].Block.Statements[0].(*air.Comparison)
	if trueCmp.Pred != air.PredIntSLT {
		t.Fatalf("expected true child to keep the original predicate, got %v", trueCmp.Pred)
	}
	if falseCmp.Pred != air.PredIntSLT.Inverse() {
		t.Fatalf("expected false child to hold the inverse predicate, got %v", falseCmp.Pred)
	}
}

func TestMergeOutputsCollapsesFanoutToOne(t *testing.T) {
	code := &air.Code{}
	bt := New(nil, code)
	result := &air.Internal{ID: 1, Typ: i1()}
	if err := bt.AddComparison(result, &air.Comparison{Pred: air.PredIntEQ, LHS: result, RHS: result}); err != nil {
		t.Fatalf("AddComparison: %v", err)
	}
	if err := bt.MergeOutputs(); err != nil {
		t.Fatalf("MergeOutputs: %v", err)
	}
	if len(bt.Outputs()) != 1 {
		t.Fatalf("expected merge to collapse to a single output, got %d", len(bt.Outputs()))
	}
	merged := bt.Outputs()[0].Block
	if len(merged.Predecessors) != 2 {
		t.Fatalf("expected the merge block to have 2 predecessors, got %d", len(merged.Predecessors))
	}
}

func TestInputBasicBlockIsIdempotent(t *testing.T) {
	code := &air.Code{}
	bt := New(nil, code)
	a := bt.InputBasicBlock(nil)
	b := bt.InputBasicBlock(nil)
	if a != b {
		t.Fatal("expected InputBasicBlock to return the same block for the same predecessor")
	}
	if len(a.Successors) != 1 || a.Successors[0] != bt.Main {
		t.Fatal("expected the input block to have a single edge into Main")
	}
}

func TestMarkExitRequiresSingleOutput(t *testing.T) {
	code := &air.Code{}
	bt := New(nil, code)
	result := &air.Internal{ID: 1, Typ: i1()}
	if err := bt.AddComparison(result, &air.Comparison{Pred: air.PredIntEQ, LHS: result, RHS: result}); err != nil {
		t.Fatalf("AddComparison: %v", err)
	}
	if err := bt.MarkExit(); err == nil {
		t.Fatal("expected MarkExit to reject a 2-output block")
	}
}

func TestAddConditionalBranchingFusedCaseDropsAssignmentWhenSingleUse(t *testing.T) {
	code := &air.Code{}
	bt := New(nil, code)
	cond := &air.Internal{ID: 1, Typ: i1()}
	bt.AddStatement(&air.Assignment{Result: cond, Value: &air.Constant{Typ: i1(), Value: int64(1)}})

	if err := bt.AddConditionalBranching(cond, nil, nil, true); err != nil {
		t.Fatalf("AddConditionalBranching: %v", err)
	}
	outs := bt.Outputs()
	if len(outs) != 1 {
		t.Fatalf("fused case must not change the output count, got %d", len(outs))
	}
	if len(outs[0].Block.Statements) != 0 {
		t.Fatalf("expected the redundant assignment to be dropped, got %d statements", len(outs[0].Block.Statements))
	}
}
