package air

import (
	"strings"
	"testing"
)

func TestEqualIntegerSignDistinguishes(t *testing.T) {
	u32 := &IntegerType{Bits: 32, Signed: false}
	s32 := &IntegerType{Bits: 32, Signed: true}
	if Equal(u32, s32) {
		t.Error("ui32 and si32 must not compare equal: AIR integer types are sign-distinct")
	}
	if !Equal(u32, &IntegerType{Bits: 32, Signed: false}) {
		t.Error("two ui32 types should compare equal")
	}
}

func TestBitcastCompatible(t *testing.T) {
	u32 := &IntegerType{Bits: 32, Signed: false}
	s32 := &IntegerType{Bits: 32, Signed: true}
	s64 := &IntegerType{Bits: 64, Signed: true}
	if !BitcastCompatible(u32, s32) {
		t.Error("equal-width integers of different sign should be bitcast-compatible")
	}
	if BitcastCompatible(u32, s64) {
		t.Error("different-width integers must not be bitcast-compatible")
	}
	p1 := &PointerType{Pointee: u32}
	p2 := &PointerType{Pointee: s64}
	if !BitcastCompatible(p1, p2) {
		t.Error("any pointer-to-pointer pair should be bitcast-compatible regardless of pointee")
	}
	if BitcastCompatible(p1, u32) {
		t.Error("pointer and integer must not be bitcast-compatible")
	}
}

func TestBasicBlockAddSuccessorTracksPredecessors(t *testing.T) {
	code := &Code{}
	a := code.NewBlock()
	b := code.NewBlock()
	a.AddSuccessor(b)

	if len(a.Successors) != 1 || a.Successors[0] != b {
		t.Fatalf("expected a to have b as its sole successor")
	}
	if len(b.Predecessors) != 1 || b.Predecessors[0] != a {
		t.Fatalf("expected b to have a as its sole predecessor")
	}
	if !code.Owns(a) || !code.Owns(b) {
		t.Fatalf("code should own both blocks it created")
	}
}

func TestComparisonInverseIsInvolution(t *testing.T) {
	preds := []ComparisonPred{PredIntEQ, PredIntSGT, PredIntULE, PredPtrEQ, PredFloatOGE, PredFloatUNO}
	for _, p := range preds {
		if p.Inverse().Inverse() != p {
			t.Errorf("Inverse(Inverse(%v)) should be %v, got %v", p, p, p.Inverse().Inverse())
		}
		if p.Inverse() == p {
			t.Errorf("%v should not be its own inverse", p)
		}
	}
}

func TestInvokeCloneIsIndependent(t *testing.T) {
	i32 := &IntegerType{Bits: 32, Signed: true}
	callee := &FunctionRef{Name: "foo", Typ: &PointerType{Pointee: &FunctionType{Ret: i32}}}
	original := &Invoke{Result: &Internal{ID: 1, Typ: i32}, Callee: callee}
	clone := original.Clone().(*Invoke)

	code := &Code{}
	n1, n2 := code.NewBlock(), code.NewBlock()
	clone.NormalDest = n1
	clone.ExceptDest = n2

	if original.NormalDest != nil || original.ExceptDest != nil {
		t.Fatalf("patching the clone's destinations must not affect the original statement")
	}
}

func TestAllocateStringIncludesAlignAndCount(t *testing.T) {
	sizeT := &IntegerType{Bits: 64, Signed: false}
	a := &Allocate{
		Result:   &Local{Name: "x", Typ: &PointerType{Pointee: &IntegerType{Bits: 32, Signed: true}}},
		ElemType: &IntegerType{Bits: 32, Signed: true},
		Count:    &Constant{Typ: sizeT, Value: int64(1)},
		Align:    4,
	}
	got := a.String()
	if got == "" {
		t.Fatal("Allocate.String should not be empty")
	}
	if !strings.Contains(got, "align 4") {
		t.Errorf("Allocate.String should include the alignment, got %q", got)
	}
	if !strings.Contains(got, ", 1,") {
		t.Errorf("Allocate.String should include the count, got %q", got)
	}
}
