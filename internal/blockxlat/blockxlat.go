// Package blockxlat implements spec.md §4.D's BlockTranslation: the
// fan-out/fan-in state machine that lowers one LIR basic block's
// side-effectful predicates, calls, and branches into the handful of AIR
// blocks that together replace it, while avoiding the diamond-shaped joins
// that would cost an abstract interpreter precision.
package blockxlat

import (
	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/irerrors"
	"github.com/vaioco/ikos/internal/lir"
)

// Output is one (block, LIR-successor) pair from spec.md §4.D's outputs
// list. Succ is nil until a branching operation assigns it; it stays nil
// forever for an output finalized by a role mark (exit/unreachable/
// ehresume), which is the only legal state a role mark may close over.
type Output struct {
	Block *air.BasicBlock
	Succ  *lir.Block
}

// BlockTranslation owns the translation state for exactly one LIR block.
type BlockTranslation struct {
	LIRBlock *lir.Block
	Main     *air.BasicBlock

	outputs   []Output
	inputs    map[*lir.Block]*air.BasicBlock
	internals []*air.BasicBlock

	code *air.Code
}

// New starts a fresh BlockTranslation for lirBlock: main is allocated
// immediately and is the sole initial output (spec.md §4.D: "Initially
// [(main, null)]").
func New(lirBlock *lir.Block, code *air.Code) *BlockTranslation {
	main := code.NewBlock()
	return &BlockTranslation{
		LIRBlock: lirBlock,
		Main:     main,
		outputs:  []Output{{Block: main}},
		inputs:   make(map[*lir.Block]*air.BasicBlock),
		code:     code,
	}
}

// Outputs returns the currently open outputs, for the function translator's
// final successor-linking pass (spec.md §4.F).
func (bt *BlockTranslation) Outputs() []Output { return bt.outputs }

// SetOutputSucc is used only by the function translator's final linking
// pass to clear Succ after wiring the real AIR edge, keeping Outputs()
// idempotent across multiple reads.
func (bt *BlockTranslation) SetOutputSucc(i int, succ *lir.Block) { bt.outputs[i].Succ = succ }

// AddStatement is spec.md §4.D.1: appended verbatim if there is one open
// output, deep-cloned into each output otherwise.
func (bt *BlockTranslation) AddStatement(s air.Statement) {
	if len(bt.outputs) == 1 {
		bt.outputs[0].Block.Append(s)
		return
	}
	for _, o := range bt.outputs {
		o.Block.Append(s.Clone())
	}
}

// MergeOutputs is spec.md §4.D.2.
func (bt *BlockTranslation) MergeOutputs() error {
	if len(bt.outputs) <= 1 {
		return nil
	}
	d := bt.code.NewBlock()
	for _, o := range bt.outputs {
		if o.Succ != nil {
			return irerrors.New("merge_outputs: output already has a successor assigned")
		}
		o.Block.AddSuccessor(d)
		bt.internals = append(bt.internals, o.Block)
	}
	bt.outputs = []Output{{Block: d}}
	return nil
}

// boolConst builds the true/false constant spec.md §4.D.3's add_comparison
// assigns into the materialized comparison result.
func boolConst(typ air.Type, v bool) *air.Constant {
	n := int64(0)
	if v {
		n = 1
	}
	return &air.Constant{Typ: typ, Value: n}
}

// AddComparison is spec.md §4.D.3: every open output is closed by spawning
// a true child (cmp, result := true) and a false child (cmp.Inverse(),
// result := false); the parent moves to internals.
func (bt *BlockTranslation) AddComparison(result air.Variable, cmp *air.Comparison) error {
	old := bt.outputs
	next := make([]Output, 0, len(old)*2)
	for _, o := range old {
		if o.Succ != nil {
			return irerrors.New("add_comparison: output already has a successor assigned")
		}
		trueChild := bt.code.NewBlock()
		falseChild := bt.code.NewBlock()

		trueChild.Append(cloneComparison(cmp))
		trueChild.Append(&air.Assignment{Result: result, Value: boolConst(result.Type(), true)})

		inv := cloneComparison(cmp)
		inv.Pred = inv.Pred.Inverse()
		falseChild.Append(inv)
		falseChild.Append(&air.Assignment{Result: result, Value: boolConst(result.Type(), false)})

		o.Block.AddSuccessor(trueChild)
		o.Block.AddSuccessor(falseChild)
		bt.internals = append(bt.internals, o.Block)

		next = append(next, Output{Block: trueChild}, Output{Block: falseChild})
	}
	bt.outputs = next
	return nil
}

func cloneComparison(cmp *air.Comparison) *air.Comparison {
	c := *cmp
	return &c
}

// AddUnconditionalBranching is spec.md §4.D.4.
func (bt *BlockTranslation) AddUnconditionalBranching(succ *lir.Block) {
	for i := range bt.outputs {
		bt.outputs[i].Succ = succ
	}
}

// condAssignment reports whether the last statement of b is an Assignment
// of a boolean constant to condVar — the "fused case" spec.md §4.D.5 looks
// for.
func condAssignment(b *air.BasicBlock, condVar air.Variable) (value bool, ok bool) {
	if len(b.Statements) == 0 {
		return false, false
	}
	asn, ok := b.Statements[len(b.Statements)-1].(*air.Assignment)
	if !ok || asn.Result != condVar {
		return false, false
	}
	c, ok := air.AsConstant(asn.Value)
	if !ok {
		return false, false
	}
	n, ok := c.Value.(int64)
	if !ok {
		return false, false
	}
	return n != 0, true
}

// AddConditionalBranching is spec.md §4.D.5.
func (bt *BlockTranslation) AddConditionalBranching(condVar air.Variable, trueLIR, falseLIR *lir.Block, condSingleUse bool) error {
	fused := true
	for _, o := range bt.outputs {
		if _, ok := condAssignment(o.Block, condVar); !ok {
			fused = false
			break
		}
	}
	if fused {
		for i, o := range bt.outputs {
			v, _ := condAssignment(o.Block, condVar)
			if condSingleUse {
				o.Block.Statements = o.Block.Statements[:len(o.Block.Statements)-1]
			}
			if v {
				bt.outputs[i].Succ = trueLIR
			} else {
				bt.outputs[i].Succ = falseLIR
			}
		}
		return nil
	}

	old := bt.outputs
	next := make([]Output, 0, len(old)*2)
	for _, o := range old {
		if o.Succ != nil {
			return irerrors.New("add_conditional_branching: output already has a successor assigned")
		}
		trueChild := bt.code.NewBlock()
		falseChild := bt.code.NewBlock()
		if !condSingleUse {
			trueChild.Append(&air.Comparison{Pred: air.PredIntEQ, LHS: condVar, RHS: boolConst(condVar.Type(), true)})
			falseChild.Append(&air.Comparison{Pred: air.PredIntEQ, LHS: condVar, RHS: boolConst(condVar.Type(), false)})
		}
		o.Block.AddSuccessor(trueChild)
		o.Block.AddSuccessor(falseChild)
		bt.internals = append(bt.internals, o.Block)

		next = append(next, Output{Block: trueChild, Succ: trueLIR}, Output{Block: falseChild, Succ: falseLIR})
	}
	bt.outputs = next
	return nil
}

// AddInvokeBranching is spec.md §4.D.6: each output's last statement must
// be the just-emitted Invoke; its NormalDest/ExceptDest fields are
// back-patched to the two fresh children.
func (bt *BlockTranslation) AddInvokeBranching(normalLIR, exceptLIR *lir.Block) error {
	old := bt.outputs
	next := make([]Output, 0, len(old)*2)
	for _, o := range old {
		if len(o.Block.Statements) == 0 {
			return irerrors.New("add_invoke_branching: output has no statements")
		}
		inv, ok := o.Block.Statements[len(o.Block.Statements)-1].(*air.Invoke)
		if !ok {
			return irerrors.New("add_invoke_branching: output's last statement is not an Invoke")
		}
		normalChild := bt.code.NewBlock()
		exceptChild := bt.code.NewBlock()
		inv.NormalDest = normalChild
		inv.ExceptDest = exceptChild

		o.Block.AddSuccessor(normalChild)
		o.Block.AddSuccessor(exceptChild)
		bt.internals = append(bt.internals, o.Block)

		next = append(next, Output{Block: normalChild, Succ: normalLIR}, Output{Block: exceptChild, Succ: exceptLIR})
	}
	bt.outputs = next
	return nil
}

// InputBasicBlock is spec.md §4.D.7: idempotently returns the PHI landing
// pad for pred, creating it (and its single edge into Main) on first call.
func (bt *BlockTranslation) InputBasicBlock(pred *lir.Block) *air.BasicBlock {
	if b, ok := bt.inputs[pred]; ok {
		return b
	}
	b := bt.code.NewBlock()
	b.AddSuccessor(bt.Main)
	bt.inputs[pred] = b
	return b
}

// HasInputs reports whether any PHI landing pad has been created for this
// block, used by the function translator to choose between routing a
// successor edge at Main or at a pred-specific input block (spec.md §4.D
// invariant).
func (bt *BlockTranslation) HasInputs() bool { return len(bt.inputs) > 0 }

func (bt *BlockTranslation) markRole(set func(b *air.BasicBlock)) error {
	if len(bt.outputs) != 1 {
		return irerrors.New("role mark requires exactly one open output, has %d", len(bt.outputs))
	}
	set(bt.outputs[0].Block)
	return nil
}

// MarkExit, MarkUnreachable and MarkEHResume are spec.md §4.D.8's role
// marks.
func (bt *BlockTranslation) MarkExit() error {
	return bt.markRole(func(b *air.BasicBlock) { bt.code.Exit = b })
}

func (bt *BlockTranslation) MarkUnreachable() error {
	return bt.markRole(func(b *air.BasicBlock) { bt.code.Unreachable = b })
}

func (bt *BlockTranslation) MarkEHResume() error {
	return bt.markRole(func(b *air.BasicBlock) { bt.code.EHResume = b })
}
