package air

import "fmt"

// BasicBlock owns a straight-line sequence of statements and a set of
// successor edges (spec.md §3 — "edges only, no data on edges").
type BasicBlock struct {
	id           int
	Statements   []Statement
	Successors   []*BasicBlock
	Predecessors []*BasicBlock
}

// Label names a block for diagnostics and the printer; it carries no
// semantic weight (AIR blocks are identified by pointer).
func (b *BasicBlock) Label() string { return fmt.Sprintf("bb%d", b.id) }

// Append adds one statement to the end of the block.
func (b *BasicBlock) Append(s Statement) {
	b.Statements = append(b.Statements, s)
}

// AddSuccessor records a directed edge to target, maintaining target's
// predecessor list. spec.md §8 requires every successor edge be added
// exactly once; callers (BlockTranslation, Function Translator link phase)
// are responsible for not calling this twice for the same edge.
func (b *BasicBlock) AddSuccessor(target *BasicBlock) {
	b.Successors = append(b.Successors, target)
	target.Predecessors = append(target.Predecessors, b)
}

// Terminated reports whether the block's last statement is one that ends
// control flow outright (ReturnValue, Resume, Unreachable). Calls and
// Invokes are not terminators in AIR: AIR encodes control flow purely via
// the successor set, never via a dedicated terminator slot, which is why
// Invoke's two destinations are ordinary successor edges added once
// add_invoke_branching runs.
func (b *BasicBlock) Terminated() bool {
	if len(b.Statements) == 0 {
		return false
	}
	switch b.Statements[len(b.Statements)-1].(type) {
	case *ReturnValue, *Resume, *Unreachable:
		return true
	default:
		return false
	}
}

// Function is one translation unit's target (spec.md §4.F's ar_function):
// its Params are pre-created before translate_body runs, so their identity
// stays stable regardless of how the function-local value map is built up
// during translation; Code starts empty and is populated in place.
type Function struct {
	Name       string
	Params     []*Parameter
	ReturnType Type
	Code       *Code
}

// Code is the owning container of one function's AIR (spec.md §3).
type Code struct {
	Blocks      []*BasicBlock
	Entry       *BasicBlock
	Exit        *BasicBlock
	Unreachable *BasicBlock
	EHResume    *BasicBlock

	nextBlockID int
}

// NewBlock allocates and registers a fresh block owned by this Code.
func (c *Code) NewBlock() *BasicBlock {
	b := &BasicBlock{id: c.nextBlockID}
	c.nextBlockID++
	c.Blocks = append(c.Blocks, b)
	return b
}

// Owns reports whether b belongs to this Code, used by invariant checks
// (spec.md §8: "every successor edge targets a block in the same Code").
func (c *Code) Owns(b *BasicBlock) bool {
	for _, o := range c.Blocks {
		if o == b {
			return true
		}
	}
	return false
}
