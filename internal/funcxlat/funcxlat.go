// Package funcxlat implements spec.md §4.F: the Function Translator that
// orchestrates every other component (TypeHint algebra, type/sign
// inference, value translation, block translation, instruction
// translation) over one LIR function body to produce its AIR Code.
package funcxlat

import (
	"github.com/llir/llvm/ir"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/blockxlat"
	"github.com/vaioco/ikos/internal/collab"
	"github.com/vaioco/ikos/internal/instrxlat"
	"github.com/vaioco/ikos/internal/irerrors"
	"github.com/vaioco/ikos/internal/lir"
	"github.com/vaioco/ikos/internal/typeinfer"
	"github.com/vaioco/ikos/internal/valuexlat"
)

// Translator holds the external collaborators (spec.md §6) a whole module
// load shares across every function it translates.
type Translator struct {
	Types     collab.TypeImporter
	Constants collab.ConstantImporter
	Bundle    collab.BundleImporter
	Layout    collab.DataLayout
	Debug     collab.DebugInfo
	Strict    bool
}

func New(types collab.TypeImporter, constants collab.ConstantImporter, bundle collab.BundleImporter, layout collab.DataLayout, debug collab.DebugInfo, strict bool) *Translator {
	return &Translator{Types: types, Constants: constants, Bundle: bundle, Layout: layout, Debug: debug, Strict: strict}
}

// TranslateBody is spec.md §4.F's translate_body. fn's Params must already
// be populated (the bundle importer's job, out of this translator's
// scope); this call fills in fn.Code and returns it.
func (tx *Translator) TranslateBody(fn *air.Function, llvmFn *lir.Function) (*air.Code, error) {
	if len(llvmFn.Blocks) == 0 {
		return nil, irerrors.New("funcxlat: function %q has no blocks", llvmFn.Name())
	}
	fn.Code = &air.Code{}

	state := newFuncState(tx.Layout)
	if err := tx.bindParameters(fn, llvmFn, state); err != nil {
		return nil, err
	}

	roles, err := markSpecialBlocks(fn.Name, llvmFn.Blocks)
	if err != nil {
		return nil, err
	}

	ui := typeinfer.BuildUseIndex(llvmFn, fn.ReturnType)
	infer := typeinfer.New(tx.Types, tx.Debug, tx.Bundle, ui, state, tx.Strict)
	values := valuexlat.New(tx.Constants, tx.Types, state, state)
	instrTx := instrxlat.New(tx.Types, tx.Constants, tx.Bundle, tx.Layout, infer, values, state)

	entry := llvmFn.Blocks[0]
	translations, err := tx.bfsTranslateBlocks(fn, instrTx, roles, entry)
	if err != nil {
		return nil, err
	}
	fn.Code.Entry = translations[entry].Main

	if err := tx.wirePhis(llvmFn, instrTx, translations); err != nil {
		return nil, err
	}
	linkSuccessors(translations)

	return fn.Code, nil
}

// bindParameters is spec.md §4.F step 2: zip LIR parameters with AIR's
// pre-created parameter slots.
func (tx *Translator) bindParameters(fn *air.Function, llvmFn *lir.Function, state *funcState) error {
	if len(llvmFn.Params) != len(fn.Params) {
		return irerrors.New("funcxlat: function %q has %d LIR parameters but %d AIR parameter slots", llvmFn.Name(), len(llvmFn.Params), len(fn.Params))
	}
	for i, p := range llvmFn.Params {
		state.Record(p, fn.Params[i])
	}
	return nil
}

// specialKind classifies a block's terminator for spec.md §4.F step 1's
// "at most one return/unreachable/ehresume block" invariant.
type specialKind int

const (
	specialNone specialKind = iota
	specialReturn
	specialUnreachable
	specialEHResume
)

func classifyTerminator(term lir.Terminator) specialKind {
	switch term.(type) {
	case *ir.TermRet:
		return specialReturn
	case *ir.TermUnreachable:
		return specialUnreachable
	case *ir.TermResume:
		return specialEHResume
	default:
		return specialNone
	}
}

// markSpecialBlocks is the literal spec.md §4.F step 1 pass: a single walk
// over every LIR block (reachable or not) classifying its terminator and
// enforcing the "at most one of each" invariant, before any translation
// happens. The per-block role it returns is consulted by bfsTranslateBlocks
// to know which BlockTranslation to call the matching role mark on.
func markSpecialBlocks(funcName string, blocks []*lir.Block) (map[*lir.Block]specialKind, error) {
	roles := make(map[*lir.Block]specialKind, len(blocks))
	var seenReturn, seenUnreachable, seenEHResume bool
	for _, b := range blocks {
		kind := classifyTerminator(b.Term)
		roles[b] = kind
		switch kind {
		case specialReturn:
			if seenReturn {
				return nil, irerrors.New("funcxlat: function %q has more than one return block; recommend a merge-return pass", funcName)
			}
			seenReturn = true
		case specialUnreachable:
			if seenUnreachable {
				return nil, irerrors.New("funcxlat: function %q has more than one unreachable block; recommend a merge-return pass", funcName)
			}
			seenUnreachable = true
		case specialEHResume:
			if seenEHResume {
				return nil, irerrors.New("funcxlat: function %q has more than one ehresume block; recommend a merge-return pass", funcName)
			}
			seenEHResume = true
		}
	}
	return roles, nil
}

func successorsOf(term lir.Terminator) []*lir.Block {
	switch t := term.(type) {
	case *ir.TermBr:
		return []*lir.Block{t.Target}
	case *ir.TermCondBr:
		return []*lir.Block{t.TargetTrue, t.TargetFalse}
	case *ir.TermInvoke:
		return []*lir.Block{t.Normal, t.Exception}
	default:
		return nil
	}
}

// bfsTranslateBlocks is spec.md §4.F step 3: worklist-driven translation
// seeded with entry, guaranteeing every LIR value is translated before any
// non-PHI use. roles (from markSpecialBlocks) drives which BlockTranslation
// gets which role mark once its own translation is complete.
func (tx *Translator) bfsTranslateBlocks(fn *air.Function, instrTx *instrxlat.Translator, roles map[*lir.Block]specialKind, entry *lir.Block) (map[*lir.Block]*blockxlat.BlockTranslation, error) {
	translations := make(map[*lir.Block]*blockxlat.BlockTranslation)
	visited := make(map[*lir.Block]bool)
	worklist := []*lir.Block{entry}

	for len(worklist) > 0 {
		b := worklist[0]
		worklist = worklist[1:]
		if visited[b] {
			continue
		}
		visited[b] = true

		bt := blockxlat.New(b, fn.Code)
		translations[b] = bt

		for _, inst := range b.Insts {
			if err := instrTx.TranslateInstruction(bt, inst); err != nil {
				return nil, err
			}
		}
		if err := instrTx.TranslateTerminator(bt, fn.ReturnType, b.Term); err != nil {
			return nil, err
		}

		switch roles[b] {
		case specialReturn:
			if err := bt.MarkExit(); err != nil {
				return nil, err
			}
		case specialUnreachable:
			if err := bt.MarkUnreachable(); err != nil {
				return nil, err
			}
		case specialEHResume:
			if err := bt.MarkEHResume(); err != nil {
				return nil, err
			}
		}

		for _, succ := range successorsOf(b.Term) {
			if !visited[succ] {
				worklist = append(worklist, succ)
			}
		}
	}
	return translations, nil
}

// wirePhis is spec.md §4.F step 4: deferred PHI wiring, run after every
// block has had its first pass, iterating in LIR's native block/instruction
// order for deterministic output (spec.md §5).
func (tx *Translator) wirePhis(llvmFn *lir.Function, instrTx *instrxlat.Translator, translations map[*lir.Block]*blockxlat.BlockTranslation) error {
	for _, b := range llvmFn.Blocks {
		bt, ok := translations[b]
		if !ok {
			continue // unreachable block, never visited by the BFS
		}
		for _, inst := range b.Insts {
			phi, ok := inst.(*ir.InstPhi)
			if !ok {
				continue
			}
			if err := instrTx.TranslatePhiSecondPass(bt, phi); err != nil {
				return err
			}
		}
	}
	return nil
}

// linkSuccessors is spec.md §4.F step 5: every open output with a LIR
// successor gets exactly one AIR successor edge, routed at the successor's
// pred-specific input landing block when one exists, else at its main.
func linkSuccessors(translations map[*lir.Block]*blockxlat.BlockTranslation) {
	for lirBlock, bt := range translations {
		for i, out := range bt.Outputs() {
			if out.Succ == nil {
				continue
			}
			succBT := translations[out.Succ]
			target := succBT.Main
			if succBT.HasInputs() {
				target = succBT.InputBasicBlock(lirBlock)
			}
			out.Block.AddSuccessor(target)
			bt.SetOutputSucc(i, nil)
		}
	}
}
