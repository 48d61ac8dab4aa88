// Package instrxlat implements spec.md §4.E: the per-opcode rules that turn
// one LIR instruction or terminator into the AIR statements appended to a
// BlockTranslation's current outputs.
package instrxlat

import (
	"github.com/llir/llvm/ir"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/blockxlat"
	"github.com/vaioco/ikos/internal/collab"
	"github.com/vaioco/ikos/internal/irerrors"
	"github.com/vaioco/ikos/internal/lir"
	"github.com/vaioco/ikos/internal/typeinfer"
	"github.com/vaioco/ikos/internal/valuexlat"
)

// Env is the per-function mutable state the instruction translator reads
// and writes: the growing LIR-value -> AIR-variable map, fresh internal-id
// minting, and the platform's pointer-sized integer type (spec.md §4.E's
// "size type", used by Alloca's array-size cast and GEP's index terms).
type Env interface {
	Lookup(v lir.Value) (air.Variable, bool)
	NextInternal(typ air.Type) *air.Internal
	Record(v lir.Value, w air.Variable)
	SizeType() *air.IntegerType
}

// Translator is spec.md §4.E's Instruction Translator.
type Translator struct {
	Types     collab.TypeImporter
	Constants collab.ConstantImporter
	Bundle    collab.BundleImporter
	Layout    collab.DataLayout
	Infer     *typeinfer.Inferencer
	Values    *valuexlat.Translator
	Env       Env
}

func New(types collab.TypeImporter, constants collab.ConstantImporter, bundle collab.BundleImporter, layout collab.DataLayout, infer *typeinfer.Inferencer, values *valuexlat.Translator, env Env) *Translator {
	return &Translator{Types: types, Constants: constants, Bundle: bundle, Layout: layout, Infer: infer, Values: values, Env: env}
}

// isComparisonBinopOrBranch reports whether inst is one of the three
// statement kinds the pre-rule exempts from forcing a merge (spec.md
// §4.E's "Pre-rule").
func isComparisonBinopOrBranch(inst lir.Value) bool {
	switch inst.(type) {
	case *ir.InstICmp, *ir.InstFCmp,
		*ir.InstAdd, *ir.InstSub, *ir.InstMul,
		*ir.InstUDiv, *ir.InstSDiv, *ir.InstURem, *ir.InstSRem,
		*ir.InstShl, *ir.InstLShr, *ir.InstAShr,
		*ir.InstAnd, *ir.InstOr, *ir.InstXor,
		*ir.InstFAdd, *ir.InstFSub, *ir.InstFMul, *ir.InstFDiv, *ir.InstFRem,
		*ir.TermBr, *ir.TermCondBr:
		return true
	default:
		return false
	}
}

// TranslateInstruction dispatches one non-terminator LIR instruction,
// applying the pre-rule merge first when required.
func (tx *Translator) TranslateInstruction(bt *blockxlat.BlockTranslation, inst lir.Instruction) error {
	if len(bt.Outputs()) > 1 && !isComparisonBinopOrBranch(inst) {
		if err := bt.MergeOutputs(); err != nil {
			return err
		}
	}
	switch in := inst.(type) {
	case *ir.InstAlloca:
		return tx.translateAlloca(bt, in)
	case *ir.InstStore:
		return tx.translateStore(bt, in)
	case *ir.InstLoad:
		return tx.translateLoad(bt, in)
	case *ir.InstCall:
		return tx.translateCall(bt, in)
	case *ir.InstGetElementPtr:
		return tx.translateGEP(bt, in)
	case *ir.InstBitCast:
		return tx.translateBitCast(bt, in)
	case *ir.InstTrunc, *ir.InstZExt, *ir.InstSExt, *ir.InstFPTrunc, *ir.InstFPExt,
		*ir.InstFPToUI, *ir.InstFPToSI, *ir.InstUIToFP, *ir.InstSIToFP,
		*ir.InstPtrToInt, *ir.InstIntToPtr:
		return tx.translateOtherCast(bt, in)
	case *ir.InstAddrSpaceCast:
		return irerrors.At("addrspacecast", "address-space casts are not supported")
	case *ir.InstAdd, *ir.InstSub, *ir.InstMul, *ir.InstUDiv, *ir.InstSDiv,
		*ir.InstURem, *ir.InstSRem, *ir.InstShl, *ir.InstLShr, *ir.InstAShr,
		*ir.InstAnd, *ir.InstOr, *ir.InstXor:
		return tx.translateIntegerBinOp(bt, in)
	case *ir.InstFAdd, *ir.InstFSub, *ir.InstFMul, *ir.InstFDiv, *ir.InstFRem:
		return tx.translateFloatBinOp(bt, in)
	case *ir.InstICmp:
		return tx.translateICmp(bt, in)
	case *ir.InstFCmp:
		return tx.translateFCmp(bt, in)
	case *ir.InstPhi:
		return tx.translatePhiFirstPass(bt, in)
	case *ir.InstExtractValue:
		return tx.translateExtractValue(bt, in)
	case *ir.InstInsertValue:
		return tx.translateInsertValue(bt, in)
	case *ir.InstLandingPad:
		return tx.translateLandingPad(bt, in)
	default:
		return irerrors.New("instrxlat: unsupported instruction %T", inst)
	}
}

// TranslateTerminator dispatches a LIR block's terminator (spec.md §4.E's
// Branch/Return/Invoke/Resume/Unreachable rules). A switch terminator is
// rejected with an ImportError; select is an instruction, not a terminator,
// and TranslateInstruction rejects it as unsupported.
func (tx *Translator) TranslateTerminator(bt *blockxlat.BlockTranslation, retType air.Type, term lir.Terminator) error {
	if len(bt.Outputs()) > 1 {
		switch term.(type) {
		case *ir.TermBr, *ir.TermCondBr:
		default:
			if err := bt.MergeOutputs(); err != nil {
				return err
			}
		}
	}
	switch t := term.(type) {
	case *ir.TermBr:
		bt.AddUnconditionalBranching(t.Target)
		return nil
	case *ir.TermCondBr:
		return tx.translateCondBr(bt, t)
	case *ir.TermRet:
		return tx.translateReturn(bt, retType, t)
	case *ir.TermInvoke:
		return tx.translateInvoke(bt, t)
	case *ir.TermResume:
		return tx.translateResume(bt, t)
	case *ir.TermUnreachable:
		bt.AddStatement(&air.Unreachable{})
		return nil
	case *ir.TermSwitch:
		return irerrors.At("switch", "switch must have been lowered before this translator runs")
	default:
		return irerrors.New("instrxlat: unsupported terminator %T", term)
	}
}
