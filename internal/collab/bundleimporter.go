package collab

import (
	"strings"

	"github.com/llir/llvm/ir"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/irerrors"
	"github.com/vaioco/ikos/internal/lir"
)

// ignoredIntrinsicCallees are intrinsics neither the hint/inference tables
// nor the instruction translator's call-lowering rule need to see: debug
// intrinsics and pure optimizer hints that carry no observable effect for
// this translator's purposes (spec.md §4.E's "Non-goals: optimization").
var ignoredIntrinsicCallees = []string{
	"llvm.dbg.",
	"llvm.lifetime.start",
	"llvm.lifetime.end",
	"llvm.assume",
	"llvm.donothing",
	"llvm.prefetch",
	"llvm.expect",
}

// BundleImporterLite is spec.md §6's BundleImporter collaborator, reduced
// to what the function translator actually calls during a single-function
// translation: resolving a callee's already-known signature, translating a
// referenced global's type, and classifying ignorable intrinsics. A real
// BundleImporter additionally owns whole-module construction (deduplicating
// struct types across functions, resolving forward references between
// functions); both are out of this translator's scope (spec.md §1).
type BundleImporterLite struct {
	Types TypeImporter
}

func NewBundleImporterLite(types TypeImporter) *BundleImporterLite {
	return &BundleImporterLite{Types: types}
}

func (bi *BundleImporterLite) TranslateFunction(f *lir.Function) (*FunctionSignature, error) {
	fn := f
	if fn == nil {
		return nil, irerrors.New("translate_function: nil function value")
	}
	sig := fn.Sig
	if sig == nil {
		return nil, irerrors.New("translate_function: %s has no signature", fn.Name())
	}
	params := make([]air.Type, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = bi.Types.TranslateType(p, true)
	}
	return &FunctionSignature{
		Name:               fn.Name(),
		ParamTypes:         params,
		Variadic:           sig.Variadic,
		ReturnType:         bi.Types.TranslateType(sig.RetType, true),
		HasDebugSubprogram: false,
	}, nil
}

func (bi *BundleImporterLite) TranslateGlobalVariable(g *lir.Value) (*air.GlobalRef, error) {
	if g == nil {
		return nil, irerrors.New("translate_global_variable: nil value")
	}
	global, ok := (*g).(*ir.Global)
	if !ok {
		return nil, irerrors.New("translate_global_variable: not a global value")
	}
	return &air.GlobalRef{
		Name: global.Name(),
		Typ:  &air.PointerType{Pointee: bi.Types.TranslateType(global.ContentType, true)},
	}, nil
}

func (bi *BundleImporterLite) IgnoreIntrinsic(name string) bool {
	for _, prefix := range ignoredIntrinsicCallees {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
