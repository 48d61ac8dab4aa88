// Package main is ikos-translate: a thin driver that parses one LLVM IR
// file via github.com/llir/llvm, runs every defined function through the
// function translator, and prints the resulting AIR.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/llir/llvm/asm"
	llir "github.com/llir/llvm/ir"

	"github.com/vaioco/ikos/internal/air"
	"github.com/vaioco/ikos/internal/collab"
	"github.com/vaioco/ikos/internal/funcxlat"
	"github.com/vaioco/ikos/internal/irerrors"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: ikos-translate <file.ll>")
		os.Exit(1)
	}
	path := os.Args[1]

	module, err := asm.ParseFile(path)
	if err != nil {
		color.Red("failed to parse %s: %s", path, err)
		os.Exit(1)
	}

	ti := collab.NewStructuralTypeImporter()
	ci := collab.NewBasicConstantImporter(ti)
	bundle := collab.NewBundleImporterLite(ti)
	layout := collab.NewNaiveDataLayout()
	tx := funcxlat.New(ti, ci, bundle, layout, collab.NoDebugInfo{}, false)

	failed := false
	for _, fn := range module.Funcs {
		if len(fn.Blocks) == 0 {
			continue // declaration, nothing to translate
		}
		out, err := translateOne(tx, ti, fn)
		if err != nil {
			reportError(fn.Name(), err)
			failed = true
			continue
		}
		fmt.Printf("define %s:\n%s\n", fn.Name(), air.Print(out.Code))
	}
	if failed {
		os.Exit(1)
	}
	color.Green("translated %s", path)
}

// translateOne builds the AIR Function shell (pre-created parameter slots
// and return type, per spec.md §4.F's translate_body contract) and runs it
// through the function translator.
func translateOne(tx *funcxlat.Translator, ti collab.TypeImporter, fn *llir.Func) (*air.Function, error) {
	params := make([]*air.Parameter, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = &air.Parameter{Index: i, Name: p.Name(), Typ: ti.TranslateType(p.Typ, true)}
	}
	out := &air.Function{
		Name:       fn.Name(),
		Params:     params,
		ReturnType: ti.TranslateType(fn.Sig.RetType, true),
	}
	if _, err := tx.TranslateBody(out, fn); err != nil {
		return nil, err
	}
	return out, nil
}

func reportError(funcName string, err error) {
	if ie, ok := err.(*irerrors.ImportError); ok {
		color.Red("function %s: %s", funcName, ie.Error())
		return
	}
	color.Red("function %s: %s", funcName, err)
}
