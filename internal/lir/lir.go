// Package lir re-exports the LIR (LLVM-like IR) types this translator
// consumes. spec.md §1 places LIR parsing/loading, module/bundle
// construction, and constant/type translation out of scope for the
// function translator: this module's "LIR" is, quite literally, the real
// textual LLVM IR as modeled by github.com/llir/llvm — a pure-Go, cgo-free
// representation, so the function translator never needs a system LLVM
// install to run. This file only aliases the handful of names used
// pervasively across the translator packages and adds a few small,
// opcode-classifying helpers; everything else is consumed directly from
// github.com/llir/llvm.
package lir

import (
	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

type (
	// Module is a whole LLVM module.
	Module = llir.Module
	// Function is one LLVM function definition.
	Function = llir.Func
	// Param is a function parameter.
	Param = llir.Param
	// Block is one basic block.
	Block = llir.Block
	// Instruction is any non-terminator LIR instruction.
	Instruction = llir.Instruction
	// Terminator is a block's terminating instruction.
	Terminator = llir.Terminator
	// Value is any LIR SSA value, constant, or inline-asm blob.
	Value = value.Value
	// Type is the LIR type lattice (signless, unlike AIR's).
	Type = types.Type
)

// IsConstant reports whether v is a compile-time constant, as opposed to an
// instruction result, a parameter, or inline asm. Grounded on constant.Constant
// being the marker interface every LLVM constant value satisfies.
func IsConstant(v Value) bool {
	_, ok := v.(constant.Constant)
	return ok
}

// IsInlineAsm reports whether v is an inline-assembly blob (spec.md §4.C's
// third translate_value case).
func IsInlineAsm(v Value) bool {
	_, ok := v.(*llir.InlineAsm)
	return ok
}

// IsParam reports whether v is a function parameter.
func IsParam(v Value) bool {
	_, ok := v.(*llir.Param)
	return ok
}

// IsInstruction reports whether v is the result of an instruction already
// translated (or pending translation) within the current function body.
func IsInstruction(v Value) bool {
	_, ok := v.(Instruction)
	return ok
}

// IsGlobal reports whether v is a module-level global variable.
func IsGlobal(v Value) bool {
	_, ok := v.(*llir.Global)
	return ok
}

// IsFunc reports whether v is a reference to a whole function (the callee
// of a direct call/invoke).
func IsFunc(v Value) bool {
	_, ok := v.(*llir.Func)
	return ok
}
