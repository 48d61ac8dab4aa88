package lir

import (
	"strings"

	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
)

// HasOverflowFlag reports whether flags (an instruction's OverflowFlags)
// contains want. Used to implement spec.md §4.B's sign-from-wraps rule for
// add/sub/mul/shl, where nsw/nuw are carried on the instruction rather than
// encoded in the opcode the way udiv/sdiv already are.
func HasOverflowFlag(flags []enum.OverflowFlag, want enum.OverflowFlag) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}

// HasNSW and HasNUW are the two flags spec.md §4.B's sign-from-wraps rule
// inspects.
func HasNSW(flags []enum.OverflowFlag) bool { return HasOverflowFlag(flags, enum.OverflowFlagNSW) }
func HasNUW(flags []enum.OverflowFlag) bool { return HasOverflowFlag(flags, enum.OverflowFlagNUW) }

// IntrinsicFamily groups intrinsic call IDs by the AIR construct they map
// to (internal/instrxlat's intrinsic dispatch matches callee names itself and
// does not call ClassifyIntrinsic), collapsing variant forms the real
// frontend may hand the importer (e.g. memcpy vs memcpy.inline vs the element-unordered-
// atomic forms) onto the same three AIR memory statements, per SPEC_FULL.md
// §4's supplement to the plain-forms-only wording in spec.md.
type IntrinsicFamily int

const (
	// IntrinsicIgnore is emitted for nothing: debug and lifetime markers,
	// optimizer hints, and anything else with no runtime effect AIR cares
	// about (spec.md §4.E "Ignored").
	IntrinsicIgnore IntrinsicFamily = iota
	IntrinsicMemCopy
	IntrinsicMemMove
	IntrinsicMemSet
	IntrinsicVAStart
	IntrinsicVAEnd
	IntrinsicVACopy
	// IntrinsicDbgDeclare, IntrinsicDbgAddr and IntrinsicDbgValue are
	// classified as their own families rather than folded into Ignore; the
	// instruction translator emits nothing for any of them.
	IntrinsicDbgDeclare
	IntrinsicDbgAddr
	IntrinsicDbgValue
	// IntrinsicOther falls through to the ordinary call-lowering helper
	// with forced argument/return casts (spec.md §4.E: "Else: fall through
	// to the call helper with forced casts").
	IntrinsicOther
)

var ignoredIntrinsicPrefixes = []string{
	"llvm.lifetime.start",
	"llvm.lifetime.end",
	"llvm.invariant.start",
	"llvm.invariant.end",
	"llvm.assume",
	"llvm.donothing",
	"llvm.experimental.noalias.scope.decl",
	"llvm.prefetch",
	"llvm.codeview",
	"llvm.dbg.label",
}

// ClassifyIntrinsic maps an intrinsic callee's LLVM name to its family.
// name is expected in the form produced by value.Value.Ident (e.g.
// "@llvm.memcpy.p0.p0.i64"); the leading sigil is trimmed if present.
func ClassifyIntrinsic(name string) IntrinsicFamily {
	name = strings.TrimPrefix(name, "@")

	for _, prefix := range ignoredIntrinsicPrefixes {
		if strings.HasPrefix(name, prefix) {
			return IntrinsicIgnore
		}
	}

	switch {
	case strings.HasPrefix(name, "llvm.memcpy"):
		return IntrinsicMemCopy
	case strings.HasPrefix(name, "llvm.memmove"):
		return IntrinsicMemMove
	case strings.HasPrefix(name, "llvm.memset"):
		return IntrinsicMemSet
	case strings.HasPrefix(name, "llvm.va_start"), name == "llvm.va_start":
		return IntrinsicVAStart
	case strings.HasPrefix(name, "llvm.va_end"):
		return IntrinsicVAEnd
	case strings.HasPrefix(name, "llvm.va_copy"):
		return IntrinsicVACopy
	case strings.HasPrefix(name, "llvm.dbg.declare"):
		return IntrinsicDbgDeclare
	case strings.HasPrefix(name, "llvm.dbg.addr"):
		return IntrinsicDbgAddr
	case strings.HasPrefix(name, "llvm.dbg.value"):
		return IntrinsicDbgValue
	case strings.HasPrefix(name, "llvm."):
		return IntrinsicOther
	default:
		return IntrinsicOther
	}
}

// IsIntrinsicCall reports whether callee names an LLVM intrinsic function
// (its identifier starts with "llvm."), and returns the bare name.
func IsIntrinsicCall(callee Value) (name string, ok bool) {
	fn, isFunc := callee.(*llir.Func)
	if !isFunc {
		return "", false
	}
	n := strings.TrimPrefix(fn.Ident(), "@")
	if strings.HasPrefix(n, "llvm.") {
		return n, true
	}
	return "", false
}
