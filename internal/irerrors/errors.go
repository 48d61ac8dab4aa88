// Package irerrors defines the translator's single closed error kind.
// Grounded on the teacher's internal/errors package (a typed error with a
// stable identity, reported through github.com/fatih/color at the CLI
// boundary) but collapsed to spec.md §7's one kind: translation has no
// severities, no suggestions, and no recovery — an ImportError is terminal
// for the function being translated.
package irerrors

import "fmt"

// ImportError is raised for any of the conditions spec.md §7 enumerates:
// multiple return/unreachable/ehresume blocks, an unsupported opcode
// (select, switch, addrspacecast), an illegal bitcast, an unreconcilable
// PHI, an unexpected branch-condition shape, an unsupported float
// predicate, or a malformed operand kind.
type ImportError struct {
	Message string
	// Origin optionally names the LIR construct (function, block, or
	// instruction) the error was raised while translating, carried as a
	// string rather than a reference so ImportError stays comparable and
	// never outlives the LIR it describes.
	Origin string
}

func (e *ImportError) Error() string {
	if e.Origin == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Origin, e.Message)
}

// New builds an ImportError with no origin attached.
func New(format string, args ...any) *ImportError {
	return &ImportError{Message: fmt.Sprintf(format, args...)}
}

// At builds an ImportError scoped to origin (typically a function or block
// name), matching the real frontend's "function F: <reason>" diagnostics.
func At(origin, format string, args ...any) *ImportError {
	return &ImportError{Message: fmt.Sprintf(format, args...), Origin: origin}
}

// Is allows errors.Is(err, &irerrors.ImportError{}) style matching by message-free
// identity: every ImportError is the same kind, so Is reports true for any
// other *ImportError regardless of message, matching spec.md §7's "single
// error kind" design (there is exactly one sentinel kind to check against,
// not one per condition).
func (e *ImportError) Is(target error) bool {
	_, ok := target.(*ImportError)
	return ok
}
