package air

import (
	"fmt"
	"strings"
)

// Printer renders a Code as a readable block listing, grounded on the
// teacher's indent-tracked strings.Builder printer (kanso/internal/ir
// Printer) — used by `ikos-translate` to print each translated function
// rather than for any machine-readable purpose.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates an empty Printer.
func NewPrinter() *Printer { return &Printer{} }

// Print renders code to a string.
func Print(code *Code) string {
	p := NewPrinter()
	p.printCode(code)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printCode(code *Code) {
	for _, b := range code.Blocks {
		role := ""
		switch b {
		case code.Entry:
			role = " [entry]"
		case code.Exit:
			role += " [exit]"
		case code.Unreachable:
			role += " [unreachable]"
		case code.EHResume:
			role += " [ehresume]"
		}
		p.writeLine("%s:%s", b.Label(), role)
		p.indent++
		for _, s := range b.Statements {
			p.writeLine("%s", s.String())
		}
		if len(b.Successors) > 0 {
			names := make([]string, len(b.Successors))
			for i, s := range b.Successors {
				names[i] = s.Label()
			}
			p.writeLine("-> %s", strings.Join(names, ", "))
		}
		p.indent--
	}
}
