// Package render turns a finalized statement list into text, following the
// teacher's Renderer interface (multiple interchangeable backends over the
// same accumulated data, see renderer.go's SimpleRenderer/Asm64tassRenderer/
// AsmCa65Renderer) generalized from 6502 listings to the column layout of
// spec §6.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/rmsk2/zdisasm/internal/stmt"
)

const (
	labelWidth   = 8
	opWidth      = 5
	operandWidth = 22
)

// Renderer is the common interface every output backend satisfies.
type Renderer interface {
	Render(w io.Writer, lines []stmt.Line) error
}

// AsmRenderer renders the full column layout of spec §6, including the
// trailing source overlay (location, raw hex, format, hinted length) in
// columns 72+.
type AsmRenderer struct{}

func (AsmRenderer) Render(w io.Writer, lines []stmt.Line) error {
	for _, l := range lines {
		if _, err := io.WriteString(w, formatLine(l, true)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// PlainRenderer omits the source overlay, for a terser listing (the
// teacher's SimpleRenderer analogue: same data, less punctuation).
type PlainRenderer struct{}

func (PlainRenderer) Render(w io.Writer, lines []stmt.Line) error {
	for _, l := range lines {
		if _, err := io.WriteString(w, formatLine(l, false)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func formatLine(l stmt.Line, overlay bool) string {
	var b strings.Builder

	if strings.HasPrefix(l.Label, "L") && len(l.Label) > 1 {
		b.WriteString("\n")
	}

	if l.Op == "" && l.Label == "" {
		b.WriteString(strings.Repeat(" ", labelWidth+1+opWidth+1+operandWidth+1))
		if l.Comment != "" {
			b.WriteString(l.Comment)
		}
		return b.String()
	}

	b.WriteString(padTo(l.Label, labelWidth))
	b.WriteString(" ")
	b.WriteString(padTo(l.Op, opWidth))
	b.WriteString(" ")
	b.WriteString(padTo(l.Operands, operandWidth))
	if l.Comment != "" {
		b.WriteString(" ")
		b.WriteString(l.Comment)
	}

	if overlay && l.Overlay != nil && l.Overlay.RawHex != "" {
		lineLen := len(strings.TrimPrefix(b.String(), "\n"))
		if lineLen < 71 {
			b.WriteString(strings.Repeat(" ", 71-lineLen))
		} else {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%08X %-12s %-4s %d", l.Overlay.Location, l.Overlay.RawHex, l.Overlay.Format, l.Overlay.HintLength)
	}

	return strings.TrimRight(b.String(), " ")
}

func padTo(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
