package stmt

import (
	"fmt"
	"sort"

	"github.com/rmsk2/zdisasm/internal/registry"
)

// Line is one fully finalized output line, ready for the renderer.
type Line struct {
	Label    string
	Op       string
	Operands string
	Comment  string
	Overlay  *Overlay
}

// Finalize runs the spec §4.7 finalization pipeline: back-reference
// patching, width widening, DSECT body emission, register equates, the
// undefined-labels report, and the terminal END.
func Finalize(b *Buffer, labels *registry.Labels, dsects *registry.DSECTs, vectorSeen bool) []Line {
	patchBackReferences(b, labels)

	var lines []Line
	for _, s := range b.stmts {
		if s.IsDC {
			used := labels.UsedLength(s.Loc)
			if used > s.DCWidth {
				lines = append(lines, Line{
					Label:    s.Label,
					Op:       "DC",
					Operands: fmt.Sprintf("0XL%d", used),
				})
				s.Label = "" // label moves to the widening directive
			}
		}
		lines = append(lines, Line{
			Label:    s.Label,
			Op:       s.Op,
			Operands: s.Operands,
			Comment:  s.Comment,
			Overlay:  &s.Overlay,
		})
	}

	lines = append(lines, registerEquates(vectorSeen)...)
	lines = append(lines, dsectBodies(dsects)...)
	lines = append(lines, undefinedLabelReport(b, labels)...)
	lines = append(lines, Line{Op: "END"})
	return lines
}

// patchBackReferences walks the back-reference list and writes the
// target's label into the first statement emitted at that location (spec
// §4.7 "walk the back-reference list and patch each target statement's
// label column").
func patchBackReferences(b *Buffer, labels *registry.Labels) {
	for _, loc := range labels.BackReferences() {
		s, ok := b.FirstAtLocation(loc)
		if !ok || s.Label != "" {
			continue
		}
		if name, ok := labels.LabelAt(loc); ok {
			s.Label = name
		}
	}
}

func registerEquates(vectorSeen bool) []Line {
	var lines []Line
	for i := 0; i < 16; i++ {
		lines = append(lines, Line{Label: fmt.Sprintf("R%d", i), Op: "EQU", Operands: fmt.Sprintf("%d", i)})
	}
	if vectorSeen {
		for i := 0; i < 32; i++ {
			lines = append(lines, Line{Label: fmt.Sprintf("V%d", i), Op: "EQU", Operands: fmt.Sprintf("%d", i)})
		}
	}
	return lines
}

func dsectBodies(dsects *registry.DSECTs) []Line {
	var lines []Line
	for _, d := range dsects.All() {
		lines = append(lines, Line{Label: d.Name, Op: "DSECT", Comment: d.Desc})
		for _, ll := range d.Layout() {
			op := "DS"
			var operand string
			switch {
			case ll.Label == "" && !ll.ZeroLen:
				operand = fmt.Sprintf("XL%d", ll.Len)
			case ll.ZeroLen && ll.Len == 0:
				operand = "0X"
			case ll.ZeroLen:
				operand = fmt.Sprintf("0XL%d", ll.Len)
			default:
				operand = fmt.Sprintf("XL%d", ll.Len)
			}
			lines = append(lines, Line{Label: ll.Label, Op: op, Operands: operand})
		}
	}
	return lines
}

// undefinedLabelReport renders spec §4.7/§7 item 6's undefined-labels
// report. The registry tracks FromLoc but not the referring instruction's
// mnemonic (it has no notion of mnemonics), so FromInstr is filled in here
// from the statement buffer before rendering.
func undefinedLabelReport(b *Buffer, labels *registry.Labels) []Line {
	undef := labels.UndefinedLabels()
	if len(undef) == 0 {
		return nil
	}
	sort.Slice(undef, func(i, j int) bool { return undef[i].Location < undef[j].Location })
	var lines []Line
	for _, u := range undef {
		if s, ok := b.FirstAtLocation(u.FromLoc); ok {
			u.FromInstr = s.Op
		}
		lines = append(lines, Line{
			Comment: fmt.Sprintf("UNDEFINED %-8s loc=%X len=%d from=%X instr=%s", u.Label, u.Location, u.UsedLength, u.FromLoc, u.FromInstr),
		})
	}
	return lines
}
