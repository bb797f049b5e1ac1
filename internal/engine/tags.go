package engine

import (
	"fmt"
	"strings"

	"github.com/rmsk2/zdisasm/internal/annotation"
)

// processTagGroup applies every tag in a parenthesized group in order
// (spec §4.4).
func (e *Engine) processTagGroup(raw []string) error {
	for _, r := range raw {
		tag, err := annotation.Parse(r)
		if err != nil {
			return err
		}
		e.applyTag(tag)
	}
	return nil
}

func (e *Engine) applyTag(tag annotation.Tag) {
	switch tag.Kind {
	case annotation.KindDataType:
		e.dataType = tag.Letter
		e.mode = ModeData

	case annotation.KindSection:
		e.attachLines(e.loc, sectionBanner(tag.Text))

	case annotation.KindComment:
		e.attachLines(e.loc, commentBlock(tag.Text))

	case annotation.KindOrg:
		e.loc = tag.Hex
		if !e.orgEmitted[tag.Hex] {
			e.Buf.AttachDirective(tag.Hex, fmt.Sprintf("ORG @+X'%X'", tag.Hex))
			e.orgEmitted[tag.Hex] = true
		}

	case annotation.KindUsingHere:
		e.Regs.BindCSECT(tag.Regs, e.loc)
		e.Buf.AttachDirective(e.loc, "USING *,"+regList(tag.Regs))

	case annotation.KindDrop:
		e.Regs.Drop(tag.Regs)
		e.Buf.AttachDirective(e.loc, "DROP "+regList(tag.Regs))

	case annotation.KindUsingAtHex:
		label := e.Labels.ReferLabel(e.loc, tag.Hex, 0)
		e.Regs.BindCSECT(tag.Regs, tag.Hex)
		e.Buf.AttachDirective(e.loc, "USING "+label+","+regList(tag.Regs))

	case annotation.KindUsingAtLabel:
		target, _ := e.Labels.LocationOf(tag.Label)
		e.Regs.BindCSECT(tag.Regs, target)
		e.Buf.AttachDirective(e.loc, "USING "+tag.Label+","+regList(tag.Regs))

	case annotation.KindUsingDSECT:
		e.DSECTs.GetOrCreate(tag.DSECTName, tag.Desc)
		e.Regs.BindDSECT(tag.Regs, tag.DSECTName, 0)
		e.Buf.AttachDirective(e.loc, "USING "+tag.DSECTName+","+regList(tag.Regs))

	case annotation.KindLabelHere:
		e.Labels.DefineLabel(tag.Label, e.loc)
		if e.loc == 0 {
			e.sectionName = tag.Label
		}

	case annotation.KindLabelAt:
		e.Labels.DefineLabel(tag.Label, tag.Hex)
	}
}

func regList(regs []int) string {
	parts := make([]string, len(regs))
	for i, r := range regs {
		parts[i] = fmt.Sprintf("R%d", r)
	}
	return strings.Join(parts, ",")
}

// sectionBanner renders the five-line boxed comment of spec §4.4: a bar, a
// blank padding line, the text line, another blank padding line, and a
// closing bar.
func sectionBanner(text string) []string {
	bar := strings.Repeat("*", len(text)+4)
	blank := "*" + strings.Repeat(" ", len(text)+2) + "*"
	return []string{
		bar,
		blank,
		"* " + text + " *",
		blank,
		bar,
	}
}

// commentBlock renders the short dashed comment block of spec §4.4.
func commentBlock(text string) []string {
	return []string{"*-- " + text}
}
