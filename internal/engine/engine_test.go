package engine

import (
	"strings"
	"testing"

	"github.com/rmsk2/zdisasm/internal/annotation"
)

func TestRunDecodesSimpleCode(t *testing.T) {
	e := New(0)
	if err := e.Run("1812"); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	stmts := e.Buf.Statements()
	if len(stmts) != 1 {
		t.Fatalf("Statements() = %+v; want 1 statement", stmts)
	}
	if stmts[0].Op != "LR" || stmts[0].Operands != "R1,R2" || stmts[0].Label != "" {
		t.Errorf("stmts[0] = %+v; want LR R1,R2 with no label", stmts[0])
	}
	if e.loc != 2 {
		t.Errorf("e.loc = %d; want 2", e.loc)
	}
}

func TestRunAppliesLabelTagAndSetsSectionName(t *testing.T) {
	e := New(0)
	if err := e.Run("(FOO)1812"); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	stmts := e.Buf.Statements()
	if len(stmts) != 1 || stmts[0].Label != "FOO" {
		t.Fatalf("stmts = %+v; want a single statement labeled FOO", stmts)
	}
	lines := e.RenderAll()
	if lines[0].Label != "FOO" || lines[0].Op != "START" {
		t.Errorf("RenderAll()[0] = %+v; want Label=FOO Op=START", lines[0])
	}
}

func TestProcessActionAutoLabelsCurrentLocation(t *testing.T) {
	e := New(0x10)
	e.processAction(',')
	name, ok := e.Labels.LabelAt(0x10)
	if !ok || name != "L10" {
		t.Errorf("LabelAt(0x10) = %q, %v; want L10, true", name, ok)
	}
	if e.mode != ModeCode {
		t.Errorf("mode after ',' = %v; want ModeCode", e.mode)
	}
}

func TestProcessActionPipeSuppressesAutoLabel(t *testing.T) {
	e := New(0x20)
	e.processAction('|')
	if _, ok := e.Labels.LabelAt(0x20); ok {
		t.Errorf("LabelAt(0x20) ok = true; want false, '|' suppresses auto-labeling")
	}
}

func TestProcessActionDotKeepsDataTypeSlashResetsIt(t *testing.T) {
	e := New(0)
	e.dataType = "F"
	e.processAction('.')
	if e.mode != ModeData || e.dataType != "F" {
		t.Errorf("after '.': mode=%v dataType=%q; want ModeData, F unchanged", e.mode, e.dataType)
	}
	e.processAction('/')
	if e.mode != ModeData || e.dataType != "" {
		t.Errorf("after '/': mode=%v dataType=%q; want ModeData, dataType cleared", e.mode, e.dataType)
	}
}

func TestHardenOddHexReportsAndSkips(t *testing.T) {
	e := New(0)
	clean, err := e.hardenOddHex("123")
	if err == nil || clean != "" {
		t.Fatalf("hardenOddHex(123) = %q, %v; want an error and empty result", clean, err)
	}
	if e.loc != 2 {
		t.Errorf("e.loc after odd-hex skip = %d; want 2 (3/2+1)", e.loc)
	}
	stmts := e.Buf.Statements()
	if len(stmts) != 1 || stmts[0].Comment == "" {
		t.Fatalf("Statements() = %+v; want one diagnostic statement", stmts)
	}
}

func TestHardenOddHexRejectsInvalidChar(t *testing.T) {
	e := New(0)
	clean, err := e.hardenOddHex("12G4")
	if err == nil || clean != "" {
		t.Fatalf("hardenOddHex(12G4) = %q, %v; want an error and empty result", clean, err)
	}
	stmts := e.Buf.Statements()
	if len(stmts) != 1 {
		t.Fatalf("Statements() = %+v; want one diagnostic statement", stmts)
	}
}

func TestDecodeCodeSliceFallsBackToTODOOnMiss(t *testing.T) {
	e := New(0)
	if err := e.decodeCodeSlice("FFFF"); err != nil {
		t.Fatalf("decodeCodeSlice error: %v", err)
	}
	stmts := e.Buf.Statements()
	if len(stmts) != 1 || stmts[0].Op != "DC" || stmts[0].Operands != "XL2'FFFF'" {
		t.Fatalf("stmts = %+v; want a single TODO DC statement", stmts)
	}
	if e.TodoCount() != 1 {
		t.Errorf("TodoCount() = %d; want 1", e.TodoCount())
	}
	if e.loc != 2 {
		t.Errorf("e.loc = %d; want 2", e.loc)
	}
}

func TestDecodeDataSliceEmitsWidthTaggedDC(t *testing.T) {
	e := New(0)
	e.dataType = "F"
	if err := e.decodeDataSlice("00000005"); err != nil {
		t.Fatalf("decodeDataSlice error: %v", err)
	}
	stmts := e.Buf.Statements()
	if len(stmts) != 1 || stmts[0].Operands != "F'5'" || !stmts[0].IsDC || stmts[0].DCWidth != 4 {
		t.Fatalf("stmts = %+v; want a single F'5' DC statement with DCWidth 4", stmts)
	}
	if e.loc != 4 {
		t.Errorf("e.loc = %d; want 4", e.loc)
	}
}

func TestProcessHexFlushesPendingDirectiveBeforeStatement(t *testing.T) {
	e := New(0)
	e.applyTag(annotation.Tag{Kind: annotation.KindUsingHere, Regs: []int{12}})
	if err := e.processHex("1812"); err != nil {
		t.Fatalf("processHex error: %v", err)
	}
	stmts := e.Buf.Statements()
	if len(stmts) != 2 {
		t.Fatalf("Statements() = %+v; want the flushed USING directive followed by the LR statement", stmts)
	}
	if stmts[0].Comment != "USING *,R12" {
		t.Errorf("stmts[0].Comment = %q; want USING *,R12", stmts[0].Comment)
	}
	if stmts[1].Op != "LR" {
		t.Errorf("stmts[1].Op = %q; want LR", stmts[1].Op)
	}
}

func TestApplyTagSectionEmitsFiveLineBanner(t *testing.T) {
	e := New(0)
	e.applyTag(annotation.Tag{Kind: annotation.KindSection, Text: "MODULE INIT"})
	stmts := e.Buf.Statements()
	if len(stmts) != 5 {
		t.Fatalf("applyTag(KindSection) emitted %d lines; want 5 (spec section banner)", len(stmts))
	}
	if stmts[0].Comment != stmts[4].Comment {
		t.Errorf("banner top/bottom bars differ: %q vs %q", stmts[0].Comment, stmts[4].Comment)
	}
	if !strings.Contains(stmts[2].Comment, "MODULE INIT") {
		t.Errorf("banner middle line = %q; want it to contain the section text", stmts[2].Comment)
	}
}

func TestApplyTagUsingHereAttachesDirective(t *testing.T) {
	e := New(0x1000)
	e.applyTag(annotation.Tag{Kind: annotation.KindUsingHere, Regs: []int{12}})
	dirs := e.Buf.DirectivesAt(0x1000)
	if len(dirs) != 1 || dirs[0] != "USING *,R12" {
		t.Errorf("DirectivesAt(0x1000) = %v; want [USING *,R12]", dirs)
	}
}

func TestApplyTagUsingDSECTCreatesAndAttaches(t *testing.T) {
	e := New(0x20)
	e.applyTag(annotation.Tag{Kind: annotation.KindUsingDSECT, Regs: []int{5}, DSECTName: "REC", Desc: "a record"})
	all := e.DSECTs.All()
	if len(all) != 1 || all[0].Name != "REC" || all[0].Desc != "a record" {
		t.Fatalf("DSECTs.All() = %+v; want one REC DSECT with desc 'a record'", all)
	}
	dirs := e.Buf.DirectivesAt(0x20)
	if len(dirs) != 1 || dirs[0] != "USING REC,R5" {
		t.Errorf("DirectivesAt(0x20) = %v; want [USING REC,R5]", dirs)
	}
}

func TestApplyTagOrgSetsLocAndDedupsDirective(t *testing.T) {
	e := New(0)
	tag := annotation.Tag{Kind: annotation.KindOrg, Hex: 0x200}
	e.applyTag(tag)
	if e.loc != 0x200 {
		t.Fatalf("e.loc after ORG = %#x; want 0x200", e.loc)
	}
	e.applyTag(tag) // same target a second time: must not double-queue
	dirs := e.Buf.DirectivesAt(0x200)
	if len(dirs) != 1 || dirs[0] != "ORG @+X'200'" {
		t.Errorf("DirectivesAt(0x200) = %v; want a single ORG directive", dirs)
	}
}

func TestApplyTagLabelAtDefinesWithoutMovingLoc(t *testing.T) {
	e := New(0x50)
	e.applyTag(annotation.Tag{Kind: annotation.KindLabelAt, Label: "FOO", Hex: 0x300})
	if e.loc != 0x50 {
		t.Errorf("e.loc = %#x; want unchanged 0x50", e.loc)
	}
	loc, ok := e.Labels.LocationOf("FOO")
	if !ok || loc != 0x300 {
		t.Errorf("LocationOf(FOO) = %#x, %v; want 0x300, true", loc, ok)
	}
}

func TestApplyTagUsingAtLabelResolvesKnownLocation(t *testing.T) {
	e := New(0x10)
	e.Labels.DefineLabel("TARGET", 0x400)
	e.applyTag(annotation.Tag{Kind: annotation.KindUsingAtLabel, Label: "TARGET", Regs: []int{7}})
	dirs := e.Buf.DirectivesAt(0x10)
	if len(dirs) != 1 || dirs[0] != "USING TARGET,R7" {
		t.Errorf("DirectivesAt(0x10) = %v; want [USING TARGET,R7]", dirs)
	}
}

func TestBumpStatsAndStatsSorted(t *testing.T) {
	e := New(0)
	e.bumpStats("RR", "LR")
	e.bumpStats("RR", "LR")
	e.bumpStats("RX", "L")

	byFormat, byMnemonic := e.Stats()
	if len(byFormat) != 2 || byFormat[0].Format != "RR" || byFormat[0].Count != 2 ||
		byFormat[1].Format != "RX" || byFormat[1].Count != 1 {
		t.Errorf("byFormat = %+v; want [{RR _ 2} {RX _ 1}]", byFormat)
	}
	if len(byMnemonic) != 2 || byMnemonic[0].Mnemonic != "LR" || byMnemonic[0].Count != 2 ||
		byMnemonic[1].Mnemonic != "L" || byMnemonic[1].Count != 1 {
		t.Errorf("byMnemonic = %+v; want [{RR LR 2} {RX L 1}]", byMnemonic)
	}
}

func TestRenderAllDefaultsToAtSection(t *testing.T) {
	e := New(0)
	if err := e.Run(""); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	lines := e.RenderAll()
	if lines[0].Label != "@" || lines[0].Op != "START" {
		t.Errorf("RenderAll()[0] = %+v; want Label=@ Op=START", lines[0])
	}
}

func TestDcWidthOf(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"F'5'", 4},
		{"H'42'", 2},
		{"A(L100)", 4},
		{"B'00000001'", 1},
		{"CL2'AB'", 2},
		{"XL12'0102'", 12},
		{"C'AB'", 0},
	}
	for _, tc := range tests {
		if got := dcWidthOf(tc.text); got != tc.want {
			t.Errorf("dcWidthOf(%q) = %d; want %d", tc.text, got, tc.want)
		}
	}
}
