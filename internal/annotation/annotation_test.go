package annotation

import (
	"reflect"
	"testing"
)

func TestHardenTruncatesLongSpaceRuns(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AB  CD   EF", "AB  CD"},
		{"AB CD", "AB CD"},
		{"'text   with spaces'", "'text   with spaces'"},
		{`"quoted   banner"   trailer`, `"quoted   banner"`},
	}
	for _, tc := range tests {
		if got := Harden(tc.in); got != tc.want {
			t.Errorf("Harden(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestScanBasic(t *testing.T) {
	toks, err := Scan("1812,(F)5810")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	wantKinds := []TokenKind{TokHex, TokAction, TokTagGroup, TokHex}
	if len(toks) != len(wantKinds) {
		t.Fatalf("Scan produced %d tokens; want %d: %+v", len(toks), len(wantKinds), toks)
	}
	for i, k := range wantKinds {
		if toks[i].Kind != k {
			t.Errorf("token %d kind = %v; want %v", i, toks[i].Kind, k)
		}
	}
	if toks[0].Hex != "1812" {
		t.Errorf("token 0 hex = %q; want 1812", toks[0].Hex)
	}
	if toks[1].Action != ',' {
		t.Errorf("token 1 action = %q; want ,", toks[1].Action)
	}
	if !reflect.DeepEqual(toks[2].Tags, []string{"F"}) {
		t.Errorf("token 2 tags = %v; want [F]", toks[2].Tags)
	}
}

func TestScanIgnoresWhitespace(t *testing.T) {
	toks, err := Scan("18 12\n34")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(toks) != 1 || toks[0].Hex != "181234" {
		t.Errorf("Scan(%q) = %+v; want one hex token 181234", "18 12\n34", toks)
	}
}

func TestScanUnterminatedGroup(t *testing.T) {
	if _, err := Scan("(F"); err == nil {
		t.Errorf("Scan of an unterminated tag group did not error")
	}
}

func TestScanRejectsUnknownCharacter(t *testing.T) {
	if _, err := Scan("18!12"); err == nil {
		t.Errorf("Scan with a stray ! did not error")
	}
}

func TestSplitTagsQuoteAware(t *testing.T) {
	tags, err := splitTags(`R12,'a, comment',F`)
	if err != nil {
		t.Fatalf("splitTags error: %v", err)
	}
	want := []string{"R12", "'a, comment'", "F"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("splitTags = %v; want %v", tags, want)
	}
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Tag
	}{
		{"empty reset", "", Tag{Kind: KindDataType, Letter: ""}},
		{"data type letter", "f", Tag{Kind: KindDataType, Letter: "F"}},
		{"section banner", `"MYSECT"`, Tag{Kind: KindSection, Text: "MYSECT"}},
		{"line comment", "'a comment'", Tag{Kind: KindComment, Text: "a comment"}},
		{"org", "@1A0", Tag{Kind: KindOrg, Hex: 0x1A0}},
		{"using here", "R12", Tag{Kind: KindUsingHere, Regs: []int{12}}},
		{"using chain", "R12+R13", Tag{Kind: KindUsingHere, Regs: []int{12, 13}}},
		{"drop", "R12=", Tag{Kind: KindDrop, Regs: []int{12}}},
		{"using at hex", "R12=1A0", Tag{Kind: KindUsingAtHex, Regs: []int{12}, Hex: 0x1A0}},
		{"using at label", "R12=START", Tag{Kind: KindUsingAtLabel, Regs: []int{12}, Label: "START"}},
		{"using dsect", "R5=>REC'a record'", Tag{Kind: KindUsingDSECT, Regs: []int{5}, DSECTName: "REC", Desc: "a record"}},
		{"using dsect no desc", "R5=>REC", Tag{Kind: KindUsingDSECT, Regs: []int{5}, DSECTName: "REC"}},
		{"bare label", "FOO", Tag{Kind: KindLabelHere, Label: "FOO"}},
		{"label at hex", "FOO=1A0", Tag{Kind: KindLabelAt, Label: "FOO", Hex: 0x1A0}},
	}
	for _, tc := range tests {
		got, err := Parse(tc.raw)
		if err != nil {
			t.Errorf("%s: Parse(%q) error: %v", tc.name, tc.raw, err)
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: Parse(%q) = %+v; want %+v", tc.name, tc.raw, got, tc.want)
		}
	}
}

func TestParseTagErrors(t *testing.T) {
	tests := []string{`"unterminated`, "'also unterminated", "@ZZZ"}
	for _, raw := range tests {
		if _, err := Parse(raw); err == nil {
			t.Errorf("Parse(%q) did not error", raw)
		}
	}
}
