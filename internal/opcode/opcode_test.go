package opcode

import "testing"

func TestFormatParse(t *testing.T) {
	tests := []struct {
		name   string
		format string
		window string
		field  string
		want   uint64
	}{
		{"RR R1", "RR", "1812", "R1", 1},
		{"RR R2", "RR", "1812", "R2", 2},
		{"RX displacement", "RX", "5810C004", "D2", 0x004},
		{"RX base", "RX", "5810C004", "B2", 0xC},
		{"RXY long displacement high", "RXY", "E31023456000", "DH2", 0x60},
	}
	for _, tc := range tests {
		f, ok := Formats[tc.format]
		if !ok {
			t.Fatalf("%s: unknown format %s", tc.name, tc.format)
		}
		pf, err := f.Parse(tc.window)
		if err != nil {
			t.Fatalf("%s: Parse(%q) error: %v", tc.name, tc.window, err)
		}
		if got := pf[tc.field]; got != tc.want {
			t.Errorf("%s: field %s = %#x; want %#x", tc.name, tc.field, got, tc.want)
		}
	}
}

func TestFormatParseTooShort(t *testing.T) {
	f := Formats["RXY"]
	if _, err := f.Parse("1234"); err == nil {
		t.Errorf("Parse of a too-short window did not error")
	}
}

func TestLookupProbeOrder(t *testing.T) {
	tests := []struct {
		name     string
		window   string
		wantMnem string
		wantOk   bool
	}{
		{"aa probe LR", "181200000000", "LR", true},
		{"bbbb probe LGR", "B904D0000000", "LGR", true},
		{"ccc probe BRC", "A7440A000000", "BRC", true},
		{"dddd probe LG (E, not E5)", "E304100034FF", "LG", true},
		{"E5-prefixed skips dddd probe", "E500000000FF", "", false},
		{"no match", "FFFFFFFFFFFF", "", false},
	}
	for _, tc := range tests {
		in, ok := Lookup(tc.window)
		if ok != tc.wantOk {
			t.Errorf("%s: Lookup(%q) ok = %v; want %v", tc.name, tc.window, ok, tc.wantOk)
			continue
		}
		if ok && in.Mnemonic != tc.wantMnem {
			t.Errorf("%s: Lookup(%q) mnemonic = %s; want %s", tc.name, tc.window, in.Mnemonic, tc.wantMnem)
		}
	}
}

func TestLookupPadsShortWindow(t *testing.T) {
	in, ok := Lookup("1812")
	if !ok || in.Mnemonic != "LR" {
		t.Errorf("Lookup(%q) = %v, %v; want LR, true", "1812", in.Mnemonic, ok)
	}
}

func TestHintEvaluate(t *testing.T) {
	tests := []struct {
		name string
		h    Hint
		pf   ParsedFields
		want string
	}{
		{"const", Hint{Kind: HintConst, Const: 4}, ParsedFields{}, "4"},
		{"len field", Hint{Kind: HintLenField, LenField: "L1"}, ParsedFields{"L1": 7}, "8"},
		{"none", Hint{Kind: HintNone}, ParsedFields{}, ""},
		// R1=14, R3=1: count = 1 + ((1-14+16)%16) = 4 regs * 4 bytes = 16
		{"multiple wraps mod 16", Hint{Kind: HintMultiple, R1Field: "R1", R3Field: "R3", ElemSize: 4},
			ParsedFields{"R1": 14, "R3": 1}, "16"},
	}
	for _, tc := range tests {
		if got := tc.h.Evaluate(tc.pf); got != tc.want {
			t.Errorf("%s: Evaluate = %q; want %q", tc.name, got, tc.want)
		}
	}
}

func TestClassFor(t *testing.T) {
	tests := []struct {
		flag SemFlag
		cur  PrecedingClass
		want PrecedingClass
	}{
		{FlagArith, ClassNone, ClassArith},
		{FlagCompare, ClassNone, ClassCmp},
		{FlagTestMask, ClassNone, ClassMask},
		{FlagNone, ClassArith, ClassArith},
	}
	for _, tc := range tests {
		if got := ClassFor(tc.flag, tc.cur); got != tc.want {
			t.Errorf("ClassFor(%v, %v) = %v; want %v", tc.flag, tc.cur, got, tc.want)
		}
	}
}

func TestResolveBranch(t *testing.T) {
	tests := []struct {
		relative bool
		class    PrecedingClass
		mask     byte
		wantOk   bool
	}{
		{false, ClassNone, 0x8, true},
		{true, ClassNone, 0xF, false},
		{false, ClassNone, 0x0, false},
	}
	for _, tc := range tests {
		_, ok := ResolveBranch(tc.relative, tc.class, tc.mask)
		if ok != tc.wantOk {
			t.Errorf("ResolveBranch(%v, %v, %#x) ok = %v; want %v", tc.relative, tc.class, tc.mask, ok, tc.wantOk)
		}
	}
}

// TestResolveBranchVariesByPrecedingClass pins the exact case the review
// flagged: the same mask must resolve to a different extended mnemonic
// depending on (class, mask), not mask alone.
func TestResolveBranchVariesByPrecedingClass(t *testing.T) {
	// Mask 8 after a compare means "equal"; after a test-under-mask it
	// means "all tested bits zero".
	cmpName, ok := ResolveBranch(false, ClassCmp, 8)
	if !ok || cmpName != "BE" {
		t.Errorf("ResolveBranch(ClassCmp, 8) = %q, %v; want BE, true", cmpName, ok)
	}
	maskName, ok := ResolveBranch(false, ClassMask, 8)
	if !ok || maskName != "BZ" {
		t.Errorf("ResolveBranch(ClassMask, 8) = %q, %v; want BZ, true", maskName, ok)
	}
	if cmpName == maskName {
		t.Errorf("ResolveBranch gave the same mnemonic %q for mask 8 under both ClassCmp and ClassMask", cmpName)
	}
}

func TestEBCDICPrintable(t *testing.T) {
	tests := []struct {
		b    byte
		want bool
	}{
		{0x40, true}, // space
		{0xC1, true}, // A
		{0xF1, true}, // 1
		{0x00, false},
		{0xFF, false},
	}
	for _, tc := range tests {
		if got := IsEBCDICPrintable(tc.b); got != tc.want {
			t.Errorf("IsEBCDICPrintable(%#x) = %v; want %v", tc.b, got, tc.want)
		}
	}
}

func TestEBCDICToASCIIRoundTrip(t *testing.T) {
	a, ok := EBCDICToASCII(0xC1)
	if !ok || a != 'A' {
		t.Errorf("EBCDICToASCII(0xC1) = %q, %v; want 'A', true", a, ok)
	}
}

func TestEBCDICPrintableRatio(t *testing.T) {
	allPrintable := []byte{0x40, 0xC1, 0xC2}
	if got := EBCDICPrintableRatio(allPrintable); got != 1.0 {
		t.Errorf("EBCDICPrintableRatio(all printable) = %v; want 1.0", got)
	}
	if got := EBCDICPrintableRatio(nil); got != 0 {
		t.Errorf("EBCDICPrintableRatio(nil) = %v; want 0", got)
	}
}

func TestSVCDescription(t *testing.T) {
	if desc, ok := SVCDescription(1); !ok || desc == "" {
		t.Errorf("SVCDescription(1) = %q, %v; want a non-empty description", desc, ok)
	}
	if _, ok := SVCDescription(0xFE); ok {
		t.Errorf("SVCDescription(0xFE) ok = true; want false for an unknown code")
	}
}
