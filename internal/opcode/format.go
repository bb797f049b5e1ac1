// Package opcode holds the embedded, load-once z/Architecture instruction
// and format tables (spec §4.1): field layouts, operand emission recipes,
// extended mnemonic tables, EBCDIC classification and SVC descriptions.
//
// Tables are plain Go data, in the teacher's manner of building opcode maps
// once at startup (see rmsk2-deasm's Disassembler.SetConfig) rather than
// interpreting a dynamic definition language at runtime.
package opcode

import "fmt"

// FieldSpec names one nibble-wide slice of an instruction's bit pattern.
type FieldSpec struct {
	Name  string
	Width int // nibbles
}

// Format is a named field layout: a fixed nibble length and an ordered
// parse template. Formats are shared by many instructions (e.g. RX is used
// by L, ST, A, C, ...).
type Format struct {
	Name      string
	NibbleLen int
	Fields    []FieldSpec
}

func (f Format) templateWidth() int {
	w := 0
	for _, fs := range f.Fields {
		w += fs.Width
	}
	return w
}

// ParsedFields is the result of slicing a hex window per a Format's template.
type ParsedFields map[string]uint64

// Parse slices window (a string of uppercase hex nibbles, at least
// f.NibbleLen long) into named fields per the format's template.
func (f Format) Parse(window string) (ParsedFields, error) {
	if len(window) < f.NibbleLen {
		return nil, fmt.Errorf("window too short for format %s: have %d nibbles, need %d", f.Name, len(window), f.NibbleLen)
	}
	out := make(ParsedFields, len(f.Fields))
	pos := 0
	for _, fs := range f.Fields {
		sub := window[pos : pos+fs.Width]
		pos += fs.Width
		v, err := parseHexNibbles(sub)
		if err != nil {
			return nil, fmt.Errorf("format %s field %s: %w", f.Name, fs.Name, err)
		}
		out[fs.Name] = v
	}
	return out, nil
}

func parseHexNibbles(s string) (uint64, error) {
	var v uint64
	for _, c := range s {
		var d uint64
		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case c >= 'A' && c <= 'F':
			d = uint64(c-'A') + 10
		case c >= 'a' && c <= 'f':
			d = uint64(c-'a') + 10
		default:
			return 0, fmt.Errorf("invalid hex digit %q", c)
		}
		v = v<<4 | d
	}
	return v, nil
}

// Formats is the embedded table of instruction formats. Validated once at
// init by validateFormats (duplicate names and template/length mismatches
// are a TableError per spec §7 item 5).
var Formats = map[string]Format{
	"RR": {Name: "RR", NibbleLen: 4, Fields: []FieldSpec{
		{"_", 2}, {"R1", 1}, {"R2", 1},
	}},
	"I": {Name: "I", NibbleLen: 4, Fields: []FieldSpec{
		{"_", 2}, {"I1", 2},
	}},
	"RRE": {Name: "RRE", NibbleLen: 8, Fields: []FieldSpec{
		{"_", 4}, {"_", 2}, {"R1", 1}, {"R2", 1},
	}},
	"RRF": {Name: "RRF", NibbleLen: 8, Fields: []FieldSpec{
		{"_", 4}, {"M3", 1}, {"_", 1}, {"R1", 1}, {"R2", 1},
	}},
	"RX": {Name: "RX", NibbleLen: 8, Fields: []FieldSpec{
		{"_", 2}, {"R1", 1}, {"X2", 1}, {"B2", 1}, {"D2", 3},
	}},
	"RXY": {Name: "RXY", NibbleLen: 12, Fields: []FieldSpec{
		{"_", 2}, {"R1", 1}, {"X2", 1}, {"B2", 1}, {"DL2", 3}, {"DH2", 2}, {"_", 2},
	}},
	"RS": {Name: "RS", NibbleLen: 8, Fields: []FieldSpec{
		{"_", 2}, {"R1", 1}, {"R3", 1}, {"B2", 1}, {"D2", 3},
	}},
	"RSY": {Name: "RSY", NibbleLen: 12, Fields: []FieldSpec{
		{"_", 2}, {"R1", 1}, {"R3", 1}, {"B2", 1}, {"DL2", 3}, {"DH2", 2}, {"_", 2},
	}},
	"RSI": {Name: "RSI", NibbleLen: 8, Fields: []FieldSpec{
		{"_", 2}, {"R1", 1}, {"R3", 1}, {"RI2", 4},
	}},
	"RI": {Name: "RI", NibbleLen: 8, Fields: []FieldSpec{
		{"_", 2}, {"R1", 1}, {"_", 1}, {"RI2", 4},
	}},
	"RIL": {Name: "RIL", NibbleLen: 12, Fields: []FieldSpec{
		{"_", 2}, {"R1", 1}, {"_", 1}, {"RI2", 8},
	}},
	"RIE": {Name: "RIE", NibbleLen: 12, Fields: []FieldSpec{
		{"_", 2}, {"R1", 1}, {"R3", 1}, {"RI2", 4}, {"M4", 1}, {"_", 3},
	}},
	"SI": {Name: "SI", NibbleLen: 8, Fields: []FieldSpec{
		{"_", 2}, {"I2", 2}, {"B1", 1}, {"D1", 3},
	}},
	"SIY": {Name: "SIY", NibbleLen: 12, Fields: []FieldSpec{
		{"_", 2}, {"I2", 2}, {"B1", 1}, {"DL1", 3}, {"DH1", 2}, {"_", 2},
	}},
	"S": {Name: "S", NibbleLen: 8, Fields: []FieldSpec{
		{"_", 4}, {"B2", 1}, {"D2", 3},
	}},
	"SS1": {Name: "SS1", NibbleLen: 12, Fields: []FieldSpec{
		{"_", 2}, {"L1", 2}, {"B1", 1}, {"D1", 3}, {"B2", 1}, {"D2", 3},
	}},
	"SS2": {Name: "SS2", NibbleLen: 12, Fields: []FieldSpec{
		{"_", 2}, {"L1", 1}, {"L2", 1}, {"B1", 1}, {"D1", 3}, {"B2", 1}, {"D2", 3},
	}},
	"SSE": {Name: "SSE", NibbleLen: 12, Fields: []FieldSpec{
		{"_", 4}, {"B1", 1}, {"D1", 3}, {"B2", 1}, {"D2", 3},
	}},
	"VRX": {Name: "VRX", NibbleLen: 12, Fields: []FieldSpec{
		{"_", 2}, {"V1", 1}, {"X2", 1}, {"B2", 1}, {"D2", 3}, {"M3", 1}, {"RXB", 1}, {"_", 2},
	}},
	"VRR": {Name: "VRR", NibbleLen: 12, Fields: []FieldSpec{
		{"_", 2}, {"V1", 1}, {"V2", 1}, {"V3", 1}, {"_", 1}, {"M6", 1}, {"M5", 1}, {"M4", 1}, {"RXB", 1}, {"_", 2},
	}},
	"VRI": {Name: "VRI", NibbleLen: 12, Fields: []FieldSpec{
		{"_", 2}, {"V1", 1}, {"_", 1}, {"I2", 4}, {"M3", 1}, {"RXB", 1}, {"_", 2},
	}},
}

func init() {
	if err := validateFormats(Formats); err != nil {
		panic(err)
	}
}

func validateFormats(formats map[string]Format) error {
	for name, f := range formats {
		if f.Name != name {
			return fmt.Errorf("DIS0005: format key %q does not match Format.Name %q", name, f.Name)
		}
		if f.templateWidth() != f.NibbleLen {
			return fmt.Errorf("DIS0002: format %s template width %d != declared length %d", name, f.templateWidth(), f.NibbleLen)
		}
	}
	return nil
}
