package opcode

import "fmt"

// SemFlag is the post-processing class attached to an instruction (spec
// §4.1/§4.6 step 7): it decides what, if anything, codec does to the emitted
// operand list after the raw fields are rendered.
type SemFlag string

const (
	FlagNone        SemFlag = "."
	FlagArith       SemFlag = "A"
	FlagCompare     SemFlag = "C"
	FlagTestMask    SemFlag = "M"
	FlagCondBranch  SemFlag = "B"  // BC/BCR-style, mask -> extended mnemonic
	FlagRelBranch   SemFlag = "R"  // relative branch, mask -> extended mnemonic
	FlagCompareJump SemFlag = "CJ" // compare-and-jump, mask suffix
	FlagJumpIndex   SemFlag = "JX" // BRXH/BRXLE-style
	FlagLoadOnCond  SemFlag = "O"  // load/store on condition
	FlagSelect      SemFlag = "S"  // select
	FlagRotate      SemFlag = "RO" // rotate triples
	FlagRel4        SemFlag = "R4" // 4-byte relative offset target
	FlagRel8        SemFlag = "R8" // 8-byte relative offset target (halfword count still x2)
	FlagSetCC       SemFlag = "c"  // sets condition code only, no branch
)

// HintKind tags the shape of an instruction's operand-length hint
// expression (spec §4.1: "a pure function of parsed fields").
type HintKind int

const (
	HintNone HintKind = iota
	HintConst
	HintLenField  // l(L) == L-field value + 1
	HintMultiple  // hM(n): (1 + ((R3-R1) mod 16)) * n over R1..R3
	HintVectorLen // vector element width driven by an M field; Evaluate returns "" for it
)

// Hint is the pure, field-only computation of an instruction's operand
// length hint (spec §4.6 step 5).
type Hint struct {
	Kind     HintKind
	Const    int
	LenField string // field carrying L (for HintLenField)
	R1Field  string // for HintMultiple
	R3Field  string
	ElemSize int // byte size of one register's worth, for HintMultiple
}

// Evaluate computes the hint, or "" if HintNone.
func (h Hint) Evaluate(pf ParsedFields) string {
	switch h.Kind {
	case HintNone:
		return ""
	case HintConst:
		return fmt.Sprintf("%d", h.Const)
	case HintLenField:
		return fmt.Sprintf("%d", int(pf[h.LenField])+1)
	case HintMultiple:
		r1 := int(pf[h.R1Field])
		r3 := int(pf[h.R3Field])
		n := 1 + ((r3 - r1 + 16) % 16)
		return fmt.Sprintf("%d", n*h.ElemSize)
	default:
		return ""
	}
}

// OperandKind tags one element of an instruction's emit recipe (spec §4.6
// step 6 helper functions). The actual interpretation lives in
// internal/codec, which has access to the register/DSECT registries that
// db/dbs/dlb/dvb/s need; opcode only carries the typed recipe.
type OperandKind int

const (
	OpndR   OperandKind = iota // r(x)  -> Rx
	OpndV                      // v(x)  -> Vx (5-bit number, high bit from RXB when present)
	OpndXR                     // xr(x) -> "" or Rx
	OpndU                      // u(x)  -> friendly unsigned
	OpndS2                     // s2(x) -> signed, 2-nibble field
	OpndS3
	OpndS4
	OpndS5
	OpndS8
	OpndX   // x(x)  -> X'...'
	OpndM   // m(x)  -> B'bbbb'
	OpndOM  // om(x) -> omitted when zero
	OpndML  // ml(x) -> popcount of a 4-bit mask
	OpndDB  // db(d,b)
	OpndDBS // dbs(d,b) - rendered exactly like db(d,b)
	OpndDXB // dxb(d,x,b)
	OpndLDB // ldb(d,l,b)
	OpndLDXB
	OpndDLB  // dlb(d,l,b) - literal length prefix, not field-derived
	OpndDVB  // dvb(d,v,b) - vector index + base
	OpndS    // s(disp,base) -> S(X'disp'(Rb))
	OpndHint // hint(len,b,d) - records observed length at target, emits nothing
)

// Operand is one element of an instruction's operand-emission recipe. Field
// names index into ParsedFields; their meaning depends on Kind.
type Operand struct {
	Kind   OperandKind
	Fields []string
	Width  int // for OpndHint / OpndDLB: literal byte length
}

func Rn(field string) Operand      { return Operand{Kind: OpndR, Fields: []string{field}} }
func Vn(field string) Operand      { return Operand{Kind: OpndV, Fields: []string{field}} }
func XRn(field string) Operand     { return Operand{Kind: OpndXR, Fields: []string{field}} }
func U(field string) Operand       { return Operand{Kind: OpndU, Fields: []string{field}} }
func Sn(width int, field string) Operand {
	switch width {
	case 2:
		return Operand{Kind: OpndS2, Fields: []string{field}}
	case 3:
		return Operand{Kind: OpndS3, Fields: []string{field}}
	case 4:
		return Operand{Kind: OpndS4, Fields: []string{field}}
	case 5:
		return Operand{Kind: OpndS5, Fields: []string{field}}
	default:
		return Operand{Kind: OpndS8, Fields: []string{field}}
	}
}
func X(field string) Operand  { return Operand{Kind: OpndX, Fields: []string{field}} }
func M(field string) Operand  { return Operand{Kind: OpndM, Fields: []string{field}} }
func OM(field string) Operand { return Operand{Kind: OpndOM, Fields: []string{field}} }
func ML(field string) Operand { return Operand{Kind: OpndML, Fields: []string{field}} }

func DB(d, b string) Operand  { return Operand{Kind: OpndDB, Fields: []string{d, b}} }
func DBS(d, b string) Operand { return Operand{Kind: OpndDBS, Fields: []string{d, b}} }
func DXB(d, x, b string) Operand { return Operand{Kind: OpndDXB, Fields: []string{d, x, b}} }
func LDB(d, l, b string) Operand { return Operand{Kind: OpndLDB, Fields: []string{d, l, b}} }
func LDXB(d, l, x, b string) Operand {
	return Operand{Kind: OpndLDXB, Fields: []string{d, l, x, b}}
}
func DLB(d, b string, width int) Operand {
	return Operand{Kind: OpndDLB, Fields: []string{d, b}, Width: width}
}
func DVB(d, v, b string) Operand { return Operand{Kind: OpndDVB, Fields: []string{d, v, b}} }
func S(d, b string) Operand      { return Operand{Kind: OpndS, Fields: []string{d, b}} }
func HintOp(width int, b, d string) Operand {
	return Operand{Kind: OpndHint, Fields: []string{b, d}, Width: width}
}

// RotateMnemonic maps the I4-low-order "zero flag" aware (I3,I4,I5) triple
// used by RO-flagged rotate instructions to their fixed mnemonic text (spec
// §4.6 step 7 RO case). Keyed by the base mnemonic; codec appends "Z" when
// bit 0x80 of I4 is set.
var RotateMnemonic = map[string]string{
	"RNSBG": "RNSBG",
	"ROSBG": "ROSBG",
	"RXSBG": "RXSBG",
	"RISBG": "RISBG",
}

// ProbeKind is the nibble position an instruction's opcode is matched at
// (spec §4.6 step 2). Order of trial is fixed: ProbeAA, ProbeCCC, ProbeDDDD
// (only when the window's first nibble is E and first byte is not E5),
// ProbeBBBB.
type ProbeKind int

const (
	ProbeAA    ProbeKind = iota // first byte, 2 nibbles
	ProbeCCC                    // first byte + 4th nibble, 3 nibbles
	ProbeDDDD                   // first byte + last byte of a 12-nibble window, 4 nibbles
	ProbeBBBB                   // first two bytes, 4 nibbles
)

// Instruction is one opcode table entry (spec §4.1).
type Instruction struct {
	Opcode   string // hex nibbles matched at Probe's position
	Probe    ProbeKind
	Mnemonic string
	Format   string
	Flag     SemFlag
	Desc     string
	Hint     Hint
	Operands []Operand
}

// Instructions is the embedded z/Architecture instruction table. It is a
// representative, hand-curated subset covering every probe position and
// most format families and semantic flags, rather than an exhaustive
// Principles-of-Operation transcription. No entry uses the RSI, SSE or VRI
// formats or the R4/R8 flags.
var Instructions = []Instruction{
	// RR, aa probe (first byte, 2 nibbles)
	{Opcode: "18", Probe: ProbeAA, Mnemonic: "LR", Format: "RR", Flag: FlagNone, Desc: "Load (32)",
		Operands: []Operand{Rn("R1"), Rn("R2")}},
	{Opcode: "1A", Probe: ProbeAA, Mnemonic: "AR", Format: "RR", Flag: FlagArith, Desc: "Add (32)",
		Operands: []Operand{Rn("R1"), Rn("R2")}},
	{Opcode: "1B", Probe: ProbeAA, Mnemonic: "SR", Format: "RR", Flag: FlagArith, Desc: "Subtract (32)",
		Operands: []Operand{Rn("R1"), Rn("R2")}},
	{Opcode: "19", Probe: ProbeAA, Mnemonic: "CR", Format: "RR", Flag: FlagCompare, Desc: "Compare (32)",
		Operands: []Operand{Rn("R1"), Rn("R2")}},
	{Opcode: "12", Probe: ProbeAA, Mnemonic: "LTR", Format: "RR", Flag: FlagCompare, Desc: "Load and test (32)",
		Operands: []Operand{Rn("R1"), Rn("R2")}},
	{Opcode: "14", Probe: ProbeAA, Mnemonic: "NR", Format: "RR", Flag: FlagNone, Desc: "And (32)",
		Operands: []Operand{Rn("R1"), Rn("R2")}},
	{Opcode: "05", Probe: ProbeAA, Mnemonic: "BALR", Format: "RR", Flag: FlagNone, Desc: "Branch and link",
		Operands: []Operand{Rn("R1"), XRn("R2")}},
	{Opcode: "07", Probe: ProbeAA, Mnemonic: "BCR", Format: "RR", Flag: FlagCondBranch, Desc: "Branch on condition",
		Operands: []Operand{M("R1"), XRn("R2")}},
	{Opcode: "0A", Probe: ProbeAA, Mnemonic: "SVC", Format: "I", Flag: FlagSetCC, Desc: "Supervisor call",
		Operands: []Operand{U("I1")}},

	// RRE/RRF, bbbb probe (first two bytes, 4 nibbles)
	{Opcode: "B904", Probe: ProbeBBBB, Mnemonic: "LGR", Format: "RRE", Flag: FlagNone, Desc: "Load (64)",
		Operands: []Operand{Rn("R1"), Rn("R2")}},
	{Opcode: "B908", Probe: ProbeBBBB, Mnemonic: "AGR", Format: "RRE", Flag: FlagArith, Desc: "Add (64)",
		Operands: []Operand{Rn("R1"), Rn("R2")}},
	{Opcode: "B902", Probe: ProbeBBBB, Mnemonic: "LTGR", Format: "RRE", Flag: FlagCompare, Desc: "Load and test (64)",
		Operands: []Operand{Rn("R1"), Rn("R2")}},
	{Opcode: "B9F2", Probe: ProbeBBBB, Mnemonic: "LOCR", Format: "RRF", Flag: FlagLoadOnCond, Desc: "Load on condition (32)",
		Operands: []Operand{Rn("R1"), Rn("R2"), M("M3")}},
	{Opcode: "B9F0", Probe: ProbeBBBB, Mnemonic: "SELR", Format: "RRF", Flag: FlagSelect, Desc: "Select (32)",
		Operands: []Operand{Rn("R1"), Rn("R2"), M("M3")}},

	// RX, aa probe
	{Opcode: "58", Probe: ProbeAA, Mnemonic: "L", Format: "RX", Flag: FlagNone, Desc: "Load (32)",
		Hint:     Hint{Kind: HintConst, Const: 4},
		Operands: []Operand{Rn("R1"), DXB("D2", "X2", "B2")}},
	{Opcode: "50", Probe: ProbeAA, Mnemonic: "ST", Format: "RX", Flag: FlagNone, Desc: "Store (32)",
		Hint:     Hint{Kind: HintConst, Const: 4},
		Operands: []Operand{Rn("R1"), DXB("D2", "X2", "B2")}},
	{Opcode: "41", Probe: ProbeAA, Mnemonic: "LA", Format: "RX", Flag: FlagNone, Desc: "Load address",
		Operands: []Operand{Rn("R1"), DXB("D2", "X2", "B2")}},
	{Opcode: "5A", Probe: ProbeAA, Mnemonic: "A", Format: "RX", Flag: FlagArith, Desc: "Add (32)",
		Hint:     Hint{Kind: HintConst, Const: 4},
		Operands: []Operand{Rn("R1"), DXB("D2", "X2", "B2")}},
	{Opcode: "59", Probe: ProbeAA, Mnemonic: "C", Format: "RX", Flag: FlagCompare, Desc: "Compare (32)",
		Hint:     Hint{Kind: HintConst, Const: 4},
		Operands: []Operand{Rn("R1"), DXB("D2", "X2", "B2")}},
	{Opcode: "47", Probe: ProbeAA, Mnemonic: "BC", Format: "RX", Flag: FlagCondBranch, Desc: "Branch on condition",
		Operands: []Operand{M("R1"), DXB("D2", "X2", "B2")}},
	{Opcode: "45", Probe: ProbeAA, Mnemonic: "BAL", Format: "RX", Flag: FlagNone, Desc: "Branch and link",
		Operands: []Operand{Rn("R1"), DXB("D2", "X2", "B2")}},
	{Opcode: "48", Probe: ProbeAA, Mnemonic: "LH", Format: "RX", Flag: FlagNone, Desc: "Load halfword",
		Hint:     Hint{Kind: HintConst, Const: 2},
		Operands: []Operand{Rn("R1"), DXB("D2", "X2", "B2")}},
	{Opcode: "40", Probe: ProbeAA, Mnemonic: "STH", Format: "RX", Flag: FlagNone, Desc: "Store halfword",
		Hint:     Hint{Kind: HintConst, Const: 2},
		Operands: []Operand{Rn("R1"), DXB("D2", "X2", "B2")}},

	// RXY, dddd probe (first nibble E, first byte != E5: first byte + last byte)
	{Opcode: "E304", Probe: ProbeDDDD, Mnemonic: "LG", Format: "RXY", Flag: FlagNone, Desc: "Load (64)",
		Hint:     Hint{Kind: HintConst, Const: 8},
		Operands: []Operand{Rn("R1"), LDXB("DL2", "DH2", "X2", "B2")}},
	{Opcode: "E324", Probe: ProbeDDDD, Mnemonic: "STG", Format: "RXY", Flag: FlagNone, Desc: "Store (64)",
		Hint:     Hint{Kind: HintConst, Const: 8},
		Operands: []Operand{Rn("R1"), LDXB("DL2", "DH2", "X2", "B2")}},

	// RS, aa probe
	{Opcode: "98", Probe: ProbeAA, Mnemonic: "LM", Format: "RS", Flag: FlagNone, Desc: "Load multiple",
		Hint:     Hint{Kind: HintMultiple, R1Field: "R1", R3Field: "R3", ElemSize: 4},
		Operands: []Operand{Rn("R1"), Rn("R3"), DB("D2", "B2")}},
	{Opcode: "90", Probe: ProbeAA, Mnemonic: "STM", Format: "RS", Flag: FlagNone, Desc: "Store multiple",
		Hint:     Hint{Kind: HintMultiple, R1Field: "R1", R3Field: "R3", ElemSize: 4},
		Operands: []Operand{Rn("R1"), Rn("R3"), DB("D2", "B2")}},
	{Opcode: "89", Probe: ProbeAA, Mnemonic: "SLL", Format: "RS", Flag: FlagNone, Desc: "Shift left single logical",
		Operands: []Operand{Rn("R1"), DB("D2", "B2")}},
	{Opcode: "86", Probe: ProbeAA, Mnemonic: "BXH", Format: "RS", Flag: FlagJumpIndex, Desc: "Branch on index high",
		Operands: []Operand{Rn("R1"), Rn("R3"), DB("D2", "B2")}},

	// RSY, dddd probe
	{Opcode: "EB04", Probe: ProbeDDDD, Mnemonic: "LMG", Format: "RSY", Flag: FlagNone, Desc: "Load multiple (64)",
		Hint:     Hint{Kind: HintMultiple, R1Field: "R1", R3Field: "R3", ElemSize: 8},
		Operands: []Operand{Rn("R1"), Rn("R3"), LDB("DL2", "DH2", "B2")}},

	// RI, ccc probe (first byte + 4th nibble, 3 nibbles)
	{Opcode: "A74", Probe: ProbeCCC, Mnemonic: "BRC", Format: "RI", Flag: FlagRelBranch, Desc: "Branch relative on condition",
		Operands: []Operand{M("R1"), Sn(4, "RI2")}},
	{Opcode: "A79", Probe: ProbeCCC, Mnemonic: "LGHI", Format: "RI", Flag: FlagNone, Desc: "Load halfword immediate (64)",
		Operands: []Operand{Rn("R1"), Sn(4, "RI2")}},
	{Opcode: "A7A", Probe: ProbeCCC, Mnemonic: "AGHI", Format: "RI", Flag: FlagArith, Desc: "Add halfword immediate (64)",
		Operands: []Operand{Rn("R1"), Sn(4, "RI2")}},

	// RIL, ccc probe
	{Opcode: "C04", Probe: ProbeCCC, Mnemonic: "BRCL", Format: "RIL", Flag: FlagRelBranch, Desc: "Branch relative on condition long",
		Operands: []Operand{M("R1"), Sn(8, "RI2")}},
	{Opcode: "C09", Probe: ProbeCCC, Mnemonic: "LGFI", Format: "RIL", Flag: FlagNone, Desc: "Load long fullword immediate",
		Operands: []Operand{Rn("R1"), Sn(8, "RI2")}},

	// RIE, dddd probe: compare-and-jump and rotate
	{Opcode: "EC76", Probe: ProbeDDDD, Mnemonic: "CRJ", Format: "RIE", Flag: FlagCompareJump, Desc: "Compare and branch relative (32)",
		Operands: []Operand{Rn("R1"), Rn("R3"), M("M4"), Sn(4, "RI2")}},
	{Opcode: "EC54", Probe: ProbeDDDD, Mnemonic: "RNSBG", Format: "RIE", Flag: FlagRotate, Desc: "Rotate then and selected bits",
		Operands: []Operand{Rn("R1"), Rn("R3"), U("RI2")}},

	// SI, aa probe
	{Opcode: "91", Probe: ProbeAA, Mnemonic: "TM", Format: "SI", Flag: FlagTestMask, Desc: "Test under mask",
		Operands: []Operand{DB("D1", "B1"), U("I2")}},
	{Opcode: "92", Probe: ProbeAA, Mnemonic: "MVI", Format: "SI", Flag: FlagNone, Desc: "Move immediate",
		Hint:     Hint{Kind: HintConst, Const: 1},
		Operands: []Operand{DB("D1", "B1"), U("I2")}},

	// SIY, dddd probe
	{Opcode: "EB51", Probe: ProbeDDDD, Mnemonic: "TMY", Format: "SIY", Flag: FlagTestMask, Desc: "Test under mask (long displacement)",
		Operands: []Operand{LDB("DL1", "DH1", "B1"), U("I2")}},

	// S, aa probe
	{Opcode: "82", Probe: ProbeAA, Mnemonic: "LPSW", Format: "S", Flag: FlagNone, Desc: "Load program status word",
		Operands: []Operand{DB("D2", "B2")}},

	// SS1/SS2, aa probe
	{Opcode: "D2", Probe: ProbeAA, Mnemonic: "MVC", Format: "SS1", Flag: FlagNone, Desc: "Move (character)",
		Hint:     Hint{Kind: HintLenField, LenField: "L1"},
		Operands: []Operand{DLB("D1", "B1", 0), DB("D2", "B2")}},
	{Opcode: "F2", Probe: ProbeAA, Mnemonic: "PACK", Format: "SS2", Flag: FlagNone, Desc: "Pack",
		Operands: []Operand{DLB("D1", "B1", 0), DLB("D2", "B2", 0)}},
	{Opcode: "F8", Probe: ProbeAA, Mnemonic: "ZAP", Format: "SS2", Flag: FlagNone, Desc: "Zero and add (decimal)",
		Operands: []Operand{DLB("D1", "B1", 0), DLB("D2", "B2", 0)}},

	// Vector (VRX/VRR), dddd probe
	{Opcode: "E706", Probe: ProbeDDDD, Mnemonic: "VL", Format: "VRX", Flag: FlagNone, Desc: "Vector load",
		Operands: []Operand{Vn("V1"), DVB("D2", "X2", "B2")}},
	{Opcode: "E70E", Probe: ProbeDDDD, Mnemonic: "VST", Format: "VRX", Flag: FlagNone, Desc: "Vector store",
		Operands: []Operand{Vn("V1"), DVB("D2", "X2", "B2")}},
	{Opcode: "E7F3", Probe: ProbeDDDD, Mnemonic: "VA", Format: "VRR", Flag: FlagArith, Desc: "Vector add",
		Operands: []Operand{Vn("V1"), Vn("V2"), Vn("V3"), M("M4")}},
}

func init() {
	if err := validateInstructions(Instructions, Formats); err != nil {
		panic(err)
	}
}

func validateInstructions(instrs []Instruction, formats map[string]Format) error {
	seenMnem := map[string]bool{}
	seenOp := map[ProbeKind]map[string]bool{}
	for _, in := range instrs {
		if _, ok := formats[in.Format]; !ok {
			return fmt.Errorf("DIS0005: instruction %s references unknown format %s", in.Mnemonic, in.Format)
		}
		if seenMnem[in.Mnemonic] {
			return fmt.Errorf("DIS0003: duplicate mnemonic %s", in.Mnemonic)
		}
		seenMnem[in.Mnemonic] = true
		if seenOp[in.Probe] == nil {
			seenOp[in.Probe] = map[string]bool{}
		}
		if seenOp[in.Probe][in.Opcode] {
			return fmt.Errorf("DIS0004: duplicate opcode %s at probe position %d", in.Opcode, in.Probe)
		}
		seenOp[in.Probe][in.Opcode] = true
	}
	return nil
}
