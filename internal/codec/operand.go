package codec

import (
	"fmt"
	"math/bits"

	"github.com/rmsk2/zdisasm/internal/opcode"
	"github.com/rmsk2/zdisasm/internal/registry"
)

// opCtx threads per-instruction decode state through operand rendering:
// the parsed fields, the general hint length (spec §4.6 step 5), and a
// couple of flags renderOperand sets so Decode can drop operands that
// resolved to "omit me".
type opCtx struct {
	*Context
	pf          opcode.ParsedFields
	hintLen     int
	instrLoc    int
	format      string
	omittedZero bool
	xrZero      bool
}

// fieldWidth returns the declared nibble width of field in oc's format, or
// 0 if the format has no such field.
func (oc *opCtx) fieldWidth(field string) int {
	fm, ok := opcode.Formats[oc.format]
	if !ok {
		return 0
	}
	for _, fs := range fm.Fields {
		if fs.Name == field {
			return fs.Width
		}
	}
	return 0
}

func renderOperand(op opcode.Operand, oc *opCtx) string {
	switch op.Kind {
	case opcode.OpndR:
		return fmt.Sprintf("R%d", oc.pf[op.Fields[0]])
	case opcode.OpndV:
		return fmt.Sprintf("V%d", resolveVectorReg(oc.pf, op.Fields[0]))
	case opcode.OpndXR:
		n := oc.pf[op.Fields[0]]
		if n == 0 {
			oc.xrZero = true
			return ""
		}
		return fmt.Sprintf("R%d", n)
	case opcode.OpndU:
		return friendlyUnsigned(oc.pf[op.Fields[0]])
	case opcode.OpndS2:
		return fmt.Sprintf("%d", signedNibbles(oc.pf[op.Fields[0]], 2))
	case opcode.OpndS3:
		return fmt.Sprintf("%d", signedNibbles(oc.pf[op.Fields[0]], 3))
	case opcode.OpndS4:
		return fmt.Sprintf("%d", signedNibbles(oc.pf[op.Fields[0]], 4))
	case opcode.OpndS5:
		return fmt.Sprintf("%d", signedNibbles(oc.pf[op.Fields[0]], 5))
	case opcode.OpndS8:
		return fmt.Sprintf("%d", signedNibbles(oc.pf[op.Fields[0]], 8))
	case opcode.OpndX:
		return fmt.Sprintf("X'%X'", oc.pf[op.Fields[0]])
	case opcode.OpndM:
		return fmt.Sprintf("B'%04b'", oc.pf[op.Fields[0]])
	case opcode.OpndOM:
		v := oc.pf[op.Fields[0]]
		if v == 0 {
			oc.omittedZero = true
			return ""
		}
		return fmt.Sprintf("%d", v)
	case opcode.OpndML:
		return fmt.Sprintf("%d", bits.OnesCount8(uint8(oc.pf[op.Fields[0]])))
	case opcode.OpndDB:
		return renderDB(oc, op.Fields[0], "", op.Fields[1], oc.hintLen)
	case opcode.OpndDBS:
		return renderDB(oc, op.Fields[0], "", op.Fields[1], oc.hintLen)
	case opcode.OpndDXB:
		return renderDB(oc, op.Fields[0], op.Fields[1], op.Fields[2], oc.hintLen)
	case opcode.OpndLDB:
		l := int(oc.pf[op.Fields[1]]) + 1
		return renderDB(oc, op.Fields[0], "", op.Fields[2], l)
	case opcode.OpndLDXB:
		l := int(oc.pf[op.Fields[1]]) + 1
		return renderDB(oc, op.Fields[0], op.Fields[2], op.Fields[3], l)
	case opcode.OpndDLB:
		return renderDB(oc, op.Fields[0], "", op.Fields[1], op.Width)
	case opcode.OpndDVB:
		return renderVectorDB(oc, op.Fields[0], op.Fields[1], op.Fields[2])
	case opcode.OpndS:
		return renderS(oc, op.Fields[0], op.Fields[1])
	case opcode.OpndHint:
		recordHintTarget(oc, op.Fields[0], op.Fields[1], op.Width)
		return ""
	default:
		return ""
	}
}

// friendlyUnsigned implements the u(x) helper of spec §4.6 step 6: small
// values print as decimal, printable EBCDIC bytes as C'c', the hard blank
// (0x40) as C' ', everything else as X'..'.
func friendlyUnsigned(v uint64) string {
	if v == 0x40 {
		return "C' '"
	}
	if v <= 255 {
		if a, ok := opcode.EBCDICToASCII(byte(v)); ok {
			return fmt.Sprintf("C'%c'", a)
		}
	}
	if v < 256 {
		return fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("X'%X'", v)
}

func signedNibbles(raw uint64, nibbles int) int64 {
	bitsWide := uint(nibbles * 4)
	v := int64(raw)
	if raw&(1<<(bitsWide-1)) != 0 {
		v -= int64(1) << bitsWide
	}
	return v
}

// renderDB implements db/dbs/dxb/ldb/ldxb: resolve a base(+index)+disp
// operand to a label when the base register is bound, else fall back to
// explicit disp(index,base) form (spec §4.6 step 6).
func renderDB(oc *opCtx, dField, xField, bField string, length int) string {
	disp := int(oc.pf[dField])
	baseReg := int(oc.pf[bField])
	var indexReg int
	if xField != "" {
		indexReg = int(oc.pf[xField])
	}

	if baseReg != 0 {
		bind := oc.Regs.Get(baseReg)
		switch bind.Kind {
		case registry.CSECTBound:
			target := bind.CSECTLoc + disp
			label := oc.Labels.ReferLabel(oc.instrLoc, target, length)
			if indexReg != 0 {
				return fmt.Sprintf("%s(R%d)", label, indexReg)
			}
			return label
		case registry.DSECTBound:
			d := oc.DSECTs.GetOrCreate(bind.DSECTName, "")
			label := d.RecordField(bind.DSECTOffset+disp, length)
			if indexReg != 0 {
				return fmt.Sprintf("%s(R%d)", label, indexReg)
			}
			return label
		}
	}

	idx := ""
	if indexReg != 0 {
		idx = fmt.Sprintf("R%d", indexReg)
	}
	return fmt.Sprintf("%d(%s,R%d)", disp, idx, baseReg)
}

func renderVectorDB(oc *opCtx, dField, xField, bField string) string {
	return renderDB(oc, dField, xField, bField, oc.hintLen)
}

// renderS implements the s(disp,base) helper: S(X'disp'(Rb)).
func renderS(oc *opCtx, dField, bField string) string {
	disp := oc.pf[dField]
	base := oc.pf[bField]
	return fmt.Sprintf("S(X'%X'(R%d))", disp, base)
}

// recordHintTarget implements hint(len,b,d): records the observed operand
// length at the base-register-relative target without emitting operand
// text (used by width widening at finalization).
func recordHintTarget(oc *opCtx, bField, dField string, length int) {
	disp := int(oc.pf[dField])
	baseReg := int(oc.pf[bField])
	if baseReg == 0 {
		return
	}
	bind := oc.Regs.Get(baseReg)
	switch bind.Kind {
	case registry.CSECTBound:
		target := bind.CSECTLoc + disp
		oc.Labels.RecordUsedLength(target, length)
	case registry.DSECTBound:
		d := oc.DSECTs.GetOrCreate(bind.DSECTName, "")
		d.RecordField(bind.DSECTOffset+disp, length)
	}
}

// resolveVectorReg reconstructs a 5-bit vector register number from a
// 4-bit parse field, using the RXB high-bit extension nibble when the
// format carries one (spec §4.6 step 4): RXB's bits supply the high bit
// of V1..V4 respectively, most-significant bit first.
func resolveVectorReg(pf opcode.ParsedFields, field string) int {
	raw := int(pf[field])
	rxb, hasRXB := pf["RXB"]
	if !hasRXB || len(field) < 2 {
		return raw
	}
	bitPos := int(field[1]-'1')
	if bitPos < 0 || bitPos > 3 {
		return raw
	}
	highBit := (int(rxb) >> (3 - bitPos)) & 1
	return raw | (highBit << 4)
}
