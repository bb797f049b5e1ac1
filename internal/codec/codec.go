// Package codec implements the code decoder of spec §4.6: opcode probing,
// field parsing via internal/opcode's format templates, operand-recipe
// evaluation against the live registries, and semantic-flag post-processing
// into extended mnemonics.
//
// Shaped like the teacher's AddrMode.Recognize/Parse two-step dispatch,
// generalized from a flat one-byte-opcode map to the four-position nibble
// probe spec §4.6 step 2 requires.
package codec

import (
	"fmt"
	"strings"

	"github.com/rmsk2/zdisasm/internal/opcode"
	"github.com/rmsk2/zdisasm/internal/registry"
)

// Context is the live decoding state a single instruction decode needs.
type Context struct {
	Loc            int
	Labels         *registry.Labels
	Regs           *registry.Registers
	DSECTs         *registry.DSECTs
	PrecedingClass opcode.PrecedingClass
	VectorSeen     *bool
}

// Decoded is one fully rendered instruction.
type Decoded struct {
	Mnemonic string
	Operands string
	Comment  string
	Format   string
	Length   int
	NewClass opcode.PrecedingClass
}

// Decode probes window (a hex string of up to 12 nibbles; Lookup pads a
// shorter one for probing) for an opcode and, on a match, parses and
// renders it. ok is false when no instruction matched (spec §4.6 step 3:
// caller falls back to an automatic data constant). A window shorter than
// the matched format's length is returned as an error.
func Decode(window string, ctx *Context) (Decoded, bool, error) {
	in, ok := opcode.Lookup(window)
	if !ok {
		return Decoded{}, false, nil
	}
	fm, ok := opcode.Formats[in.Format]
	if !ok {
		return Decoded{}, false, fmt.Errorf("DIS0005: instruction %s references unknown format %s", in.Mnemonic, in.Format)
	}
	pf, err := fm.Parse(window)
	if err != nil {
		return Decoded{}, false, err
	}
	length := fm.NibbleLen / 2

	hintStr := in.Hint.Evaluate(pf)
	hintLen := 0
	fmt.Sscanf(hintStr, "%d", &hintLen)

	if isVectorFormat(in.Format) && ctx.VectorSeen != nil {
		*ctx.VectorSeen = true
	}

	oc := &opCtx{Context: ctx, pf: pf, hintLen: hintLen, instrLoc: ctx.Loc, format: in.Format}
	var operands []string
	for _, op := range in.Operands {
		text := renderOperand(op, oc)
		if text == "" && op.Kind == opcode.OpndOM && oc.omittedZero {
			continue
		}
		if text == "" && op.Kind == opcode.OpndHint {
			continue
		}
		if text == "" && op.Kind == opcode.OpndXR && oc.xrZero {
			continue
		}
		operands = append(operands, text)
	}

	mnemonic := in.Mnemonic
	comment := in.Desc
	newClass := opcode.ClassFor(in.Flag, ctx.PrecedingClass)

	switch in.Flag {
	case opcode.FlagCondBranch:
		mnemonic, operands = applyCondBranch(mnemonic, operands, oc, false)
	case opcode.FlagRelBranch:
		mnemonic, operands = applyCondBranch(mnemonic, operands, oc, true)
	case opcode.FlagSelect:
		mnemonic, operands = applySelect(mnemonic, operands, oc)
	case opcode.FlagLoadOnCond:
		mnemonic, operands = applyLoadOnCond(mnemonic, operands, oc)
	case opcode.FlagCompareJump:
		mnemonic, operands = applyCompareJump(mnemonic, operands, oc)
	case opcode.FlagRotate:
		mnemonic = opcode.RotateMnemonicFor(mnemonic, byte(pf["RI2"]))
	}

	if mnemonic == "SVC" {
		if code, ok := opFirstUnsigned(pf, "I1"); ok {
			if desc, ok := opcode.SVCDescription(byte(code)); ok {
				comment = desc
			}
		}
	}

	return Decoded{
		Mnemonic: mnemonic,
		Operands: strings.Join(operands, ","),
		Comment:  comment,
		Format:   in.Format,
		Length:   length,
		NewClass: newClass,
	}, true, nil
}

func isVectorFormat(name string) bool {
	return name == "VRX" || name == "VRR" || name == "VRI"
}

func opFirstUnsigned(pf opcode.ParsedFields, field string) (uint64, bool) {
	v, ok := pf[field]
	return v, ok
}
