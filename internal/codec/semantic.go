package codec

import (
	"fmt"

	"github.com/rmsk2/zdisasm/internal/opcode"
)

// applyCondBranch implements spec §4.6 step 7's "B"/"R" cases: resolve the
// extended mnemonic by mask, discarding the mask operand once substituted.
// relative additionally resolves the branch target from the instruction's
// relative-immediate field.
func applyCondBranch(mnemonic string, operands []string, oc *opCtx, relative bool) (string, []string) {
	mask := byte(oc.pf["R1"])

	if relative {
		// operands is [maskText, offsetText]; the offset text is discarded
		// in favor of the resolved target label.
		target := resolveRelativeTarget(oc)
		label := oc.Labels.ReferLabel(oc.instrLoc, target, 0)
		switch mask {
		case 0:
			return "NOP*", []string{label}
		case 15:
			return mnemonic, []string{label}
		}
		if ext, ok := opcode.ResolveBranch(true, oc.PrecedingClass, mask); ok {
			return ext, []string{label}
		}
		return mnemonic, []string{fmt.Sprintf("%d", mask), label}
	}

	// operands is [maskText, <base/index target text>...]; drop only the
	// mask once an extended mnemonic supplies it implicitly.
	rest := operands
	if len(rest) > 0 {
		rest = rest[1:]
	}
	switch mask {
	case 0:
		return "NOP*", rest
	case 15:
		return "B", rest
	}
	if ext, ok := opcode.ResolveBranch(false, oc.PrecedingClass, mask); ok {
		return ext, rest
	}
	return mnemonic, operands
}

func applySelect(mnemonic string, operands []string, oc *opCtx) (string, []string) {
	mask := byte(oc.pf["M3"])
	if len(operands) > 0 {
		operands = operands[:len(operands)-1] // drop M4/M3 mask operand
	}
	if ext, ok := opcode.SelectExtended.Lookup(oc.PrecedingClass, mask); ok {
		return ext, operands
	}
	return mnemonic, operands
}

func applyLoadOnCond(mnemonic string, operands []string, oc *opCtx) (string, []string) {
	mask := byte(oc.pf["M3"])
	if len(operands) > 0 {
		operands = operands[:len(operands)-1]
	}
	if ext, ok := opcode.LoadOnCondExtended.Lookup(oc.PrecedingClass, mask); ok {
		return ext, operands
	}
	return mnemonic, operands
}

func applyCompareJump(mnemonic string, operands []string, oc *opCtx) (string, []string) {
	// operands is [R1text, R3text, masktext, offsettext]; the offset text
	// is replaced by the resolved target label, and the mask is folded
	// into the mnemonic suffix when known.
	mask := byte(oc.pf["M4"])
	target := resolveRelativeTarget(oc)
	label := oc.Labels.ReferLabel(oc.instrLoc, target, 0)

	rest := operands
	if len(rest) >= 2 {
		rest = rest[:len(rest)-2] // drop mask text and offset text
	}
	if suffix, ok := opcode.CompareJumpSuffix.Lookup(oc.PrecedingClass, mask); ok {
		return mnemonic + suffix, append(rest, label)
	}
	return mnemonic, append(rest, fmt.Sprintf("%d", mask), label)
}

// resolveRelativeTarget implements the §4.6 "Relative branch resolution"
// formula: offset = 2*signed(RI2), target = instruction location + offset,
// floored at zero.
func resolveRelativeTarget(oc *opCtx) int {
	raw := oc.pf["RI2"]
	width := oc.fieldWidth("RI2")
	if width == 0 {
		width = 4
	}
	offset := int(signedNibbles(raw, width)) * 2
	target := oc.instrLoc + offset
	if target < 0 {
		target = 0
	}
	return target
}
