package opcode

// PrecedingClass is the condition class of the instruction that precedes an
// extended-mnemonic candidate (spec §4.6 step 8): A (arithmetic), C
// (compare), M (test-under-mask) or "." (anything else, including c/SetCC).
type PrecedingClass byte

const (
	ClassNone  PrecedingClass = '.'
	ClassArith PrecedingClass = 'A'
	ClassCmp   PrecedingClass = 'C'
	ClassMask  PrecedingClass = 'M'
)

// ClassFor derives the preceding-instruction-class update from a just-
// emitted instruction's semantic flag (spec §4.6 step 8: "A, C, M map
// directly; others leave it unchanged except c which also sets a generic
// class but is treated as . for extended-mnemonic selection").
func ClassFor(flag SemFlag, current PrecedingClass) PrecedingClass {
	switch flag {
	case FlagArith:
		return ClassArith
	case FlagCompare:
		return ClassCmp
	case FlagTestMask:
		return ClassMask
	case FlagSetCC:
		return ClassNone
	default:
		return current
	}
}

// classTable is a mask->mnemonic table scoped to one preceding-instruction
// class. Extended mnemonic tables (spec §4.1, §4.6 step 8) are indexed by
// (preceding-instruction-class, mask), not mask alone: the same mask means
// "equal" after a compare, "zero" after a test-under-mask, and "plus" after
// an arithmetic op.
type classTable map[PrecedingClass]map[byte]string

// Lookup resolves mask under class, falling back to ClassNone's entries
// when class carries no override (most masks only vary by class for
// compare/test-mask/arithmetic; everything else uses the ClassNone table).
func (t classTable) Lookup(class PrecedingClass, mask byte) (string, bool) {
	if sub, ok := t[class]; ok {
		if m, ok := sub[mask]; ok {
			return m, true
		}
	}
	if class != ClassNone {
		if m, ok := t[ClassNone][mask]; ok {
			return m, true
		}
	}
	return "", false
}

// BranchExtended is the BC/BCR extended-mnemonic table (spec §4.6 step 7,
// "B" flag): mask 0 -> NOP*, mask 15 -> unconditional, else per table.
// ClassNone holds the compare-style names (BH/BL/BE, ...) used whenever the
// preceding instruction wasn't itself a test-under-mask or arithmetic op;
// ClassMask and ClassArith override the masks whose conventional name
// differs after TM or arithmetic.
var BranchExtended = classTable{
	ClassNone: {
		1:  "BO",
		2:  "BH",
		3:  "BP",
		4:  "BL",
		5:  "BNE",
		6:  "BNH",
		7:  "BNL",
		8:  "BE",
		9:  "BNP",
		10: "BZ",
		11: "BNM",
		12: "BM",
		13: "BNZ",
		14: "BNO",
	},
	ClassMask: {
		1:  "BO",
		4:  "BM",
		7:  "BNZ",
		8:  "BZ",
		11: "BNM",
		14: "BNO",
	},
	ClassArith: {
		1:  "BO",
		2:  "BP",
		4:  "BM",
		7:  "BNZ",
		8:  "BZ",
		13: "BNP",
		14: "BNO",
	},
}

// RelBranchExtended is the BRC/BRCL extended-mnemonic table ("R" flag),
// same class/mask semantics as BranchExtended but for relative targets.
var RelBranchExtended = classTable{
	ClassNone: {
		1:  "JO",
		2:  "JH",
		3:  "JP",
		4:  "JL",
		5:  "JNE",
		6:  "JNH",
		7:  "JNL",
		8:  "JE",
		9:  "JNP",
		10: "JZ",
		11: "JNM",
		12: "JM",
		13: "JNZ",
		14: "JNO",
	},
	ClassMask: {
		1:  "JO",
		4:  "JM",
		7:  "JNZ",
		8:  "JZ",
		11: "JNM",
		14: "JNO",
	},
	ClassArith: {
		1:  "JO",
		2:  "JP",
		4:  "JM",
		7:  "JNZ",
		8:  "JZ",
		13: "JNP",
		14: "JNO",
	},
}

// ResolveBranch returns the extended mnemonic for a BC/BCR-class
// instruction under the given preceding-instruction class, or "" if no
// override (mask out of table range, e.g. 0 or 15 handled by the caller
// directly).
func ResolveBranch(relative bool, class PrecedingClass, mask byte) (string, bool) {
	table := BranchExtended
	if relative {
		table = RelBranchExtended
	}
	return table.Lookup(class, mask)
}

// SelectExtended maps a SELR-class mask to the extended select mnemonic
// suffix ("S" flag, spec §4.6 step 7: "extended select mnemonics; drop M4"),
// indexed by preceding-instruction-class per spec §4.1.
var SelectExtended = classTable{
	ClassNone: {
		1:  "SELRO",
		2:  "SELRH",
		8:  "SELRE",
		14: "SELRNO",
	},
	ClassMask: {
		1:  "SELRO",
		8:  "SELRZ",
		14: "SELRNO",
	},
}

// LoadOnCondExtended maps an LOCR-class mask to its extended mnemonic
// ("O" flag), indexed by preceding-instruction-class per spec §4.1.
var LoadOnCondExtended = classTable{
	ClassNone: {
		1:  "LOCRO",
		2:  "LOCRH",
		8:  "LOCRE",
		14: "LOCRNO",
	},
	ClassMask: {
		1:  "LOCRO",
		8:  "LOCRZ",
		14: "LOCRNO",
	},
}

// CompareJumpSuffix maps a compare-and-jump mask to the two-letter
// condition suffix appended to the base mnemonic ("CJ" flag, e.g. CRJ +
// mask 2 -> CRJH), indexed by preceding-instruction-class per spec §4.1.
var CompareJumpSuffix = classTable{
	ClassNone: {
		2:  "H",
		4:  "L",
		8:  "E",
		6:  "LH",
		10: "HE",
		12: "LE",
	},
}

// RotateMnemonicFor names the fixed rotate mnemonic for an RO-flagged
// instruction, appending Z when the I4 zero-flag bit (0x80) is set (spec
// §4.6 step 7, "RO" case).
func RotateMnemonicFor(base string, i4 byte) string {
	if i4&0x80 != 0 {
		return base + "Z"
	}
	return base
}
