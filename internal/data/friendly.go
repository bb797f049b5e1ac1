package data

import (
	"fmt"

	"github.com/rmsk2/zdisasm/internal/opcode"
)

// autoDetect implements spec §4.5's unspecified-type partitioning:
// EBCDIC-printable runs become text, everything else falls through to the
// alignment-aware binary rendering of friendlyForm. Runs of only 1-2
// printable bytes are never treated as text, since that's more likely a
// coincidental match inside otherwise binary data than an intended string
// (spec §8 scenario 7's 3-byte "ABC" run is the floor: it decodes as
// C'ABC', not binary).
func autoDetect(b []byte, ctx *Context) (Result, error) {
	if len(b) == 0 {
		return Result{}, nil
	}
	runs := partitionRuns(b)
	var out Result
	loc := ctx.Loc
	for i, r := range runs {
		if r.text && len(r.bytes) >= minTextRun {
			sub := decodeChar(r.bytes)
			out.Lines = append(out.Lines, sub.Lines...)
		} else {
			// Each run becomes its own DC statement, so alignment for the
			// friendly-form heuristic is judged against the run's own
			// start, not the raw byte offset into the slice: a binary run
			// that trails a text run realigns at 0 (spec §8 scenario 7:
			// the 4-byte run after "ABC" reads as F'1', not as an
			// unaligned XL4 chunk).
			runLoc := loc
			if i > 0 {
				runLoc = 0
			}
			lines := friendlyForm(r.bytes, runLoc)
			out.Lines = append(out.Lines, lines...)
		}
		loc += len(r.bytes)
	}
	out.Consumed = len(b)
	return out, nil
}

// minTextRun is the shortest printable-byte run rendered as C'...' text
// rather than falling through to the binary heuristic.
const minTextRun = 3

type run struct {
	bytes []byte
	text  bool
}

// partitionRuns splits b into maximal runs of EBCDIC-printable vs.
// non-printable bytes.
func partitionRuns(b []byte) []run {
	if len(b) == 0 {
		return nil
	}
	var out []run
	start := 0
	cur := opcode.IsEBCDICPrintable(b[0])
	for i := 1; i <= len(b); i++ {
		if i < len(b) && opcode.IsEBCDICPrintable(b[i]) == cur {
			continue
		}
		out = append(out, run{bytes: b[start:i], text: cur})
		if i < len(b) {
			start = i
			cur = opcode.IsEBCDICPrintable(b[i])
		}
	}
	return out
}

// friendlyForm implements the "data friendly form" binary heuristic of
// spec §4.5, applied to a run that wasn't chosen as text.
func friendlyForm(b []byte, loc int) []string {
	var lines []string
	i, l := 0, loc
	for i < len(b) {
		remaining := len(b) - i
		switch {
		case remaining >= 4 && l%4 == 0:
			word := b[i : i+4]
			v := int32(be32(word))
			switch {
			case abs32(v) <= 4096:
				lines = append(lines, fmt.Sprintf("F'%d'", v))
			case word[0] == 0 && word[1] == 0, word[2] == 0 && word[3] == 0, word[1] == 0 && word[3] == 0:
				hi := int16(be16(word[0:2]))
				lo := int16(be16(word[2:4]))
				lines = append(lines, fmt.Sprintf("H'%d'", hi), fmt.Sprintf("H'%d'", lo))
			default:
				lines = append(lines, fmt.Sprintf("XL4'%X'", word))
			}
			i += 4
			l += 4
		case remaining >= 2 && l%2 == 0:
			v := int16(be16(b[i : i+2]))
			if abs16(v) <= 4096 {
				lines = append(lines, fmt.Sprintf("H'%d'", v))
			} else {
				lines = append(lines, fmt.Sprintf("XL2'%X'", b[i:i+2]))
			}
			i += 2
			l += 2
		default:
			lines = append(lines, fmt.Sprintf("AL1(%d)", b[i]))
			i++
			l++
		}
	}
	return lines
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}
