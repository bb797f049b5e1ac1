// Package data implements the typed data decoder of spec §4.5: the
// A/B/C/F/H/P/S/X typed forms plus the auto-detect "data friendly form"
// heuristic used when no type tag is in force.
//
// Shaped like the teacher's per-mode AddrMode.Parse: given a byte cursor
// and context, decode one data item, return the emitted text and the
// number of bytes consumed.
package data

import (
	"fmt"

	"github.com/rmsk2/zdisasm/internal/opcode"
	"github.com/rmsk2/zdisasm/internal/registry"
)

// LabelResolver is the subset of *registry.Labels the data decoder needs
// to materialize address-constant targets.
type LabelResolver interface {
	ReferLabel(fromLoc, toLoc, length int) string
}

// Context carries the per-call state the decoder needs beyond the raw
// bytes: the current location (for alignment decisions) and the
// registries used to resolve A/S-type targets.
type Context struct {
	Loc    int
	Labels LabelResolver
	Regs   *registry.Registers
}

// Result is the outcome of decoding one data tag's worth of bytes: the
// emitted lines (one per DC-equivalent item) and how many bytes were
// consumed from the slice.
type Result struct {
	Lines    []string
	Consumed int
}

// Decode dispatches on dtype ("" meaning auto-detect) and returns the
// rendered DC lines for the whole slice.
func Decode(b []byte, dtype string, ctx *Context) (Result, error) {
	switch dtype {
	case "A":
		return decodeAddress(b, ctx)
	case "B":
		return decodeBit(b), nil
	case "C":
		return decodeChar(b), nil
	case "F":
		return decodeFullword(b, ctx.Loc), nil
	case "H":
		return decodeHalfword(b, ctx.Loc), nil
	case "P":
		return decodePacked(b)
	case "S":
		return decodeSType(b, ctx), nil
	case "X":
		return decodeHex(b), nil
	case "":
		return autoDetect(b, ctx)
	default:
		return Result{}, fmt.Errorf("DIS0001: unknown data type %q", dtype)
	}
}

func decodeAddress(b []byte, ctx *Context) (Result, error) {
	var lines []string
	loc := ctx.Loc
	i := 0
	for i < len(b) {
		remaining := len(b) - i
		switch {
		case remaining >= 4:
			v := be32(b[i : i+4])
			label := ctx.Labels.ReferLabel(loc, int(v), 4)
			if loc%4 == 0 {
				lines = append(lines, fmt.Sprintf("A(%s)", label))
			} else {
				lines = append(lines, fmt.Sprintf("AL4(%s)", label))
			}
			i += 4
			loc += 4
		case remaining == 3:
			v := be32(append([]byte{0}, b[i:i+3]...))
			label := ctx.Labels.ReferLabel(loc, int(v), 3)
			lines = append(lines, fmt.Sprintf("AL3(%s)", label))
			i += 3
			loc += 3
		default:
			v := be32(append(make([]byte, 4-remaining), b[i:]...))
			lines = append(lines, fmt.Sprintf("AL%d(%d)", remaining, v))
			i += remaining
			loc += remaining
		}
	}
	return Result{Lines: lines, Consumed: len(b)}, nil
}

func decodeBit(b []byte) Result {
	lines := make([]string, 0, len(b))
	for _, v := range b {
		lines = append(lines, fmt.Sprintf("B'%08b'", v))
	}
	return Result{Lines: lines, Consumed: len(b)}
}

func decodeHex(b []byte) Result {
	const chunk = 12
	var lines []string
	for i := 0; i < len(b); i += chunk {
		end := i + chunk
		if end > len(b) {
			end = len(b)
		}
		lines = append(lines, fmt.Sprintf("XL%d'%X'", end-i, b[i:end]))
	}
	if len(lines) == 0 {
		lines = []string{"XL0''"}
	}
	return Result{Lines: lines, Consumed: len(b)}
}

func decodeChar(b []byte) Result {
	const lineLen = 50
	var lines []string
	for i := 0; i < len(b); i += lineLen {
		end := i + lineLen
		if end > len(b) {
			end = len(b)
		}
		chunk := b[i:end]
		text, trimmed := ebcdicText(chunk)
		if trimmed < len(chunk) {
			lines = append(lines, fmt.Sprintf("CL%d'%s'", len(chunk), text))
		} else {
			lines = append(lines, fmt.Sprintf("C'%s'", text))
		}
	}
	return Result{Lines: lines, Consumed: len(b)}
}

// ebcdicText renders chunk as ASCII text with trailing EBCDIC blanks
// (0x40) compressed out; trimmed is the length after compression.
func ebcdicText(chunk []byte) (string, int) {
	end := len(chunk)
	for end > 0 && chunk[end-1] == 0x40 {
		end--
	}
	out := make([]byte, end)
	for i := 0; i < end; i++ {
		if a, ok := opcode.EBCDICToASCII(chunk[i]); ok {
			out[i] = a
		} else {
			out[i] = '.'
		}
	}
	return string(out), end
}

func decodeFullword(b []byte, loc int) Result {
	var lines []string
	i, l := 0, loc
	for i < len(b) {
		if len(b)-i >= 4 {
			v := int32(be32(b[i : i+4]))
			if l%4 == 0 {
				lines = append(lines, fmt.Sprintf("F'%d'", v))
			} else {
				lines = append(lines, fmt.Sprintf("FL4'%d'", v))
			}
			i += 4
			l += 4
			continue
		}
		n := len(b) - i
		v := be32(append(make([]byte, 4-n), b[i:]...))
		lines = append(lines, fmt.Sprintf("FL%d'%d'", n, v))
		i += n
		l += n
	}
	return Result{Lines: lines, Consumed: len(b)}
}

func decodeHalfword(b []byte, loc int) Result {
	var lines []string
	i, l := 0, loc
	for i < len(b) {
		if len(b)-i >= 2 {
			v := int16(be16(b[i : i+2]))
			if l%2 == 0 {
				lines = append(lines, fmt.Sprintf("H'%d'", v))
			} else {
				lines = append(lines, fmt.Sprintf("HL2'%d'", v))
			}
			i += 2
			l += 2
			continue
		}
		lines = append(lines, fmt.Sprintf("HL1'%d'", b[i]))
		i++
		l++
	}
	return Result{Lines: lines, Consumed: len(b)}
}

// decodePacked implements the §4.5 "P" decoder: scan for a sign nibble
// (A-F) at an even byte-pair boundary within the first 8 bytes; if found,
// the run up to and including that byte is one packed-decimal constant.
func decodePacked(b []byte) (Result, error) {
	signIdx := -1
	limit := len(b)
	if limit > 8 {
		limit = 8
	}
	for i := 1; i <= limit; i += 2 {
		if i > len(b) {
			break
		}
		lowNibble := b[i-1] & 0x0F
		if lowNibble >= 0xA {
			signIdx = i - 1
			break
		}
	}
	if signIdx < 0 {
		return decodeHex(b), nil
	}
	n := signIdx + 1
	digits := packedDigits(b[:n])
	neg := b[n-1]&0x0F == 0xB || b[n-1]&0x0F == 0xD
	sign := ""
	if neg {
		sign = "-"
	}
	return Result{Lines: []string{fmt.Sprintf("PL%d'%s%s'", n, sign, digits)}, Consumed: n}, nil
}

func packedDigits(b []byte) string {
	var out []byte
	for i, v := range b {
		hi := v >> 4
		lo := v & 0x0F
		if hi <= 9 {
			out = append(out, '0'+hi)
		}
		if i == len(b)-1 {
			break
		}
		if lo <= 9 {
			out = append(out, '0'+lo)
		}
	}
	return string(out)
}

// decodeSType implements the §4.5 "S" decoder over 2-byte base+displacement
// constants, collapsing runs that point at the current location to
// nS(*).
func decodeSType(b []byte, ctx *Context) Result {
	type sval struct {
		reg  int
		disp int
	}
	var vals []sval
	for i := 0; i+1 < len(b); i += 2 {
		word := be16(b[i : i+2])
		vals = append(vals, sval{reg: int(word >> 12), disp: int(word & 0x0FFF)})
	}
	var lines []string
	i := 0
	for i < len(vals) {
		if isCurrentLoc(vals[i].reg, vals[i].disp, ctx) {
			run := 1
			for i+run < len(vals) && isCurrentLoc(vals[i+run].reg, vals[i+run].disp, ctx) {
				run++
			}
			if run == 1 {
				lines = append(lines, "S(*)")
			} else {
				lines = append(lines, fmt.Sprintf("%dS(*)", run))
			}
			i += run
			continue
		}
		lines = append(lines, fmt.Sprintf("S(X'%03X'(R%d))", vals[i].disp, vals[i].reg))
		i++
	}
	return Result{Lines: lines, Consumed: len(vals) * 2}
}

func isCurrentLoc(reg, disp int, ctx *Context) bool {
	if ctx.Regs == nil {
		return false
	}
	bind := ctx.Regs.Get(reg)
	return bind.Kind == registry.CSECTBound && bind.CSECTLoc+disp == ctx.Loc
}

func be16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }

func be32(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}
