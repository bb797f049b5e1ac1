// Package annotation tokenizes the interleaved hex/annotation input stream
// of spec §4.4: action characters (`,` `.` `|` `/`) and parenthesized tag
// groups. There is no analogue in the teacher (6502 input has no inline
// annotation language); this is built in the teacher's manner of small,
// explicit, switch-driven parsers rather than reaching for a
// parser-combinator or regex-table library, none of which appear anywhere
// in the retrieved pack for this kind of terse inline grammar.
package annotation

import "strings"

// Harden applies the line-level report artifact rule of spec §6: three or
// more consecutive spaces outside quoted tag text terminate the
// significant content of the line. Quoted text (single or double) is
// passed through untouched even if it contains long runs of spaces, since
// those are user content, not report padding.
func Harden(line string) string {
	var b strings.Builder
	inQuote := byte(0)
	pending := 0
	flush := func() {
		if pending > 0 {
			b.WriteString(strings.Repeat(" ", pending))
			pending = 0
		}
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		if inQuote != 0 {
			b.WriteByte(c)
			if c == inQuote {
				inQuote = 0
			}
			continue
		}
		if c == '\'' || c == '"' {
			flush()
			inQuote = c
			b.WriteByte(c)
			continue
		}
		if c == ' ' {
			pending++
			if pending >= 3 {
				return b.String()
			}
			continue
		}
		flush()
		b.WriteByte(c)
	}
	flush()
	return b.String()
}

// HardenAll applies Harden to every line of a multi-line input and rejoins
// with newlines, so downstream tokenization sees one hardened stream.
func HardenAll(input string) string {
	lines := strings.Split(input, "\n")
	for i, l := range lines {
		lines[i] = Harden(l)
	}
	return strings.Join(lines, "\n")
}
