package opcode

// ebcdicToASCII maps the printable subset of EBCDIC (code page 037) to
// ASCII, used by internal/data's auto-detect mode to decide whether a run
// of bytes "looks like" character data (spec §4.5 data friendly form).
var ebcdicToASCII = buildEBCDICTable()

func buildEBCDICTable() map[byte]byte {
	m := map[byte]byte{
		0x40: ' ',
		0x4B: '.', 0x4C: '<', 0x4D: '(', 0x4E: '+', 0x4F: '|',
		0x50: '&', 0x5A: '!', 0x5B: '$', 0x5C: '*', 0x5D: ')', 0x5E: ';',
		0x60: '-', 0x61: '/', 0x6B: ',', 0x6C: '%', 0x6D: '_', 0x6E: '>', 0x6F: '?',
		0x7A: ':', 0x7B: '#', 0x7C: '@', 0x7D: '\'', 0x7E: '=', 0x7F: '"',
	}
	lower := "abcdefghijklmnopqrstuvwxyz"
	lowerCodes := []byte{
		0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87, 0x88, 0x89,
		0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97, 0x98, 0x99,
		0xA2, 0xA3, 0xA4, 0xA5, 0xA6, 0xA7, 0xA8, 0xA9,
	}
	for i, c := range lowerCodes {
		m[c] = lower[i]
	}
	upper := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	upperCodes := []byte{
		0xC1, 0xC2, 0xC3, 0xC4, 0xC5, 0xC6, 0xC7, 0xC8, 0xC9,
		0xD1, 0xD2, 0xD3, 0xD4, 0xD5, 0xD6, 0xD7, 0xD8, 0xD9,
		0xE2, 0xE3, 0xE4, 0xE5, 0xE6, 0xE7, 0xE8, 0xE9,
	}
	for i, c := range upperCodes {
		m[c] = upper[i]
	}
	digits := "0123456789"
	for i := 0; i < 10; i++ {
		m[0xF0+byte(i)] = digits[i]
	}
	return m
}

// IsEBCDICPrintable reports whether b has a mapped printable ASCII
// equivalent.
func IsEBCDICPrintable(b byte) bool {
	_, ok := ebcdicToASCII[b]
	return ok
}

// EBCDICToASCII returns the ASCII equivalent of an EBCDIC byte and whether
// one exists.
func EBCDICToASCII(b byte) (byte, bool) {
	a, ok := ebcdicToASCII[b]
	return a, ok
}

// EBCDICPrintableRatio returns the fraction of bs that are EBCDIC-printable.
// The auto-detect heuristic does not use it; it splits runs byte by byte
// with IsEBCDICPrintable.
func EBCDICPrintableRatio(bs []byte) float64 {
	if len(bs) == 0 {
		return 0
	}
	n := 0
	for _, b := range bs {
		if IsEBCDICPrintable(b) {
			n++
		}
	}
	return float64(n) / float64(len(bs))
}
