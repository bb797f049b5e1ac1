package opcode

// svcDescriptions names the handful of well-known SVC codes an annotated
// listing is likely to reference (spec §4.1 "SVC descriptions"). Unlisted
// codes are rendered as bare numbers by the caller.
var svcDescriptions = map[byte]string{
	0:   "EXCP",
	1:   "WAIT",
	2:   "POST",
	3:   "EXIT",
	13:  "GETMAIN/FREEMAIN",
	34:  "ABEND",
	35:  "SPIE",
	51:  "ATTACH",
	78:  "DEQ",
	80:  "ENQ",
	109: "STIMER",
}

// SVCDescription returns the mnemonic description of an SVC code, if known.
func SVCDescription(code byte) (string, bool) {
	d, ok := svcDescriptions[code]
	return d, ok
}
