package opcode

// probeTables buckets Instructions by ProbeKind so Lookup can try each
// position in the fixed order spec §4.6 step 2 requires.
var probeTables = struct {
	aa, ccc, dddd, bbbb map[string]*Instruction
}{
	aa:   map[string]*Instruction{},
	ccc:  map[string]*Instruction{},
	dddd: map[string]*Instruction{},
	bbbb: map[string]*Instruction{},
}

func init() {
	for i := range Instructions {
		in := &Instructions[i]
		switch in.Probe {
		case ProbeAA:
			probeTables.aa[in.Opcode] = in
		case ProbeCCC:
			probeTables.ccc[in.Opcode] = in
		case ProbeDDDD:
			probeTables.dddd[in.Opcode] = in
		case ProbeBBBB:
			probeTables.bbbb[in.Opcode] = in
		}
	}
}

// Lookup probes window (zero-padded here to 12 nibbles when shorter) in the
// fixed order of spec §4.6 step 2 and returns the first matching
// instruction.
func Lookup(window string) (Instruction, bool) {
	if len(window) < 12 {
		window = window + zeros(12-len(window))
	}

	if in, ok := probeTables.aa[window[0:2]]; ok {
		return *in, true
	}
	if in, ok := probeTables.ccc[window[0:2]+window[3:4]]; ok {
		return *in, true
	}
	if window[0] == 'E' && window[0:2] != "E5" {
		if in, ok := probeTables.dddd[window[0:2]+window[10:12]]; ok {
			return *in, true
		}
	}
	if in, ok := probeTables.bbbb[window[0:4]]; ok {
		return *in, true
	}
	return Instruction{}, false
}

func zeros(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '0'
	}
	return string(b)
}
