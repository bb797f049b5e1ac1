// Package registry holds the engine's three pieces of cross-cutting state
// named in spec §4.2/§4.3: the location/label registry, the DSECT registry,
// and the register-binding table. These generalize the teacher's single
// LabelMapStruct (a bounds-checked map[int]string) into the richer
// defined/referenced-only, length-tracking model this domain needs.
package registry

import "sort"

// Reference records one materialization of an address: who referred to it,
// what it targets, and how many bytes the referrer's operand implied.
type Reference struct {
	FromLoc int
	ToLoc   int
	Length  int
}

// Labels is the location<->label registry of spec §4.2.
type Labels struct {
	labelToLoc map[string]int
	locToLabel map[int]string
	defined    map[string]bool
	usedLength map[int]int
	refs       []Reference
	backRefs   []int // locations referenced after their statement was already emitted
}

// NewLabels returns an empty registry.
func NewLabels() *Labels {
	return &Labels{
		labelToLoc: map[string]int{},
		locToLabel: map[int]string{},
		defined:    map[string]bool{},
		usedLength: map[int]int{},
	}
}

// DefineLabel is an explicit definition: a tag or an emitted code/data
// statement names loc. Redefining an existing label to a different
// location is a caller bug (invariant 2) and is reported rather than
// silently accepted.
func (l *Labels) DefineLabel(name string, loc int) (ok bool, conflictLoc int) {
	if existing, has := l.labelToLoc[name]; has && existing != loc {
		return false, existing
	}
	l.labelToLoc[name] = loc
	l.locToLabel[loc] = name
	l.defined[name] = true
	return true, 0
}

// ReferLabel materializes a reference to loc from fromLoc, auto-generating
// the label L<hex> when loc has none yet, and records the observed operand
// length. It returns the (possibly just-created) label name.
func (l *Labels) ReferLabel(fromLoc, toLoc, length int) string {
	name, has := l.locToLabel[toLoc]
	if !has {
		name = AutoLabel(toLoc)
		l.labelToLoc[name] = toLoc
		l.locToLabel[toLoc] = name
	}
	l.refs = append(l.refs, Reference{FromLoc: fromLoc, ToLoc: toLoc, Length: length})
	l.RecordUsedLength(toLoc, length)
	if toLoc < fromLoc && !l.defined[name] {
		l.backRefs = append(l.backRefs, toLoc)
	}
	return name
}

// LabelAt returns the label assigned to loc, if any.
func (l *Labels) LabelAt(loc int) (string, bool) {
	name, ok := l.locToLabel[loc]
	return name, ok
}

// LocationOf returns the location a label names, if any.
func (l *Labels) LocationOf(name string) (int, bool) {
	loc, ok := l.labelToLoc[name]
	return loc, ok
}

// RecordUsedLength widens the max-observed operand length recorded at loc
// (spec §4.2 recordUsedLength; the "length invariant" of §3).
func (l *Labels) RecordUsedLength(loc, n int) {
	if n > l.usedLength[loc] {
		l.usedLength[loc] = n
	}
}

// UsedLength returns the max-observed length at loc, 0 if none recorded.
func (l *Labels) UsedLength(loc int) int {
	return l.usedLength[loc]
}

// IsDefined reports whether name was explicitly defined (as opposed to
// materialized only by a reference).
func (l *Labels) IsDefined(name string) bool {
	return l.defined[name]
}

// BackReferences returns the locations pushed onto the back-reference list
// (targets that were already emitted, undefined, at the time they were
// first referenced), in the order they were first observed, deduplicated.
func (l *Labels) BackReferences() []int {
	seen := map[int]bool{}
	out := make([]int, 0, len(l.backRefs))
	for _, loc := range l.backRefs {
		if seen[loc] {
			continue
		}
		seen[loc] = true
		out = append(out, loc)
	}
	return out
}

// UndefinedLabel is one line of the finalization undefined-labels report
// (spec §4.7, §7 item 6).
type UndefinedLabel struct {
	Label       string
	Location    int
	UsedLength  int
	FromLoc     int
	FromInstr   string
}

// UndefinedLabels returns, in location order, every label that was
// referenced but never explicitly defined. FromInstr is left blank here;
// internal/stmt's undefined-labels report fills it in from the statement
// buffer since this registry has no notion of mnemonics.
func (l *Labels) UndefinedLabels() []UndefinedLabel {
	var out []UndefinedLabel
	for name, loc := range l.labelToLoc {
		if l.defined[name] {
			continue
		}
		from := -1
		for _, r := range l.refs {
			if r.ToLoc == loc {
				from = r.FromLoc
				break
			}
		}
		out = append(out, UndefinedLabel{
			Label:      name,
			Location:   loc,
			UsedLength: l.usedLength[loc],
			FromLoc:    from,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out
}

// AutoLabel formats an auto-generated label for loc: L followed by uppercase
// hex with no leading zeros (spec §3).
func AutoLabel(loc int) string {
	return "L" + upperHexNoLeadingZeros(loc)
}

func upperHexNoLeadingZeros(n int) string {
	if n == 0 {
		return "0"
	}
	const digits = "0123456789ABCDEF"
	var buf [16]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = digits[n&0xF]
		n >>= 4
	}
	return string(buf[i:])
}
