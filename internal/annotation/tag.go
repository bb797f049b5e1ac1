package annotation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies which of the §4.4 tag forms a parsed Tag represents.
type Kind int

const (
	KindDataType Kind = iota
	KindSection
	KindComment
	KindOrg
	KindUsingHere     // Rn[+Rm...] with no "="
	KindDrop          // Rn[+Rm...]=
	KindUsingAtHex    // Rn[+Rm...]=hex
	KindUsingAtLabel  // Rn[+Rm...]=label
	KindUsingDSECT    // Rn[+Rm...]=>name['desc']
	KindLabelHere     // bare label
	KindLabelAt       // label=hex
)

var dataTypeLetters = map[string]bool{
	"A": true, "B": true, "C": true, "F": true, "H": true, "P": true, "S": true, "X": true,
}

// regTagPattern matches "R<n>" possibly chained with "+R<m>" and an
// optional "=" clause; capture groups: (1) the Rn[+Rm...] part, (2) the
// full "=..." remainder if present.
var regTagPattern = regexp.MustCompile(`^((?:R\d{1,2})(?:\+R\d{1,2})*)(=.*)?$`)
var regNumPattern = regexp.MustCompile(`R(\d{1,2})`)

// Tag is one parsed element of a tag group.
type Tag struct {
	Kind      Kind
	Letter    string // KindDataType: "" for the empty/reset form
	Text      string // KindSection / KindComment: the banner/comment text
	Hex       int    // KindOrg / KindUsingAtHex / KindLabelAt
	Regs      []int  // register-binding forms
	Label     string // KindUsingAtLabel / KindLabelHere / KindLabelAt
	DSECTName string // KindUsingDSECT
	Desc      string // KindUsingDSECT
}

// Parse interprets one raw (already comma-split) tag string per spec §4.4.
func Parse(raw string) (Tag, error) {
	s := strings.TrimSpace(raw)

	if s == "" {
		return Tag{Kind: KindDataType, Letter: ""}, nil
	}
	if len(s) == 1 && dataTypeLetters[strings.ToUpper(s)] {
		return Tag{Kind: KindDataType, Letter: strings.ToUpper(s)}, nil
	}
	if strings.HasPrefix(s, "\"") {
		text, err := unquote(s, '"')
		if err != nil {
			return Tag{}, err
		}
		return Tag{Kind: KindSection, Text: text}, nil
	}
	if strings.HasPrefix(s, "'") {
		text, err := unquote(s, '\'')
		if err != nil {
			return Tag{}, err
		}
		return Tag{Kind: KindComment, Text: text}, nil
	}
	if strings.HasPrefix(s, "@") {
		hx, err := parseHex(s[1:])
		if err != nil {
			return Tag{}, fmt.Errorf("bad ORG tag %q: %w", s, err)
		}
		return Tag{Kind: KindOrg, Hex: hx}, nil
	}
	if m := regTagPattern.FindStringSubmatch(s); m != nil {
		regs := parseRegChain(m[1])
		clause := m[2]
		if clause == "" {
			return Tag{Kind: KindUsingHere, Regs: regs}, nil
		}
		rest := clause[1:] // drop leading "="
		if rest == "" {
			return Tag{Kind: KindDrop, Regs: regs}, nil
		}
		if strings.HasPrefix(rest, ">") {
			name, desc, err := parseDSECTBind(rest[1:])
			if err != nil {
				return Tag{}, err
			}
			return Tag{Kind: KindUsingDSECT, Regs: regs, DSECTName: name, Desc: desc}, nil
		}
		if hx, err := parseHex(rest); err == nil {
			return Tag{Kind: KindUsingAtHex, Regs: regs, Hex: hx}, nil
		}
		return Tag{Kind: KindUsingAtLabel, Regs: regs, Label: rest}, nil
	}

	if eq := strings.IndexByte(s, '='); eq >= 0 {
		name := s[:eq]
		hx, err := parseHex(s[eq+1:])
		if err != nil {
			return Tag{}, fmt.Errorf("bad label=hex tag %q: %w", s, err)
		}
		return Tag{Kind: KindLabelAt, Label: name, Hex: hx}, nil
	}
	return Tag{Kind: KindLabelHere, Label: s}, nil
}

func unquote(s string, q byte) (string, error) {
	if len(s) < 2 || s[len(s)-1] != q {
		return "", fmt.Errorf("unterminated quoted tag %q", s)
	}
	return s[1 : len(s)-1], nil
}

func parseRegChain(s string) []int {
	matches := regNumPattern.FindAllStringSubmatch(s, -1)
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		n, _ := strconv.Atoi(m[1])
		out = append(out, n)
	}
	return out
}

// parseDSECTBind parses the "name['desc']" remainder of a =>name['desc']
// clause.
func parseDSECTBind(s string) (name, desc string, err error) {
	q := strings.IndexByte(s, '\'')
	if q < 0 {
		return s, "", nil
	}
	name = s[:q]
	rest := s[q:]
	desc, err = unquote(rest, '\'')
	if err != nil {
		return "", "", fmt.Errorf("bad DSECT description in %q: %w", s, err)
	}
	return name, desc, nil
}

func parseHex(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty hex value")
	}
	v, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
