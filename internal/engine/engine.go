// Package engine is the driver of spec §4 and §2's "Driver" component: it
// owns every registry, tokenizes the annotation-interleaved input, slices
// hex at action characters, dispatches each slice to the code or data
// decoder, applies tag-group side effects, and runs finalization.
//
// Grounded on the teacher's Disassembler.ParseBinary main loop (probe,
// dispatch, append, fall through to an "unrecognized" marker on miss),
// generalized to the annotation-sliced code/data dispatch this domain needs.
package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rmsk2/zdisasm/internal/annotation"
	"github.com/rmsk2/zdisasm/internal/codec"
	"github.com/rmsk2/zdisasm/internal/data"
	"github.com/rmsk2/zdisasm/internal/opcode"
	"github.com/rmsk2/zdisasm/internal/registry"
	"github.com/rmsk2/zdisasm/internal/stmt"
)

// Mode is the engine's current code/data interpretation mode (spec §4.4).
type Mode int

const (
	ModeCode Mode = iota
	ModeData
)

// Engine holds all mutable decoding state for one disassembly session
// (spec §5: "a single disassembly session owns all tables and buffers
// from start to finalization").
type Engine struct {
	Buf    *stmt.Buffer
	Labels *registry.Labels
	Regs   *registry.Registers
	DSECTs *registry.DSECTs

	loc            int
	mode           Mode
	dataType       string
	precedingClass opcode.PrecedingClass
	vectorSeen     bool
	todoCount      int

	sectionName string
	orgEmitted  map[int]bool

	formatCounts   map[string]int
	mnemonicCounts map[string]map[string]int // format -> mnemonic -> count
}

// New returns an engine ready to run, with the location counter at start.
func New(start int) *Engine {
	return &Engine{
		Buf:            stmt.NewBuffer(),
		Labels:         registry.NewLabels(),
		Regs:           registry.NewRegisters(),
		DSECTs:         registry.NewDSECTs(),
		loc:            start,
		mode:           ModeCode,
		precedingClass: opcode.ClassNone,
		orgEmitted:     map[int]bool{},
		formatCounts:   map[string]int{},
		mnemonicCounts: map[string]map[string]int{},
	}
}

// Run tokenizes and processes the full annotated input stream.
func (e *Engine) Run(input string) error {
	hardened := annotation.HardenAll(input)
	toks, err := annotation.Scan(hardened)
	if err != nil {
		return err
	}
	for _, t := range toks {
		switch t.Kind {
		case annotation.TokHex:
			if err := e.processHex(t.Hex); err != nil {
				return err
			}
		case annotation.TokAction:
			e.processAction(t.Action)
		case annotation.TokTagGroup:
			if err := e.processTagGroup(t.Tags); err != nil {
				return err
			}
		}
	}
	if trailing := e.Buf.TrailingDirectives(e.loc); len(trailing) > 0 {
		e.attachLines(e.loc, trailing)
	}
	if _, ok := e.Labels.LabelAt(e.loc); ok {
		e.emitDS0X()
	}
	return nil
}

// processAction implements spec §4.4's four action characters.
func (e *Engine) processAction(a rune) {
	switch a {
	case ',':
		e.mode = ModeCode
		e.dataType = ""
	case '.':
		e.mode = ModeData
	case '/':
		e.mode = ModeData
		e.dataType = ""
	}
	if a != '|' {
		if _, ok := e.Labels.LabelAt(e.loc); !ok {
			e.Labels.DefineLabel(registry.AutoLabel(e.loc), e.loc)
		}
	}
}

// processHex decodes one contiguous hex run under the current mode, first
// flushing any directive attached to the current location (USING/DROP/ORG)
// so it renders immediately ahead of the statement it governs.
func (e *Engine) processHex(hexStr string) error {
	if dirs := e.Buf.DirectivesAt(e.loc); len(dirs) > 0 {
		e.attachLines(e.loc, dirs)
	}
	clean, oddErr := e.hardenOddHex(hexStr)
	if oddErr != nil {
		return nil // error already reported in-band
	}
	if e.mode == ModeCode {
		return e.decodeCodeSlice(clean)
	}
	return e.decodeDataSlice(clean)
}

// hardenOddHex implements §7 item 1 (OddHex) and item 2 (InvalidHex): an
// odd-length hex run is reported and the remainder skipped rather than
// aborting the engine.
func (e *Engine) hardenOddHex(hexStr string) (string, error) {
	for _, c := range hexStr {
		if !isHexDigit(c) {
			e.emitDiagnostic(fmt.Sprintf("DIS0006 invalid hex character %q, skipped run: %s", c, hexStr))
			return "", fmt.Errorf("invalid hex")
		}
	}
	if len(hexStr)%2 != 0 {
		skip := len(hexStr)/2 + 1
		e.emitDiagnostic(fmt.Sprintf("DIS0007 odd-length hex run (%d nibbles), skipped %d bytes: %s", len(hexStr), skip, hexStr))
		e.loc += skip
		return "", fmt.Errorf("odd hex")
	}
	return strings.ToUpper(hexStr), nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F') || (r >= 'a' && r <= 'f')
}

func (e *Engine) emitDiagnostic(text string) {
	e.Buf.Emit(&stmt.Statement{Comment: text}, e.loc)
}

// decodeCodeSlice implements §4.6 steps 1-3 and 8 over the whole slice:
// repeatedly probe a 12-nibble window, decode on a hit, or fall back to a
// 2-byte TODO data constant on a miss.
func (e *Engine) decodeCodeSlice(hexStr string) error {
	pos := 0
	for pos < len(hexStr) {
		window := hexStr[pos:]
		if len(window) > 12 {
			window = window[:12]
		}
		instrLoc := e.loc
		ctx := &codec.Context{
			Loc:            instrLoc,
			Labels:         e.Labels,
			Regs:           e.Regs,
			DSECTs:         e.DSECTs,
			PrecedingClass: e.precedingClass,
			VectorSeen:     &e.vectorSeen,
		}
		dec, ok, err := codec.Decode(window, ctx)
		if err != nil {
			return err
		}
		if !ok {
			n := 4
			if n > len(window) {
				n = len(window)
			}
			raw := window[:n]
			e.recordLabel()
			e.Buf.Emit(&stmt.Statement{
				Op:       "DC",
				Operands: fmt.Sprintf("XL2'%s'", raw),
				Comment:  "<-- TODO (not code)",
				Overlay:  stmt.Overlay{Location: e.loc, RawHex: raw},
			}, e.loc)
			e.todoCount++
			e.loc += 2
			pos += n
			continue
		}
		e.precedingClass = dec.NewClass
		e.bumpStats(dec.Format, dec.Mnemonic)
		label := e.recordLabel()
		e.Buf.Emit(&stmt.Statement{
			Label:    label,
			Op:       dec.Mnemonic,
			Operands: dec.Operands,
			Comment:  dec.Comment,
			Overlay:  stmt.Overlay{Location: instrLoc, RawHex: window[:dec.Length*2], Format: dec.Format},
		}, instrLoc)
		e.loc += dec.Length
		pos += dec.Length * 2
	}
	return nil
}

// decodeDataSlice implements §4.5 over the whole slice, converting it to
// bytes once and letting internal/data iterate typed items within it.
func (e *Engine) decodeDataSlice(hexStr string) error {
	b, err := hexToBytes(hexStr)
	if err != nil {
		return err
	}
	ctx := &data.Context{Loc: e.loc, Labels: e.Labels, Regs: e.Regs}
	res, err := data.Decode(b, e.dataType, ctx)
	if err != nil {
		e.emitDiagnostic(fmt.Sprintf("DIS0001 %v", err))
		e.loc += len(b)
		return nil
	}
	loc := e.loc
	label := e.recordLabel()
	for i, line := range res.Lines {
		l := ""
		if i == 0 {
			l = label
		}
		e.Buf.Emit(&stmt.Statement{
			Label:    l,
			Op:       "DC",
			Operands: line,
			IsDC:     true,
			DCWidth:  dcWidthOf(line),
			Overlay:  stmt.Overlay{Location: loc},
		}, loc)
	}
	e.loc += res.Consumed
	return nil
}

func hexToBytes(hexStr string) ([]byte, error) {
	b := make([]byte, len(hexStr)/2)
	for i := 0; i < len(b); i++ {
		v, err := strconv.ParseUint(hexStr[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, err
		}
		b[i] = byte(v)
	}
	return b, nil
}

// recordLabel returns the label assigned to the current location, if any,
// honoring a preceding "|" action's label suppression.
func (e *Engine) recordLabel() string {
	name, ok := e.Labels.LabelAt(e.loc)
	if !ok {
		return ""
	}
	return name
}

func (e *Engine) emitDS0X() {
	e.Buf.Emit(&stmt.Statement{Label: e.recordLabel(), Op: "DS", Operands: "0X"}, e.loc)
}

func (e *Engine) attachLines(loc int, lines []string) {
	for _, l := range lines {
		e.Buf.Emit(&stmt.Statement{Comment: l}, loc)
	}
}

func (e *Engine) bumpStats(format, mnemonic string) {
	e.formatCounts[format]++
	if e.mnemonicCounts[format] == nil {
		e.mnemonicCounts[format] = map[string]int{}
	}
	e.mnemonicCounts[format][mnemonic]++
}

// dcWidthOf infers a DC statement's own implied byte width from its
// rendered text, for the width-widening comparison of spec §4.7. Recognizes
// the Ln/L<digits> length prefix when present; falls back to the type
// letter's natural width.
func dcWidthOf(text string) int {
	q := strings.IndexByte(text, '\'')
	paren := strings.IndexByte(text, '(')
	cut := q
	if paren >= 0 && (cut < 0 || paren < cut) {
		cut = paren
	}
	if cut < 0 {
		return 0
	}
	head := text[:cut]
	for i, c := range head {
		if c >= '0' && c <= '9' {
			n, _ := strconv.Atoi(head[i:])
			return n
		}
	}
	switch {
	case strings.HasPrefix(head, "F"):
		return 4
	case strings.HasPrefix(head, "H"):
		return 2
	case strings.HasPrefix(head, "A"):
		return 4
	case strings.HasPrefix(head, "B"):
		return 1
	default:
		return 0
	}
}

// StatEntry is one row of the §4.8 statistics report.
type StatEntry struct {
	Format   string
	Mnemonic string
	Count    int
}

// Stats returns the two sorted frequency tables named in spec §4.8:
// format occurrence counts and mnemonic occurrences grouped by format.
func (e *Engine) Stats() (byFormat []StatEntry, byMnemonic []StatEntry) {
	for f, n := range e.formatCounts {
		byFormat = append(byFormat, StatEntry{Format: f, Count: n})
	}
	sort.Slice(byFormat, func(i, j int) bool { return byFormat[i].Format < byFormat[j].Format })

	for f, mnems := range e.mnemonicCounts {
		for m, n := range mnems {
			byMnemonic = append(byMnemonic, StatEntry{Format: f, Mnemonic: m, Count: n})
		}
	}
	sort.Slice(byMnemonic, func(i, j int) bool {
		if byMnemonic[i].Format != byMnemonic[j].Format {
			return byMnemonic[i].Format < byMnemonic[j].Format
		}
		return byMnemonic[i].Mnemonic < byMnemonic[j].Mnemonic
	})
	return byFormat, byMnemonic
}

// TodoCount returns how many unrecognized-opcode placeholders were
// emitted (spec §7 item 4).
func (e *Engine) TodoCount() int { return e.todoCount }

// Finalize runs the §4.7 finalization pipeline over everything the engine
// accumulated.
func (e *Engine) Finalize() []stmt.Line {
	return stmt.Finalize(e.Buf, e.Labels, e.DSECTs, e.vectorSeen)
}

// RenderAll returns the complete output: the START prologue (spec §8
// "Location 0 is labeled with the section name if supplied... or with @ by
// default") followed by the finalized body.
func (e *Engine) RenderAll() []stmt.Line {
	name := e.sectionName
	if name == "" {
		name = "@"
	}
	lines := []stmt.Line{{Label: name, Op: "START"}}
	return append(lines, e.Finalize()...)
}
