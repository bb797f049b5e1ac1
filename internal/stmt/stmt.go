// Package stmt implements the statement buffer and finalization pipeline
// of spec §4.7: accumulating numbered statements keyed by location,
// attaching directives idempotently, then at finalization patching
// back-references, widening data-constant lengths, emitting DSECT bodies,
// register equates, the undefined-labels report, and the terminal END.
//
// Grounded on the teacher's Disassembler.instructions []Instruction plus
// its accumulate-then-render two-phase shape (RenderInstructions), extended
// here with a finalization pass the teacher never needed: 6502 labels
// resolve eagerly, but z/Architecture's CSECT-relative forward references
// cannot be rendered until the whole stream has been scanned.
package stmt

// Overlay is the source-overlay half of a statement (spec §3 "Statement"):
// location, raw hex, format name, and the hinted operand length, rendered
// in columns 72+ of the output.
type Overlay struct {
	Location   int
	RawHex     string
	Format     string
	HintLength int
}

// Statement is one numbered output record.
type Statement struct {
	Seq      int
	Label    string
	Op       string
	Operands string
	Comment  string
	Loc      int
	Overlay  Overlay
	IsDC     bool // true for data-constant statements (width-widening candidates)
	DCWidth  int  // byte length implied by the DC's own type/length prefix
}

// Buffer accumulates statements and the directives attached to each
// location, in the teacher's append-only manner.
type Buffer struct {
	stmts        []*Statement
	locToSeq     map[int][]int // every statement sequence number emitted at a location
	pendingDirs  map[int][]string
	flushedDirs  map[int]map[string]bool
	nextSeq      int
}

// NewBuffer returns an empty statement buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		locToSeq:    map[int][]int{},
		pendingDirs: map[int][]string{},
		flushedDirs: map[int]map[string]bool{},
	}
}

// AttachDirective queues directive text for loc, preserving insertion
// order and suppressing duplicates at the same location (spec §4.7
// "idempotent by directive text").
func (b *Buffer) AttachDirective(loc int, text string) {
	if b.flushedDirs[loc] != nil && b.flushedDirs[loc][text] {
		return
	}
	for _, d := range b.pendingDirs[loc] {
		if d == text {
			return
		}
	}
	b.pendingDirs[loc] = append(b.pendingDirs[loc], text)
}

// flush returns loc's pending directive lines, clears them, and records
// them as flushed so a later AttachDirective of the same text is dropped.
func (b *Buffer) flush(loc int) []string {
	pending := b.pendingDirs[loc]
	delete(b.pendingDirs, loc)
	if len(pending) == 0 {
		return nil
	}
	if b.flushedDirs[loc] == nil {
		b.flushedDirs[loc] = map[string]bool{}
	}
	for _, d := range pending {
		b.flushedDirs[loc][d] = true
	}
	return pending
}

// Emit appends stmt, recording the two-way seq<->loc mapping (spec §4.7
// emit(stmt, loc)). It does not flush loc's pending directives; callers
// take them with DirectivesAt and emit them first.
func (b *Buffer) Emit(stmt *Statement, loc int) *Statement {
	stmt.Seq = b.nextSeq
	b.nextSeq++
	stmt.Loc = loc
	b.stmts = append(b.stmts, stmt)
	b.locToSeq[loc] = append(b.locToSeq[loc], stmt.Seq)
	return stmt
}

// DirectivesAt returns the directive text lines pending at loc, flushing
// them (call immediately before emitting loc's statement).
func (b *Buffer) DirectivesAt(loc int) []string {
	return b.flush(loc)
}

// TrailingDirectives returns any directives still pending at a location no
// statement was emitted for — flushed at end-of-stream processing.
func (b *Buffer) TrailingDirectives(loc int) []string {
	return b.flush(loc)
}

// Statements returns every emitted statement in emission order.
func (b *Buffer) Statements() []*Statement {
	return b.stmts
}

// AtLocation returns the statement sequence numbers emitted at loc, in
// emission order.
func (b *Buffer) AtLocation(loc int) []int {
	return b.locToSeq[loc]
}

// FirstAtLocation returns the first statement emitted at loc, if any —
// the one back-reference patching assigns a label to.
func (b *Buffer) FirstAtLocation(loc int) (*Statement, bool) {
	seqs := b.locToSeq[loc]
	if len(seqs) == 0 {
		return nil, false
	}
	return b.stmts[seqs[0]], true
}
