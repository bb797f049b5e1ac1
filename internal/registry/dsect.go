package registry

import (
	"fmt"
	"sort"
)

// Field is one DSECT member, keyed by displacement (spec §4.3).
type Field struct {
	Disp  int
	Len   int
	Label string
}

// DSECT is a named pseudo-structure accreted from observed base+displacement
// references.
type DSECT struct {
	Name   string
	Desc   string
	fields map[int]*Field
}

// DSECTs owns every DSECT created by GetOrCreate during decoding.
type DSECTs struct {
	byName map[string]*DSECT
	order  []string // creation order, for stable finalization output
}

// NewDSECTs returns an empty DSECT registry.
func NewDSECTs() *DSECTs {
	return &DSECTs{byName: map[string]*DSECT{}}
}

// GetOrCreate returns the named DSECT, creating it (with desc, if this is
// the first time the name is seen) if absent.
func (r *DSECTs) GetOrCreate(name, desc string) *DSECT {
	if d, ok := r.byName[name]; ok {
		return d
	}
	d := &DSECT{Name: name, Desc: desc, fields: map[int]*Field{}}
	r.byName[name] = d
	r.order = append(r.order, name)
	return d
}

// All returns every DSECT in creation order.
func (r *DSECTs) All() []*DSECT {
	out := make([]*DSECT, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// RecordField implements the accretion rule of spec §4.3: create the field
// at disp with length l if absent, else widen its length to max(l,
// existing). Returns the field's label (<dsect>_<hexdisp>).
func (d *DSECT) RecordField(disp, length int) string {
	f, ok := d.fields[disp]
	if !ok {
		f = &Field{Disp: disp, Len: length, Label: fmt.Sprintf("%s_%s", d.Name, upperHexNoLeadingZeros(disp))}
		d.fields[disp] = f
		return f.Label
	}
	if length > f.Len {
		f.Len = length
	}
	return f.Label
}

// SortedFields returns the DSECT's fields ordered by displacement.
func (d *DSECT) SortedFields() []*Field {
	out := make([]*Field, 0, len(d.fields))
	for _, f := range d.fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Disp < out[j].Disp })
	return out
}

// LayoutLine is one rendered DS entry of a DSECT's finalized body.
type LayoutLine struct {
	Label     string // field label, "" for an anonymous gap-filler
	Len       int
	ZeroLen   bool // render as "DS 0X" / "DS 0XLn" (overlay, does not advance)
}

// Layout computes the finalization sequence of spec §4.3: gap fillers
// between fields, each field as DS XLlen (or DS 0X if len is zero), and
// DS 0XLlen overlays when a field's span runs into the next field's
// displacement.
func (d *DSECT) Layout() []LayoutLine {
	fields := d.SortedFields()
	var out []LayoutLine
	cursor := 0
	for i, f := range fields {
		if f.Disp > cursor {
			out = append(out, LayoutLine{Len: f.Disp - cursor})
			cursor = f.Disp
		}
		overlay := f.Len == 0
		if !overlay && i+1 < len(fields) && fields[i+1].Disp < f.Disp+f.Len {
			overlay = true
		}
		out = append(out, LayoutLine{Label: f.Label, Len: f.Len, ZeroLen: overlay})
		if !overlay {
			cursor = f.Disp + f.Len
		}
	}
	return out
}
