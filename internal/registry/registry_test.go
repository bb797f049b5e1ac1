package registry

import "testing"

func TestDefineLabel(t *testing.T) {
	l := NewLabels()
	if ok, _ := l.DefineLabel("FOO", 0x10); !ok {
		t.Fatalf("first DefineLabel(FOO, 0x10) rejected")
	}
	if ok, _ := l.DefineLabel("FOO", 0x10); !ok {
		t.Errorf("redefining FOO at the same location was rejected")
	}
	if ok, conflict := l.DefineLabel("FOO", 0x20); ok || conflict != 0x10 {
		t.Errorf("DefineLabel(FOO, 0x20) = %v, %#x; want false, %#x", ok, conflict, 0x10)
	}
	if !l.IsDefined("FOO") {
		t.Errorf("IsDefined(FOO) = false; want true")
	}
}

func TestReferLabelAutoGenerates(t *testing.T) {
	l := NewLabels()
	name := l.ReferLabel(0x100, 0x200, 4)
	if name != "L200" {
		t.Errorf("ReferLabel auto name = %q; want L200", name)
	}
	got, ok := l.LabelAt(0x200)
	if !ok || got != "L200" {
		t.Errorf("LabelAt(0x200) = %q, %v; want L200, true", got, ok)
	}
	if l.UsedLength(0x200) != 4 {
		t.Errorf("UsedLength(0x200) = %d; want 4", l.UsedLength(0x200))
	}
}

func TestReferLabelReusesDefinedName(t *testing.T) {
	l := NewLabels()
	l.DefineLabel("START", 0x0)
	name := l.ReferLabel(0x10, 0x0, 4)
	if name != "START" {
		t.Errorf("ReferLabel reused name = %q; want START", name)
	}
}

func TestReferLabelWidensUsedLength(t *testing.T) {
	l := NewLabels()
	l.ReferLabel(0x10, 0x100, 2)
	l.ReferLabel(0x20, 0x100, 8)
	l.ReferLabel(0x30, 0x100, 4)
	if got := l.UsedLength(0x100); got != 8 {
		t.Errorf("UsedLength after widening = %d; want 8", got)
	}
}

func TestBackReferencesDeduplicated(t *testing.T) {
	l := NewLabels()
	l.ReferLabel(0x100, 0x10, 4)
	l.ReferLabel(0x108, 0x10, 4)
	back := l.BackReferences()
	if len(back) != 1 || back[0] != 0x10 {
		t.Errorf("BackReferences = %v; want [0x10] deduplicated", back)
	}
}

func TestBackReferencesNotRecordedOnceDefined(t *testing.T) {
	l := NewLabels()
	l.DefineLabel("L10", 0x10)
	l.ReferLabel(0x20, 0x10, 4)
	if back := l.BackReferences(); len(back) != 0 {
		t.Errorf("BackReferences = %v; want none, target was already defined", back)
	}
}

func TestUndefinedLabels(t *testing.T) {
	l := NewLabels()
	l.DefineLabel("DEFINED", 0x10)
	l.ReferLabel(0x20, 0x30, 4)
	undef := l.UndefinedLabels()
	if len(undef) != 1 {
		t.Fatalf("UndefinedLabels() len = %d; want 1", len(undef))
	}
	if undef[0].Location != 0x30 || undef[0].FromLoc != 0x20 {
		t.Errorf("UndefinedLabels()[0] = %+v; want Location=0x30 FromLoc=0x20", undef[0])
	}
}

func TestAutoLabel(t *testing.T) {
	tests := []struct {
		loc  int
		want string
	}{
		{0, "L0"},
		{0x10, "L10"},
		{0xABCD, "LABCD"},
	}
	for _, tc := range tests {
		if got := AutoLabel(tc.loc); got != tc.want {
			t.Errorf("AutoLabel(%#x) = %q; want %q", tc.loc, got, tc.want)
		}
	}
}

func TestDSECTRecordFieldAccretion(t *testing.T) {
	d := NewDSECTs().GetOrCreate("REC", "a record")
	label1 := d.RecordField(0, 2)
	label2 := d.RecordField(0, 8)
	if label1 != label2 {
		t.Errorf("RecordField at the same displacement returned different labels: %q vs %q", label1, label2)
	}
	f := d.SortedFields()[0]
	if f.Len != 8 {
		t.Errorf("field length after widening = %d; want 8 (max of 2 and 8)", f.Len)
	}
}

func TestDSECTLayoutGapsAndOverlay(t *testing.T) {
	dsects := NewDSECTs()
	d := dsects.GetOrCreate("REC", "")
	d.RecordField(0, 8)
	d.RecordField(4, 2) // falls inside the first field's span: an overlay

	layout := d.Layout()
	if len(layout) != 3 {
		t.Fatalf("Layout() len = %d; want 3, got %+v", len(layout), layout)
	}
	if !layout[0].ZeroLen {
		t.Errorf("first field = %+v; want it flagged as an overlay since the second field starts inside its span", layout[0])
	}
	if layout[1].Label != "" || layout[1].Len != 4 {
		t.Errorf("gap line = %+v; want an anonymous 4-byte gap between the two fields", layout[1])
	}
}

func TestRegistersBindCSECT(t *testing.T) {
	r := NewRegisters()
	r.BindCSECT([]int{12, 13}, 0x1000)
	b12 := r.Get(12)
	b13 := r.Get(13)
	if b12.Kind != CSECTBound || b12.CSECTLoc != 0x1000 {
		t.Errorf("R12 binding = %+v; want CSECTBound at 0x1000", b12)
	}
	if b13.Kind != CSECTBound || b13.CSECTLoc != 0x2000 {
		t.Errorf("R13 binding = %+v; want CSECTBound at 0x2000", b13)
	}
}

func TestRegistersBindDSECTAndDrop(t *testing.T) {
	r := NewRegisters()
	r.BindDSECT([]int{5}, "REC", 0)
	b := r.Get(5)
	if b.Kind != DSECTBound || b.DSECTName != "REC" {
		t.Errorf("R5 binding = %+v; want DSECTBound REC", b)
	}
	r.Drop([]int{5})
	if got := r.Get(5); got.Kind != Unbound {
		t.Errorf("R5 after Drop = %+v; want Unbound", got)
	}
}

func TestRegistersGetOutOfRange(t *testing.T) {
	r := NewRegisters()
	if got := r.Get(99); got.Kind != Unbound {
		t.Errorf("Get(99) = %+v; want the zero Binding", got)
	}
}
