package arena

import "testing"

type recordingVisitor struct {
	scalars   []uint32
	bitfields []uint32
	enters    int
	exits     int
}

func (v *recordingVisitor) EnterAggregate(id TypeId, rec TypeRecord) bool {
	v.enters++
	return true
}
func (v *recordingVisitor) ExitAggregate(id TypeId, rec TypeRecord) {
	v.exits++
}
func (v *recordingVisitor) VisitScalar(id TypeId, rec TypeRecord, offsetBits uint32) {
	v.scalars = append(v.scalars, offsetBits)
}
func (v *recordingVisitor) VisitBitField(id TypeId, rec TypeRecord, offsetBits uint32) {
	v.bitfields = append(v.bitfields, offsetBits)
}
func (v *recordingVisitor) VisitArrayElem(elemID TypeId, index uint32, offsetBits uint32) {}

func TestWalkAggregateOfScalars(t *testing.T) {
	a := NewArena()
	u8, _ := a.Intern(TypeRecord{Kind: KindScalar, ByteSize: 1, BitSize: 8})
	u16, _ := a.Intern(TypeRecord{Kind: KindScalar, ByteSize: 2, BitSize: 16})

	members := a.InternMembers([]MemberRecord{
		{NameID: a.InternName("flags"), OffsetBits: 0, BitSize: 8, TypeID: u8},
		{NameID: a.InternName("pc"), OffsetBits: 8, BitSize: 16, TypeID: u16},
	})
	root, err := a.Intern(TypeRecord{Kind: KindAggregate, Members: members, ByteSize: 3})
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}

	w := NewWalker(a)
	v := &recordingVisitor{}
	if err := w.Walk(root, v); err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if v.enters != 1 || v.exits != 1 {
		t.Fatalf("expected one enter/exit, got %d/%d", v.enters, v.exits)
	}
	if len(v.scalars) != 2 || v.scalars[0] != 0 || v.scalars[1] != 8 {
		t.Fatalf("unexpected scalar offsets: %v", v.scalars)
	}
}

func TestWalkArrayOfScalars(t *testing.T) {
	a := NewArena()
	u8, _ := a.Intern(TypeRecord{Kind: KindScalar, ByteSize: 1, BitSize: 8})
	arr, err := a.Intern(TypeRecord{Kind: KindArray, Elem: u8, Count: SequenceCount{Kind: CountStatic, N: 4}})
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}

	w := NewWalker(a)
	v := &recordingVisitor{}
	if err := w.Walk(arr, v); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(v.scalars) != 4 {
		t.Fatalf("expected 4 scalar visits, got %d", len(v.scalars))
	}
	for i, off := range v.scalars {
		if off != uint32(i*8) {
			t.Fatalf("scalar %d offset = %d, want %d", i, off, i*8)
		}
	}
}

func TestWalkBitField(t *testing.T) {
	a := NewArena()
	u8, _ := a.Intern(TypeRecord{Kind: KindScalar, ByteSize: 1, BitSize: 8})
	bf, err := a.Bitfield(u8, BitFieldSpec{
		Segments:   []Segment{{Kind: SegRange, MSB: 4, LSB: 7}},
		TotalWidth: 4,
	})
	if err != nil {
		t.Fatalf("Bitfield: %v", err)
	}

	w := NewWalker(a)
	v := &recordingVisitor{}
	if err := w.Walk(bf, v); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(v.bitfields) != 1 || v.bitfields[0] != 0 {
		t.Fatalf("unexpected bitfield visits: %v", v.bitfields)
	}
}
