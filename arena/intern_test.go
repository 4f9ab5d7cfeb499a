package arena

import "testing"

func TestInternDedup(t *testing.T) {
	a := NewArena()

	rec := TypeRecord{Kind: KindScalar, Encoding: EncodingUnsigned, ByteSize: 4, BitSize: 32}

	id1, err := a.Intern(rec)
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}
	id2, err := a.Intern(rec)
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("structurally equal records got different ids: %d vs %d", id1, id2)
	}

	other := TypeRecord{Kind: KindScalar, Encoding: EncodingSigned, ByteSize: 4, BitSize: 32}
	id3, err := a.Intern(other)
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}
	if id3 == id1 {
		t.Fatalf("structurally different records got same id")
	}
}

func TestInternDedupOrderIndependent(t *testing.T) {
	a := NewArena()

	u32 := TypeRecord{Kind: KindScalar, Encoding: EncodingUnsigned, ByteSize: 4, BitSize: 32}
	i16 := TypeRecord{Kind: KindScalar, Encoding: EncodingSigned, ByteSize: 2, BitSize: 16}

	firstU32, _ := a.Intern(u32)
	firstI16, _ := a.Intern(i16)

	// Re-intern in the opposite order: each must return its first id.
	againI16, _ := a.Intern(i16)
	againU32, _ := a.Intern(u32)

	if firstU32 != againU32 {
		t.Fatalf("u32 id differs by insertion order: %d vs %d", firstU32, againU32)
	}
	if firstI16 != againI16 {
		t.Fatalf("i16 id differs by insertion order: %d vs %d", firstI16, againI16)
	}
}

func TestInternAggregateUnionOffsetRejected(t *testing.T) {
	a := NewArena()
	u32, _ := a.Intern(TypeRecord{Kind: KindScalar, ByteSize: 4, BitSize: 32})

	members := a.InternMembers([]MemberRecord{
		{NameID: a.InternName("a"), OffsetBits: 0, BitSize: 32, TypeID: u32},
		{NameID: a.InternName("b"), OffsetBits: 8, BitSize: 32, TypeID: u32},
	})

	_, err := a.Intern(TypeRecord{Kind: KindAggregate, IsUnion: true, Members: members, ByteSize: 4})
	if err != ErrUnionOffset {
		t.Fatalf("expected ErrUnionOffset, got %v", err)
	}
}

func TestInternArrayZeroCountRejected(t *testing.T) {
	a := NewArena()
	u8, _ := a.Intern(TypeRecord{Kind: KindScalar, ByteSize: 1, BitSize: 8})

	_, err := a.Intern(TypeRecord{Kind: KindArray, Elem: u8, Count: SequenceCount{Kind: CountStatic, N: 0}})
	if err != ErrSequenceCount {
		t.Fatalf("expected ErrSequenceCount, got %v", err)
	}
}

func TestNameInterning(t *testing.T) {
	a := NewArena()
	id1 := a.InternName("carry")
	id2 := a.InternName("carry")
	if id1 != id2 {
		t.Fatalf("equal strings got different NameIDs")
	}
	name, ok := a.Name(id1)
	if !ok || name != "carry" {
		t.Fatalf("Name roundtrip failed: %q, %v", name, ok)
	}
}

func TestBitfieldDedup(t *testing.T) {
	a := NewArena()
	u8, _ := a.Intern(TypeRecord{Kind: KindScalar, ByteSize: 1, BitSize: 8})

	spec := BitFieldSpec{
		Segments:   []Segment{{Kind: SegRange, MSB: 4, LSB: 7}},
		TotalWidth: 4,
	}

	id1, err := a.Bitfield(u8, spec)
	if err != nil {
		t.Fatalf("Bitfield: %v", err)
	}
	id2, err := a.Bitfield(u8, spec)
	if err != nil {
		t.Fatalf("Bitfield: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("equal bitfield specs got different ids")
	}
}
