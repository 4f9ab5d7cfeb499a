package arena

import "testing"

func TestResolvePathAggregateMember(t *testing.T) {
	a := NewArena()
	u8, _ := a.Intern(TypeRecord{Kind: KindScalar, ByteSize: 1, BitSize: 8})
	u32, _ := a.Intern(TypeRecord{Kind: KindScalar, ByteSize: 4, BitSize: 32})

	members := a.InternMembers([]MemberRecord{
		{NameID: a.InternName("flags"), OffsetBits: 0, BitSize: 8, TypeID: u8},
		{NameID: a.InternName("pc"), OffsetBits: 8, BitSize: 32, TypeID: u32},
	})
	root, err := a.Intern(TypeRecord{Kind: KindAggregate, Members: members, ByteSize: 5})
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}

	rp, err := ResolvePath(a, root, "pc")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if rp.TypeID != u32 || rp.BitOffset != 8 || rp.BitLen != 32 {
		t.Fatalf("ResolvePath = %+v, want {TypeID:%d BitOffset:8 BitLen:32}", rp, u32)
	}
}

func TestResolvePathArrayIndex(t *testing.T) {
	a := NewArena()
	u16, _ := a.Intern(TypeRecord{Kind: KindScalar, ByteSize: 2, BitSize: 16})
	arr, err := a.Intern(TypeRecord{Kind: KindArray, Elem: u16, Count: SequenceCount{Kind: CountStatic, N: 8}})
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}

	rp, err := ResolvePath(a, arr, "3")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if rp.TypeID != u16 || rp.BitOffset != 48 {
		t.Fatalf("ResolvePath = %+v, want offset 48", rp)
	}
}

func TestResolvePathNestedMemberThenIndex(t *testing.T) {
	a := NewArena()
	u16, _ := a.Intern(TypeRecord{Kind: KindScalar, ByteSize: 2, BitSize: 16})
	arr, _ := a.Intern(TypeRecord{Kind: KindArray, Elem: u16, Count: SequenceCount{Kind: CountStatic, N: 4}})

	members := a.InternMembers([]MemberRecord{
		{NameID: a.InternName("regs"), OffsetBits: 0, BitSize: 64, TypeID: arr},
	})
	root, _ := a.Intern(TypeRecord{Kind: KindAggregate, Members: members, ByteSize: 8})

	rp, err := ResolvePath(a, root, "regs.2")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if rp.TypeID != u16 || rp.BitOffset != 32 {
		t.Fatalf("ResolvePath = %+v, want offset 32", rp)
	}
}

func TestResolvePathNotFound(t *testing.T) {
	a := NewArena()
	u8, _ := a.Intern(TypeRecord{Kind: KindScalar, ByteSize: 1, BitSize: 8})
	members := a.InternMembers([]MemberRecord{
		{NameID: a.InternName("flags"), OffsetBits: 0, BitSize: 8, TypeID: u8},
	})
	root, _ := a.Intern(TypeRecord{Kind: KindAggregate, Members: members, ByteSize: 1})

	_, err := ResolvePath(a, root, "nonexistent")
	if err != ErrPathNotFound {
		t.Fatalf("expected ErrPathNotFound, got %v", err)
	}
}

func TestResolvePathIndexOutOfRange(t *testing.T) {
	a := NewArena()
	u8, _ := a.Intern(TypeRecord{Kind: KindScalar, ByteSize: 1, BitSize: 8})
	arr, _ := a.Intern(TypeRecord{Kind: KindArray, Elem: u8, Count: SequenceCount{Kind: CountStatic, N: 2}})

	_, err := ResolvePath(a, arr, "5")
	if err != ErrIndexOutOfRange {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}
