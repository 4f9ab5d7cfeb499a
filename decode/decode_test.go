package decode

import (
	"testing"

	"github.com/intuitionamiga/isacore/arena"
	"github.com/intuitionamiga/isacore/corestate"
	"github.com/intuitionamiga/isacore/machdesc"
)

type fakeMem struct {
	data      []byte
	faultFrom int // faults for reads at or beyond this address; -1 disables
}

func (m *fakeMem) FetchWithFault(addr uint64, size int) ([]byte, bool) {
	if m.faultFrom >= 0 && int(addr) >= m.faultFrom {
		return nil, false
	}
	end := int(addr) + size
	if end > len(m.data) {
		return nil, false
	}
	return m.data[addr:end], true
}

func buildAddDesc(t *testing.T) *machdesc.MachineDescription {
	t.Helper()
	a := arena.NewArena()

	u8, err := a.Intern(arena.TypeRecord{Kind: arena.KindScalar, ByteSize: 1, BitSize: 8})
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}

	rdField, err := a.Bitfield(u8, arena.BitFieldSpec{
		Segments:   []arena.Segment{{Kind: arena.SegRange, MSB: 0, LSB: 3}},
		TotalWidth: 4,
	})
	if err != nil {
		t.Fatalf("Bitfield rd: %v", err)
	}
	raField, err := a.Bitfield(u8, arena.BitFieldSpec{
		Segments:   []arena.Segment{{Kind: arena.SegRange, MSB: 4, LSB: 7}},
		TotalWidth: 4,
	})
	if err != nil {
		t.Fatalf("Bitfield ra: %v", err)
	}

	members := a.InternMembers([]arena.MemberRecord{
		{NameID: a.InternName("rd"), OffsetBits: 0, BitSize: 4, TypeID: rdField},
		{NameID: a.InternName("ra"), OffsetBits: 0, BitSize: 4, TypeID: raField},
	})
	encoding, err := a.Intern(arena.TypeRecord{Kind: arena.KindAggregate, Members: members, ByteSize: 1})
	if err != nil {
		t.Fatalf("Intern encoding: %v", err)
	}

	b := machdesc.NewBuilder(a)
	body := b.AddSemantic(machdesc.SemanticBlock{Name: "add"})
	b.AddInstruction(machdesc.InstructionDecl{
		Mnemonic: "add",
		Forms: []machdesc.InstructionForm{
			{Name: "add", Mask: 0xF0, Pattern: 0x10, Width: 8, Encoding: encoding, Semantic: body, TimingClass: "alu"},
		},
	})

	desc, err := machdesc.Load(b)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return desc
}

func TestDecodeMatchAndExtractOperands(t *testing.T) {
	desc := buildAddDesc(t)
	mem := &fakeMem{data: []byte{0x13}, faultFrom: -1} // pattern 0001 matches mask 0xF0 top nibble=1

	dec, err := Decode(desc, mem, 0, 8)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dec.Mnemonic != "add" {
		t.Fatalf("Mnemonic = %q, want add", dec.Mnemonic)
	}
	if dec.Operands["rd"].Value != 1 || dec.Operands["ra"].Value != 3 {
		t.Fatalf("operands = %+v, want rd=1 ra=3", dec.Operands)
	}
	if dec.TimingClass != "alu" {
		t.Fatalf("TimingClass = %q, want alu", dec.TimingClass)
	}
}

func TestDecodeUnknownInstruction(t *testing.T) {
	desc := buildAddDesc(t)
	mem := &fakeMem{data: []byte{0xFF}, faultFrom: -1}

	_, err := Decode(desc, mem, 0, 8)
	ui, ok := err.(*UnknownInstruction)
	if !ok {
		t.Fatalf("expected *UnknownInstruction, got %v (%T)", err, err)
	}
	if ui.PC != 0 {
		t.Fatalf("PC = %d, want 0", ui.PC)
	}
}

func TestDecodeFetchFault(t *testing.T) {
	desc := buildAddDesc(t)
	mem := &fakeMem{data: []byte{0x13}, faultFrom: 0}

	_, err := Decode(desc, mem, 0, 8)
	if _, ok := err.(*FetchFault); !ok {
		t.Fatalf("expected *FetchFault, got %v (%T)", err, err)
	}
}

func TestEncodeReproducesFixedBits(t *testing.T) {
	desc := buildAddDesc(t)
	mem := &fakeMem{data: []byte{0x13}, faultFrom: -1}

	dec, err := Decode(desc, mem, 0, 8)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if Encode(dec) != dec.Form.Pattern {
		t.Fatalf("Encode() = 0x%x, want 0x%x", Encode(dec), dec.Form.Pattern)
	}
}

func TestDecodeEndianBigEndianWord(t *testing.T) {
	desc := buildAddDesc(t)
	mem := &fakeMem{data: []byte{0x13}, faultFrom: -1}

	dec, err := DecodeEndian(desc, mem, 0, 8, corestate.BigEndian)
	if err != nil {
		t.Fatalf("DecodeEndian: %v", err)
	}
	if dec.Mnemonic != "add" {
		t.Fatalf("Mnemonic = %q, want add", dec.Mnemonic)
	}
}
