// Package decode turns instruction bytes into a Decoded instruction
// against a machdesc.MachineDescription: fixed-bit form matching, the
// most-constrained-bits tie-break rule, and per-subfield operand
// extraction via the owning arena.Arena.
package decode

import (
	"github.com/intuitionamiga/isacore/arena"
	"github.com/intuitionamiga/isacore/corestate"
	"github.com/intuitionamiga/isacore/machdesc"
)

// MemorySource is the minimal fetch capability the decoder needs from a
// bus: a fault-reporting read, mirroring the teacher's
// Read32WithFault/Read64WithFault convention (value, ok) rather than a
// panic or a sentinel value, so a straddled or unmapped read never
// silently becomes a well-formed instruction.
type MemorySource interface {
	FetchWithFault(addr uint64, size int) ([]byte, bool)
}

// OperandValue is one decoded operand: its raw extracted bits plus
// whether the subfield was declared signed.
type OperandValue struct {
	Value    uint64
	IsSigned bool
}

// Decoded is the result of one successful decode.
type Decoded struct {
	Mnemonic    string
	Form        machdesc.InstructionForm
	Operands    map[string]OperandValue
	PC          uint64
	Size        uint32
	TimingClass string
}

// Decode fetches width/8 bytes at pc from mem, matches it against desc's
// instruction forms of the given width, and extracts operands. Read
// faults become FetchFault; an encoding with no matching form becomes
// UnknownInstruction.
func Decode(desc *machdesc.MachineDescription, mem MemorySource, pc uint64, width uint8) (*Decoded, error) {
	size := int(width) / 8
	raw, ok := mem.FetchWithFault(pc, size)
	if !ok {
		return nil, &FetchFault{PC: pc, BytesRead: 0, Reason: "address not mapped or spans region boundary"}
	}

	bits := bytesToWord(raw, corestate.LittleEndian)

	mnemonic, form, ok := desc.MatchInstruction(bits, width)
	if !ok {
		return nil, &UnknownInstruction{PC: pc, Bytes: raw}
	}

	operands, err := extractOperands(desc.Arena, form.Encoding, raw)
	if err != nil {
		return nil, err
	}

	return &Decoded{
		Mnemonic:    mnemonic,
		Form:        form,
		Operands:    operands,
		PC:          pc,
		Size:        uint32(size),
		TimingClass: form.TimingClass,
	}, nil
}

// DecodeEndian is like Decode but lets the caller select byte order for
// the instruction-word fetch, used by big-endian cores (PowerPC-style
// forms in the S2/S3 scenarios).
func DecodeEndian(desc *machdesc.MachineDescription, mem MemorySource, pc uint64, width uint8, endian corestate.Endian) (*Decoded, error) {
	size := int(width) / 8
	raw, ok := mem.FetchWithFault(pc, size)
	if !ok {
		return nil, &FetchFault{PC: pc, BytesRead: 0, Reason: "address not mapped or spans region boundary"}
	}

	bits := bytesToWord(raw, endian)

	mnemonic, form, ok := desc.MatchInstruction(bits, width)
	if !ok {
		return nil, &UnknownInstruction{PC: pc, Bytes: raw}
	}

	operands, err := extractOperands(desc.Arena, form.Encoding, raw)
	if err != nil {
		return nil, err
	}

	return &Decoded{
		Mnemonic:    mnemonic,
		Form:        form,
		Operands:    operands,
		PC:          pc,
		Size:        uint32(size),
		TimingClass: form.TimingClass,
	}, nil
}

func bytesToWord(b []byte, endian corestate.Endian) uint64 {
	var v uint64
	if endian == corestate.BigEndian {
		for _, by := range b {
			v = (v << 8) | uint64(by)
		}
		return v
	}
	for i, by := range b {
		v |= uint64(by) << (8 * i)
	}
	return v
}

// extractOperands walks encoding's Aggregate members (one per named
// subfield) and extracts each via its own BitFieldSpec, or reads the
// member's whole byte span when it is not itself a BitField.
func extractOperands(a *arena.Arena, encoding arena.TypeId, raw []byte) (map[string]OperandValue, error) {
	result := make(map[string]OperandValue)
	if !encoding.Valid() {
		return result, nil
	}

	rec, ok := a.Type(encoding)
	if !ok {
		return nil, arena.ErrUnknownType
	}
	if rec.Kind != arena.KindAggregate {
		return result, nil
	}

	for _, m := range a.Members(rec.Members) {
		name, ok := a.Name(m.NameID)
		if !ok {
			continue
		}
		memberRec, ok := a.Type(m.TypeID)
		if !ok {
			continue
		}

		if memberRec.Kind == arena.KindBitField {
			spec, ok := a.BitfieldSpec(m.TypeID)
			if !ok {
				continue
			}
			value := arena.Extract(raw, &spec)
			result[name] = OperandValue{Value: value, IsSigned: spec.IsSigned}
			continue
		}

		byteOff := m.OffsetBits / 8
		byteLen := (m.BitSize + 7) / 8
		if int(byteOff+byteLen) > len(raw) {
			continue
		}
		var v uint64
		for i := uint32(0); i < byteLen; i++ {
			v |= uint64(raw[byteOff+i]) << (8 * i)
		}
		result[name] = OperandValue{Value: v}
	}

	return result, nil
}
