// Package corestate holds one core's immutable register layout and its
// mutable backing storage: a flat byte slice addressed through
// arena.ResolvePath/Extract/Insert rather than a Go struct field per
// register, so any machdesc.MachineDescription can drive any core
// regardless of architecture.
package corestate

import (
	"sync"

	"github.com/intuitionamiga/isacore/arena"
	"github.com/intuitionamiga/isacore/machdesc"
)

// CoreSpec is the immutable, shareable part of a core's register layout:
// which machine description it implements and the byte size/offset of
// each named register within the flat backing store.
type CoreSpec struct {
	Desc *machdesc.MachineDescription

	// ClockDivider and Endian describe this core's place in the
	// scheduler's active-set computation and its byte order for
	// multi-byte fetches, respectively.
	ClockDivider uint32
	Endian       Endian

	// TimingTable maps a timing-class label (as named by an
	// InstructionForm.TimingClass) to its baseline per-core cycle cost.
	TimingTable map[string]uint32

	layout    map[string]regLayout
	spaceBase map[int]uint32 // byte offset of each Space's storage
	total     uint32
}

// Endian selects byte order for whole-register and instruction-word
// reads, matching the teacher's big-endian M68K/PowerPC-style negative
// address aliasing handling in machine_bus.go's slow paths versus its
// little-endian IE32/IE64 fast paths.
type Endian uint8

const (
	LittleEndian Endian = iota
	BigEndian
)

// Latency returns the configured cycle cost for a timing class, or 1 if
// the class has no explicit entry.
func (s *CoreSpec) Latency(class string) uint32 {
	if s.TimingTable == nil {
		return 1
	}
	if v, ok := s.TimingTable[class]; ok {
		return v
	}
	return 1
}

type regLayout struct {
	typeID     arena.TypeId
	byteOffset uint32
	byteSize   uint32
}

// BuildCoreSpec lays out every register and register-space declared in
// desc into one flat backing store, spaces first (in declaration order),
// then standalone registers, and returns the resulting immutable CoreSpec.
func BuildCoreSpec(desc *machdesc.MachineDescription) (*CoreSpec, error) {
	spec := &CoreSpec{
		Desc:         desc,
		ClockDivider: 1,
		TimingTable:  make(map[string]uint32),
		layout:       make(map[string]regLayout),
		spaceBase:    make(map[int]uint32),
	}

	var offset uint32
	for i, sp := range desc.Spaces {
		spec.spaceBase[i] = offset
		offset += sp.Count * sp.ByteStride
	}

	for _, r := range desc.Registers {
		rec, ok := desc.Arena.Type(r.TypeID)
		byteSize := uint32(0)
		if ok {
			byteSize = rec.ByteSize
			if byteSize == 0 {
				byteSize = (rec.BitSize + 7) / 8
			}
		}

		var regOffset uint32
		if r.SpaceID >= 0 {
			sp := desc.Spaces[r.SpaceID]
			regOffset = spec.spaceBase[r.SpaceID] + r.Index*sp.ByteStride
			if byteSize == 0 {
				byteSize = sp.ByteStride
			}
		} else {
			regOffset = offset
			offset += byteSize
		}

		spec.layout[r.Name] = regLayout{typeID: r.TypeID, byteOffset: regOffset, byteSize: byteSize}
	}

	spec.total = offset
	return spec, nil
}

// CoreState is one core's mutable register storage: a flat byte slice
// protected by a RWMutex, matching the teacher's per-component locking
// convention (e.g. SoundChip.mu) rather than per-register locks, since
// whole-core snapshots (for trace/rewind) need a single consistent view.
type CoreState struct {
	mu sync.RWMutex

	spec *CoreSpec
	mem  []byte

	// SizeMode resolves the #SIZE_MODE open question: which operand-size
	// family (8/16/32/64-bit) an instruction's ambiguous forms bind to
	// for this core, settable at runtime (e.g. a mode-switch instruction)
	// rather than fixed at decode time.
	SizeMode uint8
}

// NewCoreState allocates a zeroed CoreState for spec.
func NewCoreState(spec *CoreSpec) *CoreState {
	return &CoreState{spec: spec, mem: make([]byte, spec.total)}
}

// Reset zeroes all register storage in place, reusing the existing
// backing slice rather than reallocating — the same buffer-reuse
// discipline as the teacher's Reset methods (e.g. VideoChip.Reset,
// TerminalMMIO.Reset) which clear in-place instead of replacing slices.
func (s *CoreState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.mem {
		s.mem[i] = 0
	}
	s.SizeMode = 0
}

// ReadRegister returns the raw extracted value of the named register,
// optionally narrowed by a dotted bit-path (e.g. "status.carry").
func (s *CoreState) ReadRegister(name, path string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	layout, ok := s.spec.layout[name]
	if !ok {
		return 0, ErrUnknownRegister
	}
	container := s.mem[layout.byteOffset : layout.byteOffset+layout.byteSize]

	if path == "" {
		return readWhole(container, layout.byteSize), nil
	}

	rp, err := arena.ResolvePath(s.spec.Desc.Arena, layout.typeID, path)
	if err != nil {
		return 0, err
	}
	rec, ok := s.spec.Desc.Arena.Type(rp.TypeID)
	if ok && rec.Kind == arena.KindBitField {
		bfSpec, ok := s.spec.Desc.Arena.BitfieldSpec(rp.TypeID)
		if !ok {
			return 0, ErrUnknownRegister
		}
		return arena.Extract(container, &bfSpec), nil
	}

	byteOff := rp.BitOffset / 8
	byteLen := (rp.BitLen + 7) / 8
	if int(byteOff+byteLen) > len(container) {
		return 0, ErrUnknownRegister
	}
	return readWhole(container[byteOff:byteOff+byteLen], byteLen), nil
}

// WriteRegister writes value into the named register, optionally scoped
// to a dotted bit-path, merging into surrounding bits rather than
// clobbering the whole container when path narrows to a sub-field.
func (s *CoreState) WriteRegister(name, path string, value uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	layout, ok := s.spec.layout[name]
	if !ok {
		return ErrUnknownRegister
	}
	container := s.mem[layout.byteOffset : layout.byteOffset+layout.byteSize]

	if path == "" {
		writeWhole(container, layout.byteSize, value)
		return nil
	}

	rp, err := arena.ResolvePath(s.spec.Desc.Arena, layout.typeID, path)
	if err != nil {
		return err
	}
	rec, ok := s.spec.Desc.Arena.Type(rp.TypeID)
	if ok && rec.Kind == arena.KindBitField {
		bfSpec, ok := s.spec.Desc.Arena.BitfieldSpec(rp.TypeID)
		if !ok {
			return ErrUnknownRegister
		}
		arena.Insert(container, &bfSpec, value)
		return nil
	}

	byteOff := rp.BitOffset / 8
	byteLen := (rp.BitLen + 7) / 8
	if int(byteOff+byteLen) > len(container) {
		return ErrUnknownRegister
	}
	writeWhole(container[byteOff:byteOff+byteLen], byteLen, value)
	return nil
}

func readWhole(b []byte, size uint32) uint64 {
	var v uint64
	for i := uint32(0); i < size && i < uint32(len(b)); i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

func writeWhole(b []byte, size uint32, value uint64) {
	for i := uint32(0); i < size && i < uint32(len(b)); i++ {
		b[i] = byte(value >> (8 * i))
	}
}
