package arena

import "sync"

// Arena owns every interned type, member span, name, bitfield spec, and
// expression program for one machine description. All handles it hands
// out (TypeId, NameID, ExprId, MemberSpan) are stable indices into its own
// slices and remain valid for the Arena's lifetime. Members is the one
// accessor that returns a view into the Arena's own storage (a sub-slice
// of the member table); every other accessor returns values.
type Arena struct {
	mu sync.RWMutex

	types   []TypeRecord
	typeIdx map[TypeRecord]TypeId

	members []MemberRecord

	names    []string
	nameIdx  map[string]NameID

	bitfields   []BitFieldSpec
	bitfieldIdx map[string]bitFieldSpecID

	exprs []ExprProgram
}

// NewArena returns an empty Arena. Index 0 is reserved in every table so
// the zero value of each handle type means "absent" rather than aliasing
// a real entry.
func NewArena() *Arena {
	return &Arena{
		types:       make([]TypeRecord, 1),
		typeIdx:     make(map[TypeRecord]TypeId),
		members:     make([]MemberRecord, 1),
		names:       make([]string, 1),
		nameIdx:     make(map[string]NameID),
		bitfields:   make([]BitFieldSpec, 1),
		bitfieldIdx: make(map[string]bitFieldSpecID),
		exprs:       make([]ExprProgram, 1),
	}
}

// Intern deduplicates record structurally within this Arena: two calls
// with equal TypeRecord values always return the same TypeId, regardless
// of call order. Handles inside the record are compared as handles:
// bitfield specs are deduplicated by content when interned, but member
// spans are not (see InternMembers), so two aggregates with equal member
// lists interned as separate spans get different TypeIds. TypeIds are
// assigned sequentially, so the same record may get different ids in
// Arenas that were filled in different orders.
func (a *Arena) Intern(record TypeRecord) (TypeId, error) {
	if err := a.validateRecord(record); err != nil {
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if id, ok := a.typeIdx[record]; ok {
		return id, nil
	}
	id := TypeId(len(a.types))
	a.types = append(a.types, record)
	a.typeIdx[record] = id
	return id, nil
}

func (a *Arena) validateRecord(record TypeRecord) error {
	switch record.Kind {
	case KindAggregate:
		if record.IsUnion {
			a.mu.RLock()
			defer a.mu.RUnlock()
			for i := uint32(0); i < record.Members.Len; i++ {
				m := a.members[record.Members.Start+i]
				if m.OffsetBits != 0 {
					return ErrUnionOffset
				}
			}
		}
	case KindArray:
		if record.Count.Kind == CountStatic && record.Count.N == 0 {
			return ErrSequenceCount
		}
	}
	return nil
}

// Type returns the TypeRecord for id, or the zero record and false if id
// is invalid or unknown to this Arena.
func (a *Arena) Type(id TypeId) (TypeRecord, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !id.Valid() || int(id) >= len(a.types) {
		return TypeRecord{}, false
	}
	return a.types[id], true
}

// Members returns the member slice referenced by span, a read-only view
// into the Arena's dense member table.
func (a *Arena) Members(span MemberSpan) []MemberRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.members[span.Start : span.Start+span.Len]
}

// InternMembers appends members as a new contiguous span and returns a
// handle to it. Unlike Intern, member spans are not content-deduplicated
// across calls: callers that want sharing should reuse a previously
// returned MemberSpan directly.
func (a *Arena) InternMembers(members []MemberRecord) MemberSpan {
	a.mu.Lock()
	defer a.mu.Unlock()
	start := uint32(len(a.members))
	a.members = append(a.members, members...)
	return MemberSpan{Start: start, Len: uint32(len(members))}
}

// InternName interns s, returning the same NameID for any prior or future
// call with an equal string.
func (a *Arena) InternName(s string) NameID {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id, ok := a.nameIdx[s]; ok {
		return id
	}
	id := NameID(len(a.names))
	a.names = append(a.names, s)
	a.nameIdx[s] = id
	return id
}

// Name resolves a previously interned NameID back to its string.
func (a *Arena) Name(id NameID) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if int(id) >= len(a.names) {
		return "", false
	}
	return a.names[id], true
}

// Bitfield validates spec against container's declared bit size, interns
// it (content-deduplicated by its segment sequence and container), and
// returns a BitField TypeRecord's TypeId wrapping it.
func (a *Arena) Bitfield(container TypeId, spec BitFieldSpec) (TypeId, error) {
	containerRec, ok := a.Type(container)
	if !ok {
		return 0, ErrUnknownType
	}
	containerBits := containerRec.BitSize
	if containerBits == 0 {
		containerBits = containerRec.ByteSize * 8
	}
	if err := spec.validate(containerBits); err != nil {
		return 0, err
	}
	spec.Container = container

	key := bitfieldKey(spec)

	a.mu.Lock()
	id, ok := a.bitfieldIdx[key]
	if !ok {
		id = bitFieldSpecID(len(a.bitfields))
		a.bitfields = append(a.bitfields, spec)
		a.bitfieldIdx[key] = id
	}
	a.mu.Unlock()

	return a.Intern(TypeRecord{
		Kind:     KindBitField,
		Elem:     container,
		bitField: id,
		BitSize:  uint32(spec.TotalWidth),
	})
}

// BitfieldSpec resolves a BitField TypeRecord's side-table entry.
func (a *Arena) BitfieldSpec(id TypeId) (BitFieldSpec, bool) {
	rec, ok := a.Type(id)
	if !ok || rec.Kind != KindBitField {
		return BitFieldSpec{}, false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if int(rec.bitField) >= len(a.bitfields) {
		return BitFieldSpec{}, false
	}
	return a.bitfields[rec.bitField], true
}

func bitfieldKey(spec BitFieldSpec) string {
	buf := make([]byte, 0, 4+len(spec.Segments)*4)
	put32 := func(v uint32) {
		buf = append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	put32(uint32(spec.Container))
	buf = append(buf, spec.TotalWidth, boolByte(spec.IsSigned))
	for _, seg := range spec.Segments {
		buf = append(buf, byte(seg.Kind), seg.MSB, seg.LSB, seg.Width, seg.Bit)
		put32(uint32(seg.Value))
		put32(uint32(seg.Value >> 32))
	}
	return string(buf)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// InternExpr stores prog and returns a stable handle to it.
func (a *Arena) InternExpr(prog ExprProgram) ExprId {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := ExprId(len(a.exprs))
	a.exprs = append(a.exprs, prog)
	return id
}

// Expr resolves a previously interned ExprId.
func (a *Arena) Expr(id ExprId) (ExprProgram, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if int(id) >= len(a.exprs) {
		return ExprProgram{}, false
	}
	return a.exprs[id], true
}
