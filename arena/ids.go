// Package arena implements the interned, compact type system that backs
// every architectural register and instruction encoding in an isacore
// machine description: scalars, aggregates, arrays, pointers, bitfields,
// and runtime-sized shapes, stored as small integer handles into owned
// vectors (never pointers), per the arena-and-indices rule.
package arena

// TypeId is a compact, non-zero handle into the arena's type table.
// The zero value means "no type" and is used directly where the spec
// calls for Option<TypeId> to fit in a machine word without a tag.
type TypeId uint32

// Valid reports whether id refers to an interned type.
func (id TypeId) Valid() bool { return id != 0 }

// NameID is an interned string handle; equal strings always yield the
// same NameID for the lifetime of the Arena that produced them.
type NameID uint32

// ExprId indexes an ExprProgram owned by the Arena.
type ExprId uint32

// bitFieldSpecID indexes a deduplicated BitFieldSpec.
type bitFieldSpecID uint32

// MemberSpan references a contiguous, deduplicated run of MemberRecord
// entries in the Arena's dense member table.
type MemberSpan struct {
	Start uint32
	Len   uint32
}

// MemberRecord describes one named field of an Aggregate or Callable
// parameter list.
type MemberRecord struct {
	NameID     NameID
	OffsetBits uint32
	BitSize    uint32
	TypeID     TypeId
}
