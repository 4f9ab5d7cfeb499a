package arena

// TypeKind tags which variant of TypeRecord is populated.
type TypeKind uint8

const (
	KindScalar TypeKind = iota
	KindEnum
	KindBitField
	KindFixedPoint
	KindArray
	KindPointer
	KindAggregate
	KindCallable
	KindDynamic
	KindOpaque
)

func (k TypeKind) String() string {
	switch k {
	case KindScalar:
		return "Scalar"
	case KindEnum:
		return "Enum"
	case KindBitField:
		return "BitField"
	case KindFixedPoint:
		return "FixedPoint"
	case KindArray:
		return "Array"
	case KindPointer:
		return "Pointer"
	case KindAggregate:
		return "Aggregate"
	case KindCallable:
		return "Callable"
	case KindDynamic:
		return "Dynamic"
	case KindOpaque:
		return "Opaque"
	default:
		return "Unknown"
	}
}

// ScalarEncoding distinguishes how a Scalar's bits are interpreted.
type ScalarEncoding uint8

const (
	EncodingUnsigned ScalarEncoding = iota
	EncodingSigned
	EncodingFloat
)

// CountKind distinguishes a static array length from a runtime-evaluated one.
type CountKind uint8

const (
	CountStatic CountKind = iota
	CountDynamic
)

// SequenceCount is an Array's element count: either a fixed positive
// integer or an ExprProgram evaluated against a runtime EvalContext.
type SequenceCount struct {
	Kind CountKind
	N    uint32 // valid when Kind == CountStatic; must be > 0
	Expr ExprId // valid when Kind == CountDynamic
}

// TypeRecord is a tagged union, one variant per structural shape a register
// or instruction encoding can take. It is intentionally a flat, comparable
// struct (no slices) so the Arena can structurally dedup by using it
// directly as a map key: equal inputs by value always produce the same
// interned TypeId.
type TypeRecord struct {
	Kind TypeKind

	// Scalar / FixedPoint
	Encoding ScalarEncoding
	ByteSize uint32
	BitSize  uint32
	IntBits  uint8 // FixedPoint only
	FracBits uint8 // FixedPoint only

	// Enum underlying type / Pointer pointee / Array element / Dynamic shape
	Elem TypeId

	// BitField
	bitField bitFieldSpecID

	// Array
	Count SequenceCount

	// Aggregate members, or Callable parameter list
	Members MemberSpan
	IsUnion bool

	// Callable return type
	Return TypeId

	// Dynamic aggregate/array: expression computing the runtime size
	SizeExpr ExprId

	// Opaque: caller-defined size in bytes, no further structure
	OpaqueSize uint32
}
