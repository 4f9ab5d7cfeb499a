package arena

import "errors"

// Build-time errors (§7 "Build errors"), returned from Intern, Bitfield,
// and ResolvePath.
var (
	ErrUnknownType         = errors.New("arena: unknown type id")
	ErrPathNotFound        = errors.New("arena: path not found")
	ErrIndexOutOfRange     = errors.New("arena: index out of range")
	ErrBitFieldOutOfRange  = errors.New("arena: bitfield segment outside container")
	ErrBitFieldWidth       = errors.New("arena: bitfield total width exceeds 64 bits")
	ErrBitFieldSignExtend  = errors.New("arena: bitfield spec has more than one sign-extend segment")
	ErrBitFieldLiteral     = errors.New("arena: bitfield literal segment width must be in (0,64]")
	ErrAggregateByteSize   = errors.New("arena: aggregate byte size smaller than a member's span")
	ErrUnionOffset         = errors.New("arena: union member declared at non-zero offset")
	ErrSequenceCount       = errors.New("arena: array sequence count must be static>0 or dynamic")
)

// EvalError is returned by the expression VM (§4.1 Expression VM) for
// stack underflow/overflow, division by zero, or an invalid opcode.
var ErrEvalError = errors.New("arena: expression evaluation error")
