package exec

import "errors"

var (
	ErrUnknownRegRef     = errors.New("exec: unknown register reference")
	ErrUnknownOperand    = errors.New("exec: unknown operand reference")
	ErrUnknownLocal      = errors.New("exec: unknown local reference")
	ErrUnknownMacro      = errors.New("exec: unknown macro")
	ErrUnknownInstrCall   = errors.New("exec: unknown instruction call target")
	ErrDivideByZero      = errors.New("exec: division by zero")
	ErrNotATuple         = errors.New("exec: expected tuple-valued expression")
	ErrCallDepthExceeded = errors.New("exec: instruction call recursion depth exceeded")
	ErrIllegalRegisterWrite = errors.New("exec: write to reserved register bits")
	ErrMemFault          = errors.New("exec: memory fault")
	ErrTimingViolation   = errors.New("exec: negative timing latency")
)
