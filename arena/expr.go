package arena

// ExprOp is the opcode of one instruction in an ExprProgram's stack
// machine, used for array counts, dynamic aggregate sizes, and display
// templates that need to compute a value from a type's own members.
type ExprOp uint8

const (
	OpPushConst ExprOp = iota
	OpReadMember
	OpReadVar
	OpSizeOf
	OpCountOf
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpDeref
)

// ExprInstr is one instruction: Operand's meaning depends on Op —
// PushConst/ReadVar/SizeOf/CountOf interpret it as a literal or a NameID
// cast to int64; ReadMember interprets it as a dotted-path NameID.
type ExprInstr struct {
	Op      ExprOp
	Operand int64
}

// ExprProgram is a fixed sequence of ExprInstr evaluated against an
// EvalContext by Eval, leaving exactly one value on the stack.
type ExprProgram struct {
	Instrs []ExprInstr
}

// EvalContext supplies the runtime bindings an ExprProgram needs: named
// variables (operand field widths, loop indices) and reads of already
// laid out member values within the in-progress instance.
type EvalContext interface {
	Var(name NameID) (int64, bool)
	Member(path NameID) (int64, bool)
}

const exprStackCapacity = 16

// Eval runs prog against ctx using a fixed-depth stack machine, returning
// ErrEvalError on underflow, overflow, division by zero, or an unknown
// opcode.
func Eval(prog *ExprProgram, ctx EvalContext) (int64, error) {
	var stack [exprStackCapacity]int64
	sp := 0

	push := func(v int64) error {
		if sp >= exprStackCapacity {
			return ErrEvalError
		}
		stack[sp] = v
		sp++
		return nil
	}
	pop := func() (int64, error) {
		if sp == 0 {
			return 0, ErrEvalError
		}
		sp--
		return stack[sp], nil
	}

	for _, instr := range prog.Instrs {
		switch instr.Op {
		case OpPushConst:
			if err := push(instr.Operand); err != nil {
				return 0, err
			}
		case OpReadVar:
			v, ok := ctx.Var(NameID(instr.Operand))
			if !ok {
				return 0, ErrEvalError
			}
			if err := push(v); err != nil {
				return 0, err
			}
		case OpReadMember:
			v, ok := ctx.Member(NameID(instr.Operand))
			if !ok {
				return 0, ErrEvalError
			}
			if err := push(v); err != nil {
				return 0, err
			}
		case OpSizeOf, OpCountOf:
			v, ok := ctx.Var(NameID(instr.Operand))
			if !ok {
				return 0, ErrEvalError
			}
			if err := push(v); err != nil {
				return 0, err
			}
		case OpAdd, OpSub, OpMul, OpDiv:
			b, err := pop()
			if err != nil {
				return 0, err
			}
			a, err := pop()
			if err != nil {
				return 0, err
			}
			var r int64
			switch instr.Op {
			case OpAdd:
				r = a + b
			case OpSub:
				r = a - b
			case OpMul:
				r = a * b
			case OpDiv:
				if b == 0 {
					return 0, ErrEvalError
				}
				r = a / b
			}
			if err := push(r); err != nil {
				return 0, err
			}
		case OpNeg:
			a, err := pop()
			if err != nil {
				return 0, err
			}
			if err := push(-a); err != nil {
				return 0, err
			}
		case OpDeref:
			a, err := pop()
			if err != nil {
				return 0, err
			}
			v, ok := ctx.Member(NameID(a))
			if !ok {
				return 0, ErrEvalError
			}
			if err := push(v); err != nil {
				return 0, err
			}
		default:
			return 0, ErrEvalError
		}
	}

	if sp != 1 {
		return 0, ErrEvalError
	}
	return stack[0], nil
}
