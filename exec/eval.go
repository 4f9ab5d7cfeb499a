package exec

import (
	"github.com/intuitionamiga/isacore/machdesc"
)

// evalScalar evaluates e to a single int64, erroring if e is a
// multi-value expression (MacroCall/HostCall/InstrCall/TupleLit) used
// where only one value is permitted.
func (x *Executor) evalScalar(env *Env, e *machdesc.Expr) (int64, error) {
	switch e.Kind {
	case machdesc.ExprLit:
		return int64(e.LitValue), nil

	case machdesc.ExprRegRef:
		v, err := x.Regs.ReadRegister(e.RegName, e.BitPath)
		if err != nil {
			return 0, ErrUnknownRegRef
		}
		return int64(v), nil

	case machdesc.ExprOperandRef:
		v, ok := env.operand(e.OperandName)
		if !ok {
			return 0, ErrUnknownOperand
		}
		return v, nil

	case machdesc.ExprLocal:
		v, ok := env.local(e.LocalName)
		if !ok {
			return 0, ErrUnknownLocal
		}
		return v, nil

	case machdesc.ExprBinOp:
		return x.evalBinOp(env, e)

	case machdesc.ExprUnOp:
		return x.evalUnOp(env, e)

	case machdesc.ExprMacroCall, machdesc.ExprHostCall, machdesc.ExprInstrCall, machdesc.ExprTupleLit:
		values, err := x.evalTuple(env, e)
		if err != nil {
			return 0, err
		}
		if len(values) == 0 {
			return 0, ErrNotATuple
		}
		return values[0], nil
	}
	return 0, ErrNotATuple
}

func (x *Executor) evalBinOp(env *Env, e *machdesc.Expr) (int64, error) {
	if len(e.Children) != 2 {
		return 0, ErrNotATuple
	}
	a, err := x.evalScalar(env, e.Children[0])
	if err != nil {
		return 0, err
	}
	b, err := x.evalScalar(env, e.Children[1])
	if err != nil {
		return 0, err
	}
	switch e.Op {
	case machdesc.BinAdd:
		return a + b, nil
	case machdesc.BinSub:
		return a - b, nil
	case machdesc.BinMul:
		return a * b, nil
	case machdesc.BinDiv:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return a / b, nil
	case machdesc.BinMod:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return a % b, nil
	case machdesc.BinAnd:
		return a & b, nil
	case machdesc.BinOr:
		return a | b, nil
	case machdesc.BinXor:
		return a ^ b, nil
	case machdesc.BinShl:
		return a << uint64(b), nil
	case machdesc.BinShr:
		return a >> uint64(b), nil
	case machdesc.BinEq:
		return boolToInt(a == b), nil
	case machdesc.BinNe:
		return boolToInt(a != b), nil
	case machdesc.BinLt:
		return boolToInt(a < b), nil
	case machdesc.BinLe:
		return boolToInt(a <= b), nil
	case machdesc.BinGt:
		return boolToInt(a > b), nil
	case machdesc.BinGe:
		return boolToInt(a >= b), nil
	}
	return 0, ErrNotATuple
}

func (x *Executor) evalUnOp(env *Env, e *machdesc.Expr) (int64, error) {
	if len(e.Children) != 1 {
		return 0, ErrNotATuple
	}
	a, err := x.evalScalar(env, e.Children[0])
	if err != nil {
		return 0, err
	}
	switch e.UnaryOp {
	case machdesc.UnNeg:
		return -a, nil
	case machdesc.UnNot:
		return boolToInt(a == 0), nil
	case machdesc.UnBitNot:
		return ^a, nil
	}
	return 0, ErrNotATuple
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// evalTuple evaluates a multi-value expression, returning its result
// list. Scalar expressions are wrapped as a single-element slice.
func (x *Executor) evalTuple(env *Env, e *machdesc.Expr) ([]int64, error) {
	switch e.Kind {
	case machdesc.ExprTupleLit:
		results := make([]int64, 0, len(e.Children))
		for _, c := range e.Children {
			v, err := x.evalScalar(env, c)
			if err != nil {
				return nil, err
			}
			results = append(results, v)
		}
		return results, nil

	case machdesc.ExprMacroCall:
		return x.callMacro(env, e, 0)

	case machdesc.ExprHostCall:
		return x.callHost(env, e)

	case machdesc.ExprInstrCall:
		return x.callInstr(env, e, 0)

	default:
		v, err := x.evalScalar(env, e)
		if err != nil {
			return nil, err
		}
		return []int64{v}, nil
	}
}

func (x *Executor) evalArgs(env *Env, args []*machdesc.Expr) ([]int64, error) {
	out := make([]int64, len(args))
	for i, a := range args {
		v, err := x.evalScalar(env, a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
