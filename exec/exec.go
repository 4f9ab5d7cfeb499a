package exec

import (
	"fmt"

	"github.com/intuitionamiga/isacore/hostfn"
	"github.com/intuitionamiga/isacore/machdesc"
)

// maxCallDepth bounds InstrCall/MacroCall recursion; machdesc.Load
// already rejects macro call cycles at build time, so this only guards
// against pathologically deep (but acyclic) InstrCall chains.
const maxCallDepth = 64

// Executor runs machdesc.SemanticBlocks against one core's register file
// and host function registry. It holds no per-run mutable state itself;
// all mutation goes through Regs, which is one core's register file, so
// each core needs its own Executor (Desc and Hosts may be shared).
type Executor struct {
	Desc  *machdesc.MachineDescription
	Regs  hostfn.Context
	Hosts *hostfn.Registry
}

// NewExecutor builds an Executor bound to desc, regs, and hosts.
func NewExecutor(desc *machdesc.MachineDescription, regs hostfn.Context, hosts *hostfn.Registry) *Executor {
	return &Executor{Desc: desc, Regs: regs, Hosts: hosts}
}

// Result is the outcome of executing one instruction's semantic block:
// the PC it resolved to (the pc passed in, unchanged, or an address a
// statement assigned directly) and whether a statement performed a direct
// assignment to PC. Advancing past the instruction by its size is the
// caller's job when PCWritten is false.
type Result struct {
	PC        uint64
	PCWritten bool
}

// ExecuteInstruction runs the semantic block for mnemonic against
// operands decoded at pc, entirely before returning — statements execute
// in source order with no interleaving, matching the "executes atomically
// with respect to other cores" contract.
func (x *Executor) ExecuteInstruction(mnemonic string, operands map[string]int64, pc uint64) (Result, error) {
	decl, ok := x.Desc.LookupInstruction(mnemonic)
	if !ok {
		return Result{}, fmt.Errorf("exec: %w: %s", ErrUnknownInstrCall, mnemonic)
	}
	if len(decl.Forms) == 0 {
		return Result{PC: pc}, nil
	}
	return x.ExecuteForm(decl.Forms[0], operands, pc)
}

// ExecuteForm runs the semantic block named by form.Semantic directly,
// for callers (the isacore.System run loop) that already hold the exact
// InstructionForm a decode.Decode call matched — avoiding
// ExecuteInstruction's ambiguity when a mnemonic has more than one form.
func (x *Executor) ExecuteForm(form machdesc.InstructionForm, operands map[string]int64, pc uint64) (Result, error) {
	block, ok := x.Desc.Semantic(form.Semantic)
	if !ok {
		return Result{}, ErrUnknownInstrCall
	}

	env := NewEnv(operands, pc)
	env.Locals["pc"] = int64(pc)

	if _, err := x.runBlock(env, block.Stmts, 0); err != nil {
		return Result{}, err
	}

	newPC, written := env.Locals["pc"]
	if written && uint64(newPC) != pc {
		return Result{PC: uint64(newPC), PCWritten: true}, nil
	}
	return Result{PC: pc}, nil
}

// runBlock executes stmts in order, returning the block's result tuple
// (the last StmtReturn's TupleLit, or nil if the block has none).
func (x *Executor) runBlock(env *Env, stmts []machdesc.Stmt, depth int) ([]int64, error) {
	var result []int64
	for _, s := range stmts {
		switch s.Kind {
		case machdesc.StmtAssign:
			if err := x.execAssign(env, &s, depth); err != nil {
				return nil, err
			}
		case machdesc.StmtCall:
			if err := x.execCall(env, &s, depth); err != nil {
				return nil, err
			}
		case machdesc.StmtReturn:
			values, err := x.evalTupleAtDepth(env, s.ReturnValue, depth)
			if err != nil {
				return nil, err
			}
			result = values
		}
	}
	return result, nil
}

func (x *Executor) execAssign(env *Env, s *machdesc.Stmt, depth int) error {
	if len(s.TargetNames) > 0 {
		values, err := x.evalTupleAtDepth(env, s.Value, depth)
		if err != nil {
			return err
		}
		bindResults(env, s.TargetNames, values)
		return nil
	}

	v, err := x.evalScalarAtDepth(env, s.Value, depth)
	if err != nil {
		return err
	}

	if s.TargetReg == "pc" && s.TargetPath == "" {
		env.Locals["pc"] = v
		return nil
	}
	if s.TargetReg != "" {
		return x.Regs.WriteRegister(s.TargetReg, s.TargetPath, uint64(v))
	}
	return nil
}

func (x *Executor) execCall(env *Env, s *machdesc.Stmt, depth int) error {
	values, err := x.evalTupleAtDepth(env, s.Call, depth)
	if err != nil {
		return err
	}
	bindResults(env, s.ResultNames, values)
	return nil
}

// bindResults applies the resolved `res`-binding rule: each value is
// bound to names[i] when present and non-empty, otherwise to the
// synthetic name "res" (index 0) or "resN" (index N>0).
func bindResults(env *Env, names []string, values []int64) {
	for i, v := range values {
		if i < len(names) && names[i] != "" {
			env.Locals[names[i]] = v
			continue
		}
		key := "res"
		if i > 0 {
			key = fmt.Sprintf("res%d", i)
		}
		env.Locals[key] = v
	}
}

func (x *Executor) evalScalarAtDepth(env *Env, e *machdesc.Expr, depth int) (int64, error) {
	if depth > maxCallDepth {
		return 0, ErrCallDepthExceeded
	}
	return x.evalScalar(env, e)
}

func (x *Executor) evalTupleAtDepth(env *Env, e *machdesc.Expr, depth int) ([]int64, error) {
	if depth > maxCallDepth {
		return nil, ErrCallDepthExceeded
	}
	switch e.Kind {
	case machdesc.ExprMacroCall:
		return x.callMacro(env, e, depth)
	case machdesc.ExprInstrCall:
		return x.callInstr(env, e, depth)
	default:
		return x.evalTuple(env, e)
	}
}

// callMacro inlines a macro body into a fresh child scope with
// parameters bound positionally to the macro's declared Params.
func (x *Executor) callMacro(env *Env, e *machdesc.Expr, depth int) ([]int64, error) {
	m, ok := x.Desc.LookupMacro(e.CallName)
	if !ok {
		return nil, ErrUnknownMacro
	}
	args, err := x.evalArgs(env, e.Children)
	if err != nil {
		return nil, err
	}
	block, ok := x.Desc.Semantic(m.Body)
	if !ok {
		return nil, ErrUnknownMacro
	}

	child := env.child()
	for i, p := range m.Params {
		if i < len(args) {
			child.Locals[p] = args[i]
		}
	}

	return x.runBlock(child, block.Stmts, depth+1)
}

// callHost dispatches a HostCall through the host function registry.
func (x *Executor) callHost(env *Env, e *machdesc.Expr) ([]int64, error) {
	args, err := x.evalArgs(env, e.Children)
	if err != nil {
		return nil, err
	}
	return x.Hosts.Call(x.Regs, e.CallName, args)
}

// callInstr re-executes a prior instruction's semantic block with the
// given operand values, in a fresh child scope, exposing its result
// tuple to the caller exactly as a MacroCall does.
func (x *Executor) callInstr(env *Env, e *machdesc.Expr, depth int) ([]int64, error) {
	decl, ok := x.Desc.LookupInstruction(e.CallName)
	if !ok {
		return nil, ErrUnknownInstrCall
	}
	if len(decl.Forms) == 0 {
		return nil, ErrUnknownInstrCall
	}
	args, err := x.evalArgs(env, e.Children)
	if err != nil {
		return nil, err
	}
	block, ok := x.Desc.Semantic(decl.Forms[0].Semantic)
	if !ok {
		return nil, ErrUnknownInstrCall
	}

	operands := make(map[string]int64, len(args))
	for i, v := range args {
		operands[fmt.Sprintf("arg%d", i)] = v
	}

	child := &Env{Operands: operands, Locals: make(map[string]int64), PC: env.PC}
	return x.runBlock(child, block.Stmts, depth+1)
}
