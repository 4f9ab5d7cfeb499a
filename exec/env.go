// Package exec executes machdesc.SemanticBlocks against a corestate.CoreState:
// statement-by-statement, atomically with respect to other cores, with
// macro inlining, host function dispatch, and recursive instruction
// composition (InstrCall), per the semantic statement grammar.
package exec

// Env is the per-execution environment threaded through statement and
// expression evaluation: the decoded instruction's operand values, the
// locals introduced by tuple-destructuring Assigns or MacroCall
// parameter binding, and the core's current PC. A fresh child Env (with
// its own Locals map but the same Operands/PC) is created for each
// MacroCall so macro locals never leak into the caller's scope — the
// "fresh scope" the grammar requires.
type Env struct {
	Operands map[string]int64
	Locals   map[string]int64
	PC       uint64
}

// NewEnv builds an Env from a decoded instruction's operand map (already
// unwrapped to plain int64, sign-extended by the caller where the
// subfield was declared signed) and the core's current PC.
func NewEnv(operands map[string]int64, pc uint64) *Env {
	return &Env{
		Operands: operands,
		Locals:   make(map[string]int64),
		PC:       pc,
	}
}

// child returns a fresh Env sharing Operands and PC but with an empty
// Locals map, used when entering a macro body.
func (e *Env) child() *Env {
	return &Env{Operands: e.Operands, Locals: make(map[string]int64), PC: e.PC}
}

func (e *Env) local(name string) (int64, bool) {
	v, ok := e.Locals[name]
	return v, ok
}

func (e *Env) operand(name string) (int64, bool) {
	v, ok := e.Operands[name]
	return v, ok
}
