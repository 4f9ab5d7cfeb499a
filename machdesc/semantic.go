package machdesc

import "github.com/intuitionamiga/isacore/arena"

// StmtKind tags which variant of Stmt is populated. Assign binds a
// register, local, or tuple destructure; StmtCall evaluates a call
// expression purely for its side effects (result tuple discarded or
// bound into named locals via ResultNames).
type StmtKind uint8

const (
	StmtAssign StmtKind = iota
	StmtCall
	StmtReturn
)

// ExprKind tags which variant of Expr is populated, one per production of
// the semantic expression grammar.
type ExprKind uint8

const (
	ExprLit ExprKind = iota
	ExprRegRef
	ExprOperandRef
	ExprLocal
	ExprBinOp
	ExprUnOp
	ExprMacroCall
	ExprHostCall
	ExprInstrCall
	ExprTupleLit
)

// BinOp is the operator of an ExprBinOp node.
type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
)

// UnOp is the operator of an ExprUnOp node.
type UnOp uint8

const (
	UnNeg UnOp = iota
	UnNot
	UnBitNot
)

// Expr is one node of a semantic expression tree. Fields are populated
// according to Kind:
//   - Lit: a constant value of LitType.
//   - RegRef: $reg::Name, optionally narrowed by a dotted BitPath.
//   - OperandRef: #Name, the decoded operand environment.
//   - Local: a name bound by a prior Assign's destructure (e.g. the `res`
//     of `(res, carry) = $host::add_with_carry(...)`), or a MacroCall
//     parameter.
//   - BinOp/UnOp: combine Children.
//   - MacroCall/HostCall/InstrCall: Name + Children as call arguments.
//   - TupleLit: Children are the tuple's components.
type Expr struct {
	Kind ExprKind

	LitValue uint64
	LitType  arena.TypeId

	RegName string
	BitPath string // dotted path into RegName's type, empty if whole register

	OperandName string
	LocalName   string

	Op      BinOp
	UnaryOp UnOp

	// Call name: macro name for MacroCall, host function tag for
	// HostCall, the instruction mnemonic (as looked up by
	// MachineDescription.LookupInstruction) for InstrCall.
	CallName string

	Children []*Expr
}

// Stmt is one statement of a SemanticBlock.
type Stmt struct {
	Kind StmtKind

	// Assign: a single LValue, or — when len(TargetNames) > 1 — a tuple
	// destructure of Value's TupleLit components.
	TargetReg   string
	TargetPath  string
	TargetNames []string // non-register local bindings, e.g. "res","carry"
	Value       *Expr

	// Call (StmtCall): evaluated for side effects; Call holds the
	// MacroCall/HostCall/InstrCall expression. ResultNames binds results:
	// named-if-named (len(ResultNames) entries matched by index) and,
	// for any trailing unnamed positions, the synthetic names "res",
	// "res1", "res2", ... — this is the resolved `res`-binding rule for
	// tuple results like `add.` calling `add`.
	Call        *Expr
	ResultNames []string

	// Return (StmtReturn): ReturnValue is a TupleLit; its components become the
	// calling InstrCall/MacroCall's exposed result tuple.
	ReturnValue *Expr
}

// SemanticBlock is a named, ordered sequence of Stmt forming one
// instruction's or macro's execution body.
type SemanticBlock struct {
	Name  string
	Stmts []Stmt
}
