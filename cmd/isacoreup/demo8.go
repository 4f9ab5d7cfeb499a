package main

import (
	"fmt"

	"github.com/intuitionamiga/isacore/arena"
	"github.com/intuitionamiga/isacore/machdesc"
)

// buildDemo8 returns a small 8-bit machine description as a structured
// Go value — the CLI's only supported way of naming an architecture,
// since lexing an external .isa source is out of scope (SPEC_FULL §1,
// Non-goals): nop, inc/dec an accumulator with a zero-flag side effect,
// and an absolute 4-bit jmp, enough to exercise operand decode, register
// read-after-write within one semantic block, and a direct pc write.
func buildDemo8() (*machdesc.MachineDescription, error) {
	a := arena.NewArena()

	u8, err := a.Intern(arena.TypeRecord{Kind: arena.KindScalar, Encoding: arena.EncodingUnsigned, ByteSize: 1, BitSize: 8})
	if err != nil {
		return nil, fmt.Errorf("demo8: intern u8: %w", err)
	}

	zeroBit, err := a.Bitfield(u8, arena.BitFieldSpec{
		Segments:   []arena.Segment{{Kind: arena.SegRange, MSB: 0, LSB: 0}},
		TotalWidth: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("demo8: bitfield zero: %w", err)
	}
	flagMembers := a.InternMembers([]arena.MemberRecord{
		{NameID: a.InternName("zero"), OffsetBits: 0, BitSize: 1, TypeID: zeroBit},
	})
	flagType, err := a.Intern(arena.TypeRecord{Kind: arena.KindAggregate, Members: flagMembers, ByteSize: 1})
	if err != nil {
		return nil, fmt.Errorf("demo8: intern flag: %w", err)
	}

	addrField, err := a.Bitfield(u8, arena.BitFieldSpec{
		Segments:   []arena.Segment{{Kind: arena.SegRange, MSB: 4, LSB: 7}},
		TotalWidth: 4,
	})
	if err != nil {
		return nil, fmt.Errorf("demo8: bitfield addr: %w", err)
	}
	jmpMembers := a.InternMembers([]arena.MemberRecord{
		{NameID: a.InternName("addr"), OffsetBits: 0, BitSize: 4, TypeID: addrField},
	})
	jmpEncoding, err := a.Intern(arena.TypeRecord{Kind: arena.KindAggregate, Members: jmpMembers, ByteSize: 1})
	if err != nil {
		return nil, fmt.Errorf("demo8: intern jmp encoding: %w", err)
	}

	b := machdesc.NewBuilder(a)
	b.AddRegister(machdesc.RegisterDecl{Name: "acc", TypeID: u8, SpaceID: -1})
	b.AddRegister(machdesc.RegisterDecl{Name: "flag", TypeID: flagType, SpaceID: -1})

	regRef := func(name, path string) *machdesc.Expr {
		return &machdesc.Expr{Kind: machdesc.ExprRegRef, RegName: name, BitPath: path}
	}
	lit := func(v uint64) *machdesc.Expr { return &machdesc.Expr{Kind: machdesc.ExprLit, LitValue: v} }
	bin := func(op machdesc.BinOp, x, y *machdesc.Expr) *machdesc.Expr {
		return &machdesc.Expr{Kind: machdesc.ExprBinOp, Op: op, Children: []*machdesc.Expr{x, y}}
	}

	nopID := b.AddSemantic(machdesc.SemanticBlock{Name: "nop"})
	b.AddInstruction(machdesc.InstructionDecl{
		Mnemonic: "nop",
		Forms:    []machdesc.InstructionForm{{Name: "nop", Mask: 0xFF, Pattern: 0x00, Width: 8, Semantic: nopID, TimingClass: "alu"}},
	})

	incID := b.AddSemantic(machdesc.SemanticBlock{
		Name: "inc",
		Stmts: []machdesc.Stmt{
			{Kind: machdesc.StmtAssign, TargetReg: "acc", Value: bin(machdesc.BinAdd, regRef("acc", ""), lit(1))},
			{Kind: machdesc.StmtAssign, TargetReg: "flag", TargetPath: "zero", Value: bin(machdesc.BinEq, regRef("acc", ""), lit(0))},
		},
	})
	b.AddInstruction(machdesc.InstructionDecl{
		Mnemonic: "inc",
		Forms:    []machdesc.InstructionForm{{Name: "inc", Mask: 0xFF, Pattern: 0x01, Width: 8, Semantic: incID, TimingClass: "alu"}},
	})

	decID := b.AddSemantic(machdesc.SemanticBlock{
		Name: "dec",
		Stmts: []machdesc.Stmt{
			{Kind: machdesc.StmtAssign, TargetReg: "acc", Value: bin(machdesc.BinSub, regRef("acc", ""), lit(1))},
			{Kind: machdesc.StmtAssign, TargetReg: "flag", TargetPath: "zero", Value: bin(machdesc.BinEq, regRef("acc", ""), lit(0))},
		},
	})
	b.AddInstruction(machdesc.InstructionDecl{
		Mnemonic: "dec",
		Forms:    []machdesc.InstructionForm{{Name: "dec", Mask: 0xFF, Pattern: 0x02, Width: 8, Semantic: decID, TimingClass: "alu"}},
	})

	jmpID := b.AddSemantic(machdesc.SemanticBlock{
		Name: "jmp",
		Stmts: []machdesc.Stmt{
			{Kind: machdesc.StmtAssign, TargetReg: "pc", Value: &machdesc.Expr{Kind: machdesc.ExprOperandRef, OperandName: "addr"}},
		},
	})
	b.AddInstruction(machdesc.InstructionDecl{
		Mnemonic: "jmp",
		Forms:    []machdesc.InstructionForm{{Name: "jmp", Mask: 0xF0, Pattern: 0x30, Width: 8, Encoding: jmpEncoding, Semantic: jmpID, TimingClass: "branch"}},
	})

	return machdesc.Load(b)
}

// loadArch resolves a -arch name to a built-in machine description.
// Only "demo8" exists today; this is the one seam a future external
// .isa/.isaext loader would plug into without lexing ever entering this
// binary, per the Non-goals this command still honors.
func loadArch(name string) (*machdesc.MachineDescription, error) {
	switch name {
	case "demo8":
		return buildDemo8()
	default:
		return nil, fmt.Errorf("isacoreup: unknown -arch %q (only \"demo8\" is built in)", name)
	}
}
