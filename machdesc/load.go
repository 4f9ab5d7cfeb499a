package machdesc

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/intuitionamiga/isacore/arena"
)

// Builder accumulates Spaces/Registers/Instrs/Macros/Semantics before a
// final Load call validates and freezes them into a MachineDescription.
// This mirrors the teacher's pattern of building up a MachineBus's
// mapping table via repeated MapIO calls and then sealing it with
// SealMappings: construction is mutable, the loaded result is not.
type Builder struct {
	desc MachineDescription
}

// NewBuilder returns an empty Builder bound to a.
func NewBuilder(a *arena.Arena) *Builder {
	return &Builder{desc: MachineDescription{Arena: a, Macros: make(map[string]Macro)}}
}

// AddSpace registers a named register space and returns its index for use
// in RegisterDecl.SpaceID.
func (b *Builder) AddSpace(s Space) int {
	b.desc.Spaces = append(b.desc.Spaces, s)
	return len(b.desc.Spaces) - 1
}

// AddRegister appends a register declaration.
func (b *Builder) AddRegister(r RegisterDecl) {
	b.desc.Registers = append(b.desc.Registers, r)
}

// AddInstruction appends an instruction declaration.
func (b *Builder) AddInstruction(i InstructionDecl) {
	b.desc.Instrs = append(b.desc.Instrs, i)
}

// AddMacro registers a named macro.
func (b *Builder) AddMacro(m Macro) {
	b.desc.Macros[m.Name] = m
}

// AddSemantic appends a semantic block and returns its SemanticID.
func (b *Builder) AddSemantic(block SemanticBlock) SemanticID {
	b.desc.Semantics = append(b.desc.Semantics, block)
	return SemanticID(len(b.desc.Semantics) - 1)
}

// Load validates the accumulated declarations and returns an immutable
// MachineDescription. Register-name uniqueness and space-index checks
// run first, sequentially. The four checks that run over independent
// slices (instruction-form width and mask/pattern overlap, macro-reference
// resolution, semantic-block references, and macro-cycle detection) then
// run concurrently via an errgroup, the same fan-out-then-join shape the
// teacher uses for its per-chip goroutines in ProgramExecutor, since the
// checks share no mutable state. Each check runs to completion; Load
// returns the first error reported.
func Load(b *Builder) (*MachineDescription, error) {
	desc := b.desc

	desc.registerIdx = make(map[string]int, len(desc.Registers))
	for i, r := range desc.Registers {
		if _, dup := desc.registerIdx[r.Name]; dup {
			return nil, ErrDuplicateRegister
		}
		desc.registerIdx[r.Name] = i
		if r.SpaceID >= 0 {
			if r.SpaceID >= len(desc.Spaces) {
				return nil, ErrUnknownSpace
			}
			if r.Index >= desc.Spaces[r.SpaceID].Count {
				return nil, ErrSpaceIndexOutOfRange
			}
		}
	}

	desc.macroIdx = make(map[string]int, len(desc.Macros))
	i := 0
	for name := range desc.Macros {
		desc.macroIdx[name] = i
		i++
	}

	desc.instrIdx = make(map[string]int, len(desc.Instrs))
	for idx, decl := range desc.Instrs {
		desc.instrIdx[decl.Mnemonic] = idx
	}

	g, _ := errgroup.WithContext(context.Background())

	g.Go(func() error {
		return validateFormOverlap(desc.Instrs)
	})
	g.Go(func() error {
		return validateMacroRefs(desc.Macros, desc.Semantics)
	})
	g.Go(func() error {
		return validateSemanticRefs(desc.Instrs, desc.Semantics)
	})
	g.Go(func() error {
		return detectMacroCycles(desc.Macros, desc.Semantics)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &desc, nil
}

// Validate re-runs Load's four concurrent checks (not the register-name
// and space-index checks) against an already-built
// MachineDescription, useful after programmatic mutation of a loaded
// description (e.g. a tool that merges two machine descriptions) without
// constructing a fresh Builder.
func Validate(desc *MachineDescription) error {
	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error { return validateFormOverlap(desc.Instrs) })
	g.Go(func() error { return validateMacroRefs(desc.Macros, desc.Semantics) })
	g.Go(func() error { return validateSemanticRefs(desc.Instrs, desc.Semantics) })
	g.Go(func() error { return detectMacroCycles(desc.Macros, desc.Semantics) })
	return g.Wait()
}

func validateFormOverlap(instrs []InstructionDecl) error {
	type key struct {
		width uint8
	}
	byWidth := make(map[key][]InstructionForm)
	for _, decl := range instrs {
		for _, form := range decl.Forms {
			if form.Width != 8 && form.Width != 16 && form.Width != 32 && form.Width != 64 {
				return ErrBadWidth
			}
			k := key{form.Width}
			byWidth[k] = append(byWidth[k], form)
		}
	}
	for _, forms := range byWidth {
		for i := 0; i < len(forms); i++ {
			for j := i + 1; j < len(forms); j++ {
				if masksOverlap(forms[i], forms[j]) {
					return ErrOverlappingForms
				}
			}
		}
	}
	return nil
}

// masksOverlap reports whether two (mask,pattern) decode rules can both
// match some encoded instruction bits.
func masksOverlap(a, b InstructionForm) bool {
	common := a.Mask & b.Mask
	return a.Pattern&common == b.Pattern&common
}

func validateMacroRefs(macros map[string]Macro, semantics []SemanticBlock) error {
	for _, m := range macros {
		if int(m.Body) >= len(semantics) {
			return ErrUnknownSemantic
		}
		if err := walkStmtsForMacroRefs(semantics[m.Body].Stmts, macros); err != nil {
			return err
		}
	}
	return nil
}

func walkStmtsForMacroRefs(stmts []Stmt, macros map[string]Macro) error {
	for _, s := range stmts {
		if s.Kind == StmtCall && s.Call != nil && s.Call.Kind == ExprMacroCall {
			if _, ok := macros[s.Call.CallName]; !ok {
				return ErrUnknownMacroRef
			}
		}
	}
	return nil
}

func validateSemanticRefs(instrs []InstructionDecl, semantics []SemanticBlock) error {
	for _, decl := range instrs {
		for _, form := range decl.Forms {
			if int(form.Semantic) >= len(semantics) {
				return ErrUnknownSemantic
			}
		}
	}
	return nil
}

// detectMacroCycles walks each macro's call graph with a recursion-stack
// set, failing fast if any macro (directly or transitively) calls itself.
// It tolerates an out-of-range Body (validateMacroRefs reports that error
// independently; the two checks run concurrently via errgroup and neither
// depends on the other having completed).
func detectMacroCycles(macros map[string]Macro, semantics []SemanticBlock) error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(macros))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return ErrMacroCycle
		case done:
			return nil
		}
		state[name] = visiting
		if m, ok := macros[name]; ok && int(m.Body) < len(semantics) {
			for _, s := range semantics[m.Body].Stmts {
				if s.Kind == StmtCall && s.Call != nil && s.Call.Kind == ExprMacroCall {
					if err := visit(s.Call.CallName); err != nil {
						return err
					}
				}
			}
		}
		state[name] = done
		return nil
	}

	for name := range macros {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}
