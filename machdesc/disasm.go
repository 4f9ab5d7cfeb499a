package machdesc

import "fmt"

// MatchInstruction finds the InstructionForm whose mask/pattern matches
// bits, preferring the form that constrains the most bits (popcount of
// Mask) and breaking further ties by the lexicographically smallest
// mnemonic, matching the decoder's tie-break rule so machdesc and decode
// agree on which form wins for overlapping encodings from different
// instructions (unreachable for forms within one MachineDescription,
// since Load rejects those, but reachable once two descriptions are
// merged by a caller).
func (m *MachineDescription) MatchInstruction(bits uint64, width uint8) (mnemonic string, form InstructionForm, ok bool) {
	bestBits := -1
	for _, decl := range m.Instrs {
		for _, f := range decl.Forms {
			if f.Width != width {
				continue
			}
			if bits&f.Mask != f.Pattern {
				continue
			}
			constrained := popcount64(f.Mask)
			if constrained > bestBits || (constrained == bestBits && decl.Mnemonic < mnemonic) {
				bestBits = constrained
				mnemonic = decl.Mnemonic
				form = f
				ok = true
			}
		}
	}
	return
}

func popcount64(v uint64) int {
	n := 0
	for v != 0 {
		v &= v - 1
		n++
	}
	return n
}

// Disassemble renders a best-effort textual form of an instruction match;
// it does not attempt to format operand values, only to name the matched
// instruction's mnemonic.
func (m *MachineDescription) Disassemble(bits uint64, width uint8) string {
	mnemonic, _, ok := m.MatchInstruction(bits, width)
	if !ok {
		return fmt.Sprintf("??? (0x%x)", bits)
	}
	return mnemonic
}
