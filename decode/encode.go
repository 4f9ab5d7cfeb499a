package decode

// Encode reproduces the fixed-opcode bits of a decoded instruction's form
// by applying its Mask/Pattern directly: every bit the mask constrains is
// set to the pattern's bit, and all other bits are cleared. This is the
// decode-encode stability property check — re-encoding via the same form
// and mask must reproduce the fixed-opcode bits exactly, though it does
// not attempt to re-insert operand bits (those come from the original
// encoding, not from the abstract Mask/Pattern pair).
func Encode(d *Decoded) uint64 {
	return d.Form.Pattern & d.Form.Mask
}
