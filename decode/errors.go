package decode

import "fmt"

// UnknownInstruction is returned when no declared form/mask combination
// matches the fetched bits; the core halts unless a hook consumes it.
type UnknownInstruction struct {
	PC    uint64
	Bytes []byte
}

func (e *UnknownInstruction) Error() string {
	return fmt.Sprintf("decode: unknown instruction at pc=0x%x bytes=% x", e.PC, e.Bytes)
}

// FetchFault is returned when a read would span an unmapped address, a
// permission boundary, or a memory-region boundary; it never yields a
// partial instruction.
type FetchFault struct {
	PC        uint64
	BytesRead int
	Reason    string
}

func (e *FetchFault) Error() string {
	return fmt.Sprintf("decode: fetch fault at pc=0x%x after %d bytes: %s", e.PC, e.BytesRead, e.Reason)
}
