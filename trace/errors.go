package trace

import (
	"encoding/gob"
	"errors"
)

// ErrTimeRegression is returned by Writer.Write when a record's Now is
// smaller than the previously written record's Now.
var ErrTimeRegression = errors.New("trace: record time regressed")

// RegisterPayload registers a concrete payload type with the underlying
// gob encoding, required once per process for every distinct Go type
// ever placed in Record.Payload (gob's interface encoding requires the
// concrete type to be registered on both the writing and reading side).
func RegisterPayload(value any) {
	gob.Register(value)
}
