package corestate

import "errors"

var ErrUnknownRegister = errors.New("corestate: unknown register or path")
