package machdesc

import "errors"

var (
	ErrDuplicateRegister   = errors.New("machdesc: duplicate register name")
	ErrDuplicateMacro      = errors.New("machdesc: duplicate macro name")
	ErrUnknownSpace        = errors.New("machdesc: register references unknown space")
	ErrSpaceIndexOutOfRange = errors.New("machdesc: register index outside its space")
	ErrOverlappingForms    = errors.New("machdesc: two instruction forms of the same width have overlapping mask/pattern")
	ErrUnknownMacroRef     = errors.New("machdesc: semantic block references unknown macro")
	ErrUnknownSemantic     = errors.New("machdesc: instruction form references unknown semantic block")
	ErrMacroCycle          = errors.New("machdesc: macro call graph contains a cycle")
	ErrBadWidth            = errors.New("machdesc: instruction form width must be 8, 16, 32, or 64")
)
