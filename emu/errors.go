package emu

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the execution engine. All of them are fatal to the
// current run.
var (
	ErrUnsupportedOpcode    = errors.New("unsupported opcode")
	ErrInvalidFunct         = errors.New("invalid funct3/funct7 combination")
	ErrMisalignedAccess     = errors.New("misaligned access")
	ErrOutOfBounds          = errors.New("address out of bounds")
	ErrFetchOutOfBounds     = errors.New("fetch out of bounds")
	ErrInvalidRegisterIndex = errors.New("invalid register index")
)

// StepError reports a fault raised while executing one instruction. It
// unwraps to one of the error kinds above.
type StepError struct {
	PC   uint32
	Word uint32
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("PC=0x%08x instr=0x%08x: %v", e.PC, e.Word, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
