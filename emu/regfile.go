package emu

import "fmt"

// NumRegs is the number of RV32I integer registers.
const NumRegs = 32

// RegFile represents the RV32I integer register file.
// x0 is hard-wired to zero: reads return 0 and writes are ignored.
type RegFile struct {
	x [NumRegs]uint32
}

// Read returns the value of register idx.
func (r *RegFile) Read(idx uint8) (uint32, error) {
	if idx >= NumRegs {
		return 0, fmt.Errorf("read x%d: %w", idx, ErrInvalidRegisterIndex)
	}
	if idx == 0 {
		return 0, nil
	}
	return r.x[idx], nil
}

// Write stores value into register idx. Writes to x0 are ignored.
func (r *RegFile) Write(idx uint8, value uint32) error {
	if idx >= NumRegs {
		return fmt.Errorf("write x%d: %w", idx, ErrInvalidRegisterIndex)
	}
	if idx == 0 {
		return nil
	}
	r.x[idx] = value
	return nil
}

// Snapshot returns a copy of all registers.
func (r *RegFile) Snapshot() [NumRegs]uint32 {
	return r.x
}
