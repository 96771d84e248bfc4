package emu

// BranchUnit resolves conditional branches from the ALU comparison result.
// BEQ/BNE use the zero flag of SUB; the ordered comparisons use the 0/1
// result of SLT or SLTU.
type BranchUnit struct{}

// NewBranchUnit creates a new BranchUnit.
func NewBranchUnit() *BranchUnit {
	return &BranchUnit{}
}

// Taken reports whether the branch selected by funct3 is taken.
func (b *BranchUnit) Taken(funct3 uint8, result uint32, zero bool) bool {
	switch funct3 {
	case funct3BEQ:
		return zero
	case funct3BNE:
		return !zero
	case funct3BLT, funct3BLTU:
		return result == 1
	case funct3BGE, funct3BGEU:
		return result == 0
	default:
		return false
	}
}

// Unconditional reports whether the branch is taken for any register value,
// which is the case when both operands name the same register and the
// condition includes equality.
func (b *BranchUnit) Unconditional(funct3, rs1, rs2 uint8) bool {
	if rs1 != rs2 {
		return false
	}
	switch funct3 {
	case funct3BEQ, funct3BGE, funct3BGEU:
		return true
	default:
		return false
	}
}
