// Package emu provides functional RV32I emulation.
package emu

// ALUOp is the 4-bit operation selector driven by the control unit.
type ALUOp uint8

// ALU operations.
const (
	ALUAdd ALUOp = iota
	ALUSub
	ALUSll
	ALUSlt
	ALUSltu
	ALUXor
	ALUSrl
	ALUSra
	ALUOr
	ALUAnd
)

var aluOpNames = [...]string{
	ALUAdd:  "ADD",
	ALUSub:  "SUB",
	ALUSll:  "SLL",
	ALUSlt:  "SLT",
	ALUSltu: "SLTU",
	ALUXor:  "XOR",
	ALUSrl:  "SRL",
	ALUSra:  "SRA",
	ALUOr:   "OR",
	ALUAnd:  "AND",
}

func (op ALUOp) String() string {
	if int(op) < len(aluOpNames) {
		return aluOpNames[op]
	}
	return "UNKNOWN"
}

// ALU implements the RV32I arithmetic and logic operations. It holds no
// state; results always wrap to 32 bits.
type ALU struct{}

// NewALU creates a new ALU.
func NewALU() *ALU {
	return &ALU{}
}

// Execute applies op to a and b. zero is true iff the result is 0.
func (u *ALU) Execute(a, b uint32, op ALUOp) (result uint32, zero bool) {
	shamt := b & 0x1F

	switch op {
	case ALUAdd:
		result = a + b
	case ALUSub:
		result = a - b
	case ALUSll:
		result = a << shamt
	case ALUSlt:
		if int32(a) < int32(b) {
			result = 1
		}
	case ALUSltu:
		if a < b {
			result = 1
		}
	case ALUXor:
		result = a ^ b
	case ALUSrl:
		result = a >> shamt
	case ALUSra:
		result = uint32(int32(a) >> shamt)
	case ALUOr:
		result = a | b
	case ALUAnd:
		result = a & b
	}

	return result, result == 0
}
