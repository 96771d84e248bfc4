// Package insts provides RV32I instruction definitions and decoding.
package insts

// Opcode is the low 7 bits of an RV32I instruction word.
type Opcode uint8

// RV32I major opcodes.
const (
	OpcodeLoad   Opcode = 0b0000011
	OpcodeOpImm  Opcode = 0b0010011
	OpcodeAUIPC  Opcode = 0b0010111
	OpcodeStore  Opcode = 0b0100011
	OpcodeOp     Opcode = 0b0110011
	OpcodeLUI    Opcode = 0b0110111
	OpcodeBranch Opcode = 0b1100011
	OpcodeJALR   Opcode = 0b1100111
	OpcodeJAL    Opcode = 0b1101111
	OpcodeSystem Opcode = 0b1110011
)

// String returns the assembler group name of the opcode.
func (o Opcode) String() string {
	switch o {
	case OpcodeLoad:
		return "LOAD"
	case OpcodeOpImm:
		return "OP-IMM"
	case OpcodeAUIPC:
		return "AUIPC"
	case OpcodeStore:
		return "STORE"
	case OpcodeOp:
		return "OP"
	case OpcodeLUI:
		return "LUI"
	case OpcodeBranch:
		return "BRANCH"
	case OpcodeJALR:
		return "JALR"
	case OpcodeJAL:
		return "JAL"
	case OpcodeSystem:
		return "SYSTEM"
	default:
		return "UNKNOWN"
	}
}

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR              // Register-register
	FormatI              // Short immediate, loads, JALR
	FormatS              // Stores
	FormatB              // Conditional branches
	FormatU              // Upper immediate
	FormatJ              // Jump and link
)

// String returns the single-letter format name.
func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	default:
		return "?"
	}
}

// Instruction represents a decoded RV32I instruction.
type Instruction struct {
	Word   uint32 // Raw instruction word
	Format Format // Encoding format
	Opcode Opcode // bits [6:0]

	Rd     uint8 // bits [11:7]
	Rs1    uint8 // bits [19:15]
	Rs2    uint8 // bits [24:20]
	Funct3 uint8 // bits [14:12]
	Funct7 uint8 // bits [31:25]

	// Imm holds the immediate sign-extended to 32 bits. Zero for R-type.
	Imm uint32
}

// Decoder decodes RV32I machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new RV32I instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit RV32I instruction word. Every field is extracted
// regardless of format; reserved opcodes yield FormatUnknown and are rejected
// by the control unit, not here.
func (d *Decoder) Decode(word uint32) Instruction {
	inst := Instruction{
		Word:   word,
		Opcode: Opcode(word & 0x7F),
		Rd:     uint8((word >> 7) & 0x1F),
		Funct3: uint8((word >> 12) & 0x7),
		Rs1:    uint8((word >> 15) & 0x1F),
		Rs2:    uint8((word >> 20) & 0x1F),
		Funct7: uint8((word >> 25) & 0x7F),
	}

	inst.Format = formatOf(inst.Opcode)

	switch inst.Format {
	case FormatI:
		inst.Imm = immI(word)
	case FormatS:
		inst.Imm = immS(word)
	case FormatB:
		inst.Imm = immB(word)
	case FormatU:
		inst.Imm = immU(word)
	case FormatJ:
		inst.Imm = immJ(word)
	}

	return inst
}

func formatOf(op Opcode) Format {
	switch op {
	case OpcodeOp:
		return FormatR
	case OpcodeOpImm, OpcodeLoad, OpcodeJALR, OpcodeSystem:
		return FormatI
	case OpcodeStore:
		return FormatS
	case OpcodeBranch:
		return FormatB
	case OpcodeLUI, OpcodeAUIPC:
		return FormatU
	case OpcodeJAL:
		return FormatJ
	default:
		return FormatUnknown
	}
}

// SignExtend replicates bit (bits-1) of value across the upper bits of the
// 32-bit result.
func SignExtend(value uint32, bits uint) uint32 {
	shift := 32 - bits
	return uint32(int32(value<<shift) >> shift)
}

// immI: imm[11:0] = inst[31:20]
func immI(word uint32) uint32 {
	return SignExtend(word>>20, 12)
}

// immS: imm[11:5] = inst[31:25], imm[4:0] = inst[11:7]
func immS(word uint32) uint32 {
	imm := (word>>25)<<5 | (word>>7)&0x1F
	return SignExtend(imm, 12)
}

// immB: imm[12|10:5] = inst[31:25], imm[4:1|11] = inst[11:7]
func immB(word uint32) uint32 {
	imm := (word>>31)<<12 |
		((word>>7)&0x1)<<11 |
		((word>>25)&0x3F)<<5 |
		((word>>8)&0xF)<<1
	return SignExtend(imm, 13)
}

// immU: imm[31:12] = inst[31:12]
func immU(word uint32) uint32 {
	return word & 0xFFFFF000
}

// immJ: imm[20|10:1|11|19:12] = inst[31:12]
func immJ(word uint32) uint32 {
	imm := (word>>31)<<20 |
		((word>>12)&0xFF)<<12 |
		((word>>20)&0x1)<<11 |
		((word>>21)&0x3FF)<<1
	return SignExtend(imm, 21)
}
