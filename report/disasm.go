package report

import (
	"fmt"

	"github.com/sarchlab/rv32sim/insts"
)

var (
	opMnemonics    = [8]string{"add", "sll", "slt", "sltu", "xor", "srl", "or", "and"}
	opImmMnemonics = [8]string{"addi", "slli", "slti", "sltiu", "xori", "srli", "ori", "andi"}
	branchMnemonic = map[uint8]string{
		0b000: "beq", 0b001: "bne", 0b100: "blt",
		0b101: "bge", 0b110: "bltu", 0b111: "bgeu",
	}
	loadMnemonic  = map[uint8]string{0b000: "lb", 0b001: "lh", 0b010: "lw", 0b100: "lbu", 0b101: "lhu"}
	storeMnemonic = map[uint8]string{0b000: "sb", 0b001: "sh", 0b010: "sw"}
)

// Disassemble renders inst in assembler syntax. Encodings the simulator
// does not execute are still rendered where the mnemonic is known.
func Disassemble(inst insts.Instruction) string {
	imm := int32(inst.Imm)

	switch inst.Opcode {
	case insts.OpcodeOp:
		name := opMnemonics[inst.Funct3]
		if inst.Funct7 == 0x20 {
			switch inst.Funct3 {
			case 0b000:
				name = "sub"
			case 0b101:
				name = "sra"
			}
		}
		return fmt.Sprintf("%s x%d, x%d, x%d", name, inst.Rd, inst.Rs1, inst.Rs2)

	case insts.OpcodeOpImm:
		name := opImmMnemonics[inst.Funct3]
		switch inst.Funct3 {
		case 0b001, 0b101:
			if inst.Funct3 == 0b101 && inst.Funct7&0x20 != 0 {
				name = "srai"
			}
			return fmt.Sprintf("%s x%d, x%d, %d", name, inst.Rd, inst.Rs1, inst.Imm&0x1F)
		}
		return fmt.Sprintf("%s x%d, x%d, %d", name, inst.Rd, inst.Rs1, imm)

	case insts.OpcodeLoad:
		if name, ok := loadMnemonic[inst.Funct3]; ok {
			return fmt.Sprintf("%s x%d, %d(x%d)", name, inst.Rd, imm, inst.Rs1)
		}

	case insts.OpcodeStore:
		if name, ok := storeMnemonic[inst.Funct3]; ok {
			return fmt.Sprintf("%s x%d, %d(x%d)", name, inst.Rs2, imm, inst.Rs1)
		}

	case insts.OpcodeBranch:
		if name, ok := branchMnemonic[inst.Funct3]; ok {
			return fmt.Sprintf("%s x%d, x%d, %+d", name, inst.Rs1, inst.Rs2, imm)
		}

	case insts.OpcodeJAL:
		return fmt.Sprintf("jal x%d, %+d", inst.Rd, imm)

	case insts.OpcodeJALR:
		return fmt.Sprintf("jalr x%d, %d(x%d)", inst.Rd, imm, inst.Rs1)

	case insts.OpcodeLUI:
		return fmt.Sprintf("lui x%d, 0x%x", inst.Rd, inst.Imm>>12)

	case insts.OpcodeAUIPC:
		return fmt.Sprintf("auipc x%d, 0x%x", inst.Rd, inst.Imm>>12)

	case insts.OpcodeSystem:
		switch inst.Word {
		case 0x00000073:
			return "ecall"
		case 0x00100073:
			return "ebreak"
		}
	}

	return fmt.Sprintf(".word 0x%08x", inst.Word)
}
