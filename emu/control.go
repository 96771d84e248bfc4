package emu

import (
	"fmt"

	"github.com/sarchlab/rv32sim/insts"
)

// ControlSignals is the datapath control bundle derived from one instruction.
type ControlSignals struct {
	RegWrite bool
	MemRead  bool
	MemWrite bool
	MemToReg bool
	ALUSrc   bool // second ALU operand is the immediate
	Branch   bool
	Jump     bool
	JALR     bool

	ALUOp ALUOp
}

// Branch conditions, selected by funct3.
const (
	funct3BEQ  = 0b000
	funct3BNE  = 0b001
	funct3BLT  = 0b100
	funct3BGE  = 0b101
	funct3BLTU = 0b110
	funct3BGEU = 0b111
)

const (
	funct3Word = 0b010 // LW / SW

	funct7Base = 0x00
	funct7Alt  = 0x20 // SUB / SRA
)

// baseSignals holds the opcode-only part of the control table.
var baseSignals = map[insts.Opcode]ControlSignals{
	insts.OpcodeOp:     {RegWrite: true},
	insts.OpcodeOpImm:  {RegWrite: true, ALUSrc: true},
	insts.OpcodeLoad:   {RegWrite: true, MemRead: true, MemToReg: true, ALUSrc: true},
	insts.OpcodeStore:  {MemWrite: true, ALUSrc: true},
	insts.OpcodeBranch: {Branch: true},
	insts.OpcodeJAL:    {RegWrite: true, Jump: true},
	insts.OpcodeJALR:   {RegWrite: true, ALUSrc: true, Jump: true, JALR: true},
	insts.OpcodeLUI:    {RegWrite: true},
	insts.OpcodeAUIPC:  {RegWrite: true},
}

// ControlUnit maps opcode, funct3 and funct7 to control signals.
type ControlUnit struct{}

// NewControlUnit creates a new ControlUnit.
func NewControlUnit() *ControlUnit {
	return &ControlUnit{}
}

// Decode returns the control signals for inst.
func (c *ControlUnit) Decode(inst insts.Instruction) (ControlSignals, error) {
	signals, ok := baseSignals[inst.Opcode]
	if !ok {
		return ControlSignals{}, fmt.Errorf("opcode 0b%07b: %w", uint8(inst.Opcode), ErrUnsupportedOpcode)
	}

	var err error
	switch inst.Opcode {
	case insts.OpcodeOp:
		signals.ALUOp, err = regALUOp(inst.Funct3, inst.Funct7)
	case insts.OpcodeOpImm:
		signals.ALUOp = immALUOp(inst.Funct3, inst.Funct7)
	case insts.OpcodeLoad, insts.OpcodeStore:
		if inst.Funct3 != funct3Word {
			err = fmt.Errorf("%v funct3=0b%03b: %w", inst.Opcode, inst.Funct3, ErrInvalidFunct)
		}
	case insts.OpcodeJALR:
		if inst.Funct3 != 0 {
			err = fmt.Errorf("JALR funct3=0b%03b: %w", inst.Funct3, ErrInvalidFunct)
		}
	case insts.OpcodeBranch:
		signals.ALUOp, err = branchALUOp(inst.Funct3)
	}
	if err != nil {
		return ControlSignals{}, err
	}

	return signals, nil
}

// baseALUOp maps funct3 to the ALU operation with funct7 bit 5 clear.
var baseALUOp = [8]ALUOp{
	0b000: ALUAdd,
	0b001: ALUSll,
	0b010: ALUSlt,
	0b011: ALUSltu,
	0b100: ALUXor,
	0b101: ALUSrl,
	0b110: ALUOr,
	0b111: ALUAnd,
}

func regALUOp(funct3, funct7 uint8) (ALUOp, error) {
	switch {
	case funct7 == funct7Base:
		return baseALUOp[funct3], nil
	case funct7 == funct7Alt && funct3 == 0b000:
		return ALUSub, nil
	case funct7 == funct7Alt && funct3 == 0b101:
		return ALUSra, nil
	}
	return 0, fmt.Errorf("OP funct3=0b%03b funct7=0x%02x: %w", funct3, funct7, ErrInvalidFunct)
}

// immALUOp never fails: ADDI ignores funct7 (it is part of the immediate),
// and for shifts only bit 5 of the upper immediate field matters.
func immALUOp(funct3, funct7 uint8) ALUOp {
	if funct3 == 0b101 && funct7&funct7Alt != 0 {
		return ALUSra
	}
	return baseALUOp[funct3]
}

func branchALUOp(funct3 uint8) (ALUOp, error) {
	switch funct3 {
	case funct3BEQ, funct3BNE:
		return ALUSub, nil
	case funct3BLT, funct3BGE:
		return ALUSlt, nil
	case funct3BLTU, funct3BGEU:
		return ALUSltu, nil
	}
	return 0, fmt.Errorf("BRANCH funct3=0b%03b: %w", funct3, ErrInvalidFunct)
}
