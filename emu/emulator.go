// Package emu provides functional RV32I emulation.
package emu

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/rv32sim/insts"
)

// HookPosRetire marks the point right after an instruction has committed all
// of its effects. The hook item is a *Retired.
var HookPosRetire = &sim.HookPos{Name: "Retire"}

// Retired describes the effects of one completed instruction.
type Retired struct {
	// Cycle is the zero-based cycle in which the instruction executed.
	Cycle uint64

	PC      uint32
	Inst    insts.Instruction
	Signals ControlSignals

	// ALUResult is the raw ALU output, before the write-back mux.
	ALUResult uint32

	// RegWritten is true if Rd received RdValue (never true for x0).
	RegWritten bool
	RdValue    uint32

	// MemAddr and MemValue are meaningful if Signals.MemRead or
	// Signals.MemWrite is set.
	MemAddr  uint32
	MemValue uint32

	NextPC uint32
	Halted bool
}

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true once the program has reached its terminating self-loop.
	Halted bool

	// Err is set if the instruction faulted. It is always a *StepError.
	Err error
}

// State is a read-only snapshot of the processor state.
type State struct {
	PC               uint32
	Regs             [NumRegs]uint32
	CycleCount       uint64
	InstructionCount uint64
	Halted           bool
}

// RunResult summarises a call to Run.
type RunResult struct {
	// Halted is true if the program reached its terminating self-loop.
	Halted bool

	// LimitReached is true if Run stopped at the cycle ceiling.
	LimitReached bool

	Cycles       uint64
	Instructions uint64
}

// Emulator executes RV32I instructions, one instruction per cycle.
type Emulator struct {
	*sim.HookableBase

	regFile *RegFile
	memory  *Memory
	decoder *insts.Decoder
	control *ControlUnit

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	logger logr.Logger

	// Configuration
	memorySize uint32
	entryPoint uint32

	// Execution state
	pc               uint32
	cycleCount       uint64
	instructionCount uint64
	halted           bool
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMemorySize sets the memory size in bytes.
func WithMemorySize(size uint32) EmulatorOption {
	return func(e *Emulator) {
		e.memorySize = size
	}
}

// WithEntryPoint sets the initial program counter. The default is 0.
func WithEntryPoint(pc uint32) EmulatorOption {
	return func(e *Emulator) {
		e.entryPoint = pc
	}
}

// WithLogger sets the logger. Retired instructions are logged at V(1).
func WithLogger(logger logr.Logger) EmulatorOption {
	return func(e *Emulator) {
		e.logger = logger
	}
}

// NewEmulator creates a new RV32I emulator.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		HookableBase: sim.NewHookableBase(),
		decoder:      insts.NewDecoder(),
		control:      NewControlUnit(),
		alu:          NewALU(),
		branchUnit:   NewBranchUnit(),
		logger:       logr.Discard(),
		memorySize:   DefaultMemorySize,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.regFile = &RegFile{}
	e.memory = NewMemory(e.memorySize)
	e.lsu = NewLoadStoreUnit(e.memory)
	e.pc = e.entryPoint

	return e
}

// LoadProgram writes the instruction words into memory starting at address 0.
func (e *Emulator) LoadProgram(words []uint32) error {
	if err := e.memory.LoadWords(0, words); err != nil {
		return fmt.Errorf("failed to load program: %w", err)
	}
	return nil
}

// LoadSegment copies data into memory at addr and zero-fills the rest of
// the segment up to memSize bytes, as for an ELF BSS tail.
func (e *Emulator) LoadSegment(addr uint32, data []byte, memSize uint32) error {
	if err := e.memory.LoadBytes(addr, data, memSize); err != nil {
		return fmt.Errorf("failed to load segment: %w", err)
	}
	return nil
}

// Reset clears registers, memory and counters, and returns to the entry point.
func (e *Emulator) Reset() {
	e.regFile = &RegFile{}
	e.memory.Clear()
	e.pc = e.entryPoint
	e.cycleCount = 0
	e.instructionCount = 0
	e.halted = false
}

// State returns a snapshot of the processor state.
func (e *Emulator) State() State {
	return State{
		PC:               e.pc,
		Regs:             e.regFile.Snapshot(),
		CycleCount:       e.cycleCount,
		InstructionCount: e.instructionCount,
		Halted:           e.halted,
	}
}

// PC returns the program counter.
func (e *Emulator) PC() uint32 {
	return e.pc
}

// Halted returns true once the terminating self-loop has executed.
func (e *Emulator) Halted() bool {
	return e.halted
}

// CycleCount returns the number of cycles simulated.
func (e *Emulator) CycleCount() uint64 {
	return e.cycleCount
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// MemorySize returns the memory size in bytes.
func (e *Emulator) MemorySize() uint32 {
	return e.memory.Size()
}

// ReadWord reads a memory word without affecting execution state.
func (e *Emulator) ReadWord(addr uint32) (uint32, error) {
	return e.memory.ReadWord(addr)
}

// ReadWords reads n consecutive memory words starting at addr.
func (e *Emulator) ReadWords(addr uint32, n int) ([]uint32, error) {
	return e.memory.ReadWords(addr, n)
}

// Run steps until the program halts, maxCycles cycles have been simulated
// (0 means no limit), ctx is cancelled, or an instruction faults. ctx is
// only checked between instructions.
func (e *Emulator) Run(ctx context.Context, maxCycles uint64) (RunResult, error) {
	for !e.halted {
		if maxCycles > 0 && e.cycleCount >= maxCycles {
			e.logger.V(1).Info("cycle limit reached", "cycles", e.cycleCount)
			return e.runResult(true), nil
		}

		if err := ctx.Err(); err != nil {
			return e.runResult(false), err
		}

		if result := e.Step(); result.Err != nil {
			return e.runResult(false), result.Err
		}
	}

	return e.runResult(false), nil
}

func (e *Emulator) runResult(limitReached bool) RunResult {
	return RunResult{
		Halted:       e.halted,
		LimitReached: limitReached,
		Cycles:       e.cycleCount,
		Instructions: e.instructionCount,
	}
}

// Step executes a single instruction. A faulted step leaves registers,
// memory, PC and counters untouched.
func (e *Emulator) Step() StepResult {
	if e.halted {
		return StepResult{Halted: true}
	}

	pc := e.pc

	// 1. Fetch
	if !e.memory.contains(pc, 4) {
		return e.fault(pc, 0, fmt.Errorf("fetch at 0x%08x: %w", pc, ErrFetchOutOfBounds))
	}
	word, err := e.memory.ReadWord(pc)
	if err != nil {
		return e.fault(pc, 0, fmt.Errorf("fetch: %w", err))
	}

	// 2. Decode
	inst := e.decoder.Decode(word)
	signals, err := e.control.Decode(inst)
	if err != nil {
		return e.fault(pc, word, err)
	}

	// 3-7. Execute, memory, write-back
	rec, err := e.execute(pc, inst, signals)
	if err != nil {
		return e.fault(pc, word, err)
	}

	rec.Cycle = e.cycleCount
	e.pc = rec.NextPC
	e.cycleCount++
	e.instructionCount++

	// 8. Halt detection
	if rec.NextPC == pc && (signals.Jump ||
		(signals.Branch && e.branchUnit.Unconditional(inst.Funct3, inst.Rs1, inst.Rs2))) {
		e.halted = true
		rec.Halted = true
	}

	e.trace(rec)

	return StepResult{Halted: e.halted}
}

// execute runs the datapath for one instruction. Memory is the only state
// touched before the register write, and a failed store writes nothing, so
// an error return means nothing was committed.
func (e *Emulator) execute(
	pc uint32,
	inst insts.Instruction,
	signals ControlSignals,
) (*Retired, error) {
	rec := &Retired{PC: pc, Inst: inst, Signals: signals}

	rs1Val, err := e.regFile.Read(inst.Rs1)
	if err != nil {
		return nil, err
	}
	rs2Val, err := e.regFile.Read(inst.Rs2)
	if err != nil {
		return nil, err
	}

	// ALU
	operandB := rs2Val
	if signals.ALUSrc {
		operandB = inst.Imm
	}
	aluResult, zero := e.alu.Execute(rs1Val, operandB, signals.ALUOp)
	rec.ALUResult = aluResult

	// Memory
	var memData uint32
	switch {
	case signals.MemRead:
		memData, err = e.lsu.LW(aluResult)
		rec.MemAddr, rec.MemValue = aluResult, memData
	case signals.MemWrite:
		err = e.lsu.SW(aluResult, rs2Val)
		rec.MemAddr, rec.MemValue = aluResult, rs2Val
	}
	if err != nil {
		return nil, err
	}

	// Write-back
	if signals.RegWrite {
		value := writeBackValue(pc, inst, signals, aluResult, memData)
		if err := e.regFile.Write(inst.Rd, value); err != nil {
			return nil, err
		}
		rec.RegWritten = inst.Rd != 0
		rec.RdValue = value
	}

	// PC update
	rec.NextPC = pc + 4
	switch {
	case signals.JALR:
		rec.NextPC = aluResult &^ 1
	case signals.Jump:
		rec.NextPC = pc + inst.Imm
	case signals.Branch && e.branchUnit.Taken(inst.Funct3, aluResult, zero):
		rec.NextPC = pc + inst.Imm
	}

	return rec, nil
}

func writeBackValue(
	pc uint32,
	inst insts.Instruction,
	signals ControlSignals,
	aluResult, memData uint32,
) uint32 {
	if signals.MemToReg {
		return memData
	}

	switch inst.Opcode {
	case insts.OpcodeLUI:
		return inst.Imm
	case insts.OpcodeAUIPC:
		return pc + inst.Imm
	case insts.OpcodeJAL, insts.OpcodeJALR:
		return pc + 4
	default:
		return aluResult
	}
}

func (e *Emulator) fault(pc, word uint32, err error) StepResult {
	e.logger.V(1).Info("fault", "pc", hex32(pc), "instr", hex32(word), "err", err.Error())
	return StepResult{Err: &StepError{PC: pc, Word: word, Err: err}}
}

func (e *Emulator) trace(rec *Retired) {
	if log := e.logger.V(1); log.Enabled() {
		kv := []any{
			"cycle", rec.Cycle,
			"pc", hex32(rec.PC),
			"instr", hex32(rec.Inst.Word),
			"opcode", rec.Inst.Opcode.String(),
		}
		if rec.RegWritten {
			kv = append(kv, "rd", rec.Inst.Rd, "value", hex32(rec.RdValue))
		}
		if rec.Halted {
			kv = append(kv, "halted", true)
		}
		log.Info("retire", kv...)
	}

	if e.NumHooks() > 0 {
		e.InvokeHook(sim.HookCtx{
			Domain: e,
			Pos:    HookPosRetire,
			Item:   rec,
		})
	}
}

func hex32(v uint32) string {
	return fmt.Sprintf("0x%08x", v)
}
