package report

import (
	"fmt"
	"io"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/rv32sim/emu"
)

// Tracer is an akita hook that prints every retired instruction.
type Tracer struct {
	w io.Writer
}

// NewTracer creates a Tracer writing to w.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// Func implements sim.Hook.
func (t *Tracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != emu.HookPosRetire {
		return
	}

	rec, ok := ctx.Item.(*emu.Retired)
	if !ok {
		return
	}

	inst := rec.Inst
	fmt.Fprintf(t.w, "\n[Cycle %d] PC=0x%08x Instr=0x%08x  %s\n",
		rec.Cycle, rec.PC, inst.Word, Disassemble(inst))
	fmt.Fprintf(t.w, "  Opcode=0x%02x rd=x%d rs1=x%d rs2=x%d\n",
		uint8(inst.Opcode), inst.Rd, inst.Rs1, inst.Rs2)

	switch {
	case rec.Signals.MemRead:
		fmt.Fprintf(t.w, "  Load [0x%08x] -> 0x%08x\n", rec.MemAddr, rec.MemValue)
	case rec.Signals.MemWrite:
		fmt.Fprintf(t.w, "  Store [0x%08x] <- 0x%08x\n", rec.MemAddr, rec.MemValue)
	}

	if rec.RegWritten {
		fmt.Fprintf(t.w, "  Write x%d = 0x%08x\n", inst.Rd, rec.RdValue)
	}

	if rec.NextPC != rec.PC+4 {
		fmt.Fprintf(t.w, "  PC -> 0x%08x\n", rec.NextPC)
	}
}
