// Package report formats simulator state for display: register and memory
// dumps, run summaries and the per-instruction trace. It only reads emulator
// state.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/rv32sim/emu"
)

const (
	ansiBold  = "\033[1m"
	ansiReset = "\033[0m"
)

var rule = strings.Repeat("=", 60)

// WordReader reads memory words for display.
type WordReader interface {
	ReadWords(addr uint32, n int) ([]uint32, error)
}

// Printer writes reports to an output stream.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter creates a Printer. If color is set, non-zero registers are
// highlighted with ANSI attributes.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

// Registers writes the register file, four registers per line.
func (p *Printer) Registers(regs [emu.NumRegs]uint32) {
	fmt.Fprintln(p.w, "Register File:")
	for i := 0; i < emu.NumRegs; i += 4 {
		var line strings.Builder
		for j := i; j < i+4; j++ {
			cell := fmt.Sprintf("x%2d=0x%08x", j, regs[j])
			if p.color && regs[j] != 0 {
				cell = ansiBold + cell + ansiReset
			}
			line.WriteString(cell)
			line.WriteString("  ")
		}
		fmt.Fprintln(p.w, line.String())
	}
}

// State writes the processor state dump.
func (p *Printer) State(st emu.State) {
	fmt.Fprintf(p.w, "\n%s\n", rule)
	fmt.Fprintln(p.w, "CPU STATE DUMP")
	fmt.Fprintln(p.w, rule)
	fmt.Fprintf(p.w, "PC: 0x%08x\n", st.PC)
	fmt.Fprintf(p.w, "Cycles: %d\n", st.CycleCount)
	fmt.Fprintf(p.w, "Instructions: %d\n", st.InstructionCount)
	fmt.Fprintln(p.w)
	p.Registers(st.Regs)
	fmt.Fprintln(p.w, rule)
}

// Memory writes length bytes of memory starting at start, one word per line.
func (p *Printer) Memory(mem WordReader, start, length uint32) error {
	if length == 0 {
		return nil
	}

	words, err := mem.ReadWords(start, int((length+3)/4))
	if err != nil {
		return fmt.Errorf("failed to dump memory: %w", err)
	}

	fmt.Fprintf(p.w, "\nMemory Dump [0x%08x - 0x%08x]:\n", start, start+length-1)
	for i, w := range words {
		fmt.Fprintf(p.w, "  0x%08x: 0x%08x\n", start+uint32(4*i), w)
	}
	return nil
}

// Summary writes the outcome of a run. Simulated time is derived from the
// cycle count at the given clock.
func (p *Printer) Summary(res emu.RunResult, pc uint32, freq sim.Freq) {
	switch {
	case res.Halted:
		fmt.Fprintf(p.w, "\nHalt detected at PC=0x%08x (infinite loop)\n", pc)
	case res.LimitReached:
		fmt.Fprintf(p.w, "\nMax cycles (%d) reached\n", res.Cycles)
	}

	fmt.Fprintf(p.w, "\nExecution complete:\n")
	fmt.Fprintf(p.w, "  Cycles: %d\n", res.Cycles)
	fmt.Fprintf(p.w, "  Instructions: %d\n", res.Instructions)
	fmt.Fprintf(p.w, "  Final PC: 0x%08x\n", pc)
	fmt.Fprintf(p.w, "  Simulated time: %v @ %.0f MHz\n",
		SimulatedTime(res.Cycles, freq), float64(freq/sim.MHz))
}

// SimulatedTime converts a cycle count at freq into wall-clock time.
func SimulatedTime(cycles uint64, freq sim.Freq) time.Duration {
	if freq <= 0 {
		return 0
	}
	return time.Duration(float64(cycles) * float64(time.Second) / float64(freq))
}
