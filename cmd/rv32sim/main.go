// Package main provides the entry point for rv32sim.
// rv32sim is a single-cycle RV32I instruction-level simulator.
package main

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rv32sim",
		Short: "Single-cycle RV32I simulator",
		Long: `rv32sim executes RV32I programs one instruction per cycle.
Programs are hex images (one 8-digit word per line, loaded at address 0)
or 32-bit RISC-V ELF executables. A JAL, JALR or always-taken branch that
targets its own address ends the program.`,
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// newLogger returns a logger writing key/value lines to stderr.
func newLogger(verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: verbosity})
}
