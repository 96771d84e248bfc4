package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/sarchlab/rv32sim/config"
	"github.com/sarchlab/rv32sim/emu"
	"github.com/sarchlab/rv32sim/loader"
	"github.com/sarchlab/rv32sim/report"
)

type runOptions struct {
	configPath string
	verbose    int

	debug      bool
	maxCycles  uint64
	memorySize uint32
	clockMHz   float64
	dumpStart  uint32
	dumpLength uint32
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [flags] <program> [program...]",
		Short: "Run one or more program images",
		Long: `Run loads each program image into its own simulator and executes it
until it halts or reaches the cycle limit, then prints the final state.
Several images are simulated in parallel; reports are printed in argument
order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolveConfig(cmd)
			if err != nil {
				return err
			}

			color := term.IsTerminal(int(os.Stdout.Fd()))
			logger := newLogger(opts.verbose)

			return runAll(cmd.Context(), args, cfg, cmd.OutOrStdout(), logger, color)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a JSON or YAML simulation config")
	flags.CountVarP(&opts.verbose, "verbose", "v", "Log verbosity (repeatable)")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "Print a trace line for every executed instruction")
	flags.Uint64Var(&opts.maxCycles, "max-cycles", 0, "Cycle limit, 0 for none (default from config: 10000)")
	flags.Uint32Var(&opts.memorySize, "memory-size", 0, "Memory size in bytes (default from config: 0x20000)")
	flags.Float64Var(&opts.clockMHz, "clock-mhz", 0, "Simulated clock in MHz (default from config: 100)")
	flags.Uint32Var(&opts.dumpStart, "dump-start", 0, "First address of the memory dump (default from config: 0x10000)")
	flags.Uint32Var(&opts.dumpLength, "dump-length", 0, "Bytes of memory to dump, 0 for none (default from config: 16)")

	return cmd
}

// resolveConfig loads the config file, if any, and applies flags that were
// set explicitly on top of it.
func (o *runOptions) resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if flags.Changed("max-cycles") {
		cfg.MaxCycles = o.maxCycles
	}
	if flags.Changed("memory-size") {
		cfg.MemorySize = o.memorySize
	}
	if flags.Changed("clock-mhz") {
		cfg.ClockMHz = o.clockMHz
	}
	if flags.Changed("dump-start") {
		cfg.DumpStart = o.dumpStart
	}
	if flags.Changed("dump-length") {
		cfg.DumpLength = o.dumpLength
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runAll simulates every image in its own emulator and writes the reports
// to out in argument order. The first error is returned after all reports
// have been written.
func runAll(
	ctx context.Context,
	paths []string,
	cfg *config.Config,
	out io.Writer,
	logger logr.Logger,
	color bool,
) error {
	if len(paths) == 1 {
		return simulate(ctx, paths[0], cfg, out, logger, color)
	}

	outputs := make([]bytes.Buffer, len(paths))

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			return simulate(ctx, path, cfg, &outputs[i], logger, color)
		})
	}
	err := g.Wait()

	for i := range outputs {
		if _, werr := outputs[i].WriteTo(out); werr != nil {
			return werr
		}
	}

	return err
}

// simulate loads and runs a single program image.
func simulate(
	ctx context.Context,
	path string,
	cfg *config.Config,
	out io.Writer,
	logger logr.Logger,
	color bool,
) error {
	prog, err := loader.Load(path)
	if err != nil {
		return err
	}

	logger = logger.WithValues("image", path)
	e := emu.NewEmulator(
		emu.WithMemorySize(cfg.MemorySize),
		emu.WithEntryPoint(prog.EntryPoint),
		emu.WithLogger(logger),
	)
	for _, seg := range prog.Segments {
		if err := e.LoadSegment(seg.VirtAddr, seg.Data, seg.MemSize); err != nil {
			return fmt.Errorf("%s: segment at 0x%08x: %w", path, seg.VirtAddr, err)
		}
		logger.V(1).Info("segment loaded",
			"addr", fmt.Sprintf("0x%08x", seg.VirtAddr),
			"filesz", len(seg.Data),
			"memsz", seg.MemSize,
			"flags", seg.Flags.String())
	}
	fmt.Fprintf(out, "Program loaded from %s\n", path)

	if cfg.Debug {
		e.AcceptHook(report.NewTracer(out))
	}

	fmt.Fprintf(out, "\n=== Starting CPU Execution ===\n")
	res, runErr := e.Run(ctx, cfg.MaxCycles)

	p := report.NewPrinter(out, color)
	if runErr != nil {
		fmt.Fprintf(out, "\nExecution stopped: %v\n", runErr)
		p.State(e.State())
		return fmt.Errorf("%s: %w", path, runErr)
	}

	p.Summary(res, e.PC(), cfg.Freq())
	p.State(e.State())

	return p.Memory(e, cfg.DumpStart, cfg.DumpLength)
}
