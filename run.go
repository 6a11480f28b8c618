package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"golang.org/x/sync/errgroup"

	"sixfive/emu"
	"sixfive/emu/debugger"
	"sixfive/emu/log"
	"sixfive/emu/rpc"
	"sixfive/emu/script"
	"sixfive/prg"
)

// runMain runs each image in its own machine, concurrently, and prints a
// report for each of them, in command line order.
func runMain(args Run, cfg emu.Config) error {
	if args.Entry != "" {
		cfg.Machine.Entry = args.Entry
	}
	if args.Frames >= 0 {
		cfg.Execution.Frames = args.Frames
	}
	if args.Script != "" {
		cfg.Script.File = args.Script
	}
	for _, s := range args.Break {
		for _, a := range strings.Split(s, ",") {
			addr, err := parseHexAddr(a)
			if err != nil {
				return err
			}
			cfg.Execution.Breakpoints = append(cfg.Execution.Breakpoints, addr)
		}
	}
	if err := cfg.Check(); err != nil {
		return err
	}

	var trace io.Writer
	switch {
	case args.Trace != nil:
		trace = args.Trace
		defer args.Trace.Close()
	case cfg.Trace.File != "":
		f := &outfile{}
		if err := f.open(cfg.Trace.File); err != nil {
			return err
		}
		trace = f
		defer f.Close()
	}
	if trace != nil && len(args.Images) > 1 {
		return errors.New("tracing is only possible with a single image")
	}
	if args.Port != 0 && len(args.Images) > 1 {
		return errors.New("remote control is only possible with a single image")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reports := make([]strings.Builder, len(args.Images))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range args.Images {
		g.Go(func() error {
			return runImage(ctx, &reports[i], path, args, cfg, trace, len(args.Images) == 1)
		})
	}
	err := g.Wait()

	for i := range reports {
		fmt.Print(reports[i].String())
	}
	return err
}

func runImage(ctx context.Context, w io.Writer, path string, args Run, cfg emu.Config, trace io.Writer, single bool) error {
	m, err := emu.NewMachine(cfg)
	if err != nil {
		return err
	}

	opts := prg.Options{Raw: args.Raw}
	if args.Addr != nil {
		opts.Addr = uint16(*args.Addr)
		opts.Override = !args.Raw
	}
	img, err := m.LoadImage(path, opts)
	if err != nil {
		return err
	}

	mode, addr, err := cfg.Machine.EntryPoint()
	if err != nil {
		return err
	}
	if err := m.Start(mode, addr, img); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if args.LoadState != "" {
		if err := loadState(m, args.LoadState); err != nil {
			return err
		}
	}

	if trace != nil {
		m.SetTraceOutput(trace)
	}
	if single {
		// Log contexts are global, they can't tell concurrent machines apart.
		log.AddContext(m.CPU)
		defer log.RemoveContext(m.CPU)
	}

	if cfg.Script.File != "" {
		ev, err := script.Open(cfg.Script.File)
		if err != nil {
			return err
		}
		defer ev.Close()
		m.AddEvaluator(ev)
	}

	if args.Port != 0 {
		server, err := rpc.NewServer(args.Port, m)
		if err != nil {
			return err
		}
		defer server.Close()
	}

	var cs *debugger.CallStack
	if args.CallStack {
		cs = debugger.NewCallStack()
		m.CPU.AddObserver(cs)
	}

	st, err := m.Run(ctx, cfg.Execution.Frames)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	fmt.Fprintf(w, "%s: loaded at %s\n", path, img)
	fmt.Fprintf(w, "  stop:   %s at $%04X\n", st.Stop, m.CPU.PC)
	fmt.Fprintf(w, "  frames: %d, instructions: %d, cycles: %d, unknown: %d, interrupts: %d\n",
		m.Frame(), st.Instructions, st.Cycles, st.Unknown, st.Interrupts)
	fmt.Fprintf(w, "  state:  %s\n", m.CPU.State)
	if err != nil {
		fmt.Fprintf(w, "  error:  %v\n", err)
	}
	if cs != nil {
		if werr := cs.Write(w, m.CPU.PC); werr != nil {
			return fmt.Errorf("%s: call stack: %w", path, werr)
		}
	}

	if args.SaveState != "" {
		if serr := saveState(m, args.SaveState); serr != nil {
			return serr
		}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func loadState(m *emu.Machine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.LoadSnapshot(f)
}

func saveState(m *emu.Machine, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.SaveSnapshot(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
