package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bdwalton/famicore/cartridge"
	"github.com/bdwalton/famicore/console"
	"github.com/bdwalton/famicore/logger"
	"github.com/bdwalton/famicore/ui"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const STATS_ADDR = "localhost:12600"

var (
	romFile   = flag.String("nes_rom", "", "Path to NES ROM to run.")
	frames    = flag.Int("frames", 0, "Run this many frames without a window and exit.")
	traceFile = flag.String("trace", "", "Write a trace line for every instruction to this file.")
	goldenLog = flag.String("golden_log", "", "Verify execution from $C000 against this nestest style log.")
	bios      = flag.Bool("bios", false, "Start the interactive monitor instead of the window.")
	stats     = flag.Bool("statsview", false, "Serve runtime statistics at "+STATS_ADDR+"/debug/statsview.")
	scale     = flag.Int("scale", 3, "Window size as a multiple of 256x240.")
	verbose   = flag.Bool("verbose", false, "Echo log entries to stderr as they happen.")
)

func launchStats(output io.Writer) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(STATS_ADDR))
		statsview.New().Start()
	}()

	fmt.Fprintf(output, "stats server available at %s/debug/statsview\n", STATS_ADDR)
}

func main() {
	flag.Parse()

	if *verbose {
		logger.SetEcho(os.Stderr)
	}
	if *stats {
		launchStats(os.Stdout)
	}

	c, err := cartridge.Load(*romFile)
	if err != nil {
		log.Fatalf("Couldn't load %q: %v", *romFile, err)
	}
	fmt.Println(c)

	b := console.New(c)

	var tw *bufio.Writer
	if *traceFile != "" {
		f, err := os.Create(*traceFile)
		if err != nil {
			log.Fatalf("Couldn't create trace file %q: %v", *traceFile, err)
		}
		defer f.Close()
		tw = bufio.NewWriter(f)
		defer tw.Flush()
		b.SetTrace(tw)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, b); err != nil {
		if tw != nil {
			tw.Flush()
		}
		log.Fatal(err)
	}
}

func run(ctx context.Context, b *console.Bus) error {
	switch {
	case *goldenLog != "":
		f, err := os.Open(*goldenLog)
		if err != nil {
			return fmt.Errorf("couldn't open golden log: %w", err)
		}
		defer f.Close()

		n, err := b.VerifyTrace(f, 0)
		if err != nil {
			return fmt.Errorf("after %d matching lines: %w", n, err)
		}
		fmt.Printf("%d lines matched %s\n", n, *goldenLog)
	case *bios:
		// The monitor uses SIGINT to interrupt a run, so it gets its
		// own context.
		b.BIOS(context.Background())
	case *frames > 0:
		if err := b.RunFrames(ctx, *frames); err != nil {
			return fmt.Errorf("stopped after %d CPU cycles: %w", b.CPUCycles(), err)
		}
		fmt.Printf("Ran %d frames in %d CPU cycles, %d refused writes\n", *frames, b.CPUCycles(), b.Faults())
	default:
		return ui.Run(b, *scale)
	}

	return nil
}
