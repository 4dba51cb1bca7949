// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/viant/afs"

	"github.com/ezrec/ukernel/config"
	"github.com/ezrec/ukernel/cpu"
	"github.com/ezrec/ukernel/emulator"
	"github.com/ezrec/ukernel/io"
	"github.com/ezrec/ukernel/tracing"
)

const version = "0.1.0"

// location converts a plain file path into a storage URL.
func location(path string) string {
	if strings.Contains(path, "://") {
		return path
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return "file://" + abs
}

// isSource returns true if the input name is assembly text.
func isSource(name string) bool {
	switch filepath.Ext(name) {
	case ".s", ".asm":
		return true
	}
	return false
}

func main() {
	var assemble bool
	var output string
	var configURL string
	var heapSize int
	var user uint
	var quantum int
	var trace string
	var verbose bool

	flag.BoolVar(&assemble, "a", false, "Assemble to an image, do not execute")
	flag.StringVar(&output, "o", "", "Image output (default: input without extension)")
	flag.StringVar(&configURL, "config", "", "YAML configuration file or URL")
	flag.IntVar(&heapSize, "heap", 0, "Heap words of the boot process")
	flag.UintVar(&user, "user", 0, "User identifier of the boot process")
	flag.IntVar(&quantum, "quantum", 0, "Instruction steps per quantum")
	flag.StringVar(&trace, "trace", "", "Span trace output file")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("%v: expected one input, got %v", os.Args[0], flag.Args())
	}
	input := flag.Arg(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fs := afs.New()

	cfg := config.Default()
	if len(configURL) != 0 {
		var err error
		cfg, err = config.Load(ctx, fs, location(configURL))
		if err != nil {
			log.Fatalf("%v: %v", configURL, err)
		}
	}

	// Command line flags override the configuration file.
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "heap":
			cfg.HeapSize = heapSize
		case "user":
			cfg.User = uint32(user)
		case "quantum":
			cfg.Quantum = quantum
		case "trace":
			cfg.Trace = trace
		case "v":
			cfg.Verbose = verbose
		}
	})

	err := cfg.Validate()
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	emu := emulator.NewEmulator(cfg)
	emu.Console.Output = os.Stdout

	var prog *cpu.Program
	if assemble || isSource(input) {
		text, err := fs.DownloadWithURL(ctx, location(input))
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}

		prog, err = emu.Assemble(bytes.NewReader(text))
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}

		if assemble && len(output) == 0 {
			output = strings.TrimSuffix(input, filepath.Ext(input))
			if output == input {
				output += ".rom"
			}
		}

		if len(output) != 0 {
			err = io.SaveRom(ctx, fs, location(output), prog.Binary())
			if err != nil {
				log.Fatalf("%v: %v", output, err)
			}
		}

		if assemble {
			return
		}

		emu.Boot(prog)
	} else {
		code, err := io.LoadRom(ctx, fs, location(input))
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		emu.BootImage(code)
	}

	if len(cfg.Trace) != 0 {
		emu.Kernel.Tracer, err = tracing.Open("ukernel", version, cfg.Trace)
		if err != nil {
			log.Fatalf("%v: %v", cfg.Trace, err)
		}
	}

	report, err := emu.Run(ctx)

	if serr := emu.Kernel.Tracer.Shutdown(context.Background()); serr != nil {
		log.Printf("%v: %v", cfg.Trace, serr)
	}

	if err != nil {
		log.Fatalf("%v: %v", input, err)
	}

	fmt.Fprint(os.Stderr, report)
}
