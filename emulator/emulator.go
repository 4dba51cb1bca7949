// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	goio "io"
	"iter"
	"maps"

	"github.com/ezrec/ukernel/config"
	"github.com/ezrec/ukernel/cpu"
	"github.com/ezrec/ukernel/internal"
	"github.com/ezrec/ukernel/io"
	"github.com/ezrec/ukernel/kernel"
	"github.com/ezrec/ukernel/telemetry"
)

var _emulator_defines = map[string]string{
	"HEAP_SIZE": fmt.Sprintf("%v", kernel.DEFAULT_HEAP_SIZE),
}

// Emulator state. Kernel + console + program listings.
type Emulator struct {
	Verbose        bool // If set, enables verbose logging.
	*kernel.Kernel      // Reference to the kernel simulation.

	Config  *config.Config // Boot configuration.
	Console io.Console     // Console output device.

	programs map[int]*cpu.Program
}

// NewEmulator creates a new emulator. A nil cfg uses the default configuration.
func NewEmulator(cfg *config.Config) (emu *Emulator) {
	if cfg == nil {
		cfg = config.Default()
	}

	emu = &Emulator{
		Verbose:  cfg.Verbose,
		Config:   cfg,
		programs: map[int]*cpu.Program{},
	}

	emu.Kernel = kernel.NewKernel(&emu.Console)
	emu.Kernel.Verbose = cfg.Verbose
	emu.Kernel.QuantumSize = cfg.Quantum

	return
}

// Defines returns an iterator over all of the defines.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	defines := maps.Clone(_emulator_defines)
	defines["HEAP_SIZE"] = fmt.Sprintf("%v", emu.Config.HeapSize)

	return internal.IterSeq2Concat(maps.All(defines),
		emu.Kernel.Defines(),
	)
}

// Assemble parses assembly text, with the emulator defines predefined.
func (emu *Emulator) Assemble(input goio.Reader) (prog *cpu.Program, err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for equ, value := range emu.Defines() {
		asm.Predefine(equ, value)
	}

	return asm.Parse(input)
}

// Boot spawns a process for an assembled program. The listing is kept to
// map runtime errors back to source lines.
func (emu *Emulator) Boot(prog *cpu.Program) (p *cpu.Process) {
	p = emu.BootImage(prog.Binary())
	emu.programs[p.Pid] = prog

	return
}

// BootImage spawns a process for a raw instruction stream.
func (emu *Emulator) BootImage(code []uint32) (p *cpu.Process) {
	return emu.Kernel.Spawn(code, emu.Config.HeapSize, emu.Config.User)
}

// Program returns the listing of a process, or nil if it was booted from
// an image.
func (emu *Emulator) Program(pid int) *cpu.Program {
	return emu.programs[pid]
}

// LineNo returns the source line of the word at ip in a process, or 0 if
// unknown.
func (emu *Emulator) LineNo(pid int, ip uint32) int {
	prog, ok := emu.programs[pid]
	if !ok {
		return 0
	}

	return prog.LineNo(ip)
}

// Run runs the kernel to completion. Execution faults are returned as
// *ErrRuntime, located at their source line when a listing is known.
func (emu *Emulator) Run(ctx context.Context) (report telemetry.Report, err error) {
	report, err = emu.Kernel.Run(ctx)

	var fault *cpu.ErrFault
	if errors.As(err, &fault) {
		err = &ErrRuntime{
			Pid:    fault.Pid,
			LineNo: emu.LineNo(fault.Pid, fault.Ip),
			Err:    err,
		}
	}

	return
}
