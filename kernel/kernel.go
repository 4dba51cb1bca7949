// Package kernel multiplexes processes onto a single thread of control.
//
// Processes are run round-robin, one instruction at a time, in quanta of a
// bounded number of steps. Between quanta the kernel yields to the host,
// drains pending interrupts, and records the quantum duration.
package kernel

import (
	"context"
	"fmt"
	"iter"
	"log"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ezrec/ukernel/cpu"
	"github.com/ezrec/ukernel/io"
	"github.com/ezrec/ukernel/telemetry"
	"github.com/ezrec/ukernel/tracing"
)

const (
	DEFAULT_QUANTUM   = 100000 // Instruction steps per quantum.
	DEFAULT_HEAP_SIZE = 256    // Heap words per process.
	INTERRUPT_DEPTH   = 16     // Pending interrupt capacity.
)

var _kernel_defines = map[string]string{
	"SYS_WRITE":  fmt.Sprintf("%v", SYS_WRITE),
	"SYS_NUMBER": fmt.Sprintf("%v", SYS_NUMBER),
}

// Kernel state: the process table, and the scheduler cursor into it.
type Kernel struct {
	Verbose bool // If set, enables verbose logging.

	Console     *io.Console      // Syscall output device.
	QuantumSize int              // Instruction steps per quantum.
	Tracer      *tracing.Tracer  // Optional span recorder.
	Session     uuid.UUID        // Boot session identifier.
	Telemetry   telemetry.Log    // Quantum duration log.
	Now         func() time.Time // Clock used for telemetry.

	// Yield hands control back to the host between quanta.
	Yield func(ctx context.Context) error

	// Interrupt receives interrupt requests, drained at quantum boundaries.
	Interrupt  chan uint32
	Interrupts int // Interrupts received.

	processes []*cpu.Process
	current   int
	lastPid   int
	steps     int
	quanta    int
}

// NewKernel creates a kernel with an empty process table.
func NewKernel(console *io.Console) (k *Kernel) {
	k = &Kernel{
		Console:     console,
		QuantumSize: DEFAULT_QUANTUM,
		Session:     uuid.New(),
		Now:         time.Now,
		Yield:       Yield,
		Interrupt:   make(chan uint32, INTERRUPT_DEPTH),
	}

	return
}

// Yield waits for a zero delay timer, giving other host work a chance to
// run. Returns the context error if ctx is done first.
func Yield(ctx context.Context) (err error) {
	err = ctx.Err()
	if err != nil {
		return
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		err = ctx.Err()
	case <-timer.C:
	}

	return
}

// Defines returns an iterator over the kernel's assembler defines.
func (k *Kernel) Defines() iter.Seq2[string, string] {
	return maps.All(_kernel_defines)
}

// Spawn creates a process for code, and appends it to the process table.
func (k *Kernel) Spawn(code []uint32, heapSize int, user uint32) (p *cpu.Process) {
	k.lastPid++

	p = cpu.NewProcess(code, heapSize, user)
	p.Pid = k.lastPid
	p.Verbose = k.Verbose

	k.processes = append(k.processes, p)

	if k.Verbose {
		log.Printf("kernel: spawn pid %d (%d words, heap %d, user %d)", p.Pid, len(code), heapSize, user)
	}

	return
}

// Processes returns the process table, in scheduling order.
func (k *Kernel) Processes() []*cpu.Process {
	return slices.Clone(k.processes)
}

// Current returns the process under the scheduler cursor, or nil.
func (k *Kernel) Current() *cpu.Process {
	if len(k.processes) == 0 {
		return nil
	}
	return k.processes[k.current]
}

// Steps returns the total scheduler steps since boot.
func (k *Kernel) Steps() int {
	return k.steps
}

// Step executes one instruction of the current process.
// A halted process is removed, leaving the cursor on the process that
// followed it; otherwise the cursor advances. Execution faults are
// returned, and are fatal to the whole machine.
func (k *Kernel) Step() (err error) {
	if len(k.processes) == 0 {
		err = ErrNoProcess
		return
	}

	p := k.processes[k.current]

	ok, err := p.Step(k)
	if err != nil {
		return
	}

	k.steps++

	if !ok {
		if k.Verbose {
			log.Printf("kernel: halt pid %d after %d ticks", p.Pid, p.Ticks)
		}
		k.processes = slices.Delete(k.processes, k.current, k.current+1)
	} else {
		k.current++
	}

	if k.current >= len(k.processes) {
		k.current = 0
	}

	return
}

// Quantum runs up to QuantumSize steps, stopping early once the process
// table is empty.
func (k *Kernel) Quantum(ctx context.Context) (done bool, err error) {
	if k.QuantumSize <= 0 {
		err = ErrQuantumSize
		return
	}

	k.quanta++

	_, span := k.Tracer.StartSpan(ctx, "quantum")
	span.WithAttributes(map[string]string{
		"session": k.Session.String(),
		"quantum": strconv.Itoa(k.quanta),
	})

	var n int
	defer func() {
		span.SetCount("steps", n).SetCount("processes", len(k.processes))
		tracing.EndSpan(span, err)
	}()

	if k.Verbose {
		log.Printf("kernel: quantum %d (%d processes)", k.quanta, len(k.processes))
	}

	for n = 0; n < k.QuantumSize && len(k.processes) > 0; n++ {
		err = k.Step()
		if err != nil {
			return
		}
	}

	done = len(k.processes) == 0

	return
}

// interrupts drains the pending interrupt requests.
// No interrupt handlers exist; requests are only counted.
func (k *Kernel) interrupts() {
	for {
		select {
		case irq := <-k.Interrupt:
			k.Interrupts++
			if k.Verbose {
				log.Printf("kernel: interrupt 0x%x", irq)
			}
		default:
			return
		}
	}
}

// Run schedules processes until the process table is empty, yielding to
// the host between quanta. Returns the telemetry report for the run, and
// the first execution fault or context error encountered.
func (k *Kernel) Run(ctx context.Context) (report telemetry.Report, err error) {
	ctx, span := k.Tracer.StartSpan(ctx, "run")
	span.WithAttributes(map[string]string{"session": k.Session.String()})

	k.Telemetry.Start(k.Now())

	defer func() {
		report = k.Telemetry.Report(k.Now())
		span.SetCount("quanta", report.Count)
		tracing.EndSpan(span, err)
	}()

	for {
		var done bool
		done, err = k.Quantum(ctx)
		if err != nil || done {
			return
		}

		k.Telemetry.Mark(k.Now())
		k.interrupts()

		err = k.Yield(ctx)
		if err != nil {
			return
		}
	}
}
