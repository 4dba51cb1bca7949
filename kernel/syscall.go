package kernel

import (
	"log"

	"github.com/ezrec/ukernel/cpu"
)

const (
	SYS_WRITE  = 0 // Write heap words [r1, r2) to the console as text.
	SYS_NUMBER = 1 // Write r1 to the console as a decimal number.
)

var _ cpu.Syscaller = (*Kernel)(nil)

// Syscall dispatches on the call number in the accumulator.
// Unknown call numbers are ignored, and leave the process state untouched.
func (k *Kernel) Syscall(reg *[cpu.REGISTER_COUNT]uint32, flags *cpu.Flags, heap cpu.Heap) (err error) {
	call := reg[cpu.REG_ACC]

	if k.Verbose {
		log.Printf("kernel: syscall %d", call)
	}

	switch call {
	case SYS_WRITE:
		err = k.Console.WriteText(heap.Slice(reg[1], reg[2]))
	case SYS_NUMBER:
		err = k.Console.WriteNumber(reg[1])
	}

	return
}
