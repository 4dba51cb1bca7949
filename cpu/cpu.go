package cpu

import (
	"fmt"
	"log"
	"math/bits"
	"slices"
)

const (
	REGISTER_COUNT = 6 // Width of the register file.
	REG_ACC        = 0 // Accumulator, low word of multiply and divide.
	REG_HIGH       = 3 // High word of multiply, remainder of divide.
)

// Register names, as accepted by the assembler.
var registerNames = [REGISTER_COUNT]string{"eax", "ebx", "ecx", "edx", "esi", "edi"}

// RegisterName returns the assembler name of a register index.
func RegisterName(reg uint32) string {
	if reg < REGISTER_COUNT {
		return registerNames[reg]
	}
	return fmt.Sprintf("r%d", reg)
}

// Flags is the condition state set by compare and add operations.
// Flags are never reset implicitly.
type Flags struct {
	Zero  bool
	Carry bool
	Sign  bool // Defined, never set by any operation.
}

// String returns the flags as upper case (set) or lower case (clear) letters.
func (fl Flags) String() string {
	letter := func(set bool, ch byte) byte {
		if set {
			return ch - 'a' + 'A'
		}
		return ch
	}

	return string([]byte{letter(fl.Zero, 'z'), letter(fl.Carry, 'c'), letter(fl.Sign, 's')})
}

// Syscaller services the syscall opcode on behalf of a process.
type Syscaller interface {
	Syscall(reg *[REGISTER_COUNT]uint32, flags *Flags, heap Heap) error
}

// Process is the execution state owned by a single program.
type Process struct {
	Verbose bool // Set to enable verbose logging.

	Pid  int    // Kernel assigned process id.
	User uint32 // Opaque user identifier.

	Ip       uint32                 // Program counter, as a word index into the code.
	Register [REGISTER_COUNT]uint32 // Register file.
	Flags    Flags                  // Condition flags.
	Heap     Heap                   // Private memory.

	Ticks int // Instructions executed.

	code []uint32
}

// NewProcess creates a process for a code stream, with a zeroed heap of
// heapSize words. The code is copied; it is never modified.
func NewProcess(code []uint32, heapSize int, user uint32) (p *Process) {
	p = &Process{
		User: user,
		Heap: NewHeap(heapSize),
		code: slices.Clone(code),
	}

	return
}

// Code returns a copy of the instruction stream.
func (p *Process) Code() []uint32 {
	return slices.Clone(p.code)
}

// Live returns true while the program counter is inside the code stream.
func (p *Process) Live() bool {
	return uint64(p.Ip) < uint64(len(p.code))
}

// String returns the current process state as a string.
func (p *Process) String() (text string) {
	text += fmt.Sprintf("%5s: %d\n", "pid", p.Pid)
	text += fmt.Sprintf("%5s: %04X\n", "ip", p.Ip)
	text += fmt.Sprintf("%5s: %v\n", "flags", p.Flags)
	for n, val := range p.Register {
		text += fmt.Sprintf("%5s: %04X_%04X\n", RegisterName(uint32(n)), val>>16, val&0xffff)
	}

	return
}

// Step executes the instruction at the program counter.
// Returns false, without executing anything, once the program counter has
// left the code stream. Any execution error is fatal to the caller.
func (p *Process) Step(sys Syscaller) (ok bool, err error) {
	if !p.Live() {
		return
	}

	in, err := Decode(p.code, p.Ip)
	if err != nil {
		err = &ErrFault{Pid: p.Pid, Ip: p.Ip, Err: err}
		return
	}

	err = p.Execute(in, sys)
	if err != nil {
		err = &ErrFault{Pid: p.Pid, Ip: in.Ip, Err: err}
		return
	}

	ok = true
	return
}

// register returns a pointer to the register at index reg.
func (p *Process) register(reg uint32) (*uint32, error) {
	if reg >= REGISTER_COUNT {
		return nil, ErrRegisterInvalid
	}
	return &p.Register[reg], nil
}

// indirect returns the heap address held in register reg.
func (p *Process) indirect(reg uint32) (addr uint32, err error) {
	r, err := p.register(reg)
	if err != nil {
		return
	}
	addr = *r
	return
}

// modifyHeap applies fn to the heap word at addr.
func (p *Process) modifyHeap(addr uint32, fn func(uint32) uint32) (err error) {
	val, err := p.Heap.Load(addr)
	if err != nil {
		return
	}
	return p.Heap.Store(addr, fn(val))
}

// compare sets the flags from the three-way comparison of a and b.
func (p *Process) compare(a, b uint32) {
	switch {
	case a == b:
		p.Flags.Zero, p.Flags.Carry = true, false
	case a < b:
		p.Flags.Zero, p.Flags.Carry = false, true
	default:
		p.Flags.Zero, p.Flags.Carry = false, false
	}
}

// multiply sets r3:r0 to the 64-bit product of r0 and value.
func (p *Process) multiply(value uint32) {
	hi, lo := bits.Mul32(p.Register[REG_ACC], value)
	p.Register[REG_ACC] = lo
	p.Register[REG_HIGH] = hi
}

// divide divides r3:r0 by value, leaving the low word of the quotient in
// r0 and the remainder in r3.
func (p *Process) divide(value uint32) (err error) {
	if value == 0 {
		err = ErrDivideByZero
		return
	}

	dividend := uint64(p.Register[REG_HIGH])<<32 | uint64(p.Register[REG_ACC])
	p.Register[REG_ACC] = uint32(dividend / uint64(value))
	p.Register[REG_HIGH] = uint32(dividend % uint64(value))
	return
}

func inc(val uint32) uint32 { return val + 1 }
func dec(val uint32) uint32 { return val - 1 }

// Execute executes a single decoded instruction.
func (p *Process) Execute(in Instruction, sys Syscaller) (err error) {
	if p.Verbose {
		log.Printf("cpu: pid %d ip %04x: %v", p.Pid, in.Ip, in)
	}

	if len(in.Args) != in.Op.Operands() {
		if !in.Op.Valid() {
			return ErrOpcode(in.Op)
		}
		return ErrOperandMissing
	}

	next_ip := in.Next()
	args := in.Args

	var r, r2 *uint32
	var addr, val uint32

	switch in.Op {
	case OP_SYSCALL:
		err = sys.Syscall(&p.Register, &p.Flags, p.Heap)
	case OP_MOV_VTR:
		if r, err = p.register(args[0]); err == nil {
			*r = args[1]
		}
	case OP_MOV_RTR:
		if r, err = p.register(args[0]); err != nil {
			break
		}
		if r2, err = p.register(args[1]); err == nil {
			*r = *r2
		}
	case OP_MOV_MTR:
		if r, err = p.register(args[0]); err != nil {
			break
		}
		if val, err = p.Heap.Load(args[1]); err == nil {
			*r = val
		}
	case OP_MOV_VTM:
		err = p.Heap.Store(args[0], args[1])
	case OP_MOV_RTM:
		if r, err = p.register(args[1]); err == nil {
			err = p.Heap.Store(args[0], *r)
		}
	case OP_ADD:
		if r, err = p.register(args[0]); err == nil {
			var carry uint32
			*r, carry = bits.Add32(*r, args[1], 0)
			p.Flags.Carry = carry != 0
		}
	case OP_ADD_R:
		if r, err = p.register(args[0]); err != nil {
			break
		}
		if r2, err = p.register(args[1]); err == nil {
			*r += *r2
		}
	case OP_SUB:
		if r, err = p.register(args[0]); err == nil {
			*r -= args[1]
		}
	case OP_SUB_R:
		if r, err = p.register(args[0]); err != nil {
			break
		}
		if r2, err = p.register(args[1]); err == nil {
			*r -= *r2
		}
	case OP_MUL:
		p.multiply(args[0])
	case OP_MUL_R:
		if r, err = p.register(args[0]); err == nil {
			p.multiply(*r)
		}
	case OP_DIV:
		err = p.divide(args[0])
	case OP_DIV_R:
		if r, err = p.register(args[0]); err == nil {
			err = p.divide(*r)
		}
	case OP_MOV_VTMR:
		if addr, err = p.indirect(args[0]); err == nil {
			err = p.Heap.Store(addr, args[1])
		}
	case OP_MOV_RTMR:
		if addr, err = p.indirect(args[0]); err != nil {
			break
		}
		if r2, err = p.register(args[1]); err == nil {
			err = p.Heap.Store(addr, *r2)
		}
	case OP_MOV_MTM:
		if val, err = p.Heap.Load(args[1]); err == nil {
			err = p.Heap.Store(args[0], val)
		}
	case OP_MOV_MTMR:
		if addr, err = p.indirect(args[0]); err != nil {
			break
		}
		if val, err = p.Heap.Load(args[1]); err == nil {
			err = p.Heap.Store(addr, val)
		}
	case OP_MOV_MRTR:
		if r, err = p.register(args[0]); err != nil {
			break
		}
		if addr, err = p.indirect(args[1]); err != nil {
			break
		}
		if val, err = p.Heap.Load(addr); err == nil {
			*r = val
		}
	case OP_MOV_MRTM:
		if addr, err = p.indirect(args[1]); err != nil {
			break
		}
		if val, err = p.Heap.Load(addr); err == nil {
			err = p.Heap.Store(args[0], val)
		}
	case OP_MOV_MRTMR:
		var src uint32
		if addr, err = p.indirect(args[0]); err != nil {
			break
		}
		if src, err = p.indirect(args[1]); err != nil {
			break
		}
		if val, err = p.Heap.Load(src); err == nil {
			err = p.Heap.Store(addr, val)
		}
	case OP_INC_R:
		if r, err = p.register(args[0]); err == nil {
			*r = inc(*r)
		}
	case OP_INC_M:
		err = p.modifyHeap(args[0], inc)
	case OP_INC_MR:
		if addr, err = p.indirect(args[0]); err == nil {
			err = p.modifyHeap(addr, inc)
		}
	case OP_DEC_R:
		if r, err = p.register(args[0]); err == nil {
			*r = dec(*r)
		}
	case OP_DEC_M:
		err = p.modifyHeap(args[0], dec)
	case OP_DEC_MR:
		if addr, err = p.indirect(args[0]); err == nil {
			err = p.modifyHeap(addr, dec)
		}
	case OP_CMP_V:
		if r, err = p.register(args[0]); err == nil {
			p.compare(*r, args[1])
		}
	case OP_CMP_R:
		if r, err = p.register(args[0]); err != nil {
			break
		}
		if r2, err = p.register(args[1]); err == nil {
			p.compare(*r, *r2)
		}
	case OP_JMP:
		next_ip = args[0]
	case OP_JEQ:
		if p.Flags.Zero {
			next_ip = args[0]
		}
	default:
		err = ErrOpcode(in.Op)
	}

	if err != nil {
		return
	}

	p.Ip = next_ip
	p.Ticks++

	return
}
