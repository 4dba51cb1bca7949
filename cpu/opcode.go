package cpu

import (
	"fmt"
	"strings"
)

// Op is an instruction opcode, the leading word of every instruction.
type Op uint32

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_SYSCALL    = Op(0x00) // syscall
	OP_MOV_VTR    = Op(0x01) // movvtr
	OP_MOV_RTR    = Op(0x02) // movrtr
	OP_MOV_MTR    = Op(0x03) // movmtr
	OP_MOV_VTM    = Op(0x04) // movvtm
	OP_MOV_RTM    = Op(0x05) // movrtm
	OP_ADD        = Op(0x06) // add
	OP_ADD_R      = Op(0x07) // addr
	OP_SUB        = Op(0x08) // sub
	OP_SUB_R      = Op(0x09) // subr
	OP_MUL        = Op(0x0a) // mul
	OP_MUL_R      = Op(0x0b) // mulr
	OP_DIV        = Op(0x0c) // div
	OP_DIV_R      = Op(0x0d) // divr
	OP_MOV_VTMR   = Op(0x0e) // movvtmr
	OP_MOV_RTMR   = Op(0x0f) // movrtmr
	OP_MOV_MTM    = Op(0x10) // movmtm
	OP_MOV_MTMR   = Op(0x11) // movmtmr
	OP_MOV_MRTR   = Op(0x12) // movmrtr
	OP_MOV_MRTM   = Op(0x13) // movmrtm
	OP_MOV_MRTMR  = Op(0x14) // movmrtmr
	OP_INC_R      = Op(0x15) // incr
	OP_INC_M      = Op(0x16) // incm
	OP_INC_MR     = Op(0x17) // incmr
	OP_DEC_R      = Op(0x18) // decr
	OP_DEC_M      = Op(0x19) // decm
	OP_DEC_MR     = Op(0x1a) // decmr
	OP_CMP_V      = Op(0x1b) // cmpv
	OP_CMP_R      = Op(0x1c) // cmpr
	OP_JMP        = Op(0x1d) // jmp
	OP_JEQ        = Op(0x1e) // jeq
)

// OP_LAST_VALID is the highest opcode of the instruction set.
const OP_LAST_VALID = OP_JEQ

// ArgKind is the interpretation of an operand word.
type ArgKind int

const (
	ARG_REGISTER = ArgKind(iota) // register index
	ARG_VALUE                    // literal value
	ARG_MEMORY                   // heap address
	ARG_MEMREG                   // register index holding a heap address
	ARG_TARGET                   // absolute word index in the code stream
)

var (
	argsNone     = []ArgKind{}
	argsReg      = []ArgKind{ARG_REGISTER}
	argsValue    = []ArgKind{ARG_VALUE}
	argsMem      = []ArgKind{ARG_MEMORY}
	argsMemReg   = []ArgKind{ARG_MEMREG}
	argsTarget   = []ArgKind{ARG_TARGET}
	argsRegValue = []ArgKind{ARG_REGISTER, ARG_VALUE}
	argsRegReg   = []ArgKind{ARG_REGISTER, ARG_REGISTER}
	argsRegMem   = []ArgKind{ARG_REGISTER, ARG_MEMORY}
	argsMemValue = []ArgKind{ARG_MEMORY, ARG_VALUE}
	argsMemRegs  = []ArgKind{ARG_MEMORY, ARG_REGISTER}
	argsMemMem   = []ArgKind{ARG_MEMORY, ARG_MEMORY}
	argsMrValue  = []ArgKind{ARG_MEMREG, ARG_VALUE}
	argsMrReg    = []ArgKind{ARG_MEMREG, ARG_REGISTER}
	argsMrMem    = []ArgKind{ARG_MEMREG, ARG_MEMORY}
	argsRegMr    = []ArgKind{ARG_REGISTER, ARG_MEMREG}
	argsMemMr    = []ArgKind{ARG_MEMORY, ARG_MEMREG}
	argsMrMr     = []ArgKind{ARG_MEMREG, ARG_MEMREG}
)

// Valid returns true if the opcode is part of the instruction set.
func (op Op) Valid() bool {
	return op <= OP_LAST_VALID
}

// Args returns the kinds of the operand words that follow the opcode.
// Returns nil for an invalid opcode.
func (op Op) Args() []ArgKind {
	switch op {
	case OP_SYSCALL:
		return argsNone
	case OP_MOV_VTR, OP_ADD, OP_SUB, OP_CMP_V:
		return argsRegValue
	case OP_MOV_RTR, OP_ADD_R, OP_SUB_R, OP_CMP_R:
		return argsRegReg
	case OP_MOV_MTR:
		return argsRegMem
	case OP_MOV_VTM:
		return argsMemValue
	case OP_MOV_RTM:
		return argsMemRegs
	case OP_MUL, OP_DIV:
		return argsValue
	case OP_MUL_R, OP_DIV_R, OP_INC_R, OP_DEC_R:
		return argsReg
	case OP_MOV_VTMR:
		return argsMrValue
	case OP_MOV_RTMR:
		return argsMrReg
	case OP_MOV_MTM:
		return argsMemMem
	case OP_MOV_MTMR:
		return argsMrMem
	case OP_MOV_MRTR:
		return argsRegMr
	case OP_MOV_MRTM:
		return argsMemMr
	case OP_MOV_MRTMR:
		return argsMrMr
	case OP_INC_M, OP_DEC_M:
		return argsMem
	case OP_INC_MR, OP_DEC_MR:
		return argsMemReg
	case OP_JMP, OP_JEQ:
		return argsTarget
	}

	return nil
}

// Operands returns the number of operand words that follow the opcode.
func (op Op) Operands() int {
	return len(op.Args())
}

// Instruction is a decoded opcode and its operand words.
type Instruction struct {
	Ip   uint32   // Word index of the opcode.
	Op   Op       // Opcode.
	Args []uint32 // Operand words.
}

// Next returns the word index of the following instruction.
func (in Instruction) Next() uint32 {
	return in.Ip + 1 + uint32(len(in.Args))
}

// Words returns the encoded instruction.
func (in Instruction) Words() []uint32 {
	return append([]uint32{uint32(in.Op)}, in.Args...)
}

// Decode decodes the instruction at ip in the code stream.
func Decode(code []uint32, ip uint32) (in Instruction, err error) {
	if uint64(ip) >= uint64(len(code)) {
		err = ErrIpEmpty
		return
	}

	op := Op(code[ip])
	kinds := op.Args()
	if kinds == nil {
		err = ErrOpcode(code[ip])
		return
	}

	end := uint64(ip) + 1 + uint64(len(kinds))
	if end > uint64(len(code)) {
		err = ErrOperandMissing
		return
	}

	in = Instruction{
		Ip:   ip,
		Op:   op,
		Args: code[ip+1 : end : end],
	}

	return
}

// String returns the assembly language representation of the instruction.
func (in Instruction) String() string {
	var sb strings.Builder

	sb.WriteString(in.Op.String())
	for n, kind := range in.Op.Args() {
		if n >= len(in.Args) {
			break
		}
		sb.WriteByte(' ')
		sb.WriteString(formatArg(kind, in.Args[n]))
	}

	return sb.String()
}

// formatArg formats an operand word in assembler notation.
func formatArg(kind ArgKind, value uint32) string {
	switch kind {
	case ARG_REGISTER:
		return fmt.Sprintf("(%v)", RegisterName(value))
	case ARG_MEMORY:
		return fmt.Sprintf("[%d]", value)
	case ARG_MEMREG:
		return fmt.Sprintf("[(%v)]", RegisterName(value))
	default:
		return fmt.Sprintf("%d", value)
	}
}
