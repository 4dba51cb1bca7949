package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and generated words.
type Opcode struct {
	LineNo    int
	Ip        int
	Words     []string
	Codes     []uint32
	LinkLabel string // Label linked into the last code word.
}

// Program is an assembled listing.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug locates the opcode covering the word at ip.
func (prog *Program) Debug(ip uint32) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if uint64(ip) >= uint64(op.Ip) && uint64(ip) < uint64(op.Ip)+uint64(len(op.Codes)) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(ip) - op.Ip,
			}
			break
		}
	}

	return
}

// LineNo returns the source line of the word at ip, or 0 if unknown.
func (prog *Program) LineNo(ip uint32) int {
	dbg := prog.Debug(ip)
	if dbg.Opcode == nil {
		return 0
	}
	return dbg.LineNo
}

// Binary returns the flat instruction word stream.
func (prog *Program) Binary() (bins []uint32) {
	for _, code := range prog.Codes() {
		bins = append(bins, code)
	}

	return
}

// Codes iterates over every word of the program with its word index.
func (prog *Program) Codes() iter.Seq2[uint32, uint32] {
	return func(yield func(ip uint32, code uint32) bool) {
		for _, op := range prog.Opcodes {
			ip := uint32(op.Ip)
			for n, code := range op.Codes {
				if !yield(ip+uint32(n), code) {
					return
				}
			}
		}
	}
}

// Disassemble iterates over the decoded instructions of a word stream.
// Iteration stops at the first word that does not decode, yielding the error.
func Disassemble(code []uint32) iter.Seq2[Instruction, error] {
	return func(yield func(in Instruction, err error) bool) {
		var ip uint32
		for uint64(ip) < uint64(len(code)) {
			in, err := Decode(code, ip)
			if !yield(in, err) || err != nil {
				return
			}
			ip = in.Next()
		}
	}
}
