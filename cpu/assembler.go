// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":         "0",
	"REGISTER_COUNT": fmt.Sprintf("%d", REGISTER_COUNT),
}

// Assembler is a two pass assembler for the ukernel instruction set.
// The first pass emits code and records labels, the second links label
// references to absolute word indexes.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of jump labels to word indexes.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// Param is a parsed instruction operand.
type Param struct {
	Kind  ArgKind
	Value uint32
	Label string // Unresolved label for ARG_TARGET.
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}

	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}

	v64, err := strconv.ParseInt(word, 0, 34)
	if err != nil || v64 > 0xffffffff || v64 < -int64(0x80000000) {
		err = ErrParseNumber(word)
		return
	}

	value = uint32(v64)

	if invert {
		value = ^value
	}

	return
}

// registerOf returns the register index of a register name or number.
func (asm *Assembler) registerOf(word string) (reg uint32, err error) {
	n := slices.Index(registerNames[:], word)
	if n >= 0 {
		reg = uint32(n)
		return
	}

	value, err := strconv.ParseUint(word, 0, 32)
	if err != nil || value >= REGISTER_COUNT {
		err = ErrParseRegister(word)
		return
	}

	reg = uint32(value)
	return
}

// param parses an operand word.
//
//	5, 0x10, ~0     value
//	(eax), (1)      register
//	[12]            memory at address
//	[(ebx)]         memory at address held in register
//	.label          code target
func (asm *Assembler) param(word string) (p Param, err error) {
	switch {
	case strings.HasPrefix(word, "["):
		if !strings.HasSuffix(word, "]") || len(word) < 2 {
			err = ErrBraceUnmatched
			return
		}
		inner := word[1 : len(word)-1]
		if strings.HasPrefix(inner, "(") {
			if !strings.HasSuffix(inner, ")") || len(inner) < 2 {
				err = ErrParenUnmatched
				return
			}
			p.Kind = ARG_MEMREG
			p.Value, err = asm.registerOf(inner[1 : len(inner)-1])
			return
		}
		p.Kind = ARG_MEMORY
		p.Value, err = asm.valueOf(inner)
	case strings.HasPrefix(word, "("):
		if !strings.HasSuffix(word, ")") || len(word) < 2 {
			err = ErrParenUnmatched
			return
		}
		p.Kind = ARG_REGISTER
		p.Value, err = asm.registerOf(word[1 : len(word)-1])
	case strings.HasPrefix(word, "."):
		if len(word) < 2 {
			err = ErrLabelInvalid
			return
		}
		p.Kind = ARG_TARGET
		p.Label = word[1:]
	default:
		p.Kind = ARG_VALUE
		p.Value, err = asm.valueOf(word)
		if err != nil {
			err = errors.Join(ErrParamInvalid, err)
		}
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(int64(value32))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
)

// parseLine expands a single line into words, recording any labels.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "s":
				str = " "
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	// label: [instruction]
	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if len(label) == 0 {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		asm.Label[label] = asm.currentIp()
		words = words[1:]
	}

	return
}

// currentIp gets the current Ip
func (asm *Assembler) currentIp() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Ip + len(last.Codes)
}

// Parse parses an input stream into a Program containing opcodes.
// Any error aborts the assembly; no partial program is returned.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int, 16)
	asm.Opcode = asm.Opcode[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		ip, ok := asm.Label[label]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		op.Codes[len(op.Codes)-1] = uint32(ip)
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// movMap maps mov destination and source kinds to opcodes.
var movMap = map[[2]ArgKind]Op{
	{ARG_REGISTER, ARG_VALUE}:    OP_MOV_VTR,
	{ARG_REGISTER, ARG_REGISTER}: OP_MOV_RTR,
	{ARG_REGISTER, ARG_MEMORY}:   OP_MOV_MTR,
	{ARG_MEMORY, ARG_VALUE}:      OP_MOV_VTM,
	{ARG_MEMORY, ARG_REGISTER}:   OP_MOV_RTM,
	{ARG_MEMREG, ARG_VALUE}:      OP_MOV_VTMR,
	{ARG_MEMREG, ARG_REGISTER}:   OP_MOV_RTMR,
	{ARG_MEMORY, ARG_MEMORY}:     OP_MOV_MTM,
	{ARG_MEMREG, ARG_MEMORY}:     OP_MOV_MTMR,
	{ARG_REGISTER, ARG_MEMREG}:   OP_MOV_MRTR,
	{ARG_MEMORY, ARG_MEMREG}:     OP_MOV_MRTM,
	{ARG_MEMREG, ARG_MEMREG}:     OP_MOV_MRTMR,
}

// binaryMap maps two-operand arithmetic mnemonics to their value and register forms.
var binaryMap = map[string][2]Op{
	"add": {OP_ADD, OP_ADD_R},
	"sub": {OP_SUB, OP_SUB_R},
	"cmp": {OP_CMP_V, OP_CMP_R},
}

// unaryMap maps single operand mnemonics to their opcodes by operand kind.
var unaryMap = map[string]map[ArgKind]Op{
	"mul": {ARG_VALUE: OP_MUL, ARG_REGISTER: OP_MUL_R},
	"div": {ARG_VALUE: OP_DIV, ARG_REGISTER: OP_DIV_R},
	"inc": {ARG_REGISTER: OP_INC_R, ARG_MEMORY: OP_INC_M, ARG_MEMREG: OP_INC_MR},
	"dec": {ARG_REGISTER: OP_DEC_R, ARG_MEMORY: OP_DEC_M, ARG_MEMREG: OP_DEC_MR},
	"jmp": {ARG_TARGET: OP_JMP, ARG_VALUE: OP_JMP},
	"jeq": {ARG_TARGET: OP_JEQ, ARG_VALUE: OP_JEQ},
}

// operands splits the operand words of a two operand instruction into
// destination and source, honoring the '->' and '<-' direction arrows.
//
//	SRC -> DST
//	DST <- SRC
//	DST SRC
func operands(args []string) (dst, src string, err error) {
	arrow := slices.IndexFunc(args, func(word string) bool { return word == "->" || word == "<-" })

	switch {
	case arrow < 0 && len(args) == 2:
		dst, src = args[0], args[1]
	case arrow == 1 && len(args) == 3 && args[1] == "->":
		src, dst = args[0], args[2]
	case arrow == 1 && len(args) == 3 && args[1] == "<-":
		dst, src = args[0], args[2]
	case len(args) < 2 || (arrow >= 0 && len(args) < 3):
		err = ErrOpcodeValueMissing
	default:
		err = ErrOpcodeExtraArgs
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []uint32
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(codes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Ip: asm.currentIp(), Words: initial_words, Codes: codes, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	mnemonic := words[0]
	args := words[1:]

	emit := func(op Op, params ...Param) {
		codes = append(codes, uint32(op))
		for _, p := range params {
			codes = append(codes, p.Value)
			if p.Kind == ARG_TARGET {
				label = p.Label
			}
		}
	}

	switch mnemonic {
	case "int", "syscall":
		if len(args) > 0 {
			err = ErrOpcodeExtraArgs
			return
		}
		emit(OP_SYSCALL)
	case "mov", "add", "sub", "cmp":
		var dst_word, src_word string
		dst_word, src_word, err = operands(args)
		if err != nil {
			return
		}
		var dst, src Param
		if dst, err = asm.param(dst_word); err != nil {
			return
		}
		if src, err = asm.param(src_word); err != nil {
			return
		}
		var op Op
		var ok bool
		if mnemonic == "mov" {
			op, ok = movMap[[2]ArgKind{dst.Kind, src.Kind}]
		} else if dst.Kind == ARG_REGISTER {
			forms := binaryMap[mnemonic]
			switch src.Kind {
			case ARG_VALUE:
				op, ok = forms[0], true
			case ARG_REGISTER:
				op, ok = forms[1], true
			}
		}
		if !ok {
			err = ErrParamType
			return
		}
		emit(op, dst, src)
	case "mul", "div", "inc", "dec", "jmp", "jeq":
		if len(args) < 1 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		var p Param
		if p, err = asm.param(args[0]); err != nil {
			return
		}
		op, ok := unaryMap[mnemonic][p.Kind]
		if !ok {
			err = ErrParamType
			return
		}
		emit(op, p)
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
