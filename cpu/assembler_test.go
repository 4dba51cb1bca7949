package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testProgram = `; count to twelve
start:
	mov (eax) <- 5        ; load
	mov 7 -> (ebx)
	add (eax) (ebx)
	cmp (eax) <- 12
	jeq .done
	jmp .start
done:	syscall
`

func TestAssembler_Parse(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(testProgram))
	assert.NoError(err)
	if err != nil {
		return
	}

	assert.Equal(map[string]int{"start": 0, "done": 16}, asm.Label)
	assert.Equal([]uint32{
		0x01, 0, 5,
		0x01, 1, 7,
		0x07, 0, 1,
		0x1b, 0, 12,
		0x1e, 16,
		0x1d, 0,
		0x00,
	}, prog.Binary())

	assert.Equal(7, len(prog.Opcodes))
	assert.Equal(3, prog.Opcodes[0].LineNo)
	assert.Equal("done", prog.Opcodes[4].LinkLabel)
	assert.Equal(9, prog.Opcodes[6].LineNo)
}

func TestAssembler_Instructions(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		line  string
		codes []uint32
	}{
		{"syscall", []uint32{0x00}},
		{"int", []uint32{0x00}},
		{"mov (eax) <- 5", []uint32{0x01, 0, 5}},
		{"mov (1) 5", []uint32{0x01, 1, 5}},
		{"mov (eax) <- (ecx)", []uint32{0x02, 0, 2}},
		{"mov (eax) <- [12]", []uint32{0x03, 0, 12}},
		{"mov [3] <- 9", []uint32{0x04, 3, 9}},
		{"mov (edx) -> [3]", []uint32{0x05, 3, 3}},
		{"mov [(esi)] <- 9", []uint32{0x0e, 4, 9}},
		{"mov [(esi)] <- (edi)", []uint32{0x0f, 4, 5}},
		{"mov [1] <- [2]", []uint32{0x10, 1, 2}},
		{"mov [(ebx)] <- [2]", []uint32{0x11, 1, 2}},
		{"mov (eax) <- [(ebx)]", []uint32{0x12, 0, 1}},
		{"mov [7] <- [(ebx)]", []uint32{0x13, 7, 1}},
		{"mov [(eax)] <- [(ebx)]", []uint32{0x14, 0, 1}},
		{"add (eax) 3", []uint32{0x06, 0, 3}},
		{"add (eax) <- (ebx)", []uint32{0x07, 0, 1}},
		{"sub (1) <- 0x10", []uint32{0x08, 1, 16}},
		{"sub (eax) (ebx)", []uint32{0x09, 0, 1}},
		{"cmp (ecx) 4", []uint32{0x1b, 2, 4}},
		{"cmp (ecx) (edx)", []uint32{0x1c, 2, 3}},
		{"mul 3", []uint32{0x0a, 3}},
		{"mul (ebx)", []uint32{0x0b, 1}},
		{"div 2", []uint32{0x0c, 2}},
		{"div (ecx)", []uint32{0x0d, 2}},
		{"inc (eax)", []uint32{0x15, 0}},
		{"inc [4]", []uint32{0x16, 4}},
		{"inc [(eax)]", []uint32{0x17, 0}},
		{"dec (eax)", []uint32{0x18, 0}},
		{"dec [4]", []uint32{0x19, 4}},
		{"dec [(eax)]", []uint32{0x1a, 0}},
		{"jmp 40", []uint32{0x1d, 40}},
		{"jeq 0x20", []uint32{0x1e, 32}},
		{"mov (eax) <- 'A'", []uint32{0x01, 0, 'A'}},
		{`mov (eax) <- '\n'`, []uint32{0x01, 0, '\n'}},
		{`mov (eax) <- '\s'`, []uint32{0x01, 0, ' '}},
		{"mov (eax) <- ~0", []uint32{0x01, 0, 0xffffffff}},
		{"mov (eax) <- -1", []uint32{0x01, 0, 0xffffffff}},
		{"mov (eax) <- $(3*4+1)", []uint32{0x01, 0, 13}},
		{"mov (eax) <- LINENO", []uint32{0x01, 0, 1}},
		{"mov (eax) <- REGISTER_COUNT", []uint32{0x01, 0, 6}},
	}

	for _, entry := range table {
		asm := &Assembler{}
		prog, err := asm.Parse(strings.NewReader(entry.line))
		if !assert.NoError(err, entry.line) {
			continue
		}
		assert.Equal(entry.codes, prog.Binary(), entry.line)
	}
}

func TestAssembler_Equate(t *testing.T) {
	assert := assert.New(t)

	text := `
.equ COUNT 10
.equ REG (ecx)
	mov REG <- COUNT
	mov (eax) <- $(COUNT*2)
	mov [0] <- BASE
`

	asm := &Assembler{}
	asm.Predefine("BASE", "0x100")
	prog, err := asm.Parse(strings.NewReader(text))
	assert.NoError(err)
	if err != nil {
		return
	}

	assert.Equal([]uint32{0x01, 2, 10, 0x01, 0, 20, 0x04, 0, 0x100}, prog.Binary())
	assert.Equal("10", asm.Equate["COUNT"])
}

func TestAssembler_Errors(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		text   string
		lineno int
		err    error
	}{
		{"mov (eax)", 1, ErrOpcodeValueMissing},
		{"mov (eax) <-", 1, ErrOpcodeValueMissing},
		{"mov (eax) <- 1 2", 1, ErrOpcodeExtraArgs},
		{"mov 5 <- (eax)", 1, ErrParamType},
		{"add [1] <- 2", 1, ErrParamType},
		{"inc 5", 1, ErrParamType},
		{"jmp (eax)", 1, ErrParamType},
		{"mov (eax) <- (9)", 1, ErrParseRegister("9")},
		{"mov (eax) <- [12", 1, ErrBraceUnmatched},
		{"mov (eax <- 1", 1, ErrParenUnmatched},
		{"mov (eax) <- [(eax]", 1, ErrParenUnmatched},
		{"mov (eax) <- zz", 1, ErrParamInvalid},
		{"jmp .", 1, ErrLabelInvalid},
		{"jmp", 1, ErrOpcodeValueMissing},
		{"jmp 1 2", 1, ErrOpcodeExtraArgs},
		{"syscall 1", 1, ErrOpcodeExtraArgs},
		{"frob (eax)", 1, ErrInstructionInvalid},
		{".equ X", 1, ErrEquateSyntax},
		{".equ X 1\n.equ X 2", 2, ErrEquateDuplicate},
		{"a:\na:", 2, ErrLabelDuplicate},
		{"syscall\n:", 2, ErrLabelInvalid},
		{"syscall\njmp .nowhere\nsyscall", 2, ErrLabelMissing("nowhere")},
		{"\n\nmov (eax) <- $(1+)", 3, nil},
	}

	for _, entry := range table {
		asm := &Assembler{}
		prog, err := asm.Parse(strings.NewReader(entry.text))
		assert.Nil(prog, entry.text)

		var syn *ErrSyntax
		if !assert.ErrorAs(err, &syn, entry.text) {
			continue
		}
		assert.Equal(entry.lineno, syn.LineNo, entry.text)
		if entry.err != nil {
			assert.ErrorIs(err, entry.err, entry.text)
		}
	}
}
