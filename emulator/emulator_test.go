package emulator

import (
	"bytes"
	"context"
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/ukernel/config"
	"github.com/ezrec/ukernel/cpu"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil)

	assert.False(emu.Verbose)
	assert.NotNil(emu.Kernel)
	assert.Same(&emu.Console, emu.Kernel.Console)
	assert.Equal(256, emu.Config.HeapSize)
	assert.Equal(100000, emu.Kernel.QuantumSize)
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	cfg := config.Default()
	cfg.HeapSize = 64
	emu := NewEmulator(cfg)

	defines := maps.Collect(emu.Defines())
	assert.Equal(map[string]string{
		"HEAP_SIZE":  "64",
		"SYS_WRITE":  "0",
		"SYS_NUMBER": "1",
	}, defines)
}

func doRun(emu *Emulator, programs [][]string, t *testing.T) (output string, err error) {
	assert := assert.New(t)

	for _, program := range programs {
		prog, err := emu.Assemble(strings.NewReader(strings.Join(program, "\n")))
		if !assert.NoError(err) {
			t.FailNow()
		}
		p := emu.Boot(prog)
		assert.Same(prog, emu.Program(p.Pid))
	}

	out := &bytes.Buffer{}
	emu.Console.Output = out

	_, err = emu.Run(context.Background())

	output = out.String()
	return
}

func TestEmulatorHello(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".equ LEN 5",
		"	mov [0] <- 'h'",
		"	mov [1] <- 'e'",
		"	mov [2] <- 'l'",
		"	mov [3] <- 'l'",
		"	mov [4] <- 'o'",
		"	mov (eax) <- SYS_WRITE",
		"	mov (ebx) <- 0",
		"	mov (ecx) <- LEN",
		"	syscall",
		"	mov (eax) <- SYS_NUMBER",
		"	mov (ebx) <- $(LEN*3)",
		"	int",
	}

	output, err := doRun(NewEmulator(nil), [][]string{program}, t)
	assert.NoError(err)
	assert.Equal("hello\n15\n", output)
}

func TestEmulatorLabel(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"	mov (esi) <- 3",
		"loop:",
		"	mov (eax) <- SYS_NUMBER",
		"	mov (ebx) <- (esi)",
		"	syscall",
		"	dec (esi)",
		"	cmp (esi) 0",
		"	jeq .end",
		"	jmp .loop",
		"end:",
	}

	output, err := doRun(NewEmulator(nil), [][]string{program}, t)
	assert.NoError(err)
	assert.Equal("3\n2\n1\n", output)
}

func TestEmulatorArithmetic(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"	mov (eax) <- 0x10000",
		"	mul 0x10000 ; edx:eax = 1:0",
		"	mov (eax) -> [0]",
		"	mov (edx) -> [1]",
		"	mov (eax) <- 7",
		"	mov (edx) <- 0",
		"	div 2",
		"	mov (ebx) <- (eax)",
		"	mov (eax) <- SYS_NUMBER",
		"	syscall",
		"	mov (ebx) <- (edx)",
		"	syscall",
		"	mov (ebx) <- [1]",
		"	syscall",
	}

	output, err := doRun(NewEmulator(nil), [][]string{program}, t)
	assert.NoError(err)
	assert.Equal("3\n1\n1\n", output)
}

func TestEmulatorInterleave(t *testing.T) {
	assert := assert.New(t)

	first := []string{
		"	mov (eax) <- SYS_NUMBER",
		"	mov (ebx) <- 1",
		"	syscall",
		"	mov (ebx) <- 3",
		"	syscall",
	}
	second := []string{
		"	mov (eax) <- SYS_NUMBER",
		"	mov (ebx) <- 2",
		"	syscall",
	}

	output, err := doRun(NewEmulator(nil), [][]string{first, second}, t)
	assert.NoError(err)
	assert.Equal("1\n2\n3\n", output)
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"	mov (eax) <- 1",
		"	div 0",
		"	syscall",
	}

	output, err := doRun(NewEmulator(nil), [][]string{program}, t)
	assert.Empty(output)
	assert.ErrorIs(err, cpu.ErrDivideByZero)

	var rte *ErrRuntime
	if assert.ErrorAs(err, &rte) {
		assert.Equal(1, rte.Pid)
		assert.Equal(2, rte.LineNo)
	}
}

func TestEmulatorImage(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil)
	p := emu.BootImage([]uint32{0x01, 0, 1, 0x20})
	assert.Nil(emu.Program(p.Pid))
	assert.Equal(256, len(p.Heap))

	_, err := emu.Run(context.Background())
	assert.ErrorIs(err, cpu.ErrOpcode(0x20))

	var rte *ErrRuntime
	if assert.ErrorAs(err, &rte) {
		assert.Equal(0, rte.LineNo)
	}
}
