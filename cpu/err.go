package cpu

import (
	"errors"

	"github.com/ezrec/ukernel/translate"
)

var f = translate.From

var (
	// Execution errors
	ErrIpEmpty         = errors.New(f("ip past end of code"))
	ErrOperandMissing  = errors.New(f("operand missing"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrHeapBounds      = errors.New(f("heap address out of range"))
	ErrDivideByZero    = errors.New(f("divide by zero"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelInvalid       = errors.New(f("label invalid"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrParamInvalid       = errors.New(f("invalid parameter"))
	ErrParamType          = errors.New(f("invalid parameter type"))
	ErrBraceUnmatched     = errors.New(f("unmatched square brace in memory parameter"))
	ErrParenUnmatched     = errors.New(f("unmatched parenthesis in register notation"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("unresolved label %v", string(el))
}

// ErrOpcode is an instruction word that does not decode to a known opcode.
type ErrOpcode uint32

func (eo ErrOpcode) Error() string {
	return f("invalid instruction 0x%x", uint32(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrFault locates an execution error within a process.
type ErrFault struct {
	Pid int
	Ip  uint32
	Err error
}

func (err *ErrFault) Error() string {
	return f("pid %v ip 0x%04x %v", err.Pid, err.Ip, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseRegister string

func (err ErrParseRegister) Error() string {
	return f("'%v' is not a register", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
