package emulator

import (
	"github.com/ezrec/ukernel/translate"
)

var f = translate.From

// ErrRuntime indicates the source location of a runtime error.
type ErrRuntime struct {
	Pid    int
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("pid %d line %d %v", err.Pid, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
