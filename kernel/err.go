package kernel

import (
	"errors"

	"github.com/ezrec/ukernel/translate"
)

var f = translate.From

var (
	ErrNoProcess   = errors.New(f("no runnable process"))
	ErrQuantumSize = errors.New(f("quantum size must be positive"))
)
