package io

import (
	"errors"

	"github.com/ezrec/ukernel/translate"
)

var f = translate.From

var (
	// Console errors
	ErrConsoleClosed = errors.New(f("console has no output"))

	// Image errors
	ErrRomAlignment = errors.New(f("image length is not a multiple of the word size"))
)
