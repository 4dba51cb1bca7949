package io

import (
	"io"
	"strconv"
	"unicode/utf8"
)

// Console is the text output device of the machine.
// Every write is terminated by a newline.
type Console struct {
	Output io.Writer

	Written int // Bytes written to Output.
}

// write sends buf to the output, counting the bytes written.
func (con *Console) write(buf []byte) (err error) {
	if con.Output == nil {
		err = ErrConsoleClosed
		return
	}

	n, err := con.Output.Write(buf)
	con.Written += n

	return
}

// WriteText writes each word as a character code, followed by a newline.
// Words that are not valid characters are written as U+FFFD.
func (con *Console) WriteText(words []uint32) (err error) {
	buf := make([]byte, 0, len(words)+1)
	for _, word := range words {
		r := rune(word)
		if word > utf8.MaxRune {
			r = utf8.RuneError
		}
		buf = utf8.AppendRune(buf, r)
	}
	buf = append(buf, '\n')

	return con.write(buf)
}

// WriteNumber writes the decimal value of word, followed by a newline.
func (con *Console) WriteNumber(word uint32) (err error) {
	buf := strconv.AppendUint(nil, uint64(word), 10)
	buf = append(buf, '\n')

	return con.write(buf)
}
