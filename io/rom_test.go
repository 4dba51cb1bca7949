package io

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
)

func TestRom_Codec(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	assert.NoError(WriteRom(&buf, []uint32{0x1, 0x11223344}))
	assert.Equal([]byte{1, 0, 0, 0, 0x44, 0x33, 0x22, 0x11}, buf.Bytes())

	words, err := ReadRom(&buf)
	assert.NoError(err)
	assert.Equal([]uint32{0x1, 0x11223344}, words)

	words, err = ReadRom(bytes.NewReader(nil))
	assert.NoError(err)
	assert.Empty(words)
}

func TestRom_Alignment(t *testing.T) {
	assert := assert.New(t)

	_, err := ReadRom(bytes.NewReader([]byte{1, 0, 0, 0, 2}))
	assert.ErrorIs(err, ErrRomAlignment)
}

func TestRom_Storage(t *testing.T) {
	assert := assert.New(t)

	ctx := context.Background()
	fs := afs.New()
	url := "mem://localhost/rom/hello.rom"

	code := []uint32{0x01, 0, 5, 0x00}
	assert.NoError(SaveRom(ctx, fs, url, code))

	words, err := LoadRom(ctx, fs, url)
	assert.NoError(err)
	assert.Equal(code, words)

	_, err = LoadRom(ctx, fs, "mem://localhost/rom/missing.rom")
	assert.Error(err)
}
