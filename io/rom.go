package io

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

// ROM_WORD_SIZE is the byte size of an image word.
const ROM_WORD_SIZE = 4

// ReadRom decodes a program image: a headerless sequence of little-endian
// 32-bit words.
func ReadRom(input io.Reader) (words []uint32, err error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return
	}

	return decodeRom(data)
}

func decodeRom(data []byte) (words []uint32, err error) {
	if len(data)%ROM_WORD_SIZE != 0 {
		err = ErrRomAlignment
		return
	}

	words = make([]uint32, len(data)/ROM_WORD_SIZE)
	for n := range words {
		words[n] = binary.LittleEndian.Uint32(data[n*ROM_WORD_SIZE:])
	}

	return
}

// WriteRom encodes words as a program image.
func WriteRom(output io.Writer, words []uint32) (err error) {
	data := make([]byte, 0, len(words)*ROM_WORD_SIZE)
	for _, word := range words {
		data = binary.LittleEndian.AppendUint32(data, word)
	}

	_, err = output.Write(data)

	return
}

// LoadRom reads a program image from any storage URL the file system
// service supports.
func LoadRom(ctx context.Context, fs afs.Service, url string) (words []uint32, err error) {
	data, err := fs.DownloadWithURL(ctx, url)
	if err != nil {
		return
	}

	return decodeRom(data)
}

// SaveRom writes a program image to a storage URL.
func SaveRom(ctx context.Context, fs afs.Service, url string, words []uint32) (err error) {
	var buf bytes.Buffer

	err = WriteRom(&buf, words)
	if err != nil {
		return
	}

	return fs.Upload(ctx, url, file.DefaultFileOsMode, &buf)
}
