// Package config loads the boot configuration of the machine.
package config

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/ezrec/ukernel/kernel"
	"github.com/ezrec/ukernel/translate"
)

var f = translate.From

var (
	ErrHeapSize = errors.New(f("heap_size must be positive"))
	ErrQuantum  = errors.New(f("quantum must be positive"))
)

// Config is the boot configuration. Zero values are replaced by defaults
// only by Default; a loaded file overrides them field by field.
type Config struct {
	HeapSize int    `yaml:"heap_size"` // Heap words of the boot process.
	User     uint32 `yaml:"user"`      // User identifier of the boot process.
	Quantum  int    `yaml:"quantum"`   // Instruction steps per quantum.
	Verbose  bool   `yaml:"verbose"`   // Enable verbose logging.
	Trace    string `yaml:"trace"`     // Span output file; empty disables tracing.
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		HeapSize: kernel.DEFAULT_HEAP_SIZE,
		Quantum:  kernel.DEFAULT_QUANTUM,
	}
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (cfg *Config, err error) {
	cfg = Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err = dec.Decode(cfg)
	if errors.Is(err, io.EOF) {
		// Empty document.
		err = nil
	}
	if err != nil {
		cfg = nil
		return
	}

	err = cfg.Validate()
	if err != nil {
		cfg = nil
	}

	return
}

// Load reads a configuration from any storage URL the file system service
// supports.
func Load(ctx context.Context, fs afs.Service, url string) (cfg *Config, err error) {
	data, err := fs.DownloadWithURL(ctx, url)
	if err != nil {
		return
	}

	return Parse(data)
}

// Validate checks the configuration for values the kernel cannot boot with.
func (cfg *Config) Validate() (err error) {
	if cfg.HeapSize <= 0 {
		err = ErrHeapSize
		return
	}

	if cfg.Quantum <= 0 {
		err = ErrQuantum
		return
	}

	return
}

// Marshal encodes the configuration as YAML.
func (cfg *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(cfg)
}
