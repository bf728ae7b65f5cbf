package spec

import (
	"fmt"
	"io/fs"
	"os"
	"path"
)

// Input is one specification source.
type Input interface {
	Name() string
	ReadAll() ([]byte, error)
}

type fileInput string

// File returns an Input reading the file at p.
func File(p string) Input { return fileInput(p) }

func (f fileInput) Name() string { return string(f) }

func (f fileInput) ReadAll() ([]byte, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("reading specification %s: %w", string(f), err)
	}
	return data, nil
}

type bytesInput struct {
	name string
	data []byte
}

// Bytes returns an Input over an in-memory document.
func Bytes(name string, data []byte) Input { return bytesInput{name: name, data: data} }

func (b bytesInput) Name() string { return b.name }

func (b bytesInput) ReadAll() ([]byte, error) { return b.data, nil }

type fsInput struct {
	fsys fs.FS
	name string
}

func (f fsInput) Name() string { return f.name }

func (f fsInput) ReadAll() ([]byte, error) {
	data, err := fs.ReadFile(f.fsys, f.name)
	if err != nil {
		return nil, fmt.Errorf("reading specification %s: %w", f.name, err)
	}
	return data, nil
}

// Glob returns one Input per file in fsys matching pattern, in lexical order.
func Glob(fsys fs.FS, pattern string) ([]Input, error) {
	names, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("matching %s: %w", pattern, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no specification files match %s", pattern)
	}
	out := make([]Input, len(names))
	for i, n := range names {
		out[i] = fsInput{fsys: fsys, name: path.Clean(n)}
	}
	return out, nil
}
