// Package mmap makes an input file addressable as one read-only byte slice.
//
// On Unix the file is memory mapped; elsewhere it is read into memory.
// Either way the slice must not be written to, and must not be used after
// Close.
package mmap

import (
	"fmt"
	"os"

	"github.com/xtxerr/chunkit/internal/errors"
)

// File is a read-only view of a whole file.
type File struct {
	path   string
	data   []byte
	mapped bool
}

// Open makes path addressable. An empty file yields an empty, unmapped view.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrOpen, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", errors.ErrOpen, path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", errors.ErrOpen, path)
	}

	size := fi.Size()
	if size == 0 {
		return &File{path: path}, nil
	}
	if int64(int(size)) != size {
		return nil, fmt.Errorf("%w: %s: size %d exceeds address space", errors.ErrMap, path, size)
	}

	data, mapped, err := mapFile(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrMap, path, err)
	}
	return &File{path: path, data: data, mapped: mapped}, nil
}

// Bytes returns the file content.
func (f *File) Bytes() []byte {
	return f.data
}

// Len returns the file size.
func (f *File) Len() int {
	return len(f.data)
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Mapped reports whether the content is memory mapped.
func (f *File) Mapped() bool {
	return f.mapped
}

// Close releases the view. It is safe to call more than once.
func (f *File) Close() error {
	data, mapped := f.data, f.mapped
	f.data, f.mapped = nil, false

	if !mapped || data == nil {
		return nil
	}
	if err := unmap(data); err != nil {
		return fmt.Errorf("%w: unmap %s: %w", errors.ErrMap, f.path, err)
	}
	return nil
}
