// Package chunk partitions a byte buffer of newline-terminated records into
// contiguous, line-aligned ranges that can be processed independently.
//
// The newline scan does not understand quoting or escaping: a '\n' inside a
// record would be taken as a record boundary. The supported record grammar
// never contains one.
package chunk

import (
	"bytes"
	"fmt"

	"github.com/xtxerr/chunkit/internal/errors"
)

// Chunk is the half-open byte range [Start, End) of a buffer.
type Chunk struct {
	Start int
	End   int
}

// Len returns the number of bytes in the chunk.
func (c Chunk) Len() int {
	return c.End - c.Start
}

// Bytes returns the chunk's bytes within buf.
func (c Chunk) Bytes(buf []byte) []byte {
	return buf[c.Start:c.End:c.End]
}

// String implements fmt.Stringer.
func (c Chunk) String() string {
	return fmt.Sprintf("[%d,%d)", c.Start, c.End)
}

// Split computes up to target line-aligned chunks covering all of buf.
//
// Each chunk ends one byte after a '\n', except the last one which ends at
// len(buf). Fewer chunks than requested are returned when the buffer has
// fewer lines than target or when a tentative boundary has no newline after
// it. An empty buffer yields no chunks; target < 1 is treated as 1.
func Split(buf []byte, target int) []Chunk {
	eof := len(buf)
	if eof == 0 {
		return nil
	}
	if target < 1 {
		target = 1
	}

	size := eof / target
	chunks := make([]Chunk, 0, target)

	offset := 0
	for i := 0; i < target && offset < eof; i++ {
		end := offset + size
		if end > eof {
			end = eof
		}
		if end == offset && size > 0 {
			break
		}

		lf := bytes.IndexByte(buf[end:], '\n')
		if lf < 0 {
			chunks = append(chunks, Chunk{Start: offset, End: eof})
			offset = eof
			break
		}

		end += lf + 1
		chunks = append(chunks, Chunk{Start: offset, End: end})
		offset = end
	}

	// Out of iterations before eof: the tail belongs to the last chunk.
	if offset < eof {
		chunks[len(chunks)-1].End = eof
	}

	return chunks
}

// Validate checks that chunks are a line-aligned partition of buf.
func Validate(chunks []Chunk, buf []byte) error {
	eof := len(buf)
	if eof == 0 {
		if len(chunks) != 0 {
			return fmt.Errorf("%d chunks for an empty buffer: %w", len(chunks), errors.ErrInvalidChunk)
		}
		return nil
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks for %d bytes: %w", eof, errors.ErrInvalidChunk)
	}

	next := 0
	for i, c := range chunks {
		if c.Start != next {
			return fmt.Errorf("chunk %d %s: expected start %d: %w", i, c, next, errors.ErrInvalidChunk)
		}
		if c.End <= c.Start {
			return fmt.Errorf("chunk %d %s: empty: %w", i, c, errors.ErrInvalidChunk)
		}
		if c.End > eof {
			return fmt.Errorf("chunk %d %s: past eof %d: %w", i, c, eof, errors.ErrInvalidChunk)
		}
		if i < len(chunks)-1 && buf[c.End-1] != '\n' {
			return fmt.Errorf("chunk %d %s: not line-aligned: %w", i, c, errors.ErrInvalidChunk)
		}
		next = c.End
	}

	if next != eof {
		return fmt.Errorf("chunks end at %d, buffer at %d: %w", next, eof, errors.ErrInvalidChunk)
	}
	return nil
}
