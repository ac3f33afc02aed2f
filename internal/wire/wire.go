// Package wire provides protobuf message framing for chunkit diagnostics.
//
// Messages are length-delimited using protobuf's standard varint encoding,
// so several messages can be streamed into one file and read back in order.
// Records are carried as google.protobuf.Struct, which needs no generated code.
package wire

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/xtxerr/chunkit/config"
	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/types/known/structpb"
)

// Reader reads length-delimited Struct messages from an io.Reader.
// It is safe for concurrent use.
type Reader struct {
	r  *bufio.Reader
	mu sync.Mutex
}

// NewReader creates a Reader wrapping the given io.Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Read reads and unmarshals the next message.
// It returns io.EOF when the stream ends cleanly between messages.
func (r *Reader) Read() (*structpb.Struct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg := &structpb.Struct{}
	opts := protodelim.UnmarshalOptions{
		MaxSize: config.DefaultMaxMessageSize,
	}
	if err := opts.UnmarshalFrom(r.r, msg); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read message: %w", err)
	}
	return msg, nil
}

// Writer writes length-delimited Struct messages to an io.Writer.
// It is safe for concurrent use.
type Writer struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriter creates a Writer wrapping the given io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write marshals and writes a message with length prefix.
func (w *Writer) Write(msg *structpb.Struct) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := protodelim.MarshalTo(w.w, msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// WriteMap converts m with structpb.NewStruct and writes it.
func (w *Writer) WriteMap(m map[string]any) error {
	msg, err := structpb.NewStruct(m)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return w.Write(msg)
}
