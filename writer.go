package nlcodec

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNilIO indicates that NewReader/NewWriter was called with a nil io.Reader/io.Writer.
	ErrNilIO = errors.New("nlcodec: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrTooLarge indicates a value whose aligned size exceeds MaxNlLength.
	ErrTooLarge = errors.New("nlcodec: message exceeds maximum netlink length")
)

// Writer writes aligned netlink values to a stream, one Write call per value,
// which keeps message boundaries intact on datagram sockets.
// It tracks the first error; after an error all writes become no-ops.
type Writer struct {
	w     io.Writer
	count int64 // total bytes written
	err   error // first error encountered. Subsequent writes become no-ops.
}

// NewWriter creates a new Writer.
func NewWriter(w io.Writer) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}
	return &Writer{w: w}, nil
}

// Write implements the io.Writer interface.
func (w *Writer) Write(buf []byte) (int, error) {
	if len(buf) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(buf)
	w.count += int64(n)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	w.setError(err)
	return n, w.err
}

// WriteNl serializes v with its trailing padding and writes it in one call.
// A nil interface is ignored. A typed nil pointer, such as (*U32)(nil), is a
// caller bug and panics like any other method call on it.
func (w *Writer) WriteNl(v Serializer) {
	if v == nil || w.err != nil {
		return
	}
	size := ASize(v)
	if size > MaxNlLength {
		w.setError(fmt.Errorf("%w: %d > %d", ErrTooLarge, size, MaxNlLength))
		return
	}

	buf := getBuf()
	mem := &BytesWriter{B: (*buf)[:size]}
	if err := EncodeTo(v, mem); err != nil {
		// the error keeps a reference to mem, so the buffer is not recycled.
		w.setError(err)
		return
	}
	_, _ = w.Write(mem.Bytes())
	putBuf(buf)
}

func (w *Writer) Count() int64 { return w.count }
func (w *Writer) Err() error   { return w.err }

// setError records the first non-nil error.
// This preserves the root cause of a failure chain instead of a later,
// less relevant error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Result returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	return w.count, w.err
}
