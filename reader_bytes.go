package nlcodec

import (
	"fmt"
	"io"
)

// BytesReader walks an immutable byte slice. Composite decoders use it to cut
// their input into per-field slices which are then handed to Deserialize.
type BytesReader struct {
	B []byte // source slice
	N int    // current read position
}

// NewBytesReader creates a new BytesReader.
func NewBytesReader(b []byte) *BytesReader {
	return &BytesReader{B: b}
}

// Read implements the [io.Reader] interface.
func (r *BytesReader) Read(p []byte) (int, error) {
	if r.N >= len(r.B) {
		return 0, io.EOF
	}
	n := copy(p, r.B[r.N:])
	r.N += n
	return n, nil
}

// ReadByte implements the [io.ByteReader] interface.
func (r *BytesReader) ReadByte() (byte, error) {
	if r.N >= len(r.B) {
		return 0, io.EOF
	}
	b := r.B[r.N]
	r.N++
	return b, nil
}

// Next returns a view of the next n bytes and advances past them.
// The view aliases the source slice. A negative n or one past the end of the
// slice returns ErrUnexpectedEOB and consumes nothing.
func (r *BytesReader) Next(n int) ([]byte, error) {
	if n < 0 || r.Available() < n {
		return nil, fmt.Errorf("%w: want %d bytes, have %d", ErrUnexpectedEOB, n, r.Available())
	}
	b := r.B[r.N : r.N+n : r.N+n]
	r.N += n
	return b, nil
}

// Skip advances past n bytes, clamping at the end of the slice.
func (r *BytesReader) Skip(n int) int {
	n = min(n, r.Available())
	if n > 0 {
		r.N += n
	}
	return max(n, 0)
}

// Rest returns a view of every unread byte and consumes it.
func (r *BytesReader) Rest() []byte {
	b := r.B[min(r.N, len(r.B)):]
	r.N = len(r.B)
	return b
}

// Reset allows the underlying byte slice to be reused.
func (r *BytesReader) Reset() { r.N = 0 }

// Len returns the number of bytes read.
func (r *BytesReader) Len() int { return r.N }

// Size returns the size of the underlying byte slice.
func (r *BytesReader) Size() int { return len(r.B) }

// Available returns the number of bytes available for reading.
func (r *BytesReader) Available() int {
	length := len(r.B) - r.N
	if length <= 0 {
		return 0
	}
	return length
}
