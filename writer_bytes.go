package nlcodec

import "io"

// BytesWriter is the mutable buffer handed to Serialize. It writes into a
// pre-allocated byte slice and never grows it. If a write exceeds the available
// space it writes as much as it can and returns io.ErrShortWrite.
type BytesWriter struct {
	B []byte // destination slice
	N int    // current write position
}

// NewBytesWriter creates a new BytesWriter over the full capacity of p.
func NewBytesWriter(p []byte) *BytesWriter {
	return &BytesWriter{B: p[:cap(p)]}
}

// MakeBytesWriter allocates a zeroed buffer of exactly n bytes.
func MakeBytesWriter(n int) *BytesWriter {
	return &BytesWriter{B: make([]byte, n)}
}

// Write implements the io.Writer interface.
func (w *BytesWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if w.N >= len(w.B) {
		return 0, io.ErrShortWrite
	}
	n := copy(w.B[w.N:], p)
	w.N += n
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// WriteZeros writes n zero bytes, used for alignment padding.
func (w *BytesWriter) WriteZeros(n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	if w.N >= len(w.B) {
		return 0, io.ErrShortWrite
	}
	written := 0
	for written < n {
		chunk := min(n-written, BUFFER_SIZE)
		c := copy(w.B[w.N:], empty[:chunk])
		w.N += c
		written += c
		if c < chunk {
			return written, io.ErrShortWrite
		}
	}
	return written, nil
}

// WriteString implements the io.StringWriter interface for efficiency.
func (w *BytesWriter) WriteString(s string) (int, error) {
	if len(s) == 0 {
		return 0, nil
	}
	if w.N >= len(w.B) {
		return 0, io.ErrShortWrite
	}
	n := copy(w.B[w.N:], s)
	w.N += n
	if n < len(s) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// WriteByte implements the io.ByteWriter interface for efficiency.
func (w *BytesWriter) WriteByte(c byte) error {
	if w.N >= len(w.B) {
		return io.ErrShortWrite
	}
	w.B[w.N] = c
	w.N++
	return nil
}

// Next returns the next n writable bytes and advances the cursor past them.
// It returns nil if fewer than n bytes are available.
func (w *BytesWriter) Next(n int) []byte {
	if n < 0 || w.Available() < n {
		return nil
	}
	p := w.B[w.N : w.N+n : w.N+n]
	w.N += n
	return p
}

// Split reserves the next n bytes as an independent, exactly sized writer and
// advances the cursor past them. Composite types use it to hand each field a
// buffer of the field's own size.
func (w *BytesWriter) Split(n int) (*BytesWriter, error) {
	if n < 0 || w.Available() < n {
		return nil, io.ErrShortWrite
	}
	return &BytesWriter{B: w.Next(n)}, nil
}

// Reset allows the underlying byte slice to be reused.
func (w *BytesWriter) Reset() { w.N = 0 }

// Len returns the number of bytes written.
func (w *BytesWriter) Len() int { return w.N }

// Size returns the capacity of the underlying byte slice.
func (w *BytesWriter) Size() int { return len(w.B) }

// Available returns the number of bytes available for writing.
func (w *BytesWriter) Available() int { return len(w.B) - w.N }

// Bytes returns a slice view of the written data.
func (w *BytesWriter) Bytes() []byte { return w.B[:w.N] }
