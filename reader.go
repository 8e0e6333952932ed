package nlcodec

import (
	"io"
)

// Reader reads aligned netlink values from a stream.
// It tracks the first error. Subsequent reads become no-ops.
type Reader struct {
	r     io.Reader
	count int64 // total bytes read
	err   error // first error encountered.
}

// NewReader creates a new Reader.
func NewReader(r io.Reader) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	return &Reader{r: r}, nil
}

// Read implements the io.Reader interface.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.r.Read(p)
	r.count += int64(n)
	r.setError(err)
	return n, r.err
}

func (r *Reader) Count() int64 { return r.count }
func (r *Reader) Err() error   { return r.err }
func (r *Reader) IsEOF() bool  { return r.err == io.EOF }

// setError records the first non-nil error.
func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Result returns the total bytes read and the final error state.
func (r *Reader) Result() (int64, error) {
	return r.count, r.err
}

// ReadBytes reads exactly n bytes into a new slice.
// A stream that ends before the first byte latches io.EOF;
// one that ends part way latches io.ErrUnexpectedEOF.
func (r *Reader) ReadBytes(n int) []byte {
	if r.err != nil || n < 0 {
		return nil
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf
	}
	read, err := io.ReadFull(r.r, buf)
	r.count += int64(read)
	if err != nil {
		r.setError(err)
		return nil
	}
	return buf
}

// ReadNl reads exactly size bytes, decodes them into v and consumes the
// alignment padding that follows. The decoded value owns its bytes, so views
// produced by v stay valid.
func (r *Reader) ReadNl(v Deserializer, size int) {
	buf := r.ReadBytes(size)
	if r.err != nil {
		return
	}
	if err := v.Deserialize(buf); err != nil {
		r.setError(err)
		return
	}
	r.Align()
}

// Align consumes zero padding until the stream offset is a multiple of AlignTo.
func (r *Reader) Align() {
	pad := Roundup(r.count, AlignTo) - r.count
	if pad == 0 || r.err != nil {
		return
	}
	b := r.ReadBytes(int(pad))
	if r.err != nil {
		if r.err == io.EOF {
			r.err = io.ErrUnexpectedEOF
		}
		return
	}
	r.setError(CheckBufferNotZeros(b))
}
