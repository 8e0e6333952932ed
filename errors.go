package nlcodec

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedEOB indicates that a buffer is shorter than the exact size of the value
	// being serialized or the fixed size of the value being deserialized.
	ErrUnexpectedEOB = errors.New("nlcodec: unexpected end of buffer")

	// ErrBufferNotFilled indicates that a buffer handed to Serialize is longer than the value's size.
	// This is a sizing bug in the caller, not malformed input.
	ErrBufferNotFilled = errors.New("nlcodec: buffer was not completely filled")

	// ErrBufferNotParsed indicates that bytes were left over after decoding a fixed-size value.
	ErrBufferNotParsed = errors.New("nlcodec: buffer was not completely parsed")

	// ErrIO indicates that the byte-level write into a buffer failed.
	ErrIO = errors.New("nlcodec: write failed")

	// ErrMissingNull indicates a null-terminated string whose buffer does not end in a zero byte.
	ErrMissingNull = errors.New("nlcodec: missing null terminator")

	// ErrInvalidUTF8 indicates that the bytes of a string are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("nlcodec: invalid utf8 string")

	// ErrUseSlice is returned by Deserialize on types that can only be decoded as a view.
	// Call DeserializeFromSlice instead.
	ErrUseSlice = errors.New("nlcodec: owned decoding unsupported, use DeserializeFromSlice")

	// ErrBitOutOfRange indicates a group bit position outside 1..32.
	ErrBitOutOfRange = errors.New("nlcodec: bit position out of range")
)

// SerError is a serialization failure. It hands the buffer back to the caller
// so the allocation can be inspected or reused for a retry.
type SerError struct {
	Err error
	Buf *BytesWriter
}

func (e *SerError) Error() string {
	if e.Buf == nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s (buffer %d/%d)", e.Err, e.Buf.Len(), e.Buf.Size())
}

func (e *SerError) Unwrap() error { return e.Err }

// serErr wraps err together with the buffer that failed to receive the write.
func serErr(err error, mem *BytesWriter) (*BytesWriter, error) {
	return mem, &SerError{Err: err, Buf: mem}
}

// ioErr wraps a low-level write failure as ErrIO, keeping the cause reachable by errors.Is.
func ioErr(cause error, mem *BytesWriter) (*BytesWriter, error) {
	return serErr(fmt.Errorf("%w: %w", ErrIO, cause), mem)
}

// CheckSize verifies that mem has exactly size bytes left to write. Serialize
// implementations call it first; the error is a *SerError carrying mem.
func CheckSize(mem *BytesWriter, size int) error {
	switch avail := mem.Available(); {
	case avail < size:
		return &SerError{Err: fmt.Errorf("%w: need %d bytes, have %d", ErrUnexpectedEOB, size, avail), Buf: mem}
	case avail > size:
		return &SerError{Err: fmt.Errorf("%w: need %d bytes, have %d", ErrBufferNotFilled, size, avail), Buf: mem}
	}
	return nil
}

// CheckLen verifies that mem is exactly size bytes long, the precondition of
// decoding a fixed-size value.
func CheckLen(mem []byte, size int) error {
	switch {
	case len(mem) < size:
		return fmt.Errorf("%w: need %d bytes, have %d", ErrUnexpectedEOB, size, len(mem))
	case len(mem) > size:
		return fmt.Errorf("%w: %d trailing bytes", ErrBufferNotParsed, len(mem)-size)
	}
	return nil
}
