package nlcodec

import (
	"fmt"
	"strings"
	"unicode/utf8"
	"unsafe"
)

// Str is a null-terminated string decoded as a view into its source buffer.
//
// A Str returned by DeserializeFromSlice shares memory with that buffer and
// must not be used after the buffer is modified or reused. Convert to String,
// or call strings.Clone, to keep it longer.
type Str string

// String is an owned null-terminated string.
type String string

var (
	_ Nl                = (*Str)(nil)
	_ SliceDeserializer = (*Str)(nil)
	_ Nl                = (*String)(nil)
)

// Size includes the null terminator.
func (v Str) Size() int               { return len(v) + 1 }
func (Str) TypeSize() (int, bool)     { return 0, false }
func (*Str) Deserialize([]byte) error { return ErrUseSlice }

// Serialize writes the bytes of v followed by a zero byte.
func (v Str) Serialize(mem *BytesWriter) (*BytesWriter, error) {
	if err := CheckSize(mem, v.Size()); err != nil {
		return mem, err
	}
	n, err := mem.WriteString(string(v))
	if err != nil {
		return ioErr(err, mem)
	}
	if n+1 != v.Size() {
		panic("nlcodec: short string write after length check")
	}
	if err := mem.WriteByte(0); err != nil {
		return ioErr(err, mem)
	}
	return mem, nil
}

// DeserializeFromSlice decodes a null-terminated string from mem without copying.
func (v *Str) DeserializeFromSlice(mem []byte) error {
	if len(mem) == 0 || mem[len(mem)-1] != 0 {
		return ErrMissingNull
	}
	b := mem[:len(mem)-1]
	if !utf8.Valid(b) {
		return fmt.Errorf("%w: %q", ErrInvalidUTF8, b)
	}
	if len(b) == 0 {
		*v = ""
		return nil
	}
	*v = Str(unsafe.String(&b[0], len(b)))
	return nil
}

func (v String) Size() int                                        { return len(v) + 1 }
func (String) TypeSize() (int, bool)                              { return 0, false }
func (v String) Serialize(mem *BytesWriter) (*BytesWriter, error) { return Str(v).Serialize(mem) }

// Deserialize decodes a null-terminated string and copies it out of mem.
func (v *String) Deserialize(mem []byte) error {
	var s Str
	if err := s.DeserializeFromSlice(mem); err != nil {
		return err
	}
	*v = String(strings.Clone(string(s)))
	return nil
}
