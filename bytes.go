package nlcodec

import "bytes"

// ByteSlice is a borrowed span of raw bytes. Its length is not encoded on the
// wire; an enclosing container must know it. It can only be decoded as a view,
// see DeserializeFromSlice.
type ByteSlice []byte

// Bytes is an owned byte collection. Decoding copies the whole input.
type Bytes []byte

var (
	_ Nl                = (*ByteSlice)(nil)
	_ SliceDeserializer = (*ByteSlice)(nil)
	_ Nl                = (*Bytes)(nil)
)

func (v ByteSlice) Size() int               { return len(v) }
func (ByteSlice) TypeSize() (int, bool)     { return 0, false }
func (*ByteSlice) Deserialize([]byte) error { return ErrUseSlice }

// Serialize copies v into mem, which must have exactly len(v) bytes left.
func (v ByteSlice) Serialize(mem *BytesWriter) (*BytesWriter, error) {
	if err := CheckSize(mem, v.Size()); err != nil {
		return mem, err
	}
	if _, err := mem.Write(v); err != nil {
		return ioErr(err, mem)
	}
	return mem, nil
}

// DeserializeFromSlice makes v a view of mem without copying.
func (v *ByteSlice) DeserializeFromSlice(mem []byte) error {
	*v = mem
	return nil
}

func (v Bytes) Size() int                                        { return len(v) }
func (Bytes) TypeSize() (int, bool)                              { return 0, false }
func (v Bytes) Serialize(mem *BytesWriter) (*BytesWriter, error) { return ByteSlice(v).Serialize(mem) }

// Deserialize copies all of mem into v.
func (v *Bytes) Deserialize(mem []byte) error {
	*v = bytes.Clone(mem)
	if *v == nil {
		*v = Bytes{}
	}
	return nil
}
