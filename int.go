package nlcodec

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Fixed-width integers in host byte order.
type (
	U8  uint8
	U16 uint16
	U32 uint32
	U64 uint64
	I8  int8
	I16 int16
	I32 int32
	I64 int64
)

var (
	_ Nl = (*U8)(nil)
	_ Nl = (*U16)(nil)
	_ Nl = (*U32)(nil)
	_ Nl = (*U64)(nil)
	_ Nl = (*I8)(nil)
	_ Nl = (*I16)(nil)
	_ Nl = (*I32)(nil)
	_ Nl = (*I64)(nil)
)

func sizeOf[T constraints.Integer]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

// putInt writes v into mem, which must have exactly sizeof(T) bytes left.
func putInt[T constraints.Integer](v T, mem *BytesWriter) (*BytesWriter, error) {
	size := sizeOf[T]()
	if err := CheckSize(mem, size); err != nil {
		return mem, err
	}
	b := mem.Next(size)
	if b == nil {
		panic("nlcodec: buffer length already checked")
	}
	switch size {
	case 1:
		b[0] = byte(v)
	case 2:
		Order.PutUint16(b, uint16(v))
	case 4:
		Order.PutUint32(b, uint32(v))
	case 8:
		Order.PutUint64(b, uint64(v))
	}
	return mem, nil
}

// getInt reads a T from mem, which must be exactly sizeof(T) bytes long.
func getInt[T constraints.Integer](mem []byte) (T, error) {
	size := sizeOf[T]()
	if err := CheckLen(mem, size); err != nil {
		return 0, err
	}
	switch size {
	case 1:
		return T(mem[0]), nil
	case 2:
		return T(Order.Uint16(mem)), nil
	case 4:
		return T(Order.Uint32(mem)), nil
	case 8:
		return T(Order.Uint64(mem)), nil
	}
	panic("nlcodec: unsupported integer width")
}

func (v U8) Size() int                                         { return 1 }
func (U8) TypeSize() (int, bool)                               { return 1, true }
func (v U8) Serialize(mem *BytesWriter) (*BytesWriter, error)  { return putInt(v, mem) }
func (v *U8) Deserialize(mem []byte) (err error)               { *v, err = getInt[U8](mem); return }
func (v U16) Size() int                                        { return 2 }
func (U16) TypeSize() (int, bool)                              { return 2, true }
func (v U16) Serialize(mem *BytesWriter) (*BytesWriter, error) { return putInt(v, mem) }
func (v *U16) Deserialize(mem []byte) (err error)              { *v, err = getInt[U16](mem); return }
func (v U32) Size() int                                        { return 4 }
func (U32) TypeSize() (int, bool)                              { return 4, true }
func (v U32) Serialize(mem *BytesWriter) (*BytesWriter, error) { return putInt(v, mem) }
func (v *U32) Deserialize(mem []byte) (err error)              { *v, err = getInt[U32](mem); return }
func (v U64) Size() int                                        { return 8 }
func (U64) TypeSize() (int, bool)                              { return 8, true }
func (v U64) Serialize(mem *BytesWriter) (*BytesWriter, error) { return putInt(v, mem) }
func (v *U64) Deserialize(mem []byte) (err error)              { *v, err = getInt[U64](mem); return }

func (v I8) Size() int                                         { return 1 }
func (I8) TypeSize() (int, bool)                               { return 1, true }
func (v I8) Serialize(mem *BytesWriter) (*BytesWriter, error)  { return putInt(v, mem) }
func (v *I8) Deserialize(mem []byte) (err error)               { *v, err = getInt[I8](mem); return }
func (v I16) Size() int                                        { return 2 }
func (I16) TypeSize() (int, bool)                              { return 2, true }
func (v I16) Serialize(mem *BytesWriter) (*BytesWriter, error) { return putInt(v, mem) }
func (v *I16) Deserialize(mem []byte) (err error)              { *v, err = getInt[I16](mem); return }
func (v I32) Size() int                                        { return 4 }
func (I32) TypeSize() (int, bool)                              { return 4, true }
func (v I32) Serialize(mem *BytesWriter) (*BytesWriter, error) { return putInt(v, mem) }
func (v *I32) Deserialize(mem []byte) (err error)              { *v, err = getInt[I32](mem); return }
func (v I64) Size() int                                        { return 8 }
func (I64) TypeSize() (int, bool)                              { return 8, true }
func (v I64) Serialize(mem *BytesWriter) (*BytesWriter, error) { return putInt(v, mem) }
func (v *I64) Deserialize(mem []byte) (err error)              { *v, err = getInt[I64](mem); return }
