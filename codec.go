package nlcodec

// Sizer is an interface for types that can report their binary size.
type Sizer interface {
	// Size returns the exact, unaligned number of bytes this value occupies on the wire.
	Size() int
}

// Serializer is implemented by every value with a netlink wire representation.
//
// Serialize writes the value at the cursor of mem. The number of bytes left in
// mem must equal Size(): a shorter buffer fails with ErrUnexpectedEOB, a longer
// one with ErrBufferNotFilled. The buffer is returned on success, and on
// failure it is reachable through the *SerError, so a caller can reuse the
// allocation.
type Serializer interface {
	Sizer

	// TypeSize reports the static size of the type, and false if the type is
	// variable length. It must not depend on the receiver's value, so it can be
	// called on the zero value before any instance exists.
	TypeSize() (int, bool)

	Serialize(mem *BytesWriter) (*BytesWriter, error)
}

// Deserializer reconstructs an owned value from a buffer. Implementations are
// pointer receivers. Fixed-size types require len(mem) to equal their size.
type Deserializer interface {
	Deserialize(mem []byte) error
}

// SliceDeserializer is the borrowing decode capability. The decoded value is a
// view into mem: it stays valid only while mem is alive and unmodified.
// Types whose Deserialize fails with ErrUseSlice must be decoded this way.
type SliceDeserializer interface {
	DeserializeFromSlice(mem []byte) error
}

// Nl aggregates the serialization contract.
type Nl interface {
	Serializer
	Deserializer
}

// ASize returns the size of v aligned to the netlink word size.
func ASize(v Sizer) int { return Align(v.Size()) }

// TypeSizeOf returns the static size of T, or false if T is variable length.
func TypeSizeOf[T Serializer]() (int, bool) {
	var zero T
	return zero.TypeSize()
}

// TypeASizeOf returns the aligned static size of T, or false if T is variable length.
func TypeASizeOf[T Serializer]() (int, bool) {
	n, ok := TypeSizeOf[T]()
	if !ok {
		return 0, false
	}
	return Align(n), true
}

// Pad writes the ASize(v)-Size(v) zero bytes that follow v on the wire at the
// cursor of mem. Zero-length padding leaves mem untouched.
func Pad(v Sizer, mem *BytesWriter) (*BytesWriter, error) {
	n := ASize(v) - v.Size()
	if n == 0 {
		return mem, nil
	}
	if _, err := mem.WriteZeros(n); err != nil {
		return ioErr(err, mem)
	}
	return mem, nil
}
