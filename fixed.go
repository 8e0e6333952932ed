package nlcodec

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// sizeCache avoids the high performance cost of reflection in `binary.Size`
// on every call. xsync.Map makes it concurrent-safe.
var sizeCache = xsync.NewMap[reflect.Type, int]()

// Fixed provides the serialization contract for any struct `Payload`
// composed of fixed-size fields, such as kernel headers (nlmsghdr, genlmsghdr,
// rtmsg). Fields are encoded in host byte order with no implicit padding, so
// the struct must spell out reserved bytes itself.
//
// Constraint: The `Payload` type MUST NOT contain variable-size fields like slices,
// maps, or strings, as this will cause `binary.Size` to fail.
type Fixed[Payload any] struct {
	Payload Payload
}

// Statically assert that Fixed implements Nl.
var _ Nl = (*Fixed[struct{}])(nil)

// Size returns the fixed size of the struct in bytes.
// The result is cached to avoid reflection overhead on subsequent calls.
func (c Fixed[Payload]) Size() int {
	n, _ := c.TypeSize()
	return n
}

// TypeSize is the same for every value of the type.
func (Fixed[Payload]) TypeSize() (int, bool) {
	payloadType := reflect.TypeFor[Payload]()

	// Attempt to load from the concurrent-safe cache first for performance.
	if size, ok := sizeCache.Load(payloadType); ok {
		return size, true
	}

	var zero Payload
	size := binary.Size(&zero)
	if size < 0 {
		panic(fmt.Sprintf("nlcodec: %s is not a fixed-size type", payloadType))
	}

	// Store the result for subsequent calls.
	sizeCache.Store(payloadType, size)
	return size, true
}

// Serialize encodes the payload into mem, which must have exactly Size() bytes left.
func (c Fixed[Payload]) Serialize(mem *BytesWriter) (*BytesWriter, error) {
	size := c.Size()
	if err := CheckSize(mem, size); err != nil {
		return mem, err
	}
	n, err := binary.Encode(mem.B[mem.N:], Order, &c.Payload)
	if err != nil {
		return ioErr(err, mem)
	}
	mem.N += n
	return mem, nil
}

// Deserialize decodes mem, which must be exactly Size() bytes long, into the payload.
func (c *Fixed[Payload]) Deserialize(mem []byte) error {
	if err := CheckLen(mem, c.Size()); err != nil {
		return err
	}
	if _, err := binary.Decode(mem, Order, &c.Payload); err != nil {
		// the length was checked above; binary.Decode only fails on a short buffer.
		panic(fmt.Sprintf("nlcodec: decoding a checked buffer: %v", err))
	}
	return nil
}
