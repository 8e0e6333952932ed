package nlcodec

import (
	"encoding/binary"
	"fmt"

	"github.com/josharian/native"
	"golang.org/x/exp/constraints"
)

// Order is the byte order of every integer on the wire. Netlink speaks host byte order.
var Order binary.ByteOrder = native.Endian

const (
	// AlignTo is the netlink word size. Messages, headers and attributes
	// all start on a multiple of it (NLMSG_ALIGNTO, NLA_ALIGNTO).
	AlignTo = 4

	// MaxNlLength bounds the length of a single encoded message.
	MaxNlLength = 32768
)

const BUFFER_SIZE = 4096

var empty [BUFFER_SIZE]byte

// Roundup rounds n up to the nearest multiple of align.
func Roundup[T constraints.Integer](n, align T) T { return (n + (align - 1)) &^ (align - 1) }

// Align returns the smallest multiple of AlignTo that is >= n.
func Align(n int) int { return Roundup(n, AlignTo) }

// CheckBufferNotZeros verifies that every byte of b is zero.
// Decoders use it to reject garbage in reserved fields and alignment padding.
func CheckBufferNotZeros(b []byte) error {
	for i, c := range b {
		if c != 0 {
			return fmt.Errorf("%w: found non-zero byte 0x%02x at offset %d", ErrBufferNotParsed, c, i)
		}
	}
	return nil
}
