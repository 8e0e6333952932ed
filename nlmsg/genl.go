package nlmsg

import (
	"fmt"

	"github.com/oy3o/nlcodec"
)

// GenlHeaderLen is the size of struct genlmsghdr.
const GenlHeaderLen = 4

// GenlHeader is struct genlmsghdr, the fixed header that starts the payload of
// every generic netlink message.
type GenlHeader struct {
	Cmd      uint8
	Version  uint8
	Reserved uint16
}

// Genl is a generic netlink message body: the genl header and its attributes.
type Genl struct {
	Header GenlHeader
	Attrs  []Attr
}

// ParseGenl decodes a generic netlink message payload. Attributes are views
// into b.
func ParseGenl(b []byte) (Genl, error) {
	if len(b) < GenlHeaderLen {
		return Genl{}, fmt.Errorf("%w: genl header needs %d bytes, have %d", nlcodec.ErrUnexpectedEOB, GenlHeaderLen, len(b))
	}
	var h nlcodec.Fixed[GenlHeader]
	if err := h.Deserialize(b[:GenlHeaderLen]); err != nil {
		return Genl{}, err
	}
	attrs, err := ParseAttrs(b[GenlHeaderLen:])
	if err != nil {
		return Genl{}, err
	}
	return Genl{Header: h.Payload, Attrs: attrs}, nil
}

// NewGenlMessage builds a netlink message carrying a genl header followed by
// the given attributes.
func NewGenlMessage(family uint16, flags uint16, seq uint32, h GenlHeader, attrs ...*Attr) (*Message, error) {
	return NewMessage(family, flags, seq, &nlcodec.Fixed[GenlHeader]{Payload: h}, NewAttrs(attrs...))
}

func (g Genl) String() string {
	return fmt.Sprintf("genl{cmd=%d version=%d attrs=%d}", g.Header.Cmd, g.Header.Version, len(g.Attrs))
}
