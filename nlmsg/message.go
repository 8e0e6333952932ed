// Package nlmsg implements the top-level netlink message layout on top of the
// nlcodec serialization contract: the nlmsghdr header, flat TLV attributes,
// splitting of received datagrams, and message sources that feed decoded
// messages to a consumer.
package nlmsg

import (
	"bytes"
	"errors"
	"fmt"
	"syscall"

	"github.com/oy3o/nlcodec"
)

var (
	// ErrInvalidLength indicates a header length field that does not match its buffer.
	ErrInvalidLength = errors.New("nlmsg: invalid message length")

	// ErrMessageTooLarge indicates a message longer than nlcodec.MaxNlLength.
	ErrMessageTooLarge = errors.New("nlmsg: message exceeds maximum netlink length")

	// ErrInvalidAttr indicates a malformed attribute.
	ErrInvalidAttr = errors.New("nlmsg: invalid attribute")
)

// Standard message types.
const (
	Noop    uint16 = 0x1
	Error   uint16 = 0x2
	Done    uint16 = 0x3
	Overrun uint16 = 0x4
)

// Header flags.
const (
	Request      uint16 = 0x1
	Multi        uint16 = 0x2
	Ack          uint16 = 0x4
	Echo         uint16 = 0x8
	DumpIntr     uint16 = 0x10
	DumpFiltered uint16 = 0x20

	// Modifiers to GET requests.
	Root   uint16 = 0x100
	Match  uint16 = 0x200
	Atomic uint16 = 0x400
	Dump          = Root | Match
)

// HeaderLen is the size of nlmsghdr.
const HeaderLen = 16

// Header is struct nlmsghdr.
type Header struct {
	Len   uint32
	Type  uint16
	Flags uint16
	Seq   uint32
	Pid   uint32
}

type header = nlcodec.Fixed[Header]

// Message is a netlink message: a header and its raw payload.
// The payload is not padded; use nlcodec.Encode to get the aligned form.
type Message struct {
	Header  Header
	Payload []byte
}

var (
	_ nlcodec.Nl                = (*Message)(nil)
	_ nlcodec.SliceDeserializer = (*Message)(nil)
)

// NewMessage builds a message whose payload is the aligned encoding of each
// part in order. Header.Len is filled in when the message is serialized.
func NewMessage(typ, flags uint16, seq uint32, parts ...nlcodec.Serializer) (*Message, error) {
	size := 0
	for _, p := range parts {
		size += nlcodec.ASize(p)
	}
	if HeaderLen+size > nlcodec.MaxNlLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, HeaderLen+size)
	}
	mem := nlcodec.MakeBytesWriter(size)
	for _, p := range parts {
		if err := nlcodec.EncodeTo(p, mem); err != nil {
			return nil, err
		}
	}
	return &Message{
		Header:  Header{Type: typ, Flags: flags, Seq: seq},
		Payload: mem.Bytes(),
	}, nil
}

func (m Message) Size() int           { return HeaderLen + len(m.Payload) }
func (Message) TypeSize() (int, bool) { return 0, false }

// Serialize writes the header, with Len set to Size(), followed by the payload.
// Messages longer than nlcodec.MaxNlLength are refused, as they are on decode.
func (m Message) Serialize(mem *nlcodec.BytesWriter) (*nlcodec.BytesWriter, error) {
	if m.Size() > nlcodec.MaxNlLength {
		return mem, &nlcodec.SerError{
			Err: fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, m.Size()),
			Buf: mem,
		}
	}
	if err := nlcodec.CheckSize(mem, m.Size()); err != nil {
		return mem, err
	}
	h := m.Header
	h.Len = uint32(m.Size())

	sub, err := mem.Split(HeaderLen)
	if err != nil {
		return mem, &nlcodec.SerError{Err: err, Buf: mem}
	}
	if _, err := (header{Payload: h}).Serialize(sub); err != nil {
		return mem, err
	}
	return nlcodec.ByteSlice(m.Payload).Serialize(mem)
}

// Deserialize decodes mem into m, copying the payload.
func (m *Message) Deserialize(mem []byte) error {
	if err := m.DeserializeFromSlice(mem); err != nil {
		return err
	}
	m.Payload = bytes.Clone(m.Payload)
	return nil
}

// DeserializeFromSlice decodes mem into m. The payload is a view into mem.
// mem must hold exactly one message: Header.Len bytes.
func (m *Message) DeserializeFromSlice(mem []byte) error {
	h, err := decodeHeader(mem)
	if err != nil {
		return err
	}
	switch n := int(h.Len); {
	case n > len(mem):
		return fmt.Errorf("%w: header says %d bytes, have %d", nlcodec.ErrUnexpectedEOB, n, len(mem))
	case n < len(mem):
		return fmt.Errorf("%w: header says %d bytes, have %d", nlcodec.ErrBufferNotParsed, n, len(mem))
	}
	m.Header = h
	m.Payload = mem[HeaderLen:h.Len:h.Len]
	return nil
}

// decodeHeader decodes and validates the header at the start of mem.
func decodeHeader(mem []byte) (Header, error) {
	if len(mem) < HeaderLen {
		return Header{}, fmt.Errorf("%w: need %d header bytes, have %d", nlcodec.ErrUnexpectedEOB, HeaderLen, len(mem))
	}
	var h header
	if err := h.Deserialize(mem[:HeaderLen]); err != nil {
		return Header{}, err
	}
	switch {
	case h.Payload.Len < HeaderLen:
		return Header{}, fmt.Errorf("%w: %d is shorter than the header", ErrInvalidLength, h.Payload.Len)
	case h.Payload.Len > nlcodec.MaxNlLength:
		return Header{}, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, h.Payload.Len)
	}
	return h.Payload, nil
}

// Err decodes the status carried by an Error message. It returns nil for an
// acknowledgement and for messages of any other type.
func (m Message) Err() error {
	if m.Header.Type != Error {
		return nil
	}
	code, err := nlcodec.Decode[nlcodec.I32](m.Payload[:min(4, len(m.Payload))])
	if err != nil {
		return fmt.Errorf("%w: truncated error message", ErrInvalidLength)
	}
	if code == 0 {
		return nil
	}
	return syscall.Errno(-code)
}

func (m Message) String() string {
	return fmt.Sprintf("nlmsg{len=%d type=%d flags=0x%x seq=%d pid=%d payload=%d}",
		m.Size(), m.Header.Type, m.Header.Flags, m.Header.Seq, m.Header.Pid, len(m.Payload))
}

// ParseMessages splits one received datagram into its messages. Each message
// starts on an AlignTo boundary. The payloads are views into b.
func ParseMessages(b []byte) ([]Message, error) {
	var msgs []Message
	r := nlcodec.NewBytesReader(b)
	for r.Available() > 0 {
		rest := b[r.Len():]
		h, err := decodeHeader(rest)
		if err != nil {
			return msgs, err
		}
		raw, err := r.Next(int(h.Len))
		if err != nil {
			return msgs, fmt.Errorf("%w: header says %d bytes, have %d", nlcodec.ErrUnexpectedEOB, h.Len, len(rest))
		}
		var m Message
		if err := m.DeserializeFromSlice(raw); err != nil {
			return msgs, err
		}
		msgs = append(msgs, m)
		r.Skip(nlcodec.Align(int(h.Len)) - int(h.Len))
	}
	return msgs, nil
}
