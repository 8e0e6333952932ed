package nlmsg

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/oy3o/nlcodec"
)

// AttrHeaderLen is the size of struct nlattr.
const AttrHeaderLen = 4

// Flag bits carried in the attribute type.
const (
	AttrNested       uint16 = 1 << 15
	AttrNetByteOrder uint16 = 1 << 14

	attrTypeMask = ^(AttrNested | AttrNetByteOrder)
)

// Attr is a flat type-length-value attribute. Payload holds the value without
// its trailing padding.
type Attr struct {
	Type    uint16
	Payload []byte
}

var (
	_ nlcodec.Nl                = (*Attr)(nil)
	_ nlcodec.SliceDeserializer = (*Attr)(nil)
)

// maxAttrLen is the largest length nla_len can carry.
const maxAttrLen = 0xffff

// NewAttr encodes v as the payload of an attribute of type typ.
func NewAttr(typ uint16, v nlcodec.Serializer) (*Attr, error) {
	if AttrHeaderLen+v.Size() > maxAttrLen {
		return nil, fmt.Errorf("%w: payload of %d bytes does not fit nla_len", ErrInvalidAttr, v.Size())
	}
	mem := nlcodec.MakeBytesWriter(v.Size())
	if _, err := v.Serialize(mem); err != nil {
		return nil, err
	}
	return &Attr{Type: typ, Payload: mem.B}, nil
}

// NewNestedAttr builds an attribute whose payload is the aligned run of children.
func NewNestedAttr(typ uint16, children ...*Attr) (*Attr, error) {
	a, err := NewAttr(typ, nlcodec.NewList(children...))
	if err != nil {
		return nil, err
	}
	a.Type |= AttrNested
	return a, nil
}

func (a Attr) Size() int           { return AttrHeaderLen + len(a.Payload) }
func (Attr) TypeSize() (int, bool) { return 0, false }

// Kind returns the attribute type without the nested and byte order flags.
func (a Attr) Kind() uint16 { return a.Type & attrTypeMask }

// Nested reports whether the payload is itself a run of attributes.
func (a Attr) Nested() bool { return a.Type&AttrNested != 0 }

// Serialize writes nla_len, nla_type and the payload. Padding is left to the
// enclosing container.
func (a Attr) Serialize(mem *nlcodec.BytesWriter) (*nlcodec.BytesWriter, error) {
	if a.Size() > maxAttrLen {
		return mem, &nlcodec.SerError{
			Err: fmt.Errorf("%w: %d bytes do not fit nla_len", ErrInvalidAttr, a.Size()),
			Buf: mem,
		}
	}
	if err := nlcodec.CheckSize(mem, a.Size()); err != nil {
		return mem, err
	}
	fields := []nlcodec.Serializer{
		nlcodec.U16(a.Size()),
		nlcodec.U16(a.Type),
		nlcodec.ByteSlice(a.Payload),
	}
	for _, f := range fields {
		sub, err := mem.Split(f.Size())
		if err != nil {
			return mem, &nlcodec.SerError{Err: err, Buf: mem}
		}
		if _, err := f.Serialize(sub); err != nil {
			return mem, err
		}
	}
	return mem, nil
}

// Deserialize decodes one attribute, copying the payload.
func (a *Attr) Deserialize(mem []byte) error {
	if err := a.DeserializeFromSlice(mem); err != nil {
		return err
	}
	a.Payload = bytes.Clone(a.Payload)
	return nil
}

// DeserializeFromSlice decodes exactly one unpadded attribute. The payload is
// a view into mem.
func (a *Attr) DeserializeFromSlice(mem []byte) error {
	n, typ, err := decodeAttrHeader(mem)
	if err != nil {
		return err
	}
	if err := nlcodec.CheckLen(mem, n); err != nil {
		return err
	}
	a.Type = typ
	a.Payload = mem[AttrHeaderLen:n:n]
	return nil
}

func decodeAttrHeader(mem []byte) (int, uint16, error) {
	if len(mem) < AttrHeaderLen {
		return 0, 0, fmt.Errorf("%w: need %d header bytes, have %d", nlcodec.ErrUnexpectedEOB, AttrHeaderLen, len(mem))
	}
	n, err := nlcodec.Decode[nlcodec.U16](mem[0:2])
	if err != nil {
		return 0, 0, err
	}
	typ, err := nlcodec.Decode[nlcodec.U16](mem[2:4])
	if err != nil {
		return 0, 0, err
	}
	if n < AttrHeaderLen {
		return 0, 0, fmt.Errorf("%w: nla_len %d is shorter than the header", ErrInvalidAttr, n)
	}
	return int(n), uint16(typ), nil
}

func (a Attr) Uint8() (uint8, error) {
	v, err := nlcodec.Decode[nlcodec.U8](a.Payload)
	return uint8(v), a.wrap(err)
}

func (a Attr) Uint16() (uint16, error) {
	v, err := nlcodec.Decode[nlcodec.U16](a.Payload)
	return uint16(v), a.wrap(err)
}

func (a Attr) Uint32() (uint32, error) {
	v, err := nlcodec.Decode[nlcodec.U32](a.Payload)
	return uint32(v), a.wrap(err)
}

func (a Attr) Uint64() (uint64, error) {
	v, err := nlcodec.Decode[nlcodec.U64](a.Payload)
	return uint64(v), a.wrap(err)
}

func (a Attr) Int32() (int32, error) {
	v, err := nlcodec.Decode[nlcodec.I32](a.Payload)
	return int32(v), a.wrap(err)
}

// Str decodes a null-terminated string payload without copying.
// The result is only valid while the payload's buffer is.
func (a Attr) Str() (nlcodec.Str, error) {
	v, err := nlcodec.DecodeFromSlice[nlcodec.Str](a.Payload)
	return v, a.wrap(err)
}

// Bytes returns the raw payload as a view, without copying.
func (a Attr) Bytes() (nlcodec.ByteSlice, error) {
	v, err := nlcodec.DecodeFromSlice[nlcodec.ByteSlice](a.Payload)
	return v, a.wrap(err)
}

// Text decodes a null-terminated string payload into an owned string.
func (a Attr) Text() (string, error) {
	v, err := nlcodec.Decode[nlcodec.String](a.Payload)
	return string(v), a.wrap(err)
}

// Children parses the payload of a nested attribute.
func (a Attr) Children() ([]Attr, error) {
	attrs, err := ParseAttrs(a.Payload)
	return attrs, a.wrap(err)
}

func (a Attr) wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("attribute %d: %w", a.Kind(), err)
}

func (a Attr) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "attr{type=%d", a.Kind())
	if a.Nested() {
		sb.WriteString(" nested")
	}
	fmt.Fprintf(&sb, " len=%d}", len(a.Payload))
	return sb.String()
}

// ParseAttrs walks a run of aligned attributes. The last attribute may omit
// its trailing padding. Payloads are views into b.
func ParseAttrs(b []byte) ([]Attr, error) {
	var attrs []Attr
	r := nlcodec.NewBytesReader(b)
	for r.Available() > 0 {
		n, _, err := decodeAttrHeader(b[r.Len():])
		if err != nil {
			return attrs, err
		}
		raw, err := r.Next(n)
		if err != nil {
			return attrs, fmt.Errorf("%w: nla_len %d overruns %d remaining bytes", ErrInvalidAttr, n, r.Available())
		}
		var a Attr
		if err := a.DeserializeFromSlice(raw); err != nil {
			return attrs, err
		}
		attrs = append(attrs, a)
		r.Skip(nlcodec.Align(n) - n)
	}
	return attrs, nil
}

// NewAttrs returns the aligned encoding container for attrs.
func NewAttrs(attrs ...*Attr) *nlcodec.List[*Attr] {
	return nlcodec.NewList(attrs...)
}
