package nlmsg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oy3o/nlcodec"
)

func mustAttr(t *testing.T, typ uint16, v nlcodec.Serializer) *Attr {
	t.Helper()
	a, err := NewAttr(typ, v)
	require.NoError(t, err)
	return a
}

func TestAttrSerialize(t *testing.T) {
	a := mustAttr(t, 1, nlcodec.U32(5))
	assert.Equal(t, 8, a.Size())

	want := append(u16(8), u16(1)...)
	want = append(want, u32(5)...)
	assert.Equal(t, want, mustEncode(t, a))

	t.Run("UnalignedPayload", func(t *testing.T) {
		s := mustAttr(t, 2, nlcodec.Str("eth0"))
		assert.Equal(t, 9, s.Size())
		b := mustEncode(t, s)
		assert.Len(t, b, 12)
		assert.Equal(t, u16(9), b[:2], "nla_len excludes the padding")
		assert.Equal(t, []byte{0, 0, 0}, b[9:])
	})

	t.Run("TooLarge", func(t *testing.T) {
		_, err := NewAttr(1, nlcodec.Bytes(make([]byte, 0xffff)))
		assert.ErrorIs(t, err, ErrInvalidAttr)

		// built by hand, so only Serialize can catch the overflow of nla_len.
		big := Attr{Type: 1, Payload: make([]byte, 0x10000)}
		_, err = nlcodec.Encode(big)
		assert.ErrorIs(t, err, ErrInvalidAttr)
		var serErr *nlcodec.SerError
		assert.ErrorAs(t, err, &serErr)

		limit := Attr{Type: 1, Payload: make([]byte, 0xffff-AttrHeaderLen)}
		b, err := nlcodec.Encode(limit)
		require.NoError(t, err)
		parsed, err := ParseAttrs(b)
		require.NoError(t, err)
		require.Len(t, parsed, 1)
		assert.Len(t, parsed[0].Payload, 0xffff-AttrHeaderLen)
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		_, err := a.Serialize(nlcodec.MakeBytesWriter(12))
		assert.ErrorIs(t, err, nlcodec.ErrBufferNotFilled)
	})
}

func TestAttrAccessors(t *testing.T) {
	attrs := NewAttrs(
		mustAttr(t, 1, nlcodec.U8(0xAB)),
		mustAttr(t, 2, nlcodec.U16(0xBEEF)),
		mustAttr(t, 3, nlcodec.U32(0xDEADBEEF)),
		mustAttr(t, 4, nlcodec.U64(1<<40)),
		mustAttr(t, 5, nlcodec.I32(-7)),
		mustAttr(t, 6, nlcodec.Str("wlan0")),
	)
	parsed, err := ParseAttrs(mustEncode(t, attrs))
	require.NoError(t, err)
	require.Len(t, parsed, 6)

	for i, a := range parsed {
		assert.Equal(t, uint16(i+1), a.Kind())
		assert.False(t, a.Nested())
	}

	v8, err := parsed[0].Uint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), v8)

	v16, err := parsed[1].Uint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), v16)

	v32, err := parsed[2].Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v32)

	v64, err := parsed[3].Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40), v64)

	i32, err := parsed[4].Int32()
	require.NoError(t, err)
	assert.Equal(t, int32(-7), i32)

	view, err := parsed[5].Str()
	require.NoError(t, err)
	assert.Equal(t, nlcodec.Str("wlan0"), view)

	text, err := parsed[5].Text()
	require.NoError(t, err)
	assert.Equal(t, "wlan0", text)

	raw, err := parsed[2].Bytes()
	require.NoError(t, err)
	assert.Equal(t, nlcodec.ByteSlice(u32(0xDEADBEEF)), raw)
	assert.Same(t, &parsed[2].Payload[0], &raw[0], "Bytes is a view of the payload")

	t.Run("WrongWidth", func(t *testing.T) {
		_, err := parsed[1].Uint32()
		require.ErrorIs(t, err, nlcodec.ErrUnexpectedEOB)
		assert.Contains(t, err.Error(), "attribute 2")
	})

	t.Run("NotAString", func(t *testing.T) {
		_, err := parsed[2].Text()
		assert.Error(t, err)
	})
}

func TestAttrNested(t *testing.T) {
	inner := []*Attr{
		mustAttr(t, 1, nlcodec.Str("a")),
		mustAttr(t, 2, nlcodec.U32(9)),
	}
	nest, err := NewNestedAttr(7, inner...)
	require.NoError(t, err)
	assert.True(t, nest.Nested())
	assert.Equal(t, uint16(7), nest.Kind())
	assert.Equal(t, AttrNested|7, nest.Type)
	assert.Equal(t, "attr{type=7 nested len=16}", nest.String())

	parsed, err := ParseAttrs(mustEncode(t, nest))
	require.NoError(t, err)
	require.Len(t, parsed, 1)

	children, err := parsed[0].Children()
	require.NoError(t, err)
	require.Len(t, children, 2)
	s, err := children[0].Text()
	require.NoError(t, err)
	assert.Equal(t, "a", s)
	v, err := children[1].Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(9), v)
}

func TestAttrDeserialize(t *testing.T) {
	b := mustEncode(t, mustAttr(t, 3, nlcodec.Bytes{1, 2, 3}))

	t.Run("Owned", func(t *testing.T) {
		src := append([]byte(nil), b[:7]...)
		a, err := nlcodec.Decode[Attr](src)
		require.NoError(t, err)
		src[AttrHeaderLen] = 0xff
		assert.Equal(t, []byte{1, 2, 3}, a.Payload)
	})

	t.Run("View", func(t *testing.T) {
		src := append([]byte(nil), b[:7]...)
		a, err := nlcodec.DecodeFromSlice[Attr](src)
		require.NoError(t, err)
		src[AttrHeaderLen] = 0xff
		assert.Equal(t, byte(0xff), a.Payload[0])
	})

	t.Run("TrailingPadding", func(t *testing.T) {
		_, err := nlcodec.Decode[Attr](b)
		assert.ErrorIs(t, err, nlcodec.ErrBufferNotParsed)
	})
}

func TestParseAttrsErrors(t *testing.T) {
	t.Run("ShortHeader", func(t *testing.T) {
		_, err := ParseAttrs([]byte{4, 0})
		assert.ErrorIs(t, err, nlcodec.ErrUnexpectedEOB)
	})

	t.Run("LengthShorterThanHeader", func(t *testing.T) {
		_, err := ParseAttrs(append(u16(2), u16(1)...))
		assert.ErrorIs(t, err, ErrInvalidAttr)
	})

	t.Run("LengthOverrunsBuffer", func(t *testing.T) {
		b := append(u16(12), u16(1)...)
		b = append(b, 1, 2)
		_, err := ParseAttrs(b)
		assert.ErrorIs(t, err, ErrInvalidAttr)
	})

	t.Run("KeepsAttributesBeforeDamage", func(t *testing.T) {
		good := mustEncode(t, mustAttr(t, 1, nlcodec.U32(1)))
		attrs, err := ParseAttrs(append(good, 0xff))
		assert.Error(t, err)
		assert.Len(t, attrs, 1)
	})
}

func TestGenl(t *testing.T) {
	m, err := NewGenlMessage(0x1c, Request, 5,
		GenlHeader{Cmd: 3, Version: 1},
		mustAttr(t, 1, nlcodec.Str("nl80211")),
		mustAttr(t, 2, nlcodec.U16(0x1c)),
	)
	require.NoError(t, err)

	msgs, err := ParseMessages(mustEncode(t, m))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, uint16(0x1c), msgs[0].Header.Type)

	g, err := ParseGenl(msgs[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, GenlHeader{Cmd: 3, Version: 1}, g.Header)
	require.Len(t, g.Attrs, 2)
	name, err := g.Attrs[0].Text()
	require.NoError(t, err)
	assert.Equal(t, "nl80211", name)
	assert.Equal(t, "genl{cmd=3 version=1 attrs=2}", g.String())

	t.Run("ShortHeader", func(t *testing.T) {
		_, err := ParseGenl([]byte{1, 2})
		assert.ErrorIs(t, err, nlcodec.ErrUnexpectedEOB)
	})

	t.Run("NoAttributes", func(t *testing.T) {
		g, err := ParseGenl([]byte{1, 2, 0, 0})
		require.NoError(t, err)
		assert.Equal(t, uint8(1), g.Header.Cmd)
		assert.Empty(t, g.Attrs)
	})
}
