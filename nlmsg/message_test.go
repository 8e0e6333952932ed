package nlmsg

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oy3o/nlcodec"
)

func mustEncode(t *testing.T, v nlcodec.Serializer) []byte {
	t.Helper()
	b, err := nlcodec.Encode(v)
	require.NoError(t, err)
	return b
}

func u16(v uint16) []byte {
	b := make([]byte, 2)
	nlcodec.Order.PutUint16(b, v)
	return b
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	nlcodec.Order.PutUint32(b, v)
	return b
}

// rawHeader lays out an nlmsghdr by hand.
func rawHeader(length uint32, typ, flags uint16, seq, pid uint32) []byte {
	b := u32(length)
	b = append(b, u16(typ)...)
	b = append(b, u16(flags)...)
	b = append(b, u32(seq)...)
	return append(b, u32(pid)...)
}

func TestMessageSerialize(t *testing.T) {
	m, err := NewMessage(0x10, Request|Ack, 7, nlcodec.U32(1), nlcodec.Str("ab"))
	require.NoError(t, err)
	assert.Equal(t, 24, m.Size())

	b := mustEncode(t, m)
	want := rawHeader(24, 0x10, Request|Ack, 7, 0)
	want = append(want, u32(1)...)
	want = append(want, 'a', 'b', 0, 0)
	assert.Equal(t, want, b)

	t.Run("LengthMismatch", func(t *testing.T) {
		_, err := m.Serialize(nlcodec.MakeBytesWriter(25))
		assert.ErrorIs(t, err, nlcodec.ErrBufferNotFilled)
		_, err = m.Serialize(nlcodec.MakeBytesWriter(16))
		assert.ErrorIs(t, err, nlcodec.ErrUnexpectedEOB)
	})

	t.Run("TooLarge", func(t *testing.T) {
		_, err := NewMessage(0x10, 0, 0, nlcodec.Bytes(make([]byte, nlcodec.MaxNlLength)))
		assert.ErrorIs(t, err, ErrMessageTooLarge)

		big := Message{Header: Header{Type: 0x10}, Payload: make([]byte, nlcodec.MaxNlLength-HeaderLen+1)}
		_, err = big.Serialize(nlcodec.MakeBytesWriter(big.Size()))
		assert.ErrorIs(t, err, ErrMessageTooLarge)
		var serErr *nlcodec.SerError
		assert.ErrorAs(t, err, &serErr)

		limit := Message{Header: Header{Type: 0x10}, Payload: make([]byte, nlcodec.MaxNlLength-HeaderLen)}
		b, err := nlcodec.Encode(limit)
		require.NoError(t, err)
		var back Message
		require.NoError(t, back.DeserializeFromSlice(b))
		assert.Equal(t, uint32(nlcodec.MaxNlLength), back.Header.Len)
	})
}

func TestMessageDeserialize(t *testing.T) {
	in := Message{
		Header:  Header{Type: 0x20, Flags: Multi, Seq: 3, Pid: 99},
		Payload: []byte{1, 2, 3, 4, 5},
	}
	b := mustEncode(t, in)
	require.Len(t, b, 24, "21 bytes plus padding")

	t.Run("Owned", func(t *testing.T) {
		src := append([]byte(nil), b[:21]...)
		out, err := nlcodec.Decode[Message](src)
		require.NoError(t, err)
		src[HeaderLen] = 0xff
		assert.Equal(t, uint32(21), out.Header.Len)
		assert.Equal(t, in.Header.Type, out.Header.Type)
		assert.Equal(t, in.Header.Pid, out.Header.Pid)
		assert.Equal(t, in.Payload, out.Payload)
	})

	t.Run("View", func(t *testing.T) {
		src := append([]byte(nil), b[:21]...)
		out, err := nlcodec.DecodeFromSlice[Message](src)
		require.NoError(t, err)
		src[HeaderLen] = 0xff
		assert.Equal(t, byte(0xff), out.Payload[0])
	})

	t.Run("TrailingPadding", func(t *testing.T) {
		_, err := nlcodec.Decode[Message](b)
		assert.ErrorIs(t, err, nlcodec.ErrBufferNotParsed)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := nlcodec.Decode[Message](b[:20])
		assert.ErrorIs(t, err, nlcodec.ErrUnexpectedEOB)
		_, err = nlcodec.Decode[Message](b[:10])
		assert.ErrorIs(t, err, nlcodec.ErrUnexpectedEOB)
	})

	t.Run("LengthShorterThanHeader", func(t *testing.T) {
		_, err := nlcodec.Decode[Message](rawHeader(8, 0x20, 0, 0, 0))
		assert.ErrorIs(t, err, ErrInvalidLength)
	})

	t.Run("LengthTooLarge", func(t *testing.T) {
		_, err := nlcodec.Decode[Message](rawHeader(nlcodec.MaxNlLength+4, 0x20, 0, 0, 0))
		assert.ErrorIs(t, err, ErrMessageTooLarge)
	})
}

func TestMessageErr(t *testing.T) {
	errMsg := func(code int32) Message {
		m, err := NewMessage(Error, 0, 1, nlcodec.I32(code), header{Payload: Header{Len: 16, Type: 0x10}})
		require.NoError(t, err)
		return *m
	}

	assert.Equal(t, syscall.ENOENT, errMsg(-int32(syscall.ENOENT)).Err())
	assert.NoError(t, errMsg(0).Err(), "a zero code is an acknowledgement")
	assert.NoError(t, Message{Header: Header{Type: Done}}.Err())

	truncated := Message{Header: Header{Type: Error}, Payload: []byte{1, 2}}
	assert.ErrorIs(t, truncated.Err(), ErrInvalidLength)
}

func TestMessageString(t *testing.T) {
	m := Message{Header: Header{Type: 0x10, Flags: Request | Dump, Seq: 4}, Payload: []byte{1, 2}}
	assert.Equal(t, "nlmsg{len=18 type=16 flags=0x301 seq=4 pid=0 payload=2}", m.String())
}

func TestParseMessages(t *testing.T) {
	first := Message{Header: Header{Type: 0x10, Seq: 1}, Payload: []byte{1, 2, 3}}
	second := Message{Header: Header{Type: 0x11, Seq: 2}, Payload: u32(0xCAFE)}
	third := Message{Header: Header{Type: Done, Seq: 3}}
	dgram := mustEncode(t, nlcodec.NewList(first, second, third))

	t.Run("Splits", func(t *testing.T) {
		msgs, err := ParseMessages(dgram)
		require.NoError(t, err)
		require.Len(t, msgs, 3)

		assert.Equal(t, uint32(1), msgs[0].Header.Seq)
		assert.Equal(t, []byte{1, 2, 3}, msgs[0].Payload)
		assert.Equal(t, uint32(19), msgs[0].Header.Len)

		assert.Equal(t, uint16(0x11), msgs[1].Header.Type)
		assert.Equal(t, u32(0xCAFE), msgs[1].Payload)

		assert.Equal(t, Done, msgs[2].Header.Type)
		assert.Empty(t, msgs[2].Payload)
	})

	t.Run("PayloadsAreViews", func(t *testing.T) {
		src := append([]byte(nil), dgram...)
		msgs, err := ParseMessages(src)
		require.NoError(t, err)
		src[HeaderLen] = 0xff
		assert.Equal(t, byte(0xff), msgs[0].Payload[0])
	})

	t.Run("Empty", func(t *testing.T) {
		msgs, err := ParseMessages(nil)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("UnpaddedLastMessage", func(t *testing.T) {
		b := mustEncode(t, first)
		msgs, err := ParseMessages(b[:first.Size()])
		require.NoError(t, err)
		require.Len(t, msgs, 1)
	})

	t.Run("TruncatedMessage", func(t *testing.T) {
		msgs, err := ParseMessages(dgram[:len(dgram)-2])
		assert.ErrorIs(t, err, nlcodec.ErrUnexpectedEOB)
		assert.Len(t, msgs, 2, "messages before the damage are returned")
	})

	t.Run("GarbageHeader", func(t *testing.T) {
		_, err := ParseMessages(rawHeader(4, 0, 0, 0, 0))
		assert.ErrorIs(t, err, ErrInvalidLength)
	})
}
