package nlcodec

import (
	"encoding/binary"
	"io"
	"testing"
)

type BenchmarkPayload struct {
	ID      uint32
	Val1    uint64
	Val2    uint64
	Val3    uint64
	IsAlive bool
	Padding [3]byte
}

type BenchmarkCodec = Fixed[BenchmarkPayload]

func BenchmarkFixedSerialize(b *testing.B) {
	c := BenchmarkCodec{Payload: BenchmarkPayload{ID: 1, Val1: 100}}
	mem := MakeBytesWriter(c.Size())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		mem.Reset()
		_, _ = c.Serialize(mem)
	}
}

func BenchmarkFixedDeserialize(b *testing.B) {
	c := BenchmarkCodec{Payload: BenchmarkPayload{ID: 1, Val1: 100}}
	data, _ := Encode(c)
	var c2 BenchmarkCodec
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c2.Deserialize(data[:c.Size()])
	}
}

func BenchmarkEncodeList(b *testing.B) {
	l := NewList[Serializer](U32(1), Str("benchmark"), Bytes{1, 2, 3, 4, 5}, U64(2))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Encode(l)
	}
}

func BenchmarkStrDeserializeFromSlice(b *testing.B) {
	data := []byte("a moderately long attribute value\x00")
	var s Str
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.DeserializeFromSlice(data)
	}
}

func BenchmarkWriterWriteNl(b *testing.B) {
	w, _ := NewWriter(io.Discard)
	c := BenchmarkCodec{Payload: BenchmarkPayload{ID: 1, Val1: 100}}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.WriteNl(c)
	}
}

// Baseline comparison using only binary.Write directly, to see overhead of the wrapper
func BenchmarkStandardBinaryWrite(b *testing.B) {
	payload := BenchmarkPayload{ID: 1, Val1: 100}
	buf := make([]byte, binary.Size(payload))
	w := NewBytesWriter(buf) // using same writer as library
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Reset()
		_ = binary.Write(w, Order, &payload)
	}
}
