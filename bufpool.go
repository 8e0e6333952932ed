package nlcodec

import "sync"

// bufPool reuses MaxNlLength scratch buffers for encoding messages before they
// are handed to a stream. Only buffers of exactly that capacity are returned.
var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, MaxNlLength)
		return &b
	},
}

func getBuf() *[]byte { return bufPool.Get().(*[]byte) }

func putBuf(b *[]byte) {
	if cap(*b) == MaxNlLength {
		bufPool.Put(b)
	}
}
