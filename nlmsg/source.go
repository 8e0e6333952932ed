package nlmsg

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/oy3o/nlcodec"
)

// Receiver yields raw netlink datagrams, one per call. It returns io.EOF when
// no more datagrams will arrive. Implementations wrap a socket or a capture.
type Receiver interface {
	Receive() ([]byte, error)
}

// Handler consumes one decoded message. A non-nil error stops the source.
type Handler func(Message) error

// Source feeds every message decoded from a Receiver to a Handler until the
// receiver is exhausted, the handler fails, or ctx is done. Run returns nil
// when the receiver reports io.EOF.
//
// NewSource picks the implementation at build time: the pull based Iter by
// default, the push based Stream with the "async" build tag.
type Source interface {
	Run(ctx context.Context, h Handler) error
}

// ReceiverFunc adapts a function to the Receiver interface.
type ReceiverFunc func() ([]byte, error)

func (f ReceiverFunc) Receive() ([]byte, error) { return f() }

// readerReceiver reads framed messages back from a byte stream, such as a
// capture written with nlcodec.Writer.
type readerReceiver struct {
	r *nlcodec.Reader
}

// NewReaderReceiver returns a Receiver that yields one message per call from a
// stream of aligned messages.
func NewReaderReceiver(r io.Reader) (Receiver, error) {
	nr, err := nlcodec.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &readerReceiver{r: nr}, nil
}

func (rr *readerReceiver) Receive() ([]byte, error) {
	raw := rr.r.ReadBytes(HeaderLen)
	if err := rr.r.Err(); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated header", err)
		}
		return nil, err
	}
	h, err := decodeHeader(raw)
	if err != nil {
		return nil, err
	}
	var body nlcodec.Bytes
	rr.r.ReadNl(&body, int(h.Len)-HeaderLen)
	if err := rr.r.Err(); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading message body: %w", err)
	}
	return append(raw, body...), nil
}
