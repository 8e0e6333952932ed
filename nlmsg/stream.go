package nlmsg

import (
	"context"
	"io"
)

// Stream is the non-blocking, push based message source. A background
// goroutine receives and decodes datagrams and pushes messages on a channel.
type Stream struct {
	rx      Receiver
	backlog int
}

var _ Source = (*Stream)(nil)

// NewStream creates a Stream over rx. backlog is the channel capacity.
func NewStream(rx Receiver, backlog int) *Stream {
	return &Stream{rx: rx, backlog: max(backlog, 0)}
}

// Messages starts the receive goroutine. The message channel is closed when
// the receiver is exhausted, fails, or ctx is done; in the failure case the
// error is sent on the error channel first. io.EOF is not reported.
func (s *Stream) Messages(ctx context.Context) (<-chan Message, <-chan error) {
	msgs := make(chan Message, s.backlog)
	errc := make(chan error, 1)
	go func() {
		defer close(msgs)
		for {
			dgram, err := s.rx.Receive()
			if err == nil {
				var batch []Message
				batch, err = ParseMessages(dgram)
				for _, m := range batch {
					select {
					case msgs <- m:
					case <-ctx.Done():
						return
					}
				}
			}
			if err != nil {
				if err != io.EOF {
					errc <- err
				}
				return
			}
		}
	}()
	return msgs, errc
}

// Run consumes the stream until it ends or ctx is done.
func (s *Stream) Run(ctx context.Context, h Handler) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgs, errc := s.Messages(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-msgs:
			if !ok {
				select {
				case err := <-errc:
					return err
				default:
					return ctx.Err()
				}
			}
			if err := h(m); err != nil {
				return err
			}
		}
	}
}
