package nlmsg

import (
	"context"
	"io"
)

// Iter is the blocking, pull based message source. Each call to Next returns
// the next message, receiving a new datagram only when the previous one has
// been consumed.
type Iter struct {
	rx      Receiver
	pending []Message
	err     error
}

var _ Source = (*Iter)(nil)

// NewIter creates an Iter over rx.
func NewIter(rx Receiver) *Iter {
	return &Iter{rx: rx}
}

// Next returns the next message, or io.EOF once the receiver is exhausted.
// The messages of a damaged datagram that precede the damage are returned
// before its error. After any error Next keeps returning it.
func (it *Iter) Next() (Message, error) {
	for len(it.pending) == 0 {
		if it.err != nil {
			return Message{}, it.err
		}
		dgram, err := it.rx.Receive()
		if err != nil {
			it.err = err
			continue
		}
		it.pending, it.err = ParseMessages(dgram)
	}
	m := it.pending[0]
	it.pending = it.pending[1:]
	return m, nil
}

// Run pulls messages until the receiver is exhausted. ctx is checked between
// messages; a Receive that blocks is not interrupted.
func (it *Iter) Run(ctx context.Context, h Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := it.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := h(m); err != nil {
			return err
		}
	}
}
