package main

import (
	"fmt"

	"github.com/mdlayher/genetlink"
	"github.com/mdlayher/netlink"

	"github.com/oy3o/nlcodec"
	"github.com/oy3o/nlcodec/nlmsg"
)

// socketReceiver adapts a generic netlink socket to nlmsg.Receiver. The
// socket hands back parsed messages, so each batch is encoded again into the
// datagram layout the nlmsg sources decode.
type socketReceiver struct {
	conn *genetlink.Conn
}

func (r *socketReceiver) Receive() ([]byte, error) {
	_, msgs, err := r.conn.Receive()
	if err != nil {
		return nil, err
	}
	return encodeDatagram(msgs)
}

// encodeDatagram lays msgs out back to back, each on an aligned boundary.
func encodeDatagram(msgs []netlink.Message) ([]byte, error) {
	parts := make([]nlcodec.Serializer, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, nlmsg.Message{
			Header: nlmsg.Header{
				Type:  uint16(m.Header.Type),
				Flags: uint16(m.Header.Flags),
				Seq:   m.Header.Sequence,
				Pid:   m.Header.PID,
			},
			Payload: m.Data,
		})
	}
	b, err := nlcodec.Encode(nlcodec.NewList(parts...))
	if err != nil {
		return nil, fmt.Errorf("encoding datagram: %w", err)
	}
	return b, nil
}

// resolveGroup looks up the id of a multicast group of a generic netlink family.
func resolveGroup(conn *genetlink.Conn, family, group string) (genetlink.Family, uint32, error) {
	f, err := conn.GetFamily(family)
	if err != nil {
		return genetlink.Family{}, 0, fmt.Errorf("resolving family %q: %w", family, err)
	}
	for _, g := range f.Groups {
		if g.Name == group {
			return f, g.ID, nil
		}
	}
	return f, 0, fmt.Errorf("family %q has no multicast group %q", family, group)
}
