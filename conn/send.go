package conn

import (
	"github.com/nabbar/netlink-sync/message"
	"github.com/nabbar/netlink-sync/nlerr"
	"github.com/nabbar/netlink-sync/state"
	"github.com/nabbar/netlink-sync/wire"
)

// SendMessage sends an unreliable payload (spec.md §4.6). A no-op (as in
// the original) when not Connected.
func (c *Connection) SendMessage(payload []byte) error {
	if len(payload) < 1 {
		return nlerr.New(nlerr.KindInvalidArgument, "message payload must not be empty")
	}
	if c.state != Connected {
		return nil
	}

	w := wire.NewWriter()
	w.WriteUint8(uint8(wire.CmdMessage))
	w.WriteBytes(payload)
	return c.socket.Send(w.Bytes(), c.remote)
}

// nextSendNumber returns the sequence number the next appended reliable
// message will carry (spec.md §3: "assigned contiguously from nextSend +
// queueLength").
func (c *Connection) nextSendNumber() uint16 {
	return wire.SeqAdd(c.nextSend, c.sendQueue.Len())
}

// enqueueReliable appends a fully-framed reliable datagram to the send
// queue, transmitting immediately if it falls inside the window
// (spec.md §4.6 "Reliable send window").
func (c *Connection) enqueueReliable(command wire.Command, framed []byte, number uint16) *message.Message {
	m := message.New(byte(command), framed)
	m.SetNumber(number)
	c.sendQueue.Append(m)

	if c.sendQueue.Len() <= c.windowSize {
		if err := c.socket.Send(framed, c.remote); err == nil {
			m.SetState(message.Sent)
			m.ResetSecondsSinceSent()
		}
	}
	return m
}

// SendReliableMessage sends a reliable payload (spec.md §4.6).
func (c *Connection) SendReliableMessage(payload []byte) error {
	if len(payload) < 1 {
		return nlerr.New(nlerr.KindInvalidArgument, "reliable message payload must not be empty")
	}
	if c.state != Connected {
		return nil
	}

	number := c.nextSendNumber()
	w := wire.NewWriter()
	w.WriteUint8(uint8(wire.CmdReliableMessage))
	w.WriteUint16(number)
	w.WriteBytes(payload)

	c.enqueueReliable(wire.CmdReliableMessage, w.Bytes(), number)
	return nil
}

// LinkState links state to the remote peer (spec.md §4.6 "LinkState
// sending"): allocates a fresh StateLink identifier, enqueues a reliable
// ReliableLinkState datagram, and transitions the link to Listening.
func (c *Connection) LinkState(st *state.State, identifyingPayload []byte, readOnly bool) error {
	if len(identifyingPayload) < 1 {
		return nlerr.New(nlerr.KindInvalidArgument, "identifying payload must not be empty")
	}
	if c.state != Connected {
		return nil
	}

	for _, l := range c.links {
		if l.State() == st && l.LinkState() != state.Down {
			return nlerr.New(nlerr.KindInvalidState, "a link to this state already exists")
		}
	}

	id, err := c.allocateLinkID()
	if err != nil {
		return err
	}

	link := st.NewLink(id, c.onLinkDirty)
	c.links = append(c.links, link)

	number := c.nextSendNumber()
	w := wire.NewWriter()
	w.WriteUint8(uint8(wire.CmdReliableLinkState))
	w.WriteUint16(number)
	w.WriteUint16(id)

	var flags uint8
	if readOnly {
		flags |= wire.LinkFlagReadOnly
	}
	w.WriteUint8(flags)
	w.WriteUint16(uint16(len(identifyingPayload)))
	w.WriteBytes(identifyingPayload)
	st.LinkWriteValuesWithVerify(w)

	c.enqueueReliable(wire.CmdReliableLinkState, w.Bytes(), number)
	link.SetLinkState(state.Listening)
	return nil
}

// allocateLinkID picks a fresh StateLink identifier by linear probe
// modulo 65535 from a rolling cursor (spec.md §3).
func (c *Connection) allocateLinkID() (uint16, error) {
	for i := 0; i < wire.SeqMod; i++ {
		id := uint16((int(c.linkCursor) + i) % wire.SeqMod)
		if c.findLink(id) == nil {
			c.linkCursor = uint16((int(id) + 1) % wire.SeqMod)
			return id, nil
		}
	}
	return 0, nlerr.New(nlerr.KindOutOfResources, "statelink identifier pool exhausted")
}

func (c *Connection) findLink(id uint16) *state.StateLink {
	for _, l := range c.links {
		if l.Identifier() == id {
			return l
		}
	}
	return nil
}

func (c *Connection) onLinkDirty(l *state.StateLink) {
	c.dirtyLinks = append(c.dirtyLinks, l)
}

// flushDirtyLinks builds and sends one LinkUpdate datagram per tick for
// every Up-and-changed StateLink, clamped to 255 links (spec.md §4.6
// "Per-tick link update").
func (c *Connection) flushDirtyLinks() {
	var toFlush []*state.StateLink
	for _, l := range c.dirtyLinks {
		if l.LinkState() == state.Up && l.Changed() {
			toFlush = append(toFlush, l)
		}
	}
	if len(toFlush) == 0 {
		return
	}
	if len(toFlush) > maxFlushLinks {
		toFlush = toFlush[:maxFlushLinks]
	}

	w := wire.NewWriter()
	w.WriteUint8(uint8(wire.CmdLinkUpdate))
	w.WriteUint8(uint8(len(toFlush)))
	for _, l := range toFlush {
		w.WriteUint16(l.Identifier())
		if st := l.State(); st != nil {
			st.LinkWriteValuesForLink(w, l)
		} else {
			w.WriteUint8(0)
		}
	}
	_ = c.socket.Send(w.Bytes(), c.remote)

	flushed := make(map[*state.StateLink]bool, len(toFlush))
	for _, l := range toFlush {
		flushed[l] = true
	}

	remaining := c.dirtyLinks[:0]
	for _, l := range c.dirtyLinks {
		if !flushed[l] || l.Changed() {
			remaining = append(remaining, l)
		}
	}
	c.dirtyLinks = remaining
}
