package conn

import (
	"github.com/nabbar/netlink-sync/message"
	"github.com/nabbar/netlink-sync/nlerr"
	"github.com/nabbar/netlink-sync/state"
	"github.com/nabbar/netlink-sync/wire"
)

// HandleDatagram dispatches one already-stripped-of-command datagram body
// to the matching handler (spec.md §4.6, §6.1). cmd has already been read
// off the front of r by the caller (the Dispatcher or Server).
func (c *Connection) HandleDatagram(cmd wire.Command, r *wire.Reader) error {
	switch cmd {
	case wire.CmdConnectionAck:
		return c.processConnectionAck(r)
	case wire.CmdConnectionClose:
		return c.processConnectionClose()
	case wire.CmdMessage:
		return c.processMessage(r)
	case wire.CmdReliableMessage:
		return c.processReliableMessage(r)
	case wire.CmdReliableLinkState:
		return c.processReliableLinkState(r)
	case wire.CmdReliableAck:
		return c.processReliableAck(r)
	case wire.CmdLinkUp:
		return c.processLinkUp(r)
	case wire.CmdLinkDown:
		return c.processLinkDown(r)
	case wire.CmdLinkUpdate:
		return c.processLinkUpdate(r)
	default:
		return nlerr.New(nlerr.KindInvalidProtocolFrame, "unexpected command %d for an established connection", cmd)
	}
}

// processConnectionAck reads the result byte and, only on Accepted, the
// chosen protocol field (spec.md §8 S1 carries it, S2 does not).
func (c *Connection) processConnectionAck(r *wire.Reader) error {
	if c.state != Connecting {
		return nil
	}
	result, err := r.ReadUint8()
	if err != nil {
		return err
	}
	if wire.AckResult(result) != wire.AckAccepted {
		c.teardown()
		if c.host != nil {
			c.host.ConnectionClosed()
		}
		return nil
	}
	proto, err := r.ReadUint16()
	if err != nil {
		return err
	}
	c.protocol = ProtocolID(proto)
	c.state = Connected
	c.log.Debug("connection established", "remote", c.remote.String(), "protocol", protocolVersion(c.protocol).String())
	return nil
}

func (c *Connection) processConnectionClose() error {
	c.teardown()
	if c.host != nil {
		c.host.ConnectionClosed()
	}
	return nil
}

func (c *Connection) processMessage(r *wire.Reader) error {
	if c.state != Connected {
		return nil
	}
	payload := r.ReadRest()
	if c.host != nil {
		c.host.MessageReceived(payload)
	}
	return nil
}

// sendReliableAck acknowledges an in-window reliable datagram before
// dispatch, including an already-seen duplicate, but never a frame ahead
// of the receive window (spec.md §4.6 "ack sent before dispatch";
// matches the original, which only acks numbers it actually windows).
func (c *Connection) sendReliableAck(number uint16, code wire.ReliableAckCode) {
	w := wire.NewWriter()
	w.WriteUint8(uint8(wire.CmdReliableAck))
	w.WriteUint16(number)
	w.WriteUint8(uint8(code))
	_ = c.socket.Send(w.Bytes(), c.remote)
}

func (c *Connection) processReliableMessage(r *wire.Reader) error {
	if c.state != Connected {
		return nil
	}
	number, err := r.ReadUint16()
	if err != nil {
		return err
	}
	payload := r.ReadRest()

	if !wire.SeqInWindow(number, c.nextRecv, c.windowSize) {
		return nil
	}
	c.sendReliableAck(number, wire.ReliableSuccess)

	if number == c.nextRecv {
		if c.host != nil {
			c.host.MessageReceived(payload)
		}
		c.nextRecv = wire.SeqAdd(c.nextRecv, 1)
		c.drainQueuedReliables()
		return nil
	}

	c.bufferReliable(number, wire.CmdReliableMessage, payload)
	return nil
}

// bufferReliable queues an in-window, out-of-order reliable frame tagged
// with its original command so drainQueuedReliables can redispatch it by
// kind once nextRecv catches up to it, mirroring the original's
// pAddReliableReceive (debnConnection.cpp:332), which buffers by type
// rather than assuming every buffered frame is a plain Message.
func (c *Connection) bufferReliable(number uint16, cmd wire.Command, payload []byte) {
	if c.recvQueue.FindByNumber(number) == nil {
		m := message.New(byte(cmd), payload)
		m.SetNumber(number)
		c.recvQueue.Append(m)
	}
}

// drainQueuedReliables dispatches any out-of-order reliable frames that
// are now next-in-order, after an in-order frame advances nextRecv
// (spec.md §4.6 "out-of-order buffering and drain-on-catch-up"), mirroring
// the original's pProcessQueuedMessages type switch (debnConnection.cpp:818).
func (c *Connection) drainQueuedReliables() {
	for {
		idx := c.recvQueue.IndexOfNumber(c.nextRecv)
		if idx < 0 {
			return
		}
		m := c.recvQueue.At(idx)
		c.recvQueue.RemoveAt(idx)
		c.nextRecv = wire.SeqAdd(c.nextRecv, 1)
		c.dispatchQueued(wire.Command(m.Command()), m.Payload())
	}
}

// dispatchQueued re-delivers one buffered reliable frame by its original
// kind.
func (c *Connection) dispatchQueued(cmd wire.Command, payload []byte) {
	switch cmd {
	case wire.CmdReliableMessage:
		if c.host != nil {
			c.host.MessageReceived(payload)
		}
	case wire.CmdReliableLinkState:
		id, readOnly, identifying, rest, err := decodeBufferedLinkState(payload)
		if err != nil {
			c.log.Debug("dropping malformed buffered link state", "error", err)
			return
		}
		c.handleLinkStateFrame(id, readOnly, identifying, wire.NewReader(rest, "queued-link-state"))
	}
}

// encodeBufferedLinkState packs the fields processReliableLinkState has
// already parsed off the wire, plus the unread value-schema tail, into one
// buffer so an out-of-order ReliableLinkState can sit in recvQueue like any
// other Message and be replayed verbatim on drain.
func encodeBufferedLinkState(id uint16, flags uint8, identifying []byte, rest []byte) []byte {
	w := wire.NewWriter()
	w.WriteUint16(id)
	w.WriteUint8(flags)
	w.WriteData16(identifying)
	w.WriteBytes(rest)
	return w.Bytes()
}

func decodeBufferedLinkState(payload []byte) (id uint16, readOnly bool, identifying []byte, rest []byte, err error) {
	r := wire.NewReader(payload, "queued-link-state")
	if id, err = r.ReadUint16(); err != nil {
		return
	}
	var flags uint8
	if flags, err = r.ReadUint8(); err != nil {
		return
	}
	if identifying, err = r.ReadData16(); err != nil {
		return
	}
	rest = r.ReadRest()
	readOnly = flags&wire.LinkFlagReadOnly != 0
	return
}

// processReliableLinkState handles an incoming link-establishment request
// (spec.md §4.6 "LinkState receiving"): the receive side acks in-window
// frames, and either dispatches the link-state immediately (in order) or
// buffers it by sequence number for later replay (out of order, §4.6
// "Otherwise, buffer it in the receive queue").
func (c *Connection) processReliableLinkState(r *wire.Reader) error {
	if c.state != Connected {
		return nil
	}
	number, err := r.ReadUint16()
	if err != nil {
		return err
	}
	id, err := r.ReadUint16()
	if err != nil {
		return err
	}
	flags, err := r.ReadUint8()
	if err != nil {
		return err
	}
	idLen, err := r.ReadUint16()
	if err != nil {
		return err
	}
	identifying, err := r.ReadBytes(int(idLen))
	if err != nil {
		return err
	}
	rest := r.ReadRest()

	if !wire.SeqInWindow(number, c.nextRecv, c.windowSize) {
		return nil
	}
	c.sendReliableAck(number, wire.ReliableSuccess)

	if number == c.nextRecv {
		c.nextRecv = wire.SeqAdd(c.nextRecv, 1)
		readOnly := flags&wire.LinkFlagReadOnly != 0
		c.handleLinkStateFrame(id, readOnly, identifying, wire.NewReader(rest, "link-state"))
		c.drainQueuedReliables()
		return nil
	}

	c.bufferReliable(number, wire.CmdReliableLinkState, encodeBufferedLinkState(id, flags, identifying, rest))
	return nil
}

func (c *Connection) handleLinkStateFrame(id uint16, readOnly bool, identifying []byte, r *wire.Reader) {
	// A LinkState id that clashes with an existing non-Down link is
	// rejected outright (spec.md §4.6).
	if existing := c.findLink(id); existing != nil && existing.LinkState() != state.Down {
		c.sendLinkReply(wire.CmdLinkDown, id)
		return
	}

	var st *state.State
	var ok bool
	if c.host != nil {
		st, ok = c.host.LinkState(identifying, readOnly)
	}
	if !ok || st == nil {
		c.sendLinkReply(wire.CmdLinkDown, id)
		return
	}
	if err := st.LinkReadAndVerifyAllValues(r); err != nil {
		c.log.Debug("rejecting link, schema mismatch", "error", err)
		c.sendLinkReply(wire.CmdLinkDown, id)
		return
	}

	link := st.NewLink(id, c.onLinkDirty)
	link.SetLinkState(state.Up)
	c.links = append(c.links, link)
	c.sendLinkReply(wire.CmdLinkUp, id)
}

func (c *Connection) sendLinkReply(cmd wire.Command, linkId uint16) {
	w := wire.NewWriter()
	w.WriteUint8(uint8(cmd))
	w.WriteUint16(linkId)
	_ = c.socket.Send(w.Bytes(), c.remote)
}

func (c *Connection) processReliableAck(r *wire.Reader) error {
	if c.state != Connected {
		return nil
	}
	number, err := r.ReadUint16()
	if err != nil {
		return err
	}
	code, err := r.ReadUint8()
	if err != nil {
		return err
	}

	if m := c.sendQueue.FindByNumber(number); m != nil && m.State() == message.Sent {
		if wire.ReliableAckCode(code) == wire.ReliableSuccess {
			m.SetState(message.Done)
		}
	}
	c.removeSendRepliesDone()
	c.sendPendingReliables()
	return nil
}

// removeSendRepliesDone pops Done entries off the front of the send queue,
// advancing nextSend (spec.md §4.6 "reliable send window").
func (c *Connection) removeSendRepliesDone() {
	for c.sendQueue.Len() > 0 {
		front := c.sendQueue.Front()
		if front == nil || front.State() != message.Done {
			return
		}
		c.sendQueue.RemoveFront()
		c.nextSend = wire.SeqAdd(c.nextSend, 1)
	}
}

// sendPendingReliables transmits Pending entries that have newly entered
// the window after the front of the queue advanced.
func (c *Connection) sendPendingReliables() {
	for i := 0; i < c.sendQueue.Len() && i < c.windowSize; i++ {
		m := c.sendQueue.At(i)
		if m.State() != message.Pending {
			continue
		}
		if err := c.socket.Send(m.Payload(), c.remote); err == nil {
			m.SetState(message.Sent)
			m.ResetSecondsSinceSent()
		}
	}
}

// processLinkUp completes the sending side's §4.5 Listening -> Up
// transition. Only a link still awaiting its peer's reply is eligible; a
// stray or duplicate LinkUp for an id already Up or Down is ignored,
// matching the original's `GetLinkState() != elsListening -> return`
// guard (debnConnection.cpp:386).
func (c *Connection) processLinkUp(r *wire.Reader) error {
	if c.state != Connected {
		return nil
	}
	id, err := r.ReadUint16()
	if err != nil {
		return err
	}
	if l := c.findLink(id); l != nil && l.LinkState() == state.Listening {
		l.SetLinkState(state.Up)
	}
	return nil
}

// processLinkDown completes the sending side's §4.5 Listening -> Down
// transition. Only a link still awaiting its peer's reply is eligible; a
// stray or duplicate LinkDown must not tear down an already-established
// Up link, matching the original's `GetLinkState() != elsListening ->
// return` guard (debnConnection.cpp:410).
func (c *Connection) processLinkDown(r *wire.Reader) error {
	if c.state != Connected {
		return nil
	}
	id, err := r.ReadUint16()
	if err != nil {
		return err
	}
	if l := c.findLink(id); l != nil && l.LinkState() == state.Listening {
		l.SetLinkState(state.Down)
		if st := l.State(); st != nil {
			st.DropLink(l)
		}
		c.removeLink(l)
	}
	return nil
}

func (c *Connection) removeLink(target *state.StateLink) {
	out := c.links[:0]
	for _, l := range c.links {
		if l != target {
			out = append(out, l)
		}
	}
	c.links = out
}

func (c *Connection) processLinkUpdate(r *wire.Reader) error {
	if c.state != Connected {
		return nil
	}
	linkCount, err := r.ReadUint8()
	if err != nil {
		return err
	}
	for i := 0; i < int(linkCount); i++ {
		id, err := r.ReadUint16()
		if err != nil {
			return err
		}
		link := c.findLink(id)
		if link == nil || link.State() == nil {
			return nlerr.New(nlerr.KindInvalidProtocolFrame, "link update for unknown statelink %d", id)
		}
		if err := link.State().LinkReadValues(r, link); err != nil {
			return err
		}
	}
	return nil
}
