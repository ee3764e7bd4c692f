package conn

import (
	"github.com/hashicorp/go-uuid"

	"github.com/nabbar/netlink-sync/addr"
	"github.com/nabbar/netlink-sync/message"
	"github.com/nabbar/netlink-sync/nlerr"
	"github.com/nabbar/netlink-sync/nlog"
	"github.com/nabbar/netlink-sync/state"
	"github.com/nabbar/netlink-sync/wire"
)

// ConnState is the connection-state machine (spec.md §3).
type ConnState uint8

const (
	Disconnected ConnState = iota
	Connecting
	Connected
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Host receives the callbacks a Connection's core invokes (spec.md §6.3).
type Host interface {
	// MessageReceived delivers an unreliable or reliable message payload.
	MessageReceived(payload []byte)

	// LinkState is asked to provide a State matching identifyingPayload
	// for an incoming link request; readOnly is the remote side's
	// declared flag. Returning ok=false (or a nil state) rejects the
	// link with LinkDown.
	LinkState(identifyingPayload []byte, readOnly bool) (st *state.State, ok bool)

	// ConnectionClosed notifies of teardown, whether peer- or
	// local-initiated. The core has already performed local cleanup
	// before this call (spec.md §9: host callback re-entrancy).
	ConnectionClosed()
}

// maxFlushLinks is the clamp on a single LinkUpdate's linkCount:u8 field
// (spec.md §4.4, §9).
const maxFlushLinks = 255

// Connection is the one-to-one peer relationship owning reliable
// send/receive windows, StateLinks and timeouts (spec.md §3, §4.6).
// Grounded on debnConnection.cpp.
type Connection struct {
	log nlog.Logger
	cfg Config

	// handle is a stable identifier (a v4 UUID) exposed via Handle().
	// dispatch.Dispatcher does not use it: it routes datagrams by
	// scanning its connections with Matches.
	handle string

	socket     *Socket
	ownsSocket bool
	remote     addr.Address
	state      ConnState
	protocol   ProtocolID
	host       Host

	clientProtocols  []ProtocolID
	connectElapsed   float64
	connectSinceSend float64

	windowSize int
	nextSend   uint16
	nextRecv   uint16
	sendQueue  *message.Queue
	recvQueue  *message.Queue

	links      []*state.StateLink
	linkCursor uint16
	dirtyLinks []*state.StateLink

	// onRetransmit, when set, is invoked once per reliable resend.
	// dispatch.Dispatcher wires this to its optional retransmit counter.
	onRetransmit func()
}

// SetRetransmitHook installs the optional per-retransmit observer.
func (c *Connection) SetRetransmitHook(hook func()) { c.onRetransmit = hook }

// New constructs a Disconnected Connection. Use Connect for the
// client-initiated path or Accept for the server-driven path.
func New(cfg Config, log nlog.Logger, host Host) *Connection {
	if log == nil {
		log = nlog.Null()
	}
	h, err := uuid.GenerateUUID()
	if err != nil {
		h = ""
	}
	return &Connection{
		log:        log,
		cfg:        cfg,
		handle:     h,
		host:       host,
		windowSize: cfg.WindowSize,
		sendQueue:  message.NewQueue(),
		recvQueue:  message.NewQueue(),
	}
}

func (c *Connection) Handle() string          { return c.handle }
func (c *Connection) State() ConnState        { return c.state }
func (c *Connection) Protocol() ProtocolID    { return c.protocol }
func (c *Connection) RemoteAddress() addr.Address { return c.remote }
func (c *Connection) Socket() *Socket         { return c.socket }

// Matches reports whether a received datagram from (sock, remote) belongs
// to this Connection (spec.md §3 invariant: at most one Connection per
// (socket, remote-address) pair).
func (c *Connection) Matches(sock *Socket, remote addr.Address) bool {
	return c.socket == sock && c.remote.Equal(remote)
}

// Connect allocates a private client-side Socket bound to IPv4-any, sends
// ConnectionRequest with the supported protocol list, and transitions to
// Connecting (spec.md §4.6).
func (c *Connection) Connect(remote addr.Address) error {
	if c.socket != nil {
		return nlerr.New(nlerr.KindAlreadyConnected, "connection already has a socket")
	}

	sock, err := NewSocket(addr.AnyIPv4(0))
	if err != nil {
		return err
	}

	c.socket = sock
	c.ownsSocket = true
	c.remote = remote
	c.clientProtocols = SupportedProtocols
	c.connectElapsed = 0
	c.connectSinceSend = 0
	c.state = Connecting

	return c.sendConnectionRequest()
}

func (c *Connection) sendConnectionRequest() error {
	w := wire.NewWriter()
	w.WriteUint8(uint8(wire.CmdConnectionRequest))
	w.WriteUint16(uint16(len(c.clientProtocols)))
	for _, p := range c.clientProtocols {
		w.WriteUint16(uint16(p))
	}
	return c.socket.Send(w.Bytes(), c.remote)
}

// Accept wires a server-negotiated Connection directly to Connected
// (spec.md §4.6).
func (c *Connection) Accept(sock *Socket, remote addr.Address, protocol ProtocolID) {
	c.socket = sock
	c.ownsSocket = false
	c.remote = remote
	c.protocol = protocol
	c.state = Connected
	c.log.Debug("accepted connection", "remote", remote.String(), "protocol", protocolVersion(protocol).String())
}

// Disconnect sends ConnectionClose best-effort if Connected, then tears
// down locally (spec.md §4.6).
func (c *Connection) Disconnect() error {
	if c.state == Connected && c.socket != nil {
		w := wire.NewWriter()
		w.WriteUint8(uint8(wire.CmdConnectionClose))
		_ = c.socket.Send(w.Bytes(), c.remote)
	}
	c.teardown()
	return nil
}

// teardown clears StateLink and reliable queues, releases the socket
// reference and transitions to Disconnected (spec.md §4.6).
func (c *Connection) teardown() {
	for _, l := range c.links {
		if st := l.State(); st != nil {
			st.DropLink(l)
		}
	}
	c.links = nil
	c.dirtyLinks = nil

	c.sendQueue.Clear()
	c.recvQueue.Clear()

	if c.ownsSocket && c.socket != nil {
		_ = c.socket.Close()
	}
	c.socket = nil
	c.state = Disconnected
}

// Process runs per-tick bookkeeping (spec.md §4.6, §5): while Connecting,
// resend ConnectionRequest and enforce connectTimeout; while Connected,
// age Sent reliables and flush dirty StateLinks.
func (c *Connection) Process(elapsed float64) {
	switch c.state {
	case Connecting:
		c.connectElapsed += elapsed
		c.connectSinceSend += elapsed

		if c.connectElapsed > c.cfg.ConnectTimeout {
			c.teardown()
			if c.host != nil {
				c.host.ConnectionClosed()
			}
			return
		}
		if c.connectSinceSend > c.cfg.ConnectResendInterval {
			_ = c.sendConnectionRequest()
			c.connectSinceSend = 0
		}

	case Connected:
		c.ageSentReliables(elapsed)
		c.flushDirtyLinks()
	}
}

// ageSentReliables resends any Sent message whose clock has exceeded
// ReliableTimeout (spec.md §4.6 literal per-message resend trigger;
// ReliableResendInterval instead governs the minimum spacing Process is
// expected to be called at, not a second independent timer — see
// DESIGN.md). A message that has been resent ReliableMaxRetries times
// without an ack (0 = unbounded) tears down the connection.
func (c *Connection) ageSentReliables(elapsed float64) {
	for _, m := range c.sendQueue.All() {
		if m.State() != message.Sent {
			continue
		}
		m.AgeBy(elapsed)
		if m.SecondsSinceSent() <= c.cfg.ReliableTimeout {
			continue
		}
		if c.cfg.ReliableMaxRetries > 0 && m.ResendCount() >= c.cfg.ReliableMaxRetries {
			c.log.Debug("reliable message exceeded max retries, tearing down", "number", m.Number())
			c.teardown()
			if c.host != nil {
				c.host.ConnectionClosed()
			}
			return
		}
		c.log.Debug("resending reliable message", "number", m.Number())
		_ = c.socket.Send(m.Payload(), c.remote)
		m.MarkResent()
		if c.onRetransmit != nil {
			c.onRetransmit()
		}
	}
}
