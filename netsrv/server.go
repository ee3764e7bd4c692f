// Package netsrv implements Server, the listening side of a connection
// handshake (spec.md §4.7). Grounded on debnServer.cpp.
package netsrv

import (
	"github.com/nabbar/netlink-sync/addr"
	"github.com/nabbar/netlink-sync/conn"
	"github.com/nabbar/netlink-sync/nlog"
	"github.com/nabbar/netlink-sync/wire"
)

// Host receives Server-level callbacks (spec.md §6.3).
type Host interface {
	// ClientConnected notifies of a freshly accepted Connection, already
	// Connected and ready for SendMessage/SendReliableMessage/LinkState.
	ClientConnected(c *conn.Connection)

	// NewConnectionHost supplies the conn.Host a newly accepted
	// Connection should dispatch its own callbacks to.
	NewConnectionHost() conn.Host
}

// Server owns one Socket and negotiates new Connections on it
// (spec.md §4.7).
type Server struct {
	log nlog.Logger
	cfg conn.Config

	socket    *conn.Socket
	listening bool
	host      Host
}

// New constructs a Server with no socket bound; call Listen to begin
// accepting ConnectionRequest datagrams.
func New(cfg conn.Config, log nlog.Logger, host Host) *Server {
	if log == nil {
		log = nlog.Null()
	}
	return &Server{log: log, cfg: cfg, host: host}
}

// Listen binds the Server's Socket. The wildcard address "*" (an
// AnyIPv4 Address) resolves to the first host public IPv4, falling back
// to localhost if none is found (spec.md §4.7).
func (s *Server) Listen(local addr.Address) error {
	bind := local
	if local.IsUnspecified() {
		if found, err := addr.LocalIPv4Addresses(); err == nil && len(found) > 0 {
			bind = found[0].WithPort(local.Port())
		} else {
			bind = addr.FromIPv4(127, 0, 0, 1, local.Port())
		}
	}

	sock, err := conn.NewSocket(bind)
	if err != nil {
		return err
	}
	s.socket = sock
	s.listening = true
	return nil
}

// Socket returns the bound Socket, or nil before Listen succeeds.
func (s *Server) Socket() *conn.Socket { return s.socket }

// Listening reports whether the Server is currently accepting requests.
func (s *Server) Listening() bool { return s.listening }

// StopListening keeps the Socket open but causes subsequent
// ConnectionRequest datagrams to be rejected, matching the original's
// distinction between "socket bound" and "accepting new clients".
func (s *Server) StopListening() { s.listening = false }

// HandleConnectionRequest processes a ConnectionRequest datagram
// addressed to this Server's Socket (spec.md §4.7). from is the remote
// peer's Address. r has already had its command byte consumed.
func (s *Server) HandleConnectionRequest(from addr.Address, r *wire.Reader) (*conn.Connection, error) {
	if !s.listening || s.host == nil {
		return nil, s.reject(from, wire.AckRejected)
	}

	count, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	client := make([]conn.ProtocolID, 0, count)
	for i := 0; i < int(count); i++ {
		p, err := r.ReadUint16()
		if err != nil {
			return nil, err
		}
		client = append(client, conn.ProtocolID(p))
	}

	chosen := conn.IntersectProtocols(client)
	if len(chosen) == 0 {
		return nil, s.reject(from, wire.AckNoCommonProtocol)
	}

	c := conn.New(s.cfg, s.log, s.host.NewConnectionHost())
	c.Accept(s.socket, from, chosen[0])

	w := wire.NewWriter()
	w.WriteUint8(uint8(wire.CmdConnectionAck))
	w.WriteUint8(uint8(wire.AckAccepted))
	w.WriteUint16(uint16(chosen[0]))
	if err := s.socket.Send(w.Bytes(), from); err != nil {
		return nil, err
	}

	s.host.ClientConnected(c)
	return c, nil
}

// reject replies ConnectionAck with no protocol field (spec.md §8 S2:
// `[0x01][0x01]`) — the protocol field is only present on Accepted.
func (s *Server) reject(from addr.Address, result wire.AckResult) error {
	w := wire.NewWriter()
	w.WriteUint8(uint8(wire.CmdConnectionAck))
	w.WriteUint8(uint8(result))
	return s.socket.Send(w.Bytes(), from)
}

// Close closes the Server's Socket. Connections still referencing this
// Socket are not closed or notified; callers are responsible for tearing
// them down before calling Close.
func (s *Server) Close() error {
	if s.socket == nil {
		return nil
	}
	err := s.socket.Close()
	s.socket = nil
	s.listening = false
	return err
}
