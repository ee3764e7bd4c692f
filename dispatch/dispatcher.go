// Package dispatch implements Dispatcher, the single per-tick entry
// point a host calls to drive every Connection and Server it owns
// (spec.md §4.8, §5). Grounded on deNetworkBasic.cpp.
package dispatch

import (
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nabbar/netlink-sync/addr"
	"github.com/nabbar/netlink-sync/conn"
	"github.com/nabbar/netlink-sync/netsrv"
	"github.com/nabbar/netlink-sync/nlog"
	"github.com/nabbar/netlink-sync/wire"
)

// Dispatcher holds the three registration lists spec.md §4.8 names —
// connections, servers, sockets — and drives them one tick at a time.
// Only the Dispatcher mutates these lists (spec.md §5).
type Dispatcher struct {
	log nlog.Logger
	met *metrics

	connections []*conn.Connection
	servers     []*netsrv.Server
	sockets     []*conn.Socket
}

// New constructs an empty Dispatcher. reg may be nil to disable metrics
// (spec.md SPEC_FULL §B "additive instrumentation").
func New(log nlog.Logger, reg *prometheus.Registry) *Dispatcher {
	if log == nil {
		log = nlog.Null()
	}
	return &Dispatcher{log: log, met: newMetrics(reg)}
}

// RegisterConnection adds c to the connection list and tracks its
// Socket, if not already tracked.
func (d *Dispatcher) RegisterConnection(c *conn.Connection) {
	d.connections = append(d.connections, c)
	d.trackSocket(c.Socket())
	if c.Socket() != nil {
		c.Socket().SetSendHook(d.met.sent)
	}
	c.SetRetransmitHook(d.met.retransmit)
	d.met.setActiveConnections(len(d.connections))
}

// UnregisterConnection removes c from the connection list. Its Socket
// is left tracked; callers that also own the Socket must UnregisterSocket
// separately (spec.md §3 "closing the socket closes all Connections").
func (d *Dispatcher) UnregisterConnection(c *conn.Connection) {
	out := d.connections[:0]
	for _, existing := range d.connections {
		if existing != c {
			out = append(out, existing)
		}
	}
	d.connections = out
	d.met.setActiveConnections(len(d.connections))
}

// RegisterServer adds s to the server list and tracks its Socket.
func (d *Dispatcher) RegisterServer(s *netsrv.Server) {
	d.servers = append(d.servers, s)
	d.trackSocket(s.Socket())
	if s.Socket() != nil {
		s.Socket().SetSendHook(d.met.sent)
	}
}

// UnregisterServer removes s from the server list.
func (d *Dispatcher) UnregisterServer(s *netsrv.Server) {
	out := d.servers[:0]
	for _, existing := range d.servers {
		if existing != s {
			out = append(out, existing)
		}
	}
	d.servers = out
}

// RegisterSocket tracks an additional Socket for draining, beyond those
// implicitly tracked by RegisterConnection/RegisterServer.
func (d *Dispatcher) RegisterSocket(sock *conn.Socket) {
	d.trackSocket(sock)
}

func (d *Dispatcher) trackSocket(sock *conn.Socket) {
	if sock == nil {
		return
	}
	for _, existing := range d.sockets {
		if existing == sock {
			return
		}
	}
	d.sockets = append(d.sockets, sock)
}

// UnregisterSocket stops draining sock.
func (d *Dispatcher) UnregisterSocket(sock *conn.Socket) {
	out := d.sockets[:0]
	for _, existing := range d.sockets {
		if existing != sock {
			out = append(out, existing)
		}
	}
	d.sockets = out
}

// Process runs one tick (spec.md §4.8): first every connection's
// process(elapsed), then every socket's readable datagrams, routed by
// command to the matching server or connection. Unmatched datagrams are
// logged, counted and dropped. Per-item errors are collected into a
// single returned error via go-multierror rather than aborting the loop.
func (d *Dispatcher) Process(elapsed float64) error {
	var errs *multierror.Error

	for _, c := range d.connections {
		c.Process(elapsed)
	}

	for _, sock := range d.sockets {
		for {
			payload, from, ok, err := sock.Receive()
			if err != nil {
				errs = multierror.Append(errs, err)
				break
			}
			if !ok {
				break
			}
			if err := d.route(sock, from, payload); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
	}

	return errs.ErrorOrNil()
}

func (d *Dispatcher) route(sock *conn.Socket, from addr.Address, payload []byte) error {
	if len(payload) < 1 {
		d.met.dropped("malformed")
		d.log.Debug("dropping empty datagram", "from", from.String())
		return nil
	}

	r := wire.NewReader(payload, "dispatcher")
	cmdByte, err := r.ReadUint8()
	if err != nil {
		d.met.dropped("malformed")
		return nil
	}
	cmd := wire.Command(cmdByte)
	d.met.received(cmdByte)

	if cmd == wire.CmdConnectionRequest {
		for _, s := range d.servers {
			if s.Socket() == sock {
				_, err := s.HandleConnectionRequest(from, r)
				return err
			}
		}
		d.met.dropped("unmatched")
		d.log.Debug("dropping ConnectionRequest, no matching server", "from", from.String())
		return nil
	}

	for _, c := range d.connections {
		if c.Matches(sock, from) {
			return c.HandleDatagram(cmd, r)
		}
	}

	d.met.dropped("unmatched")
	d.log.Debug("dropping datagram, no matching connection", "command", cmd, "from", from.String())
	return nil
}
