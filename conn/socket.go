// Package conn implements Connection, the reliable transport and state
// synchronization peer relationship (spec.md §3, §4.6), grounded on
// debnConnection.cpp/debnSocket.cpp.
package conn

import (
	"net"
	"time"

	"github.com/nabbar/netlink-sync/addr"
	"github.com/nabbar/netlink-sync/nlerr"
	"github.com/nabbar/netlink-sync/wire"
)

// Socket owns a bound UDP file descriptor and its local Address (spec.md
// §3). Its lifetime equals its owning Server or client-side Connection;
// closing it does not close the Connections that reference it, whose
// later sends then fail.
type Socket struct {
	conn  *net.UDPConn
	local addr.Address

	// onSend, when set, is invoked after every successful Send with the
	// datagram's command byte. dispatch.Dispatcher wires this to its
	// optional Prometheus counters; a nil hook costs nothing.
	onSend func(command byte)
}

// SetSendHook installs the optional per-datagram send observer.
func (s *Socket) SetSendHook(hook func(command byte)) { s.onSend = hook }

// NewSocket creates and binds a UDP socket to local (spec.md §4.2). An
// any/zero port lets the OS choose an ephemeral port, mirroring client
// sockets created by Connect.
func NewSocket(local addr.Address) (*Socket, error) {
	udpConn, err := net.ListenUDP("udp", local.UDPAddr())
	if err != nil {
		return nil, nlerr.Wrap(nlerr.KindIoFailure, err, "bind socket to %s", local)
	}

	bound := local
	if la, ok := udpConn.LocalAddr().(*net.UDPAddr); ok {
		if a, aerr := addr.FromUDPAddr(la); aerr == nil {
			bound = a
		}
	}

	return &Socket{conn: udpConn, local: bound}, nil
}

func (s *Socket) LocalAddress() addr.Address { return s.local }

func (s *Socket) Close() error {
	return s.conn.Close()
}

// Receive reads at most one pending datagram without blocking (spec.md
// §4.2, §5: "poll/select-first, recv-after"). It reports false
// immediately if no data is ready.
func (s *Socket) Receive() (payload []byte, from addr.Address, ok bool, err error) {
	if err = s.conn.SetReadDeadline(time.Now()); err != nil {
		return nil, addr.Address{}, false, nlerr.Wrap(nlerr.KindIoFailure, err, "set read deadline")
	}

	buf := make([]byte, wire.MaxDatagramSize)
	n, remote, rerr := s.conn.ReadFromUDP(buf)
	if rerr != nil {
		if ne, isNet := rerr.(net.Error); isNet && ne.Timeout() {
			return nil, addr.Address{}, false, nil
		}
		return nil, addr.Address{}, false, nlerr.Wrap(nlerr.KindIoFailure, rerr, "receive datagram")
	}

	from, aerr := addr.FromUDPAddr(remote)
	if aerr != nil {
		return nil, addr.Address{}, false, nlerr.Wrap(nlerr.KindIoFailure, aerr, "decode remote address")
	}
	return buf[:n], from, true, nil
}

// Send transmits a single best-effort datagram (spec.md §4.2). It is not
// retried on a transient failure.
func (s *Socket) Send(payload []byte, to addr.Address) error {
	_, err := s.conn.WriteToUDP(payload, to.UDPAddr())
	if err != nil {
		return nlerr.Wrap(nlerr.KindIoFailure, err, "send datagram to %s", to)
	}
	if s.onSend != nil && len(payload) > 0 {
		s.onSend(payload[0])
	}
	return nil
}
