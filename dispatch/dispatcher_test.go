package dispatch_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/netlink-sync/addr"
	"github.com/nabbar/netlink-sync/conn"
	"github.com/nabbar/netlink-sync/dispatch"
	"github.com/nabbar/netlink-sync/netsrv"
	"github.com/nabbar/netlink-sync/state"
)

type stubConnHost struct{ messages [][]byte }

func (h *stubConnHost) MessageReceived(p []byte) { h.messages = append(h.messages, p) }
func (h *stubConnHost) LinkState([]byte, bool) (*state.State, bool) {
	return nil, false
}
func (h *stubConnHost) ConnectionClosed() {}

type stubServerHost struct {
	connHost  *stubConnHost
	connected []*conn.Connection
}

func (h *stubServerHost) ClientConnected(c *conn.Connection) { h.connected = append(h.connected, c) }
func (h *stubServerHost) NewConnectionHost() conn.Host        { return h.connHost }

var _ = Describe("Dispatcher", func() {
	It("routes a ConnectionRequest to the matching server and subsequent datagrams to the accepted connection", func() {
		serverHost := &stubServerHost{connHost: &stubConnHost{}}
		srv := netsrv.New(conn.DefaultConfig(), nil, serverHost)
		Expect(srv.Listen(addr.FromIPv4(127, 0, 0, 1, 0))).To(Succeed())

		clientHost := &stubConnHost{}
		client := conn.New(conn.DefaultConfig(), nil, clientHost)

		d := dispatch.New(nil, nil)
		d.RegisterServer(srv)
		d.RegisterConnection(client)

		Expect(client.Connect(srv.Socket().LocalAddress())).To(Succeed())
		d.RegisterSocket(client.Socket())

		Expect(d.Process(0)).To(Succeed())
		Expect(serverHost.connected).To(HaveLen(1))

		Expect(d.Process(0)).To(Succeed())
		Expect(client.State()).To(Equal(conn.Connected))

		serverConn := serverHost.connected[0]
		d.RegisterConnection(serverConn)

		Expect(client.SendMessage([]byte("ping"))).To(Succeed())
		Expect(d.Process(0)).To(Succeed())
		Expect(serverHost.connHost.messages).To(ConsistOf([]byte("ping")))
	})

	It("drops an unmatched datagram without error", func() {
		sock, err := conn.NewSocket(addr.AnyIPv4(0))
		Expect(err).NotTo(HaveOccurred())
		defer sock.Close()

		other, err := conn.NewSocket(addr.AnyIPv4(0))
		Expect(err).NotTo(HaveOccurred())
		defer other.Close()

		Expect(other.Send([]byte{3, 'h', 'i'}, sock.LocalAddress())).To(Succeed())

		d := dispatch.New(nil, nil)
		d.RegisterSocket(sock)
		Expect(d.Process(0)).To(Succeed())
	})
})
