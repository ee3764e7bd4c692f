package netsrv_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/netlink-sync/addr"
	"github.com/nabbar/netlink-sync/conn"
	"github.com/nabbar/netlink-sync/netsrv"
	"github.com/nabbar/netlink-sync/state"
	"github.com/nabbar/netlink-sync/wire"
)

type stubConnHost struct{}

func (stubConnHost) MessageReceived([]byte) {}
func (stubConnHost) LinkState([]byte, bool) (*state.State, bool) {
	return nil, false
}
func (stubConnHost) ConnectionClosed() {}

type recordingServerHost struct {
	connected []*conn.Connection
}

func (h *recordingServerHost) ClientConnected(c *conn.Connection) {
	h.connected = append(h.connected, c)
}

func (h *recordingServerHost) NewConnectionHost() conn.Host { return stubConnHost{} }

var _ = Describe("Server", func() {
	var (
		srv        *netsrv.Server
		srvHost    *recordingServerHost
		clientSock *conn.Socket
	)

	BeforeEach(func() {
		srvHost = &recordingServerHost{}
		srv = netsrv.New(conn.DefaultConfig(), nil, srvHost)
		Expect(srv.Listen(addr.FromIPv4(127, 0, 0, 1, 0))).To(Succeed())

		var err error
		clientSock, err = conn.NewSocket(addr.AnyIPv4(0))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = srv.Close()
		_ = clientSock.Close()
	})

	It("accepts a client offering a common protocol", func() {
		w := wire.NewWriter()
		w.WriteUint8(uint8(wire.CmdConnectionRequest))
		w.WriteUint16(1)
		w.WriteUint16(uint16(conn.DENetworkProtocol))
		Expect(clientSock.Send(w.Bytes(), srv.Socket().LocalAddress())).To(Succeed())

		payload, from, ok, err := srv.Socket().Receive()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		r := wire.NewReader(payload, "test")
		cmdByte, _ := r.ReadUint8()
		Expect(wire.Command(cmdByte)).To(Equal(wire.CmdConnectionRequest))

		c, err := srv.HandleConnectionRequest(from, r)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.State()).To(Equal(conn.Connected))
		Expect(srvHost.connected).To(ConsistOf(c))

		ackPayload, _, ok, err := clientSock.Receive()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		ar := wire.NewReader(ackPayload, "test")
		cmdByte, _ = ar.ReadUint8()
		Expect(wire.Command(cmdByte)).To(Equal(wire.CmdConnectionAck))
		result, _ := ar.ReadUint8()
		Expect(wire.AckResult(result)).To(Equal(wire.AckAccepted))
	})

	It("rejects when not listening", func() {
		srv.StopListening()

		w := wire.NewWriter()
		w.WriteUint8(uint8(wire.CmdConnectionRequest))
		w.WriteUint16(1)
		w.WriteUint16(uint16(conn.DENetworkProtocol))
		Expect(clientSock.Send(w.Bytes(), srv.Socket().LocalAddress())).To(Succeed())

		payload, from, ok, err := srv.Socket().Receive()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		r := wire.NewReader(payload, "test")
		_, _ = r.ReadUint8()

		_, err = srv.HandleConnectionRequest(from, r)
		Expect(err).NotTo(HaveOccurred())
		Expect(srvHost.connected).To(BeEmpty())

		ackPayload, _, ok, err := clientSock.Receive()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(ackPayload).To(Equal([]byte{byte(wire.CmdConnectionAck), byte(wire.AckRejected)}))
	})

	It("rejects when the client offers no common protocol", func() {
		w := wire.NewWriter()
		w.WriteUint8(uint8(wire.CmdConnectionRequest))
		w.WriteUint16(1)
		w.WriteUint16(999)
		Expect(clientSock.Send(w.Bytes(), srv.Socket().LocalAddress())).To(Succeed())

		payload, from, ok, err := srv.Socket().Receive()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		r := wire.NewReader(payload, "test")
		_, _ = r.ReadUint8()

		_, err = srv.HandleConnectionRequest(from, r)
		Expect(err).NotTo(HaveOccurred())

		ackPayload, _, ok, err := clientSock.Receive()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(ackPayload).To(Equal([]byte{byte(wire.CmdConnectionAck), byte(wire.AckNoCommonProtocol)}))
	})
})
