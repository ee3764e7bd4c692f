package wire_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/netlink-sync/wire"
)

var _ = Describe("Writer/Reader round trip", func() {
	It("round-trips every scalar width", func() {
		w := wire.NewWriter()
		w.WriteUint8(0xAB)
		w.WriteInt8(-5)
		w.WriteUint16(0xBEEF)
		w.WriteInt16(-1234)
		w.WriteUint32(0xDEADBEEF)
		w.WriteInt32(-123456)
		w.WriteUint64(0xFFFFFFFFFFFFFFFF)
		w.WriteInt64(-1)
		w.WriteData16([]byte("payload"))

		r := wire.NewReader(w.Bytes(), "test")
		u8, err := r.ReadUint8()
		Expect(err).NotTo(HaveOccurred())
		Expect(u8).To(Equal(uint8(0xAB)))

		i8, err := r.ReadInt8()
		Expect(err).NotTo(HaveOccurred())
		Expect(i8).To(Equal(int8(-5)))

		u16, err := r.ReadUint16()
		Expect(err).NotTo(HaveOccurred())
		Expect(u16).To(Equal(uint16(0xBEEF)))

		i16, err := r.ReadInt16()
		Expect(err).NotTo(HaveOccurred())
		Expect(i16).To(Equal(int16(-1234)))

		u32, err := r.ReadUint32()
		Expect(err).NotTo(HaveOccurred())
		Expect(u32).To(Equal(uint32(0xDEADBEEF)))

		i32, err := r.ReadInt32()
		Expect(err).NotTo(HaveOccurred())
		Expect(i32).To(Equal(int32(-123456)))

		u64, err := r.ReadUint64()
		Expect(err).NotTo(HaveOccurred())
		Expect(u64).To(Equal(uint64(0xFFFFFFFFFFFFFFFF)))

		i64, err := r.ReadInt64()
		Expect(err).NotTo(HaveOccurred())
		Expect(i64).To(Equal(int64(-1)))

		data, err := r.ReadData16()
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte("payload")))

		Expect(r.Remaining()).To(Equal(0))
	})

	It("errors instead of panicking when the buffer underflows", func() {
		r := wire.NewReader([]byte{0x01}, "test")
		_, err := r.ReadUint32()
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("SeqInWindow", func() {
	// spec.md §8 property 7: accepts every N in [nextRecv, nextRecv+W),
	// rejects outside, including wrap across 65534->0.
	It("accepts the whole window and rejects just outside it", func() {
		const start, size = 5, 10
		for n := start; n < start+size; n++ {
			Expect(wire.SeqInWindow(uint16(n), start, size)).To(BeTrue(), "n=%d", n)
		}
		Expect(wire.SeqInWindow(start+size, start, size)).To(BeFalse())
		Expect(wire.SeqInWindow(start-1, start, size)).To(BeFalse())
	})

	It("wraps across the SeqMod boundary", func() {
		const start, size = wire.SeqMod - 3, 10
		for i := 0; i < size; i++ {
			n := wire.SeqAdd(start, i)
			Expect(wire.SeqInWindow(n, start, size)).To(BeTrue(), "n=%d", n)
		}
		Expect(wire.SeqInWindow(wire.SeqAdd(start, size), start, size)).To(BeFalse())
	})
})

var _ = Describe("SeqAdd", func() {
	It("wraps modulo SeqMod, not 65536", func() {
		Expect(wire.SeqAdd(wire.SeqMod-1, 1)).To(Equal(uint16(0)))
		Expect(wire.SeqAdd(0, wire.SeqMod)).To(Equal(uint16(0)))
	})
})
