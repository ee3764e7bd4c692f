package addr_test

import (
	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/netlink-sync/addr"
)

var _ = Describe("Default", func() {
	It("is IPv4 loopback on the default port", func() {
		a := addr.Default()
		Expect(a.String()).To(Equal("127.0.0.1:3413"))
		Expect(a.Family()).To(Equal(addr.IPv4))
		Expect(a.Port()).To(Equal(addr.DefaultPort))
	})
})

var _ = Describe("Parse/String round-trip", func() {
	// spec.md §8 property 1: parse(format(a)) == a.
	cases := []string{
		"192.168.1.1:9999",
		"10.0.0.1",
		"[::1]:1234",
		"::1",
		"[2001:db8::1]:53",
	}

	for _, s := range cases {
		s := s
		It("round-trips "+s, func() {
			a, err := addr.Parse(s)
			Expect(err).NotTo(HaveOccurred())

			formatted := a.String()
			b, err := addr.Parse(formatted)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Equal(a)).To(BeTrue())
			Expect(cmp.Diff(b.String(), a.String())).To(BeEmpty())
		})
	}

	It("defaults the port when absent", func() {
		a, err := addr.Parse("10.0.0.1")
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Port()).To(Equal(addr.DefaultPort))
	})

	It("accepts hostname:port", func() {
		a, err := addr.Parse("localhost:4000")
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Port()).To(Equal(uint16(4000)))
	})

	It("rejects an empty string", func() {
		_, err := addr.Parse("")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("IPv6 formatting", func() {
	It("compacts the longest zero run once", func() {
		a, err := addr.Parse("[2001:0:0:0:0:0:0:1]:80")
		Expect(err).NotTo(HaveOccurred())
		Expect(a.String()).To(Equal("[2001::1]:80"))
	})

	It("formats loopback as ::1", func() {
		a, err := addr.Parse("::1")
		Expect(err).NotTo(HaveOccurred())
		Expect(a.String()).To(ContainSubstring("::1"))
	})

	It("compacts a mid-stream zero run without a stray extra colon", func() {
		a, err := addr.Parse("[2001:db8:0:0:0:0:0:1]:443")
		Expect(err).NotTo(HaveOccurred())
		Expect(a.String()).To(Equal("[2001:db8::1]:443"))
	})

	It("compacts a trailing zero run", func() {
		a, err := addr.Parse("[2001:db8:0:0:0:0:0:0]:443")
		Expect(err).NotTo(HaveOccurred())
		Expect(a.String()).To(Equal("[2001:db8::]:443"))
	})
})

var _ = Describe("Equal", func() {
	It("distinguishes family, octets and port", func() {
		a := addr.FromIPv4(1, 2, 3, 4, 100)
		b := addr.FromIPv4(1, 2, 3, 4, 100)
		c := addr.FromIPv4(1, 2, 3, 5, 100)
		d := addr.FromIPv4(1, 2, 3, 4, 101)

		Expect(a.Equal(b)).To(BeTrue())
		Expect(a.Equal(c)).To(BeFalse())
		Expect(a.Equal(d)).To(BeFalse())
	})
})

var _ = Describe("IsUnspecified", func() {
	It("recognizes the IPv4 wildcard", func() {
		Expect(addr.AnyIPv4(0).IsUnspecified()).To(BeTrue())
		Expect(addr.FromIPv4(1, 0, 0, 0, 0).IsUnspecified()).To(BeFalse())
	})
})

var _ = Describe("UDPAddr round-trip", func() {
	It("survives FromUDPAddr(UDPAddr())", func() {
		a := addr.FromIPv4(203, 0, 113, 5, 51820)
		back, err := addr.FromUDPAddr(a.UDPAddr())
		Expect(err).NotTo(HaveOccurred())
		Expect(back.Equal(a)).To(BeTrue())
	})
})
