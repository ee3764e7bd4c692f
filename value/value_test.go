package value_test

import (
	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/netlink-sync/value"
	"github.com/nabbar/netlink-sync/wire"
)

// roundTrip writes v, decodes into a fresh value of the same tag via
// value.New, and returns the decoded value for the caller to compare
// (spec.md §8 property 2: write-then-read round-trips).
func roundTrip(v value.Value) value.Value {
	w := wire.NewWriter()
	v.Write(w)
	r := wire.NewReader(w.Bytes(), "test")
	out, err := value.New(v.Tag())
	Expect(err).NotTo(HaveOccurred())
	Expect(out.Read(r)).To(Succeed())
	return out
}

var _ = Describe("Integer", func() {
	It("round-trips every width exactly, signed and unsigned", func() {
		cases := []struct {
			tag value.Tag
			n   int64
		}{
			{value.TagSint8, -42}, {value.TagUint8, 200},
			{value.TagSint16, -12345}, {value.TagUint16, 60000},
			{value.TagSint32, -123456789}, {value.TagUint32, 3000000000},
			{value.TagSint64, -1234567890123}, {value.TagUint64, 0},
		}
		for _, c := range cases {
			v := value.NewInteger(c.tag, 0)
			v.SetInt64(c.n)
			out := roundTrip(v).(*value.Integer)
			if c.tag == value.TagUint64 {
				Expect(out.Uint64()).To(Equal(v.Uint64()), "tag %v", c.tag)
			} else {
				Expect(out.Int64()).To(Equal(v.Int64()), "tag %v", c.tag)
			}
		}
	})

	It("uint64 round-trips values beyond int64 range", func() {
		v := value.NewInteger(value.TagUint64, 0)
		v.SetUint64(18446744073709551615)
		out := roundTrip(v).(*value.Integer)
		Expect(out.Uint64()).To(Equal(uint64(18446744073709551615)))
	})

	It("Update reports equal-or-not, no epsilon", func() {
		v := value.NewInteger(value.TagSint32, 0)
		v.SetInt64(5)
		Expect(v.Update()).To(BeTrue())
		Expect(v.Update()).To(BeFalse())
		v.SetInt64(5)
		Expect(v.Update()).To(BeFalse())
		v.SetInt64(6)
		Expect(v.Update()).To(BeTrue())
	})
})

var _ = Describe("Float", func() {
	It("round-trips within epsilon for every width", func() {
		for _, tag := range []value.Tag{value.TagFloat16, value.TagFloat32, value.TagFloat64} {
			v := value.NewFloat(tag, 3.25)
			out := roundTrip(v).(*value.Float)
			Expect(out.Get()).To(BeNumerically("~", v.Get(), 1e-2))
		}
	})

	It("suppresses changes at or below epsilon", func() {
		v := value.NewFloat(value.TagFloat32, 1.0)
		v.Set(1.0 + value.DefaultEpsilon/2)
		Expect(v.Update()).To(BeFalse())
		v.Set(1.0 + value.DefaultEpsilon*2)
		Expect(v.Update()).To(BeTrue())
	})

	It("clamps epsilon to the minimum safe value", func() {
		v := value.NewFloat(value.TagFloat32, 0)
		v.SetEpsilon(0)
		Expect(v.Epsilon()).To(Equal(value.MinEpsilon))
	})
})

var _ = Describe("String and Data", func() {
	It("round-trips UTF-8 text", func() {
		v := value.NewString("héllo wörld")
		out := roundTrip(v).(*value.String)
		Expect(out.Get()).To(Equal(v.Get()))
	})

	It("round-trips opaque bytes", func() {
		v := value.NewData([]byte{0x00, 0x01, 0xFF, 0x10})
		out := roundTrip(v).(*value.Data)
		Expect(cmp.Diff(out.Get(), v.Get())).To(BeEmpty())
	})

	It("detects byte-identical data as unchanged", func() {
		v := value.NewData([]byte("same"))
		Expect(v.Update()).To(BeFalse())
		v.Set([]byte("same"))
		Expect(v.Update()).To(BeFalse())
		v.Set([]byte("diff"))
		Expect(v.Update()).To(BeTrue())
	})
})

var _ = Describe("Point2 and Point3", func() {
	It("round-trips integer tuples", func() {
		p2 := value.NewPoint2(value.TagPoint2Sint32, 0, 0)
		p2.Set(^uint64(0), 7) // truncated to width
		out := roundTrip(p2).(*value.Point2)
		x, y := out.Get()
		ex, ey := p2.Get()
		Expect(x).To(Equal(ex))
		Expect(y).To(Equal(ey))
	})

	It("round-trips 3-tuples", func() {
		p3 := value.NewPoint3(value.TagPoint3Uint16, 1, 2, 3)
		out := roundTrip(p3).(*value.Point3)
		x, y, z := out.Get()
		Expect([]uint64{x, y, z}).To(Equal([]uint64{1, 2, 3}))
	})
})

var _ = Describe("Vector2, Vector3, Quaternion", func() {
	It("round-trips vectors within epsilon", func() {
		v2 := value.NewVector2(value.TagVec2F32, 1.5, -2.25)
		out := roundTrip(v2).(*value.Vector2)
		x, y := out.Get()
		Expect(x).To(BeNumerically("~", 1.5, 1e-4))
		Expect(y).To(BeNumerically("~", -2.25, 1e-4))
	})

	It("round-trips quaternions within epsilon", func() {
		q := value.NewQuaternion(value.TagQuatF32, 0.1, -0.2, 0.3, 0.9)
		out := roundTrip(q).(*value.Quaternion)
		x, y, z, w := out.Get()
		Expect(x).To(BeNumerically("~", 0.1, 1e-4))
		Expect(y).To(BeNumerically("~", -0.2, 1e-4))
		Expect(z).To(BeNumerically("~", 0.3, 1e-4))
		Expect(w).To(BeNumerically("~", 0.9, 1e-4))
	})

	It("suppresses component-wise changes within epsilon", func() {
		v3 := value.NewVector3(value.TagVec3F64, 0, 0, 0)
		v3.Set(0, value.DefaultEpsilon/2, 0)
		Expect(v3.Update()).To(BeFalse())
		v3.Set(0, value.DefaultEpsilon*2, 0)
		Expect(v3.Update()).To(BeTrue())
	})
})

var _ = Describe("Tag", func() {
	It("IsValid accepts every defined tag and rejects past the end", func() {
		Expect(value.TagQuatF64.IsValid()).To(BeTrue())
		Expect(value.Tag(255).IsValid()).To(BeFalse())
	})
})
