package state_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/netlink-sync/state"
	"github.com/nabbar/netlink-sync/value"
	"github.com/nabbar/netlink-sync/wire"
)

type recordingHost struct {
	changed []int
}

func (h *recordingHost) StateValueChanged(index int) {
	h.changed = append(h.changed, index)
}

var _ = Describe("State", func() {
	var (
		s          *state.State
		l1, l2     *state.StateLink
		dirtyLinks []*state.StateLink
	)

	BeforeEach(func() {
		s = state.New(true)
		_, _ = s.AddValue(value.NewFloat(value.TagFloat32, 0))
		_, _ = s.AddValue(value.NewFloat(value.TagFloat32, 0))

		dirtyLinks = nil
		onDirty := func(l *state.StateLink) { dirtyLinks = append(dirtyLinks, l) }
		l1 = s.NewLink(0, onDirty)
		l2 = s.NewLink(1, onDirty)
	})

	It("marks the changed bit on every link when a value changes", func() {
		s.Value(1).(*value.Float).Set(1.5)
		Expect(s.ValueChanged(1)).To(Succeed())

		Expect(l1.ValueChangedAt(1)).To(BeTrue())
		Expect(l2.ValueChangedAt(1)).To(BeTrue())
		Expect(l1.Changed()).To(BeTrue())
		Expect(l2.Changed()).To(BeTrue())
		Expect(dirtyLinks).To(ConsistOf(l1, l2))
	})

	It("leaves the other link untouched after one link flushes", func() {
		s.Value(1).(*value.Float).Set(1.5)
		Expect(s.ValueChanged(1)).To(Succeed())

		w := wire.NewWriter()
		s.LinkWriteValuesForLink(w, l1)

		Expect(l1.ValueChangedAt(1)).To(BeFalse())
		Expect(l1.Changed()).To(BeFalse())
		Expect(l2.ValueChangedAt(1)).To(BeTrue())
		Expect(l2.Changed()).To(BeTrue())
	})

	It("does not mark a change within epsilon", func() {
		s.Value(0).(*value.Float).Set(0.0000001)
		Expect(s.ValueChanged(0)).To(Succeed())
		Expect(l1.ValueChangedAt(0)).To(BeFalse())
	})

	It("round-trips a dirty flush through LinkReadValues on the peer", func() {
		host := &recordingHost{}

		remote := state.New(false)
		_, _ = remote.AddValue(value.NewFloat(value.TagFloat32, 0))
		_, _ = remote.AddValue(value.NewFloat(value.TagFloat32, 0))
		remote.SetHost(host)
		remoteLink := remote.NewLink(0, nil)

		s.Value(1).(*value.Float).Set(1.5)
		Expect(s.ValueChanged(1)).To(Succeed())

		w := wire.NewWriter()
		s.LinkWriteValuesForLink(w, l1)

		r := wire.NewReader(w.Bytes(), "test")
		Expect(remote.LinkReadValues(r, remoteLink)).To(Succeed())

		Expect(remote.Value(1).(*value.Float).Get()).To(BeNumerically("~", 1.5, 1e-6))
		Expect(host.changed).To(Equal([]int{1}))
	})

	It("verifies schema on LinkReadAndVerifyAllValues and rejects mismatches", func() {
		w := wire.NewWriter()
		s.LinkWriteValuesWithVerify(w)

		other := state.New(false)
		_, _ = other.AddValue(value.NewFloat(value.TagFloat32, 0))
		_, _ = other.AddValue(value.NewFloat(value.TagFloat32, 0))

		r := wire.NewReader(w.Bytes(), "test")
		Expect(other.LinkReadAndVerifyAllValues(r)).To(Succeed())

		wrong := state.New(false)
		_, _ = wrong.AddValue(value.NewInteger(value.TagUint32, 0))
		_, _ = wrong.AddValue(value.NewFloat(value.TagFloat32, 0))

		r2 := wire.NewReader(w.Bytes(), "test")
		Expect(wrong.LinkReadAndVerifyAllValues(r2)).To(HaveOccurred())
	})

	It("rejects AddValue once a link has reached Up", func() {
		l1.SetLinkState(state.Up)
		_, err := s.AddValue(value.NewInteger(value.TagUint8, 0))
		Expect(err).To(HaveOccurred())
	})

	It("clears the State back-reference from every link on Close", func() {
		s.Close()
		Expect(l1.State()).To(BeNil())
		Expect(l2.State()).To(BeNil())
	})
})
