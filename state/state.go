// Package state implements State and StateLink, the linked-state
// synchronization engine (spec.md §3, §4.4, §4.5), grounded on
// debnState.cpp/debnStateLink.cpp with the cyclic back-reference
// re-architected per spec.md §9: State owns its Value list and holds
// weak handles to its links; the owning Connection owns StateLink
// lifetimes.
package state

import (
	"github.com/nabbar/netlink-sync/nlerr"
	"github.com/nabbar/netlink-sync/value"
	"github.com/nabbar/netlink-sync/wire"
)

// Host receives notifications when a remote link update changes a value
// (spec.md §6.3: State.StateValueChanged).
type Host interface {
	StateValueChanged(index int)
}

// State is an insertion-ordered sequence of Values, writable or a
// read-only remote-owned mirror (spec.md §3).
type State struct {
	values   []value.Value
	links    []*StateLink
	host     Host
	writable bool
}

// New constructs an empty State. writable states are locally authored;
// read-only states are remote-owned mirrors populated via link decode.
func New(writable bool) *State {
	return &State{writable: writable}
}

func (s *State) SetHost(h Host) { s.host = h }

func (s *State) Writable() bool { return s.writable }

func (s *State) ValueCount() int { return len(s.values) }

func (s *State) Value(index int) value.Value {
	if index < 0 || index >= len(s.values) {
		return nil
	}
	return s.values[index]
}

// AddValue appends a value variant to the State (spec.md §4.4). Existing
// StateLinks retain their dirty-bit arrays, resized to cover the new
// index. Rejected once any link has reached Up, per spec.md §4.4's note
// that additions to linked-Up states are implementation-defined.
func (s *State) AddValue(v value.Value) (int, error) {
	for _, l := range s.links {
		if l.LinkState() == Up {
			return 0, nlerr.New(nlerr.KindInvalidState, "cannot add value to a state with an established link")
		}
	}

	s.values = append(s.values, v)
	return len(s.values) - 1, nil
}

// NewLink creates a StateLink with the given identifier bound to this
// State, registers a weak back-reference for invalidation broadcast, and
// returns it. onDirty is invoked when the link's changed flag transitions
// false→true (used by Connection to maintain its dirty-links list).
func (s *State) NewLink(identifier uint16, onDirty func(*StateLink)) *StateLink {
	l := newStateLink(s, identifier, len(s.values), onDirty)
	s.links = append(s.links, l)
	return l
}

// DropLink removes a link's back-reference from this State without
// affecting the link's lifetime, which remains owned by its Connection.
func (s *State) DropLink(l *StateLink) {
	for i, ln := range s.links {
		if ln == l {
			s.links = append(s.links[:i], s.links[i+1:]...)
			return
		}
	}
}

// Close tears down this State's side of the cyclic relationship:
// every registered link has its State back-reference cleared
// (DropState, spec.md §9) before the State itself is discarded.
func (s *State) Close() {
	for _, l := range s.links {
		l.dropState()
	}
	s.links = nil
}

// ValueChanged runs the variant's change detection for index and, if it
// reports a significant change, marks index dirty on every StateLink
// (spec.md §4.4).
func (s *State) ValueChanged(index int) error {
	v := s.Value(index)
	if v == nil {
		return nlerr.New(nlerr.KindInvalidArgument, "value index %d out of range", index)
	}
	if v.Update() {
		for _, l := range s.links {
			l.SetValueChangedAt(index, true)
		}
	}
	return nil
}

// InvalidateValue marks index dirty on every StateLink (spec.md §4.4).
func (s *State) InvalidateValue(index int) {
	for _, l := range s.links {
		l.SetValueChangedAt(index, true)
	}
}

// InvalidateValueExcept marks index dirty on every StateLink but except
// (spec.md §4.4).
func (s *State) InvalidateValueExcept(index int, except *StateLink) {
	for _, l := range s.links {
		if l == except {
			continue
		}
		l.SetValueChangedAt(index, true)
	}
}

// LinkReadValues decodes a link-update value run (spec.md §4.4):
// count:u8 entries of (valueIndex:u16, payload), each marking that
// index dirty on every link except the one the update came from, then
// notifying the host.
func (s *State) LinkReadValues(r *wire.Reader, from *StateLink) error {
	count, err := r.ReadUint8()
	if err != nil {
		return err
	}

	for i := 0; i < int(count); i++ {
		idx, err := r.ReadUint16()
		if err != nil {
			return err
		}
		v := s.Value(int(idx))
		if v == nil {
			return nlerr.New(nlerr.KindInvalidProtocolFrame, "link update references value index %d out of range", idx)
		}
		if err := v.Read(r); err != nil {
			return err
		}

		s.InvalidateValueExcept(int(idx), from)
		if from != nil {
			from.SetChanged(from.HasChangedValues())
		}
		if s.host != nil {
			s.host.StateValueChanged(int(idx))
		}
	}
	return nil
}

// LinkReadAllValues decodes one payload per value in declaration order,
// used during link establishment (spec.md §4.4).
func (s *State) LinkReadAllValues(r *wire.Reader) error {
	for _, v := range s.values {
		if err := v.Read(r); err != nil {
			return err
		}
	}
	return nil
}

// LinkReadAndVerifyAllValues decodes a count-prefixed list of
// (type:u8, payload), rejecting if the count or any type disagrees with
// this State's declared schema (spec.md §4.4).
func (s *State) LinkReadAndVerifyAllValues(r *wire.Reader) error {
	count, err := r.ReadUint16()
	if err != nil {
		return err
	}
	if int(count) != len(s.values) {
		return nlerr.New(nlerr.KindInvalidProtocolFrame, "state schema mismatch: expected %d values, got %d", len(s.values), count)
	}

	for i, v := range s.values {
		tag, err := r.ReadUint8()
		if err != nil {
			return err
		}
		if value.Tag(tag) != v.Tag() {
			return nlerr.New(nlerr.KindInvalidProtocolFrame, "state schema mismatch at index %d: expected tag %d, got %d", i, v.Tag(), tag)
		}
	}

	for _, v := range s.values {
		if err := v.Read(r); err != nil {
			return err
		}
	}
	return nil
}

// LinkWriteValues serializes every value in order, with no framing
// (spec.md §4.4).
func (s *State) LinkWriteValues(w *wire.Writer) {
	for _, v := range s.values {
		v.Write(w)
	}
}

// LinkWriteValuesWithVerify serializes count:u16 then, for each value,
// type:u8 followed by its payload (spec.md §4.4).
func (s *State) LinkWriteValuesWithVerify(w *wire.Writer) {
	w.WriteUint16(uint16(len(s.values)))
	for _, v := range s.values {
		w.WriteUint8(uint8(v.Tag()))
		v.Write(w)
	}
}

// maxDirtyPerFlush is the clamp on a single LinkUpdate's per-link value
// count, imposed by the valueCount:u8 wire field (spec.md §4.4, §9).
const maxDirtyPerFlush = 255

// LinkWriteValuesForLink serializes only the values dirty for link:
// changedCount:u8 (clamped to 255) followed by (valueIndex:u16, payload)
// per dirty index in ascending order, clearing each bit written. Any
// remainder beyond the clamp stays dirty for the next tick (spec.md §4.4,
// §9).
func (s *State) LinkWriteValuesForLink(w *wire.Writer, link *StateLink) {
	indices := make([]int, 0, link.dirty.Count())
	for i, ok := link.dirty.NextSet(0); ok; i, ok = link.dirty.NextSet(i + 1) {
		indices = append(indices, int(i))
	}

	n := len(indices)
	if n > maxDirtyPerFlush {
		n = maxDirtyPerFlush
	}

	w.WriteUint8(uint8(n))
	for _, idx := range indices[:n] {
		w.WriteUint16(uint16(idx))
		s.values[idx].Write(w)
		link.dirty.Clear(uint(idx))
	}

	link.SetChanged(link.dirty.Any())
}
