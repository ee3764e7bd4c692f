package state

import "github.com/bits-and-blooms/bitset"

// LinkState is the lifecycle of a StateLink (spec.md §4.5).
type LinkState uint8

const (
	Down LinkState = iota
	Listening
	Up
)

func (s LinkState) String() string {
	switch s {
	case Down:
		return "down"
	case Listening:
		return "listening"
	case Up:
		return "up"
	default:
		return "unknown"
	}
}

// StateLink joins one State to one Connection (spec.md §3). The
// Connection owns the StateLink; the State holds only a weak
// back-reference for invalidation broadcast (spec.md §9).
type StateLink struct {
	state      *State
	identifier uint16
	linkState  LinkState
	changed    bool
	dirty      *bitset.BitSet
	onDirty    func(*StateLink)
}

func newStateLink(st *State, identifier uint16, valueCount int, onDirty func(*StateLink)) *StateLink {
	return &StateLink{
		state:      st,
		identifier: identifier,
		linkState:  Down,
		dirty:      bitset.New(uint(valueCount)),
		onDirty:    onDirty,
	}
}

// State returns the linked State, or nil once the State has dropped
// this link (DropState, spec.md §9).
func (l *StateLink) State() *State { return l.state }

func (l *StateLink) dropState() { l.state = nil }

func (l *StateLink) Identifier() uint16 { return l.identifier }

func (l *StateLink) SetIdentifier(id uint16) { l.identifier = id }

func (l *StateLink) LinkState() LinkState { return l.linkState }

func (l *StateLink) SetLinkState(ls LinkState) { l.linkState = ls }

func (l *StateLink) Changed() bool { return l.changed }

// SetChanged sets the changed flag. Transitioning false→true invokes
// onDirty so the owning Connection can append this link to its
// dirty-links list (spec.md §4.5).
func (l *StateLink) SetChanged(changed bool) {
	if changed && !l.changed && l.onDirty != nil {
		l.onDirty(l)
	}
	l.changed = changed
}

func (l *StateLink) ValueChangedAt(index int) bool {
	return l.dirty.Test(uint(index))
}

func (l *StateLink) SetValueChangedAt(index int, changed bool) {
	if changed {
		l.dirty.Set(uint(index))
	} else {
		l.dirty.Clear(uint(index))
	}
	l.SetChanged(l.dirty.Any())
}

func (l *StateLink) HasChangedValues() bool {
	return l.dirty.Any()
}

// ResetChanged clears every dirty bit and the changed flag (spec.md §4.5).
func (l *StateLink) ResetChanged() {
	l.dirty.ClearAll()
	l.changed = false
}
