package value

import (
	"github.com/nabbar/netlink-sync/nlerr"
	"github.com/nabbar/netlink-sync/wire"
)

// Value is the common interface every variant implements (spec.md §4.3):
// Update for change detection, Read/Write for the wire codec.
type Value interface {
	// Tag returns this value's wire-format type byte.
	Tag() Tag

	// Update compares the current value against the last-sent snapshot.
	// If changed beyond the variant's precision it promotes current into
	// last-sent and returns true; otherwise it returns false unchanged.
	Update() bool

	// Read decodes the current value (and promotes it into the last-sent
	// snapshot, so a freshly-read value does not immediately re-trigger
	// Update) from r per this variant's wire tag.
	Read(r *wire.Reader) error

	// Write encodes the current value per this variant's wire tag.
	Write(w *wire.Writer)
}

// widthOf returns the bit width encoded by an integer-family tag.
func widthOf(t Tag) int {
	switch t {
	case TagSint8, TagUint8, TagPoint2Sint8, TagPoint2Uint8, TagPoint3Sint8, TagPoint3Uint8:
		return 8
	case TagSint16, TagUint16, TagPoint2Sint16, TagPoint2Uint16, TagPoint3Sint16, TagPoint3Uint16:
		return 16
	case TagSint32, TagUint32, TagPoint2Sint32, TagPoint2Uint32, TagPoint3Sint32, TagPoint3Uint32:
		return 32
	case TagSint64, TagUint64, TagPoint2Sint64, TagPoint2Uint64, TagPoint3Sint64, TagPoint3Uint64:
		return 64
	default:
		return 0
	}
}

func isSignedTag(t Tag) bool {
	switch t {
	case TagSint8, TagSint16, TagSint32, TagSint64,
		TagPoint2Sint8, TagPoint2Sint16, TagPoint2Sint32, TagPoint2Sint64,
		TagPoint3Sint8, TagPoint3Sint16, TagPoint3Sint32, TagPoint3Sint64:
		return true
	default:
		return false
	}
}

// truncate masks raw to the given bit width, preserving two's-complement
// bit patterns for signed narrowing casts on write (spec.md §4.3: "narrowing
// casts on write are explicit").
func truncate(raw uint64, width int) uint64 {
	if width >= 64 {
		return raw
	}
	mask := uint64(1)<<uint(width) - 1
	return raw & mask
}

func writeIntWidth(w *wire.Writer, raw uint64, width int) {
	switch width {
	case 8:
		w.WriteUint8(uint8(raw))
	case 16:
		w.WriteUint16(uint16(raw))
	case 32:
		w.WriteUint32(uint32(raw))
	case 64:
		w.WriteUint64(raw)
	}
}

func readIntWidth(r *wire.Reader, width int) (uint64, error) {
	switch width {
	case 8:
		v, err := r.ReadUint8()
		return uint64(v), err
	case 16:
		v, err := r.ReadUint16()
		return uint64(v), err
	case 32:
		v, err := r.ReadUint32()
		return uint64(v), err
	case 64:
		return r.ReadUint64()
	default:
		return 0, nlerr.New(nlerr.KindInvalidProtocolFrame, "unsupported integer width %d", width)
	}
}
