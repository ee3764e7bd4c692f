// Package value implements the Value variant family (spec.md §4.3, §6.1):
// a tagged sum of integer/float/string/data/point/vector/quaternion
// payloads, each with update (change detection), read and write
// operations.
//
// Modeled as an algebraic data type per spec.md §9's design note, replacing
// the original's double-dispatch visitor (debnValueVisitor / debnValue*)
// with a tag switch — the idiom the teacher's network/protocol package
// uses for its own closed tagged enum (NetworkProtocol).
package value

// Tag is the wire-format type byte. Tags are numbered contiguously with
// no gaps: sint8=0 ... float64=10, string=11, data=12, point2 13..20,
// point3 21..28, vec2 29..31, vec3 32..34, quat 35..37 (see DESIGN.md).
type Tag uint8

const (
	TagSint8 Tag = iota
	TagUint8
	TagSint16
	TagUint16
	TagSint32
	TagUint32
	TagSint64
	TagUint64
	TagFloat16
	TagFloat32
	TagFloat64
	TagString
	TagData

	TagPoint2Sint8
	TagPoint2Uint8
	TagPoint2Sint16
	TagPoint2Uint16
	TagPoint2Sint32
	TagPoint2Uint32
	TagPoint2Sint64
	TagPoint2Uint64

	TagPoint3Sint8
	TagPoint3Uint8
	TagPoint3Sint16
	TagPoint3Uint16
	TagPoint3Sint32
	TagPoint3Uint32
	TagPoint3Sint64
	TagPoint3Uint64

	TagVec2F16
	TagVec2F32
	TagVec2F64

	TagVec3F16
	TagVec3F32
	TagVec3F64

	TagQuatF16
	TagQuatF32
	TagQuatF64
)

// IsValid reports whether t is one of the defined wire tags.
// LinkReadAndVerifyAllValues does not call it: its schema check compares
// each received tag against the declared value's tag.
func (t Tag) IsValid() bool {
	return t <= TagQuatF64
}

// DefaultEpsilon is the default precision ε below which float/vector/
// quaternion changes are suppressed (spec.md §3).
const DefaultEpsilon = 0.001

// MinEpsilon is the lower clamp on ε, "a safe floating epsilon" (spec.md §3).
const MinEpsilon = 1e-6

func clampEpsilon(eps float64) float64 {
	if eps < MinEpsilon {
		return MinEpsilon
	}
	return eps
}
