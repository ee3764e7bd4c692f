package value

import "github.com/nabbar/netlink-sync/nlerr"

// New constructs a zero-valued Value for the given wire tag, ready for
// Read to decode into, for callers that must materialize a variant from
// its tag before they have its payload.
func New(tag Tag) (Value, error) {
	switch tag {
	case TagSint8, TagUint8, TagSint16, TagUint16, TagSint32, TagUint32, TagSint64, TagUint64:
		return NewInteger(tag, 0), nil

	case TagFloat16, TagFloat32, TagFloat64:
		return NewFloat(tag, 0), nil

	case TagString:
		return NewString(""), nil

	case TagData:
		return NewData(nil), nil

	case TagPoint2Sint8, TagPoint2Uint8, TagPoint2Sint16, TagPoint2Uint16,
		TagPoint2Sint32, TagPoint2Uint32, TagPoint2Sint64, TagPoint2Uint64:
		return NewPoint2(tag, 0, 0), nil

	case TagPoint3Sint8, TagPoint3Uint8, TagPoint3Sint16, TagPoint3Uint16,
		TagPoint3Sint32, TagPoint3Uint32, TagPoint3Sint64, TagPoint3Uint64:
		return NewPoint3(tag, 0, 0, 0), nil

	case TagVec2F16, TagVec2F32, TagVec2F64:
		return NewVector2(tag, 0, 0), nil

	case TagVec3F16, TagVec3F32, TagVec3F64:
		return NewVector3(tag, 0, 0, 0), nil

	case TagQuatF16, TagQuatF32, TagQuatF64:
		return NewQuaternion(tag, 0, 0, 0, 1), nil

	default:
		return nil, nlerr.New(nlerr.KindInvalidProtocolFrame, "unknown value tag %d", tag)
	}
}
