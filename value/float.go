package value

import (
	"math"

	"github.com/x448/float16"

	"github.com/nabbar/netlink-sync/nlerr"
	"github.com/nabbar/netlink-sync/wire"
)

// Float is the Value variant for 16/32/64-bit IEEE floats (spec.md §3).
// Half-float conversion is delegated to x448/float16 per spec.md §4.3's
// explicit requirement for float16 encode/decode, in place of the
// original's hand-rolled half.h.
type Float struct {
	tag     Tag
	cur     float64
	last    float64
	epsilon float64
}

// NewFloat constructs a Float value with the default precision (§3).
func NewFloat(tag Tag, initial float64) *Float {
	return &Float{tag: tag, cur: initial, last: initial, epsilon: DefaultEpsilon}
}

func (v *Float) Tag() Tag { return v.tag }

func (v *Float) Set(f float64)          { v.cur = f }
func (v *Float) Get() float64           { return v.cur }
func (v *Float) SetEpsilon(eps float64) { v.epsilon = clampEpsilon(eps) }
func (v *Float) Epsilon() float64       { return v.epsilon }

// Update implements the float change-detection rule: component-wise
// absolute difference <= epsilon suppresses the change (spec.md §3).
func (v *Float) Update() bool {
	if math.Abs(v.cur-v.last) <= v.epsilon {
		return false
	}
	v.last = v.cur
	return true
}

func (v *Float) Read(r *wire.Reader) error {
	f, err := readFloat(r, v.tag)
	if err != nil {
		return err
	}
	v.cur, v.last = f, f
	return nil
}

func (v *Float) Write(w *wire.Writer) {
	writeFloat(w, v.tag, v.cur)
}

func readFloat(r *wire.Reader, tag Tag) (float64, error) {
	switch tag {
	case TagFloat16:
		bits, err := r.ReadUint16()
		if err != nil {
			return 0, err
		}
		return float64(float16.Frombits(bits).Float32()), nil
	case TagFloat32:
		bits, err := r.ReadUint32()
		if err != nil {
			return 0, err
		}
		return float64(math.Float32frombits(bits)), nil
	case TagFloat64:
		bits, err := r.ReadUint64()
		if err != nil {
			return 0, err
		}
		return math.Float64frombits(bits), nil
	default:
		return 0, nlerr.New(nlerr.KindInvalidProtocolFrame, "tag %d is not a float variant", tag)
	}
}

func writeFloat(w *wire.Writer, tag Tag, f float64) {
	switch tag {
	case TagFloat16:
		w.WriteUint16(float16.Fromfloat32(float32(f)).Bits())
	case TagFloat32:
		w.WriteUint32(math.Float32bits(float32(f)))
	case TagFloat64:
		w.WriteUint64(math.Float64bits(f))
	}
}
