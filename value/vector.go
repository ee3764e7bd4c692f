package value

import (
	"math"

	"github.com/nabbar/netlink-sync/wire"
)

func floatTagWidth(tag Tag) Tag {
	switch tag {
	case TagVec2F16, TagVec3F16, TagQuatF16:
		return TagFloat16
	case TagVec2F32, TagVec3F32, TagQuatF32:
		return TagFloat32
	default:
		return TagFloat64
	}
}

func withinEpsilon(cur, last [4]float64, n int, eps float64) bool {
	for i := 0; i < n; i++ {
		if math.Abs(cur[i]-last[i]) > eps {
			return false
		}
	}
	return true
}

// Vector2 is the Value variant for a two-component float tuple at a
// chosen width (spec.md §3).
type Vector2 struct {
	tag       Tag
	cur, last [4]float64
	epsilon   float64
}

func NewVector2(tag Tag, x, y float64) *Vector2 {
	v := &Vector2{tag: tag, epsilon: DefaultEpsilon}
	v.cur = [4]float64{x, y}
	v.last = v.cur
	return v
}

func (v *Vector2) Tag() Tag              { return v.tag }
func (v *Vector2) Set(x, y float64)      { v.cur[0], v.cur[1] = x, y }
func (v *Vector2) Get() (float64, float64) { return v.cur[0], v.cur[1] }
func (v *Vector2) SetEpsilon(eps float64) { v.epsilon = clampEpsilon(eps) }

func (v *Vector2) Update() bool {
	if withinEpsilon(v.cur, v.last, 2, v.epsilon) {
		return false
	}
	v.last = v.cur
	return true
}

func (v *Vector2) Read(r *wire.Reader) error {
	elem := floatTagWidth(v.tag)
	for i := 0; i < 2; i++ {
		f, err := readFloat(r, elem)
		if err != nil {
			return err
		}
		v.cur[i] = f
	}
	v.last = v.cur
	return nil
}

func (v *Vector2) Write(w *wire.Writer) {
	elem := floatTagWidth(v.tag)
	for i := 0; i < 2; i++ {
		writeFloat(w, elem, v.cur[i])
	}
}

// Vector3 is the Value variant for a three-component float tuple at a
// chosen width (spec.md §3).
type Vector3 struct {
	tag       Tag
	cur, last [4]float64
	epsilon   float64
}

func NewVector3(tag Tag, x, y, z float64) *Vector3 {
	v := &Vector3{tag: tag, epsilon: DefaultEpsilon}
	v.cur = [4]float64{x, y, z}
	v.last = v.cur
	return v
}

func (v *Vector3) Tag() Tag                      { return v.tag }
func (v *Vector3) Set(x, y, z float64)           { v.cur[0], v.cur[1], v.cur[2] = x, y, z }
func (v *Vector3) Get() (float64, float64, float64) { return v.cur[0], v.cur[1], v.cur[2] }
func (v *Vector3) SetEpsilon(eps float64)        { v.epsilon = clampEpsilon(eps) }

func (v *Vector3) Update() bool {
	if withinEpsilon(v.cur, v.last, 3, v.epsilon) {
		return false
	}
	v.last = v.cur
	return true
}

func (v *Vector3) Read(r *wire.Reader) error {
	elem := floatTagWidth(v.tag)
	for i := 0; i < 3; i++ {
		f, err := readFloat(r, elem)
		if err != nil {
			return err
		}
		v.cur[i] = f
	}
	v.last = v.cur
	return nil
}

func (v *Vector3) Write(w *wire.Writer) {
	elem := floatTagWidth(v.tag)
	for i := 0; i < 3; i++ {
		writeFloat(w, elem, v.cur[i])
	}
}

// Quaternion is the Value variant for a four-float rotation (spec.md §3).
type Quaternion struct {
	tag       Tag
	cur, last [4]float64
	epsilon   float64
}

func NewQuaternion(tag Tag, x, y, z, w float64) *Quaternion {
	q := &Quaternion{tag: tag, epsilon: DefaultEpsilon}
	q.cur = [4]float64{x, y, z, w}
	q.last = q.cur
	return q
}

func (v *Quaternion) Tag() Tag { return v.tag }
func (v *Quaternion) Set(x, y, z, w float64) {
	v.cur[0], v.cur[1], v.cur[2], v.cur[3] = x, y, z, w
}
func (v *Quaternion) Get() (float64, float64, float64, float64) {
	return v.cur[0], v.cur[1], v.cur[2], v.cur[3]
}
func (v *Quaternion) SetEpsilon(eps float64) { v.epsilon = clampEpsilon(eps) }

func (v *Quaternion) Update() bool {
	if withinEpsilon(v.cur, v.last, 4, v.epsilon) {
		return false
	}
	v.last = v.cur
	return true
}

func (v *Quaternion) Read(r *wire.Reader) error {
	elem := floatTagWidth(v.tag)
	for i := 0; i < 4; i++ {
		f, err := readFloat(r, elem)
		if err != nil {
			return err
		}
		v.cur[i] = f
	}
	v.last = v.cur
	return nil
}

func (v *Quaternion) Write(w *wire.Writer) {
	elem := floatTagWidth(v.tag)
	for i := 0; i < 4; i++ {
		writeFloat(w, elem, v.cur[i])
	}
}
