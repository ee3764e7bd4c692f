package value

import "github.com/nabbar/netlink-sync/wire"

// Point2 is the Value variant for a two-component integer tuple at a
// chosen width/signedness (spec.md §3).
type Point2 struct {
	tag        Tag
	cur, last  [2]uint64
}

func NewPoint2(tag Tag, x, y uint64) *Point2 {
	w := widthOf(tag)
	p := [2]uint64{truncate(x, w), truncate(y, w)}
	return &Point2{tag: tag, cur: p, last: p}
}

func (v *Point2) Tag() Tag { return v.tag }

func (v *Point2) Set(x, y uint64) {
	w := widthOf(v.tag)
	v.cur = [2]uint64{truncate(x, w), truncate(y, w)}
}

func (v *Point2) Get() (uint64, uint64) { return v.cur[0], v.cur[1] }

func (v *Point2) Update() bool {
	if v.cur == v.last {
		return false
	}
	v.last = v.cur
	return true
}

func (v *Point2) Read(r *wire.Reader) error {
	w := widthOf(v.tag)
	for i := range v.cur {
		raw, err := readIntWidth(r, w)
		if err != nil {
			return err
		}
		v.cur[i] = raw
	}
	v.last = v.cur
	return nil
}

func (v *Point2) Write(w *wire.Writer) {
	width := widthOf(v.tag)
	for _, c := range v.cur {
		writeIntWidth(w, c, width)
	}
}

// Point3 is the Value variant for a three-component integer tuple at a
// chosen width/signedness (spec.md §3).
type Point3 struct {
	tag       Tag
	cur, last [3]uint64
}

func NewPoint3(tag Tag, x, y, z uint64) *Point3 {
	w := widthOf(tag)
	p := [3]uint64{truncate(x, w), truncate(y, w), truncate(z, w)}
	return &Point3{tag: tag, cur: p, last: p}
}

func (v *Point3) Tag() Tag { return v.tag }

func (v *Point3) Set(x, y, z uint64) {
	w := widthOf(v.tag)
	v.cur = [3]uint64{truncate(x, w), truncate(y, w), truncate(z, w)}
}

func (v *Point3) Get() (uint64, uint64, uint64) { return v.cur[0], v.cur[1], v.cur[2] }

func (v *Point3) Update() bool {
	if v.cur == v.last {
		return false
	}
	v.last = v.cur
	return true
}

func (v *Point3) Read(r *wire.Reader) error {
	w := widthOf(v.tag)
	for i := range v.cur {
		raw, err := readIntWidth(r, w)
		if err != nil {
			return err
		}
		v.cur[i] = raw
	}
	v.last = v.cur
	return nil
}

func (v *Point3) Write(w *wire.Writer) {
	width := widthOf(v.tag)
	for _, c := range v.cur {
		writeIntWidth(w, c, width)
	}
}
