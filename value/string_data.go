package value

import "github.com/nabbar/netlink-sync/wire"

// String is the Value variant for UTF-8 text, length-prefixed with a
// 16-bit length (spec.md §3).
type String struct {
	cur, last string
}

func NewString(initial string) *String {
	return &String{cur: initial, last: initial}
}

func (v *String) Tag() Tag { return TagString }

func (v *String) Set(s string) { v.cur = s }
func (v *String) Get() string  { return v.cur }

// Update implements the string change-detection rule: compare
// equal-or-not (spec.md §3).
func (v *String) Update() bool {
	if v.cur == v.last {
		return false
	}
	v.last = v.cur
	return true
}

func (v *String) Read(r *wire.Reader) error {
	b, err := r.ReadData16()
	if err != nil {
		return err
	}
	v.cur, v.last = string(b), string(b)
	return nil
}

func (v *String) Write(w *wire.Writer) {
	w.WriteData16([]byte(v.cur))
}

// Data is the Value variant for opaque length-prefixed bytes (spec.md §3).
type Data struct {
	cur, last []byte
}

func NewData(initial []byte) *Data {
	b := append([]byte(nil), initial...)
	return &Data{cur: b, last: append([]byte(nil), b...)}
}

func (v *Data) Tag() Tag { return TagData }

func (v *Data) Set(b []byte) { v.cur = append([]byte(nil), b...) }
func (v *Data) Get() []byte  { return v.cur }

// Update implements the data change-detection rule: compare equal-or-not
// (spec.md §3).
func (v *Data) Update() bool {
	if bytesEqual(v.cur, v.last) {
		return false
	}
	v.last = append([]byte(nil), v.cur...)
	return true
}

func (v *Data) Read(r *wire.Reader) error {
	b, err := r.ReadData16()
	if err != nil {
		return err
	}
	v.cur, v.last = b, append([]byte(nil), b...)
	return nil
}

func (v *Data) Write(w *wire.Writer) {
	w.WriteData16(v.cur)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
