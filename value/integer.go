package value

import "github.com/nabbar/netlink-sync/wire"

// Integer is the Value variant for signed/unsigned 8/16/32/64-bit
// integers (spec.md §3). Current and last-sent are kept as raw bit
// patterns so unsigned 64-bit values round-trip exactly.
type Integer struct {
	tag  Tag
	cur  uint64
	last uint64
}

// NewInteger constructs an Integer value of the given wire tag. initial
// is the starting raw bit pattern (use SetInt64/SetUint64 for signed
// convenience).
func NewInteger(tag Tag, initial uint64) *Integer {
	w := widthOf(tag)
	v := truncate(initial, w)
	return &Integer{tag: tag, cur: v, last: v}
}

func (v *Integer) Tag() Tag { return v.tag }

// SetInt64 stores a signed value, truncated to this variant's width.
func (v *Integer) SetInt64(n int64) {
	v.cur = truncate(uint64(n), widthOf(v.tag))
}

// SetUint64 stores an unsigned value, truncated to this variant's width.
func (v *Integer) SetUint64(n uint64) {
	v.cur = truncate(n, widthOf(v.tag))
}

// Int64 sign-extends the raw bit pattern per this variant's width.
func (v *Integer) Int64() int64 {
	return signExtend(v.cur, widthOf(v.tag))
}

func (v *Integer) Uint64() uint64 {
	return v.cur
}

// Update implements the integer change-detection rule: compare
// equal-or-not (spec.md §3).
func (v *Integer) Update() bool {
	if v.cur == v.last {
		return false
	}
	v.last = v.cur
	return true
}

func (v *Integer) Read(r *wire.Reader) error {
	raw, err := readIntWidth(r, widthOf(v.tag))
	if err != nil {
		return err
	}
	v.cur, v.last = raw, raw
	return nil
}

func (v *Integer) Write(w *wire.Writer) {
	writeIntWidth(w, v.cur, widthOf(v.tag))
}

func signExtend(raw uint64, width int) int64 {
	if width >= 64 {
		return int64(raw)
	}
	signBit := uint64(1) << uint(width-1)
	if raw&signBit != 0 {
		return int64(raw | ^(uint64(1)<<uint(width) - 1))
	}
	return int64(raw)
}
