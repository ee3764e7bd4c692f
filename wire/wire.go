// Package wire provides the little-endian byte-level reader and writer
// shared by every framed structure in this core (§6.1: "All multibyte
// integers are little-endian, matching the file-reader/writer used for
// payloads."). It has no pack equivalent — no example repo ships a
// binary framing codec matching this exact wire format — so it is built
// directly on encoding/binary, the stdlib's own idiomatic tool for this
// (see DESIGN.md).
package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/nabbar/netlink-sync/nlerr"
)

// SeqMod is the modulus reliable sequence numbers cycle under. The
// original implementation uses 65535, not 65536 — spec.md §6.1/§9 flags
// this as a likely latent bug preserved for wire compatibility. Every
// place that needs the cycle length uses this constant instead of a
// literal so the choice stays visible and greppable.
const SeqMod = 65535

// MaxDatagramSize is the largest UDP payload this core reads in one
// Socket.Receive call (§4.2).
const MaxDatagramSize = 8192

// Writer accumulates a little-endian encoded datagram.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) Len() int {
	return w.buf.Len()
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *Writer) WriteInt8(v int8) {
	w.buf.WriteByte(byte(v))
}

func (w *Writer) WriteUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

func (w *Writer) WriteBytes(b []byte) {
	w.buf.Write(b)
}

// WriteData16 writes a u16-length-prefixed byte blob (§3 Data/String variants).
func (w *Writer) WriteData16(b []byte) {
	if len(b) > 0xFFFF {
		b = b[:0xFFFF]
	}
	w.WriteUint16(uint16(len(b)))
	w.buf.Write(b)
}

// Reader consumes a little-endian encoded datagram, returning
// nlerr.KindInvalidProtocolFrame on any short read.
type Reader struct {
	r   *bytes.Reader
	src string
}

// NewReader wraps a received datagram for decoding. src names the
// command/field context for error messages.
func NewReader(b []byte, src string) *Reader {
	return &Reader{r: bytes.NewReader(b), src: src}
}

func (r *Reader) Remaining() int {
	return r.r.Len()
}

func (r *Reader) frameErr(field string, err error) error {
	return nlerr.Wrap(nlerr.KindInvalidProtocolFrame, err, "%s: short read decoding %s", r.src, field)
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, r.frameErr("uint8", err)
	}
	return b, nil
}

func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

func (r *Reader) ReadUint16() (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, r.frameErr("uint16", err)
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadUint32() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, r.frameErr("uint32", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r.r, b[:]); err != nil {
		return 0, r.frameErr("uint64", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return nil, r.frameErr("bytes", err)
	}
	return b, nil
}

// ReadData16 reads a u16-length-prefixed byte blob.
func (r *Reader) ReadData16() ([]byte, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	return r.ReadBytes(int(n))
}

// ReadRest returns every remaining byte (used for the unreliable Message
// payload, whose length is implicit in the datagram length, §6.1).
func (r *Reader) ReadRest() []byte {
	b := make([]byte, r.r.Len())
	_, _ = r.r.Read(b)
	return b
}

// SeqInWindow reports whether seq lies in the half-open window
// [start, start+size) under modulo SeqMod arithmetic (§6.1, §8 property 7).
func SeqInWindow(seq, start uint16, size int) bool {
	diff := (int(seq) - int(start) + SeqMod) % SeqMod
	return diff < size
}

// SeqAdd returns (seq + delta) mod SeqMod.
func SeqAdd(seq uint16, delta int) uint16 {
	return uint16((int(seq) + delta) % SeqMod)
}
