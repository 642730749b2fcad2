package cursor

import "encoding/binary"

// Writer is an append-only little-endian byte buffer, the counterpart to
// Reader used by dbpf.Writer and anything else that has to emit the
// binary formats Reader parses.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes returns the accumulated buffer. The returned slice aliases the
// Writer's internal storage.
func (w *Writer) Bytes() []byte { return w.buf }

// PutRaw appends b verbatim.
func (w *Writer) PutRaw(b []byte) {
	w.buf = append(w.buf, b...)
}

// PutZero appends n zero bytes.
func (w *Writer) PutZero(n int) {
	w.buf = append(w.buf, make([]byte, n)...)
}

func (w *Writer) PutU8(v uint8)   { w.buf = append(w.buf, v) }
func (w *Writer) PutI8(v int8)    { w.PutU8(uint8(v)) }

func (w *Writer) PutU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *Writer) PutI16(v int16) { w.PutU16(uint16(v)) }

func (w *Writer) PutU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *Writer) PutI32(v int32) { w.PutU32(uint32(v)) }

func (w *Writer) PutU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *Writer) PutI64(v int64) { w.PutU64(uint64(v)) }

// PutStrZ appends s followed by a NUL terminator.
func (w *Writer) PutStrZ(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// PatchU32 overwrites the 4 bytes at offset with v, for backpatching a
// field once the rest of the buffer (and therefore its layout) is known.
func (w *Writer) PatchU32(offset int, v uint32) {
	binary.LittleEndian.PutUint32(w.buf[offset:offset+4], v)
}
