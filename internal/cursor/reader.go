// Package cursor is the byte cursor every other package is written
// against: a positionable view over a byte slice with little-endian
// fixed-width reads, raw slicing, scoped save/restore, alignment,
// null-terminated strings and the DBPF/SimData self-relative 32-bit
// offset primitive (off32).
package cursor

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/xyproto/s4pack/internal/s4err"
)

// Reader is a positionable view over an in-memory byte slice. DBPF
// archives and SimData resources are always small enough to buffer
// whole, so unlike a streaming reader, Reader owns the entire backing
// slice and supports arbitrary seeks and relative-offset reads without
// re-fetching.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for reading starting at position 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// FromFile reads the whole file at path into memory and wraps it.
func FromFile(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cursor: read %s: %w", path, err)
	}
	return NewReader(data), nil
}

// Len returns the length of the backing slice.
func (r *Reader) Len() int { return len(r.data) }

// Tell returns the current position.
func (r *Reader) Tell() int { return r.pos }

// Seek moves the position to p. p may equal Len() (one past the end);
// anything greater is an error.
func (r *Reader) Seek(p int) error {
	if p < 0 || p > len(r.data) {
		return fmt.Errorf("cursor: seek to %d (len %d): %w", p, len(r.data), s4err.ErrSeekPastEnd)
	}
	r.pos = p
	return nil
}

// Raw reads and returns the next n bytes, advancing the position. The
// returned slice aliases the backing data and must not be mutated.
func (r *Reader) Raw(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("cursor: read %d bytes at %d (len %d): %w", n, r.pos, len(r.data), s4err.ErrTruncated)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) U8() (uint8, error) {
	b, err := r.Raw(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) I8() (int8, error) {
	v, err := r.U8()
	return int8(v), err
}

func (r *Reader) U16() (uint16, error) {
	b, err := r.Raw(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

func (r *Reader) U32() (uint32, error) {
	b, err := r.Raw(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

func (r *Reader) U64() (uint64, error) {
	b, err := r.Raw(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

// Off32 reads a self-relative 32-bit offset: the position at which it is
// read is added to the signed value just read. The sentinel value
// math.MinInt32 means absent, reported via present=false.
func (r *Reader) Off32() (absolute int, present bool, err error) {
	base := r.pos
	v, err := r.I32()
	if err != nil {
		return 0, false, err
	}
	if v == math.MinInt32 {
		return 0, false, nil
	}
	return base + int(v), true, nil
}

// Align rounds the position up to the next multiple of n, which must be
// a power of two.
func (r *Reader) Align(n int) error {
	if n <= 0 || n&(n-1) != 0 {
		return fmt.Errorf("cursor: align(%d): %w", n, s4err.ErrBadAlignment)
	}
	p := (r.pos + n - 1) &^ (n - 1)
	return r.Seek(p)
}

// ZStr reads bytes up to and including a NUL terminator, returning the
// bytes without the terminator. It fails if EOF is reached before a NUL.
func (r *Reader) ZStr() ([]byte, error) {
	start := r.pos
	for i := r.pos; i < len(r.data); i++ {
		if r.data[i] == 0 {
			out := r.data[start:i]
			r.pos = i + 1
			return out, nil
		}
	}
	r.pos = len(r.data)
	return nil, fmt.Errorf("cursor: zstr: no NUL before EOF: %w", s4err.ErrTruncated)
}

// RelStr reads an Off32, and if present, seeks there, reads a
// null-terminated string, and restores the original position.
func (r *Reader) RelStr() (s []byte, present bool, err error) {
	off, present, err := r.Off32()
	if err != nil || !present {
		return nil, present, err
	}
	err = r.WithPos(off, func() error {
		var innerErr error
		s, innerErr = r.ZStr()
		return innerErr
	})
	return s, true, err
}

// WithPos saves the current position, seeks to p (unless p is -1, in
// which case it is a pure save/restore), runs fn, and restores the saved
// position unconditionally — including when fn or the seek itself fails.
// This is the scoped acquisition primitive every relative-offset read is
// built on (see package doc); it must survive early error returns.
func (r *Reader) WithPos(p int, fn func() error) error {
	saved := r.pos
	defer func() { r.pos = saved }()
	if p != -1 {
		if err := r.Seek(p); err != nil {
			return err
		}
	}
	return fn()
}
