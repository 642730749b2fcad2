// Package dbpf implements the DBPF archive container: header parsing,
// lazy index scanning, content fetch (uncompressed / RefPack / deflate),
// and a writer that lays out resources and reconstructs the index.
//
// File layout (96-byte header region, offsets little-endian):
//
//	0x00  4  magic "DBPF"
//	0x04  4  file_version_major  (=2)
//	0x08  4  file_version_minor  (=1)
//	0x0C  4  user_version_major
//	0x10  4  user_version_minor
//	0x14  4  unused
//	0x18  4  ctime (seconds since epoch)
//	0x1C  4  mtime
//	0x20  4  unused
//	0x24  4  index_record_entry_count
//	0x28  4  index_record_pos_low
//	0x2C  4  index_record_size
//	0x30 16  reserved
//	0x40  4  index_record_pos_high  (preferred if non-zero)
//	0x44 28  reserved (zeroed on write)
package dbpf

import (
	"fmt"

	"github.com/xyproto/s4pack/internal/cursor"
	"github.com/xyproto/s4pack/internal/s4err"
)

const HeaderSize = 96

var magic = [4]byte{'D', 'B', 'P', 'F'}

// Header is the parsed fixed 96-byte DBPF header region.
type Header struct {
	FileVersionMajor, FileVersionMinor uint32
	UserVersionMajor, UserVersionMinor uint32
	CTime, MTime                      uint32
	IndexCount                        uint32
	IndexPosLow, IndexSize            uint32
	IndexPosHigh                      uint32
}

// IndexPos resolves the two candidate index positions: the high 32-bit
// position wins if it is non-zero, otherwise the low one is used.
func (h Header) IndexPos() uint32 {
	if h.IndexPosHigh != 0 {
		return h.IndexPosHigh
	}
	return h.IndexPosLow
}

// ReadHeader parses and validates the header at the current cursor
// position (the caller is expected to have seeked to 0).
func ReadHeader(c *cursor.Reader) (Header, error) {
	var h Header

	magicBytes, err := c.Raw(4)
	if err != nil {
		return h, fmt.Errorf("dbpf: read magic: %w", err)
	}
	if [4]byte(magicBytes) != magic {
		return h, fmt.Errorf("dbpf: magic %q: %w", magicBytes, s4err.ErrBadMagic)
	}

	h.FileVersionMajor, err = c.U32()
	if err != nil {
		return h, err
	}
	h.FileVersionMinor, err = c.U32()
	if err != nil {
		return h, err
	}
	if h.FileVersionMajor != 2 || h.FileVersionMinor != 1 {
		return h, fmt.Errorf("dbpf: file version %d.%d: %w", h.FileVersionMajor, h.FileVersionMinor, s4err.ErrUnsupportedVersion)
	}

	if h.UserVersionMajor, err = c.U32(); err != nil {
		return h, err
	}
	if h.UserVersionMinor, err = c.U32(); err != nil {
		return h, err
	}
	if _, err = c.U32(); err != nil { // unused
		return h, err
	}
	if h.CTime, err = c.U32(); err != nil {
		return h, err
	}
	if h.MTime, err = c.U32(); err != nil {
		return h, err
	}
	if _, err = c.U32(); err != nil { // unused
		return h, err
	}
	if h.IndexCount, err = c.U32(); err != nil {
		return h, err
	}
	if h.IndexPosLow, err = c.U32(); err != nil {
		return h, err
	}
	if h.IndexSize, err = c.U32(); err != nil {
		return h, err
	}
	if _, err = c.Raw(16); err != nil { // reserved
		return h, err
	}
	if h.IndexPosHigh, err = c.U32(); err != nil {
		return h, err
	}
	if _, err = c.Raw(28); err != nil { // reserved
		return h, err
	}

	if h.IndexPos() == 0 && h.IndexCount != 0 {
		return h, fmt.Errorf("dbpf: index_count=%d but index_pos=0: %w", h.IndexCount, s4err.ErrMalformedIndex)
	}

	return h, nil
}

// WriteHeader appends the 96-byte header region to w, in the same field
// order ReadHeader expects.
func WriteHeader(w *cursor.Writer, h Header) {
	w.PutRaw(magic[:])
	w.PutU32(h.FileVersionMajor)
	w.PutU32(h.FileVersionMinor)
	w.PutU32(h.UserVersionMajor)
	w.PutU32(h.UserVersionMinor)
	w.PutU32(0) // unused
	w.PutU32(h.CTime)
	w.PutU32(h.MTime)
	w.PutU32(0) // unused
	w.PutU32(h.IndexCount)
	w.PutU32(h.IndexPosLow)
	w.PutU32(h.IndexSize)
	w.PutZero(16) // reserved
	w.PutU32(h.IndexPosHigh)
	w.PutZero(28) // reserved
}
