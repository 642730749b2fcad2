package dbpf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/xyproto/s4pack/internal/cursor"
	"github.com/xyproto/s4pack/internal/refpack"
	"github.com/xyproto/s4pack/internal/rid"
	"github.com/xyproto/s4pack/internal/s4err"
)

// Compression majors recognized by Content.
const (
	CompressionNone       = 0x0000
	CompressionRefPack    = 0xFFFF
	CompressionStreamable = 0xFFFE // "streamable" RefPack; decoded identically to CompressionRefPack
	CompressionDeflate    = 0x5A42
	compressionDeletedTag = deletedCompressionMajor
)

// Archive is an opened, read-only DBPF file.
type Archive struct {
	c      *cursor.Reader
	Header Header
}

// Open parses the header of data and returns a ready-to-use Archive.
func Open(data []byte) (*Archive, error) {
	c := cursor.NewReader(data)
	if err := c.Seek(0); err != nil {
		return nil, err
	}
	h, err := ReadHeader(c)
	if err != nil {
		return nil, err
	}
	return &Archive{c: c, Header: h}, nil
}

// OpenFile reads path whole and parses it as a DBPF archive.
func OpenFile(path string) (*Archive, error) {
	c, err := cursor.FromFile(path)
	if err != nil {
		return nil, err
	}
	if err := c.Seek(0); err != nil {
		return nil, err
	}
	h, err := ReadHeader(c)
	if err != nil {
		return nil, err
	}
	return &Archive{c: c, Header: h}, nil
}

// Scanner returns a fresh Scanner over this archive's index.
func (a *Archive) Scanner() (*Scanner, error) {
	return NewScanner(a.c, a.Header)
}

// Content fetches and decompresses a resource's bytes, dispatching on its
// locator's compression major.
func (a *Archive) Content(e Entry) ([]byte, error) {
	var raw []byte
	err := a.c.WithPos(int(e.Locator.Offset), func() error {
		var innerErr error
		raw, innerErr = a.c.Raw(int(e.Locator.RawLen))
		return innerErr
	})
	if err != nil {
		return nil, fmt.Errorf("dbpf: fetch %s: %w", e.ID, err)
	}

	switch e.Locator.CompressionMajor {
	case CompressionNone:
		return raw, nil

	case CompressionRefPack, CompressionStreamable:
		out, err := refpack.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("dbpf: refpack-decode %s: %w", e.ID, err)
		}
		return out, nil

	case CompressionDeflate:
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("dbpf: inflate %s: %w", e.ID, err)
		}
		defer zr.Close()
		out := make([]byte, e.DecompressedSize)
		if _, err := io.ReadFull(zr, out); err != nil {
			return nil, fmt.Errorf("dbpf: inflate %s: %w", e.ID, err)
		}
		return out, nil

	case compressionDeletedTag:
		return nil, fmt.Errorf("dbpf: %s: %w", e.ID, s4err.ErrDeletedResource)

	default:
		return nil, fmt.Errorf("dbpf: %s: compression major %#x: %w", e.ID, e.Locator.CompressionMajor, s4err.ErrUnsupportedCompression)
	}
}

// Get scans the index for id and returns its content, or an error if the
// RID is not present.
func (a *Archive) Get(id rid.RID) ([]byte, error) {
	scanner, err := a.Scanner()
	if err != nil {
		return nil, err
	}
	for e := range scanner.Scan(id) {
		return a.Content(e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("dbpf: %s: not found", id)
}

