package dbpf

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zlib"

	"github.com/xyproto/s4pack/internal/cursor"
	"github.com/xyproto/s4pack/internal/rid"
	"github.com/xyproto/s4pack/internal/s4err"
)

// Writer accumulates resources and reconstructs a DBPF archive on
// Commit. It always stores content zlib-wrapped (compression major
// 0x5A42) — lossless RefPack encoding is out of scope.
type Writer struct {
	w       *cursor.Writer
	order   []rid.RID
	entries map[rid.RID]Entry
}

// NewWriter returns a Writer positioned past the reserved header region,
// ready to accept Put calls.
func NewWriter() *Writer {
	w := cursor.NewWriter()
	w.PutZero(HeaderSize)
	return &Writer{w: w, entries: make(map[rid.RID]Entry)}
}

// Put compresses content and appends it to the archive, recording (or
// replacing, last-writer-wins) the index entry for id.
func (wr *Writer) Put(id rid.RID, content []byte) error {
	var compressed bytes.Buffer
	zw, err := zlib.NewWriterLevel(&compressed, zlib.DefaultCompression)
	if err != nil {
		return fmt.Errorf("dbpf: open deflate writer: %w", err)
	}
	if _, err := zw.Write(content); err != nil {
		return fmt.Errorf("dbpf: deflate %s: %w", id, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("dbpf: deflate %s: %w", id, err)
	}

	rawLen := compressed.Len()
	if rawLen > 0x7FFFFFFF {
		return fmt.Errorf("dbpf: %s: raw length %d: %w", id, rawLen, s4err.ErrResourceTooLarge)
	}

	offset := wr.w.Len()
	wr.w.PutRaw(compressed.Bytes())

	entry := Entry{
		ID: id,
		Locator: Locator{
			Offset:           uint32(offset),
			RawLen:           uint32(rawLen),
			CompressionMajor: CompressionDeflate,
			CompressionMinor: 1,
		},
		DecompressedSize: uint32(len(content)),
	}

	if _, exists := wr.entries[id]; !exists {
		wr.order = append(wr.order, id)
	}
	wr.entries[id] = entry
	return nil
}

// Commit writes the index (with no shared fields) and backpatches the
// header, returning the complete archive bytes.
func (wr *Writer) Commit() ([]byte, error) {
	indexStart := wr.w.Len()

	wr.w.PutU32(0) // flags: nothing shared
	for _, id := range wr.order {
		e := wr.entries[id]
		wr.w.PutU32(e.ID.Type)
		wr.w.PutU32(e.ID.Group)
		wr.w.PutU32(uint32(e.ID.Instance >> 32))
		wr.w.PutU32(uint32(e.ID.Instance & 0xFFFFFFFF))
		wr.w.PutU32(e.Locator.Offset)
		wr.w.PutU32(e.Locator.RawLen | 0x80000000)
		wr.w.PutU32(e.DecompressedSize)
		wr.w.PutU16(e.Locator.CompressionMajor)
		wr.w.PutU16(e.Locator.CompressionMinor)
	}
	indexSize := wr.w.Len() - indexStart

	h := Header{
		FileVersionMajor: 2,
		FileVersionMinor: 1,
		IndexCount:       uint32(len(wr.order)),
		IndexPosLow:      uint32(indexStart),
		IndexSize:        uint32(indexSize),
	}

	header := cursor.NewWriter()
	WriteHeader(header, h)
	headerBytes := header.Bytes()
	if len(headerBytes) != HeaderSize {
		return nil, fmt.Errorf("dbpf: internal error: header is %d bytes, want %d", len(headerBytes), HeaderSize)
	}
	copy(wr.w.Bytes()[:HeaderSize], headerBytes)

	return wr.w.Bytes(), nil
}
