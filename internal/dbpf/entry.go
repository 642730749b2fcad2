package dbpf

import "github.com/xyproto/s4pack/internal/rid"

// deletedCompressionMajor marks an index slot as a tombstone: present in
// the index's entry count, hidden from enumeration.
const deletedCompressionMajor = 0xFFE0

// Locator points at a resource's bytes within the archive.
type Locator struct {
	Offset        uint32
	RawLen        uint32
	CompressionMajor uint16
	CompressionMinor uint16
}

// Deleted reports whether this locator marks a tombstoned entry.
func (l Locator) Deleted() bool {
	return l.CompressionMajor == deletedCompressionMajor
}

// Entry is one index slot: an RID, its locator, and its decompressed
// size as recorded in the index (independent of RawLen, the compressed
// on-disk size).
type Entry struct {
	ID               rid.RID
	Locator          Locator
	DecompressedSize uint32
}
