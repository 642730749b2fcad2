package dbpf

import (
	"fmt"
	"iter"

	"github.com/xyproto/s4pack/internal/cursor"
	"github.com/xyproto/s4pack/internal/rid"
	"github.com/xyproto/s4pack/internal/s4err"
)

// Index flag bits: a field is shared across all entries (and appears
// once, immediately after the flags word) when its bit is set; otherwise
// every entry repeats that field.
const (
	flagTypeShared        = 1 << 0
	flagGroupShared       = 1 << 1
	flagInstanceHighShared = 1 << 2
)

// Scanner lazily decodes the index of a DBPF archive.
type Scanner struct {
	c      *cursor.Reader
	header Header
	err    error
}

// Err returns the first error encountered by the most recent Scan, if
// the iteration stopped early because of one (mirroring bufio.Scanner:
// range-over-func iterators have no return value of their own, so a
// scan that fails mid-stream records it here instead of panicking or
// silently truncating).
func (s *Scanner) Err() error {
	return s.err
}

// NewScanner validates the header's index geometry and returns a Scanner
// ready to enumerate entries.
func NewScanner(c *cursor.Reader, h Header) (*Scanner, error) {
	if h.IndexPos() == 0 {
		if h.IndexCount != 0 {
			return nil, fmt.Errorf("dbpf: index_count=%d with index_pos=0: %w", h.IndexCount, s4err.ErrMalformedIndex)
		}
		return &Scanner{c: c, header: h}, nil
	}
	end := int(h.IndexPos()) + int(h.IndexSize)
	if end > c.Len() {
		return nil, fmt.Errorf("dbpf: index region [%d,%d) exceeds file length %d: %w", h.IndexPos(), end, c.Len(), s4err.ErrMalformedIndex)
	}
	return &Scanner{c: c, header: h}, nil
}

// Scan returns a range-over-func iterator of the non-deleted entries
// matching filter (nil matches everything), in stored file order. The
// scan runs inside a scoped cursor save/restore, and every yielded entry
// is wrapped in another, so the scan can be safely interleaved with
// content fetches that borrow the same cursor.
func (s *Scanner) Scan(filter rid.Filter) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		s.err = nil
		if s.header.IndexPos() == 0 {
			return
		}
		s.err = s.c.WithPos(int(s.header.IndexPos()), func() error {
			flags, err := s.c.U32()
			if err != nil {
				return err
			}

			var sharedType, sharedGroup, sharedInstanceHigh uint32
			if flags&flagTypeShared != 0 {
				if sharedType, err = s.c.U32(); err != nil {
					return err
				}
			}
			if flags&flagGroupShared != 0 {
				if sharedGroup, err = s.c.U32(); err != nil {
					return err
				}
			}
			if flags&flagInstanceHighShared != 0 {
				if sharedInstanceHigh, err = s.c.U32(); err != nil {
					return err
				}
			}

			for i := uint32(0); i < s.header.IndexCount; i++ {
				entry, err := s.readEntry(flags, sharedType, sharedGroup, sharedInstanceHigh)
				if err != nil {
					return err
				}
				if entry.Locator.Deleted() {
					continue
				}
				if filter != nil && !filter.Matches(entry.ID) {
					continue
				}
				more := true
				s.c.WithPos(-1, func() error {
					more = yield(entry)
					return nil
				})
				if !more {
					return nil
				}
			}
			return nil
		})
	}
}

func (s *Scanner) readEntry(flags, sharedType, sharedGroup, sharedInstanceHigh uint32) (Entry, error) {
	var (
		entryType, entryGroup, instanceHigh uint32
		err                                 error
	)

	if flags&flagTypeShared != 0 {
		entryType = sharedType
	} else if entryType, err = s.c.U32(); err != nil {
		return Entry{}, err
	}
	if flags&flagGroupShared != 0 {
		entryGroup = sharedGroup
	} else if entryGroup, err = s.c.U32(); err != nil {
		return Entry{}, err
	}
	if flags&flagInstanceHighShared != 0 {
		instanceHigh = sharedInstanceHigh
	} else if instanceHigh, err = s.c.U32(); err != nil {
		return Entry{}, err
	}

	instanceLow, err := s.c.U32()
	if err != nil {
		return Entry{}, err
	}
	offset, err := s.c.U32()
	if err != nil {
		return Entry{}, err
	}
	rawLen, err := s.c.U32()
	if err != nil {
		return Entry{}, err
	}
	decompressedSize, err := s.c.U32()
	if err != nil {
		return Entry{}, err
	}

	var major, minor uint16
	if rawLen&0x80000000 != 0 {
		if major, err = s.c.U16(); err != nil {
			return Entry{}, err
		}
		if minor, err = s.c.U16(); err != nil {
			return Entry{}, err
		}
	} else {
		major, minor = 0, 1
	}
	rawLen &^= 0x80000000

	instance := uint64(instanceHigh)<<32 | uint64(instanceLow)

	return Entry{
		ID: rid.RID{Group: entryGroup, Instance: instance, Type: entryType},
		Locator: Locator{
			Offset:           offset,
			RawLen:           rawLen,
			CompressionMajor: major,
			CompressionMinor: minor,
		},
		DecompressedSize: decompressedSize,
	}, nil
}

// ScanAll materializes Scan's results into a slice, for callers that
// want the whole index at once rather than an iterator.
func (s *Scanner) ScanAll(filter rid.Filter) []Entry {
	var out []Entry
	for e := range s.Scan(filter) {
		out = append(out, e)
	}
	return out
}
