// Package refpack decodes the RefPack LZ77-style compression variant used
// by DBPF resources (compression majors 0xFFFF and 0xFFFE). Encoding is
// out of scope: the writer always stores resources via deflate instead.
package refpack

import (
	"fmt"

	"github.com/xyproto/s4pack/internal/s4err"
)

// Decode decompresses a RefPack stream. The first two bytes are a small
// header: byte 0 is a flag bitfield, byte 1 must be 0xFB. If bit 7 of the
// flag byte is set, the next four bytes give the output length
// big-endian; otherwise the next three bytes do. What follows is a
// sequence of control records, each copying some run of literal bytes
// from the input and then some run of already-produced output bytes from
// a computed back-reference offset.
func Decode(in []byte) ([]byte, error) {
	if len(in) < 2 {
		return nil, fmt.Errorf("refpack: stream shorter than header: %w", s4err.ErrTruncated)
	}
	flags := in[0]
	if in[1] != 0xFB {
		return nil, fmt.Errorf("refpack: byte 1 = %#x, want 0xfb: %w", in[1], s4err.ErrBadRefpack)
	}

	pos := 2
	sizeBytes := 3
	if flags&0x80 != 0 {
		sizeBytes = 4
	}
	if len(in) < pos+sizeBytes {
		return nil, fmt.Errorf("refpack: truncated output-length field: %w", s4err.ErrTruncated)
	}
	outLen := 0
	for i := 0; i < sizeBytes; i++ {
		outLen = (outLen << 8) | int(in[pos])
		pos++
	}

	out := make([]byte, outLen)
	outPos := 0

	for pos < len(in) {
		c0 := in[pos]
		pos++

		var numLiteral, numCopy, offset int

		switch {
		case c0 <= 0x7F:
			if pos >= len(in) {
				return nil, fmt.Errorf("refpack: truncated control record: %w", s4err.ErrTruncated)
			}
			c1 := in[pos]
			pos++
			numLiteral = int(c0 & 0x03)
			numCopy = int((c0&0x1C)>>2) + 3
			offset = (int(c0&0x60) << 3) + int(c1)

		case c0 <= 0xBF:
			if pos+1 >= len(in) {
				return nil, fmt.Errorf("refpack: truncated control record: %w", s4err.ErrTruncated)
			}
			c1, c2 := in[pos], in[pos+1]
			pos += 2
			numLiteral = int((c1 & 0xC0) >> 6)
			numCopy = int(c0&0x3F) + 4
			offset = (int(c1&0x3F) << 8) + int(c2)

		case c0 <= 0xDF:
			if pos+2 >= len(in) {
				return nil, fmt.Errorf("refpack: truncated control record: %w", s4err.ErrTruncated)
			}
			c1, c2, c3 := in[pos], in[pos+1], in[pos+2]
			pos += 3
			numLiteral = int(c0 & 0x03)
			numCopy = (int(c0&0x0C) << 6) + int(c3) + 5
			offset = (int(c0&0x10) << 12) + (int(c1) << 8) + int(c2)

		case c0 <= 0xFB:
			numLiteral = (int(c0&0x1F) << 2) + 4
			numCopy = 0

		default: // 0xFC-0xFF
			numLiteral = int(c0 & 0x03)
			numCopy = 0
		}

		if pos+numLiteral > len(in) {
			return nil, fmt.Errorf("refpack: literal run of %d bytes runs past input: %w", numLiteral, s4err.ErrTruncated)
		}
		if outPos+numLiteral > len(out) {
			return nil, fmt.Errorf("refpack: literal run of %d bytes overruns output: %w", numLiteral, s4err.ErrBadRefpack)
		}
		copy(out[outPos:outPos+numLiteral], in[pos:pos+numLiteral])
		pos += numLiteral
		outPos += numLiteral

		if numCopy > 0 {
			if outPos-1-offset < 0 {
				return nil, fmt.Errorf("refpack: back-reference offset %d before start of output at position %d: %w", offset, outPos, s4err.ErrBadRefpack)
			}
			if outPos+numCopy > len(out) {
				return nil, fmt.Errorf("refpack: back-reference run of %d bytes overruns output: %w", numCopy, s4err.ErrBadRefpack)
			}
			// Byte-at-a-time: back-references may overlap the region
			// being written (a run can repeat a pattern shorter than
			// itself), so a block copy() is not equivalent here.
			for i := 0; i < numCopy; i++ {
				out[outPos] = out[outPos-1-offset]
				outPos++
			}
		}
	}

	if outPos != outLen {
		return nil, fmt.Errorf("refpack: produced %d bytes, header declared %d: %w", outPos, outLen, s4err.ErrBadRefpack)
	}
	return out, nil
}
