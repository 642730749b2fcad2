// Package s4err holds the closed set of sentinel errors shared by the
// DBPF and SimData decoders. Callers match against these with errors.Is;
// every package-level error wraps one of them with %w.
package s4err

import "errors"

var (
	ErrBadMagic               = errors.New("bad magic")
	ErrUnsupportedVersion     = errors.New("unsupported version")
	ErrTruncated              = errors.New("truncated")
	ErrMalformedIndex         = errors.New("malformed index")
	ErrUnsupportedCompression = errors.New("unsupported compression")
	ErrBadRefpack             = errors.New("bad refpack stream")
	ErrDeletedResource        = errors.New("deleted resource")
	ErrHashMismatch           = errors.New("hash mismatch")
	ErrSchemaMismatch         = errors.New("schema mismatch")
	ErrUnalignedReference     = errors.New("unaligned reference")
	ErrOutOfRange             = errors.New("out of range")
	ErrNoSuchColumn           = errors.New("no such column")
	ErrUnknownType            = errors.New("unknown primitive type")
	ErrBadAlignment           = errors.New("alignment must be a power of two")
	ErrResourceTooLarge       = errors.New("resource raw length does not fit in 31 bits")
	ErrInvalidRID             = errors.New("invalid resource id text form")
	ErrSeekPastEnd            = errors.New("seek past end of source")
)
