package simdata

import (
	"fmt"
	"sync"

	"github.com/xyproto/s4pack/internal/s4err"
)

// Ref is a lazily-resolved OBJECT or VECTOR reference: an absolute file
// offset plus a row count (1 for a non-null OBJECT, 0 for a null one,
// the stored count for VECTOR),
// resolved against the owning Document's table set on first access and
// memoized afterward. Cycles between rows are fine — resolution only
// walks table metadata, never another row's value, so there is no
// recursion to bottom out.
type Ref struct {
	doc    *Document
	offset uint32
	count  uint32

	once  sync.Once
	table *Table
	start int
	err   error
}

func newRef(doc *Document, offset, count uint32) *Ref {
	return &Ref{doc: doc, offset: offset, count: count}
}

func (r *Ref) resolve() {
	r.once.Do(func() {
		if r.count == 0 {
			// A null-offset, zero-count VECTOR denotes empty with no
			// table to resolve against at all (§8 boundary behavior).
			return
		}
		r.table, r.start, r.err = resolveReference(r.doc, r.offset, int(r.count))
	})
}

// Table returns the table the reference points into, or nil for an
// empty (count-0) VECTOR.
func (r *Ref) Table() (*Table, error) {
	r.resolve()
	return r.table, r.err
}

// Count returns the number of rows this reference spans (1 for a
// non-null OBJECT, 0 for a null OBJECT, the stored VECTOR element count
// otherwise).
func (r *Ref) Count() uint32 { return r.count }

// Rows returns the referenced contiguous row slice, for a reference into
// a schema-bearing table.
func (r *Ref) Rows() ([]*Row, error) {
	r.resolve()
	if r.err != nil {
		return nil, r.err
	}
	if r.count == 0 {
		return nil, nil
	}
	if r.table.Schema == nil {
		return nil, fmt.Errorf("simdata: ref: table %q is schema-less, has no rows", r.table.Name)
	}
	return r.table.Rows[r.start : r.start+int(r.count)], nil
}

// Values returns the referenced contiguous value slice, for a reference
// into a schema-less table.
func (r *Ref) Values() ([]Value, error) {
	r.resolve()
	if r.err != nil {
		return nil, r.err
	}
	if r.count == 0 {
		return nil, nil
	}
	if r.table.Schema != nil {
		return nil, fmt.Errorf("simdata: ref: table %q is schema-bearing, has no bare values", r.table.Name)
	}
	return r.table.Values[r.start : r.start+int(r.count)], nil
}

// resolveReference implements §4.4.2: find the unique table whose row
// region contains p, verify alignment and range.
func resolveReference(doc *Document, p uint32, n int) (*Table, int, error) {
	for _, t := range doc.Tables {
		if t.RowCount == 0 || t.RowSize == 0 {
			continue
		}
		regionStart := t.RowPos
		regionEnd := t.RowPos + t.RowSize*t.RowCount
		if p < regionStart || p >= regionEnd {
			continue
		}
		delta := p - regionStart
		if delta%t.RowSize != 0 {
			return nil, 0, fmt.Errorf("simdata: reference at %#x into table %q row size %d: %w", p, t.Name, t.RowSize, s4err.ErrUnalignedReference)
		}
		k := int(delta / t.RowSize)
		if k+n > int(t.RowCount) {
			return nil, 0, fmt.Errorf("simdata: reference at %#x: rows [%d,%d) exceed table %q row count %d: %w", p, k, k+n, t.Name, t.RowCount, s4err.ErrOutOfRange)
		}
		return t, k, nil
	}
	return nil, 0, fmt.Errorf("simdata: reference at %#x: %w", p, s4err.ErrOutOfRange)
}
