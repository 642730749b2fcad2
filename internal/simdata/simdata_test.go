package simdata

import (
	"errors"
	"testing"

	"github.com/xyproto/s4pack/internal/s4err"
)

// scenario 4: one schema of size 8, one named table "Foo" with
// row-count 1 and one column "x" of type UINT32 at offset 0 containing
// 0xDEADBEEF.
func fooDocumentBytes() []byte {
	return []byte{
		0x44, 0x41, 0x54, 0x41, 0x01, 0x01, 0x00, 0x00, 0x28, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00,
		0x08, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80, 0xc5, 0x9d, 0x1c, 0x81,
		0x00, 0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00, 0x24, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00,
		0x34, 0x00, 0x00, 0x00, 0x13, 0x5e, 0x8f, 0x40, 0xe0, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x00,
		0x08, 0x00, 0x00, 0x00, 0x1c, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x1c, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x07, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80,
		0xef, 0xbe, 0xad, 0xde, 0x46, 0x6f, 0x6f, 0x00, 0x78, 0x00,
	}
}

func TestDecodeNamedTableSingleColumn(t *testing.T) {
	doc, err := Decode(fooDocumentBytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Errors) != 0 {
		t.Fatalf("unexpected Errors: %v", doc.Errors)
	}
	row, ok := doc.Content["Foo"]
	if !ok {
		t.Fatalf("Content missing %q: %+v", "Foo", doc.Content)
	}
	v, err := row.Get("x")
	if err != nil {
		t.Fatalf("Get(x): %v", err)
	}
	got, ok := v.(uint32)
	if !ok || got != 0xDEADBEEF {
		t.Errorf("x = %#v, want 0xDEADBEEF", v)
	}
}

func TestDecodeNameHashMismatchIsFatal(t *testing.T) {
	data := fooDocumentBytes()
	data[52] ^= 0xFF // corrupt the "Foo" table's stored name hash
	_, err := Decode(data)
	if !errors.Is(err, s4err.ErrHashMismatch) {
		t.Errorf("err = %v, want ErrHashMismatch", err)
	}
}

// scenario 5: an OBJECT reference pointing 1 byte into a row.
func objectUnalignedRefBytes() []byte {
	return []byte{
		0x44, 0x41, 0x54, 0x41, 0x01, 0x01, 0x00, 0x00, 0x28, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00,
		0x08, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x78, 0x00, 0x00, 0x00, 0xeb, 0x81, 0x8a, 0x0a,
		0x00, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x40, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00,
		0x58, 0x00, 0x00, 0x00, 0xb6, 0xdb, 0x9b, 0xe8, 0x00, 0x00, 0x00, 0x80, 0x07, 0x00, 0x00, 0x00,
		0x04, 0x00, 0x00, 0x00, 0x38, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x44, 0x00, 0x00, 0x00,
		0xeb, 0x81, 0x8a, 0x0a, 0xc4, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00,
		0x24, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x30, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x0d, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80, 0x11, 0x11, 0x11, 0x11,
		0x22, 0x22, 0x22, 0x22, 0xf9, 0xff, 0xff, 0xff, 0x54, 0x61, 0x72, 0x67, 0x65, 0x74, 0x00, 0x00,
		0x48, 0x6f, 0x6c, 0x64, 0x65, 0x72, 0x00, 0x00, 0x72, 0x65, 0x66, 0x00,
	}
}

func TestObjectReferenceUnaligned(t *testing.T) {
	doc, err := Decode(objectUnalignedRefBytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	row, ok := doc.Content["Holder"]
	if !ok {
		t.Fatalf("Content missing %q", "Holder")
	}
	v, err := row.Get("ref")
	if err != nil {
		t.Fatalf("Get(ref): %v", err)
	}
	ref, ok := v.(*Ref)
	if !ok {
		t.Fatalf("ref field is %T, want *Ref", v)
	}
	_, err = ref.Table()
	if !errors.Is(err, s4err.ErrUnalignedReference) {
		t.Errorf("Table() err = %v, want ErrUnalignedReference", err)
	}
}

// objectAbsentOffsetBytes is fooDocumentBytes with its column retyped to
// OBJECT and its row value set to the null-offset sentinel: a valid,
// spec-legal nullable reference, not malformed data.
func objectAbsentOffsetBytes() []byte {
	return []byte{
		0x44, 0x41, 0x54, 0x41, 0x01, 0x01, 0x00, 0x00, 0x28, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00,
		0x08, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80, 0xc5, 0x9d, 0x1c, 0x81,
		0x00, 0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00, 0x24, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00,
		0x34, 0x00, 0x00, 0x00, 0x13, 0x5e, 0x8f, 0x40, 0xe0, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x00,
		0x08, 0x00, 0x00, 0x00, 0x1c, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x1c, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x0d, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80,
		0x00, 0x00, 0x00, 0x80, 0x46, 0x6f, 0x6f, 0x00, 0x78, 0x00,
	}
}

// TestObjectReferenceAbsentOffsetIsSafe locks in that an OBJECT column
// with the null-offset sentinel decodes to a usable *Ref whose accessors
// report an empty reference rather than panicking on a nil *Ref.
func TestObjectReferenceAbsentOffsetIsSafe(t *testing.T) {
	doc, err := Decode(objectAbsentOffsetBytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	row, ok := doc.Content["Foo"]
	if !ok {
		t.Fatalf("Content missing %q", "Foo")
	}
	v, err := row.Get("x")
	if err != nil {
		t.Fatalf("Get(x): %v", err)
	}
	ref, ok := v.(*Ref)
	if !ok {
		t.Fatalf("x field is %T, want *Ref", v)
	}
	if ref.Count() != 0 {
		t.Errorf("Count() = %d, want 0", ref.Count())
	}
	table, err := ref.Table()
	if err != nil || table != nil {
		t.Errorf("Table() = (%v, %v), want (nil, nil)", table, err)
	}
	rows, err := ref.Rows()
	if err != nil || rows != nil {
		t.Errorf("Rows() = (%v, %v), want (nil, nil)", rows, err)
	}
	values, err := ref.Values()
	if err != nil || values != nil {
		t.Errorf("Values() = (%v, %v), want (nil, nil)", values, err)
	}
}

func vectorDocumentBytes(count uint32) []byte {
	base := []byte{
		0x44, 0x41, 0x54, 0x41, 0x01, 0x01, 0x00, 0x00, 0x28, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00,
		0x08, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80, 0xc5, 0x9d, 0x1c, 0x81,
		0x00, 0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00, 0x24, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00,
		0x38, 0x00, 0x00, 0x00, 0x69, 0x5d, 0x0c, 0x05, 0xe0, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x00,
		0x08, 0x00, 0x00, 0x00, 0x1c, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x1e, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x0e, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80,
		0x00, 0x00, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x56, 0x00, 0x76, 0x00,
	}
	out := make([]byte, len(base))
	copy(out, base)
	out[100] = byte(count)
	out[101] = byte(count >> 8)
	out[102] = byte(count >> 16)
	out[103] = byte(count >> 24)
	return out
}

func TestVectorNullOffsetZeroCountIsEmpty(t *testing.T) {
	doc, err := Decode(vectorDocumentBytes(0))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	row := doc.Content["V"]
	v, err := row.Get("v")
	if err != nil {
		t.Fatalf("Get(v): %v", err)
	}
	ref := v.(*Ref)
	if ref.Count() != 0 {
		t.Errorf("Count() = %d, want 0", ref.Count())
	}
	values, err := ref.Values()
	if err != nil {
		t.Fatalf("Values(): %v", err)
	}
	if len(values) != 0 {
		t.Errorf("Values() = %v, want empty", values)
	}
}

func TestVectorNullOffsetNonZeroCountIsMalformed(t *testing.T) {
	_, err := Decode(vectorDocumentBytes(3))
	if !errors.Is(err, s4err.ErrMalformedIndex) {
		t.Errorf("err = %v, want ErrMalformedIndex", err)
	}
}

func boolDocumentBytes(value byte) []byte {
	base := []byte{
		0x44, 0x41, 0x54, 0x41, 0x01, 0x01, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x1d, 0x00, 0x00, 0x00, 0x7d, 0x5d, 0x0c, 0x05,
		0x00, 0x00, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00, 0x00, 0x42, 0x00,
	}
	out := make([]byte, len(base))
	copy(out, base)
	out[52] = value
	return out
}

// TestBoolConventionalNotInverted documents a deliberate deviation from
// the Python source this decoder is modeled on: that source reads BOOL
// as `byte == 0` (inverted), which this decoder does not reproduce. A
// stored 1 must decode to true and a stored 0 to false.
func TestBoolConventionalNotInverted(t *testing.T) {
	doc, err := Decode(boolDocumentBytes(1))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Tables) != 1 || len(doc.Tables[0].Values) != 1 {
		t.Fatalf("unexpected table shape: %+v", doc.Tables)
	}
	if doc.Tables[0].Values[0] != true {
		t.Errorf("stored byte 1 decoded to %#v, want true", doc.Tables[0].Values[0])
	}

	doc, err = Decode(boolDocumentBytes(0))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc.Tables[0].Values[0] != false {
		t.Errorf("stored byte 0 decoded to %#v, want false", doc.Tables[0].Values[0])
	}
}

// scenario 6: FNV-1 32-bit of the empty byte string.
func TestFNV1EmptyMatchesStoredHashInSchema(t *testing.T) {
	doc, err := Decode(fooDocumentBytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	schema, ok := doc.Schemas[24]
	if !ok {
		t.Fatalf("schema at offset 24 not found: %+v", doc.Schemas)
	}
	if schema.Size != 8 {
		t.Errorf("schema size = %d, want 8", schema.Size)
	}
}

func TestRowGetSetUnknownColumn(t *testing.T) {
	doc, err := Decode(fooDocumentBytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	row := doc.Content["Foo"]
	if _, err := row.Get("nope"); !errors.Is(err, s4err.ErrNoSuchColumn) {
		t.Errorf("Get(nope) err = %v, want ErrNoSuchColumn", err)
	}
	if err := row.Set("nope", 1); !errors.Is(err, s4err.ErrNoSuchColumn) {
		t.Errorf("Set(nope) err = %v, want ErrNoSuchColumn", err)
	}
	if err := row.Set("x", uint32(7)); err != nil {
		t.Fatalf("Set(x): %v", err)
	}
	v, _ := row.Get("x")
	if v != uint32(7) {
		t.Errorf("x after Set = %#v, want 7", v)
	}
	if names := row.Names(); len(names) != 1 || names[0] != "x" {
		t.Errorf("Names() = %v, want [x]", names)
	}
}

func TestDecodeBadMagic(t *testing.T) {
	data := fooDocumentBytes()
	data[0] = 'X'
	_, err := Decode(data)
	if !errors.Is(err, s4err.ErrBadMagic) {
		t.Errorf("err = %v, want ErrBadMagic", err)
	}
}
