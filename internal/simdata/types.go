// Package simdata decodes the SimData typed-table format: a
// self-describing, schema-driven binary layout embedded as a resource
// inside DBPF archives (see package dbpf). A Document is built once by
// Decode and is read-only afterward except for the per-row Set that the
// source format itself allows (see Row).
package simdata

import "fmt"

// PrimitiveType is one of the 21 data-type codes a schema column or a
// schema-less table's rows may carry.
type PrimitiveType uint16

const (
	TypeBool PrimitiveType = iota
	TypeChar8
	TypeInt8
	TypeUInt8
	TypeInt16
	TypeUInt16
	TypeInt32
	TypeUInt32
	TypeInt64
	TypeUInt64
	TypeFloat
	TypeString8
	TypeHashedString8
	TypeObject
	TypeVector
	TypeFloat2
	TypeFloat3
	TypeFloat4
	TypeTableSetReference
	TypeResourceKey
	TypeLocKey
)

// Float2, Float3 and Float4 hold consecutive little-endian binary32
// components; they are the Value a FLOAT2/FLOAT3/FLOAT4 column produces.
type Float2 [2]float32
type Float3 [3]float32
type Float4 [4]float32

// Value is whatever a single primitive read produces: bool, byte (CHAR8),
// int8/uint8/int16/uint16/int32/uint32/int64/uint64, float32, string
// (STRING8/HASHEDSTRING8), Float2/Float3/Float4, rid.RID
// (RESOURCEKEY), uint32 (LOCKEY), uint64 (TABLESETREFERENCE), or *Ref
// (OBJECT/VECTOR).
type Value = any

// Column is one field of a Schema.
type Column struct {
	Name         string
	DataType     PrimitiveType
	Flags        uint16
	Offset       uint32
	SubSchema    uint32
	HasSubSchema bool
}

// Schema is a named, ordered set of columns sharing a fixed row size.
// Offset is the absolute file offset of the schema record itself, the
// key schemas are addressed by from a table header's schema reference.
type Schema struct {
	Offset  uint32
	Name    string
	Hash    uint32
	Size    uint32
	Columns []Column
}

// Column looks up a column by name, or reports ok=false.
func (s *Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Table is one table header plus its decoded rows. Schema is nil for a
// schema-less table, whose rows are plain Values of DataType; otherwise
// Rows holds one *Row per row and Values is empty.
type Table struct {
	Name     string
	Schema   *Schema
	DataType PrimitiveType
	RowSize  uint32
	RowPos   uint32
	RowCount uint32

	Values []Value
	Rows   []*Row
}

// Row is a schema-bearing table's single record: an ordered name ->
// Value mapping, iteration order following the owning schema's column
// order.
type Row struct {
	names  []string
	values map[string]Value
}

// NamedTableRowCountError records a named table whose row count was not
// exactly 1, making it ineligible for Document.Content. Non-fatal: the
// table itself is still present in Document.Tables.
type NamedTableRowCountError struct {
	Name     string
	RowCount uint32
}

func (e *NamedTableRowCountError) Error() string {
	return fmt.Sprintf("simdata: named table %s has row count %d, want 1", e.Name, e.RowCount)
}

// Document is the result of Decode: every table and schema in the file,
// the name -> sole-row index built from well-formed named tables, and
// any non-fatal anomalies encountered along the way.
type Document struct {
	Tables  []*Table
	Schemas map[uint32]*Schema
	Content map[string]*Row
	Errors  []error
}
