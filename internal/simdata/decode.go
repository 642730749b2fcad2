package simdata

import (
	"fmt"
	"math"
	"strings"

	"github.com/xyproto/s4pack/internal/cursor"
	"github.com/xyproto/s4pack/internal/fnv1"
	"github.com/xyproto/s4pack/internal/rid"
	"github.com/xyproto/s4pack/internal/s4err"
)

var magic = [4]byte{'D', 'A', 'T', 'A'}

// Version is the single SimData version this decoder recognizes.
const Version uint32 = 0x101

// Decode parses a complete SimData resource: schemas, table headers,
// then rows, in that order (forward references between tables are only
// resolvable once every table header has been read).
func Decode(data []byte) (*Document, error) {
	c := cursor.NewReader(data)

	magicBytes, err := c.Raw(4)
	if err != nil {
		return nil, fmt.Errorf("simdata: read magic: %w", err)
	}
	if [4]byte(magicBytes) != magic {
		return nil, fmt.Errorf("simdata: magic %q: %w", magicBytes, s4err.ErrBadMagic)
	}

	version, err := c.U32()
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, fmt.Errorf("simdata: version %#x: %w", version, s4err.ErrUnsupportedVersion)
	}

	tablePos, _, err := c.Off32()
	if err != nil {
		return nil, err
	}
	numTables, err := c.I32()
	if err != nil {
		return nil, err
	}
	schemaPos, _, err := c.Off32()
	if err != nil {
		return nil, err
	}
	numSchemas, err := c.I32()
	if err != nil {
		return nil, err
	}

	doc := &Document{Schemas: make(map[uint32]*Schema)}

	if numSchemas > 0 {
		if err := c.Seek(schemaPos); err != nil {
			return nil, err
		}
	}
	for i := int32(0); i < numSchemas; i++ {
		off := c.Tell()
		schema, err := readSchema(c)
		if err != nil {
			return nil, fmt.Errorf("simdata: schema %d at %#x: %w", i, off, err)
		}
		schema.Offset = uint32(off)
		doc.Schemas[schema.Offset] = schema
	}

	if numTables > 0 {
		if err := c.Seek(tablePos); err != nil {
			return nil, err
		}
	}
	tables := make([]*Table, numTables)
	for i := int32(0); i < numTables; i++ {
		t, err := readTableHeader(c, doc.Schemas)
		if err != nil {
			return nil, fmt.Errorf("simdata: table %d: %w", i, err)
		}
		tables[i] = t
	}
	doc.Tables = tables

	for _, t := range tables {
		if err := decodeRows(c, doc, t); err != nil {
			return nil, fmt.Errorf("simdata: table %q: %w", t.Name, err)
		}
	}

	doc.Content = make(map[string]*Row)
	for _, t := range tables {
		if t.Name == "" {
			continue
		}
		if t.RowCount != 1 {
			doc.Errors = append(doc.Errors, &NamedTableRowCountError{Name: t.Name, RowCount: t.RowCount})
			continue
		}
		if t.Schema != nil {
			doc.Content[t.Name] = t.Rows[0]
		}
	}

	return doc, nil
}

func validateNameHash(name []byte, present bool, gotHash uint32) error {
	var lowered string
	if present {
		lowered = strings.ToLower(string(name))
	}
	want := fnv1.Hash32([]byte(lowered))
	if want != gotHash {
		return fmt.Errorf("simdata: name %q hash %#x, want %#x: %w", name, gotHash, want, s4err.ErrHashMismatch)
	}
	return nil
}

func readSchema(c *cursor.Reader) (*Schema, error) {
	name, present, err := c.RelStr()
	if err != nil {
		return nil, err
	}
	nameHash, err := c.U32()
	if err != nil {
		return nil, err
	}
	if err := validateNameHash(name, present, nameHash); err != nil {
		return nil, err
	}

	schemaHash, err := c.U32()
	if err != nil {
		return nil, err
	}
	size, err := c.U32()
	if err != nil {
		return nil, err
	}
	columnPos, _, err := c.Off32()
	if err != nil {
		return nil, err
	}
	numColumns, err := c.U32()
	if err != nil {
		return nil, err
	}

	columns := make([]Column, numColumns)
	err = c.WithPos(columnPos, func() error {
		for i := range columns {
			cname, _, err := c.RelStr()
			if err != nil {
				return err
			}
			if _, err := c.U32(); err != nil { // column name hash: read, not validated
				return err
			}
			dataType, err := c.U16()
			if err != nil {
				return err
			}
			flags, err := c.U16()
			if err != nil {
				return err
			}
			offset, err := c.U32()
			if err != nil {
				return err
			}
			subSchema, hasSubSchema, err := c.Off32()
			if err != nil {
				return err
			}
			columns[i] = Column{
				Name:         string(cname),
				DataType:     PrimitiveType(dataType),
				Flags:        flags,
				Offset:       offset,
				SubSchema:    uint32(subSchema),
				HasSubSchema: hasSubSchema,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Schema{Name: string(name), Hash: schemaHash, Size: size, Columns: columns}, nil
}

func readTableHeader(c *cursor.Reader, schemas map[uint32]*Schema) (*Table, error) {
	name, present, err := c.RelStr()
	if err != nil {
		return nil, err
	}
	nameHash, err := c.U32()
	if err != nil {
		return nil, err
	}
	if err := validateNameHash(name, present, nameHash); err != nil {
		return nil, err
	}

	schemaOff, hasSchema, err := c.Off32()
	if err != nil {
		return nil, err
	}
	dataType, err := c.U32()
	if err != nil {
		return nil, err
	}
	rowSize, err := c.U32()
	if err != nil {
		return nil, err
	}
	rowPos, hasRowPos, err := c.Off32()
	if err != nil {
		return nil, err
	}
	rowCount, err := c.U32()
	if err != nil {
		return nil, err
	}

	var schema *Schema
	if hasSchema {
		s, ok := schemas[uint32(schemaOff)]
		if !ok {
			return nil, fmt.Errorf("simdata: schema at %#x: %w", schemaOff, s4err.ErrMalformedIndex)
		}
		if s.Size != rowSize {
			return nil, fmt.Errorf("simdata: schema %q size %d != row size %d: %w", s.Name, s.Size, rowSize, s4err.ErrSchemaMismatch)
		}
		schema = s
	}

	var rp uint32
	if hasRowPos {
		rp = uint32(rowPos)
	}

	return &Table{
		Name:     string(name),
		Schema:   schema,
		DataType: PrimitiveType(dataType),
		RowSize:  rowSize,
		RowPos:   rp,
		RowCount: rowCount,
	}, nil
}

func decodeRows(c *cursor.Reader, doc *Document, t *Table) error {
	if t.Schema == nil {
		t.Values = make([]Value, t.RowCount)
		for i := uint32(0); i < t.RowCount; i++ {
			pos := int(t.RowPos) + int(t.RowSize)*int(i)
			v, err := readPrimitive(c, doc, t.DataType, pos)
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			t.Values[i] = v
		}
		return nil
	}

	t.Rows = make([]*Row, t.RowCount)
	for i := uint32(0); i < t.RowCount; i++ {
		row := newRow(t.Schema)
		rowBase := int(t.RowPos) + int(t.RowSize)*int(i)
		for _, col := range t.Schema.Columns {
			pos := rowBase + int(col.Offset)
			v, err := readPrimitive(c, doc, col.DataType, pos)
			if err != nil {
				return fmt.Errorf("row %d column %q: %w", i, col.Name, err)
			}
			row.set(col.Name, v)
		}
		t.Rows[i] = row
	}
	return nil
}

// alignmentFor returns the byte alignment §4.4.1 requires before reading
// a value of typ.
func alignmentFor(typ PrimitiveType) int {
	switch typ {
	case TypeBool, TypeChar8, TypeInt8, TypeUInt8:
		return 1
	case TypeInt16, TypeUInt16:
		return 2
	case TypeInt64, TypeUInt64, TypeTableSetReference, TypeResourceKey:
		return 8
	default:
		return 4
	}
}

// readPrimitive reads one value of typ at the absolute position pos,
// restoring the cursor afterward.
func readPrimitive(c *cursor.Reader, doc *Document, typ PrimitiveType, pos int) (Value, error) {
	var v Value
	err := c.WithPos(pos, func() error {
		if err := c.Align(alignmentFor(typ)); err != nil {
			return err
		}
		switch typ {
		case TypeBool:
			b, err := c.U8()
			if err != nil {
				return err
			}
			v = b != 0 // conventional truth, not the documented source's inverted reading
			return nil

		case TypeChar8:
			b, err := c.U8()
			v = b
			return err

		case TypeInt8:
			i, err := c.I8()
			v = i
			return err
		case TypeUInt8:
			i, err := c.U8()
			v = i
			return err
		case TypeInt16:
			i, err := c.I16()
			v = i
			return err
		case TypeUInt16:
			i, err := c.U16()
			v = i
			return err
		case TypeInt32:
			i, err := c.I32()
			v = i
			return err
		case TypeUInt32:
			i, err := c.U32()
			v = i
			return err
		case TypeInt64:
			i, err := c.I64()
			v = i
			return err
		case TypeUInt64:
			i, err := c.U64()
			v = i
			return err

		case TypeFloat:
			bits, err := c.U32()
			if err != nil {
				return err
			}
			v = math.Float32frombits(bits)
			return nil

		case TypeString8:
			s, present, err := c.RelStr()
			if err != nil {
				return err
			}
			if present {
				v = string(s)
			} else {
				v = ""
			}
			return nil

		case TypeHashedString8:
			s, present, err := c.RelStr()
			if err != nil {
				return err
			}
			gotHash, err := c.U32()
			if err != nil {
				return err
			}
			if err := validateNameHash(s, present, gotHash); err != nil {
				return err
			}
			if present {
				v = string(s)
			} else {
				v = ""
			}
			return nil

		case TypeObject:
			offset, present, err := c.Off32()
			if err != nil {
				return err
			}
			if !present {
				v = newRef(doc, 0, 0)
				return nil
			}
			v = newRef(doc, uint32(offset), 1)
			return nil

		case TypeVector:
			offset, present, err := c.Off32()
			if err != nil {
				return err
			}
			count, err := c.U32()
			if err != nil {
				return err
			}
			if !present {
				if count != 0 {
					return fmt.Errorf("simdata: vector: null offset with count %d: %w", count, s4err.ErrMalformedIndex)
				}
				v = newRef(doc, 0, 0)
				return nil
			}
			v = newRef(doc, uint32(offset), count)
			return nil

		case TypeFloat2, TypeFloat3, TypeFloat4:
			n := 2
			if typ == TypeFloat3 {
				n = 3
			} else if typ == TypeFloat4 {
				n = 4
			}
			var comps [4]float32
			for i := 0; i < n; i++ {
				bits, err := c.U32()
				if err != nil {
					return err
				}
				comps[i] = math.Float32frombits(bits)
			}
			switch n {
			case 2:
				v = Float2{comps[0], comps[1]}
			case 3:
				v = Float3{comps[0], comps[1], comps[2]}
			case 4:
				v = Float4{comps[0], comps[1], comps[2], comps[3]}
			}
			return nil

		case TypeTableSetReference:
			u, err := c.U64()
			v = u
			return err

		case TypeResourceKey:
			instance, err := c.U64()
			if err != nil {
				return err
			}
			typeCode, err := c.U32()
			if err != nil {
				return err
			}
			group, err := c.U32()
			if err != nil {
				return err
			}
			v = rid.RID{Group: group, Instance: instance, Type: typeCode}
			return nil

		case TypeLocKey:
			u, err := c.U32()
			v = u
			return err

		default:
			return fmt.Errorf("simdata: type code %d: %w", typ, s4err.ErrUnknownType)
		}
	})
	return v, err
}
