// Copyright 2019 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License included
// in the file licenses/BSL.txt and at www.mariadb.com/bsl11.
//
// Change Date: 2022-10-01
//
// On the date above, in accordance with the Business Source License, use
// of this software will be governed by the Apache License, Version 2.0,
// included in the file licenses/APL.txt and at
// https://www.apache.org/licenses/LICENSE-2.0

package opt

import "fmt"

// TypeKind enumerates the closed variant set of value types the core can
// reason about (§3 Type). Following the re-architecture note in §9
// ("Visitor dispatch over deep hierarchies -> tagged union with exhaustive
// match"), Type is a flat tagged union rather than a class hierarchy: a
// TypeKind tag plus a small number of kind-specific parameters.
type TypeKind uint8

const (
	// UnknownType is the zero value and is never a valid type for a minted
	// symbol; it exists only so that a zero Type is recognizably invalid.
	UnknownType TypeKind = iota
	BoolType
	Int16Type
	Int32Type
	Int64Type
	Float32Type
	Float64Type
	DecimalType
	DateType
	TimeType
	TimestampType
	TimestampTZType
	VarCharType
	CharType
	VarBinaryType
	JSONType
	UUIDType
	IPType
	IntervalType
	ArrayType
	MapType
	RowType
	GeometryType
	GeographyType
)

// timestampTZPrecision is fixed at 3 in the data-lake dialect (§3 Type).
const timestampTZPrecision = 3

// decimalShortPrecisionLimit is the precision boundary below which a decimal
// fits in 64 bits ("short"); above it, a decimal is "long" (128-bit) (§3).
const decimalShortPrecisionLimit = 18

// Type is a tagged variant describing the type of a Symbol's values. Composite
// and parameterized kinds carry extra fields; all other fields are zero.
type Type struct {
	Kind TypeKind

	// Width is used by VarChar(n)/Char(n) for n, and by decimal for scale.
	Width int32

	// Precision is used by Decimal(precision, scale).
	Precision int32

	// Elem is the element type for ArrayType, and the value type for MapType.
	Elem *Type

	// Key is the key type for MapType.
	Key *Type

	// Fields holds (name, Type) pairs for RowType.
	Fields []RowField
}

// RowField is one named field of a RowType.
type RowField struct {
	Name string
	Typ  Type
}

// IsDecimalShort returns true if a DecimalType fits in 64 bits, i.e. its
// precision is <= 18 (§3 Type: "decimals split into short...and long").
func (t Type) IsDecimalShort() bool {
	return t.Kind == DecimalType && t.Precision <= decimalShortPrecisionLimit
}

// Array constructs an array<T> type.
func Array(elem Type) Type { return Type{Kind: ArrayType, Elem: &elem} }

// Map constructs a map<K,V> type.
func Map(key, val Type) Type { return Type{Kind: MapType, Key: &key, Elem: &val} }

// Row constructs a row<(name,T)*> type.
func Row(fields ...RowField) Type { return Type{Kind: RowType, Fields: fields} }

// VarChar constructs a varchar(n) type.
func VarChar(n int32) Type { return Type{Kind: VarCharType, Width: n} }

// Char constructs a char(n) type.
func Char(n int32) Type { return Type{Kind: CharType, Width: n} }

// Decimal constructs a decimal(precision, scale) type.
func Decimal(precision, scale int32) Type {
	return Type{Kind: DecimalType, Precision: precision, Width: scale}
}

// TimestampTZ constructs a timestamp-with-zone type. Its precision is fixed
// at 3 in the data-lake dialect and is not a caller-supplied parameter (§3).
func TimestampTZ() Type { return Type{Kind: TimestampTZType, Precision: timestampTZPrecision} }

// Signature returns the canonical textual signature used for Type equality
// (§3: "Types have a canonical textual signature used for equality").
func (t Type) Signature() string {
	switch t.Kind {
	case VarCharType:
		return fmt.Sprintf("varchar(%d)", t.Width)
	case CharType:
		return fmt.Sprintf("char(%d)", t.Width)
	case DecimalType:
		return fmt.Sprintf("decimal(%d,%d)", t.Precision, t.Width)
	case TimestampTZType:
		return fmt.Sprintf("timestamp(%d) with time zone", timestampTZPrecision)
	case ArrayType:
		return fmt.Sprintf("array<%s>", t.Elem.Signature())
	case MapType:
		return fmt.Sprintf("map<%s,%s>", t.Key.Signature(), t.Elem.Signature())
	case RowType:
		s := "row<"
		for i, f := range t.Fields {
			if i > 0 {
				s += ","
			}
			s += fmt.Sprintf("%s %s", f.Name, f.Typ.Signature())
		}
		return s + ">"
	default:
		return t.Kind.String()
	}
}

// Equals returns true if t and rhs have the same canonical signature.
func (t Type) Equals(rhs Type) bool { return t.Signature() == rhs.Signature() }

// String implements fmt.Stringer for TypeKind.
func (k TypeKind) String() string {
	switch k {
	case BoolType:
		return "bool"
	case Int16Type:
		return "int16"
	case Int32Type:
		return "int32"
	case Int64Type:
		return "int64"
	case Float32Type:
		return "float32"
	case Float64Type:
		return "float64"
	case DecimalType:
		return "decimal"
	case DateType:
		return "date"
	case TimeType:
		return "time"
	case TimestampType:
		return "timestamp"
	case TimestampTZType:
		return "timestamp with time zone"
	case VarCharType:
		return "varchar"
	case CharType:
		return "char"
	case VarBinaryType:
		return "varbinary"
	case JSONType:
		return "json"
	case UUIDType:
		return "uuid"
	case IPType:
		return "ip"
	case IntervalType:
		return "interval"
	case ArrayType:
		return "array"
	case MapType:
		return "map"
	case RowType:
		return "row"
	case GeometryType:
		return "geometry"
	case GeographyType:
		return "geography"
	default:
		return "unknown"
	}
}
