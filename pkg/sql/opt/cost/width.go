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

package cost

import "github.com/GuinsooLab/witdb-sub010/pkg/sql/opt"

// defaultVariableWidth is charged for variable-length types with no
// declared Width, a conservative guess matching the teacher's practice of
// picking a single constant for unsized variable-width columns rather than
// threading an actual average through the stats model.
const defaultVariableWidth = 32

// WidthOf estimates a single value of typ's on-wire/in-memory byte size.
// This is a coarse model -- the core owns no real column-width statistics
// -- used only to turn row counts into the byte counts the cost formulas
// are expressed in terms of (§4.6).
func WidthOf(typ opt.Type) int32 {
	switch typ.Kind {
	case opt.BoolType:
		return 1
	case opt.Int16Type:
		return 2
	case opt.Int32Type, opt.Float32Type, opt.DateType:
		return 4
	case opt.Int64Type, opt.Float64Type, opt.TimeType, opt.TimestampType, opt.TimestampTZType:
		return 8
	case opt.DecimalType:
		if typ.IsDecimalShort() {
			return 16
		}
		return 32
	case opt.UUIDType:
		return 16
	case opt.VarCharType, opt.CharType, opt.VarBinaryType, opt.JSONType, opt.IPType:
		if typ.Width > 0 {
			return typ.Width
		}
		return defaultVariableWidth
	case opt.IntervalType:
		return 16
	case opt.ArrayType:
		if typ.Elem != nil {
			return 4 * WidthOf(*typ.Elem)
		}
		return defaultVariableWidth
	case opt.MapType:
		return defaultVariableWidth
	case opt.RowType:
		var total int32
		for _, f := range typ.Fields {
			total += WidthOf(f.Typ)
		}
		return total
	case opt.GeometryType, opt.GeographyType:
		return 64
	default:
		return defaultVariableWidth
	}
}

// RowWidth sums WidthOf across every symbol in cols.
func RowWidth(cols opt.SymbolList) int64 {
	var total int64
	for _, c := range cols {
		total += int64(WidthOf(c.Typ))
	}
	return total
}

// BytesOf estimates the total byte size of rowCount rows of cols, or
// Unknown if rowCount itself is Unknown.
func BytesOf(rowCount Metric, cols opt.SymbolList) Metric {
	if !rowCount.Known {
		return Unknown
	}
	return Known(rowCount.Value * float64(RowWidth(cols)))
}
