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

package stats_test

import (
	"testing"

	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/memo"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/scalar"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/stats"
	"github.com/stretchr/testify/require"
)

func newGroup(m *memo.Memo, n plan.Node) *memo.Group {
	id, err := m.Insert(n)
	if err != nil {
		panic(err)
	}
	return m.Get(id)
}

// TestEmptyValuesIsZeroRows covers the §8 boundary behavior: a single
// Values node with zero rows has rows=0 for every statistic.
func TestEmptyValuesIsZeroRows(t *testing.T) {
	cols := opt.SymbolList{{ID: 1, Name: "x", Typ: opt.Type{Kind: opt.Int64Type}}}
	m := memo.New()
	g := newGroup(m, &plan.ValuesNode{NodeID_: 1, Cols: cols, Rows: nil})

	got := stats.Derive(g, g.Exprs()[0], nil)
	require.True(t, got.RowCount.Known, "RowCount should be known")
	require.Zero(t, got.RowCount.N)
}

// TestFilterNDVNeverExceedsRowCount ensures a filter's NDV is clamped to its
// (reduced) row count, not the input's (§4.5).
func TestFilterNDVNeverExceedsRowCount(t *testing.T) {
	cols := opt.SymbolList{{ID: 1, Name: "x", Typ: opt.Type{Kind: opt.Int64Type}}}
	m := memo.New()
	scan := newGroup(m, &plan.ScanNode{NodeID_: 1, Table: "t", Cols: cols})

	inStats := &stats.PlanNodeStatistics{
		RowCount: stats.KnownValue(1000),
		Columns: map[opt.ColumnID]stats.ColumnStats{
			1: {NDV: stats.KnownValue(1000)},
		},
	}

	filter := &plan.FilterNode{
		NodeID_: 2,
		Input:   &memo.GroupReference{Group: scan.ID(), Symbols: cols},
		Predicate: &scalar.Comparison{
			Op:    scalar.EQ,
			Left:  &scalar.Variable{Col: 1, Name: "x"},
			Right: &scalar.Const{Value: int64(5)},
		},
	}
	fg := newGroup(m, filter)

	got := stats.Derive(fg, fg.Exprs()[0], []*stats.PlanNodeStatistics{inStats})
	require.True(t, got.RowCount.Known, "expected known row count")
	require.Less(t, got.RowCount.N, inStats.RowCount.N, "filtered row count should be less than input")
	cs := got.Columns[1]
	require.LessOrEqual(t, cs.NDV.N, got.RowCount.N, "NDV must not exceed row count")
}

// TestUnboundedScanStatsAreUnknown documents that the core has no catalog
// access of its own: a bare scan's row count is Unknown until something
// else attaches real statistics.
func TestUnboundedScanStatsAreUnknown(t *testing.T) {
	cols := opt.SymbolList{{ID: 1, Name: "x", Typ: opt.Type{Kind: opt.Int64Type}}}
	m := memo.New()
	g := newGroup(m, &plan.ScanNode{NodeID_: 1, Table: "t", Cols: cols})

	got := stats.Derive(g, g.Exprs()[0], nil)
	require.False(t, got.RowCount.Known, "expected Unknown row count for an uncatalogued scan")
}

// TestDeriveIsMemoizedPerGroup checks that a second Derive call for the same
// group returns the cached pointer rather than recomputing (§4.5).
func TestDeriveIsMemoizedPerGroup(t *testing.T) {
	cols := opt.SymbolList{{ID: 1, Name: "x", Typ: opt.Type{Kind: opt.Int64Type}}}
	m := memo.New()
	g := newGroup(m, &plan.ScanNode{NodeID_: 1, Table: "t", Cols: cols})

	a := stats.Derive(g, g.Exprs()[0], nil)
	b := stats.Derive(g, g.Exprs()[0], nil)
	require.Same(t, a, b, "expected the same cached *PlanNodeStatistics on repeated Derive calls")
}
