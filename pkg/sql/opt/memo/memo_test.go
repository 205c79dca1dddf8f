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

package memo_test

import (
	"testing"

	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/memo"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/scalar"
	"github.com/stretchr/testify/require"
)

var roundTripCols = opt.SymbolList{
	{ID: 1, Name: "a", Typ: opt.Type{Kind: opt.Int64Type}},
	{ID: 2, Name: "b", Typ: opt.Type{Kind: opt.Int64Type}},
}

// unitCost treats every expression as equally (and known-ly) cheap, so
// Extract's tie-break keeps each group's sole member -- the shape needed to
// isolate the round-trip property from any cost-driven selection.
func unitCost(plan.Node) (float64, bool) { return 0, true }

// TestInsertExtractRoundTripsUnchanged covers §8's "Universal invariant":
// memo.insert(p); extract(memo) round-trips p structurally when no rule has
// fired. A scan under a filter under a project is inserted once and
// extracted immediately, with no rewrite.Engine run in between.
func TestInsertExtractRoundTripsUnchanged(t *testing.T) {
	scan := &plan.ScanNode{NodeID_: 1, Table: "t", Cols: roundTripCols}
	pred := &scalar.Comparison{
		Op:    scalar.EQ,
		Left:  &scalar.Variable{Col: 1, Name: "a"},
		Right: &scalar.Const{Value: int64(5)},
	}
	filter := &plan.FilterNode{NodeID_: 2, Input: scan, Predicate: pred}
	proj := &plan.ProjectNode{
		NodeID_: 3,
		Input:   filter,
		Projections: []plan.ProjectItem{
			{Col: roundTripCols[1], Expr: &scalar.Variable{Col: 2, Name: "b"}},
		},
	}

	m := memo.New()
	root, err := m.InsertRoot(proj)
	require.NoError(t, err)

	extracted, err := memo.Extract(m, root, unitCost)
	require.NoError(t, err)

	outProj, ok := extracted.(*plan.ProjectNode)
	require.True(t, ok, "expected a ProjectNode root, got %T", extracted)
	require.Len(t, outProj.Projections, 1)
	require.True(t, scalar.Equal(outProj.Projections[0].Expr, proj.Projections[0].Expr))

	outFilter, ok := outProj.Input.(*plan.FilterNode)
	require.True(t, ok, "expected a FilterNode input, got %T", outProj.Input)
	require.True(t, scalar.Equal(outFilter.Predicate, pred))

	outScan, ok := outFilter.Input.(*plan.ScanNode)
	require.True(t, ok, "expected a ScanNode leaf, got %T", outFilter.Input)
	require.Equal(t, scan.Table, outScan.Table)
	require.Equal(t, scan.Cols, outScan.Cols)
}

// TestInsertDeduplicatesStructurallyEqualExpressions covers §4.3's
// fingerprint-based interning: inserting the same shape twice returns the
// same group id rather than creating a duplicate.
func TestInsertDeduplicatesStructurallyEqualExpressions(t *testing.T) {
	m := memo.New()
	a, err := m.Insert(&plan.ScanNode{NodeID_: 1, Table: "t", Cols: roundTripCols})
	require.NoError(t, err)
	b, err := m.Insert(&plan.ScanNode{NodeID_: 2, Table: "t", Cols: roundTripCols})
	require.NoError(t, err)
	require.Equal(t, a, b, "structurally identical scans should intern to the same group")
}

// TestReplaceAddsMemberWithoutRemovingOriginal covers §4.3 replace: adding
// an alternative expression to a group keeps the original member alongside
// it rather than overwriting it.
func TestReplaceAddsMemberWithoutRemovingOriginal(t *testing.T) {
	m := memo.New()
	scan := &plan.ScanNode{NodeID_: 1, Table: "t", Cols: roundTripCols}
	pred := &scalar.Comparison{
		Op:    scalar.EQ,
		Left:  &scalar.Variable{Col: 1, Name: "a"},
		Right: &scalar.Const{Value: int64(5)},
	}
	root, err := m.InsertRoot(&plan.FilterNode{NodeID_: 2, Input: scan, Predicate: pred})
	require.NoError(t, err)

	orig := m.Get(root).Exprs()[0]
	altPred := &scalar.Comparison{
		Op:    scalar.EQ,
		Left:  &scalar.Variable{Col: 1, Name: "a"},
		Right: &scalar.Const{Value: int64(6)},
	}
	alt := &plan.FilterNode{NodeID_: 2, Input: orig.(*plan.FilterNode).Input, Predicate: altPred}
	require.NoError(t, m.Replace(root, alt))

	exprs := m.Get(root).Exprs()
	require.Len(t, exprs, 2, "expected both the original and the replacement to remain")
}
