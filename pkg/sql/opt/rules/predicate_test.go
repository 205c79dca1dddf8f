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

package rules_test

import (
	"testing"

	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/rewrite"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/rules"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/scalar"
	"github.com/stretchr/testify/require"
)

var cols = opt.SymbolList{
	{ID: 1, Name: "a", Typ: opt.Type{Kind: opt.Int64Type}},
	{ID: 2, Name: "b", Typ: opt.Type{Kind: opt.Int64Type}},
	{ID: 3, Name: "c", Typ: opt.Type{Kind: opt.Int64Type}},
	{ID: 4, Name: "d", Typ: opt.Type{Kind: opt.Int64Type}},
}

func eq(col opt.ColumnID, v int64) scalar.Expr {
	return &scalar.Comparison{
		Op:    scalar.EQ,
		Left:  &scalar.Variable{Col: int32(col)},
		Right: &scalar.Const{Value: v},
	}
}

func filterWith(pred scalar.Expr) *plan.FilterNode {
	scan := &plan.ScanNode{NodeID_: 1, Table: "t", Cols: cols}
	return &plan.FilterNode{NodeID_: 2, Input: scan, Predicate: pred}
}

func matchAndApply(t *testing.T, rule rewrite.Rule, n plan.Node) rewrite.Result {
	t.Helper()
	caps, ok := rule.Pattern.Match(n)
	if !ok {
		return rewrite.Empty()
	}
	return rule.Apply(&rewrite.RuleContext{Alloc: &opt.SymbolAllocator{}}, n, caps)
}

// TestCommonPredicateExtraction reproduces §8 scenario 1:
// (A AND B) OR (A AND C) -> A AND (B OR C).
func TestCommonPredicateExtraction(t *testing.T) {
	a, b, c := eq(1, 1), eq(2, 2), eq(3, 3)
	pred := &scalar.Or{Args: []scalar.Expr{
		&scalar.And{Args: []scalar.Expr{a, b}},
		&scalar.And{Args: []scalar.Expr{a, c}},
	}}
	res := matchAndApply(t, rules.CommonPredicateExtractionRule, filterWith(pred))
	require.True(t, res.Productive, "expected the rule to fire")
	out := res.Node.(*plan.FilterNode).Predicate.(*scalar.And)
	require.Len(t, out.Args, 2)
	require.True(t, scalar.Equal(out.Args[0], a), "expected A extracted to the top, got %s", out)
	or, ok := out.Args[1].(*scalar.Or)
	require.True(t, ok, "expected the remaining term to be an OR, got %s", out.Args[1])
	require.Len(t, or.Args, 2)
	require.True(t, scalar.Equal(or.Args[0], b))
	require.True(t, scalar.Equal(or.Args[1], c))
}

// TestCommonPredicateExtractionSkipsNonDeterministic covers §4.1: a
// non-deterministic shared conjunct must never be duplicated-or-factored,
// so the rule must not fire at all.
func TestCommonPredicateExtractionSkipsNonDeterministic(t *testing.T) {
	nondet := &scalar.FuncCall{Name: "random", IsDeterministic: false}
	pred := &scalar.Or{Args: []scalar.Expr{
		&scalar.And{Args: []scalar.Expr{nondet, eq(2, 2)}},
		&scalar.And{Args: []scalar.Expr{nondet, eq(3, 3)}},
	}}
	res := matchAndApply(t, rules.CommonPredicateExtractionRule, filterWith(pred))
	require.False(t, res.Productive, "expected no rewrite for a non-deterministic shared conjunct")
}

// TestDistributeOrOverAnd reproduces §8 scenario 2: an Or of Ands with no
// shared conjunct, within the expansion-size guard, distributes.
func TestDistributeOrOverAnd(t *testing.T) {
	a, b, c, d := eq(1, 1), eq(2, 2), eq(3, 3), eq(4, 4)
	pred := &scalar.Or{Args: []scalar.Expr{
		&scalar.And{Args: []scalar.Expr{a, b}},
		&scalar.And{Args: []scalar.Expr{c, d}},
	}}
	res := matchAndApply(t, rules.DistributeOrOverAndRule, filterWith(pred))
	require.True(t, res.Productive, "expected the rule to fire")
	out := res.Node.(*plan.FilterNode).Predicate.(*scalar.And)
	require.Len(t, out.Args, 4, "expected 4 distributed clauses")
}

// TestDistributeOrOverAndRejectsExpansionBlowup covers §8 scenario 3: once
// the expanded clause count exceeds 2x the total operand count, the rule
// must decline rather than blow up filter evaluation cost.
func TestDistributeOrOverAndRejectsExpansionBlowup(t *testing.T) {
	branch := func(vals ...int64) scalar.Expr {
		args := make([]scalar.Expr, len(vals))
		for i, v := range vals {
			args[i] = eq(opt.ColumnID(i+1), v)
		}
		return &scalar.And{Args: args}
	}
	pred := &scalar.Or{Args: []scalar.Expr{
		branch(10, 20, 30),
		branch(40, 50, 60),
		branch(70, 80, 90),
	}}
	res := matchAndApply(t, rules.DistributeOrOverAndRule, filterWith(pred))
	require.False(t, res.Productive, "expected the rule to decline an expansion this large")
}

// TestDistributeOrOverAndCedesToCommonConjunct confirms the two rules stay
// mutually exclusive (the invariant rules.Table's comment names): a shared
// conjunct makes DistributeOrOverAnd decline even though its own expansion
// guard would otherwise allow it.
func TestDistributeOrOverAndCedesToCommonConjunct(t *testing.T) {
	a, b, c := eq(1, 1), eq(2, 2), eq(3, 3)
	pred := &scalar.Or{Args: []scalar.Expr{
		&scalar.And{Args: []scalar.Expr{a, b}},
		&scalar.And{Args: []scalar.Expr{a, c}},
	}}
	res := matchAndApply(t, rules.DistributeOrOverAndRule, filterWith(pred))
	require.False(t, res.Productive, "expected DistributeOrOverAnd to cede to the shared-conjunct case")
}
