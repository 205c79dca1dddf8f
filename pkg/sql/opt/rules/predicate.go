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

package rules

import (
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/pattern"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/rewrite"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/scalar"
)

const predSlot pattern.CaptureSlot = "pred"

// orOfAndsPattern matches a FilterNode whose predicate is a top-level Or.
// Both CommonPredicateExtraction and DistributeOrOverAnd share this pattern
// and do their own finer-grained shape analysis on the captured
// scalar.Expr, since the pattern language's scalar combinators don't reach
// all the way down to "each Or argument is itself an And with N args".
var orOfAndsPattern = pattern.With(
	pattern.TypeOf(plan.FilterOp),
	pattern.Predicate,
	pattern.ScalarCapturedAs(predSlot, pattern.ScalarKindOf(scalar.OrKind)),
)

// CommonPredicateExtractionRule implements §8 scenario 1: rewrites
// `(A AND B) OR (A AND C)` to `A AND (B OR C)` when the Or has exactly two
// branches, both Ands, that share at least one conjunct; the first shared
// conjunct in the left branch's order is factored out as A. Non-deterministic
// predicates are never rewritten (§4.1): duplicating A's evaluation across
// the original branches and the extracted form would change observable
// behavior for a non-pure A.
var CommonPredicateExtractionRule = rewrite.Rule{
	Name:    CommonPredicateExtraction,
	Pattern: orOfAndsPattern,
	Apply:   applyCommonPredicateExtraction,
}

func applyCommonPredicateExtraction(rc *rewrite.RuleContext, n plan.Node, caps pattern.Captures) rewrite.Result {
	pred, ok := pattern.ExprCapture(caps, predSlot)
	if !ok || !pred.Deterministic() {
		return rewrite.Empty()
	}
	or := pred.(*scalar.Or)
	if len(or.Args) != 2 {
		return rewrite.Empty()
	}
	left, lok := or.Args[0].(*scalar.And)
	right, rok := or.Args[1].(*scalar.And)
	if !lok || !rok {
		return rewrite.Empty()
	}

	common, leftRest, rightRest, found := findCommonConjunct(left.Args, right.Args)
	if !found {
		return rewrite.Empty()
	}

	newPred := &scalar.And{Args: []scalar.Expr{
		common,
		&scalar.Or{Args: []scalar.Expr{collapseAnd(leftRest), collapseAnd(rightRest)}},
	}}
	return rewrite.Produces(replacePredicate(n, newPred))
}

// findCommonConjunct returns the first conjunct present (by scalar.Equal)
// in both arg lists, plus each list with that conjunct removed.
func findCommonConjunct(left, right []scalar.Expr) (common scalar.Expr, leftRest, rightRest []scalar.Expr, found bool) {
	for _, l := range left {
		for _, r := range right {
			if scalar.Equal(l, r) {
				return l, removeOne(left, l), removeOne(right, r), true
			}
		}
	}
	return nil, nil, nil, false
}

func removeOne(args []scalar.Expr, target scalar.Expr) []scalar.Expr {
	out := make([]scalar.Expr, 0, len(args)-1)
	removed := false
	for _, a := range args {
		if !removed && scalar.Equal(a, target) {
			removed = true
			continue
		}
		out = append(out, a)
	}
	return out
}

// collapseAnd returns args[0] directly if there's exactly one, otherwise an
// And wrapping them. An empty list (a branch that held only the shared
// conjunct) yields an And with no arguments.
func collapseAnd(args []scalar.Expr) scalar.Expr {
	if len(args) == 1 {
		return args[0]
	}
	return &scalar.And{Args: args}
}

// replacePredicate returns a copy of n (a *plan.FilterNode) with its
// predicate replaced.
func replacePredicate(n plan.Node, newPred scalar.Expr) plan.Node {
	f := n.(*plan.FilterNode)
	cp := *f
	cp.Predicate = newPred
	return &cp
}

// DistributeOrOverAndRule implements §8 scenario 2: distributes an Or of
// N Ands into an And of Ors, one Or per way of picking a conjunct from
// each branch, e.g.
// `(A AND B) OR (C AND D)` -> `(A OR C) AND (A OR D) AND (B OR C) AND (B OR D)`,
// but only when the expanded clause count is at most 2x the total operand
// count across all branches; otherwise the predicate is returned
// unchanged, since an unbounded expansion can blow up filter evaluation
// cost for no selectivity benefit.
var DistributeOrOverAndRule = rewrite.Rule{
	Name:    DistributeOrOverAnd,
	Pattern: orOfAndsPattern,
	Apply:   applyDistributeOrOverAnd,
}

func applyDistributeOrOverAnd(rc *rewrite.RuleContext, n plan.Node, caps pattern.Captures) rewrite.Result {
	pred, ok := pattern.ExprCapture(caps, predSlot)
	if !ok || !pred.Deterministic() {
		return rewrite.Empty()
	}
	or := pred.(*scalar.Or)

	branches := make([][]scalar.Expr, len(or.Args))
	operandCount := 0
	expanded := 1
	for i, arg := range or.Args {
		and, ok := arg.(*scalar.And)
		if !ok {
			// A non-And branch degenerates to a single-conjunct branch.
			branches[i] = []scalar.Expr{arg}
		} else {
			branches[i] = and.Args
		}
		operandCount += len(branches[i])
		expanded *= len(branches[i])
	}
	if len(branches) < 2 || expanded > 2*operandCount {
		return rewrite.Empty()
	}
	if hasCommonConjunctAcross(branches) {
		// CommonPredicateExtraction already produces a strictly cheaper
		// rewrite for this shape (one shared conjunct factored out instead
		// of expanded away); ceding to it here is what keeps the two rules
		// mutually exclusive in practice (see Table's comment below).
		return rewrite.Empty()
	}

	clauses := cartesianOr(branches)
	newPred := &scalar.And{Args: clauses}
	return rewrite.Produces(replacePredicate(n, newPred))
}

// hasCommonConjunctAcross reports whether some expression is present (by
// scalar.Equal) in every branch, the condition CommonPredicateExtraction
// targets for the two-branch case.
func hasCommonConjunctAcross(branches [][]scalar.Expr) bool {
	if len(branches) == 0 {
		return false
	}
	for _, cand := range branches[0] {
		inAll := true
		for _, b := range branches[1:] {
			found := false
			for _, e := range b {
				if scalar.Equal(cand, e) {
					found = true
					break
				}
			}
			if !found {
				inAll = false
				break
			}
		}
		if inAll {
			return true
		}
	}
	return false
}

// cartesianOr builds one Or clause per element of the cartesian product of
// branches, preserving branch order within each clause.
func cartesianOr(branches [][]scalar.Expr) []scalar.Expr {
	indices := make([]int, len(branches))
	var clauses []scalar.Expr
	for {
		args := make([]scalar.Expr, len(branches))
		for i, idx := range indices {
			args[i] = branches[i][idx]
		}
		clauses = append(clauses, &scalar.Or{Args: args})

		pos := len(branches) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(branches[pos]) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			break
		}
	}
	return clauses
}

// Table is the ordered rule list built at start-up (§9 "a plain rule
// table... no runtime type reflection"). Order matters only for
// determinism of iteration (§4.4 "Determinism. Rule iteration order for a
// given group is stable"), not for correctness: the two rules are
// mutually exclusive in practice since CommonPredicateExtraction requires
// a shared conjunct across every Or branch and DistributeOrOverAnd applies
// precisely when none exists.
var Table = []rewrite.Rule{
	CommonPredicateExtractionRule,
	DistributeOrOverAndRule,
}
