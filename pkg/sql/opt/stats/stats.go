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

// Package stats derives per-node statistics (C5, §4.5): a single-pass rule
// set, one derivation function per node kind, memoized per memo group.
// Grounded on the teacher's logicalPropsFactory (referenced from
// xform/memo.go) for the "derive bottom-up, cache on the group" shape, but
// the actual formulas follow this module's own selectivity/NDV model
// rather than CockroachDB's histogram-based one.
package stats

import (
	"math"

	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/memo"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/scalar"
)

// Value is Unknown|Known value semantics for a single statistic (§4.5
// "Any missing or Unknown input renders the output Unknown for that
// field").
type Value struct {
	Known bool
	N     float64
}

// Unknown is the zero Value.
var Unknown = Value{}

// KnownValue wraps a known float.
func KnownValue(n float64) Value { return Value{Known: true, N: n} }

// combine applies f to a.N/b.N if both are known, else returns Unknown.
func combine(a, b Value, f func(x, y float64) float64) Value {
	if !a.Known || !b.Known {
		return Unknown
	}
	return KnownValue(f(a.N, b.N))
}

// ColumnStats is the per-symbol statistic set.
type ColumnStats struct {
	NDV       Value
	NullCount Value
	// RangeKnown is false when the predicate shape made the range opaque
	// (§4.5 "range/domain reset to Unknown when the expression is
	// opaque").
	RangeKnown  bool
	RangeMin    float64
	RangeMax    float64
}

// PlanNodeStatistics is the derived statistics for one plan node (§3, §4.5).
type PlanNodeStatistics struct {
	RowCount Value
	Columns  map[opt.ColumnID]ColumnStats
}

// cacheKey distinguishes cached stats by the inputs that can affect
// derivation; today that's nothing beyond the node's own shape (stats
// derivation has no session-parameter dependence per §4.5), but the type
// exists so a future statistic source (e.g. per-session histograms) has
// somewhere to hang additional fields without changing the cache's shape.
type cacheKey struct{}

// Session carries whatever a Derive call needs beyond the plan itself. For
// this optimizer core, stats derivation doesn't consult session parameters
// (§4.5 is pure), so Session is presently empty, kept as a struct (not
// removed) so callers of derive_stats(plan, session, types) have a
// consistent signature with derive_cost/optimize (§6).
type Session struct{}

// Derive computes (and memoizes, on g) the statistics for the single
// expression repr, given each child group's already-derived statistics
// (childStats, indexed positionally matching repr.Children()). Derive is
// pure and deterministic (§4.5 contract); callers memoize per group, not
// per-expression, since all members of a group share symbols but may
// differ in shape -- the rewriter's cost comparisons use whichever
// member's stats happen to have been derived for the group, since by
// §4.3 invariant 2 every member describes the same relation and stats
// ought to agree regardless of shape.
func Derive(g *memo.Group, repr plan.Node, childStats []*PlanNodeStatistics) *PlanNodeStatistics {
	if cached, ok := g.CacheGet(cacheKey{}); ok {
		return cached.(*PlanNodeStatistics)
	}
	s := derive(repr, childStats)
	g.CacheSet(cacheKey{}, s)
	return s
}

// DeriveStandalone is Derive without a memo group to cache against: used
// to derive statistics directly over an already-extracted (GroupReference-
// free) plan tree, where there is no group to memoize per (§6
// derive_stats).
func DeriveStandalone(n plan.Node, childStats []*PlanNodeStatistics) *PlanNodeStatistics {
	return derive(n, childStats)
}

func derive(n plan.Node, children []*PlanNodeStatistics) *PlanNodeStatistics {
	switch t := n.(type) {
	case *plan.ScanNode:
		return deriveScan(t)
	case *plan.ValuesNode:
		return deriveValues(t)
	case *plan.TableFunctionNode:
		return &PlanNodeStatistics{RowCount: Unknown, Columns: emptyColumns(t.Cols)}
	case *plan.FilterNode:
		return deriveFilter(t, children[0])
	case *plan.ProjectNode:
		return deriveProject(t, children[0])
	case *plan.AggregationNode:
		return deriveAggregation(t, children[0])
	case *plan.JoinNode:
		return deriveJoin(t, children[0], children[1])
	case *plan.SpatialJoinNode:
		return deriveSpatialJoin(t, children[0], children[1])
	case *plan.UnionNode:
		return deriveUnion(t, children)
	case *plan.ExchangeNode:
		return deriveExchange(t, children[0])
	case *plan.TableWriteNode:
		return children[0]
	default:
		// Unsupported plan shape during stats (§7 Unsupported): Unknown, not
		// fatal, surrounding rewrite proceeds.
		return &PlanNodeStatistics{RowCount: Unknown}
	}
}

func emptyColumns(cols opt.SymbolList) map[opt.ColumnID]ColumnStats {
	m := make(map[opt.ColumnID]ColumnStats, len(cols))
	for _, c := range cols {
		m[c.ID] = ColumnStats{}
	}
	return m
}

func deriveScan(s *plan.ScanNode) *PlanNodeStatistics {
	// The core has no catalog access of its own (§6 "Metadata service:
	// consulted by specific rules", not by stats derivation); a scan's
	// statistics arrive as Unknown until a rule or the analyzer attaches
	// them via a future Replace. This matches §4.5's contract that stats
	// derivation is total: Unknown is a defined result, not an error.
	return &PlanNodeStatistics{RowCount: Unknown, Columns: emptyColumns(s.Cols)}
}

func deriveValues(v *plan.ValuesNode) *PlanNodeStatistics {
	// §8 Boundary behaviors: "Empty plan (single Values with zero rows):
	// all statistics are rows=0".
	rows := KnownValue(float64(len(v.Rows)))
	cols := make(map[opt.ColumnID]ColumnStats, len(v.Cols))
	for _, c := range v.Cols {
		ndv := KnownValue(math.Min(float64(len(v.Rows)), rows.N))
		cols[c.ID] = ColumnStats{NDV: ndv, NullCount: KnownValue(0)}
	}
	return &PlanNodeStatistics{RowCount: rows, Columns: cols}
}

// selectivityOf returns the estimated selectivity of pred, clamped to
// [0, 1] (§4.5). Lacking a histogram/value-range model, every comparison
// predicate gets a fixed heuristic selectivity; an equality is assumed
// more selective than an inequality, matching the usual cost-model
// intuition without requiring per-column distribution data that this core
// doesn't own.
func selectivityOf(pred scalar.Expr) float64 {
	switch e := pred.(type) {
	case *scalar.Comparison:
		if e.Op == scalar.EQ {
			return 0.1
		}
		return 0.33
	case *scalar.And:
		sel := 1.0
		for _, a := range e.Args {
			sel *= selectivityOf(a)
		}
		return clamp01(sel)
	case *scalar.Or:
		// Inclusion-exclusion approximation treating branches as
		// independent: 1 - product(1 - sel(branch)).
		keep := 1.0
		for _, a := range e.Args {
			keep *= 1 - selectivityOf(a)
		}
		return clamp01(1 - keep)
	case *scalar.Not:
		return clamp01(1 - selectivityOf(e.Arg))
	default:
		return 1.0
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func deriveFilter(f *plan.FilterNode, in *PlanNodeStatistics) *PlanNodeStatistics {
	if !in.RowCount.Known {
		return &PlanNodeStatistics{RowCount: Unknown, Columns: copyColumns(in.Columns)}
	}
	sel := selectivityOf(f.Predicate)
	rows := KnownValue(in.RowCount.N * sel)
	cols := make(map[opt.ColumnID]ColumnStats, len(in.Columns))
	for id, cs := range in.Columns {
		ncs := cs
		if cs.NDV.Known {
			// NDV never exceeds row count (§4.5).
			ncs.NDV = KnownValue(math.Min(cs.NDV.N, rows.N))
		}
		cols[id] = ncs
	}
	return &PlanNodeStatistics{RowCount: rows, Columns: cols}
}

func copyColumns(m map[opt.ColumnID]ColumnStats) map[opt.ColumnID]ColumnStats {
	out := make(map[opt.ColumnID]ColumnStats, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func deriveProject(p *plan.ProjectNode, in *PlanNodeStatistics) *PlanNodeStatistics {
	cols := make(map[opt.ColumnID]ColumnStats, len(p.Projections))
	for _, item := range p.Projections {
		if v, ok := item.Expr.(*scalar.Variable); ok {
			if cs, ok := in.Columns[opt.ColumnID(v.Col)]; ok {
				cols[item.Col.ID] = cs
				continue
			}
		}
		// Computed column: NDV inherited from inputs when simply a passthrough
		// (handled above); otherwise range/domain is Unknown (§4.5).
		outer := scalar.OuterCols(item.Expr)
		ndv := Unknown
		for oc := range outer {
			if cs, ok := in.Columns[opt.ColumnID(oc)]; ok && cs.NDV.Known {
				if !ndv.Known || cs.NDV.N > ndv.N {
					ndv = cs.NDV
				}
			}
		}
		cols[item.Col.ID] = ColumnStats{NDV: ndv}
	}
	return &PlanNodeStatistics{RowCount: in.RowCount, Columns: cols}
}

func deriveAggregation(a *plan.AggregationNode, in *PlanNodeStatistics) *PlanNodeStatistics {
	groupNDVProduct := KnownValue(1)
	a.GroupingCols.ForEach(func(col opt.ColumnID) {
		if cs, ok := in.Columns[col]; ok && cs.NDV.Known && groupNDVProduct.Known {
			groupNDVProduct = KnownValue(groupNDVProduct.N * cs.NDV.N)
		} else {
			groupNDVProduct = Unknown
		}
	})
	rows := combine(groupNDVProduct, in.RowCount, math.Min)
	if !in.RowCount.Known {
		rows = Unknown
	}

	cols := make(map[opt.ColumnID]ColumnStats)
	a.GroupingCols.ForEach(func(col opt.ColumnID) {
		if cs, ok := in.Columns[col]; ok {
			// Per-symbol NDV of a group key equals its input NDV (§4.5).
			cols[col] = ColumnStats{NDV: cs.NDV}
		}
	})
	for _, agg := range a.Aggregates {
		// Aggregate outputs have NDV = row count (§4.5).
		cols[agg.Col.ID] = ColumnStats{NDV: rows}
	}
	return &PlanNodeStatistics{RowCount: rows, Columns: cols}
}

func deriveJoin(j *plan.JoinNode, left, right *PlanNodeStatistics) *PlanNodeStatistics {
	cols := make(map[opt.ColumnID]ColumnStats, len(left.Columns)+len(right.Columns))
	for k, v := range left.Columns {
		cols[k] = v
	}
	for k, v := range right.Columns {
		if _, exists := cols[k]; !exists {
			cols[k] = v
		}
	}

	if j.Operator_ == plan.SemiJoinOp {
		// Semi-join output ≈ rows(A) * min(1, NDV(b)/NDV(a)) (§4.5).
		if len(j.EquiKeys) == 0 || !left.RowCount.Known {
			return &PlanNodeStatistics{RowCount: Unknown, Columns: left.Columns}
		}
		k := j.EquiKeys[0]
		aNDV, aOK := left.Columns[k.Left]
		bNDV, bOK := right.Columns[k.Right]
		if !aOK || !bOK || !aNDV.NDV.Known || !bNDV.NDV.Known || aNDV.NDV.N == 0 {
			return &PlanNodeStatistics{RowCount: Unknown, Columns: left.Columns}
		}
		ratio := math.Min(1, bNDV.NDV.N/aNDV.NDV.N)
		return &PlanNodeStatistics{RowCount: KnownValue(left.RowCount.N * ratio), Columns: left.Columns}
	}

	if !left.RowCount.Known || !right.RowCount.Known {
		return &PlanNodeStatistics{RowCount: Unknown, Columns: cols}
	}

	rows := left.RowCount.N * right.RowCount.N
	if len(j.EquiKeys) > 0 {
		maxNDV := 1.0
		for _, k := range j.EquiKeys {
			aNDV := ndvOf(left, k.Left)
			bNDV := ndvOf(right, k.Right)
			if aNDV > maxNDV {
				maxNDV = aNDV
			}
			if bNDV > maxNDV {
				maxNDV = bNDV
			}
		}
		if maxNDV > 0 {
			rows /= maxNDV
		}
	}
	for _, e := range j.On {
		rows *= selectivityOf(e)
	}
	return &PlanNodeStatistics{RowCount: KnownValue(rows), Columns: cols}
}

func ndvOf(s *PlanNodeStatistics, col opt.ColumnID) float64 {
	if cs, ok := s.Columns[col]; ok && cs.NDV.Known {
		return cs.NDV.N
	}
	return 1
}

func deriveSpatialJoin(sj *plan.SpatialJoinNode, left, right *PlanNodeStatistics) *PlanNodeStatistics {
	cols := make(map[opt.ColumnID]ColumnStats, len(left.Columns)+len(right.Columns))
	for k, v := range left.Columns {
		cols[k] = v
	}
	for k, v := range right.Columns {
		cols[k] = v
	}
	if !left.RowCount.Known || !right.RowCount.Known {
		return &PlanNodeStatistics{RowCount: Unknown, Columns: cols}
	}
	// No geometry distribution model available; use a conservative fixed
	// selectivity, consistent with this core owning no spatial index
	// statistics (the analyzer/metadata service would supply better ones
	// via a future rule).
	return &PlanNodeStatistics{RowCount: KnownValue(left.RowCount.N * right.RowCount.N * 0.05), Columns: cols}
}

// deriveUnion implements §4.5 "Union: rows sum, per-symbol stats combined
// with addStatsAndMaxDistinctValues (sum of rows, NDV = min(sum, sum of
// NDVs), null count sums, ranges widened)". Each input's statistics are
// keyed by that input's own column ids, which differ from the union's
// declared output symbols, so inputs[i]'s statistics are looked up
// positionally via u.Inputs[i].OutputSymbols() to find the matching
// source column for each output position.
func deriveUnion(u *plan.UnionNode, children []*PlanNodeStatistics) *PlanNodeStatistics {
	rows := KnownValue(0)
	for _, ch := range children {
		if !ch.RowCount.Known || !rows.Known {
			rows = Unknown
		} else {
			rows = KnownValue(rows.N + ch.RowCount.N)
		}
	}

	cols := make(map[opt.ColumnID]ColumnStats, len(u.Cols))
	for idx, out := range u.Cols {
		sumNDV, sumOfNDVs := 0.0, 0.0
		sumNullCount := 0.0
		ndvKnown, nullKnown := true, true
		rangeKnown := len(children) > 0
		rangeMin, rangeMax := math.Inf(1), math.Inf(-1)
		for i, ch := range children {
			inSyms := u.Inputs[i].OutputSymbols()
			if idx >= len(inSyms) {
				ndvKnown, nullKnown, rangeKnown = false, false, false
				continue
			}
			cs, ok := ch.Columns[inSyms[idx].ID]
			if !ok || !cs.RangeKnown {
				rangeKnown = false
			} else {
				rangeMin = math.Min(rangeMin, cs.RangeMin)
				rangeMax = math.Max(rangeMax, cs.RangeMax)
			}
			if !ok || !cs.NDV.Known {
				ndvKnown = false
			} else {
				sumOfNDVs += cs.NDV.N
			}
			if !ok || !cs.NullCount.Known {
				nullKnown = false
			} else {
				sumNullCount += cs.NullCount.N
			}
		}
		if ndvKnown && rows.Known {
			sumNDV = math.Min(rows.N, sumOfNDVs)
		}
		merged := ColumnStats{}
		if ndvKnown && rows.Known {
			merged.NDV = KnownValue(sumNDV)
		}
		if nullKnown {
			merged.NullCount = KnownValue(sumNullCount)
		}
		if rangeKnown {
			merged.RangeKnown, merged.RangeMin, merged.RangeMax = true, rangeMin, rangeMax
		}
		cols[out.ID] = merged
	}
	return &PlanNodeStatistics{RowCount: rows, Columns: cols}
}

func deriveExchange(e *plan.ExchangeNode, in *PlanNodeStatistics) *PlanNodeStatistics {
	// Positional alignment of inputs[i] with outputs[i] is asserted, not
	// guessed (§9 Open Questions: preserve the assertion).
	cols := make(map[opt.ColumnID]ColumnStats)
	for _, src := range e.Sources {
		if len(src.Input) != len(src.Output) {
			// Invariant violation: this source's remapped columns degrade to
			// Unknown here rather than panicking mid-derivation, since stats
			// derivation also runs over not-yet-final memo candidates that
			// later rewrites may still discard. validate.checkExchangeSourceAlignment
			// (C8) is what fails the plan fatally on this shape once it
			// survives to the extracted, final plan.
			continue
		}
		for i, out := range src.Output {
			if cs, ok := in.Columns[src.Input[i].ID]; ok {
				cols[out.ID] = cs
			}
		}
	}
	return &PlanNodeStatistics{RowCount: in.RowCount, Columns: cols}
}
