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

// Package validate implements the post-fixpoint sanity checkers (C8, §4.8):
// a set of visitors run over the extracted physical plan, each producing
// Ok or a *optfail.Failure describing the offending sub-plan. Grounded on
// the teacher's plan-validation passes run after optimization
// (xform/optimizer_reference.go's post-exploration checks), adapted to four
// checkers: scaled-writer usage, symbol scoping, no remaining group
// references, and exchange source alignment.
package validate

import (
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/optfail"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/scalar"
)

// Probe is the subset of rewrite.MetadataProbe the scaled-writers checker
// needs. Defined locally (rather than importing rewrite) so validate has
// no dependency on the rewrite engine -- it only ever sees the plan the
// engine already produced.
type Probe interface {
	SupportsWrittenBytesReporting(target string) bool
	SupportsMultipleWritersPerPartition(target string) bool
}

// Plan runs every C8 checker over root and returns the first failure
// encountered, or nil if root passes all of them.
func Plan(root plan.Node, probe Probe) *optfail.Failure {
	if f := checkScaledWriters(root, probe); f != nil {
		return f
	}
	if f := checkSymbolScoping(root); f != nil {
		return f
	}
	if f := checkNoGroupReferences(root); f != nil {
		return f
	}
	if f := checkExchangeSourceAlignment(root); f != nil {
		return f
	}
	return nil
}

// checkScaledWriters walks root for every TableWriteNode, collects the
// PartitioningHandle of every ExchangeNode beneath it, and requires the
// write target to support what a scale-writer-like partitioning demands
// (§4.8 "Scaled-writers usage").
func checkScaledWriters(root plan.Node, probe Probe) *optfail.Failure {
	var failure *optfail.Failure
	walk(root, func(n plan.Node) bool {
		if failure != nil {
			return false
		}
		tw, ok := n.(*plan.TableWriteNode)
		if !ok {
			return true
		}
		walk(tw.Input, func(c plan.Node) bool {
			if failure != nil {
				return false
			}
			ex, ok := c.(*plan.ExchangeNode)
			if !ok {
				return true
			}
			if !ex.Partitioning.IsScaleWriterLike() {
				return true
			}
			target := tw.Target
			supportsBytes := target.SupportsPhysicalWrittenBytes
			supportsMultiWriters := target.SupportsMultipleWritersPerPart
			if probe != nil {
				supportsBytes = probe.SupportsWrittenBytesReporting(target.Name)
				supportsMultiWriters = probe.SupportsMultipleWritersPerPartition(target.Name)
			}
			if !supportsBytes {
				failure = optfail.New(optfail.ValidationFailure,
					"write target %q does not support physical written bytes reporting, required by %s",
					target.Name, ex.Partitioning).WithNodeIDs(int64(tw.ID()), int64(ex.ID()))
				return false
			}
			if ex.Partitioning == opt.ScaledWriterHashPartitioning && !supportsMultiWriters {
				failure = optfail.New(optfail.ValidationFailure,
					"write target %q does not support multiple writers per partition, required by %s",
					target.Name, ex.Partitioning).WithNodeIDs(int64(tw.ID()), int64(ex.ID()))
				return false
			}
			return true
		})
		return true
	})
	return failure
}

// checkSymbolScoping requires every symbol a node reads to have been
// produced by a child or introduced locally (§4.8 "Symbol scoping").
func checkSymbolScoping(root plan.Node) *optfail.Failure {
	var failure *optfail.Failure
	walk(root, func(n plan.Node) bool {
		if failure != nil {
			return false
		}
		in := opt.ColSet{}
		for _, c := range n.Children() {
			for _, s := range c.OutputSymbols() {
				in.Add(s.ID)
			}
		}
		for _, s := range readSymbols(n) {
			if !in.Contains(s) && !producesLocally(n, s) {
				failure = optfail.New(optfail.InvalidPlan,
					"symbol %d referenced by node %d is not in scope", s, n.ID()).
					WithNodeIDs(int64(n.ID()))
				return false
			}
		}
		return true
	})
	return failure
}

// checkNoGroupReferences requires that, after extraction, no GroupReference
// remains anywhere in the plan (§4.8 "No group references", §4.3 invariant
// 1 applies only inside the memo -- the extracted plan must have none).
func checkNoGroupReferences(root plan.Node) *optfail.Failure {
	var failure *optfail.Failure
	walk(root, func(n plan.Node) bool {
		if failure != nil {
			return false
		}
		if n.Op() == plan.GroupReferenceOp {
			failure = optfail.New(optfail.InvalidPlan,
				"GroupReference %d remains in the extracted plan", n.ID()).
				WithNodeIDs(int64(n.ID()))
			return false
		}
		return true
	})
	return failure
}

// checkExchangeSourceAlignment requires every ExchangeNode's sources to map
// inputs[i] to outputs[i] positionally, one-to-one (§4.5 "Exchange node
// stats mapping assumes positional alignment of inputs[i] with outputs[i]").
// A source whose Input and Output lists differ in length is not a shape
// stats.Derive can ever assign meaning to -- it is an invariant violation
// produced upstream, never a recoverable condition, so it fails the plan
// here rather than silently degrading to Unknown (see
// stats.deriveExchange's comment).
func checkExchangeSourceAlignment(root plan.Node) *optfail.Failure {
	var failure *optfail.Failure
	walk(root, func(n plan.Node) bool {
		if failure != nil {
			return false
		}
		ex, ok := n.(*plan.ExchangeNode)
		if !ok {
			return true
		}
		for i, src := range ex.Sources {
			if len(src.Input) != len(src.Output) {
				failure = optfail.New(optfail.InvalidPlan,
					"exchange %d source %d maps %d input columns to %d output columns, want equal counts",
					ex.ID(), i, len(src.Input), len(src.Output)).WithNodeIDs(int64(ex.ID()))
				return false
			}
		}
		return true
	})
	return failure
}

// walk visits n and every descendant pre-order, depth-first, stopping early
// if visit returns false for any node (used to short-circuit once a
// checker has found its first failure).
func walk(n plan.Node, visit func(plan.Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children() {
		walk(c, visit)
	}
}

// readSymbols returns the symbols n itself references beyond what its
// children produce: predicates, projections, join keys and the like. Only
// the node kinds that read symbols directly (rather than merely passing
// through a child's full output) are covered; the rest read nothing of
// their own.
func readSymbols(n plan.Node) []opt.ColumnID {
	switch t := n.(type) {
	case *plan.FilterNode:
		return exprCols(t.Predicate)
	case *plan.ProjectNode:
		var ids []opt.ColumnID
		for _, p := range t.Projections {
			ids = append(ids, exprCols(p.Expr)...)
		}
		return ids
	case *plan.AggregationNode:
		var ids []opt.ColumnID
		t.GroupingCols.ForEach(func(c opt.ColumnID) { ids = append(ids, c) })
		for _, a := range t.Aggregates {
			ids = append(ids, a.ArgCols...)
		}
		return ids
	case *plan.JoinNode:
		var ids []opt.ColumnID
		for _, k := range t.EquiKeys {
			ids = append(ids, k.Left, k.Right)
		}
		for _, e := range t.On {
			ids = append(ids, exprCols(e)...)
		}
		return ids
	case *plan.SpatialJoinNode:
		return []opt.ColumnID{t.LeftGeom, t.RightGeom}
	default:
		return nil
	}
}

// producesLocally reports whether n introduces symbol s itself rather than
// reading it from a child, e.g. a ScanNode's/ValuesNode's own output
// columns, or a ProjectNode's newly-computed column.
func producesLocally(n plan.Node, s opt.ColumnID) bool {
	for _, c := range n.OutputSymbols() {
		if c.ID == s {
			switch n.(type) {
			case *plan.ScanNode, *plan.ValuesNode, *plan.TableFunctionNode, *plan.ProjectNode:
				return true
			}
		}
	}
	return false
}

// exprCols collects every ColumnID a scalar expression reads, via the
// Variable leaves scalar.OuterCols finds.
func exprCols(e scalar.Expr) []opt.ColumnID {
	if e == nil {
		return nil
	}
	outer := scalar.OuterCols(e)
	ids := make([]opt.ColumnID, 0, len(outer))
	for c := range outer {
		ids = append(ids, opt.ColumnID(c))
	}
	return ids
}
