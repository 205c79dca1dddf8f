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

package validate_test

import (
	"testing"

	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/optfail"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/scalar"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/validate"
	"github.com/stretchr/testify/require"
)

var cols = opt.SymbolList{{ID: 1, Name: "x", Typ: opt.Type{Kind: opt.Int64Type}}}

// TestScaledWriterHashRejectedWithoutMultiWriterSupport reproduces §8
// scenario 6: TableWriter(target=T) <- Exchange(SCALED_WRITER_HASH) <- Scan,
// where T does not support multiple writers per partition.
func TestScaledWriterHashRejectedWithoutMultiWriterSupport(t *testing.T) {
	scan := &plan.ScanNode{NodeID_: 1, Table: "t", Cols: cols}
	ex := &plan.ExchangeNode{
		NodeID_:      2,
		Input:        scan,
		Partitioning: opt.ScaledWriterHashPartitioning,
		Sources:      []plan.SourceMapping{{Input: cols, Output: cols}},
	}
	write := &plan.TableWriteNode{
		NodeID_: 3,
		Input:   ex,
		Target: plan.WriteTarget{
			Name:                           "T",
			SupportsPhysicalWrittenBytes:   true,
			SupportsMultipleWritersPerPart: false,
		},
		Cols: cols,
	}

	f := validate.Plan(write, nil)
	require.NotNil(t, f, "expected a ValidationFailure naming T")
	require.Equal(t, optfail.ValidationFailure, f.Kind)
	require.Contains(t, f.Error(), "T", "error does not name the offending target T")
}

// TestScaledWriterAcceptedWithSupport is the positive counterpart: the same
// shape passes once the target reports both capabilities.
func TestScaledWriterAcceptedWithSupport(t *testing.T) {
	scan := &plan.ScanNode{NodeID_: 1, Table: "t", Cols: cols}
	ex := &plan.ExchangeNode{
		NodeID_:      2,
		Input:        scan,
		Partitioning: opt.ScaledWriterHashPartitioning,
		Sources:      []plan.SourceMapping{{Input: cols, Output: cols}},
	}
	write := &plan.TableWriteNode{
		NodeID_: 3,
		Input:   ex,
		Target: plan.WriteTarget{
			Name:                           "T",
			SupportsPhysicalWrittenBytes:   true,
			SupportsMultipleWritersPerPart: true,
		},
		Cols: cols,
	}

	require.Nil(t, validate.Plan(write, nil))
}

// TestScaledWriterNonHashNeedsOnlyBytesReporting checks the plain
// ScaledWriterPartitioning variant doesn't require multi-writer support,
// only written-bytes reporting.
func TestScaledWriterNonHashNeedsOnlyBytesReporting(t *testing.T) {
	scan := &plan.ScanNode{NodeID_: 1, Table: "t", Cols: cols}
	ex := &plan.ExchangeNode{
		NodeID_:      2,
		Input:        scan,
		Partitioning: opt.ScaledWriterPartitioning,
		Sources:      []plan.SourceMapping{{Input: cols, Output: cols}},
	}
	write := &plan.TableWriteNode{
		NodeID_: 3,
		Input:   ex,
		Target: plan.WriteTarget{
			Name:                           "T",
			SupportsPhysicalWrittenBytes:   true,
			SupportsMultipleWritersPerPart: false,
		},
		Cols: cols,
	}

	require.Nil(t, validate.Plan(write, nil))
}

// TestGroupReferenceRemainingIsRejected covers §4.8 "No group references":
// a plan with a bare GroupReference standing in for a child must fail.
func TestGroupReferenceRemainingIsRejected(t *testing.T) {
	filter := &plan.FilterNode{
		NodeID_: 2,
		Input:   &stubGroupRef{},
		Predicate: &scalar.Comparison{
			Op:    scalar.EQ,
			Left:  &scalar.Variable{Col: 1, Name: "x"},
			Right: &scalar.Const{Value: int64(5)},
		},
	}

	f := validate.Plan(filter, nil)
	require.NotNil(t, f)
	require.Equal(t, optfail.InvalidPlan, f.Kind, "expected InvalidPlan for a remaining GroupReference")
}

// TestOrphanSymbolIsRejected covers §4.8 "Symbol scoping": a predicate
// referencing a column no child produces must fail.
func TestOrphanSymbolIsRejected(t *testing.T) {
	scan := &plan.ScanNode{NodeID_: 1, Table: "t", Cols: cols}
	filter := &plan.FilterNode{
		NodeID_: 2,
		Input:   scan,
		Predicate: &scalar.Comparison{
			Op:    scalar.EQ,
			Left:  &scalar.Variable{Col: 99, Name: "orphan"},
			Right: &scalar.Const{Value: int64(5)},
		},
	}

	f := validate.Plan(filter, nil)
	require.NotNil(t, f)
	require.Equal(t, optfail.InvalidPlan, f.Kind, "expected InvalidPlan for an orphan symbol")
}

// TestExchangeSourceLengthMismatchIsRejected covers §4.5's positional
// alignment assertion for exchange sources: a source whose Input and Output
// lists differ in length must fail validation rather than silently mapping
// a subset of columns.
func TestExchangeSourceLengthMismatchIsRejected(t *testing.T) {
	scan := &plan.ScanNode{NodeID_: 1, Table: "t", Cols: cols}
	ex := &plan.ExchangeNode{
		NodeID_: 2,
		Input:   scan,
		Sources: []plan.SourceMapping{{Input: cols, Output: append(cols, opt.Symbol{ID: 2, Name: "y", Typ: opt.Type{Kind: opt.Int64Type}})}},
	}

	f := validate.Plan(ex, nil)
	require.NotNil(t, f)
	require.Equal(t, optfail.InvalidPlan, f.Kind, "expected InvalidPlan for a length-mismatched exchange source")
}

type stubGroupRef struct{}

func (s *stubGroupRef) Op() plan.Operator             { return plan.GroupReferenceOp }
func (s *stubGroupRef) ID() plan.NodeID               { return 1 }
func (s *stubGroupRef) Children() []plan.Node         { return nil }
func (s *stubGroupRef) OutputSymbols() opt.SymbolList { return cols }
func (s *stubGroupRef) ReplaceChildren(c []plan.Node) (plan.Node, error) {
	return s, nil
}
