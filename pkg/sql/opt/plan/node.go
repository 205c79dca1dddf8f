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

// Package plan defines the relational plan-node data model (§4.1, C1): one
// variant per relational operator, modeled as a tagged union following the
// re-architecture note in spec §9 ("tagged union with exhaustive match")
// rather than as a class hierarchy with virtual dispatch. This package is
// pure data: it holds no optimization logic and never mutates a node handed
// to it (§3 Lifecycle: "The core never mutates input nodes").
package plan

import (
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt"
	"github.com/cockroachdb/errors"
)

// Operator identifies a plan node's relational variant.
type Operator uint8

const (
	UnknownOp Operator = iota
	ScanOp
	FilterOp
	ProjectOp
	AggregationOp
	InnerJoinOp
	LeftJoinOp
	RightJoinOp
	FullJoinOp
	SemiJoinOp
	AntiJoinOp
	SpatialJoinOp
	UnionOp
	ExchangeOp
	TableWriteOp
	TableFunctionOp
	ValuesOp

	// GroupReferenceOp is reserved for memo.GroupReference, which also
	// implements Node so that memo expressions can reuse this package's
	// Accept/ReplaceChildren machinery. A GroupReference must never be
	// visited by a physical-plan visitor (§4.1).
	GroupReferenceOp
)

// String implements fmt.Stringer.
func (o Operator) String() string {
	switch o {
	case ScanOp:
		return "scan"
	case FilterOp:
		return "filter"
	case ProjectOp:
		return "project"
	case AggregationOp:
		return "aggregation"
	case InnerJoinOp:
		return "inner-join"
	case LeftJoinOp:
		return "left-join"
	case RightJoinOp:
		return "right-join"
	case FullJoinOp:
		return "full-join"
	case SemiJoinOp:
		return "semi-join"
	case AntiJoinOp:
		return "anti-join"
	case SpatialJoinOp:
		return "spatial-join"
	case UnionOp:
		return "union"
	case ExchangeOp:
		return "exchange"
	case TableWriteOp:
		return "table-write"
	case TableFunctionOp:
		return "table-function"
	case ValuesOp:
		return "values"
	case GroupReferenceOp:
		return "group-ref"
	default:
		return "unknown"
	}
}

// Arity returns the fixed number of children the variant requires, or -1 if
// the variant accepts a variable number of children (e.g. union, §3
// invariant 2: "children.len == arity defined by the variant").
func (o Operator) Arity() int {
	switch o {
	case ScanOp, ValuesOp, TableFunctionOp:
		return 0
	case FilterOp, ProjectOp, AggregationOp, ExchangeOp, TableWriteOp:
		return 1
	case InnerJoinOp, LeftJoinOp, RightJoinOp, FullJoinOp,
		SemiJoinOp, AntiJoinOp, SpatialJoinOp:
		return 2
	case UnionOp:
		return -1
	case GroupReferenceOp:
		return 0
	default:
		return -1
	}
}

// NodeID uniquely identifies a plan node within a single plan (§3 Plan node:
// "an immutable node identifier unique within the plan").
type NodeID int64

// Node is the common interface implemented by every plan-node variant (and
// by memo.GroupReference, which stands in for "any current member of group
// X" wherever a memo expression's child would otherwise be a concrete node;
// §3 Group reference).
type Node interface {
	// Op returns the node's operator variant.
	Op() Operator

	// ID returns the node's identifier, unique within the plan (§3 invariant:
	// "duplicate node id" is an InvalidPlan error, §7).
	ID() NodeID

	// Children returns the node's ordered child list. For GroupReferenceOp,
	// this is always empty.
	Children() []Node

	// OutputSymbols returns the symbols this node produces (§4.1
	// output_symbols).
	OutputSymbols() opt.SymbolList

	// ReplaceChildren returns a copy of this node with its children list
	// replaced by newChildren, preserving id and attributes (§4.1
	// replace_children). It returns ErrArity if len(newChildren) doesn't
	// match the variant's arity.
	ReplaceChildren(newChildren []Node) (Node, error)
}

// ErrArity is returned by ReplaceChildren when the replacement child list
// has a different length than the original (§4.1).
var ErrArity = errors.New("replace_children: arity mismatch")

// Visitor is implemented by callers of Accept (§4.1 accept). The default
// traversal recurses into every child; a Visitor that wants to prune a
// subtree returns false from Visit for that subtree's root.
type Visitor interface {
	// Visit is called once per node in a pre-order traversal. It returns
	// whether Accept should recurse into n's children.
	Visit(n Node) (recurse bool)
}

// Accept performs double-dispatch traversal of the plan rooted at n (§4.1
// accept). GroupReferenceOp nodes must never reach a physical-plan visitor;
// callers that walk memo expressions use memo-aware traversal instead (see
// package memo), never this function, to enforce that invariant.
func Accept(n Node, v Visitor) {
	if n.Op() == GroupReferenceOp {
		panic(errors.AssertionFailedf("group reference must not be visited by a plan Visitor"))
	}
	if !v.Visit(n) {
		return
	}
	for _, c := range n.Children() {
		if c.Op() == GroupReferenceOp {
			continue
		}
		Accept(c, v)
	}
}

// replaceChildrenArity validates that newChildren has the expected length
// for op, returning ErrArity wrapped with the offending node id otherwise.
// Every concrete node's ReplaceChildren method calls this first (§4.1
// invariant 2/3).
func replaceChildrenArity(id NodeID, op Operator, newChildren []Node) error {
	arity := op.Arity()
	if arity < 0 {
		return nil
	}
	if len(newChildren) != arity {
		return errors.Wrapf(ErrArity, "node %d (%s): expected %d children, got %d",
			id, op, arity, len(newChildren))
	}
	return nil
}
