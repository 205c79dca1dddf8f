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

package plan

import (
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/scalar"
)

// ScanNode reads all rows of a table (or one of its indexes) (§3).
type ScanNode struct {
	NodeID_ NodeID
	Table   string
	Cols    opt.SymbolList
}

func (n *ScanNode) Op() Operator              { return ScanOp }
func (n *ScanNode) ID() NodeID                { return n.NodeID_ }
func (n *ScanNode) Children() []Node          { return nil }
func (n *ScanNode) OutputSymbols() opt.SymbolList { return n.Cols }
func (n *ScanNode) ReplaceChildren(c []Node) (Node, error) {
	if err := replaceChildrenArity(n.NodeID_, ScanOp, c); err != nil {
		return nil, err
	}
	cp := *n
	return &cp, nil
}

// ValuesNode is a literal row set; with zero rows it is the canonical empty
// relation used by the boundary-behavior tests in §8.
type ValuesNode struct {
	NodeID_ NodeID
	Cols    opt.SymbolList
	Rows    [][]scalar.Expr
}

func (n *ValuesNode) Op() Operator              { return ValuesOp }
func (n *ValuesNode) ID() NodeID                { return n.NodeID_ }
func (n *ValuesNode) Children() []Node          { return nil }
func (n *ValuesNode) OutputSymbols() opt.SymbolList { return n.Cols }
func (n *ValuesNode) ReplaceChildren(c []Node) (Node, error) {
	if err := replaceChildrenArity(n.NodeID_, ValuesOp, c); err != nil {
		return nil, err
	}
	cp := *n
	return &cp, nil
}

// TableFunctionNode invokes a set-returning function as a leaf relation.
type TableFunctionNode struct {
	NodeID_  NodeID
	Name     string
	Args     []scalar.Expr
	Cols     opt.SymbolList
}

func (n *TableFunctionNode) Op() Operator              { return TableFunctionOp }
func (n *TableFunctionNode) ID() NodeID                { return n.NodeID_ }
func (n *TableFunctionNode) Children() []Node          { return nil }
func (n *TableFunctionNode) OutputSymbols() opt.SymbolList { return n.Cols }
func (n *TableFunctionNode) ReplaceChildren(c []Node) (Node, error) {
	if err := replaceChildrenArity(n.NodeID_, TableFunctionOp, c); err != nil {
		return nil, err
	}
	cp := *n
	return &cp, nil
}

// FilterNode (spec's "filter") passes through input rows matching Predicate.
type FilterNode struct {
	NodeID_   NodeID
	Input     Node
	Predicate scalar.Expr
}

func (n *FilterNode) Op() Operator              { return FilterOp }
func (n *FilterNode) ID() NodeID                { return n.NodeID_ }
func (n *FilterNode) Children() []Node          { return []Node{n.Input} }
func (n *FilterNode) OutputSymbols() opt.SymbolList { return n.Input.OutputSymbols() }
func (n *FilterNode) ReplaceChildren(c []Node) (Node, error) {
	if err := replaceChildrenArity(n.NodeID_, FilterOp, c); err != nil {
		return nil, err
	}
	cp := *n
	cp.Input = c[0]
	return &cp, nil
}

// ProjectItem computes one output column.
type ProjectItem struct {
	Col        opt.Symbol
	Expr       scalar.Expr
}

// ProjectNode computes an explicit output column list from its input.
type ProjectNode struct {
	NodeID_     NodeID
	Input       Node
	Projections []ProjectItem
}

func (n *ProjectNode) Op() Operator     { return ProjectOp }
func (n *ProjectNode) ID() NodeID       { return n.NodeID_ }
func (n *ProjectNode) Children() []Node { return []Node{n.Input} }
func (n *ProjectNode) OutputSymbols() opt.SymbolList {
	cols := make(opt.SymbolList, len(n.Projections))
	for i, p := range n.Projections {
		cols[i] = p.Col
	}
	return cols
}
func (n *ProjectNode) ReplaceChildren(c []Node) (Node, error) {
	if err := replaceChildrenArity(n.NodeID_, ProjectOp, c); err != nil {
		return nil, err
	}
	cp := *n
	cp.Input = c[0]
	return &cp, nil
}

// AggregateSpec describes one aggregate function applied over a grouping.
type AggregateSpec struct {
	Col      opt.Symbol
	FuncName string
	ArgCols  []opt.ColumnID
	Distinct bool
}

// AggregationNode groups Input by GroupingCols and computes Aggregates
// (§3: "an aggregation’s grouping set and per-symbol aggregate
// specifications").
type AggregationNode struct {
	NodeID_      NodeID
	Input        Node
	GroupingCols opt.ColSet
	Aggregates   []AggregateSpec
}

func (n *AggregationNode) Op() Operator     { return AggregationOp }
func (n *AggregationNode) ID() NodeID       { return n.NodeID_ }
func (n *AggregationNode) Children() []Node { return []Node{n.Input} }
func (n *AggregationNode) OutputSymbols() opt.SymbolList {
	var cols opt.SymbolList
	for _, in := range n.Input.OutputSymbols() {
		if n.GroupingCols.Contains(in.ID) {
			cols = append(cols, in)
		}
	}
	for _, a := range n.Aggregates {
		cols = append(cols, a.Col)
	}
	return cols
}
func (n *AggregationNode) ReplaceChildren(c []Node) (Node, error) {
	if err := replaceChildrenArity(n.NodeID_, AggregationOp, c); err != nil {
		return nil, err
	}
	cp := *n
	cp.Input = c[0]
	return &cp, nil
}

// EquiKey is one equality conjunct of a join's ON condition, expressed as a
// pair of columns drawn one from each side (§3: "a join’s equi-keys").
type EquiKey struct {
	Left, Right opt.ColumnID
}

// DistributionHint names the physical join strategy the analyzer believes
// is appropriate; the optimizer core treats it as an attribute to be
// respected or overridden by rules, not as something it derives itself.
type DistributionHint uint8

const (
	DistributionUnspecified DistributionHint = iota
	DistributionPartitioned
	DistributionReplicated
)

// JoinNode covers all of InnerJoinOp, LeftJoinOp, RightJoinOp, FullJoinOp,
// SemiJoinOp and AntiJoinOp; the Operator field (not embedded in the Go type
// name) is what the pattern language and coster switch on, following the
// teacher's approach in xform/coster.go where InnerJoin/Left/Right/Full all
// funnel into one computeHashJoinCost.
type JoinNode struct {
	NodeID_      NodeID
	Operator_    Operator
	Left, Right  Node
	EquiKeys     []EquiKey
	On           []scalar.Expr // non-equi leftover conjuncts
	Distribution DistributionHint
}

func (n *JoinNode) Op() Operator     { return n.Operator_ }
func (n *JoinNode) ID() NodeID       { return n.NodeID_ }
func (n *JoinNode) Children() []Node { return []Node{n.Left, n.Right} }
func (n *JoinNode) OutputSymbols() opt.SymbolList {
	out := append(opt.SymbolList{}, n.Left.OutputSymbols()...)
	seen := n.Left.OutputSymbols().ColSet()
	for _, s := range n.Right.OutputSymbols() {
		if seen.Contains(s.ID) {
			// Resolved collision: right-side symbol with a colliding id is
			// assumed to have already been re-aliased upstream; the core
			// never invents a new id here, it just keeps positional order.
			continue
		}
		out = append(out, s)
	}
	return out
}
func (n *JoinNode) ReplaceChildren(c []Node) (Node, error) {
	if err := replaceChildrenArity(n.NodeID_, n.Operator_, c); err != nil {
		return nil, err
	}
	cp := *n
	cp.Left, cp.Right = c[0], c[1]
	return &cp, nil
}

// SpatialJoinNode pairs rows whose geometries satisfy Relation (e.g.
// ST_Intersects); kept distinct from JoinNode because its predicate is not
// an equality/leftover-conjunct shape, it's a single spatial relation.
type SpatialJoinNode struct {
	NodeID_     NodeID
	Left, Right Node
	Relation    string
	LeftGeom    opt.ColumnID
	RightGeom   opt.ColumnID
}

func (n *SpatialJoinNode) Op() Operator     { return SpatialJoinOp }
func (n *SpatialJoinNode) ID() NodeID       { return n.NodeID_ }
func (n *SpatialJoinNode) Children() []Node { return []Node{n.Left, n.Right} }
func (n *SpatialJoinNode) OutputSymbols() opt.SymbolList {
	return append(append(opt.SymbolList{}, n.Left.OutputSymbols()...), n.Right.OutputSymbols()...)
}
func (n *SpatialJoinNode) ReplaceChildren(c []Node) (Node, error) {
	if err := replaceChildrenArity(n.NodeID_, SpatialJoinOp, c); err != nil {
		return nil, err
	}
	cp := *n
	cp.Left, cp.Right = c[0], c[1]
	return &cp, nil
}

// SetOpKind distinguishes UNION ALL from UNION DISTINCT semantics for
// UnionNode; intersect and except are not modelled (the core only names
// "union" explicitly in §3).
type SetOpKind uint8

const (
	UnionAll SetOpKind = iota
	UnionDistinct
)

// UnionNode concatenates rows from n >= 2 inputs with the same output arity.
type UnionNode struct {
	NodeID_ NodeID
	Kind    SetOpKind
	Inputs  []Node
	Cols    opt.SymbolList
}

func (n *UnionNode) Op() Operator     { return UnionOp }
func (n *UnionNode) ID() NodeID       { return n.NodeID_ }
func (n *UnionNode) Children() []Node { return n.Inputs }
func (n *UnionNode) OutputSymbols() opt.SymbolList { return n.Cols }
func (n *UnionNode) ReplaceChildren(c []Node) (Node, error) {
	cp := *n
	cp.Inputs = c
	return &cp, nil
}

// SourceMapping describes, for one exchange source, how that source's
// input symbols map onto the exchange's declared output symbols (§3
// invariant: "inputs.len == outputs.len", asserted positionally per source;
// §9 Open Questions: preserve the assertion, a mismatch is an invariant
// violation).
type SourceMapping struct {
	Input  opt.SymbolList
	Output opt.SymbolList
}

// ExchangeNode redistributes rows across workers according to Partitioning.
// It is inserted later in physical compilation; before that happens, the
// cost wrapper (C7) imputes its cost at the nodes that will eventually
// acquire one (§4.7).
type ExchangeNode struct {
	NodeID_      NodeID
	Input        Node
	Partitioning opt.PartitioningHandle
	Sources      []SourceMapping
}

func (n *ExchangeNode) Op() Operator     { return ExchangeOp }
func (n *ExchangeNode) ID() NodeID       { return n.NodeID_ }
func (n *ExchangeNode) Children() []Node { return []Node{n.Input} }
func (n *ExchangeNode) OutputSymbols() opt.SymbolList {
	if len(n.Sources) == 0 {
		return nil
	}
	return n.Sources[0].Output
}
func (n *ExchangeNode) ReplaceChildren(c []Node) (Node, error) {
	if err := replaceChildrenArity(n.NodeID_, ExchangeOp, c); err != nil {
		return nil, err
	}
	cp := *n
	cp.Input = c[0]
	return &cp, nil
}

// WriteTarget describes the sink a TableWriteNode writes to, and what it
// supports (§4.8 Scaled-writers usage, consulted through MetadataProbe).
type WriteTarget struct {
	Name                           string
	SupportsPhysicalWrittenBytes   bool
	SupportsMultipleWritersPerPart bool
}

// TableWriteNode writes Input's rows to Target.
type TableWriteNode struct {
	NodeID_ NodeID
	Input   Node
	Target  WriteTarget
	Cols    opt.SymbolList
}

func (n *TableWriteNode) Op() Operator              { return TableWriteOp }
func (n *TableWriteNode) ID() NodeID                { return n.NodeID_ }
func (n *TableWriteNode) Children() []Node          { return []Node{n.Input} }
func (n *TableWriteNode) OutputSymbols() opt.SymbolList { return n.Cols }
func (n *TableWriteNode) ReplaceChildren(c []Node) (Node, error) {
	if err := replaceChildrenArity(n.NodeID_, TableWriteOp, c); err != nil {
		return nil, err
	}
	cp := *n
	cp.Input = c[0]
	return &cp, nil
}
