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

package cost_test

import (
	"testing"

	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/cost"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/memo"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
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

// TestReplicatedJoinExchangeCost reproduces the "replicated join cost with
// exchange estimate" scenario: probe rows=1e6@100B, build rows=1e4@80B,
// replicated=true, source_tasks=8.
func TestReplicatedJoinExchangeCost(t *testing.T) {
	probeCols := opt.SymbolList{{ID: 1, Name: "p", Typ: opt.Type{Kind: opt.VarBinaryType, Width: 100}}}
	buildCols := opt.SymbolList{{ID: 2, Name: "b", Typ: opt.Type{Kind: opt.VarBinaryType, Width: 80}}}

	m := memo.New()
	left := newGroup(m, &plan.ScanNode{NodeID_: 1, Table: "probe", Cols: probeCols})
	right := newGroup(m, &plan.ScanNode{NodeID_: 2, Table: "build", Cols: buildCols})

	join := &plan.JoinNode{
		NodeID_:      3,
		Operator_:    plan.InnerJoinOp,
		Left:         &memo.GroupReference{Group: left.ID(), Symbols: probeCols},
		Right:        &memo.GroupReference{Group: right.ID(), Symbols: buildCols},
		Distribution: plan.DistributionReplicated,
	}
	joinGroup := newGroup(m, join)

	probeStats := &stats.PlanNodeStatistics{RowCount: stats.KnownValue(1e6)}
	buildStats := &stats.PlanNodeStatistics{RowCount: stats.KnownValue(1e4)}

	session := cost.Session{EstimateExchangesInCost: true, EstimatedSourceTaskCount: 8}

	probeCost := cost.Derive(left, left.Exprs()[0], probeStats, nil, nil, session)
	buildCost := cost.Derive(right, right.Exprs()[0], buildStats, nil, nil, session)

	joinStats := &stats.PlanNodeStatistics{RowCount: stats.Unknown}
	without := cost.Session{EstimateExchangesInCost: false, EstimatedSourceTaskCount: 8}
	baseline := cost.Derive(joinGroup, joinGroup.Exprs()[0], joinStats,
		[]*stats.PlanNodeStatistics{probeStats, buildStats},
		[]*cost.PlanCostEstimate{probeCost, buildCost}, without)

	decorated := cost.Derive(joinGroup, joinGroup.Exprs()[0], joinStats,
		[]*stats.PlanNodeStatistics{probeStats, buildStats},
		[]*cost.PlanCostEstimate{probeCost, buildCost}, session)

	wantNetworkDelta := 8 * 8e5
	wantCPUDelta := 7*8e5 + 8e5
	wantMemDelta := 8e5

	require.Equal(t, wantNetworkDelta, decorated.Network.Value-baseline.Network.Value, "network delta")
	require.Equal(t, wantCPUDelta, decorated.CPU.Value-baseline.CPU.Value, "cpu delta")
	require.Equal(t, wantMemDelta, decorated.MaxMemory.Value-baseline.MaxMemory.Value, "memory delta")
}

// TestAggregationExchangeCost reproduces the "aggregation above scan with
// exchange estimate" scenario: input bytes=1e7, expecting +cpu: 2e7,
// +network: 1e7 (remote + local repartition).
func TestAggregationExchangeCost(t *testing.T) {
	inputCols := opt.SymbolList{{ID: 1, Name: "x", Typ: opt.Type{Kind: opt.VarBinaryType, Width: 1}}}

	m := memo.New()
	scanGroup := newGroup(m, &plan.ScanNode{NodeID_: 1, Table: "t", Cols: inputCols})

	agg := &plan.AggregationNode{
		NodeID_: 2,
		Input:   &memo.GroupReference{Group: scanGroup.ID(), Symbols: inputCols},
	}
	aggGroup := newGroup(m, agg)

	inputStats := &stats.PlanNodeStatistics{RowCount: stats.KnownValue(1e7)}
	aggStats := &stats.PlanNodeStatistics{RowCount: stats.Unknown}

	withoutExchange := cost.Session{EstimateExchangesInCost: false}
	withExchange := cost.Session{EstimateExchangesInCost: true, EstimatedSourceTaskCount: 4}

	inputCost := cost.Derive(scanGroup, scanGroup.Exprs()[0], inputStats, nil, nil, withoutExchange)

	baseline := cost.Derive(aggGroup, aggGroup.Exprs()[0], aggStats,
		[]*stats.PlanNodeStatistics{inputStats}, []*cost.PlanCostEstimate{inputCost}, withoutExchange)
	decorated := cost.Derive(aggGroup, aggGroup.Exprs()[0], aggStats,
		[]*stats.PlanNodeStatistics{inputStats}, []*cost.PlanCostEstimate{inputCost}, withExchange)

	require.Equal(t, 2e7, decorated.CPU.Value-baseline.CPU.Value, "cpu delta")
	require.Equal(t, 1e7, decorated.Network.Value-baseline.Network.Value, "network delta")
}

func TestMetricArithmeticPropagatesUnknown(t *testing.T) {
	require.Equal(t, cost.Unknown, cost.Unknown.Add(cost.Known(1)), "Add with an Unknown operand must yield Unknown")
	require.True(t, cost.Known(5).NonNegative(), "5 must be non-negative")
	require.True(t, cost.Unknown.NonNegative(), "Unknown must count as non-negative (it's not known to be negative)")
}

func TestPlanCostEstimateScalar(t *testing.T) {
	p := cost.PlanCostEstimate{CPU: cost.Known(3), Network: cost.Known(4)}
	got, ok := p.Scalar()
	require.True(t, ok)
	require.Equal(t, 7.0, got)

	p2 := cost.PlanCostEstimate{CPU: cost.Unknown, Network: cost.Known(4)}
	_, ok = p2.Scalar()
	require.False(t, ok, "Scalar() with an Unknown component must report unknown")
}
