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

package cost

import (
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/memo"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/stats"
)

// Session is the read-only snapshot of cost-relevant session parameters
// for one invocation (§4.6 "Cache policy: keyed by (group_id,
// session_parameters, type_provider)"; §5 "Session parameters are
// read-only snapshots").
type Session struct {
	// EstimateExchangesInCost turns on the C7 wrapper (§4.7).
	EstimateExchangesInCost bool
	// EstimatedSourceTaskCount is the assumed number of upstream tasks
	// feeding a replicated join or exchange, used both as C6's replication
	// factor for a replicated join's build side and as C7's `n` parameter.
	EstimatedSourceTaskCount int
}

// cacheKey is the cost cache key (§4.6): distinguishes cached costs by the
// session parameters that affect derivation. The type provider is not
// modeled as a separate dimension since this module's Type values are
// self-contained (no external catalog lookups happen during costing).
type cacheKey struct {
	estimateExchanges bool
	sourceTaskCount   int
}

func keyOf(s Session) cacheKey {
	return cacheKey{estimateExchanges: s.EstimateExchangesInCost, sourceTaskCount: s.EstimatedSourceTaskCount}
}

// replicationFactor returns the build-side replication factor for a join:
// 1 unless the join is replicated, in which case it's the assumed source
// task count (§4.6 "join = probe bytes + build bytes × replication
// factor").
func replicationFactor(j *plan.JoinNode, s Session) float64 {
	if j.Distribution == plan.DistributionReplicated && s.EstimatedSourceTaskCount > 0 {
		return float64(s.EstimatedSourceTaskCount)
	}
	return 1
}

// localCost computes cpu_local/memory_local/network_local for n (§4.6),
// given n's own derived stats and each child's (positionally matching
// n.Children()).
//
// Components an operator never touches are Known(0), not Unknown: the only
// source of Unknown in a local estimate is a genuinely data-dependent
// quantity (e.g. BytesOf of an Unknown row count). Treating "this operator
// does no network I/O" as Unknown would poison every ancestor's cumulative
// sum via Metric.Add's strict Unknown propagation (§7 Arithmetic), which is
// wrong: an operator that provably does zero work of some kind contributes
// a known zero, not an absence of information.
func LocalOf(n plan.Node, nodeStats *stats.PlanNodeStatistics, childStats []*stats.PlanNodeStatistics, s Session) LocalCostEstimate {
	return localCost(n, nodeStats, childStats, s)
}

func localCost(n plan.Node, nodeStats *stats.PlanNodeStatistics, childStats []*stats.PlanNodeStatistics, s Session) LocalCostEstimate {
	zero := LocalCostEstimate{CPU: Known(0), Memory: Known(0), Network: Known(0)}
	switch t := n.(type) {
	case *plan.ScanNode:
		e := zero
		e.CPU = BytesOf(nodeStats.RowCount, t.Cols)
		return e
	case *plan.ValuesNode:
		e := zero
		e.CPU = BytesOf(nodeStats.RowCount, t.Cols)
		return e
	case *plan.TableFunctionNode:
		e := zero
		e.CPU = BytesOf(nodeStats.RowCount, t.Cols)
		return e
	case *plan.FilterNode:
		e := zero
		e.CPU = BytesOf(childStats[0].RowCount, t.Input.OutputSymbols())
		return e
	case *plan.ProjectNode:
		e := zero
		e.CPU = BytesOf(childStats[0].RowCount, t.Input.OutputSymbols())
		return e
	case *plan.AggregationNode:
		e := zero
		e.CPU = BytesOf(childStats[0].RowCount, t.Input.OutputSymbols())
		// memory_local: hash table ≈ groups × row size (§4.6).
		rowSize := RowWidth(n.OutputSymbols())
		if nodeStats.RowCount.Known {
			e.Memory = Known(nodeStats.RowCount.N * float64(rowSize))
		} else {
			e.Memory = Unknown
		}
		return e
	case *plan.JoinNode:
		e := zero
		probeBytes := BytesOf(childStats[0].RowCount, t.Left.OutputSymbols())
		buildBytes := BytesOf(childStats[1].RowCount, t.Right.OutputSymbols())
		k := replicationFactor(t, s)
		if probeBytes.Known && buildBytes.Known {
			e.CPU = Known(probeBytes.Value + buildBytes.Value*k)
		} else {
			e.CPU = Unknown
		}
		if buildBytes.Known {
			e.Memory = Known(buildBytes.Value * k)
		} else {
			e.Memory = Unknown
		}
		return e
	case *plan.SpatialJoinNode:
		e := zero
		probeBytes := BytesOf(childStats[0].RowCount, t.Left.OutputSymbols())
		buildBytes := BytesOf(childStats[1].RowCount, t.Right.OutputSymbols())
		e.CPU = probeBytes.Add(buildBytes)
		e.Memory = buildBytes
		return e
	case *plan.UnionNode:
		return zero
	case *plan.ExchangeNode:
		// The actual (not imputed) network cost of a real exchange: moving
		// its output across the wire (C7 only imputes this before a real
		// exchange is inserted; once one exists, C6 costs it directly).
		e := zero
		e.Network = BytesOf(nodeStats.RowCount, n.OutputSymbols())
		return e
	case *plan.TableWriteNode:
		e := zero
		e.CPU = BytesOf(childStats[0].RowCount, t.Input.OutputSymbols())
		return e
	default:
		return zero
	}
}

// Combine folds local (n's own contribution, from LocalOf) together with
// each child's already-derived cumulative PlanCostEstimate (§4.6
// "Cumulative"), then, if s.EstimateExchangesInCost is set, decorates the
// result with the C7 wrapper (§4.7). Exported separately from Derive so
// callers that need to cost a candidate node without a *memo.Group to
// cache against (e.g. comparing alternative members of a memo group
// during extraction) can still reuse the one cumulative-cost formula.
func Combine(n plan.Node, local LocalCostEstimate, childStats []*stats.PlanNodeStatistics, childCosts []*PlanCostEstimate, s Session) *PlanCostEstimate {
	cpu := local.CPU
	network := local.Network
	maxOutputting := Known(0)
	for _, cc := range childCosts {
		cpu = cpu.Add(cc.CPU)
		network = network.Add(cc.Network)
		maxOutputting = maxOutputting.Max(cc.MaxMemoryWhenOutputting)
	}
	maxMemory := maxOutputting.Add(local.Memory)

	result := &PlanCostEstimate{
		CPU:                     cpu,
		Network:                 network,
		MaxMemory:               maxMemory,
		MaxMemoryWhenOutputting: maxMemory,
	}

	if s.EstimateExchangesInCost {
		result = wrapExchangeAware(n, result, childStats, s)
	}
	return result
}

// Derive computes (and memoizes, on g) n's cumulative PlanCostEstimate
// given each child's already-derived PlanCostEstimate and PlanNodeStatistics
// (§4.6 "Cumulative"). When s.EstimateExchangesInCost is set, the result is
// additionally decorated by the C7 wrapper (§4.7) before being cached and
// returned, so callers always see the session's requested flavor of cost
// under one cache key.
func Derive(
	g *memo.Group,
	n plan.Node,
	nodeStats *stats.PlanNodeStatistics,
	childStats []*stats.PlanNodeStatistics,
	childCosts []*PlanCostEstimate,
	s Session,
) *PlanCostEstimate {
	key := keyOf(s)
	if cached, ok := g.CostCacheGet(key); ok {
		return cached.(*PlanCostEstimate)
	}

	local := LocalOf(n, nodeStats, childStats, s)
	result := Combine(n, local, childStats, childCosts, s)

	g.CostCacheSet(key, result)
	return result
}
