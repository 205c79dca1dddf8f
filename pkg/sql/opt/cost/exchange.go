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
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/stats"
)

// The exchange-aware wrapper (C7, §4.7) imputes the cost of a redistribution
// operator that physical compilation will later insert above/below a node,
// before that operator exists in the plan tree. It decorates the cumulative
// PlanCostEstimate C6 already derived for n, adding network and cpu terms
// for the imputed exchange and, for a local (same-task) repartition, a
// memory term as well -- only local_repartition's byte quantity ever
// contributes to max_memory; the remote terms (gather/repartition/replicate)
// move data across the wire and are charged to network (repartition also
// charges the hashing/routing work to cpu) but are never resident as a
// local hash table.

// remoteGather imputes the cost of collecting rows from every source task
// onto a single task: all bytes cross the network once, no local cpu since
// gathering is a pure data-movement step with nothing to hash or rebuild.
func remoteGather(bytes Metric) (cpu, network Metric) {
	return Known(0), bytes
}

// remoteRepartition imputes a hash redistribution across tasks: every byte
// crosses the network once, and every byte is also hashed/routed by cpu on
// the way out.
func remoteRepartition(bytes Metric) (cpu, network Metric) {
	return bytes, bytes
}

// localRepartition imputes a same-task repartition (e.g. local hash
// exchange ahead of a partitioned operator): no network cost, but the rows
// pass through a local buffer, contributing both cpu and memory.
func localRepartition(bytes Metric) (cpu, memory Metric) {
	return bytes, bytes
}

// remoteReplicate imputes broadcasting bytes to n downstream tasks: network
// cost is bytes×n (n-1 extra copies plus the original local copy reaching
// every task), cpu is unaffected here -- the per-task cpu cost of consuming
// the replicated copies is charged separately by join_input_cost.
func remoteReplicate(bytes Metric, n float64) (network Metric) {
	if !bytes.Known {
		return Unknown
	}
	return Known(bytes.Value * n)
}

// joinInputCost imputes the extra cpu a join pays for its inputs once any
// exchange ahead of it is accounted for. C6's base joinCost already charges
// probe + build×k cpu (k the replication factor). When the build side is
// replicated across n tasks, this adds a corrective build×(n-1) cpu term for
// the per-copy repartition work, since the row counts C5 derives are not
// multiplied by the task count. A non-replicated join gets no extra term;
// probe does not enter the result.
func joinInputCost(probe, build Metric, replicated bool, n float64) Metric {
	if replicated {
		// One extra pass over the build side for each of the (n-1) copies
		// beyond the first.
		if !build.Known {
			return Unknown
		}
		return Known(build.Value * (n - 1))
	}
	return Known(0)
}

// wrapExchangeAware decorates base (already C6's cumulative estimate for n)
// with the imputed exchange terms appropriate to n's operator kind (§4.7).
// childStats supplies each child's row/byte size so the imputed terms can
// be computed without re-deriving cost.
func wrapExchangeAware(n plan.Node, base *PlanCostEstimate, childStats []*stats.PlanNodeStatistics, s Session) *PlanCostEstimate {
	out := *base
	replicas := float64(s.EstimatedSourceTaskCount)
	if replicas <= 0 {
		replicas = 1
	}

	switch t := n.(type) {
	case *plan.AggregationNode:
		// A partial-then-final aggregation plan imputes: the input is
		// hash-repartitioned by grouping key across tasks (remote_repartition),
		// then each task locally buffers/pre-aggregates its share before the
		// final merge runs (local_repartition).
		inBytes := BytesOf(childStats[0].RowCount, t.Input.OutputSymbols())
		rcpu, rnet := remoteRepartition(inBytes)
		lcpu, lmem := localRepartition(inBytes)
		out.CPU = out.CPU.Add(rcpu).Add(lcpu)
		out.Network = out.Network.Add(rnet)
		out.MaxMemory = out.MaxMemory.Add(lmem)
		out.MaxMemoryWhenOutputting = out.MaxMemoryWhenOutputting.Add(lmem)

	case *plan.JoinNode:
		probeBytes := BytesOf(childStats[0].RowCount, t.Left.OutputSymbols())
		buildBytes := BytesOf(childStats[1].RowCount, t.Right.OutputSymbols())
		replicated := t.Distribution == plan.DistributionReplicated

		if replicated {
			net := remoteReplicate(buildBytes, replicas)
			extra := joinInputCost(probeBytes, buildBytes, true, replicas)
			lcpu, lmem := localRepartition(buildBytes)
			out.Network = out.Network.Add(net)
			out.CPU = out.CPU.Add(extra).Add(lcpu)
			out.MaxMemory = out.MaxMemory.Add(lmem)
			out.MaxMemoryWhenOutputting = out.MaxMemoryWhenOutputting.Add(lmem)
		} else {
			// Partitioned (or unspecified, treated conservatively as
			// partitioned) join: both sides are hash-repartitioned across
			// tasks by the join key before the local join runs.
			pcpu, pnet := remoteRepartition(probeBytes)
			bcpu, bnet := remoteRepartition(buildBytes)
			out.CPU = out.CPU.Add(pcpu).Add(bcpu)
			out.Network = out.Network.Add(pnet).Add(bnet)
		}

	case *plan.UnionNode:
		// A union's sources are gathered onto one task before the rows are
		// concatenated.
		for i, in := range t.Inputs {
			if i >= len(childStats) {
				break
			}
			rows := Unknown
			if childStats[i].RowCount.Known {
				rows = Known(childStats[i].RowCount.N)
			}
			bytes := BytesOf(rows, in.OutputSymbols())
			_, net := remoteGather(bytes)
			out.Network = out.Network.Add(net)
		}
	}

	return &out
}
