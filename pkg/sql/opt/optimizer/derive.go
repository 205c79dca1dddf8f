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

package optimizer

import (
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/cost"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/memo"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/optfail"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/stats"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/validate"
)

// groupStats derives (and memoizes, via the group's own cache) the
// statistics of g's representative member (its first expression): every
// group member shares output symbols (§4.3 invariant 2) and this rule set
// never changes row/byte-relevant shape between members, so one
// representative's stats stand for the whole group (§4.5).
func groupStats(m *memo.Memo, g *memo.Group) *stats.PlanNodeStatistics {
	repr := g.Exprs()[0]
	childStats := make([]*stats.PlanNodeStatistics, 0, len(repr.Children()))
	for _, c := range repr.Children() {
		ref, ok := c.(*memo.GroupReference)
		if !ok {
			continue
		}
		childStats = append(childStats, groupStats(m, m.Get(ref.Group)))
	}
	return stats.Derive(g, repr, childStats)
}

// groupCost derives (and memoizes) g's cumulative cost using its
// representative member, consistent with groupStats's representative-based
// memoization.
func groupCost(m *memo.Memo, g *memo.Group, s cost.Session) *cost.PlanCostEstimate {
	repr := g.Exprs()[0]
	var childStats []*stats.PlanNodeStatistics
	var childCosts []*cost.PlanCostEstimate
	for _, c := range repr.Children() {
		ref, ok := c.(*memo.GroupReference)
		if !ok {
			continue
		}
		childGroup := m.Get(ref.Group)
		childStats = append(childStats, groupStats(m, childGroup))
		childCosts = append(childCosts, groupCost(m, childGroup, s))
	}
	nodeStats := groupStats(m, g)
	return cost.Derive(g, repr, nodeStats, childStats, childCosts, s)
}

// costGroupMember costs one specific candidate expression e belonging to
// some group in m (possibly not that group's representative, e.g. during
// Extract's member-vs-member comparison). It reuses the children's
// memoized group-level stats/cost (those never depend on which member of
// the parent group e happens to be) and combines them with e's own local
// contribution via cost.LocalOf/Combine -- the non-caching counterpart to
// cost.Derive, since e itself may not be the group's cached representative.
func costGroupMember(m *memo.Memo, e plan.Node, s cost.Session) (*cost.PlanCostEstimate, error) {
	var childStats []*stats.PlanNodeStatistics
	var childCosts []*cost.PlanCostEstimate
	for _, c := range e.Children() {
		ref, ok := c.(*memo.GroupReference)
		if !ok {
			return nil, optfail.New(optfail.InvalidPlan, "costGroupMember: child of %s is not a GroupReference", e.Op())
		}
		childGroup := m.Get(ref.Group)
		childStats = append(childStats, groupStats(m, childGroup))
		childCosts = append(childCosts, groupCost(m, childGroup, s))
	}
	// e's own stats are derived standalone from e and its children's group
	// stats, rather than taken from the owning group's cached stats.
	nodeStats := stats.DeriveStandalone(e, childStats)
	local := cost.LocalOf(e, nodeStats, childStats, s)
	return cost.Combine(e, local, childStats, childCosts, s), nil
}

// deriveCostTree derives the cumulative PlanCostEstimate for every node in
// an already-extracted (GroupReference-free) plan tree, bottom-up, without
// any memo involvement -- used both to cost optimize's final extracted
// plan and to serve the standalone DeriveCost entry point (§6).
func deriveCostTree(root plan.Node, s cost.Session) *cost.PlanCostEstimate {
	_, result := deriveCostNode(root, s)
	return result
}

func deriveCostNode(n plan.Node, s cost.Session) (*stats.PlanNodeStatistics, *cost.PlanCostEstimate) {
	children := n.Children()
	childStats := make([]*stats.PlanNodeStatistics, len(children))
	childCosts := make([]*cost.PlanCostEstimate, len(children))
	for i, c := range children {
		childStats[i], childCosts[i] = deriveCostNode(c, s)
	}
	nodeStats := stats.DeriveStandalone(n, childStats)
	local := cost.LocalOf(n, nodeStats, childStats, s)
	return nodeStats, cost.Combine(n, local, childStats, childCosts, s)
}

// DeriveStats runs C5 standalone over an already-extracted plan tree,
// returning each node's statistics keyed by NodeID (§6 derive_stats).
func DeriveStats(root plan.Node) map[plan.NodeID]*stats.PlanNodeStatistics {
	out := make(map[plan.NodeID]*stats.PlanNodeStatistics)
	var walk func(plan.Node) *stats.PlanNodeStatistics
	walk = func(n plan.Node) *stats.PlanNodeStatistics {
		children := n.Children()
		childStats := make([]*stats.PlanNodeStatistics, len(children))
		for i, c := range children {
			childStats[i] = walk(c)
		}
		s := stats.DeriveStandalone(n, childStats)
		out[n.ID()] = s
		return s
	}
	walk(root)
	return out
}

// DeriveCost runs C6 (optionally wrapped by C7 when estimateExchanges is
// set) standalone over an already-extracted plan tree, returning each
// node's cumulative cost keyed by NodeID (§6 derive_cost).
func DeriveCost(root plan.Node, costSession cost.Session, estimateExchanges bool) map[plan.NodeID]*cost.PlanCostEstimate {
	costSession.EstimateExchangesInCost = estimateExchanges
	out := make(map[plan.NodeID]*cost.PlanCostEstimate)
	var walk func(plan.Node) (*stats.PlanNodeStatistics, *cost.PlanCostEstimate)
	walk = func(n plan.Node) (*stats.PlanNodeStatistics, *cost.PlanCostEstimate) {
		children := n.Children()
		childStats := make([]*stats.PlanNodeStatistics, len(children))
		childCosts := make([]*cost.PlanCostEstimate, len(children))
		for i, c := range children {
			childStats[i], childCosts[i] = walk(c)
		}
		nodeStats := stats.DeriveStandalone(n, childStats)
		local := cost.LocalOf(n, nodeStats, childStats, costSession)
		c := cost.Combine(n, local, childStats, childCosts, costSession)
		out[n.ID()] = c
		return nodeStats, c
	}
	walk(root)
	return out
}

// Validate runs C8 standalone over an already-extracted plan tree (§6
// validate).
func Validate(root plan.Node, probe validate.Probe) *optfail.Failure {
	return validate.Plan(root, probe)
}
