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

// Package cost derives plan cost bottom-up (C6, §4.6) and, when enabled,
// decorates it with an exchange-aware wrapper (C7, §4.7). Grounded on the
// teacher's xform.Coster interface and cpuCostFactor-style constant table
// in xform/coster.go, reshaped around this module's three-component
// (cpu, memory, network) model instead of CockroachDB's single scalar
// memo.Cost.
package cost

import "math"

// Metric is a single Unknown|Known cost component (§7 Arithmetic: "The
// affected component becomes Unknown; no exception escapes").
type Metric struct {
	Known bool
	Value float64
}

// Unknown is the zero Metric.
var Unknown = Metric{}

// Known wraps a known value.
func Known(v float64) Metric { return Metric{Known: true, Value: v} }

// Add returns a+b, propagating Unknown (§8 "Unknown propagation: any
// operand Unknown in cost arithmetic yields Unknown").
func (a Metric) Add(b Metric) Metric {
	if !a.Known || !b.Known {
		return Unknown
	}
	sum := a.Value + b.Value
	if math.IsInf(sum, 0) || math.IsNaN(sum) {
		// Arithmetic overflow (§7 kind 3): the component becomes Unknown.
		return Unknown
	}
	return Known(sum)
}

// Max returns the greater of a and b, propagating Unknown.
func (a Metric) Max(b Metric) Metric {
	if !a.Known || !b.Known {
		return Unknown
	}
	return Known(math.Max(a.Value, b.Value))
}

// NonNegative reports whether the metric is Unknown or >= 0 (§8 Universal
// invariants: "derive_cost returns cost components that are either Unknown
// or non-negative").
func (a Metric) NonNegative() bool { return !a.Known || a.Value >= 0 }

// LocalCostEstimate is the non-cumulative per-node triple (§GLOSSARY).
type LocalCostEstimate struct {
	CPU     Metric
	Memory  Metric
	Network Metric
}

// PlanCostEstimate is the cumulative cost rooted at a node, including peak
// memory tracking (§GLOSSARY).
type PlanCostEstimate struct {
	CPU                     Metric
	Network                 Metric
	MaxMemory               Metric
	MaxMemoryWhenOutputting Metric
}

// NonNegative reports whether every known component is non-negative.
func (p PlanCostEstimate) NonNegative() bool {
	return p.CPU.NonNegative() && p.Network.NonNegative() &&
		p.MaxMemory.NonNegative() && p.MaxMemoryWhenOutputting.NonNegative()
}

// scalar returns the single value the rewriter's extraction step compares
// on (§4.4 step 4 "plan_cost(expr)"): the sum of cpu and network, with a
// false second result unless both are Known. An Unknown total is never
// preferred over a Known one; two Unknown
// totals compare equal (caller breaks ties by insertion order, §4.4).
func (p PlanCostEstimate) scalar() (float64, bool) {
	if !p.CPU.Known || !p.Network.Known {
		return 0, false
	}
	return p.CPU.Value + p.Network.Value, true
}

// Scalar exposes the single comparable number plan_cost(expr) reduces to,
// and whether it is known.
func (p PlanCostEstimate) Scalar() (float64, bool) { return p.scalar() }
