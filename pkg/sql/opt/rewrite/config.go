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

package rewrite

// Config enumerates the rewriter's session-level options (§4.4
// "Configuration (enumerated options)"). A Config is a read-only snapshot
// for the lifetime of one invocation (§5 "Session parameters are read-only
// snapshots").
type Config struct {
	// MaxIterations caps the number of (group, rule) pops the rewriter will
	// perform before returning the best plan found so far, marked partial
	// (§4.4, §8 "Iteration-cap hit").
	MaxIterations int

	// OptimizeJoinReordering is the switch for rules that reorder join
	// trees; no rule in rules.Table reads it.
	OptimizeJoinReordering bool

	// OptimizeHashGeneration is the switch for rules that pick hash-based
	// join/aggregation strategies; no rule in rules.Table reads it.
	OptimizeHashGeneration bool

	// ScaledWritersEnabled is the switch for scale-writer partitioning
	// variants of table writes. Neither the rules nor C8's scaled-writer
	// checker read it: validate.Plan does not receive the Config.
	ScaledWritersEnabled bool

	// EstimateExchangesInCost turns on the exchange-aware cost wrapper (C7)
	// when deriving cost during the rewrite loop.
	EstimateExchangesInCost bool
}

// DefaultMaxIterations is the default iteration cap (§4.4).
const DefaultMaxIterations = 10_000

// DefaultConfig returns the rewriter's default session parameters.
func DefaultConfig() Config {
	return Config{
		MaxIterations:           DefaultMaxIterations,
		OptimizeJoinReordering:  true,
		OptimizeHashGeneration:  true,
		ScaledWritersEnabled:    true,
		EstimateExchangesInCost: true,
	}
}
