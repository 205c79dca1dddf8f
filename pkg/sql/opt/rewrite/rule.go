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

// Package rewrite implements the iterative, fixpoint-driven rewriter (C4,
// §4.4): given a rule table built at start-up (§9 "a plain rule table...
// no runtime type reflection"), it drives a work-set of (group, rule)
// pairs to a fixpoint or an iteration cap, then extracts the cheapest
// plan. Grounded on the teacher's xform.Optimizer main loop
// (optimizer_reference.go), simplified to the single-phase fixpoint this
// package's spec describes -- no separate physical-property-enforcement
// phase.
package rewrite

import (
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/pattern"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
)

// Result is what a rule's transform returns: either Empty (structure-
// preserving, no change) or a replacement plan rooted at Node (productive,
// §4.4 "apply(node, captures, context) -> { Empty | Plan(new_node) }").
type Result struct {
	Node       plan.Node
	Productive bool
}

// Empty returns the structure-preserving result.
func Empty() Result { return Result{} }

// Produces returns the productive result wrapping n.
func Produces(n plan.Node) Result { return Result{Node: n, Productive: true} }

// MetadataProbe is the read-only capability rules use to consult the
// metadata service without a callback channel back into the core (§6
// "Collaborators (not in core)"). nil is a legitimate value in contexts
// (e.g. stats-only derivation) that never need it; rules that require it
// must handle a nil Probe by not firing (return Empty).
type MetadataProbe interface {
	// AppliesDelete reports whether table supports push-down delete, and if
	// so returns the replacement handle to use.
	AppliesDelete(table string) (newHandle string, ok bool)
	// SupportsWrittenBytesReporting reports whether target can report
	// physical written bytes, consulted by the scaled-writer validator (C8).
	SupportsWrittenBytesReporting(target string) bool
	// SupportsMultipleWritersPerPartition reports whether target tolerates
	// more than one writer per partition, consulted by C8 for the hashed
	// scaled-writer variant.
	SupportsMultipleWritersPerPartition(target string) bool
}

// RuleContext carries the per-invocation, explicit context a rule's
// transform needs (§9 "Thread-local scratch data / global registries →
// explicit context structs"): a symbol allocator for minting new columns,
// and the metadata probe.
type RuleContext struct {
	Alloc *opt.SymbolAllocator
	Probe MetadataProbe
}

// Rule pairs a pattern with a transform (§GLOSSARY "Rule — (pattern,
// transform) pair; fixpoint-applied by the rewriter").
type Rule struct {
	Name    opt.RuleName
	Pattern pattern.Pattern
	Apply   func(rc *RuleContext, n plan.Node, caps pattern.Captures) Result
}
