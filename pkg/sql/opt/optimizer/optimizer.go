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

// Package optimizer wires C3 (memo), C4 (rewrite), C5 (stats), C6/C7
// (cost) and C8 (validate) behind the four entry points §6 names:
// optimize, derive_stats, derive_cost and validate. It is the only
// package other components (the analyzer, the executor) need import;
// everything else is an implementation detail reached through here.
// Grounded on the teacher's sql/opt_catalog.go-adjacent top-level
// Optimizer type (xform/optimizer_reference.go), reshaped around this
// module's single-phase fixpoint rewriter.
package optimizer

import (
	"context"
	"time"

	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/cost"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/memo"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/optfail"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/rewrite"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/rules"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/validate"
	"github.com/GuinsooLab/witdb-sub010/pkg/util/contextutil"
	"github.com/cockroachdb/errors"
)

// Session is the read-only snapshot of every parameter that affects
// derivation across all four entry points for one invocation (§5 "Session
// parameters are read-only snapshots"): the rewriter's Config, the cost
// package's exchange-aware flag and source task count, and the metadata
// probe rules and C8 consult.
type Session struct {
	Rewrite rewrite.Config
	Cost    cost.Session
	Probe   rewrite.MetadataProbe
	Cancel  rewrite.CancelFunc

	// Timeout bounds the rewrite loop's wall-clock time; zero means no
	// deadline beyond ctx's own. Adapted from the teacher's
	// contextutil.RunWithTimeout (util/contextutil/context.go), so a
	// deadline hit surfaces the same way a caller-driven Cancel does
	// (Result.Partial, Result.CancelReason), rather than as a Failure.
	Timeout time.Duration
}

// costSessionOf projects the cost-relevant half of s, honoring the
// Rewrite.Config's EstimateExchangesInCost knob as the authority during
// the rewrite loop itself (derive_cost's own estimate_exchanges argument
// overrides it when called standalone, see DeriveCost below).
func (s Session) costSessionOf() cost.Session {
	c := s.Cost
	c.EstimateExchangesInCost = s.Rewrite.EstimateExchangesInCost
	return c
}

// allRules returns every rule in the package's rule table whose name is a
// member of enabled, in table order (§4.4 "enabled rule set" input to
// optimize).
func allRules(enabled opt.RuleSet) []rewrite.Rule {
	var out []rewrite.Rule
	for _, r := range rules.Table {
		if enabled.Contains(r.Name) {
			out = append(out, r)
		}
	}
	return out
}

// AllRules returns a RuleSet containing every rule in the package's rule
// table, the convenience value callers pass when they want every available
// rewrite enabled rather than hand-picking a subset.
func AllRules() opt.RuleSet {
	var s opt.RuleSet
	for _, r := range rules.Table {
		s.Add(r.Name)
	}
	return s
}

// Result is optimize's output: the extracted, cost-validated plan, its
// root cost, and whether the fixpoint was reached cleanly.
type Result struct {
	Plan    plan.Node
	Cost    *cost.PlanCostEstimate
	Partial bool

	// CancelReason is set when Partial is true and the cause is
	// recoverable: a caller-driven Cancel, a Session.Timeout deadline, or
	// ctx's own deadline/cancellation (§5 "the reason the rewrite was cut
	// short... is recoverable after the fact", via
	// contextutil.GetCancelReason). Nil when Partial is false, or when
	// Partial is only due to the iteration cap (no single "reason" to
	// report beyond the cap itself).
	CancelReason error
}

// Optimize runs one full invocation: build the memo from root, rewrite to
// a fixpoint (or the iteration cap, or cancellation), extract the
// cheapest plan, and validate it (§6 optimize, §4.4).
//
// A cancellation before any rule has produced a valid alternative returns
// the input plan unchanged, cost derived against it (§5 "Cancellation
// semantics"). A cancellation (or iteration-cap hit) after some progress
// returns the best-known plan, Result.Partial set.
func Optimize(ctx context.Context, root plan.Node, s Session, enabled opt.RuleSet) (Result, *optfail.Failure) {
	m := memo.New()
	rootGroup, err := m.InsertRoot(root)
	if err != nil {
		if f, ok := err.(*optfail.Failure); ok {
			return Result{}, f
		}
		return Result{}, optfail.Wrap(optfail.InvalidPlan, err, "optimize: insert root")
	}

	alloc := &opt.SymbolAllocator{}
	reserveExisting(alloc, root)

	runCtx := ctx
	if s.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(ctx, s.Timeout)
		defer cancelTimeout()
	}
	runCtx, setReason := contextutil.WithCancelReason(runCtx)
	defer setReason(nil)
	cancel := func() bool {
		if s.Cancel != nil && s.Cancel() {
			setReason(errors.New("optimize: caller requested cancellation"))
			return true
		}
		if err := runCtx.Err(); err != nil {
			setReason(err)
			return true
		}
		return false
	}

	engine := &rewrite.Engine{
		Memo:   m,
		Rules:  allRules(enabled),
		Config: s.Rewrite,
		Cancel: rewrite.CancelFunc(cancel),
		Context: rewrite.RuleContext{
			Alloc: alloc,
			Probe: s.Probe,
		},
	}

	runResult, err := engine.Run(runCtx)
	if err != nil {
		if f, ok := err.(*optfail.Failure); ok {
			return Result{}, f
		}
		return Result{}, optfail.Wrap(optfail.InvalidPlan, err, "optimize: rewrite")
	}
	reason := contextutil.GetCancelReason(runCtx)

	if runResult.CancelledBeforeProgress {
		extracted, baseCost, ferr := extractAndCost(m, rootGroup, s)
		if ferr != nil {
			return Result{}, ferr
		}
		return Result{Plan: extracted, Cost: baseCost, Partial: true, CancelReason: reason}, nil
	}

	extracted, finalCost, ferr := extractAndCost(m, runResult.RootGroup, s)
	if ferr != nil {
		return Result{}, ferr
	}

	result := Result{Plan: extracted, Cost: finalCost, Partial: runResult.Partial}
	if runResult.Partial {
		result.CancelReason = reason
	}

	if vf := validate.Plan(extracted, s.Probe); vf != nil {
		return result, vf
	}
	return result, nil
}

// extractAndCost pulls the cheapest plan.Node tree from groupID and then
// derives its cumulative cost, bottom-up, in a second pass (Extract's
// costOf callback only needs a scalar comparator, so the second,
// structure-aware pass recomputes the full PlanCostEstimate for the
// winning shape).
func extractAndCost(m *memo.Memo, groupID memo.GroupID, s Session) (plan.Node, *cost.PlanCostEstimate, *optfail.Failure) {
	costSession := s.costSessionOf()

	costOf := func(n plan.Node) (float64, bool) {
		c, err := costGroupMember(m, n, costSession)
		if err != nil {
			return 0, false
		}
		return c.Scalar()
	}

	extracted, err := memo.Extract(m, groupID, costOf)
	if err != nil {
		if f, ok := err.(*optfail.Failure); ok {
			return nil, nil, f
		}
		return nil, nil, optfail.Wrap(optfail.InvalidPlan, err, "optimize: extract")
	}

	finalCost := deriveCostTree(extracted, costSession)
	return extracted, finalCost, nil
}

// reserveExisting walks root and reserves every ColumnID it already uses,
// so alloc never mints a symbol colliding with one the analyzer handed in
// (§9 "Thread-local scratch data... → explicit context structs").
func reserveExisting(alloc *opt.SymbolAllocator, n plan.Node) {
	if n == nil {
		return
	}
	for _, s := range n.OutputSymbols() {
		alloc.Reserve(s.ID)
	}
	for _, c := range n.Children() {
		reserveExisting(alloc, c)
	}
}
