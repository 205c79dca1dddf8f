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

import (
	"context"
	"time"

	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/memo"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/optfail"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/pattern"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
	"github.com/GuinsooLab/witdb-sub010/pkg/util/log"
	"github.com/gogo/protobuf/types"
	opentracing "github.com/opentracing/opentracing-go"
)

// CancelFunc is polled between rule applications (§5 "Suspension points"):
// it is the rewriter's only cooperative yield point. A nil CancelFunc is
// treated as "never cancelled".
type CancelFunc func() bool

// Engine drives one rewrite invocation to a fixpoint or the Config's
// iteration cap (§4.4 C4). It owns no state beyond a single Memo; per §5 it
// must not be reused across queries.
type Engine struct {
	Memo    *memo.Memo
	Rules   []Rule
	Config  Config
	Cancel  CancelFunc
	Context RuleContext

	// NotifyOnMatchedRule, if set, is called every time a rule's pattern
	// matches an expression, whether or not the transform is productive
	// (§4.4 supplemented hooks, grounded on the teacher's
	// NotifyOnMatchedRule/NotifyOnAppliedRule testing knobs).
	NotifyOnMatchedRule func(rule opt.RuleName, group memo.GroupID)
	// NotifyOnAppliedRule is called only when a rule's transform is
	// productive and its result has been committed to the memo.
	NotifyOnAppliedRule func(rule opt.RuleName, group memo.GroupID)

	// Recorder, if non-nil, accumulates an "optsteps" trace of every
	// productive rule application (§12 supplemented feature).
	Recorder *StepRecorder

	// Now, if set, is called to stamp each recorded Step's AppliedAt; tests
	// that assert ordering or a fixed clock can override it. Defaults to
	// time.Now.
	Now func() time.Time

	// Tracer, if non-nil, wraps the whole Run in a single opentracing span
	// ("optimizer-rewrite") so the rewrite phase is visible in a distributed
	// trace alongside the rest of the query's execution.
	Tracer opentracing.Tracer
}

// workItem is one (group, rule) pair awaiting an attempt.
type workItem struct {
	group memo.GroupID
	rule  int
}

// RunResult is the outcome of running a full rewrite invocation.
type RunResult struct {
	// RootGroup is the memo group the optimized plan was extracted from.
	RootGroup memo.GroupID
	// Partial is true if the iteration cap was hit before reaching a
	// fixpoint (§8 "Iteration-cap hit") or cancellation was observed.
	Partial bool
	// CancelledBeforeProgress is true if cancellation was observed before
	// any rule had produced a valid alternative (§5 "A cancellation before
	// any rule has produced a valid alternative returns the input plan
	// unchanged").
	CancelledBeforeProgress bool
}

// Run seeds the work-set with the Cartesian product of all groups × all
// rules (§4.4 step 2) and drains it, applying matching rules until the
// work-set empties, the iteration cap is hit, or cancellation is observed.
func (e *Engine) Run(ctx context.Context) (RunResult, error) {
	var span opentracing.Span
	if e.Tracer != nil {
		span = e.Tracer.StartSpan("optimizer-rewrite")
		defer span.Finish()
	}

	queue := make([]workItem, 0, e.Memo.GroupCount()*len(e.Rules))
	queued := make(map[workItem]bool)
	enqueueAll := func() {
		for g := 1; g < e.Memo.GroupCount(); g++ {
			for r := range e.Rules {
				wi := workItem{group: memo.GroupID(g), rule: r}
				if !queued[wi] {
					queued[wi] = true
					queue = append(queue, wi)
				}
			}
		}
	}
	enqueueAll()

	iterations := 0
	progressed := false
	cancelled := false
	capped := false

	for len(queue) > 0 {
		if e.Cancel != nil && e.Cancel() {
			cancelled = true
			break
		}
		if iterations >= e.Config.MaxIterations {
			capped = true
			break
		}
		iterations++

		wi := queue[0]
		queue = queue[1:]
		delete(queued, wi)

		rule := e.Rules[wi.rule]
		group := e.Memo.Get(wi.group)

		changed := false
		for _, expr := range append([]plan.Node(nil), group.Exprs()...) {
			caps, ok := rule.Pattern.Match(expr)
			if !ok {
				continue
			}
			if e.NotifyOnMatchedRule != nil {
				e.NotifyOnMatchedRule(rule.Name, wi.group)
			}

			res := e.applyRule(rule, expr, caps)
			if !res.Productive {
				continue
			}

			// A replacement whose children are all GroupReferences joins the
			// group directly; any other shape goes through commit.
			before := len(group.Exprs())
			err := e.Memo.Replace(wi.group, res.Node)
			if err != nil {
				err = e.commit(rule, wi.group, expr, res.Node)
			}
			if err != nil {
				log.Warningf(ctx, "rule %d on group %d: %s", rule.Name, wi.group, err)
				continue
			}
			if len(group.Exprs()) == before {
				// The replacement is already a member of this group.
				continue
			}
			changed = true
			progressed = true
			if e.NotifyOnAppliedRule != nil {
				e.NotifyOnAppliedRule(rule.Name, wi.group)
			}
			if e.Recorder != nil {
				e.Recorder.Record(rule.Name, wi.group, e.now())
			}
		}

		if changed {
			// A productive rule may have changed this group's shape (and
			// thus any ancestor's shape); conservatively re-enqueue every
			// (group, rule) pair rather than tracking parent pointers, since
			// the memo has none (§4.3 groups hold no back-references).
			enqueueAll()
		}
	}

	partial := cancelled || capped
	return RunResult{
		RootGroup:               e.Memo.RootGroup(),
		Partial:                 partial,
		CancelledBeforeProgress: cancelled && !progressed,
	}, nil
}

// now stamps a recorded step with the real time a rule fired, via
// types.TimestampProto (time.Now() is always in-range, so the conversion
// error is never reachable here).
func (e *Engine) now() *types.Timestamp {
	clock := e.Now
	if clock == nil {
		clock = time.Now
	}
	ts, err := types.TimestampProto(clock())
	if err != nil {
		return &types.Timestamp{}
	}
	return ts
}

// applyRule recovers a rule body that returns an inconsistent result (§7
// RuleFailure) by comparing output symbols before and after; this is the
// one RuleFailure check the engine itself is positioned to make, since it
// alone sees both the original expression and the proposed replacement.
func (e *Engine) applyRule(rule Rule, expr plan.Node, caps pattern.Captures) Result {
	res := rule.Apply(&e.Context, expr, caps)
	if !res.Productive {
		return res
	}
	if !sameSymbolsSetwise(expr.OutputSymbols(), res.Node.OutputSymbols()) {
		// RuleFailure: isolated, never fatal to the whole optimization (§7).
		return Empty()
	}
	return res
}

func sameSymbolsSetwise(a, b opt.SymbolList) bool {
	return a.ColSet().Equals(b.ColSet())
}

// commit inserts the rule's replacement into the memo and adds it to the
// matched expression's group (§4.4 step 3b: "Add the produced expression to
// the rule's group (via replace)").
func (e *Engine) commit(rule Rule, group memo.GroupID, orig plan.Node, replacement plan.Node) error {
	childGroup, err := e.Memo.Insert(replacement)
	if err != nil {
		return optfail.Wrap(optfail.RuleFailure, err, "rule %d commit", rule.Name)
	}
	if childGroup == group {
		// Replacement fully normalized to an expression already interned
		// directly into this group by Insert; nothing further to add.
		return nil
	}
	// The replacement inserted as a fresh group of its own (its fingerprint
	// differs from every existing member); fold that group's sole
	// expression into the original group so future exploration considers
	// it alongside the original's other forms (§4.3 replace).
	newGroupExprs := e.Memo.Get(childGroup).Exprs()
	for _, ne := range newGroupExprs {
		if err := e.Memo.Replace(group, ne); err != nil {
			return err
		}
	}
	return nil
}
