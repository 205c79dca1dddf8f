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
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/memo"
	"github.com/gogo/protobuf/types"
)

// Step records one applied rule for the "optsteps" debugging view: the
// sequence of productive rewrites that turned the input plan into the
// output plan, in application order. Matched-but-unproductive attempts are
// not recorded, only the ones that actually changed the memo, since
// that's what a human debugging a plan diff wants to see.
type Step struct {
	Rule      opt.RuleName
	Group     memo.GroupID
	AppliedAt *types.Timestamp
}

// StepRecorder accumulates Steps across one rewrite invocation. A nil
// *StepRecorder is valid and simply discards steps, so callers that don't
// want the overhead can pass nil.
type StepRecorder struct {
	steps []Step
}

// NewStepRecorder returns an empty recorder.
func NewStepRecorder() *StepRecorder { return &StepRecorder{} }

// Record appends a step. It is a no-op on a nil receiver.
func (r *StepRecorder) Record(rule opt.RuleName, group memo.GroupID, at *types.Timestamp) {
	if r == nil {
		return
	}
	r.steps = append(r.steps, Step{Rule: rule, Group: group, AppliedAt: at})
}

// Steps returns the recorded steps in application order. Nil receiver
// returns nil.
func (r *StepRecorder) Steps() []Step {
	if r == nil {
		return nil
	}
	return r.steps
}
