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

package pattern

import (
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/scalar"
)

// Predicate extracts a FilterNode's predicate for use with With; it is the
// canonical attribute_accessor for rules that match against filter shapes
// (e.g. common-predicate extraction, §8 scenario 1).
var Predicate AttributeAccessor = func(n plan.Node) (interface{}, bool) {
	f, ok := n.(*plan.FilterNode)
	if !ok {
		return nil, false
	}
	return f.Predicate, true
}

// JoinOn extracts a JoinNode's leftover (non-equi) conjuncts as a
// conjunction, for rules that match against join predicates.
var JoinOn AttributeAccessor = func(n plan.Node) (interface{}, bool) {
	j, ok := n.(*plan.JoinNode)
	if !ok || len(j.On) == 0 {
		return nil, false
	}
	if len(j.On) == 1 {
		return j.On[0], true
	}
	return &scalar.And{Args: j.On}, true
}
