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

package opt

import "github.com/GuinsooLab/witdb-sub010/pkg/util/intsets"

// RuleName identifies one (pattern, transform) rule (§4.4, §GLOSSARY). Rule
// ordinals are assigned at rule-table construction time and are stable for
// the lifetime of a process, which is what lets RuleSet store them in a
// FastIntSet rather than a map.
type RuleName int32

//go:generate stringer -type=RuleName

// RuleSet efficiently stores an unordered set of RuleNames, grounded on the
// teacher's xform.RuleSet (= util.FastIntSet) and its disabledRules testing
// knob in xform/optimizer.go.
type RuleSet struct {
	set intsets.FastIntSet
}

// MakeRuleSet returns a RuleSet initialized with the given rules.
func MakeRuleSet(rules ...RuleName) RuleSet {
	var s RuleSet
	for _, r := range rules {
		s.Add(r)
	}
	return s
}

// Add adds a rule to the set.
func (s *RuleSet) Add(r RuleName) { s.set.Add(int(r)) }

// Remove removes a rule from the set.
func (s *RuleSet) Remove(r RuleName) { s.set.Remove(int(r)) }

// Contains returns true if the set contains the rule.
func (s RuleSet) Contains(r RuleName) bool { return s.set.Contains(int(r)) }

// Empty returns true if the set has no rules.
func (s RuleSet) Empty() bool { return s.set.Empty() }

// ForEach calls f for each rule in the set, in increasing ordinal order.
func (s RuleSet) ForEach(f func(r RuleName)) {
	s.set.ForEach(func(i int) { f(RuleName(i)) })
}
