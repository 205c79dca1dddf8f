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

// Package rules is the plain rule table built at start-up (§9): an ordered
// list of (pattern, transform) entries, no runtime type reflection. Rule
// bodies here are grounded on the constant-inlining style of the teacher's
// norm/inline.go (single-purpose transform functions operating on a
// captures bag), generalized from CockroachDB's relational operators to
// this module's scalar-expression rewrites.
package rules

import "github.com/GuinsooLab/witdb-sub010/pkg/sql/opt"

// Rule name ordinals, assigned once at package init and stable for the
// process lifetime (§4.4 GLOSSARY "Rule").
const (
	CommonPredicateExtraction opt.RuleName = iota + 1
	DistributeOrOverAnd
	_ruleNameCount
)
