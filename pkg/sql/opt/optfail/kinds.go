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

// Package optfail defines the optimizer's error taxonomy (§7): a small set
// of failure kinds, not Go error types, so that every component reports
// failures the same sum-typed way rather than inventing ad hoc errors.
// No kind uses panics/exceptions for control flow; RuleFailure, Arithmetic
// and Unsupported are recovered locally by their callers, while
// InvalidPlan, ValidationFailure and Cancelled propagate to the caller of
// optimize/derive_stats/derive_cost/validate.
package optfail

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Kind identifies which of the six failure categories a Failure belongs to.
type Kind int8

const (
	// InvalidPlan: structural invariant violated on entry (orphan symbol,
	// arity mismatch, duplicate node id). Fatal; returned immediately.
	InvalidPlan Kind = iota
	// RuleFailure: a rule body returned an inconsistent result (e.g. output
	// symbols changed). Isolated: the rewrite discards the replacement and
	// continues. Never fatal to the whole optimization.
	RuleFailure
	// Arithmetic: overflow in cost/stats arithmetic. The affected component
	// becomes Unknown; no exception escapes.
	Arithmetic
	// Unsupported: a plan shape the core does not support (e.g. an
	// unrecognized node variant during stats derivation).
	Unsupported
	// ValidationFailure: a sanity checker rejected the post-rewrite plan.
	// Fatal to the optimization; the previous best plan is returned with
	// the error attached.
	ValidationFailure
	// Cancelled: cooperative cancellation observed between rule
	// applications. Returns the best-so-far plan, flagged partial.
	Cancelled
)

// String implements fmt.Stringer, and is also the stable identifier string
// a caller maps to a SQL-level error code (§7 "User-visible failure
// behavior").
func (k Kind) String() string {
	switch k {
	case InvalidPlan:
		return "InvalidPlan"
	case RuleFailure:
		return "RuleFailure"
	case Arithmetic:
		return "Arithmetic"
	case Unsupported:
		return "Unsupported"
	case ValidationFailure:
		return "ValidationFailure"
	case Cancelled:
		return "Cancelled"
	default:
		return "UnknownFailureKind"
	}
}

// Fatal reports whether a Failure of this kind must propagate to the
// caller rather than be recovered locally (§7 propagation policy).
func (k Kind) Fatal() bool {
	switch k {
	case InvalidPlan, ValidationFailure, Cancelled:
		return true
	default:
		return false
	}
}

// Failure is a structured, sum-typed result value -- never raised as a Go
// panic by core logic -- identifying which invariant broke, which node(s)
// are implicated, and a human-readable message. It implements error so it
// composes with errors.Is/As and the cockroachdb/errors wrapping the rest
// of the stack uses, but callers should branch on Kind rather than on Go
// error identity.
type Failure struct {
	Kind    Kind
	NodeIDs []int64
	RuleName string
	cause   error
}

// New constructs a Failure of the given kind with a redactable message.
func New(kind Kind, format string, args ...interface{}) *Failure {
	return &Failure{Kind: kind, cause: errors.Newf(format, args...)}
}

// Wrap constructs a Failure of the given kind wrapping an existing error,
// preserving its cause for errors.Is/As unwrapping.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Failure {
	return &Failure{Kind: kind, cause: errors.Wrapf(err, format, args...)}
}

// WithNodeIDs attaches the implicated node ids to f and returns f, for
// chaining at the construction site.
func (f *Failure) WithNodeIDs(ids ...int64) *Failure {
	f.NodeIDs = ids
	return f
}

// WithRuleName attaches the offending rule's identifier (§7 RuleFailure
// "logged with the rule identifier and offending node id").
func (f *Failure) WithRuleName(name string) *Failure {
	f.RuleName = name
	return f
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return redact.Sprintf("%s: %s (nodes=%v)", f.Kind, f.cause, f.NodeIDs).StripMarkers()
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (f *Failure) Unwrap() error { return f.cause }
