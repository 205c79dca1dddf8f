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

// Package pattern implements the small combinator language rules use to
// describe the shape of expression they rewrite (§4.2, C2). Matching is
// pure and re-entrant: Match never mutates its Expr argument and may safely
// be called concurrently for different expressions, or re-tried against the
// same expression after a failed match elsewhere in the work set (§4.2,
// §5.1).
package pattern

import "github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"

// CaptureSlot names a binding site filled in by a successful match, e.g. the
// rule body's name for "the filter's input" or "the inner join's right
// side" (§4.2 captured_as).
type CaptureSlot string

// Captures is the bag of bindings produced by a successful Match, keyed by
// CaptureSlot. A binding is either a plan.Node (from CapturedAs) or a
// scalar.Expr (from ScalarCapturedAs); a rule's transform function knows
// which kind it asked for at each slot and type-asserts accordingly via
// NodeCapture / ExprCapture.
type Captures map[CaptureSlot]interface{}

// NodeCapture retrieves the plan.Node bound to slot by a prior CapturedAs
// match within caps, or (nil, false) if absent.
func NodeCapture(caps Captures, slot CaptureSlot) (plan.Node, bool) {
	n, ok := caps[slot].(plan.Node)
	return n, ok
}

// merge folds src into dst in place, used when sub-patterns each produce
// their own captures and a composite pattern (with/source/sources) needs to
// combine them.
func (c Captures) merge(src Captures) {
	for k, v := range src {
		c[k] = v
	}
}

// Pattern is implemented by every combinator. Match attempts to match n,
// returning the accumulated captures and whether the match succeeded. A
// failed match returns (nil, false) and must not have any side effect
// visible to the caller (§4.2: "pure, re-entrant").
type Pattern interface {
	Match(n plan.Node) (Captures, bool)
}

// Any matches any node unconditionally.
type anyPattern struct{}

// Any is the pattern that matches every node, used as a wildcard child
// pattern when a rule doesn't care about a particular operand's shape.
var Any Pattern = anyPattern{}

func (anyPattern) Match(n plan.Node) (Captures, bool) { return Captures{}, true }

// typeOfPattern matches any node whose Op() is one of the given operators.
type typeOfPattern struct {
	ops []plan.Operator
}

// TypeOf matches a node whose operator is one of ops (§4.2 typeof(T)).
func TypeOf(ops ...plan.Operator) Pattern {
	return typeOfPattern{ops: ops}
}

func (p typeOfPattern) Match(n plan.Node) (Captures, bool) {
	for _, op := range p.ops {
		if n.Op() == op {
			return Captures{}, true
		}
	}
	return nil, false
}

// AttributeAccessor extracts a named attribute off a node, e.g. a filter's
// predicate or a join's left child, for a With pattern to recurse into.
// This package provides the accessors it uses (Predicate and JoinOn in
// accessors.go), each type-asserting the plan node variant it applies to.
type AttributeAccessor func(n plan.Node) (interface{}, bool)

// withPattern matches n against Inner, then, if that succeeds, extracts an
// attribute via Access and matches Sub against it. Access's second return
// value is false if the attribute doesn't apply to n's variant (e.g.
// asking for "predicate" on a ScanNode), in which case the match fails.
type withPattern struct {
	inner  Pattern
	access AttributeAccessor
	sub    Pattern
}

// With matches inner against n, then requires that n's named attribute
// (extracted by access) in turn matches sub (§4.2 with(attribute_accessor,
// sub_pattern)). The attribute value is typically a scalar.Expr rather than
// a plan.Node, which is why sub is taken as a ScalarPattern and receives
// the attribute value as-is; ScalarPattern implementations that care about
// scalar shapes type-assert that value themselves.
func With(inner Pattern, access AttributeAccessor, sub ScalarPattern) Pattern {
	return withPattern{inner: inner, access: access, sub: sub}
}

func (p withPattern) Match(n plan.Node) (Captures, bool) {
	caps, ok := p.inner.Match(n)
	if !ok {
		return nil, false
	}
	attr, ok := p.access(n)
	if !ok {
		return nil, false
	}
	subCaps, ok := p.sub.MatchScalar(attr)
	if !ok {
		return nil, false
	}
	caps.merge(subCaps)
	return caps, true
}

// sourcePattern matches n against Inner, then requires n's single
// designated source child (e.g. a filter or project's input) to match Sub.
type sourcePattern struct {
	inner Pattern
	sub   Pattern
}

// Source matches inner against n and then requires n's one child (arity-1
// operators only) to match sub (§4.2 source(sub_pattern)).
func Source(inner Pattern, sub Pattern) Pattern {
	return sourcePattern{inner: inner, sub: sub}
}

func (p sourcePattern) Match(n plan.Node) (Captures, bool) {
	caps, ok := p.inner.Match(n)
	if !ok {
		return nil, false
	}
	children := n.Children()
	if len(children) != 1 {
		return nil, false
	}
	subCaps, ok := p.sub.Match(children[0])
	if !ok {
		return nil, false
	}
	caps.merge(subCaps)
	return caps, true
}

// sourcesPattern matches n against Inner, then requires each of n's
// children to match the corresponding entry of Subs in order.
type sourcesPattern struct {
	inner Pattern
	subs  []Pattern
}

// Sources matches inner against n and then requires n's children to match
// subs pairwise, in order (§4.2 sources(sub_patterns...)), e.g. a join's
// (left, right) children.
func Sources(inner Pattern, subs ...Pattern) Pattern {
	return sourcesPattern{inner: inner, subs: subs}
}

func (p sourcesPattern) Match(n plan.Node) (Captures, bool) {
	caps, ok := p.inner.Match(n)
	if !ok {
		return nil, false
	}
	children := n.Children()
	if len(children) != len(p.subs) {
		return nil, false
	}
	for i, sub := range p.subs {
		subCaps, ok := sub.Match(children[i])
		if !ok {
			return nil, false
		}
		caps.merge(subCaps)
	}
	return caps, true
}

// capturedAsPattern matches Inner against n, then binds n itself into the
// capture bag under Slot.
type capturedAsPattern struct {
	slot  CaptureSlot
	inner Pattern
}

// CapturedAs matches inner against n, and on success also binds n itself to
// slot in the resulting Captures bag (§4.2 captured_as(capture_slot,
// inner)).
func CapturedAs(slot CaptureSlot, inner Pattern) Pattern {
	return capturedAsPattern{slot: slot, inner: inner}
}

func (p capturedAsPattern) Match(n plan.Node) (Captures, bool) {
	caps, ok := p.inner.Match(n)
	if !ok {
		return nil, false
	}
	caps[p.slot] = n
	return caps, true
}
