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

import "github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/scalar"

// ScalarPattern is the scalar-expression analog of Pattern (§4.2): it
// matches the attribute value extracted by With, which for every rule
// written against filter predicates, join conditions, and projections is a
// scalar.Expr rather than a plan.Node.
type ScalarPattern interface {
	MatchScalar(attr interface{}) (Captures, bool)
}

// AnyScalar matches any scalar.Expr unconditionally.
var AnyScalar ScalarPattern = anyScalarPattern{}

type anyScalarPattern struct{}

func (anyScalarPattern) MatchScalar(attr interface{}) (Captures, bool) {
	if _, ok := attr.(scalar.Expr); !ok {
		return nil, false
	}
	return Captures{}, true
}

// ScalarKindOf matches a scalar.Expr whose Kind() is one of kinds.
func ScalarKindOf(kinds ...scalar.Kind) ScalarPattern {
	return scalarKindPattern{kinds: kinds}
}

type scalarKindPattern struct {
	kinds []scalar.Kind
}

func (p scalarKindPattern) MatchScalar(attr interface{}) (Captures, bool) {
	e, ok := attr.(scalar.Expr)
	if !ok {
		return nil, false
	}
	for _, k := range p.kinds {
		if e.Kind() == k {
			return Captures{}, true
		}
	}
	return nil, false
}

// scalarCapturedAsPattern matches Inner against the scalar.Expr attribute,
// then binds the expression itself into the capture bag under Slot. Slots
// are CaptureSlot-typed just like plan.Node captures; ExprCapture does the
// type assertion to scalar.Expr that NodeCapture does to plan.Node.
type scalarCapturedAsPattern struct {
	slot  CaptureSlot
	inner ScalarPattern
}

// ScalarCapturedAs matches inner against the scalar.Expr attribute value,
// binding it to slot on success (§4.2 captured_as, scalar flavor).
func ScalarCapturedAs(slot CaptureSlot, inner ScalarPattern) ScalarPattern {
	return scalarCapturedAsPattern{slot: slot, inner: inner}
}

func (p scalarCapturedAsPattern) MatchScalar(attr interface{}) (Captures, bool) {
	caps, ok := p.inner.MatchScalar(attr)
	if !ok {
		return nil, false
	}
	caps[p.slot] = attr.(scalar.Expr)
	return caps, true
}

// ExprCapture retrieves the scalar.Expr bound to slot by a prior
// ScalarCapturedAs match within caps, or (nil, false) if absent.
func ExprCapture(caps Captures, slot CaptureSlot) (scalar.Expr, bool) {
	e, ok := caps[slot].(scalar.Expr)
	return e, ok
}
