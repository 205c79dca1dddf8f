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

package memo

import (
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
)

// GroupID identifies a memo group. The zero value is never a valid group
// id, mirroring the teacher's reservation of group 0 so that a
// zero-initialized reference can be told apart from "refers to group 0".
type GroupID int32

// GroupReference stands in for "any current member of group X" wherever a
// memo expression's child would otherwise be a concrete node (§3 Group
// reference, §4.3 invariant 1: "every child of every expression in every
// group is a GroupReference"). Its OutputSymbols is cached at construction
// time from the group's member symbols, since a GroupReference alone
// doesn't carry a *Memo handle to look them up lazily.
type GroupReference struct {
	nodeID  plan.NodeID
	Group   GroupID
	Symbols opt.SymbolList
}

var _ plan.Node = (*GroupReference)(nil)

func (g *GroupReference) Op() plan.Operator             { return plan.GroupReferenceOp }
func (g *GroupReference) ID() plan.NodeID                { return g.nodeID }
func (g *GroupReference) Children() []plan.Node          { return nil }
func (g *GroupReference) OutputSymbols() opt.SymbolList { return g.Symbols }

// ReplaceChildren on a GroupReference, which has arity 0, returns a copy of
// it for an empty list and plan.ErrArity for any other list. A
// GroupReference is never descended into by a physical-plan visitor (§4.1).
func (g *GroupReference) ReplaceChildren(newChildren []plan.Node) (plan.Node, error) {
	if len(newChildren) != 0 {
		return nil, plan.ErrArity
	}
	cp := *g
	return &cp, nil
}
