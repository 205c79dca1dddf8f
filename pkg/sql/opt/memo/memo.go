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

// Package memo implements the group table described in §4.3 (C3): a data
// structure for efficiently storing a forest of logically-equivalent plan
// expressions, grounded on the teacher's xform.memo (see
// fingerprint.go's doc comment) but reshaped around this module's
// operator-agnostic plan.Node rather than CockroachDB's relational algebra.
package memo

import (
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/optfail"
	"github.com/cockroachdb/errors"
)

// Memo owns a single rewrite invocation's groups (§5 "The memo and its
// caches are owned by the single rewrite invocation; no cross-query
// sharing"). A Memo must not be used after the invocation that created it
// ends.
type Memo struct {
	// groups holds one *Group per group id, indexed by GroupID. It is a
	// slice of pointers rather than values: Insert/Replace can append new
	// groups mid-traversal (e.g. while the rewriter holds a *Group from an
	// earlier Get), and a slice of values would invalidate those pointers
	// across a reallocating append. A slice of pointers keeps each Group's
	// address stable for the Memo's lifetime.
	groups   []*Group
	byFinger map[fingerprint]GroupID
	root     GroupID
	nextID   plan.NodeID
}

// New returns an empty memo. Group id 0 is reserved and left unused so a
// zero-valued GroupID can be distinguished from "refers to group 0",
// matching the teacher's reservation scheme in xform/memo.go.
func New() *Memo {
	return &Memo{
		groups:   make([]*Group, 1),
		byFinger: make(map[fingerprint]GroupID),
	}
}

// RootGroup returns the group id of the last-inserted top-level plan, set
// by InsertRoot (§4.3 root_group()).
func (m *Memo) RootGroup() GroupID { return m.root }

// Get returns the group for id (§4.3 get(group_id) -> Group).
func (m *Memo) Get(id GroupID) *Group { return m.groups[id] }

// allocNodeID mints a fresh synthetic NodeID for GroupReferences the memo
// creates internally. The ids count down from -1, so they stay apart from
// the positive NodeIDs callers assign to the nodes they insert.
func (m *Memo) allocNodeID() plan.NodeID {
	m.nextID++
	return -m.nextID
}

// Insert recursively memoizes n: each child is inserted first (yielding a
// group id), then n is rebuilt with its children replaced by
// GroupReferences into those groups, then the rebuilt expression is
// interned by fingerprint (§4.3 insert(plan) -> group_id). Inserting a
// node already present, by structural equality including child group
// identities, returns the existing group id without duplication.
func (m *Memo) Insert(n plan.Node) (GroupID, error) {
	children := n.Children()
	newChildren := make([]plan.Node, len(children))
	for i, c := range children {
		if ref, ok := c.(*GroupReference); ok {
			// Already a reference (e.g. re-inserting a rule's output that
			// reused an existing child group unchanged).
			newChildren[i] = ref
			continue
		}
		childGroup, err := m.Insert(c)
		if err != nil {
			return 0, err
		}
		newChildren[i] = &GroupReference{
			nodeID:  m.allocNodeID(),
			Group:   childGroup,
			Symbols: m.Get(childGroup).OutputSymbols(),
		}
	}
	rebuilt, err := n.ReplaceChildren(newChildren)
	if err != nil {
		return 0, optfail.Wrap(optfail.InvalidPlan, err,
			"insert: node %d (%s) children", n.ID(), n.Op())
	}

	fp := computeFingerprint(rebuilt)
	if existing, ok := m.byFinger[fp]; ok {
		return existing, nil
	}

	id := GroupID(len(m.groups))
	m.groups = append(m.groups, &Group{id: id, mem: m, exprs: []plan.Node{rebuilt}})
	m.byFinger[fp] = id
	return id, nil
}

// InsertRoot inserts n and records its group as the memo's root (§4.3
// root_group()).
func (m *Memo) InsertRoot(n plan.Node) (GroupID, error) {
	id, err := m.Insert(n)
	if err != nil {
		return 0, err
	}
	m.root = id
	return id, nil
}

// Replace adds newExpr to groupID's equivalence set (§4.3 replace). newExpr
// must already have GroupReference children (i.e. it should be built via
// Insert's child-recursion, not handed a raw concrete child) -- Replace
// itself does not recurse into children the way Insert does, since its
// caller (the rewriter) already has concrete group ids for every operand
// it's substituting. Replace never destroys previous members: future
// exploration and cost extraction consider every expression ever added.
func (m *Memo) Replace(groupID GroupID, newExpr plan.Node) error {
	g := m.groups[groupID]
	for _, c := range newExpr.Children() {
		if _, ok := c.(*GroupReference); !ok {
			return optfail.New(optfail.InvalidPlan,
				"replace: group %d: child of %s is not a GroupReference", groupID, newExpr.Op())
		}
	}
	fp := computeFingerprint(newExpr)
	if existing, ok := m.byFinger[fp]; ok {
		if existing != groupID {
			return optfail.New(optfail.InvalidPlan,
				"replace: fingerprint collision across groups %d and %d", existing, groupID)
		}
		return nil
	}
	g.exprs = append(g.exprs, newExpr)
	m.byFinger[fp] = groupID
	return nil
}

// GroupCount returns the number of groups currently in the memo, including
// the reserved group 0. Used by the rewriter to iterate "all groups" when
// seeding its work-set (§4.4 step 2).
func (m *Memo) GroupCount() int { return len(m.groups) }

// ForEachGroup calls f once per group, skipping the reserved group 0, in
// increasing id order.
func (m *Memo) ForEachGroup(f func(g *Group)) {
	for i := 1; i < len(m.groups); i++ {
		f(m.groups[i])
	}
}

// Extract walks the memo starting at groupID, picking, in each group, the
// expression minimizing costOf (ties broken by insertion order for
// determinism, §4.4 step 4), and rebuilds a concrete plan.Node tree with no
// GroupReferences remaining. costOf is supplied by the caller (the cost
// package) rather than computed here, since Extract has no notion of
// session parameters or a type provider.
func Extract(m *Memo, groupID GroupID, costOf func(plan.Node) (float64, bool)) (plan.Node, error) {
	g := m.Get(groupID)
	if len(g.exprs) == 0 {
		return nil, optfail.New(optfail.InvalidPlan, "extract: group %d has no expressions", groupID)
	}
	best := g.exprs[0]
	bestCost, bestKnown := costOf(best)
	for _, e := range g.exprs[1:] {
		c, known := costOf(e)
		if known && (!bestKnown || c < bestCost) {
			best, bestCost, bestKnown = e, c, true
		}
	}

	children := best.Children()
	newChildren := make([]plan.Node, len(children))
	for i, c := range children {
		ref, ok := c.(*GroupReference)
		if !ok {
			return nil, errors.AssertionFailedf("extract: expected GroupReference child, got %T", c)
		}
		extracted, err := Extract(m, ref.Group, costOf)
		if err != nil {
			return nil, err
		}
		newChildren[i] = extracted
	}
	return best.ReplaceChildren(newChildren)
}
