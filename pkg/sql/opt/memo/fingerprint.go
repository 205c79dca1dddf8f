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
	"fmt"
	"strings"

	"github.com/GuinsooLab/witdb-sub010/pkg/sql/opt/plan"
)

// fingerprint identifies a memo expression by its operator plus its list of
// child group ids plus any operator-specific attributes that distinguish
// it from another expression with the same operator and children (e.g. a
// filter's predicate, a scan's table). Two expressions with the same
// fingerprint are considered structurally identical and collapse to the
// same memo entry (§4.3 "Inserting a node already present... returns the
// existing group id and does not duplicate"), grounded on the teacher's
// memoExpr.fingerprint() in xform/memo.go.
type fingerprint string

// childGroups extracts the GroupIDs referenced by n's children, which by
// the time fingerprint is computed are always GroupReferences (§4.3
// invariant 1).
func childGroups(n plan.Node) []GroupID {
	children := n.Children()
	ids := make([]GroupID, len(children))
	for i, c := range children {
		ref, ok := c.(*GroupReference)
		if !ok {
			panic("fingerprint: child is not a GroupReference")
		}
		ids[i] = ref.Group
	}
	return ids
}

// computeFingerprint builds n's fingerprint. n's children must already be
// GroupReferences.
func computeFingerprint(n plan.Node) fingerprint {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", n.Op())
	for _, g := range childGroups(n) {
		fmt.Fprintf(&b, "|%d", g)
	}
	b.WriteByte('|')
	b.WriteString(attributeSignature(n))
	return fingerprint(b.String())
}

// attributeSignature renders the operator-specific attributes that aren't
// captured by Op()+childGroups: predicates, projections, join keys, table
// names and the like. Each case names the fields a rule could plausibly
// change; anything reachable only through children is intentionally
// omitted since child identity is already part of the fingerprint via
// childGroups.
func attributeSignature(n plan.Node) string {
	switch t := n.(type) {
	case *plan.ScanNode:
		return fmt.Sprintf("table=%s,cols=%v", t.Table, t.Cols.ColList())
	case *plan.ValuesNode:
		return fmt.Sprintf("cols=%v,rows=%d", t.Cols.ColList(), len(t.Rows))
	case *plan.TableFunctionNode:
		return fmt.Sprintf("name=%s,args=%d,cols=%v", t.Name, len(t.Args), t.Cols.ColList())
	case *plan.FilterNode:
		return fmt.Sprintf("pred=%s", t.Predicate)
	case *plan.ProjectNode:
		var b strings.Builder
		for _, p := range t.Projections {
			fmt.Fprintf(&b, "%d=%s;", p.Col.ID, p.Expr)
		}
		return b.String()
	case *plan.AggregationNode:
		var b strings.Builder
		fmt.Fprintf(&b, "group=%v;", t.GroupingCols.String())
		for _, a := range t.Aggregates {
			fmt.Fprintf(&b, "%s(%v)distinct=%v->%d;", a.FuncName, a.ArgCols, a.Distinct, a.Col.ID)
		}
		return b.String()
	case *plan.JoinNode:
		var b strings.Builder
		for _, k := range t.EquiKeys {
			fmt.Fprintf(&b, "%d=%d;", k.Left, k.Right)
		}
		for _, e := range t.On {
			fmt.Fprintf(&b, "on:%s;", e)
		}
		fmt.Fprintf(&b, "dist=%d", t.Distribution)
		return b.String()
	case *plan.SpatialJoinNode:
		return fmt.Sprintf("rel=%s,left=%d,right=%d", t.Relation, t.LeftGeom, t.RightGeom)
	case *plan.UnionNode:
		return fmt.Sprintf("kind=%d,cols=%v", t.Kind, t.Cols.ColList())
	case *plan.ExchangeNode:
		return fmt.Sprintf("part=%s,sources=%d", t.Partitioning, len(t.Sources))
	case *plan.TableWriteNode:
		return fmt.Sprintf("target=%s,cols=%v", t.Target.Name, t.Cols.ColList())
	default:
		return ""
	}
}
