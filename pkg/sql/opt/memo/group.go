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

// Group is an equivalence class of logically-equivalent plan expressions
// (§GLOSSARY, §4.3). All members agree on output symbols set-wise (§4.3
// invariant 2); they may differ in shape (e.g. a hash join and a broadcast
// join over the same two inputs).
//
// Stats and cost are memoized here as interior-mutable caches (§9
// "Statistics/cost memoization as mutable maps inside builder objects →
// interior-mutable caches on Group"), guarded by the single-threaded
// per-invocation discipline of §5 -- no locking. They're stored as
// interface{} because the memo package must not import stats/cost (those
// packages import memo to walk groups), so the concrete cached type is
// known only to the package that populated it.
type Group struct {
	id    GroupID
	mem   *Memo
	exprs []plan.Node

	statsCache map[interface{}]interface{}
	costCache  map[interface{}]interface{}
}

// ID returns the group's id.
func (g *Group) ID() GroupID { return g.id }

// Exprs returns the group's equivalent expressions. The slice is owned by
// the group; callers must not mutate it.
func (g *Group) Exprs() []plan.Node { return g.exprs }

// OutputSymbols returns the output symbols shared by every member of the
// group (§4.3 invariant: "Symbols declared by any member of a group agree
// set-wise").
func (g *Group) OutputSymbols() opt.SymbolList {
	if len(g.exprs) == 0 {
		return nil
	}
	return g.exprs[0].OutputSymbols()
}

// CacheGet retrieves a previously-stored value for key from the group's
// stats cache, or (nil, false) if absent. key is typically a small struct
// defined by the stats package distinguishing session parameters/type
// provider, matching the cache-key discipline stats/cost are specified
// with (§4.5, §4.6).
func (g *Group) CacheGet(key interface{}) (interface{}, bool) {
	if g.statsCache == nil {
		return nil, false
	}
	v, ok := g.statsCache[key]
	return v, ok
}

// CacheSet stores value for key in the group's stats cache.
func (g *Group) CacheSet(key interface{}, value interface{}) {
	if g.statsCache == nil {
		g.statsCache = make(map[interface{}]interface{})
	}
	g.statsCache[key] = value
}

// CostCacheGet retrieves a previously-stored cost for key, keyed by
// (group_id, session_parameters, type_provider) per §4.6 "Cache policy".
// The group id half of that key is implicit (it's this group); key carries
// the rest.
func (g *Group) CostCacheGet(key interface{}) (interface{}, bool) {
	if g.costCache == nil {
		return nil, false
	}
	v, ok := g.costCache[key]
	return v, ok
}

// CostCacheSet stores a cost value for key in the group's cost cache.
func (g *Group) CostCacheSet(key interface{}, value interface{}) {
	if g.costCache == nil {
		g.costCache = make(map[interface{}]interface{})
	}
	g.costCache[key] = value
}
