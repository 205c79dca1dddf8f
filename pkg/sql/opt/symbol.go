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

import "fmt"

// ColumnID is the integer identifier of a Symbol (§3 Symbol). It is unique
// within a single plan/memo. Two symbols with the same Name but produced by
// different scopes have different ColumnIDs and are never equal.
type ColumnID int32

// Symbol is an opaque identifier for a value column carrying a Type. Symbols
// are immutable once minted; the core never reuses a ColumnID for a
// different symbol within one rewrite session (§3 Lifecycle).
type Symbol struct {
	ID   ColumnID
	Name string
	Typ  Type
}

// String implements fmt.Stringer, primarily for memo/plan formatting.
func (s Symbol) String() string {
	return fmt.Sprintf("%s:%d", s.Name, s.ID)
}

// SymbolList is an ordered sequence of symbols, used for scan/projection
// output lists where order matters (unlike ColSet, which is unordered).
type SymbolList []Symbol

// ColList returns this SymbolList's ids, in list order.
func (l SymbolList) ColList() []ColumnID {
	ids := make([]ColumnID, len(l))
	for i, s := range l {
		ids[i] = s.ID
	}
	return ids
}

// ColSet returns the (unordered, deduplicated) ColSet formed from this
// SymbolList's ids.
func (l SymbolList) ColSet() ColSet {
	var cols ColSet
	for _, s := range l {
		cols.Add(s.ID)
	}
	return cols
}

// SymbolAllocator mints fresh, session-unique ColumnIDs. The core is
// responsible for uniqueness within a rewrite session (§3 Lifecycle): a
// fresh allocator is created per memo/rewrite invocation, exactly the way
// the memo itself is created fresh per invocation.
type SymbolAllocator struct {
	next ColumnID
}

// NewSymbol mints a new Symbol with a fresh, session-unique ColumnID. Used
// when rules must introduce new columns, e.g. lambda-capture desugaring or
// common-subexpression extraction (§3 Lifecycle).
func (a *SymbolAllocator) NewSymbol(name string, typ Type) Symbol {
	a.next++
	return Symbol{ID: a.next, Name: name, Typ: typ}
}

// Reserve advances the allocator past the given id, so that ids handed in
// from an externally-constructed initial plan are never reused for a
// rule-minted symbol.
func (a *SymbolAllocator) Reserve(id ColumnID) {
	if id > a.next {
		a.next = id
	}
}
