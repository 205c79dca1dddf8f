// Copyright 2018 The Cockroach Authors.
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

// Package intsets provides a small, copyable set-of-small-integers type used
// throughout the optimizer core to represent column sets, group sets and rule
// sets without resorting to maps.
package intsets

import (
	"bytes"
	"fmt"

	"golang.org/x/tools/container/intsets"
)

// FastIntSet efficiently stores an unordered set of non-negative integers.
// Small sets fit inline (via the underlying sparse representation); there is
// no fixed upper bound on the values it can hold.
type FastIntSet struct {
	set intsets.Sparse
}

// MakeFastIntSet returns a set initialized with the given values.
func MakeFastIntSet(vals ...int) FastIntSet {
	var res FastIntSet
	for _, v := range vals {
		res.Add(v)
	}
	return res
}

// Add adds a value to the set. No-op if the value is already in the set.
func (s *FastIntSet) Add(i int) { s.set.Insert(i) }

// Remove removes a value from the set. No-op if the value is not in the set.
func (s *FastIntSet) Remove(i int) { s.set.Remove(i) }

// Contains returns true if the set contains the value.
func (s FastIntSet) Contains(i int) bool { return s.set.Has(i) }

// Empty returns true if the set is empty.
func (s FastIntSet) Empty() bool { return s.set.IsEmpty() }

// Len returns the number of elements in the set.
func (s FastIntSet) Len() int { return s.set.Len() }

// Next returns the first value in the set which is >= startVal. If there is
// no such value, the second return value is false.
func (s FastIntSet) Next(startVal int) (int, bool) {
	if next := s.set.LowerBound(startVal); next >= 0 {
		return next, true
	}
	return -1, false
}

// ForEach calls a function for each value in the set (in increasing order).
func (s FastIntSet) ForEach(f func(i int)) {
	var it intsets.Sparse
	it.Copy(&s.set)
	for i := it.Min(); it.Len() > 0; {
		f(i)
		if !it.Remove(i) {
			break
		}
		if nxt := it.LowerBound(i); nxt >= 0 {
			i = nxt
		} else {
			break
		}
	}
}

// Copy returns a copy of s which can be modified independently.
func (s FastIntSet) Copy() FastIntSet {
	var res FastIntSet
	res.set.Copy(&s.set)
	return res
}

// UnionWith adds all the values from rhs to this set.
func (s *FastIntSet) UnionWith(rhs FastIntSet) { s.set.UnionWith(&rhs.set) }

// Union returns the union of s and rhs as a new set.
func (s FastIntSet) Union(rhs FastIntSet) FastIntSet {
	r := s.Copy()
	r.UnionWith(rhs)
	return r
}

// IntersectionWith removes any values not in rhs from this set.
func (s *FastIntSet) IntersectionWith(rhs FastIntSet) { s.set.IntersectionWith(&rhs.set) }

// Intersection returns the intersection of s and rhs as a new set.
func (s FastIntSet) Intersection(rhs FastIntSet) FastIntSet {
	r := s.Copy()
	r.IntersectionWith(rhs)
	return r
}

// DifferenceWith removes any elements in rhs from this set.
func (s *FastIntSet) DifferenceWith(rhs FastIntSet) { s.set.DifferenceWith(&rhs.set) }

// Difference returns the elements of s that are not in rhs as a new set.
func (s FastIntSet) Difference(rhs FastIntSet) FastIntSet {
	r := s.Copy()
	r.DifferenceWith(rhs)
	return r
}

// Intersects returns true if s has any elements in common with rhs.
func (s FastIntSet) Intersects(rhs FastIntSet) bool { return s.set.HasAny(&rhs.set) }

// Equals returns true if the two sets are identical.
func (s FastIntSet) Equals(rhs FastIntSet) bool { return s.set.Equals(&rhs.set) }

// SubsetOf returns true if rhs contains all the elements in s.
func (s FastIntSet) SubsetOf(rhs FastIntSet) bool { return s.set.SubsetOf(&rhs.set) }

// String returns a list representation of elements. Runs of three or more
// consecutive values are shown as ranges, e.g. "(1-3,5,6,10)".
func (s FastIntSet) String() string {
	var buf bytes.Buffer
	buf.WriteByte('(')
	first := true
	appendRange := func(start, end int) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if start == end {
			fmt.Fprintf(&buf, "%d", start)
		} else if start+1 == end {
			fmt.Fprintf(&buf, "%d,%d", start, end)
		} else {
			fmt.Fprintf(&buf, "%d-%d", start, end)
		}
	}
	start, end := -1, -1
	s.ForEach(func(i int) {
		switch {
		case start == -1:
			start, end = i, i
		case i == end+1:
			end = i
		default:
			appendRange(start, end)
			start, end = i, i
		}
	})
	if start != -1 {
		appendRange(start, end)
	}
	buf.WriteByte(')')
	return buf.String()
}
