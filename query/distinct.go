// Copyright 2026 The isardb Authors
// This file is part of isardb.
//
// isardb is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// isardb is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with isardb. If not, see <http://www.gnu.org/licenses/>.

package query

import "github.com/isardb/isar/object"

// DistinctKey is one (property, case_sensitive) pair in a query's distinct
// list (spec.md §4.G).
type DistinctKey struct {
	Property      object.Property
	Following     []int
	CaseSensitive bool
}

// distinctSet deduplicates emissions by the seeded hash of their distinct
// keys, chaining object.HashProperty across the key list the same way a
// whole-object hash would.
type distinctSet struct {
	keys []DistinctKey
	seen map[uint64]bool
}

func newDistinctSet(keys []DistinctKey) *distinctSet {
	return &distinctSet{keys: keys, seen: make(map[uint64]bool)}
}

// admit reports whether obj is the first emission seen for its distinct
// key tuple, recording it if so.
func (d *distinctSet) admit(obj object.IsarObject) bool {
	if len(d.keys) == 0 {
		return true
	}
	var h uint64
	for _, k := range d.keys {
		h = obj.HashProperty(k.Property, h, k.Following, k.CaseSensitive)
	}
	if d.seen[h] {
		return false
	}
	d.seen[h] = true
	return true
}
