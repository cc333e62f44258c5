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

import (
	"github.com/google/btree"

	"github.com/isardb/isar/object"
)

// SortOrder selects ascending or descending comparison for one sort key.
type SortOrder int

const (
	Asc SortOrder = iota
	Desc
)

// SortKey is one (property, order) pair in a query's sort-key list
// (spec.md §4.G); comparisons between two emissions run through the keys
// in declared order, lexically, until one differentiates them.
type SortKey struct {
	Property  object.Property
	Following []int
	Order     SortOrder
}

// sortItem is one buffered emission plus the insertion sequence that
// breaks ties, keeping the sort stable the way spec.md §4.G requires.
type sortItem struct {
	seq  int64
	id   int64
	obj  object.IsarObject
	keys []SortKey
}

func (a *sortItem) Less(than btree.Item) bool {
	b := than.(*sortItem)
	for _, k := range a.keys {
		c := object.CompareProperty(a.obj, b.obj, k.Property, k.Following)
		if k.Order == Desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
	}
	return a.seq < b.seq
}

// sortBuffer accumulates emissions and replays them back in stable sort
// order via a b-tree, used by the query pipeline's sorted execution mode
// (spec.md §4.G step 3): the buffer itself enforces the order, so the
// caller walks it with a single in-order traversal instead of sorting a
// materialized slice afterward.
type sortBuffer struct {
	tree *btree.BTree
	keys []SortKey
	seq  int64
}

func newSortBuffer(keys []SortKey) *sortBuffer {
	return &sortBuffer{tree: btree.New(32), keys: keys}
}

func (b *sortBuffer) add(id int64, obj object.IsarObject) {
	b.tree.ReplaceOrInsert(&sortItem{seq: b.seq, id: id, obj: obj, keys: b.keys})
	b.seq++
}

// ascend walks the buffer in sorted order, stopping early if cb returns
// false.
func (b *sortBuffer) ascend(cb func(id int64, obj object.IsarObject) bool) {
	b.tree.Ascend(func(it btree.Item) bool {
		si := it.(*sortItem)
		return cb(si.id, si.obj)
	})
}

func (b *sortBuffer) len() int { return b.tree.Len() }
