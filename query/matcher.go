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

import "github.com/isardb/isar/txn"

// Matches implements watch.Matcher: a query watcher fires when a changed
// object would have been emitted by the query's where-clauses and filter,
// evaluated without link traversal (spec.md §4.I — a link-aware query
// degrades to firing on any change to the collection, since evaluating a
// link predicate needs a live engine txn the watcher callback doesn't
// have).
func (q *Query) Matches(c txn.Change) bool {
	if c.CollectionID != q.Collection.Schema.ID {
		return false
	}
	if c.Deleted {
		return true
	}
	if q.Filter.containsLink() {
		return true
	}
	for _, wc := range q.clauses() {
		if wc.kind == whereLink {
			// A live link traversal needs an engine txn the watcher
			// callback doesn't have; degrade to "fire on any change"
			// for this clause rather than risk silently missing it.
			return true
		}
		if !wc.matchesChange(c.ID, c.Object, q.Collection.Schema) {
			continue
		}
		ok, err := q.Filter.eval(c.Object, c.ID, nil)
		if err == nil && (q.Filter.IsZero() || ok) {
			return true
		}
	}
	return false
}
