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
	"github.com/isardb/isar/collection"
	"github.com/isardb/isar/keys"
	"github.com/isardb/isar/object"
	"github.com/isardb/isar/txn"
)

const tablePrimary = "Primary"

// Query is a fully-resolved query plan: where-clauses select candidates,
// Filter narrows them, SortKeys/DistinctKeys/Offset/Limit shape the
// output (spec.md §4.G). Build one with query_builder.go's Builder rather
// than by hand.
type Query struct {
	Collection   *collection.Collection
	WhereClauses []WhereClause
	Filter       Filter
	SortKeys     []SortKey
	DistinctKeys []DistinctKey
	Offset       int
	Limit        int // < 0 means unlimited
}

// clauses returns the where-clauses to run, defaulting to a single
// ascending full id range when none were given (spec.md §4.G step 1).
func (q *Query) clauses() []WhereClause {
	if len(q.WhereClauses) > 0 {
		return q.WhereClauses
	}
	return []WhereClause{IDRange(keys.MinID, keys.MaxID, true)}
}

// FindWhile streams matching objects to cb in the query's effective
// order, stopping when cb returns false (spec.md §4.G).
func (q *Query) FindWhile(t *txn.Txn, cb func(id int64, obj object.IsarObject) (bool, error)) error {
	if len(q.SortKeys) > 0 {
		return q.findSorted(t, cb)
	}
	return q.findStreaming(t, cb)
}

func (q *Query) findStreaming(t *txn.Txn, cb func(id int64, obj object.IsarObject) (bool, error)) error {
	ctx := &EvalContext{KV: t.KV}
	seenIDs := make(map[int64]bool)
	distinct := newDistinctSet(q.DistinctKeys)
	skipped := 0
	emitted := 0

	clauses := q.clauses()
	for ci, wc := range clauses {
		needDedup := false
		for cj, other := range clauses {
			if cj != ci && wc.overlaps(other) {
				needDedup = true
				break
			}
		}

		stop := false
		err := wc.iterate(t.KV, q.Collection.Schema.ID, tablePrimary, func(id int64, obj object.IsarObject) (bool, error) {
			if needDedup {
				if seenIDs[id] {
					return true, nil
				}
				seenIDs[id] = true
			}
			if !q.Filter.IsZero() {
				ok, err := q.Filter.eval(obj, id, ctx)
				if err != nil || !ok {
					return err == nil, err
				}
			}
			if !distinct.admit(obj) {
				return true, nil
			}
			if skipped < q.Offset {
				skipped++
				return true, nil
			}
			if q.Limit >= 0 && emitted >= q.Limit {
				stop = true
				return false, nil
			}
			emitted++
			cont, err := cb(id, obj)
			if !cont {
				stop = true
			}
			return cont, err
		})
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

func (q *Query) findSorted(t *txn.Txn, cb func(id int64, obj object.IsarObject) (bool, error)) error {
	ctx := &EvalContext{KV: t.KV}
	buf := newSortBuffer(q.SortKeys)
	seenIDs := make(map[int64]bool)

	clauses := q.clauses()
	for ci, wc := range clauses {
		needDedup := false
		for cj, other := range clauses {
			if cj != ci && wc.overlaps(other) {
				needDedup = true
				break
			}
		}
		err := wc.iterate(t.KV, q.Collection.Schema.ID, tablePrimary, func(id int64, obj object.IsarObject) (bool, error) {
			if needDedup {
				if seenIDs[id] {
					return true, nil
				}
				seenIDs[id] = true
			}
			if !q.Filter.IsZero() {
				ok, err := q.Filter.eval(obj, id, ctx)
				if err != nil || !ok {
					return err == nil, err
				}
			}
			buf.add(id, obj)
			return true, nil
		})
		if err != nil {
			return err
		}
	}

	distinct := newDistinctSet(q.DistinctKeys)
	skipped := 0
	emitted := 0
	var outerErr error
	buf.ascend(func(id int64, obj object.IsarObject) bool {
		if !distinct.admit(obj) {
			return true
		}
		if skipped < q.Offset {
			skipped++
			return true
		}
		if q.Limit >= 0 && emitted >= q.Limit {
			return false
		}
		emitted++
		cont, err := cb(id, obj)
		if err != nil {
			outerErr = err
			return false
		}
		return cont
	})
	return outerErr
}

// Count returns the number of objects the query would emit.
func (q *Query) Count(t *txn.Txn) (int, error) {
	n := 0
	err := q.FindWhile(t, func(int64, object.IsarObject) (bool, error) {
		n++
		return true, nil
	})
	return n, err
}

// Delete removes every object the query would emit and returns how many
// were removed. Ids are materialized up front so deleting never
// invalidates the iteration that discovered them (spec.md §4.G).
func (q *Query) Delete(t *txn.Txn) (int, error) {
	var ids []int64
	err := q.FindWhile(t, func(id int64, _ object.IsarObject) (bool, error) {
		ids = append(ids, id)
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	count := 0
	for _, id := range ids {
		deleted, err := q.Collection.Delete(t, id)
		if err != nil {
			return count, err
		}
		if deleted {
			count++
		}
	}
	return count, nil
}

// ExportJSON renders every emitted object as a JSON-ready map, recursing
// into embedded objects via resolve.
func (q *Query) ExportJSON(t *txn.Txn, byteAsBool, primitiveNull bool, resolve collection.Resolver) ([]map[string]any, error) {
	var out []map[string]any
	err := q.FindWhile(t, func(_ int64, obj object.IsarObject) (bool, error) {
		m, err := q.Collection.ExportObject(t, obj, byteAsBool, primitiveNull, resolve)
		if err != nil {
			return false, err
		}
		out = append(out, m)
		return true, nil
	})
	return out, err
}
