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

package txn

import "github.com/isardb/isar/object"

// Change is one (collection, id, object-or-tombstone) tuple recorded by
// the collection layer during a write txn (spec.md §4.I). Object is the
// zero value with Deleted=true for a tombstone.
type Change struct {
	CollectionID uint16
	ID           int64
	Object       object.IsarObject
	Deleted      bool
}

// ChangeSet accumulates every change made during one write txn, in the
// order the collection layer registered them (spec.md §5's "order the
// change set observes writes is preserved").
type ChangeSet struct {
	changes []Change
}

func (cs *ChangeSet) Record(c Change) { cs.changes = append(cs.changes, c) }

// Changes returns every recorded change, in registration order. The
// returned slice must not be retained past the txn's commit callback.
func (cs *ChangeSet) Changes() []Change { return cs.changes }

func (cs *ChangeSet) reset() { cs.changes = cs.changes[:0] }
