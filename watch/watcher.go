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

// Package watch implements change-notification watchers (spec.md §4.I):
// collection, object, and query watchers, registered against a registry
// whose queued deregistrations are applied each time a commit notifies it;
// nothing drains them when a write txn begins.
package watch

import (
	"github.com/google/uuid"

	"github.com/isardb/isar/txn"
)

// Kind selects what a Watcher matches against a commit's change set.
type Kind uint8

const (
	KindCollection Kind = iota
	KindObject
	KindQuery
)

// Matcher decides whether a query watcher fires for one change; supplied
// by the query package so watch stays free of a query-package import
// cycle. It evaluates the where-clauses and filter only — a link-aware
// query degrades to "fire on any change" per spec.md §4.I.
type Matcher interface {
	Matches(c txn.Change) bool
}

// Handle is returned from a registration call; the caller uses it to stop
// the watcher. Handle itself carries no behavior — Registry.Stop(handle)
// performs the actual deregistration.
type Handle struct {
	id           uuid.UUID
	collectionID uint16
}

func (h Handle) ID() uuid.UUID { return h.id }

// Watcher is one registered callback plus the criteria that decide
// whether a commit's change set should fire it.
type Watcher struct {
	handle       Handle
	kind         Kind
	collectionID uint16
	objectID     int64
	matcher      Matcher
	callback     func()
}

// Fires reports whether this watcher should fire given one commit's
// changes for its collection (changes outside CollectionID are never
// passed in by the registry, so no further collection check is needed
// here).
func (w *Watcher) fires(changes []txn.Change) bool {
	switch w.kind {
	case KindCollection:
		return len(changes) > 0
	case KindObject:
		for _, c := range changes {
			if c.ID == w.objectID {
				return true
			}
		}
		return false
	case KindQuery:
		if w.matcher == nil {
			return len(changes) > 0
		}
		for _, c := range changes {
			if w.matcher.Matches(c) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
