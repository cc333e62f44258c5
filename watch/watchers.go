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

package watch

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/isardb/isar/internal/ilog"
	"github.com/isardb/isar/txn"
)

// Registry holds every live watcher for one instance, guarded by a mutex,
// plus a lock-free channel of pending removals drained at the start of
// each Notify, that is, after each write txn commits (spec.md §5, §4.I).
type Registry struct {
	mu         sync.Mutex
	byID       map[uuid.UUID]*Watcher
	byColl     map[uint16][]*Watcher
	pendingRem chan uuid.UUID
}

func NewRegistry() *Registry {
	return &Registry{
		byID:       make(map[uuid.UUID]*Watcher),
		byColl:     make(map[uint16][]*Watcher),
		pendingRem: make(chan uuid.UUID, 256),
	}
}

func (r *Registry) add(w *Watcher) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[w.handle.id] = w
	r.byColl[w.collectionID] = append(r.byColl[w.collectionID], w)
	return w.handle
}

// WatchCollection registers a watcher that fires on any change to
// collectionID.
func (r *Registry) WatchCollection(collectionID uint16, cb func()) Handle {
	h := Handle{id: uuid.New(), collectionID: collectionID}
	return r.add(&Watcher{handle: h, kind: KindCollection, collectionID: collectionID, callback: cb})
}

// WatchObject registers a watcher that fires on any change to the given
// id within collectionID.
func (r *Registry) WatchObject(collectionID uint16, objectID int64, cb func()) Handle {
	h := Handle{id: uuid.New(), collectionID: collectionID}
	return r.add(&Watcher{handle: h, kind: KindObject, collectionID: collectionID, objectID: objectID, callback: cb})
}

// WatchQuery registers a watcher that fires once a changed object in
// collectionID matches matcher.
func (r *Registry) WatchQuery(collectionID uint16, matcher Matcher, cb func()) Handle {
	h := Handle{id: uuid.New(), collectionID: collectionID}
	return r.add(&Watcher{handle: h, kind: KindQuery, collectionID: collectionID, matcher: matcher, callback: cb})
}

// Stop schedules h for asynchronous deregistration: the removal is
// enqueued on a channel and only takes effect the next time
// drainPending runs, so a Stop call never blocks on or races the commit
// path.
func (r *Registry) Stop(h Handle) {
	select {
	case r.pendingRem <- h.id:
	default:
		// Channel full: fall back to taking the lock directly rather than
		// dropping the deregistration.
		r.mu.Lock()
		r.removeLocked(h.id)
		r.mu.Unlock()
	}
}

func (r *Registry) removeLocked(id uuid.UUID) {
	w, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)
	list := r.byColl[w.collectionID]
	for i, cand := range list {
		if cand.handle.id == id {
			r.byColl[w.collectionID] = append(list[:i], list[i+1:]...)
			break
		}
	}
}

// drainPending applies every queued Stop since the last drain. Notify
// calls it before firing anything; no other code calls it.
func (r *Registry) drainPending() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		select {
		case id := <-r.pendingRem:
			r.removeLocked(id)
		default:
			return
		}
	}
}

// Notify drains pending deregistrations, then fires every watcher whose
// collection saw a change and whose criteria match (spec.md §4.I). A
// panicking callback is recovered and logged so it can't prevent other
// callbacks from running.
func (r *Registry) Notify(changes []txn.Change) {
	r.drainPending()
	if len(changes) == 0 {
		return
	}

	byColl := make(map[uint16][]txn.Change)
	for _, c := range changes {
		byColl[c.CollectionID] = append(byColl[c.CollectionID], c)
	}

	r.mu.Lock()
	var toFire []*Watcher
	for collID, collChanges := range byColl {
		for _, w := range r.byColl[collID] {
			if w.fires(collChanges) {
				toFire = append(toFire, w)
			}
		}
	}
	r.mu.Unlock()

	// Fan callbacks out concurrently so one slow watcher can't delay the
	// rest; a panicking callback is recovered inside fireSafely, so the
	// group never sees an error to collect.
	var g errgroup.Group
	for _, w := range toFire {
		cb := w.callback
		g.Go(func() error {
			fireSafely(cb)
			return nil
		})
	}
	_ = g.Wait()
}

func fireSafely(cb func()) {
	defer func() {
		if r := recover(); r != nil {
			ilog.New().Warnw("watcher callback panicked", "recover", r)
		}
	}()
	cb()
}
