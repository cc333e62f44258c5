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

// Package txn wraps one engine transaction with a reusable cursor pool and
// (for writes) an accumulating change set, per spec.md §4.H.
package txn

import (
	"github.com/isardb/isar/isarerr"
	"github.com/isardb/isar/kv"
)

// Txn wraps one kv.Txn (read or write), lending pooled cursors to callers
// so repeated per-operation cursor opens don't churn the allocator.
type Txn struct {
	KV        *kv.Txn
	pool      map[string][]*kv.Cursor
	changeSet *ChangeSet
	closed    bool

	// onCommit is invoked with the accumulated changes after the
	// underlying engine txn durably commits (spec.md §4.H, §4.I).
	onCommit func([]Change)
}

// NewRead wraps a read-only kv.Txn. The returned Txn has no change set;
// ChangeSet() returns nil on it.
func NewRead(kvTxn *kv.Txn) *Txn {
	return &Txn{KV: kvTxn, pool: make(map[string][]*kv.Cursor)}
}

// NewWrite wraps a write kv.Txn and installs onCommit, called once after
// the underlying txn durably commits with every change recorded this txn.
func NewWrite(kvTxn *kv.Txn, onCommit func([]Change)) *Txn {
	return &Txn{KV: kvTxn, pool: make(map[string][]*kv.Cursor), changeSet: &ChangeSet{}, onCommit: onCommit}
}

func (t *Txn) checkOpen() error {
	if t.closed {
		return isarerr.ErrTransactionClosed
	}
	return nil
}

// ChangeSet returns the active change set. Only valid on a write txn.
func (t *Txn) ChangeSet() *ChangeSet { return t.changeSet }

// Writable reports whether this is a write transaction.
func (t *Txn) Writable() bool { return t.KV.Writable() }

// Cursor lends a pooled cursor bound to table, opening a fresh one if the
// pool is empty for that table. Callers must call the returned release
// func when done (typically via defer) to return it to the pool.
func (t *Txn) Cursor(table string) (*kv.Cursor, func(), error) {
	if err := t.checkOpen(); err != nil {
		return nil, nil, err
	}
	if stack := t.pool[table]; len(stack) > 0 {
		c := stack[len(stack)-1]
		t.pool[table] = stack[:len(stack)-1]
		return c, func() { t.release(table, c) }, nil
	}
	c, err := t.KV.Cursor(table)
	if err != nil {
		return nil, nil, err
	}
	return c, func() { t.release(table, c) }, nil
}

func (t *Txn) release(table string, c *kv.Cursor) {
	if t.closed {
		c.Close()
		return
	}
	t.pool[table] = append(t.pool[table], c)
}

func (t *Txn) closeAllCursors() {
	for _, stack := range t.pool {
		for _, c := range stack {
			c.Close()
		}
	}
	t.pool = nil
}

// Commit releases pooled cursors, commits the underlying engine txn, then
// (for a write txn) invokes onCommit with the accumulated changes — the
// hook that drives watcher notification (spec.md §4.H, §4.I).
func (t *Txn) Commit() error {
	if err := t.checkOpen(); err != nil {
		return err
	}
	t.closed = true
	t.closeAllCursors()
	if err := t.KV.Commit(); err != nil {
		return err
	}
	if t.onCommit != nil {
		t.onCommit(t.changeSet.Changes())
	}
	return nil
}

// Abort releases pooled cursors and aborts the underlying engine txn. No
// watcher notification fires.
func (t *Txn) Abort() {
	if t.closed {
		return
	}
	t.closed = true
	t.closeAllCursors()
	t.KV.Abort()
}
