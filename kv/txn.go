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

package kv

import (
	"errors"

	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/isardb/isar/isarerr"
)

// Txn wraps one mdbx transaction, read or write.
type Txn struct {
	txn      *mdbx.Txn
	env      *Env
	writable bool
	done     bool
}

func (t *Txn) Writable() bool { return t.writable }

func (t *Txn) dbi(table string) (mdbx.DBI, error) {
	dbi, ok := t.env.dbis[table]
	if !ok {
		return 0, isarerr.IllegalArg("unknown table %q", table)
	}
	return dbi, nil
}

// Get returns the value for key, or ok=false if absent. For a DupSort
// table this returns the first value under key.
func (t *Txn) Get(table string, key []byte) (val []byte, ok bool, err error) {
	dbi, err := t.dbi(table)
	if err != nil {
		return nil, false, err
	}
	v, err := t.txn.Get(dbi, key)
	if err != nil {
		if mdbx.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, isarerr.EngineError(err, 0)
	}
	return v, true, nil
}

// Put inserts or overwrites key -> val. For a DupSort table, if val is not
// already present under key it is added as an additional duplicate rather
// than replacing the existing values.
func (t *Txn) Put(table string, key, val []byte) error {
	dbi, err := t.dbi(table)
	if err != nil {
		return err
	}
	if err := t.txn.Put(dbi, key, val, 0); err != nil {
		return isarerr.EngineError(err, 0)
	}
	return nil
}

// PutNoOverride inserts key -> val only if key is not already present
// (single-value tables) and reports whether it already existed.
func (t *Txn) PutNoOverride(table string, key, val []byte) (existed bool, err error) {
	dbi, err := t.dbi(table)
	if err != nil {
		return false, err
	}
	err = t.txn.Put(dbi, key, val, mdbx.NoOverwrite)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, mdbx.ErrKeyExist) || mdbx.IsKeyExist(err) {
		return true, nil
	}
	return false, isarerr.EngineError(err, 0)
}

// Delete removes every value stored under key.
func (t *Txn) Delete(table string, key []byte) error {
	dbi, err := t.dbi(table)
	if err != nil {
		return err
	}
	if err := t.txn.Del(dbi, key, nil); err != nil {
		if mdbx.IsNotFound(err) {
			return nil
		}
		return isarerr.EngineError(err, 0)
	}
	return nil
}

// DeleteExact removes only the (key, val) pair, leaving any other
// duplicates under key intact. Used by non-unique index/link deletion.
func (t *Txn) DeleteExact(table string, key, val []byte) error {
	dbi, err := t.dbi(table)
	if err != nil {
		return err
	}
	if err := t.txn.Del(dbi, key, val); err != nil {
		if mdbx.IsNotFound(err) {
			return nil
		}
		return isarerr.EngineError(err, 0)
	}
	return nil
}

// Cursor opens a cursor bound to table, valid for the lifetime of the txn.
func (t *Txn) Cursor(table string) (*Cursor, error) {
	dbi, err := t.dbi(table)
	if err != nil {
		return nil, err
	}
	c, err := t.txn.OpenCursor(dbi)
	if err != nil {
		return nil, isarerr.EngineError(err, 0)
	}
	return &Cursor{c: c}, nil
}

// Commit finalizes a write transaction durably.
func (t *Txn) Commit() error {
	if t.done {
		return isarerr.ErrTransactionClosed
	}
	t.done = true
	if _, err := t.txn.Commit(); err != nil {
		return isarerr.EngineError(err, 0)
	}
	return nil
}

// Abort discards all changes made in a write transaction (a no-op for
// reads beyond releasing the snapshot).
func (t *Txn) Abort() {
	if t.done {
		return
	}
	t.done = true
	t.txn.Abort()
}
