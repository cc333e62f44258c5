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
	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/isardb/isar/isarerr"
)

// Cursor is a handle for ordered iteration over one table within a single
// transaction. Callers open one through Txn.Cursor per operation and Close
// it when done.
type Cursor struct {
	c *mdbx.Cursor
}

// Entry mirrors one (key, value) pair yielded by the cursor, or a zero
// value with ok=false once iteration is exhausted.
type Entry struct {
	Key []byte
	Val []byte
}

func (c *Cursor) get(op uint) (Entry, bool, error) {
	k, v, err := c.c.Get(nil, nil, op)
	if err != nil {
		if mdbx.IsNotFound(err) {
			return Entry{}, false, nil
		}
		return Entry{}, false, isarerr.EngineError(err, 0)
	}
	return Entry{Key: k, Val: v}, true, nil
}

// First positions on the first Entry of the table.
func (c *Cursor) First() (Entry, bool, error) { return c.get(mdbx.First) }

// Last positions on the last Entry of the table.
func (c *Cursor) Last() (Entry, bool, error) { return c.get(mdbx.Last) }

// Next advances to the next Entry in key order (next duplicate first, for
// DupSort tables).
func (c *Cursor) Next() (Entry, bool, error) { return c.get(mdbx.Next) }

// Prev moves to the previous Entry in key order.
func (c *Cursor) Prev() (Entry, bool, error) { return c.get(mdbx.Prev) }

// NextNoDup skips to the first Entry of the next distinct key, bypassing
// remaining duplicates of the current key. Used for skip-duplicate scans.
func (c *Cursor) NextNoDup() (Entry, bool, error) { return c.get(mdbx.NextNoDup) }

// Seek positions on the first Entry whose key is >= key.
func (c *Cursor) Seek(key []byte) (Entry, bool, error) {
	k, v, err := c.c.Get(key, nil, mdbx.SetRange)
	if err != nil {
		if mdbx.IsNotFound(err) {
			return Entry{}, false, nil
		}
		return Entry{}, false, isarerr.EngineError(err, 0)
	}
	return Entry{Key: k, Val: v}, true, nil
}

// SeekExact positions exactly on key, returning ok=false if absent.
func (c *Cursor) SeekExact(key []byte) (Entry, bool, error) {
	k, v, err := c.c.Get(key, nil, mdbx.Set)
	if err != nil {
		if mdbx.IsNotFound(err) {
			return Entry{}, false, nil
		}
		return Entry{}, false, isarerr.EngineError(err, 0)
	}
	return Entry{Key: k, Val: v}, true, nil
}

// SeekBothRange (DupSort tables only) positions on the first (key, val)
// pair with this key and val >= val.
func (c *Cursor) SeekBothRange(key, val []byte) (Entry, bool, error) {
	k, v, err := c.c.Get(key, val, mdbx.GetBothRange)
	if err != nil {
		if mdbx.IsNotFound(err) {
			return Entry{}, false, nil
		}
		return Entry{}, false, isarerr.EngineError(err, 0)
	}
	return Entry{Key: k, Val: v}, true, nil
}

// Put writes (key, val) at the cursor's position.
func (c *Cursor) Put(key, val []byte) error {
	if err := c.c.Put(key, val, 0); err != nil {
		return isarerr.EngineError(err, 0)
	}
	return nil
}

// DeleteCurrent removes the Entry the cursor currently points at (just
// that one duplicate, for a DupSort table).
func (c *Cursor) DeleteCurrent() error {
	if err := c.c.Del(mdbx.Current); err != nil {
		return isarerr.EngineError(err, 0)
	}
	return nil
}

// Close releases the underlying mdbx cursor handle.
func (c *Cursor) Close() { c.c.Close() }
