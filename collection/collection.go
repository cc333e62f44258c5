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

// Package collection implements the per-collection CRUD surface (spec.md
// §4.F): get/put/delete/clear, JSON import/export, and auto-increment, all
// cross-cutting index maintenance, link cascade, and the write-txn change
// set.
package collection

import (
	"math"
	"sync/atomic"

	"github.com/isardb/isar/index"
	"github.com/isardb/isar/isarerr"
	"github.com/isardb/isar/keys"
	"github.com/isardb/isar/kv"
	"github.com/isardb/isar/link"
	"github.com/isardb/isar/object"
	"github.com/isardb/isar/schema"
	"github.com/isardb/isar/txn"
)

// Collection is a read-only shared handle (spec.md §5): its schema and
// index/link lists never change after construction; the only interior
// mutability is the auto-increment counter, which a write txn updates.
type Collection struct {
	Schema      schema.CollectionSchema
	Indexes     []index.Index
	Links       []link.Link
	// InboundLinks mirrors every link elsewhere in the database that
	// targets this collection, so Delete can cascade cleanup through the
	// backlink without the caller needing to know about them.
	InboundLinks []link.Link

	autoIncrement atomic.Int64
}

// New builds a Collection handle from its schema and the links/indexes it
// owns or is targeted by. initialAutoIncrement is the value computed at
// open time (spec.md §4.C step 7): max(highest observed Long id, MinID).
func New(s schema.CollectionSchema, links []link.Link, inbound []link.Link, initialAutoIncrement int64) *Collection {
	c := &Collection{Schema: s, Links: links, InboundLinks: inbound}
	for _, ix := range s.Indexes {
		c.Indexes = append(c.Indexes, index.New(ix))
	}
	c.autoIncrement.Store(initialAutoIncrement)
	return c
}

func (c *Collection) idKey(id int64) ([8]byte, error) { return keys.EncodeId(c.Schema.ID, id) }

// followingOffsets returns the dynamic-property offset list for every
// indexed property of ix, in the shape index.Index.CreateKeys expects.
func (c *Collection) followingOffsets(ix schema.IndexSchema) [][]int {
	out := make([][]int, len(ix.Properties))
	for i, ip := range ix.Properties {
		out[i] = c.Schema.FollowingDynamicOffsetsForOffset(ip.Property.Offset)
	}
	return out
}

// objectFollowingOffsets returns the dynamic-offset list for every
// declared property, indexed the same way ToObjectProperties is, for
// general-purpose reads (JSON export, hashing).
func (c *Collection) objectFollowingOffsets() [][]int {
	out := make([][]int, len(c.Schema.Properties))
	for i := range c.Schema.Properties {
		out[i] = c.Schema.FollowingDynamicOffsets(i)
	}
	return out
}

// Get looks up one row by id. The returned object's bytes are bound to
// the txn's lifetime.
func (c *Collection) Get(t *txn.Txn, id int64) (object.IsarObject, bool, error) {
	key, err := c.idKey(id)
	if err != nil {
		return object.IsarObject{}, false, err
	}
	val, ok, err := t.KV.Get(tablePrimary, key[:])
	if err != nil || !ok {
		return object.IsarObject{}, false, err
	}
	return object.FromBytes(val), true, nil
}

const tablePrimary = "Primary"

// AutoIncrement returns the next id and advances the counter, failing
// AutoIncrementOverflow once it would exceed the collection's id type's
// range (spec.md §4.F "Auto-increment").
func (c *Collection) AutoIncrement() (int64, error) {
	next := c.autoIncrement.Add(1)
	if c.Schema.IDProperty().Type == object.Int && next > math.MaxInt32 {
		return 0, isarerr.ErrAutoIncrementOverflow
	}
	return next, nil
}

// updateAutoIncrement bumps the counter to at least seen, per spec.md
// §4.F's update_auto_increment.
func (c *Collection) updateAutoIncrement(seen int64) error {
	if c.Schema.IDProperty().Type == object.Int && seen > math.MaxInt32 {
		return isarerr.ErrAutoIncrementOverflow
	}
	for {
		cur := c.autoIncrement.Load()
		if seen <= cur {
			return nil
		}
		if c.autoIncrement.CompareAndSwap(cur, seen) {
			return nil
		}
	}
}

// Put validates, indexes, and stores one object, following spec.md §4.F's
// ordered steps. It returns the id assigned (explicit or generated).
func (c *Collection) Put(t *txn.Txn, obj object.IsarObject) (int64, error) {
	idProp := c.Schema.IDProperty()

	id, _, err := c.readOrGenerateID(obj, idProp)
	if err != nil {
		return 0, err
	}

	if err := c.deleteInternal(t, id, false); err != nil {
		return 0, err
	}

	if idProp.Type == object.Int || idProp.Type == object.Long {
		if err := c.updateAutoIncrement(id); err != nil {
			return 0, err
		}
	}

	if obj.StaticSize() != c.Schema.StaticSize {
		return 0, isarerr.InvalidObject("static size %d does not match collection's %d", obj.StaticSize(), c.Schema.StaticSize)
	}

	idValue, err := c.idKey(id)
	if err != nil {
		return 0, err
	}
	onReplace := func(kvTxn *kv.Txn, displacedID int64) error {
		return c.deleteInternal(t, displacedID, true)
	}
	for _, ix := range c.Indexes {
		offsets := c.followingOffsets(ix.Schema)
		if err := ix.CreateForObject(t.KV, obj, offsets, idValue[:], onReplace); err != nil {
			return 0, err
		}
	}

	if err := t.KV.Put(tablePrimary, idValue[:], obj.Bytes); err != nil {
		return 0, err
	}

	t.ChangeSet().Record(txn.Change{CollectionID: c.Schema.ID, ID: id, Object: obj})
	return id, nil
}

func (c *Collection) readOrGenerateID(obj object.IsarObject, idProp schema.PropertySchema) (int64, bool, error) {
	switch idProp.Type {
	case object.Long:
		v := obj.ReadLong(idProp.Offset)
		if v != object.NullLong {
			return v, true, nil
		}
		id, err := c.AutoIncrement()
		if err != nil {
			return 0, false, err
		}
		obj.SetIDInPlace(idProp.Offset, object.Long, id)
		return id, false, nil
	case object.Int:
		v := obj.ReadInt(idProp.Offset)
		if v != object.NullInt {
			return int64(v), true, nil
		}
		return 0, false, isarerr.ErrAutoIncrementCannotGen
	default: // String id
		return 0, false, isarerr.ErrAutoIncrementCannotGen
	}
}

// deleteInternal removes an existing row's index/link entries and primary
// row, without registering a change (the caller — Put's displace path, or
// the public Delete below — decides whether to record one). Missing rows
// are a silent no-op.
func (c *Collection) deleteInternal(t *txn.Txn, id int64, cascadeLinks bool) error {
	existing, found, err := c.Get(t, id)
	if err != nil || !found {
		return err
	}
	idValue, err := c.idKey(id)
	if err != nil {
		return err
	}
	for _, ix := range c.Indexes {
		offsets := c.followingOffsets(ix.Schema)
		if err := ix.DeleteForObject(t.KV, existing, offsets, idValue[:]); err != nil {
			return err
		}
	}
	if cascadeLinks {
		if err := c.cascadeUnlink(t, id); err != nil {
			return err
		}
	}
	return t.KV.Delete(tablePrimary, idValue[:])
}

func (c *Collection) cascadeUnlink(t *txn.Txn, id int64) error {
	for _, l := range c.Links {
		if err := l.UnlinkAll(t.KV, id); err != nil {
			return err
		}
	}
	for _, l := range c.InboundLinks {
		if err := l.UnlinkAllByTarget(t.KV, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the row at id plus its index entries and link edges,
// reporting whether a row was present (spec.md §4.F).
func (c *Collection) Delete(t *txn.Txn, id int64) (bool, error) {
	_, found, err := c.Get(t, id)
	if err != nil || !found {
		return false, err
	}
	if err := c.deleteInternal(t, id, true); err != nil {
		return false, err
	}
	t.ChangeSet().Record(txn.Change{CollectionID: c.Schema.ID, ID: id, Deleted: true})
	return true, nil
}

// Clear deletes every row in the collection, cascading indexes and
// links, and returns the count removed.
func (c *Collection) Clear(t *txn.Txn) (int, error) {
	lower, upper := keys.IdRangeBounds(c.Schema.ID)
	cur, err := t.KV.Cursor(tablePrimary)
	if err != nil {
		return 0, err
	}
	defer cur.Close()

	var ids []int64
	e, ok, err := cur.Seek(lower[:])
	if err != nil {
		return 0, err
	}
	for ok {
		if keys.CompareBytes(e.Key, upper[:]) > 0 {
			break
		}
		_, id, err := keys.DecodeId(e.Key)
		if err != nil {
			return 0, err
		}
		ids = append(ids, id)
		e, ok, err = cur.Next()
		if err != nil {
			return 0, err
		}
	}

	count := 0
	for _, id := range ids {
		deleted, err := c.Delete(t, id)
		if err != nil {
			return count, err
		}
		if deleted {
			count++
		}
	}
	return count, nil
}
