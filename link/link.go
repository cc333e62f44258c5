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

// Package link implements the many-to-many link subsystem (spec.md §4.E):
// dual forward/backward edge storage, cascade-safe link/unlink, and
// target-row traversal for the query filter's link predicate.
package link

import (
	"bytes"

	"github.com/isardb/isar/isarerr"
	"github.com/isardb/isar/keys"
	"github.com/isardb/isar/kv"
	"github.com/isardb/isar/object"
	"github.com/isardb/isar/schema"
)

// nextDupSameKey advances to the next (key, val) duplicate under key,
// reporting ok=false once the cursor moves past key's last duplicate.
func nextDupSameKey(c *kv.Cursor, key []byte) (kv.Entry, bool, error) {
	e, ok, err := c.Next()
	if err != nil || !ok || !bytes.Equal(e.Key, key) {
		return kv.Entry{}, false, err
	}
	return e, true, nil
}

// Link wraps one LinkSchema with the edge-maintenance operations spec.md
// §4.E requires. Forward uses the link's own id; Backward uses its
// backlink id and has source/target swapped.
type Link struct {
	Schema schema.LinkSchema
}

func New(s schema.LinkSchema) Link { return Link{Schema: s} }

func edgeKey(linkID uint16, collectionID uint16, objID int64) ([]byte, error) {
	k, err := keys.EncodeId(collectionID, objID)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 2+len(k))
	out[0] = byte(linkID >> 8)
	out[1] = byte(linkID)
	copy(out[2:], k[:])
	return out, nil
}

// Link emits both the forward edge (link id, source) -> target and the
// backward edge (backlink id, target) -> source.
func (l Link) Link(txn *kv.Txn, sourceID, targetID int64) error {
	fwdKey, err := edgeKey(l.Schema.ID, l.Schema.SourceID, sourceID)
	if err != nil {
		return err
	}
	fwdVal, err := keys.EncodeId(l.Schema.TargetID, targetID)
	if err != nil {
		return err
	}
	if err := txn.Put(kv.TableLinks, fwdKey, fwdVal[:]); err != nil {
		return err
	}

	bwdKey, err := edgeKey(l.Schema.BacklinkID, l.Schema.TargetID, targetID)
	if err != nil {
		return err
	}
	bwdVal, err := keys.EncodeId(l.Schema.SourceID, sourceID)
	if err != nil {
		return err
	}
	return txn.Put(kv.TableLinks, bwdKey, bwdVal[:])
}

// Unlink removes exactly the (sourceID, targetID) forward edge and its
// matching backward edge.
func (l Link) Unlink(txn *kv.Txn, sourceID, targetID int64) error {
	fwdKey, err := edgeKey(l.Schema.ID, l.Schema.SourceID, sourceID)
	if err != nil {
		return err
	}
	fwdVal, err := keys.EncodeId(l.Schema.TargetID, targetID)
	if err != nil {
		return err
	}
	if err := txn.DeleteExact(kv.TableLinks, fwdKey, fwdVal[:]); err != nil {
		return err
	}

	bwdKey, err := edgeKey(l.Schema.BacklinkID, l.Schema.TargetID, targetID)
	if err != nil {
		return err
	}
	bwdVal, err := keys.EncodeId(l.Schema.SourceID, sourceID)
	if err != nil {
		return err
	}
	return txn.DeleteExact(kv.TableLinks, bwdKey, bwdVal[:])
}

// UnlinkAll removes every forward edge with the given source, and for
// each removed edge removes its matching backward edge (spec.md §4.E).
func (l Link) UnlinkAll(txn *kv.Txn, sourceID int64) error {
	fwdKey, err := edgeKey(l.Schema.ID, l.Schema.SourceID, sourceID)
	if err != nil {
		return err
	}
	var targets []int64
	if err := l.iterForwardValues(txn, fwdKey, func(targetID int64) { targets = append(targets, targetID) }); err != nil {
		return err
	}
	for _, targetID := range targets {
		bwdKey, err := edgeKey(l.Schema.BacklinkID, l.Schema.TargetID, targetID)
		if err != nil {
			return err
		}
		bwdVal, err := keys.EncodeId(l.Schema.SourceID, sourceID)
		if err != nil {
			return err
		}
		if err := txn.DeleteExact(kv.TableLinks, bwdKey, bwdVal[:]); err != nil {
			return err
		}
	}
	return txn.Delete(kv.TableLinks, fwdKey)
}

// UnlinkAllByTarget removes every backward edge with the given target, and
// for each removed edge removes its matching forward edge. Used to cascade
// an inbound link's edges when the target-side row is deleted, since that
// collection only holds the link's Backward perspective (spec.md §4.E).
func (l Link) UnlinkAllByTarget(txn *kv.Txn, targetID int64) error {
	bwdKey, err := edgeKey(l.Schema.BacklinkID, l.Schema.TargetID, targetID)
	if err != nil {
		return err
	}
	var sources []int64
	if err := l.iterForwardValues(txn, bwdKey, func(sourceID int64) { sources = append(sources, sourceID) }); err != nil {
		return err
	}
	for _, sourceID := range sources {
		fwdKey, err := edgeKey(l.Schema.ID, l.Schema.SourceID, sourceID)
		if err != nil {
			return err
		}
		fwdVal, err := keys.EncodeId(l.Schema.TargetID, targetID)
		if err != nil {
			return err
		}
		if err := txn.DeleteExact(kv.TableLinks, fwdKey, fwdVal[:]); err != nil {
			return err
		}
	}
	return txn.Delete(kv.TableLinks, bwdKey)
}

// UpdateAll replaces the full set of targets linked from sourceID with
// exactly addTargets ∪ (current \ removeTargets): unlink removeTargets,
// link addTargets, matching the public link builder's update_all
// operation (spec.md §6).
func (l Link) UpdateAll(txn *kv.Txn, sourceID int64, addTargets, removeTargets []int64) error {
	for _, t := range removeTargets {
		if err := l.Unlink(txn, sourceID, t); err != nil {
			return err
		}
	}
	for _, t := range addTargets {
		if err := l.Link(txn, sourceID, t); err != nil {
			return err
		}
	}
	return nil
}

func (l Link) iterForwardValues(txn *kv.Txn, fwdKey []byte, cb func(targetID int64)) error {
	c, err := txn.Cursor(kv.TableLinks)
	if err != nil {
		return err
	}
	defer c.Close()

	e, ok, err := c.SeekExact(fwdKey)
	if err != nil {
		return err
	}
	for ok {
		_, targetID, err := keys.DecodeId(e.Val)
		if err != nil {
			return err
		}
		cb(targetID)
		e, ok, err = nextDupSameKey(c, fwdKey)
		if err != nil {
			return err
		}
	}
	return nil
}

// Iter enumerates every target object reachable from sourceID through
// this link, in the order the edge store yields them, fetching each
// target row from the target collection's primary store. A target id
// with no matching primary row is a corruption condition (spec.md §4.E).
func (l Link) Iter(txn *kv.Txn, sourceID int64, cb func(targetID int64, obj object.IsarObject) (bool, error)) error {
	fwdKey, err := edgeKey(l.Schema.ID, l.Schema.SourceID, sourceID)
	if err != nil {
		return err
	}
	c, err := txn.Cursor(kv.TableLinks)
	if err != nil {
		return err
	}
	defer c.Close()

	e, ok, err := c.SeekExact(fwdKey)
	if err != nil {
		return err
	}
	for ok {
		_, targetID, err := keys.DecodeId(e.Val)
		if err != nil {
			return err
		}
		primaryKey, err := keys.EncodeId(l.Schema.TargetID, targetID)
		if err != nil {
			return err
		}
		val, found, err := txn.Get(kv.TablePrimary, primaryKey[:])
		if err != nil {
			return err
		}
		if !found {
			return isarerr.DbCorrupted("link %d: target id %d missing from primary store", l.Schema.ID, targetID)
		}
		cont, err := cb(targetID, object.FromBytes(val))
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
		e, ok, err = nextDupSameKey(c, fwdKey)
		if err != nil {
			return err
		}
	}
	return nil
}
