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

package instance

import (
	"bytes"

	"github.com/isardb/isar/index"
	"github.com/isardb/isar/isarerr"
	"github.com/isardb/isar/keys"
	"github.com/isardb/isar/kv"
	"github.com/isardb/isar/link"
	"github.com/isardb/isar/object"
	"github.com/isardb/isar/schema"
)

// Verify walks every row and link edge in the instance, recomputing index
// keys and backlink mirrors independently of the write path and reporting
// the first inconsistency found. It never mutates anything — a debug
// consistency check, not a repair tool (spec.md §9, "verify" tooling
// supplemented from original_source/src/verify.rs).
func (inst *Instance) Verify() error {
	return inst.env.View(func(kvTxn *kv.Txn) error { return verifyAll(kvTxn, inst) })
}

func verifyAll(kvTxn *kv.Txn, inst *Instance) error {
	for _, coll := range inst.schema.Collections {
		if err := verifyCollectionIndexes(kvTxn, coll); err != nil {
			return err
		}
	}
	for _, coll := range inst.schema.Collections {
		for _, l := range coll.Links {
			if err := verifyLinkMirrors(kvTxn, link.New(l)); err != nil {
				return err
			}
		}
	}
	return nil
}

func verifyCollectionIndexes(kvTxn *kv.Txn, coll schema.CollectionSchema) error {
	lower, upper := keys.IdRangeBounds(coll.ID)
	cur, err := kvTxn.Cursor(kv.TablePrimary)
	if err != nil {
		return err
	}
	defer cur.Close()

	idxCur, err := kvTxn.Cursor(kv.TableIndex)
	if err != nil {
		return err
	}
	defer idxCur.Close()

	e, ok, err := cur.Seek(lower[:])
	if err != nil {
		return err
	}
	for ok && keys.CompareBytes(e.Key, upper[:]) <= 0 {
		obj := object.FromBytes(e.Val)
		idValue := append([]byte{}, e.Key...)
		for _, ix := range coll.Indexes {
			i := index.New(ix)
			following := make([][]int, len(ix.Properties))
			for pi, ip := range ix.Properties {
				following[pi] = coll.FollowingDynamicOffsetsForOffset(ip.Property.Offset)
			}
			verifyErr := i.CreateKeys(obj, following, func(key []byte) error {
				found, ok, err := idxCur.SeekBothRange(key, idValue)
				if err != nil {
					return err
				}
				if !ok || !bytes.Equal(found.Key, key) || !bytes.Equal(found.Val, idValue) {
					return isarerr.DbCorrupted("index %q: missing entry for collection %q id in primary store", ix.Name, coll.Name)
				}
				return nil
			})
			if verifyErr != nil {
				return verifyErr
			}
		}
		e, ok, err = cur.Next()
		if err != nil {
			return err
		}
	}
	return nil
}

// verifyLinkMirrors confirms every forward edge has a matching backward
// edge, catching a crash between the two writes in link.Link.Link
// (spec.md §4.E). Only forward edges are walked: a backward edge with no
// matching forward edge is not reported.
func verifyLinkMirrors(kvTxn *kv.Txn, l link.Link) error {
	lower := []byte{byte(l.Schema.ID >> 8), byte(l.Schema.ID)}
	upper := append(append([]byte{}, lower...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)

	cur, err := kvTxn.Cursor(kv.TableLinks)
	if err != nil {
		return err
	}
	defer cur.Close()
	bwdCur, err := kvTxn.Cursor(kv.TableLinks)
	if err != nil {
		return err
	}
	defer bwdCur.Close()

	e, ok, err := cur.Seek(lower)
	if err != nil {
		return err
	}
	for ok && keys.CompareBytes(e.Key, upper) <= 0 {
		_, sourceID, err := keys.DecodeId(e.Key[2:])
		if err != nil {
			return err
		}
		_, targetID, err := keys.DecodeId(e.Val)
		if err != nil {
			return err
		}
		bwdKeyPrefix := []byte{byte(l.Schema.BacklinkID >> 8), byte(l.Schema.BacklinkID)}
		targetKey, err := keys.EncodeId(l.Schema.TargetID, targetID)
		if err != nil {
			return err
		}
		bwdKey := append(append([]byte{}, bwdKeyPrefix...), targetKey[:]...)
		sourceVal, err := keys.EncodeId(l.Schema.SourceID, sourceID)
		if err != nil {
			return err
		}
		found, ok, err := bwdCur.SeekBothRange(bwdKey, sourceVal[:])
		if err != nil {
			return err
		}
		if !ok || !bytes.Equal(found.Key, bwdKey) || !bytes.Equal(found.Val, sourceVal[:]) {
			return isarerr.DbCorrupted("link %q: forward edge %d->%d has no matching backward edge", l.Schema.Name, sourceID, targetID)
		}
		e, ok, err = cur.Next()
		if err != nil {
			return err
		}
	}
	return nil
}
