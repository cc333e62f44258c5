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
	"github.com/isardb/isar/index"
	"github.com/isardb/isar/isarerr"
	"github.com/isardb/isar/keys"
	"github.com/isardb/isar/kv"
	"github.com/isardb/isar/link"
	"github.com/isardb/isar/object"
	"github.com/isardb/isar/schema"
)

type whereKind int

const (
	whereIDRange whereKind = iota
	whereIndexRange
	whereLink
)

// WhereClause selects a candidate stream for the query pipeline: an id
// range, an index range, or a link traversal from one fixed source id
// (spec.md §4.G).
type WhereClause struct {
	kind whereKind

	lowerID, upperID int64

	idx            index.Index
	lowerKey       []byte
	upperKey       []byte
	skipDuplicates bool

	lnk      link.Link
	sourceID int64

	ascending bool
}

// IDRange builds a where-clause over the id range [lower, upper] inclusive.
func IDRange(lower, upper int64, ascending bool) WhereClause {
	return WhereClause{kind: whereIDRange, lowerID: lower, upperID: upper, ascending: ascending}
}

// IndexRange builds a where-clause over one index's key range.
func IndexRange(idx index.Index, lowerKey, upperKey []byte, skipDuplicates, ascending bool) WhereClause {
	return WhereClause{kind: whereIndexRange, idx: idx, lowerKey: lowerKey, upperKey: upperKey, skipDuplicates: skipDuplicates, ascending: ascending}
}

// LinkTraversal builds a where-clause over the objects linked from
// sourceID.
func LinkTraversal(lnk link.Link, sourceID int64) WhereClause {
	return WhereClause{kind: whereLink, lnk: lnk, sourceID: sourceID}
}

// iterate walks w's candidates in order, calling cb(id, primary object)
// for each. cb's returned bool is "keep going"; an error or false stops
// iteration. collectionID and table name the primary store to resolve ids
// found via an index range.
func (w WhereClause) iterate(kvTxn *kv.Txn, collectionID uint16, primaryTable string, cb func(id int64, obj object.IsarObject) (bool, error)) error {
	switch w.kind {
	case whereIDRange:
		return w.iterateIDRange(kvTxn, collectionID, primaryTable, cb)
	case whereIndexRange:
		return w.iterateIndexRange(kvTxn, collectionID, primaryTable, cb)
	case whereLink:
		return w.lnk.Iter(kvTxn, w.sourceID, cb)
	default:
		return nil
	}
}

func (w WhereClause) iterateIDRange(kvTxn *kv.Txn, collectionID uint16, primaryTable string, cb func(id int64, obj object.IsarObject) (bool, error)) error {
	lowerKey, err := keys.EncodeId(collectionID, w.lowerID)
	if err != nil {
		return err
	}
	upperKey, err := keys.EncodeId(collectionID, w.upperID)
	if err != nil {
		return err
	}
	cur, err := kvTxn.Cursor(primaryTable)
	if err != nil {
		return err
	}
	defer cur.Close()

	var e kv.Entry
	var ok bool
	if w.ascending {
		e, ok, err = cur.Seek(lowerKey[:])
	} else {
		e, ok, err = cur.Seek(upperKey[:])
		if err == nil {
			if ok && keys.CompareBytes(e.Key, upperKey[:]) > 0 {
				e, ok, err = cur.Prev()
			} else if !ok {
				e, ok, err = cur.Last()
			}
		}
	}
	if err != nil {
		return err
	}

	for ok {
		if keys.CompareBytes(e.Key, lowerKey[:]) < 0 || keys.CompareBytes(e.Key, upperKey[:]) > 0 {
			break
		}
		_, id, err := keys.DecodeId(e.Key)
		if err != nil {
			return err
		}
		cont, err := cb(id, object.FromBytes(e.Val))
		if err != nil || !cont {
			return err
		}
		if w.ascending {
			e, ok, err = cur.Next()
		} else {
			e, ok, err = cur.Prev()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w WhereClause) iterateIndexRange(kvTxn *kv.Txn, collectionID uint16, primaryTable string, cb func(id int64, obj object.IsarObject) (bool, error)) error {
	return w.idx.Scan(kvTxn, w.lowerKey, w.upperKey, w.skipDuplicates, w.ascending, func(_ []byte, idValue []byte) (bool, error) {
		gotColl, id, err := keys.DecodeId(idValue)
		if err != nil {
			return false, err
		}
		if gotColl != collectionID {
			return false, isarerr.DbCorrupted("index entry points at collection %d, expected %d", gotColl, collectionID)
		}
		val, ok, err := kvTxn.Get(primaryTable, idValue)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, isarerr.DbCorrupted("index entry for id %d missing from primary store", id)
		}
		return cb(id, object.FromBytes(val))
	})
}

// matchesChange reports whether obj (already known to belong to id) would
// be a candidate under this where-clause, without touching the engine —
// used by the query watcher path, which only has the committed object in
// hand, not a live txn (spec.md §4.I). coll is the query's collection
// schema, needed to resolve an indexed property's dynamic-offset list.
func (w WhereClause) matchesChange(id int64, obj object.IsarObject, coll schema.CollectionSchema) bool {
	switch w.kind {
	case whereIDRange:
		return id >= w.lowerID && id <= w.upperID
	case whereIndexRange:
		following := make([][]int, len(w.idx.Schema.Properties))
		for i, ip := range w.idx.Schema.Properties {
			following[i] = coll.FollowingDynamicOffsetsForOffset(ip.Property.Offset)
		}
		matched := false
		_ = w.idx.CreateKeys(obj, following, func(key []byte) error {
			if keys.CompareBytes(key, w.lowerKey) >= 0 && keys.CompareBytes(key, w.upperKey) <= 0 {
				matched = true
			}
			return nil
		})
		return matched
	default:
		return false
	}
}

// overlaps conservatively reports whether w and other could ever emit the
// same id (spec.md §4.G): id ranges overlap if their intervals intersect;
// ranges over the same single-entry index overlap if their key ranges
// intersect. Every other pair (different kinds, different indexes, a
// multi-entry index, link clauses) is reported as overlapping, since both
// clauses can reach the same object; a false positive only costs an
// unneeded entry in the seen-ids set.
func (w WhereClause) overlaps(other WhereClause) bool {
	if w.kind != other.kind {
		return true
	}
	switch w.kind {
	case whereIDRange:
		return w.lowerID <= other.upperID && other.lowerID <= w.upperID
	case whereIndexRange:
		if w.idx.Schema.ID != other.idx.Schema.ID || w.idx.Schema.IsMultiEntry() {
			return true
		}
		return keys.CompareBytes(w.lowerKey, other.upperKey) <= 0 && keys.CompareBytes(other.lowerKey, w.upperKey) <= 0
	default:
		return true
	}
}
