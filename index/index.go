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

// Package index builds and maintains the secondary-index key/value
// entries of one collection's declared indexes (spec.md §4.D): composite
// and multi-entry key construction, unique+replace insertion, and ranged
// clearing/scanning for the query pipeline.
package index

import (
	"bytes"
	"strings"

	"github.com/isardb/isar/isarerr"
	"github.com/isardb/isar/keys"
	"github.com/isardb/isar/kv"
	"github.com/isardb/isar/object"
	"github.com/isardb/isar/schema"
)

// Index wraps one IndexSchema with the key-generation and maintenance
// operations spec.md §4.D requires.
type Index struct {
	Schema schema.IndexSchema
}

func New(s schema.IndexSchema) Index { return Index{Schema: s} }

// CreateKeys invokes cb once per key this object emits: a single composite
// key for an ordinary index, or one key per list element/word for a
// multi-entry index, deduplicated when the index is Words (spec.md §4.D;
// word segmentation dedup is required, other multi-entry dedup is left to
// the caller per spec.md §9 open question 2 — we do not dedup non-Words
// multi-entry keys, matching the spec's "left to the implementer" default).
func (ix Index) CreateKeys(obj object.IsarObject, followingOffsets [][]int, cb func(key []byte) error) error {
	if ix.Schema.IsMultiEntry() {
		return ix.createMultiEntryKeys(obj, followingOffsets[0], cb)
	}
	k := keys.NewIndexKey(ix.Schema.ID)
	if err := ix.appendComposite(k, obj, followingOffsets); err != nil {
		return err
	}
	return cb(k.Bytes())
}

func (ix Index) appendComposite(k *keys.IndexKey, obj object.IsarObject, followingOffsets [][]int) error {
	for i, ip := range ix.Schema.Properties {
		p := ip.Property.ToProperty()
		caseSensitive := ip.CaseSensitive
		switch ip.Type {
		case schema.Value:
			switch p.Type {
			case object.Byte:
				k.AddByte(obj.ReadByte(p.Offset), false)
			case object.Bool:
				k.AddByte(obj.ReadBool(p.Offset), false)
			case object.Int:
				v := obj.ReadInt(p.Offset)
				k.AddInt(v, v == object.NullInt)
			case object.Long:
				v := obj.ReadLong(p.Offset)
				k.AddLong(v, v == object.NullLong)
			case object.Float:
				v := obj.ReadFloat(p.Offset)
				k.AddFloat(v, false)
			case object.Double:
				v := obj.ReadDouble(p.Offset)
				k.AddDouble(v, false)
			case object.String:
				s := obj.ReadString(p.Offset, followingOffsets[i])
				k.AddStringValue(s, caseSensitive)
			}
		case schema.Hash:
			if p.Type == object.String {
				s := obj.ReadString(p.Offset, followingOffsets[i])
				k.AddStringHash(s, caseSensitive)
			}
		}
	}
	return nil
}

// createMultiEntryKeys emits one key per list element (Hash/HashElements)
// or per segmented word (Words), truncating the key back to the index-id
// prefix between elements.
func (ix Index) createMultiEntryKeys(obj object.IsarObject, following []int, cb func(key []byte) error) error {
	ip := ix.Schema.Properties[0]
	p := ip.Property.ToProperty()
	base := keys.NewIndexKey(ix.Schema.ID)
	prefixLen := base.Len()

	switch ip.Type {
	case schema.Hash:
		return ix.scalarListHashKeys(base, prefixLen, obj, p, following, cb)
	case schema.HashElements:
		list := obj.ReadStringList(p.Offset, following)
		for _, s := range list {
			base.Truncate(prefixLen)
			base.AddStringHash(s, ip.CaseSensitive)
			if err := cb(base.Bytes()); err != nil {
				return err
			}
		}
		return nil
	case schema.Words:
		list := obj.ReadStringList(p.Offset, following)
		seen := make(map[string]bool)
		for _, s := range list {
			if s == nil {
				continue
			}
			for _, w := range SegmentWords(*s) {
				canon := w
				if !ip.CaseSensitive {
					canon = lowerASCIIOrUnicode(w)
				}
				if seen[canon] {
					continue
				}
				seen[canon] = true
				base.Truncate(prefixLen)
				base.AddStringWord(w, ip.CaseSensitive)
				if err := cb(base.Bytes()); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return nil
}

func (ix Index) scalarListHashKeys(base *keys.IndexKey, prefixLen int, obj object.IsarObject, p object.Property, following []int, cb func(key []byte) error) error {
	switch p.Type {
	case object.ByteList, object.BoolList:
		for _, v := range obj.ReadByteList(p.Offset, following) {
			base.Truncate(prefixLen)
			base.AddHash(keys.HashBytes([]byte{v}))
			if err := cb(base.Bytes()); err != nil {
				return err
			}
		}
	case object.IntList:
		for _, v := range obj.ReadIntList(p.Offset, following) {
			base.Truncate(prefixLen)
			var b [4]byte
			b[0], b[1], b[2], b[3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
			base.AddHash(keys.HashBytes(b[:]))
			if err := cb(base.Bytes()); err != nil {
				return err
			}
		}
	case object.LongList:
		for _, v := range obj.ReadLongList(p.Offset, following) {
			base.Truncate(prefixLen)
			var b [8]byte
			for i := 0; i < 8; i++ {
				b[i] = byte(v >> (56 - 8*i))
			}
			base.AddHash(keys.HashBytes(b[:]))
			if err := cb(base.Bytes()); err != nil {
				return err
			}
		}
	case object.StringList:
		for _, s := range obj.ReadStringList(p.Offset, following) {
			base.Truncate(prefixLen)
			base.AddStringHash(s, false)
			if err := cb(base.Bytes()); err != nil {
				return err
			}
		}
	}
	return nil
}

func lowerASCIIOrUnicode(s string) string {
	return strings.ToLower(s)
}

// DeleteCallback reruns index deletion for a displaced object, threaded
// through by the unique+replace insert path (spec.md §9's mutual
// recursion point between collection and index).
type DeleteCallback func(txn *kv.Txn, displacedID int64) error

// CreateForObject inserts every key this object emits into the index
// table, following spec.md §4.D's unique/replace insert policy. id is the
// id-encoded value stored under each key.
func (ix Index) CreateForObject(txn *kv.Txn, obj object.IsarObject, followingOffsets [][]int, idValue []byte, onReplace DeleteCallback) error {
	return ix.CreateKeys(obj, followingOffsets, func(key []byte) error {
		return ix.insertKey(txn, key, idValue, onReplace)
	})
}

func (ix Index) insertKey(txn *kv.Txn, key, idValue []byte, onReplace DeleteCallback) error {
	table := ix.table()
	if !ix.Schema.Unique {
		return txn.Put(table, key, idValue)
	}
	existed, err := txn.PutNoOverride(table, key, idValue)
	if err != nil {
		return err
	}
	if !existed {
		return nil
	}
	if !ix.Schema.Replace {
		return errUniqueViolated()
	}
	existingVal, ok, err := txn.Get(table, key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	_, displacedID, err := keys.DecodeId(existingVal)
	if err != nil {
		return err
	}
	if onReplace != nil {
		if err := onReplace(txn, displacedID); err != nil {
			return err
		}
	}
	return txn.Put(table, key, idValue)
}

// DeleteForObject removes every key this object emits, matched against
// idValue so only this object's entry is removed from a non-unique
// (dup-sort) key.
func (ix Index) DeleteForObject(txn *kv.Txn, obj object.IsarObject, followingOffsets [][]int, idValue []byte) error {
	table := ix.table()
	return ix.CreateKeys(obj, followingOffsets, func(key []byte) error {
		return txn.DeleteExact(table, key, idValue)
	})
}

// Scan walks index entries whose key lies in [lower, upper], honoring
// ascending/descending order and an optional skip-duplicate-keys mode used
// when a query only needs distinct index keys (spec.md §4.D).
func (ix Index) Scan(txn *kv.Txn, lower, upper []byte, skipDuplicates, ascending bool, cb func(key, idValue []byte) (bool, error)) error {
	c, err := txn.Cursor(ix.table())
	if err != nil {
		return err
	}
	defer c.Close()

	var e kv.Entry
	var ok bool
	if ascending {
		e, ok, err = c.Seek(lower)
		if err != nil {
			return err
		}
	} else {
		// Seek lands on the first entry with key >= upper; step back once
		// if that key is past upper, move to upper's last duplicate if it
		// is upper itself, and fall back to Last when upper lies past
		// every entry in the table.
		e, ok, err = c.Seek(upper)
		if err != nil {
			return err
		}
		if ok && bytes.Compare(e.Key, upper) > 0 {
			e, ok, err = c.Prev()
		} else if ok {
			if e, ok, err = c.NextNoDup(); err == nil {
				if ok {
					e, ok, err = c.Prev()
				} else {
					e, ok, err = c.Last()
				}
			}
		} else {
			e, ok, err = c.Last()
		}
		if err != nil {
			return err
		}
	}

	for ok {
		if bytes.Compare(e.Key, lower) < 0 || bytes.Compare(e.Key, upper) > 0 {
			break
		}
		cont, err := cb(e.Key, e.Val)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
		if ascending {
			if skipDuplicates {
				e, ok, err = c.NextNoDup()
			} else {
				e, ok, err = c.Next()
			}
		} else {
			cur := append([]byte(nil), e.Key...)
			e, ok, err = c.Prev()
			for skipDuplicates && err == nil && ok && bytes.Equal(e.Key, cur) {
				e, ok, err = c.Prev()
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Clear deletes every entry whose key begins with this index's id prefix.
func (ix Index) Clear(txn *kv.Txn) error {
	lower, upper := idPrefixBounds(ix.Schema.ID)
	c, err := txn.Cursor(ix.table())
	if err != nil {
		return err
	}
	defer c.Close()

	e, ok, err := c.Seek(lower)
	if err != nil {
		return err
	}
	for ok && bytes.Compare(e.Key, upper) <= 0 {
		if err := c.DeleteCurrent(); err != nil {
			return err
		}
		e, ok, err = c.Next()
		if err != nil {
			return err
		}
	}
	return nil
}

func idPrefixBounds(indexID uint16) (lower, upper []byte) {
	lower = []byte{byte(indexID >> 8), byte(indexID)}
	upper = append(append([]byte{}, lower...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
	return lower, upper
}

func (ix Index) table() string { return kv.TableIndex }

func errUniqueViolated() error { return isarerr.ErrUniqueViolated }
