// Copyright 2021 The Erigon Authors
// (original work)
// Copyright 2026 The isardb Authors
// (modifications)
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

// Package kv is a thin adapter over github.com/erigontech/mdbx-go, the
// memory-mapped, copy-on-write B-tree engine the object layer is built on.
// It exposes only what the rest of the engine consumes: ordered byte-keyed
// tables, an optional duplicate-values-per-key mode, range cursors, and
// read/write transactions with MVCC semantics.
package kv

// TableFlags mirrors erigon-lib/kv's TableCfgItem.Flags: a small bitset of
// the per-table behaviors the underlying engine supports.
type TableFlags uint

const (
	Default TableFlags = 0x00
	// DupSort enables MDBX_DUPSORT: multiple values may be stored under one
	// key, stored and iterated in value order. Used by the index and links
	// tables.
	DupSort TableFlags = 0x04
)

// TableCfgItem configures one table at environment-open time.
type TableCfgItem struct {
	Flags TableFlags
}

// TableCfg names every table isardb opens inside one instance's mdbx
// environment and the flags it needs.
type TableCfg map[string]TableCfgItem

// Table names. One mdbx table per logical sub-store named in spec.md §6.
const (
	// TablePrimary holds object rows keyed by IdKey (collection id in the
	// top 16 bits, signed object id in the low 48).
	TablePrimary = "Primary"
	// TableIndex holds secondary index entries keyed by (2-byte index id +
	// per-property encoding), dup-sorted so non-unique indexes can store
	// multiple ids under one key.
	TableIndex = "Index"
	// TableLinks holds link edges keyed by (2-byte link id + source id),
	// dup-sorted so one source can link to many targets.
	TableLinks = "Links"
	// TableInfo holds the two singleton keys "version" and "schema".
	TableInfo = "Info"
)

// InstanceTablesCfg is the fixed table layout every isardb instance opens.
var InstanceTablesCfg = TableCfg{
	TablePrimary: {Flags: Default},
	TableIndex:   {Flags: DupSort},
	TableLinks:   {Flags: DupSort},
	TableInfo:    {Flags: Default},
}

// Info store keys.
const (
	InfoKeyVersion = "version"
	InfoKeySchema  = "schema"
)

// Version is the on-disk format version written to the info store's
// "version" key as 8 bytes little-endian.
const Version uint64 = 1
