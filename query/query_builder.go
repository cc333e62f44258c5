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
	"github.com/isardb/isar/collection"
	"github.com/isardb/isar/index"
	"github.com/isardb/isar/isarerr"
	"github.com/isardb/isar/keys"
	"github.com/isardb/isar/object"
)

// Builder assembles a Query against one collection, resolving property,
// index, and link names up front so a malformed query fails at build time
// rather than mid-iteration.
type Builder struct {
	coll   *collection.Collection
	q      Query
	err    error
}

func NewBuilder(coll *collection.Collection) *Builder {
	return &Builder{coll: coll, q: Query{Collection: coll, Limit: -1}}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// WhereIDBetween adds an id-range where-clause.
func (b *Builder) WhereIDBetween(lower, upper int64, ascending bool) *Builder {
	b.q.WhereClauses = append(b.q.WhereClauses, IDRange(lower, upper, ascending))
	return b
}

// WhereIndexBetween adds an index-range where-clause over the named
// index's key bounds.
func (b *Builder) WhereIndexBetween(indexName string, lowerKey, upperKey *keys.IndexKey, skipDuplicates, ascending bool) *Builder {
	ixSchema, ok := b.coll.Schema.Index(indexName)
	if !ok {
		return b.fail(isarerr.IllegalArg("unknown index %q on collection %q", indexName, b.coll.Schema.Name))
	}
	ix := index.New(ixSchema)
	b.q.WhereClauses = append(b.q.WhereClauses, IndexRange(ix, lowerKey.Bytes(), upperKey.Bytes(), skipDuplicates, ascending))
	return b
}

// WhereLink adds a link-traversal where-clause from sourceID through the
// named link.
func (b *Builder) WhereLink(linkName string, sourceID int64) *Builder {
	linkSchema, ok := b.coll.Schema.Link(linkName)
	if !ok {
		return b.fail(isarerr.IllegalArg("unknown link %q on collection %q", linkName, b.coll.Schema.Name))
	}
	for _, l := range b.coll.Links {
		if l.Schema.ID == linkSchema.ID {
			b.q.WhereClauses = append(b.q.WhereClauses, LinkTraversal(l, sourceID))
			return b
		}
	}
	return b.fail(isarerr.IllegalArg("link %q not wired on collection %q", linkName, b.coll.Schema.Name))
}

// Where adds a prebuilt where-clause directly, for callers (like a CLI or
// code-generator) that already resolved index/link handles.
func (b *Builder) Where(wc WhereClause) *Builder {
	b.q.WhereClauses = append(b.q.WhereClauses, wc)
	return b
}

// SetFilter installs the query's filter tree.
func (b *Builder) SetFilter(f Filter) *Builder {
	b.q.Filter = f
	return b
}

// SortBy adds a sort key over a declared, scalar property (spec.md §4.G:
// sort on a non-scalar property is rejected).
func (b *Builder) SortBy(propName string, order SortOrder) *Builder {
	p, ok := b.coll.Schema.Property(propName)
	if !ok {
		return b.fail(isarerr.IllegalArg("unknown property %q on collection %q", propName, b.coll.Schema.Name))
	}
	if p.Type.IsList() || p.Type == object.Object {
		return b.fail(isarerr.IllegalArg("cannot sort on non-scalar property %q", propName))
	}
	following := b.coll.Schema.FollowingDynamicOffsetsForOffset(p.Offset)
	b.q.SortKeys = append(b.q.SortKeys, SortKey{Property: p.ToProperty(), Following: following, Order: order})
	return b
}

// Distinct adds a distinct key.
func (b *Builder) Distinct(propName string, caseSensitive bool) *Builder {
	p, ok := b.coll.Schema.Property(propName)
	if !ok {
		return b.fail(isarerr.IllegalArg("unknown property %q on collection %q", propName, b.coll.Schema.Name))
	}
	following := b.coll.Schema.FollowingDynamicOffsetsForOffset(p.Offset)
	b.q.DistinctKeys = append(b.q.DistinctKeys, DistinctKey{Property: p.ToProperty(), Following: following, CaseSensitive: caseSensitive})
	return b
}

func (b *Builder) Offset(n int) *Builder {
	b.q.Offset = n
	return b
}

func (b *Builder) Limit(n int) *Builder {
	b.q.Limit = n
	return b
}

func (b *Builder) Build() (*Query, error) {
	if b.err != nil {
		return nil, b.err
	}
	q := b.q
	return &q, nil
}
