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

package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/isardb/isar/object"
)

const basicSchemaJSON = `[
	{
		"name": "users",
		"properties": [
			{"name": "id", "type": "Long"},
			{"name": "name", "type": "String"}
		],
		"indexes": [
			{"name": "name_idx", "properties": [{"name": "name", "type": "Hash", "caseSensitive": false}], "unique": true}
		],
		"links": [
			{"name": "posts", "target": "posts"}
		]
	},
	{
		"name": "posts",
		"properties": [
			{"name": "id", "type": "Long"},
			{"name": "title", "type": "String"}
		]
	}
]`

func TestFromJSONToJSONRoundTrip(t *testing.T) {
	require := require.New(t)

	s, err := FromJSON([]byte(basicSchemaJSON))
	require.NoError(err)
	require.NoError(s.Verify())
	require.Len(s.Collections, 2)

	var users CollectionSchema
	var found bool
	for _, c := range s.Collections {
		if c.Name == "users" {
			users, found = c, true
		}
	}
	require.True(found)
	require.Len(users.Properties, 2)
	require.Equal(object.Long, users.Properties[0].Type)
	require.Equal(object.String, users.Properties[1].Type)
	require.Len(users.Indexes, 1)
	require.True(users.Indexes[0].Unique)
	require.Len(users.Links, 1)
	require.Equal("posts", users.Links[0].TargetName)

	out, err := s.ToJSON()
	require.NoError(err)

	reparsed, err := FromJSON(out)
	require.NoError(err)
	require.Equal(s.Sorted(), reparsed.Sorted())
}

func TestSchemaVerifyRejectsInvalidShapes(t *testing.T) {
	require := require.New(t)

	t.Run("collection name starting with underscore", func(t *testing.T) {
		s := Schema{Collections: []CollectionSchema{{Name: "_hidden", Properties: []PropertySchema{{Name: "id", Type: object.Long}}}}}
		require.Error(s.Verify())
	})

	t.Run("duplicate collection name", func(t *testing.T) {
		c := CollectionSchema{Name: "dup", Properties: []PropertySchema{{Name: "id", Type: object.Long}}}
		s := Schema{Collections: []CollectionSchema{c, c}}
		require.Error(s.Verify())
	})

	t.Run("link to unknown collection", func(t *testing.T) {
		s := Schema{Collections: []CollectionSchema{{
			Name:       "a",
			Properties: []PropertySchema{{Name: "id", Type: object.Long}},
			Links:      []LinkSchema{{Name: "bad", TargetName: "nope"}},
		}}}
		require.Error(s.Verify())
	})

	t.Run("object property targeting unknown collection", func(t *testing.T) {
		s := Schema{Collections: []CollectionSchema{{
			Name: "a",
			Properties: []PropertySchema{
				{Name: "id", Type: object.Long},
				{Name: "child", Type: object.Object, Target: "nope"},
			},
		}}}
		require.Error(s.Verify())
	})

	t.Run("valid minimal schema passes", func(t *testing.T) {
		s := Schema{Collections: []CollectionSchema{{Name: "a", Properties: []PropertySchema{{Name: "id", Type: object.Long}}}}}
		require.NoError(s.Verify())
	})
}

func TestIndexSchemaVerifyConstraintMatrix(t *testing.T) {
	require := require.New(t)
	nameProp := PropertySchema{Name: "name", Type: object.String}
	scoreProp := PropertySchema{Name: "score", Type: object.Double}
	tagsProp := PropertySchema{Name: "tags", Type: object.StringList}

	t.Run("float/double must use Value and be last", func(t *testing.T) {
		ok := IndexSchema{Name: "ok", Properties: []IndexedProperty{{Property: scoreProp, Type: Value}}}
		require.NoError(ok.Verify())

		bad := IndexSchema{Name: "bad", Properties: []IndexedProperty{{Property: scoreProp, Type: Hash}}}
		require.Error(bad.Verify())
	})

	t.Run("string Value must be last in a composite index", func(t *testing.T) {
		bad := IndexSchema{Name: "bad", Properties: []IndexedProperty{
			{Property: nameProp, Type: Value},
			{Property: scoreProp, Type: Value},
		}}
		require.Error(bad.Verify())
	})

	t.Run("list property must be sole indexed property", func(t *testing.T) {
		bad := IndexSchema{Name: "bad", Properties: []IndexedProperty{
			{Property: tagsProp, Type: Hash},
			{Property: nameProp, Type: Value},
		}}
		require.Error(bad.Verify())
	})

	t.Run("Words only valid for StringList", func(t *testing.T) {
		bad := IndexSchema{Name: "bad", Properties: []IndexedProperty{{Property: nameProp, Type: Words}}}
		require.Error(bad.Verify())

		ok := IndexSchema{Name: "ok", Properties: []IndexedProperty{{Property: tagsProp, Type: Words}}}
		require.NoError(ok.Verify())
	})

	t.Run("empty index is rejected", func(t *testing.T) {
		require.Error(IndexSchema{Name: "empty"}.Verify())
	})
}

func TestCollectionSchemaOffsetHelpers(t *testing.T) {
	require := require.New(t)

	c := CollectionSchema{
		Name: "c",
		Properties: []PropertySchema{
			{Name: "id", Type: object.Long, Offset: 2},
			{Name: "name", Type: object.String, Offset: 10},
			{Name: "age", Type: object.Int, Offset: 14},
			{Name: "tags", Type: object.StringList, Offset: 18},
		},
	}

	require.Equal([]int{10, 18}, c.FollowingDynamicOffsets(0))
	require.Equal([]int{18}, c.FollowingDynamicOffsetsForOffset(10))
	require.Empty(c.FollowingDynamicOffsetsForOffset(18))

	p, ok := c.Property("age")
	require.True(ok)
	require.Equal(14, p.Offset)

	_, ok = c.Property("missing")
	require.False(ok)
}

func TestIndexTypeStringRoundTrip(t *testing.T) {
	require := require.New(t)
	for it := Value; it <= Words; it++ {
		s := it.String()
		require.NotEqual("Unknown", s)
		got, ok := IndexTypeFromString(s)
		require.True(ok)
		require.Equal(it, got)
	}
	_, ok := IndexTypeFromString("bogus")
	require.False(ok)
}
