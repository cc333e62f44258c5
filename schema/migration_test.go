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

func findCollection(s Schema, name string) (CollectionSchema, bool) {
	for _, c := range s.Collections {
		if c.Name == name {
			return c, true
		}
	}
	return CollectionSchema{}, false
}

func TestMigrateFreshOpen(t *testing.T) {
	require := require.New(t)

	target := Schema{Collections: []CollectionSchema{{
		Name:       "users",
		Properties: []PropertySchema{{Name: "id", Type: object.Long}, {Name: "name", Type: object.String}},
	}}}

	plan, err := Migrate(Schema{}, target)
	require.NoError(err)
	require.Empty(plan.DroppedCollections)
	require.Empty(plan.ClearedIndexes)

	users, ok := findCollection(plan.Schema, "users")
	require.True(ok)
	require.NotZero(users.ID)
	require.Equal(2, users.Properties[0].Offset)
	require.Equal(10, users.Properties[1].Offset) // Long occupies 8 bytes after the 2-byte header
	require.Equal(14, users.StaticSize)            // header(2) + long(8) + string offset(4)
}

func TestMigrateAddProperty(t *testing.T) {
	require := require.New(t)

	old := Schema{Collections: []CollectionSchema{{
		ID:   1,
		Name: "users",
		Properties: []PropertySchema{
			{Name: "id", Type: object.Long, Offset: 2},
		},
		StaticSize: 10,
	}}}
	target := Schema{Collections: []CollectionSchema{{
		Name: "users",
		Properties: []PropertySchema{
			{Name: "id", Type: object.Long},
			{Name: "age", Type: object.Int},
		},
	}}}

	plan, err := Migrate(old, target)
	require.NoError(err)
	users, ok := findCollection(plan.Schema, "users")
	require.True(ok)
	require.Equal(uint16(1), users.ID) // surviving collection keeps its id
	require.Equal(2, users.Properties[0].Offset)
	require.Equal(10, users.Properties[1].Offset) // new property appended after the old static size
	require.False(users.Properties[1].Hidden)
}

func TestMigrateDropPropertyHidesItsOffset(t *testing.T) {
	require := require.New(t)

	old := Schema{Collections: []CollectionSchema{{
		ID:   1,
		Name: "users",
		Properties: []PropertySchema{
			{Name: "id", Type: object.Long, Offset: 2},
			{Name: "age", Type: object.Int, Offset: 10},
		},
		StaticSize: 14,
	}}}
	target := Schema{Collections: []CollectionSchema{{
		Name:       "users",
		Properties: []PropertySchema{{Name: "id", Type: object.Long}},
	}}}

	plan, err := Migrate(old, target)
	require.NoError(err)
	users, _ := findCollection(plan.Schema, "users")
	require.Len(users.Properties, 2)
	var age PropertySchema
	var found bool
	for _, p := range users.Properties {
		if p.Name == "age" {
			age, found = p, true
		}
	}
	require.True(found)
	require.True(age.Hidden)
	require.Equal(10, age.Offset) // offset preserved forever, per spec.md section on hidden properties
}

func TestMigrateTypeChangeFails(t *testing.T) {
	require := require.New(t)

	old := Schema{Collections: []CollectionSchema{{
		ID:         1,
		Name:       "users",
		Properties: []PropertySchema{{Name: "id", Type: object.Long, Offset: 2}},
		StaticSize: 10,
	}}}
	target := Schema{Collections: []CollectionSchema{{
		Name:       "users",
		Properties: []PropertySchema{{Name: "id", Type: object.Int}},
	}}}

	_, err := Migrate(old, target)
	require.Error(err)
}

func TestMigrateDroppedCollection(t *testing.T) {
	require := require.New(t)

	old := Schema{Collections: []CollectionSchema{
		{ID: 1, Name: "users", Properties: []PropertySchema{{Name: "id", Type: object.Long, Offset: 2}}, StaticSize: 10},
		{ID: 2, Name: "gone", Properties: []PropertySchema{{Name: "id", Type: object.Long, Offset: 2}}, StaticSize: 10},
	}}
	target := Schema{Collections: []CollectionSchema{{
		Name:       "users",
		Properties: []PropertySchema{{Name: "id", Type: object.Long}},
	}}}

	plan, err := Migrate(old, target)
	require.NoError(err)
	require.Len(plan.DroppedCollections, 1)
	require.Equal("gone", plan.DroppedCollections[0].Name)
	_, ok := findCollection(plan.Schema, "gone")
	require.False(ok)
}

func TestMigrateIndexAddClearRebuild(t *testing.T) {
	require := require.New(t)

	nameProp := PropertySchema{Name: "name", Type: object.String, Offset: 10}
	old := Schema{Collections: []CollectionSchema{{
		ID:   1,
		Name: "users",
		Properties: []PropertySchema{
			{Name: "id", Type: object.Long, Offset: 2},
			nameProp,
		},
		Indexes: []IndexSchema{{
			ID: 100, Name: "by_name", CollectionID: 1,
			Properties: []IndexedProperty{{Property: nameProp, Type: Value}},
		}},
		StaticSize: 14,
	}}}

	t.Run("unchanged index keeps its id and is not rebuilt", func(t *testing.T) {
		target := Schema{Collections: []CollectionSchema{{
			Name: "users",
			Properties: []PropertySchema{
				{Name: "id", Type: object.Long},
				{Name: "name", Type: object.String},
			},
			Indexes: []IndexSchema{{
				Name:       "by_name",
				Properties: []IndexedProperty{{Property: nameProp, Type: Value}},
			}},
		}}}

		plan, err := Migrate(old, target)
		require.NoError(err)
		users, _ := findCollection(plan.Schema, "users")
		require.Equal(uint16(100), users.Indexes[0].ID)
		require.Empty(plan.RebuiltIndexes[users.ID])
		require.Empty(plan.ClearedIndexes[users.ID])
	})

	t.Run("changed index shape is rebuilt with a fresh id", func(t *testing.T) {
		target := Schema{Collections: []CollectionSchema{{
			Name: "users",
			Properties: []PropertySchema{
				{Name: "id", Type: object.Long},
				{Name: "name", Type: object.String},
			},
			Indexes: []IndexSchema{{
				Name:       "by_name",
				Properties: []IndexedProperty{{Property: nameProp, Type: Hash}}, // Value -> Hash
			}},
		}}}

		plan, err := Migrate(old, target)
		require.NoError(err)
		users, _ := findCollection(plan.Schema, "users")
		require.NotEqual(uint16(100), users.Indexes[0].ID)
		require.Len(plan.RebuiltIndexes[users.ID], 1)
	})

	t.Run("removed index is cleared", func(t *testing.T) {
		target := Schema{Collections: []CollectionSchema{{
			Name: "users",
			Properties: []PropertySchema{
				{Name: "id", Type: object.Long},
				{Name: "name", Type: object.String},
			},
		}}}

		plan, err := Migrate(old, target)
		require.NoError(err)
		users, _ := findCollection(plan.Schema, "users")
		require.Len(plan.ClearedIndexes[users.ID], 1)
		require.Equal("by_name", plan.ClearedIndexes[users.ID][0].Name)
	})
}

func TestMigrateLinkIDsStableAcrossReopen(t *testing.T) {
	require := require.New(t)

	old := Schema{Collections: []CollectionSchema{
		{ID: 1, Name: "a", Properties: []PropertySchema{{Name: "id", Type: object.Long, Offset: 2}}, StaticSize: 10,
			Links: []LinkSchema{{ID: 50, BacklinkID: 51, Name: "bs", TargetName: "b", SourceID: 1, TargetID: 2}}},
		{ID: 2, Name: "b", Properties: []PropertySchema{{Name: "id", Type: object.Long, Offset: 2}}, StaticSize: 10},
	}}
	target := Schema{Collections: []CollectionSchema{
		{Name: "a", Properties: []PropertySchema{{Name: "id", Type: object.Long}}, Links: []LinkSchema{{Name: "bs", TargetName: "b"}}},
		{Name: "b", Properties: []PropertySchema{{Name: "id", Type: object.Long}}},
	}}

	plan, err := Migrate(old, target)
	require.NoError(err)
	a, _ := findCollection(plan.Schema, "a")
	require.Len(a.Links, 1)
	require.Equal(uint16(50), a.Links[0].ID)
	require.Equal(uint16(51), a.Links[0].BacklinkID)
}

func TestMarshalUnmarshalForInfoStoreRoundTrip(t *testing.T) {
	require := require.New(t)

	plan, err := Migrate(Schema{}, Schema{Collections: []CollectionSchema{{
		Name:       "users",
		Properties: []PropertySchema{{Name: "id", Type: object.Long}, {Name: "name", Type: object.String}},
		Indexes: []IndexSchema{{
			Name: "by_name",
			Properties: []IndexedProperty{{Property: PropertySchema{Name: "name", Type: object.String}, Type: Value}},
		}},
	}}})
	require.NoError(err)

	data, err := MarshalForInfoStore(plan.Schema)
	require.NoError(err)

	restored, err := UnmarshalFromInfoStore(data)
	require.NoError(err)
	require.Equal(plan.Schema, restored)
}
