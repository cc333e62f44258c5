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

package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/isardb/isar/object"
	"github.com/isardb/isar/schema"
)

func buildNameObject(name *string) object.IsarObject {
	b := object.NewBuilder(6)
	b.WriteString(2, name)
	return b.Finish()
}

func nameProperty(offset int) schema.PropertySchema {
	return schema.PropertySchema{Name: "name", Type: object.String, Offset: offset}
}

func TestCreateKeysValueIndex(t *testing.T) {
	require := require.New(t)

	ix := New(schema.IndexSchema{
		ID:   1,
		Name: "by_name",
		Properties: []schema.IndexedProperty{{
			Property: nameProperty(2), Type: schema.Value,
		}},
	})

	var gotKeys [][]byte
	collect := func(key []byte) error {
		gotKeys = append(gotKeys, append([]byte{}, key...))
		return nil
	}

	require.NoError(ix.CreateKeys(buildNameObject(strPtr("alice")), [][]int{nil}, collect))
	require.Len(gotKeys, 1)

	// Same value case-insensitive by default -> identical key.
	gotKeys = nil
	require.NoError(ix.CreateKeys(buildNameObject(strPtr("Alice")), [][]int{nil}, collect))
	aliceUpper := gotKeys[0]
	gotKeys = nil
	require.NoError(ix.CreateKeys(buildNameObject(strPtr("alice")), [][]int{nil}, collect))
	require.Equal(aliceUpper, gotKeys[0])
}

func strPtr(s string) *string { return &s }

func TestCreateKeysHashIndexNullSafe(t *testing.T) {
	require := require.New(t)

	ix := New(schema.IndexSchema{
		ID:   2,
		Name: "by_name_hash",
		Properties: []schema.IndexedProperty{{
			Property: nameProperty(2), Type: schema.Hash,
		}},
	})

	var key []byte
	err := ix.CreateKeys(buildNameObject(nil), [][]int{nil}, func(k []byte) error {
		key = append([]byte{}, k...)
		return nil
	})
	require.NoError(err)
	require.Len(key, 10) // 2-byte index id + 8-byte hash
}

func buildStringListObject(list []*string) object.IsarObject {
	b := object.NewBuilder(6)
	b.WriteStringList(2, list)
	return b.Finish()
}

func TestCreateKeysMultiEntryHashElements(t *testing.T) {
	require := require.New(t)

	ix := New(schema.IndexSchema{
		ID:   3,
		Name: "by_tags",
		Properties: []schema.IndexedProperty{{
			Property: schema.PropertySchema{Name: "tags", Type: object.StringList, Offset: 2},
			Type:     schema.HashElements,
		}},
	})

	obj := buildStringListObject([]*string{strPtr("go"), strPtr("db"), nil})
	var keys [][]byte
	require.NoError(ix.CreateKeys(obj, [][]int{nil}, func(k []byte) error {
		keys = append(keys, append([]byte{}, k...))
		return nil
	}))
	require.Len(keys, 3) // one key per element, including the null element
	require.NotEqual(keys[0], keys[1])
}

func TestCreateKeysMultiEntryWordsDedups(t *testing.T) {
	require := require.New(t)

	ix := New(schema.IndexSchema{
		ID:   4,
		Name: "by_words",
		Properties: []schema.IndexedProperty{{
			Property: schema.PropertySchema{Name: "body", Type: object.StringList, Offset: 2},
			Type:     schema.Words,
		}},
	})

	obj := buildStringListObject([]*string{strPtr("go go database"), strPtr("Go")})
	var keys [][]byte
	require.NoError(ix.CreateKeys(obj, [][]int{nil}, func(k []byte) error {
		keys = append(keys, append([]byte{}, k...))
		return nil
	}))
	// "go"/"Go" repeated three times collapse to one key (case-insensitive
	// dedup), plus one key for "database".
	require.Len(keys, 2)
}

func TestIsMultiEntry(t *testing.T) {
	require := require.New(t)

	single := schema.IndexSchema{Properties: []schema.IndexedProperty{{
		Property: nameProperty(2), Type: schema.Value,
	}}}
	require.False(single.IsMultiEntry())

	list := schema.IndexSchema{Properties: []schema.IndexedProperty{{
		Property: schema.PropertySchema{Name: "tags", Type: object.StringList, Offset: 2},
		Type:     schema.Hash,
	}}}
	require.True(list.IsMultiEntry())
}

func TestSegmentWords(t *testing.T) {
	require := require.New(t)

	words := SegmentWords("Hello, world! 123")
	require.Equal([]string{"Hello", "world", "123"}, words)

	require.Empty(SegmentWords("   ...  "))
}
