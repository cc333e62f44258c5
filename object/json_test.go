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

package object

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToJSON(t *testing.T) {
	require := require.New(t)

	props := []Property{
		{Name: "active", Type: Bool, Offset: 2},
		{Name: "flags", Type: Byte, Offset: 3},
		{Name: "count", Type: Int, Offset: 4},
		{Name: "name", Type: String, Offset: 8},
	}
	following := [][]int{nil, nil, {8}, nil}

	t.Run("byteAsBool and primitiveNull both off", func(t *testing.T) {
		b := NewBuilder(12)
		b.WriteBool(2, TrueBool)
		b.WriteByte(3, 5)
		b.WriteInt(4, NullInt)
		b.WriteString(8, nil)
		o := b.Finish()

		m, err := o.ToJSON(props, following, false, false)
		require.NoError(err)
		require.Equal(true, m["active"])
		require.Equal(uint8(5), m["flags"])
		require.Equal(NullInt, m["count"]) // primitiveNull off: the stored sentinel surfaces, not JSON null
		require.Nil(m["name"])
	})

	t.Run("byteAsBool renders byte as boolean", func(t *testing.T) {
		b := NewBuilder(12)
		b.WriteByte(3, 1)
		b.WriteString(8, nil)
		o := b.Finish()
		m, err := o.ToJSON(props, following, true, false)
		require.NoError(err)
		require.Equal(true, m["flags"])
	})

	t.Run("primitiveNull surfaces JSON null for null scalars", func(t *testing.T) {
		b := NewBuilder(12)
		b.WriteBool(2, NullBool)
		b.WriteInt(4, NullInt)
		b.WriteString(8, nil)
		o := b.Finish()
		m, err := o.ToJSON(props, following, false, true)
		require.NoError(err)
		require.Nil(m["active"])
		require.Nil(m["count"])
	})

	t.Run("hidden properties are omitted", func(t *testing.T) {
		hiddenProps := []Property{
			{Name: "visible", Type: Int, Offset: 2},
			{Name: "gone", Type: Int, Offset: 6, Hidden: true},
		}
		b := NewBuilder(10)
		b.WriteInt(2, 1)
		b.WriteInt(6, 2)
		o := b.Finish()
		m, err := o.ToJSON(hiddenProps, [][]int{nil, nil}, false, false)
		require.NoError(err)
		require.Contains(m, "visible")
		require.NotContains(m, "gone")
	})
}

func TestMarshalAndUnmarshalMap(t *testing.T) {
	require := require.New(t)

	data, err := Marshal(map[string]any{"a": 1, "b": "two"})
	require.NoError(err)

	m, err := UnmarshalMap(data)
	require.NoError(err)
	require.Equal(float64(1), m["a"])
	require.Equal("two", m["b"])

	_, err = UnmarshalMap([]byte(`[1,2,3]`))
	require.Error(err)
}
