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

func TestDataTypeStringRoundTrip(t *testing.T) {
	require := require.New(t)

	for dt := Bool; dt <= ObjectList; dt++ {
		s := dt.String()
		require.NotEqual("Unknown", s)
		got, ok := DataTypeFromString(s)
		require.True(ok)
		require.Equal(dt, got)
	}

	_, ok := DataTypeFromString("NotARealType")
	require.False(ok)
}

func TestDataTypeClassification(t *testing.T) {
	require := require.New(t)

	t.Run("dynamic types", func(t *testing.T) {
		for _, dt := range []DataType{String, Object, BoolList, ByteList, IntList, LongList, FloatList, DoubleList, StringList, ObjectList} {
			require.True(dt.IsDynamic(), dt.String())
		}
		for _, dt := range []DataType{Bool, Byte, Int, Long, Float, Double} {
			require.False(dt.IsDynamic(), dt.String())
		}
	})

	t.Run("list types", func(t *testing.T) {
		for _, dt := range []DataType{BoolList, ByteList, IntList, LongList, FloatList, DoubleList, StringList, ObjectList} {
			require.True(dt.IsList(), dt.String())
		}
		require.False(String.IsList())
		require.False(Object.IsList())
	})

	t.Run("static sizes", func(t *testing.T) {
		require.Equal(1, Bool.StaticSize())
		require.Equal(1, Byte.StaticSize())
		require.Equal(4, Int.StaticSize())
		require.Equal(4, Float.StaticSize())
		require.Equal(8, Long.StaticSize())
		require.Equal(8, Double.StaticSize())
		require.Equal(4, String.StaticSize()) // dynamic offset pointer
		require.Equal(4, IntList.StaticSize())
	})

	t.Run("element sizes", func(t *testing.T) {
		require.Equal(1, BoolList.ElementSize())
		require.Equal(1, ByteList.ElementSize())
		require.Equal(4, IntList.ElementSize())
		require.Equal(4, FloatList.ElementSize())
		require.Equal(8, LongList.ElementSize())
		require.Equal(8, DoubleList.ElementSize())
		require.Equal(4, StringList.ElementSize())
		require.Equal(0, Int.ElementSize())
	})
}
