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

func strPtr(s string) *string { return &s }

func TestBuilderScalarRoundTrip(t *testing.T) {
	require := require.New(t)

	t.Run("fixed width scalars", func(t *testing.T) {
		// header(2) + bool(1) + byte(1) + int(4) + long(8) + float(4) + double(8)
		b := NewBuilder(28)
		b.WriteBool(2, TrueBool)
		b.WriteByte(3, 0x7f)
		b.WriteInt(4, -42)
		b.WriteLong(8, 1<<40)
		b.WriteFloat(16, 3.5)
		b.WriteDouble(20, 2.25)
		o := b.Finish()

		require.Equal(28, o.StaticSize())
		require.Equal(TrueBool, o.ReadBool(2))
		require.Equal(uint8(0x7f), o.ReadByte(3))
		require.Equal(int32(-42), o.ReadInt(4))
		require.Equal(int64(1<<40), o.ReadLong(8))
		require.Equal(float32(3.5), o.ReadFloat(16))
		require.Equal(2.25, o.ReadDouble(20))
	})

	t.Run("reading past declared static size yields null sentinels", func(t *testing.T) {
		b := NewBuilder(4)
		o := b.Finish()
		require.Equal(NullBool, o.ReadBool(10))
		require.Equal(NullInt, o.ReadInt(10))
		require.Equal(NullLong, o.ReadLong(10))
		require.True(o.ReadFloat(10) != o.ReadFloat(10)) // NaN
	})

	t.Run("reset reuses the backing buffer and clears the static region", func(t *testing.T) {
		b := NewBuilder(8)
		b.WriteInt(4, 99)
		b.Reset(8)
		o := b.Finish()
		require.Equal(int32(0), o.ReadInt(4))
	})
}

func TestBuilderDynamicRoundTrip(t *testing.T) {
	require := require.New(t)

	t.Run("string present, empty, and null", func(t *testing.T) {
		b := NewBuilder(6) // header(2) + one offset slot(4)
		b.WriteString(2, strPtr("hello"))
		o := b.Finish()
		got := o.ReadString(2, nil)
		require.NotNil(got)
		require.Equal("hello", *got)

		b2 := NewBuilder(6)
		b2.WriteString(2, strPtr(""))
		o2 := b2.Finish()
		got2 := o2.ReadString(2, nil)
		require.NotNil(got2)
		require.Equal("", *got2)

		b3 := NewBuilder(6)
		b3.WriteString(2, nil)
		o3 := b3.Finish()
		require.Nil(o3.ReadString(2, nil))
	})

	t.Run("byte list null vs empty vs populated", func(t *testing.T) {
		b := NewBuilder(6)
		b.WriteByteList(2, nil)
		o := b.Finish()
		require.Nil(o.ReadByteList(2, nil))

		b2 := NewBuilder(6)
		b2.WriteByteList(2, []uint8{})
		o2 := b2.Finish()
		require.NotNil(o2.ReadByteList(2, nil))
		require.Empty(o2.ReadByteList(2, nil))

		b3 := NewBuilder(6)
		b3.WriteByteList(2, []uint8{1, 2, 3})
		o3 := b3.Finish()
		require.Equal([]uint8{1, 2, 3}, o3.ReadByteList(2, nil))
	})

	t.Run("int/long/float/double lists", func(t *testing.T) {
		b := NewBuilder(18) // header(2) + 4 offset slots(16)
		b.WriteIntList(2, []int32{1, -2, 3})
		b.WriteLongList(6, []int64{10, -20})
		b.WriteFloatList(10, []float32{1.5, -2.5})
		b.WriteDoubleList(14, []float64{9.25})
		o := b.Finish()

		require.Equal([]int32{1, -2, 3}, o.ReadIntList(2, []int{6, 10, 14}))
		require.Equal([]int64{10, -20}, o.ReadLongList(6, []int{10, 14}))
		require.Equal([]float32{1.5, -2.5}, o.ReadFloatList(10, []int{14}))
		require.Equal([]float64{9.25}, o.ReadDoubleList(14, nil))
	})

	t.Run("string list with null elements", func(t *testing.T) {
		b := NewBuilder(6)
		b.WriteStringList(2, []*string{strPtr("a"), nil, strPtr("ccc")})
		o := b.Finish()
		got := o.ReadStringList(2, nil)
		require.Len(got, 3)
		require.Equal("a", *got[0])
		require.Nil(got[1])
		require.Equal("ccc", *got[2])
	})

	t.Run("string list null vs empty", func(t *testing.T) {
		b := NewBuilder(6)
		b.WriteStringList(2, nil)
		o := b.Finish()
		require.Nil(o.ReadStringList(2, nil))

		b2 := NewBuilder(6)
		b2.WriteStringList(2, []*string{})
		o2 := b2.Finish()
		require.NotNil(o2.ReadStringList(2, nil))
		require.Empty(o2.ReadStringList(2, nil))
	})

	t.Run("object list mirrors string list for embedded bytes", func(t *testing.T) {
		inner := NewBuilder(6)
		inner.WriteInt(2, 7)
		innerBytes := inner.Finish().Bytes

		b := NewBuilder(6)
		b.WriteObjectList(2, [][]byte{innerBytes, nil})
		o := b.Finish()
		got := o.ReadObjectList(2, nil)
		require.Len(got, 2)
		require.Equal(innerBytes, got[0])
		require.Nil(got[1])
	})

	t.Run("multiple dynamic properties share one tail without overlap", func(t *testing.T) {
		b := NewBuilder(10) // header(2) + string offset(4) + list offset(4)
		b.WriteString(2, strPtr("first"))
		b.WriteIntList(6, []int32{100, 200})
		o := b.Finish()

		s := o.ReadString(2, []int{6})
		require.NotNil(s)
		require.Equal("first", *s)
		require.Equal([]int32{100, 200}, o.ReadIntList(6, nil))
	})
}
