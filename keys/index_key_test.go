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

package keys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexKeyNumericOrdering(t *testing.T) {
	require := require.New(t)

	t.Run("AddInt preserves signed order under unsigned byte comparison", func(t *testing.T) {
		lo := NewIndexKey(1)
		lo.AddInt(-5, false)
		hi := NewIndexKey(1)
		hi.AddInt(5, false)
		require.True(CompareBytes(lo.Bytes(), hi.Bytes()) < 0)
	})

	t.Run("AddLong preserves signed order", func(t *testing.T) {
		lo := NewIndexKey(1)
		lo.AddLong(-1000000, false)
		hi := NewIndexKey(1)
		hi.AddLong(1000000, false)
		require.True(CompareBytes(lo.Bytes(), hi.Bytes()) < 0)
	})

	t.Run("null sorts before any encoded value", func(t *testing.T) {
		null := NewIndexKey(1)
		null.AddInt(0, true)
		negative := NewIndexKey(1)
		negative.AddInt(-1, false)
		require.True(CompareBytes(null.Bytes(), negative.Bytes()) < 0)
	})

	t.Run("AddFloat/AddDouble preserve order including negatives", func(t *testing.T) {
		lo := NewIndexKey(1)
		lo.AddFloat(-1.5, false)
		hi := NewIndexKey(1)
		hi.AddFloat(1.5, false)
		require.True(CompareBytes(lo.Bytes(), hi.Bytes()) < 0)

		lod := NewIndexKey(1)
		lod.AddDouble(-2.5, false)
		hid := NewIndexKey(1)
		hid.AddDouble(2.5, false)
		require.True(CompareBytes(lod.Bytes(), hid.Bytes()) < 0)
	})

	t.Run("NaN and null encode identically for float", func(t *testing.T) {
		nan := NewIndexKey(1)
		nan.AddFloat(float32NaN(), false)
		null := NewIndexKey(1)
		null.AddFloat(0, true)
		require.Equal(null.Bytes(), nan.Bytes())
	})
}

func float32NaN() float32 {
	var f float32
	return f / f
}

func TestIndexKeyStringEncodings(t *testing.T) {
	require := require.New(t)

	t.Run("AddStringValue is case-insensitive by default", func(t *testing.T) {
		a := NewIndexKey(1)
		a.AddStringValue(strPtr("Hello"), false)
		b := NewIndexKey(1)
		b.AddStringValue(strPtr("hello"), false)
		require.Equal(a.Bytes(), b.Bytes())
	})

	t.Run("AddStringValue case sensitive distinguishes case", func(t *testing.T) {
		a := NewIndexKey(1)
		a.AddStringValue(strPtr("Hello"), true)
		b := NewIndexKey(1)
		b.AddStringValue(strPtr("hello"), true)
		require.NotEqual(a.Bytes(), b.Bytes())
	})

	t.Run("null string encodes as a single zero byte", func(t *testing.T) {
		k := NewIndexKey(1)
		k.AddStringValue(nil, true)
		require.Equal([]byte{0, 1, 0x00}, k.Bytes())
	})

	t.Run("long strings are truncated and hash-disambiguated", func(t *testing.T) {
		long := strings.Repeat("a", MaxStringIndexSize+10)
		short := strings.Repeat("a", MaxStringIndexSize-1)
		kLong := NewIndexKey(1)
		kLong.AddStringValue(&long, true)
		kShort := NewIndexKey(1)
		kShort.AddStringValue(&short, true)
		require.NotEqual(kLong.Bytes(), kShort.Bytes())
		require.Greater(kLong.Len(), 2+MaxStringIndexSize)
	})

	t.Run("AddStringHash is case-insensitive by default and null-safe", func(t *testing.T) {
		a := NewIndexKey(1)
		a.AddStringHash(strPtr("Foo"), false)
		b := NewIndexKey(1)
		b.AddStringHash(strPtr("foo"), false)
		require.Equal(a.Bytes(), b.Bytes())

		n := NewIndexKey(1)
		n.AddStringHash(nil, false)
		require.Equal(append([]byte{0, 1}, make([]byte, 8)...), n.Bytes())
	})
}

func strPtr(s string) *string { return &s }

func TestIndexKeyBuilderMechanics(t *testing.T) {
	require := require.New(t)

	t.Run("buf starts with the big-endian index id", func(t *testing.T) {
		k := NewIndexKey(0x0102)
		require.Equal([]byte{0x01, 0x02}, k.Bytes())
	})

	t.Run("Truncate reverts to an earlier length for multi-entry rebuilds", func(t *testing.T) {
		k := NewIndexKey(1)
		base := k.Len()
		k.AddInt(1, false)
		k.Truncate(base)
		k.AddInt(2, false)
		want := NewIndexKey(1)
		want.AddInt(2, false)
		require.Equal(want.Bytes(), k.Bytes())
	})

	t.Run("Clone is independent of further mutation", func(t *testing.T) {
		k := NewIndexKey(1)
		k.AddByte(9, false)
		clone := k.Clone()
		k.AddByte(10, false)
		require.NotEqual(clone, k.Bytes())
		require.Equal([]byte{0, 1, 9}, clone)
	})
}

func TestCompareBytes(t *testing.T) {
	require := require.New(t)
	require.True(CompareBytes([]byte{1, 2}, []byte{1, 3}) < 0)
	require.True(CompareBytes([]byte{1, 2}, []byte{1, 2}) == 0)
	require.True(CompareBytes([]byte{1, 2, 0}, []byte{1, 2}) > 0)
}
