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
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildStringObject(s *string) IsarObject {
	b := NewBuilder(6)
	b.WriteString(2, s)
	return b.Finish()
}

func TestHashProperty(t *testing.T) {
	require := require.New(t)
	p := Property{Name: "name", Type: String, Offset: 2}

	t.Run("case insensitive by default", func(t *testing.T) {
		a := buildStringObject(strPtr("Hello"))
		b := buildStringObject(strPtr("hello"))
		ha := a.HashProperty(p, 0, nil, false)
		hb := b.HashProperty(p, 0, nil, false)
		require.Equal(ha, hb)
	})

	t.Run("case sensitive distinguishes case", func(t *testing.T) {
		a := buildStringObject(strPtr("Hello"))
		b := buildStringObject(strPtr("hello"))
		ha := a.HashProperty(p, 0, nil, true)
		hb := b.HashProperty(p, 0, nil, true)
		require.NotEqual(ha, hb)
	})

	t.Run("null and empty string hash differently", func(t *testing.T) {
		null := buildStringObject(nil)
		empty := buildStringObject(strPtr(""))
		require.NotEqual(null.HashProperty(p, 0, nil, true), empty.HashProperty(p, 0, nil, true))
	})

	t.Run("same seed and value always hashes the same", func(t *testing.T) {
		a := buildStringObject(strPtr("repeat"))
		require.Equal(a.HashProperty(p, 7, nil, true), a.HashProperty(p, 7, nil, true))
	})
}

func buildIntObject(v int32) IsarObject {
	b := NewBuilder(6)
	b.WriteInt(2, v)
	return b.Finish()
}

func buildDoubleObject(v float64) IsarObject {
	b := NewBuilder(10)
	b.WriteDouble(2, v)
	return b.Finish()
}

func TestCompareProperty(t *testing.T) {
	require := require.New(t)
	intProp := Property{Name: "n", Type: Int, Offset: 2}
	dblProp := Property{Name: "d", Type: Double, Offset: 2}

	t.Run("ints compare in natural order", func(t *testing.T) {
		require.Equal(-1, CompareProperty(buildIntObject(1), buildIntObject(2), intProp, nil))
		require.Equal(1, CompareProperty(buildIntObject(2), buildIntObject(1), intProp, nil))
		require.Equal(0, CompareProperty(buildIntObject(5), buildIntObject(5), intProp, nil))
	})

	t.Run("NaN ties with NaN and sorts below every other double", func(t *testing.T) {
		nan := buildDoubleObject(math.NaN())
		require.Equal(0, CompareProperty(nan, nan, dblProp, nil))
		require.Equal(-1, CompareProperty(nan, buildDoubleObject(-1e300), dblProp, nil))
		require.Equal(1, CompareProperty(buildDoubleObject(-1e300), nan, dblProp, nil))
	})

	t.Run("null string sorts before any non-null string", func(t *testing.T) {
		strProp := Property{Name: "s", Type: String, Offset: 2}
		null := buildStringObject(nil)
		present := buildStringObject(strPtr("a"))
		require.Equal(-1, CompareProperty(null, present, strProp, nil))
		require.Equal(1, CompareProperty(present, null, strProp, nil))
		require.Equal(0, CompareProperty(null, null, strProp, nil))
	})
}
