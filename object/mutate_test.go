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

func TestSetIDInPlace(t *testing.T) {
	require := require.New(t)

	t.Run("long id", func(t *testing.T) {
		b := NewBuilder(10)
		o := b.Finish()
		o.SetIDInPlace(2, Long, 123456789012)
		require.Equal(int64(123456789012), o.ReadLong(2))
	})

	t.Run("int id", func(t *testing.T) {
		b := NewBuilder(6)
		o := b.Finish()
		o.SetIDInPlace(2, Int, 42)
		require.Equal(int32(42), o.ReadInt(2))
	})
}
