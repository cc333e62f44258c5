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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeIdRoundTrip(t *testing.T) {
	require := require.New(t)

	t.Run("round trips across the id range", func(t *testing.T) {
		for _, id := range []int64{MinID, MaxID, 0, -1, 1, 12345, -98765} {
			enc, err := EncodeId(7, id)
			require.NoError(err)
			collID, got, err := DecodeId(enc[:])
			require.NoError(err)
			require.Equal(uint16(7), collID)
			require.Equal(id, got)
		}
	})

	t.Run("rejects ids outside the 48-bit signed range", func(t *testing.T) {
		_, err := EncodeId(1, MaxID+1)
		require.Error(err)
		_, err = EncodeId(1, MinID-1)
		require.Error(err)
	})

	t.Run("decode rejects wrong-length keys", func(t *testing.T) {
		_, _, err := DecodeId([]byte{1, 2, 3})
		require.Error(err)
	})

	t.Run("byte order agrees with numeric (collectionID, id) order", func(t *testing.T) {
		lo, err := EncodeId(1, -100)
		require.NoError(err)
		hi, err := EncodeId(1, 100)
		require.NoError(err)
		require.True(CompareBytes(lo[:], hi[:]) < 0)

		loColl, err := EncodeId(1, MaxID)
		require.NoError(err)
		hiColl, err := EncodeId(2, MinID)
		require.NoError(err)
		require.True(CompareBytes(loColl[:], hiColl[:]) < 0)
	})
}

func TestIdRangeBounds(t *testing.T) {
	require := require.New(t)

	lower, upper := IdRangeBounds(3)
	_, lowID, err := DecodeId(lower[:])
	require.NoError(err)
	_, highID, err := DecodeId(upper[:])
	require.NoError(err)
	require.Equal(MinID, lowID)
	require.Equal(MaxID, highID)
	require.True(CompareBytes(lower[:], upper[:]) < 0)
}
