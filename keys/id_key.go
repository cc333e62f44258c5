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

// Package keys implements the order-preserving byte encodings persisted as
// primary-store and index-store keys: id keys (component A of spec.md) and
// composite index keys (index_key.go).
package keys

import (
	"encoding/binary"

	"github.com/isardb/isar/isarerr"
)

// MinID and MaxID bound the signed 64-bit object id space: 48 low bits of
// the 8-byte id key, so ids fit in [-(2^47), 2^47-1].
const (
	MinID int64 = -(1 << 47)
	MaxID int64 = 1<<47 - 1
)

// IdKeySize is the width in bytes of an encoded id key.
const IdKeySize = 8

// EncodeId returns the 8-byte lexicographically-ordered key for
// (collectionID, id): the collection id occupies the top 16 bits, the
// sign-flipped id the low 48, so byte order agrees with (collectionID, id)
// order.
func EncodeId(collectionID uint16, id int64) ([IdKeySize]byte, error) {
	var out [IdKeySize]byte
	if id < MinID || id > MaxID {
		return out, isarerr.InvalidObjectId(id)
	}
	binary.BigEndian.PutUint16(out[0:2], collectionID)
	// Flip the sign bit so two's-complement signed order becomes unsigned
	// big-endian byte order: id - MinID maps [MinID, MaxID] onto [0, 2^48).
	unsigned := uint64(id-MinID) & (1<<48 - 1)
	var buf8 [8]byte
	binary.BigEndian.PutUint64(buf8[:], unsigned)
	copy(out[2:8], buf8[2:8])
	return out, nil
}

// DecodeId is the inverse of EncodeId.
func DecodeId(key []byte) (collectionID uint16, id int64, err error) {
	if len(key) != IdKeySize {
		return 0, 0, isarerr.IllegalArg("id key must be %d bytes, got %d", IdKeySize, len(key))
	}
	collectionID = binary.BigEndian.Uint16(key[0:2])
	var buf8 [8]byte
	copy(buf8[2:8], key[2:8])
	unsigned := binary.BigEndian.Uint64(buf8[:])
	id = int64(unsigned) + MinID
	return collectionID, id, nil
}

// IdRangeBounds returns the lower/upper id-key bounds for a full id range
// scan over one collection ([MinID, MaxID]).
func IdRangeBounds(collectionID uint16) (lower, upper [IdKeySize]byte) {
	lower, _ = EncodeId(collectionID, MinID)
	upper, _ = EncodeId(collectionID, MaxID)
	return lower, upper
}
