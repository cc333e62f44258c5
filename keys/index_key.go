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
	"bytes"
	"encoding/binary"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// MaxStringIndexSize is the longest prefix of a string stored verbatim in a
// Value index key; strings of this many bytes or more are cut to this many
// bytes and disambiguated with an appended hash of the full string.
const MaxStringIndexSize = 1024

// HashSeed is the xxhash seed used for every index-key hash and for
// object.HashProperty, so index lookups and distinct-dedup hashes agree.
const HashSeed uint64 = 0

// IndexKey incrementally builds one composite index key: a 2-byte index id
// followed by the concatenated per-property encodings, in index
// declaration order.
type IndexKey struct {
	buf []byte
}

// NewIndexKey starts a key for indexID.
func NewIndexKey(indexID uint16) *IndexKey {
	k := &IndexKey{buf: make([]byte, 2, 32)}
	binary.BigEndian.PutUint16(k.buf, indexID)
	return k
}

// Bytes returns the key built so far. The returned slice aliases the
// builder's buffer; callers that retain it across further Add*/Truncate
// calls must clone it first.
func (k *IndexKey) Bytes() []byte { return k.buf }

// Clone returns an independent copy of the key built so far.
func (k *IndexKey) Clone() []byte {
	out := make([]byte, len(k.buf))
	copy(out, k.buf)
	return out
}

// Len returns the number of bytes written so far.
func (k *IndexKey) Len() int { return len(k.buf) }

// Truncate discards bytes after position n, reverting the builder to an
// earlier state. Used by multi-entry indexes to rebuild the per-element
// suffix while keeping the index-id prefix.
func (k *IndexKey) Truncate(n int) { k.buf = k.buf[:n] }

func (k *IndexKey) AddByte(v uint8, isNull bool) {
	if isNull {
		k.buf = append(k.buf, 0)
		return
	}
	k.buf = append(k.buf, v)
}

func (k *IndexKey) AddInt(v int32, isNull bool) {
	if isNull {
		k.buf = append(k.buf, 0, 0, 0, 0)
		return
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v)^(1<<31))
	k.buf = append(k.buf, b[:]...)
}

func (k *IndexKey) AddLong(v int64, isNull bool) {
	if isNull {
		k.buf = append(k.buf, make([]byte, 8)...)
		return
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v)^(1<<63))
	k.buf = append(k.buf, b[:]...)
}

// AddId encodes an object id the same way AddLong would; used when an
// indexed property is the object's own id.
func (k *IndexKey) AddId(id int64) { k.AddLong(id, false) }

func orderPreservingFloatBits(bits uint32) uint32 {
	if bits&0x80000000 != 0 {
		// Negative: invert every bit so larger magnitude sorts smaller.
		return ^bits
	}
	// Positive (or zero): set the sign bit so positives sort after all
	// encoded negatives.
	return bits | 0x80000000
}

func orderPreservingDoubleBits(bits uint64) uint64 {
	if bits&0x8000000000000000 != 0 {
		return ^bits
	}
	return bits | 0x8000000000000000
}

func (k *IndexKey) AddFloat(v float32, isNull bool) {
	if isNull || math.IsNaN(float64(v)) {
		k.buf = append(k.buf, 0, 0, 0, 0)
		return
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], orderPreservingFloatBits(math.Float32bits(v)))
	k.buf = append(k.buf, b[:]...)
}

func (k *IndexKey) AddDouble(v float64, isNull bool) {
	if isNull || math.IsNaN(v) {
		k.buf = append(k.buf, make([]byte, 8)...)
		return
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], orderPreservingDoubleBits(math.Float64bits(v)))
	k.buf = append(k.buf, b[:]...)
}

func canonicalStringBytes(s string, caseSensitive bool) []byte {
	if caseSensitive {
		return []byte(s)
	}
	return []byte(strings.ToLower(s))
}

// AddStringValue appends the Value encoding of a String property: 0x00 for
// null, else 0x01 + bytes + 0x00, with a hash-disambiguated truncation past
// MaxStringIndexSize bytes.
func (k *IndexKey) AddStringValue(s *string, caseSensitive bool) {
	if s == nil {
		k.buf = append(k.buf, 0x00)
		return
	}
	b := canonicalStringBytes(*s, caseSensitive)
	k.buf = append(k.buf, 0x01)
	if len(b) < MaxStringIndexSize {
		k.buf = append(k.buf, b...)
		k.buf = append(k.buf, 0x00)
		return
	}
	k.buf = append(k.buf, b[:MaxStringIndexSize]...)
	k.buf = append(k.buf, 0x00)
	var h [8]byte
	binary.BigEndian.PutUint64(h[:], xxhash.Sum64(b))
	k.buf = append(k.buf, h[:]...)
}

// AddStringHash appends an 8-byte hash of the (optionally lowercased)
// string, or all-zero bytes for null.
func (k *IndexKey) AddStringHash(s *string, caseSensitive bool) {
	var h uint64
	if s != nil {
		h = xxhash.Sum64(canonicalStringBytes(*s, caseSensitive))
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], h)
	k.buf = append(k.buf, b[:]...)
}

// AddHash appends a raw precomputed 8-byte hash value, used by Hash
// indexes over scalar lists (one call per list element).
func (k *IndexKey) AddHash(h uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], h)
	k.buf = append(k.buf, b[:]...)
}

// AddStringWord appends the Value encoding of one segmented word, so a
// Words index's per-word keys sort the same way a single-word Value index
// would.
func (k *IndexKey) AddStringWord(word string, caseSensitive bool) {
	k.AddStringValue(&word, caseSensitive)
}

// HashBytes hashes b with the index/distinct seed, exposed so callers that
// already have canonical bytes (e.g. list elements) don't re-derive them.
func HashBytes(b []byte) uint64 { return xxhash.Sum64(b) }

// CompareBytes is the engine's key comparator: lexicographic order with
// length as the final tie-breaker, matching mdbx's default key ordering.
func CompareBytes(a, b []byte) int { return bytes.Compare(a, b) }
