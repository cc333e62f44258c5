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
	"encoding/binary"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// seedHash folds seed into xxhash's running state the same way at every call
// site, so HashProperty composes across properties into one object hash.
func seedHash(seed uint64, b []byte) uint64 {
	d := xxhash.NewWithSeed(seed)
	d.Write(b)
	return d.Sum64()
}

func canonicalize(s string, caseSensitive bool) string {
	if caseSensitive {
		return s
	}
	return strings.ToLower(s)
}

// HashProperty folds one property's value into seed and returns the next
// seed, so a caller can chain calls across an object's properties to obtain
// a whole-object hash (spec.md §4.B). String and string-list properties are
// lowercased first unless caseSensitive, so case-insensitive unique indexes
// and case-insensitive distinct queries agree with AddStringHash/AddStringValue.
func (o IsarObject) HashProperty(p Property, seed uint64, followingOffsets []int, caseSensitive bool) uint64 {
	switch p.Type {
	case Bool:
		return seedHash(seed, []byte{o.ReadBool(p.Offset)})
	case Byte:
		return seedHash(seed, []byte{o.ReadByte(p.Offset)})
	case Int:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(o.ReadInt(p.Offset)))
		return seedHash(seed, b[:])
	case Long:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(o.ReadLong(p.Offset)))
		return seedHash(seed, b[:])
	case Float:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(o.ReadFloat(p.Offset)))
		return seedHash(seed, b[:])
	case Double:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(o.ReadDouble(p.Offset)))
		return seedHash(seed, b[:])
	case String:
		s := o.ReadString(p.Offset, followingOffsets)
		if s == nil {
			// Leave seed unhashed so null differs from "" (zero bytes hashed).
			return seed
		}
		return seedHash(seed, []byte(canonicalize(*s, caseSensitive)))
	case ByteList, BoolList:
		list := o.ReadByteList(p.Offset, followingOffsets)
		return seedHash(seed, list)
	case IntList:
		list := o.ReadIntList(p.Offset, followingOffsets)
		b := make([]byte, len(list)*4)
		for i, v := range list {
			binary.LittleEndian.PutUint32(b[i*4:i*4+4], uint32(v))
		}
		return seedHash(seed, b)
	case LongList:
		list := o.ReadLongList(p.Offset, followingOffsets)
		b := make([]byte, len(list)*8)
		for i, v := range list {
			binary.LittleEndian.PutUint64(b[i*8:i*8+8], uint64(v))
		}
		return seedHash(seed, b)
	case FloatList:
		list := o.ReadFloatList(p.Offset, followingOffsets)
		b := make([]byte, len(list)*4)
		for i, v := range list {
			binary.LittleEndian.PutUint32(b[i*4:i*4+4], math.Float32bits(v))
		}
		return seedHash(seed, b)
	case DoubleList:
		list := o.ReadDoubleList(p.Offset, followingOffsets)
		b := make([]byte, len(list)*8)
		for i, v := range list {
			binary.LittleEndian.PutUint64(b[i*8:i*8+8], math.Float64bits(v))
		}
		return seedHash(seed, b)
	case StringList:
		list := o.ReadStringList(p.Offset, followingOffsets)
		for _, s := range list {
			if s == nil {
				seed = seedHash(seed, nil)
				continue
			}
			seed = seedHash(seed, []byte(canonicalize(*s, caseSensitive)))
		}
		return seed
	default:
		return seed
	}
}

// CompareProperty yields a total order over one property's value between
// two objects: NaN compares equal to NaN (tied, rather than unordered), and
// a null string sorts before any non-null string.
func CompareProperty(a, b IsarObject, p Property, followingOffsets []int) int {
	switch p.Type {
	case Bool:
		return compareUint8(a.ReadBool(p.Offset), b.ReadBool(p.Offset))
	case Byte:
		return compareUint8(a.ReadByte(p.Offset), b.ReadByte(p.Offset))
	case Int:
		return compareInt64(int64(a.ReadInt(p.Offset)), int64(b.ReadInt(p.Offset)))
	case Long:
		return compareInt64(a.ReadLong(p.Offset), b.ReadLong(p.Offset))
	case Float:
		return compareFloat64(float64(a.ReadFloat(p.Offset)), float64(b.ReadFloat(p.Offset)))
	case Double:
		return compareFloat64(a.ReadDouble(p.Offset), b.ReadDouble(p.Offset))
	case String:
		return compareStringPtr(a.ReadString(p.Offset, followingOffsets), b.ReadString(p.Offset, followingOffsets))
	default:
		return 0
	}
}

func compareUint8(x, y uint8) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func compareInt64(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

// compareFloat64 treats NaN as tied with NaN and less than every other
// value, matching spec.md §4.B's sort semantics.
func compareFloat64(x, y float64) int {
	xNaN, yNaN := math.IsNaN(x), math.IsNaN(y)
	switch {
	case xNaN && yNaN:
		return 0
	case xNaN:
		return -1
	case yNaN:
		return 1
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func compareStringPtr(x, y *string) int {
	switch {
	case x == nil && y == nil:
		return 0
	case x == nil:
		return -1
	case y == nil:
		return 1
	case *x < *y:
		return -1
	case *x > *y:
		return 1
	default:
		return 0
	}
}
