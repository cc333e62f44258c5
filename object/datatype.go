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

// Package object implements the self-describing little-endian binary
// object format: static header, fixed-offset properties, appended dynamic
// payloads (component B of spec.md), plus its builder, reader, hasher, and
// comparator.
package object

import "math"

// DataType is the wire type of one property.
type DataType uint8

const (
	Bool DataType = iota
	Byte
	Int
	Long
	Float
	Double
	String
	Object
	BoolList
	ByteList
	IntList
	LongList
	FloatList
	DoubleList
	StringList
	ObjectList
)

func (t DataType) String() string {
	switch t {
	case Bool:
		return "Bool"
	case Byte:
		return "Byte"
	case Int:
		return "Int"
	case Long:
		return "Long"
	case Float:
		return "Float"
	case Double:
		return "Double"
	case String:
		return "String"
	case Object:
		return "Object"
	case BoolList:
		return "BoolList"
	case ByteList:
		return "ByteList"
	case IntList:
		return "IntList"
	case LongList:
		return "LongList"
	case FloatList:
		return "FloatList"
	case DoubleList:
		return "DoubleList"
	case StringList:
		return "StringList"
	case ObjectList:
		return "ObjectList"
	default:
		return "Unknown"
	}
}

func DataTypeFromString(s string) (DataType, bool) {
	for t := Bool; t <= ObjectList; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// IsDynamic reports whether the property's static slot holds a u32 payload
// offset rather than an inline value.
func (t DataType) IsDynamic() bool {
	switch t {
	case String, Object, BoolList, ByteList, IntList, LongList, FloatList, DoubleList, StringList, ObjectList:
		return true
	default:
		return false
	}
}

// IsList reports whether the type is one of the *List variants.
func (t DataType) IsList() bool {
	switch t {
	case BoolList, ByteList, IntList, LongList, FloatList, DoubleList, StringList, ObjectList:
		return true
	default:
		return false
	}
}

// StaticSize is the number of bytes this property occupies in the static
// region: 1 for Bool/Byte, 4 for Int/Float and any dynamic offset pointer,
// 8 for Long/Double.
func (t DataType) StaticSize() int {
	switch t {
	case Bool, Byte:
		return 1
	case Int, Float:
		return 4
	case Long, Double:
		return 8
	default:
		// Dynamic types: a u32 offset into the tail.
		return 4
	}
}

// ElementSize is the on-disk size of one element of a list type's backing
// array, used to compute list lengths from byte spans.
func (t DataType) ElementSize() int {
	switch t {
	case BoolList, ByteList:
		return 1
	case IntList, FloatList:
		return 4
	case LongList, DoubleList:
		return 8
	case StringList, ObjectList:
		return 4 // offset table entries
	default:
		return 0
	}
}

// Sentinel null values for the fixed-width static region (spec.md §3).
const (
	NullBool  uint8 = 0
	FalseBool uint8 = 1
	TrueBool  uint8 = 2
	NullByte  uint8 = 0
)

const (
	NullInt  int32 = math.MinInt32
	NullLong int64 = math.MinInt64
)

var (
	NullFloat  = float32(math.NaN())
	NullDouble = math.NaN()
)
