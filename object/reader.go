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
)

// IsarObject is an immutable view over one object's bytes: a 2-byte static
// size header, the fixed-offset static region, then appended dynamic
// payloads. Readers never mutate Bytes; IsarObject is safe to share for the
// lifetime of the transaction that produced it.
type IsarObject struct {
	Bytes []byte
}

// FromBytes wraps a stored object's raw bytes. It does not copy.
func FromBytes(b []byte) IsarObject { return IsarObject{Bytes: b} }

// StaticSize is the end of the fixed-width region, inclusive of the 2-byte
// header, as declared by the object itself.
func (o IsarObject) StaticSize() int {
	if len(o.Bytes) < 2 {
		return 0
	}
	return int(binary.LittleEndian.Uint16(o.Bytes[0:2]))
}

func (o IsarObject) inStatic(offset, size int) bool {
	return offset+size <= o.StaticSize() && offset+size <= len(o.Bytes)
}

// ReadBool returns NullBool if offset lies past the object's declared
// static size (an older object read by a newer schema).
func (o IsarObject) ReadBool(offset int) uint8 {
	if !o.inStatic(offset, 1) {
		return NullBool
	}
	return o.Bytes[offset]
}

func (o IsarObject) ReadByte(offset int) uint8 {
	if !o.inStatic(offset, 1) {
		return NullByte
	}
	return o.Bytes[offset]
}

func (o IsarObject) ReadInt(offset int) int32 {
	if !o.inStatic(offset, 4) {
		return NullInt
	}
	return int32(binary.LittleEndian.Uint32(o.Bytes[offset : offset+4]))
}

func (o IsarObject) ReadLong(offset int) int64 {
	if !o.inStatic(offset, 8) {
		return NullLong
	}
	return int64(binary.LittleEndian.Uint64(o.Bytes[offset : offset+8]))
}

func (o IsarObject) ReadFloat(offset int) float32 {
	if !o.inStatic(offset, 4) {
		return NullFloat
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(o.Bytes[offset : offset+4]))
}

func (o IsarObject) ReadDouble(offset int) float64 {
	if !o.inStatic(offset, 8) {
		return NullDouble
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(o.Bytes[offset : offset+8]))
}

// readDynamicOffset reads the u32 payload pointer stored at offset. ok is
// false for a null dynamic value (zero offset, or the slot lies beyond the
// object's declared static size).
func (o IsarObject) readDynamicOffset(offset int) (ptr uint32, ok bool) {
	if !o.inStatic(offset, 4) {
		return 0, false
	}
	ptr = binary.LittleEndian.Uint32(o.Bytes[offset : offset+4])
	return ptr, ptr != 0
}

// dynamicSpan returns the byte range holding the dynamic payload rooted at
// offset. followingOffsets lists the static offsets of every later dynamic
// property in declared order: the payload ends at the first of those whose
// stored pointer is non-zero, or at end-of-object if none is set.
func (o IsarObject) dynamicSpan(offset int, followingOffsets []int) ([]byte, bool) {
	ptr, ok := o.readDynamicOffset(offset)
	if !ok {
		return nil, false
	}
	end := len(o.Bytes)
	staticSize := o.StaticSize()
	for _, next := range followingOffsets {
		if next+4 > staticSize {
			break
		}
		if p2 := binary.LittleEndian.Uint32(o.Bytes[next : next+4]); p2 != 0 {
			end = int(p2)
			break
		}
	}
	if int(ptr) > len(o.Bytes) || end > len(o.Bytes) || end < int(ptr) {
		return nil, false
	}
	return o.Bytes[ptr:end], true
}

// ReadString returns nil for a null string property.
func (o IsarObject) ReadString(offset int, followingOffsets []int) *string {
	span, ok := o.dynamicSpan(offset, followingOffsets)
	if !ok {
		return nil
	}
	s := string(span)
	return &s
}

// ReadObjectBytes returns the embedded object's raw bytes, or nil if null.
func (o IsarObject) ReadObjectBytes(offset int, followingOffsets []int) []byte {
	span, ok := o.dynamicSpan(offset, followingOffsets)
	if !ok {
		return nil
	}
	return span
}

func (o IsarObject) ReadByteList(offset int, followingOffsets []int) []uint8 {
	span, ok := o.dynamicSpan(offset, followingOffsets)
	if !ok {
		return nil
	}
	out := make([]uint8, len(span))
	copy(out, span)
	return out
}

// ReadBoolList decodes each element as a Bool sentinel byte
// (NullBool/FalseBool/TrueBool).
func (o IsarObject) ReadBoolList(offset int, followingOffsets []int) []uint8 {
	return o.ReadByteList(offset, followingOffsets)
}

func (o IsarObject) ReadIntList(offset int, followingOffsets []int) []int32 {
	span, ok := o.dynamicSpan(offset, followingOffsets)
	if !ok {
		return nil
	}
	out := make([]int32, len(span)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(span[i*4 : i*4+4]))
	}
	return out
}

func (o IsarObject) ReadLongList(offset int, followingOffsets []int) []int64 {
	span, ok := o.dynamicSpan(offset, followingOffsets)
	if !ok {
		return nil
	}
	out := make([]int64, len(span)/8)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(span[i*8 : i*8+8]))
	}
	return out
}

func (o IsarObject) ReadFloatList(offset int, followingOffsets []int) []float32 {
	span, ok := o.dynamicSpan(offset, followingOffsets)
	if !ok {
		return nil
	}
	out := make([]float32, len(span)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(span[i*4 : i*4+4]))
	}
	return out
}

func (o IsarObject) ReadDoubleList(offset int, followingOffsets []int) []float64 {
	span, ok := o.dynamicSpan(offset, followingOffsets)
	if !ok {
		return nil
	}
	out := make([]float64, len(span)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(span[i*8 : i*8+8]))
	}
	return out
}

// ReadStringList returns nil for a null list, or a slice (possibly empty)
// whose entries are nil for a null element.
func (o IsarObject) ReadStringList(offset int, followingOffsets []int) []*string {
	table, ok := o.readListTable(offset, followingOffsets)
	if !ok {
		return nil
	}
	out := make([]*string, len(table.starts))
	for i, start := range table.starts {
		if start == 0 {
			continue
		}
		end := table.elementEnd(i, len(o.Bytes))
		if int(start) > len(o.Bytes) || end > len(o.Bytes) || end < int(start) {
			continue
		}
		s := string(o.Bytes[start:end])
		out[i] = &s
	}
	return out
}

// ReadObjectList mirrors ReadStringList for embedded-object elements,
// returning each element's raw bytes (nil for a null element).
func (o IsarObject) ReadObjectList(offset int, followingOffsets []int) [][]byte {
	table, ok := o.readListTable(offset, followingOffsets)
	if !ok {
		return nil
	}
	out := make([][]byte, len(table.starts))
	for i, start := range table.starts {
		if start == 0 {
			continue
		}
		end := table.elementEnd(i, len(o.Bytes))
		if int(start) > len(o.Bytes) || end > len(o.Bytes) || end < int(start) {
			continue
		}
		out[i] = o.Bytes[start:end]
	}
	return out
}

// listTable is the parsed secondary offset table for a String/Object list
// property: a leading element count followed by one u32 per element (0 for
// null, else an absolute offset into the object's bytes).
type listTable struct {
	starts []uint32
}

func (t listTable) elementEnd(i int, objectLen int) int {
	for j := i + 1; j < len(t.starts); j++ {
		if t.starts[j] != 0 {
			return int(t.starts[j])
		}
	}
	return objectLen
}

func (o IsarObject) readListTable(offset int, followingOffsets []int) (listTable, bool) {
	span, ok := o.dynamicSpan(offset, followingOffsets)
	if !ok || len(span) < 4 {
		return listTable{}, false
	}
	count := binary.LittleEndian.Uint32(span[0:4])
	starts := make([]uint32, count)
	for i := range starts {
		pos := 4 + i*4
		if pos+4 > len(span) {
			break
		}
		starts[i] = binary.LittleEndian.Uint32(span[pos : pos+4])
	}
	return listTable{starts: starts}, true
}
