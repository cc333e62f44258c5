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

// Builder fills a buffer in declared property order, then Finish freezes
// it into an immutable IsarObject. Builders may be recycled across objects
// via Reset to avoid reallocating the backing buffer.
type Builder struct {
	buf []byte
}

// NewBuilder allocates a builder whose static region is staticSize bytes
// (computed by the caller from the collection's property layout, header
// included).
func NewBuilder(staticSize int) *Builder {
	b := &Builder{buf: make([]byte, staticSize, staticSize*2)}
	binary.LittleEndian.PutUint16(b.buf[0:2], uint16(staticSize))
	return b
}

// Reset recycles the builder's backing buffer for a new object of the
// given static size.
func (b *Builder) Reset(staticSize int) {
	if cap(b.buf) < staticSize {
		b.buf = make([]byte, staticSize, staticSize*2)
	} else {
		b.buf = b.buf[:staticSize]
		for i := range b.buf {
			b.buf[i] = 0
		}
	}
	binary.LittleEndian.PutUint16(b.buf[0:2], uint16(staticSize))
}

// Finish freezes the builder's buffer into an immutable IsarObject. The
// returned object aliases the builder's buffer; call Reset only after the
// caller is done with prior Finish results, or clone Bytes first.
func (b *Builder) Finish() IsarObject {
	return IsarObject{Bytes: b.buf}
}

func (b *Builder) WriteBool(offset int, v uint8) { b.buf[offset] = v }
func (b *Builder) WriteByte(offset int, v uint8) { b.buf[offset] = v }

func (b *Builder) WriteInt(offset int, v int32) {
	binary.LittleEndian.PutUint32(b.buf[offset:offset+4], uint32(v))
}

func (b *Builder) WriteLong(offset int, v int64) {
	binary.LittleEndian.PutUint64(b.buf[offset:offset+8], uint64(v))
}

func (b *Builder) WriteFloat(offset int, v float32) {
	binary.LittleEndian.PutUint32(b.buf[offset:offset+4], math.Float32bits(v))
}

func (b *Builder) WriteDouble(offset int, v float64) {
	binary.LittleEndian.PutUint64(b.buf[offset:offset+8], math.Float64bits(v))
}

// WriteNullDynamic leaves offset's slot at zero, meaning null. The slot is
// already zero after Reset/NewBuilder, but callers call this explicitly to
// make null writes visible at the call site.
func (b *Builder) WriteNullDynamic(offset int) {
	binary.LittleEndian.PutUint32(b.buf[offset:offset+4], 0)
}

// appendDynamic appends payload to the tail and records the offset it was
// written at into the property's static slot.
func (b *Builder) appendDynamic(offset int, payload []byte) {
	ptr := uint32(len(b.buf))
	binary.LittleEndian.PutUint32(b.buf[offset:offset+4], ptr)
	b.buf = append(b.buf, payload...)
}

func (b *Builder) WriteString(offset int, s *string) {
	if s == nil {
		b.WriteNullDynamic(offset)
		return
	}
	b.appendDynamic(offset, []byte(*s))
}

// WriteObject writes a pre-built embedded object's bytes, or null if
// payload is nil.
func (b *Builder) WriteObject(offset int, payload []byte) {
	if payload == nil {
		b.WriteNullDynamic(offset)
		return
	}
	b.appendDynamic(offset, payload)
}

// WriteByteList writes nil for a null list; a non-nil, possibly empty,
// slice for a present list (including the zero-length case, which is
// distinguishable from null by its non-zero offset).
func (b *Builder) WriteByteList(offset int, list []uint8) {
	if list == nil {
		b.WriteNullDynamic(offset)
		return
	}
	b.appendDynamic(offset, list)
}

// WriteBoolList stores each element as its Bool sentinel byte.
func (b *Builder) WriteBoolList(offset int, list []uint8) { b.WriteByteList(offset, list) }

func (b *Builder) WriteIntList(offset int, list []int32) {
	if list == nil {
		b.WriteNullDynamic(offset)
		return
	}
	payload := make([]byte, len(list)*4)
	for i, v := range list {
		binary.LittleEndian.PutUint32(payload[i*4:i*4+4], uint32(v))
	}
	b.appendDynamic(offset, payload)
}

func (b *Builder) WriteLongList(offset int, list []int64) {
	if list == nil {
		b.WriteNullDynamic(offset)
		return
	}
	payload := make([]byte, len(list)*8)
	for i, v := range list {
		binary.LittleEndian.PutUint64(payload[i*8:i*8+8], uint64(v))
	}
	b.appendDynamic(offset, payload)
}

func (b *Builder) WriteFloatList(offset int, list []float32) {
	if list == nil {
		b.WriteNullDynamic(offset)
		return
	}
	payload := make([]byte, len(list)*4)
	for i, v := range list {
		binary.LittleEndian.PutUint32(payload[i*4:i*4+4], math.Float32bits(v))
	}
	b.appendDynamic(offset, payload)
}

func (b *Builder) WriteDoubleList(offset int, list []float64) {
	if list == nil {
		b.WriteNullDynamic(offset)
		return
	}
	payload := make([]byte, len(list)*8)
	for i, v := range list {
		binary.LittleEndian.PutUint64(payload[i*8:i*8+8], math.Float64bits(v))
	}
	b.appendDynamic(offset, payload)
}

// WriteStringList writes a leading u32 element count, then one u32 slot
// per element (0 for a null element, else the element's absolute start
// offset), then the concatenated element bytes — our disambiguation of
// spec.md §4.B's "secondary offset table of length N*4" for an explicit
// element count rather than inferring N from surrounding offsets.
func (b *Builder) WriteStringList(offset int, list []*string) {
	if list == nil {
		b.WriteNullDynamic(offset)
		return
	}
	tableStart := len(b.buf)
	ptr := uint32(tableStart)
	b.buf = append(b.buf, make([]byte, 4+len(list)*4)...)
	binary.LittleEndian.PutUint32(b.buf[tableStart:tableStart+4], uint32(len(list)))
	for i, s := range list {
		if s == nil {
			continue
		}
		elemStart := uint32(len(b.buf))
		b.buf = append(b.buf, []byte(*s)...)
		slot := tableStart + 4 + i*4
		binary.LittleEndian.PutUint32(b.buf[slot:slot+4], elemStart)
	}
	binary.LittleEndian.PutUint32(b.buf[offset:offset+4], ptr)
}

// WriteObjectList mirrors WriteStringList for pre-built embedded-object
// element byte slices (nil entries are null elements).
func (b *Builder) WriteObjectList(offset int, list [][]byte) {
	if list == nil {
		b.WriteNullDynamic(offset)
		return
	}
	tableStart := len(b.buf)
	ptr := uint32(tableStart)
	b.buf = append(b.buf, make([]byte, 4+len(list)*4)...)
	binary.LittleEndian.PutUint32(b.buf[tableStart:tableStart+4], uint32(len(list)))
	for i, elem := range list {
		if elem == nil {
			continue
		}
		elemStart := uint32(len(b.buf))
		b.buf = append(b.buf, elem...)
		slot := tableStart + 4 + i*4
		binary.LittleEndian.PutUint32(b.buf[slot:slot+4], elemStart)
	}
	binary.LittleEndian.PutUint32(b.buf[offset:offset+4], ptr)
}
