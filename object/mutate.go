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

import "encoding/binary"

// SetIDInPlace overwrites the id property's static slot with a generated
// auto-increment value. This is the one place the otherwise-immutable
// IsarObject view is mutated: the collection layer calls it between
// building an object and persisting it, before any other code has
// observed the object (spec.md §4.F step 1).
func (o IsarObject) SetIDInPlace(offset int, idType DataType, id int64) {
	switch idType {
	case Long:
		binary.LittleEndian.PutUint64(o.Bytes[offset:offset+8], uint64(id))
	case Int:
		binary.LittleEndian.PutUint32(o.Bytes[offset:offset+4], uint32(int32(id)))
	}
}
