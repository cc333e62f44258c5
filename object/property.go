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

// Property is a named, typed field occupying a fixed offset in an object's
// static region. Target is set for Object/ObjectList/link-typed properties
// and names the collection the embedded object or link points at.
type Property struct {
	Name   string
	Type   DataType
	Offset int // byte offset into the static region, >= 2
	Target string
	Hidden bool // true once a property is removed by migration but its offset must stay reserved
}

// Hidden properties keep their declared offset forever (spec.md §9):
// deleting a property never shifts the offsets of properties declared
// after it, since an object written under the old schema may still be
// read by a schema that kept the later properties.
