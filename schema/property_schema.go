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

// Package schema parses, verifies, and migrates the JSON schema document
// that describes a database's collections, indexes, and links (spec.md
// §4.C), assigning stable ids and diffing against the persisted schema at
// instance open.
package schema

import "github.com/isardb/isar/object"

// PropertySchema is one property of a collection: a name, a type, an
// optional target collection (for Object/ObjectList/link-typed
// properties), and the byte offset assigned by migration. Hidden is set
// once a property is removed but its offset must stay reserved forever
// (spec.md §9).
type PropertySchema struct {
	Name   string
	Type   object.DataType
	Target string
	Offset int
	Hidden bool
}

// ToProperty projects the schema-time fields a reader/builder needs.
func (p PropertySchema) ToProperty() object.Property {
	return object.Property{Name: p.Name, Type: p.Type, Offset: p.Offset, Target: p.Target, Hidden: p.Hidden}
}
