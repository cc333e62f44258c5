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

package schema

import "github.com/isardb/isar/object"

// IndexType selects how one indexed property's value is encoded into the
// composite index key (spec.md §3).
type IndexType uint8

const (
	Value IndexType = iota
	Hash
	HashElements
	Words
)

func (t IndexType) String() string {
	switch t {
	case Value:
		return "Value"
	case Hash:
		return "Hash"
	case HashElements:
		return "HashElements"
	case Words:
		return "Words"
	default:
		return "Unknown"
	}
}

func IndexTypeFromString(s string) (IndexType, bool) {
	for t := Value; t <= Words; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// IndexedProperty is one column of a (possibly composite) index.
type IndexedProperty struct {
	Property      PropertySchema
	Type          IndexType
	CaseSensitive bool
}

// IndexSchema is one index: a stable id, its owning collection's id, an
// ordered list of indexed properties, and the unique/replace policy.
type IndexSchema struct {
	ID           uint16
	Name         string
	CollectionID uint16
	Properties   []IndexedProperty
	Unique       bool
	Replace      bool
}

// IsMultiEntry reports whether this index emits one key per list
// element/word rather than a single composite key.
func (s IndexSchema) IsMultiEntry() bool {
	if len(s.Properties) != 1 {
		return false
	}
	p := s.Properties[0]
	return p.Property.Type.IsList() || p.Type == Words
}

// Verify checks the index constraint matrix of spec.md §3 against the
// collection's already-resolved property list.
func (s IndexSchema) Verify() error {
	if len(s.Properties) == 0 {
		return newSchemaError("index %q: must have at least one property", s.Name)
	}
	for i, ip := range s.Properties {
		last := i == len(s.Properties)-1
		t := ip.Property.Type
		switch {
		case t == object.Float || t == object.Double:
			if ip.Type != Value {
				return newSchemaError("index %q: float/double property %q must use Value", s.Name, ip.Property.Name)
			}
			if !last {
				return newSchemaError("index %q: float/double property %q must be last", s.Name, ip.Property.Name)
			}
		case t == object.String:
			if ip.Type == Value && !last {
				return newSchemaError("index %q: string Value property %q must be last", s.Name, ip.Property.Name)
			}
			if ip.Type != Value && ip.Type != Hash {
				return newSchemaError("index %q: string property %q must use Value or Hash", s.Name, ip.Property.Name)
			}
		case t.IsList():
			if len(s.Properties) != 1 {
				return newSchemaError("index %q: list property %q must be the sole indexed property", s.Name, ip.Property.Name)
			}
			if ip.Type == HashElements && t != object.StringList {
				return newSchemaError("index %q: HashElements is only valid for StringList", s.Name)
			}
			if ip.Type == Words && t != object.StringList {
				return newSchemaError("index %q: Words is only valid for StringList", s.Name)
			}
			if ip.Type != Hash && ip.Type != HashElements && ip.Type != Words {
				return newSchemaError("index %q: list property %q must use Hash, HashElements, or Words", s.Name, ip.Property.Name)
			}
		default:
			if ip.Type == HashElements || ip.Type == Words {
				return newSchemaError("index %q: %s not valid for scalar property %q", s.Name, ip.Type, ip.Property.Name)
			}
			if ip.Type == Hash && t != object.String {
				return newSchemaError("index %q: Hash requires String or a list type", s.Name)
			}
		}
	}
	return nil
}
