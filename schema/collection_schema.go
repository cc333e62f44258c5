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

// CollectionSchema is one collection: its stable id, ordered property/
// index/link lists, and the byte size of its static region (computed
// during migration from the highest property offset plus that property's
// static size).
type CollectionSchema struct {
	ID         uint16
	Name       string
	Properties []PropertySchema
	Indexes    []IndexSchema
	Links      []LinkSchema
	StaticSize int
}

// IDPropertyIndex returns the index into Properties of the collection's id
// property: by convention the first declared property, which must be
// Long, Int, or String.
func (c CollectionSchema) IDPropertyIndex() int { return 0 }

// IDProperty returns the collection's id property.
func (c CollectionSchema) IDProperty() PropertySchema { return c.Properties[c.IDPropertyIndex()] }

// Property looks up a declared (non-hidden) property by name.
func (c CollectionSchema) Property(name string) (PropertySchema, bool) {
	for _, p := range c.Properties {
		if !p.Hidden && p.Name == name {
			return p, true
		}
	}
	return PropertySchema{}, false
}

// Index looks up a declared index by name.
func (c CollectionSchema) Index(name string) (IndexSchema, bool) {
	for _, ix := range c.Indexes {
		if ix.Name == name {
			return ix, true
		}
	}
	return IndexSchema{}, false
}

// Link looks up a declared link by name.
func (c CollectionSchema) Link(name string) (LinkSchema, bool) {
	for _, l := range c.Links {
		if l.Name == name {
			return l, true
		}
	}
	return LinkSchema{}, false
}

// ToObjectProperties projects the property list into object.Property
// values in declared order, as required by object.IsarObject readers and
// Builder writers.
func (c CollectionSchema) ToObjectProperties() []object.Property {
	out := make([]object.Property, len(c.Properties))
	for i, p := range c.Properties {
		out[i] = p.ToProperty()
	}
	return out
}

// FollowingDynamicOffsets returns, for propIdx, the static offsets of
// every later property in declared order whose type is dynamic — the
// argument object.IsarObject's dynamicSpan needs to infer a payload's
// length from the next populated offset.
func (c CollectionSchema) FollowingDynamicOffsets(propIdx int) []int {
	var out []int
	for i := propIdx + 1; i < len(c.Properties); i++ {
		if c.Properties[i].Type.IsDynamic() {
			out = append(out, c.Properties[i].Offset)
		}
	}
	return out
}

// FollowingDynamicOffsetsForOffset is FollowingDynamicOffsets keyed by a
// property's static offset rather than its index, for callers (like the
// index package) that only have the resolved PropertySchema in hand.
func (c CollectionSchema) FollowingDynamicOffsetsForOffset(offset int) []int {
	var out []int
	for _, p := range c.Properties {
		if p.Offset > offset && p.Type.IsDynamic() {
			out = append(out, p.Offset)
		}
	}
	return out
}

// Verify enforces spec.md §4.C's constraints: non-empty names not
// starting with underscore, uniqueness within each scope, the index
// constraint matrix, and that link targets resolve. knownCollections is the
// set of every declared collection's name (this one included), for link and
// embedded-object target resolution.
func (c CollectionSchema) Verify(knownCollections map[string]bool) error {
	if err := verifyName(c.Name); err != nil {
		return err
	}
	seenProps := make(map[string]bool, len(c.Properties))
	for _, p := range c.Properties {
		if p.Hidden {
			continue
		}
		if err := verifyName(p.Name); err != nil {
			return err
		}
		if seenProps[p.Name] {
			return newSchemaError("collection %q: duplicate property %q", c.Name, p.Name)
		}
		seenProps[p.Name] = true
		if (p.Type == object.Object || p.Type == object.ObjectList) && !knownCollections[p.Target] {
			return newSchemaError("collection %q: property %q targets unknown collection %q", c.Name, p.Name, p.Target)
		}
	}
	seenIdx := make(map[string]bool, len(c.Indexes))
	for _, ix := range c.Indexes {
		if err := verifyName(ix.Name); err != nil {
			return err
		}
		if seenIdx[ix.Name] {
			return newSchemaError("collection %q: duplicate index %q", c.Name, ix.Name)
		}
		seenIdx[ix.Name] = true
		if err := ix.Verify(); err != nil {
			return err
		}
	}
	seenLinks := make(map[string]bool, len(c.Links))
	for _, l := range c.Links {
		if err := verifyName(l.Name); err != nil {
			return err
		}
		if seenLinks[l.Name] {
			return newSchemaError("collection %q: duplicate link %q", c.Name, l.Name)
		}
		seenLinks[l.Name] = true
		if !knownCollections[l.TargetName] {
			return newSchemaError("collection %q: link %q targets unknown collection %q", c.Name, l.Name, l.TargetName)
		}
	}
	return nil
}
