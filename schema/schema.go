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

import (
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/isardb/isar/isarerr"
	"github.com/isardb/isar/object"
)

// Schema is an ordered list of collection schemas, normalized by name.
type Schema struct {
	Collections []CollectionSchema
}

func newSchemaError(format string, args ...any) error { return isarerr.SchemaError(format, args...) }

func verifyName(name string) error {
	if name == "" {
		return newSchemaError("name must not be empty")
	}
	if strings.HasPrefix(name, "_") {
		return newSchemaError("name %q must not begin with an underscore", name)
	}
	return nil
}

// jsonCollection mirrors spec.md §6's per-collection Schema JSON shape; a
// Schema document is a bare JSON array of these.
type jsonCollection struct {
	Name       string          `json:"name"`
	Properties []jsonProperty  `json:"properties"`
	Indexes    []jsonIndex     `json:"indexes"`
	Links      []jsonLink      `json:"links"`
}

type jsonProperty struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`
}

type jsonIndexedProperty struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	CaseSensitive bool   `json:"caseSensitive"`
}

type jsonIndex struct {
	Name       string                `json:"name"`
	Properties []jsonIndexedProperty `json:"properties"`
	Unique     bool                  `json:"unique"`
	Replace    bool                  `json:"replace"`
}

type jsonLink struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// FromJSON parses a Schema JSON document (spec.md §6), resolving property
// types and index-type strings but leaving ids and offsets unassigned
// (that's migration's job). Unknown JSON keys are ignored by go-json's
// default decoding; missing arrays default to empty.
func FromJSON(data []byte) (Schema, error) {
	var cols []jsonCollection
	if err := json.Unmarshal(data, &cols); err != nil {
		return Schema{}, isarerr.SchemaError("invalid schema json: %v", err)
	}

	out := Schema{Collections: make([]CollectionSchema, 0, len(cols))}
	for _, jc := range cols {
		cs := CollectionSchema{Name: jc.Name}
		for _, jp := range jc.Properties {
			t, ok := object.DataTypeFromString(jp.Type)
			if !ok {
				return Schema{}, newSchemaError("collection %q: unknown property type %q", jc.Name, jp.Type)
			}
			cs.Properties = append(cs.Properties, PropertySchema{Name: jp.Name, Type: t, Target: jp.Target})
		}
		for _, ji := range jc.Indexes {
			ixs := IndexSchema{Name: ji.Name, Unique: ji.Unique, Replace: ji.Replace}
			for _, jip := range ji.Properties {
				p, ok := findProperty(cs.Properties, jip.Name)
				if !ok {
					return Schema{}, newSchemaError("collection %q: index %q references unknown property %q", jc.Name, ji.Name, jip.Name)
				}
				it, ok := IndexTypeFromString(jip.Type)
				if !ok {
					return Schema{}, newSchemaError("collection %q: index %q has unknown index type %q", jc.Name, ji.Name, jip.Type)
				}
				ixs.Properties = append(ixs.Properties, IndexedProperty{Property: p, Type: it, CaseSensitive: jip.CaseSensitive})
			}
			cs.Indexes = append(cs.Indexes, ixs)
		}
		for _, jl := range jc.Links {
			cs.Links = append(cs.Links, LinkSchema{Name: jl.Name, TargetName: jl.Target})
		}
		out.Collections = append(out.Collections, cs)
	}
	return out, nil
}

func findProperty(props []PropertySchema, name string) (PropertySchema, bool) {
	for _, p := range props {
		if p.Name == name {
			return p, true
		}
	}
	return PropertySchema{}, false
}

// ToJSON renders the schema back to spec.md §6's wire format, with
// properties/indexes/links emitted in declared order (hidden properties
// are omitted — they are an internal migration artifact, not part of the
// visible schema surface).
func (s Schema) ToJSON() ([]byte, error) {
	docs := make([]jsonCollection, 0, len(s.Collections))
	for _, c := range s.Collections {
		jc := jsonCollection{Name: c.Name}
		for _, p := range c.Properties {
			if p.Hidden {
				continue
			}
			jc.Properties = append(jc.Properties, jsonProperty{Name: p.Name, Type: p.Type.String(), Target: p.Target})
		}
		for _, ix := range c.Indexes {
			ji := jsonIndex{Name: ix.Name, Unique: ix.Unique, Replace: ix.Replace}
			for _, ip := range ix.Properties {
				ji.Properties = append(ji.Properties, jsonIndexedProperty{
					Name: ip.Property.Name, Type: ip.Type.String(), CaseSensitive: ip.CaseSensitive,
				})
			}
			jc.Indexes = append(jc.Indexes, ji)
		}
		for _, l := range c.Links {
			jc.Links = append(jc.Links, jsonLink{Name: l.Name, Target: l.TargetName})
		}
		docs = append(docs, jc)
	}
	return json.Marshal(docs)
}

// Verify checks every collection against spec.md §4.C's constraints.
func (s Schema) Verify() error {
	known := make(map[string]bool, len(s.Collections))
	seen := make(map[string]bool, len(s.Collections))
	for _, c := range s.Collections {
		known[c.Name] = true
	}
	for _, c := range s.Collections {
		if err := verifyName(c.Name); err != nil {
			return err
		}
		if seen[c.Name] {
			return newSchemaError("duplicate collection %q", c.Name)
		}
		seen[c.Name] = true
		if err := c.Verify(known); err != nil {
			return err
		}
	}
	return nil
}

// Sorted returns a copy of the schema with every collection's properties,
// indexes, and links sorted by name — used to compare two schemas for
// equality up to declaration order (spec.md §8's from_json/to_json
// round-trip law) without depending on JSON array order.
func (s Schema) Sorted() Schema {
	out := Schema{Collections: make([]CollectionSchema, len(s.Collections))}
	copy(out.Collections, s.Collections)
	sort.Slice(out.Collections, func(i, j int) bool { return out.Collections[i].Name < out.Collections[j].Name })
	for i := range out.Collections {
		c := out.Collections[i]
		props := make([]PropertySchema, len(c.Properties))
		copy(props, c.Properties)
		sort.Slice(props, func(a, b int) bool { return props[a].Name < props[b].Name })
		c.Properties = props

		idx := make([]IndexSchema, len(c.Indexes))
		copy(idx, c.Indexes)
		sort.Slice(idx, func(a, b int) bool { return idx[a].Name < idx[b].Name })
		c.Indexes = idx

		links := make([]LinkSchema, len(c.Links))
		copy(links, c.Links)
		sort.Slice(links, func(a, b int) bool { return links[a].Name < links[b].Name })
		c.Links = links

		out.Collections[i] = c
	}
	return out
}
