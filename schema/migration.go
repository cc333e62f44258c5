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
	"math/rand"

	"github.com/goccy/go-json"

	"github.com/isardb/isar/object"
)

// persisted* mirror the runtime schema types but carry the fields only the
// instance itself needs to remember across opens (ids, offsets, hidden
// flags); this is distinct from the public Schema JSON of spec.md §6,
// which is the caller-facing shape FromJSON/ToJSON speak.

type persistedProperty struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`
	Offset int    `json:"offset"`
	Hidden bool   `json:"hidden,omitempty"`
}

type persistedIndexedProperty struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	CaseSensitive bool   `json:"caseSensitive"`
}

type persistedIndex struct {
	ID         uint16                     `json:"id"`
	Name       string                     `json:"name"`
	Properties []persistedIndexedProperty `json:"properties"`
	Unique     bool                       `json:"unique"`
	Replace    bool                       `json:"replace"`
}

type persistedLink struct {
	ID         uint16 `json:"id"`
	BacklinkID uint16 `json:"backlinkId"`
	Name       string `json:"name"`
	Target     string `json:"target"`
	TargetID   uint16 `json:"targetId"`
}

type persistedCollection struct {
	ID         uint16              `json:"id"`
	Name       string              `json:"name"`
	Properties []persistedProperty `json:"properties"`
	Indexes    []persistedIndex    `json:"indexes"`
	Links      []persistedLink     `json:"links"`
	StaticSize int                 `json:"staticSize"`
}

func marshalPersisted(s Schema) ([]byte, error) {
	docs := make([]persistedCollection, 0, len(s.Collections))
	for _, c := range s.Collections {
		pc := persistedCollection{ID: c.ID, Name: c.Name, StaticSize: c.StaticSize}
		for _, p := range c.Properties {
			pc.Properties = append(pc.Properties, persistedProperty{
				Name: p.Name, Type: p.Type.String(), Target: p.Target, Offset: p.Offset, Hidden: p.Hidden,
			})
		}
		for _, ix := range c.Indexes {
			pi := persistedIndex{ID: ix.ID, Name: ix.Name, Unique: ix.Unique, Replace: ix.Replace}
			for _, ip := range ix.Properties {
				pi.Properties = append(pi.Properties, persistedIndexedProperty{
					Name: ip.Property.Name, Type: ip.Type.String(), CaseSensitive: ip.CaseSensitive,
				})
			}
			pc.Indexes = append(pc.Indexes, pi)
		}
		for _, l := range c.Links {
			pc.Links = append(pc.Links, persistedLink{
				ID: l.ID, BacklinkID: l.BacklinkID, Name: l.Name, Target: l.TargetName, TargetID: l.TargetID,
			})
		}
		docs = append(docs, pc)
	}
	return json.Marshal(docs)
}

func unmarshalPersisted(data []byte) (Schema, error) {
	var docs []persistedCollection
	if err := json.Unmarshal(data, &docs); err != nil {
		return Schema{}, err
	}
	out := Schema{Collections: make([]CollectionSchema, 0, len(docs))}
	for _, pc := range docs {
		c := CollectionSchema{ID: pc.ID, Name: pc.Name, StaticSize: pc.StaticSize}
		for _, pp := range pc.Properties {
			t, _ := object.DataTypeFromString(pp.Type)
			c.Properties = append(c.Properties, PropertySchema{
				Name: pp.Name, Type: t, Target: pp.Target, Offset: pp.Offset, Hidden: pp.Hidden,
			})
		}
		for _, pi := range pc.Indexes {
			ix := IndexSchema{ID: pi.ID, Name: pi.Name, CollectionID: pc.ID, Unique: pi.Unique, Replace: pi.Replace}
			for _, pip := range pi.Properties {
				p, _ := findProperty(c.Properties, pip.Name)
				it, _ := IndexTypeFromString(pip.Type)
				ix.Properties = append(ix.Properties, IndexedProperty{Property: p, Type: it, CaseSensitive: pip.CaseSensitive})
			}
			c.Indexes = append(c.Indexes, ix)
		}
		for _, pl := range pc.Links {
			c.Links = append(c.Links, LinkSchema{
				ID: pl.ID, BacklinkID: pl.BacklinkID, Name: pl.Name, TargetName: pl.Target, SourceID: pc.ID, TargetID: pl.TargetID,
			})
		}
		out.Collections = append(out.Collections, c)
	}
	return out, nil
}

// idPool draws ids that avoid every id already in use, for fresh
// collections/indexes/links created during migration (spec.md §4.C step 2).
type idPool struct {
	used map[uint16]bool
	rng  *rand.Rand
}

func newIDPool(existing map[uint16]bool) *idPool {
	used := make(map[uint16]bool, len(existing))
	for id := range existing {
		used[id] = true
	}
	return &idPool{used: used, rng: rand.New(rand.NewSource(0x1591a7))}
}

func (p *idPool) next() uint16 {
	for {
		id := uint16(p.rng.Intn(1<<16-1) + 1) // never allocate 0
		if !p.used[id] {
			p.used[id] = true
			return id
		}
	}
}

// Migrate reconciles target (freshly parsed from the caller's FromJSON
// schema, ids unassigned) against old (the previously persisted schema, or
// a zero Schema on first open), and returns the new schema to persist plus
// the migration plan: collections to drop entirely, and per-surviving
// collection the indexes to clear and the indexes to rebuild (spec.md
// §4.C steps 2-5).
type Plan struct {
	Schema           Schema
	DroppedCollections []CollectionSchema
	ClearedIndexes    map[uint16][]IndexSchema // by new collection id
	RebuiltIndexes    map[uint16][]IndexSchema
}

func Migrate(old, target Schema) (Plan, error) {
	oldByName := make(map[string]CollectionSchema, len(old.Collections))
	usedIDs := map[uint16]bool{}
	for _, c := range old.Collections {
		oldByName[c.Name] = c
		usedIDs[c.ID] = true
		for _, ix := range c.Indexes {
			usedIDs[ix.ID] = true
		}
		for _, l := range c.Links {
			usedIDs[l.ID] = true
			usedIDs[l.BacklinkID] = true
		}
	}
	pool := newIDPool(usedIDs)

	plan := Plan{
		ClearedIndexes: make(map[uint16][]IndexSchema),
		RebuiltIndexes: make(map[uint16][]IndexSchema),
	}

	targetNames := make(map[string]bool, len(target.Collections))
	for _, c := range target.Collections {
		targetNames[c.Name] = true
	}
	for _, c := range old.Collections {
		if !targetNames[c.Name] {
			plan.DroppedCollections = append(plan.DroppedCollections, c)
		}
	}

	newCollections := make([]CollectionSchema, 0, len(target.Collections))
	newCollIDByName := make(map[string]uint16, len(target.Collections))
	for _, tc := range target.Collections {
		if oc, ok := oldByName[tc.Name]; ok {
			newCollIDByName[tc.Name] = oc.ID
		} else {
			newCollIDByName[tc.Name] = pool.next()
		}
	}

	for _, tc := range target.Collections {
		oc, existed := oldByName[tc.Name]
		merged := CollectionSchema{ID: newCollIDByName[tc.Name], Name: tc.Name}

		if existed {
			props, err := mergeProperties(oc.Properties, tc.Properties)
			if err != nil {
				return Plan{}, err
			}
			merged.Properties = props
		} else {
			merged.Properties = assignFreshOffsets(tc.Properties)
		}
		merged.StaticSize = computeStaticSize(merged.Properties)

		oldIdxByName := make(map[string]IndexSchema, len(oc.Indexes))
		for _, ix := range oc.Indexes {
			oldIdxByName[ix.Name] = ix
		}
		targetIdxNames := make(map[string]bool, len(tc.Indexes))
		for _, ix := range tc.Indexes {
			targetIdxNames[ix.Name] = true
		}
		for _, ix := range oc.Indexes {
			if !targetIdxNames[ix.Name] {
				plan.ClearedIndexes[merged.ID] = append(plan.ClearedIndexes[merged.ID], ix)
			}
		}
		for _, ix := range tc.Indexes {
			resolved := resolveIndexProperties(ix, merged.Properties)
			resolved.CollectionID = merged.ID
			if oldIx, ok := oldIdxByName[ix.Name]; ok && sameIndexShape(oldIx, resolved) {
				resolved.ID = oldIx.ID
			} else {
				resolved.ID = pool.next()
				plan.RebuiltIndexes[merged.ID] = append(plan.RebuiltIndexes[merged.ID], resolved)
			}
			merged.Indexes = append(merged.Indexes, resolved)
		}

		oldLinkByName := make(map[string]LinkSchema, len(oc.Links))
		for _, l := range oc.Links {
			oldLinkByName[l.Name] = l
		}
		for _, tl := range tc.Links {
			l := LinkSchema{Name: tl.Name, TargetName: tl.TargetName, SourceID: merged.ID, TargetID: newCollIDByName[tl.TargetName]}
			if oldL, ok := oldLinkByName[tl.Name]; ok {
				l.ID = oldL.ID
				l.BacklinkID = oldL.BacklinkID
			} else {
				l.ID = pool.next()
				l.BacklinkID = pool.next()
			}
			merged.Links = append(merged.Links, l)
		}

		newCollections = append(newCollections, merged)
	}

	plan.Schema = Schema{Collections: newCollections}
	return plan, nil
}

// mergeProperties keeps every surviving property's offset, appends new
// properties after the highest existing offset, and marks removed
// properties Hidden while preserving their offset forever (spec.md §9). A
// property whose declared type changed between opens fails SchemaError:
// no data rewrite between types is attempted.
func mergeProperties(old, target []PropertySchema) ([]PropertySchema, error) {
	oldByName := make(map[string]PropertySchema, len(old))
	for _, p := range old {
		oldByName[p.Name] = p
	}
	targetByName := make(map[string]bool, len(target))
	for _, p := range target {
		targetByName[p.Name] = true
	}

	merged := make([]PropertySchema, 0, len(old)+len(target))
	nextOffset := 2
	for _, op := range old {
		p := op
		if !targetByName[op.Name] {
			p.Hidden = true
		}
		merged = append(merged, p)
		if end := p.Offset + p.Type.StaticSize(); end > nextOffset {
			nextOffset = end
		}
	}
	for _, tp := range target {
		if op, ok := oldByName[tp.Name]; ok {
			if op.Type != tp.Type {
				// Type changed across opens: fail loudly rather than guess
				// at a conversion (spec.md §4.C "Failure").
				return nil, typeChangedError(tp.Name, op.Type, tp.Type)
			}
			continue
		}
		np := tp
		np.Offset = nextOffset
		nextOffset += tp.Type.StaticSize()
		merged = append(merged, np)
	}
	return merged, nil
}

func typeChangedError(name string, from, to object.DataType) error {
	return newSchemaError("property %q changed type from %s to %s", name, from, to)
}

func assignFreshOffsets(props []PropertySchema) []PropertySchema {
	out := make([]PropertySchema, len(props))
	offset := 2
	for i, p := range props {
		p.Offset = offset
		offset += p.Type.StaticSize()
		out[i] = p
	}
	return out
}

func computeStaticSize(props []PropertySchema) int {
	size := 2
	for _, p := range props {
		if end := p.Offset + p.Type.StaticSize(); end > size {
			size = end
		}
	}
	return size
}

func resolveIndexProperties(ix IndexSchema, mergedProps []PropertySchema) IndexSchema {
	out := IndexSchema{Name: ix.Name, Unique: ix.Unique, Replace: ix.Replace}
	for _, ip := range ix.Properties {
		p, _ := findProperty(mergedProps, ip.Property.Name)
		out.Properties = append(out.Properties, IndexedProperty{Property: p, Type: ip.Type, CaseSensitive: ip.CaseSensitive})
	}
	return out
}

func sameIndexShape(a, b IndexSchema) bool {
	if a.Unique != b.Unique || a.Replace != b.Replace || len(a.Properties) != len(b.Properties) {
		return false
	}
	for i := range a.Properties {
		if a.Properties[i].Property.Name != b.Properties[i].Property.Name ||
			a.Properties[i].Type != b.Properties[i].Type ||
			a.Properties[i].CaseSensitive != b.Properties[i].CaseSensitive {
			return false
		}
	}
	return true
}

// MarshalForInfoStore and UnmarshalFromInfoStore persist/restore the
// instance's internal schema representation (ids, offsets, hidden flags
// included) under the info store's "schema" key.
func MarshalForInfoStore(s Schema) ([]byte, error) { return marshalPersisted(s) }

func UnmarshalFromInfoStore(data []byte) (Schema, error) { return unmarshalPersisted(data) }
