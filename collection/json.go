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

package collection

import (
	"github.com/isardb/isar/isarerr"
	"github.com/isardb/isar/object"
	"github.com/isardb/isar/schema"
	"github.com/isardb/isar/txn"
)

// Resolver looks up a sibling Collection by schema name, letting
// ExportJSON/ImportJSON recurse through Object/ObjectList properties
// without every Collection needing to hold a reference to every other one.
type Resolver func(collectionName string) (*Collection, bool)

// ExportJSON renders one row as a JSON-ready map, recursing into embedded
// object/objectList properties via resolve (spec.md §4.K).
func (c *Collection) ExportJSON(t *txn.Txn, id int64, byteAsBool, primitiveNull bool, resolve Resolver) (map[string]any, error) {
	obj, found, err := c.Get(t, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return c.exportObject(t, obj, byteAsBool, primitiveNull, resolve)
}

// ExportObject renders an already-fetched row as a JSON-ready map,
// recursing into embedded object/objectList properties via resolve. Used
// by the query package, which already holds the object from its own
// iteration and would otherwise have to re-fetch it by id.
func (c *Collection) ExportObject(t *txn.Txn, obj object.IsarObject, byteAsBool, primitiveNull bool, resolve Resolver) (map[string]any, error) {
	return c.exportObject(t, obj, byteAsBool, primitiveNull, resolve)
}

func (c *Collection) exportObject(t *txn.Txn, obj object.IsarObject, byteAsBool, primitiveNull bool, resolve Resolver) (map[string]any, error) {
	props := c.Schema.ToObjectProperties()
	following := c.objectFollowingOffsets()
	out, err := obj.ToJSON(props, following, byteAsBool, primitiveNull)
	if err != nil {
		return nil, err
	}

	for i, p := range c.Schema.Properties {
		if p.Hidden || (p.Type != object.Object && p.Type != object.ObjectList) {
			continue
		}
		target, ok := resolve(p.Target)
		if !ok {
			return nil, isarerr.SchemaError("embedded property %q targets unknown collection %q", p.Name, p.Target)
		}
		switch p.Type {
		case object.Object:
			raw := obj.ReadObjectBytes(p.Offset, following[i])
			if raw == nil {
				out[p.Name] = nil
				continue
			}
			nested, err := target.exportObject(t, object.FromBytes(raw), byteAsBool, primitiveNull, resolve)
			if err != nil {
				return nil, err
			}
			out[p.Name] = nested
		case object.ObjectList:
			rawList := obj.ReadObjectList(p.Offset, following[i])
			if rawList == nil {
				out[p.Name] = nil
				continue
			}
			list := make([]any, len(rawList))
			for j, raw := range rawList {
				if raw == nil {
					continue
				}
				nested, err := target.exportObject(t, object.FromBytes(raw), byteAsBool, primitiveNull, resolve)
				if err != nil {
					return nil, err
				}
				list[j] = nested
			}
			out[p.Name] = list
		}
	}
	return out, nil
}

// ImportJSON decodes one JSON object against the collection's schema and
// puts it, recursing into embedded object/objectList properties via
// resolve. It returns the assigned id.
func (c *Collection) ImportJSON(t *txn.Txn, data []byte, resolve Resolver) (int64, error) {
	m, err := object.UnmarshalMap(data)
	if err != nil {
		return 0, err
	}
	obj, err := c.buildFromMap(m, resolve)
	if err != nil {
		return 0, err
	}
	return c.Put(t, obj)
}

func (c *Collection) buildFromMap(m map[string]any, resolve Resolver) (object.IsarObject, error) {
	b := object.NewBuilder(c.Schema.StaticSize)
	for _, p := range c.Schema.Properties {
		if p.Hidden {
			continue
		}
		v, present := m[p.Name]
		if !present {
			continue
		}
		if err := writeProperty(b, p, v, resolve); err != nil {
			return object.IsarObject{}, err
		}
	}
	return b.Finish(), nil
}

func writeProperty(b *object.Builder, p schema.PropertySchema, v any, resolve Resolver) error {
	switch p.Type {
	case object.Object:
		sub, ok := v.(map[string]any)
		if !ok {
			b.WriteNullDynamic(p.Offset)
			return nil
		}
		target, ok := resolve(p.Target)
		if !ok {
			return isarerr.SchemaError("embedded property %q targets unknown collection %q", p.Name, p.Target)
		}
		nested, err := target.buildFromMap(sub, resolve)
		if err != nil {
			return err
		}
		b.WriteObject(p.Offset, nested.Bytes)
	case object.ObjectList:
		list, ok := v.([]any)
		if !ok {
			b.WriteNullDynamic(p.Offset)
			return nil
		}
		target, ok := resolve(p.Target)
		if !ok {
			return isarerr.SchemaError("embedded property %q targets unknown collection %q", p.Name, p.Target)
		}
		payloads := make([][]byte, len(list))
		for i, el := range list {
			sub, ok := el.(map[string]any)
			if !ok {
				continue
			}
			nested, err := target.buildFromMap(sub, resolve)
			if err != nil {
				return err
			}
			payloads[i] = nested.Bytes
		}
		b.WriteObjectList(p.Offset, payloads)
	default:
		writeScalarProperty(b, p, v)
	}
	return nil
}

func writeScalarProperty(b *object.Builder, p schema.PropertySchema, v any) {
	switch p.Type {
	case object.Bool:
		bv, ok := v.(bool)
		if !ok {
			b.WriteBool(p.Offset, object.NullBool)
			return
		}
		if bv {
			b.WriteBool(p.Offset, object.TrueBool)
		} else {
			b.WriteBool(p.Offset, object.FalseBool)
		}
	case object.Byte:
		b.WriteByte(p.Offset, toByte(v))
	case object.Int:
		iv, ok := toInt64(v)
		if !ok {
			b.WriteInt(p.Offset, object.NullInt)
			return
		}
		b.WriteInt(p.Offset, int32(iv))
	case object.Long:
		iv, ok := toInt64(v)
		if !ok {
			b.WriteLong(p.Offset, object.NullLong)
			return
		}
		b.WriteLong(p.Offset, iv)
	case object.Float:
		fv, ok := toFloat64(v)
		if !ok {
			b.WriteFloat(p.Offset, object.NullFloat)
			return
		}
		b.WriteFloat(p.Offset, float32(fv))
	case object.Double:
		fv, ok := toFloat64(v)
		if !ok {
			b.WriteDouble(p.Offset, object.NullDouble)
			return
		}
		b.WriteDouble(p.Offset, fv)
	case object.String:
		sv, ok := v.(string)
		if !ok {
			b.WriteString(p.Offset, nil)
			return
		}
		b.WriteString(p.Offset, &sv)
	case object.ByteList:
		list, ok := v.([]any)
		if !ok {
			b.WriteNullDynamic(p.Offset)
			return
		}
		out := make([]byte, len(list))
		for i, el := range list {
			out[i] = toByte(el)
		}
		b.WriteByteList(p.Offset, out)
	case object.BoolList:
		list, ok := v.([]any)
		if !ok {
			b.WriteNullDynamic(p.Offset)
			return
		}
		out := make([]byte, len(list))
		for i, el := range list {
			bv, ok := el.(bool)
			switch {
			case !ok:
				out[i] = object.NullBool
			case bv:
				out[i] = object.TrueBool
			default:
				out[i] = object.FalseBool
			}
		}
		b.WriteBoolList(p.Offset, out)
	case object.IntList:
		list, ok := v.([]any)
		if !ok {
			b.WriteNullDynamic(p.Offset)
			return
		}
		out := make([]int32, len(list))
		for i, el := range list {
			if iv, ok := toInt64(el); ok {
				out[i] = int32(iv)
			} else {
				out[i] = object.NullInt
			}
		}
		b.WriteIntList(p.Offset, out)
	case object.LongList:
		list, ok := v.([]any)
		if !ok {
			b.WriteNullDynamic(p.Offset)
			return
		}
		out := make([]int64, len(list))
		for i, el := range list {
			if iv, ok := toInt64(el); ok {
				out[i] = iv
			} else {
				out[i] = object.NullLong
			}
		}
		b.WriteLongList(p.Offset, out)
	case object.FloatList:
		list, ok := v.([]any)
		if !ok {
			b.WriteNullDynamic(p.Offset)
			return
		}
		out := make([]float32, len(list))
		for i, el := range list {
			if fv, ok := toFloat64(el); ok {
				out[i] = float32(fv)
			} else {
				out[i] = object.NullFloat
			}
		}
		b.WriteFloatList(p.Offset, out)
	case object.DoubleList:
		list, ok := v.([]any)
		if !ok {
			b.WriteNullDynamic(p.Offset)
			return
		}
		out := make([]float64, len(list))
		for i, el := range list {
			if fv, ok := toFloat64(el); ok {
				out[i] = fv
			} else {
				out[i] = object.NullDouble
			}
		}
		b.WriteDoubleList(p.Offset, out)
	case object.StringList:
		list, ok := v.([]any)
		if !ok {
			b.WriteNullDynamic(p.Offset)
			return
		}
		out := make([]*string, len(list))
		for i, el := range list {
			if sv, ok := el.(string); ok {
				svCopy := sv
				out[i] = &svCopy
			}
		}
		b.WriteStringList(p.Offset, out)
	}
}

func toByte(v any) byte {
	switch n := v.(type) {
	case float64:
		return byte(n)
	case int:
		return byte(n)
	default:
		return 0
	}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
