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
	"math"

	"github.com/goccy/go-json"

	"github.com/isardb/isar/isarerr"
)

// ToJSON renders the object as a map keyed by property name, following
// spec.md §4.K: Byte properties are emitted as JSON numbers unless
// byteAsBool requests Dart/isar-style booleans, and primitiveNull controls
// whether a null scalar is emitted as JSON null (true) or, when false, as
// false for a Bool and as its sentinel (NullInt, NullLong, NaN) for the
// numeric types.
func (o IsarObject) ToJSON(props []Property, followingOffsetsByIndex [][]int, byteAsBool, primitiveNull bool) (map[string]any, error) {
	out := make(map[string]any, len(props))
	for i, p := range props {
		if p.Hidden {
			continue
		}
		out[p.Name] = o.propertyToJSON(p, followingOffsetsByIndex[i], byteAsBool, primitiveNull)
	}
	return out, nil
}

func (o IsarObject) propertyToJSON(p Property, following []int, byteAsBool, primitiveNull bool) any {
	switch p.Type {
	case Bool:
		v := o.ReadBool(p.Offset)
		if v == NullBool {
			if primitiveNull {
				return nil
			}
			return false
		}
		return v == TrueBool
	case Byte:
		v := o.ReadByte(p.Offset)
		if byteAsBool {
			return v != 0
		}
		return v
	case Int:
		v := o.ReadInt(p.Offset)
		if v == NullInt && primitiveNull {
			return nil
		}
		return v
	case Long:
		v := o.ReadLong(p.Offset)
		if v == NullLong && primitiveNull {
			return nil
		}
		return v
	case Float:
		v := o.ReadFloat(p.Offset)
		if math.IsNaN(float64(v)) && primitiveNull {
			return nil
		}
		return v
	case Double:
		v := o.ReadDouble(p.Offset)
		if math.IsNaN(v) && primitiveNull {
			return nil
		}
		return v
	case String:
		s := o.ReadString(p.Offset, following)
		if s == nil {
			return nil
		}
		return *s
	case BoolList:
		list := o.ReadBoolList(p.Offset, following)
		if list == nil {
			return nil
		}
		out := make([]any, len(list))
		for i, v := range list {
			if v == NullBool {
				out[i] = nil
			} else {
				out[i] = v == TrueBool
			}
		}
		return out
	case ByteList:
		list := o.ReadByteList(p.Offset, following)
		if list == nil {
			return nil
		}
		return list
	case IntList:
		list := o.ReadIntList(p.Offset, following)
		if list == nil {
			return nil
		}
		return list
	case LongList:
		list := o.ReadLongList(p.Offset, following)
		if list == nil {
			return nil
		}
		return list
	case FloatList:
		list := o.ReadFloatList(p.Offset, following)
		if list == nil {
			return nil
		}
		return list
	case DoubleList:
		list := o.ReadDoubleList(p.Offset, following)
		if list == nil {
			return nil
		}
		return list
	case StringList:
		list := o.ReadStringList(p.Offset, following)
		if list == nil {
			return nil
		}
		out := make([]any, len(list))
		for i, s := range list {
			if s != nil {
				out[i] = *s
			}
		}
		return out
	default:
		return nil
	}
}

// Marshal renders ToJSON's map through goccy/go-json, the fast drop-in
// encoder the rest of the module uses for schema and export payloads.
func Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, isarerr.InvalidJson("%v", err)
	}
	return b, nil
}

// UnmarshalMap decodes one JSON object into a string-keyed map for
// FromJSON-style import, rejecting anything that isn't a JSON object.
func UnmarshalMap(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, isarerr.InvalidJson("%v", err)
	}
	return m, nil
}
