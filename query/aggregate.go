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

package query

import (
	"github.com/isardb/isar/isarerr"
	"github.com/isardb/isar/object"
	"github.com/isardb/isar/txn"
)

// AggregateOp selects the reduction Aggregate performs over a query's
// emitted stream (spec.md §4.G).
type AggregateOp int

const (
	AggMin AggregateOp = iota
	AggMax
	AggSum
	AggAvg
	AggCount
)

// Aggregate reduces prop's values across q's emitted stream. Sum and
// average use the property's native arithmetic type; an empty stream
// yields the type's zero for Sum/Avg/Count, and nil for Min/Max.
func (q *Query) Aggregate(t *txn.Txn, op AggregateOp, prop object.Property, following []int) (any, error) {
	if op == AggCount {
		n := 0
		err := q.FindWhile(t, func(int64, object.IsarObject) (bool, error) {
			n++
			return true, nil
		})
		return n, err
	}
	if !isNumeric(prop.Type) {
		return nil, isarerr.IllegalArg("aggregate requires a numeric property, got %s", prop.Type)
	}

	var sum float64
	var longSum int64 // exact running sum for Long; float64 loses precision above 2^53
	var count int
	var minV, maxV float64
	haveExtreme := false

	err := q.FindWhile(t, func(_ int64, obj object.IsarObject) (bool, error) {
		v := readNumeric(obj, prop)
		sum += v
		if prop.Type == object.Long {
			longSum += obj.ReadLong(prop.Offset)
		}
		count++
		if !haveExtreme || v < minV {
			minV = v
		}
		if !haveExtreme || v > maxV {
			maxV = v
		}
		haveExtreme = true
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	switch op {
	case AggSum:
		if prop.Type == object.Long {
			return longSum, nil
		}
		return castNumeric(prop.Type, sum), nil
	case AggAvg:
		if count == 0 {
			return castNumeric(prop.Type, 0), nil
		}
		if prop.Type == object.Long {
			return longSum / int64(count), nil
		}
		return castNumeric(prop.Type, sum/float64(count)), nil
	case AggMin:
		if !haveExtreme {
			return nil, nil
		}
		return castNumeric(prop.Type, minV), nil
	case AggMax:
		if !haveExtreme {
			return nil, nil
		}
		return castNumeric(prop.Type, maxV), nil
	default:
		return nil, isarerr.IllegalArg("unknown aggregate op %d", op)
	}
}

func isNumeric(t object.DataType) bool {
	switch t {
	case object.Byte, object.Int, object.Long, object.Float, object.Double:
		return true
	default:
		return false
	}
}

func readNumeric(obj object.IsarObject, p object.Property) float64 {
	switch p.Type {
	case object.Byte:
		return float64(obj.ReadByte(p.Offset))
	case object.Int:
		return float64(obj.ReadInt(p.Offset))
	case object.Long:
		return float64(obj.ReadLong(p.Offset))
	case object.Float:
		return float64(obj.ReadFloat(p.Offset))
	case object.Double:
		return obj.ReadDouble(p.Offset)
	default:
		return 0
	}
}

func castNumeric(t object.DataType, v float64) any {
	switch t {
	case object.Byte:
		return byte(v)
	case object.Int:
		return int32(v)
	case object.Long:
		return int64(v)
	case object.Float:
		return float32(v)
	case object.Double:
		return v
	default:
		return v
	}
}
