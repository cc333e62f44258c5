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

// Package query implements the where-clause/filter/sort/distinct pipeline
// (spec.md §4.G) on top of the collection, index, and link packages.
package query

import (
	"math"
	"strings"

	"github.com/isardb/isar/kv"
	"github.com/isardb/isar/link"
	"github.com/isardb/isar/object"
)

// EvalContext carries the resources a filter needs beyond the candidate
// object itself: a raw engine txn for link traversal's secondary cursors,
// kept separate from the outer iteration's cursor so a link(…) predicate
// can never invalidate it.
type EvalContext struct {
	KV *kv.Txn
}

type filterOp int

const (
	opAnd filterOp = iota
	opOr
	opNot
	opStatic
	opLeaf
)

// Filter is a tree of And/Or/Not/Static combinators over leaf Predicates
// (spec.md §4.G).
type Filter struct {
	op        filterOp
	children  []Filter
	staticVal bool
	leaf      Predicate
}

// Predicate evaluates one leaf condition against a candidate object and
// its id.
type Predicate interface {
	Eval(obj object.IsarObject, id int64, ctx *EvalContext) (bool, error)
}

func And(children ...Filter) Filter { return Filter{op: opAnd, children: children} }
func Or(children ...Filter) Filter  { return Filter{op: opOr, children: children} }
func Not(child Filter) Filter       { return Filter{op: opNot, children: []Filter{child}} }
func StaticBool(v bool) Filter      { return Filter{op: opStatic, staticVal: v} }
func Leaf(p Predicate) Filter       { return Filter{op: opLeaf, leaf: p} }

// IsZero reports whether f is the unset Filter value, used to mean "no
// filter" throughout the query package.
func (f Filter) IsZero() bool {
	return f.op == opAnd && f.children == nil && f.leaf == nil && !f.staticVal
}

func (f Filter) eval(obj object.IsarObject, id int64, ctx *EvalContext) (bool, error) {
	switch f.op {
	case opAnd:
		for _, c := range f.children {
			ok, err := c.eval(obj, id, ctx)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case opOr:
		for _, c := range f.children {
			ok, err := c.eval(obj, id, ctx)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case opNot:
		ok, err := f.children[0].eval(obj, id, ctx)
		return !ok, err
	case opStatic:
		return f.staticVal, nil
	case opLeaf:
		return f.leaf.Eval(obj, id, ctx)
	default:
		return false, nil
	}
}

// containsLink reports whether any leaf in the tree is a link traversal,
// used to decide whether a query watcher must degrade to "fire on any
// change" (spec.md §4.I).
func (f Filter) containsLink() bool {
	if f.op == opLeaf {
		_, ok := f.leaf.(LinkPredicate)
		return ok
	}
	for _, c := range f.children {
		if c.containsLink() {
			return true
		}
	}
	return false
}

func isNull(obj object.IsarObject, p object.Property, following []int) bool {
	switch p.Type {
	case object.Bool:
		return obj.ReadBool(p.Offset) == object.NullBool
	case object.Byte:
		return false
	case object.Int:
		return obj.ReadInt(p.Offset) == object.NullInt
	case object.Long:
		return obj.ReadLong(p.Offset) == object.NullLong
	case object.Float:
		return math.IsNaN(float64(obj.ReadFloat(p.Offset)))
	case object.Double:
		return math.IsNaN(obj.ReadDouble(p.Offset))
	case object.String:
		return obj.ReadString(p.Offset, following) == nil
	case object.Object:
		return obj.ReadObjectBytes(p.Offset, following) == nil
	case object.BoolList, object.ByteList:
		return obj.ReadByteList(p.Offset, following) == nil
	case object.IntList:
		return obj.ReadIntList(p.Offset, following) == nil
	case object.LongList:
		return obj.ReadLongList(p.Offset, following) == nil
	case object.FloatList:
		return obj.ReadFloatList(p.Offset, following) == nil
	case object.DoubleList:
		return obj.ReadDoubleList(p.Offset, following) == nil
	case object.StringList:
		return obj.ReadStringList(p.Offset, following) == nil
	case object.ObjectList:
		return obj.ReadObjectList(p.Offset, following) == nil
	default:
		return false
	}
}

// IsNullPredicate matches a property whose value is null (spec.md §4.G).
type IsNullPredicate struct {
	Prop      object.Property
	Following []int
}

func (p IsNullPredicate) Eval(obj object.IsarObject, _ int64, _ *EvalContext) (bool, error) {
	return isNull(obj, p.Prop, p.Following), nil
}

// ByteBetween, IntBetween, LongBetween match a scalar between two bounds
// inclusive.
type ByteBetween struct {
	Prop         object.Property
	Lower, Upper byte
}

func (p ByteBetween) Eval(obj object.IsarObject, _ int64, _ *EvalContext) (bool, error) {
	v := obj.ReadByte(p.Prop.Offset)
	return v >= p.Lower && v <= p.Upper, nil
}

type IntBetween struct {
	Prop         object.Property
	Lower, Upper int32
}

func (p IntBetween) Eval(obj object.IsarObject, _ int64, _ *EvalContext) (bool, error) {
	v := obj.ReadInt(p.Prop.Offset)
	return v >= p.Lower && v <= p.Upper, nil
}

type LongBetween struct {
	Prop         object.Property
	Lower, Upper int64
}

func (p LongBetween) Eval(obj object.IsarObject, _ int64, _ *EvalContext) (bool, error) {
	v := obj.ReadLong(p.Prop.Offset)
	return v >= p.Lower && v <= p.Upper, nil
}

// floatBetween implements spec.md §4.G's NaN bound rules: an upper bound of
// NaN matches nothing unless the lower bound is also NaN, in which case only
// NaN values match; a lower bound of NaN is treated as negative infinity.
func floatBetween(v, lower, upper float64) bool {
	if math.IsNaN(upper) {
		if math.IsNaN(lower) {
			return math.IsNaN(v)
		}
		return false
	}
	if math.IsNaN(lower) {
		lower = math.Inf(-1)
	}
	if math.IsNaN(v) {
		return false
	}
	return v >= lower && v <= upper
}

type FloatBetween struct {
	Prop         object.Property
	Lower, Upper float32
}

func (p FloatBetween) Eval(obj object.IsarObject, _ int64, _ *EvalContext) (bool, error) {
	v := obj.ReadFloat(p.Prop.Offset)
	return floatBetween(float64(v), float64(p.Lower), float64(p.Upper)), nil
}

type DoubleBetween struct {
	Prop         object.Property
	Lower, Upper float64
}

func (p DoubleBetween) Eval(obj object.IsarObject, _ int64, _ *EvalContext) (bool, error) {
	v := obj.ReadDouble(p.Prop.Offset)
	return floatBetween(v, p.Lower, p.Upper), nil
}

// StringOp selects a string leaf's comparison kind.
type StringOp int

const (
	StringEquals StringOp = iota
	StringStartsWith
	StringEndsWith
	StringContains
	StringMatches
)

type StringPredicate struct {
	Prop          object.Property
	Following     []int
	Op            StringOp
	Value         string
	CaseSensitive bool
}

func (p StringPredicate) Eval(obj object.IsarObject, _ int64, _ *EvalContext) (bool, error) {
	s := obj.ReadString(p.Prop.Offset, p.Following)
	if s == nil {
		return false, nil
	}
	return matchString(*s, p.Value, p.Op, p.CaseSensitive), nil
}

func matchString(s, value string, op StringOp, caseSensitive bool) bool {
	if !caseSensitive {
		s = strings.ToLower(s)
		value = strings.ToLower(value)
	}
	switch op {
	case StringEquals:
		return s == value
	case StringStartsWith:
		return strings.HasPrefix(s, value)
	case StringEndsWith:
		return strings.HasSuffix(s, value)
	case StringContains:
		return strings.Contains(s, value)
	case StringMatches:
		return WildMatch(value, s)
	default:
		return false
	}
}

// StringListContains matches if any element of a string-list property
// equals value.
type StringListContains struct {
	Prop          object.Property
	Following     []int
	Value         string
	CaseSensitive bool
}

func (p StringListContains) Eval(obj object.IsarObject, _ int64, _ *EvalContext) (bool, error) {
	list := obj.ReadStringList(p.Prop.Offset, p.Following)
	for _, s := range list {
		if s == nil {
			continue
		}
		if matchString(*s, p.Value, StringEquals, p.CaseSensitive) {
			return true, nil
		}
	}
	return false, nil
}

// ByteListContains, IntListContains, LongListContains match if any element
// of a primitive-list property equals value.
type ByteListContains struct {
	Prop      object.Property
	Following []int
	Value     byte
}

func (p ByteListContains) Eval(obj object.IsarObject, _ int64, _ *EvalContext) (bool, error) {
	for _, v := range obj.ReadByteList(p.Prop.Offset, p.Following) {
		if v == p.Value {
			return true, nil
		}
	}
	return false, nil
}

type IntListContains struct {
	Prop      object.Property
	Following []int
	Value     int32
}

func (p IntListContains) Eval(obj object.IsarObject, _ int64, _ *EvalContext) (bool, error) {
	for _, v := range obj.ReadIntList(p.Prop.Offset, p.Following) {
		if v == p.Value {
			return true, nil
		}
	}
	return false, nil
}

type LongListContains struct {
	Prop      object.Property
	Following []int
	Value     int64
}

func (p LongListContains) Eval(obj object.IsarObject, _ int64, _ *EvalContext) (bool, error) {
	for _, v := range obj.ReadLongList(p.Prop.Offset, p.Following) {
		if v == p.Value {
			return true, nil
		}
	}
	return false, nil
}

// LinkPredicate matches iff some object reachable through Link satisfies
// Inner (spec.md §4.G). Traversal uses ctx's raw engine txn directly so it
// never touches the outer iteration's cursor pool slot.
type LinkPredicate struct {
	Link  link.Link
	Inner Filter
}

func (p LinkPredicate) Eval(_ object.IsarObject, id int64, ctx *EvalContext) (bool, error) {
	matched := false
	err := p.Link.Iter(ctx.KV, id, func(targetID int64, tobj object.IsarObject) (bool, error) {
		ok, err := p.Inner.eval(tobj, targetID, ctx)
		if err != nil {
			return false, err
		}
		if ok {
			matched = true
			return false, nil
		}
		return true, nil
	})
	return matched, err
}
