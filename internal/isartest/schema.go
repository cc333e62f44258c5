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

// Package isartest holds fixtures shared by this module's package tests: a
// small migrated two-collection schema (users linked to posts) that
// exercises a unique string hash index and a link in one shot, so
// individual package tests don't each hand-roll their own CollectionSchema
// literals.
package isartest

import (
	"github.com/isardb/isar/object"
	"github.com/isardb/isar/schema"
)

// UsersPostsSchema returns the post-migration (ids and offsets assigned)
// schema for two collections: "users" (id, name indexed unique, age) with
// a "posts" link, and "posts" (id, title) with an inbound backlink to
// users. Call Migrate on schema.Schema{} to get fresh ids deterministically
// seeded the same way instance.Open would on first run.
func UsersPostsSchema() (schema.Schema, error) {
	target := schema.Schema{Collections: []schema.CollectionSchema{
		{
			Name: "users",
			Properties: []schema.PropertySchema{
				{Name: "id", Type: object.Long},
				{Name: "name", Type: object.String},
				{Name: "age", Type: object.Int},
			},
			Indexes: []schema.IndexSchema{{
				Name:   "name_unique",
				Unique: true,
				Properties: []schema.IndexedProperty{{
					Property: schema.PropertySchema{Name: "name", Type: object.String},
					Type:     schema.Hash,
				}},
			}},
			Links: []schema.LinkSchema{{Name: "posts", TargetName: "posts"}},
		},
		{
			Name: "posts",
			Properties: []schema.PropertySchema{
				{Name: "id", Type: object.Long},
				{Name: "title", Type: object.String},
			},
		},
	}}

	plan, err := schema.Migrate(schema.Schema{}, target)
	if err != nil {
		return schema.Schema{}, err
	}
	return plan.Schema, nil
}
