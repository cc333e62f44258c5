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

// LinkSchema is one many-to-many link: a stable id paired with a backlink
// id, the source collection's id, and the target collection's id.
type LinkSchema struct {
	ID           uint16
	BacklinkID   uint16
	Name         string
	TargetName   string
	SourceID     uint16
	TargetID     uint16
}
