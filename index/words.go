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

package index

import (
	"unicode"

	"github.com/rivo/uniseg"
)

// SegmentWords splits s into Unicode words per UAX #29, dropping segments
// that are pure whitespace or punctuation (a "word" boundary in uniseg's
// sense includes those as their own segments). Used by the Words index
// type (spec.md §3).
func SegmentWords(s string) []string {
	var out []string
	state := -1
	remaining := s
	for len(remaining) > 0 {
		segment, rest, newState := uniseg.FirstWordInString(remaining, state)
		if isWordSegment(segment) {
			out = append(out, segment)
		}
		remaining = rest
		state = newState
	}
	return out
}

func isWordSegment(seg string) bool {
	for _, r := range seg {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}
