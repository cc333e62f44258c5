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

// WildMatch reports whether s matches pattern, where '*' matches zero or
// more runes and '?' matches exactly one. It is the classic two-pointer
// backtrack-with-star-fallback matcher (spec.md §4.G): each '*' remembers
// where it was seen and how far into s it has been allowed to consume;
// on a mismatch later in the pattern, matching resumes one rune further
// into s from the last '*' rather than re-walking the whole pattern,
// giving linear-ish behavior instead of the naive algorithm's blowup on
// patterns with many stars.
func WildMatch(pattern, s string) bool {
	pr := []rune(pattern)
	sr := []rune(s)
	pi, si := 0, 0
	starIdx, matchIdx := -1, 0

	for si < len(sr) {
		switch {
		case pi < len(pr) && (pr[pi] == '?' || pr[pi] == sr[si]):
			pi++
			si++
		case pi < len(pr) && pr[pi] == '*':
			starIdx = pi
			matchIdx = si
			pi++
		case starIdx != -1:
			pi = starIdx + 1
			matchIdx++
			si = matchIdx
		default:
			return false
		}
	}
	for pi < len(pr) && pr[pi] == '*' {
		pi++
	}
	return pi == len(pr)
}
