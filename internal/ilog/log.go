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

// Package ilog is the thin zap wrapper threaded through migration, index
// rebuild, and watcher dispatch, the way erigon-lib/log wraps zap for the
// rest of that codebase.
package ilog

import "go.uber.org/zap"

// New builds a development-mode sugared logger. Callers that want
// production encoding or a different sink should build their own
// *zap.Logger and pass its Sugar() to instance.Options.Logger instead.
func New() *zap.SugaredLogger {
	l, err := zap.NewDevelopment()
	if err != nil {
		l = zap.NewNop()
	}
	return l.Sugar()
}

// Nop returns a logger that discards everything, used in tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
