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

package isartest

import (
	"path/filepath"
	"testing"

	"github.com/isardb/isar/kv"
)

// OpenEnv opens a real mdbx-backed environment under t.TempDir with the
// standard instance table layout, and registers t.Cleanup to close it. It
// lets package tests outside kv/instance exercise real *kv.Txn operations
// (link edges, index entries) without standing up a full instance.Open.
func OpenEnv(t *testing.T) *kv.Env {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.isar")
	env, err := kv.Open(path, kv.InstanceTablesCfg, kv.Options{})
	if err != nil {
		t.Fatalf("kv.Open: %v", err)
	}
	t.Cleanup(func() { _ = env.Close() })
	return env
}
