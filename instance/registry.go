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

package instance

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/isardb/isar/isarerr"
	"github.com/isardb/isar/schema"
)

// registered tracks one name's shared *Instance plus the inputs that must
// match across repeat Open calls before the handle can be reused.
type registered struct {
	inst       *Instance
	schemaHash uint64
	directory  string
}

var (
	registryMu sync.Mutex
	registry   = map[string]*registered{}
)

// schemaHash hashes a schema's caller-facing JSON shape (names, types,
// index/link declarations), which is stable across Open calls for the
// same logical schema even though ids are assigned fresh on first open.
func schemaHash(s schema.Schema) (uint64, error) {
	data, err := s.ToJSON()
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}

// acquire returns the shared *Instance for name, opening it if this is the
// first reference, and bumping its ref count otherwise. A second Open for
// an already-open name with a different schema or directory fails with
// ErrSchemaMismatch/ErrInstanceMismatch rather than silently handing back
// a handle that doesn't match what the caller asked for (spec.md §4.J).
func acquire(name string, target schema.Schema, opts Options) (*Instance, error) {
	h, err := schemaHash(target)
	if err != nil {
		return nil, err
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if r, ok := registry[name]; ok {
		if r.directory != opts.Directory {
			return nil, isarerr.InstanceMismatch("instance %q already open from directory %q", name, r.directory)
		}
		if r.schemaHash != h {
			return nil, isarerr.SchemaMismatch("instance %q already open with a different schema", name)
		}
		r.inst.mu.Lock()
		r.inst.refCount++
		r.inst.mu.Unlock()
		return r.inst, nil
	}

	inst, err := openNew(name, target, opts)
	if err != nil {
		return nil, err
	}
	registry[name] = &registered{inst: inst, schemaHash: h, directory: opts.Directory}
	return inst, nil
}

// unregister drops name's entry once its last reference closes. Safe to
// call even if name was never registered (CloseAndDelete after a failed
// reopen).
func unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, name)
}

// Lookup returns the currently-open instance for name, if any, without
// affecting its ref count — for callers (like the CLI) that want to peek
// at an instance another part of the process already opened.
func Lookup(name string) (*Instance, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	r, ok := registry[name]
	if !ok {
		return nil, false
	}
	return r.inst, true
}
