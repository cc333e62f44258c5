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

package kv

import (
	"fmt"
	"os"

	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/isardb/isar/isarerr"
)

// Options configures the mdbx environment backing one isardb instance.
type Options struct {
	// RelaxedDurability asks the engine to skip the meta-page fsync on
	// commit (spec.md §9, open question 3): faster writes, a crash can lose
	// the last few commits but never corrupts the file.
	RelaxedDurability bool
	// MaxReaders bounds concurrent read transactions. Zero uses the
	// engine's default.
	MaxReaders int
	// MaxDBSizeBytes bounds the memory-mapped region. Zero uses the
	// engine's default growth policy.
	MaxDBSizeBytes int64
}

// Env wraps one mdbx environment (one isardb instance's on-disk file) and
// the fixed set of tables opened inside it.
type Env struct {
	env   *mdbx.Env
	dbis  map[string]mdbx.DBI
	path  string
}

// Open creates or opens the mdbx environment at path with the given table
// layout. path is the full file path (e.g. "<dir>/<name>.isar"); NoSubDir
// keeps mdbx from treating it as a directory.
func Open(path string, cfg TableCfg, opts Options) (*Env, error) {
	env, err := mdbx.NewEnv()
	if err != nil {
		return nil, isarerr.EngineError(err, 0)
	}

	maxDBs := len(cfg)
	if err := env.SetOption(mdbx.OptMaxDB, uint64(maxDBs)); err != nil {
		return nil, isarerr.EngineError(err, 0)
	}
	if opts.MaxReaders > 0 {
		if err := env.SetOption(mdbx.OptMaxReaders, uint64(opts.MaxReaders)); err != nil {
			return nil, isarerr.EngineError(err, 0)
		}
	}
	if opts.MaxDBSizeBytes > 0 {
		if err := env.SetGeometry(-1, -1, int(opts.MaxDBSizeBytes), -1, -1, -1); err != nil {
			return nil, isarerr.EngineError(err, 0)
		}
	}

	flags := uint(mdbx.NoSubdir)
	if opts.RelaxedDurability {
		flags |= uint(mdbx.SafeNoSync)
	}

	if err := env.Open(path, flags, 0664); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", isarerr.ErrPath, path)
		}
		return nil, isarerr.EngineError(err, 0)
	}

	e := &Env{env: env, dbis: make(map[string]mdbx.DBI, len(cfg)), path: path}
	if err := e.createTables(cfg); err != nil {
		_ = env.Close()
		return nil, err
	}
	return e, nil
}

func (e *Env) createTables(cfg TableCfg) error {
	return e.env.Update(func(txn *mdbx.Txn) error {
		for name, item := range cfg {
			flags := uint(mdbx.Create)
			if item.Flags&DupSort != 0 {
				flags |= uint(mdbx.DupSort)
			}
			dbi, err := txn.OpenDBI(name, flags, nil, nil)
			if err != nil {
				return err
			}
			e.dbis[name] = dbi
		}
		return nil
	})
}

// Close flushes and closes the environment.
func (e *Env) Close() error {
	e.env.Close()
	return nil
}

// Path returns the file path this environment was opened with.
func (e *Env) Path() string { return e.path }

// Begin starts a transaction. Write transactions are exclusive; read
// transactions run concurrently with any number of other reads and with an
// in-flight write (MVCC).
func (e *Env) Begin(writable bool) (*Txn, error) {
	flags := uint(0)
	if !writable {
		flags = mdbx.Readonly
	}
	txn, err := e.env.BeginTxn(nil, flags)
	if err != nil {
		return nil, isarerr.EngineError(err, 0)
	}
	return &Txn{txn: txn, env: e, writable: writable}, nil
}

// Update runs fn inside a write transaction, committing on success and
// aborting on any error (including a panic, which it re-raises after
// aborting).
func (e *Env) Update(fn func(*Txn) error) error {
	t, err := e.Begin(true)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			t.Abort()
			panic(r)
		}
	}()
	if err := fn(t); err != nil {
		t.Abort()
		return err
	}
	return t.Commit()
}

// View runs fn inside a read-only transaction, always aborting afterward
// (reads never commit).
func (e *Env) View(fn func(*Txn) error) error {
	t, err := e.Begin(false)
	if err != nil {
		return err
	}
	defer t.Abort()
	return fn(t)
}
