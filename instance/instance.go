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

// Package instance ties the engine, schema migration, collection
// construction, and watcher registry together behind one named handle
// (spec.md §4.J): Open/Close reference-count a singleton per name, a
// side-car flock file keeps two processes from opening the same file, and
// a weighted semaphore gates writers one at a time above the engine's own
// transaction lock.
package instance

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/isardb/isar/collection"
	"github.com/isardb/isar/index"
	"github.com/isardb/isar/internal/ilog"
	"github.com/isardb/isar/isarerr"
	"github.com/isardb/isar/keys"
	"github.com/isardb/isar/kv"
	"github.com/isardb/isar/link"
	"github.com/isardb/isar/object"
	"github.com/isardb/isar/schema"
	"github.com/isardb/isar/txn"
	"github.com/isardb/isar/watch"
)

// Options configures one instance's on-disk engine and runtime behavior.
type Options struct {
	// Directory holds the instance file, its lock side-car, and (on first
	// open after an upgrade) the legacy layout migrateLegacyLayout looks
	// for.
	Directory string
	RelaxedDurability bool
	MaxReaders        int
	MaxDBSizeBytes    int64
	// Logger receives index-rebuild diagnostics during migration. Defaults
	// to ilog.New() when nil.
	Logger *zap.SugaredLogger
}

// Instance is one open isardb database: its engine environment, resolved
// collection handles, and watcher registry.
type Instance struct {
	name string
	opts Options
	log  *zap.SugaredLogger

	env         *kv.Env
	lockFile    *flock.Flock
	writeSem    *semaphore.Weighted
	schema      schema.Schema
	collections map[string]*collection.Collection
	byID        map[uint16]*collection.Collection
	watchers    *watch.Registry

	mu       sync.Mutex
	refCount int
	closed   bool
}

// Name returns the instance's registered name.
func (inst *Instance) Name() string { return inst.name }

// Schema returns the fully-migrated schema currently in effect.
func (inst *Instance) Schema() schema.Schema { return inst.schema }

// Collection resolves a collection handle by name.
func (inst *Instance) Collection(name string) (*collection.Collection, bool) {
	c, ok := inst.collections[name]
	return c, ok
}

// Resolve adapts Collection to collection.Resolver, for JSON import/export
// that recurses through embedded Object/ObjectList properties.
func (inst *Instance) Resolve(name string) (*collection.Collection, bool) { return inst.Collection(name) }

// Watchers returns the instance's watcher registry.
func (inst *Instance) Watchers() *watch.Registry { return inst.watchers }

// Update runs fn inside one exclusive write transaction. The writer
// semaphore serializes Update callers above the engine's own txn lock, so
// ctx cancellation can abandon a queued writer before it ever touches
// mdbx. Watchers registered against changed collections fire after the
// underlying engine txn durably commits (spec.md §4.H, §4.I).
func (inst *Instance) Update(ctx context.Context, fn func(*txn.Txn) error) error {
	if err := inst.writeSem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer inst.writeSem.Release(1)

	kvTxn, err := inst.env.Begin(true)
	if err != nil {
		return err
	}
	t := txn.NewWrite(kvTxn, inst.watchers.Notify)
	if err := fn(t); err != nil {
		t.Abort()
		return err
	}
	return t.Commit()
}

// View runs fn inside a read-only transaction, always aborting afterward.
func (inst *Instance) View(fn func(*txn.Txn) error) error {
	kvTxn, err := inst.env.Begin(false)
	if err != nil {
		return err
	}
	t := txn.NewRead(kvTxn)
	defer t.Abort()
	return fn(t)
}

// Close releases this handle's reference. The underlying engine stays
// open until the last reference is released (spec.md §4.J).
func (inst *Instance) Close() error {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.closed {
		return nil
	}
	inst.refCount--
	if inst.refCount > 0 {
		return nil
	}
	return inst.shutdown()
}

// shutdown tears down the engine unconditionally. Caller holds inst.mu.
func (inst *Instance) shutdown() error {
	inst.closed = true
	unregister(inst.name)
	err := inst.env.Close()
	if inst.lockFile != nil {
		_ = inst.lockFile.Unlock()
	}
	return err
}

// CloseAndDelete closes the instance regardless of outstanding references
// and removes its backing file and lock side-car from disk (spec.md §4.J).
func (inst *Instance) CloseAndDelete() error {
	inst.mu.Lock()
	path := inst.env.Path()
	lockPath := path + ".lock"
	var closeErr error
	if !inst.closed {
		closeErr = inst.shutdown()
	}
	inst.mu.Unlock()

	_ = os.Remove(path)
	_ = os.Remove(lockPath)
	return closeErr
}

func readInfo(kvTxn *kv.Txn) (uint64, schema.Schema, bool, error) {
	verBytes, ok, err := kvTxn.Get(kv.TableInfo, []byte(kv.InfoKeyVersion))
	if err != nil {
		return 0, schema.Schema{}, false, err
	}
	if !ok {
		return 0, schema.Schema{}, false, nil
	}
	version := binary.LittleEndian.Uint64(verBytes)

	schemaBytes, ok, err := kvTxn.Get(kv.TableInfo, []byte(kv.InfoKeySchema))
	if err != nil {
		return 0, schema.Schema{}, false, err
	}
	if !ok {
		return version, schema.Schema{}, true, nil
	}
	old, err := schema.UnmarshalFromInfoStore(schemaBytes)
	if err != nil {
		return 0, schema.Schema{}, false, err
	}
	return version, old, true, nil
}

func writeInfo(kvTxn *kv.Txn, s schema.Schema) error {
	var verBytes [8]byte
	binary.LittleEndian.PutUint64(verBytes[:], kv.Version)
	if err := kvTxn.Put(kv.TableInfo, []byte(kv.InfoKeyVersion), verBytes[:]); err != nil {
		return err
	}
	schemaBytes, err := schema.MarshalForInfoStore(s)
	if err != nil {
		return err
	}
	return kvTxn.Put(kv.TableInfo, []byte(kv.InfoKeySchema), schemaBytes)
}

// dropCollection wipes every row, index entry, and link edge owned by one
// collection being removed from the schema (spec.md §4.C step 4).
func dropCollection(kvTxn *kv.Txn, c schema.CollectionSchema) error {
	for _, ix := range c.Indexes {
		if err := index.New(ix).Clear(kvTxn); err != nil {
			return err
		}
	}
	for _, l := range c.Links {
		if err := clearLinkHalf(kvTxn, l.ID); err != nil {
			return err
		}
		if err := clearLinkHalf(kvTxn, l.BacklinkID); err != nil {
			return err
		}
	}
	lower, upper := keys.IdRangeBounds(c.ID)
	cur, err := kvTxn.Cursor(kv.TablePrimary)
	if err != nil {
		return err
	}
	defer cur.Close()
	e, ok, err := cur.Seek(lower[:])
	if err != nil {
		return err
	}
	for ok && keys.CompareBytes(e.Key, upper[:]) <= 0 {
		if err := cur.DeleteCurrent(); err != nil {
			return err
		}
		e, ok, err = cur.Next()
		if err != nil {
			return err
		}
	}
	return nil
}

// clearLinkHalf deletes every Links-table entry keyed under one
// link/backlink id, regardless of source collection.
func clearLinkHalf(kvTxn *kv.Txn, linkOrBacklinkID uint16) error {
	lower := []byte{byte(linkOrBacklinkID >> 8), byte(linkOrBacklinkID)}
	upper := append(append([]byte{}, lower...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
	cur, err := kvTxn.Cursor(kv.TableLinks)
	if err != nil {
		return err
	}
	defer cur.Close()
	e, ok, err := cur.Seek(lower)
	if err != nil {
		return err
	}
	for ok && keys.CompareBytes(e.Key, upper) <= 0 {
		if err := cur.DeleteCurrent(); err != nil {
			return err
		}
		e, ok, err = cur.Next()
		if err != nil {
			return err
		}
	}
	return nil
}

// rebuildIndex recomputes every key for ix across every existing row of
// its owning collection (spec.md §4.C step 5). A uniqueness conflict
// surfaced while rebuilding is surprising this late — the displaced row's
// own write once passed this same check — so onReplace here only logs and
// still drops the older row, rather than failing the whole migration.
func rebuildIndex(kvTxn *kv.Txn, coll schema.CollectionSchema, ix schema.IndexSchema, log *zap.SugaredLogger) error {
	i := index.New(ix)
	lower, upper := keys.IdRangeBounds(coll.ID)
	cur, err := kvTxn.Cursor(kv.TablePrimary)
	if err != nil {
		return err
	}
	defer cur.Close()

	onReplace := func(t *kv.Txn, displacedID int64) error {
		log.Warnw("index rebuild displaced a row", "collection", coll.Name, "index", ix.Name, "id", displacedID)
		idValue, err := keys.EncodeId(coll.ID, displacedID)
		if err != nil {
			return err
		}
		return t.Delete(kv.TablePrimary, idValue[:])
	}

	e, ok, err := cur.Seek(lower[:])
	if err != nil {
		return err
	}
	for ok && keys.CompareBytes(e.Key, upper[:]) <= 0 {
		obj := object.FromBytes(e.Val)
		following := make([][]int, len(ix.Properties))
		for pi, ip := range ix.Properties {
			following[pi] = coll.FollowingDynamicOffsetsForOffset(ip.Property.Offset)
		}
		if err := i.CreateForObject(kvTxn, obj, following, e.Key, onReplace); err != nil {
			return err
		}
		e, ok, err = cur.Next()
		if err != nil {
			return err
		}
	}
	return nil
}

// maxObservedID scans the highest id currently stored for collectionID, so
// a reopened instance's auto-increment counter resumes above every
// existing row; a collection with no rows yields MinID (spec.md §4.C
// step 7).
func maxObservedID(kvTxn *kv.Txn, collectionID uint16) (int64, error) {
	_, upper := keys.IdRangeBounds(collectionID)
	cur, err := kvTxn.Cursor(kv.TablePrimary)
	if err != nil {
		return 0, err
	}
	defer cur.Close()

	e, ok, err := cur.Seek(upper[:])
	if err != nil {
		return 0, err
	}
	if ok && keys.CompareBytes(e.Key, upper[:]) > 0 {
		e, ok, err = cur.Prev()
	} else if !ok {
		e, ok, err = cur.Last()
	}
	if err != nil {
		return 0, err
	}
	if !ok {
		return keys.MinID, nil
	}
	gotColl, id, err := keys.DecodeId(e.Key)
	if err != nil {
		return 0, err
	}
	if gotColl != collectionID {
		return keys.MinID, nil
	}
	return id, nil
}

// buildCollections wires one collection.Collection per schema collection,
// resolving each one's own links and every other collection's link that
// targets it (spec.md §4.C step 7, §4.E).
func buildCollections(kvTxn *kv.Txn, s schema.Schema) (map[string]*collection.Collection, map[uint16]*collection.Collection, error) {
	byName := make(map[string]*collection.Collection, len(s.Collections))
	byID := make(map[uint16]*collection.Collection, len(s.Collections))

	for _, c := range s.Collections {
		var fwd []link.Link
		for _, l := range c.Links {
			fwd = append(fwd, link.New(l))
		}
		var inbound []link.Link
		for _, other := range s.Collections {
			for _, l := range other.Links {
				if l.TargetID == c.ID {
					inbound = append(inbound, link.New(l))
				}
			}
		}
		maxID, err := maxObservedID(kvTxn, c.ID)
		if err != nil {
			return nil, nil, err
		}
		handle := collection.New(c, fwd, inbound, maxID)
		byName[c.Name] = handle
		byID[c.ID] = handle
	}
	return byName, byID, nil
}

// Open opens (or returns a shared handle to) the named instance, migrating
// its persisted schema toward target if it already existed (spec.md §4.C,
// §4.J). A second Open of the same name with an incompatible schema or
// directory fails rather than silently reusing the wrong handle.
func Open(name string, target schema.Schema, opts Options) (*Instance, error) {
	if err := target.Verify(); err != nil {
		return nil, err
	}
	return acquire(name, target.Sorted(), opts)
}

// openNew performs the actual on-disk open: engine, lock file, schema
// migration, and collection construction. Called by registry.acquire only
// when no cached *Instance exists for name yet.
func openNew(name string, target schema.Schema, opts Options) (*Instance, error) {
	log := opts.Logger
	if log == nil {
		log = ilog.New()
	}

	if err := migrateLegacyLayout(opts.Directory, name); err != nil {
		return nil, err
	}

	path := filepath.Join(opts.Directory, name+".isar")
	lockFile := flock.New(path + ".lock")
	locked, err := lockFile.TryLock()
	if err != nil {
		return nil, isarerr.EngineError(err, 0)
	}
	if !locked {
		return nil, isarerr.InstanceMismatch("instance %q is already open in another process", name)
	}

	env, err := kv.Open(path, kv.InstanceTablesCfg, kv.Options{
		RelaxedDurability: opts.RelaxedDurability,
		MaxReaders:        opts.MaxReaders,
		MaxDBSizeBytes:    opts.MaxDBSizeBytes,
	})
	if err != nil {
		_ = lockFile.Unlock()
		return nil, err
	}

	var plan schema.Plan
	err = env.Update(func(kt *kv.Txn) error {
		kvTxn := kt
		_, old, existed, err := readInfo(kvTxn)
		if err != nil {
			return err
		}
		if !existed {
			old = schema.Schema{}
		}

		plan, err = schema.Migrate(old, target)
		if err != nil {
			return err
		}

		for _, dropped := range plan.DroppedCollections {
			if err := dropCollection(kvTxn, dropped); err != nil {
				return err
			}
		}
		for collID, indexes := range plan.ClearedIndexes {
			_ = collID
			for _, ix := range indexes {
				if err := index.New(ix).Clear(kvTxn); err != nil {
					return err
				}
			}
		}
		byID := make(map[uint16]schema.CollectionSchema, len(plan.Schema.Collections))
		for _, c := range plan.Schema.Collections {
			byID[c.ID] = c
		}
		for collID, indexes := range plan.RebuiltIndexes {
			coll := byID[collID]
			for _, ix := range indexes {
				if err := rebuildIndex(kvTxn, coll, ix, log); err != nil {
					return err
				}
			}
		}
		return writeInfo(kvTxn, plan.Schema)
	})
	if err != nil {
		_ = env.Close()
		_ = lockFile.Unlock()
		return nil, err
	}

	var collections map[string]*collection.Collection
	var byID map[uint16]*collection.Collection
	err = env.View(func(kt *kv.Txn) error {
		var buildErr error
		collections, byID, buildErr = buildCollections(kt, plan.Schema)
		return buildErr
	})
	if err != nil {
		_ = env.Close()
		_ = lockFile.Unlock()
		return nil, err
	}

	return &Instance{
		name:        name,
		opts:        opts,
		log:         log,
		env:         env,
		lockFile:    lockFile,
		writeSem:    semaphore.NewWeighted(1),
		schema:      plan.Schema,
		collections: collections,
		byID:        byID,
		watchers:    watch.NewRegistry(),
		refCount:    1,
	}, nil
}
