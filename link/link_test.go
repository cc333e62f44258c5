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

package link

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/isardb/isar/internal/isartest"
	"github.com/isardb/isar/keys"
	"github.com/isardb/isar/kv"
	"github.com/isardb/isar/object"
	"github.com/isardb/isar/schema"
)

const (
	usersCollectionID uint16 = 1
	postsCollectionID uint16 = 2
)

// putRow writes a minimal object (2-byte header, no dynamic data) into the
// primary store under (collectionID, id), so link.Iter's target-row fetch
// has something to find.
func putRow(t *testing.T, txn *kv.Txn, collectionID uint16, id int64) {
	t.Helper()
	key, err := keys.EncodeId(collectionID, id)
	require.NoError(t, err)
	b := object.NewBuilder(2)
	require.NoError(t, txn.Put(kv.TablePrimary, key[:], b.Finish().Bytes))
}

func testLinkSchema() schema.LinkSchema {
	return schema.LinkSchema{
		ID: 10, BacklinkID: 11,
		Name: "posts", TargetName: "posts",
		SourceID: usersCollectionID, TargetID: postsCollectionID,
	}
}

func collectTargets(t *testing.T, txn *kv.Txn, l Link, sourceID int64) []int64 {
	t.Helper()
	var got []int64
	require.NoError(t, l.Iter(txn, sourceID, func(targetID int64, obj object.IsarObject) (bool, error) {
		got = append(got, targetID)
		return true, nil
	}))
	return got
}

func TestLinkAndIter(t *testing.T) {
	require := require.New(t)
	env := isartest.OpenEnv(t)
	l := New(testLinkSchema())

	require.NoError(env.Update(func(txn *kv.Txn) error {
		putRow(t, txn, postsCollectionID, 100)
		putRow(t, txn, postsCollectionID, 200)
		if err := l.Link(txn, 1, 100); err != nil {
			return err
		}
		return l.Link(txn, 1, 200)
	}))

	require.NoError(env.View(func(txn *kv.Txn) error {
		got := collectTargets(t, txn, l, 1)
		require.ElementsMatch([]int64{100, 200}, got)
		return nil
	}))
}

func TestUnlinkRemovesOnlyThatEdge(t *testing.T) {
	require := require.New(t)
	env := isartest.OpenEnv(t)
	l := New(testLinkSchema())

	require.NoError(env.Update(func(txn *kv.Txn) error {
		putRow(t, txn, postsCollectionID, 100)
		putRow(t, txn, postsCollectionID, 200)
		require.NoError(l.Link(txn, 1, 100))
		require.NoError(l.Link(txn, 1, 200))
		return l.Unlink(txn, 1, 100)
	}))

	require.NoError(env.View(func(txn *kv.Txn) error {
		got := collectTargets(t, txn, l, 1)
		require.Equal([]int64{200}, got)
		return nil
	}))

	// The backward edge for 100 must be gone too.
	require.NoError(env.View(func(txn *kv.Txn) error {
		c, err := txn.Cursor(kv.TableLinks)
		require.NoError(err)
		defer c.Close()
		bwdKey, err := edgeKey(l.Schema.BacklinkID, l.Schema.TargetID, 100)
		require.NoError(err)
		_, ok, err := c.SeekExact(bwdKey)
		require.NoError(err)
		require.False(ok)
		return nil
	}))
}

func TestUnlinkAllRemovesEveryForwardAndBackwardEdge(t *testing.T) {
	require := require.New(t)
	env := isartest.OpenEnv(t)
	l := New(testLinkSchema())

	require.NoError(env.Update(func(txn *kv.Txn) error {
		putRow(t, txn, postsCollectionID, 100)
		putRow(t, txn, postsCollectionID, 200)
		putRow(t, txn, postsCollectionID, 300)
		require.NoError(l.Link(txn, 1, 100))
		require.NoError(l.Link(txn, 1, 200))
		require.NoError(l.Link(txn, 2, 300)) // unrelated source, must survive
		return l.UnlinkAll(txn, 1)
	}))

	require.NoError(env.View(func(txn *kv.Txn) error {
		require.Empty(collectTargets(t, txn, l, 1))
		require.Equal([]int64{300}, collectTargets(t, txn, l, 2))
		return nil
	}))
}

func TestUnlinkAllByTargetCascadesInboundEdges(t *testing.T) {
	require := require.New(t)
	env := isartest.OpenEnv(t)
	l := New(testLinkSchema())

	// Two different sources (users 1 and 2) both link to the same target
	// (post 100); deleting post 100 should cascade-remove both forward
	// edges, mirroring collection.cascadeUnlink's inbound-link handling.
	require.NoError(env.Update(func(txn *kv.Txn) error {
		putRow(t, txn, postsCollectionID, 100)
		putRow(t, txn, postsCollectionID, 200)
		require.NoError(l.Link(txn, 1, 100))
		require.NoError(l.Link(txn, 2, 100))
		require.NoError(l.Link(txn, 1, 200))
		return l.UnlinkAllByTarget(txn, 100)
	}))

	require.NoError(env.View(func(txn *kv.Txn) error {
		require.Equal([]int64{200}, collectTargets(t, txn, l, 1))
		require.Empty(collectTargets(t, txn, l, 2))
		return nil
	}))
}

func TestUpdateAllReconcilesTargetSet(t *testing.T) {
	require := require.New(t)
	env := isartest.OpenEnv(t)
	l := New(testLinkSchema())

	require.NoError(env.Update(func(txn *kv.Txn) error {
		for _, id := range []int64{100, 200, 300} {
			putRow(t, txn, postsCollectionID, id)
		}
		require.NoError(l.Link(txn, 1, 100))
		require.NoError(l.Link(txn, 1, 200))
		// Remove 100, keep 200, add 300: final set should be {200, 300}.
		return l.UpdateAll(txn, 1, []int64{300}, []int64{100})
	}))

	require.NoError(env.View(func(txn *kv.Txn) error {
		require.ElementsMatch([]int64{200, 300}, collectTargets(t, txn, l, 1))
		return nil
	}))
}

func TestIterStopsWhenCallbackReturnsFalse(t *testing.T) {
	require := require.New(t)
	env := isartest.OpenEnv(t)
	l := New(testLinkSchema())

	require.NoError(env.Update(func(txn *kv.Txn) error {
		putRow(t, txn, postsCollectionID, 100)
		putRow(t, txn, postsCollectionID, 200)
		require.NoError(l.Link(txn, 1, 100))
		return l.Link(txn, 1, 200)
	}))

	require.NoError(env.View(func(txn *kv.Txn) error {
		var seen int
		err := l.Iter(txn, 1, func(targetID int64, obj object.IsarObject) (bool, error) {
			seen++
			return false, nil
		})
		require.NoError(err)
		require.Equal(1, seen)
		return nil
	}))
}

func TestIterReportsCorruptionOnMissingTargetRow(t *testing.T) {
	require := require.New(t)
	env := isartest.OpenEnv(t)
	l := New(testLinkSchema())

	require.NoError(env.Update(func(txn *kv.Txn) error {
		// Link to a target id whose primary row was never written.
		return l.Link(txn, 1, 999)
	}))

	err := env.View(func(txn *kv.Txn) error {
		return l.Iter(txn, 1, func(targetID int64, obj object.IsarObject) (bool, error) {
			return true, nil
		})
	})
	require.Error(err)
}
