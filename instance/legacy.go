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
	"os"
	"path/filepath"
)

// legacyDataFile is the data file name the pre-NoSubDir layout wrote
// inside its own per-instance directory (one mdbx environment per
// subdirectory, rather than today's single <name>.isar file).
const legacyDataFile = "mdbx.dat"

// migrateLegacyLayout renames an older <dir>/<name>/mdbx.dat environment
// into today's <dir>/<name>.isar single-file layout, if the legacy
// directory exists and the new-style file doesn't yet (spec.md §6's
// external interfaces keep the same instance name across an on-disk
// layout change). A best-effort, one-shot migration: once the rename
// succeeds the old directory is removed; any failure leaves the legacy
// layout untouched so the next Open can retry.
func migrateLegacyLayout(dir, name string) error {
	newPath := filepath.Join(dir, name+".isar")
	if _, err := os.Stat(newPath); err == nil {
		return nil // already migrated
	}

	legacyDir := filepath.Join(dir, name)
	legacyPath := filepath.Join(legacyDir, legacyDataFile)
	info, err := os.Stat(legacyPath)
	if err != nil || info.IsDir() {
		return nil // no legacy layout to migrate
	}

	if err := os.Rename(legacyPath, newPath); err != nil {
		return err
	}
	_ = os.RemoveAll(legacyDir)
	return nil
}
