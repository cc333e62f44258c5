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

// Package isarerr declares the error taxonomy every public isardb operation
// returns through. Errors are values, classified into validation, state,
// environment, and corruption per the engine's error model; callers use
// errors.Is against the sentinels below.
package isarerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinels. Use errors.Is(err, isarerr.ErrUniqueViolated) etc. Wrapped errors
// built by the helpers below unwrap to these via Is/Unwrap.
var (
	ErrVersion                 = errors.New("isar: version error")
	ErrPath                    = errors.New("isar: path error")
	ErrDbFull                  = errors.New("isar: database is full")
	ErrUniqueViolated          = errors.New("isar: unique constraint violated")
	ErrWriteTxnRequired        = errors.New("isar: write transaction required")
	ErrAutoIncrementOverflow   = errors.New("isar: auto increment overflow")
	ErrAutoIncrementCannotGen  = errors.New("isar: auto increment cannot be generated for this id type")
	ErrInvalidObjectId         = errors.New("isar: invalid object id")
	ErrInvalidObject           = errors.New("isar: invalid object")
	ErrTransactionClosed       = errors.New("isar: transaction closed")
	ErrIllegalArg              = errors.New("isar: illegal argument")
	ErrUnknownIndex            = errors.New("isar: unknown index")
	ErrInvalidJson             = errors.New("isar: invalid json")
	ErrDbCorrupted             = errors.New("isar: database corrupted")
	ErrSchemaError             = errors.New("isar: schema error")
	ErrSchemaMismatch          = errors.New("isar: schema mismatch")
	ErrInstanceMismatch        = errors.New("isar: instance mismatch")
	ErrEngineError             = errors.New("isar: engine error")
)

// wrapped carries a sentinel plus a formatted message, and unwraps to the
// sentinel so errors.Is keeps working across the call stack.
type wrapped struct {
	sentinel error
	msg      string
}

func (w *wrapped) Error() string { return w.msg }
func (w *wrapped) Unwrap() error { return w.sentinel }

func newf(sentinel error, format string, args ...any) error {
	return &wrapped{sentinel: sentinel, msg: fmt.Sprintf("%s: %s", sentinel.Error(), fmt.Sprintf(format, args...))}
}

// IllegalArg builds a validation error carrying a free-form message, as
// spec.md's `IllegalArg{msg}` variant requires.
func IllegalArg(format string, args ...any) error { return newf(ErrIllegalArg, format, args...) }

func InvalidObject(format string, args ...any) error { return newf(ErrInvalidObject, format, args...) }

func InvalidObjectId(id int64) error {
	return newf(ErrInvalidObjectId, "id %d out of range", id)
}

func SchemaError(format string, args ...any) error { return newf(ErrSchemaError, format, args...) }

func InvalidJson(format string, args ...any) error { return newf(ErrInvalidJson, format, args...) }

// InstanceMismatch reports that a named instance is already open with
// options or a schema that conflict with this Open call.
func InstanceMismatch(format string, args ...any) error { return newf(ErrInstanceMismatch, format, args...) }

// SchemaMismatch reports that a schema could not be reconciled against the
// one already persisted for an instance.
func SchemaMismatch(format string, args ...any) error { return newf(ErrSchemaMismatch, format, args...) }

// DbCorrupted builds a corruption error from a formatted message and
// attaches a stack trace: an operator needs the
// call stack to make sense of a corruption report post-mortem, unlike a
// validation error the caller is expected to handle inline.
func DbCorrupted(format string, args ...any) error {
	return errors.WithStack(newf(ErrDbCorrupted, format, args...))
}

// EngineError wraps an error returned by the underlying mdbx engine with a
// stack trace. Unwrap yields ErrEngineError; the original error is kept
// and returned by Cause.
func EngineError(cause error, code int) error {
	return errors.WithStack(&engineErr{code: code, cause: cause})
}

type engineErr struct {
	code  int
	cause error
}

func (e *engineErr) Error() string {
	return fmt.Sprintf("isar: engine error (code %d): %v", e.code, e.cause)
}
func (e *engineErr) Unwrap() error { return ErrEngineError }
func (e *engineErr) Cause() error  { return e.cause }
