package model

import "errors"

// ErrNotFound is returned when a lookup by GUID or short id has no match.
var ErrNotFound = errors.New("not found")

// ErrStorageUnavailable is returned when the storage backend cannot be
// reached. Callers must either fall back to another backend or fail the
// operation explicitly; silent data loss is not allowed.
var ErrStorageUnavailable = errors.New("storage unavailable")
