package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about rows, not validation failures:
// - ErrNotFound: entity does not exist in the store
// - ErrConflict: a uniqueness or protection constraint refused the write
// - ErrInvalidState: entity in wrong lifecycle state for the operation
// - ErrUnavailable: datastore temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
