// Package services defines the business logic for key generation, diffing
// and snapshot ingestion. This file centralizes service-level error values so
// that they can be returned consistently and checked by callers.
//
// Translation into HTTP status codes is performed at the handler layer.
package services

import "errors"

var (
	// ErrEmptySource is returned when an ingest names no source.
	ErrEmptySource = errors.New("source is empty")

	// ErrTooManyDiscounts is returned when a batch exceeds the configured
	// maximum size.
	ErrTooManyDiscounts = errors.New("too many discounts in batch")

	// ErrSnapshotNotFound indicates that the requested snapshot does not exist
	// for the source.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrInvalidKey is returned when a key fails format validation.
	ErrInvalidKey = errors.New("invalid key")
)
