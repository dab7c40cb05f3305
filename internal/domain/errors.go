package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrMalformedRecord indicates a boundary event could not be parsed into
	// a typed record and was quarantined.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrCurrencyMismatch indicates a shipping option priced in a different
	// currency than its product; the selection is treated as unresolved.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)
