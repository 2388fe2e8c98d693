package domain

import "errors"

var (
	// ErrProductNotFound is returned when every source has been exhausted
	// without an answer. Callers match on "not found" in the message, so
	// the text is part of the contract.
	ErrProductNotFound = errors.New("product not found in any source")

	// ErrSourceUnavailable is returned by a source client on transport or
	// upstream failure. The resolver treats it as "no answer from this
	// source" and never surfaces it.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrCacheMiss is returned when a barcode has no cached record.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidBarcode is returned for an empty or malformed barcode.
	ErrInvalidBarcode = errors.New("invalid barcode")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")
)
