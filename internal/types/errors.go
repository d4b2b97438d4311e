package types

import "errors"

var (
	// ErrInvalidInput marks a rejected amount, odds, probability or
	// percentage. Always recoverable; no state is touched.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPersistence marks a durable write that did not complete. The
	// in-memory mutation has already happened and stays visible; the
	// next successful write reconciles the durable copy.
	ErrPersistence = errors.New("persistence failed")

	// ErrIndexOutOfRange marks a bet-slip removal outside the slip.
	ErrIndexOutOfRange = errors.New("index out of range")
)
