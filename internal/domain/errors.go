package domain

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	// ErrUnavailable marks a store or upstream that cannot be reached; read paths recover from it locally.
	ErrUnavailable = errors.New("upstream unavailable")
)
