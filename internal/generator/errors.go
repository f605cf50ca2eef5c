package generator

import "errors"

var (
	// ErrOverloaded marks a transient failure worth retrying.
	ErrOverloaded = errors.New("generator: model overloaded")
	// ErrPermanent marks configuration or authorization failures.
	ErrPermanent = errors.New("generator: permanent failure")
	// ErrMalformed marks a reply that does not match the entry schema.
	ErrMalformed = errors.New("generator: malformed reply")
)
