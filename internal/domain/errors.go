// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates a request failed business validation.
// Wrap with the field and reason: fmt.Errorf("%w: name: too long", ErrValidation).
var ErrValidation = errors.New("validation failed")

// ErrProvider indicates the external generation provider failed.
var ErrProvider = errors.New("provider error")
