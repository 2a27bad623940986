package domain

import "errors"

// ErrInvalidInput marks a collaborator contract violation (malformed row
// shapes, negative volumes). Callers distinguish it from data sparsity,
// which degrades to neutral results instead of failing.
var ErrInvalidInput = errors.New("invalid input")
