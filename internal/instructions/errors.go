package instructions

import "errors"

// ErrNotFound is returned when no instruction entry is registered under
// the requested name.
var ErrNotFound = errors.New("instructions not found")
