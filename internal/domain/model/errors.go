package model

import "errors"

// ErrInvalidArgument marks a caller contract violation. Engine components wrap
// it so callers can map it with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")
