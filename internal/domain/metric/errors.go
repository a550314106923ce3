package metric

import "errors"

// ErrMalformed reports metric input that is not numeric.
var ErrMalformed = errors.New("malformed metric input")
