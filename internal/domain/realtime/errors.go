package realtime

import "errors"

// ErrInvalidSample is returned for readings with empty names or non-finite values.
var ErrInvalidSample = errors.New("invalid session sample")
