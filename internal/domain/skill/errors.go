package skill

import "errors"

// ErrInvalidTable reports a skill table that cannot be used.
var ErrInvalidTable = errors.New("invalid skill table")
