package dispatch

import "errors"

var ErrInvalidRadius = errors.New("invalid search radius")
