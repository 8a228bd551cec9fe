package api

import "errors"

// ErrUnknownLayer is returned when a surface operation references a layer
// the hub never created.
var ErrUnknownLayer = errors.New("unknown layer id")
