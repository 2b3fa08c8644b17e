package depgraph

import "errors"

// ErrEmptyPath is returned when an edge is recorded with an empty endpoint.
var ErrEmptyPath = errors.New("depgraph: empty path")
