package chorder

import "errors"

// ErrEmptyGraph is returned by Contract when given a graph with no nodes.
var ErrEmptyGraph = errors.New("chorder: graph has no nodes")
