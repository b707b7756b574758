package tnrquery

import "errors"

// ErrUnknownNode is returned when a query's source or target node is not
// part of the artifact's augmented graph.
var ErrUnknownNode = errors.New("tnrquery: unknown node")
