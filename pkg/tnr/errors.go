package tnr

import "errors"

// ErrInvalidConfig is returned when Config.KPercent is outside [0,100].
var ErrInvalidConfig = errors.New("tnr: invalid config")

// ErrGraphStructure is returned when Preprocess is given a graph with no
// nodes.
var ErrGraphStructure = errors.New("tnr: invalid graph structure")
