package repository

import "errors"

// ErrVersionConflict is returned when an optimistic-concurrency write loses
// to a concurrent writer.
var ErrVersionConflict = errors.New("version conflict: post was modified concurrently")
