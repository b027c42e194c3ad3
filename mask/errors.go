// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package mask

import "github.com/pkg/errors"

var (
	// ErrInvalidInterval indicates an interval with Begin > End.  It is
	// reported when events are derived, before anything is sorted.
	ErrInvalidInterval = errors.New("mask: interval begin is after its end")
	// ErrUnderflow indicates a close event was seen while no interval was
	// open.  This can only happen if the event stream is internally
	// inconsistent, e.g. because a comparator is not a consistent order.
	ErrUnderflow = errors.New("mask: overlap level underflow")
	// ErrBoundaryViolation indicates the boundaries do not bracket the
	// intervals: some interval crosses a boundary edge or lies outside every
	// boundary.
	ErrBoundaryViolation = errors.New("mask: interval not contained in boundaries")
	// ErrEmptySequence is reported by Scan once it's called again after it
	// already reported the end of the sequence.
	ErrEmptySequence = errors.New("mask: scan past end of segment sequence")
)
