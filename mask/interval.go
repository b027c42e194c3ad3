// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package mask

import (
	"cmp"
	"fmt"
)

// Compare returns a negative value, zero or a positive value if a < b,
// a == b or a > b respectively.  It must define a strict weak order that is
// consistent across calls.
type Compare[P any] func(a, b P) int

// Ordered returns the natural Compare for builtin ordered types.
func Ordered[P cmp.Ordered]() Compare[P] {
	return cmp.Compare[P]
}

// Interval is the half-open range [Begin, End), with an optional payload.
// Begin must not be greater than End; Begin == End is an empty interval.
type Interval[P, T any] struct {
	Begin, End P
	Payload    T
}

// String implements fmt.Stringer.
func (iv Interval[P, T]) String() string {
	return fmt.Sprintf("[%v, %v)", iv.Begin, iv.End)
}

// Source is a finite, indexable sequence of intervals.  Sources are owned by
// the caller; the engine only reads from them, and keeps referring to them
// (through Handles) for as long as any Events value built from them is alive.
type Source[P, T any] interface {
	// Len returns the number of intervals.
	Len() int
	// At returns the i'th interval, 0 <= i < Len().
	At(i int) Interval[P, T]
}

// Slice adapts an []Interval to the Source interface.
type Slice[P, T any] []Interval[P, T]

// Len implements Source.
func (s Slice[P, T]) Len() int { return len(s) }

// At implements Source.
func (s Slice[P, T]) At(i int) Interval[P, T] { return s[i] }

// SourceFunc adapts a length and an accessor function to the Source
// interface.  It's convenient for exposing a slice of domain records without
// copying them into Intervals.
type SourceFunc[P, T any] struct {
	N  int
	Fn func(i int) Interval[P, T]
}

// Len implements Source.
func (s SourceFunc[P, T]) Len() int { return s.N }

// At implements Source.
func (s SourceFunc[P, T]) At(i int) Interval[P, T] { return s.Fn(i) }

// Handle identifies one interval: the Index'th element of the Batch'th source
// registered with an Events value.
type Handle struct {
	Batch, Index int32
}
