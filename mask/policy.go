// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package mask

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// A category function maps an overlap level to a category.  It must be pure
// and defined for every level that can occur.  The functions below cover the
// common cases.

// Sign is the default category: 0 for uncovered positions, 1 for covered
// ones.
func Sign(level uint32) int {
	if level == 0 {
		return 0
	}
	return 1
}

// Identity uses the overlap level itself as the category, producing runs of
// constant depth.
func Identity(level uint32) uint32 {
	return level
}

// Thresholds returns a category function mapping a level to the number of cut
// points it is >= to.  With cuts {1, 10}, levels 0 maps to 0, 1..9 to 1 and
// 10 and up to 2.  cuts must be strictly increasing.
func Thresholds(cuts ...uint32) (func(level uint32) int, error) {
	for i := 1; i < len(cuts); i++ {
		if cuts[i] <= cuts[i-1] {
			return nil, errors.Errorf("mask.Thresholds: cuts %v are not strictly increasing", cuts)
		}
	}
	cuts = append([]uint32(nil), cuts...)
	return func(level uint32) int {
		return sort.Search(len(cuts), func(i int) bool { return cuts[i] > level })
	}, nil
}

// MaxLevel is the largest representable overlap level.  Use it as Band.Max
// for a band without an upper bound.
const MaxLevel = math.MaxUint32

// Band is a named, inclusive range of levels [Min, Max].
type Band struct {
	Name     string
	Min, Max uint32
}

// Bands returns a category function naming each level by the first band that
// contains it.  Levels covered by no band map to fallback.
func Bands(bands []Band, fallback string) (func(level uint32) string, error) {
	for _, b := range bands {
		if b.Name == "" {
			return nil, errors.New("mask.Bands: unnamed band")
		}
		if b.Max < b.Min {
			return nil, errors.Errorf("mask.Bands: band %s has max %d < min %d", b.Name, b.Max, b.Min)
		}
	}
	bands = append([]Band(nil), bands...)
	return func(level uint32) string {
		for _, b := range bands {
			if b.Min <= level && level <= b.Max {
				return b.Name
			}
		}
		return fallback
	}, nil
}

// Accumulator folds the intervals open during a segment into a value.
// Reduce is called once per interval per segment, for every interval that is
// open at some point strictly inside the segment, starting from Seed.  The
// order in which intervals are folded is unspecified, so Reduce should be
// associative and commutative.  Reduce must not modify Seed in place.  A nil
// Reduce disables accumulation, along with the bookkeeping it needs.
type Accumulator[P, T, A any] struct {
	Seed   A
	Reduce func(acc A, iv Interval[P, T]) A
}

// NoAccumulator returns the disabled accumulator.
func NoAccumulator[P, T any]() Accumulator[P, T, struct{}] {
	return Accumulator[P, T, struct{}]{}
}

// Count returns an accumulator computing the number of intervals open during
// each segment.
func Count[P, T any]() Accumulator[P, T, int] {
	return Accumulator[P, T, int]{
		Reduce: func(acc int, _ Interval[P, T]) int { return acc + 1 },
	}
}

func (a Accumulator[P, T, A]) enabled() bool { return a.Reduce != nil }
