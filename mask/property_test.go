// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package mask_test

import (
	"math/rand"
	"testing"

	"github.com/biogo/store/interval"
	"github.com/grailbio/bio-mask/mask"
	"github.com/stretchr/testify/require"
)

// oracleInterval is an interval.IntInterface for the brute-force overlap
// oracle.
type oracleInterval struct {
	start, end int
	id         uintptr
}

func (o oracleInterval) Overlap(b interval.IntRange) bool {
	return o.end > b.Start && o.start < b.End
}
func (o oracleInterval) ID() uintptr              { return o.id }
func (o oracleInterval) Range() interval.IntRange { return interval.IntRange{Start: o.start, End: o.end} }

// depthAt returns the number of intervals in tree containing pos.
func depthAt(tree *interval.IntTree, pos int) int {
	return len(tree.Get(oracleInterval{start: pos, end: pos + 1}))
}

func randomSpans(r *rand.Rand, n, lo, hi, maxLen int) mask.Slice[int, struct{}] {
	s := make(mask.Slice[int, struct{}], n)
	for i := range s {
		begin := lo + r.Intn(hi-lo)
		end := begin + r.Intn(maxLen+1)
		if end > hi {
			end = hi
		}
		s[i] = mask.Interval[int, struct{}]{Begin: begin, End: end}
	}
	return s
}

func buildOracle(t *testing.T, data mask.Slice[int, struct{}]) *interval.IntTree {
	tree := &interval.IntTree{}
	for i, iv := range data {
		if iv.Begin == iv.End {
			continue
		}
		require.NoError(t, tree.Insert(oracleInterval{start: iv.Begin, end: iv.End, id: uintptr(i)}, false))
	}
	return tree
}

// checkSegments verifies the partition, category-correctness and
// no-zero-width properties of segs against the oracle.
func checkSegments(t *testing.T, segs []mask.Segment[int, uint32, int], tree *interval.IntTree, domain [][2]int) {
	di := 0
	var expectBegin int
	open := false
	for _, seg := range segs {
		require.True(t, seg.Begin < seg.End, "zero-width segment %+v", seg)
		if !open {
			require.True(t, di < len(domain), "segment %+v past the domain", seg)
			expectBegin = domain[di][0]
			open = true
		}
		require.Equal(t, expectBegin, seg.Begin, "gap or overlap before %+v", seg)
		for p := seg.Begin; p < seg.End; p++ {
			require.Equal(t, int(seg.Category), depthAt(tree, p), "depth at %d in %+v", p, seg)
		}
		// The accumulator counts every interval open somewhere in the segment.
		seen := map[uintptr]bool{}
		for p := seg.Begin; p < seg.End; p++ {
			for _, iv := range tree.Get(oracleInterval{start: p, end: p + 1}) {
				seen[iv.ID()] = true
			}
		}
		require.Equal(t, len(seen), seg.Acc, "count in %+v", seg)
		expectBegin = seg.End
		if seg.End == domain[di][1] {
			di++
			open = false
		}
	}
	require.False(t, open, "domain not fully covered")
	require.Equal(t, len(domain), di)
}

func TestSweepProperties(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for iter := 0; iter < 300; iter++ {
		data := randomSpans(r, r.Intn(25), 0, 100, 30)
		tree := buildOracle(t, data)

		s, err := mask.Build(mask.Ordered[int](), data, nil, mask.Identity, mask.Count[int, struct{}]())
		require.NoError(t, err)
		segs, err := s.Collect()
		require.NoError(t, err)

		// Without boundaries the domain is the span of the intervals.
		var domain [][2]int
		first, last, found := 0, 0, false
		for _, iv := range data {
			if iv.Begin == iv.End {
				continue
			}
			if !found || iv.Begin < first {
				first = iv.Begin
			}
			if !found || iv.End > last {
				last = iv.End
			}
			found = true
		}
		if found {
			domain = [][2]int{{first, last}}
		}
		checkSegments(t, segs, tree, domain)

		// Same intervals within disjoint boundaries that bracket them.
		bounds := mask.Slice[int, struct{}]{{Begin: -10, End: -5}, {Begin: -5, End: 100}, {Begin: 120, End: 140}}
		bounded, err := s.Augment(nil, bounds)
		require.NoError(t, err)
		segs, err = bounded.Collect()
		require.NoError(t, err)
		checkSegments(t, segs, tree, [][2]int{{-10, -5}, {-5, 100}, {120, 140}})
	}
}

// Augmenting batch by batch gives the same mask as building from all the
// intervals at once.
func TestAugmentEquivalence(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for iter := 0; iter < 100; iter++ {
		var all mask.Slice[int, struct{}]
		batch := randomSpans(r, r.Intn(10), 0, 50, 10)
		all = append(all, batch...)
		s, err := mask.Build(mask.Ordered[int](), batch, nil, mask.Identity, mask.Count[int, struct{}]())
		require.NoError(t, err)
		for n := r.Intn(4); n > 0; n-- {
			batch = randomSpans(r, r.Intn(10), 0, 50, 10)
			all = append(all, batch...)
			s, err = s.Augment(batch, nil)
			require.NoError(t, err)
		}
		got, err := s.Collect()
		require.NoError(t, err)

		ref, err := mask.Build(mask.Ordered[int](), all, nil, mask.Identity, mask.Count[int, struct{}]())
		require.NoError(t, err)
		want, err := ref.Collect()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}
