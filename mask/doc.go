// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*Package mask computes coverage masks over collections of half-open
  intervals.

  Given intervals [begin, end) over any totally ordered coordinate type, a
  Sweep partitions the covered domain into maximal segments whose "coverage
  category" is constant.  The category is a caller-supplied function of the
  overlap level (the number of intervals containing a point), so the same
  machinery produces interval unions (Sign), depth runs (Identity) or
  callable-loci style bands (Thresholds, Bands).

  The domain is either the span of the intervals themselves, or the union of
  a set of boundary intervals.  Gaps between disjoint boundaries are skipped
  rather than reported as zero-coverage segments, and every interval must lie
  entirely within some boundary.

  Work is split in two phases.  Events derives and sorts the open/close
  events once; it is immutable and can be shared.  Events.Augment adds
  further intervals by sorting only the new batch and merging it with the
  existing one in linear time.  A Sweep is a cheap cursor over an Events
  value: it pulls one segment at a time, so consumers can stop early, and it
  can be cloned to fork iteration.  WithCategory and WithAccumulator re-wrap
  the same events with a different interpretation without touching them.

  Example:
    ivs := mask.Slice[int, struct{}]{{Begin: 1, End: 5}, {Begin: 8, End: 9}}
    bounds := mask.Slice[int, struct{}]{{Begin: 0, End: 10}}
    s, err := mask.Build(mask.Ordered[int](), ivs, bounds, mask.Sign, mask.NoAccumulator[int, struct{}]())
    ...
    for s.Scan() {
      seg := s.Segment()
      fmt.Println(seg.Begin, seg.End, seg.Category)
    }
    if err := s.Err(); err != nil {
      ...
    }
  prints "0 1 0", "1 5 1", "5 8 0", "8 9 1", "9 10 0".
*/
package mask
