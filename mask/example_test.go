// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package mask_test

import (
	"fmt"

	"github.com/grailbio/bio-mask/mask"
)

func ExampleBuild() {
	ivs := mask.Slice[int, struct{}]{{Begin: 1, End: 5}, {Begin: 2, End: 6}, {Begin: 3, End: 6}, {Begin: 2, End: 4}, {Begin: 8, End: 9}}
	bounds := mask.Slice[int, struct{}]{{Begin: 0, End: 10}}
	s, err := mask.Build(mask.Ordered[int](), ivs, bounds, mask.Sign, mask.Count[int, struct{}]())
	if err != nil {
		panic(err)
	}
	for s.Scan() {
		seg := s.Segment()
		fmt.Printf("[%d, %d) category=%d count=%d\n", seg.Begin, seg.End, seg.Category, seg.Acc)
	}
	if err := s.Err(); err != nil {
		panic(err)
	}
	// Output:
	// [0, 1) category=0 count=0
	// [1, 6) category=1 count=4
	// [6, 8) category=0 count=0
	// [8, 9) category=1 count=1
	// [9, 10) category=0 count=0
}

func ExampleBuild_unbounded() {
	ivs := mask.Slice[int, struct{}]{{Begin: 0, End: 10}, {Begin: 20, End: 30}}
	s, err := mask.Build(mask.Ordered[int](), ivs, nil, mask.Sign, mask.NoAccumulator[int, struct{}]())
	if err != nil {
		panic(err)
	}
	for seg, err := range s.All() {
		if err != nil {
			panic(err)
		}
		fmt.Println(seg.Begin, seg.End, seg.Category)
	}
	// Output:
	// 0 10 1
	// 10 20 0
	// 20 30 1
}

func ExampleBuild_boundariesOnly() {
	bounds := mask.Slice[int, struct{}]{{Begin: 0, End: 10}, {Begin: 20, End: 30}}
	s, err := mask.Build(mask.Ordered[int](), nil, bounds, mask.Sign, mask.NoAccumulator[int, struct{}]())
	if err != nil {
		panic(err)
	}
	segs, err := s.Collect()
	if err != nil {
		panic(err)
	}
	for _, seg := range segs {
		fmt.Println(seg.Begin, seg.End, seg.Category)
	}
	// Output:
	// 0 10 0
	// 20 30 0
}

func ExampleWithCategory() {
	ivs := mask.Slice[int, struct{}]{{Begin: 1, End: 5}, {Begin: 2, End: 6}, {Begin: 8, End: 9}}
	s, err := mask.Build(mask.Ordered[int](), ivs, nil, mask.Sign, mask.NoAccumulator[int, struct{}]())
	if err != nil {
		panic(err)
	}
	depth := mask.WithCategory(s, mask.Identity)
	for depth.Scan() {
		seg := depth.Segment()
		fmt.Printf("[%d, %d) depth %d\n", seg.Begin, seg.End, seg.Category)
	}
	// Output:
	// [1, 2) depth 1
	// [2, 5) depth 2
	// [5, 6) depth 1
	// [6, 8) depth 0
	// [8, 9) depth 1
}
