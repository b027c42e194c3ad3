// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package mask

import "github.com/grailbio/base/log"

// openSet is the set of currently open intervals, with O(1) insertion and
// removal.  refs is unordered: removal swaps the last element into the hole.
type openSet struct {
	refs []Handle
	// idx[h] is the position of h in refs.
	idx map[Handle]int
}

func newOpenSet() openSet {
	return openSet{idx: map[Handle]int{}}
}

func (o *openSet) add(h Handle) {
	if _, ok := o.idx[h]; ok {
		log.Panicf("mask: interval %v opened twice", h)
	}
	o.idx[h] = len(o.refs)
	o.refs = append(o.refs, h)
}

func (o *openSet) remove(h Handle) {
	i, ok := o.idx[h]
	if !ok {
		log.Panicf("mask: interval %v closed but not open", h)
	}
	last := len(o.refs) - 1
	if i != last {
		o.refs[i] = o.refs[last]
		o.idx[o.refs[i]] = i
	}
	o.refs = o.refs[:last]
	delete(o.idx, h)
}

func (o openSet) clone() openSet {
	if o.idx == nil {
		return o
	}
	c := openSet{
		refs: append([]Handle(nil), o.refs...),
		idx:  make(map[Handle]int, len(o.idx)),
	}
	for h, i := range o.idx {
		c.idx[h] = i
	}
	return c
}
