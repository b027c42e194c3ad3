// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package mask

import (
	"math"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// mergeEvents merges two EventOrder-sorted slices into a new sorted slice.
// Neither input is modified.  On ties, events from a come first.
func mergeEvents[P any](cmp Compare[P], a, b []Event[P]) []Event[P] {
	out := make([]Event[P], 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if EventOrder(cmp, b[j], a[i]) < 0 {
			out = append(out, b[j])
			j++
		} else {
			out = append(out, a[i])
			i++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

type batch[P, T any] struct {
	src      Source[P, T]
	boundary bool
}

// Events is the immutable, sorted event sequence derived from one or more
// batches of intervals and boundaries.  It is safe to share an Events value
// between any number of Sweeps, including concurrently.
type Events[P, T any] struct {
	cmp     Compare[P]
	batches []batch[P, T]
	events  []Event[P]
	// nBoundary is the number of boundary events.
	nBoundary int
}

// NewEvents derives and sorts the events for the given intervals and
// (optional, possibly nil) boundaries.
func NewEvents[P, T any](cmp Compare[P], data, boundaries Source[P, T]) (*Events[P, T], error) {
	if cmp == nil {
		log.Panicf("mask.NewEvents: nil comparator")
	}
	e := &Events[P, T]{cmp: cmp}
	evs, nBoundary, err := e.derive(data, boundaries)
	if err != nil {
		return nil, err
	}
	e.events = evs
	e.nBoundary = nBoundary
	return e, nil
}

// derive registers data and boundaries as new batches of e, and returns their
// sorted events.
func (e *Events[P, T]) derive(data, boundaries Source[P, T]) (evs []Event[P], nBoundary int, err error) {
	if len(e.batches)+2 > math.MaxInt32 {
		return nil, 0, errors.Errorf("mask: too many batches (%d)", len(e.batches))
	}
	for _, src := range []Source[P, T]{data, boundaries} {
		if src != nil && src.Len() > math.MaxInt32 {
			return nil, 0, errors.Errorf("mask: batch of %d intervals is too large", src.Len())
		}
	}
	dataBatch := int32(len(e.batches))
	e.batches = append(e.batches, batch[P, T]{src: data})
	if evs, err = deriveEvents(e.cmp, evs, dataBatch, data, false); err != nil {
		return nil, 0, err
	}
	nData := len(evs)
	boundaryBatch := int32(len(e.batches))
	e.batches = append(e.batches, batch[P, T]{src: boundaries, boundary: true})
	if evs, err = deriveEvents(e.cmp, evs, boundaryBatch, boundaries, true); err != nil {
		return nil, 0, err
	}
	sortEvents(e.cmp, evs)
	return evs, len(evs) - nData, nil
}

// Augment returns a new Events value containing e's events plus those of the
// given intervals and boundaries (either may be nil).  Only the new batch is
// sorted; it is then merged with e's events in linear time.  e itself is not
// modified.
func (e *Events[P, T]) Augment(data, boundaries Source[P, T]) (*Events[P, T], error) {
	n := &Events[P, T]{
		cmp:     e.cmp,
		batches: make([]batch[P, T], len(e.batches), len(e.batches)+2),
	}
	copy(n.batches, e.batches)
	evs, nBoundary, err := n.derive(data, boundaries)
	if err != nil {
		return nil, err
	}
	n.events = mergeEvents(e.cmp, e.events, evs)
	n.nBoundary = e.nBoundary + nBoundary
	if log.At(log.Debug) {
		log.Debug.Printf("mask: augmented %d events with %d new ones", len(e.events), len(evs))
	}
	return n, nil
}

// Len returns the number of events.
func (e *Events[P, T]) Len() int { return len(e.events) }

// At returns the i'th event in EventOrder.
func (e *Events[P, T]) At(i int) Event[P] { return e.events[i] }

// HasBoundaries returns whether any nonempty boundary was supplied.  If not,
// the domain is the span of the intervals.
func (e *Events[P, T]) HasBoundaries() bool { return e.nBoundary > 0 }

// Compare returns the comparator e was built with.
func (e *Events[P, T]) Compare() Compare[P] { return e.cmp }

// Interval returns the interval identified by h.
func (e *Events[P, T]) Interval(h Handle) Interval[P, T] {
	return e.batches[h.Batch].src.At(int(h.Index))
}

// IsBoundary returns whether h identifies a boundary interval.
func (e *Events[P, T]) IsBoundary(h Handle) bool {
	return e.batches[h.Batch].boundary
}
