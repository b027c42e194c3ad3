// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package mask

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"
)

// Kind distinguishes the four point events derived from intervals and
// boundaries.  The numeric values carry no ordering meaning; see EventOrder.
type Kind uint8

const (
	// BoundaryOpen starts a boundary interval.
	BoundaryOpen Kind = iota + 1
	// Open starts a data interval.
	Open
	// Close ends a data interval.
	Close
	// BoundaryClose ends a boundary interval.
	BoundaryClose
)

// kindRank is the tie-breaking order for events at the same position.
// Closes come first, so that [a, b) and [b, c) never overlap at b.  Boundary
// closes come before boundary opens, and boundary events bracket data events
// on both sides, so that content crossing a boundary edge is seen at a
// nonzero level.
var kindRank = [...]int8{
	Close:         0,
	BoundaryClose: 1,
	BoundaryOpen:  2,
	Open:          3,
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case BoundaryOpen:
		return "BoundaryOpen"
	case Open:
		return "Open"
	case Close:
		return "Close"
	case BoundaryClose:
		return "BoundaryClose"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Event is a point event: an interval edge of the given kind.  Ref
// identifies the interval the event was derived from.
type Event[P any] struct {
	Pos  P
	Kind Kind
	Ref  Handle
}

// EventOrder compares two events: by position, then by kind in the order
// Close < BoundaryClose < BoundaryOpen < Open.  Events that compare equal
// keep their derivation order.
func EventOrder[P any](cmp Compare[P], a, b Event[P]) int {
	if c := cmp(a.Pos, b.Pos); c != 0 {
		return c
	}
	return int(kindRank[a.Kind]) - int(kindRank[b.Kind])
}

// deriveEvents appends the open and close events of every nonempty interval
// in src to dst.  Empty intervals are dropped.  An interval with Begin > End
// fails the whole batch.
func deriveEvents[P, T any](cmp Compare[P], dst []Event[P], batch int32, src Source[P, T], boundary bool) ([]Event[P], error) {
	if src == nil {
		return dst, nil
	}
	openKind, closeKind, what := Open, Close, "interval"
	if boundary {
		openKind, closeKind, what = BoundaryOpen, BoundaryClose, "boundary"
	}
	n := src.Len()
	for i := 0; i < n; i++ {
		iv := src.At(i)
		c := cmp(iv.Begin, iv.End)
		if c > 0 {
			return nil, errors.Wrapf(ErrInvalidInterval, "%s %d (batch %d): begin %v > end %v", what, i, batch, iv.Begin, iv.End)
		}
		if c == 0 {
			continue
		}
		ref := Handle{Batch: batch, Index: int32(i)}
		dst = append(dst,
			Event[P]{Pos: iv.Begin, Kind: openKind, Ref: ref},
			Event[P]{Pos: iv.End, Kind: closeKind, Ref: ref})
	}
	return dst, nil
}

// sortEvents sorts evs by EventOrder.  The sort is stable so that the
// relative order of coincident events is reproducible.
func sortEvents[P any](cmp Compare[P], evs []Event[P]) {
	slices.SortStableFunc(evs, func(a, b Event[P]) int {
		return EventOrder(cmp, a, b)
	})
}
