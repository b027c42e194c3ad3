// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package mask

import (
	"iter"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// Segment is a maximal run [Begin, End) with constant category.  Acc is the
// accumulator folded over the intervals open during the run; it is the zero
// value when accumulation is disabled.
type Segment[P any, C comparable, A any] struct {
	Begin, End P
	Category   C
	Acc        A
}

type sweepState uint8

const (
	// stateReady: front holds the next segment.
	stateReady sweepState = iota
	// stateEmpty: no more segments, and Scan hasn't said so yet.
	stateEmpty
	// stateDone: Scan has returned false because the sequence ended.
	stateDone
	// stateFailed: err is set; the sweep cannot continue.
	stateFailed
)

// touchedRef is an interval that is open at some point of the segment being
// built.  Intervals open on entry have entry set; the others were opened at
// pos while the segment was being built.
type touchedRef[P any] struct {
	ref   Handle
	pos   P
	entry bool
}

// Sweep iterates over the segments of a coverage mask.  It follows the
// bufio.Scanner conventions:
//
//   for s.Scan() {
//     seg := s.Segment()
//     ...
//   }
//   if err := s.Err(); err != nil {
//     ...
//   }
//
// Segments are produced lazily, one per Scan call; the sweep always holds the
// next segment in advance so that Empty can be answered without side
// effects.  A Sweep is not safe for concurrent use, but Clone yields an
// independent cursor.
type Sweep[P, T any, C comparable, A any] struct {
	events   *Events[P, T]
	category func(level uint32) C
	acc      Accumulator[P, T, A]

	// cursor is the index of the next unconsumed event.
	cursor int
	// level is the number of data intervals containing the sweep position.
	level uint32
	// nBoundary is the number of boundaries containing the sweep position.
	nBoundary uint32
	// started is set once the first segment begin has been fixed.
	started bool
	// prevEnd is the end of the previous segment (including discarded empty
	// ones).
	prevEnd P

	// open tracks the intervals currently open.  Only maintained when
	// accumulating.
	open openSet
	// touched is scratch space for the segment under construction.
	touched []touchedRef[P]

	state sweepState
	front Segment[P, C, A]
	seg   Segment[P, C, A]
	err   error
}

// New creates a Sweep over events.  category classifies overlap levels; acc
// may be the zero Accumulator to disable accumulation.  The sweep is advanced
// to its first segment immediately; errors encountered doing so are reported
// through Err once Scan returns false.
func New[P, T any, C comparable, A any](events *Events[P, T], category func(level uint32) C, acc Accumulator[P, T, A]) *Sweep[P, T, C, A] {
	if category == nil {
		log.Panicf("mask.New: nil category function")
	}
	s := &Sweep[P, T, C, A]{
		events:   events,
		category: category,
		acc:      acc,
	}
	if acc.enabled() {
		s.open = newOpenSet()
	}
	s.advance()
	return s
}

// Build derives the events of data and boundaries (which may be nil), and
// returns a Sweep over them.  It fails with ErrInvalidInterval if any
// interval has Begin > End.
func Build[P, T any, C comparable, A any](cmp Compare[P], data, boundaries Source[P, T], category func(level uint32) C, acc Accumulator[P, T, A]) (*Sweep[P, T, C, A], error) {
	events, err := NewEvents(cmp, data, boundaries)
	if err != nil {
		return nil, err
	}
	return New(events, category, acc), nil
}

// Events returns the events s sweeps over.
func (s *Sweep[P, T, C, A]) Events() *Events[P, T] { return s.events }

// Augment returns a new Sweep, positioned at the beginning, over s's events
// plus those of the given intervals and boundaries.  s is not affected.
func (s *Sweep[P, T, C, A]) Augment(data, boundaries Source[P, T]) (*Sweep[P, T, C, A], error) {
	events, err := s.events.Augment(data, boundaries)
	if err != nil {
		return nil, err
	}
	return New(events, s.category, s.acc), nil
}

// WithCategory returns a new Sweep, positioned at the beginning, over the
// same events and with the same accumulator as s, but classifying levels
// with category.  The events are shared, not recomputed.
func WithCategory[P, T any, C, C2 comparable, A any](s *Sweep[P, T, C, A], category func(level uint32) C2) *Sweep[P, T, C2, A] {
	return New(s.events, category, s.acc)
}

// WithAccumulator returns a new Sweep, positioned at the beginning, over the
// same events and with the same category function as s, but accumulating
// with seed and reduce.  The events are shared, not recomputed.
func WithAccumulator[P, T any, C comparable, A, A2 any](s *Sweep[P, T, C, A], seed A2, reduce func(acc A2, iv Interval[P, T]) A2) *Sweep[P, T, C, A2] {
	return New(s.events, s.category, Accumulator[P, T, A2]{Seed: seed, Reduce: reduce})
}

// Clone returns an independent copy of s at its current position.  The two
// sweeps share the immutable events; iterating one never affects the other.
func (s *Sweep[P, T, C, A]) Clone() *Sweep[P, T, C, A] {
	c := *s
	c.open = s.open.clone()
	c.touched = nil
	return &c
}

// Scan advances to the next segment, which is then available through
// Segment.  It returns false when there are no more segments or an error
// occurred.  Calling Scan again after it returned false at the end of the
// sequence is an error (ErrEmptySequence).
func (s *Sweep[P, T, C, A]) Scan() bool {
	switch s.state {
	case stateReady:
		s.seg = s.front
		s.advance()
		return true
	case stateEmpty:
		s.state = stateDone
	case stateDone:
		s.err = ErrEmptySequence
		s.state = stateFailed
	}
	return false
}

// Segment returns the segment produced by the most recent successful Scan.
func (s *Sweep[P, T, C, A]) Segment() Segment[P, C, A] { return s.seg }

// Err returns the error, if any, encountered during iteration.
func (s *Sweep[P, T, C, A]) Err() error {
	if s.state != stateFailed {
		return nil
	}
	return s.err
}

// Empty returns whether the sweep has no further segments to produce.  A
// failed sweep is empty.
func (s *Sweep[P, T, C, A]) Empty() bool { return s.state != stateReady }

// Front returns the segment the next Scan will produce, without consuming
// it.  ok is false if the sweep is Empty.
func (s *Sweep[P, T, C, A]) Front() (seg Segment[P, C, A], ok bool) {
	if s.state != stateReady {
		return seg, false
	}
	return s.front, true
}

// All returns an iterator over the remaining segments.  If the sweep fails,
// the final pair carries the error.
func (s *Sweep[P, T, C, A]) All() iter.Seq2[Segment[P, C, A], error] {
	return func(yield func(Segment[P, C, A], error) bool) {
		for s.Scan() {
			if !yield(s.Segment(), nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			yield(Segment[P, C, A]{}, err)
		}
	}
}

// Collect drains the sweep into a slice.
func (s *Sweep[P, T, C, A]) Collect() ([]Segment[P, C, A], error) {
	var segs []Segment[P, C, A]
	for s.Scan() {
		segs = append(segs, s.Segment())
	}
	return segs, s.Err()
}

// advance computes the next segment into s.front.
func (s *Sweep[P, T, C, A]) advance() {
	seg, ok, err := s.next()
	switch {
	case err != nil:
		s.err = err
		s.state = stateFailed
	case !ok:
		s.state = stateEmpty
	default:
		s.front = seg
		s.state = stateReady
	}
}

// next consumes events up to the end of the next nonempty segment.
func (s *Sweep[P, T, C, A]) next() (seg Segment[P, C, A], ok bool, err error) {
	evs := s.events.events
	cmp := s.events.cmp
	for {
		if s.cursor == len(evs) {
			return seg, false, nil
		}
		// Segments are contiguous, except that a boundary open outside every
		// boundary re-anchors the segment, so that gaps between boundaries are
		// skipped.
		seg.Begin = s.prevEnd
		if !s.started || (evs[s.cursor].Kind == BoundaryOpen && s.nBoundary == 0) {
			seg.Begin = evs[s.cursor].Pos
			s.started = true
		}
		seg.Category = s.category(s.level)
		if s.acc.enabled() {
			s.touched = s.touched[:0]
			for _, ref := range s.open.refs {
				s.touched = append(s.touched, touchedRef[P]{ref: ref, entry: true})
			}
		}

		for s.cursor < len(evs) {
			ev := evs[s.cursor]
			s.cursor++
			if err = s.apply(ev); err != nil {
				return seg, false, err
			}
			seg.End = ev.Pos
			if ev.Kind == BoundaryClose {
				break
			}
			// Events at one position are consumed as a unit, so a segment can
			// only end where the level has settled.
			if s.category(s.level) != seg.Category &&
				(s.cursor == len(evs) || cmp(evs[s.cursor].Pos, ev.Pos) != 0) {
				break
			}
		}
		s.prevEnd = seg.End
		if cmp(seg.Begin, seg.End) == 0 {
			continue
		}
		if s.acc.enabled() {
			seg.Acc = s.fold(seg.End)
		}
		if log.At(log.Debug) {
			log.Debug.Printf("mask: segment [%v, %v) category %v", seg.Begin, seg.End, seg.Category)
		}
		return seg, true, nil
	}
}

// apply updates the sweep state for one event.
func (s *Sweep[P, T, C, A]) apply(ev Event[P]) error {
	switch ev.Kind {
	case Open:
		if s.events.nBoundary > 0 && s.nBoundary == 0 {
			return errors.Wrapf(ErrBoundaryViolation, "%v opens outside every boundary",
				s.events.Interval(ev.Ref))
		}
		s.level++
		if s.acc.enabled() {
			s.open.add(ev.Ref)
			s.touched = append(s.touched, touchedRef[P]{ref: ev.Ref, pos: ev.Pos})
		}
	case Close:
		if s.level == 0 {
			if debugChecks {
				log.Panicf("mask: close of %v at level 0", s.events.Interval(ev.Ref))
			}
			return errors.Wrapf(ErrUnderflow, "close of %v", s.events.Interval(ev.Ref))
		}
		s.level--
		if s.acc.enabled() {
			s.open.remove(ev.Ref)
		}
	case BoundaryOpen:
		if s.level != 0 {
			return errors.Wrapf(ErrBoundaryViolation, "%d interval(s) cross the start of boundary %v",
				s.level, s.events.Interval(ev.Ref))
		}
		s.nBoundary++
	case BoundaryClose:
		if s.level != 0 {
			return errors.Wrapf(ErrBoundaryViolation, "%d interval(s) cross the end of boundary %v",
				s.level, s.events.Interval(ev.Ref))
		}
		if s.nBoundary == 0 {
			return errors.Wrapf(ErrUnderflow, "close of boundary %v", s.events.Interval(ev.Ref))
		}
		s.nBoundary--
	default:
		log.Panicf("mask: unknown event kind %v", ev.Kind)
	}
	return nil
}

// fold reduces the intervals open strictly inside the segment ending at end.
// Intervals opened at end belong to the next segment.
func (s *Sweep[P, T, C, A]) fold(end P) A {
	cmp := s.events.cmp
	acc := s.acc.Seed
	for _, t := range s.touched {
		if t.entry || cmp(t.pos, end) < 0 {
			acc = s.acc.Reduce(acc, s.events.Interval(t.ref))
		}
	}
	return acc
}
