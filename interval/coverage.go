package interval

import (
	"fmt"
	"maps"

	"github.com/grailbio/base/log"
	"github.com/grailbio/bio-mask/mask"
	"github.com/grailbio/hts/sam"
)

// CoverageOpts defines the domain and chromosome numbering of a Coverage.
type CoverageOpts struct {
	// Header, if set, fixes the chromosome IDs: reference k of the header gets
	// RefID k.  Chromosomes absent from the header are numbered after the
	// header's references, in first-seen order.
	Header *sam.Header
	// Boundaries restricts the domain to their union.  Every nonempty entry
	// must then lie within it.
	Boundaries []Entry
	// WholeGenome uses every header reference [0, Len) as a boundary.  It
	// requires Header.
	WholeGenome bool
}

// refSpan is the extent of the nonempty entries on one chromosome.
type refSpan struct {
	start, end PosType
	found      bool
}

// Coverage is a set of (possibly overlapping) genomic intervals, prepared for
// sweeping.  A Coverage is immutable: Augment returns a new one, and any
// number of sweeps may run over the same Coverage concurrently.
//
// Sweeps never produce a segment that spans two chromosomes.  When no
// boundaries were given, the domain of each chromosome is the extent of its
// intervals.
type Coverage struct {
	// names[id] is the chromosome with RefID id.
	names []string
	ids   map[string]int32
	// spans is indexed by RefID.
	spans  []refSpan
	events *mask.Events[Coord, Entry]
}

// coordSource adapts a []Entry to mask.Source.
type coordSource struct {
	entries []Entry
	refIDs  []int32
}

func (s coordSource) Len() int { return len(s.entries) }

func (s coordSource) At(i int) mask.Interval[Coord, Entry] {
	e := s.entries[i]
	id := s.refIDs[i]
	return mask.Interval[Coord, Entry]{
		Begin:   Coord{RefID: id, Pos: e.Start0},
		End:     Coord{RefID: id, Pos: e.End},
		Payload: e,
	}
}

// NewCoverage prepares entries for sweeping.
func NewCoverage(entries []Entry, opts CoverageOpts) (*Coverage, error) {
	c := &Coverage{ids: map[string]int32{}}
	boundaries := opts.Boundaries
	if opts.Header != nil {
		for _, ref := range opts.Header.Refs() {
			if _, ok := c.ids[ref.Name()]; ok {
				return nil, fmt.Errorf("interval.NewCoverage: duplicate header reference %s", ref.Name())
			}
			c.refID(ref.Name())
		}
		if opts.WholeGenome {
			boundaries = make([]Entry, 0, len(opts.Boundaries)+len(opts.Header.Refs()))
			boundaries = append(boundaries, opts.Boundaries...)
			for _, ref := range opts.Header.Refs() {
				boundaries = append(boundaries, Entry{ChrName: ref.Name(), Start0: 0, End: PosType(ref.Len())})
			}
		}
	} else if opts.WholeGenome {
		return nil, fmt.Errorf("interval.NewCoverage: whole-genome coverage requires a header")
	}
	data := c.source(entries)
	c.trackSpans(entries)
	bounds := c.source(boundaries)
	events, err := mask.NewEvents[Coord, Entry](CompareCoords, data, bounds)
	if err != nil {
		return nil, err
	}
	c.events = events
	log.Debug.Printf("interval.NewCoverage: %d entries on %d chromosome(s), %d boundaries", len(entries), len(c.names), len(boundaries))
	return c, nil
}

// Augment returns a Coverage with the given entries and boundaries added to
// c's.  c is unchanged, and the existing events are merged rather than
// re-sorted.
func (c *Coverage) Augment(entries, boundaries []Entry) (*Coverage, error) {
	n := &Coverage{
		names: c.names,
		ids:   c.ids,
	}
	if n.hasNewNames(entries) || n.hasNewNames(boundaries) {
		n.names = append([]string(nil), c.names...)
		n.ids = maps.Clone(c.ids)
	}
	n.spans = append([]refSpan(nil), c.spans...)
	data := n.source(entries)
	n.trackSpans(entries)
	events, err := c.events.Augment(data, n.source(boundaries))
	if err != nil {
		return nil, err
	}
	n.events = events
	return n, nil
}

func (c *Coverage) hasNewNames(entries []Entry) bool {
	for _, e := range entries {
		if _, ok := c.ids[e.ChrName]; !ok {
			return true
		}
	}
	return false
}

// refID returns the ID of the named chromosome, assigning the next one if it
// is new.  c must not be shared yet.
func (c *Coverage) refID(name string) int32 {
	if id, ok := c.ids[name]; ok {
		return id
	}
	id := int32(len(c.names))
	c.ids[name] = id
	c.names = append(c.names, name)
	c.spans = append(c.spans, refSpan{})
	return id
}

// source numbers the chromosomes of entries, and returns them as a
// mask.Source.
func (c *Coverage) source(entries []Entry) mask.Source[Coord, Entry] {
	if len(entries) == 0 {
		return nil
	}
	refIDs := make([]int32, len(entries))
	for i, e := range entries {
		refIDs[i] = c.refID(e.ChrName)
	}
	return coordSource{entries: entries, refIDs: refIDs}
}

// trackSpans extends the per-chromosome spans with the nonempty entries.
func (c *Coverage) trackSpans(entries []Entry) {
	for _, e := range entries {
		if e.End <= e.Start0 {
			continue
		}
		sp := &c.spans[c.ids[e.ChrName]]
		if !sp.found || e.Start0 < sp.start {
			sp.start = e.Start0
		}
		if !sp.found || e.End > sp.end {
			sp.end = e.End
		}
		sp.found = true
	}
}

// NumRefs returns the number of chromosomes known to c.
func (c *Coverage) NumRefs() int { return len(c.names) }

// RefName returns the name of the chromosome with the given ID.
func (c *Coverage) RefName(id int32) string { return c.names[id] }

// RefID returns the ID of the named chromosome.
func (c *Coverage) RefID(name string) (int32, bool) {
	id, ok := c.ids[name]
	return id, ok
}

// Events returns the events of c's entries and boundaries.
func (c *Coverage) Events() *mask.Events[Coord, Entry] { return c.events }

// domain returns the events to sweep: c's own, plus one boundary per
// chromosome span when no boundaries were given.
func (c *Coverage) domain() (*mask.Events[Coord, Entry], error) {
	if c.events.HasBoundaries() {
		return c.events, nil
	}
	var spans mask.Slice[Coord, Entry]
	for id, sp := range c.spans {
		if !sp.found {
			continue
		}
		spans = append(spans, mask.Interval[Coord, Entry]{
			Begin:   Coord{RefID: int32(id), Pos: sp.start},
			End:     Coord{RefID: int32(id), Pos: sp.end},
			Payload: Entry{ChrName: c.names[id], Start0: sp.start, End: sp.end},
		})
	}
	if len(spans) == 0 {
		return c.events, nil
	}
	return c.events.Augment(nil, spans)
}

// SweepCoverage returns a sweep over the segments of c.
func SweepCoverage[C comparable, A any](c *Coverage, category func(level uint32) C, acc mask.Accumulator[Coord, Entry, A]) (*mask.Sweep[Coord, Entry, C, A], error) {
	events, err := c.domain()
	if err != nil {
		return nil, err
	}
	return mask.New(events, category, acc), nil
}
