package interval

import (
	"fmt"
	"io"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/bio-mask/mask"
	"github.com/grailbio/hts/sam"
)

// BEDUnion is the union of a set of intervals, stored per chromosome as a
// sorted sequence of endpoints: the (0-based) start of interval #k is in
// element [2k] and its end is in element [2k+1].  See UnionScanner for
// iteration.
type BEDUnion struct {
	// nameMap is a chromosome-keyed map with disjoint-interval-set values.
	// Always initialized.
	nameMap map[string][]PosType
	// idMap is an optional slice of disjoint-interval-sets, indexed by
	// sam.Header reference ID.  It is only initialized if the BEDUnion was
	// created with SAMHeader set.
	idMap [][]PosType
	// lastChrName is the name of the last queried-by-name chromosome.  If it's
	// nonempty, cur refers to it.
	lastChrName string
	// lastChrID is the ID of the last queried-by-ID chromosome.  If it's
	// nonnegative, cur refers to it.
	lastChrID int
	cur       chrCursor
}

// chrCursor answers point queries against one chromosome's endpoints,
// accelerating runs of nondecreasing positions.
type chrCursor struct {
	endpoints []PosType
	pos       PosType
	idx       EndpointIndex
	// sequential is true if all queries since the last reset have been in
	// order of nondecreasing position.
	sequential bool
}

func (c *chrCursor) reset(endpoints []PosType, pos PosType) bool {
	c.endpoints = endpoints
	if endpoints == nil {
		return false
	}
	c.pos = pos
	c.idx = NewEndpointIndex(pos, endpoints)
	c.sequential = true
	return c.idx.Contained()
}

func (c *chrCursor) contains(pos PosType) bool {
	if c.endpoints == nil {
		return false
	}
	if c.sequential {
		if pos >= c.pos {
			c.idx.Update(pos, c.endpoints)
			c.pos = pos
			return c.idx.Contained()
		}
		c.sequential = false
	}
	return NewEndpointIndex(pos, c.endpoints).Contained()
}

// ContainsByID checks whether the (0-based) interval [pos, pos+1) is contained
// within the BEDUnion, where chromosome is specified by sam.Header ID.
func (u *BEDUnion) ContainsByID(chrID int, pos PosType) bool {
	if chrID != u.lastChrID {
		u.lastChrID = chrID
		u.lastChrName = ""
		// just let this error out the usual way if the BEDUnion was not
		// initialized with ID info.
		return u.cur.reset(u.idMap[chrID], pos)
	}
	return u.cur.contains(pos)
}

// ContainsByName checks whether the (0-based) interval [pos, pos+1) is
// contained within the BEDUnion, where chromosome is specified by name.
func (u *BEDUnion) ContainsByName(chrName string, pos PosType) bool {
	if chrName != u.lastChrName {
		u.lastChrName = chrName
		u.lastChrID = -1
		return u.cur.reset(u.nameMap[chrName], pos)
	}
	return u.cur.contains(pos)
}

// Intersects checks whether the given contiguous possibly-multi-chromosome
// region intersects the interval set.  Chromosomes must be specified by ID.
// It panics if limitRefID:limitPos isn't after startRefID:startPos.
func (u *BEDUnion) Intersects(startRefID int, startPos PosType, limitRefID int, limitPos PosType) bool {
	if startRefID > limitRefID {
		log.Panicf("interval.BEDUnion.Intersects: startRefID %d > limitRefID %d", startRefID, limitRefID)
	}
	if startChrIntervals := u.idMap[startRefID]; startChrIntervals != nil {
		idxStart := NewEndpointIndex(startPos, startChrIntervals)
		if startRefID < limitRefID {
			if !idxStart.Finished(startChrIntervals) {
				return true
			}
		} else {
			if limitPos <= startPos {
				log.Panicf("interval.BEDUnion.Intersects: limitPos %d <= startPos %d", limitPos, startPos)
			}
			if idxStart.Contained() {
				return true
			}
			return !idxStart.Finished(startChrIntervals) && limitPos > startChrIntervals[idxStart]
		}
	}
	if startRefID == limitRefID {
		return false
	}
	for refID := startRefID + 1; refID < limitRefID; refID++ {
		if len(u.idMap[refID]) > 0 {
			return true
		}
	}
	if limitChrIntervals := u.idMap[limitRefID]; len(limitChrIntervals) > 0 {
		return limitChrIntervals[0] < limitPos
	}
	return false
}

// Scanner returns a UnionScanner over the intervals of the named chromosome.
func (u *BEDUnion) Scanner(chrName string) UnionScanner {
	return NewUnionScanner(u.nameMap[chrName])
}

// ScannerByID returns a UnionScanner over the intervals of the chromosome with
// the given sam.Header ID.  The BEDUnion must have been created with a header.
func (u *BEDUnion) ScannerByID(chrID int) UnionScanner {
	return NewUnionScanner(u.idMap[chrID])
}

// ChrNames returns the names of the chromosomes mentioned by the BEDUnion, in
// no particular order.
func (u *BEDUnion) ChrNames() []string {
	names := make([]string, 0, len(u.nameMap))
	for name := range u.nameMap {
		names = append(names, name)
	}
	return names
}

// NewBEDUnion loads the intervals of a BED file, and merges them.  Unsorted
// input is accepted.
func NewBEDUnion(reader io.Reader, opts NewBEDOpts) (bedUnion BEDUnion, err error) {
	var entries []Entry
	if entries, err = ReadBEDEntries(reader, opts); err != nil {
		return
	}
	return NewBEDUnionFromEntries(entries, opts)
}

// NewBEDUnionFromPath is a wrapper for NewBEDUnion that takes a path instead
// of an io.Reader.
func NewBEDUnionFromPath(path string, opts NewBEDOpts) (bedUnion BEDUnion, err error) {
	var entries []Entry
	if entries, err = ReadBEDEntriesFromPath(vcontext.Background(), path, opts); err != nil {
		return
	}
	return NewBEDUnionFromEntries(entries, opts)
}

// NewBEDUnionFromEntries initializes a BEDUnion from a []Entry, which need not
// be sorted.  This ignores opts.OneBasedInput, since start0 is defined to be
// zero-based.
//
// The union is the set of covered segments of a coverage sweep over the
// entries.  With opts.Invert, every mentioned chromosome (and every header
// reference) gets a [-1, PosTypeMax) boundary, and the uncovered segments are
// kept instead.
func NewBEDUnionFromEntries(entries []Entry, opts NewBEDOpts) (bedUnion BEDUnion, err error) {
	for _, entry := range entries {
		if entry.Start0 < 0 {
			err = fmt.Errorf("interval.NewBEDUnionFromEntries: negative start coordinate on %s", entry.ChrName)
			return
		}
		if (entry.End < entry.Start0) || (entry.End >= PosTypeMax) {
			err = fmt.Errorf("interval.NewBEDUnionFromEntries: invalid coordinate pair [%d, %d)", entry.Start0, entry.End)
			return
		}
	}
	covOpts := CoverageOpts{Header: opts.SAMHeader}
	if opts.Invert {
		covOpts.Boundaries = invertBoundaries(entries, opts.SAMHeader)
	}
	var cov *Coverage
	if cov, err = NewCoverage(entries, covOpts); err != nil {
		return
	}
	var sweep *mask.Sweep[Coord, Entry, int, struct{}]
	if sweep, err = SweepCoverage(cov, mask.Sign, mask.NoAccumulator[Coord, Entry]()); err != nil {
		return
	}
	keep := 1
	if opts.Invert {
		keep = 0
	}
	byID := make([][]PosType, cov.NumRefs())
	for sweep.Scan() {
		seg := sweep.Segment()
		if seg.Category != keep {
			continue
		}
		id := seg.Begin.RefID
		byID[id] = append(byID[id], seg.Begin.Pos, seg.End.Pos)
	}
	if err = sweep.Err(); err != nil {
		return
	}

	bedUnion = initBEDUnion()
	for _, entry := range entries {
		id, _ := cov.RefID(entry.ChrName)
		if byID[id] == nil {
			// A single empty interval qualifies as a "mention".
			byID[id] = []PosType{}
		}
		bedUnion.nameMap[entry.ChrName] = byID[id]
	}
	if opts.SAMHeader != nil {
		bedUnion.idMap = make([][]PosType, len(opts.SAMHeader.Refs()))
		for refID := range bedUnion.idMap {
			bedUnion.idMap[refID] = byID[refID]
		}
	}
	log.Debug.Printf("interval.NewBEDUnionFromEntries: %d chromosome(s), invert=%v", len(bedUnion.nameMap), opts.Invert)
	return
}

// invertBoundaries returns a [-1, PosTypeMax) boundary for each chromosome
// mentioned by entries or header.
func invertBoundaries(entries []Entry, header *sam.Header) []Entry {
	seen := map[string]bool{}
	var boundaries []Entry
	add := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		boundaries = append(boundaries, Entry{ChrName: name, Start0: -1, End: PosTypeMax})
	}
	if header != nil {
		for _, ref := range header.Refs() {
			add(ref.Name())
		}
	}
	for _, entry := range entries {
		add(entry.ChrName)
	}
	return boundaries
}

func initBEDUnion() (bedUnion BEDUnion) {
	bedUnion.nameMap = make(map[string][]PosType)
	bedUnion.lastChrID = -1
	return
}

// Clone returns a new BEDUnion which shares the interval set, but has its own
// search state.
func (u *BEDUnion) Clone() (bedUnion BEDUnion) {
	bedUnion.nameMap = u.nameMap
	bedUnion.idMap = u.idMap
	bedUnion.lastChrID = -1
	return
}
