package interval

import (
	"iter"
	"math"
	"slices"
)

// An interval-union on one chromosome is represented as a sorted []PosType of
// interval endpoints.  Given the intervals
//   [5, 15)
//   [7, 17)
//   [20, 25)
// the union is [5, 17) U [20, 25), stored as {5, 17, 20, 25}.  This is the
// form in which BEDUnion keeps the covered segments produced by a coverage
// sweep.
//
// UnionScanner walks the positions of such a union up to a limit:
//   us := NewUnionScanner([]PosType{5, 17, 20, 25})
//   var start, end PosType
//   for us.Scan(&start, &end, 22) {
//     for pos := start; pos < end; pos++ {
//       fmt.Printf("%d ", pos)
//     }
//   }
// prints "5 6 7 8 9 10 11 12 13 14 15 16 20 21 ", and a later Scan with a
// larger limit resumes at 22.

// PosType is the type used to represent interval coordinates.  int32 is what
// BAM is limited to.
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt32

// SearchPosTypes returns the index of x in a[], or the position where x would
// be inserted if x isn't in a (this could be len(a)).
func SearchPosTypes(a []PosType, x PosType) EndpointIndex {
	idx, _ := slices.BinarySearch(a, x)
	return EndpointIndex(idx)
}

// ExpsearchPosType returns SearchPosTypes(a, x), given that the answer is at
// least idx.  It probes a[idx], a[idx+1], a[idx+3], a[idx+7], ... before
// finishing with a binary search, so it's the better choice when the queried
// positions increase slowly.
func ExpsearchPosType(a []PosType, x PosType, idx EndpointIndex) EndpointIndex {
	lo := idx
	hi := EndpointIndex(len(a))
	for step := EndpointIndex(1); idx < hi; step *= 2 {
		if a[idx] >= x {
			hi = idx
			break
		}
		lo = idx + 1
		idx += step
	}
	for lo < hi {
		mid := EndpointIndex((uint(lo) + uint(hi)) >> 1)
		if a[mid] >= x {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// EndpointIndex is SearchPosTypes(endpoints, pos+1) for some position pos.
// The "+1" lines the search up with left-closed right-open intervals: pos is
// contained in the union iff the index is odd.
type EndpointIndex uint32

// NewEndpointIndex returns the EndpointIndex of pos.
func NewEndpointIndex(pos PosType, endpoints []PosType) EndpointIndex {
	return SearchPosTypes(endpoints, pos+1)
}

// Contained returns whether the position is inside an interval.
func (ei EndpointIndex) Contained() bool {
	return ei&1 != 0
}

// Finished returns whether the position is past all the intervals.
func (ei EndpointIndex) Finished(endpoints []PosType) bool {
	return ei >= EndpointIndex(len(endpoints))
}

// Begin returns the index of the start of the interval containing the
// position, or of the next interval if there is none.
func (ei EndpointIndex) Begin() EndpointIndex {
	return ei &^ 1
}

// Update moves the EndpointIndex to newPos, which must not be smaller than
// its previous position.
func (ei *EndpointIndex) Update(newPos PosType, endpoints []PosType) {
	*ei = ExpsearchPosType(endpoints, newPos+1, *ei)
}

// UnionScanner iterates over an interval-union.
// Invariants:
//   endpointIdx == SearchPosTypes(endpoints, pos+1)
//   pos is either contained in an interval, or is PosTypeMax
type UnionScanner struct {
	endpoints   []PosType
	pos         PosType
	endpointIdx EndpointIndex
}

// NewUnionScanner returns a UnionScanner positioned at the first interval.
func NewUnionScanner(endpoints []PosType) UnionScanner {
	if len(endpoints) == 0 {
		return UnionScanner{pos: PosTypeMax}
	}
	return UnionScanner{
		endpoints:   endpoints,
		pos:         endpoints[0],
		endpointIdx: 1,
	}
}

// Pos returns the next position to be iterated over, or PosTypeMax if there
// aren't any.
func (us *UnionScanner) Pos() PosType {
	return us.pos
}

// Scan sets [*start, *end) to the next run of contained positions below
// limit, and returns false once there are none left.
func (us *UnionScanner) Scan(start *PosType, end *PosType, limit PosType) bool {
	if us.pos >= limit {
		return false
	}
	*start = us.pos
	intervalEnd := us.endpoints[us.endpointIdx]
	if intervalEnd > limit {
		us.pos = limit
		*end = limit
		return true
	}
	*end = intervalEnd
	us.endpointIdx++
	if us.endpointIdx.Finished(us.endpoints) {
		us.pos = PosTypeMax
	} else {
		us.pos = us.endpoints[us.endpointIdx]
		us.endpointIdx++
	}
	return true
}

// All returns an iterator over the remaining [start, end) runs below limit.
func (us *UnionScanner) All(limit PosType) iter.Seq2[PosType, PosType] {
	return func(yield func(PosType, PosType) bool) {
		var start, end PosType
		for us.Scan(&start, &end, limit) {
			if !yield(start, end) {
				return
			}
		}
	}
}
