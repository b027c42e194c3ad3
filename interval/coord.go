package interval

import (
	"fmt"

	"github.com/grailbio/bio-mask/mask"
)

// Coord is a genomic position: a reference (chromosome) ID, and a 0-based
// position on it.  Coords are ordered lexicographically, so a single sweep can
// cover many chromosomes.
type Coord struct {
	RefID int32
	Pos   PosType
}

// Compare returns (negative int, 0, positive int) if (r<r1, r=r1, r>r1)
// respectively.
func (r Coord) Compare(r1 Coord) int {
	if r.RefID != r1.RefID {
		if r.RefID < r1.RefID {
			return -1
		}
		return 1
	}
	if r.Pos != r1.Pos {
		if r.Pos < r1.Pos {
			return -1
		}
		return 1
	}
	return 0
}

// LT returns true iff r < r1.
func (r Coord) LT(r1 Coord) bool {
	return r.Compare(r1) < 0
}

// EQ returns true iff r = r1.
func (r Coord) EQ(r1 Coord) bool {
	return r == r1
}

// String implements fmt.Stringer.
func (r Coord) String() string {
	return fmt.Sprintf("%d:%d", r.RefID, r.Pos)
}

// CompareCoords is the mask.Compare for Coords.
var CompareCoords mask.Compare[Coord] = func(a, b Coord) int { return a.Compare(b) }
