package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"hash"
	"io"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/bio-mask/interval"
	"github.com/grailbio/bio-mask/mask"
)

// refChecksum is the checksum of the segments on one chromosome.
type refChecksum struct {
	// Name is the name of the reference.
	Name string
	// NSegs is the number of segments.
	NSegs int64
	// Bases is the total length of the segments.
	Bases int64
	// Covered is the total length of the segments with nonzero depth.
	Covered int64
	// Sum is the sum of the hashes of the segments.  A quick commutative hash.
	Sum uint64
}

// fileChecksum is the checksum of the mask of a set of BED files.
type fileChecksum struct {
	Refs []refChecksum
}

func hashSegment(h hash.Hash64, name string, seg mask.Segment[interval.Coord, uint32, struct{}]) uint64 {
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[0:], uint32(seg.Begin.Pos))
	binary.LittleEndian.PutUint32(buf[4:], uint32(seg.End.Pos))
	binary.LittleEndian.PutUint32(buf[8:], seg.Category)
	h.Reset()
	h.Write(gunsafe.StringToBytes(name))
	h.Write(buf[:])
	return h.Sum64()
}

// checksumCoverage summarizes the depth segments of cov.  Two coverages with
// the same checksum almost certainly have the same mask.
func checksumCoverage(cov *interval.Coverage) (csum fileChecksum, err error) {
	s, err := interval.SweepCoverage(cov, mask.Identity, mask.NoAccumulator[interval.Coord, interval.Entry]())
	if err != nil {
		return
	}
	csum.Refs = make([]refChecksum, cov.NumRefs())
	for id := range csum.Refs {
		csum.Refs[id].Name = cov.RefName(int32(id))
	}
	h := seahash.New()
	for seg, serr := range s.All() {
		if serr != nil {
			return csum, serr
		}
		c := &csum.Refs[seg.Begin.RefID]
		length := int64(seg.End.Pos - seg.Begin.Pos)
		c.NSegs++
		c.Bases += length
		if seg.Category > 0 {
			c.Covered += length
		}
		c.Sum += hashSegment(h, c.Name, seg)
	}
	return
}

func runChecksum(ctx context.Context, opts maskOpts, paths []string, stdout io.Writer) error {
	cov, err := loadCoverage(ctx, opts, paths)
	if err != nil {
		return err
	}
	csum, err := checksumCoverage(cov)
	if err != nil {
		return err
	}
	js, err := json.MarshalIndent(csum, "", "  ")
	if err != nil {
		log.Panic(err)
	}
	_, err = stdout.Write(append(js, '\n'))
	return err
}
