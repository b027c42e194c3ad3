package main

import (
	"context"
	"io"
	"slices"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/bio-mask/interval"
	"github.com/grailbio/bio-mask/mask"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/gzip"
)

type maskOpts struct {
	categoryOpts
	boundariesPath string
	headerPath     string
	wholeGenome    bool
	oneBasedInput  bool
	count          bool
	names          bool
	outPath        string
}

// segmentStats is the accumulator of the mask command.
type segmentStats struct {
	n     int
	names []string
}

func reduceStats(acc segmentStats, iv mask.Interval[interval.Coord, interval.Entry]) segmentStats {
	acc.n++
	if name := iv.Payload.Name; name != "" {
		// Clip makes append copy, so the seed's names are never shared.
		acc.names = append(slices.Clip(acc.names), name)
	}
	return acc
}

// readHeader parses a SAM header, or a Picard sequence dictionary.
func readHeader(ctx context.Context, path string) (header *sam.Header, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return nil, errors.E(err, "open", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	var text []byte
	if text, err = io.ReadAll(in.Reader(ctx)); err != nil {
		return nil, errors.E(err, "read", path)
	}
	if header, err = sam.NewHeader(text, nil); err != nil {
		return nil, errors.E(err, "parse header", path)
	}
	return header, nil
}

// loadCoverage reads the BED files in parallel, and builds a Coverage from
// the first one augmented with each of the others.
func loadCoverage(ctx context.Context, opts maskOpts, paths []string) (*interval.Coverage, error) {
	bedOpts := interval.NewBEDOpts{OneBasedInput: opts.oneBasedInput}
	entries := make([][]interval.Entry, len(paths))
	err := traverse.Each(len(paths), func(i int) (err error) {
		entries[i], err = interval.ReadBEDEntriesFromPath(ctx, paths[i], bedOpts)
		return
	})
	if err != nil {
		return nil, err
	}
	var covOpts interval.CoverageOpts
	if opts.headerPath != "" {
		if covOpts.Header, err = readHeader(ctx, opts.headerPath); err != nil {
			return nil, err
		}
	}
	covOpts.WholeGenome = opts.wholeGenome
	if opts.boundariesPath != "" {
		if covOpts.Boundaries, err = interval.ReadBEDEntriesFromPath(ctx, opts.boundariesPath, bedOpts); err != nil {
			return nil, err
		}
	}
	cov, err := interval.NewCoverage(entries[0], covOpts)
	if err != nil {
		return nil, errors.E(err, paths[0])
	}
	for i := 1; i < len(paths); i++ {
		if cov, err = cov.Augment(entries[i], nil); err != nil {
			return nil, errors.E(err, paths[i])
		}
	}
	log.Printf("loaded %d BED file(s), %d chromosome(s)", len(paths), cov.NumRefs())
	return cov, nil
}

// writeSegments writes the segments of s as TSV rows.
func writeSegments(cov *interval.Coverage, s *mask.Sweep[interval.Coord, interval.Entry, string, segmentStats], opts maskOpts, out io.Writer) error {
	w := tsv.NewWriter(out)
	w.WriteString("#CHROM\tSTART\tEND\tCATEGORY")
	if opts.count {
		w.WriteString("\tCOUNT")
	}
	if opts.names {
		w.WriteString("\tNAMES")
	}
	if err := w.EndLine(); err != nil {
		return err
	}
	nSeg := 0
	for s.Scan() {
		seg := s.Segment()
		w.WriteString(cov.RefName(seg.Begin.RefID))
		w.WriteInt64(int64(seg.Begin.Pos))
		w.WriteInt64(int64(seg.End.Pos))
		w.WriteString(seg.Category)
		if opts.count {
			w.WriteInt64(int64(seg.Acc.n))
		}
		if opts.names {
			names := slices.Compact(slices.Sorted(slices.Values(seg.Acc.names)))
			if len(names) == 0 {
				w.WriteString(".")
			} else {
				w.WriteString(strings.Join(names, ","))
			}
		}
		if err := w.EndLine(); err != nil {
			return err
		}
		nSeg++
	}
	if err := s.Err(); err != nil {
		return err
	}
	log.Debug.Printf("wrote %d segment(s)", nSeg)
	return w.Flush()
}

func runMask(ctx context.Context, opts maskOpts, paths []string, stdout io.Writer) (err error) {
	category, err := newCategory(ctx, opts.categoryOpts)
	if err != nil {
		return err
	}
	cov, err := loadCoverage(ctx, opts, paths)
	if err != nil {
		return err
	}
	acc := mask.Accumulator[interval.Coord, interval.Entry, segmentStats]{}
	if opts.count || opts.names {
		acc.Reduce = reduceStats
	}
	s, err := interval.SweepCoverage(cov, category, acc)
	if err != nil {
		return err
	}
	if opts.outPath == "" {
		return writeSegments(cov, s, opts, stdout)
	}
	out, err := file.Create(ctx, opts.outPath)
	if err != nil {
		return errors.E(err, "create", opts.outPath)
	}
	defer file.CloseAndReport(ctx, out, &err)
	if fileio.DetermineType(opts.outPath) != fileio.Gzip {
		return writeSegments(cov, s, opts, out.Writer(ctx))
	}
	gz := gzip.NewWriter(out.Writer(ctx))
	if err = writeSegments(cov, s, opts, gz); err != nil {
		return err
	}
	return gz.Close()
}
