package main

import (
	"context"
	"io"
	"sort"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/bio-mask/interval"
)

type unionOpts struct {
	headerPath    string
	invert        bool
	oneBasedInput bool
}

// runUnion prints the merged (or inverted) intervals of a BED file as BED.
// Chromosomes are printed in header order when a header is given, and in
// lexicographic order otherwise.  Inverted intervals are clipped to
// [0, reference length).
func runUnion(ctx context.Context, opts unionOpts, path string, stdout io.Writer) error {
	bedOpts := interval.NewBEDOpts{Invert: opts.invert, OneBasedInput: opts.oneBasedInput}
	lengths := map[string]interval.PosType{}
	var chrNames []string
	if opts.headerPath != "" {
		header, err := readHeader(ctx, opts.headerPath)
		if err != nil {
			return err
		}
		bedOpts.SAMHeader = header
		for _, ref := range header.Refs() {
			chrNames = append(chrNames, ref.Name())
			lengths[ref.Name()] = interval.PosType(ref.Len())
		}
	}
	entries, err := interval.ReadBEDEntriesFromPath(ctx, path, bedOpts)
	if err != nil {
		return err
	}
	u, err := interval.NewBEDUnionFromEntries(entries, bedOpts)
	if err != nil {
		return err
	}
	var extra []string
	for _, name := range u.ChrNames() {
		if _, ok := lengths[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	chrNames = append(chrNames, extra...)

	w := tsv.NewWriter(stdout)
	nHeaderRefs := len(lengths)
	for i, name := range chrNames {
		limit := interval.PosType(interval.PosTypeMax)
		us := u.Scanner(name)
		if i < nHeaderRefs {
			limit = lengths[name]
			us = u.ScannerByID(i)
		}
		for start, end := range us.All(limit) {
			if start < 0 {
				start = 0
			}
			if start >= end {
				continue
			}
			w.WriteString(name)
			w.WriteInt64(int64(start))
			w.WriteInt64(int64(end))
			if err := w.EndLine(); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}
