package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/bio-mask/mask"
)

// bandConfig is the layout of a -bands file:
//
//   fallback = "other"
//
//   [[band]]
//   name = "low"
//   min = 1
//   max = 9
//
//   [[band]]
//   name = "high"
//   min = 10
//
// A band without max has no upper bound.
type bandConfig struct {
	Fallback string       `toml:"fallback"`
	Band     []bandRecord `toml:"band"`
}

type bandRecord struct {
	Name string  `toml:"name"`
	Min  uint32  `toml:"min"`
	Max  *uint32 `toml:"max"`
}

func parseBands(data []byte) (func(level uint32) string, error) {
	var cfg bandConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Band) == 0 {
		return nil, fmt.Errorf("no [[band]] entries")
	}
	bands := make([]mask.Band, len(cfg.Band))
	for i, b := range cfg.Band {
		bands[i] = mask.Band{Name: b.Name, Min: b.Min, Max: mask.MaxLevel}
		if b.Max != nil {
			bands[i].Max = *b.Max
		}
	}
	return mask.Bands(bands, cfg.Fallback)
}

func readBands(ctx context.Context, path string) (category func(level uint32) string, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return nil, errors.E(err, "open", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	var data []byte
	if data, err = io.ReadAll(in.Reader(ctx)); err != nil {
		return nil, errors.E(err, "read", path)
	}
	if category, err = parseBands(data); err != nil {
		return nil, errors.E(err, "bands", path)
	}
	return category, nil
}

// categoryOpts selects the category function of the mask command.
type categoryOpts struct {
	bandsPath string
	minDepth  uint
	depth     bool
}

// newCategory returns the category function selected by opts.  The default
// names covered and uncovered positions.
func newCategory(ctx context.Context, opts categoryOpts) (func(level uint32) string, error) {
	n := 0
	for _, set := range []bool{opts.bandsPath != "", opts.minDepth > 0, opts.depth} {
		if set {
			n++
		}
	}
	if n > 1 {
		return nil, fmt.Errorf("-bands, -min-depth and -depth are mutually exclusive")
	}
	switch {
	case opts.bandsPath != "":
		return readBands(ctx, opts.bandsPath)
	case opts.depth:
		return func(level uint32) string { return strconv.FormatUint(uint64(level), 10) }, nil
	case opts.minDepth > 0:
		if opts.minDepth > mask.MaxLevel {
			return nil, fmt.Errorf("-min-depth %d is too large", opts.minDepth)
		}
		return mask.Bands([]mask.Band{
			{Name: "pass", Min: uint32(opts.minDepth), Max: mask.MaxLevel},
		}, "low")
	}
	return mask.Bands([]mask.Band{{Name: "uncovered", Min: 0, Max: 0}}, "covered")
}
