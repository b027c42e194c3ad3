package main

// bio-mask computes the coverage mask of a set of BED files: the partition of
// the covered genome into maximal runs of constant category, where the
// category is a function of the number of overlapping intervals.
//
// Usage:
//   bio-mask mask [flags] a.bed [b.bed ...]
//   bio-mask union [-invert] a.bed
//   bio-mask checksum a.bed [b.bed ...]

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"v.io/x/lib/cmdline"
)

func registerInputFlags(cmd *cmdline.Command, opts *maskOpts) {
	cmd.Flags.StringVar(&opts.boundariesPath, "boundaries", "", `BED file restricting the domain of the mask.
Every input interval must lie within a boundary, and segments never span
the gap between two boundaries.`)
	cmd.Flags.StringVar(&opts.headerPath, "header", "", `SAM header or Picard sequence dictionary (.dict).
Fixes the chromosome order of the output.`)
	cmd.Flags.BoolVar(&opts.wholeGenome, "whole-genome", false, "Use every -header reference as a boundary, so that uncovered chromosomes are reported too")
	cmd.Flags.BoolVar(&opts.oneBasedInput, "one-based", false, "Interpret BED coordinates as one-based [start, end]")
}

func newCmdMask() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "mask",
		Short:    "Compute the coverage mask of BED files",
		ArgsName: "bedpath...",
		Long: `
Loads the given BED files, and prints the segments of their coverage mask as
TSV with columns #CHROM, START, END, CATEGORY, followed by COUNT and NAMES if
requested.  Without -boundaries or -whole-genome, the domain of each
chromosome is the extent of its intervals.`,
	}
	opts := maskOpts{}
	registerInputFlags(cmd, &opts)
	cmd.Flags.StringVar(&opts.bandsPath, "bands", "", `TOML file of named depth bands, e.g.
  fallback = "other"
  [[band]]
  name = "low"
  min = 1
  max = 9
  [[band]]
  name = "high"
  min = 10`)
	cmd.Flags.UintVar(&opts.minDepth, "min-depth", 0, `If nonzero, categorize positions as "pass" (depth >= min-depth) or "low"`)
	cmd.Flags.BoolVar(&opts.depth, "depth", false, "Use the depth itself as the category")
	cmd.Flags.BoolVar(&opts.count, "count", false, "Print the number of intervals overlapping each segment")
	cmd.Flags.BoolVar(&opts.names, "names", false, "Print the distinct names (BED column 4) of the intervals overlapping each segment")
	cmd.Flags.StringVar(&opts.outPath, "out", "", "Output path; stdout if empty.  Compressed with gzip if it ends in .gz")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) == 0 {
			return fmt.Errorf("mask takes at least one BED path")
		}
		return runMask(vcontext.Background(), opts, argv, env.Stdout)
	})
	return cmd
}

func newCmdUnion() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "union",
		Short:    "Print the merged intervals of a BED file",
		ArgsName: "bedpath",
	}
	opts := unionOpts{}
	cmd.Flags.BoolVar(&opts.invert, "invert", false, "Print the complement of the union instead")
	cmd.Flags.StringVar(&opts.headerPath, "header", "", "SAM header or Picard sequence dictionary; fixes the chromosome order, and the extent of inverted chromosomes")
	cmd.Flags.BoolVar(&opts.oneBasedInput, "one-based", false, "Interpret BED coordinates as one-based [start, end]")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("union takes one BED path, but got %v", argv)
		}
		return runUnion(vcontext.Background(), opts, argv[0], env.Stdout)
	})
	return cmd
}

func newCmdChecksum() *cmdline.Command {
	cmd := &cmdline.Command{
		Name: "checksum",
		Short: `Compute a checksum of the coverage mask of BED files.
The checksum is a JSON string summarizing the depth segments of each chromosome`,
		ArgsName: "bedpath...",
	}
	opts := maskOpts{}
	registerInputFlags(cmd, &opts)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) == 0 {
			return fmt.Errorf("checksum takes at least one BED path")
		}
		return runChecksum(vcontext.Background(), opts, argv, env.Stdout)
	})
	return cmd
}

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-mask",
			Short:    "Interval coverage masks",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdMask(),
				newCmdUnion(),
				newCmdChecksum(),
			},
		})
}
