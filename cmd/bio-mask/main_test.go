package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	bedA = "chr1\t0\t10\tx\nchr1\t5\t15\ty\n"
	bedB = "chr2\t0\t4\tz\nchr1\t5\t8\tw\n"
	dict = "@HD\tVN:1.5\n@SQ\tSN:chr1\tLN:20\n@SQ\tSN:chr2\tLN:6\n@SQ\tSN:chr3\tLN:3\n"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0644))
	}
}

func TestMask(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	writeFiles(t, tmpdir, map[string]string{"a.bed": bedA, "b.bed": bedB, "ref.dict": dict})
	ctx := context.Background()
	paths := []string{filepath.Join(tmpdir, "a.bed"), filepath.Join(tmpdir, "b.bed")}

	tests := []struct {
		name string
		opts maskOpts
		want string
	}{
		{
			"default",
			maskOpts{},
			"#CHROM\tSTART\tEND\tCATEGORY\n" +
				"chr1\t0\t15\tcovered\n" +
				"chr2\t0\t4\tcovered\n",
		},
		{
			"depth and count",
			maskOpts{categoryOpts: categoryOpts{depth: true}, count: true},
			"#CHROM\tSTART\tEND\tCATEGORY\tCOUNT\n" +
				"chr1\t0\t5\t1\t1\n" +
				"chr1\t5\t8\t3\t3\n" +
				"chr1\t8\t10\t2\t2\n" +
				"chr1\t10\t15\t1\t1\n" +
				"chr2\t0\t4\t1\t1\n",
		},
		{
			"min depth and names over the whole genome",
			maskOpts{
				categoryOpts: categoryOpts{minDepth: 2},
				headerPath:   filepath.Join(tmpdir, "ref.dict"),
				wholeGenome:  true,
				names:        true,
			},
			"#CHROM\tSTART\tEND\tCATEGORY\tNAMES\n" +
				"chr1\t0\t5\tlow\tx\n" +
				"chr1\t5\t10\tpass\tw,x,y\n" +
				"chr1\t10\t20\tlow\ty\n" +
				"chr2\t0\t6\tlow\tz\n" +
				"chr3\t0\t3\tlow\t.\n",
		},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		require.NoError(t, runMask(ctx, tt.opts, paths, &out), tt.name)
		expect.EQ(t, out.String(), tt.want, tt.name)
	}

	// Gzip output.
	outPath := filepath.Join(tmpdir, "out.tsv.gz")
	require.NoError(t, runMask(ctx, maskOpts{outPath: outPath}, paths, nil))
	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	expect.EQ(t, string(data), tests[0].want)
}

func TestMaskErrors(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	writeFiles(t, tmpdir, map[string]string{"a.bed": bedA, "bounds.bed": "chr1\t0\t12\n", "bad.toml": "[[band]]\nmin = 1\n"})
	ctx := context.Background()
	paths := []string{filepath.Join(tmpdir, "a.bed")}
	var out bytes.Buffer

	// y crosses the end of the boundary.
	err := runMask(ctx, maskOpts{boundariesPath: filepath.Join(tmpdir, "bounds.bed")}, paths, &out)
	assert.Error(t, err)
	err = runMask(ctx, maskOpts{categoryOpts: categoryOpts{depth: true, minDepth: 3}}, paths, &out)
	assert.Error(t, err)
	err = runMask(ctx, maskOpts{categoryOpts: categoryOpts{bandsPath: filepath.Join(tmpdir, "bad.toml")}}, paths, &out)
	assert.Error(t, err)
	err = runMask(ctx, maskOpts{}, []string{filepath.Join(tmpdir, "missing.bed")}, &out)
	assert.Error(t, err)
}

func TestParseBands(t *testing.T) {
	category, err := parseBands([]byte(`
fallback = "none"

[[band]]
name = "low"
min = 1
max = 9

[[band]]
name = "high"
min = 10
`))
	require.NoError(t, err)
	expect.EQ(t, category(0), "none")
	expect.EQ(t, category(1), "low")
	expect.EQ(t, category(9), "low")
	expect.EQ(t, category(10), "high")
	expect.EQ(t, category(1000000), "high")

	_, err = parseBands([]byte(`fallback = "x"`))
	assert.Error(t, err)
	_, err = parseBands([]byte("[[band]]\nname = \"a\"\nmin = 5\nmax = 2\n"))
	assert.Error(t, err)
	_, err = parseBands([]byte("[[band"))
	assert.Error(t, err)
}

func TestUnion(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	writeFiles(t, tmpdir, map[string]string{"b.bed": bedB + bedA, "ref.dict": dict})
	ctx := context.Background()
	path := filepath.Join(tmpdir, "b.bed")

	var out bytes.Buffer
	require.NoError(t, runUnion(ctx, unionOpts{}, path, &out))
	expect.EQ(t, out.String(), "chr1\t0\t15\nchr2\t0\t4\n")

	out.Reset()
	require.NoError(t, runUnion(ctx, unionOpts{invert: true, headerPath: filepath.Join(tmpdir, "ref.dict")}, path, &out))
	expect.EQ(t, out.String(), "chr1\t15\t20\nchr2\t4\t6\nchr3\t0\t3\n")
}

func TestChecksum(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	writeFiles(t, tmpdir, map[string]string{"a.bed": bedA, "b.bed": bedB, "ab.bed": bedB + bedA, "other.bed": bedA})
	ctx := context.Background()
	checksum := func(paths ...string) fileChecksum {
		var out bytes.Buffer
		for i := range paths {
			paths[i] = filepath.Join(tmpdir, paths[i])
		}
		require.NoError(t, runChecksum(ctx, maskOpts{}, paths, &out))
		var csum fileChecksum
		require.NoError(t, json.NewDecoder(strings.NewReader(out.String())).Decode(&csum))
		return csum
	}
	split := checksum("a.bed", "b.bed")
	joined := checksum("ab.bed")
	// Chromosome numbering follows first appearance, so compare per name.
	byName := func(c fileChecksum) map[string]refChecksum {
		m := map[string]refChecksum{}
		for _, r := range c.Refs {
			m[r.Name] = r
		}
		return m
	}
	expect.EQ(t, byName(split), byName(joined))
	expect.EQ(t, byName(split)["chr1"].NSegs, int64(4))
	expect.EQ(t, byName(split)["chr1"].Covered, int64(15))
	assert.NotEqual(t, byName(split), byName(checksum("other.bed")))
}
