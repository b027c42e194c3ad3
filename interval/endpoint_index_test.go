package interval

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
)

func TestExpsearchPosType(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	for iter := 0; iter < 100; iter++ {
		a := make([]PosType, r.Intn(40))
		for i := range a {
			a[i] = PosType(r.Intn(200))
		}
		slices.Sort(a)
		var idx EndpointIndex
		for x := PosType(-1); x < 210; x += PosType(r.Intn(5)) {
			want := SearchPosTypes(a, x)
			got := ExpsearchPosType(a, x, idx)
			expect.EQ(t, got, want, "a=%v x=%d", a, x)
			idx = got
			x++
		}
	}
}

func TestEndpointIndex(t *testing.T) {
	endpoints := []PosType{5, 17, 20, 25}
	ei := NewEndpointIndex(4, endpoints)
	assert.False(t, ei.Contained())
	ei.Update(5, endpoints)
	assert.True(t, ei.Contained())
	expect.EQ(t, ei.Begin(), EndpointIndex(0))
	ei.Update(17, endpoints)
	assert.False(t, ei.Contained())
	expect.EQ(t, ei.Begin(), EndpointIndex(2))
	ei.Update(24, endpoints)
	assert.True(t, ei.Contained())
	assert.False(t, ei.Finished(endpoints))
	ei.Update(25, endpoints)
	assert.True(t, ei.Finished(endpoints))
}

func TestUnionScanner(t *testing.T) {
	us := NewUnionScanner([]PosType{5, 15, 20, 25})
	var start, end PosType
	var got []PosType
	for us.Scan(&start, &end, 22) {
		for pos := start; pos < end; pos++ {
			got = append(got, pos)
		}
	}
	expect.EQ(t, got, []PosType{5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 20, 21})
	expect.EQ(t, us.Pos(), PosType(22))
	got = got[:0]
	for us.Scan(&start, &end, 30) {
		for pos := start; pos < end; pos++ {
			got = append(got, pos)
		}
	}
	expect.EQ(t, got, []PosType{22, 23, 24})
	expect.EQ(t, us.Pos(), PosType(PosTypeMax))
}
