package demux

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestTable_LastWriteWins(t *testing.T) {
	tb := NewTable()
	c := Coord{X: 3, Y: -1}
	tb.Set("T1", c, 1.0)
	tb.Set("T1", c, 2.0)

	v, ok := tb.Get("T1", c)
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)
	assert.Equal(t, 1, tb.Len())
}

func TestTable_MergeOverwrites(t *testing.T) {
	tb := NewTable()
	tb.Set("T1", Coord{0, 0}, 1)
	tb.Set("T2", Coord{0, 0}, 5)

	delta := NewTable()
	delta.Set("T1", Coord{0, 0}, 9)
	delta.Set("T3", Coord{1, 1}, 7)
	tb.Merge(delta)

	want := Table{
		"T1": {{0, 0}: 9},
		"T2": {{0, 0}: 5},
		"T3": {{1, 1}: 7},
	}
	if diff := cmp.Diff(want, tb); diff != "" {
		t.Errorf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_ExportIsACopy(t *testing.T) {
	tb := NewTable()
	tb.Set("T1", Coord{1, 2}, 4)

	out := tb.Export()
	out["T1"][Coord{1, 2}] = 99
	out["T9"] = map[Coord]float64{}

	v, _ := tb.Get("T1", Coord{1, 2})
	assert.Equal(t, 4.0, v)
	assert.NotContains(t, tb, "T9")
}

func TestTable_NamesSorted(t *testing.T) {
	tb := NewTable()
	for _, n := range []string{"VDD", "IDD", "FMAX"} {
		tb.Set(n, Coord{}, 0)
	}
	assert.Equal(t, []string{"FMAX", "IDD", "VDD"}, tb.Names())
}

func TestTable_GetMissing(t *testing.T) {
	_, ok := NewTable().Get("nope", Coord{})
	assert.False(t, ok)
}
