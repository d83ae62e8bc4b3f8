package core

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEpoch(t *testing.T, starts, stops []float64, labels []string) *Epoch {
	t.Helper()

	e, err := NewEpoch(starts, stops, labels)
	require.NoError(t, err)

	return e
}

func TestNewEpochSortsStable(t *testing.T) {
	e := mustEpoch(t, []float64{5, 1, 1}, []float64{6, 2, 3}, []string{"c", "a", "b"})

	want := []Interval{{1, 2, "a"}, {1, 3, "b"}, {5, 6, "c"}}
	if diff := cmp.Diff(want, e.Rows()); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	_, err := NewEpoch([]float64{1}, nil, nil)
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestFromStringArray(t *testing.T) {
	e, err := FromStringArray([]string{"A", "A", "B", "C", "C"}, 2, nil)
	require.NoError(t, err)

	want := []Interval{{0, 4, "A"}, {4, 6, "B"}, {6, 8, "C"}}
	if diff := cmp.Diff(want, e.Rows()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	tm := []float64{10, 11, 12, 13, 14}
	e, err = FromStringArray([]string{"A", "A", "B", "C", "C"}, 1, tm)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 12, 13}, e.Starts())
	assert.Equal(t, []float64{12, 13, 14}, e.Stops())

	_, err = FromStringArray([]string{"A"}, 1, []float64{1, 2})
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestFromLogicalArray(t *testing.T) {
	e, err := FromLogicalArray([]bool{false, true, true, false, true}, 0.5, nil)
	require.NoError(t, err)

	want := []Interval{{0.5, 1.5, ""}, {2, 2, ""}}
	if diff := cmp.Diff(want, e.Rows()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	assert.False(t, e.HasLabels())
}

func TestEpochLabels(t *testing.T) {
	e := mustEpoch(t, []float64{0, 10, 20}, []float64{5, 15, 25}, []string{"nrem", "rem", "nrem"})

	assert.True(t, e.HasLabels())
	assert.Equal(t, []string{"nrem", "rem"}, e.UniqueLabels())
	assert.False(t, e.IsLabelsUnique())
	assert.Equal(t, 2, e.ByLabel("nrem").Len())
	assert.Equal(t, 1, e.LabelSlice("rem").Len())

	relabeled, err := e.SetLabels([]string{"a", "b", "c"})
	require.NoError(t, err)
	assert.True(t, relabeled.IsLabelsUnique())
	assert.Equal(t, "nrem", e.At(0).Label, "original is unchanged")
}

func TestEpochColumnsFollowSelection(t *testing.T) {
	e := mustEpoch(t, []float64{0, 10, 20}, []float64{5, 15, 25}, nil)

	e, err := e.AddColumn("peak", []float64{1, 2, 3})
	require.NoError(t, err)

	sub := e.Select([]int{2, 0})
	col, ok := sub.Column("peak")
	require.True(t, ok)
	assert.Equal(t, []float64{3, 1}, col)

	_, err = e.AddColumn("bad", []float64{1})
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestEpochShiftKeepsMetadata(t *testing.T) {
	e := mustEpoch(t, []float64{1}, []float64{2}, nil).WithMetadata(Metadata{"note": "x"})

	s := e.Shift(10)
	assert.Equal(t, []float64{11}, s.Starts())
	assert.Equal(t, "x", s.Metadata()["note"])
}

func TestEpochAdd(t *testing.T) {
	a := mustEpoch(t, []float64{10}, []float64{11}, []string{"b"})
	b := mustEpoch(t, []float64{1}, []float64{2}, []string{"a"})

	sum := a.Add(b)
	assert.Equal(t, []string{"a", "b"}, sum.Labels())
}

func TestEpochSlices(t *testing.T) {
	e := mustEpoch(t, []float64{0, 10, 20, 30}, []float64{1, 15, 30, 31}, nil)

	assert.Equal(t, []float64{10, 20}, e.TimeSlice(0, 30).Starts())
	assert.Equal(t, []float64{10, 20}, e.DurationSlice(2, math.NaN()).Starts())
	assert.Equal(t, []float64{0, 10, 30}, e.DurationSlice(math.NaN(), 5).Starts())
	assert.Equal(t, 4, e.DurationSlice(math.NaN(), math.NaN()).Len())
}

func TestIsOverlapping(t *testing.T) {
	assert.False(t, mustEpoch(t, []float64{0, 2}, []float64{2, 3}, nil).IsOverlapping())
	assert.True(t, mustEpoch(t, []float64{0, 2, 5}, []float64{2, 3, 6}, nil).Add(
		mustEpoch(t, []float64{2.5}, []float64{4}, nil)).IsOverlapping())
}

func TestFillBlank(t *testing.T) {
	e := mustEpoch(t, []float64{0, 4}, []float64{2, 6}, []string{"a", "b"})

	cases := map[FillMethod][]Interval{
		FromLeft:    {{0, 4, "a"}, {4, 6, "b"}},
		FromRight:   {{0, 2, "a"}, {2, 6, "b"}},
		FromNearest: {{0, 3, "a"}, {3, 6, "b"}},
	}

	for method, want := range cases {
		got, err := e.FillBlank(method)
		require.NoError(t, err)

		if diff := cmp.Diff(want, got.Rows()); diff != "" {
			t.Fatalf("%s (-want +got):\n%s", method, diff)
		}
	}

	_, err := e.FillBlank(FillMethod(9))
	require.ErrorIs(t, err, ErrFillMethod)

	m, err := ParseFillMethod("from_nearest")
	require.NoError(t, err)
	assert.Equal(t, FromNearest, m)

	_, err = ParseFillMethod("sideways")
	require.ErrorIs(t, err, ErrFillMethod)
}

func TestDeleteInBetween(t *testing.T) {
	e := mustEpoch(t,
		[]float64{0, 4, 6, 9, 20},
		[]float64{5, 5.5, 12, 11, 30},
		[]string{"left", "inside", "right", "inner", "span"})

	got := e.DeleteInBetween(4, 10).Rows()
	want := []Interval{
		{0, 4, "left"},
		{10, 12, "right"},
		{10, 11, "inner"},
		{20, 30, "span"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	split := mustEpoch(t, []float64{0}, []float64{10}, []string{"x"}).DeleteInBetween(3, 4).Rows()
	if diff := cmp.Diff([]Interval{{0, 3, "x"}, {4, 10, "x"}}, split); diff != "" {
		t.Fatalf("split (-want +got):\n%s", diff)
	}
}

func TestProportionByLabel(t *testing.T) {
	e := mustEpoch(t, []float64{0, 10, 20}, []float64{10, 20, 40}, []string{"wake", "nrem", "wake"})

	got := e.ProportionByLabel(5, 25)
	assert.InDelta(t, 0.5, got["wake"], 1e-12)
	assert.InDelta(t, 0.5, got["nrem"], 1e-12)

	all := e.ProportionByLabel(math.NaN(), math.NaN())
	assert.InDelta(t, 0.75, all["wake"], 1e-12)

	none := e.ProportionByLabel(100, 200)
	assert.Equal(t, map[string]float64{"nrem": 0, "wake": 0}, none)
}

func TestCount(t *testing.T) {
	e := mustEpoch(t, []float64{0, 100, 400, 900}, []float64{10, 110, 410, 1000}, nil)

	counts, err := e.Count(math.NaN(), math.NaN(), 0)
	require.NoError(t, err)
	// edges 0, 300, 600, 900, 1200; midpoints 5, 105, 405, 950
	assert.Equal(t, []int{2, 1, 0, 1}, counts)
}

func TestMerge(t *testing.T) {
	e := mustEpoch(t, []float64{0, 2.05, 5, 5.5}, []float64{2, 3, 6, 5.8}, []string{"a", "b", "c", "d"})

	got := e.Merge(0.1).Rows()
	want := []Interval{{0, 3, "a"}, {5, 6, "c"}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestArrays(t *testing.T) {
	e := mustEpoch(t, []float64{0, 5}, []float64{1, 6}, nil)

	assert.Equal(t, [][2]float64{{0, 1}, {5, 6}}, e.AsArray())
	assert.Equal(t, []float64{0, 1, 5, 6}, e.Flatten())
	assert.Contains(t, e.String(), "2 epochs")
}

func TestEpochJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sleep.json")

	e := mustEpoch(t, []float64{3, 1}, []float64{4, 2}, []string{"b", "a"}).WithMetadata(Metadata{"source": "hmm"})
	e, err := e.AddColumn("score", []float64{0.3, 0.1})
	require.NoError(t, err)

	require.NoError(t, e.Save(path))

	got, err := LoadEpoch(path)
	require.NoError(t, err)

	if diff := cmp.Diff(e.Rows(), got.Rows()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	score, ok := got.Column("score")
	require.True(t, ok)
	assert.Equal(t, []float64{0.3, 0.1}, score)

	md := got.Metadata()
	assert.Equal(t, "hmm", md["source"])
	assert.NotEmpty(t, md[MetaRunID])
	assert.NotEmpty(t, md[MetaCreated])

	_, err = LoadEpoch(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, ErrNoFile)
}

func TestEpochXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "epochs.xlsx")

	e := mustEpoch(t, []float64{0, 10}, []float64{5, 12}, []string{"pre", "maze"})
	e, err := e.AddColumn("n", []float64{7, 9})
	require.NoError(t, err)

	require.NoError(t, e.WriteXLSX(path))

	got, err := ReadXLSX(path)
	require.NoError(t, err)

	if diff := cmp.Diff(e.Rows(), got.Rows()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"n"}, got.Columns())
}
