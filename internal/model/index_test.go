package model

import (
	"math"
	"testing"
)

func vec(idx []int32, vals []float64) Vector { return Vector{Indices: idx, Values: vals} }

func TestVector_DotAndCosine(t *testing.T) {
	a := vec([]int32{0, 2, 5}, []float64{1, 2, 3})
	b := vec([]int32{2, 3, 5}, []float64{4, 1, 1})
	if got := a.Dot(b); got != 11 {
		t.Errorf("Dot = %v, want 11", got)
	}
	if got := Cosine(a, Vector{}); got != 0 {
		t.Errorf("Cosine with zero = %v", got)
	}
	if got := Cosine(a, a); math.Abs(got-1) > 1e-12 {
		t.Errorf("Cosine(a,a) = %v", got)
	}
}

func testRows() []Vector {
	s := 1 / math.Sqrt2
	return []Vector{
		vec([]int32{0}, []float64{1}),
		vec([]int32{0, 1}, []float64{s, s}),
		vec([]int32{1}, []float64{1}),
		{},
	}
}

func TestSimilarities(t *testing.T) {
	x := FitIndex(testRows())
	sims := x.Similarities(vec([]int32{0}, []float64{1}))
	want := []float64{1, 1 / math.Sqrt2, 0, 0}
	for i := range want {
		if math.Abs(sims[i]-want[i]) > 1e-12 {
			t.Errorf("sims[%d] = %v, want %v", i, sims[i], want[i])
		}
	}
	if got := x.Similarities(Vector{}); len(got) != 4 {
		t.Errorf("zero query len = %d", len(got))
	}
}

func TestQuery_OrderAndClamp(t *testing.T) {
	x := FitIndex(testRows())
	got := x.Query(vec([]int32{0}, []float64{1}), 10)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4 (k clamped to n)", len(got))
	}
	wantRows := []int{0, 1, 2, 3}
	for i, n := range got {
		if n.Row != wantRows[i] {
			t.Errorf("row[%d] = %d, want %d", i, n.Row, wantRows[i])
		}
		if i > 0 && n.Distance < got[i-1].Distance {
			t.Error("distances not ascending")
		}
	}
	// rows 2 and 3 tie at distance 1, row order breaks the tie
	if got[2].Distance != 1 || got[3].Distance != 1 {
		t.Errorf("tail distances = %v, %v", got[2].Distance, got[3].Distance)
	}
	if len(x.Query(vec([]int32{0}, []float64{1}), 2)) != 2 {
		t.Error("k=2 should return 2")
	}
}

func TestQueryRow_SelfFirst(t *testing.T) {
	rows := append(testRows(), vec([]int32{0}, []float64{1})) // duplicate of row 0
	x := FitIndex(rows)
	for i := range rows {
		got := x.QueryRow(i, 3)
		if len(got) == 0 || got[0].Row != i || got[0].Distance != 0 {
			t.Errorf("QueryRow(%d) first = %+v, want self at 0", i, got)
		}
	}
	// duplicate of row 4 is row 0; row 4 still first for itself
	got := x.QueryRow(4, 2)
	if got[0].Row != 4 || got[1].Row != 0 {
		t.Errorf("QueryRow(4) = %+v", got)
	}
	if x.QueryRow(99, 3) != nil || x.QueryRow(0, 0) != nil {
		t.Error("out of range or k=0 should be nil")
	}
}

func TestRestoreIndex(t *testing.T) {
	rows := testRows()
	x := FitIndex(rows)
	r, err := RestoreIndex(rows, x.State())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.NNZ() != x.NNZ() {
		t.Errorf("NNZ = %d, want %d", r.NNZ(), x.NNZ())
	}
	if _, err := RestoreIndex(rows[:2], x.State()); err == nil {
		t.Error("expected row count mismatch error")
	}
	st := x.State()
	st.Postings[0] = []Posting{{Row: 42, Weight: 1}}
	if _, err := RestoreIndex(rows, st); err == nil {
		t.Error("expected out-of-range posting error")
	}
}
