package pricing

import (
	"math"
	"testing"
)

func TestArange(t *testing.T) {
	tests := []struct {
		start, stop, step float64
		limit             int
		expected          []float64
	}{
		{0, 1, 0.25, 10, []float64{0, 0.25, 0.5, 0.75, 1}},
		{0, 1, 0.3, 10, []float64{0, 0.3, 0.6, 0.9}},
		{65, 68, 1, 10, []float64{65, 66, 67, 68}},
		{2, 2, 1, 10, []float64{2}},
		{0, 10, 1, 3, []float64{0, 1, 2}},
		{0, 1, 1e-300, 2, []float64{0, 1e-300}},
	}

	for _, test := range tests {
		actual := arange(test.start, test.stop, test.step, test.limit)
		if len(actual) != len(test.expected) {
			t.Fatalf("arange(%g, %g, %g): expected %v, got %v", test.start, test.stop, test.step, test.expected, actual)
		}
		for i := range actual {
			if math.Abs(actual[i]-test.expected[i]) > 1e-12 {
				t.Fatalf("arange(%g, %g, %g): expected %v, got %v", test.start, test.stop, test.step, test.expected, actual)
			}
		}
	}
}

func TestBuildGridShape(t *testing.T) {
	tests := []struct {
		spot, strike, expiry float64
	}{
		{100, 130, 1},
		{130, 100, 0.25},
		{100, 100, 1},
		{42.5, 40, 0.3},
	}

	for _, test := range tests {
		g := BuildGrid(test.spot, test.strike, test.expiry)

		rows, cols := g.Dims()
		if rows != GridSteps+1 {
			t.Fatalf("%+v: expected %d time samples, got %d", test, GridSteps+1, rows)
		}
		sr, sc := g.Spot.Dims()
		tr, tc := g.Time.Dims()
		if sr != rows || sc != cols || tr != rows || tc != cols {
			t.Fatalf("%+v: mesh shapes (%d,%d) and (%d,%d), want (%d,%d)", test, sr, sc, tr, tc, rows, cols)
		}

		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				if g.Spot.At(i, j) != g.SpotAxis[j] || g.Time.At(i, j) != g.TimeAxis[i] {
					t.Fatalf("%+v: mesh mismatch at (%d,%d)", test, i, j)
				}
			}
		}
	}
}

func TestBuildGridAtTheMoneyIsSquare(t *testing.T) {
	g := BuildGrid(100, 100, 1)
	rows, cols := g.Dims()
	if rows != 101 || cols != 101 {
		t.Fatalf("expected 101x101, got %dx%d", rows, cols)
	}
}

func TestBuildGridAxisBounds(t *testing.T) {
	tests := []struct {
		spot, strike, expiry float64
	}{
		{100, 130, 1},
		{130, 100, 2},
		{75, 75, 0.5},
	}

	for _, test := range tests {
		g := BuildGrid(test.spot, test.strike, test.expiry)
		step := test.spot / GridSteps
		upper := 1.5 * math.Max(test.spot, test.strike)

		first, last := g.SpotAxis[0], g.SpotAxis[len(g.SpotAxis)-1]
		if first != test.strike/2 {
			t.Fatalf("%+v: expected spot axis to start at %f, got %f", test, test.strike/2, first)
		}
		if last < upper-step-1e-9 || last > upper+1e-9 {
			t.Fatalf("%+v: spot axis ends at %f, want within one step below %f", test, last, upper)
		}
		if g.SpotAxis[0] > test.spot || last < test.spot {
			t.Fatalf("%+v: spot axis [%f, %f] does not contain spot", test, first, last)
		}

		if g.TimeAxis[0] != 0 {
			t.Fatalf("%+v: expected time axis to start at 0, got %f", test, g.TimeAxis[0])
		}
		if end := g.TimeAxis[len(g.TimeAxis)-1]; math.Abs(end-test.expiry) > 1e-9 {
			t.Fatalf("%+v: expected time axis to end at %f, got %f", test, test.expiry, end)
		}
	}
}

func TestBuildGridCapsSpotAxis(t *testing.T) {
	g := BuildGrid(1e-300, 1, 1)
	if len(g.SpotAxis) != MaxSpotSamples {
		t.Fatalf("expected %d spot samples, got %d", MaxSpotSamples, len(g.SpotAxis))
	}
	if rows, cols := g.Spot.Dims(); rows != GridSteps+1 || cols != MaxSpotSamples {
		t.Fatalf("unexpected mesh shape %dx%d", rows, cols)
	}
}

func TestSpotSamples(t *testing.T) {
	tests := []struct {
		spot, strike float64
		expected     float64
	}{
		{100, 100, 101},
		{100, 130, 131},
		{130, 100, 112},
		{1, 100, MaxSpotSamples},
	}

	for _, test := range tests {
		g := BuildGrid(test.spot, test.strike, 1)
		if got := spotSamples(test.spot, test.strike); got != test.expected || int(got) != len(g.SpotAxis) {
			t.Fatalf("spotSamples(%g, %g): expected %g (axis %d), got %g",
				test.spot, test.strike, test.expected, len(g.SpotAxis), got)
		}
	}

	if got := spotSamples(1e-310, 1); !math.IsInf(got, 1) {
		t.Fatalf("expected +Inf for a subnormal spot, got %g", got)
	}
}
