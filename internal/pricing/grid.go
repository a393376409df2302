package pricing

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// GridSteps is the number of steps each axis is divided into.
const GridSteps = 100

// MaxSpotSamples bounds the spot axis. With the spot step fixed at
// spot0/100 this admits a strike up to 100 times the spot; NewContract
// rejects wider ratios.
const MaxSpotSamples = 10_001

// stopTolerance absorbs float drift when deciding whether the stop value
// of a stepped range is reached, as a fraction of the step.
const stopTolerance = 1e-9

// Grid is the (spot, time-to-expiry) evaluation mesh.
//
// Rows are time samples and columns are spot samples, so
// Spot.At(i, j) == SpotAxis[j] and Time.At(i, j) == TimeAxis[i].
type Grid struct {
	SpotAxis []float64
	TimeAxis []float64

	Spot *mat.Dense
	Time *mat.Dense
}

// BuildGrid samples the region around spot0 and strike.
//
// The spot axis starts at strike/2 and steps by spot0/100 up to 1.5 times
// the larger of spot0 and strike, so both the current spot and the strike
// are always inside the grid. The time axis steps from 0 to expiry by
// expiry/100.
//
// Inputs are assumed positive; Contract enforces that. The spot axis is
// cut at MaxSpotSamples for ratios Contract would refuse.
func BuildGrid(spot0, strike, expiry float64) *Grid {
	spotAxis := arange(strike/2, spotUpper(spot0, strike), spot0/GridSteps, MaxSpotSamples)
	timeAxis := arange(0, expiry, expiry/GridSteps, GridSteps+1)

	spot, tm := meshgrid(spotAxis, timeAxis)
	return &Grid{
		SpotAxis: spotAxis,
		TimeAxis: timeAxis,
		Spot:     spot,
		Time:     tm,
	}
}

// Dims returns (time samples, spot samples).
func (g *Grid) Dims() (rows, cols int) {
	return len(g.TimeAxis), len(g.SpotAxis)
}

func spotUpper(spot0, strike float64) float64 {
	if spot0 >= strike {
		return 1.5 * spot0
	}
	return 1.5 * strike
}

// spotSamples is the length of the spot axis BuildGrid needs. It stays a
// float so that extreme ratios come out as large or +Inf instead of
// overflowing an int.
func spotSamples(spot0, strike float64) float64 {
	return sampleCount(strike/2, spotUpper(spot0, strike), spot0/GridSteps)
}

func sampleCount(start, stop, step float64) float64 {
	return math.Floor((stop-start)/step+stopTolerance) + 1
}

// arange returns start, start+step, start+2*step, ... not exceeding stop,
// and at most limit values. Values are computed as start+i*step rather
// than accumulated.
func arange(start, stop, step float64, limit int) []float64 {
	if step <= 0 || stop < start || limit < 1 {
		return []float64{start}
	}
	n := limit
	if f := sampleCount(start, stop, step); f < float64(limit) {
		n = int(f)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// meshgrid crosses the two axes into matrices of shape (len(y), len(x)).
func meshgrid(x, y []float64) (xx, yy *mat.Dense) {
	rows, cols := len(y), len(x)
	xd := make([]float64, 0, rows*cols)
	yd := make([]float64, 0, rows*cols)
	for _, yv := range y {
		xd = append(xd, x...)
		for range x {
			yd = append(yd, yv)
		}
	}
	return mat.NewDense(rows, cols, xd), mat.NewDense(rows, cols, yd)
}
