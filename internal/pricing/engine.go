package pricing

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Axis labels for surface plots.
const (
	SpotAxisLabel = "Spot price"
	TimeAxisLabel = "Time to expiration"
)

// Greek identifies a computed quantity: the price itself or one of its
// sensitivities.
type Greek string

const (
	GreekPrice Greek = "price"
	GreekDelta Greek = "delta"
	GreekGamma Greek = "gamma"
	GreekVega  Greek = "vega"
	GreekTheta Greek = "theta"
	GreekRho   Greek = "rho"

	// GreekExpression tags surfaces produced by Contract.Expression.
	GreekExpression Greek = "expression"
)

// Greeks lists the built-in quantities in display order.
var Greeks = []Greek{GreekPrice, GreekDelta, GreekGamma, GreekVega, GreekTheta, GreekRho}

// ParseGreek accepts a built-in quantity name in any case.
func ParseGreek(s string) (Greek, error) {
	g := Greek(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := greekFuncs[g]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownGreek, s)
	}
	return g, nil
}

// Label is the human-readable quantity name.
func (g Greek) Label() string {
	if g == "" {
		return ""
	}
	return strings.ToUpper(string(g[:1])) + string(g[1:])
}

// Surface is one computed quantity over the whole grid.
type Surface struct {
	Greek  Greek
	Label  string
	Grid   *Grid
	Values *mat.Dense // same shape as Grid.Spot
}

// Rows copies the values into a row-per-time-sample slice.
func (s *Surface) Rows() [][]float64 {
	r, _ := s.Values.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = append([]float64(nil), s.Values.RawRowView(i)...)
	}
	return out
}

// terms holds the intermediate Black-Scholes quantities shared by every
// surface of one contract.
type terms struct {
	sigmaSqrtT       *mat.Dense
	discountedStrike *mat.Dense
	dPlus            *mat.Dense
	dMinus           *mat.Dense
}

// computeTerms evaluates σ√t, K·e^(-rt), d+ and d- over g.
//
// At t == 0 and spot == strike d+ is 0/0; it is set to 0. Other zero-time
// points give ±Inf, which Φ and φ handle.
func computeTerms(c *Contract, g *Grid) *terms {
	drift := c.rate + c.volatility*c.volatility/2

	sigmaSqrtT := evalGrid(g, func(i, j int) float64 {
		return c.volatility * math.Sqrt(g.Time.At(i, j))
	})
	discountedStrike := evalGrid(g, func(i, j int) float64 {
		return c.strike * math.Exp(-c.rate*g.Time.At(i, j))
	})
	dPlus := evalGrid(g, func(i, j int) float64 {
		t := g.Time.At(i, j)
		d := (math.Log(g.Spot.At(i, j)/c.strike) + t*drift) / sigmaSqrtT.At(i, j)
		if math.IsNaN(d) {
			return 0
		}
		return d
	})
	dMinus := evalGrid(g, func(i, j int) float64 {
		return dPlus.At(i, j) - sigmaSqrtT.At(i, j)
	})

	return &terms{
		sigmaSqrtT:       sigmaSqrtT,
		discountedStrike: discountedStrike,
		dPlus:            dPlus,
		dMinus:           dMinus,
	}
}

func evalGrid(g *Grid, fn func(i, j int) float64) *mat.Dense {
	rows, cols := g.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, fn(i, j))
		}
	}
	return out
}

type greekFunc func(c *Contract, g *Grid, tm *terms) *mat.Dense

var greekFuncs = map[Greek]greekFunc{
	GreekPrice: priceValues,
	GreekDelta: deltaValues,
	GreekGamma: gammaValues,
	GreekVega:  vegaValues,
	GreekTheta: thetaValues,
	GreekRho:   rhoValues,
}

func priceValues(c *Contract, g *Grid, tm *terms) *mat.Dense {
	return evalGrid(g, func(i, j int) float64 {
		s, dk := g.Spot.At(i, j), tm.discountedStrike.At(i, j)
		dp, dm := tm.dPlus.At(i, j), tm.dMinus.At(i, j)
		if c.kind == Call {
			return s*normCDF(dp) - dk*normCDF(dm)
		}
		return dk*normCDF(-dm) - s*normCDF(-dp)
	})
}

func deltaValues(c *Contract, g *Grid, tm *terms) *mat.Dense {
	return evalGrid(g, func(i, j int) float64 {
		if c.kind == Call {
			return normCDF(tm.dPlus.At(i, j))
		}
		return normCDF(-tm.dPlus.At(i, j))
	})
}

// gammaValues divides by σ√t, so every non-finite zero-time value is set
// to 0.
func gammaValues(c *Contract, g *Grid, tm *terms) *mat.Dense {
	return evalGrid(g, func(i, j int) float64 {
		v := normPDF(tm.dPlus.At(i, j)) / (g.Spot.At(i, j) * c.volatility * math.Sqrt(g.Time.At(i, j)))
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	})
}

func vegaValues(c *Contract, g *Grid, tm *terms) *mat.Dense {
	return evalGrid(g, func(i, j int) float64 {
		return g.Spot.At(i, j) * math.Sqrt(g.Time.At(i, j)) * normPDF(tm.dPlus.At(i, j))
	})
}

func thetaValues(c *Contract, g *Grid, tm *terms) *mat.Dense {
	return evalGrid(g, func(i, j int) float64 {
		decay := -(g.Spot.At(i, j) * c.volatility * normPDF(tm.dPlus.At(i, j)) / 2 * math.Sqrt(g.Time.At(i, j)))
		if c.kind == Call {
			return decay - c.rate*c.strike*normCDF(tm.dMinus.At(i, j))
		}
		return decay + c.rate*c.strike*normCDF(-tm.dMinus.At(i, j))
	})
}

func rhoValues(c *Contract, g *Grid, tm *terms) *mat.Dense {
	return evalGrid(g, func(i, j int) float64 {
		t := g.Time.At(i, j)
		k := c.strike * t * math.Exp(-c.rate*t)
		if c.kind == Call {
			return k * normCDF(tm.dMinus.At(i, j))
		}
		return -k * normCDF(-tm.dMinus.At(i, j))
	})
}

func (c *Contract) surface(g Greek, tm *terms) *Surface {
	return &Surface{
		Greek:  g,
		Label:  g.Label(),
		Grid:   c.grid,
		Values: greekFuncs[g](c, c.grid, tm),
	}
}

// Price computes the option value over the grid.
//
// Formula:
//   - call: S·Φ(d+) − K·e^(−r·t)·Φ(d−)
//   - put:  K·e^(−r·t)·Φ(−d−) − S·Φ(−d+)
//
// Returns:
//
//	A surface of option values. On the t = 0 row d± are ±Inf away from the
//	strike and the price reduces to the intrinsic value max(S−K, 0) for a
//	call or max(K−S, 0) for a put. At S = K, t = 0 the undefined d+ is taken
//	as 0, which also yields the intrinsic value 0.
func (c *Contract) Price() *Surface { return c.surface(GreekPrice, computeTerms(c, c.grid)) }

// Delta is ∂V/∂S: Φ(d+) for a call and Φ(−d+) for a put.
func (c *Contract) Delta() *Surface { return c.surface(GreekDelta, computeTerms(c, c.grid)) }

// Gamma computes ∂²V/∂S² over the grid. It is the same for calls and puts.
//
// Formula:
//
//	φ(d+) / (S·σ·√t)
//
// Returns:
//
//	A surface of gamma values. On the t = 0 row the denominator is zero and
//	the ratio is 0/0 or otherwise non-finite; those points are set to 0 so
//	the surface stays finite.
func (c *Contract) Gamma() *Surface { return c.surface(GreekGamma, computeTerms(c, c.grid)) }

// Vega is ∂V/∂σ, S·√t·φ(d+). It is the same for calls and puts and is 0
// at t = 0.
func (c *Contract) Vega() *Surface { return c.surface(GreekVega, computeTerms(c, c.grid)) }

// Theta is the time decay surface:
// −(S·σ·φ(d+)/2·√t) ∓ r·K·Φ(±d−), minus for a call and plus for a put.
func (c *Contract) Theta() *Surface { return c.surface(GreekTheta, computeTerms(c, c.grid)) }

// Rho is ∂V/∂r: K·t·e^(−r·t)·Φ(d−) for a call, and the negated form with
// Φ(−d−) for a put.
func (c *Contract) Rho() *Surface { return c.surface(GreekRho, computeTerms(c, c.grid)) }

// Surface computes a single quantity by name.
func (c *Contract) Surface(g Greek) (*Surface, error) {
	if _, ok := greekFuncs[g]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGreek, g)
	}
	return c.surface(g, computeTerms(c, c.grid)), nil
}

// Surfaces computes every built-in quantity, sharing one set of terms.
// The result follows the order of Greeks.
func (c *Contract) Surfaces() []*Surface {
	tm := computeTerms(c, c.grid)
	out := make([]*Surface, 0, len(Greeks))
	for _, g := range Greeks {
		out = append(out, c.surface(g, tm))
	}
	return out
}
