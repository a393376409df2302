package pricing

import (
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"
)

// Quote is the valuation of a contract at its own spot and expiry.
type Quote struct {
	Kind   Kind            `json:"kind"`
	Spot   decimal.Decimal `json:"spot"`
	Strike decimal.Decimal `json:"strike"`
	Expiry decimal.Decimal `json:"expiry"`
	Price  decimal.Decimal `json:"price"`
	Delta  decimal.Decimal `json:"delta"`
	Gamma  decimal.Decimal `json:"gamma"`
	Vega   decimal.Decimal `json:"vega"`
	Theta  decimal.Decimal `json:"theta"`
	Rho    decimal.Decimal `json:"rho"`
}

// Quote evaluates every quantity at the single point (spot0, expiry) using
// the same formulas as the surfaces.
func (c *Contract) Quote() Quote {
	g := &Grid{
		SpotAxis: []float64{c.spot},
		TimeAxis: []float64{c.expiry},
		Spot:     mat.NewDense(1, 1, []float64{c.spot}),
		Time:     mat.NewDense(1, 1, []float64{c.expiry}),
	}
	tm := computeTerms(c, g)
	at := func(gr Greek) decimal.Decimal {
		return decimal.NewFromFloat(greekFuncs[gr](c, g, tm).At(0, 0))
	}

	return Quote{
		Kind:   c.kind,
		Spot:   decimal.NewFromFloat(c.spot),
		Strike: decimal.NewFromFloat(c.strike),
		Expiry: decimal.NewFromFloat(c.expiry),
		Price:  at(GreekPrice),
		Delta:  at(GreekDelta),
		Gamma:  at(GreekGamma),
		Vega:   at(GreekVega),
		Theta:  at(GreekTheta),
		Rho:    at(GreekRho),
	}
}
