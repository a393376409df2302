// Package pricing evaluates Black-Scholes-Merton prices and greeks for a
// European option over a (spot, time-to-expiry) grid.
//
// Responsibilities:
//   - Validate option parameters into an immutable Contract
//   - Build the evaluation grid that straddles spot and strike
//   - Compute price, delta, gamma, vega, theta and rho surfaces
//
// Design notes:
//   - A Contract never changes after construction; the With* methods return
//     a new snapshot, so a contract can be shared across goroutines
//   - Shared Black-Scholes terms are recomputed for every surface request;
//     no greek depends on another having been computed first
//   - Rendering is not done here, surfaces are handed to internal/report
package pricing

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind is the option right.
type Kind string

const (
	Call Kind = "call"
	Put  Kind = "put"
)

// ParseKind accepts "call" or "put" in any case.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Call:
		return Call, nil
	case Put:
		return Put, nil
	}
	return "", fmt.Errorf("%w: %q (want call or put)", ErrInvalidOptionKind, s)
}

// Params is the raw, unvalidated parameter set of a contract.
type Params struct {
	Spot       float64 `json:"spot" validate:"gt=0,finite"`       // current underlying price
	Strike     float64 `json:"strike" validate:"gt=0,finite"`     // exercise price
	Rate       float64 `json:"rate" validate:"gt=0,finite"`       // continuously compounded risk-free rate
	Expiry     float64 `json:"expiry" validate:"gt=0,finite"`     // time to expiration in years
	Volatility float64 `json:"volatility" validate:"gt=0,finite"` // annualized volatility
	Kind       string  `json:"kind"`                              // call or put, any case
}

// ParamCount is the number of positional values ParseContract expects.
const ParamCount = 6

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

// Contract is a validated, immutable option parameter set together with
// its evaluation grid.
type Contract struct {
	spot       float64
	strike     float64
	rate       float64
	expiry     float64
	volatility float64
	kind       Kind

	grid *Grid
}

// New validates the six contract parameters and builds the evaluation grid.
func New(spot, strike, rate, expiry, volatility float64, kind string) (*Contract, error) {
	return NewContract(Params{
		Spot:       spot,
		Strike:     strike,
		Rate:       rate,
		Expiry:     expiry,
		Volatility: volatility,
		Kind:       kind,
	})
}

// NewContract validates p and builds the evaluation grid. Every numeric
// field must be strictly positive and finite, and the strike may be at most
// 100 times the spot so the grid stays within MaxSpotSamples columns.
func NewContract(p Params) (*Contract, error) {
	c, err := validateParams(p)
	if err != nil {
		return nil, err
	}
	c.grid = BuildGrid(c.spot, c.strike, c.expiry)
	return c, nil
}

// ParseContract builds a contract from positional values in the order
// spot, strike, rate, expiry, volatility, kind.
func ParseContract(args []string) (*Contract, error) {
	if len(args) != ParamCount {
		return nil, fmt.Errorf("%w: got %d, want %d (spot strike rate expiry volatility kind)",
			ErrInvalidArity, len(args), ParamCount)
	}

	names := [...]string{"spot", "strike", "rate", "expiry", "volatility"}
	var vals [5]float64
	for i, name := range names {
		f, err := strconv.ParseFloat(strings.TrimSpace(args[i]), 64)
		if err != nil {
			return nil, &ParameterError{Field: name, Value: args[i], Reason: "is not a number"}
		}
		vals[i] = f
	}

	return New(vals[0], vals[1], vals[2], vals[3], vals[4], args[5])
}

func validateParams(p Params) (*Contract, error) {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			reason := "must be > 0"
			if fe.Tag() == "finite" {
				reason = "must be finite"
			}
			return nil, &ParameterError{Field: fe.Field(), Value: fe.Value(), Reason: reason}
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}

	if n := spotSamples(p.Spot, p.Strike); !(n <= MaxSpotSamples) {
		return nil, &ParameterError{
			Field:  "spot",
			Value:  p.Spot,
			Reason: fmt.Sprintf("is too small for strike %g: the grid would need %.3g spot samples (max %d)", p.Strike, n, MaxSpotSamples),
		}
	}

	kind, err := ParseKind(p.Kind)
	if err != nil {
		return nil, err
	}

	return &Contract{
		spot:       p.Spot,
		strike:     p.Strike,
		rate:       p.Rate,
		expiry:     p.Expiry,
		volatility: p.Volatility,
		kind:       kind,
	}, nil
}

// Spot returns the current underlying price.
func (c *Contract) Spot() float64 { return c.spot }

// Strike returns the exercise price.
func (c *Contract) Strike() float64 { return c.strike }

// Rate returns the annual continuously compounded risk-free rate.
func (c *Contract) Rate() float64 { return c.rate }

// Expiry returns the time to expiration in years.
func (c *Contract) Expiry() float64 { return c.expiry }

// Volatility returns the annualized volatility.
func (c *Contract) Volatility() float64 { return c.volatility }

// Kind returns the normalized option kind.
func (c *Contract) Kind() Kind { return c.kind }

// Grid returns the evaluation grid. It must be treated as read-only.
func (c *Contract) Grid() *Grid { return c.grid }

// Params returns the contract's parameters in their normalized form.
func (c *Contract) Params() Params {
	return Params{
		Spot:       c.spot,
		Strike:     c.strike,
		Rate:       c.rate,
		Expiry:     c.expiry,
		Volatility: c.volatility,
		Kind:       string(c.kind),
	}
}

// WithSpot returns a copy with a new spot price and a rebuilt grid.
func (c *Contract) WithSpot(v float64) (*Contract, error) {
	p := c.Params()
	p.Spot = v
	return NewContract(p)
}

// WithStrike returns a copy with a new strike and a rebuilt grid.
func (c *Contract) WithStrike(v float64) (*Contract, error) {
	p := c.Params()
	p.Strike = v
	return NewContract(p)
}

// WithExpiry returns a copy with a new time to expiry and a rebuilt grid.
func (c *Contract) WithExpiry(v float64) (*Contract, error) {
	p := c.Params()
	p.Expiry = v
	return NewContract(p)
}

// WithRate returns a copy with a new rate. The grid is shared.
func (c *Contract) WithRate(v float64) (*Contract, error) {
	p := c.Params()
	p.Rate = v
	return c.withSameGrid(p)
}

// WithVolatility returns a copy with a new volatility. The grid is shared.
func (c *Contract) WithVolatility(v float64) (*Contract, error) {
	p := c.Params()
	p.Volatility = v
	return c.withSameGrid(p)
}

// WithKind returns a copy with a new option kind. The grid is shared.
func (c *Contract) WithKind(kind string) (*Contract, error) {
	p := c.Params()
	p.Kind = kind
	return c.withSameGrid(p)
}

// withSameGrid is for fields the grid does not depend on.
func (c *Contract) withSameGrid(p Params) (*Contract, error) {
	next, err := validateParams(p)
	if err != nil {
		return nil, err
	}
	next.grid = c.grid
	return next, nil
}
