package pricing

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
	"gonum.org/v1/gonum/mat"
)

// Variables recognised by Contract.Expression, besides the greek names.
const (
	VarSpot       = "spot"
	VarTime       = "time"
	VarStrike     = "strike"
	VarRate       = "rate"
	VarVolatility = "volatility"
)

// ExpressionVars lists every variable an expression may reference.
func ExpressionVars() []string {
	vars := []string{VarSpot, VarTime, VarStrike, VarRate, VarVolatility}
	for _, g := range Greeks {
		vars = append(vars, string(g))
	}
	sort.Strings(vars)
	return vars
}

// pointParams resolves expression variables at one grid point.
type pointParams struct {
	meshes  map[string]*mat.Dense
	scalars map[string]float64
	i, j    int
}

func (p *pointParams) Get(name string) (interface{}, error) {
	if m, ok := p.meshes[name]; ok {
		return m.At(p.i, p.j), nil
	}
	if v, ok := p.scalars[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: unknown variable %q", ErrInvalidExpression, name)
}

// Expression evaluates a user formula at every grid point, for example
// "delta * spot" for dollar delta. Non-finite results (a division by a
// zero greek, typically at expiry) are set to 0.
func (c *Contract) Expression(expression string) (*Surface, error) {
	expr, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}

	known := make(map[string]bool)
	for _, v := range ExpressionVars() {
		known[v] = true
	}
	var unknown []string
	for _, v := range expr.Vars() {
		if !known[v] {
			unknown = append(unknown, v)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unknown variables %s (allowed: %s)",
			ErrInvalidExpression, strings.Join(unknown, ", "), strings.Join(ExpressionVars(), ", "))
	}

	params := &pointParams{
		meshes: map[string]*mat.Dense{
			VarSpot: c.grid.Spot,
			VarTime: c.grid.Time,
		},
		scalars: map[string]float64{
			VarStrike:     c.strike,
			VarRate:       c.rate,
			VarVolatility: c.volatility,
		},
	}
	for _, s := range c.Surfaces() {
		params.meshes[string(s.Greek)] = s.Values
	}

	rows, cols := c.grid.Dims()
	values := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			params.i, params.j = i, j
			res, err := expr.Eval(params)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
			}
			f, ok := res.(float64)
			if !ok {
				return nil, fmt.Errorf("%w: %q evaluates to %T, want a number", ErrInvalidExpression, expression, res)
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				f = 0
			}
			values.Set(i, j, f)
		}
	}

	return &Surface{
		Greek:  GreekExpression,
		Label:  expression,
		Grid:   c.grid,
		Values: values,
	}, nil
}
