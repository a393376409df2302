package pricing

import (
	"errors"
	"math"
	"testing"
)

func TestExpressionDollarDelta(t *testing.T) {
	c := mustContract(t, 100, 130, 0.05, 1, 0.2, "call")

	s, err := c.Expression("delta * spot")
	if err != nil {
		t.Fatalf("Expression: %v", err)
	}
	if s.Greek != GreekExpression || s.Label != "delta * spot" {
		t.Fatalf("unexpected surface identity %q/%q", s.Greek, s.Label)
	}

	delta := c.Delta()
	rows, cols := c.Grid().Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			want := delta.Values.At(i, j) * c.Grid().Spot.At(i, j)
			if got := s.Values.At(i, j); math.Abs(got-want) > 1e-12 {
				t.Fatalf("at (%d,%d): expected %f, got %f", i, j, want, got)
			}
		}
	}
}

func TestExpressionScalarsAndTime(t *testing.T) {
	c := mustContract(t, 100, 130, 0.05, 1, 0.2, "call")

	if _, err := c.Expression("strike * exp_factor"); !errors.Is(err, ErrInvalidExpression) {
		t.Fatalf("expected ErrInvalidExpression for unknown variable, got %v", err)
	}

	s, err := c.Expression("rate * time * volatility")
	if err != nil {
		t.Fatalf("Expression: %v", err)
	}
	last := len(c.Grid().TimeAxis) - 1
	if got := s.Values.At(last, 0); math.Abs(got-0.05*0.2*c.Grid().TimeAxis[last]) > 1e-12 {
		t.Fatalf("unexpected value %f", got)
	}
}

func TestExpressionNonFiniteIsZero(t *testing.T) {
	c := mustContract(t, 100, 100, 0.05, 1, 0.2, "call")

	s, err := c.Expression("price / gamma")
	if err != nil {
		t.Fatalf("Expression: %v", err)
	}
	// gamma is 0 everywhere on the expiry row
	for j := range c.Grid().SpotAxis {
		if v := s.Values.At(0, j); v != 0 {
			t.Fatalf("expected 0 at expiry, got %v at column %d", v, j)
		}
	}
}

func TestExpressionErrors(t *testing.T) {
	c := mustContract(t, 100, 130, 0.05, 1, 0.2, "call")

	for _, expr := range []string{
		"delta >",
		"vanna * 2",
		"delta > 0.5",
	} {
		if _, err := c.Expression(expr); !errors.Is(err, ErrInvalidExpression) {
			t.Fatalf("%q: expected ErrInvalidExpression, got %v", expr, err)
		}
	}
}
