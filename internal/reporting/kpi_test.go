package reporting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormulasAreZeroSafe(t *testing.T) {
	formulas := map[string]func(n, d float64) float64{
		"SafeDiv": SafeDiv,
		"CTR":     CTR,
		"CPC":     CPC,
		"CPM":     CPM,
		"CPL":     CPL,
		"CPR":     CPR,
		"CPS":     CPS,
		"CPQL":    CPQL,
		"AOV":     AOV,
		"ROAS":    ROAS,
		"Rate":    Rate,
	}
	for name, f := range formulas {
		for _, n := range []float64{0, 1, 1234.56} {
			got := f(n, 0)
			assert.Equal(t, 0.0, got, "%s(%v, 0)", name, n)
			assert.False(t, math.IsNaN(got) || math.IsInf(got, 0), name)
		}
	}
}

func TestFormulas(t *testing.T) {
	assert.Equal(t, 5.0, CTR(500, 10000))
	assert.Equal(t, 2.0, CPC(1000, 500))
	assert.Equal(t, 100.0, CPM(1000, 10000))
	assert.Equal(t, 50.0, CPL(1000, 20))
	assert.Equal(t, 250.0, CPS(1000, 4))
	assert.Equal(t, 600.0, AOV(1200, 2))
	assert.Equal(t, 20.0, ROAS(1200, 1000))
	assert.Equal(t, -100.0, ROAS(0, 1000))
}

func TestROASWithoutSpendIsZero(t *testing.T) {
	assert.Equal(t, 0.0, ROAS(5000, 0))
}

func TestRounding(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) float64
		in   float64
		want float64
	}{
		{"round2 half up", Round2, 1.005, 1.01},
		{"round2 negative", Round2, -2.345, -2.35},
		{"round2 exact", Round2, 3.1, 3.1},
		{"round1 half up", Round1, 20.05, 20.1},
		{"round1 thirds", Round1, 33.333333, 33.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}
