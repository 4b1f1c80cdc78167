package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound2HalfUp(t *testing.T) {
	assert.Equal(t, "0.34", Round2(decimal.RequireFromString("0.335")).String())
	assert.Equal(t, "0.33", Round2(decimal.RequireFromString("0.334")).String())
	assert.Equal(t, "-0.34", Round2(decimal.RequireFromString("-0.335")).String())
	assert.Equal(t, "12", Round2(decimal.RequireFromString("12.000")).String())
}

func TestEqualishWithinTolerance(t *testing.T) {
	a := decimal.RequireFromString("100.00")

	assert.True(t, Equalish(a, decimal.RequireFromString("100.01")))
	assert.True(t, Equalish(a, decimal.RequireFromString("99.99")))
	assert.False(t, Equalish(a, decimal.RequireFromString("100.02")))
	assert.False(t, Equalish(a, decimal.RequireFromString("99.98")))
}
