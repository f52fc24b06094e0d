package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_UnitConversion(t *testing.T) {
	// 3 cartons of 12 pieces = 36 pieces in base units.
	q := NewQuantityFromInt(3).MulInt(12)
	assert.Equal(t, NewQuantityFromInt(36), q)

	// Fractional quantities convert without drift.
	half := NewQuantityFromFloat64(0.5)
	assert.Equal(t, NewQuantityFromInt(6), half.MulInt(12))
}

func TestQuantity_String(t *testing.T) {
	assert.Equal(t, "36.0000", NewQuantityFromInt(36).String())
	assert.Equal(t, "0.5000", NewQuantityFromFloat64(0.5).String())
	assert.Equal(t, "-2.2500", NewQuantityFromFloat64(-2.25).String())
}

func TestQuantity_JSONNumber(t *testing.T) {
	data, err := json.Marshal(NewQuantityFromFloat64(1.25))
	require.NoError(t, err)
	assert.Equal(t, "1.2500", string(data))

	var q Quantity
	require.NoError(t, json.Unmarshal([]byte("1.25"), &q))
	assert.Equal(t, NewQuantityFromFloat64(1.25), q)

	// String form is accepted too.
	require.NoError(t, json.Unmarshal([]byte(`"-0.75"`), &q))
	assert.Equal(t, NewQuantityFromFloat64(-0.75), q)

	// Extra fractional digits are truncated to the fixed scale.
	require.NoError(t, json.Unmarshal([]byte("0.12349"), &q))
	assert.Equal(t, NewQuantityFromInt64Scaled(1234), q)
}

func TestQuantity_DecimalForMoneyMath(t *testing.T) {
	// 2.5 units at 1.50 each = 3.75
	qty := NewQuantityFromFloat64(2.5)
	price := MustMoney("1.50")
	total := price.Mul(qty.Decimal())
	assert.True(t, MustMoney("3.75").Equal(total))
}
