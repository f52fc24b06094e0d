package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
)

func TestConvertToBase(t *testing.T) {
	baseUnit := id.New()
	altUnit := id.New()
	otherUnit := id.New()

	p := NewProduct("PR-001", "Bottled water", baseUnit)
	p.AltUnitID = &altUnit
	p.ConversionFactor = 12

	tests := []struct {
		name     string
		qty      types.Quantity
		unitID   id.ID
		want     types.Quantity
		wantCode string
	}{
		{
			name:   "base unit passes through",
			qty:    types.NewQuantityFromInt(5),
			unitID: baseUnit,
			want:   types.NewQuantityFromInt(5),
		},
		{
			name:   "alternative unit multiplies by factor",
			qty:    types.NewQuantityFromInt(5),
			unitID: altUnit,
			want:   types.NewQuantityFromInt(60),
		},
		{
			name:   "fractional quantity in alternative unit",
			qty:    types.NewQuantityFromFloat64(0.5),
			unitID: altUnit,
			want:   types.NewQuantityFromInt(6),
		},
		{
			name:     "unknown unit is not convertible",
			qty:      types.NewQuantityFromInt(1),
			unitID:   otherUnit,
			wantCode: apperror.CodeInvalidUnit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ConvertToBase(tt.qty, tt.unitID)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperror.IsCode(err, tt.wantCode), "expected %s, got %v", tt.wantCode, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertToBase_NoAltUnit(t *testing.T) {
	baseUnit := id.New()
	p := NewProduct("PR-002", "Rice bag", baseUnit)

	_, err := p.ConvertToBase(types.NewQuantityFromInt(3), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidUnit))
}

func TestConvertToBase_BadFactor(t *testing.T) {
	baseUnit := id.New()
	altUnit := id.New()

	p := NewProduct("PR-003", "Crate of eggs", baseUnit)
	p.AltUnitID = &altUnit
	p.ConversionFactor = 0

	_, err := p.ConvertToBase(types.NewQuantityFromInt(2), altUnit)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidConversionFactor))
}

func TestProductValidate(t *testing.T) {
	ctx := context.Background()
	baseUnit := id.New()
	altUnit := id.New()

	t.Run("valid product", func(t *testing.T) {
		p := NewProduct("PR-010", "Flour", baseUnit)
		require.NoError(t, p.Validate(ctx))
	})

	t.Run("missing base unit", func(t *testing.T) {
		p := NewProduct("PR-011", "Flour", id.Nil())
		err := p.Validate(ctx)
		require.Error(t, err)
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})

	t.Run("alt unit with non-positive factor", func(t *testing.T) {
		p := NewProduct("PR-012", "Flour", baseUnit)
		p.AltUnitID = &altUnit
		p.ConversionFactor = -3
		err := p.Validate(ctx)
		require.Error(t, err)
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidConversionFactor))
	})

	t.Run("alt unit equal to base unit", func(t *testing.T) {
		p := NewProduct("PR-013", "Flour", baseUnit)
		p.AltUnitID = &baseUnit
		p.ConversionFactor = 10
		err := p.Validate(ctx)
		require.Error(t, err)
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})

	t.Run("negative price", func(t *testing.T) {
		p := NewProduct("PR-014", "Flour", baseUnit)
		p.UnitPrice = types.NewMoney(-1)
		err := p.Validate(ctx)
		require.Error(t, err)
	})
}

func TestIsLowStock(t *testing.T) {
	p := NewProduct("PR-020", "Sugar", id.New())
	p.ReorderThreshold = types.NewQuantityFromInt(10)

	p.StockOnHand = types.NewQuantityFromInt(11)
	assert.False(t, p.IsLowStock())

	p.StockOnHand = types.NewQuantityFromInt(10)
	assert.True(t, p.IsLowStock())

	p.StockOnHand = types.NewQuantityFromInt(2)
	assert.True(t, p.IsLowStock())
}
