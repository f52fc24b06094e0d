package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/catalogs/product"
)

// fakeProducts is an in-memory ProductStore mirroring the repository
// contract: AdjustStock rejects adjustments that would go negative.
type fakeProducts struct {
	mu    sync.Mutex
	items map[id.ID]*product.Product
}

func newFakeProducts(products ...*product.Product) *fakeProducts {
	f := &fakeProducts{items: make(map[id.ID]*product.Product)}
	for _, p := range products {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProducts) GetForUpdate(ctx context.Context, pid id.ID) (*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[pid]
	if !ok {
		return nil, apperror.NewNotFound("product", pid.String())
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) AdjustStock(ctx context.Context, pid id.ID, delta types.Quantity) (types.Quantity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[pid]
	if !ok {
		return 0, apperror.NewNotFound("product", pid.String())
	}
	next := p.StockOnHand.Add(delta)
	if next.IsNegative() {
		return 0, apperror.NewNegativeStock(pid.String())
	}
	p.StockOnHand = next
	return next, nil
}

func (f *fakeProducts) stock(pid id.ID) types.Quantity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[pid].StockOnHand
}

func testProduct(stock int64) (*product.Product, id.ID, id.ID) {
	baseUnit := id.New()
	altUnit := id.New()
	p := product.NewProduct("PR-100", "Mineral water", baseUnit)
	p.AltUnitID = &altUnit
	p.ConversionFactor = 12
	p.StockOnHand = types.NewQuantityFromInt(stock)
	return p, baseUnit, altUnit
}

func TestApply_Inward(t *testing.T) {
	p, baseUnit, _ := testProduct(10)
	store := newFakeProducts(p)
	svc := NewService(store)

	base, err := svc.Apply(context.Background(), Contribution{
		ProductID: p.ID,
		Quantity:  types.NewQuantityFromInt(5),
		UnitID:    baseUnit,
		Direction: Inward,
	})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(5), base)
	assert.Equal(t, types.NewQuantityFromInt(15), store.stock(p.ID))
}

func TestApply_InwardAlternativeUnit(t *testing.T) {
	p, _, altUnit := testProduct(0)
	store := newFakeProducts(p)
	svc := NewService(store)

	// 5 cartons of 12 add 60 base units.
	base, err := svc.Apply(context.Background(), Contribution{
		ProductID: p.ID,
		Quantity:  types.NewQuantityFromInt(5),
		UnitID:    altUnit,
		Direction: Inward,
	})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(60), base)
	assert.Equal(t, types.NewQuantityFromInt(60), store.stock(p.ID))
}

func TestApply_OutwardInsufficient(t *testing.T) {
	p, baseUnit, _ := testProduct(3)
	store := newFakeProducts(p)
	svc := NewService(store)

	_, err := svc.Apply(context.Background(), Contribution{
		ProductID: p.ID,
		Quantity:  types.NewQuantityFromInt(4),
		UnitID:    baseUnit,
		Direction: Outward,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
	// Stock untouched after a failed feasibility check.
	assert.Equal(t, types.NewQuantityFromInt(3), store.stock(p.ID))
}

func TestApply_InvalidQuantity(t *testing.T) {
	p, baseUnit, _ := testProduct(3)
	svc := NewService(newFakeProducts(p))

	for _, qty := range []types.Quantity{0, types.NewQuantityFromInt(-1)} {
		_, err := svc.Apply(context.Background(), Contribution{
			ProductID: p.ID,
			Quantity:  qty,
			UnitID:    baseUnit,
			Direction: Outward,
		})
		require.Error(t, err)
		assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity))
	}
}

func TestApply_UnknownUnit(t *testing.T) {
	p, _, _ := testProduct(3)
	store := newFakeProducts(p)
	svc := NewService(store)

	_, err := svc.Apply(context.Background(), Contribution{
		ProductID: p.ID,
		Quantity:  types.NewQuantityFromInt(1),
		UnitID:    id.New(),
		Direction: Inward,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidUnit))
	assert.Equal(t, types.NewQuantityFromInt(3), store.stock(p.ID))
}

func TestReverse_RestoresBalance(t *testing.T) {
	p, baseUnit, _ := testProduct(10)
	store := newFakeProducts(p)
	svc := NewService(store)
	ctx := context.Background()

	c := Contribution{
		ProductID: p.ID,
		Quantity:  types.NewQuantityFromInt(6),
		UnitID:    baseUnit,
		Direction: Outward,
	}
	_, err := svc.Apply(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(4), store.stock(p.ID))

	_, err = svc.Reverse(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(10), store.stock(p.ID))
}

func TestReverse_InwardConsumedElsewhere(t *testing.T) {
	p, baseUnit, _ := testProduct(0)
	store := newFakeProducts(p)
	svc := NewService(store)
	ctx := context.Background()

	entry := Contribution{
		ProductID: p.ID,
		Quantity:  types.NewQuantityFromInt(10),
		UnitID:    baseUnit,
		Direction: Inward,
	}
	_, err := svc.Apply(ctx, entry)
	require.NoError(t, err)

	// Another operation consumes 8 of the 10.
	_, err = svc.Apply(ctx, Contribution{
		ProductID: p.ID,
		Quantity:  types.NewQuantityFromInt(8),
		UnitID:    baseUnit,
		Direction: Outward,
	})
	require.NoError(t, err)

	// Reversing the entry would need 10 but only 2 remain.
	_, err = svc.Reverse(ctx, entry)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
	assert.Equal(t, types.NewQuantityFromInt(2), store.stock(p.ID))
}

func TestReplace_ValidatedAgainstPostReversalBalance(t *testing.T) {
	p, baseUnit, _ := testProduct(10)
	store := newFakeProducts(p)
	svc := NewService(store)
	ctx := context.Background()

	old := Contribution{
		ProductID: p.ID,
		Quantity:  types.NewQuantityFromInt(8),
		UnitID:    baseUnit,
		Direction: Outward,
	}
	_, err := svc.Apply(ctx, old)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(2), store.stock(p.ID))

	// 9 > 2 on hand, but after reversing the old 8 the balance is 10,
	// so the replacement is feasible.
	newC := old
	newC.Quantity = types.NewQuantityFromInt(9)
	require.NoError(t, svc.Replace(ctx, old, newC))
	assert.Equal(t, types.NewQuantityFromInt(1), store.stock(p.ID))
}

func TestReplace_NewContributionInfeasible(t *testing.T) {
	p, baseUnit, _ := testProduct(10)
	store := newFakeProducts(p)
	svc := NewService(store)
	ctx := context.Background()

	old := Contribution{
		ProductID: p.ID,
		Quantity:  types.NewQuantityFromInt(8),
		UnitID:    baseUnit,
		Direction: Outward,
	}
	_, err := svc.Apply(ctx, old)
	require.NoError(t, err)

	newC := old
	newC.Quantity = types.NewQuantityFromInt(11)
	err = svc.Replace(ctx, old, newC)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
}

func TestContribution_Inverse(t *testing.T) {
	c := Contribution{Direction: Outward}
	assert.Equal(t, Inward, c.Inverse().Direction)
	assert.Equal(t, Outward, c.Inverse().Inverse().Direction)
	assert.Equal(t, int64(-1), c.Sign())
	assert.Equal(t, int64(1), c.Inverse().Sign())
}
