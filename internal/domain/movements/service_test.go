package movements

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain"
	"stockroom/internal/domain/catalogs/product"
	"stockroom/internal/domain/ledger"
	"stockroom/pkg/numerator"
)

// txStub executes the function directly; service tests treat the in-memory
// fakes as the database.
type txStub struct{}

func (txStub) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeProducts struct {
	mu    sync.Mutex
	items map[id.ID]*product.Product
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

type fakeRepo struct {
	mu    sync.Mutex
	items map[id.ID]*Movement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[id.ID]*Movement)}
}

func (r *fakeRepo) Create(ctx context.Context, m *Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.items[m.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, mid id.ID) (*Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[mid]
	if !ok {
		return nil, apperror.NewNotFound("movement", mid.String())
	}
	cp := *m
	return &cp, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, mid id.ID) (*Movement, error) {
	return r.GetByID(ctx, mid)
}

func (r *fakeRepo) Update(ctx context.Context, m *Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[m.ID]; !ok {
		return apperror.NewNotFound("movement", m.ID.String())
	}
	cp := *m
	r.items[m.ID] = &cp
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Movement], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := domain.ListResult[*Movement]{Limit: filter.Limit, Offset: filter.Offset}
	for _, m := range r.items {
		cp := *m
		out.Items = append(out.Items, &cp)
	}
	out.TotalCount = int64(len(out.Items))
	return out, nil
}

type env struct {
	svc      *Service
	repo     *fakeRepo
	products *fakeProducts
	product  *product.Product
	baseUnit id.ID
	altUnit  id.ID
}

func newEnv(t *testing.T, stock int64) *env {
	t.Helper()

	baseUnit := id.New()
	altUnit := id.New()
	p := product.NewProduct("PR-100", "Olive oil", baseUnit)
	p.AltUnitID = &altUnit
	p.ConversionFactor = 6
	p.StockOnHand = types.NewQuantityFromInt(stock)

	products := &fakeProducts{items: map[id.ID]*product.Product{p.ID: p}}
	repo := newFakeRepo()
	svc := NewService(repo, ledger.NewService(products), txStub{}, &numerator.MockGenerator{}, nil)

	return &env{
		svc:      svc,
		repo:     repo,
		products: products,
		product:  p,
		baseUnit: baseUnit,
		altUnit:  altUnit,
	}
}

func (e *env) stock() types.Quantity {
	e.products.mu.Lock()
	defer e.products.mu.Unlock()
	return e.products.items[e.product.ID].StockOnHand
}

func TestCreate_Entry(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	supplier := id.New()

	m := NewMovement(ledger.Inward, KindPurchase, e.product.ID, e.baseUnit, types.NewQuantityFromInt(20))
	m.SupplierID = &supplier

	require.NoError(t, e.svc.Create(ctx, m))
	assert.NotEmpty(t, m.Number)
	assert.Equal(t, types.NewQuantityFromInt(20), e.stock())

	stored, err := e.svc.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active)
}

func TestCreate_EntryAlternativeUnit(t *testing.T) {
	e := newEnv(t, 0)

	m := NewMovement(ledger.Inward, KindCorrection, e.product.ID, e.altUnit, types.NewQuantityFromInt(5))
	require.NoError(t, e.svc.Create(context.Background(), m))

	// 5 packs of 6 = 30 base units on hand.
	assert.Equal(t, types.NewQuantityFromInt(30), e.stock())
}

func TestCreate_PurchaseWithoutSupplier(t *testing.T) {
	e := newEnv(t, 0)

	m := NewMovement(ledger.Inward, KindPurchase, e.product.ID, e.baseUnit, types.NewQuantityFromInt(5))
	err := e.svc.Create(context.Background(), m)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeMissingCounterparty))
	assert.True(t, e.stock().IsZero())
}

func TestCreate_ExitInsufficientStock(t *testing.T) {
	e := newEnv(t, 3)

	m := NewMovement(ledger.Outward, KindLoss, e.product.ID, e.baseUnit, types.NewQuantityFromInt(4))
	err := e.svc.Create(context.Background(), m)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	// Nothing persisted, stock unchanged.
	assert.Equal(t, types.NewQuantityFromInt(3), e.stock())
	_, err = e.svc.GetByID(context.Background(), m.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_CustomerExitOfKindOtherRejected(t *testing.T) {
	e := newEnv(t, 10)
	customer := id.New()

	m := NewMovement(ledger.Outward, KindOther, e.product.ID, e.baseUnit, types.NewQuantityFromInt(1))
	m.CustomerID = &customer

	err := e.svc.Create(context.Background(), m)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))
}

func TestUpdate_ReversesThenReapplies(t *testing.T) {
	e := newEnv(t, 10)
	ctx := context.Background()

	m := NewMovement(ledger.Outward, KindInternalUse, e.product.ID, e.baseUnit, types.NewQuantityFromInt(4))
	require.NoError(t, e.svc.Create(ctx, m))
	assert.Equal(t, types.NewQuantityFromInt(6), e.stock())

	// 9 > 6 on hand, but feasible against the post-reversal balance of 10.
	edited := *m
	edited.Quantity = types.NewQuantityFromInt(9)
	require.NoError(t, e.svc.Update(ctx, &edited))
	assert.Equal(t, types.NewQuantityFromInt(1), e.stock())

	stored, err := e.svc.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(9), stored.Quantity)
	assert.Equal(t, m.Number, stored.Number)
}

func TestUpdate_InactiveRejected(t *testing.T) {
	e := newEnv(t, 10)
	ctx := context.Background()

	m := NewMovement(ledger.Outward, KindLoss, e.product.ID, e.baseUnit, types.NewQuantityFromInt(2))
	require.NoError(t, e.svc.Create(ctx, m))
	require.NoError(t, e.svc.SoftDelete(ctx, m.ID))

	edited := *m
	edited.Quantity = types.NewQuantityFromInt(3)
	err := e.svc.Update(ctx, &edited)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeRecordInactive))
}

func TestUpdate_DirectionImmutable(t *testing.T) {
	e := newEnv(t, 10)
	ctx := context.Background()

	m := NewMovement(ledger.Outward, KindInternalUse, e.product.ID, e.baseUnit, types.NewQuantityFromInt(4))
	require.NoError(t, e.svc.Create(ctx, m))
	assert.Equal(t, types.NewQuantityFromInt(6), e.stock())

	// A flipped direction with a matching entry kind must not turn the exit
	// into an entry: the stored direction wins and the kind no longer fits.
	edited := *m
	edited.Direction = ledger.Inward
	edited.Kind = KindCorrection
	err := e.svc.Update(ctx, &edited)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	assert.Equal(t, types.NewQuantityFromInt(6), e.stock())

	// With a kind valid for the stored direction the edit goes through as an
	// exit, regardless of the direction in the input.
	edited = *m
	edited.Direction = ledger.Inward
	edited.Quantity = types.NewQuantityFromInt(2)
	require.NoError(t, e.svc.Update(ctx, &edited))
	assert.Equal(t, types.NewQuantityFromInt(8), e.stock())

	stored, err := e.svc.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Outward, stored.Direction)
}

func TestSoftDelete_Idempotent(t *testing.T) {
	e := newEnv(t, 10)
	ctx := context.Background()

	m := NewMovement(ledger.Outward, KindDonation, e.product.ID, e.baseUnit, types.NewQuantityFromInt(4))
	require.NoError(t, e.svc.Create(ctx, m))
	assert.Equal(t, types.NewQuantityFromInt(6), e.stock())

	require.NoError(t, e.svc.SoftDelete(ctx, m.ID))
	assert.Equal(t, types.NewQuantityFromInt(10), e.stock())

	// Second delete must not reverse again.
	require.NoError(t, e.svc.SoftDelete(ctx, m.ID))
	assert.Equal(t, types.NewQuantityFromInt(10), e.stock())

	stored, err := e.svc.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestSoftDelete_EntryConsumedElsewhere(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()
	supplier := id.New()

	entry := NewMovement(ledger.Inward, KindPurchase, e.product.ID, e.baseUnit, types.NewQuantityFromInt(10))
	entry.SupplierID = &supplier
	require.NoError(t, e.svc.Create(ctx, entry))

	exit := NewMovement(ledger.Outward, KindInternalUse, e.product.ID, e.baseUnit, types.NewQuantityFromInt(8))
	require.NoError(t, e.svc.Create(ctx, exit))
	assert.Equal(t, types.NewQuantityFromInt(2), e.stock())

	// Reversing the entry needs 10 base units but only 2 remain.
	err := e.svc.SoftDelete(ctx, entry.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	stored, err := e.svc.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active)
}
