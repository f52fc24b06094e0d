package reception

import (
	"context"
	"sort"
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
	docs  map[id.ID]*Reception
	lines map[id.ID]Line
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:  make(map[id.ID]*Reception),
		lines: make(map[id.ID]Line),
	}
}

func (r *fakeRepo) Create(ctx context.Context, doc *Reception) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doc
	cp.Lines = nil
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, docID id.ID) (*Reception, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("reception", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeRepo) GetByNumber(ctx context.Context, number string) (*Reception, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("reception", number)
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Reception, error) {
	return r.GetByID(ctx, docID)
}

func (r *fakeRepo) Update(ctx context.Context, doc *Reception) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("reception", doc.ID.String())
	}
	cp := *doc
	cp.Lines = nil
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetLines(ctx context.Context, docID id.ID) ([]Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Line
	for _, line := range r.lines {
		if line.ReceptionID == docID {
			out = append(out, line)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineNo < out[j].LineNo })
	return out, nil
}

func (r *fakeRepo) GetLine(ctx context.Context, lineID id.ID) (Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	line, ok := r.lines[lineID]
	if !ok {
		return Line{}, apperror.NewNotFound("reception line", lineID.String())
	}
	return line, nil
}

func (r *fakeRepo) GetLineForUpdate(ctx context.Context, lineID id.ID) (Line, error) {
	return r.GetLine(ctx, lineID)
}

func (r *fakeRepo) InsertLine(ctx context.Context, line Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[line.LineID] = line
	return nil
}

func (r *fakeRepo) UpdateLine(ctx context.Context, line Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lines[line.LineID]; !ok {
		return apperror.NewNotFound("reception line", line.LineID.String())
	}
	r.lines[line.LineID] = line
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Reception], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := domain.ListResult[*Reception]{Limit: filter.Limit, Offset: filter.Offset}
	for _, doc := range r.docs {
		cp := *doc
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
	supplier id.ID
}

func newEnv(t *testing.T, stock int64) *env {
	t.Helper()

	baseUnit := id.New()
	p := product.NewProduct("PR-300", "Flour 1kg", baseUnit)
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
		supplier: id.New(),
	}
}

func (e *env) stock() types.Quantity {
	e.products.mu.Lock()
	defer e.products.mu.Unlock()
	return e.products.items[e.product.ID].StockOnHand
}

// drain consumes base units directly, simulating goods sold after reception.
func (e *env) drain(t *testing.T, qty int64) {
	t.Helper()
	_, err := e.products.AdjustStock(context.Background(),
		e.product.ID, types.NewQuantityFromInt(qty).Neg())
	require.NoError(t, err)
}

func TestCreate_WithLines(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()

	doc := NewReception(e.supplier)
	doc.Lines = []Line{
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(40), types.MustMoney("0.80")),
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(10), types.MustMoney("0.75")),
	}

	require.NoError(t, e.svc.Create(ctx, doc))
	assert.NotEmpty(t, doc.Number)
	assert.Equal(t, types.NewQuantityFromInt(50), e.stock())

	// 40*0.80 + 10*0.75 = 39.50, nothing paid: store owes supplier.
	assert.True(t, doc.Total.Equal(types.MustMoney("39.50")))
	assert.True(t, doc.BalanceSupplier.Equal(types.MustMoney("39.50")))
	assert.True(t, doc.BalanceStore.IsZero())
}

func TestCreate_WithoutSupplier(t *testing.T) {
	e := newEnv(t, 0)

	doc := NewReception(id.Nil())
	err := e.svc.Create(context.Background(), doc)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeMissingCounterparty))
}

func TestUpdateLine_ShrinkBelowConsumed(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()

	doc := NewReception(e.supplier)
	doc.Lines = []Line{
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(10), types.MustMoney("1.00")),
	}
	require.NoError(t, e.svc.Create(ctx, doc))
	e.drain(t, 8)
	assert.Equal(t, types.NewQuantityFromInt(2), e.stock())

	// Reversing the line needs 10 base units but only 2 remain.
	edited := doc.Lines[0]
	edited.Quantity = types.NewQuantityFromInt(5)
	err := e.svc.UpdateLine(ctx, doc.ID, &edited)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
}

func TestUpdateLine_GrowQuantity(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()

	doc := NewReception(e.supplier)
	doc.Lines = []Line{
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(10), types.MustMoney("1.00")),
	}
	require.NoError(t, e.svc.Create(ctx, doc))

	edited := doc.Lines[0]
	edited.Quantity = types.NewQuantityFromInt(15)
	require.NoError(t, e.svc.UpdateLine(ctx, doc.ID, &edited))
	assert.Equal(t, types.NewQuantityFromInt(15), e.stock())

	stored, err := e.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(types.MustMoney("15.00")))
	assert.True(t, stored.BalanceSupplier.Equal(types.MustMoney("15.00")))
}

func TestRemoveLine_ReversesInward(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()

	doc := NewReception(e.supplier)
	doc.Lines = []Line{
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(5), types.MustMoney("2.00")),
	}
	require.NoError(t, e.svc.Create(ctx, doc))
	assert.Equal(t, types.NewQuantityFromInt(5), e.stock())

	require.NoError(t, e.svc.RemoveLine(ctx, doc.ID, doc.Lines[0].LineID))
	assert.True(t, e.stock().IsZero())

	// Second removal is a no-op.
	require.NoError(t, e.svc.RemoveLine(ctx, doc.ID, doc.Lines[0].LineID))
	assert.True(t, e.stock().IsZero())
}

func TestSetAmountPaid_Overpayment(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()

	doc := NewReception(e.supplier)
	doc.Lines = []Line{
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(10), types.MustMoney("1.50")),
	}
	require.NoError(t, e.svc.Create(ctx, doc))

	require.NoError(t, e.svc.SetAmountPaid(ctx, doc.ID, types.MustMoney("20.00")))
	stored, err := e.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, stored.BalanceSupplier.IsZero())
	assert.True(t, stored.BalanceStore.Equal(types.MustMoney("5.00")))
}

func TestCancel_RestoresStock(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()

	doc := NewReception(e.supplier)
	doc.Lines = []Line{
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(12), types.MustMoney("1.00")),
	}
	require.NoError(t, e.svc.Create(ctx, doc))
	assert.Equal(t, types.NewQuantityFromInt(12), e.stock())

	require.NoError(t, e.svc.Cancel(ctx, doc.ID))
	assert.True(t, e.stock().IsZero())

	// Idempotent.
	require.NoError(t, e.svc.Cancel(ctx, doc.ID))
	assert.True(t, e.stock().IsZero())

	stored, err := e.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.True(t, stored.Total.IsZero())
	assert.True(t, stored.BalanceSupplier.IsZero())
}

func TestCancel_GoodsAlreadyConsumed(t *testing.T) {
	e := newEnv(t, 0)
	ctx := context.Background()

	doc := NewReception(e.supplier)
	doc.Lines = []Line{
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(10), types.MustMoney("1.00")),
	}
	require.NoError(t, e.svc.Create(ctx, doc))
	e.drain(t, 7)

	err := e.svc.Cancel(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	stored, err := e.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active)
}
