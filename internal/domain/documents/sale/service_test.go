package sale

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
	docs  map[id.ID]*Sale
	lines map[id.ID]Line
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:  make(map[id.ID]*Sale),
		lines: make(map[id.ID]Line),
	}
}

func (r *fakeRepo) Create(ctx context.Context, doc *Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doc
	cp.Lines = nil
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, docID id.ID) (*Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("sale", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeRepo) GetByNumber(ctx context.Context, number string) (*Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.Number == number {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("sale", number)
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Sale, error) {
	return r.GetByID(ctx, docID)
}

func (r *fakeRepo) Update(ctx context.Context, doc *Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("sale", doc.ID.String())
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
		if line.SaleID == docID {
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
		return Line{}, apperror.NewNotFound("sale line", lineID.String())
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
		return apperror.NewNotFound("sale line", line.LineID.String())
	}
	r.lines[line.LineID] = line
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := domain.ListResult[*Sale]{Limit: filter.Limit, Offset: filter.Offset}
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
	altUnit  id.ID
}

func newEnv(t *testing.T, stock int64) *env {
	t.Helper()

	baseUnit := id.New()
	altUnit := id.New()
	p := product.NewProduct("PR-200", "Ground coffee", baseUnit)
	p.AltUnitID = &altUnit
	p.ConversionFactor = 10
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

func TestCreate_WithLines(t *testing.T) {
	e := newEnv(t, 50)
	ctx := context.Background()

	doc := NewSale()
	doc.Lines = []Line{
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(3), types.MustMoney("2.50")),
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(2), types.MustMoney("4.00")),
	}

	require.NoError(t, e.svc.Create(ctx, doc))
	assert.NotEmpty(t, doc.Number)
	assert.Equal(t, types.NewQuantityFromInt(45), e.stock())

	// 3*2.50 + 2*4.00 = 15.50, nothing paid yet.
	assert.True(t, doc.Total.Equal(types.MustMoney("15.50")))
	assert.True(t, doc.BalanceCustomer.Equal(types.MustMoney("15.50")))
	assert.True(t, doc.BalanceStore.IsZero())

	stored, err := e.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 2)
	assert.Equal(t, 1, stored.Lines[0].LineNo)
	assert.Equal(t, 2, stored.Lines[1].LineNo)
}

func TestCreate_LineInsufficientStock(t *testing.T) {
	e := newEnv(t, 4)
	ctx := context.Background()

	doc := NewSale()
	doc.Lines = []Line{
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(3), types.MustMoney("1.00")),
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(3), types.MustMoney("1.00")),
	}

	err := e.svc.Create(ctx, doc)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
}

func TestCreate_AlternativeUnitLine(t *testing.T) {
	e := newEnv(t, 100)
	ctx := context.Background()

	doc := NewSale()
	// 2 boxes of 10 = 20 base units.
	doc.Lines = []Line{
		NewLine(e.product.ID, e.altUnit, types.NewQuantityFromInt(2), types.MustMoney("18.00")),
	}

	require.NoError(t, e.svc.Create(ctx, doc))
	assert.Equal(t, types.NewQuantityFromInt(80), e.stock())
	assert.True(t, doc.Total.Equal(types.MustMoney("36.00")))
}

func TestAddLine(t *testing.T) {
	e := newEnv(t, 20)
	ctx := context.Background()

	doc := NewSale()
	require.NoError(t, e.svc.Create(ctx, doc))

	line := NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(5), types.MustMoney("3.00"))
	require.NoError(t, e.svc.AddLine(ctx, doc.ID, &line))
	assert.Equal(t, types.NewQuantityFromInt(15), e.stock())

	stored, err := e.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, 1, stored.Lines[0].LineNo)
	assert.True(t, stored.Total.Equal(types.MustMoney("15.00")))
	assert.True(t, stored.BalanceCustomer.Equal(types.MustMoney("15.00")))
}

func TestUpdateLine_PostReversalBalance(t *testing.T) {
	e := newEnv(t, 10)
	ctx := context.Background()

	doc := NewSale()
	doc.Lines = []Line{
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(8), types.MustMoney("1.00")),
	}
	require.NoError(t, e.svc.Create(ctx, doc))
	assert.Equal(t, types.NewQuantityFromInt(2), e.stock())

	// 9 > 2 on hand, but feasible against the post-reversal balance of 10.
	edited := doc.Lines[0]
	edited.Quantity = types.NewQuantityFromInt(9)
	require.NoError(t, e.svc.UpdateLine(ctx, doc.ID, &edited))
	assert.Equal(t, types.NewQuantityFromInt(1), e.stock())

	stored, err := e.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(types.MustMoney("9.00")))
}

func TestUpdateLine_NewQuantityInfeasible(t *testing.T) {
	e := newEnv(t, 10)
	ctx := context.Background()

	doc := NewSale()
	doc.Lines = []Line{
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(8), types.MustMoney("1.00")),
	}
	require.NoError(t, e.svc.Create(ctx, doc))

	edited := doc.Lines[0]
	edited.Quantity = types.NewQuantityFromInt(11)
	err := e.svc.UpdateLine(ctx, doc.ID, &edited)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))
}

func TestUpdateLine_WrongDocument(t *testing.T) {
	e := newEnv(t, 20)
	ctx := context.Background()

	doc := NewSale()
	doc.Lines = []Line{
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(1), types.MustMoney("1.00")),
	}
	require.NoError(t, e.svc.Create(ctx, doc))

	other := NewSale()
	require.NoError(t, e.svc.Create(ctx, other))

	edited := doc.Lines[0]
	edited.Quantity = types.NewQuantityFromInt(2)
	err := e.svc.UpdateLine(ctx, other.ID, &edited)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRemoveLine_Idempotent(t *testing.T) {
	e := newEnv(t, 10)
	ctx := context.Background()

	doc := NewSale()
	doc.Lines = []Line{
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(4), types.MustMoney("2.00")),
	}
	require.NoError(t, e.svc.Create(ctx, doc))
	assert.Equal(t, types.NewQuantityFromInt(6), e.stock())

	lineID := doc.Lines[0].LineID
	require.NoError(t, e.svc.RemoveLine(ctx, doc.ID, lineID))
	assert.Equal(t, types.NewQuantityFromInt(10), e.stock())

	// Second removal must not reverse again.
	require.NoError(t, e.svc.RemoveLine(ctx, doc.ID, lineID))
	assert.Equal(t, types.NewQuantityFromInt(10), e.stock())

	stored, err := e.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	assert.False(t, stored.Lines[0].Active)
	assert.True(t, stored.Total.IsZero())
}

func TestSetAmountPaid_BalanceSides(t *testing.T) {
	e := newEnv(t, 20)
	ctx := context.Background()

	doc := NewSale()
	doc.Lines = []Line{
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(5), types.MustMoney("2.00")),
	}
	require.NoError(t, e.svc.Create(ctx, doc))

	// Partial payment: customer still owes.
	require.NoError(t, e.svc.SetAmountPaid(ctx, doc.ID, types.MustMoney("6.00")))
	stored, err := e.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, stored.BalanceCustomer.Equal(types.MustMoney("4.00")))
	assert.True(t, stored.BalanceStore.IsZero())

	// Overpayment: store owes change back.
	require.NoError(t, e.svc.SetAmountPaid(ctx, doc.ID, types.MustMoney("12.00")))
	stored, err = e.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, stored.BalanceCustomer.IsZero())
	assert.True(t, stored.BalanceStore.Equal(types.MustMoney("2.00")))
}

func TestSetAmountPaid_NegativeRejected(t *testing.T) {
	e := newEnv(t, 20)
	ctx := context.Background()

	doc := NewSale()
	require.NoError(t, e.svc.Create(ctx, doc))

	err := e.svc.SetAmountPaid(ctx, doc.ID, types.MustMoney("-1.00"))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCancel_Idempotent(t *testing.T) {
	e := newEnv(t, 10)
	ctx := context.Background()

	doc := NewSale()
	doc.Lines = []Line{
		NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(6), types.MustMoney("2.00")),
	}
	require.NoError(t, e.svc.Create(ctx, doc))
	require.NoError(t, e.svc.SetAmountPaid(ctx, doc.ID, types.MustMoney("12.00")))
	assert.Equal(t, types.NewQuantityFromInt(4), e.stock())

	require.NoError(t, e.svc.Cancel(ctx, doc.ID))
	assert.Equal(t, types.NewQuantityFromInt(10), e.stock())

	// Second cancel must not reverse again.
	require.NoError(t, e.svc.Cancel(ctx, doc.ID))
	assert.Equal(t, types.NewQuantityFromInt(10), e.stock())

	stored, err := e.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.True(t, stored.Total.IsZero())
	assert.True(t, stored.AmountPaid.IsZero())
	assert.True(t, stored.BalanceCustomer.IsZero())
	assert.True(t, stored.BalanceStore.IsZero())
	for _, line := range stored.Lines {
		assert.False(t, line.Active)
	}
}

func TestCancelledSale_RejectsModification(t *testing.T) {
	e := newEnv(t, 10)
	ctx := context.Background()

	doc := NewSale()
	require.NoError(t, e.svc.Create(ctx, doc))
	require.NoError(t, e.svc.Cancel(ctx, doc.ID))

	line := NewLine(e.product.ID, e.baseUnit, types.NewQuantityFromInt(1), types.MustMoney("1.00"))
	err := e.svc.AddLine(ctx, doc.ID, &line)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeRecordInactive))

	err = e.svc.SetAmountPaid(ctx, doc.ID, types.MustMoney("5.00"))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeRecordInactive))
}
