package product

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/core/tx"
	"retailpos/internal/domain"
	"retailpos/internal/domain/identifier"
)

// memRepo is an in-memory Repository.
type memRepo struct {
	mu    sync.Mutex
	items map[id.ID]*Product
	order []id.ID
}

func newMemRepo(products ...*Product) *memRepo {
	r := &memRepo{items: make(map[id.ID]*Product)}
	for _, p := range products {
		r.items[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	return r
}

func (r *memRepo) Create(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.items {
		if !other.DeletionMark && other.UniqueID == p.UniqueID {
			return apperror.NewDuplicate("product", "uniqueId", p.UniqueID)
		}
	}
	cp := *p
	r.items[p.ID] = &cp
	r.order = append(r.order, p.ID)
	return nil
}

func (r *memRepo) GetByID(_ context.Context, pid id.ID) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[pid]
	if !ok {
		return nil, apperror.NewNotFound("product", pid.String())
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) GetForUpdate(ctx context.Context, pid id.ID) (*Product, error) {
	return r.GetByID(ctx, pid)
}

func (r *memRepo) Update(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[p.ID]
	if !ok {
		return apperror.NewNotFound("product", p.ID.String())
	}
	if cur.Version != p.Version {
		return apperror.NewConcurrentModification("product", p.ID.String())
	}
	cp := *p
	cp.Version++
	r.items[p.ID] = &cp
	return nil
}

func (r *memRepo) SetDeletionMark(_ context.Context, pid id.ID, marked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[pid]
	if !ok {
		return apperror.NewNotFound("product", pid.String())
	}
	p.DeletionMark = marked
	return nil
}

func (r *memRepo) live() []*Product {
	out := make([]*Product, 0, len(r.order))
	for _, pid := range r.order {
		if p := r.items[pid]; !p.DeletionMark {
			out = append(out, p)
		}
	}
	return out
}

func (r *memRepo) List(_ context.Context, f domain.ListFilter) (domain.ListResult[*Product], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.live()
	total := int64(len(items))
	if f.Limit > 0 && len(items) > f.Limit {
		items = items[:f.Limit]
	}
	return domain.ListResult[*Product]{Items: items, TotalCount: total, Limit: f.Limit}, nil
}

func (r *memRepo) FindByUniqueID(_ context.Context, uniqueID string) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.live() {
		if p.UniqueID == uniqueID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("product", uniqueID)
}

func (r *memRepo) ListUniqueIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, p := range r.live() {
		out = append(out, p.UniqueID)
	}
	return out, nil
}

func (r *memRepo) ListActive(_ context.Context) ([]*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.live()
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *memRepo) AdjustStock(_ context.Context, pid id.ID, delta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[pid]
	if !ok {
		return apperror.NewNotFound("product", pid.String())
	}
	p.Stock = p.Stock.Add(delta)
	return nil
}

func seq(suffixes ...string) identifier.SuffixFunc {
	i := 0
	return func() (string, error) {
		s := suffixes[i%len(suffixes)]
		i++
		return s, nil
	}
}

func stored(name, commonID, uniqueID, stock string) *Product {
	p := NewProduct(name, commonID)
	p.UniqueID = uniqueID
	p.Stock = decimal.RequireFromString(stock)
	return p
}

func TestCreate_GeneratesUniqueID(t *testing.T) {
	repo := newMemRepo(stored("Camera", "CAM-1001", "CAM-1001-AAAA", "1"))
	svc := NewService(repo, tx.Direct{}, WithIdentifierOptions(identifier.WithSuffixFunc(seq("AAAA", "BBBB"))))

	p := NewProduct("Camera", " cam 1001 ")
	require.NoError(t, svc.Create(context.Background(), p))

	assert.Equal(t, "CAM-1001", p.CommonID)
	assert.Equal(t, "CAM-1001-BBBB", p.UniqueID)

	got, err := svc.GetByUniqueID(context.Background(), "cam-1001-bbbb")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestCreate_RejectsDuplicateUniqueID(t *testing.T) {
	repo := newMemRepo(stored("Camera", "CAM-1001", "CAM-1001-A1", "1"))
	svc := NewService(repo, tx.Direct{})

	p := NewProduct("Camera", "CAM-1001")
	p.UniqueID = "cam 1001 a1"

	err := svc.Create(context.Background(), p)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
}

func TestCreate_RejectsForeignPrefix(t *testing.T) {
	svc := NewService(newMemRepo(), tx.Direct{})

	p := NewProduct("Camera", "CAM-1001")
	p.UniqueID = "TV-55-A1"

	err := svc.Create(context.Background(), p)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestCreate_InvalidCommonID(t *testing.T) {
	svc := NewService(newMemRepo(), tx.Direct{})

	err := svc.Create(context.Background(), NewProduct("Camera", "CAM#1"))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestCreate_GenerationExhausted(t *testing.T) {
	repo := newMemRepo(stored("Camera", "CAM-1001", "CAM-1001-AAAA", "1"))
	svc := NewService(repo, tx.Direct{}, WithIdentifierOptions(identifier.WithSuffixFunc(seq("AAAA"))))

	err := svc.Create(context.Background(), NewProduct("Camera", "CAM-1001"))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeIDGenerationExhausted))
	assert.Equal(t, 422, apperror.GetHTTPStatus(err))
}

func TestUpdate_KeepsOwnUniqueID(t *testing.T) {
	existing := stored("Camera", "CAM-1001", "CAM-1001-A1", "1")
	other := stored("Camera", "CAM-1001", "CAM-1001-B2", "1")
	repo := newMemRepo(existing, other)
	svc := NewService(repo, tx.Direct{})
	ctx := context.Background()

	edit, err := svc.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	edit.Name = "Camera body"
	require.NoError(t, svc.Update(ctx, edit))

	edit, err = svc.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	edit.UniqueID = "CAM-1001-B2"
	err = svc.Update(ctx, edit)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))

	edit.UniqueID = ""
	require.NoError(t, svc.Update(ctx, edit))
	got, err := svc.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "CAM-1001-A1", got.UniqueID)
}

func TestDelete_FreesUniqueID(t *testing.T) {
	existing := stored("Camera", "CAM-1001", "CAM-1001-A1", "1")
	repo := newMemRepo(existing)
	svc := NewService(repo, tx.Direct{})
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, existing.ID))

	p := NewProduct("Camera", "CAM-1001")
	p.UniqueID = "CAM-1001-A1"
	require.NoError(t, svc.Create(ctx, p))

	err := svc.Restore(ctx, existing.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
}

func TestCreateUnits(t *testing.T) {
	repo := newMemRepo(stored("Lens", "LNS-50", "LNS-50-0001", "1"))
	svc := NewService(repo, tx.Direct{})

	template := NewProduct("Lens 50mm", "lns-50")
	template.SellPrice = decimal.RequireFromString("199.90")
	template.Stock = decimal.NewFromInt(1)

	units, err := svc.CreateUnits(context.Background(), template, 5)
	require.NoError(t, err)
	require.Len(t, units, 5)

	seen := map[string]bool{"LNS-50-0001": true}
	for _, u := range units {
		assert.True(t, strings.HasPrefix(u.UniqueID, "LNS-50-"))
		assert.False(t, seen[u.UniqueID], "duplicate %s", u.UniqueID)
		seen[u.UniqueID] = true
		assert.True(t, u.SellPrice.Equal(template.SellPrice))
		assert.NotEqual(t, template.ID, u.ID)
	}

	ids, err := repo.ListUniqueIDs(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 6)

	_, err = svc.CreateUnits(context.Background(), template, 0)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestGenerateIDs_Distinct(t *testing.T) {
	svc := NewService(newMemRepo(), tx.Direct{}, WithIdentifierOptions(identifier.WithSuffixFunc(seq("A1", "A1", "B2", "C3"))))

	ids, err := svc.GenerateIDs(context.Background(), "cam 1001", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"CAM-1001-A1", "CAM-1001-B2", "CAM-1001-C3"}, ids)

	_, err = svc.GenerateIDs(context.Background(), "cam 1001", MaxUnitsPerBatch+1)
	assert.Error(t, err)
}

func TestCheckIDs(t *testing.T) {
	svc := NewService(newMemRepo(stored("Camera", "CAM-1001", "CAM-1001-A1", "1")), tx.Direct{})
	ctx := context.Background()

	res, err := svc.CheckIDs(ctx, CheckRequest{CommonID: "cam 1001", UniqueID: "cam-1001-a1"})
	require.NoError(t, err)
	assert.True(t, res.CommonID.Valid)
	assert.Equal(t, "CAM-1001", res.FormattedCommonID)
	require.NotNil(t, res.UniqueID)
	assert.False(t, res.UniqueID.Valid)

	res, err = svc.CheckIDs(ctx, CheckRequest{CommonID: "CAM-1001", UniqueID: "CAM-1001-A1", Previous: "CAM-1001-A1"})
	require.NoError(t, err)
	assert.True(t, res.UniqueID.Valid)

	res, err = svc.CheckIDs(ctx, CheckRequest{CommonID: "  "})
	require.NoError(t, err)
	assert.False(t, res.CommonID.Valid)
	assert.Nil(t, res.UniqueID)
}

func TestLowStock(t *testing.T) {
	repo := newMemRepo(
		stored("Battery", "BAT-1", "BAT-1-A", "2"),
		stored("Camera", "CAM-1", "CAM-1-A", "12"),
		stored("Cable", "CBL-1", "CBL-1-A", "5"),
	)
	svc := NewService(repo, tx.Direct{})

	low, err := svc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Battery", low[0].Name)
	assert.Equal(t, "Cable", low[1].Name)

	count, err := svc.CountActive(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestLowStock_CustomRule(t *testing.T) {
	rule, err := NewLowStockRule(`stock < threshold && common_id.startsWith("CAM")`, 20)
	require.NoError(t, err)

	repo := newMemRepo(
		stored("Battery", "BAT-1", "BAT-1-A", "2"),
		stored("Camera", "CAM-1", "CAM-1-A", "12"),
	)
	svc := NewService(repo, tx.Direct{}, WithLowStockRule(rule))

	low, err := svc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Camera", low[0].Name)
}

func TestNewLowStockRule_Errors(t *testing.T) {
	_, err := NewLowStockRule("stock +", 1)
	assert.Error(t, err)

	_, err = NewLowStockRule("stock * 2.0", 1)
	assert.Error(t, err, "non-bool rule")

	_, err = NewLowStockRule("unknown_var > 1", 1)
	assert.Error(t, err)

	r, err := NewLowStockRule("", 3)
	require.NoError(t, err)
	assert.Equal(t, DefaultLowStockExpr, r.Expr())
	assert.Equal(t, 3.0, r.Threshold())
}

func TestProductValidate(t *testing.T) {
	ctx := context.Background()

	p := NewProduct("  Tripod ", "trp 1")
	p.Unit = " "
	require.NoError(t, p.Validate(ctx))
	assert.Equal(t, "Tripod", p.Name)
	assert.Equal(t, "TRP-1", p.CommonID)
	assert.Equal(t, DefaultUnit, p.Unit)

	p.SellPrice = decimal.NewFromInt(-1)
	assert.Error(t, p.Validate(ctx))

	p = NewProduct("Tripod", "TRP-1")
	p.WarrantyMonths = MaxWarrantyMonths + 1
	assert.Error(t, p.Validate(ctx))
}
