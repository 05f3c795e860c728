package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/entity"
	"retailpos/internal/core/id"
)

type item struct {
	entity.Catalog
}

func (i *item) Validate(ctx context.Context) error { return i.Catalog.Validate(ctx) }

type memItems struct {
	rows    map[id.ID]*item
	deleted map[id.ID]bool
	lastF   ListFilter
}

func newMemItems() *memItems {
	return &memItems{rows: map[id.ID]*item{}, deleted: map[id.ID]bool{}}
}

func (m *memItems) Create(_ context.Context, e *item) error {
	m.rows[e.ID] = e
	return nil
}

func (m *memItems) GetByID(_ context.Context, itemID id.ID) (*item, error) {
	e, ok := m.rows[itemID]
	if !ok {
		return nil, apperror.NewNotFound("item", itemID)
	}
	return e, nil
}

func (m *memItems) Update(_ context.Context, e *item) error {
	m.rows[e.ID] = e
	return nil
}

func (m *memItems) SetDeletionMark(_ context.Context, itemID id.ID, marked bool) error {
	m.deleted[itemID] = marked
	return nil
}

func (m *memItems) List(_ context.Context, f ListFilter) (ListResult[*item], error) {
	m.lastF = f
	return ListResult[*item]{Limit: f.Limit, Offset: f.Offset}, nil
}

func newItemService(repo *memItems) *CatalogService[*item] {
	return NewCatalogService(CatalogServiceConfig[*item]{Repo: repo, EntityName: "item"})
}

func TestCatalogService_GuardsRunInOrder(t *testing.T) {
	ctx := context.Background()
	repo := newMemItems()
	svc := newItemService(repo)

	var calls []string
	svc.Guard(func(_ context.Context, op Op, e *item) error {
		calls = append(calls, "first:"+op.String())
		return nil
	})
	svc.Guard(func(_ context.Context, op Op, e *item) error {
		calls = append(calls, "second:"+op.String())
		return nil
	})

	it := &item{Catalog: entity.NewCatalog("Tripod")}
	require.NoError(t, svc.Create(ctx, it))
	require.NoError(t, svc.Update(ctx, it))
	require.NoError(t, svc.Delete(ctx, it.ID))

	assert.Equal(t, []string{
		"first:create", "second:create",
		"first:update", "second:update",
		"first:delete", "second:delete",
	}, calls)
	assert.True(t, repo.deleted[it.ID])
}

func TestCatalogService_GuardErrorAbortsWrite(t *testing.T) {
	ctx := context.Background()
	repo := newMemItems()
	svc := newItemService(repo)

	stop := apperror.NewDuplicate("item", "name", "Tripod")
	svc.Guard(func(context.Context, Op, *item) error { return stop })

	it := &item{Catalog: entity.NewCatalog("Tripod")}
	err := svc.Create(ctx, it)
	assert.True(t, errors.Is(err, stop))
	assert.Empty(t, repo.rows)
}

func TestCatalogService_ValidationBeforeGuards(t *testing.T) {
	svc := newItemService(newMemItems())
	called := false
	svc.Guard(func(context.Context, Op, *item) error {
		called = true
		return nil
	})

	err := svc.Create(context.Background(), &item{Catalog: entity.NewCatalog("")})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.False(t, called)
}

func TestCatalogService_DeleteUnknown(t *testing.T) {
	err := newItemService(newMemItems()).Delete(context.Background(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestListFilterNormalize(t *testing.T) {
	tests := []struct {
		name       string
		in         ListFilter
		wantLimit  int
		wantOffset int
	}{
		{name: "zero", in: ListFilter{}, wantLimit: DefaultListLimit},
		{name: "too big", in: ListFilter{Limit: 10_000}, wantLimit: MaxListLimit},
		{name: "negative offset", in: ListFilter{Limit: 10, Offset: -3}, wantLimit: 10},
		{name: "kept", in: ListFilter{Limit: 20, Offset: 40}, wantLimit: 20, wantOffset: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantOffset, got.Offset)
		})
	}

	repo := newMemItems()
	_, err := newItemService(repo).List(context.Background(), ListFilter{Limit: -1})
	require.NoError(t, err)
	assert.Equal(t, DefaultListLimit, repo.lastF.Limit)
}
