package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/core/apperror"
	"retailpos/internal/domain/filter"
)

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators())

	type ids struct {
		CommonID string `binding:"commonid"`
		UniqueID string `binding:"omitempty,uniqueid"`
	}

	tests := []struct {
		name    string
		in      ids
		wantErr bool
	}{
		{"formatted", ids{"CAM-1001", "CAM-1001-7QX2"}, false},
		{"loose spacing", ids{" cam 1001 ", "cam_1001 7qx2"}, false},
		{"no unique id", ids{"CAM-1001", ""}, false},
		{"bad common id", ids{"CAM#1001", ""}, true},
		{"empty common id", ids{"", ""}, true},
		{"unique id without suffix", ids{"CAM", "CAM"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListQuery_ToListFilter(t *testing.T) {
	f, err := ListQuery{Search: " cam ", Limit: 20, OrderBy: "-stock",
		Filter: `[{"field":"stock","operator":"lte","value":5}]`}.ToListFilter()
	require.NoError(t, err)
	assert.Equal(t, "cam", f.Search)
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, "-stock", f.OrderBy)
	require.Len(t, f.Filters, 1)
	assert.Equal(t, filter.LessOrEqual, f.Filters[0].Operator)

	f, err = ListQuery{}.ToListFilter()
	require.NoError(t, err)
	assert.Equal(t, 50, f.Limit)
	assert.Equal(t, "name", f.OrderBy)

	_, err = ListQuery{Filter: "{"}.ToListFilter()
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestProductFields_ToEntity(t *testing.T) {
	cat := "0190c0de-0000-7000-8000-000000000001"
	bad := "nope"

	p, err := CreateProductRequest{
		ProductFields: ProductFields{Name: "Camera", CommonID: "cam 1001", CategoryID: &cat},
		UniqueID:      "cam-1001-a1",
	}.ToEntity()
	require.NoError(t, err)
	assert.Equal(t, "CAM-1001", p.CommonID)
	assert.Equal(t, "cam-1001-a1", p.UniqueID)
	require.NotNil(t, p.CategoryID)
	assert.Equal(t, cat, p.CategoryID.String())
	assert.Equal(t, "pcs", p.Unit)

	_, err = ProductFields{Name: "Camera", CommonID: "CAM", BrandID: &bad}.ToEntity()
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestReturnRequest_ToInput(t *testing.T) {
	sale := "0190c0de-0000-7000-8000-000000000003"

	in, err := ReturnRequest{SaleID: &sale}.ToInput()
	require.NoError(t, err)
	require.NotNil(t, in.SaleID)
	assert.Equal(t, sale, in.SaleID.String())

	_, err = ReturnRequest{ProductID: "x"}.ToInput()
	assert.Error(t, err)
}
