package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/core/entity"
)

type testUnit struct {
	entity.Catalog
	CommonID string          `db:"common_id"`
	Stock    decimal.Decimal `db:"stock"`
	Scratch  string          `db:"-"`
	Untagged string
}

func TestExtractDBColumns_Embedded(t *testing.T) {
	cols := ExtractDBColumns[testUnit]()

	assert.Equal(t, []string{
		"id", "deletion_mark", "version", "created_at", "updated_at",
		"name", "description",
		"common_id", "stock",
	}, cols)
}

func TestStructToMap(t *testing.T) {
	u := &testUnit{
		Catalog:  entity.NewCatalog("Camera"),
		CommonID: "CAM-1001",
		Stock:    decimal.NewFromInt(3),
		Scratch:  "skip",
	}
	u.Version = 4

	m := StructToMap(u)
	require.NotNil(t, m)
	assert.Equal(t, u.ID, m["id"])
	assert.Equal(t, 4, m["version"])
	assert.Equal(t, "Camera", m["name"])
	assert.Equal(t, "CAM-1001", m["common_id"])
	assert.True(t, decimal.NewFromInt(3).Equal(m["stock"].(decimal.Decimal)))
	assert.NotContains(t, m, "Scratch")
	assert.NotContains(t, m, "Untagged")
	assert.Len(t, m, 9)

	assert.Equal(t, m, StructToMap(*u))
	assert.Nil(t, StructToMap(42))

	var missing *testUnit
	assert.Nil(t, StructToMap(missing))
}
