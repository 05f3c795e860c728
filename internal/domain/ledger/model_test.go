package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleJSON_DatesRenderAsCalendarDays(t *testing.T) {
	shop := time.FixedZone("UTC+5", 5*3600)
	end := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date time.Time
	}{
		{"just recorded", time.Date(2024, 6, 10, 0, 0, 0, 0, shop)},
		{"read back from a date column", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sale := &Sale{
				Number:          "SL-2024-000001",
				Quantity:        decimal.NewFromInt(1),
				DateOfSale:      tt.date,
				SoldAt:          time.Date(2024, 6, 10, 9, 30, 0, 0, shop),
				WarrantyEndDate: &end,
			}

			data, err := json.Marshal(sale)
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, "2024-06-10", got["dateOfSale"])
			assert.Equal(t, "2025-06-10", got["warrantyEndDate"])
			assert.Equal(t, "SL-2024-000001", got["number"])
			assert.Equal(t, "2024-06-10T09:30:00+05:00", got["timestamp"])
		})
	}
}

func TestSaleJSON_NoWarranty(t *testing.T) {
	data, err := json.Marshal(Sale{DateOfSale: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "2024-01-02", got["dateOfSale"])
	assert.NotContains(t, got, "warrantyEndDate")
}

func TestJournalJSON_Dates(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.FixedZone("UTC-4", -4*3600))

	data, err := json.Marshal(&Purchase{DateOfPurchase: day})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"dateOfPurchase":"2024-03-04"`)

	data, err = json.Marshal(&Return{DateOfReturn: day})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"dateOfReturn":"2024-03-04"`)

	end := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	data, err = json.Marshal(WarrantyInfo{UniqueID: "CAM-1-AB12", Status: WarrantyActive, EndDate: &end})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"endDate":"2024-09-01"`)
}
