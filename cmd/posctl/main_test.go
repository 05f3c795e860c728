package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesJSON = `[
  {"productId": "p1", "productName": "Camera", "quantity": 2, "sellPricePerUnit": 100, "totalPrice": 200, "dateOfSale": "2024-03-01"},
  {"productId": "p2", "productName": "Lens", "quantity": "1", "sellPricePerUnit": 50, "totalPrice": 50, "dateOfSale": "2024-03-02", "timestamp": "2024-03-02T10:00:00"},
  {"productId": "p1", "productName": "Camera", "quantity": 1, "sellPricePerUnit": 100, "totalPrice": 100, "dateOfSale": "2024-03-05"}
]`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--tz", "UTC"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeSales(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.json")
	require.NoError(t, os.WriteFile(path, []byte(salesJSON), 0o600))
	return path
}

func TestStatsCmd(t *testing.T) {
	out, err := run(t, "stats", "--file", writeSales(t), "--from", "2024-03-01", "--to", "2024-03-02")
	require.NoError(t, err)

	var stats struct {
		TotalProducts      string `json:"totalProducts"`
		TotalRevenue       string `json:"totalRevenue"`
		UniqueProductCount int    `json:"uniqueProductCount"`
		SalesCount         int    `json:"salesCount"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, "3", stats.TotalProducts)
	assert.Equal(t, "250", stats.TotalRevenue)
	assert.Equal(t, 2, stats.UniqueProductCount)
	assert.Equal(t, 2, stats.SalesCount)
}

func TestStatsCmd_BadRange(t *testing.T) {
	_, err := run(t, "stats", "--file", writeSales(t), "--from", "2024-03-05", "--to", "2024-03-01")
	assert.Error(t, err)

	_, err = run(t, "stats", "--file", writeSales(t), "--from", "03/01/2024")
	assert.Error(t, err)
}

func TestProductsCmd_AllRecords(t *testing.T) {
	out, err := run(t, "products", "--file", writeSales(t))
	require.NoError(t, err)

	var report struct {
		Products []struct {
			ProductID string   `json:"productId"`
			Quantity  string   `json:"quantity"`
			Dates     []string `json:"dates"`
		} `json:"products"`
		Summary struct {
			TotalRevenue string `json:"totalRevenue"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Products, 2)
	assert.Equal(t, "p1", report.Products[0].ProductID)
	assert.Equal(t, "3", report.Products[0].Quantity)
	assert.Len(t, report.Products[0].Dates, 2)
	assert.Equal(t, "350", report.Summary.TotalRevenue)
}

func TestIDFormatCmd(t *testing.T) {
	out, err := run(t, "id", "format", " cam 1001 ")
	require.NoError(t, err)
	assert.Equal(t, "CAM-1001", strings.TrimSpace(out))
}

func TestIDCheckCmd(t *testing.T) {
	out, err := run(t, "id", "check", "--common", "CAM-1001", "--unique", "cam-1001-ab12", "--used", "CAM-1001-AB12")
	require.Error(t, err)
	assert.Contains(t, out, "already in use")

	out, err = run(t, "id", "check", "--common", "CAM-1001", "--unique", "CAM-1001-AB12",
		"--used", "CAM-1001-AB12", "--previous", "CAM-1001-AB12")
	require.NoError(t, err)
	assert.Contains(t, out, `"isValid": true`)
}

func TestIDGenerateCmd(t *testing.T) {
	out, err := run(t, "id", "generate", "--common", "cam-1001", "-n", "3")
	require.NoError(t, err)

	ids := strings.Fields(out)
	require.Len(t, ids, 3)
	seen := map[string]bool{}
	for _, v := range ids {
		assert.True(t, strings.HasPrefix(v, "CAM-1001-"), v)
		assert.False(t, seen[v], "duplicate %s", v)
		seen[v] = true
	}

	_, err = run(t, "id", "generate", "--common", "!!")
	assert.Error(t, err)
}

func TestLabelCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unit.png")
	_, err := run(t, "label", "--unique-id", "CAM-1001-AB12", "--out", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}
