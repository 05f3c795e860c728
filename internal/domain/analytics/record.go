package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"retailpos/internal/core/types"
)

// SaleRecord is one persisted sale as read by the aggregator.
// Dates are ISO-8601 strings; the aggregator never mutates a record.
type SaleRecord struct {
	ProductID        string          `json:"productId"`
	ProductName      string          `json:"productName"`
	Quantity         decimal.Decimal `json:"quantity"`
	SellPricePerUnit decimal.Decimal `json:"sellPricePerUnit"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	Unit             string          `json:"unit,omitempty"`
	DateOfSale       string          `json:"dateOfSale"`
	Timestamp        string          `json:"timestamp,omitempty"`
	CustomerName     string          `json:"customerName,omitempty"`
	CustomerPhone    string          `json:"customerPhone,omitempty"`
	WarrantyEndDate  string          `json:"warrantyEndDate,omitempty"`
}

// rawRecord accepts numbers, numeric strings or garbage for amounts.
// Dates may also be epoch milliseconds.
type rawRecord struct {
	ProductID        any `json:"productId"`
	ProductName      any `json:"productName"`
	Quantity         any `json:"quantity"`
	SellPricePerUnit any `json:"sellPricePerUnit"`
	TotalPrice       any `json:"totalPrice"`
	Unit             any `json:"unit"`
	DateOfSale       any `json:"dateOfSale"`
	Timestamp        any `json:"timestamp"`
	CustomerName     any `json:"customerName"`
	CustomerPhone    any `json:"customerPhone"`
	WarrantyEndDate  any `json:"warrantyEndDate"`
}

// UnmarshalJSON decodes permissively: amounts that are not numbers count as
// zero and text fields of the wrong type are left empty.
func (r *SaleRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw rawRecord
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	*r = SaleRecord{
		ProductID:        idString(raw.ProductID),
		ProductName:      text(raw.ProductName),
		Quantity:         types.ParseAmount(raw.Quantity),
		SellPricePerUnit: types.ParseAmount(raw.SellPricePerUnit),
		TotalPrice:       types.ParseAmount(raw.TotalPrice),
		Unit:             text(raw.Unit),
		DateOfSale:       dateText(raw.DateOfSale),
		Timestamp:        dateText(raw.Timestamp),
		CustomerName:     text(raw.CustomerName),
		CustomerPhone:    text(raw.CustomerPhone),
		WarrantyEndDate:  dateText(raw.WarrantyEndDate),
	}
	return nil
}

func idString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func text(v any) string {
	s, _ := v.(string)
	return s
}

// dateText keeps date strings and renders epoch milliseconds as RFC 3339 UTC.
func dateText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		ms, err := x.Int64()
		if err != nil {
			f, err := x.Float64()
			if err != nil {
				return ""
			}
			ms = int64(f)
		}
		return time.UnixMilli(ms).UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// ReadRecords decodes a JSON array of sale records.
func ReadRecords(r io.Reader) ([]SaleRecord, error) {
	var records []SaleRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode sale records: %w", err)
	}
	return records, nil
}
