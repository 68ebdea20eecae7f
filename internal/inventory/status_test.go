package inventory

import (
	"testing"

	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	"github.com/dcastroh/stockpilot-backend/pkg/enums"
)

func record(qty, threshold int) models.StockRecord {
	return models.StockRecord{Quantity: qty, LowStockThreshold: threshold}
}

func TestDeriveStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		records []models.StockRecord
		want    enums.ProductStatus
	}{
		{
			name:    "no records is out of stock",
			records: nil,
			want:    enums.ProductStatusOutOfStock,
		},
		{
			name:    "all zero quantities is out of stock",
			records: []models.StockRecord{record(0, 20), record(0, 5)},
			want:    enums.ProductStatusOutOfStock,
		},
		{
			name:    "any warehouse at threshold is low stock",
			records: []models.StockRecord{record(100, 20), record(5, 5)},
			want:    enums.ProductStatusLowStock,
		},
		{
			name:    "below threshold is low stock",
			records: []models.StockRecord{record(3, 20)},
			want:    enums.ProductStatusLowStock,
		},
		{
			name:    "healthy everywhere is in stock",
			records: []models.StockRecord{record(100, 20), record(30, 20)},
			want:    enums.ProductStatusInStock,
		},
		{
			name: "empty warehouse does not mark a stocked product low",
			// a zero-quantity record is not "low", only depleted
			records: []models.StockRecord{record(0, 20), record(100, 20)},
			want:    enums.ProductStatusInStock,
		},
		{
			name:    "thresholds apply per record",
			records: []models.StockRecord{record(8, 5), record(50, 20)},
			want:    enums.ProductStatusInStock,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveStatus(tc.records); got != tc.want {
				t.Fatalf("DeriveStatus = %s, want %s", got, tc.want)
			}
		})
	}
}
