package inventory

import (
	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	"github.com/dcastroh/stockpilot-backend/pkg/enums"
)

// DefaultLowStockThreshold applies to stock records created without an
// explicit threshold.
const DefaultLowStockThreshold = 20

// DeriveStatus computes a product's stock status from its stock records.
// A product with no stock anywhere is out of stock. A product is low on
// stock when any warehouse holds a positive quantity at or below that
// record's own threshold. Otherwise it is in stock.
func DeriveStatus(records []models.StockRecord) enums.ProductStatus {
	total := 0
	anyLow := false
	for _, record := range records {
		total += record.Quantity
		if record.IsLow() {
			anyLow = true
		}
	}

	switch {
	case total == 0:
		return enums.ProductStatusOutOfStock
	case anyLow:
		return enums.ProductStatusLowStock
	default:
		return enums.ProductStatusInStock
	}
}
