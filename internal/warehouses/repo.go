package warehouses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	"github.com/dcastroh/stockpilot-backend/pkg/enums"
	"github.com/dcastroh/stockpilot-backend/pkg/pagination"
)

// Filters narrows warehouse listings.
type Filters struct {
	ActiveOnly bool
}

// List is a cursor page of warehouses.
type List struct {
	Warehouses []models.Warehouse
	NextCursor *string
}

// Stats summarizes a warehouse's utilization.
type Stats struct {
	Capacity           int     `json:"capacity"`
	TotalStock         int64   `json:"total_stock"`
	UtilizationPercent float64 `json:"utilization_percent"`
	DistinctProducts   int64   `json:"distinct_products"`
	OpenOrderLines     int64   `json:"open_order_lines"`
}

// Repository defines persistence operations for warehouses.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, warehouse *models.Warehouse) (*models.Warehouse, error)
	Update(ctx context.Context, warehouseID uuid.UUID, updates map[string]any) error
	FindByID(ctx context.Context, warehouseID uuid.UUID) (*models.Warehouse, error)
	ListWarehouses(ctx context.Context, params pagination.Params, filters Filters) (*List, error)
	CollectStats(ctx context.Context, warehouseID uuid.UUID) (*Stats, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a warehouses repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, warehouse *models.Warehouse) (*models.Warehouse, error) {
	if err := r.db.WithContext(ctx).Create(warehouse).Error; err != nil {
		return nil, err
	}
	return warehouse, nil
}

func (r *repository) Update(ctx context.Context, warehouseID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Warehouse{}).
		Where("id = ?", warehouseID).
		Updates(updates).Error
}

func (r *repository) FindByID(ctx context.Context, warehouseID uuid.UUID) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	err := r.db.WithContext(ctx).
		Where("id = ?", warehouseID).
		First(&warehouse).Error
	if err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *repository) ListWarehouses(ctx context.Context, params pagination.Params, filters Filters) (*List, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Warehouse{})
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Warehouse
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &List{Warehouses: rows}
	if len(rows) > limit {
		list.Warehouses = rows[:limit]
		last := list.Warehouses[limit-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	return list, nil
}

func (r *repository) CollectStats(ctx context.Context, warehouseID uuid.UUID) (*Stats, error) {
	warehouse, err := r.FindByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Capacity: warehouse.Capacity}

	type stockRow struct {
		Total    int64
		Products int64
	}
	var stock stockRow
	err = r.db.WithContext(ctx).
		Model(&models.StockRecord{}).
		Select("COALESCE(SUM(quantity), 0) AS total, COUNT(*) AS products").
		Where("warehouse_id = ?", warehouseID).
		Scan(&stock).Error
	if err != nil {
		return nil, err
	}
	stats.TotalStock = stock.Total
	stats.DistinctProducts = stock.Products
	if warehouse.Capacity > 0 {
		stats.UtilizationPercent = float64(stock.Total) / float64(warehouse.Capacity) * 100
	}

	err = r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.warehouse_id = ?", warehouseID).
		Where("orders.status IN ?", []enums.OrderStatus{
			enums.OrderStatusPending,
			enums.OrderStatusProcessing,
			enums.OrderStatusShipped,
		}).
		Count(&stats.OpenOrderLines).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
