package customers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	"github.com/dcastroh/stockpilot-backend/pkg/enums"
	"github.com/dcastroh/stockpilot-backend/pkg/pagination"
)

// Filters narrows customer listings. Search matches name, company, or email.
type Filters struct {
	Status *enums.CustomerStatus
	Search string
}

// List is a cursor page of customers.
type List struct {
	Customers  []models.Customer
	NextCursor *string
}

// Stats aggregates a customer's order history. Cancelled orders are left out
// of the revenue figures.
type Stats struct {
	TotalOrders       int64 `json:"total_orders"`
	TotalRevenueCents int64 `json:"total_revenue_cents"`
	AverageOrderCents int64 `json:"average_order_cents"`
	CancelledOrders   int64 `json:"cancelled_orders"`
	OpenOrders        int64 `json:"open_orders"`
}

// Repository defines persistence operations for customers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Update(ctx context.Context, customerID uuid.UUID, updates map[string]any) error
	FindByID(ctx context.Context, customerID uuid.UUID) (*models.Customer, error)
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	ListCustomers(ctx context.Context, params pagination.Params, filters Filters) (*List, error)
	CollectStats(ctx context.Context, customerID uuid.UUID) (*Stats, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a customers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *repository) Update(ctx context.Context, customerID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		Updates(updates).Error
}

func (r *repository) FindByID(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("id = ?", customerID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("lower(email) = lower(?)", email).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) ListCustomers(ctx context.Context, params pagination.Params, filters Filters) (*List, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Customer{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"name LIKE ? OR company LIKE ? OR email LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Customer
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &List{Customers: rows}
	if len(rows) > limit {
		list.Customers = rows[:limit]
		last := list.Customers[limit-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	return list, nil
}

func (r *repository) CollectStats(ctx context.Context, customerID uuid.UUID) (*Stats, error) {
	stats := &Stats{}

	type row struct {
		Count int64
		Sum   int64
	}
	var billed row
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total_cents), 0) AS sum").
		Where("customer_id = ? AND status <> ?", customerID, enums.OrderStatusCancelled).
		Scan(&billed).Error
	if err != nil {
		return nil, err
	}
	stats.TotalOrders = billed.Count
	stats.TotalRevenueCents = billed.Sum
	if billed.Count > 0 {
		stats.AverageOrderCents = billed.Sum / billed.Count
	}

	err = r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("customer_id = ? AND status = ?", customerID, enums.OrderStatusCancelled).
		Count(&stats.CancelledOrders).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("customer_id = ? AND status IN ?", customerID, []enums.OrderStatus{
			enums.OrderStatusPending,
			enums.OrderStatusProcessing,
			enums.OrderStatusShipped,
		}).
		Count(&stats.OpenOrders).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
