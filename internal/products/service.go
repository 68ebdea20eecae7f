package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastroh/stockpilot-backend/pkg/db"
	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	apperrors "github.com/dcastroh/stockpilot-backend/pkg/errors"
	"github.com/dcastroh/stockpilot-backend/pkg/logger"
	"github.com/dcastroh/stockpilot-backend/pkg/pagination"
)

// CreateInput carries the fields accepted when adding a catalog product.
type CreateInput struct {
	SKU         string     `json:"sku" validate:"required"`
	Name        string     `json:"name" validate:"required"`
	Description *string    `json:"description"`
	CategoryID  *uuid.UUID `json:"category_id"`
	PriceCents  int        `json:"price_cents" validate:"gt=0"`
	CostCents   int        `json:"cost_cents"`
}

// UpdateInput carries a partial product update. Nil fields are untouched.
// SKU and stock status are not updatable here; status only moves through
// stock adjustments.
type UpdateInput struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	CategoryID  *uuid.UUID `json:"category_id"`
	PriceCents  *int       `json:"price_cents"`
	CostCents   *int       `json:"cost_cents"`
	IsActive    *bool      `json:"is_active"`
}

// Detail is a product together with its per-warehouse stock breakdown.
type Detail struct {
	Product    *models.Product `json:"product"`
	TotalStock int             `json:"total_stock"`
}

// Service exposes catalog management operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Update(ctx context.Context, productID uuid.UUID, input UpdateInput) (*models.Product, error)
	Get(ctx context.Context, productID uuid.UUID) (*Detail, error)
	ListProducts(ctx context.Context, params pagination.Params, filters Filters) (*List, error)
	Deactivate(ctx context.Context, productID uuid.UUID) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the products service.
func NewService(repo Repository, logg *logger.Logger) Service {
	if repo == nil {
		panic("products: repository is required")
	}
	return &service{repo: repo, logg: logg}
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	input.SKU = strings.TrimSpace(strings.ToUpper(input.SKU))
	input.Name = strings.TrimSpace(input.Name)
	if input.SKU == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "sku is required")
	}
	if input.Name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "product name is required")
	}
	if input.PriceCents <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "price must be positive")
	}
	if input.CostCents < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "cost cannot be negative")
	}
	if input.CategoryID != nil {
		if _, err := s.repo.FindCategory(ctx, *input.CategoryID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperrors.New(apperrors.CodeValidation, "category does not exist")
			}
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to check category")
		}
	}

	product := &models.Product{
		SKU:         input.SKU,
		Name:        input.Name,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		PriceCents:  input.PriceCents,
		CostCents:   input.CostCents,
		IsActive:    true,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_products_sku", "products.sku") {
			return nil, apperrors.New(apperrors.CodeConflict, "a product with this sku already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to create product")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"product_id": created.ID.String(),
			"sku":        created.SKU,
		})
		s.logg.Info(logCtx, "product created")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, productID uuid.UUID, input UpdateInput) (*models.Product, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "product name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.CategoryID != nil {
		if _, err := s.repo.FindCategory(ctx, *input.CategoryID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperrors.New(apperrors.CodeValidation, "category does not exist")
			}
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to check category")
		}
		updates["category_id"] = *input.CategoryID
	}
	if input.PriceCents != nil {
		if *input.PriceCents <= 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "price must be positive")
		}
		updates["price_cents"] = *input.PriceCents
	}
	if input.CostCents != nil {
		if *input.CostCents < 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "cost cannot be negative")
		}
		updates["cost_cents"] = *input.CostCents
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		detail, err := s.Get(ctx, productID)
		if err != nil {
			return nil, err
		}
		return detail.Product, nil
	}

	if _, err := s.findProduct(ctx, productID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, productID, updates); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to update product")
	}
	return s.findProduct(ctx, productID)
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*Detail, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, record := range product.StockRecords {
		total += record.Quantity
	}
	return &Detail{Product: product, TotalStock: total}, nil
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params, filters Filters) (*List, error) {
	list, err := s.repo.ListProducts(ctx, params, filters)
	if err != nil {
		if appErr := apperrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to list products")
	}
	return list, nil
}

func (s *service) Deactivate(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.findProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, productID, map[string]any{"is_active": false}); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to deactivate product")
	}
	return nil
}

func (s *service) findProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load product")
	}
	return product, nil
}
