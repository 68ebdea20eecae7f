package warehouses

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

// CreateInput carries the fields accepted when registering a warehouse.
type CreateInput struct {
	Name      string   `json:"name" validate:"required"`
	Code      string   `json:"code" validate:"required"`
	Address   *string  `json:"address"`
	City      *string  `json:"city"`
	Country   *string  `json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Capacity  int      `json:"capacity"`
}

// UpdateInput carries a partial warehouse update. Nil fields are untouched.
type UpdateInput struct {
	Name      *string  `json:"name"`
	Address   *string  `json:"address"`
	City      *string  `json:"city"`
	Country   *string  `json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Capacity  *int     `json:"capacity"`
	IsActive  *bool    `json:"is_active"`
}

// Service exposes warehouse management operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Warehouse, error)
	Update(ctx context.Context, warehouseID uuid.UUID, input UpdateInput) (*models.Warehouse, error)
	Get(ctx context.Context, warehouseID uuid.UUID) (*models.Warehouse, error)
	ListWarehouses(ctx context.Context, params pagination.Params, filters Filters) (*List, error)
	GetStats(ctx context.Context, warehouseID uuid.UUID) (*Stats, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the warehouses service.
func NewService(repo Repository, logg *logger.Logger) Service {
	if repo == nil {
		panic("warehouses: repository is required")
	}
	return &service{repo: repo, logg: logg}
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Warehouse, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Code = strings.TrimSpace(strings.ToUpper(input.Code))
	if input.Name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "warehouse name is required")
	}
	if input.Code == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "warehouse code is required")
	}
	if input.Capacity < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "capacity cannot be negative")
	}

	warehouse := &models.Warehouse{
		Name:      input.Name,
		Code:      input.Code,
		Address:   input.Address,
		City:      input.City,
		Country:   input.Country,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Capacity:  input.Capacity,
		IsActive:  true,
	}

	created, err := s.repo.Create(ctx, warehouse)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_warehouses_code", "warehouses.code") {
			return nil, apperrors.New(apperrors.CodeConflict, "a warehouse with this code already exists")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to create warehouse")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"warehouse_id": created.ID.String(),
			"code":         created.Code,
		})
		s.logg.Info(logCtx, "warehouse created")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, warehouseID uuid.UUID, input UpdateInput) (*models.Warehouse, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "warehouse name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.City != nil {
		updates["city"] = *input.City
	}
	if input.Country != nil {
		updates["country"] = *input.Country
	}
	if input.Latitude != nil {
		updates["latitude"] = *input.Latitude
	}
	if input.Longitude != nil {
		updates["longitude"] = *input.Longitude
	}
	if input.Capacity != nil {
		if *input.Capacity < 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "capacity cannot be negative")
		}
		updates["capacity"] = *input.Capacity
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return s.Get(ctx, warehouseID)
	}

	if _, err := s.Get(ctx, warehouseID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, warehouseID, updates); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to update warehouse")
	}
	return s.Get(ctx, warehouseID)
}

func (s *service) Get(ctx context.Context, warehouseID uuid.UUID) (*models.Warehouse, error) {
	warehouse, err := s.repo.FindByID(ctx, warehouseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.CodeNotFound, "warehouse not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load warehouse")
	}
	return warehouse, nil
}

func (s *service) ListWarehouses(ctx context.Context, params pagination.Params, filters Filters) (*List, error) {
	list, err := s.repo.ListWarehouses(ctx, params, filters)
	if err != nil {
		if appErr := apperrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to list warehouses")
	}
	return list, nil
}

func (s *service) GetStats(ctx context.Context, warehouseID uuid.UUID) (*Stats, error) {
	stats, err := s.repo.CollectStats(ctx, warehouseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.CodeNotFound, "warehouse not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to collect warehouse stats")
	}
	return stats, nil
}
