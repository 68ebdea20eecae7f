package customers

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/dcastroh/stockpilot-backend/pkg/db"
	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	"github.com/dcastroh/stockpilot-backend/pkg/enums"
	apperrors "github.com/dcastroh/stockpilot-backend/pkg/errors"
	"github.com/dcastroh/stockpilot-backend/pkg/pagination"
)

// CreateInput captures a new customer record.
type CreateInput struct {
	Name             string
	Company          *string
	Email            string
	Phone            *string
	Address          *string
	City             *string
	Country          *string
	CreditLimitCents int
	PaymentTerms     *string
	CreatedBy        *uuid.UUID
}

// UpdateInput captures a partial customer update. Nil fields are untouched.
type UpdateInput struct {
	Name             *string
	Company          *string
	Phone            *string
	Address          *string
	City             *string
	Country          *string
	Status           *enums.CustomerStatus
	CreditLimitCents *int
	PaymentTerms     *string
}

// Service manages the customer roster.
type Service struct {
	repo Repository
}

// NewService wires the customers service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Customer, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "customer name required")
	}
	if email == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "customer email required")
	}
	if input.CreditLimitCents < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "credit limit cannot be negative")
	}

	customer := &models.Customer{
		ID:               uuid.New(),
		Name:             name,
		Company:          input.Company,
		Email:            email,
		Phone:            input.Phone,
		Address:          input.Address,
		City:             input.City,
		Country:          input.Country,
		Status:           enums.CustomerStatusActive,
		CreditLimitCents: input.CreditLimitCents,
		PaymentTerms:     input.PaymentTerms,
		CreatedBy:        input.CreatedBy,
	}

	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "idx_customers_email", "customers.email") {
			return nil, apperrors.New(apperrors.CodeConflict, "customer email already registered")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "creating customer")
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, customerID uuid.UUID, input UpdateInput) (*models.Customer, error) {
	if _, err := s.Get(ctx, customerID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "customer name cannot be blank")
		}
		updates["name"] = name
	}
	if input.Company != nil {
		updates["company"] = *input.Company
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
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
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, apperrors.New(apperrors.CodeValidation, "invalid customer status")
		}
		updates["status"] = *input.Status
	}
	if input.CreditLimitCents != nil {
		if *input.CreditLimitCents < 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "credit limit cannot be negative")
		}
		updates["credit_limit_cents"] = *input.CreditLimitCents
	}
	if input.PaymentTerms != nil {
		updates["payment_terms"] = *input.PaymentTerms
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, customerID, updates); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating customer")
		}
	}
	return s.Get(ctx, customerID)
}

func (s *Service) Get(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "customer not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading customer")
	}
	return customer, nil
}

func (s *Service) ListCustomers(ctx context.Context, params pagination.Params, filters Filters) (*List, error) {
	list, err := s.repo.ListCustomers(ctx, params, filters)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing customers")
	}
	return list, nil
}

func (s *Service) GetStats(ctx context.Context, customerID uuid.UUID) (*Stats, error) {
	if _, err := s.Get(ctx, customerID); err != nil {
		return nil, err
	}
	stats, err := s.repo.CollectStats(ctx, customerID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "collecting customer stats")
	}
	return stats, nil
}

// Deactivate flips the customer to inactive so new orders are refused while
// history stays intact.
func (s *Service) Deactivate(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	inactive := enums.CustomerStatusInactive
	return s.Update(ctx, customerID, UpdateInput{Status: &inactive})
}
