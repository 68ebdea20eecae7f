package customers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	"github.com/dcastroh/stockpilot-backend/pkg/enums"
	apperrors "github.com/dcastroh/stockpilot-backend/pkg/errors"
	"github.com/dcastroh/stockpilot-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:customers_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Customer{}, &models.Order{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return conn
}

func TestCreateCustomer(t *testing.T) {
	t.Parallel()

	svc := NewService(NewRepository(newTestDB(t)))
	ctx := context.Background()

	company := "Acme Holdings"
	customer, err := svc.Create(ctx, CreateInput{
		Name:    "Acme Retail",
		Company: &company,
		Email:   "orders@acme.example",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if customer.Status != enums.CustomerStatusActive {
		t.Fatalf("status = %s, want active", customer.Status)
	}

	// duplicate email is a conflict
	_, err = svc.Create(ctx, CreateInput{Name: "Other", Email: "orders@acme.example"})
	typed := apperrors.As(err)
	if typed == nil || typed.Code() != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	_, err = svc.Create(ctx, CreateInput{Name: "", Email: "x@example.com"})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateCustomerPartial(t *testing.T) {
	t.Parallel()

	svc := NewService(NewRepository(newTestDB(t)))
	ctx := context.Background()

	customer, err := svc.Create(ctx, CreateInput{Name: "Acme Retail", Email: "a@acme.example"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	phone := "+31 20 123 4567"
	limit := 500_000
	updated, err := svc.Update(ctx, customer.ID, UpdateInput{Phone: &phone, CreditLimitCents: &limit})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Phone == nil || *updated.Phone != phone {
		t.Fatalf("phone = %v", updated.Phone)
	}
	if updated.CreditLimitCents != limit {
		t.Fatalf("credit limit = %d", updated.CreditLimitCents)
	}
	if updated.Name != "Acme Retail" {
		t.Fatalf("untouched field changed: %s", updated.Name)
	}

	_, err = svc.Update(ctx, uuid.New(), UpdateInput{Phone: &phone})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeactivateCustomer(t *testing.T) {
	t.Parallel()

	svc := NewService(NewRepository(newTestDB(t)))
	ctx := context.Background()

	customer, err := svc.Create(ctx, CreateInput{Name: "Acme Retail", Email: "b@acme.example"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Deactivate(ctx, customer.ID)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if updated.Status != enums.CustomerStatusInactive {
		t.Fatalf("status = %s, want inactive", updated.Status)
	}
}

func TestListCustomersSearchAndStatus(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := NewService(NewRepository(conn))
	ctx := context.Background()

	seed := []CreateInput{
		{Name: "Acme Retail", Email: "a@acme.example"},
		{Name: "Borealis Goods", Email: "b@borealis.example"},
		{Name: "Cobalt Trading", Email: "c@cobalt.example"},
	}
	for _, input := range seed {
		if _, err := svc.Create(ctx, input); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	bySearch, err := svc.ListCustomers(ctx, pagination.Params{}, Filters{Search: "borealis"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(bySearch.Customers) != 1 || bySearch.Customers[0].Name != "Borealis Goods" {
		t.Fatalf("search results = %+v", bySearch.Customers)
	}

	if _, err := svc.Deactivate(ctx, bySearch.Customers[0].ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	active := enums.CustomerStatusActive
	byStatus, err := svc.ListCustomers(ctx, pagination.Params{}, Filters{Status: &active})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(byStatus.Customers) != 2 {
		t.Fatalf("active customers = %d, want 2", len(byStatus.Customers))
	}
}

func TestCustomerStats(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	svc := NewService(NewRepository(conn))
	ctx := context.Background()

	customer, err := svc.Create(ctx, CreateInput{Name: "Acme Retail", Email: "stats@acme.example"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	base := time.Now().Add(-time.Hour)
	orders := []models.Order{
		{ID: uuid.New(), OrderNumber: "ORD-0000000A", CustomerID: customer.ID, Status: enums.OrderStatusDelivered, TotalCents: 10000, CreatedAt: base},
		{ID: uuid.New(), OrderNumber: "ORD-0000000B", CustomerID: customer.ID, Status: enums.OrderStatusPending, TotalCents: 6000, CreatedAt: base.Add(time.Minute)},
		{ID: uuid.New(), OrderNumber: "ORD-0000000C", CustomerID: customer.ID, Status: enums.OrderStatusCancelled, TotalCents: 9000, CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range orders {
		if err := conn.Create(&orders[i]).Error; err != nil {
			t.Fatalf("seed order: %v", err)
		}
	}

	stats, err := svc.GetStats(ctx, customer.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalOrders != 2 {
		t.Fatalf("total orders = %d, want 2 (cancelled excluded)", stats.TotalOrders)
	}
	if stats.TotalRevenueCents != 16000 {
		t.Fatalf("revenue = %d, want 16000", stats.TotalRevenueCents)
	}
	if stats.AverageOrderCents != 8000 {
		t.Fatalf("average = %d, want 8000", stats.AverageOrderCents)
	}
	if stats.CancelledOrders != 1 || stats.OpenOrders != 1 {
		t.Fatalf("cancelled/open = %d/%d", stats.CancelledOrders, stats.OpenOrders)
	}
}
