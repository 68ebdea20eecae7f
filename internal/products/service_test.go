package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	"github.com/dcastroh/stockpilot-backend/pkg/enums"
	apperrors "github.com/dcastroh/stockpilot-backend/pkg/errors"
	"github.com/dcastroh/stockpilot-backend/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Warehouse{},
		&models.StockRecord{},
	)
	if err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewService(NewRepository(conn), nil), conn
}

func TestCreateProduct(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()

	category := models.Category{Name: "Fasteners"}
	if err := conn.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	product, err := svc.Create(ctx, CreateInput{
		SKU:        "bolt-m8",
		Name:       "M8 Bolt",
		CategoryID: &category.ID,
		PriceCents: 250,
		CostCents:  90,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if product.SKU != "BOLT-M8" {
		t.Fatalf("sku = %s, want BOLT-M8", product.SKU)
	}
	if product.Status != enums.ProductStatusOutOfStock {
		t.Fatalf("status = %s, want out_of_stock before any receipt", product.Status)
	}

	// duplicate sku is a conflict
	_, err = svc.Create(ctx, CreateInput{SKU: "BOLT-M8", Name: "Other", PriceCents: 100})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	_, err = svc.Create(ctx, CreateInput{SKU: "FREE-1", Name: "Freebie", PriceCents: 0})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeValidation {
		t.Fatalf("expected validation error for zero price, got %v", err)
	}

	missing := uuid.New()
	_, err = svc.Create(ctx, CreateInput{SKU: "ORPHAN-1", Name: "Orphan", PriceCents: 100, CategoryID: &missing})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeValidation {
		t.Fatalf("expected validation error for missing category, got %v", err)
	}
}

func TestUpdateProductPartial(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateInput{SKU: "NUT-M8", Name: "M8 Nut", PriceCents: 120})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	price := 150
	updated, err := svc.Update(ctx, product.ID, UpdateInput{PriceCents: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PriceCents != 150 {
		t.Fatalf("price = %d, want 150", updated.PriceCents)
	}
	if updated.Name != "M8 Nut" {
		t.Fatalf("name changed unexpectedly to %q", updated.Name)
	}

	bad := -5
	_, err = svc.Update(ctx, product.ID, UpdateInput{PriceCents: &bad})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.Update(ctx, uuid.New(), UpdateInput{PriceCents: &price})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetProductDetail(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, CreateInput{SKU: "SCR-01", Name: "Wood Screw", PriceCents: 80})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	warehouses := []models.Warehouse{
		{Name: "North", Code: "NOR-01", IsActive: true},
		{Name: "South", Code: "SOU-01", IsActive: true},
	}
	if err := conn.Create(&warehouses).Error; err != nil {
		t.Fatalf("seed warehouses: %v", err)
	}
	records := []models.StockRecord{
		{ProductID: product.ID, WarehouseID: warehouses[0].ID, Quantity: 30, LowStockThreshold: 20},
		{ProductID: product.ID, WarehouseID: warehouses[1].ID, Quantity: 12, LowStockThreshold: 20},
	}
	if err := conn.Create(&records).Error; err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	detail, err := svc.Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.TotalStock != 42 {
		t.Fatalf("total stock = %d, want 42", detail.TotalStock)
	}
	if len(detail.Product.StockRecords) != 2 {
		t.Fatalf("stock records = %d, want 2", len(detail.Product.StockRecords))
	}
}

func TestListProductsFilters(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()

	seed := []CreateInput{
		{SKU: "HAM-01", Name: "Claw Hammer", PriceCents: 1_500},
		{SKU: "HAM-02", Name: "Sledge Hammer", PriceCents: 3_000},
		{SKU: "SAW-01", Name: "Hand Saw", PriceCents: 2_000},
	}
	var hammerID uuid.UUID
	for _, in := range seed {
		product, err := svc.Create(ctx, in)
		if err != nil {
			t.Fatalf("create %s: %v", in.SKU, err)
		}
		if in.SKU == "HAM-01" {
			hammerID = product.ID
		}
	}

	byName, err := svc.ListProducts(ctx, pagination.Params{}, Filters{Search: "hammer"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(byName.Products) != 2 {
		t.Fatalf("search len = %d, want 2", len(byName.Products))
	}

	bySKU, err := svc.ListProducts(ctx, pagination.Params{}, Filters{Search: "saw-"})
	if err != nil {
		t.Fatalf("search sku: %v", err)
	}
	if len(bySKU.Products) != 1 || bySKU.Products[0].SKU != "SAW-01" {
		t.Fatalf("sku search returned %d rows", len(bySKU.Products))
	}

	err = conn.Model(&models.Product{}).
		Where("id = ?", hammerID).
		Update("status", enums.ProductStatusLowStock).Error
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	low := enums.ProductStatusLowStock
	byStatus, err := svc.ListProducts(ctx, pagination.Params{}, Filters{Status: &low})
	if err != nil {
		t.Fatalf("status filter: %v", err)
	}
	if len(byStatus.Products) != 1 || byStatus.Products[0].ID != hammerID {
		t.Fatalf("status filter returned %d rows", len(byStatus.Products))
	}

	if err := svc.Deactivate(ctx, hammerID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	active, err := svc.ListProducts(ctx, pagination.Params{}, Filters{ActiveOnly: true})
	if err != nil {
		t.Fatalf("active filter: %v", err)
	}
	if len(active.Products) != 2 {
		t.Fatalf("active len = %d, want 2", len(active.Products))
	}
}
