package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dcastroh/stockpilot-backend/api/controllers"
	"github.com/dcastroh/stockpilot-backend/internal/auth"
	"github.com/dcastroh/stockpilot-backend/internal/customers"
	"github.com/dcastroh/stockpilot-backend/internal/notifications"
	"github.com/dcastroh/stockpilot-backend/internal/orders"
	"github.com/dcastroh/stockpilot-backend/internal/products"
	"github.com/dcastroh/stockpilot-backend/internal/warehouses"
	pkgauth "github.com/dcastroh/stockpilot-backend/pkg/auth"
	"github.com/dcastroh/stockpilot-backend/pkg/config"
	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	"github.com/dcastroh/stockpilot-backend/pkg/enums"
	"github.com/dcastroh/stockpilot-backend/pkg/logger"
	"github.com/dcastroh/stockpilot-backend/pkg/outbox"
	"github.com/dcastroh/stockpilot-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, input auth.LoginInput) (*auth.LoginResult, error) {
	return &auth.LoginResult{}, nil
}

type stubProductsService struct{}

func (stubProductsService) Create(ctx context.Context, input products.CreateInput) (*models.Product, error) {
	return &models.Product{}, nil
}

func (stubProductsService) Update(ctx context.Context, productID uuid.UUID, input products.UpdateInput) (*models.Product, error) {
	return &models.Product{}, nil
}

func (stubProductsService) Get(ctx context.Context, productID uuid.UUID) (*products.Detail, error) {
	return &products.Detail{}, nil
}

func (stubProductsService) ListProducts(ctx context.Context, params pagination.Params, filters products.Filters) (*products.List, error) {
	return &products.List{}, nil
}

func (stubProductsService) Deactivate(ctx context.Context, productID uuid.UUID) error {
	return nil
}

type stubWarehousesService struct{}

func (stubWarehousesService) Create(ctx context.Context, input warehouses.CreateInput) (*models.Warehouse, error) {
	return &models.Warehouse{}, nil
}

func (stubWarehousesService) Update(ctx context.Context, warehouseID uuid.UUID, input warehouses.UpdateInput) (*models.Warehouse, error) {
	return &models.Warehouse{}, nil
}

func (stubWarehousesService) Get(ctx context.Context, warehouseID uuid.UUID) (*models.Warehouse, error) {
	return &models.Warehouse{}, nil
}

func (stubWarehousesService) ListWarehouses(ctx context.Context, params pagination.Params, filters warehouses.Filters) (*warehouses.List, error) {
	return &warehouses.List{}, nil
}

func (stubWarehousesService) GetStats(ctx context.Context, warehouseID uuid.UUID) (*warehouses.Stats, error) {
	return &warehouses.Stats{}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) Create(ctx context.Context, actor *outbox.ActorRef, input orders.CreateOrderInput) (*models.Order, error) {
	return &models.Order{}, nil
}

func (stubOrdersService) UpdateStatus(ctx context.Context, actor *outbox.ActorRef, orderID uuid.UUID, input orders.UpdateStatusInput) (*models.Order, error) {
	return &models.Order{}, nil
}

func (stubOrdersService) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return &models.Order{}, nil
}

func (stubOrdersService) ListOrders(ctx context.Context, params pagination.Params, filters orders.Filters) (*orders.List, error) {
	return &orders.List{}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params, filters notifications.Filters) (*notifications.List, error) {
	return &notifications.List{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Output: io.Discard})
	return NewRouter(Deps{
		Config:        cfg,
		Logger:        logg,
		ReadyChecks:   map[string]controllers.Pinger{"db": stubPinger{}},
		AuthService:   stubAuthService{},
		Customers:     customers.NewService(nil),
		Products:      stubProductsService{},
		Warehouses:    stubWarehousesService{},
		Orders:        stubOrdersService{},
		Notifications: stubNotificationsService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAPIRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAPIAcceptsValidJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/warehouses", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleOperator))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCatalogMutationsRequireAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	operator := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+uuid.NewString(), nil)
	operator.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleOperator))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, operator)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for operator got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+uuid.NewString(), nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestStockMovesStayOpenToOperators(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+uuid.NewString()+"/stock", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleOperator))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	// The stub inventory service is nil, so only routing is under test here;
	// anything but 401/403 means the operator passed the guards.
	if resp.Code == http.StatusUnauthorized || resp.Code == http.StatusForbidden {
		t.Fatalf("operator blocked from stock read: %d", resp.Code)
	}
}
