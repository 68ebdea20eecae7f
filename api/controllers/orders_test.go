package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/dcastroh/stockpilot-backend/api/middleware"
	"github.com/dcastroh/stockpilot-backend/internal/orders"
	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	"github.com/dcastroh/stockpilot-backend/pkg/enums"
	"github.com/dcastroh/stockpilot-backend/pkg/outbox"
	"github.com/dcastroh/stockpilot-backend/pkg/pagination"
)

type fakeOrdersService struct {
	createFn       func(ctx context.Context, actor *outbox.ActorRef, input orders.CreateOrderInput) (*models.Order, error)
	updateStatusFn func(ctx context.Context, actor *outbox.ActorRef, orderID uuid.UUID, input orders.UpdateStatusInput) (*models.Order, error)
	listFn         func(ctx context.Context, params pagination.Params, filters orders.Filters) (*orders.List, error)
}

func (s *fakeOrdersService) Create(ctx context.Context, actor *outbox.ActorRef, input orders.CreateOrderInput) (*models.Order, error) {
	if s.createFn != nil {
		return s.createFn(ctx, actor, input)
	}
	return &models.Order{}, nil
}

func (s *fakeOrdersService) UpdateStatus(ctx context.Context, actor *outbox.ActorRef, orderID uuid.UUID, input orders.UpdateStatusInput) (*models.Order, error) {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, actor, orderID, input)
	}
	return &models.Order{}, nil
}

func (s *fakeOrdersService) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return &models.Order{}, nil
}

func (s *fakeOrdersService) ListOrders(ctx context.Context, params pagination.Params, filters orders.Filters) (*orders.List, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params, filters)
	}
	return &orders.List{}, nil
}

func TestListOrdersScopesOperators(t *testing.T) {
	t.Parallel()

	operatorID := uuid.New()
	svc := &fakeOrdersService{
		listFn: func(ctx context.Context, params pagination.Params, filters orders.Filters) (*orders.List, error) {
			if filters.UserID == nil || *filters.UserID != operatorID {
				t.Fatalf("expected listing scoped to operator, got %v", filters.UserID)
			}
			return &orders.List{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), operatorID.String()))
	req = req.WithContext(middleware.WithRole(req.Context(), string(enums.UserRoleOperator)))
	resp := httptest.NewRecorder()
	ListOrders(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestListOrdersAdminSeesAll(t *testing.T) {
	t.Parallel()

	svc := &fakeOrdersService{
		listFn: func(ctx context.Context, params pagination.Params, filters orders.Filters) (*orders.List, error) {
			if filters.UserID != nil {
				t.Fatalf("expected unscoped listing for admin, got %v", filters.UserID)
			}
			return &orders.List{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	req = req.WithContext(middleware.WithRole(req.Context(), string(enums.UserRoleAdmin)))
	resp := httptest.NewRecorder()
	ListOrders(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestCreateOrderPassesActor(t *testing.T) {
	t.Parallel()

	operatorID := uuid.New()
	customerID := uuid.New()
	productID := uuid.New()
	svc := &fakeOrdersService{
		createFn: func(ctx context.Context, actor *outbox.ActorRef, input orders.CreateOrderInput) (*models.Order, error) {
			if actor == nil || actor.UserID != operatorID {
				t.Fatalf("expected actor %s, got %v", operatorID, actor)
			}
			if input.CustomerID != customerID {
				t.Fatalf("unexpected customer %s", input.CustomerID)
			}
			if len(input.Items) != 1 || input.Items[0].Qty != 3 {
				t.Fatalf("unexpected items %+v", input.Items)
			}
			return &models.Order{}, nil
		},
	}

	body := `{"customer_id":"` + customerID.String() + `","items":[{"product_id":"` + productID.String() + `","qty":3}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), operatorID.String()))
	req = req.WithContext(middleware.WithRole(req.Context(), string(enums.UserRoleOperator)))
	resp := httptest.NewRecorder()
	CreateOrder(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	t.Parallel()

	body := `{"customer_id":"` + uuid.NewString() + `","items":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	CreateOrder(&fakeOrdersService{}, testControllerLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCreateOrderIgnoresClientUnitPrice(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	called := false
	svc := &fakeOrdersService{
		createFn: func(ctx context.Context, actor *outbox.ActorRef, input orders.CreateOrderInput) (*models.Order, error) {
			called = true
			if len(input.Items) != 1 || input.Items[0].ProductID != productID || input.Items[0].Qty != 2 {
				t.Fatalf("unexpected items %+v", input.Items)
			}
			return &models.Order{}, nil
		},
	}

	// a client-supplied unit price is accepted and dropped; pricing always
	// comes from the product row
	body := `{"customer_id":"` + uuid.NewString() + `","items":[{"product_id":"` + productID.String() + `","qty":2,"unit_price":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	CreateOrder(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("service was not invoked")
	}
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+uuid.NewString()+"/status",
		strings.NewReader(`{"status":"teleported"}`))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	req = addRouteParam(req, "orderID", uuid.NewString())
	resp := httptest.NewRecorder()
	UpdateOrderStatus(&fakeOrdersService{}, testControllerLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "teleported") {
		t.Fatalf("error message should name the rejected status: %s", resp.Body.String())
	}
}
