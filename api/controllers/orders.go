package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dcastroh/stockpilot-backend/api/middleware"
	"github.com/dcastroh/stockpilot-backend/api/responses"
	"github.com/dcastroh/stockpilot-backend/api/validators"
	"github.com/dcastroh/stockpilot-backend/internal/orders"
	"github.com/dcastroh/stockpilot-backend/pkg/enums"
	pkgerrors "github.com/dcastroh/stockpilot-backend/pkg/errors"
	"github.com/dcastroh/stockpilot-backend/pkg/logger"
)

type createOrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"required,gt=0"`
	// Accepted but ignored. Unit prices are always snapshotted from the
	// product row.
	UnitPrice *int64 `json:"unit_price"`
}

type createOrderRequest struct {
	CustomerID uuid.UUID                `json:"customer_id" validate:"required"`
	Notes      *string                  `json:"notes"`
	Items      []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type updateOrderStatusRequest struct {
	Status         string  `json:"status" validate:"required"`
	TrackingNumber *string `json:"tracking_number"`
}

// CreateOrder places a new order on behalf of the authenticated user.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.CreateOrderInput{
			CustomerID: req.CustomerID,
			Notes:      req.Notes,
			Items:      make([]orders.CreateOrderItemInput, 0, len(req.Items)),
		}
		for _, item := range req.Items {
			input.Items = append(input.Items, orders.CreateOrderItemInput{
				ProductID: item.ProductID,
				Qty:       item.Qty,
			})
		}

		order, err := svc.Create(r.Context(), actorFromRequest(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// UpdateOrderStatus moves an order along its lifecycle.
func UpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := enums.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))
		if !status.IsValid() {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", req.Status)))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), actorFromRequest(r), orderID, orders.UpdateStatusInput{
			Status:         status,
			TrackingNumber: req.TrackingNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// GetOrder loads one order with its items.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ListOrders returns a cursor page of orders. Operators only see orders they
// placed themselves; admins see everything.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := orders.Filters{
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
		}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status := enums.OrderStatus(strings.ToLower(raw))
			if !status.IsValid() {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", raw)))
				return
			}
			filters.Status = &status
		}
		if raw := r.URL.Query().Get("customer_id"); raw != "" {
			customerID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "invalid customer_id"))
				return
			}
			filters.CustomerID = &customerID
		}

		if middleware.RoleFromContext(r.Context()) != string(enums.UserRoleAdmin) {
			userID, parseErr := uuid.Parse(middleware.UserIDFromContext(r.Context()))
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "missing authenticated user"))
				return
			}
			filters.UserID = &userID
		}

		list, err := svc.ListOrders(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
