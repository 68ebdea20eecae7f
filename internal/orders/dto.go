package orders

import (
	"github.com/google/uuid"

	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	"github.com/dcastroh/stockpilot-backend/pkg/enums"
)

// CreateOrderItemInput is one requested line on a new order. Pricing always
// comes from the product row, never from the caller.
type CreateOrderItemInput struct {
	ProductID uuid.UUID
	Qty       int
}

// CreateOrderInput captures a new order request.
type CreateOrderInput struct {
	CustomerID uuid.UUID
	Notes      *string
	Items      []CreateOrderItemInput
}

// UpdateStatusInput captures a status transition request.
type UpdateStatusInput struct {
	Status         enums.OrderStatus
	TrackingNumber *string
}

// Filters narrows order listings. Search matches the order number or the
// customer name. UserID scopes the listing to orders placed by that user.
type Filters struct {
	Status     *enums.OrderStatus
	CustomerID *uuid.UUID
	UserID     *uuid.UUID
	Search     string
}

// List is a cursor page of orders.
type List struct {
	Orders     []models.Order
	NextCursor *string
}
