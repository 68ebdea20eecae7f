package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dcastroh/stockpilot-backend/api/controllers"
	"github.com/dcastroh/stockpilot-backend/api/middleware"
	"github.com/dcastroh/stockpilot-backend/internal/auth"
	"github.com/dcastroh/stockpilot-backend/internal/customers"
	"github.com/dcastroh/stockpilot-backend/internal/inventory"
	"github.com/dcastroh/stockpilot-backend/internal/orders"
	"github.com/dcastroh/stockpilot-backend/internal/products"
	"github.com/dcastroh/stockpilot-backend/internal/warehouses"
	"github.com/dcastroh/stockpilot-backend/pkg/config"
	"github.com/dcastroh/stockpilot-backend/pkg/logger"
	"github.com/dcastroh/stockpilot-backend/pkg/redis"
)

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	Redis         *redis.Client
	ReadyChecks   map[string]controllers.Pinger
	AuthService   auth.Service
	Customers     *customers.Service
	Products      products.Service
	Warehouses    warehouses.Service
	Inventory     *inventory.Service
	Orders        orders.Service
	Notifications controllers.NotificationsService
}

// NewRouter wires the full API surface. Reads are open to any authenticated
// user; catalog and location mutations are admin only, while order placement
// and stock movements stay open to operators.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.ReadyChecks))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.Login(deps.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.ListCustomers(deps.Customers, logg))
			r.Get("/{customerID}", controllers.GetCustomer(deps.Customers, logg))
			r.Get("/{customerID}/stats", controllers.GetCustomerStats(deps.Customers, logg))
			r.Post("/", controllers.CreateCustomer(deps.Customers, logg))
			r.Patch("/{customerID}", controllers.UpdateCustomer(deps.Customers, logg))
			r.Delete("/{customerID}", controllers.DeactivateCustomer(deps.Customers, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.Get("/{productID}", controllers.GetProduct(deps.Products, logg))
			r.Get("/{productID}/stock", controllers.GetProductStock(deps.Inventory, logg))
			r.Post("/{productID}/restock", controllers.RestockProduct(deps.Inventory, logg))
			r.Post("/{productID}/adjust", controllers.AdjustProductStock(deps.Inventory, logg))
			r.Put("/{productID}/threshold", controllers.SetStockThreshold(deps.Inventory, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/", controllers.CreateProduct(deps.Products, logg))
				r.Patch("/{productID}", controllers.UpdateProduct(deps.Products, logg))
				r.Delete("/{productID}", controllers.DeactivateProduct(deps.Products, logg))
			})
		})

		r.Route("/warehouses", func(r chi.Router) {
			r.Get("/", controllers.ListWarehouses(deps.Warehouses, logg))
			r.Get("/{warehouseID}", controllers.GetWarehouse(deps.Warehouses, logg))
			r.Get("/{warehouseID}/stats", controllers.GetWarehouseStats(deps.Warehouses, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/", controllers.CreateWarehouse(deps.Warehouses, logg))
				r.Patch("/{warehouseID}", controllers.UpdateWarehouse(deps.Warehouses, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Get("/{orderID}", controllers.GetOrder(deps.Orders, logg))
			r.Post("/", controllers.CreateOrder(deps.Orders, logg))
			r.Patch("/{orderID}/status", controllers.UpdateOrderStatus(deps.Orders, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})
	})

	return r
}
