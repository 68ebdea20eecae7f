package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dcastroh/stockpilot-backend/internal/users"
	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	"github.com/dcastroh/stockpilot-backend/pkg/enums"
	apperrors "github.com/dcastroh/stockpilot-backend/pkg/errors"
	"github.com/dcastroh/stockpilot-backend/pkg/pagination"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := "file:notifications_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Notification{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewService(NewRepository(conn), users.NewRepository(conn), nil), conn
}

func seedStaff(t *testing.T, conn *gorm.DB, role enums.UserRole, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		PasswordHash: "x",
		FullName:     "Staff",
		Role:         role,
		IsActive:     true,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func countFor(t *testing.T, conn *gorm.DB, userID uuid.UUID) int64 {
	t.Helper()

	var n int64
	err := conn.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&n).Error
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestOrderCreatedFansOutToAdminsAndPlacer(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	admin := seedStaff(t, conn, enums.UserRoleAdmin, "admin@example.com")
	operator := seedStaff(t, conn, enums.UserRoleOperator, "ops@example.com")
	bystander := seedStaff(t, conn, enums.UserRoleOperator, "other@example.com")

	order := &models.Order{
		ID:          uuid.New(),
		OrderNumber: "ORD-DEADBEEF",
		UserID:      &operator.ID,
		Status:      enums.OrderStatusPending,
	}
	svc.OrderCreated(ctx, order)

	if got := countFor(t, conn, admin.ID); got != 1 {
		t.Fatalf("admin notifications = %d, want 1", got)
	}
	if got := countFor(t, conn, operator.ID); got != 1 {
		t.Fatalf("operator notifications = %d, want 1", got)
	}
	if got := countFor(t, conn, bystander.ID); got != 0 {
		t.Fatalf("bystander notifications = %d, want 0", got)
	}

	// an admin placing an order receives a single notification
	adminOrder := &models.Order{
		ID:          uuid.New(),
		OrderNumber: "ORD-CAFEF00D",
		UserID:      &admin.ID,
		Status:      enums.OrderStatusPending,
	}
	svc.OrderCreated(ctx, adminOrder)
	if got := countFor(t, conn, admin.ID); got != 2 {
		t.Fatalf("admin notifications = %d, want 2", got)
	}
}

func TestOrderStatusChangedTypes(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	admin := seedStaff(t, conn, enums.UserRoleAdmin, "admin@example.com")

	order := &models.Order{ID: uuid.New(), OrderNumber: "ORD-00000001", Status: enums.OrderStatusCancelled}
	svc.OrderStatusChanged(ctx, order, enums.OrderStatusPending)

	var row models.Notification
	err := conn.Where("user_id = ?", admin.ID).First(&row).Error
	if err != nil {
		t.Fatalf("load notification: %v", err)
	}
	if row.Type != enums.NotificationTypeAlert {
		t.Fatalf("type = %s, want alert for cancellation", row.Type)
	}
}

func TestStockAlertNotifiesAdminsOnly(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	admin := seedStaff(t, conn, enums.UserRoleAdmin, "admin@example.com")
	operator := seedStaff(t, conn, enums.UserRoleOperator, "ops@example.com")

	productID := uuid.New()
	err := svc.StockAlert(ctx, productID, enums.ProductStatusInStock, enums.ProductStatusOutOfStock)
	if err != nil {
		t.Fatalf("stock alert: %v", err)
	}

	if got := countFor(t, conn, admin.ID); got != 1 {
		t.Fatalf("admin notifications = %d, want 1", got)
	}
	if got := countFor(t, conn, operator.ID); got != 0 {
		t.Fatalf("operator notifications = %d, want 0", got)
	}
}

func TestListMarkReadFlow(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	admin := seedStaff(t, conn, enums.UserRoleAdmin, "admin@example.com")

	for i := 0; i < 3; i++ {
		err := svc.StockAlert(ctx, uuid.New(), enums.ProductStatusInStock, enums.ProductStatusLowStock)
		if err != nil {
			t.Fatalf("seed alert: %v", err)
		}
	}

	list, err := svc.ListForUser(ctx, admin.ID, pagination.Params{}, Filters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Notifications) != 3 || list.UnreadCount != 3 {
		t.Fatalf("got %d rows, %d unread; want 3 and 3", len(list.Notifications), list.UnreadCount)
	}

	if err := svc.MarkRead(ctx, admin.ID, list.Notifications[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	// second attempt on the same row reports not found
	err = svc.MarkRead(ctx, admin.ID, list.Notifications[0].ID)
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	unread, err := svc.ListForUser(ctx, admin.ID, pagination.Params{}, Filters{UnreadOnly: true})
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread.Notifications) != 2 || unread.UnreadCount != 2 {
		t.Fatalf("got %d rows, %d unread; want 2 and 2", len(unread.Notifications), unread.UnreadCount)
	}

	affected, err := svc.MarkAllRead(ctx, admin.ID)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if affected != 2 {
		t.Fatalf("affected = %d, want 2", affected)
	}
}

func TestDeleteOlderThan(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	admin := seedStaff(t, conn, enums.UserRoleAdmin, "admin@example.com")

	old := models.Notification{
		UserID:  admin.ID,
		Type:    enums.NotificationTypeInfo,
		Title:   "Old",
		Message: "stale",
	}
	if err := conn.Create(&old).Error; err != nil {
		t.Fatalf("seed old: %v", err)
	}
	stale := time.Now().Add(-120 * 24 * time.Hour)
	err := conn.Model(&models.Notification{}).Where("id = ?", old.ID).Update("created_at", stale).Error
	if err != nil {
		t.Fatalf("backdate: %v", err)
	}
	if err := svc.StockAlert(ctx, uuid.New(), enums.ProductStatusInStock, enums.ProductStatusLowStock); err != nil {
		t.Fatalf("seed fresh: %v", err)
	}

	deleted, err := NewRepository(conn).DeleteOlderThan(ctx, time.Now().Add(-90*24*time.Hour))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}
	if got := countFor(t, conn, admin.ID); got != 1 {
		t.Fatalf("remaining = %d, want 1", got)
	}
}
