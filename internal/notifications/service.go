package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dcastroh/stockpilot-backend/internal/users"
	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	"github.com/dcastroh/stockpilot-backend/pkg/enums"
	apperrors "github.com/dcastroh/stockpilot-backend/pkg/errors"
	"github.com/dcastroh/stockpilot-backend/pkg/logger"
	"github.com/dcastroh/stockpilot-backend/pkg/pagination"
)

// Service manages in-app notifications. Its OrderCreated and
// OrderStatusChanged methods satisfy the orders notifier contract: they are
// called after commit and never surface errors to the caller.
type Service struct {
	repo  Repository
	users users.Repository
	now   func() time.Time
	logg  *logger.Logger
}

// NewService builds the notifications service.
func NewService(repo Repository, userRepo users.Repository, logg *logger.Logger) *Service {
	if repo == nil {
		panic("notifications: repository is required")
	}
	if userRepo == nil {
		panic("notifications: users repository is required")
	}
	return &Service{repo: repo, users: userRepo, now: time.Now, logg: logg}
}

// ListForUser returns the caller's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params, filters Filters) (*List, error) {
	list, err := s.repo.ListForUser(ctx, userID, params, filters)
	if err != nil {
		if appErr := apperrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to list notifications")
	}
	return list, nil
}

// MarkRead stamps one unread notification owned by the caller.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	affected, err := s.repo.MarkRead(ctx, userID, notificationID, s.now().UTC())
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to mark notification read")
	}
	if affected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "notification not found or already read")
	}
	return nil
}

// MarkAllRead stamps every unread notification owned by the caller and
// reports how many were affected.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	affected, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInternal, err, "failed to mark notifications read")
	}
	return affected, nil
}

// OrderCreated fans a notification out to admins and the placing operator.
func (s *Service) OrderCreated(ctx context.Context, order *models.Order) {
	title := "New order placed"
	message := fmt.Sprintf("Order %s was created", order.OrderNumber)
	link := "/orders/" + order.ID.String()
	s.fanOut(ctx, order.UserID, enums.NotificationTypeInfo, title, message, &link)
}

// OrderStatusChanged fans a status update out to admins and the placing
// operator. Cancellations are flagged as alerts.
func (s *Service) OrderStatusChanged(ctx context.Context, order *models.Order, from enums.OrderStatus) {
	kind := enums.NotificationTypeInfo
	if order.Status == enums.OrderStatusCancelled {
		kind = enums.NotificationTypeAlert
	} else if order.Status == enums.OrderStatusDelivered {
		kind = enums.NotificationTypeSuccess
	}
	title := "Order status updated"
	message := fmt.Sprintf("Order %s moved from %s to %s", order.OrderNumber, from, order.Status)
	link := "/orders/" + order.ID.String()
	s.fanOut(ctx, order.UserID, kind, title, message, &link)
}

// StockAlert notifies all admins that a product's stock status changed.
// The notification worker calls this for consumed stock events.
func (s *Service) StockAlert(ctx context.Context, productID uuid.UUID, from, to enums.ProductStatus) error {
	admins, err := s.users.ListAdminIDs(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to list admins")
	}

	kind := enums.NotificationTypeAlert
	if to == enums.ProductStatusInStock {
		kind = enums.NotificationTypeSuccess
	}
	link := "/products/" + productID.String()
	rows := make([]models.Notification, 0, len(admins))
	for _, adminID := range admins {
		rows = append(rows, models.Notification{
			UserID:  adminID,
			Type:    kind,
			Title:   "Stock status changed",
			Message: fmt.Sprintf("Product %s moved from %s to %s", productID, from, to),
			Link:    &link,
		})
	}
	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "failed to store stock alerts")
	}
	return nil
}

// fanOut writes one notification per recipient. Errors are logged only;
// notification delivery never fails the operation that triggered it.
func (s *Service) fanOut(ctx context.Context, placedBy *uuid.UUID, kind enums.NotificationType, title, message string, link *string) {
	recipients, err := s.users.ListAdminIDs(ctx)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "failed to resolve notification recipients", err)
		}
		return
	}
	if placedBy != nil {
		seen := false
		for _, id := range recipients {
			if id == *placedBy {
				seen = true
				break
			}
		}
		if !seen {
			recipients = append(recipients, *placedBy)
		}
	}

	rows := make([]models.Notification, 0, len(recipients))
	for _, userID := range recipients {
		rows = append(rows, models.Notification{
			UserID:  userID,
			Type:    kind,
			Title:   title,
			Message: message,
			Link:    link,
		})
	}
	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "failed to store notifications", err)
		}
	}
}
