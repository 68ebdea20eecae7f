package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/dcastroh/stockpilot-backend/pkg/enums"
	"github.com/dcastroh/stockpilot-backend/pkg/logger"
	"github.com/dcastroh/stockpilot-backend/pkg/outbox"
	"github.com/dcastroh/stockpilot-backend/pkg/outbox/idempotency"
)

const stockAlertConsumer = "stock-alerts"

type alerter interface {
	StockAlert(ctx context.Context, productID uuid.UUID, from, to enums.ProductStatus) error
}

// Consumer watches domain events and turns stock status transitions into
// admin alert notifications.
type Consumer struct {
	alerts       alerter
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a stock alert consumer.
func NewConsumer(alerts alerter, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if alerts == nil {
		return nil, fmt.Errorf("alert service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		alerts:       alerts,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if eventType != string(enums.EventStockStatusChanged) {
		c.logg.Info(logCtx, "skipping non-stock event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, stockAlertConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	var payload stockStatusChangedPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		_ = c.idempotency.Delete(ctx, stockAlertConsumer, eventID)
		return processResult{nack: true}
	}

	productID, err := uuid.Parse(payload.ProductID)
	if err != nil {
		c.logg.Error(logCtx, "invalid product id", err)
		_ = c.idempotency.Delete(ctx, stockAlertConsumer, eventID)
		return processResult{ack: true}
	}

	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"product_id": payload.ProductID,
		"from":       payload.From,
		"to":         payload.To,
	})

	err = c.alerts.StockAlert(ctx, productID, enums.ProductStatus(payload.From), enums.ProductStatus(payload.To))
	if err != nil {
		c.logg.Error(logCtx, "stock alert handling failed", err)
		_ = c.idempotency.Delete(ctx, stockAlertConsumer, eventID)
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "admins notified of stock status change")
	return processResult{ack: true}
}

type stockStatusChangedPayload struct {
	ProductID string `json:"product_id"`
	From      string `json:"from"`
	To        string `json:"to"`
}
