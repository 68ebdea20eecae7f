package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dcastroh/stockpilot-backend/api/middleware"
	"github.com/dcastroh/stockpilot-backend/pkg/outbox"
)

// actorFromRequest builds the audit actor from the authenticated context.
// Returns nil when the request carries no usable identity.
func actorFromRequest(r *http.Request) *outbox.ActorRef {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return nil
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &outbox.ActorRef{
		UserID: userID,
		Role:   middleware.RoleFromContext(r.Context()),
	}
}
