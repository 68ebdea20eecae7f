package controllers

import (
	"net/http"

	"github.com/dcastroh/stockpilot-backend/api/responses"
	"github.com/dcastroh/stockpilot-backend/api/validators"
	"github.com/dcastroh/stockpilot-backend/internal/auth"
	pkgerrors "github.com/dcastroh/stockpilot-backend/pkg/errors"
	"github.com/dcastroh/stockpilot-backend/pkg/logger"
)

// Login exchanges staff credentials for an access token.
func Login(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var input auth.LoginInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
