package controllers

import (
	"net/http"

	"github.com/dhruvbhatia/bizdesk-backend/api/middleware"
	"github.com/dhruvbhatia/bizdesk-backend/api/responses"
	"github.com/dhruvbhatia/bizdesk-backend/api/validators"
	"github.com/dhruvbhatia/bizdesk-backend/internal/chat"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/enums"
	pkgerrors "github.com/dhruvbhatia/bizdesk-backend/pkg/errors"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/logger"
)

type askRequest struct {
	Question string `json:"question" validate:"required,min=1,max=4000"`
}

func roleFromRequest(r *http.Request) enums.Role {
	return middleware.RoleFromContext(r.Context())
}

// ChatAsk answers a question grounded in the caller's document index.
func ChatAsk(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		var req askRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		answer, err := svc.Ask(ctx, roleFromRequest(r), req.Question)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, answer)
	}
}
