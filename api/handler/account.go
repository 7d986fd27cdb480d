package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasklight/backend/internal/middleware"
	"github.com/tasklight/backend/pkg/httpcontext"
	accountUC "github.com/tasklight/backend/usecase/account"
)

type AccountHandler struct {
	baseHandler
	uc *accountUC.UseCase
}

func NewAccountHandler(uc *accountUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// GetAccount returns the authenticated user's own record.
func (h *AccountHandler) GetAccount(ctx *fasthttp.RequestCtx) {
	userID, ok := middleware.OwnerID(ctx)
	if !ok {
		ctx.SetStatusCode(http.StatusUnauthorized)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.GetAccount(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, user)
}
