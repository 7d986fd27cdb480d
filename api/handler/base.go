package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/pkg/httpcontext"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondText(ctx *fasthttp.RequestCtx, status int, body string) {
	ctx.Response.Header.SetContentType("text/plain; charset=utf-8")
	ctx.SetStatusCode(status)
	ctx.SetBodyString(body)
}

// respondError maps a domain error to its HTTP status. Handlers with
// endpoint-specific bodies branch before falling through to this.
func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		ctx.SetStatusCode(http.StatusUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		ctx.SetStatusCode(http.StatusNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		ctx.SetStatusCode(http.StatusBadRequest)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		ctx.SetStatusCode(http.StatusBadRequest)
	case domain.IsDomainError(err, domain.ErrCodeThrottled):
		ctx.SetStatusCode(http.StatusTooManyRequests)
	default:
		h.logger.Error("request failed", zap.Error(err))
		ctx.SetStatusCode(http.StatusInternalServerError)
	}
}
