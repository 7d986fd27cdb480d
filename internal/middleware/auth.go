package middleware

import (
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasklight/backend/pkg/token"
)

// OwnerIDKey is the request user-value under which the authenticated owner id
// is stored. User values are server-side only, so a client cannot forge it
// the way a header could be.
const OwnerIDKey = "owner_id"

// Auth validates the bearer assertion on every protected request. Any
// ambiguity ends in 401 before the request reaches business logic.
func Auth(tokens *token.Service, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			assertion := extractBearer(ctx)
			if assertion == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			identity, err := tokens.Validate(assertion)
			if err != nil {
				logger.Warn("rejected bearer assertion", zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			ctx.SetUserValue(OwnerIDKey, identity.UserID)
			next(ctx)
		}
	}
}

// OwnerID returns the authenticated owner id stashed by Auth, or false when
// the request carries none.
func OwnerID(ctx *fasthttp.RequestCtx) (int64, bool) {
	id, ok := ctx.UserValue(OwnerIDKey).(int64)
	return id, ok
}

func extractBearer(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
