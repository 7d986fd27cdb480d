package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasklight/backend/internal/infrastructure/monitor"
	"github.com/tasklight/backend/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// Root is the liveness probe the browser client polls.
func (h *HealthHandler) Root(ctx *fasthttp.RequestCtx) {
	h.respondText(ctx, http.StatusOK, "server is running")
}

// Check reports per-dependency health. Only Postgres is load-bearing; the
// throttle and the audit spool degrade gracefully.
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"services": map[string]interface{}{
			"postgresql": status.PostgreSQL,
			"redis":      status.Redis,
			"audit_spool": map[string]interface{}{
				"online": status.AuditSpool,
				"size":   status.SpoolSize,
			},
		},
	}

	if status.PostgreSQL {
		h.respondJSON(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, payload)
}
