package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasklight/backend/api/transport"
	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/internal/middleware"
	"github.com/tasklight/backend/pkg/httpcontext"
	taskUC "github.com/tasklight/backend/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// ListTasks returns the caller's tasks, id ascending.
func (h *TaskHandler) ListTasks(ctx *fasthttp.RequestCtx) {
	ownerID, ok := h.ownerID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, ownerID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, tasks)
}

// GetTask returns one owned task. A task owned by someone else gets the same
// empty 404 as a missing one.
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	ownerID, ok := h.ownerID(ctx)
	if !ok {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.GetTask(stdCtx, id, ownerID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, task)
}

// CreateTask stores a new task owned by the caller and points Location at it.
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	ownerID, ok := h.ownerID(ctx)
	if !ok {
		return
	}

	var req transport.TaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(http.StatusBadRequest)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, ownerID, req.Name, req.IsComplete)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.Response.Header.Set("Location", fmt.Sprintf("/tasks/%d", created.ID))
	h.respondJSON(ctx, http.StatusCreated, created)
}

// UpdateTask applies the completion flag. The name in the body is parsed and
// discarded.
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	ownerID, ok := h.ownerID(ctx)
	if !ok {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.TaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(http.StatusBadRequest)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, id, ownerID, req.IsComplete)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			h.respondJSON(ctx, http.StatusNotFound, fmt.Sprintf("Task with ID %d not found.", id))
			return
		}
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, updated)
}

// DeleteTask removes an owned task and returns its last known state.
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	ownerID, ok := h.ownerID(ctx)
	if !ok {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	deleted, err := h.uc.DeleteTask(stdCtx, id, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			h.respondJSON(ctx, http.StatusNotFound, fmt.Sprintf("Task with ID %d not found.", id))
			return
		}
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, deleted)
}

// ownerID resolves the authenticated owner stashed by the auth middleware.
// A missing value means the gate was bypassed or misconfigured; fail closed.
func (h *TaskHandler) ownerID(ctx *fasthttp.RequestCtx) (int64, bool) {
	id, ok := middleware.OwnerID(ctx)
	if !ok {
		ctx.SetStatusCode(http.StatusUnauthorized)
		return 0, false
	}
	return id, true
}

func (h *TaskHandler) taskID(ctx *fasthttp.RequestCtx) (int64, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		ctx.SetStatusCode(http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
