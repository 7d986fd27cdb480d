package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasklight/backend/api/transport"
	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/pkg/httpcontext"
	authUC "github.com/tasklight/backend/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// Register creates a new account. The response bodies are JSON strings,
// matching the contract the browser client was written against.
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.UserName == "" || req.Password == "" {
		h.respondJSON(ctx, http.StatusBadRequest, "Invalid registration payload.")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Register(stdCtx, req.UserName, req.Mail, req.Password); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			h.respondJSON(ctx, http.StatusBadRequest, "User already exists.")
			return
		}
		h.respondError(ctx, err)
		return
	}

	h.respondJSON(ctx, http.StatusOK, "User registered successfully.")
}

// Login verifies credentials and returns a signed assertion.
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.UserName == "" {
		h.respondJSON(ctx, http.StatusBadRequest, "Invalid login payload.")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	assertion, err := h.uc.Login(stdCtx, req.UserName, req.Password, clientAddr(ctx))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.respondJSON(ctx, http.StatusUnauthorized, transport.MessageResponse{Message: "Invalid username or password."})
			return
		}
		if errors.Is(err, domain.ErrTooManyAttempts) {
			h.respondJSON(ctx, http.StatusTooManyRequests, transport.MessageResponse{Message: "Too many failed attempts. Try again later."})
			return
		}
		h.respondError(ctx, err)
		return
	}

	h.respondJSON(ctx, http.StatusOK, transport.TokenResponse{Token: assertion})
}

func clientAddr(ctx *fasthttp.RequestCtx) string {
	if ip := ctx.RemoteIP(); ip != nil {
		return ip.String()
	}
	return "unknown"
}
