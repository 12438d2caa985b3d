package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/refer-web/internal/auth"
	"github.com/hongminglow/refer-web/internal/backend"
	"github.com/hongminglow/refer-web/internal/http/respond"
	"github.com/hongminglow/refer-web/internal/models/dto"
	"github.com/hongminglow/refer-web/internal/session"
	"github.com/hongminglow/refer-web/internal/validate"
)

// AuthHandler owns login, registration, logout and session lookup.
type AuthHandler struct {
	api  Backend
	gate *session.Gate
	log  *zap.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(api Backend, gate *session.Gate, log *zap.Logger) *AuthHandler {
	return &AuthHandler{api: api, gate: gate, log: log}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /logout", h.handleLogout)
	mux.Handle("GET /session", h.gate.Require(unauthorized(), http.HandlerFunc(h.handleSession)))
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if rejectInvalid(w, validate.Login(req)) {
		return
	}

	token, err := h.api.Login(r.Context(), req)
	if err != nil {
		h.authFailure(w, "login", err)
		return
	}
	h.establish(w, token, "login successful", http.StatusOK)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	// The referral deep link carries the referrer as ?r=.
	if ref := strings.TrimSpace(r.URL.Query().Get("r")); ref != "" {
		req.ReferredBy = ref
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.ReferredBy = strings.TrimSpace(req.ReferredBy)
	if rejectInvalid(w, validate.Signup(req)) {
		return
	}

	token, err := h.api.Signup(r.Context(), req)
	if err != nil {
		h.authFailure(w, "signup", err)
		return
	}
	h.establish(w, token, "User created successfully", http.StatusCreated)
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.gate.Clear(w)
	respond.JSON(w, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	claims, _ := session.ClaimsFrom(r.Context())
	respond.JSON(w, http.StatusOK, "authenticated", identity(claims))
}

// establish persists a backend-issued token once it decodes.
func (h *AuthHandler) establish(w http.ResponseWriter, token, message string, status int) {
	if strings.TrimSpace(token) == "" {
		h.log.Error("backend issued an empty token")
		respond.Error(w, http.StatusBadGateway, "authentication service returned no token")
		return
	}
	claims, ok := h.gate.Inspect(token)
	if !ok {
		respond.Error(w, http.StatusBadGateway, "authentication service returned an unusable token")
		return
	}
	h.gate.Persist(w, token)
	respond.JSON(w, status, message, map[string]any{"user": identity(claims)})
}

func (h *AuthHandler) authFailure(w http.ResponseWriter, op string, err error) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		respond.Error(w, apiErr.StatusCode, apiErr.Message)
		return
	}
	h.log.Error("auth call failed", zap.String("op", op), zap.Error(err))
	respond.Error(w, http.StatusBadGateway, "authentication service unavailable")
}

func identity(c auth.Claims) map[string]string {
	return map[string]string{
		"id":         c.ID,
		"name":       c.Name,
		"email":      c.Email,
		"referredBy": c.ReferredBy,
	}
}

func unauthorized() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
	})
}
