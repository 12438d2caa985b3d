package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/refer-web/internal/backend"
	"github.com/hongminglow/refer-web/internal/http/respond"
	"github.com/hongminglow/refer-web/internal/models"
	"github.com/hongminglow/refer-web/internal/models/dto"
	"github.com/hongminglow/refer-web/internal/session"
	"github.com/hongminglow/refer-web/internal/validate"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// Backend is the part of the Refer API the handlers call.
type Backend interface {
	Login(ctx context.Context, req dto.LoginRequest) (string, error)
	Signup(ctx context.Context, req dto.SignupRequest) (string, error)
	GetUserByID(ctx context.Context, token, id string) (models.User, error)
	UpdateUserByID(ctx context.Context, token, id string, payload dto.UpdateUserPayload) (models.User, error)
	GetUserRefer(ctx context.Context, token, id string) (backend.Dashboard, error)
	PurchaseBook(ctx context.Context, token string, req dto.PurchaseRequest) error
}

var _ Backend = (*backend.Client)(nil)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

// rejectInvalid writes validation failures and reports whether it did.
func rejectInvalid(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	var fields validate.FieldErrors
	if errors.As(err, &fields) {
		respond.Invalid(w, fields)
		return true
	}
	respond.Error(w, http.StatusBadRequest, err.Error())
	return true
}

// backendFailure maps a failed backend call for a protected view. A 401
// means the stored token is stale, so the session is dropped.
func backendFailure(w http.ResponseWriter, gate *session.Gate, log *zap.Logger, title string, err error) {
	var apiErr *backend.APIError
	switch {
	case backend.IsUnauthorized(err):
		gate.Clear(w)
		respond.Error(w, http.StatusUnauthorized, "session expired")
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		respond.Error(w, apiErr.StatusCode, apiErr.Message)
	default:
		log.Error("backend call failed", zap.String("view", title), zap.Error(err))
		respond.ErrorPanel(w, http.StatusBadGateway, title)
	}
}

// requestClaims returns the claims Require attached together with the raw
// token forwarded to the backend.
func requestClaims(r *http.Request) (claimsID string, token string) {
	claims, _ := session.ClaimsFrom(r.Context())
	token, _ = session.BearerToken(r)
	return claims.ID, token
}
