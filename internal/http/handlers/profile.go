package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/refer-web/internal/http/respond"
	"github.com/hongminglow/refer-web/internal/models/dto"
	"github.com/hongminglow/refer-web/internal/session"
	"github.com/hongminglow/refer-web/internal/validate"
)

const profileTitle = "Error Loading Profile"

// ProfileHandler shows and edits the signed-in user's profile.
type ProfileHandler struct {
	api  Backend
	gate *session.Gate
	log  *zap.Logger
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(api Backend, gate *session.Gate, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{api: api, gate: gate, log: log}
}

// Register attaches profile routes: the page behind the login redirect, the
// update behind a 401.
func (h *ProfileHandler) Register(mux *http.ServeMux) {
	toLogin := session.RedirectTo("/login")
	mux.Handle("GET /profile", h.gate.Require(toLogin, http.HandlerFunc(h.handleGet)))
	mux.Handle("PUT /profile", h.gate.Require(unauthorized(), http.HandlerFunc(h.handleUpdate)))
}

func (h *ProfileHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, token := requestClaims(r)
	user, err := h.api.GetUserByID(r.Context(), token, userID)
	if err != nil {
		backendFailure(w, h.gate, h.log, profileTitle, err)
		return
	}
	respond.JSON(w, http.StatusOK, "profile", dto.UserEnvelope{User: user})
}

func (h *ProfileHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	userID, token := requestClaims(r)
	current, err := h.api.GetUserByID(r.Context(), token, userID)
	if err != nil {
		backendFailure(w, h.gate, h.log, profileTitle, err)
		return
	}

	payload, err := validate.Profile(req, current)
	if errors.Is(err, validate.ErrNothingToUpdate) {
		respond.JSON(w, http.StatusOK, "no changes", dto.UserEnvelope{User: current})
		return
	}
	if rejectInvalid(w, err) {
		return
	}

	updated, err := h.api.UpdateUserByID(r.Context(), token, userID, payload)
	if err != nil {
		backendFailure(w, h.gate, h.log, "Error Updating Profile", err)
		return
	}
	if updated.ID == "" {
		updated = current
		updated.Name = payload.Name
		updated.Email = payload.Email
	}
	respond.JSON(w, http.StatusOK, "profile updated", dto.UserEnvelope{User: updated})
}
