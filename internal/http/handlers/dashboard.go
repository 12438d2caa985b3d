package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/refer-web/internal/http/respond"
	"github.com/hongminglow/refer-web/internal/referral"
	"github.com/hongminglow/refer-web/internal/session"
)

const dashboardTitle = "Error Loading Dashboard"

// DashboardView is everything the referral dashboard page renders.
type DashboardView struct {
	Name    string                  `json:"name"`
	Stats   referral.Stats          `json:"stats"`
	Network []referral.NetworkEntry `json:"network"`
	Share   referral.ShareRequest   `json:"share"`
}

// DashboardHandler serves the referral dashboard for the signed-in user.
type DashboardHandler struct {
	api     Backend
	gate    *session.Gate
	siteURL string
	log     *zap.Logger
}

// NewDashboardHandler constructs the handler. siteURL roots referral links.
func NewDashboardHandler(api Backend, gate *session.Gate, siteURL string, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{api: api, gate: gate, siteURL: siteURL, log: log}
}

// Register attaches dashboard routes behind the login redirect.
func (h *DashboardHandler) Register(mux *http.ServeMux) {
	toLogin := session.RedirectTo("/login")
	mux.Handle("GET /dashboard", h.gate.Require(toLogin, http.HandlerFunc(h.handleDashboard)))
	mux.Handle("GET /dashboard/share", h.gate.Require(toLogin, http.HandlerFunc(h.handleShare)))
	mux.Handle("GET /dashboard/share/qr", h.gate.Require(toLogin, http.HandlerFunc(h.handleShareQR)))
}

func (h *DashboardHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, token := requestClaims(r)

	dash, err := h.api.GetUserRefer(r.Context(), token, userID)
	if err != nil {
		backendFailure(w, h.gate, h.log, dashboardTitle, err)
		return
	}
	if err := referral.Validate(dash.Snapshot); err != nil {
		h.log.Warn("rendering inconsistent referral snapshot", zap.String("user_id", userID), zap.Error(err))
	}

	purchased := dash.User.IsPurchased
	if profile, err := h.api.GetUserByID(r.Context(), token, userID); err != nil {
		h.log.Warn("profile lookup failed, using dashboard purchase flag", zap.String("user_id", userID), zap.Error(err))
	} else {
		purchased = profile.IsPurchased
	}

	stats := referral.ComputeStats(dash.Snapshot, h.siteURL, userID, purchased)
	respond.JSON(w, http.StatusOK, "dashboard", DashboardView{
		Name:    dash.User.Name,
		Stats:   stats,
		Network: referral.Network(dash.Snapshot),
		Share:   referral.NewShareRequest(stats.ReferralLink),
	})
}

func (h *DashboardHandler) handleShare(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestClaims(r)
	link := referral.BuildReferralLink(h.siteURL, userID)
	respond.JSON(w, http.StatusOK, "share", referral.NewShareRequest(link))
}

// handleShareQR serves the referral link as a PNG for in-person sharing.
func (h *DashboardHandler) handleShareQR(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestClaims(r)
	png, err := referral.QRCode(referral.BuildReferralLink(h.siteURL, userID), referral.QRSize)
	if err != nil {
		h.log.Error("render referral qr failed", zap.String("user_id", userID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to generate QR")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
