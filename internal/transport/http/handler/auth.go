package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rdzcn/weight-tracker/internal/application/auth"
	"github.com/rdzcn/weight-tracker/internal/transport/http/middleware"
)

// AuthHandler handles magic-link and session endpoints.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

// RequestLink accepts an email and always answers with the same generic
// acknowledgement, so callers can't probe which addresses are registered.
func (h *AuthHandler) RequestLink(w http.ResponseWriter, r *http.Request) {
	var req auth.MagicLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.RequestLink(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, MessageEnvelope{
		Message: "if the address is valid, a sign-in link is on its way",
	})
}

func (h *AuthHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	bearer, user, err := h.svc.RedeemLink(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Token: bearer, User: user})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.svc.CurrentUser(r.Context(), identity.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
