package handlers

import (
	"net/http"
	"time"

	"github.com/pribylovaa/storefront/internal/models"
)

// sessionView — состояние сессии для фронта. Токены наружу не отдаются.
type sessionView struct {
	Authenticated bool       `json:"authenticated"`
	Subject       string     `json:"subject,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

func viewOf(creds models.Credentials, ok bool) sessionView {
	v := sessionView{Authenticated: ok}
	if !ok {
		return v
	}

	if claims, ok := creds.Claims(); ok {
		v.Subject = claims.Subject
		if !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt
			v.ExpiresAt = &exp
		}
	}

	return v
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in models.AuthRequest
	if err := decodeStrict(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	creds, err := h.Session.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, viewOf(creds, true))
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var in models.AuthRequest
	if err := decodeStrict(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	creds, err := h.Session.Signup(r.Context(), in.Email, in.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, viewOf(creds, true))
}

// Logout всегда успешен.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Session.Logout(r.Context())
	writeJSON(w, http.StatusOK, sessionView{Authenticated: false})
}

// SessionInfo — GET /auth/session и страница входа GET /auth/login.
func (h *Handlers) SessionInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(h.Session.Credentials()))
}
