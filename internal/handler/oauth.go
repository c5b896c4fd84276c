package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"

	"studyhub/internal/apperror"
	"studyhub/internal/service"
)

// OAuthHandler runs the HTTP half of the social login flow.
//
//	GET /auth/{provider}/login    → redirect to the provider
//	GET /auth/{provider}/callback → complete the flow, issue a session
//
// An unknown {provider} falls back to Google.
type OAuthHandler struct {
	oauth  *service.OAuthService
	logger *slog.Logger
}

// NewOAuthHandler creates an OAuthHandler.
func NewOAuthHandler(oauth *service.OAuthService, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{oauth: oauth, logger: logger}
}

// HandleLogin redirects the browser to the provider's authorization page.
//
// A random state value goes into a short-lived cookie and into the
// redirect URL; the callback requires the two to match, which blocks
// cross-site request forgery of the callback.
func (h *OAuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	url, err := h.oauth.AuthURL(chi.URLParam(r, "provider"), state)
	if err != nil {
		h.logger.Error("building OAuth redirect", slog.Any("error", err))
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// HandleCallback completes the flow: verifies state, exchanges the code,
// resolves the user, and issues a session exactly like a password login.
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("OAuth callback: state mismatch")
		writeError(w, apperror.ValidationFailed("state", "invalid OAuth state"))
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("OAuth callback: provider reported error", slog.String("error", errParam))
		writeAuthFailed(w)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, apperror.ValidationFailed("code", "missing OAuth code"))
		return
	}

	session, err := h.oauth.Complete(r.Context(), chi.URLParam(r, "provider"), code)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			writeAuthFailed(w)
			return
		}
		writeError(w, err)
		return
	}

	setRefreshCookie(w, session)
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: session.AccessToken})
}
