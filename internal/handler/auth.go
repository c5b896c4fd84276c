package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"studyhub/internal/apperror"
	"studyhub/internal/auth"
	"studyhub/internal/service"
)

// refreshCookieName is the cookie carrying the refresh token. HttpOnly so
// script can't read it; the access token never touches a cookie.
const refreshCookieName = "refresh"

// AuthHandler exposes registration, password login, logout, and token
// reissue.
//
//	POST /users/join          → register a password account
//	POST /users/login         → issue an access/refresh pair
//	POST /users/logout        → revoke the session (auth required)
//	POST /users/token/reissue → rotate the pair using the refresh cookie
type AuthHandler struct {
	sessions *service.AuthService
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(sessions *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, logger: logger}
}

type joinRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// HandleJoin registers a password user.
func (h *AuthHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.sessions.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Nickname: req.Nickname,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
}

// HandleLogin authenticates a username/password pair.
//
// On success the access token is returned in the body and the refresh
// token is set as an HttpOnly cookie whose Max-Age matches the token's own
// expiry. Authentication failures get the fixed 401 body; a user who is
// already logged in elsewhere gets 409.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.sessions.Login(r.Context(), req.Username, req.Password)
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

// HandleLogout revokes the caller's session and clears the refresh cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but be safe.
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	if err := h.sessions.Logout(r.Context(), claims.Subject); err != nil {
		writeError(w, err)
		return
	}

	clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleReissue rotates the token pair using the refresh cookie.
func (h *AuthHandler) HandleReissue(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, apperror.Unauthorized("refresh token is required"))
		return
	}

	session, err := h.sessions.Reissue(r.Context(), cookie.Value)
	if err != nil {
		// A dead refresh token is useless to the client; drop the cookie
		// so the next action is a clean login.
		if errors.Is(err, apperror.ErrUnauthorized) {
			clearRefreshCookie(w)
		}
		writeError(w, err)
		return
	}

	setRefreshCookie(w, session)
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: session.AccessToken})
}

// setRefreshCookie installs the session's refresh token. Max-Age is derived
// from the token's embedded expiry so cookie and token always agree.
func setRefreshCookie(w http.ResponseWriter, session *service.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    session.RefreshToken,
		Path:     "/",
		MaxAge:   int(time.Until(session.RefreshExpiresAt).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
