package handler

import (
	"log/slog"
	"net/http"

	"studyhub/internal/apperror"
	"studyhub/internal/auth"
	"studyhub/internal/service"
)

// UserHandler exposes the authenticated user's self-service routes.
//
//	GET    /api/users/me      → profile with activity counts and points
//	PATCH  /api/users/me      → update email/nickname/password
//	DELETE /api/users/me      → delete the account
//	GET    /api/users/rewards → reward ledger and balance
type UserHandler struct {
	users   *service.UserService
	rewards *service.RewardService
	logger  *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, rewards *service.RewardService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, rewards: rewards, logger: logger}
}

// principal returns the authenticated username, or writes a 401 and
// reports false. Unreachable behind RequireAuth, but every handler guards
// anyway.
func principal(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return "", false
	}
	return claims.Subject, true
}

// HandleMe returns the caller's profile.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}

	profile, err := h.users.Me(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type updateMeRequest struct {
	Email    *string `json:"email"`
	Nickname *string `json:"nickname"`
	Password *string `json:"password"`
}

// HandleUpdateMe updates the caller's profile fields. Absent fields are
// left unchanged.
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}

	var req updateMeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), username, service.UpdateProfileInput{
		Email:    req.Email,
		Nickname: req.Nickname,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDeleteMe deletes the caller's account and clears the refresh
// cookie.
func (h *UserHandler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), username); err != nil {
		writeError(w, err)
		return
	}

	clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleRewards returns the caller's reward ledger.
func (h *UserHandler) HandleRewards(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	summary, err := h.rewards.SummaryForUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
