package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"studyhub/internal/model"
	"studyhub/internal/repository"
	"studyhub/internal/service"
)

// AdminHandler exposes the user-management routes, gated on the ADMIN role
// by the router.
//
//	GET    /admin/users      → page through accounts
//	GET    /admin/users/{id} → one account
//	PATCH  /admin/users/{id} → edit fields, change role
//	DELETE /admin/users/{id} → remove the account
type AdminHandler struct {
	admin  *service.AdminService
	logger *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(admin *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger}
}

// listOptions reads limit/offset query parameters; the service clamps
// out-of-range values.
func listOptions(r *http.Request) repository.ListOptions {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return repository.ListOptions{Limit: limit, Offset: offset}
}

// HandleListUsers pages through all accounts.
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleGetUser returns one account.
func (h *AdminHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.admin.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type adminUpdateRequest struct {
	Email    *string     `json:"email"`
	Nickname *string     `json:"nickname"`
	Role     *model.Role `json:"role"`
}

// HandleUpdateUser edits an account. A role change also revokes the
// account's live session.
func (h *AdminHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req adminUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.admin.UpdateUser(r.Context(), chi.URLParam(r, "id"), service.UpdateUserInput{
		Email:    req.Email,
		Nickname: req.Nickname,
		Role:     req.Role,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDeleteUser removes an account and everything it owns.
func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
