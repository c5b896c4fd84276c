package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studyhub/internal/service"
)

// CommentHandler exposes the comment routes.
//
//	GET    /answers/{id}/comments     → comment threads (public)
//	POST   /api/answers/{id}/comments → comment, optionally as a reply
//	PATCH  /api/comments/{id}         → edit (author or admin)
//	DELETE /api/comments/{id}         → delete (author or admin)
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

// NewCommentHandler creates a CommentHandler.
func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

// HandleList returns an answer's comment threads.
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	threads, err := h.comments.ListForAnswer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, threads)
}

type createCommentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parentId"`
}

// HandleCreate posts a comment on an answer.
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}

	var req createCommentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), username, chi.URLParam(r, "id"), req.ParentID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

// HandleUpdate edits a comment.
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}

	var req updateCommentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Update(r.Context(), username, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// HandleDelete removes a comment and its replies.
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.comments.Delete(r.Context(), username, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
