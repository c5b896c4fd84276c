package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studyhub/internal/service"
)

// AnswerHandler exposes the answer routes.
//
//	POST   /api/questions/{id}/answers → answer a question
//	PATCH  /api/answers/{id}           → edit (author or admin)
//	POST   /api/answers/{id}/accept    → accept (question author only)
//	DELETE /api/answers/{id}           → delete (author or admin)
type AnswerHandler struct {
	answers *service.AnswerService
	logger  *slog.Logger
}

// NewAnswerHandler creates an AnswerHandler.
func NewAnswerHandler(answers *service.AnswerService, logger *slog.Logger) *AnswerHandler {
	return &AnswerHandler{answers: answers, logger: logger}
}

type answerRequest struct {
	Content string `json:"content"`
}

// HandleCreate posts an answer to a question.
func (h *AnswerHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	answer, err := h.answers.Create(r.Context(), username, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, answer)
}

// HandleUpdate edits an answer's content.
func (h *AnswerHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	answer, err := h.answers.Update(r.Context(), username, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// HandleAccept marks an answer accepted and the question solved.
func (h *AnswerHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}

	answer, err := h.answers.Accept(r.Context(), username, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// HandleDelete removes an answer.
func (h *AnswerHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.answers.Delete(r.Context(), username, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
