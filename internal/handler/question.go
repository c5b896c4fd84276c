package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"studyhub/internal/model"
	"studyhub/internal/service"
)

// QuestionHandler exposes the question routes. Listing and reading are
// public; everything that writes requires authentication.
//
//	GET    /questions           → page through questions
//	GET    /questions/{id}      → one question with its answers
//	POST   /api/questions       → post a question
//	PATCH  /api/questions/{id}  → edit (author or admin)
//	DELETE /api/questions/{id}  → delete (author or admin)
type QuestionHandler struct {
	questions *service.QuestionService
	answers   *service.AnswerService
	logger    *slog.Logger
}

// NewQuestionHandler creates a QuestionHandler.
func NewQuestionHandler(questions *service.QuestionService, answers *service.AnswerService, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{questions: questions, answers: answers, logger: logger}
}

// HandleList pages through questions, newest first.
func (h *QuestionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questions.List(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// questionDetail is the read view: the question plus its answers.
type questionDetail struct {
	Question *model.Question `json:"question"`
	Answers  []model.Answer  `json:"answers"`
}

// HandleGet returns one question with its answers.
func (h *QuestionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	question, err := h.questions.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	answers, err := h.answers.ListByQuestion(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questionDetail{Question: question, Answers: answers})
}

type createQuestionRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// HandleCreate posts a question for the caller.
func (h *QuestionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}

	var req createQuestionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	question, err := h.questions.Create(r.Context(), username, req.Title, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

type updateQuestionRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// HandleUpdate edits a question.
func (h *QuestionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}

	var req updateQuestionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	question, err := h.questions.Update(r.Context(), username, chi.URLParam(r, "id"), service.UpdateQuestionInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

// HandleDelete removes a question.
func (h *QuestionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	username, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.questions.Delete(r.Context(), username, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
