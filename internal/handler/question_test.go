package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyhub/internal/model"
	"studyhub/internal/service"
)

// postQuestion creates a question and returns its ID.
func postQuestion(t *testing.T, env *testEnv, token, title string) string {
	t.Helper()
	rr := env.request(t, http.MethodPost, "/api/questions",
		`{"title":"`+title+`","content":"details"}`, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var question model.Question
	decodeJSON(t, rr, &question)
	require.NotEmpty(t, question.ID)
	return question.ID
}

func postAnswer(t *testing.T, env *testEnv, token, questionID string) string {
	t.Helper()
	rr := env.request(t, http.MethodPost, "/api/questions/"+questionID+"/answers",
		`{"content":"try this"}`, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var answer model.Answer
	decodeJSON(t, rr, &answer)
	require.NotEmpty(t, answer.ID)
	return answer.ID
}

func TestQuestionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.join(t, "asker")
	token, _ := env.login(t, "asker")

	t.Run("create requires auth", func(t *testing.T) {
		rr := env.request(t, http.MethodPost, "/api/questions",
			`{"title":"t","content":"c"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	})

	id := postQuestion(t, env, token, "How do goroutines leak?")

	t.Run("posting pays out points", func(t *testing.T) {
		rr := env.request(t, http.MethodGet, "/api/users/rewards", "", token)
		require.Equal(t, http.StatusOK, rr.Code)

		var summary service.Summary
		decodeJSON(t, rr, &summary)
		assert.Equal(t, service.PointsQuestionPosted, summary.Total)
		require.Len(t, summary.Entries, 1)
		assert.Equal(t, service.ReasonQuestionPosted, summary.Entries[0].Reason)
	})

	t.Run("reading is public", func(t *testing.T) {
		rr := env.request(t, http.MethodGet, "/questions", "", "")
		require.Equal(t, http.StatusOK, rr.Code)
		var list []model.Question
		decodeJSON(t, rr, &list)
		require.Len(t, list, 1)
		assert.Equal(t, "How do goroutines leak?", list[0].Title)

		rr = env.request(t, http.MethodGet, "/questions/"+id, "", "")
		require.Equal(t, http.StatusOK, rr.Code)
		var detail struct {
			Question model.Question `json:"question"`
			Answers  []model.Answer `json:"answers"`
		}
		decodeJSON(t, rr, &detail)
		assert.Equal(t, id, detail.Question.ID)
		assert.Empty(t, detail.Answers)
	})

	t.Run("forbidden word rejected", func(t *testing.T) {
		rr := env.request(t, http.MethodPost, "/api/questions",
			`{"title":"buy my spam","content":"c"}`, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("only the author or an admin can edit", func(t *testing.T) {
		env.join(t, "passerby")
		otherToken, _ := env.login(t, "passerby")

		rr := env.request(t, http.MethodPatch, "/questions/"+id, `{"title":"hijacked"}`, otherToken)
		// Write routes live under /api; the public path has no PATCH.
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

		rr = env.request(t, http.MethodPatch, "/api/questions/"+id, `{"title":"hijacked"}`, otherToken)
		assert.Equal(t, http.StatusForbidden, rr.Code)

		rr = env.request(t, http.MethodPatch, "/api/questions/"+id, `{"title":"edited by author"}`, token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var question model.Question
		decodeJSON(t, rr, &question)
		assert.Equal(t, "edited by author", question.Title)
	})

	t.Run("missing question is a 404", func(t *testing.T) {
		rr := env.request(t, http.MethodGet, "/questions/no-such-id", "", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)

		var envl errorEnvelope
		decodeJSON(t, rr, &envl)
		assert.Equal(t, http.StatusNotFound, envl.Status)
	})

	t.Run("delete", func(t *testing.T) {
		rr := env.request(t, http.MethodDelete, "/api/questions/"+id, "", token)
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = env.request(t, http.MethodGet, "/questions/"+id, "", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestAnswerAcceptFlow(t *testing.T) {
	env := newTestEnv(t)
	env.join(t, "asker")
	env.join(t, "helper")
	askerToken, _ := env.login(t, "asker")
	helperToken, _ := env.login(t, "helper")

	questionID := postQuestion(t, env, askerToken, "stuck on a deadlock")
	answerID := postAnswer(t, env, helperToken, questionID)

	t.Run("only the question author may accept", func(t *testing.T) {
		rr := env.request(t, http.MethodPost, "/api/answers/"+answerID+"/accept", "", helperToken)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("accept marks answer and question", func(t *testing.T) {
		rr := env.request(t, http.MethodPost, "/api/answers/"+answerID+"/accept", "", askerToken)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var answer model.Answer
		decodeJSON(t, rr, &answer)
		assert.True(t, answer.IsAccepted)

		rr = env.request(t, http.MethodGet, "/questions/"+questionID, "", "")
		var detail struct {
			Question model.Question `json:"question"`
			Answers  []model.Answer `json:"answers"`
		}
		decodeJSON(t, rr, &detail)
		assert.True(t, detail.Question.IsSolved)
		require.Len(t, detail.Answers, 1)
		assert.True(t, detail.Answers[0].IsAccepted)
	})

	t.Run("acceptance pays the answerer", func(t *testing.T) {
		rr := env.request(t, http.MethodGet, "/api/users/rewards", "", helperToken)
		require.Equal(t, http.StatusOK, rr.Code)

		var summary service.Summary
		decodeJSON(t, rr, &summary)
		assert.Equal(t, service.PointsAnswerAccepted, summary.Total)
	})

	t.Run("a solved question accepts no second answer", func(t *testing.T) {
		secondID := postAnswer(t, env, helperToken, questionID)
		rr := env.request(t, http.MethodPost, "/api/answers/"+secondID+"/accept", "", askerToken)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestCommentThreads(t *testing.T) {
	env := newTestEnv(t)
	env.join(t, "asker")
	env.join(t, "helper")
	askerToken, _ := env.login(t, "asker")
	helperToken, _ := env.login(t, "helper")

	questionID := postQuestion(t, env, askerToken, "range over channel?")
	answerID := postAnswer(t, env, helperToken, questionID)

	rr := env.request(t, http.MethodPost, "/api/answers/"+answerID+"/comments",
		`{"content":"does this close the channel?"}`, askerToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var top model.Comment
	decodeJSON(t, rr, &top)

	rr = env.request(t, http.MethodPost, "/api/answers/"+answerID+"/comments",
		`{"content":"yes, in the defer","parentId":"`+top.ID+`"}`, helperToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var reply model.Comment
	decodeJSON(t, rr, &reply)

	t.Run("replies stay one level deep", func(t *testing.T) {
		rr := env.request(t, http.MethodPost, "/api/answers/"+answerID+"/comments",
			`{"content":"nested","parentId":"`+reply.ID+`"}`, askerToken)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("listing is public and threaded", func(t *testing.T) {
		rr := env.request(t, http.MethodGet, "/answers/"+answerID+"/comments", "", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var threads []service.Thread
		decodeJSON(t, rr, &threads)
		require.Len(t, threads, 1)
		assert.Equal(t, top.ID, threads[0].Comment.ID)
		require.Len(t, threads[0].Replies, 1)
		assert.Equal(t, reply.ID, threads[0].Replies[0].ID)
	})

	t.Run("only the author or an admin can delete", func(t *testing.T) {
		rr := env.request(t, http.MethodDelete, "/api/comments/"+top.ID, "", helperToken)
		assert.Equal(t, http.StatusForbidden, rr.Code)

		env.join(t, "mod")
		env.promote(t, "mod")
		modToken, _ := env.login(t, "mod")
		rr = env.request(t, http.MethodDelete, "/api/comments/"+top.ID, "", modToken)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}
