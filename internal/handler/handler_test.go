package handler_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"studyhub/internal/auth"
	"studyhub/internal/handler"
	"studyhub/internal/model"
	"studyhub/internal/moderation"
	"studyhub/internal/repository/sqlite"
	"studyhub/internal/service"
)

// testEnv wires the real services over an in-memory database and mounts them
// on the same route tree the server uses, so tests exercise the full stack:
// router → middleware → handler → service → store.
type testEnv struct {
	router *chi.Mux
	users  *sqlite.UserStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	codec, err := auth.NewTokenService("handler-test-secret-0123456789")
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest(4)
	filter := moderation.NewFilter(nil)
	providers := auth.Providers{
		auth.ProviderGoogle: auth.NewGoogleProvider(auth.ProviderConfig{
			ClientID:    "test-client",
			CallbackURL: "http://localhost/auth/google/callback",
		}),
	}

	users := db.Users()
	tokens := db.Tokens()

	authService := service.NewAuthService(users, tokens, codec, passwords, 10*time.Minute, 24*time.Hour, logger)
	oauthService := service.NewOAuthService(providers, users, authService, logger)
	rewardService := service.NewRewardService(db.Rewards(), logger)
	userService := service.NewUserService(users, tokens, db.Rewards(), passwords, logger)
	adminService := service.NewAdminService(users, tokens, logger)
	questionService := service.NewQuestionService(db.Questions(), users, filter, rewardService, logger)
	answerService := service.NewAnswerService(db.Answers(), db.Questions(), users, filter, rewardService, logger)
	commentService := service.NewCommentService(db.Comments(), db.Answers(), users, filter, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	oauthHandler := handler.NewOAuthHandler(oauthService, logger)
	userHandler := handler.NewUserHandler(userService, rewardService, logger)
	adminHandler := handler.NewAdminHandler(adminService, logger)
	questionHandler := handler.NewQuestionHandler(questionService, answerService, logger)
	answerHandler := handler.NewAnswerHandler(answerService, logger)
	commentHandler := handler.NewCommentHandler(commentService, logger)

	r := chi.NewRouter()

	r.Post("/users/join", authHandler.HandleJoin)
	r.Post("/users/login", authHandler.HandleLogin)
	r.Post("/users/token/reissue", authHandler.HandleReissue)
	r.Get("/auth/{provider}/login", oauthHandler.HandleLogin)
	r.Get("/auth/{provider}/callback", oauthHandler.HandleCallback)
	r.Get("/questions", questionHandler.HandleList)
	r.Get("/questions/{id}", questionHandler.HandleGet)
	r.Get("/answers/{id}/comments", commentHandler.HandleList)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(codec))

		r.Post("/users/logout", authHandler.HandleLogout)

		r.Route("/api", func(r chi.Router) {
			r.Get("/users/me", userHandler.HandleMe)
			r.Patch("/users/me", userHandler.HandleUpdateMe)
			r.Delete("/users/me", userHandler.HandleDeleteMe)
			r.Get("/users/rewards", userHandler.HandleRewards)

			r.Post("/questions", questionHandler.HandleCreate)
			r.Patch("/questions/{id}", questionHandler.HandleUpdate)
			r.Delete("/questions/{id}", questionHandler.HandleDelete)

			r.Post("/questions/{id}/answers", answerHandler.HandleCreate)
			r.Patch("/answers/{id}", answerHandler.HandleUpdate)
			r.Post("/answers/{id}/accept", answerHandler.HandleAccept)
			r.Delete("/answers/{id}", answerHandler.HandleDelete)

			r.Post("/answers/{id}/comments", commentHandler.HandleCreate)
			r.Patch("/comments/{id}", commentHandler.HandleUpdate)
			r.Delete("/comments/{id}", commentHandler.HandleDelete)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireRole(string(model.RoleAdmin)))

			r.Get("/users", adminHandler.HandleListUsers)
			r.Get("/users/{id}", adminHandler.HandleGetUser)
			r.Patch("/users/{id}", adminHandler.HandleUpdateUser)
			r.Delete("/users/{id}", adminHandler.HandleDeleteUser)
		})
	})

	return &testEnv{router: r, users: users}
}

// request is the generic driver: optional JSON body, optional bearer token,
// optional cookies.
func (e *testEnv) request(t *testing.T, method, path, body, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(out))
}

// join registers a password user. The username doubles as the password and
// seeds the email.
func (e *testEnv) join(t *testing.T, username string) {
	t.Helper()
	body := `{"username":"` + username + `","password":"pw-` + username + `","email":"` + username + `@example.com","nickname":"` + username + `"}`
	rr := e.request(t, http.MethodPost, "/users/join", body, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

// login returns the access token and the refresh cookie.
func (e *testEnv) login(t *testing.T, username string) (string, *http.Cookie) {
	t.Helper()
	body := `{"username":"` + username + `","password":"pw-` + username + `"}`
	rr := e.request(t, http.MethodPost, "/users/login", body, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res struct {
		AccessToken string `json:"accessToken"`
	}
	decodeJSON(t, rr, &res)
	require.NotEmpty(t, res.AccessToken)

	cookie := refreshCookie(rr)
	require.NotNil(t, cookie, "login must set the refresh cookie")
	return res.AccessToken, cookie
}

func refreshCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == "refresh" {
			return c
		}
	}
	return nil
}

// promote flips a user's role straight in the store; going through the admin
// API would need an admin to begin with.
func (e *testEnv) promote(t *testing.T, username string) {
	t.Helper()
	ctx := context.Background()
	user, err := e.users.GetByUsername(ctx, username)
	require.NoError(t, err)
	user.Role = model.RoleAdmin
	require.NoError(t, e.users.Update(ctx, user))
}

// errorEnvelope is the error body shape every non-2xx response uses, except
// the fixed 401 login body.
type errorEnvelope struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}
