// Package server is the wiring layer: it assembles the dependency graph
// (database → repositories → services → handlers), defines the route tree,
// and runs the HTTP server with graceful shutdown.
//
// Route map:
//
//	POST   /users/join                  register
//	POST   /users/login                 password login
//	POST   /users/token/reissue         rotate the token pair
//	GET    /auth/{provider}/login       OAuth redirect (google/kakao/naver)
//	GET    /auth/{provider}/callback    OAuth completion
//	GET    /questions                   list questions (public)
//	GET    /questions/{id}              question with answers (public)
//	GET    /answers/{id}/comments       comment threads (public)
//
//	authenticated:
//	POST   /users/logout
//	GET    /api/users/me                PATCH, DELETE too
//	GET    /api/users/rewards
//	POST   /api/questions               PATCH/DELETE /api/questions/{id}
//	POST   /api/questions/{id}/answers
//	PATCH  /api/answers/{id}            POST {id}/accept, DELETE {id}
//	POST   /api/answers/{id}/comments
//	PATCH  /api/comments/{id}           DELETE too
//
//	ADMIN only:
//	GET    /admin/users                 GET/PATCH/DELETE /admin/users/{id}
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studyhub/internal/auth"
	"studyhub/internal/handler"
	"studyhub/internal/middleware"
	"studyhub/internal/model"
	"studyhub/internal/moderation"
	sqliteRepo "studyhub/internal/repository/sqlite"
	"studyhub/internal/service"
)

// Config holds server configuration, loaded in main from the environment.
type Config struct {
	Port            int
	DBPath          string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ForbiddenWords  []string

	Google auth.ProviderConfig
	Kakao  auth.ProviderConfig
	Naver  auth.ProviderConfig
}

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain. Each layer only receives what
// it needs: services get repository interfaces, handlers get services.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	codec, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	filter := moderation.NewFilter(s.config.ForbiddenWords)
	providers := auth.Providers{
		auth.ProviderGoogle: auth.NewGoogleProvider(s.config.Google),
		auth.ProviderKakao:  auth.NewKakaoProvider(s.config.Kakao),
		auth.ProviderNaver:  auth.NewNaverProvider(s.config.Naver),
	}

	users := s.db.Users()
	tokens := s.db.Tokens()

	authService := service.NewAuthService(users, tokens, codec, passwords,
		s.config.AccessTokenTTL, s.config.RefreshTokenTTL, s.logger)
	oauthService := service.NewOAuthService(providers, users, authService, s.logger)
	rewardService := service.NewRewardService(s.db.Rewards(), s.logger)
	userService := service.NewUserService(users, tokens, s.db.Rewards(), passwords, s.logger)
	adminService := service.NewAdminService(users, tokens, s.logger)
	questionService := service.NewQuestionService(s.db.Questions(), users, filter, rewardService, s.logger)
	answerService := service.NewAnswerService(s.db.Answers(), s.db.Questions(), users, filter, rewardService, s.logger)
	commentService := service.NewCommentService(s.db.Comments(), s.db.Answers(), users, filter, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	oauthHandler := handler.NewOAuthHandler(oauthService, s.logger)
	userHandler := handler.NewUserHandler(userService, rewardService, s.logger)
	adminHandler := handler.NewAdminHandler(adminService, s.logger)
	questionHandler := handler.NewQuestionHandler(questionService, answerService, s.logger)
	answerHandler := handler.NewAnswerHandler(answerService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)

	// Public routes.
	s.router.Post("/users/join", authHandler.HandleJoin)
	s.router.Post("/users/login", authHandler.HandleLogin)
	s.router.Post("/users/token/reissue", authHandler.HandleReissue)
	s.router.Get("/auth/{provider}/login", oauthHandler.HandleLogin)
	s.router.Get("/auth/{provider}/callback", oauthHandler.HandleCallback)
	s.router.Get("/questions", questionHandler.HandleList)
	s.router.Get("/questions/{id}", questionHandler.HandleGet)
	s.router.Get("/answers/{id}/comments", commentHandler.HandleList)

	// Authenticated routes.
	s.router.Group(func(r chi.Router) {
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

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, drain in-flight requests (30s), close the
// database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
