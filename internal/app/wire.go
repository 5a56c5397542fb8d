package app

import (
	"context"
	"log/slog"

	"github.com/fanpicks/platform/internal/auth"
	"github.com/fanpicks/platform/internal/handler"
	"github.com/fanpicks/platform/internal/infra"
	"github.com/fanpicks/platform/internal/metrics"
	"github.com/fanpicks/platform/internal/repository"
	"github.com/fanpicks/platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services holds every domain service the API and background workers share.
type Services struct {
	Auth        *service.AuthService
	Catalog     *service.CatalogService
	Events      *service.EventService
	Matches     *service.MatchService
	Contests    *service.ContestService
	Questions   *service.QuestionService
	Predictions *service.PredictionService
	Entries     *service.EntryService
	Media       *service.MediaService
}

// NewServices builds the services over the PostgreSQL repositories.
// storage may be nil, which disables image uploads.
func NewServices(pool *pgxpool.Pool, jwtMgr *auth.JWTManager, storage service.ObjectUploader, logger *slog.Logger) *Services {
	// Repositories
	userRepo := repository.NewUserRepository()
	catalogRepo := repository.NewCatalogRepository()
	eventRepo := repository.NewEventRepository()
	matchRepo := repository.NewMatchRepository()
	contestRepo := repository.NewContestRepository()
	questionRepo := repository.NewQuestionRepository()
	predictionRepo := repository.NewPredictionRepository()
	entryRepo := repository.NewUserContestRepository()
	txRepo := repository.NewTransactionRepository()
	payoutRepo := repository.NewPayoutRepository()
	leaderboardRepo := repository.NewLeaderboardRepository()
	outboxRepo := repository.NewOutboxRepository()

	events, matches, contests := service.NewLifecycleServices(pool, service.LifecycleRepos{
		Catalog:  catalogRepo,
		Events:   eventRepo,
		Matches:  matchRepo,
		Contests: contestRepo,
		Outbox:   outboxRepo,
	}, logger)

	return &Services{
		Auth:        service.NewAuthService(pool, userRepo, outboxRepo, jwtMgr, logger),
		Catalog:     service.NewCatalogService(pool, catalogRepo),
		Events:      events,
		Matches:     matches,
		Contests:    contests,
		Questions:   service.NewQuestionService(pool, contestRepo, questionRepo, outboxRepo, logger),
		Predictions: service.NewPredictionService(pool, contestRepo, questionRepo, predictionRepo, outboxRepo, logger),
		Entries: service.NewEntryService(pool, service.EntryRepos{
			Users:        userRepo,
			Contests:     contestRepo,
			Entries:      entryRepo,
			Transactions: txRepo,
			Payouts:      payoutRepo,
			Leaderboard:  leaderboardRepo,
			Outbox:       outboxRepo,
		}, logger),
		Media: service.NewMediaService(storage, contests, logger),
	}
}

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool     *pgxpool.Pool
	JWTMgr   *auth.JWTManager
	Logger   *slog.Logger
	Services *Services

	// Sweeper backs POST /admin/sweep/run.
	Sweeper handler.SweepRunner

	// PredictionLimiter throttles prediction writes per user; nil disables it.
	PredictionLimiter handler.Limiter

	CORSOrigins string

	// HealthChecks are probed by /health after the postgres check.
	HealthChecks []handler.HealthCheck
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	jwtMgr := deps.JWTMgr
	svc := deps.Services

	// Handlers
	authHandler := handler.NewAuthHandler(svc.Auth)
	catalogHandler := handler.NewCatalogHandler(svc.Catalog)
	lifecycleHandler := handler.NewLifecycleHandler(svc.Events, svc.Matches, svc.Contests)
	contestHandler := handler.NewContestHandler(svc.Questions, svc.Entries)
	predictionHandler := handler.NewPredictionHandler(svc.Predictions, deps.PredictionLimiter)
	adminHandler := handler.NewAdminHandler(svc.Media, deps.Sweeper)

	origins := deps.CORSOrigins
	if origins == "" {
		origins = "*"
	}

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(deps.Logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(deps.Logger))
	r.Use(metrics.Middleware)
	r.Use(handler.CORSWithOrigins(origins))

	// Operational (no auth)
	checks := append([]handler.HealthCheck{{
		Name:  "postgres",
		Check: func(ctx context.Context) error { return infra.HealthCheck(ctx, deps.Pool) },
	}}, deps.HealthChecks...)
	r.Get("/health", handler.HealthHandler(checks...))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(handler.JSONContentType)

		// Auth routes (no auth)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/admin/login", authHandler.AdminLogin)
		})

		// Player-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(auth.AuthenticatePlayer(jwtMgr))

			r.Get("/me", authHandler.Me)

			r.Get("/sports", catalogHandler.ListSports)
			r.Get("/teams", catalogHandler.ListTeams)

			r.Get("/events", lifecycleHandler.ListEvents)
			r.Get("/events/{id}", lifecycleHandler.GetEvent)
			r.Get("/events/{id}/matches", lifecycleHandler.ListEventMatches)

			r.Get("/matches/{id}", lifecycleHandler.GetMatch)
			r.Get("/matches/{id}/contests", lifecycleHandler.ListMatchContests)

			r.Route("/contests", func(r chi.Router) {
				r.Get("/", lifecycleHandler.ListContests)
				r.Get("/{id}", lifecycleHandler.GetContest)
				r.Get("/{id}/questions", contestHandler.ListQuestions)
				r.Get("/{id}/leaderboard", contestHandler.Leaderboard)
				r.Get("/{id}/predictions/me", predictionHandler.ListMine)
				r.Post("/{id}/join", contestHandler.Join)
			})

			r.Post("/predictions", predictionHandler.Submit)
			r.Patch("/predictions/{id}", predictionHandler.Update)

			r.Get("/transactions/me", contestHandler.MyTransactions)
			r.Get("/payouts/me", contestHandler.MyPayouts)
			r.Get("/user-contests/me", contestHandler.MyEntries)
		})

		// Admin-authenticated routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.AuthenticateAdmin(jwtMgr))

			r.Post("/sports", catalogHandler.CreateSport)
			r.Post("/teams", catalogHandler.CreateTeam)

			r.Post("/events", lifecycleHandler.CreateEvent)
			r.Patch("/events/{id}/status", lifecycleHandler.UpdateEventStatus)

			r.Post("/matches", lifecycleHandler.CreateMatch)
			r.Patch("/matches/{id}/status", lifecycleHandler.UpdateMatchStatus)
			r.Delete("/matches/{id}", lifecycleHandler.DeleteMatch)

			r.Post("/contests", lifecycleHandler.CreateContest)
			r.Patch("/contests/{id}/status", lifecycleHandler.UpdateContestStatus)
			r.Post("/contests/{id}/image", adminHandler.UploadContestImage)

			r.Post("/questions", contestHandler.CreateQuestion)
			r.Put("/questions/{id}/outcome", contestHandler.SetOutcome)

			r.Post("/transactions", contestHandler.RecordTransaction)
			r.Post("/sweep/run", adminHandler.RunSweep)
		})
	})

	return r
}
