package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"relief-backend/internal/config"
	"relief-backend/internal/handlers"
	"relief-backend/internal/metrics"
	"relief-backend/internal/middleware"
	"relief-backend/internal/repository"
	"relief-backend/internal/services"
	"relief-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	if logFile := setupLogger(cfg.Log); logFile != nil {
		defer logFile.Close()
	}

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	if cfg.Database.Migrate {
		if err := repository.Migrate(context.Background(), db); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
		log.Info().Msg("Database schema ready")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	shelterRepo := repository.NewShelterRepository(db)
	foodRepo := repository.NewFoodRepository(db)
	newsRepo := repository.NewNewsRepository(db)
	sosRepo := repository.NewSOSRepository(db)

	// Image storage
	uploader, err := storage.NewS3Uploader(context.Background(), cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create S3 uploader")
	}
	localImages := storage.NewLocalStore(cfg.Images.Dir)

	// Notifications
	appMetrics := metrics.New(prometheus.DefaultRegisterer)
	wsHub := services.NewWSHub()
	appMetrics.TrackFeedConnections(wsHub.Count)
	notifiers := []services.SOSNotifier{wsHub, appMetrics}

	push, err := services.NewPushNotifier(cfg.Push, userRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create push notifier")
	}
	if push != nil {
		notifiers = append(notifiers, push)
		log.Info().Bool("production", cfg.Push.Production).Msg("Admin push notifications enabled")
	}

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	shelterService := services.NewShelterService(shelterRepo, uploader, localImages)
	foodService := services.NewFoodService(foodRepo, uploader, localImages)
	newsService := services.NewNewsService(newsRepo, uploader, localImages)
	sosService := services.NewSOSService(sosRepo, notifiers...)

	sosLimit, err := middleware.RateLimit("/sos/sos", cfg.RateLimit.SOSRate, appMetrics)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid SOS rate limit")
	}

	r := newRouter(routes{
		auth:        authService,
		authHandler: handlers.NewAuthHandler(authService),
		shelters:    handlers.NewShelterHandler(shelterService),
		food:        handlers.NewFoodHandler(foodService),
		news:        handlers.NewNewsHandler(newsService),
		sos:         handlers.NewSOSHandler(sosService),
		ws:          handlers.NewWebSocketHandler(wsHub, authService),
		metrics:     appMetrics,
		sosLimit:    sosLimit,
		origins:     cfg.CORS.AllowedOrigins,
		trustProxy:  cfg.Server.TrustProxy,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

type routes struct {
	auth        middleware.Authenticator
	authHandler *handlers.AuthHandler
	shelters    *handlers.ShelterHandler
	food        *handlers.FoodHandler
	news        *handlers.NewsHandler
	sos         *handlers.SOSHandler
	ws          *handlers.WebSocketHandler
	metrics     *metrics.Metrics
	sosLimit    func(http.Handler) http.Handler
	origins     []string
	trustProxy  bool
}

func newRouter(rt routes) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	if rt.trustProxy {
		// RealIP trusts client supplied headers
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(rt.metrics.Middleware)

	requireUser := middleware.RequireUser(rt.auth)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", rt.authHandler.Register)
		r.Post("/login", rt.authHandler.Login)
		r.Post("/refresh", rt.authHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/me", rt.authHandler.Me)
			r.Put("/push-token", rt.authHandler.UpdatePushToken)
		})
	})

	r.Route("/food", func(r chi.Router) {
		r.Get("/", rt.food.List)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/add", rt.food.Create)
			r.Get("/get-food-regions", rt.food.ListMine)
			r.Put("/update/{id}", rt.food.Update)
			r.Delete("/delete/{id}", rt.food.Delete)
		})
	})

	r.Route("/news", func(r chi.Router) {
		r.Get("/", rt.news.List)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/add", rt.news.Create)
			r.Get("/mynews", rt.news.ListMine)
			r.Put("/update/{id}", rt.news.Update)
			r.Delete("/delete/{id}", rt.news.Delete)
		})
	})

	r.Route("/shelters", func(r chi.Router) {
		r.Get("/get-shelters", rt.shelters.List)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/add", rt.shelters.Create)
			r.Get("/get-shelters-by-user", rt.shelters.ListMine)
			r.Put("/update/{id}", rt.shelters.Update)
			r.Delete("/delete/{id}", rt.shelters.Delete)
		})
	})

	r.Route("/sos", func(r chi.Router) {
		r.With(rt.sosLimit, middleware.OptionalUser(rt.auth)).Post("/sos", rt.sos.Raise)
		r.Get("/all", rt.sos.ListActive)
		r.Put("/resolve/{id}", rt.sos.Resolve)
		r.Get("/resolved", rt.sos.ListResolved)
		r.Get("/ws", rt.ws.HandleWebSocket)
	})

	return r
}

// setupLogger configures zerolog logger. When a log file is configured the
// returned rotating writer must be closed on exit.
func setupLogger(cfg config.LogConfig) *lumberjack.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	var file *lumberjack.Logger
	if cfg.File != "" {
		file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(out, file)
	}
	log.Logger = log.Output(out)

	switch cfg.Level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return file
}
