package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whereabouts-backend/internal/config"
	"whereabouts-backend/internal/handlers"
	"whereabouts-backend/internal/middleware"
	"whereabouts-backend/internal/repository"
	"whereabouts-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

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

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	contactRepo := repository.NewContactRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	locationRepo := repository.NewLocationRepository(db)

	// Initialize services
	userService := services.NewUserService(userRepo, cfg.JWT.Secret)
	contactService := services.NewContactService(contactRepo, userRepo, permissionRepo)
	permissionService := services.NewPermissionService(permissionRepo, contactRepo)
	locationService := services.NewLocationService(locationRepo, contactRepo, permissionService)
	wsHub := services.NewWSHub()
	push, err := services.NewPushNotifier(cfg.APNS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create push notifier")
	}
	if push == nil {
		log.Info().Msg("APNs push disabled")
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	contactHandler := handlers.NewContactHandler(contactService, userService, permissionService, wsHub, push)
	permissionHandler := handlers.NewPermissionHandler(permissionService)
	locationHandler := handlers.NewLocationHandler(locationService, contactService, wsHub)
	wsHandler := handlers.NewWebSocketHandler(wsHub, userService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/health", handleHealth)
		r.Get("/permission-levels", permissionHandler.ListLevels)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))
			r.Get("/me", authHandler.Me)
			r.Put("/me/push-token", authHandler.SetPushToken)

			r.Get("/contacts", contactHandler.ListContacts)
			r.Post("/contacts/request", contactHandler.SendRequest)
			r.Get("/contacts/requests", contactHandler.ListRequests)
			r.Post("/contacts/requests/{request_id}/accept", contactHandler.AcceptRequest)
			r.Post("/contacts/requests/{request_id}/decline", contactHandler.DeclineRequest)
			r.Post("/contacts/requests/{request_id}/cancel", contactHandler.CancelRequest)
			r.Delete("/contacts/{contact_id}", contactHandler.RemoveContact)

			r.Get("/contacts/{contact_id}/permission", permissionHandler.GetPermission)
			r.Put("/contacts/{contact_id}/permission", permissionHandler.SetPermission)

			r.Post("/location", locationHandler.Publish)
			r.Get("/location", locationHandler.GetOwn)
			r.Get("/contacts/locations", locationHandler.GetAllContactLocations)
			r.Get("/contacts/{contact_id}/location", locationHandler.GetContactLocation)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// handleHealth reports service liveness
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","timestamp":%q}`, time.Now().UTC().Format(time.RFC3339))
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
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
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
