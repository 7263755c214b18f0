package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	badgehandler "github.com/boothbase/boothbase-backend/internal/badge/handler"
	"github.com/boothbase/boothbase-backend/internal/badge/recognizer"
	badgeservice "github.com/boothbase/boothbase-backend/internal/badge/service"
	"github.com/boothbase/boothbase-backend/internal/badge/storage"
	"github.com/boothbase/boothbase-backend/internal/dealer/consumers"
	dealerevents "github.com/boothbase/boothbase-backend/internal/dealer/events"
	dealerhandler "github.com/boothbase/boothbase-backend/internal/dealer/handler"
	"github.com/boothbase/boothbase-backend/internal/dealer/repository"
	dealerservice "github.com/boothbase/boothbase-backend/internal/dealer/service"
	"github.com/boothbase/boothbase-backend/pkg/config"
	"github.com/boothbase/boothbase-backend/pkg/database"
	"github.com/boothbase/boothbase-backend/pkg/httputil"
	"github.com/boothbase/boothbase-backend/pkg/logger"
	"github.com/boothbase/boothbase-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("crm-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("crm-service", cfg.Server.Environment)
	log.Info().Msg("starting CRM Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publishers
	dealerPublisher, err := dealerevents.NewDealerEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create dealer event publisher")
	}
	scanPublisher, err := messaging.NewPublisher(rmq, messaging.ExchangeScanEvents, "crm-service", log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scan event publisher")
	}

	// Initialize repositories
	dealerRepo := repository.NewDealerRepository(db.DB)
	noteRepo := repository.NewNoteRepository(db.DB)
	imageRepo := repository.NewImageRepository(db.DB)
	userCacheRepo := repository.NewUserCacheRepository(db.DB)

	// Initialize services
	dealerSvc := dealerservice.NewDealerService(dealerRepo, noteRepo, imageRepo, dealerPublisher, log)

	sessions := storage.NewSessionStore(cfg.Scan.SessionTTL)
	ocr := recognizer.NewTesseract(cfg.Scan.OCRLanguages...)
	badgeSvc := badgeservice.NewService(ocr, dealerSvc, sessions, scanPublisher, log, cfg.Scan.SearchLimit)

	// Initialize handlers
	dealerHandler := dealerhandler.NewDealerHandler(dealerSvc, log)
	noteHandler := dealerhandler.NewNoteHandler(dealerSvc, log)
	imageHandler := dealerhandler.NewImageHandler(dealerSvc, log, cfg.Scan.MaxUploadBytes)
	badgeHandler := badgehandler.NewHandler(badgeSvc, log, cfg.Scan.MaxUploadBytes)

	// Start user event consumer to keep the created_by cache warm
	userConsumer, err := consumers.NewUserEventConsumer(rmq, userCacheRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create user event consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := userConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start user event consumer")
	}

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))

	// CORS - the scanner app runs in the browser on the show floor
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			// Allow localhost variations (development)
			if origin == "http://localhost:3000" || origin == "http://localhost:5173" {
				return true
			}
			// Allow *.boothbase.io subdomains for production
			if len(origin) > 13 && origin[len(origin)-13:] == ".boothbase.io" {
				return true
			}
			if origin == "https://boothbase.io" {
				return true
			}
			return false
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "crm-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes (account context comes from the verified token)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httputil.Auth(&cfg.JWT))

		// Badge scan routes
		r.Route("/badge-scans", func(r chi.Router) {
			r.With(httputil.RequirePermission("scans.create")).Post("/", badgeHandler.Scan)
			r.With(httputil.RequirePermission("scans.read")).Get("/{scanID}", badgeHandler.Get)
			r.With(httputil.RequirePermission("scans.create")).Post("/{scanID}/select", badgeHandler.Select)
			r.With(httputil.RequirePermission("scans.create")).Post("/{scanID}/create-new", badgeHandler.CreateNew)
			r.With(httputil.RequirePermission("scans.create")).Post("/{scanID}/submit", badgeHandler.Submit)
		})

		// Dealer roster routes
		r.Route("/dealers", func(r chi.Router) {
			r.With(httputil.RequirePermission("dealers.read")).Get("/", dealerHandler.List)
			r.With(httputil.RequirePermission("dealers.read")).Get("/search", dealerHandler.Search)
			r.With(httputil.RequirePermission("dealers.write")).Post("/", dealerHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.With(httputil.RequirePermission("dealers.read")).Get("/", dealerHandler.Get)
				r.With(httputil.RequirePermission("dealers.write")).Put("/", dealerHandler.Update)
				r.With(httputil.RequirePermission("dealers.delete")).Delete("/", dealerHandler.Delete)

				r.With(httputil.RequirePermission("dealers.read")).Get("/notes", noteHandler.List)
				r.With(httputil.RequirePermission("dealers.notes.write")).Post("/notes", noteHandler.Create)

				r.With(httputil.RequirePermission("dealers.read")).Get("/images", imageHandler.List)
				r.With(httputil.RequirePermission("dealers.images.write")).Post("/images", imageHandler.Upload)
			})
		})

		r.With(httputil.RequirePermission("dealers.notes.write")).Put("/notes/{noteID}/done", noteHandler.SetDone)
		r.With(httputil.RequirePermission("dealers.notes.write")).Delete("/notes/{noteID}", noteHandler.Delete)
		r.With(httputil.RequirePermission("dealers.read")).Get("/images/{imageID}", imageHandler.Download)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop consumers
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
