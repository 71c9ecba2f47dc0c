package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Shiro-Vs/EVA-sub001/internal/api/handlers"
	"github.com/Shiro-Vs/EVA-sub001/internal/api/middleware"
	"github.com/Shiro-Vs/EVA-sub001/internal/cache"
	"github.com/Shiro-Vs/EVA-sub001/internal/dashboard"
	"github.com/Shiro-Vs/EVA-sub001/internal/domain"
	"github.com/Shiro-Vs/EVA-sub001/internal/export"
	"github.com/Shiro-Vs/EVA-sub001/internal/logger"
	fsstore "github.com/Shiro-Vs/EVA-sub001/internal/store/firestore"
	"github.com/Shiro-Vs/EVA-sub001/internal/tips"
)

func main() {
	// Parse command-line flags
	var (
		port      = flag.String("port", "8080", "HTTP server port")
		projectID = flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID (or set GCP_PROJECT env)")
		userID    = flag.String("user", os.Getenv("DASHBOARD_USER_ID"), "user whose dashboard to serve (or set DASHBOARD_USER_ID env)")
		bucket    = flag.String("export-bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for snapshot archiving (empty disables)")
		dataset   = flag.String("export-dataset", "", "BigQuery dataset for snapshot summaries (empty disables)")
		table     = flag.String("export-table", "dashboard_snapshots", "BigQuery table for snapshot summaries")
		model     = flag.String("tip-model", "", "Gemini model for tip generation (empty uses the default)")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	if *projectID == "" {
		log.Fatal().Msg("GCP project is required (-project or GCP_PROJECT)")
	}
	if *userID == "" {
		log.Warn().Msg("No user configured - dashboard will stay in the loading state")
	}

	ctx := context.Background()

	// Initialize the store and the dashboard engine
	st, err := fsstore.New(ctx, *projectID, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create store")
	}
	defer st.Close()

	engine := dashboard.New(st, logger.WithUser(log, *userID))
	if err := engine.Start(ctx, *userID); err != nil {
		log.Fatal().Err(err).Msg("Failed to start dashboard engine")
	}
	defer engine.Close()

	// Warm the reference cache. A failed fetch leaves the cache invalid and
	// the reference endpoint reports cached=false.
	ref := cache.New()
	if *userID != "" {
		warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		accounts, accErr := st.ListAccounts(warmCtx, *userID)
		categories, catErr := st.ListCategories(warmCtx, *userID)
		cancel()
		if accErr != nil || catErr != nil {
			log.Warn().AnErr("accounts", accErr).AnErr("categories", catErr).
				Msg("Reference cache warm-up failed, serving uncached")
		} else {
			ref.Put(accounts, categories)
		}
	}

	// Optional snapshot export sinks
	var sinks []export.Sink
	if *dataset != "" {
		bq, err := export.NewBigQuerySink(ctx, *projectID, *dataset, *table)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery sink")
		}
		defer bq.Close()
		sinks = append(sinks, bq)
		log.Info().Str("dataset", *dataset).Str("table", *table).Msg("BigQuery snapshot export enabled")
	}
	if *bucket != "" {
		sinks = append(sinks, export.NewGCSArchive(*bucket))
		log.Info().Str("bucket", *bucket).Msg("GCS snapshot archiving enabled")
	}
	if len(sinks) > 0 {
		unsub := engine.Listen(func(snap *domain.DashboardSnapshot) {
			go exportSnapshot(log, sinks, *userID, snap)
		})
		defer unsub()
	}

	// Tip provider: model-backed when credentials are configured, otherwise
	// the deterministic rules.
	var provider tips.Provider = tips.Static{}
	if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != "" {
		provider = tips.NewGemini(*model, log)
	} else {
		log.Info().Msg("No Gemini credentials configured - serving rule-based tips")
	}

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(engine, log)
	tipsHandler := handlers.NewTipsHandler(engine, provider, log)
	referenceHandler := handlers.NewReferenceHandler(ref, log)

	// Create router
	r := chi.NewRouter()
	// RequestID runs first so both log paths carry the ID.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS)

	r.Get("/api/dashboard", dashboardHandler.GetDashboard)
	r.Get("/api/tips", tipsHandler.GetTip)
	r.Get("/api/reference", referenceHandler.GetReference)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting dashboard API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// exportSnapshot pushes one composed snapshot through every configured sink.
// Export failures are logged and never affect the served snapshot.
func exportSnapshot(log zerolog.Logger, sinks []export.Sink, userID string, snap *domain.DashboardSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, sink := range sinks {
		if err := sink.Export(ctx, userID, snap); err != nil {
			log.Error().Err(err).Msg("Snapshot export failed")
		}
	}
}
