package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"trendintel/internal/adapter/storage"
	"trendintel/internal/config"
	"trendintel/internal/domain/analysis"
	"trendintel/internal/logging"
	"trendintel/internal/server"
	"trendintel/internal/service/classify"
	"trendintel/internal/service/dashboard"
	"trendintel/internal/service/feed"
	"trendintel/internal/service/ingest"
	"trendintel/internal/service/insights"
	"trendintel/internal/service/moodboards"
	"trendintel/internal/service/recommend"
	"trendintel/internal/service/scrape"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	natsConn, err := initNATS(cfg.NATS)
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer natsConn.Close()

	// Initialize storage adapters
	trendStore := storage.NewTrendStore(db)
	postStore := storage.NewPostStore(db)
	insightStore := storage.NewInsightStore(db)
	jobStore := storage.NewJobStore()
	moodboardStore := storage.NewMoodboardStore(db)
	recommendStore := storage.NewRecommendStore(db)

	// Pick the classifier
	classifier := buildClassifier(cfg.Classify)

	// Initialize services
	ingestService := ingest.NewService(trendStore, trendStore, classifier, natsConn, ingest.Config{
		EventsTopic:    cfg.NATS.EventsTopic,
		SnapshotWindow: cfg.Ingest.SnapshotWindow,
	})

	apify := scrape.NewApifyClient(cfg.Scrape.APIToken, cfg.Scrape.BaseURL, cfg.Scrape.RequestTimeout)
	scrapeService := scrape.NewService(postStore, []scrape.PlatformScraper{
		scrape.NewInstagramScraper(apify),
		scrape.NewTikTokScraper(apify),
	}, cfg.Scrape.MaxPostsPerRun)

	feedService := feed.NewService(postStore, analysis.NewEngine(nil))
	insightsService := insights.NewService(trendStore, insightStore, jobStore, classifier, natsConn, cfg.NATS.EventsTopic)
	dashboardService := dashboard.NewService(trendStore)
	boardsService := moodboards.NewService(moodboardStore, trendStore)
	recommendService := recommend.NewService(recommendStore, recommendStore, trendStore, trendStore, classifier)

	// Start the periodic metric refresh
	go ingestService.Run(ctx, cfg.Ingest.RefreshInterval)

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, cfg.NATS.EventsTopic, server.Deps{
		Ingest:      ingestService,
		Feed:        feedService,
		Insights:    insightsService,
		Dashboard:   dashboardService,
		Scraper:     scrapeService,
		Boards:      boardsService,
		Recommender: recommendService,
		Trends:      trendStore,
		Sources:     trendStore,
		People:      postStore,
		NATS:        natsConn,
	})

	// Start HTTP server
	go func() {
		slog.Info("starting HTTP server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	slog.Info("shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}

// buildClassifier picks the AI or mock classifier from config
func buildClassifier(cfg config.ClassifyConfig) classify.Classifier {
	if cfg.UseMock || cfg.OpenAIKey == "" {
		if !cfg.UseMock {
			slog.Warn("OPENAI_API_KEY not set, using mock classifier")
		}
		return classify.NewMockClassifier()
	}

	return classify.NewOpenAIClassifier(cfg.OpenAIKey, cfg.Model)
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			slog.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			slog.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
