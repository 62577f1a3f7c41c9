package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nats-io/nats.go"

	"trendintel/internal/config"
	"trendintel/internal/domain/people"
	"trendintel/internal/domain/trend"
	"trendintel/internal/server/handlers"
	"trendintel/internal/service/dashboard"
	"trendintel/internal/service/feed"
	"trendintel/internal/service/ingest"
	"trendintel/internal/service/insights"
	"trendintel/internal/service/moodboards"
	"trendintel/internal/service/recommend"
	"trendintel/internal/service/scrape"
)

// Deps bundles the services the HTTP layer exposes.
type Deps struct {
	Ingest      *ingest.Service
	Feed        *feed.Service
	Insights    *insights.Service
	Dashboard   *dashboard.Service
	Scraper     *scrape.Service
	Boards      *moodboards.Service
	Recommender *recommend.Service
	Trends      trend.Store
	Sources     trend.SourceStore
	People      people.Store
	NATS        *nats.Conn
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, eventsTopic string, deps Deps) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	trendHandler := handlers.NewTrendHandler(deps.Ingest, deps.Trends, deps.Sources)
	feedHandler := handlers.NewFeedHandler(deps.Feed)
	insightsHandler := handlers.NewInsightsHandler(deps.Insights)
	dashboardHandler := handlers.NewDashboardHandler(deps.Dashboard)
	peopleHandler := handlers.NewPeopleHandler(deps.People, deps.Scraper)
	moodboardHandler := handlers.NewMoodboardHandler(deps.Boards)
	recommendHandler := handlers.NewRecommendHandler(deps.Recommender)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// Trends API
		r.Route("/trends", func(r chi.Router) {
			r.Post("/submit", trendHandler.SubmitTrend)
			r.Get("/daily", trendHandler.GetDailyTrends)
			r.Post("/seed", trendHandler.SeedTrends)
			r.Get("/metrics/{id}", trendHandler.GetTrendMetrics)
			r.Get("/{id}", trendHandler.GetTrend)
			r.Post("/{id}/analyze", trendHandler.ReanalyzeTrend)
		})

		// Sources API
		r.Route("/sources", func(r chi.Router) {
			r.Get("/", trendHandler.ListSources)
			r.Post("/", trendHandler.AddSource)
		})

		// Feed API
		r.Route("/feed", func(r chi.Router) {
			r.Get("/posts", feedHandler.GetFeed)
			r.Get("/stats", feedHandler.GetFeedStats)
			r.Get("/analysis", feedHandler.GetTrendAnalysis)
		})

		// People API
		r.Route("/people", func(r chi.Router) {
			r.Get("/", peopleHandler.ListPeople)
			r.Post("/", peopleHandler.CreatePerson)
			r.Post("/scrape", peopleHandler.ScrapeAll)
			r.Get("/{id}", peopleHandler.GetPerson)
			r.Post("/{id}/scrape", peopleHandler.ScrapePerson)
		})

		// Insights API
		r.Route("/insights", func(r chi.Router) {
			r.Get("/", insightsHandler.List)
			r.Post("/generate", insightsHandler.Generate)
			r.Get("/status", insightsHandler.Status)
			r.Get("/status/{id}", insightsHandler.Status)
		})

		// Mood boards API
		r.Route("/moodboards", func(r chi.Router) {
			r.Get("/", moodboardHandler.ListBoards)
			r.Post("/", moodboardHandler.CreateBoard)
			r.Get("/{id}", moodboardHandler.GetBoard)
			r.Put("/{id}", moodboardHandler.UpdateBoard)
			r.Delete("/{id}", moodboardHandler.DeleteBoard)
		})

		// Recommendations API
		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/", recommendHandler.ListRecommendations)
			r.Post("/generate", recommendHandler.GenerateRecommendations)
			r.Get("/feedback/summary", recommendHandler.GetFeedbackSummary)
			r.Post("/trends/{id}/feedback", recommendHandler.SubmitTrendFeedback)
			r.Post("/{id}/feedback", recommendHandler.RespondToRecommendation)
		})

		// Dashboard API
		r.Get("/dashboard/summary", dashboardHandler.GetSummary)
	})

	// WebSocket endpoint for live trend updates
	router.Get("/ws/trends", handlers.LiveUpdatesHandler(deps.NATS, eventsTopic))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
