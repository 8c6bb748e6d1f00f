package main

import (
	"context"
	"log"
	"time"

	"wanderplan/config"
	"wanderplan/database"
	"wanderplan/handlers"
	"wanderplan/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	// Load .env file (ignored in production where env vars are set directly)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found — using environment variables")
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	db, err := database.Open(ctx, cfg.Postgres.DSN())
	cancel()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer db.Close()

	// Keys saved through the settings endpoint win over the environment.
	settings := services.NewLayeredSettings(database.NewSettingsRepo(db), services.NewEnvSettings())

	gemini := services.NewGeminiClient(cfg.AI.Model)
	if cfg.AI.BaseURL != "" {
		gemini.WithBaseURL(cfg.AI.BaseURL)
	}

	flightOpts := []services.FlightClientOption{
		services.WithFlightBaseURL(cfg.Flights.BaseURL),
		services.WithFlightTimeout(cfg.Flights.Timeout),
	}
	if cfg.Flights.RPS > 0 {
		flightOpts = append(flightOpts, services.WithFlightRateLimiter(rate.NewLimiter(rate.Limit(cfg.Flights.RPS), 1)))
	}
	flights := services.NewFlightClient(settings, flightOpts...)

	planner := services.NewPlanner(settings, gemini, flights,
		services.WithAITimeout(cfg.AI.Timeout),
		services.WithFlightSearchTimeout(cfg.Flights.Timeout),
	)
	log.Printf("✅ Planner ready with model %s", gemini.Model())

	if cfg.HTTP.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.SetTrustedProxies([]string{"0.0.0.0/0"})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.HTTP.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	h := handlers.New(database.NewPlanRepo(db), planner, settings)
	h.Register(r.Group("/api"))

	log.Printf("🚀 Wanderplan backend starting on port %s", cfg.HTTP.Port)
	if err := r.Run(":" + cfg.HTTP.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
