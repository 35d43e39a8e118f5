package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crowd-intelligence-api/config"
	"crowd-intelligence-api/handlers"
	"crowd-intelligence-api/ingest"
	"crowd-intelligence-api/middleware"
	"crowd-intelligence-api/providers"
	"crowd-intelligence-api/scheduler"
	"crowd-intelligence-api/services"
	"crowd-intelligence-api/signals"
	"crowd-intelligence-api/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg.Log)

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get sql db handle")
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	log.Info().Str("host", cfg.Database.Host).Msg("database connected")

	cache, err := services.NewCacheService(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, continuing without response cache")
	}
	defer cache.Close()

	// Stores.
	places := store.NewPlaces(db)
	events := store.NewEvents(db)
	sensors := store.NewSensors(db)
	readings := store.NewReadings(db)
	forecasts := store.NewForecasts(db)

	// Outbound providers.
	weather := providers.NewWeatherClient(cfg.Weather)
	popularity := providers.NewPopularityClient(cfg.Popularity)
	social := providers.NewSocialClient(cfg.Social)

	collectors := []signals.Collector{
		signals.NewPopularityCollector(popularity),
		signals.NewWeatherCollector(weather),
		signals.NewEventCollector(events),
		signals.NewSensorCollector(sensors),
		signals.NewSocialCollector(social),
	}

	aggregator := services.NewAggregator(places, readings, collectors)
	predictor := services.NewPredictor(places, readings, forecasts, events, weather)
	heatmap := services.NewHeatmap(places, readings)

	if cfg.Scheduler.Enabled {
		sched := scheduler.New(
			aggregator,
			predictor,
			time.Duration(cfg.Scheduler.RefreshIntervalMin)*time.Minute,
			cfg.Scheduler.ForecastHour,
		)
		go sched.Run(ctx)
	}

	if cfg.MQTT.URL != "" {
		worker := ingest.NewWorker(cfg.MQTT, sensors)
		if err := worker.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("sensor ingest unavailable")
		} else {
			defer worker.Stop()
		}
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SetupCORS(cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	crowdHandler := handlers.NewCrowdHandler(aggregator, places)
	predictionsHandler := handlers.NewPredictionsHandler(predictor, cache)
	heatmapHandler := handlers.NewHeatmapHandler(heatmap, cache)
	historyHandler := handlers.NewHistoryHandler(readings, places)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/places/:id/crowd", crowdHandler.GetCurrent)
		v1.GET("/places/:id/predictions", predictionsHandler.GetPredictions)
		v1.GET("/places/:id/crowd/history", historyHandler.GetHistory)
		v1.GET("/crowd/heatmap", heatmapHandler.GetHeatmap)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("crowd intelligence api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
