package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/heart-risk-predictor/internal/api"
	"github.com/heart-risk-predictor/internal/config"
	"github.com/heart-risk-predictor/internal/logging"
	"github.com/heart-risk-predictor/internal/metrics"
	"github.com/heart-risk-predictor/internal/preprocess"
	"github.com/heart-risk-predictor/internal/service"
)

func main() {
	// A missing .env file is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to read .env file: %v", err)
	}

	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := logging.NewLogger(cfg.Logging)

	preprocessor := preprocess.Load(cfg.Predictor.DatasetPaths, logger)

	recorder := metrics.NewRecorder()
	predictor, err := service.NewPredictor(cfg.Predictor, preprocessor, logger, service.WithMetrics(recorder))
	if err != nil {
		logger.WithError(err).Fatal("Failed to create predictor")
	}

	// Without a model every prediction uses rule-based scoring
	_ = predictor.LoadStartupModel()

	logger.WithFields(logrus.Fields{
		"host":        cfg.Server.Host,
		"port":        cfg.Server.Port,
		"environment": cfg.Environment,
		"state":       predictor.State().String(),
	}).Info("Starting Heart Disease Prediction API")

	server := api.NewServer(configManager, predictor, recorder, logger)

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}
