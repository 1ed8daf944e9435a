package main

import (
	"log"

	"sharpq/adapters/memledger"
	"sharpq/app"
	"sharpq/internal"
	"sharpq/internal/api"
	"sharpq/internal/config"
	"sharpq/internal/debugserver"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; environment variables win either way.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger := internal.NewDefaultLogger()

	ledger := memledger.New()
	service := app.NewSharpenService(ledger)
	handler := api.NewHandler(service, ledger, cfg.Sharpen, logger)
	router := api.NewRouter(handler, cfg.Server.GinMode)

	if cfg.Profiling.Enabled {
		go func() {
			logger.Info("Debug server listening on :%s", cfg.Profiling.Port)
			if err := debugserver.ListenAndServe(cfg.Profiling.Port); err != nil {
				logger.Error("Debug server stopped: %v", err)
			}
		}()
	}

	logger.Info("API server listening on :%s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
