package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/config"
	"portfolio-backend/pkg/logger"
)

// loadConfig reads .env (if any), configures logging and loads the shared config.
func loadConfig() *config.Config {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("[Config] invalid configuration")
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)
	if envErr != nil {
		log.Debug().Msg("[Config] no .env file, using system environment")
	}

	log.Info().
		Str("redis", cfg.Redis.Host).
		Str("smtp", cfg.SMTP.Host+":"+cfg.SMTP.Port).
		Int("concurrency", cfg.Worker.Concurrency).
		Msg("[Config] loaded")

	return cfg
}
