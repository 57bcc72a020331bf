package main

import (
	"flag"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/donation-holds/internal/config"
	"github.com/iliyamo/donation-holds/internal/database"
	"github.com/iliyamo/donation-holds/internal/logger"
)

func main() {
	var (
		down  = flag.Bool("down", false, "roll back instead of applying")
		steps = flag.Int("steps", 1, "number of migrations to roll back with -down")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()

	if *down {
		if err := database.Rollback(db, *steps); err != nil {
			log.Fatal("rollback failed", zap.Error(err))
		}
		log.Info("migrations rolled back", zap.Int("steps", *steps))
		return
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}
	log.Info("migrations applied")
}
