package main

import (
	"context"
	"log"
	"time"

	"github.com/dcimring/pickleball-ratings/internal/config"
	"github.com/dcimring/pickleball-ratings/internal/logging"
	"github.com/dcimring/pickleball-ratings/internal/models"
	"github.com/dcimring/pickleball-ratings/internal/repository"
	"github.com/dcimring/pickleball-ratings/internal/service"

	"go.uber.org/zap"
)

const (
	TotalPlayers = 400
	BatchSize    = 200
	Seed         = 42
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	logger = logger.Named("seeder")

	db, err := repository.OpenPostgres(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	redisClient, err := repository.OpenRedis(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	postgresRepo := repository.NewPostgresRepository(db, cfg.Database.Schema)
	redisRepo := repository.NewRedisRepository(redisClient)
	defer postgresRepo.Close()
	defer redisRepo.Close()

	if err := postgresRepo.AutoMigrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()
	gen := NewGenerator(Seed)
	roster := gen.Roster(TotalPlayers)

	for _, mode := range models.Modes {
		entries := gen.Rankings(roster)
		start := time.Now()
		if err := postgresRepo.PublishRankings(ctx, mode, entries, BatchSize); err != nil {
			logger.Fatal("Failed to publish rankings", zap.String("mode", string(mode)), zap.Error(err))
		}
		logger.Info("Published rankings",
			zap.String("mode", string(mode)),
			zap.Int("players", len(entries)),
			zap.Duration("took", time.Since(start)),
		)
	}

	// Prime the cache so running servers pick the new snapshot up
	rankings := service.NewRankingService(postgresRepo, redisRepo, logger)
	if err := rankings.Load(ctx); err != nil {
		logger.Fatal("Failed to prime cache", zap.Error(err))
	}

	snap := rankings.Snapshot()
	logger.Info("Seeding completed",
		zap.Int("singles", len(snap.Singles)),
		zap.Int("doubles", len(snap.Doubles)),
		zap.Int64("version", snap.Version),
	)
	for _, e := range snap.Doubles[:min(10, len(snap.Doubles))] {
		logger.Info("Top doubles",
			zap.Int("rank", e.RankPosition),
			zap.String("player", e.PlayerName),
			zap.Float64("rating", e.Rating),
		)
	}
}
