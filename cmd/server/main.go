package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LouieCads/proofwork/internal/api"
	"github.com/LouieCads/proofwork/internal/core/service"
	"github.com/LouieCads/proofwork/internal/infrastructure/config"
	mongostore "github.com/LouieCads/proofwork/internal/infrastructure/db/mongo"
	redisstore "github.com/LouieCads/proofwork/internal/infrastructure/db/redis"
	"github.com/LouieCads/proofwork/internal/infrastructure/queue"
	"github.com/LouieCads/proofwork/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB: jobs, roles, users, escrow accounts ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	// --- Redis: ledger audit stream ---
	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	// Seed the admin identity so role administration never locks itself out.
	accessService := service.NewAccessService(mongostore.NewRoleRepository(db), log)
	if err := accessService.Bootstrap(ctx, cfg.AdminIdentity); err != nil {
		log.Fatal().Err(err).Msg("admin bootstrap failed")
	}

	// Audit events fan out to Redis through a sharded async dispatcher so
	// ledger operations never block on the stream.
	dispatcher := queue.NewAuditDispatcher(cfg.AuditWorkers, redisstore.NewAuditStream(rdb), logger.Component("audit"))
	dispatcher.Start(ctx)

	e := api.NewRouter(db, rdb, cfg, dispatcher, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := mongostore.NewJobRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongostore.NewRoleRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	return mongostore.NewAuthRepository(db).EnsureIndexes(ctx)
}
