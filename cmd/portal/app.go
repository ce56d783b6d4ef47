package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aimatch/portal/internal/api"
	"github.com/aimatch/portal/internal/core/ports"
	"github.com/aimatch/portal/internal/core/service"
	"github.com/aimatch/portal/internal/core/wizard"
	"github.com/aimatch/portal/internal/infrastructure/db/memory"
	mongodb "github.com/aimatch/portal/internal/infrastructure/db/mongo"
	redisdb "github.com/aimatch/portal/internal/infrastructure/db/redis"
	"github.com/aimatch/portal/internal/infrastructure/http/handlers"
	"github.com/aimatch/portal/internal/infrastructure/marketplace"
	"github.com/aimatch/portal/internal/infrastructure/queue"
	"github.com/aimatch/portal/internal/pkg/config"
	"github.com/aimatch/portal/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func serve(parent context.Context, envFile string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, envFile)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: appName,
		Version: Version,
	})

	scoring, err := config.LoadScoring(cfg.Wizard.ScoringFile)
	if err != nil {
		return err
	}

	client, err := marketplace.NewClient(marketplace.Config{
		BaseURL: cfg.Marketplace.BaseURL,
		Timeout: cfg.Marketplace.Timeout,
	}, logger.For("marketplace"))
	if err != nil {
		return err
	}

	readiness := handlers.NewHealthDependenciesHandler().WithCheck("marketplace", client.Ping)

	var (
		store  ports.SessionStore         = memory.NewSessionStore()
		locker ports.SubmitLocker         = memory.NewSubmitLock()
		repo   ports.SubmissionRepository = memory.NewSubmissionRepository()
	)

	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = redisdb.NewSessionStore(rdb)
		locker = redisdb.NewSubmitLock(rdb)
		readiness.WithCheck("redis", handlers.RedisCheck(rdb))
	} else {
		log.Warn().Msg("REDIS_ADDR not set, sessions are kept in memory")
	}

	if cfg.Mongo.URI != "" {
		mclient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = mclient.Disconnect(dctx)
		}()
		mrepo := mongodb.NewSubmissionRepository(db)
		if err := mrepo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("submission indexes not created")
		}
		repo = mrepo
		readiness.WithCheck("mongodb", handlers.MongoCheck(db))
	}

	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, repo, logger.For("audit"))
	workerCtx, stopWorkers := context.WithCancel(context.WithoutCancel(ctx))
	dispatcher.Start(workerCtx)

	sessions := service.NewSessionService(store, client, cfg.JWTSecret, cfg.SessionTTL, logger.For("session"))
	wizards := service.NewWizardService(client, locker, dispatcher,
		wizard.Config{Scoring: scoring},
		service.WizardOptions{
			IdleTTL:       cfg.Wizard.IdleTTL,
			SweepInterval: cfg.Wizard.SweepInterval,
			SubmitTimeout: cfg.Wizard.SubmitTimeout,
		},
		logger.For("wizard"))
	sessions.Subscribe(wizards.OnSessionEnded)
	go wizards.Run(workerCtx)

	e := api.NewRouter(api.Deps{
		Sessions:    sessions,
		Enterprises: service.NewEnterpriseService(client, logger.For("enterprise")),
		Wizards:     wizards,
		Submissions: service.NewSubmissionService(repo, logger.For("submissions")),
		Readiness:   readiness,
		JWTSecret:   cfg.JWTSecret,
		Logger:      log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			stopWorkers()
			dispatcher.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	// Stop the sweeper and flush pending audit records after the last
	// request has finished.
	stopWorkers()
	dispatcher.Wait()
	return nil
}
