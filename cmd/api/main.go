package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BarkinBalci/socials-sync-service/internal/auth"
	"github.com/BarkinBalci/socials-sync-service/internal/config"
	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/feed"
	"github.com/BarkinBalci/socials-sync-service/internal/handler"
	"github.com/BarkinBalci/socials-sync-service/internal/logger"
	"github.com/BarkinBalci/socials-sync-service/internal/mutation"
	"github.com/BarkinBalci/socials-sync-service/internal/queue/sqs"
	"github.com/BarkinBalci/socials-sync-service/internal/service"
	"github.com/BarkinBalci/socials-sync-service/internal/store/backend"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Service.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting socials API",
		zap.String("port", cfg.Service.APIPort),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("collection", cfg.Store.Collection))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs, err := backend.Open(ctx, cfg.Store, cfg.Feed.BufferSize, log)
	if err != nil {
		log.Fatal("Failed to open document store", zap.Error(err))
	}
	defer func() {
		if err := docs.Close(); err != nil {
			log.Error("Failed to close document store", zap.Error(err))
		}
	}()

	var publisher mutation.ActivityPublisher
	if cfg.SQS.QueueURL != "" {
		client, err := sqs.NewClient(ctx, cfg.SQS, log)
		if err != nil {
			log.Fatal("Failed to create SQS client", zap.Error(err))
		}
		publisher = client
	} else {
		log.Info("SQS_QUEUE_URL not set, activity publishing disabled")
	}

	coordinator := mutation.NewCoordinator(docs, publisher, mutation.Config{
		Collection:  cfg.Store.Collection,
		MaxAttempts: cfg.Mutation.MaxAttempts,
		Backoff: mutation.Backoff{
			Base: cfg.Mutation.BackoffBase(),
			Max:  cfg.Mutation.BackoffMax(),
		},
	}, log)

	direction, _ := domain.ParseDirection(cfg.Feed.OrderDirection)
	socialService := service.NewSocialService(
		feed.NewFeed(docs, cfg.Store.Collection, feed.NewJSONRecordParser(), log),
		coordinator,
		docs,
		service.FeedConfig{
			Collection: cfg.Store.Collection,
			OrderKey:   cfg.Feed.OrderKey,
			Direction:  direction,
		},
		log)

	verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.CacheSize, cfg.Auth.CacheTTL())
	if err != nil {
		log.Fatal("Failed to create token verifier", zap.Error(err))
	}
	h := handler.NewHandler(socialService, verifier, log)

	server := &http.Server{
		Addr:              ":" + cfg.Service.APIPort,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("API server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down API server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("API service stopped with error", zap.Error(err))
		return
	}
	log.Info("API service stopped")
}
