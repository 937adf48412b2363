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

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"vsocial/resolver-service/internal/config"
	"vsocial/resolver-service/internal/handler"
	"vsocial/resolver-service/internal/middleware"
	"vsocial/resolver-service/internal/router"
)

const healthInterval = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the gRPC health service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	cfg, logger := a.cfg, a.logger
	logger.Info("Starting Resolver Service", zap.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 连接 Redis (仅用于共享限流)
	var redisClient *redis.Client
	if cfg.RateLimit.Backend == "redis" {
		redisClient = initRedis(&cfg.Redis)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Failed to connect to Redis, rate limiting will allow requests until it recovers", zap.Error(err))
		} else {
			logger.Info("✓ Connected to Redis")
		}
	}

	resolver := a.resolver()

	// gRPC 健康检查
	reporter := handler.NewHealthReporter(resolver, healthInterval, logger)
	var grpcServer *grpc.Server
	if cfg.Server.GRPCHealthPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCHealthPort))
		if err != nil {
			return fmt.Errorf("failed to listen on grpc health port: %w", err)
		}
		grpcServer = grpc.NewServer()
		reporter.Register(grpcServer)

		go reporter.Run(ctx)
		go func() {
			logger.Info("✓ gRPC health service listening", zap.Int("port", cfg.Server.GRPCHealthPort))
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC health service stopped", zap.Error(err))
			}
		}()
	}

	engine := router.SetupRouter(&router.Dependencies{
		Config:   cfg,
		Resolver: resolver,
		Limiter:  middleware.NewLimiter(&cfg.RateLimit, redisClient, logger),
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("✓ HTTP server listening",
			zap.Int("port", cfg.Server.Port),
			zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待中断信号
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	}

	logger.Info("Shutting down server...")
	reporter.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	logger.Info("Server stopped")
	return nil
}

// initRedis 初始化 Redis 连接
func initRedis(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
