package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName gRPC 健康检查中的服务名
const ServiceName = "vsocial.resolver.v1.Resolver"

// Prober 版本探测
type Prober interface {
	Probe(ctx context.Context) (string, error)
}

// HealthReporter 定期探测 yt-dlp 并更新 gRPC 健康状态
type HealthReporter struct {
	server   *health.Server
	prober   Prober
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

// NewHealthReporter 创建健康状态上报器, 初始状态为 NOT_SERVING
func NewHealthReporter(prober Prober, interval time.Duration, logger *zap.Logger) *HealthReporter {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthReporter{
		server:   hs,
		prober:   prober,
		interval: interval,
		timeout:  10 * time.Second,
		logger:   logger,
	}
}

// Register 注册到 gRPC 服务器
func (r *HealthReporter) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, r.server)
}

// Check 执行一次探测并更新状态
func (r *HealthReporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if _, err := r.prober.Probe(ctx); err != nil {
		r.logger.Warn("yt-dlp unavailable", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	r.server.SetServingStatus("", status)
	r.server.SetServingStatus(ServiceName, status)
	return status
}

// Run 周期性探测直到 ctx 结束
func (r *HealthReporter) Run(ctx context.Context) {
	r.Check(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Check(ctx)
		}
	}
}

// Shutdown 将所有服务标记为 NOT_SERVING
func (r *HealthReporter) Shutdown() {
	r.server.Shutdown()
}
