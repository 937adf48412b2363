package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakeProber struct {
	err error
}

func (p *fakeProber) Probe(_ context.Context) (string, error) {
	return "2024.08.06", p.err
}

func servingStatus(t *testing.T, r *HealthReporter, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := r.server.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("Check(%q) error: %v", service, err)
	}
	return resp.GetStatus()
}

func TestHealthReporter(t *testing.T) {
	prober := &fakeProber{}
	r := NewHealthReporter(prober, time.Minute, zap.NewNop())

	if got := servingStatus(t, r, ServiceName); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("initial status = %v, want NOT_SERVING", got)
	}

	if got := r.Check(context.Background()); got != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("Check() = %v, want SERVING", got)
	}
	if got := servingStatus(t, r, ""); got != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("overall status = %v, want SERVING", got)
	}

	prober.err = errors.New("yt-dlp binary not found")
	r.Check(context.Background())
	if got := servingStatus(t, r, ServiceName); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("status after failed probe = %v, want NOT_SERVING", got)
	}
}

func TestHealthReporterRunStopsWithContext(t *testing.T) {
	r := NewHealthReporter(&fakeProber{}, 10*time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	if got := servingStatus(t, r, ServiceName); got != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("status = %v, want SERVING", got)
	}
}
