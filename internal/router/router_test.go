package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vsocial/resolver-service/internal/config"
	"vsocial/resolver-service/internal/middleware"
	"vsocial/resolver-service/internal/service"
	"vsocial/resolver-service/internal/ytdlp"
)

type scriptedRunner struct {
	mu      sync.Mutex
	results []ytdlp.Result
	calls   int
}

func (r *scriptedRunner) Run(_ context.Context, _ []string, _ ytdlp.Limits) ytdlp.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.calls > len(r.results) {
		return ytdlp.Result{Kind: ytdlp.KindTool, FailureReason: "unexpected call"}
	}
	return r.results[r.calls-1]
}

func setup(t *testing.T, runner ytdlp.Runner, points int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Server.Mode = "test"
	logger := zap.NewNop()

	return SetupRouter(&Dependencies{
		Config:   cfg,
		Resolver: service.NewResolverService(cfg, runner, logger),
		Limiter:  middleware.NewMemoryLimiter(points, time.Minute),
		Logger:   logger,
	})
}

func TestMetadataEndToEnd(t *testing.T) {
	runner := &scriptedRunner{results: []ytdlp.Result{
		{Kind: ytdlp.KindTool, Diagnostic: "Sign in to confirm you're not a bot", FailureReason: "Sign in to confirm you're not a bot"},
		{Success: true, Output: `{"title":"X","duration":42}`},
	}}
	r := setup(t, runner, 10)

	req := httptest.NewRequest(http.MethodPost, "/metadata", bytes.NewBufferString(`{"url":"https://www.youtube.com/watch?v=abc123"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var body struct {
		Success  bool `json:"success"`
		Metadata struct {
			Title    string  `json:"title"`
			Duration float64 `json:"duration"`
			Platform string  `json:"platform"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.Metadata.Title != "X" || body.Metadata.Duration != 42 || body.Metadata.Platform != "youtube" {
		t.Errorf("body = %+v", body)
	}
	if runner.calls != 2 {
		t.Errorf("subprocess invocations = %d, want 2", runner.calls)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestMalformedURLRejectedBeforeSubprocess(t *testing.T) {
	runner := &scriptedRunner{}
	r := setup(t, runner, 10)

	req := httptest.NewRequest(http.MethodPost, "/metadata", bytes.NewBufferString(`{"url":"not a url"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
	if runner.calls != 0 {
		t.Errorf("subprocess invocations = %d, want 0", runner.calls)
	}
}

func TestRateLimitApplied(t *testing.T) {
	r := setup(t, &scriptedRunner{}, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/status", nil)
		req.RemoteAddr = "203.0.113.9:5555"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 200 429]", codes)
	}
}
