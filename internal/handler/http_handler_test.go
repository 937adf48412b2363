package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vsocial/resolver-service/internal/models"
	"vsocial/resolver-service/internal/utils"
)

type fakeResolver struct {
	info       *models.MediaInfo
	download   *models.DownloadResult
	version    string
	err        error
	probeErr   error
	gotRequest models.DownloadRequest
}

func (f *fakeResolver) Metadata(_ context.Context, _ string) (*models.MediaInfo, error) {
	return f.info, f.err
}

func (f *fakeResolver) ResolveDownload(_ context.Context, req models.DownloadRequest) (*models.DownloadResult, error) {
	f.gotRequest = req
	return f.download, f.err
}

func (f *fakeResolver) Probe(_ context.Context) (string, error) {
	return f.version, f.probeErr
}

func (f *fakeResolver) PlatformStatus() map[models.Platform]models.PlatformStatus {
	return map[models.Platform]models.PlatformStatus{
		models.PlatformYouTube: {Supported: true, Status: "operational", Formats: []string{"mp4", "mp3", "webm"}},
	}
}

func newTestEngine(r Resolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHTTPHandler(r, zap.NewNop())
	e := gin.New()
	e.GET("/health", h.Health)
	e.POST("/metadata", h.Metadata)
	e.POST("/download", h.Download)
	e.GET("/status", h.Status)
	e.NoRoute(h.NotFound)
	return e
}

func post(e http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return body
}

func TestMetadataHandler(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		resolver  *fakeResolver
		wantCode  int
		wantError string
	}{
		{
			name:      "missing url",
			body:      `{}`,
			resolver:  &fakeResolver{},
			wantCode:  http.StatusBadRequest,
			wantError: "URL é obrigatória",
		},
		{
			name:      "invalid json",
			body:      `{"url":`,
			resolver:  &fakeResolver{},
			wantCode:  http.StatusBadRequest,
			wantError: msgInvalidBody,
		},
		{
			name:      "bad input",
			body:      `{"url":"https://vimeo.com/1"}`,
			resolver:  &fakeResolver{err: utils.BadInput(utils.ErrUnsupportedPlatform, "Plataforma não suportada. Use YouTube, Instagram, TikTok ou Facebook.")},
			wantCode:  http.StatusUnprocessableEntity,
			wantError: "Plataforma não suportada. Use YouTube, Instagram, TikTok ou Facebook.",
		},
		{
			name:      "upstream failure",
			body:      `{"url":"https://youtu.be/x"}`,
			resolver:  &fakeResolver{err: utils.Upstream(utils.ErrYTDLPFailed, "ERROR: boom")},
			wantCode:  http.StatusUnprocessableEntity,
			wantError: "Erro ao extrair metadados: ERROR: boom",
		},
		{
			name:      "malformed output",
			body:      `{"url":"https://youtu.be/x"}`,
			resolver:  &fakeResolver{err: utils.Upstream(fmt.Errorf("%w: eof", utils.ErrMalformedOutput), "failed to parse metadata")},
			wantCode:  http.StatusUnprocessableEntity,
			wantError: "Erro ao processar metadados do conteúdo",
		},
		{
			name:      "internal",
			body:      `{"url":"https://youtu.be/x"}`,
			resolver:  &fakeResolver{err: errors.New("unexpected")},
			wantCode:  http.StatusInternalServerError,
			wantError: "Erro interno do servidor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(newTestEngine(tt.resolver), "/metadata", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantCode, w.Body.String())
			}
			body := decode(t, w)
			if body["success"] != false || body["error"] != tt.wantError {
				t.Errorf("body = %v, want error %q", body, tt.wantError)
			}
		})
	}
}

func TestMetadataHandlerSuccess(t *testing.T) {
	info := models.PlaceholderMediaInfo(models.PlatformYouTube)
	info.Title = "X"
	info.Duration = 42
	w := post(newTestEngine(&fakeResolver{info: &info}), "/metadata", `{"url":"https://youtu.be/x"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	meta, ok := body["metadata"].(map[string]any)
	if body["success"] != true || !ok {
		t.Fatalf("body = %v", body)
	}
	if meta["title"] != "X" || meta["duration"] != float64(42) || meta["platform"] != "youtube" || meta["availability"] != "public" {
		t.Errorf("metadata = %v", meta)
	}
}

func TestDownloadHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := &fakeResolver{download: &models.DownloadResult{
			DownloadURL:      "https://cdn.example/v.mp4",
			MediaInfo:        models.PlaceholderMediaInfo(models.PlatformTikTok),
			SupportedFormats: []string{"mp4", "mp3"},
		}}
		w := post(newTestEngine(r), "/download", `{"url":"https://www.tiktok.com/@u/video/1","format":"mp3"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		body := decode(t, w)
		if body["success"] != true || body["download_url"] != "https://cdn.example/v.mp4" {
			t.Errorf("body = %v", body)
		}
		if _, ok := body["media_info"].(map[string]any); !ok {
			t.Errorf("media_info missing: %v", body)
		}
		if r.gotRequest.Format != "mp3" || r.gotRequest.Quality != "" {
			t.Errorf("request = %+v", r.gotRequest)
		}
	})

	t.Run("empty download url", func(t *testing.T) {
		r := &fakeResolver{err: utils.Upstream(utils.ErrEmptyDownloadURL, "yt-dlp returned no download url")}
		w := post(newTestEngine(r), "/download", `{"url":"https://youtu.be/x"}`)
		if w.Code != http.StatusUnprocessableEntity || decode(t, w)["error"] != "Não foi possível obter URL de download" {
			t.Errorf("status = %d body = %s", w.Code, w.Body.String())
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		r := &fakeResolver{err: utils.Upstream(utils.ErrTimeout, "timeout")}
		w := post(newTestEngine(r), "/download", `{"url":"https://youtu.be/x"}`)
		if w.Code != http.StatusUnprocessableEntity || decode(t, w)["error"] != "Erro ao gerar URL de download: timeout" {
			t.Errorf("status = %d body = %s", w.Code, w.Body.String())
		}
	})

	t.Run("missing url", func(t *testing.T) {
		w := post(newTestEngine(&fakeResolver{}), "/download", ``)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestHealthHandler(t *testing.T) {
	t.Run("available", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		newTestEngine(&fakeResolver{version: "2024.08.06"}).ServeHTTP(w, req)

		body := decode(t, w)
		if w.Code != http.StatusOK || body["ytdlp"] != "available" || body["version"] != "2024.08.06" || body["status"] != "healthy" {
			t.Errorf("status = %d body = %v", w.Code, body)
		}
	})

	t.Run("unavailable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		newTestEngine(&fakeResolver{probeErr: utils.ErrYTDLPNotFound}).ServeHTTP(w, req)

		body := decode(t, w)
		if w.Code != http.StatusOK || body["ytdlp"] != "unavailable" || body["version"] != nil {
			t.Errorf("status = %d body = %v", w.Code, body)
		}
	})
}

func TestStatusAndNotFound(t *testing.T) {
	e := newTestEngine(&fakeResolver{})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	body := decode(t, w)
	yt, ok := body["youtube"].(map[string]any)
	if w.Code != http.StatusOK || !ok || yt["supported"] != true || yt["status"] != "operational" {
		t.Errorf("status body = %v", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	w = httptest.NewRecorder()
	e.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound || decode(t, w)["error"] != "Endpoint não encontrado" {
		t.Errorf("404 status = %d body = %s", w.Code, w.Body.String())
	}
}
