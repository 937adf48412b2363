package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vsocial/resolver-service/internal/models"
	"vsocial/resolver-service/internal/utils"
)

const (
	msgURLRequired      = "URL é obrigatória"
	msgInvalidBody      = "Corpo da requisição inválido"
	msgBodyTooLarge     = "Corpo da requisição muito grande"
	msgMetadataFailed   = "Erro ao extrair metadados: "
	msgMetadataParse    = "Erro ao processar metadados do conteúdo"
	msgDownloadFailed   = "Erro ao gerar URL de download: "
	msgNoDownloadURL    = "Não foi possível obter URL de download"
	msgInternalError    = "Erro interno do servidor"
	msgEndpointNotFound = "Endpoint não encontrado"

	healthProbeTimeout = 10 * time.Second
)

// Resolver 解析服务接口
type Resolver interface {
	Metadata(ctx context.Context, url string) (*models.MediaInfo, error)
	ResolveDownload(ctx context.Context, req models.DownloadRequest) (*models.DownloadResult, error)
	Probe(ctx context.Context) (string, error)
	PlatformStatus() map[models.Platform]models.PlatformStatus
}

// HTTPHandler HTTP 处理器
type HTTPHandler struct {
	resolver Resolver
	logger   *zap.Logger
}

// NewHTTPHandler 创建 HTTP 处理器
func NewHTTPHandler(resolver Resolver, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		resolver: resolver,
		logger:   logger,
	}
}

type metadataRequest struct {
	URL string `json:"url"`
}

// Health 健康检查, 同时探测 yt-dlp 是否可用
func (h *HTTPHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
	defer cancel()

	resp := models.HealthResponse{
		Success:   true,
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		YTDLP:     "unavailable",
	}

	version, err := h.resolver.Probe(ctx)
	if err != nil {
		h.logger.Warn("yt-dlp probe failed", zap.Error(err))
	} else {
		resp.YTDLP = "available"
		resp.Version = &version
	}

	c.JSON(http.StatusOK, resp)
}

// Metadata 获取媒体元数据
func (h *HTTPHandler) Metadata(c *gin.Context) {
	var req metadataRequest
	if !h.bind(c, &req) {
		return
	}
	if req.URL == "" {
		models.BadRequest(c, msgURLRequired)
		return
	}

	info, err := h.resolver.Metadata(c.Request.Context(), req.URL)
	if err != nil {
		h.writeError(c, err, msgMetadataFailed, msgMetadataParse)
		return
	}

	c.JSON(http.StatusOK, models.MetadataResponse{Success: true, Metadata: *info})
}

// Download 解析下载地址
func (h *HTTPHandler) Download(c *gin.Context) {
	var req models.DownloadRequest
	if !h.bind(c, &req) {
		return
	}
	if req.URL == "" {
		models.BadRequest(c, msgURLRequired)
		return
	}

	result, err := h.resolver.ResolveDownload(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, utils.ErrEmptyDownloadURL) {
			models.Unprocessable(c, msgNoDownloadURL)
			return
		}
		h.writeError(c, err, msgDownloadFailed, msgInternalError)
		return
	}

	c.JSON(http.StatusOK, models.DownloadResponse{Success: true, DownloadResult: *result})
}

// Status 平台支持状态
func (h *HTTPHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.resolver.PlatformStatus())
}

// NotFound 未知路由
func (h *HTTPHandler) NotFound(c *gin.Context) {
	models.NotFound(c, msgEndpointNotFound)
}

// bind 解析请求体, 空请求体视为空对象
func (h *HTTPHandler) bind(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			models.Error(c, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return false
		}
		models.BadRequest(c, msgInvalidBody)
		return false
	}
	return true
}

// writeError 按错误类别输出响应
func (h *HTTPHandler) writeError(c *gin.Context, err error, upstreamPrefix, malformedMessage string) {
	switch utils.CategoryOf(err) {
	case utils.CategoryBadInput:
		models.Unprocessable(c, err.Error())
	case utils.CategoryUpstream:
		if errors.Is(err, utils.ErrMalformedOutput) {
			models.Unprocessable(c, malformedMessage)
			return
		}
		models.Unprocessable(c, upstreamPrefix+err.Error())
	default:
		h.logger.Error("Internal error", zap.String("path", c.FullPath()), zap.Error(err))
		models.InternalError(c, msgInternalError)
	}
}
