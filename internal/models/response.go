package models

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// MetadataResponse 元数据响应
type MetadataResponse struct {
	Success  bool      `json:"success"`
	Metadata MediaInfo `json:"metadata"`
}

// DownloadResponse 下载地址响应
type DownloadResponse struct {
	Success bool `json:"success"`
	DownloadResult
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Success   bool    `json:"success"`
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	YTDLP     string  `json:"ytdlp"`
	Version   *string `json:"version"`
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{
		Success: false,
		Error:   message,
	})
}

// BadRequest 请求错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unprocessable 无法处理的内容
func Unprocessable(c *gin.Context, message string) {
	Error(c, http.StatusUnprocessableEntity, message)
}

// NotFound 未找到
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError 服务器错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
