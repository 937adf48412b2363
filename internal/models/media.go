package models

import (
	"fmt"

	"github.com/samber/mo"
)

// Platform 支持的平台
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformFacebook  Platform = "facebook"
)

// SupportedPlatforms 按检测优先级排列的平台列表
var SupportedPlatforms = []Platform{
	PlatformInstagram,
	PlatformTikTok,
	PlatformFacebook,
	PlatformYouTube,
}

const (
	// DefaultAuthor 作者缺失时的占位
	DefaultAuthor = "Desconhecido"
	// DefaultAvailability 可见性缺失时的占位
	DefaultAvailability = "public"

	DefaultQuality = "best"
	DefaultFormat  = "mp4"
)

// ValidationResult URL校验结果
type ValidationResult struct {
	IsValid  bool                `json:"is_valid"`
	Platform mo.Option[Platform] `json:"platform"`
	Message  string              `json:"message,omitempty"`
	Err      error               `json:"-"`
}

// Valid 构造有效结果 (必然携带平台)
func Valid(p Platform) ValidationResult {
	return ValidationResult{IsValid: true, Platform: mo.Some(p)}
}

// Invalid 构造无效结果, err 为对应的哨兵错误
func Invalid(err error, message string) ValidationResult {
	return ValidationResult{IsValid: false, Platform: mo.None[Platform](), Message: message, Err: err}
}

// MediaInfo 标准化后的媒体信息
type MediaInfo struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Author       string   `json:"author"`
	Thumbnail    string   `json:"thumbnail"`
	Duration     float64  `json:"duration"`
	Platform     Platform `json:"platform"`
	ViewCount    int64    `json:"view_count"`
	LikeCount    int64    `json:"like_count"`
	UploadDate   string   `json:"upload_date"`
	IsLive       bool     `json:"is_live"`
	Availability string   `json:"availability"`
}

// PlaceholderTitle 平台占位标题
func PlaceholderTitle(p Platform) string {
	return fmt.Sprintf("Conteúdo de %s", p)
}

// PlaceholderMediaInfo 仅由平台推导出的占位媒体信息
func PlaceholderMediaInfo(p Platform) MediaInfo {
	return MediaInfo{
		Title:        PlaceholderTitle(p),
		Author:       DefaultAuthor,
		Platform:     p,
		Availability: DefaultAvailability,
	}
}

// DownloadRequest 下载地址解析请求
type DownloadRequest struct {
	URL     string `json:"url"`
	Quality string `json:"quality"`
	Format  string `json:"format"`
}

// WithDefaults 填充默认的清晰度和格式
func (r DownloadRequest) WithDefaults() DownloadRequest {
	if r.Quality == "" {
		r.Quality = DefaultQuality
	}
	if r.Format == "" {
		r.Format = DefaultFormat
	}
	return r
}

// DownloadResult 下载地址解析结果
type DownloadResult struct {
	DownloadURL      string    `json:"download_url"`
	MediaInfo        MediaInfo `json:"media_info"`
	SupportedFormats []string  `json:"supported_formats"`
}

// PlatformStatus 平台状态
type PlatformStatus struct {
	Supported bool     `json:"supported"`
	Status    string   `json:"status"`
	Formats   []string `json:"formats"`
}
