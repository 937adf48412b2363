package adapter

import (
	"path/filepath"

	"vsocial/resolver-service/internal/config"
	"vsocial/resolver-service/internal/models"
	"vsocial/resolver-service/internal/ytdlp"
)

// Adapter 平台适配器接口
type Adapter interface {
	// Platform 适配的平台
	Platform() models.Platform
	// Strategies 回退策略列表, nil 表示单次调用
	Strategies() []ytdlp.Strategy
	// ExtraArgs 运维配置的平台额外参数
	ExtraArgs() []string
	// CookieFile cookie 文件路径, 可能不存在
	CookieFile() string
	// SupportedFormats 可选的输出格式
	SupportedFormats() []string
}

// Registry 平台适配器注册表
type Registry struct {
	adapters map[models.Platform]Adapter
}

// NewRegistry 根据配置为每个支持的平台创建适配器
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{adapters: make(map[models.Platform]Adapter, len(models.SupportedPlatforms))}
	for _, p := range models.SupportedPlatforms {
		pc := cfg.Platform(string(p))
		cookieFile := resolveCookieFile(cfg.YTDLP.CookiesDir, p, pc.CookieFile)

		if p == models.PlatformYouTube {
			r.adapters[p] = NewYouTubeAdapter(cookieFile, pc.ExtraArgs)
		} else {
			r.adapters[p] = NewGenericAdapter(p, cookieFile, pc.ExtraArgs)
		}
	}
	return r
}

// Get 获取平台适配器, 未注册的平台使用通用适配器
func (r *Registry) Get(p models.Platform) Adapter {
	if a, ok := r.adapters[p]; ok {
		return a
	}
	return NewGenericAdapter(p, "", nil)
}

// resolveCookieFile 平台未显式配置时使用 <cookies_dir>/<platform>.txt
func resolveCookieFile(cookiesDir string, p models.Platform, configured string) string {
	if configured != "" {
		return configured
	}
	if cookiesDir == "" {
		return ""
	}
	return filepath.Join(cookiesDir, string(p)+".txt")
}
