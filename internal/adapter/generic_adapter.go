package adapter

import (
	"vsocial/resolver-service/internal/models"
	"vsocial/resolver-service/internal/ytdlp"
)

// GenericAdapter 通用平台适配器, 单次调用不使用回退策略
type GenericAdapter struct {
	platform   models.Platform
	cookieFile string
	args       []string
}

// NewGenericAdapter 创建通用适配器
func NewGenericAdapter(platform models.Platform, cookieFile string, extraArgs []string) *GenericAdapter {
	return &GenericAdapter{
		platform:   platform,
		cookieFile: cookieFile,
		args:       extraArgs,
	}
}

func (a *GenericAdapter) Platform() models.Platform { return a.platform }

func (a *GenericAdapter) Strategies() []ytdlp.Strategy { return nil }

func (a *GenericAdapter) ExtraArgs() []string { return a.args }

func (a *GenericAdapter) CookieFile() string { return a.cookieFile }

func (a *GenericAdapter) SupportedFormats() []string {
	return []string{"mp4", "mp3"}
}
