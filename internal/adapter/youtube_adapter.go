package adapter

import (
	"vsocial/resolver-service/internal/models"
	"vsocial/resolver-service/internal/ytdlp"
)

// YouTubeAdapter YouTube平台适配器
type YouTubeAdapter struct {
	cookieFile string
	args       []string
}

// NewYouTubeAdapter 创建YouTube适配器
func NewYouTubeAdapter(cookieFile string, extraArgs []string) *YouTubeAdapter {
	return &YouTubeAdapter{
		cookieFile: cookieFile,
		args:       extraArgs,
	}
}

func (a *YouTubeAdapter) Platform() models.Platform { return models.PlatformYouTube }

// Strategies YouTube 容易触发人机验证, 依次尝试不同的客户端身份
func (a *YouTubeAdapter) Strategies() []ytdlp.Strategy {
	return ytdlp.YouTubeStrategies()
}

func (a *YouTubeAdapter) ExtraArgs() []string { return a.args }

func (a *YouTubeAdapter) CookieFile() string { return a.cookieFile }

func (a *YouTubeAdapter) SupportedFormats() []string {
	return []string{"mp4", "mp3", "webm"}
}
