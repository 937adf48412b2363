package detector

import (
	"errors"
	"strings"

	"vsocial/resolver-service/internal/models"
	"vsocial/resolver-service/internal/utils"
)

const (
	MessageMalformedURL        = "URL inválida. Verifique o formato da URL."
	MessageUnsupportedPlatform = "Plataforma não suportada. Use YouTube, Instagram, TikTok ou Facebook."
)

// platformRule 平台匹配规则
type platformRule struct {
	platform  models.Platform
	fragments []string
}

// PlatformDetector 平台检测器
type PlatformDetector struct {
	rules []platformRule
}

// NewPlatformDetector 创建平台检测器
func NewPlatformDetector() *PlatformDetector {
	// 顺序即优先级, 第一个命中的平台胜出
	return &PlatformDetector{
		rules: []platformRule{
			{models.PlatformInstagram, []string{"instagram.com", "instagr.am"}},
			{models.PlatformTikTok, []string{"tiktok.com", "vm.tiktok.com"}},
			{models.PlatformFacebook, []string{"facebook.com", "fb.com", "fb.watch"}},
			{models.PlatformYouTube, []string{"youtube.com", "youtu.be"}},
		},
	}
}

// Classify 校验URL并识别平台
func (d *PlatformDetector) Classify(url string) models.ValidationResult {
	platform, err := d.Detect(url)
	if err != nil {
		return models.Invalid(err, Message(err))
	}
	return models.Valid(platform)
}

// Message 检测错误对应的用户提示
func Message(err error) string {
	if errors.Is(err, utils.ErrInvalidURL) {
		return MessageMalformedURL
	}
	return MessageUnsupportedPlatform
}

// Detect 检测URL所属平台
func (d *PlatformDetector) Detect(url string) (models.Platform, error) {
	// 先验证URL格式
	if !utils.IsValidURL(url) {
		return "", utils.ErrInvalidURL
	}

	platform, ok := d.match(url)
	if !ok {
		return "", utils.ErrUnsupportedPlatform
	}
	return platform, nil
}

func (d *PlatformDetector) match(url string) (models.Platform, bool) {
	lowerURL := strings.ToLower(url)
	for _, rule := range d.rules {
		for _, fragment := range rule.fragments {
			if strings.Contains(lowerURL, fragment) {
				return rule.platform, true
			}
		}
	}
	return "", false
}
