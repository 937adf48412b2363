package utils

import (
	"net/url"
	"strings"
)

// IsValidURL 验证URL格式是否有效
func IsValidURL(rawURL string) bool {
	if strings.TrimSpace(rawURL) == "" {
		return false
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	// 必须是带协议的绝对URL
	if u.Scheme == "" {
		return false
	}

	// 必须有host (或 mailto: 之类的 opaque 部分)
	if u.Host == "" && u.Opaque == "" {
		return false
	}

	return true
}
