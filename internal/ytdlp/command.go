package ytdlp

import (
	"os"

	"vsocial/resolver-service/internal/utils"
)

// 各操作的内置参数
var (
	MetadataFlags = []string{"--dump-json", "--no-download", "--ignore-errors", "--no-warnings", "--skip-download"}
	// SecondaryMetadataFlags 下载解析后的补充元数据请求
	SecondaryMetadataFlags = []string{"--dump-json", "--no-download"}
	VersionFlags           = []string{"--version"}
)

// DownloadURLFlags 只输出解析后的媒体地址
func DownloadURLFlags(selector string) []string {
	return []string{"--get-url", "--format", selector, "--no-warnings"}
}

// Command 一次调用的参数组成.
// Flags (含格式选择器) 与策略参数是内置常量, 不做清理; 其余字段来自调用方或运维配置, 构建时各清理一次.
type Command struct {
	Flags        []string
	DefaultArgs  []string
	Proxy        string
	CookieFile   string
	PlatformArgs []string
	URL          string
}

// Args 构建参数列表, URL 位于最后
func (c Command) Args() []string {
	args := make([]string, 0, len(c.Flags)+len(c.DefaultArgs)+len(c.PlatformArgs)+5)
	args = append(args, c.Flags...)

	// 添加默认参数
	args = append(args, utils.SanitizeArgs(c.DefaultArgs)...)

	// 添加代理 (如果配置了)
	if c.Proxy != "" {
		args = append(args, "--proxy", utils.SanitizeArg(c.Proxy))
	}

	// 添加 cookie 文件 (如果存在)
	if c.CookieFile != "" {
		if _, err := os.Stat(c.CookieFile); err == nil {
			args = append(args, "--cookies", utils.SanitizeArg(c.CookieFile))
		}
	}

	// 添加额外参数 (平台特定)
	args = append(args, utils.SanitizeArgs(c.PlatformArgs)...)

	if c.URL != "" {
		args = append(args, utils.SanitizeArg(c.URL))
	}
	return args
}
