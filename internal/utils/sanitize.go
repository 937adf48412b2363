package utils

import "strings"

// argReplacer 删除 shell 元字符并转义单引号
var argReplacer = strings.NewReplacer(
	";", "",
	"&", "",
	"|", "",
	"`", "",
	"$", "",
	"(", "",
	")", "",
	"{", "",
	"}", "",
	"[", "",
	"]", "",
	"'", `\'`,
)

// SanitizeArg 清理将进入子进程命令行的参数.
// 不保证幂等, 调用方必须在构建命令时只调用一次.
func SanitizeArg(token string) string {
	return argReplacer.Replace(token)
}

// SanitizeArgs 逐个清理参数
func SanitizeArgs(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = SanitizeArg(t)
	}
	return out
}
