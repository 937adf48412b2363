package utils

import (
	"strings"
)

// FirstLine 返回输出中第一行非空内容
func FirstLine(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
