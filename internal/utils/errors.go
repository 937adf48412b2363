package utils

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// URL相关错误
	ErrInvalidURL          = errors.New("invalid URL")
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// 视频相关错误
	ErrVideoNotFound  = errors.New("video not found")
	ErrVideoPrivate   = errors.New("video is private")
	ErrVideoDeleted   = errors.New("video has been deleted")
	ErrGeoRestricted  = errors.New("video is geo-restricted")
	ErrAgeRestricted  = errors.New("video is age-restricted")
	ErrCopyrightClaim = errors.New("video removed due to copyright claim")
	ErrBotDetected    = errors.New("bot detection challenge")

	// 执行相关错误
	ErrTimeout             = errors.New("timeout")
	ErrOutputOverflow      = errors.New("output overflow")
	ErrYTDLPNotFound       = errors.New("yt-dlp binary not found")
	ErrYTDLPFailed         = errors.New("yt-dlp execution failed")
	ErrStrategiesExhausted = errors.New("all strategies exhausted")

	// 输出相关错误
	ErrMalformedOutput  = errors.New("malformed structured output")
	ErrEmptyDownloadURL = errors.New("empty download url")
)

// botChallengeMarkers 表示远端要求登录/人机验证的 stderr 片段
var botChallengeMarkers = []string{
	"sign in to confirm you're not a bot",
	"sign in to confirm you’re not a bot",
	"confirm you're not a bot",
	"confirm you’re not a bot",
	"not a bot",
	"verify you are human",
}

// IsBotChallenge 判断诊断输出是否为人机验证挑战
func IsBotChallenge(stderr string) bool {
	lowerStderr := strings.ToLower(stderr)
	for _, marker := range botChallengeMarkers {
		if strings.Contains(lowerStderr, marker) {
			return true
		}
	}
	return false
}

// MapYTDLPError 将yt-dlp的错误输出映射到具体错误
func MapYTDLPError(stderr string) error {
	lowerStderr := strings.ToLower(stderr)

	switch {
	case IsBotChallenge(lowerStderr):
		return ErrBotDetected
	case strings.Contains(lowerStderr, "video unavailable"):
		return ErrVideoNotFound
	case strings.Contains(lowerStderr, "private video"):
		return ErrVideoPrivate
	case strings.Contains(lowerStderr, "has been deleted"):
		return ErrVideoDeleted
	case strings.Contains(lowerStderr, "not available in your country"):
		return ErrGeoRestricted
	case strings.Contains(lowerStderr, "age-restricted") || strings.Contains(lowerStderr, "confirm your age"):
		return ErrAgeRestricted
	case strings.Contains(lowerStderr, "copyright"):
		return ErrCopyrightClaim
	case strings.Contains(lowerStderr, "no such file"):
		return ErrYTDLPNotFound
	case strings.Contains(lowerStderr, "timed out") || strings.Contains(lowerStderr, "timeout"):
		return ErrTimeout
	default:
		return ErrYTDLPFailed
	}
}

// Category 错误类别, 供边界层区分
type Category string

const (
	CategoryBadInput Category = "bad_input"
	CategoryUpstream Category = "upstream"
	CategoryInternal Category = "internal"
)

// ExtractionError 解析流程的终止错误
type ExtractionError struct {
	Category Category
	Message  string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// BadInput 输入错误
func BadInput(err error, message string) *ExtractionError {
	return &ExtractionError{Category: CategoryBadInput, Message: message, Err: err}
}

// Upstream 外部工具错误
func Upstream(err error, format string, args ...any) *ExtractionError {
	return &ExtractionError{Category: CategoryUpstream, Message: fmt.Sprintf(format, args...), Err: err}
}

// Internal 内部错误
func Internal(err error, message string) *ExtractionError {
	return &ExtractionError{Category: CategoryInternal, Message: message, Err: err}
}

// CategoryOf 获取错误类别, 未分类的错误视为内部错误
func CategoryOf(err error) Category {
	var extractionErr *ExtractionError
	if errors.As(err, &extractionErr) {
		return extractionErr.Category
	}
	return CategoryInternal
}
