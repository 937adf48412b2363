package ytdlp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"vsocial/resolver-service/internal/models"
	"vsocial/resolver-service/internal/utils"
)

// VideoInfo yt-dlp返回的视频信息
type VideoInfo struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Uploader     string  `json:"uploader"`
	Channel      string  `json:"channel"`
	Thumbnail    string  `json:"thumbnail"`
	Duration     float64 `json:"duration"`
	ViewCount    int64   `json:"view_count"`
	LikeCount    int64   `json:"like_count"`
	UploadDate   string  `json:"upload_date"`
	IsLive       bool    `json:"is_live"`
	Availability string  `json:"availability"`
}

// ParseVideoInfo 解析输出中的第一个JSON对象
func ParseVideoInfo(output string) (*VideoInfo, error) {
	if strings.TrimSpace(output) == "" {
		return nil, fmt.Errorf("%w: empty output", utils.ErrMalformedOutput)
	}

	var info VideoInfo
	decoder := json.NewDecoder(strings.NewReader(output))
	if err := decoder.Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrMalformedOutput, err)
	}
	return &info, nil
}

// ToMediaInfo 转换为标准化的媒体信息, 缺失字段使用默认值
func (v *VideoInfo) ToMediaInfo(platform models.Platform) models.MediaInfo {
	return models.MediaInfo{
		Title:        lo.CoalesceOrEmpty(v.Title, models.PlaceholderTitle(platform)),
		Description:  v.Description,
		Author:       lo.CoalesceOrEmpty(v.Uploader, v.Channel, models.DefaultAuthor),
		Thumbnail:    v.Thumbnail,
		Duration:     v.Duration,
		Platform:     platform,
		ViewCount:    v.ViewCount,
		LikeCount:    v.LikeCount,
		UploadDate:   v.UploadDate,
		IsLive:       v.IsLive,
		Availability: lo.CoalesceOrEmpty(v.Availability, models.DefaultAvailability),
	}
}
