package service

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"vsocial/resolver-service/internal/adapter"
	"vsocial/resolver-service/internal/config"
	"vsocial/resolver-service/internal/detector"
	"vsocial/resolver-service/internal/models"
	"vsocial/resolver-service/internal/utils"
	"vsocial/resolver-service/internal/ytdlp"
)

// ResolverService 元数据与下载地址解析服务
type ResolverService struct {
	detector  *detector.PlatformDetector
	adapters  *adapter.Registry
	runner    ytdlp.Runner
	sequencer *ytdlp.Sequencer
	limiter   *utils.ConcurrencyLimiter
	ytdlpCfg  config.YTDLPConfig
	limits    ytdlp.Limits
	logger    *zap.Logger
}

// NewResolverService 创建解析服务
func NewResolverService(cfg *config.Config, runner ytdlp.Runner, logger *zap.Logger) *ResolverService {
	if logger == nil {
		logger = zap.NewNop()
	}

	single := ytdlp.Limits{
		Timeout:        cfg.YTDLP.GetTimeout(),
		MaxOutputBytes: cfg.YTDLP.MaxOutputBytes,
	}
	perStrategy := ytdlp.Limits{
		Timeout:        cfg.YTDLP.GetStrategyTimeout(),
		MaxOutputBytes: cfg.YTDLP.MaxOutputBytes,
	}

	return &ResolverService{
		detector:  detector.NewPlatformDetector(),
		adapters:  adapter.NewRegistry(cfg),
		runner:    runner,
		sequencer: ytdlp.NewSequencer(runner, perStrategy, logger),
		limiter:   utils.NewConcurrencyLimiter(cfg.YTDLP.MaxConcurrent),
		ytdlpCfg:  cfg.YTDLP,
		limits:    single,
		logger:    logger,
	}
}

// ValidateURL 校验URL并识别平台
func (s *ResolverService) ValidateURL(url string) models.ValidationResult {
	return s.detector.Classify(url)
}

// classify 校验失败时返回 bad_input 错误, 消息可直接展示给调用方
func (s *ResolverService) classify(url string) (models.Platform, error) {
	result := s.ValidateURL(url)
	if platform, ok := result.Platform.Get(); result.IsValid && ok {
		return platform, nil
	}
	return "", utils.BadInput(result.Err, result.Message)
}

// execute 对平台执行一次编排: 敏感平台走回退序列, 其余平台单次调用
func (s *ResolverService) execute(ctx context.Context, adpt adapter.Adapter, flags []string, url string) (ytdlp.Result, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return ytdlp.Result{}, err
	}
	defer s.limiter.Release()

	cmd := ytdlp.Command{
		Flags:        flags,
		DefaultArgs:  s.ytdlpCfg.DefaultArgs,
		Proxy:        s.ytdlpCfg.Proxy,
		CookieFile:   adpt.CookieFile(),
		PlatformArgs: adpt.ExtraArgs(),
		URL:          url,
	}
	args := cmd.Args()

	if strategies := adpt.Strategies(); len(strategies) > 0 {
		return s.sequencer.Run(ctx, strategies, args)
	}

	result := s.runner.Run(ctx, args, s.limits)
	if !result.Success {
		if result.Kind == ytdlp.KindCanceled {
			return result, result.Err()
		}
		return result, utils.Upstream(result.Err(), "%s", result.FailureReason)
	}
	return result, nil
}

// Metadata 获取媒体元数据
func (s *ResolverService) Metadata(ctx context.Context, url string) (*models.MediaInfo, error) {
	platform, err := s.classify(url)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Extracting metadata",
		zap.String("url", url),
		zap.String("platform", string(platform)))

	result, err := s.execute(ctx, s.adapters.Get(platform), ytdlp.MetadataFlags, url)
	if err != nil {
		s.logger.Error("Metadata extraction failed",
			zap.String("url", url),
			zap.Error(err))
		return nil, err
	}

	info, err := ytdlp.ParseVideoInfo(result.Output)
	if err != nil {
		s.logger.Error("JSON parse error", zap.String("url", url), zap.Error(err))
		return nil, utils.Upstream(err, "failed to parse metadata")
	}

	mediaInfo := info.ToMediaInfo(platform)
	return &mediaInfo, nil
}

// ResolveDownload 解析直链下载地址
func (s *ResolverService) ResolveDownload(ctx context.Context, req models.DownloadRequest) (*models.DownloadResult, error) {
	req = req.WithDefaults()

	platform, err := s.classify(req.URL)
	if err != nil {
		return nil, err
	}
	adpt := s.adapters.Get(platform)

	selector := ytdlp.BuildFormatSelector(req.Quality, req.Format)
	s.logger.Info("Processing download",
		zap.String("url", req.URL),
		zap.String("quality", req.Quality),
		zap.String("format", req.Format),
		zap.String("selector", selector))

	result, err := s.execute(ctx, adpt, ytdlp.DownloadURLFlags(selector), req.URL)
	if err != nil {
		s.logger.Error("Download url resolution failed",
			zap.String("url", req.URL),
			zap.Error(err))
		return nil, err
	}

	downloadURL := utils.FirstLine(result.Output)
	if downloadURL == "" {
		return nil, utils.Upstream(utils.ErrEmptyDownloadURL, "yt-dlp returned no download url")
	}

	return &models.DownloadResult{
		DownloadURL:      downloadURL,
		MediaInfo:        s.displayInfo(ctx, adpt, req.URL),
		SupportedFormats: adpt.SupportedFormats(),
	}, nil
}

// displayInfo 尽力获取展示用的元数据, 失败时退化为占位信息
func (s *ResolverService) displayInfo(ctx context.Context, adpt adapter.Adapter, url string) models.MediaInfo {
	platform := adpt.Platform()

	result, err := s.execute(ctx, adpt, ytdlp.SecondaryMetadataFlags, url)
	if err != nil {
		s.logger.Warn("Failed to fetch media info", zap.String("url", url), zap.Error(err))
		return models.PlaceholderMediaInfo(platform)
	}

	info, err := ytdlp.ParseVideoInfo(result.Output)
	if err != nil {
		s.logger.Warn("Failed to parse media info JSON", zap.String("url", url), zap.Error(err))
		return models.PlaceholderMediaInfo(platform)
	}
	return info.ToMediaInfo(platform)
}

// Probe 查询 yt-dlp 版本, 不占用解析并发名额
func (s *ResolverService) Probe(ctx context.Context) (string, error) {
	args := ytdlp.Command{Flags: ytdlp.VersionFlags}.Args()
	result := s.runner.Run(ctx, args, s.limits)
	if !result.Success {
		return "", utils.Upstream(result.Err(), "%s", result.FailureReason)
	}
	return strings.TrimSpace(result.Output), nil
}

// PlatformStatus 各平台支持状态
func (s *ResolverService) PlatformStatus() map[models.Platform]models.PlatformStatus {
	return lo.SliceToMap(models.SupportedPlatforms, func(p models.Platform) (models.Platform, models.PlatformStatus) {
		return p, models.PlatformStatus{
			Supported: true,
			Status:    "operational",
			Formats:   s.adapters.Get(p).SupportedFormats(),
		}
	})
}
