package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vsocial/resolver-service/internal/config"
	"vsocial/resolver-service/internal/service"
	"vsocial/resolver-service/internal/ytdlp"
)

const defaultConfigPath = "config/dev.yaml"

// app 命令共享的依赖
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "resolver-service",
		Short:         "Resolve metadata and direct download URLs for social media content",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", defaultConfigPath, "Path to the YAML config file")

	rootCmd.AddCommand(
		newServeCmd(a),
		newMetadataCmd(a),
		newDownloadCmd(a),
		newProbeCmd(a),
		newValidateCmd(a),
	)
	return rootCmd
}

// setup 加载配置并初始化日志
func (a *app) setup() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		// 默认配置文件不存在时使用内置默认值
		if a.configPath != defaultConfigPath || !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		cfg = config.Default()
	}
	a.cfg = cfg

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) resolver() *service.ResolverService {
	runner := ytdlp.NewExecRunner(a.cfg.YTDLP.BinaryPath, a.logger)
	return service.NewResolverService(a.cfg, runner, a.logger)
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	zc := zap.NewProductionConfig()
	if err := zc.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	return zc.Build()
}
