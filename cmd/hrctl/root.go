package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ogurasousui/hr-attendance/internal/platform/config"
	"github.com/ogurasousui/hr-attendance/internal/platform/logging"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "hrctl",
		Short:         "Operate the HR attendance database and spreadsheet imports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newTemplateCmd(),
		newImportCmd(opts),
	)
	return cmd
}

// load は設定ファイルを読み込み、設定に従ったロガーを生成します。
func (o *rootOptions) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(config.EffectivePath(o.configPath))
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
