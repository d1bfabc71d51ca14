package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SimbaKVis/backend-main/config"
	applogger "github.com/SimbaKVis/backend-main/pkg/logger"
)

// App 命令共享的依赖
type App struct {
	cfg    *config.Config
	logger *zap.Logger
}

var (
	configPath string
	app        = &App{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shiftctl",
		Short: "Shift scheduler admin CLI",
		Long:  `Administrative commands for the shift scheduler: database migrations, seed data and password hashes.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				app.logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径（默认 ./config/config.yaml）")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp 加载配置并初始化日志
func initApp() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	app.cfg = cfg

	app.logger, err = applogger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	return nil
}
