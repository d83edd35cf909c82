package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hotelac/internal/app"
	"hotelac/internal/config"
	"hotelac/internal/logger"
)

var (
	cfgPath string
	port    int
	dbPath  string
)

func main() {
	root := &cobra.Command{
		Use:          "hotelac",
		Short:        "酒店中央空调调度与计费服务",
		SilenceUsage: true,
		RunE:         run,
	}
	root.Flags().StringVarP(&cfgPath, "config", "c", "", "配置文件路径(yaml),缺省使用内置默认值")
	root.Flags().IntVarP(&port, "port", "p", 0, "监听端口,覆盖配置文件")
	root.Flags().StringVar(&dbPath, "db", "", "sqlite 数据库路径,覆盖配置文件")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Port = port
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	application := app.New(cfg)
	if err := application.Initialize(); err != nil {
		return err
	}
	if err := application.Start(); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("收到退出信号,开始停机")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return application.Stop(ctx)
}
