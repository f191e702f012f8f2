package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ocean-df/internal/walkthrough"
	"ocean-df/internal/walkthrough/config"
	"ocean-df/pkg/logger"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "walkthrough",
		Short:         "Ocean Data Farming walkthrough against a local barge chain",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		fmt.Sprintf("config file (default %s)", config.DefaultConfigPath))

	commands := []struct {
		cmd   walkthrough.Command
		short string
	}{
		{walkthrough.CommandRun, "fund, lock OCEAN, publish, allocate, wash-consume and claim rewards"},
		{walkthrough.CommandConsume, "buy and consume the dataset published by a previous run"},
		{walkthrough.CommandClaim, "advance to the next epoch and claim veFeeDistributor rewards"},
		{walkthrough.CommandBalances, "show ETH, OCEAN, veOCEAN and datatoken balances"},
	}
	for _, c := range commands {
		name := c.cmd
		root.AddCommand(&cobra.Command{
			Use:   string(name),
			Short: c.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return execute(cmd.Context(), configPath, name)
			},
		})
	}
	return root
}

func execute(ctx context.Context, configPath string, cmd walkthrough.Command) error {
	// 初始化配置文件
	cfg, err := config.InitConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	// 初始化 trace provider
	shutdownTrace := logger.InitTrace("ocean-df", "walkthrough")
	defer func() { _ = shutdownTrace(context.Background()) }()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 启动主 span
	ctx, span := logger.StartSpan(ctx, "main", string(cmd), attribute.String("network", cfg.Network.Name))
	defer span.End()

	// 创建 root logger 并注入 trace 上下文
	rootLogger := logger.NewLogger("walkthrough", logger.Options{Dir: cfg.Log.Dir, Console: cfg.Log.Console})
	defer func() { _ = rootLogger.Sync() }()
	logger.SetLogLevel(cfg.Log.Level)
	tl := logger.WithTrace(ctx, rootLogger)

	core, err := walkthrough.New(ctx, cfg, tl)
	if err != nil {
		tl.Error("Failed to initialize walkthrough", zap.Error(err))
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		core.Stop(stopCtx)
	}()

	if err := core.Run(ctx, cmd); err != nil {
		span.RecordError(err)
		tl.Error("Walkthrough failed", zap.String("command", string(cmd)), zap.Error(err))
		return err
	}
	return nil
}
