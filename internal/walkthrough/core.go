package walkthrough

import (
	"context"
	"fmt"
	"time"

	"ocean-df/internal/walkthrough/cache"
	"ocean-df/internal/walkthrough/config"
	"ocean-df/internal/walkthrough/model"
	"ocean-df/internal/walkthrough/monitor"
	"ocean-df/internal/walkthrough/repository"
	"ocean-df/internal/walkthrough/step"
	"ocean-df/internal/walkthrough/writer"
	"ocean-df/internal/walkthrough/writer/txrecord"
	"ocean-df/pkg/evm_client"
	"ocean-df/pkg/provider"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Command 子命令对应的步骤组合
type Command string

const (
	CommandRun      Command = "run"
	CommandConsume  Command = "consume"
	CommandClaim    Command = "claim"
	CommandBalances Command = "balances"
)

const (
	StepConnect      = "connect"
	StepFundWallet   = "fund_wallet"
	StepLockOcean    = "lock_ocean"
	StepPublishAsset = "publish_asset"
	StepAllocate     = "allocate"
	StepWashConsume  = "wash_consume"
	StepClaimRewards = "claim_rewards"
	StepBalances     = "balances"
)

// Pipeline 按命令组装步骤
func (s *Session) Pipeline(cmd Command, tl *zap.Logger) (*step.Pipeline, error) {
	p := step.NewPipeline(tl).Register(StepConnect, s.Connect)
	switch cmd {
	case CommandRun:
		p.Register(StepFundWallet, s.FundWallet).
			Register(StepLockOcean, s.LockOcean).
			Register(StepPublishAsset, s.PublishAsset).
			Register(StepAllocate, s.Allocate).
			Register(StepWashConsume, s.WashConsume).
			Register(StepClaimRewards, s.ClaimRewards)
	case CommandConsume:
		p.Register(StepWashConsume, s.WashConsume)
	case CommandClaim:
		p.Register(StepClaimRewards, s.ClaimRewards)
	case CommandBalances:
		p.Register(StepBalances, s.Balances)
	default:
		return nil, fmt.Errorf("unknown command %q", cmd)
	}
	return p, nil
}

type Core struct {
	cfg     config.Config
	tl      *zap.Logger
	runID   string
	repo    repository.Repository
	journal *writer.AsyncBatchWriter[model.TxRecord]
	metrics *monitor.MetricsServer
	session *Session
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Core, error) {
	runID := uuid.NewString()
	tl := logger.With(zap.String("run_id", runID))

	// 初始化repo
	repo, err := repository.New(ctx, cfg, tl)
	if err != nil {
		return nil, err
	}

	observers := []evm_client.ReceiptObserver{monitor.TxObserver{}}

	// 交易归档：Postgres / Kafka 均为可选
	var sinks writer.MultiWriter[model.TxRecord]
	if db := repo.GetDB(); db != nil {
		if err := txrecord.AutoMigrate(ctx, db); err != nil {
			tl.Warn("migrate tx records failed, skip postgres journal", zap.Error(err))
		} else {
			sinks = append(sinks, txrecord.NewDbTxRecordWriter(db, tl))
		}
	}
	if mq := repo.GetMQ(); mq != nil {
		sinks = append(sinks, txrecord.NewKafkaTxRecordWriter(mq, tl, cfg.Kafka.TopicTx))
	}
	var journal *writer.AsyncBatchWriter[model.TxRecord]
	if len(sinks) > 0 {
		journal = writer.NewAsyncBatchWriter[model.TxRecord](tl, sinks, 20, time.Second, "tx_record", 1)
		observers = append(observers, txrecord.Observer{RunID: runID, Out: journal})
	}

	prov := provider.NewClient(provider.Config{
		URL:        cfg.Provider.URL,
		Timeout:    cfg.Provider.TimeoutDuration(),
		RateLimit:  cfg.Provider.RateLimit,
		MaxRetries: cfg.Provider.MaxRetries,
		UserAgent:  "ocean-df-walkthrough",
	}, tl)

	session := NewSession(cfg, Deps{
		Backend:   repo.GetEthClient(),
		RPC:       repo.GetRPCClient(),
		Provider:  prov,
		State:     cache.NewStateCache(tl, repo.GetRDB()),
		Observers: observers,
	}, tl)

	return &Core{
		cfg:     cfg,
		tl:      tl,
		runID:   runID,
		repo:    repo,
		journal: journal,
		metrics: monitor.NewMetricsServer(cfg.Monitor, tl),
		session: session,
	}, nil
}

// Run 执行命令对应的步骤，第一个失败的步骤终止整个流程
func (c *Core) Run(ctx context.Context, cmd Command) error {
	p, err := c.session.Pipeline(cmd, c.tl)
	if err != nil {
		return err
	}

	c.metrics.Run()
	if c.journal != nil {
		c.journal.Start(ctx)
	}

	c.tl.Info("Starting walkthrough", zap.String("command", string(cmd)), zap.Strings("steps", p.Names()))
	if err := p.Run(ctx); err != nil {
		return err
	}
	c.tl.Info("Walkthrough finished", zap.String("command", string(cmd)))
	return nil
}

// Stop 写完交易归档并关闭所有资源
func (c *Core) Stop(ctx context.Context) {
	if c.journal != nil {
		c.journal.Close()
	}
	if err := c.metrics.Stop(ctx); err != nil {
		c.tl.Warn("stop metrics server failed", zap.Error(err))
	}
	_ = c.repo.Close()
	c.tl.Info("Walkthrough core stopped.")
}
