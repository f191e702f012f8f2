package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ocean-df/internal/walkthrough/config"
	"ocean-df/pkg/database"
	"ocean-df/pkg/evm_client"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type repositoryImpl struct {
	cfg       config.Config
	logger    *zap.Logger
	db        *gorm.DB
	rdb       *redis.Client
	mq        *kafka.Writer
	ethClient *ethclient.Client
}

// New 连接链节点（必需），Postgres/Redis/Kafka 按配置可选，失败只告警
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (Repository, error) {
	r := &repositoryImpl{
		cfg:    cfg,
		logger: logger,
	}

	var err error
	r.ethClient, err = evm_client.Init(ctx, cfg.Network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Network.RPCURL, err)
	}

	r.initOptional(ctx)
	return r, nil
}

func (r *repositoryImpl) initOptional(ctx context.Context) {
	var err error

	// 初始化 PG（可选，DSN 为空则跳过）
	if strings.TrimSpace(r.cfg.Postgres.DSN) != "" {
		pgCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		r.db, err = database.InitPG(pgCtx, r.cfg.Postgres.DSN, database.PoolOptions{
			MaxIdleConns: r.cfg.Postgres.MaxIdleConns,
			MaxOpenConns: r.cfg.Postgres.MaxOpenConns,
		})
		cancel()
		if err != nil {
			r.logger.Warn("failed to connect to postgres, continue without it", zap.Error(err))
			r.db = nil
		}
	} else {
		r.logger.Debug("postgres dsn empty, skip postgres initialization")
	}

	// 初始化 RDB
	if strings.TrimSpace(r.cfg.Redis.Address) != "" {
		r.rdb = redis.NewClient(&redis.Options{
			Addr:     r.cfg.Redis.Address,
			Password: r.cfg.Redis.Password,
			DB:       r.cfg.Redis.DB,
			PoolSize: 4,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := r.rdb.Ping(pingCtx).Err(); err != nil {
			r.logger.Warn("failed to connect to redis, continue without it", zap.Error(err))
			_ = r.rdb.Close()
			r.rdb = nil
		}
	}

	if strings.TrimSpace(r.cfg.Kafka.Brokers) != "" {
		brokers := strings.Split(r.cfg.Kafka.Brokers, ",")
		r.mq = &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchSize:    100,
			RequiredAcks: kafka.RequireOne,
			MaxAttempts:  5,
			WriteTimeout: 2 * time.Second,
		}
	}
}

func (r *repositoryImpl) GetEthClient() *ethclient.Client {
	return r.ethClient
}

func (r *repositoryImpl) GetRPCClient() *rpc.Client {
	return r.ethClient.Client()
}

func (r *repositoryImpl) GetRDB() *redis.Client {
	return r.rdb
}

func (r *repositoryImpl) GetDB() *gorm.DB {
	return r.db
}

func (r *repositoryImpl) GetMQ() MQClient {
	return r.mq
}

func (r *repositoryImpl) Close() error {
	if r.db != nil {
		if sqlDB, err := r.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if r.rdb != nil {
		_ = r.rdb.Close()
	}
	if r.mq != nil {
		_ = r.mq.Close()
	}
	if r.ethClient != nil {
		r.ethClient.Close()
	}
	return nil
}
