package repository

import (
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"
)

type RedisClient = *redis.Client
type DBClient = *gorm.DB
type MQClient = *kafka.Writer

// Repository 可选组件未配置时返回 nil
type Repository interface {
	GetEthClient() *ethclient.Client
	GetRPCClient() *rpc.Client
	GetRDB() RedisClient
	GetDB() DBClient
	GetMQ() MQClient
	Close() error
}
