package walkthrough

import (
	"context"
	"errors"
	"fmt"

	"ocean-df/internal/walkthrough/cache"
	"ocean-df/internal/walkthrough/config"
	"ocean-df/pkg/evm_client"
	"ocean-df/pkg/logger"
	"ocean-df/pkg/ocean"
	"ocean-df/pkg/provider"

	"go.uber.org/zap"
)

// ErrAssertion 步骤后置条件（余额检查）不成立
var ErrAssertion = errors.New("walkthrough assertion failed")

func assertionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAssertion, fmt.Sprintf(format, args...))
}

// AddressLoader 读取指定网络的合约地址
type AddressLoader func(network string) (ocean.Addresses, error)

// Deps 会话依赖；链连接由调用方建立
type Deps struct {
	Backend       evm_client.Backend
	RPC           evm_client.RPCCaller
	Provider      *provider.Client
	State         *cache.StateCache
	Observers     []evm_client.ReceiptObserver
	LoadAddresses AddressLoader
}

// Session 一次演练的上下文，步骤之间通过它传递产出
type Session struct {
	cfg  config.Config
	tl   *zap.Logger
	deps Deps

	Wallet  *evm_client.Wallet
	Ocean   *ocean.Ocean
	Chain   *evm_client.DevChain
	ChainID uint64

	DataNFT    *ocean.DataNFT
	Datatoken  *ocean.Datatoken
	Asset      *ocean.Asset
	ExchangeID ocean.ExchangeID
}

func NewSession(cfg config.Config, deps Deps, tl *zap.Logger) *Session {
	if deps.LoadAddresses == nil {
		deps.LoadAddresses = func(network string) (ocean.Addresses, error) {
			return ocean.LoadAddresses(cfg.Network.AddressFile, network)
		}
	}
	return &Session{cfg: cfg, deps: deps, tl: tl}
}

func (s *Session) log(ctx context.Context) *zap.Logger {
	return logger.WithTrace(ctx, s.tl)
}

func (s *Session) requireConnected() error {
	if s.Ocean == nil {
		return errors.New("session not connected")
	}
	return nil
}
