package evm_client

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const (
	Week    = 7 * 86400
	MaxTime = 4 * 365 * 86400
)

// NextEpochStart 下一个周边界（1970-01-01 是周四，所以也是下一个周四 00:00 UTC）
func NextEpochStart(t uint64) uint64 {
	return t/Week*Week + Week
}

// DevChain 测试链（ganache / barge）的时间控制
type DevChain struct {
	backend Backend
	rpc     RPCCaller
	tl      *zap.Logger
}

func NewDevChain(backend Backend, rpc RPCCaller, tl *zap.Logger) *DevChain {
	return &DevChain{backend: backend, rpc: rpc, tl: tl}
}

// Time 最新块时间戳
func (c *DevChain) Time(ctx context.Context) (uint64, error) {
	header, err := c.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("latest header: %w", err)
	}
	return header.Time, nil
}

// Sleep 推进链上时间，下一个块生效
func (c *DevChain) Sleep(ctx context.Context, seconds uint64) error {
	var res any
	if err := c.rpc.CallContext(ctx, &res, "evm_increaseTime", seconds); err != nil {
		return fmt.Errorf("evm_increaseTime %d: %w", seconds, err)
	}
	return nil
}

// Mine 出一个空块
func (c *DevChain) Mine(ctx context.Context) error {
	var res any
	if err := c.rpc.CallContext(ctx, &res, "evm_mine"); err != nil {
		return fmt.Errorf("evm_mine: %w", err)
	}
	return nil
}

// AdvanceTo 将链上时间推进到 target 并出块，返回出块后的链上时间
func (c *DevChain) AdvanceTo(ctx context.Context, target uint64) (uint64, error) {
	now, err := c.Time(ctx)
	if err != nil {
		return 0, err
	}
	if target > now {
		if err := c.Sleep(ctx, target-now); err != nil {
			return 0, err
		}
	}
	if err := c.Mine(ctx); err != nil {
		return 0, err
	}

	after, err := c.Time(ctx)
	if err != nil {
		return 0, err
	}
	c.tl.Info("Advanced chain time",
		zap.Uint64("from", now),
		zap.Uint64("target", target),
		zap.Uint64("now", after))
	return after, nil
}
