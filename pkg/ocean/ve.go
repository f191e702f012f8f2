package ocean

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"ocean-df/pkg/evm_client"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// MaxAllocation 所有分配之和的上限（100.00%，合约中为 uint32）
const MaxAllocation = 10000

var ErrAllocationExceeded = errors.New("total allocation exceeds 10000")

// LockedBalance veOCEAN 锁仓状态
type LockedBalance struct {
	Amount *big.Int
	End    uint64
}

// Active 锁仓未到期
func (l LockedBalance) Active(now uint64) bool {
	return l.Amount != nil && l.Amount.Sign() > 0 && l.End > now
}

// VeOcean 投票托管合约
type VeOcean struct {
	c *contract
}

func NewVeOcean(address common.Address, tx *evm_client.Transactor) *VeOcean {
	return &VeOcean{c: newContract("veOCEAN", address, parsedVeOcean, tx)}
}

func (v *VeOcean) Address() common.Address { return v.c.address }

func (v *VeOcean) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return v.c.callBig(ctx, "balanceOf", owner)
}

func (v *VeOcean) Locked(ctx context.Context, owner common.Address) (LockedBalance, error) {
	values, err := v.c.call(ctx, "locked", owner)
	if err != nil {
		return LockedBalance{}, err
	}
	if len(values) != 2 {
		return LockedBalance{}, fmt.Errorf("veOCEAN.locked: %w", ErrUnexpectedOutput)
	}
	amount, ok1 := values[0].(*big.Int)
	end, ok2 := values[1].(*big.Int)
	if !ok1 || !ok2 {
		return LockedBalance{}, fmt.Errorf("veOCEAN.locked: %w", ErrUnexpectedOutput)
	}
	return LockedBalance{Amount: amount, End: end.Uint64()}, nil
}

// CreateLock 锁定 value 个 OCEAN(wei) 至 unlockTime，合约会向下取整到周
func (v *VeOcean) CreateLock(ctx context.Context, value *big.Int, unlockTime uint64) (*types.Receipt, error) {
	return v.c.transact(ctx, "create_lock", value, new(big.Int).SetUint64(unlockTime))
}

func (v *VeOcean) IncreaseAmount(ctx context.Context, value *big.Int) (*types.Receipt, error) {
	return v.c.transact(ctx, "increase_amount", value)
}

// Withdraw 取回已到期的锁仓
func (v *VeOcean) Withdraw(ctx context.Context) (*types.Receipt, error) {
	return v.c.transact(ctx, "withdraw")
}

// VeAllocate 将 veOCEAN 投票权分配到数据资产
type VeAllocate struct {
	c *contract
}

func NewVeAllocate(address common.Address, tx *evm_client.Transactor) *VeAllocate {
	return &VeAllocate{c: newContract("veAllocate", address, parsedVeAllocate, tx)}
}

func (a *VeAllocate) Address() common.Address { return a.c.address }

func (a *VeAllocate) TotalAllocation(ctx context.Context, user common.Address) (*big.Int, error) {
	return a.c.callBig(ctx, "getTotalAllocation", user)
}

func (a *VeAllocate) Allocation(ctx context.Context, user, nft common.Address, chainID *big.Int) (*big.Int, error) {
	return a.c.callBig(ctx, "getveAllocation", user, nft, chainID)
}

// SetAllocation 设置对 nft 的分配，替换原有值；替换后总和不得超过 MaxAllocation
func (a *VeAllocate) SetAllocation(ctx context.Context, amount uint64, nft common.Address, chainID *big.Int) (*types.Receipt, error) {
	if amount > MaxAllocation {
		return nil, fmt.Errorf("allocation %d: %w", amount, ErrAllocationExceeded)
	}

	user := a.c.tx.From()
	total, err := a.TotalAllocation(ctx, user)
	if err != nil {
		return nil, err
	}
	current, err := a.Allocation(ctx, user, nft, chainID)
	if err != nil {
		return nil, err
	}

	next := new(big.Int).Sub(total, current)
	next.Add(next, new(big.Int).SetUint64(amount))
	if next.Cmp(big.NewInt(MaxAllocation)) > 0 {
		return nil, fmt.Errorf("allocation would total %s: %w", next, ErrAllocationExceeded)
	}

	return a.c.transact(ctx, "setAllocation", new(big.Int).SetUint64(amount), nft, chainID)
}

// FeeDistributor veOCEAN 持有者的奖励分发合约
type FeeDistributor struct {
	c *contract
}

func NewFeeDistributor(address common.Address, tx *evm_client.Transactor) *FeeDistributor {
	return &FeeDistributor{c: newContract("veFeeDistributor", address, parsedFeeDistributor, tx)}
}

func (d *FeeDistributor) Address() common.Address { return d.c.address }

func (d *FeeDistributor) Claim(ctx context.Context) (*types.Receipt, error) {
	return d.c.transact(ctx, "claim")
}
