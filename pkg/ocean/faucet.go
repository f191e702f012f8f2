package ocean

import (
	"context"
	"fmt"
	"math/big"

	"ocean-df/pkg/evm_client"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// FaucetAmounts 测试网发币数量(wei)
type FaucetAmounts struct {
	Mint      *big.Int // 部署者为自己铸造的 OCEAN
	PerWallet *big.Int // 每个钱包至少持有的 OCEAN
	MinETH    *big.Int // ETH 低于该值时补充
	TopUpETH  *big.Int
}

// MintFakeOCEAN 部署者铸造 OCEAN 并分发给测试钱包（仅测试链）
func (o *Ocean) MintFakeOCEAN(ctx context.Context, deployer *evm_client.Wallet, recipients []common.Address, amounts FaucetAmounts) error {
	dtx := o.tx.WithWallet(deployer)
	token := o.OCEAN.WithTransactor(dtx)

	if _, err := token.Mint(ctx, deployer.Address, amounts.Mint); err != nil {
		return fmt.Errorf("mint OCEAN to deployer: %w", err)
	}

	for _, r := range recipients {
		bal, err := token.BalanceOf(ctx, r)
		if err != nil {
			return err
		}
		if bal.Cmp(amounts.PerWallet) < 0 {
			topUp := new(big.Int).Sub(amounts.PerWallet, bal)
			if _, err := token.Transfer(ctx, r, topUp); err != nil {
				return fmt.Errorf("send OCEAN to %s: %w", r.Hex(), err)
			}
			o.tl.Info("Sent fake OCEAN", zap.String("to", r.Hex()), zap.String("wei", topUp.String()))
		}

		eth, err := dtx.Backend().BalanceAt(ctx, r, nil)
		if err != nil {
			return fmt.Errorf("eth balance of %s: %w", r.Hex(), err)
		}
		if amounts.MinETH != nil && amounts.TopUpETH != nil && eth.Cmp(amounts.MinETH) < 0 {
			if _, err := dtx.Send(ctx, "faucet.eth", r, nil, amounts.TopUpETH); err != nil {
				return fmt.Errorf("send ETH to %s: %w", r.Hex(), err)
			}
			o.tl.Info("Sent ETH", zap.String("to", r.Hex()), zap.String("wei", amounts.TopUpETH.String()))
		}
	}
	return nil
}
