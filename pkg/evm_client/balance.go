package evm_client

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sourcegraph/conc/pool"
)

// GetWalletBalances 查询钱包原生余额与一组 ERC20 余额，ERC20 并发查询
func GetWalletBalances(
	ctx context.Context,
	client Backend,
	walletAddress common.Address,
	erc20Tokens []common.Address,
) (nativeBalance *big.Int, tokenBalances map[common.Address]*big.Int, err error) {
	nativeBalance, err = client.BalanceAt(ctx, walletAddress, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get native balance: %w", err)
	}

	tokenBalances = make(map[common.Address]*big.Int, len(erc20Tokens))
	var mu sync.Mutex

	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(8)
	for _, tokenAddr := range erc20Tokens {
		token := tokenAddr
		p.Go(func(ctx context.Context) error {
			result, err := client.CallContract(ctx, ethereum.CallMsg{
				To:   &token,
				Data: BalanceOfCallData(walletAddress),
			}, nil)
			if err != nil {
				return fmt.Errorf("call contract failed for %s: %w", token.Hex(), err)
			}

			balance, err := ParseBalanceResult(result)
			if err != nil {
				return fmt.Errorf("failed to parse balance for %s: %w", token.Hex(), err)
			}

			mu.Lock()
			tokenBalances[token] = balance
			mu.Unlock()
			return nil
		})
	}

	// 部分失败时仍返回已查询到的结果
	if err := p.Wait(); err != nil {
		return nativeBalance, tokenBalances, err
	}
	return nativeBalance, tokenBalances, nil
}

// BalanceOfCallData 构建 balanceOf(address) 调用数据
func BalanceOfCallData(walletAddress common.Address) []byte {
	methodID := []byte{0x70, 0xa0, 0x82, 0x31}
	return append(methodID, common.LeftPadBytes(walletAddress.Bytes(), 32)...)
}

// ParseBalanceResult 解析合约调用的余额结果
func ParseBalanceResult(data []byte) (*big.Int, error) {
	if len(data) < 32 {
		return nil, fmt.Errorf("invalid balance data length: %d", len(data))
	}
	return new(big.Int).SetBytes(data[len(data)-32:]), nil
}
