package ocean

import (
	"context"
	"fmt"
	"math/big"

	"ocean-df/pkg/evm_client"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Token ERC20 代币（OCEAN、datatoken）
type Token struct {
	c *contract
}

func NewToken(name string, address common.Address, tx *evm_client.Transactor) *Token {
	return &Token{c: newContract(name, address, parsedERC20, tx)}
}

func (t *Token) Address() common.Address { return t.c.address }

// WithTransactor 以另一个钱包操作同一代币
func (t *Token) WithTransactor(tx *evm_client.Transactor) *Token {
	return &Token{c: t.c.withTransactor(tx)}
}

func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return t.c.callBig(ctx, "balanceOf", owner)
}

func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return t.c.callBig(ctx, "allowance", owner, spender)
}

func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	values, err := t.c.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("%s.decimals: %w", t.c.name, ErrUnexpectedOutput)
	}
	return d, nil
}

func (t *Token) Symbol(ctx context.Context) (string, error) {
	values, err := t.c.call(ctx, "symbol")
	if err != nil {
		return "", err
	}
	s, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("%s.symbol: %w", t.c.name, ErrUnexpectedOutput)
	}
	return s, nil
}

func (t *Token) Approve(ctx context.Context, spender common.Address, amount *big.Int) (*types.Receipt, error) {
	return t.c.transact(ctx, "approve", spender, amount)
}

func (t *Token) Transfer(ctx context.Context, to common.Address, amount *big.Int) (*types.Receipt, error) {
	return t.c.transact(ctx, "transfer", to, amount)
}

// Mint 仅测试网 MockOcean 支持，需部署者钱包
func (t *Token) Mint(ctx context.Context, to common.Address, amount *big.Int) (*types.Receipt, error) {
	return t.c.transact(ctx, "mint", to, amount)
}
