package ocean

import (
	"context"
	"fmt"
	"math/big"

	"ocean-df/pkg/evm_client"
	"ocean-df/pkg/provider"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Ocean 以一个钱包身份访问 Ocean 合约与 provider
type Ocean struct {
	Addresses Addresses

	OCEAN             *Token
	VeOcean           *VeOcean
	VeAllocate        *VeAllocate
	FeeDistributor    *FeeDistributor
	FixedRateExchange *FixedRateExchange
	NFTFactory        *NFTFactory
	Assets            *Assets

	tx       *evm_client.Transactor
	provider *provider.Client
	tl       *zap.Logger
}

func New(addrs Addresses, tx *evm_client.Transactor, prov *provider.Client, tl *zap.Logger) *Ocean {
	o := &Ocean{
		Addresses:         addrs,
		OCEAN:             NewToken("OCEAN", addrs.Ocean, tx),
		VeOcean:           NewVeOcean(addrs.VeOcean, tx),
		VeAllocate:        NewVeAllocate(addrs.VeAllocate, tx),
		FeeDistributor:    NewFeeDistributor(addrs.VeFeeDistributor, tx),
		FixedRateExchange: NewFixedRateExchange(addrs.FixedPrice, tx),
		NFTFactory:        NewNFTFactory(addrs.ERC721Factory, tx),
		tx:                tx,
		provider:          prov,
		tl:                tl,
	}
	o.Assets = &Assets{o: o}
	return o
}

// Wallet 当前签名地址
func (o *Ocean) Wallet() common.Address { return o.tx.From() }

func (o *Ocean) ChainID() *big.Int { return o.tx.ChainID() }

func (o *Ocean) Transactor() *evm_client.Transactor { return o.tx }

// Datatoken 绑定已有 datatoken
func (o *Ocean) Datatoken(address common.Address) *Datatoken {
	return NewDatatoken(address, o.tx)
}

// CreateFixedRate 为 datatoken 创建固定价格交易对：先铸造 amount 并授权给 FRE，交易所可按需继续铸造
func (o *Ocean) CreateFixedRate(ctx context.Context, dt *Datatoken, baseToken *Token, amount, fixedRate *big.Int) (ExchangeID, error) {
	owner := o.tx.From()

	baseDecimals, err := baseToken.Decimals(ctx)
	if err != nil {
		return ExchangeID{}, err
	}
	dtDecimals, err := dt.Decimals(ctx)
	if err != nil {
		return ExchangeID{}, err
	}

	if amount != nil && amount.Sign() > 0 {
		if _, err := dt.Mint(ctx, owner, amount); err != nil {
			return ExchangeID{}, fmt.Errorf("mint datatokens: %w", err)
		}
		if _, err := dt.Approve(ctx, o.Addresses.FixedPrice, amount); err != nil {
			return ExchangeID{}, fmt.Errorf("approve datatokens: %w", err)
		}
	}

	id, err := dt.CreateFixedRate(ctx, o.Addresses.FixedPrice, FixedRateArgs{
		BaseToken:          baseToken.Address(),
		Owner:              owner,
		MarketFeeCollector: owner,
		BaseTokenDecimals:  baseDecimals,
		DatatokenDecimals:  dtDecimals,
		FixedRate:          fixedRate,
		MarketFee:          new(big.Int),
		WithMint:           true,
	})
	if err != nil {
		return ExchangeID{}, err
	}

	o.tl.Info("Created fixed-rate exchange",
		zap.String("exchange_id", id.Hex()),
		zap.String("datatoken", dt.Address().Hex()),
		zap.String("rate", fixedRate.String()))
	return id, nil
}
