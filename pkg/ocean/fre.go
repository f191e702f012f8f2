package ocean

import (
	"context"
	"fmt"
	"math/big"

	"ocean-df/pkg/evm_client"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ExchangeID 固定价格交易所中的交易对 id
type ExchangeID [32]byte

func (id ExchangeID) Hex() string { return common.Hash(id).Hex() }

func (id ExchangeID) String() string { return id.Hex() }

func HexToExchangeID(s string) ExchangeID { return ExchangeID(common.HexToHash(s)) }

// FeesInfo getFeesInfo 返回值
type FeesInfo struct {
	MarketFee          *big.Int
	MarketFeeCollector common.Address
	OpcFee             *big.Int
	MarketFeeAvailable *big.Int
	OceanFeeAvailable  *big.Int
}

// FixedRateExchange 以固定价格出售 datatoken
type FixedRateExchange struct {
	c *contract
}

func NewFixedRateExchange(address common.Address, tx *evm_client.Transactor) *FixedRateExchange {
	return &FixedRateExchange{c: newContract("FixedRateExchange", address, parsedFRE, tx)}
}

func (f *FixedRateExchange) Address() common.Address { return f.c.address }

func (f *FixedRateExchange) GetFeesInfo(ctx context.Context, id ExchangeID) (FeesInfo, error) {
	var out FeesInfo
	values, err := f.c.call(ctx, "getFeesInfo", [32]byte(id))
	if err != nil {
		return out, err
	}
	if len(values) != 5 {
		return out, fmt.Errorf("getFeesInfo: %w", ErrUnexpectedOutput)
	}

	var ok [5]bool
	out.MarketFee, ok[0] = values[0].(*big.Int)
	out.MarketFeeCollector, ok[1] = values[1].(common.Address)
	out.OpcFee, ok[2] = values[2].(*big.Int)
	out.MarketFeeAvailable, ok[3] = values[3].(*big.Int)
	out.OceanFeeAvailable, ok[4] = values[4].(*big.Int)
	for _, b := range ok {
		if !b {
			return FeesInfo{}, fmt.Errorf("getFeesInfo: %w", ErrUnexpectedOutput)
		}
	}
	return out, nil
}

// BuyDT 用 base token 买入 datatoken，花费不超过 maxBaseAmount
func (f *FixedRateExchange) BuyDT(
	ctx context.Context,
	id ExchangeID,
	dtAmount *big.Int,
	maxBaseAmount *big.Int,
	consumeMarketAddress common.Address,
	consumeMarketSwapFee *big.Int,
) (*types.Receipt, error) {
	return f.c.transact(ctx, "buyDT", [32]byte(id), dtAmount, maxBaseAmount, consumeMarketAddress, consumeMarketSwapFee)
}
