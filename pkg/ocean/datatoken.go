package ocean

import (
	"context"
	"fmt"
	"math/big"

	"ocean-df/pkg/evm_client"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// FixedRateArgs createFixedRate 参数
type FixedRateArgs struct {
	BaseToken          common.Address
	Owner              common.Address
	MarketFeeCollector common.Address
	AllowedConsumer    common.Address // 零地址表示任何人可买
	BaseTokenDecimals  uint8
	DatatokenDecimals  uint8
	FixedRate          *big.Int // 每个 datatoken 的 base token 价格(wei)
	MarketFee          *big.Int
	WithMint           bool // 交易所按需铸造 datatoken
}

// ProviderFees startOrder 中的 provider 手续费（由 provider 签名）
type ProviderFees struct {
	ProviderFeeAddress common.Address
	ProviderFeeToken   common.Address
	ProviderFeeAmount  *big.Int
	V                  uint8
	R                  [32]byte
	S                  [32]byte
	ValidUntil         *big.Int
	ProviderData       []byte
}

// ConsumeMarketFees startOrder 中的消费市场手续费
type ConsumeMarketFees struct {
	ConsumeMarketFeeAddress common.Address
	ConsumeMarketFeeToken   common.Address
	ConsumeMarketFeeAmount  *big.Int
}

// Datatoken 数据资产的访问代币（ERC20Template）
type Datatoken struct {
	*Token
	dt *contract
}

func NewDatatoken(address common.Address, tx *evm_client.Transactor) *Datatoken {
	return &Datatoken{
		Token: NewToken("Datatoken", address, tx),
		dt:    newContract("Datatoken", address, parsedDatatoken, tx),
	}
}

// CreateFixedRate 在 FRE 上为本 datatoken 创建交易对，返回交易对 id
func (d *Datatoken) CreateFixedRate(ctx context.Context, fre common.Address, args FixedRateArgs) (ExchangeID, error) {
	withMint := big.NewInt(0)
	if args.WithMint {
		withMint = big.NewInt(1)
	}
	marketFee := args.MarketFee
	if marketFee == nil {
		marketFee = new(big.Int)
	}
	addresses := []common.Address{args.BaseToken, args.Owner, args.MarketFeeCollector, args.AllowedConsumer}
	uints := []*big.Int{
		big.NewInt(int64(args.BaseTokenDecimals)),
		big.NewInt(int64(args.DatatokenDecimals)),
		args.FixedRate,
		marketFee,
		withMint,
	}

	// 先模拟拿到 exchangeId，再发送交易并核对日志
	values, err := d.dt.call(ctx, "createFixedRate", fre, addresses, uints)
	if err != nil {
		return ExchangeID{}, err
	}
	raw, ok := values[0].([32]byte)
	if !ok {
		return ExchangeID{}, fmt.Errorf("createFixedRate: %w", ErrUnexpectedOutput)
	}
	id := ExchangeID(raw)

	receipt, err := d.dt.transact(ctx, "createFixedRate", fre, addresses, uints)
	if err != nil {
		return ExchangeID{}, err
	}
	if !mentions(receipt, raw) {
		return ExchangeID{}, fmt.Errorf("createFixedRate: exchange %s not found in tx %s: %w", id.Hex(), receipt.TxHash.Hex(), ErrEventNotFound)
	}
	return id, nil
}

// StartOrder 支付 1 个 datatoken 以获得服务访问权
func (d *Datatoken) StartOrder(ctx context.Context, consumer common.Address, serviceIndex int64, providerFees ProviderFees, marketFees ConsumeMarketFees) (*types.Receipt, error) {
	if marketFees.ConsumeMarketFeeAmount == nil {
		marketFees.ConsumeMarketFeeAmount = new(big.Int)
	}
	if providerFees.ProviderFeeAmount == nil {
		providerFees.ProviderFeeAmount = new(big.Int)
	}
	if providerFees.ValidUntil == nil {
		providerFees.ValidUntil = new(big.Int)
	}
	return d.dt.transact(ctx, "startOrder", consumer, big.NewInt(serviceIndex), providerFees, marketFees)
}
