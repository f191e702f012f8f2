package ocean

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"ocean-df/pkg/evm_client"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrUnexpectedOutput = errors.New("unexpected contract output")

var (
	parsedERC20          = mustABI(erc20ABI)
	parsedVeOcean        = mustABI(veOceanABI)
	parsedVeAllocate     = mustABI(veAllocateABI)
	parsedFeeDistributor = mustABI(feeDistributorABI)
	parsedFRE            = mustABI(fixedRateExchangeABI)
	parsedDatatoken      = mustABI(datatokenABI)
	parsedDataNFT        = mustABI(dataNftABI)
	parsedNFTFactory     = mustABI(nftFactoryABI)
)

func mustABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("parse abi: %v", err))
	}
	return parsed
}

// contract 通过 Transactor 调用单个合约
type contract struct {
	name    string
	address common.Address
	abi     abi.ABI
	tx      *evm_client.Transactor
}

func newContract(name string, address common.Address, parsed abi.ABI, tx *evm_client.Transactor) *contract {
	return &contract{name: name, address: address, abi: parsed, tx: tx}
}

func (c *contract) withTransactor(tx *evm_client.Transactor) *contract {
	cp := *c
	cp.tx = tx
	return &cp
}

// call 只读调用；对写方法调用即为模拟执行
func (c *contract) call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: pack: %w", c.name, method, err)
	}
	out, err := c.tx.Call(ctx, c.address, data)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", c.name, method, err)
	}
	values, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: unpack: %w", c.name, method, err)
	}
	return values, nil
}

func (c *contract) callBig(ctx context.Context, method string, args ...any) (*big.Int, error) {
	values, err := c.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s.%s: %w", c.name, method, ErrUnexpectedOutput)
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w: %T", c.name, method, ErrUnexpectedOutput, values[0])
	}
	return v, nil
}

func (c *contract) transact(ctx context.Context, method string, args ...any) (*types.Receipt, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: pack: %w", c.name, method, err)
	}
	return c.tx.Send(ctx, c.name+"."+method, c.address, data, nil)
}

// hasLogFrom 回执中是否有 addr 合约发出的日志
func hasLogFrom(receipt *types.Receipt, addr common.Address) bool {
	for _, lg := range receipt.Logs {
		if lg.Address == addr {
			return true
		}
	}
	return false
}

// mentions 回执日志的 topic 或 32 字节数据字中是否出现 word
func mentions(receipt *types.Receipt, word [32]byte) bool {
	for _, lg := range receipt.Logs {
		for _, topic := range lg.Topics {
			if topic == word {
				return true
			}
		}
		for i := 0; i+32 <= len(lg.Data); i += 32 {
			if bytes.Equal(lg.Data[i:i+32], word[:]) {
				return true
			}
		}
	}
	return false
}

// 合约类型，对应 LookupABI 的参数
const (
	KindERC20          = "ERC20"
	KindVeOcean        = "veOCEAN"
	KindVeAllocate     = "veAllocate"
	KindFeeDistributor = "veFeeDistributor"
	KindFixedRate      = "FixedRateExchange"
	KindDatatoken      = "ERC20Template"
	KindDataNFT        = "ERC721Template"
	KindNFTFactory     = "ERC721Factory"
)

// LookupABI 按合约类型返回本包使用的 ABI
func LookupABI(kind string) (abi.ABI, bool) {
	switch kind {
	case KindERC20:
		return parsedERC20, true
	case KindVeOcean:
		return parsedVeOcean, true
	case KindVeAllocate:
		return parsedVeAllocate, true
	case KindFeeDistributor:
		return parsedFeeDistributor, true
	case KindFixedRate:
		return parsedFRE, true
	case KindDatatoken:
		return parsedDatatoken, true
	case KindDataNFT:
		return parsedDataNFT, true
	case KindNFTFactory:
		return parsedNFTFactory, true
	}
	return abi.ABI{}, false
}
