// Package evmtest 提供内存版 Backend，供单元测试使用
package evmtest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend 实现 evm_client.Backend 与 evm_client.RPCCaller
type Backend struct {
	mu sync.Mutex

	ChainIDValue *big.Int
	HeadTime     uint64
	Native       map[common.Address]*big.Int

	// CallHandler 处理 eth_call，为空时返回 32 字节 0
	CallHandler func(msg ethereum.CallMsg) ([]byte, error)
	// EstimateErr 非空时 EstimateGas 返回该错误
	EstimateErr error
	// ReceiptHook 可修改默认回执（status、logs）
	ReceiptHook func(tx *types.Transaction, r *types.Receipt)

	Sent       []*types.Transaction
	RPCMethods []string

	pendingSleep uint64
	block        uint64
	nonces       map[common.Address]uint64
	receipts     map[common.Hash]*types.Receipt
}

func NewBackend(chainID int64) *Backend {
	return &Backend{
		ChainIDValue: big.NewInt(chainID),
		HeadTime:     1_700_000_000,
		Native:       make(map[common.Address]*big.Int),
		nonces:       make(map[common.Address]uint64),
		receipts:     make(map[common.Hash]*types.Receipt),
	}
}

func (b *Backend) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(b.ChainIDValue), nil
}

func (b *Backend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &types.Header{Number: new(big.Int).SetUint64(b.block), Time: b.HeadTime}, nil
}

func (b *Backend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.Native[account]; ok {
		return new(big.Int).Set(v), nil
	}
	return new(big.Int), nil
}

func (b *Backend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if b.CallHandler == nil {
		return make([]byte, 32), nil
	}
	return b.CallHandler(msg)
}

func (b *Backend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nonces[account], nil
}

func (b *Backend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (b *Backend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	if b.EstimateErr != nil {
		return 0, b.EstimateErr
	}
	return 100_000, nil
}

func (b *Backend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	from, err := types.Sender(types.LatestSignerForChainID(b.ChainIDValue), tx)
	if err != nil {
		return fmt.Errorf("recover sender: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if tx.Nonce() != b.nonces[from] {
		return fmt.Errorf("nonce too low: have %d want %d", tx.Nonce(), b.nonces[from])
	}
	b.nonces[from]++
	b.block++
	if v := tx.Value(); v != nil && v.Sign() > 0 && tx.To() != nil {
		// 只记入收款方，发送方余额不做校验
		cur, ok := b.Native[*tx.To()]
		if !ok {
			cur = new(big.Int)
		}
		b.Native[*tx.To()] = new(big.Int).Add(cur, v)
	}

	r := &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      tx.Hash(),
		GasUsed:     21_000,
		BlockNumber: new(big.Int).SetUint64(b.block),
	}
	if b.ReceiptHook != nil {
		b.ReceiptHook(tx, r)
	}
	b.Sent = append(b.Sent, tx)
	b.receipts[tx.Hash()] = r
	return nil
}

func (b *Backend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r, ok := b.receipts[txHash]; ok {
		return r, nil
	}
	return nil, ethereum.NotFound
}

// CallContext 模拟 ganache 的 evm_increaseTime / evm_mine
func (b *Backend) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.RPCMethods = append(b.RPCMethods, method)

	switch method {
	case "evm_increaseTime":
		secs, ok := args[0].(uint64)
		if !ok {
			return fmt.Errorf("evm_increaseTime: unexpected arg %T", args[0])
		}
		b.pendingSleep += secs
	case "evm_mine":
		b.HeadTime += b.pendingSleep + 1
		b.pendingSleep = 0
		b.block++
	default:
		return fmt.Errorf("method %s not supported", method)
	}
	return nil
}

// SentTo 返回发往 to 的交易
func (b *Backend) SentTo(to common.Address) []*types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*types.Transaction
	for _, tx := range b.Sent {
		if tx.To() != nil && *tx.To() == to {
			out = append(out, tx)
		}
	}
	return out
}
