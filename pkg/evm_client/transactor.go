package evm_client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

var ErrTxReverted = errors.New("transaction reverted")

const (
	defaultTxTimeout    = 60 * time.Second
	defaultPollInterval = 200 * time.Millisecond
	gasMarginPercent    = 20
)

// TxResult 已上链交易的摘要
type TxResult struct {
	Label       string
	ChainID     uint64
	From        common.Address
	To          common.Address
	Hash        common.Hash
	BlockNumber uint64
	GasUsed     uint64
	Success     bool
	MinedAt     time.Time
}

// ReceiptObserver 交易上链后回调（日志归档、指标）
type ReceiptObserver interface {
	ObserveReceipt(ctx context.Context, res TxResult)
}

type ObserverFunc func(ctx context.Context, res TxResult)

func (f ObserverFunc) ObserveReceipt(ctx context.Context, res TxResult) { f(ctx, res) }

// Transactor 以某个钱包身份读合约、签名并发送交易
type Transactor struct {
	backend      Backend
	wallet       *Wallet
	chainID      *big.Int
	tl           *zap.Logger
	timeout      time.Duration
	pollInterval time.Duration
	observers    []ReceiptObserver
	mu           *sync.Mutex
}

type Option func(*Transactor)

func WithTxTimeout(d time.Duration) Option {
	return func(t *Transactor) {
		if d > 0 {
			t.timeout = d
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(t *Transactor) {
		if d > 0 {
			t.pollInterval = d
		}
	}
}

func WithObservers(obs ...ReceiptObserver) Option {
	return func(t *Transactor) {
		t.observers = append(t.observers, obs...)
	}
}

func NewTransactor(backend Backend, wallet *Wallet, chainID *big.Int, tl *zap.Logger, opts ...Option) *Transactor {
	t := &Transactor{
		backend:      backend,
		wallet:       wallet,
		chainID:      new(big.Int).Set(chainID),
		tl:           tl,
		timeout:      defaultTxTimeout,
		pollInterval: defaultPollInterval,
		mu:           &sync.Mutex{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithWallet 复用 backend 与 observer，换一个签名钱包
func (t *Transactor) WithWallet(w *Wallet) *Transactor {
	cp := *t
	cp.wallet = w
	cp.mu = &sync.Mutex{}
	return &cp
}

func (t *Transactor) From() common.Address { return t.wallet.Address }

func (t *Transactor) ChainID() *big.Int { return new(big.Int).Set(t.chainID) }

func (t *Transactor) Backend() Backend { return t.backend }

// Call 在最新块上执行只读调用
func (t *Transactor) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	out, err := t.backend.CallContract(ctx, ethereum.CallMsg{
		From: t.wallet.Address,
		To:   &to,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", to.Hex(), err)
	}
	return out, nil
}

// Send 签名、发送交易并等待上链；回执 status 为 0 时返回 ErrTxReverted
func (t *Transactor) Send(ctx context.Context, label string, to common.Address, data []byte, value *big.Int) (*types.Receipt, error) {
	if value == nil {
		value = new(big.Int)
	}

	signed, err := t.signAndSend(ctx, label, to, data, value)
	if err != nil {
		return nil, err
	}

	receipt, err := t.waitMined(ctx, signed.Hash())
	if err != nil {
		return nil, fmt.Errorf("%s: wait for %s: %w", label, signed.Hash().Hex(), err)
	}

	res := TxResult{
		Label:   label,
		ChainID: t.chainID.Uint64(),
		From:    t.wallet.Address,
		To:      to,
		Hash:    signed.Hash(),
		GasUsed: receipt.GasUsed,
		Success: receipt.Status == types.ReceiptStatusSuccessful,
		MinedAt: time.Now(),
	}
	if receipt.BlockNumber != nil {
		res.BlockNumber = receipt.BlockNumber.Uint64()
	}
	for _, obs := range t.observers {
		obs.ObserveReceipt(ctx, res)
	}

	if !res.Success {
		return receipt, fmt.Errorf("%s: tx %s: %w", label, signed.Hash().Hex(), ErrTxReverted)
	}

	t.tl.Debug("Transaction mined",
		zap.String("label", label),
		zap.String("hash", res.Hash.Hex()),
		zap.Uint64("block", res.BlockNumber),
		zap.Uint64("gas_used", res.GasUsed))
	return receipt, nil
}

func (t *Transactor) signAndSend(ctx context.Context, label string, to common.Address, data []byte, value *big.Int) (*types.Transaction, error) {
	// nonce 分配与发送需串行
	t.mu.Lock()
	defer t.mu.Unlock()

	from := t.wallet.Address
	nonce, err := t.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("%s: pending nonce: %w", label, err)
	}

	gasPrice, err := t.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: suggest gas price: %w", label, err)
	}

	// 预估失败通常意味着合约会 revert，错误中带 revert reason
	gas, err := t.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: estimate gas: %w", label, err)
	}
	gas += gas * gasMarginPercent / 100

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &to,
		Value:    value,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(t.chainID), t.wallet.key)
	if err != nil {
		return nil, fmt.Errorf("%s: sign tx: %w", label, err)
	}

	if err := t.backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("%s: send tx: %w", label, err)
	}
	t.tl.Debug("Transaction sent",
		zap.String("label", label),
		zap.String("hash", signed.Hash().Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", gas))
	return signed, nil
}

func (t *Transactor) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := t.backend.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
