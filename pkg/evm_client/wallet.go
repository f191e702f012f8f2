package evm_client

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrMissingKey = errors.New("private key not set")

// Wallet 持有私钥的外部账户
type Wallet struct {
	Address common.Address
	key     *ecdsa.PrivateKey
}

// NewWallet 从 hex 私钥创建钱包，可带 0x 前缀
func NewWallet(hexKey string) (*Wallet, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, ErrMissingKey
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Wallet{Address: crypto.PubkeyToAddress(key.PublicKey), key: key}, nil
}

// WalletFromEnv 从环境变量读取私钥
func WalletFromEnv(name string) (*Wallet, error) {
	w, err := NewWallet(os.Getenv(name))
	if err != nil {
		return nil, fmt.Errorf("wallet from env %s: %w", name, err)
	}
	return w, nil
}

func (w *Wallet) String() string {
	return w.Address.Hex()
}
