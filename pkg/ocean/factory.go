package ocean

import (
	"context"
	"errors"
	"fmt"

	"ocean-df/pkg/evm_client"

	"github.com/ethereum/go-ethereum/common"
)

var ErrEventNotFound = errors.New("expected event not found in receipt")

// NFTFactory ERC721Factory
type NFTFactory struct {
	c *contract
}

func NewNFTFactory(address common.Address, tx *evm_client.Transactor) *NFTFactory {
	return &NFTFactory{c: newContract("ERC721Factory", address, parsedNFTFactory, tx)}
}

func (f *NFTFactory) Address() common.Address { return f.c.address }

// CreateNftWithErc20 一笔交易创建 data NFT 与其 datatoken
func (f *NFTFactory) CreateNftWithErc20(ctx context.Context, nft NftCreateData, erc ErcCreateData) (common.Address, common.Address, error) {
	// 克隆地址取决于工厂 nonce，模拟结果与紧随其后的交易一致
	values, err := f.c.call(ctx, "createNftWithErc20", nft, erc)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	if len(values) != 2 {
		return common.Address{}, common.Address{}, fmt.Errorf("createNftWithErc20: %w", ErrUnexpectedOutput)
	}
	nftAddr, ok1 := values[0].(common.Address)
	dtAddr, ok2 := values[1].(common.Address)
	if !ok1 || !ok2 {
		return common.Address{}, common.Address{}, fmt.Errorf("createNftWithErc20: %w", ErrUnexpectedOutput)
	}

	receipt, err := f.c.transact(ctx, "createNftWithErc20", nft, erc)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	if !hasLogFrom(receipt, nftAddr) || !hasLogFrom(receipt, dtAddr) {
		return common.Address{}, common.Address{}, fmt.Errorf("createNftWithErc20: tx %s did not create %s/%s: %w",
			receipt.TxHash.Hex(), nftAddr.Hex(), dtAddr.Hex(), ErrEventNotFound)
	}
	return nftAddr, dtAddr, nil
}
