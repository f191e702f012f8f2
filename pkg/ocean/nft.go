package ocean

import (
	"context"
	"math/big"

	"ocean-df/pkg/evm_client"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// MetadataState 0 表示 active
const MetadataStateActive uint8 = 0

// MetadataFlags bit0 压缩，bit1 加密
const (
	MetadataFlagCompressed byte = 1 << 0
	MetadataFlagEncrypted  byte = 1 << 1
)

// MetadataProof 验证者签名，可为空
type MetadataProof struct {
	ValidatorAddress common.Address
	V                uint8
	R                [32]byte
	S                [32]byte
}

// MetadataArgs setMetaData 参数
type MetadataArgs struct {
	State            uint8
	DecryptorURL     string
	DecryptorAddress string
	Flags            []byte
	Data             []byte
	Hash             [32]byte
	Proofs           []MetadataProof
}

// DataNFT 数据资产 NFT（ERC721Template）
type DataNFT struct {
	c *contract
}

func NewDataNFT(address common.Address, tx *evm_client.Transactor) *DataNFT {
	return &DataNFT{c: newContract("DataNFT", address, parsedDataNFT, tx)}
}

func (n *DataNFT) Address() common.Address { return n.c.address }

func (n *DataNFT) SetMetaData(ctx context.Context, args MetadataArgs) (*types.Receipt, error) {
	proofs := args.Proofs
	if proofs == nil {
		proofs = []MetadataProof{}
	}
	return n.c.transact(ctx, "setMetaData",
		args.State, args.DecryptorURL, args.DecryptorAddress,
		args.Flags, args.Data, args.Hash, proofs)
}

// NftCreateData createNftWithErc20 的 NFT 参数
type NftCreateData struct {
	Name          string
	Symbol        string
	TemplateIndex *big.Int
	TokenURI      string
	Transferable  bool
	Owner         common.Address
}

// ErcCreateData createNftWithErc20 的 datatoken 参数
type ErcCreateData struct {
	TemplateIndex *big.Int
	Strings       []string         // name, symbol
	Addresses     []common.Address // minter, paymentCollector, publishMarketFeeAddress, publishMarketFeeToken
	Uints         []*big.Int       // cap, publishMarketFeeAmount
	Bytess        [][]byte
}
